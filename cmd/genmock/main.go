// Command genmock writes synthetic raw provider files below an input
// directory, in the layout the import command reads. Discharge follows a
// daily cycle on top of a seasonal baseline; water level tracks discharge.
// Files are reproducible for a given seed.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -input-dir input_data \
//	  -regions DE1,DE2 \
//	  -stations 3 \
//	  -hours 720 \
//	  -defects
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/camels-de1h/internal/csvio"
	"github.com/couchcryptid/camels-de1h/internal/domain"
	"github.com/couchcryptid/camels-de1h/internal/layout"
	"github.com/couchcryptid/camels-de1h/internal/storage"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

type options struct {
	inputDir string
	regions  []domain.Region
	stations int
	hours    int
	start    time.Time
	seed     uint64
	defects  bool
}

func run() error {
	inputDir := flag.String("input-dir", "", "directory to create Q_and_W/ in")
	regions := flag.String("regions", "DE1", "comma-separated region codes")
	stations := flag.Int("stations", 3, "stations per region")
	hours := flag.Int("hours", 24*30, "hourly rows per station")
	start := flag.String("start", "2020-01-01T00:00:00Z", "first timestamp, RFC 3339")
	seed := flag.Uint64("seed", 1, "random seed")
	defects := flag.Bool("defects", false, "also write one station per region with a gap in its index")
	flag.Parse()

	if *inputDir == "" || *stations < 1 || *hours < 1 {
		flag.Usage()
		return fmt.Errorf("missing or invalid flags: -input-dir, -stations, -hours")
	}

	opts := options{
		inputDir: *inputDir,
		stations: *stations,
		hours:    *hours,
		seed:     *seed,
		defects:  *defects,
	}
	t0, err := time.Parse(time.RFC3339, *start)
	if err != nil {
		return fmt.Errorf("parse -start: %w", err)
	}
	opts.start = t0.UTC()
	for _, s := range strings.Split(*regions, ",") {
		r, err := domain.ParseRegion(s)
		if err != nil {
			return err
		}
		opts.regions = append(opts.regions, r)
	}

	written, err := generate(opts)
	if err != nil {
		return err
	}
	log.Printf("wrote %d station files below %s", written, filepath.Join(opts.inputDir, "Q_and_W"))
	return nil
}

// generate writes all station files and returns how many series it wrote.
func generate(opts options) (int, error) {
	l := layout.New(opts.inputDir, "")
	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))

	written := 0
	for _, r := range opts.regions {
		dir, err := l.InputPath(r)
		if err != nil {
			return written, err
		}
		for i := range opts.stations {
			provider := fmt.Sprintf("%s%04d", strings.ToLower(string(r)), 100+i)
			st := synthStation{
				provider: provider,
				baseline: 2 + 40*rng.Float64(),
				start:    opts.start,
				hours:    opts.hours,
			}
			if err := st.write(dir, rng); err != nil {
				return written, err
			}
			written++
			log.Printf("%s: %s (%d rows)", r, provider, opts.hours)
		}
		if opts.defects {
			st := synthStation{
				provider: fmt.Sprintf("%s9999", strings.ToLower(string(r))),
				baseline: 5,
				start:    opts.start,
				hours:    opts.hours,
				gapAt:    opts.hours / 2,
			}
			if err := st.write(dir, rng); err != nil {
				return written, err
			}
			written++
			log.Printf("%s: %s (gap after row %d)", r, st.provider, st.gapAt)
		}
	}
	return written, nil
}

type synthStation struct {
	provider string
	baseline float64 // mean discharge in m³/s
	start    time.Time
	hours    int
	gapAt    int // skip one hour after this row; 0 for none
}

func (s synthStation) write(dir string, rng *rand.Rand) error {
	data := filepath.Join(dir, s.provider+".csv")
	err := storage.WriteAtomic(data, func(w io.Writer) error {
		return s.writeSeries(w, rng)
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", data, err)
	}

	meta := filepath.Join(dir, s.provider+"_meta.csv")
	err = storage.WriteAtomic(meta, func(w io.Writer) error {
		return csvio.WriteTable(w, domain.Table{
			Header: []string{"station_id", "name", "mean_discharge"},
			Rows:   [][]string{{s.provider, "Synthetic " + s.provider, fmt.Sprintf("%.2f", s.baseline)}},
		})
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", meta, err)
	}
	return nil
}

func (s synthStation) writeSeries(w io.Writer, rng *rand.Rand) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{domain.ColumnDate, domain.ColumnDischargeVolObs, domain.ColumnWaterLevelObs}); err != nil {
		return err
	}

	t := s.start
	for i := range s.hours {
		if s.gapAt > 0 && i == s.gapAt {
			t = t.Add(time.Hour)
		}
		q, level := s.sample(t, rng)
		if err := cw.Write([]string{csvio.FormatTimestamp(t), csvio.FormatFloat(q), csvio.FormatFloat(level)}); err != nil {
			return err
		}
		t = t.Add(time.Hour)
	}
	cw.Flush()
	return cw.Error()
}

// sample returns one hour of observations. About one value in fifty is
// missing.
func (s synthStation) sample(t time.Time, rng *rand.Rand) (q, level *float64) {
	season := 1 + 0.5*math.Cos(2*math.Pi*float64(t.YearDay())/365)
	daily := 1 + 0.1*math.Sin(2*math.Pi*float64(t.Hour())/24)
	noise := 1 + 0.05*rng.NormFloat64()
	v := math.Max(0, s.baseline*season*daily*noise)

	if rng.IntN(50) != 0 {
		q = domain.Ptr(math.Round(v*1000) / 1000)
	}
	if rng.IntN(50) != 0 {
		level = domain.Ptr(math.Round(50 + 30*math.Log1p(v)))
	}
	return q, level
}
