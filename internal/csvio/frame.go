// Package csvio reads and writes the dataset's CSV files.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/couchcryptid/camels-de1h/internal/domain"
)

// ReadFrame parses a series CSV with a "date" column and any number of value
// columns into a date-indexed frame. Values of the two recognized columns
// must be numeric; other columns are parsed leniently and unparsable cells
// become null.
func ReadFrame(r io.Reader) (*domain.Frame, error) {
	cr := newReader(r)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("series csv has no header: %w", domain.ErrInvalidArgument)
	}
	if err != nil {
		return nil, fmt.Errorf("read series header: %w", err)
	}

	dateCol := -1
	f := &domain.Frame{DateIndexed: true}
	colIdx := make([]int, 0, len(header))
	for i, name := range header {
		if name == domain.ColumnDate && dateCol < 0 {
			dateCol = i
			continue
		}
		f.Columns = append(f.Columns, domain.Column{Name: name})
		colIdx = append(colIdx, i)
	}
	if dateCol < 0 {
		return nil, fmt.Errorf("series csv has no %q column: %w", domain.ColumnDate, domain.ErrInvalidArgument)
	}

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read series row: %w", err)
		}

		t, err := ParseTimestamp(rec[dateCol])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w: %w", line, err, domain.ErrInvalidArgument)
		}
		f.Dates = append(f.Dates, t)

		for j, i := range colIdx {
			c := &f.Columns[j]
			v, err := ParseFloat(rec[i])
			if err != nil {
				if recognized(c.Name) {
					return nil, fmt.Errorf("line %d: column %s: %w: %w", line, c.Name, err, domain.ErrInvalidArgument)
				}
				v = nil
			}
			c.Values = append(c.Values, v)
		}
	}

	for j := range f.Columns {
		if f.Columns[j].Values == nil {
			f.Columns[j].Values = []*float64{}
		}
	}
	return f, nil
}

// WriteSeries writes the persisted series format:
// date,discharge_vol_obs,water_level_obs.
func WriteSeries(w io.Writer, s domain.Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{domain.ColumnDate, domain.ColumnDischargeVolObs, domain.ColumnWaterLevelObs}); err != nil {
		return err
	}
	for _, o := range s.Observations {
		rec := []string{FormatTimestamp(o.Date), FormatFloat(o.DischargeVolObs), FormatFloat(o.WaterLevelObs)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadSeries reads a persisted series and re-checks its invariants.
func ReadSeries(r io.Reader, id domain.NutsID) (domain.Series, error) {
	f, err := ReadFrame(r)
	if err != nil {
		return domain.Series{}, fmt.Errorf("%s: %w", id, err)
	}
	s, _, err := domain.NormalizeSeries(id, f)
	return s, err
}

// ReadTable reads an arbitrary CSV table verbatim.
func ReadTable(r io.Reader) (domain.Table, error) {
	cr := newReader(r)
	cr.FieldsPerRecord = -1
	recs, err := cr.ReadAll()
	if err != nil {
		return domain.Table{}, fmt.Errorf("read table: %w", err)
	}
	if len(recs) == 0 {
		return domain.Table{}, nil
	}
	return domain.Table{Header: recs[0], Rows: recs[1:]}, nil
}

// WriteTable writes a table verbatim.
func WriteTable(w io.Writer, t domain.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	return cr
}

func recognized(name string) bool {
	return name == domain.ColumnDischargeVolObs || name == domain.ColumnWaterLevelObs
}
