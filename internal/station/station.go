package station

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/go-echarts/go-echarts/v2/charts"

	"github.com/couchcryptid/camels-de1h/internal/catalog"
	"github.com/couchcryptid/camels-de1h/internal/chart"
	"github.com/couchcryptid/camels-de1h/internal/csvio"
	"github.com/couchcryptid/camels-de1h/internal/domain"
	"github.com/couchcryptid/camels-de1h/internal/layout"
	"github.com/couchcryptid/camels-de1h/internal/observability"
	"github.com/couchcryptid/camels-de1h/internal/storage"
)

// Station is the record of one gauge, addressed by its NUTS ID.
type Station struct {
	id      domain.NutsID
	layout  layout.Layout
	index   *catalog.Index
	logger  *slog.Logger
	metrics *observability.Metrics

	hasMetadata bool
	metadata    domain.Metadata
}

// Report describes a successful SaveSeries call.
type Report struct {
	Rows         int
	ExtraColumns []string // ignored columns, not persisted
}

// ID returns the station's NUTS ID.
func (s *Station) ID() domain.NutsID { return s.id }

func (s *Station) String() string { return fmt.Sprintf("Station(%s)", s.id) }

// HasMetadata reports whether a metadata record existed when the station was
// opened or has been saved since.
func (s *Station) HasMetadata() bool { return s.hasMetadata }

// Metadata returns the cached metadata record.
func (s *Station) Metadata() (domain.Metadata, bool) { return s.metadata, s.hasMetadata }

// SaveSeries validates f and replaces the station's series file. Columns
// other than discharge_vol_obs and water_level_obs are dropped with a
// warning.
func (s *Station) SaveSeries(f *domain.Frame) (Report, error) {
	series, extra, err := domain.NormalizeSeries(s.id, f)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			s.metrics.ValidationFailures.WithLabelValues(string(verr.Rule)).Inc()
		}
		return Report{}, fmt.Errorf("save series: %w", err)
	}

	if len(extra) > 0 {
		s.metrics.ExtraColumnWarnings.Inc()
		s.logger.Warn("series has unrecognized columns, they are not saved", "columns", extra)
	}

	path := s.layout.DataFile(s.id)
	if err := storage.WriteAtomic(path, func(w io.Writer) error {
		return csvio.WriteSeries(w, series)
	}); err != nil {
		return Report{}, fmt.Errorf("save series %s: %w", s.id, err)
	}

	s.metrics.SeriesSaved.Inc()
	s.metrics.SeriesRows.Observe(float64(series.Len()))
	first, last, _ := series.Span()
	s.logger.Debug("series saved", "rows", series.Len(), "first", first, "last", last, "path", path)
	return Report{Rows: series.Len(), ExtraColumns: extra}, nil
}

// LoadSeries reads the saved series.
func (s *Station) LoadSeries() (domain.Series, error) {
	var series domain.Series
	err := storage.Read(s.layout.DataFile(s.id), func(r io.Reader) error {
		var err error
		series, err = csvio.ReadSeries(r, s.id)
		return err
	})
	if err != nil {
		return domain.Series{}, fmt.Errorf("load series %s: %w", s.id, err)
	}
	return series, nil
}

// SeriesDigest returns a content hash of the saved series file. It changes
// whenever the series is rewritten with different data.
func (s *Station) SeriesDigest() (string, error) {
	sum, err := storage.Digest(s.layout.DataFile(s.id))
	if err != nil {
		return "", fmt.Errorf("series of %s: %w", s.id, err)
	}
	return sum, nil
}

// LoadFrame reads the saved series in tabular form. With dateIndex the
// dates are the frame's row key; otherwise they are its leading column.
func (s *Station) LoadFrame(dateIndex bool) (*domain.Frame, error) {
	series, err := s.LoadSeries()
	if err != nil {
		return nil, err
	}
	return series.Frame(dateIndex), nil
}

// SaveRawMetadata stores the provider's metadata table unchanged.
func (s *Station) SaveRawMetadata(t domain.Table) error {
	if len(t.Header) == 0 {
		return fmt.Errorf("save raw metadata %s: table has no header: %w", s.id, domain.ErrInvalidArgument)
	}
	if err := storage.WriteAtomic(s.layout.RawMetadataFile(s.id), func(w io.Writer) error {
		return csvio.WriteTable(w, t)
	}); err != nil {
		return fmt.Errorf("save raw metadata %s: %w", s.id, err)
	}
	return nil
}

// LoadRawMetadata reads the provider's metadata table.
func (s *Station) LoadRawMetadata() (domain.Table, error) {
	var t domain.Table
	err := storage.Read(s.layout.RawMetadataFile(s.id), func(r io.Reader) error {
		var err error
		t, err = csvio.ReadTable(r)
		return err
	})
	if err != nil {
		return domain.Table{}, fmt.Errorf("load raw metadata %s: %w", s.id, err)
	}
	return t, nil
}

// SaveMetadata writes the station's metadata file and upserts the record
// into the global index. An unset gauge_id is filled with the station's
// NUTS ID.
//
// The station file is committed first. If the index upsert then fails the
// station file already holds the new record and the index does not; the
// error is returned and `camels audit` reports the mismatch until the next
// successful save.
func (s *Station) SaveMetadata(md domain.Metadata) error {
	switch {
	case md.GaugeID == nil:
		md.GaugeID = domain.Ptr(string(s.id))
	case *md.GaugeID != string(s.id):
		return fmt.Errorf("save metadata %s: gauge_id %q belongs to another station: %w", s.id, *md.GaugeID, domain.ErrInvalidArgument)
	}

	if err := storage.WriteAtomic(s.layout.MetadataFile(s.id), func(w io.Writer) error {
		return csvio.WriteMetadata(w, []domain.Metadata{md}, true)
	}); err != nil {
		return fmt.Errorf("save metadata %s: %w", s.id, err)
	}
	s.hasMetadata = true
	s.metadata = md

	mode, err := s.index.Upsert(md)
	if err != nil {
		return fmt.Errorf("save metadata %s: %w", s.id, err)
	}
	s.metrics.MetadataUpserts.WithLabelValues(string(mode)).Inc()
	s.logger.Debug("metadata saved", "index_mode", string(mode))
	return nil
}

// LoadMetadata reads the station's metadata file.
func (s *Station) LoadMetadata() (domain.Metadata, error) {
	md, err := readMetadata(s.layout.MetadataFile(s.id))
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("load metadata %s: %w", s.id, err)
	}
	return md, nil
}

// RenderChart draws the saved series. kind is one of discharge,
// water_level, both, or the aliases q and w.
func (s *Station) RenderChart(kind string) (*charts.Line, error) {
	k, err := chart.ParseKind(kind)
	if err != nil {
		return nil, fmt.Errorf("render chart %s: %w", s.id, err)
	}
	series, err := s.LoadSeries()
	if err != nil {
		return nil, err
	}
	return chart.Build(series, k)
}
