package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/couchcryptid/camels-de1h/internal/domain"
)

// WriteMetadata writes metadata rows in domain.MetadataColumns order. The
// header is only written when header is true, which lets callers append to
// an existing table.
func WriteMetadata(w io.Writer, rows []domain.Metadata, header bool) error {
	cw := csv.NewWriter(w)
	if header {
		if err := cw.Write(domain.MetadataColumns); err != nil {
			return err
		}
	}
	for _, m := range rows {
		if err := cw.Write(metadataRecord(m)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadMetadata reads a metadata table. Columns are matched by name, so
// files with reordered or missing columns still load; missing fields stay
// null.
func ReadMetadata(r io.Reader) ([]domain.Metadata, error) {
	_, rows, err := ReadMetadataTable(r)
	return rows, err
}

// ReadMetadataTable is ReadMetadata that also returns the header as found
// in the file. An empty input yields a nil header and no rows.
func ReadMetadataTable(r io.Reader) ([]string, []domain.Metadata, error) {
	cr := newReader(r)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read metadata header: %w", err)
	}
	pos := make(map[string]int, len(header))
	for i, name := range header {
		pos[name] = i
	}

	var rows []domain.Metadata
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return header, rows, nil
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read metadata row: %w", err)
		}
		m, err := parseMetadata(rec, pos)
		if err != nil {
			return nil, nil, fmt.Errorf("metadata line %d: %w", line, err)
		}
		rows = append(rows, m)
	}
}

func metadataRecord(m domain.Metadata) []string {
	return []string{
		formatString(m.GaugeID),
		formatString(m.ProviderID),
		formatString(m.GaugeName),
		formatString(m.WaterBodyName),
		formatString(m.FederalState),
		FormatFloat(m.Lon),
		FormatFloat(m.Lat),
		FormatFloat(m.Easting),
		FormatFloat(m.Northing),
		FormatFloat(m.ElevMetadata),
		FormatFloat(m.AreaMetadata),
		formatBool(m.PartOfCamelsp),
	}
}

func parseMetadata(rec []string, pos map[string]int) (domain.Metadata, error) {
	cell := func(name string) string {
		if i, ok := pos[name]; ok && i < len(rec) {
			return rec[i]
		}
		return ""
	}

	m := domain.Metadata{
		GaugeID:       parseString(cell("gauge_id")),
		ProviderID:    parseString(cell("provider_id")),
		GaugeName:     parseString(cell("gauge_name")),
		WaterBodyName: parseString(cell("water_body_name")),
		FederalState:  parseString(cell("federal_state")),
	}

	floats := []struct {
		name string
		dst  **float64
	}{
		{"lon", &m.Lon},
		{"lat", &m.Lat},
		{"easting", &m.Easting},
		{"northing", &m.Northing},
		{"elev_metadata", &m.ElevMetadata},
		{"area_metadata", &m.AreaMetadata},
	}
	for _, f := range floats {
		v, err := ParseFloat(cell(f.name))
		if err != nil {
			return domain.Metadata{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}

	b, err := parseBool(cell("part_of_camelsp"))
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("part_of_camelsp: %w", err)
	}
	m.PartOfCamelsp = b
	return m, nil
}
