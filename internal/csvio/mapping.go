package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/couchcryptid/camels-de1h/internal/domain"
)

var mappingHeader = []string{"provider_id", "nuts_id"}

// WriteMapping writes the tabular mapping store.
func WriteMapping(w io.Writer, entries []domain.MappingEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(mappingHeader); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.ProviderID, string(e.NutsID)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadMapping reads the tabular mapping store. Provider IDs are kept as
// strings so leading zeros survive.
func ReadMapping(r io.Reader) ([]domain.MappingEntry, error) {
	cr := newReader(r)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read mapping header: %w", err)
	}
	pi, ni := -1, -1
	for i, name := range header {
		switch name {
		case "provider_id":
			pi = i
		case "nuts_id":
			ni = i
		}
	}
	if pi < 0 || ni < 0 {
		return nil, fmt.Errorf("mapping header %v lacks provider_id or nuts_id: %w", header, domain.ErrInvalidArgument)
	}

	var entries []domain.MappingEntry
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read mapping row: %w", err)
		}
		id, err := domain.ParseNutsID(rec[ni])
		if err != nil {
			return nil, fmt.Errorf("mapping line %d: %w", line, err)
		}
		entries = append(entries, domain.MappingEntry{ProviderID: rec[pi], NutsID: id})
	}
}
