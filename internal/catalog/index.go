// Package catalog maintains the global metadata index, one row per station
// keyed and sorted by gauge_id.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/couchcryptid/camels-de1h/internal/csvio"
	"github.com/couchcryptid/camels-de1h/internal/domain"
	"github.com/couchcryptid/camels-de1h/internal/storage"
)

// UpsertMode records how Upsert changed the index file.
type UpsertMode string

const (
	ModeCreate  UpsertMode = "create"  // index did not exist yet
	ModeAppend  UpsertMode = "append"  // new key sorted after the last row
	ModeReplace UpsertMode = "replace" // existing row replaced
	ModeRewrite UpsertMode = "rewrite" // new key inserted mid-table
)

// Index is the metadata1h.csv table.
type Index struct {
	path string
}

// New returns the index stored at path.
func New(path string) *Index { return &Index{path: path} }

// Path returns the index file location.
func (ix *Index) Path() string { return ix.path }

// Upsert inserts md or replaces the row with the same gauge_id, keeping the
// table sorted. New keys that sort last are appended without rewriting the
// file, provided the file already carries the standard header; any other
// shape is normalized by a full rewrite.
func (ix *Index) Upsert(md domain.Metadata) (UpsertMode, error) {
	key := md.Key()
	if key == "" {
		return "", fmt.Errorf("upsert metadata: gauge_id is required: %w", domain.ErrInvalidArgument)
	}

	header, rows, err := ix.read()
	if errors.Is(err, domain.ErrNotFound) {
		err := storage.WriteAtomic(ix.path, func(w io.Writer) error {
			return csvio.WriteMetadata(w, []domain.Metadata{md}, true)
		})
		if err != nil {
			return "", fmt.Errorf("create metadata index: %w", err)
		}
		return ModeCreate, nil
	}
	if err != nil {
		return "", err
	}

	mode := ModeRewrite
	kept := slices.DeleteFunc(slices.Clone(rows), func(m domain.Metadata) bool { return m.Key() == key })
	switch {
	case len(kept) < len(rows):
		mode = ModeReplace
	case slices.Equal(header, domain.MetadataColumns) && sortedAsc(rows) &&
		(len(rows) == 0 || rows[len(rows)-1].Key() < key):
		err := storage.Append(ix.path, func(w io.Writer) error {
			return csvio.WriteMetadata(w, []domain.Metadata{md}, false)
		})
		if err != nil {
			return "", fmt.Errorf("append metadata index: %w", err)
		}
		return ModeAppend, nil
	}

	kept = append(kept, md)
	slices.SortStableFunc(kept, compareKey)
	if err := storage.WriteAtomic(ix.path, func(w io.Writer) error {
		return csvio.WriteMetadata(w, kept, true)
	}); err != nil {
		return "", fmt.Errorf("rewrite metadata index: %w", err)
	}
	return mode, nil
}

// All returns every row in file order.
func (ix *Index) All() ([]domain.Metadata, error) {
	_, rows, err := ix.read()
	return rows, err
}

func (ix *Index) read() ([]string, []domain.Metadata, error) {
	var (
		header []string
		rows   []domain.Metadata
	)
	err := storage.Read(ix.path, func(r io.Reader) error {
		var err error
		header, rows, err = csvio.ReadMetadataTable(r)
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("read metadata index: %w", err)
	}
	return header, rows, nil
}

// Get returns the row of gaugeID.
func (ix *Index) Get(gaugeID string) (domain.Metadata, error) {
	rows, err := ix.All()
	if err != nil {
		return domain.Metadata{}, err
	}
	for _, m := range rows {
		if m.Key() == gaugeID {
			return m, nil
		}
	}
	return domain.Metadata{}, fmt.Errorf("gauge %s not in metadata index: %w", gaugeID, domain.ErrNotFound)
}

func compareKey(a, b domain.Metadata) int { return strings.Compare(a.Key(), b.Key()) }

func sortedAsc(rows []domain.Metadata) bool {
	return slices.IsSortedFunc(rows, compareKey)
}
