// Package station reads and writes the files of a single station: the
// hourly series, the curated metadata record, and the provider's raw
// metadata.
package station

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/couchcryptid/camels-de1h/internal/catalog"
	"github.com/couchcryptid/camels-de1h/internal/csvio"
	"github.com/couchcryptid/camels-de1h/internal/domain"
	"github.com/couchcryptid/camels-de1h/internal/layout"
	"github.com/couchcryptid/camels-de1h/internal/observability"
	"github.com/couchcryptid/camels-de1h/internal/storage"
)

// Resolver maps a station identifier (NUTS ID or provider ID) to its NUTS ID.
type Resolver interface {
	Resolve(identifier string) (domain.NutsID, error)
}

// Manager opens station records below one output directory.
type Manager struct {
	layout   layout.Layout
	resolver Resolver
	index    *catalog.Index
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewManager creates a Manager. Station metadata is indexed in the layout's
// global metadata table.
func NewManager(l layout.Layout, resolver Resolver, logger *slog.Logger, metrics *observability.Metrics) *Manager {
	return &Manager{
		layout:   l,
		resolver: resolver,
		index:    catalog.New(l.MetadataIndexFile()),
		logger:   logger,
		metrics:  metrics,
	}
}

// Index returns the global metadata index the manager writes to.
func (m *Manager) Index() *catalog.Index { return m.index }

// Open resolves identifier and returns its station record. Saved metadata
// is loaded eagerly.
func (m *Manager) Open(identifier string) (*Station, error) {
	id, err := m.resolver.Resolve(identifier)
	if err != nil {
		return nil, fmt.Errorf("open station: %w", err)
	}

	s := &Station{
		id:      id,
		layout:  m.layout,
		index:   m.index,
		logger:  m.logger.With("gauge_id", string(id)),
		metrics: m.metrics,
	}

	md, err := readMetadata(m.layout.MetadataFile(id))
	switch {
	case err == nil:
		s.hasMetadata = true
		s.metadata = md
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("open station %s: %w", id, err)
	}
	return s, nil
}

func readMetadata(path string) (domain.Metadata, error) {
	var rows []domain.Metadata
	err := storage.Read(path, func(r io.Reader) error {
		var err error
		rows, err = csvio.ReadMetadata(r)
		return err
	})
	if err != nil {
		return domain.Metadata{}, err
	}
	if len(rows) == 0 {
		return domain.Metadata{}, fmt.Errorf("%s has no metadata row: %w", path, domain.ErrNotFound)
	}
	return rows[0], nil
}
