package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/couchcryptid/camels-de1h/internal/csvio"
	"github.com/couchcryptid/camels-de1h/internal/domain"
	"github.com/couchcryptid/camels-de1h/internal/station"
	"github.com/couchcryptid/camels-de1h/internal/storage"
)

// Registrar finds or allocates the NUTS ID of a provider ID.
type Registrar interface {
	LookupOrRegister(providerID string, region domain.Region, addMissing bool) (domain.NutsID, bool, error)
}

// StationTransformer imports a station: it maps the provider ID, saves the
// series, and copies the raw metadata.
type StationTransformer struct {
	registrar  Registrar
	stations   *station.Manager
	addMissing bool
	logger     *slog.Logger
}

// NewTransformer creates a StationTransformer. With addMissing unknown
// provider IDs are registered; otherwise they fail the station.
func NewTransformer(registrar Registrar, stations *station.Manager, addMissing bool, logger *slog.Logger) *StationTransformer {
	return &StationTransformer{
		registrar:  registrar,
		stations:   stations,
		addMissing: addMissing,
		logger:     logger,
	}
}

func (t *StationTransformer) Transform(ctx context.Context, in domain.StationInput) ([]domain.ChangeEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id, created, err := t.registrar.LookupOrRegister(in.ProviderID, in.Region, t.addMissing)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", in.ProviderID, err)
	}
	var events []domain.ChangeEvent
	if created {
		events = append(events, domain.NewChangeEvent(domain.ChangeMappingRegistered, id, in.ProviderID))
	}

	st, err := t.stations.Open(string(id))
	if err != nil {
		return events, fmt.Errorf("import %s: %w", in.ProviderID, err)
	}

	var frame *domain.Frame
	if err := storage.Read(in.DataPath, func(r io.Reader) error {
		var err error
		frame, err = csvio.ReadFrame(r)
		return err
	}); err != nil {
		return events, fmt.Errorf("import %s: %w", in.ProviderID, err)
	}

	rep, err := st.SaveSeries(frame)
	if err != nil {
		return events, fmt.Errorf("import %s: %w", in.ProviderID, err)
	}
	ev := domain.NewChangeEvent(domain.ChangeSeriesSaved, id, in.ProviderID)
	ev.Rows, ev.ExtraColumns = rep.Rows, rep.ExtraColumns
	events = append(events, ev)

	if in.RawMetadataPath != "" {
		var table domain.Table
		if err := storage.Read(in.RawMetadataPath, func(r io.Reader) error {
			var err error
			table, err = csvio.ReadTable(r)
			return err
		}); err != nil {
			return events, fmt.Errorf("import %s raw metadata: %w", in.ProviderID, err)
		}
		if err := st.SaveRawMetadata(table); err != nil {
			return events, fmt.Errorf("import %s: %w", in.ProviderID, err)
		}
		events = append(events, domain.NewChangeEvent(domain.ChangeRawMetadataSaved, id, in.ProviderID))
	}

	t.logger.Debug("station imported", "provider_id", in.ProviderID, "gauge_id", string(id), "rows", rep.Rows)
	return events, nil
}
