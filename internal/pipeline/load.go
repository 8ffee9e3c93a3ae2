package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/camels-de1h/internal/domain"
)

// LogLoader writes change events to the log. It is the loader used when no
// event broker is configured.
type LogLoader struct {
	logger *slog.Logger
}

// NewLogLoader creates a LogLoader.
func NewLogLoader(logger *slog.Logger) *LogLoader {
	return &LogLoader{logger: logger}
}

func (l *LogLoader) LoadBatch(_ context.Context, events []domain.ChangeEvent) error {
	for _, ev := range events {
		l.logger.Info("dataset changed",
			"kind", string(ev.Kind),
			"gauge_id", string(ev.GaugeID),
			"provider_id", ev.ProviderID,
			"event_id", ev.ID,
		)
	}
	return nil
}
