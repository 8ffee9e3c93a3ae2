// Package pipeline imports raw provider files into the dataset in batches.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/camels-de1h/internal/domain"
	"github.com/couchcryptid/camels-de1h/internal/observability"
)

// BatchExtractor yields up to batchSize station inputs per call. An empty
// batch means the source is exhausted.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.StationInput, error)
}

// Transformer imports one station and reports what it changed. When it
// fails part way, the events of the writes that did happen are returned
// with the error.
type Transformer interface {
	Transform(ctx context.Context, in domain.StationInput) ([]domain.ChangeEvent, error)
}

// BatchLoader publishes the change events of one batch.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.ChangeEvent) error
}

// Summary counts the outcome of a run.
type Summary struct {
	Extracted int
	Imported  int
	Failed    int
	Events    int
}

// Pipeline orchestrates the extract-transform-load loop.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	batchSize   int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// Run imports batches until the extractor is exhausted. A station that
// fails to import is logged and skipped; extract and load failures end the
// run. Cancelling ctx stops the run between stations.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	p.logger.Info("import started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	var sum Summary
	for {
		if err := ctx.Err(); err != nil {
			p.logger.Info("import stopping", "reason", err)
			return sum, err
		}

		done, err := p.processBatch(ctx, &sum)
		if err != nil {
			return sum, err
		}
		if done {
			break
		}
	}

	p.logger.Info("import finished",
		"extracted", sum.Extracted,
		"imported", sum.Imported,
		"failed", sum.Failed,
		"events", sum.Events,
	)
	return sum, nil
}

// processBatch runs one extract-transform-load cycle. done reports that the
// extractor had nothing left.
func (p *Pipeline) processBatch(ctx context.Context, sum *Summary) (done bool, err error) {
	start := time.Now()

	batch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		return false, fmt.Errorf("extract batch: %w", err)
	}
	if len(batch) == 0 {
		return true, nil
	}

	sum.Extracted += len(batch)
	p.metrics.StationsExtracted.Add(float64(len(batch)))
	p.metrics.BatchSize.Observe(float64(len(batch)))

	events := make([]domain.ChangeEvent, 0, len(batch))
	for _, in := range batch {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		out, err := p.transformer.Transform(ctx, in)
		events = append(events, out...)
		if err != nil {
			p.logger.Warn("import failed, skipping station",
				"error", err,
				"provider_id", in.ProviderID,
				"region", string(in.Region),
				"path", in.DataPath,
			)
			p.metrics.ImportErrors.Inc()
			sum.Failed++
			continue
		}
		sum.Imported++
		p.metrics.StationsImported.Inc()
	}

	if len(events) > 0 {
		if err := p.loader.LoadBatch(ctx, events); err != nil {
			return false, fmt.Errorf("load batch of %d events: %w", len(events), err)
		}
		sum.Events += len(events)
		p.metrics.EventsPublished.Add(float64(len(events)))
	}

	p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	return false, nil
}
