//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/camels-de1h/internal/adapter/kafka"
	"github.com/couchcryptid/camels-de1h/internal/config"
	"github.com/couchcryptid/camels-de1h/internal/domain"
	"github.com/couchcryptid/camels-de1h/internal/layout"
	"github.com/couchcryptid/camels-de1h/internal/mapping"
	"github.com/couchcryptid/camels-de1h/internal/observability"
	"github.com/couchcryptid/camels-de1h/internal/pipeline"
	"github.com/couchcryptid/camels-de1h/internal/station"
)

const testTopic = "test-changes"

type publishedEvent struct {
	Event   domain.ChangeEvent
	Key     string
	Headers map[string]string
}

func readEvent(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedEvent {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from change topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var ev domain.ChangeEvent
	require.NoError(t, json.Unmarshal(msg.Value, &ev), "unmarshal change event")
	return publishedEvent{Event: ev, Key: string(msg.Key), Headers: headers}
}

// TestImportPublishesChanges runs a directory import with the Kafka writer
// as loader and reads every change event back from the topic.
func TestImportPublishesChanges(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	dir := t.TempDir()
	l := layout.New(filepath.Join(dir, "input_data"), filepath.Join(dir, "output_data"))
	series := "date,discharge_vol_obs,water_level_obs\n" +
		"2021-06-01 00:00:00+00:00,1.5,80\n" +
		"2021-06-01 01:00:00+00:00,1.6,81\n"
	writeInput(t, l, "DE1", "0100.csv", series)
	writeInput(t, l, "DE1", "0100_meta.csv", "id,name\n0100,Achern\n")
	writeInput(t, l, "DE9", "0200.csv", series)
	writeInput(t, l, "DE9", "0300.csv", "date,discharge_vol_obs\n2021-06-01 00:00:00,1\n")

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	metrics := observability.NewMetricsForTesting()
	maps, err := mapping.Open(l, discardLogger(), metrics)
	require.NoError(t, err)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	p := pipeline.New(
		pipeline.NewDirExtractor(l),
		pipeline.NewTransformer(maps, station.NewManager(l, maps, discardLogger(), metrics), true, discardLogger()),
		writer, discardLogger(), metrics, 2,
	)
	sum, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Imported)
	assert.Equal(t, 1, sum.Failed, "naive timestamps fail the UTC rule")

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-changes-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	received := make([]publishedEvent, 0, sum.Events)
	for len(received) < sum.Events {
		received = append(received, readEvent(ctx, t, consumer))
	}

	kinds := map[domain.ChangeKind]int{}
	for _, pe := range received {
		kinds[pe.Event.Kind]++
		assert.Equal(t, string(pe.Event.GaugeID), pe.Key, "events are keyed by gauge id")
		assert.Equal(t, string(pe.Event.Kind), pe.Headers["kind"])
		_, err := time.Parse(time.RFC3339, pe.Headers["occurred_at"])
		assert.NoError(t, err, "invalid occurred_at header")
	}
	assert.Equal(t, 3, kinds[domain.ChangeMappingRegistered])
	assert.Equal(t, 2, kinds[domain.ChangeSeriesSaved])
	assert.Equal(t, 1, kinds[domain.ChangeRawMetadataSaved])

	// Per-station ordering: registration precedes the series write.
	var order []domain.ChangeKind
	for _, pe := range received {
		if pe.Key == "DE101000" {
			order = append(order, pe.Event.Kind)
		}
	}
	assert.Equal(t, []domain.ChangeKind{
		domain.ChangeMappingRegistered,
		domain.ChangeSeriesSaved,
		domain.ChangeRawMetadataSaved,
	}, order)
}
