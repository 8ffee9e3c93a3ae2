package pipeline_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/camels-de1h/internal/domain"
	"github.com/couchcryptid/camels-de1h/internal/layout"
	"github.com/couchcryptid/camels-de1h/internal/mapping"
	"github.com/couchcryptid/camels-de1h/internal/observability"
	"github.com/couchcryptid/camels-de1h/internal/pipeline"
	"github.com/couchcryptid/camels-de1h/internal/station"
)

const goodSeries = "date,discharge_vol_obs,water_level_obs,quality\n" +
	"2021-06-01T00:00:00Z,1.5,80,ok\n" +
	"2021-06-01T01:00:00Z,1.6,81,ok\n" +
	"2021-06-01T02:00:00Z,,82,gap\n"

const gappedSeries = "date,discharge_vol_obs\n" +
	"2021-06-01 00:00:00+00:00,1\n" +
	"2021-06-01 03:00:00+00:00,2\n"

func writeInput(t *testing.T, l layout.Layout, region domain.Region, name, content string) {
	t.Helper()
	dir, err := l.InputPath(region)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newImportLayout(t *testing.T) layout.Layout {
	t.Helper()
	dir := t.TempDir()
	return layout.New(filepath.Join(dir, "input_data"), filepath.Join(dir, "output_data"))
}

func TestDirExtractor(t *testing.T) {
	l := newImportLayout(t)
	writeInput(t, l, "DE1", "b.csv", goodSeries)
	writeInput(t, l, "DE1", "a.csv", goodSeries)
	writeInput(t, l, "DE1", "a_meta.csv", "id,name\na,Alpha\n")
	writeInput(t, l, "DE1", "notes.txt", "x")
	writeInput(t, l, "DEA", "c.csv", goodSeries)

	ext := pipeline.NewDirExtractor(l)
	ctx := context.Background()

	first, err := ext.ExtractBatch(ctx, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "a", first[0].ProviderID)
	assert.Equal(t, domain.Region("DE1"), first[0].Region)
	assert.Equal(t, filepath.Join(l.InputDir, "Q_and_W", "BW_Baden_Wuerttemberg", "a_meta.csv"), first[0].RawMetadataPath)
	assert.Equal(t, "b", first[1].ProviderID)
	assert.Empty(t, first[1].RawMetadataPath)

	second, err := ext.ExtractBatch(ctx, 2)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, domain.Region("DEA"), second[0].Region)

	rest, err := ext.ExtractBatch(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, rest)
}

func TestImport_EndToEnd(t *testing.T) {
	l := newImportLayout(t)
	writeInput(t, l, "DE1", "0100.csv", goodSeries)
	writeInput(t, l, "DE1", "0100_meta.csv", "Messstelle,Gewässer\n0100,Rhein\n")
	writeInput(t, l, "DE1", "0200.csv", gappedSeries)
	writeInput(t, l, "DE2", "0300.csv", goodSeries)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()
	maps, err := mapping.Open(l, logger, metrics)
	require.NoError(t, err)
	stations := station.NewManager(l, maps, logger, metrics)

	ldr := &mockLoader{}
	p := pipeline.New(
		pipeline.NewDirExtractor(l),
		pipeline.NewTransformer(maps, stations, true, logger),
		ldr, logger, metrics, 10,
	)
	sum, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Extracted)
	assert.Equal(t, 2, sum.Imported)
	assert.Equal(t, 1, sum.Failed)

	// The gapped station is still registered even though its series failed.
	id, err := maps.Lookup("0200")
	require.NoError(t, err)
	assert.Equal(t, domain.NutsID("DE101010"), id)

	st, err := stations.Open("0100")
	require.NoError(t, err)
	assert.Equal(t, domain.NutsID("DE101000"), st.ID())
	series, err := st.LoadSeries()
	require.NoError(t, err)
	assert.Equal(t, 3, series.Len())
	assert.Nil(t, series.Observations[2].DischargeVolObs)

	raw, err := st.LoadRawMetadata()
	require.NoError(t, err)
	assert.Equal(t, []string{"Messstelle", "Gewässer"}, raw.Header)

	st3, err := stations.Open("0300")
	require.NoError(t, err)
	assert.Equal(t, domain.NutsID("DE201000"), st3.ID())

	kinds := map[domain.ChangeKind]int{}
	for _, b := range ldr.batches {
		for _, ev := range b {
			kinds[ev.Kind]++
		}
	}
	assert.Equal(t, 3, kinds[domain.ChangeMappingRegistered])
	assert.Equal(t, 2, kinds[domain.ChangeSeriesSaved])
	assert.Equal(t, 1, kinds[domain.ChangeRawMetadataSaved])
}

func TestTransform_UnknownProviderWithoutAddMissing(t *testing.T) {
	l := newImportLayout(t)
	writeInput(t, l, "DE1", "0100.csv", goodSeries)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()
	maps, err := mapping.Open(l, logger, metrics)
	require.NoError(t, err)

	tfm := pipeline.NewTransformer(maps, station.NewManager(l, maps, logger, metrics), false, logger)
	dir, err := l.InputPath("DE1")
	require.NoError(t, err)

	events, err := tfm.Transform(context.Background(), domain.StationInput{
		Region:     "DE1",
		ProviderID: "0100",
		DataPath:   filepath.Join(dir, "0100.csv"),
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, events)
	assert.Empty(t, maps.Entries())
}
