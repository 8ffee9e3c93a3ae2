package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/camels-de1h/internal/adapter/http"
	"github.com/couchcryptid/camels-de1h/internal/domain"
	"github.com/couchcryptid/camels-de1h/internal/layout"
	"github.com/couchcryptid/camels-de1h/internal/mapping"
	"github.com/couchcryptid/camels-de1h/internal/observability"
	"github.com/couchcryptid/camels-de1h/internal/station"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type failingCatalog struct{}

func (failingCatalog) All() ([]domain.Metadata, error) { return nil, fmt.Errorf("disk on fire") }

type testEnv struct {
	layout   layout.Layout
	maps     *mapping.Service
	stations *station.Manager
	data     httpadapter.Dataset
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	l := layout.New(filepath.Join(dir, "in"), filepath.Join(dir, "out"))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()

	maps, err := mapping.Open(l, logger, metrics)
	require.NoError(t, err)
	stations := station.NewManager(l, maps, logger, metrics)
	return &testEnv{
		layout:   l,
		maps:     maps,
		stations: stations,
		data:     httpadapter.Dataset{Mapping: maps, Stations: stations, Catalog: stations.Index()},
	}
}

func newTestServer(t *testing.T, readyErr error) (*httpadapter.Server, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	srv := httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, env.data, 8, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return srv, env
}

func get(srv http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	assert.Equal(t, http.StatusOK, get(srv, "/healthz").Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	assert.Equal(t, http.StatusOK, get(srv, "/readyz").Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv, _ := newTestServer(t, fmt.Errorf("not ready yet"))
	rec := get(srv, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not ready yet")
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := get(srv, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestMappingEndpoint(t *testing.T) {
	srv, env := newTestServer(t, nil)
	id, err := env.maps.Register("0100", "DE1")
	require.NoError(t, err)

	for _, ident := range []string{"0100", string(id)} {
		rec := get(srv, "/api/v1/mapping/"+ident)
		require.Equal(t, http.StatusOK, rec.Code, ident)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "DE101000", body["nuts_id"])
		assert.Equal(t, "0100", body["provider_id"])
	}

	rec := get(srv, "/api/v1/mapping/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(srv, "/api/v1/mapping")
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []domain.MappingEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.Equal(t, []domain.MappingEntry{{ProviderID: "0100", NutsID: "DE101000"}}, entries)
}

func TestStationMetadataEndpoint(t *testing.T) {
	srv, env := newTestServer(t, nil)
	_, err := env.maps.Register("0100", "DE1")
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, get(srv, "/api/v1/stations/0100/metadata").Code)
	assert.Equal(t, http.StatusNotFound, get(srv, "/api/v1/stations/9999/metadata").Code)

	st, err := env.stations.Open("0100")
	require.NoError(t, err)
	require.NoError(t, st.SaveMetadata(domain.Metadata{GaugeName: domain.Ptr("Achern"), Lat: domain.Ptr(48.6)}))

	rec := get(srv, "/api/v1/stations/0100/metadata")
	require.Equal(t, http.StatusOK, rec.Code)
	var md domain.Metadata
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &md))
	assert.Equal(t, "DE101000", md.Key())
	assert.Equal(t, "Achern", *md.GaugeName)
	assert.Nil(t, md.Lon)

	rec = get(srv, "/api/v1/metadata")
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []domain.Metadata
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	assert.Len(t, rows, 1)
}

func TestStationChartEndpoint(t *testing.T) {
	srv, env := newTestServer(t, nil)
	_, err := env.maps.Register("0100", "DE1")
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, get(srv, "/api/v1/stations/0100/chart").Code)

	st, err := env.stations.Open("0100")
	require.NoError(t, err)
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = st.SaveSeries(&domain.Frame{Dates: []time.Time{start, start.Add(time.Hour)}})
	require.NoError(t, err)

	rec := get(srv, "/api/v1/stations/DE101000/chart")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "echarts")

	assert.Equal(t, http.StatusBadRequest, get(srv, "/api/v1/stations/0100/chart?kind=temperature").Code)

	cached := get(srv, "/api/v1/stations/0100/chart?kind=both")
	require.Equal(t, http.StatusOK, cached.Code)
	assert.Equal(t, rec.Body.String(), cached.Body.String(), "second request is served from the cache")
}

func TestStationChartEndpoint_RewriteWithSameModTime(t *testing.T) {
	srv, env := newTestServer(t, nil)
	_, err := env.maps.Register("0100", "DE1")
	require.NoError(t, err)
	st, err := env.stations.Open("0100")
	require.NoError(t, err)

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	save := func(q float64) {
		t.Helper()
		_, err := st.SaveSeries(&domain.Frame{
			Dates:   []time.Time{start},
			Columns: []domain.Column{{Name: domain.ColumnDischargeVolObs, Values: []*float64{&q}}},
		})
		require.NoError(t, err)
	}

	save(111.25)
	first := get(srv, "/api/v1/stations/DE101000/chart?kind=discharge")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Contains(t, first.Body.String(), "111.25")

	path := env.layout.DataFile("DE101000")
	info, err := os.Stat(path)
	require.NoError(t, err)

	// Same file size and, on a coarse clock, the same mtime.
	save(777.75)
	require.NoError(t, os.Chtimes(path, info.ModTime(), info.ModTime()))

	second := get(srv, "/api/v1/stations/DE101000/chart?kind=discharge")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Contains(t, second.Body.String(), "777.75")
	assert.NotContains(t, second.Body.String(), "111.25")
}

func TestInternalErrorReturns500(t *testing.T) {
	env := newTestEnv(t)
	env.data.Catalog = failingCatalog{}
	srv := httpadapter.NewServer(":0", &mockReadiness{}, env.data, 8, slog.New(slog.NewTextHandler(io.Discard, nil)))

	rec := get(srv, "/api/v1/metadata")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "disk on fire")
}
