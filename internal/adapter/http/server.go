// Package http serves health probes, metrics, and a read-only view of the
// dataset.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/camels-de1h/internal/chart"
	"github.com/couchcryptid/camels-de1h/internal/domain"
	"github.com/couchcryptid/camels-de1h/internal/mapping"
	"github.com/couchcryptid/camels-de1h/internal/station"
)

// Mapping is the read side of the NUTS ID mapping.
type Mapping interface {
	Classify(identifier string) mapping.Resolution
	Entries() []domain.MappingEntry
}

// Stations opens station records by NUTS ID or provider ID.
type Stations interface {
	Open(identifier string) (*station.Station, error)
}

// Catalog lists the global metadata index.
type Catalog interface {
	All() ([]domain.Metadata, error)
}

// Dataset bundles the read-only views the API serves.
type Dataset struct {
	Mapping  Mapping
	Stations Stations
	Catalog  Catalog
}

// Server exposes health, readiness, metrics, and dataset endpoints.
type Server struct {
	httpServer *http.Server
	data       Dataset
	charts     *pageCache
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and the
// /api/v1 routes. Up to chartCacheSize rendered charts are kept in memory.
func NewServer(addr string, ready sharedobs.ReadinessChecker, data Dataset, chartCacheSize int, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		data:   data,
		charts: newPageCache(chartCacheSize),
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/v1/mapping", s.handleMappingList)
	mux.HandleFunc("GET /api/v1/mapping/{id}", s.handleMapping)
	mux.HandleFunc("GET /api/v1/metadata", s.handleMetadataList)
	mux.HandleFunc("GET /api/v1/stations/{id}/metadata", s.handleStationMetadata)
	mux.HandleFunc("GET /api/v1/stations/{id}/chart", s.handleStationChart)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type resolutionResponse struct {
	NutsID     domain.NutsID `json:"nuts_id"`
	ProviderID string        `json:"provider_id"`
	MatchedAs  string        `json:"matched_as"`
}

func (s *Server) handleMappingList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.data.Mapping.Entries())
}

func (s *Server) handleMapping(w http.ResponseWriter, r *http.Request) {
	res := s.data.Mapping.Classify(r.PathValue("id"))
	if res.As == mapping.NotFound {
		s.writeError(w, r, domain.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, resolutionResponse{
		NutsID:     res.NutsID,
		ProviderID: res.ProviderID,
		MatchedAs:  res.As.String(),
	})
}

func (s *Server) handleMetadataList(w http.ResponseWriter, r *http.Request) {
	rows, err := s.data.Catalog.All()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleStationMetadata(w http.ResponseWriter, r *http.Request) {
	st, err := s.data.Stations.Open(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	md, err := st.LoadMetadata()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, md)
}

func (s *Server) handleStationChart(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = string(chart.KindBoth)
	}
	k, err := chart.ParseKind(kind)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	st, err := s.data.Stations.Open(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	digest, err := st.SeriesDigest()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// Rewritten series data changes the key, so stale pages age out.
	key := fmt.Sprintf("%s|%s|%s", st.ID(), k, digest)
	body, ok := s.charts.get(key)
	if !ok {
		line, err := st.RenderChart(string(k))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		var buf bytes.Buffer
		if err := line.Render(&buf); err != nil {
			s.writeError(w, r, err)
			return
		}
		body = buf.Bytes()
		s.charts.put(key, body)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body) //nolint:errcheck // client went away
}

// statusOf maps dataset errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
