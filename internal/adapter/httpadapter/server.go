package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tonytillet/lumen-indicators/internal/domain"
)

// SnapshotSource computes indicator snapshots on demand. The zero time
// selects the latest data.
type SnapshotSource interface {
	Snapshot(asOf time.Time) domain.Snapshot
	Params() domain.Params
}

// Server exposes health, readiness, metrics, and indicator HTTP endpoints.
type Server struct {
	httpServer *http.Server
	snapshots  SnapshotSource
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// /indicators routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, snapshots SnapshotSource, logger *slog.Logger) *Server {
	r := chi.NewRouter()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		snapshots: snapshots,
		logger:    logger,
	}

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(ready))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/indicators", func(r chi.Router) {
		r.Get("/", s.handleSnapshot)
		r.Get("/regions", s.handleRegions)
		r.Get("/regions/{region}", s.handleRegion)
		r.Get("/params", s.handleParams)
	})

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

type regionsResponse struct {
	AsOf           string                    `json:"as_of"`
	WeightsVersion string                    `json:"weights_version"`
	Regions        []domain.RegionIndicators `json:"regions"`
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshotFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshotFor(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, regionsResponse{
		AsOf:           snap.AsOf.Format(time.DateOnly),
		WeightsVersion: snap.WeightsVersion,
		Regions:        snap.Regions,
	})
}

func (s *Server) handleRegion(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "region"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid region")
		return
	}

	snap, ok := s.snapshotFor(w, r)
	if !ok {
		return
	}
	region, found := snap.Region(name)
	if !found {
		writeError(w, http.StatusNotFound, "unknown region: "+name)
		return
	}
	writeJSON(w, http.StatusOK, region)
}

func (s *Server) handleParams(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshots.Params())
}

// snapshotFor resolves the optional as_of query parameter and computes the
// matching snapshot. It writes a 400 response and returns false on bad input.
func (s *Server) snapshotFor(w http.ResponseWriter, r *http.Request) (domain.Snapshot, bool) {
	var asOf time.Time
	if v := r.URL.Query().Get("as_of"); v != "" {
		parsed, err := time.Parse(time.DateOnly, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "as_of must be YYYY-MM-DD")
			return domain.Snapshot{}, false
		}
		asOf = parsed
	}
	return s.snapshots.Snapshot(asOf), true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
