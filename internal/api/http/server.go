// Package apihttp serves the Stremio addon protocol over the title catalog,
// plus the ingest, health and metrics endpoints.
package apihttp

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"mediaarchive/internal/domain"
	"mediaarchive/internal/domain/ports"
	"mediaarchive/internal/genre"
	"mediaarchive/internal/platform"
	"mediaarchive/internal/usecase"
)

const (
	DefaultAddonName = "Arşivim"
	DefaultRPS       = 100
	DefaultBurst     = 200
)

type IngestBatchUseCase interface {
	Execute(ctx context.Context, inputs []usecase.IngestInput) (usecase.BatchReport, error)
}

type ListSourcesUseCase interface {
	Execute(ctx context.Context, input usecase.ListSourcesInput) ([]domain.Source, error)
}

// HealthCheck reports whether the storage backend is reachable.
type HealthCheck func(ctx context.Context) error

// Addon describes the manifest and how stream urls are built.
type Addon struct {
	Name    string
	Version string
	// BaseURL prefixes gateway urls for locators that are not http links.
	BaseURL string
}

type Server struct {
	catalog        ports.CatalogReader
	sources        ListSourcesUseCase
	ingest         IngestBatchUseCase
	health         HealthCheck
	addon          Addon
	genres         []string
	allowedOrigins []string
	rps            float64
	burst          int
	now            func() time.Time
	logger         *slog.Logger
	handler        http.Handler
}

type ServerOption func(*Server)

func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

func WithIngest(uc IngestBatchUseCase) ServerOption {
	return func(s *Server) {
		s.ingest = uc
	}
}

func WithListSources(uc ListSourcesUseCase) ServerOption {
	return func(s *Server) {
		s.sources = uc
	}
}

func WithHealthCheck(check HealthCheck) ServerOption {
	return func(s *Server) {
		s.health = check
	}
}

func WithAddon(addon Addon) ServerOption {
	return func(s *Server) {
		s.addon = addon
	}
}

// WithGenres replaces the genre list advertised by both catalogs.
func WithGenres(genres []string) ServerOption {
	return func(s *Server) {
		s.genres = genres
	}
}

// WithAllowedOrigins configures the CORS whitelist. Empty permits any origin.
func WithAllowedOrigins(origins []string) ServerOption {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// WithRateLimit sets the global token bucket. A non-positive rps disables it.
func WithRateLimit(rps float64, burst int) ServerOption {
	return func(s *Server) {
		s.rps = rps
		s.burst = burst
	}
}

func withClock(now func() time.Time) ServerOption {
	return func(s *Server) {
		s.now = now
	}
}

func NewServer(catalog ports.CatalogReader, opts ...ServerOption) *Server {
	s := &Server{
		catalog: catalog,
		rps:     DefaultRPS,
		burst:   DefaultBurst,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.sources == nil {
		s.sources = usecase.ListSources{Repo: catalog}
	}
	if s.genres == nil {
		s.genres = genre.Catalog(platform.Platforms())
	}
	if strings.TrimSpace(s.addon.Name) == "" {
		s.addon.Name = DefaultAddonName
	}
	if s.addon.Version == "" {
		s.addon.Version = "1.0.0"
	}
	s.addon.BaseURL = strings.TrimRight(s.addon.BaseURL, "/")

	mux := http.NewServeMux()
	mux.HandleFunc("GET /stremio/manifest.json", s.handleManifest)
	mux.HandleFunc("GET /stremio/catalog/{type}/{rest...}", s.handleCatalog)
	mux.HandleFunc("GET /stremio/meta/{type}/{id}", s.handleMeta)
	mux.HandleFunc("GET /stremio/stream/{type}/{id}", s.handleStream)
	mux.HandleFunc("POST /api/ingest", s.handleIngest)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	traced := otelhttp.NewHandler(loggingMiddleware(s.logger, mux), "mediaarchive",
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/metrics" && r.URL.Path != "/health"
		}),
	)
	s.handler = recoveryMiddleware(s.logger,
		rateLimitMiddleware(s.rps, s.burst,
			metricsMiddleware(corsMiddleware(s.allowedOrigins, requestIDMiddleware(traced)))))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := s.health(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
