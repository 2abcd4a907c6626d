package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lazypower/aria/internal/aria"
	"github.com/lazypower/aria/internal/store"
)

// Server is the aria HTTP API server — a thin transport wrapping an
// *aria.Engine, the way spec.md expects a caller to wire a chat system
// to the core.
type Server struct {
	engine   *aria.Engine
	db       *store.DB
	metrics  *metrics
	registry *prometheus.Registry
	router   chi.Router
	version  string
	started  time.Time
}

// New creates a new Server backed by db and version string. Each Server
// gets its own prometheus.Registry rather than sharing the package-level
// default, so a process (or test binary) can construct more than one
// Server without a duplicate-collector-registration panic.
func New(db *store.DB, version string) *Server {
	return newServer(db, aria.DefaultTuning(), version)
}

// NewWithTuning is New but with caller-supplied tuning, for deployments
// loading internal/config overrides.
func NewWithTuning(db *store.DB, tuning aria.Tuning, version string) *Server {
	return newServer(db, tuning, version)
}

func newServer(db *store.DB, tuning aria.Tuning, version string) *Server {
	reg := prometheus.NewRegistry()
	s := &Server{
		engine:   aria.New(db, tuning),
		db:       db,
		metrics:  newMetrics(reg),
		registry: reg,
		version:  version,
		started:  time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}).ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/messages", s.handleMessages)
		r.Post("/responses", s.handleResponses)
		r.Get("/stats", s.handleStats)
		r.Get("/search", s.handleSearch)
		r.Get("/tokens/{token}", s.handleTokenStats)
		r.Get("/categories/{category}", s.handleTokensByCategory)
		r.Get("/pairs/top", s.handleTopPairs)
		r.Get("/chains/{word}", s.handleChains)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
	})
}
