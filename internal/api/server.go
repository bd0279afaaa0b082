package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/oelgazzar/nidgate/internal/api/handler"
	mw "github.com/oelgazzar/nidgate/internal/api/middleware"
	"github.com/oelgazzar/nidgate/internal/config"
	"github.com/oelgazzar/nidgate/internal/core"
	"github.com/oelgazzar/nidgate/internal/ratelimit"
)

type Server struct {
	router  chi.Router
	logger  zerolog.Logger
	clients *core.ClientService
	usage   *core.UsageService
	pool    *pgxpool.Pool
	limiter ratelimit.Limiter
	tracker *mw.Tracker
	cfg     *config.Config
}

func NewServer(logger zerolog.Logger, pool *pgxpool.Pool, limiter ratelimit.Limiter, cfg *config.Config) *Server {
	clients := core.NewClientService(pool, logger)
	usage := core.NewUsageService(pool, logger)

	s := &Server{
		router:  chi.NewRouter(),
		logger:  logger,
		clients: clients,
		usage:   usage,
		pool:    pool,
		limiter: limiter,
		tracker: mw.NewTracker(usage, logger),
		cfg:     cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	// Health check endpoints
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Identity(s.clients, s.logger))
		// The limiter answers rejected requests itself, so they never reach
		// the tracker below and leave no usage rows.
		r.Use(mw.RateLimit(s.limiter, s.logger))
		r.Use(s.tracker.Middleware)

		// Client registration stays open so new consumers can obtain a key.
		client := handler.NewClient(s.clients, s.logger)
		r.Post("/clients", client.Create)
		r.Get("/clients", client.List)
		r.Get("/clients/{id}", client.Get)
		r.Delete("/clients/{id}", client.Delete)

		// Validation and the usage listing need a resolved client.
		nationalID := handler.NewNationalID(s.logger)
		usage := handler.NewUsage(s.usage, s.logger)
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireClient)

			r.Post("/nid-egypt", nationalID.Validate)
			r.Post("/nid-egypt/bulk", nationalID.BulkValidate)

			r.Get("/usage", usage.List)
		})
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := s.pool.Ping(ctx); err != nil {
		checks["db"] = err.Error()
		healthy = false
	} else {
		checks["db"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

// Close flushes the usage tracker. Call it after the HTTP server has
// stopped accepting requests.
func (s *Server) Close() {
	s.tracker.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
