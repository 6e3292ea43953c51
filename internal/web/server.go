// Package web provides the HTTP server and JSON handlers for the lead API.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/leadintake/internal/config"
	"github.com/JonMunkholm/leadintake/internal/core"
	"github.com/JonMunkholm/leadintake/internal/metrics"
	"github.com/JonMunkholm/leadintake/internal/web/middleware"
)

// DefaultMaxImportBytes caps an import upload when Options leaves it unset.
const DefaultMaxImportBytes = 1 << 20

// maxJSONBytes caps create and update bodies.
const maxJSONBytes = 64 << 10

// Options wires the server's collaborators. Nil limiters disable rate
// limiting; a nil MetricsHandler leaves the metrics route unmounted.
type Options struct {
	Auth           middleware.AuthOptions
	TrustedProxies []string
	RequestTimeout time.Duration
	MaxImportBytes int64

	Limiter       middleware.Limiter
	ImportLimiter middleware.Limiter

	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler
	MetricsPath    string

	// Health reports whether backing services are reachable.
	Health func(ctx context.Context) error
}

// Server is the HTTP server for the lead API.
type Server struct {
	service *core.Service
	opts    Options
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a Server with middleware and routes installed.
func NewServer(service *core.Service, opts Options) *Server {
	if opts.MaxImportBytes <= 0 {
		opts.MaxImportBytes = DefaultMaxImportBytes
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	s := &Server{
		service: service,
		opts:    opts,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.opts.TrustedProxies))
	s.router.Use(middleware.Logger(s.opts.HTTPMetrics))
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Timeout(s.opts.RequestTimeout))
	s.router.Use(securityHeaders)
	s.router.Use(requestMetadata)

	if s.opts.Limiter != nil {
		s.router.Use(middleware.RateLimit(s.opts.Limiter))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	if s.opts.MetricsHandler != nil {
		path := s.opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		s.router.Handle(path, s.opts.MetricsHandler)
	}

	s.router.Route("/api/leads", func(r chi.Router) {
		r.Use(middleware.Authenticate(s.opts.Auth))

		r.Post("/", s.handleCreateLead)
		r.Get("/", s.handleListLeads)

		r.Get("/template", s.handleDownloadTemplate)
		r.Get("/export", s.handleExportLeads)

		r.Group(func(r chi.Router) {
			if s.opts.ImportLimiter != nil {
				r.Use(middleware.RateLimit(s.opts.ImportLimiter))
			}
			r.Post("/import", s.handleImportLeads)
		})

		r.Get("/{id}", s.handleGetLead)
		r.Put("/{id}", s.handleUpdateLead)
		r.Get("/{id}/history", s.handleLeadHistory)
	})
}

// Start listens on cfg's address until Shutdown is called.
func (s *Server) Start(cfg config.ServerConfig) error {
	s.server = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	slog.Info("starting server", "addr", cfg.Addr())
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.opts.Health != nil {
		if err := s.opts.Health(r.Context()); err != nil {
			slog.Warn("health check failed", "error", err)
			writeJSONStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, map[string]string{"status": "ok"})
}
