// Package web exposes the import pipeline over a JSON HTTP API.
//
// Three operations are offered: a dry-run validation preview, a full import
// from pasted text or a JSON grid, and a full import from an uploaded XLSX
// workbook. Rendering is the caller's concern; every response is JSON.
package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/finvolo/ledger/internal/config"
	"github.com/finvolo/ledger/internal/importer"
	"github.com/finvolo/ledger/internal/logging"
)

// Server is the HTTP server for the bulk-import API.
type Server struct {
	importer *importer.Importer
	runs     importer.RunStore
	cfg      *config.Config
	limiter  *importLimiter
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a Server around the given importer. runs may be nil, in
// which case no audit trail is written and the history endpoint returns
// empty results.
func NewServer(imp *importer.Importer, runs importer.RunStore, cfg *config.Config) *Server {
	s := &Server{
		importer: imp,
		runs:     runs,
		cfg:      cfg,
		limiter:  newImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.AcquireWait),
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(requestLogger)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api/import", func(r chi.Router) {
		r.Post("/validate", s.handleValidate)
		r.Post("/", s.handleImport)
		r.Post("/xlsx", s.handleImportXLSX)
		r.Get("/history", s.handleHistory)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("server listening", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight imports to
// finish before closing listeners.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.limiter.drain(ctx); err != nil {
		slog.Warn("shutdown with imports still in flight", "active", s.limiter.activeCount())
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// requestLogger logs each request with its id, method, path and status.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logging.FromContext(r.Context()).Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
		)
	})
}
