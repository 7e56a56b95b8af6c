// Package server implements the citewatch read-only reporting API.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rankbeam/citewatch/internal/provider"
	"github.com/rankbeam/citewatch/internal/server/handlers"
)

// Server is the citewatch HTTP API server.
type Server struct {
	router chi.Router
	addr   string
	srv    *http.Server
	logger *slog.Logger
}

// New creates a new HTTP server. apiKey, when non-empty, is required in the
// X-API-Key header for all routes except health.
func New(addr, apiKey string, store provider.Store, history handlers.HistoryReader) *Server {
	s := &Server{
		addr:   addr,
		logger: slog.Default(),
	}

	h := handlers.New(store, history)

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Content-Type", "application/json"))
	r.Use(APIKeyMiddleware(apiKey))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/targets", h.ListTargets)
		r.Get("/targets/{id}", h.GetTarget)
		r.Get("/targets/{id}/runs", h.ListRuns)
		r.Get("/targets/{id}/history", h.History)
	})

	s.router = r
	return s
}

// Handler exposes the router, used by tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	s.logger.Info("citewatch api listening", "addr", s.addr)
	return s.srv.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}
