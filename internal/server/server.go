// Package server provides the HTTP API for Querio.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/querio/querio/internal/chat"
	"github.com/querio/querio/internal/config"
	"github.com/querio/querio/internal/documents"
	"github.com/querio/querio/internal/vectorstore"
)

// Version is reported by the health and root endpoints.
const Version = "1.0.0"

// Server is the HTTP server for the Querio API.
type Server struct {
	docs     *documents.Registry
	sessions *chat.Registry
	store    *vectorstore.Store
	config   *config.ServerConfig
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	docs *documents.Registry,
	sessions *chat.Registry,
	store *vectorstore.Store,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		docs:     docs,
		sessions: sessions,
		store:    store,
		config:   cfg,
		logger:   logger,
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(180 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/", s.handleRoot)

	r.Post("/api/query", s.handleQuery)

	r.Post("/api/chat", s.handleChat)
	r.Get("/api/chat/sessions", s.handleListSessions)
	r.Post("/api/chat/sessions", s.handleCreateSession)
	r.Get("/api/chat/sessions/{id}", s.handleGetSession)
	r.Delete("/api/chat/sessions/{id}", s.handleDeleteSession)
	r.Get("/api/chat/sessions/{id}/history", s.handleSessionHistory)

	r.Post("/api/documents/upload", s.handleUpload)
	r.Post("/api/documents/bulk-upload", s.handleBulkUpload)
	r.Get("/api/documents", s.handleListDocuments)
	r.Get("/api/documents/{id}", s.handleGetDocument)
	r.Delete("/api/documents/{id}", s.handleDeleteDocument)
	r.Post("/api/documents/process", s.handleProcess)

	r.Post("/api/search", s.handleSearch)
	r.Post("/api/search/similar", s.handleSearch)
	r.Post("/api/search/keyword", s.handleKeywordSearch)

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/stats", s.handleStats)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
