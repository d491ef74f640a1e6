// Package server provides the HTTP API for the ragchat service.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/advenoh/ragchat/internal/analytics"
	"github.com/advenoh/ragchat/internal/config"
	"github.com/advenoh/ragchat/internal/feedback"
	"github.com/advenoh/ragchat/internal/indexer"
	"github.com/advenoh/ragchat/internal/llm"
	"github.com/advenoh/ragchat/internal/rag"
)

// RetrieverFactory builds a retriever scoped to one request's blog collection.
// The underlying vector store client is cheap to construct, so each request
// gets a fresh one.
type RetrieverFactory func(blogID string) rag.Retriever

// Server is the HTTP server for the ragchat API.
type Server struct {
	config     *config.Config
	indexer    *indexer.Indexer
	llm        llm.Client
	retrievers RetrieverFactory
	// analytics is nil when no database is configured; persistence and the
	// dashboard are then disabled, never a startup failure.
	analytics analytics.Repository
	forwarder *feedback.Forwarder
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies. repo may be nil.
func NewServer(
	cfg *config.Config,
	idx *indexer.Indexer,
	client llm.Client,
	retrievers RetrieverFactory,
	repo analytics.Repository,
	forwarder *feedback.Forwarder,
	logger *zap.Logger,
) *Server {
	return &Server{
		config:     cfg,
		indexer:    idx,
		llm:        client,
		retrievers: retrievers,
		analytics:  repo,
		forwarder:  forwarder,
		logger:     logger,
	}
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Post("/chat", s.handleChat)
	r.Post("/index/{blog_id}", s.handleIndex)
	r.Post("/feedback", s.handleFeedback)
	r.Get("/admin/stats", s.handleStats)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.routes(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
