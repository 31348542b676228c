// Package server serves the documentation site locally together with a
// JSON search API over the current document collection.
package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/f4ah6o/nyte-docs-go/internal/search"
	"github.com/f4ah6o/nyte-docs-go/internal/site"
)

// Server is the local preview server.
type Server struct {
	engine atomic.Pointer[search.Engine]
	config *site.Config
	logger *zap.Logger

	mu     sync.Mutex
	server *http.Server
}

// New creates a server over docs. A nil logger disables logging.
func New(cfg *site.Config, docs []search.Document, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{config: cfg, logger: logger}
	s.engine.Store(search.NewEngine(docs))
	return s
}

// Reload replaces the document collection. Requests already running keep
// the collection they started with.
func (s *Server) Reload(docs []search.Document) {
	s.engine.Store(search.NewEngine(docs))
	s.logger.Info("documents reloaded", zap.Int("documents", len(docs)))
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/api/search", s.handleSearch)
	r.Get("/api/documents", s.handleDocuments)
	r.Get("/health", s.handleHealth)
	r.NotFound(s.staticHandler().ServeHTTP)
	return r
}

// Addr returns the listen address from the configuration.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := s.Addr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()

	s.logger.Info("Starting server", zap.String("addr", addr), zap.String("static_dir", s.config.StaticDir))
	return srv.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv != nil {
		return srv.Shutdown(ctx)
	}
	return nil
}

// staticHandler serves StaticDir. When the base URL has a path, e.g.
// https://host/nyte, the site is mounted under it and "/" redirects there.
func (s *Server) staticHandler() http.Handler {
	dir := s.config.StaticDir
	if dir == "" {
		return http.NotFoundHandler()
	}
	if _, err := os.Stat(dir); err != nil {
		s.logger.Warn("static directory unavailable", zap.String("dir", dir), zap.Error(err))
		return http.NotFoundHandler()
	}

	fs := http.FileServer(http.Dir(dir))
	prefix := basePath(s.config.BaseURL)
	if prefix == "" {
		return fs
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, prefix+"/", http.StatusFound)
			return
		}
		if r.URL.Path == prefix || strings.HasPrefix(r.URL.Path, prefix+"/") {
			http.StripPrefix(prefix, fs).ServeHTTP(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	})
}

func basePath(baseURL string) string {
	if baseURL == "" {
		return ""
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	return strings.TrimRight(u.Path, "/")
}
