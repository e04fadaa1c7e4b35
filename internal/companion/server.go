// Package companion is the web app that turns pasted text into bookmark
// data, plus a client for it.
package companion

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/nikbrunner/bmc/internal/logger"
	"github.com/nikbrunner/bmc/internal/storage"
)

// AnalyticsLimit caps recent_activity in /analytics.
const AnalyticsLimit = 50

// ActivityStore records conversions and reports usage.
type ActivityStore interface {
	RecordActivity(ctx context.Context, a storage.Activity) error
	Stats(ctx context.Context, limit int) (storage.Stats, error)
}

// Deps are the collaborators of the server.
type Deps struct {
	Logger   logger.Logger
	Activity ActivityStore
	Version  string
	Now      func() time.Time
}

// Server wraps the HTTP server and its dependencies.
type Server struct {
	http    *http.Server
	handler http.Handler
	log     logger.Logger
}

// New builds the router and the HTTP server.
func New(cfg Config, d Deps) *Server {
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = os.TempDir()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}

	h := &handlers{
		log:         d.Logger,
		activity:    d.Activity,
		downloadDir: cfg.DownloadDir,
		version:     d.Version,
		started:     d.Now(),
		now:         d.Now,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(accessLog(d.Logger))

	r.Get("/healthz", h.healthz)
	r.Post("/convert", h.convert)
	r.Get("/download/{name}", h.download)
	r.Post("/add-to-browser", h.addToBrowser)
	r.Get("/analytics", h.analytics)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	handler := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept"},
	}).Handler(r)

	return &Server{
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
		handler: handler,
		log:     d.Logger,
	}
}

// Handler returns the root handler, middlewares included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start runs the HTTP server (blocks until error or shutdown).
func (s *Server) Start() error {
	s.log.Infof("HTTP server listening on %s", s.http.Addr)
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server with the provided context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("HTTP server shutting down...")
	return s.http.Shutdown(ctx)
}
