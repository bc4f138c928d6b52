package api

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"incidents-dashboard/api/handlers"
	"incidents-dashboard/config"
	"incidents-dashboard/core/access"
	"incidents-dashboard/core/shell"
	"incidents-dashboard/core/utils"
)

// BackgroundWorker runs alongside the HTTP server for its whole lifetime.
type BackgroundWorker interface {
	StartWithContext(ctx context.Context) error
	StopWithContext(ctx context.Context) error
}

type ServerDeps struct {
	Shells    *shell.Registry
	Access    *access.Enforcer
	Templates *template.Template
	Schema    handlers.VersionFunc
}

type Server struct {
	cfg       *config.AppConfig
	logger    *utils.Logger
	shells    *shell.Registry
	access    *access.Enforcer
	templates *template.Template
	schema    handlers.VersionFunc
	limiter   *requestLimiter
	activity  sessionActivity
	workers   []BackgroundWorker
	router    chi.Router
}

func NewServer(cfg *config.AppConfig, deps ServerDeps, logger *utils.Logger, workers ...BackgroundWorker) *Server {
	capacity, window := 5, time.Minute
	if cfg != nil && cfg.Security.LoginRateCapacity > 0 {
		capacity = cfg.Security.LoginRateCapacity
	}
	if cfg != nil && cfg.Security.LoginRateWindow > 0 {
		window = cfg.Security.LoginRateWindow
	}
	s := &Server{
		cfg:       cfg,
		logger:    logger,
		shells:    deps.Shells,
		access:    deps.Access,
		templates: deps.Templates,
		schema:    deps.Schema,
		limiter:   newLimiter(capacity, window),
		workers:   workers,
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts the server and workers down.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	for _, w := range s.workers {
		if err := w.StartWithContext(ctx); err != nil {
			return err
		}
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("listening on %s tls=%t", s.cfg.ListenAddr, s.cfg.TLSEnabled)
		var err error
		if s.cfg.TLSEnabled {
			err = srv.ListenAndServeTLS(s.cfg.TLSCert, s.cfg.TLSKey)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Errorf("http shutdown: %v", err)
	}
	for _, w := range s.workers {
		if err := w.StopWithContext(shutdownCtx); err != nil {
			s.logger.Errorf("worker stop: %v", err)
		}
	}
	return serveErr
}
