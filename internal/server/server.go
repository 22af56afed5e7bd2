// Package server exposes the import and notification functions over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nikbrunner/dex/internal/importer"
	"github.com/nikbrunner/dex/internal/model"
	"github.com/nikbrunner/dex/internal/notify"
	"github.com/rs/zerolog/log"
)

// Importer runs batch imports.
type Importer interface {
	ImportRange(ctx context.Context, start, end int, onProgress importer.ProgressFunc) (importer.Result, error)
}

// Notifier announces entries.
type Notifier interface {
	NotifyEntry(ctx context.Context, entry model.Entry, onProgress notify.ProgressFunc) (*notify.Result, error)
}

// Config configures the listener and rate limit.
type Config struct {
	Addr      string
	RateLimit RateLimitConfig
}

// Server routes function calls to the importer and notifier.
type Server struct {
	Router   *chi.Mux
	cfg      Config
	importer Importer
	notifier Notifier
}

// New creates a Server with its routes mounted. The rate limiter's cleanup runs
// until ctx ends.
func New(ctx context.Context, cfg Config, im Importer, n Notifier) *Server {
	s := &Server{
		Router:   chi.NewRouter(),
		cfg:      cfg,
		importer: im,
		notifier: n,
	}
	s.mountHandlers(ctx)
	return s
}

func (s *Server) mountHandlers(ctx context.Context) {
	s.Router.Use(RequestLogger)
	s.Router.Use(middleware.Recoverer)
	s.Router.Use(HandleCORS)

	s.Router.Get("/healthz", s.healthz)

	s.Router.Route("/functions/v1", func(r chi.Router) {
		if s.cfg.RateLimit.RequestsPerSecond > 0 {
			r.Use(RateLimiter(ctx, s.cfg.RateLimit))
		}
		r.Post("/import-pokemon", s.importEntries)
		r.Post("/send-pokemon-notification", s.sendNotification)
	})
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Ctx(ctx).Info().Str("addr", s.cfg.Addr).Msg("functions server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Ctx(ctx).Info().Msg("functions server stopped")
	return nil
}
