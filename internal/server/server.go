// Package server exposes the health probe and the Telegram webhook receiver.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/yeabuddy/core/logger"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "YeaBuddy Bot"

// SecretTokenHeader carries the secret Telegram echoes back on every webhook call.
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

const maxUpdateBytes = 1 << 20

// UpdateProcessor handles one decoded update. *tele.Bot satisfies it.
type UpdateProcessor interface {
	ProcessUpdate(u tele.Update)
}

// Options configure the routes.
type Options struct {
	// WebhookPath defaults to "/webhook".
	WebhookPath string
	// SecretToken, when set, must match SecretTokenHeader.
	SecretToken string
	Now         func() time.Time
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	proc   UpdateProcessor
	opts   Options
	router chi.Router
}

// New creates a Server with all routes configured.
func New(proc UpdateProcessor, opts Options) *Server {
	if opts.WebhookPath == "" {
		opts.WebhookPath = "/webhook"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Server{proc: proc, opts: opts, router: chi.NewRouter()}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging)
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	s.router.Get("/health", s.handleHealth)
	s.router.With(SecretToken(s.opts.SecretToken)).Post(s.opts.WebhookPath, s.handleWebhook)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, logger.ComponentHTTP, "listen", slog.String("addr", addr), slog.String("path", s.opts.WebhookPath))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info(ctx, logger.ComponentHTTP, "stopped")
	return nil
}
