// Package server exposes the bot over HTTP: the Telegram webhook, the
// notification trigger, the next pay date and an iCalendar feed.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ivancheban/salary-bot/internal/bot"
	"github.com/ivancheban/salary-bot/internal/config"
	"github.com/ivancheban/salary-bot/internal/engine"
)

// Bot is the delivery surface driven by the handlers.
type Bot interface {
	HandleUpdate(ctx context.Context, u tgbotapi.Update) error
	NotifyDaily(ctx context.Context) (bot.NotifyResult, error)
	Next() (engine.SalaryDate, string, error)
}

// Server serves the HTTP routes and the last published calendar feed.
type Server struct {
	Addr string
	bot  Bot
	feed atomic.Pointer[feedSnapshot]
}

// New creates a server listening on addr.
func New(addr string, b Bot) *Server {
	return &Server{Addr: addr, bot: b}
}

// Router builds the chi router with the middleware stack and every route.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodHead},
	}))

	r.Post(config.RouteRoot, s.handleDispatch)
	r.Post(config.RouteWebhook, s.handleWebhook)
	r.Post(config.RouteNotify, s.handleNotify)
	r.Get(config.RouteNext, s.handleNext)
	r.Get(config.RouteCalendar, s.handleCalendar)
	r.Head(config.RouteCalendar, s.handleCalendar)
	r.Get(config.RouteHealth, s.handleHealth)

	return r
}

// Start binds Addr and serves until ctx is cancelled, then drains open
// requests within the shutdown timeout. A bind failure is returned at once.
func (s *Server) Start(ctx context.Context) error {
	if s.Addr == "" {
		return fmt.Errorf("%s", config.ErrAddrRequired)
	}

	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
	slog.Info(config.MsgServerListen,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyAddr, ln.Addr().String(),
	)

	srv := &http.Server{
		Handler:      s.Router(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	select {
	case err := <-done:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	case <-ctx.Done():
	}

	slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
	}
	if err := <-done; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
	}
	return nil
}

// requestLogger logs one line per request with slog.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			slog.Info(config.MsgRequestCompleted,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyMethod, r.Method,
				config.LogKeyPath, r.URL.Path,
				config.LogKeyStatus, ww.Status(),
				config.LogKeyRequestID, middleware.GetReqID(r.Context()),
				config.LogKeyDuration, time.Since(start).Milliseconds(),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
