// Package server wires the push relay: subscription registry, dispatcher,
// live hub and HTTP routes.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dukerupert/tally/internal/clock"
	"github.com/dukerupert/tally/internal/handler"
	"github.com/dukerupert/tally/internal/middleware"
	"github.com/dukerupert/tally/internal/push"
	"github.com/dukerupert/tally/internal/reminder"
	"github.com/dukerupert/tally/internal/store"
	ws "github.com/dukerupert/tally/internal/websocket"
)

// Send-push budget per client IP.
const (
	SendPushLimit  = 30
	SendPushWindow = time.Minute
)

// Config holds relay settings.
type Config struct {
	VAPIDPublicKey string
	// RemindInterval enables a server-side reminder broadcast when positive.
	RemindInterval time.Duration
}

type Server struct {
	cfg         Config
	registry    *store.SubscriptionRegistry
	hub         *ws.Hub
	dispatcher  *push.Dispatcher
	relayH      *handler.RelayHandler
	rateLimiter *middleware.RateLimiter
	scheduler   *reminder.Scheduler
	logger      *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a relay over registry. sender delivers each push; production
// passes a *push.Service.
func New(cfg Config, registry *store.SubscriptionRegistry, sender push.Sender, clk clock.Clock, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))
	dispatcher := push.NewDispatcher(registry, sender, hub, logger.With("component", "push"))

	return &Server{
		cfg:         cfg,
		registry:    registry,
		hub:         hub,
		dispatcher:  dispatcher,
		relayH:      handler.NewRelayHandler(registry, dispatcher, cfg.VAPIDPublicKey, logger.With("component", "relay")),
		rateLimiter: middleware.NewRateLimiter(clk, SendPushLimit, SendPushWindow),
		scheduler:   reminder.NewScheduler(clk, logger.With("component", "reminder")),
		logger:      logger,
	}
}

// Dispatcher returns the broadcast dispatcher.
func (s *Server) Dispatcher() *push.Dispatcher {
	return s.dispatcher
}

// Hub returns the live websocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// Start runs background work: rate limiter cleanup and, when configured, the
// reminder loop.
func (s *Server) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		s.rateLimiter.Run(ctx)
	}()

	if s.cfg.RemindInterval <= 0 {
		return nil
	}
	s.logger.Info("server reminders enabled", "interval", s.cfg.RemindInterval)
	return s.scheduler.Start(s.cfg.RemindInterval, func(time.Time) {
		s.dispatcher.Broadcast(ctx, push.Payload{
			Title: push.DefaultTitle,
			Body:  push.DefaultMessage,
		})
	})
}

// Stop halts background work started by Start.
func (s *Server) Stop() {
	s.scheduler.Stop()
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(s.logger.With("component", "http")))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))
	r.MethodNotAllowed(handler.MethodNotAllowed)

	r.Get("/health", s.relayH.Health)
	r.Get("/ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))

	r.Route("/api", func(r chi.Router) {
		r.Post("/save-subscription", s.relayH.SaveSubscription)
		r.Post("/remove-subscription", s.relayH.RemoveSubscription)
		r.With(middleware.RateLimit(s.rateLimiter)).Post("/send-push", s.relayH.SendPush)
		r.Get("/vapid-public-key", s.relayH.VAPIDPublicKey)
	})

	return r
}
