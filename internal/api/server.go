// Package api exposes the deck engine over a REST and WebSocket API.
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/wsloan/spellforge/internal/api/response"
	"github.com/wsloan/spellforge/internal/api/websocket"
	"github.com/wsloan/spellforge/internal/config"
	"github.com/wsloan/spellforge/internal/deck"
	"github.com/wsloan/spellforge/internal/storage"
)

// Server represents the REST API server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	port       int

	// WebSocket hub for build progress events
	wsHub *websocket.Hub

	cfg     *config.Config
	builder *deck.Builder
	books   *storage.SpellbookRepository

	// Current candidate pools; swapped atomically on reload.
	pools atomic.Pointer[deck.Pools]

	// Throttle for build requests. Nil when unlimited.
	buildLimiter *rate.Limiter
}

// NewServer creates a new API server. books may be nil to disable
// spellbook persistence.
func NewServer(cfg *config.Config, pools *deck.Pools, books *storage.SpellbookRepository) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	s := &Server{
		router:  chi.NewRouter(),
		port:    cfg.Server.Port,
		wsHub:   websocket.NewHub(),
		cfg:     cfg,
		builder: deck.NewBuilder(nil, nil),
		books:   books,
	}
	s.pools.Store(pools)

	if cfg.Server.RateLimit > 0 {
		burst := cfg.Server.RateBurst
		if burst < 1 {
			burst = 1
		}
		s.buildLimiter = rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), burst)
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Pools returns the current candidate pools.
func (s *Server) Pools() *deck.Pools {
	return s.pools.Load()
}

// SetPools swaps the candidate pools and notifies connected clients.
// Called by the database watcher after a reload.
func (s *Server) SetPools(pools *deck.Pools) {
	s.pools.Store(pools)
	s.Publish("pool.reloaded", map[string]interface{}{
		"total": len(pools.All()),
	})
}

// Publish broadcasts an event to WebSocket clients.
func (s *Server) Publish(eventType string, data interface{}) {
	s.wsHub.BroadcastEvent(websocket.Event{Type: eventType, Data: data})
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	// Request ID for tracing
	s.router.Use(middleware.RequestID)

	// Real IP detection
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(middleware.Logger)

	// Panic recovery
	s.router.Use(middleware.Recoverer)

	// Request timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Content-Type enforcement for POST/PUT/PATCH only (not GET/DELETE/OPTIONS)
	s.router.Use(s.jsonContentTypeMiddleware)
}

// jsonContentTypeMiddleware enforces application/json content-type for requests with bodies.
func (s *Server) jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if contentType == "" || (contentType != "application/json" && !strings.HasPrefix(contentType, "application/json;")) {
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// buildThrottleMiddleware limits build request throughput. Builds are
// CPU-bound; the limiter sheds load instead of queuing it.
func (s *Server) buildThrottleMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.buildLimiter != nil && !s.buildLimiter.Allow() {
			response.TooManyRequests(w, fmt.Errorf("build rate limit exceeded, retry later"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Start starts the API server in a goroutine.
func (s *Server) Start() error {
	// Start WebSocket hub
	go s.wsHub.Run()

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Printf("API server starting on port %d", s.port)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("API server error: %v", err)
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.wsHub.Stop()
	if s.httpServer == nil {
		return nil
	}

	log.Println("Shutting down API server...")
	return s.httpServer.Shutdown(ctx)
}

// Port returns the port the server is configured to listen on.
func (s *Server) Port() int {
	return s.port
}

// Router returns the configured router, mainly for tests.
func (s *Server) Router() chi.Router {
	return s.router
}

// WebSocketHub returns the WebSocket hub for external integration.
func (s *Server) WebSocketHub() *websocket.Hub {
	return s.wsHub
}
