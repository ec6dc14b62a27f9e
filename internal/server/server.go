// Package server provides the HTTP host for the chat engine: routing,
// middleware, and handlers. Transport concerns live here; the engine never
// sees an http.Request.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Motiontography/motiontography-bot/internal/chat"
	"github.com/Motiontography/motiontography-bot/internal/kb"
	"github.com/Motiontography/motiontography-bot/internal/otel"
	"github.com/Motiontography/motiontography-bot/internal/transcript"
)

const defaultTimeout = 15 * time.Second

// Server holds all dependencies for the HTTP API.
type Server struct {
	router      *chi.Mux
	engine      *chat.Engine
	kbCache     *kb.Cache
	transcripts *transcript.Store
	adminToken  string
	corsOrigins []string
	limiter     *clientLimiter
	startTime   time.Time
}

// Option configures the Server.
type Option func(*Server)

// WithCORSOrigins sets allowed CORS origins (["*"] for any).
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) { s.corsOrigins = origins }
}

// WithRateLimit sets the per-client request rate limit.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) { s.limiter = newClientLimiter(rps, burst) }
}

// NewServer builds a Server. An empty adminToken leaves the admin
// endpoints registered but always rejecting.
func NewServer(
	engine *chat.Engine,
	kbCache *kb.Cache,
	transcripts *transcript.Store,
	adminToken string,
	opts ...Option,
) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		engine:      engine,
		kbCache:     kbCache,
		transcripts: transcripts,
		adminToken:  adminToken,
		corsOrigins: []string{"*"},
		startTime:   time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the configured http.Handler.
func (s *Server) Routes() http.Handler {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(otel.Middleware())
	r.Use(CORSMiddleware(s.corsOrigins))

	// Unauthenticated
	r.Get("/health", s.handleHealth)
	r.Get("/v1/health", s.handleHealth)

	// Public chat endpoint, rate limited
	r.Group(func(r chi.Router) {
		r.Use(RateLimitMiddleware(s.limiter))
		r.Use(middleware.Timeout(defaultTimeout))
		r.Post("/v1/chat", s.handleChat)
	})

	// Admin group behind bearer-token auth
	r.Group(func(r chi.Router) {
		r.Use(AdminAuthMiddleware(s.adminToken))
		r.Use(middleware.Timeout(defaultTimeout))
		r.Post("/v1/admin/reload", s.handleReload)
		r.Get("/v1/admin/review", s.handleReviewList)
		r.Post("/v1/admin/review/{id}/resolve", s.handleReviewResolve)
		r.Get("/v1/admin/transcript", s.handleTranscriptList)
	})

	return r
}
