package server

import (
	"fmt"
	"net/http"

	"github.com/agentstation/rubrica/internal/server/handlers"
	"github.com/agentstation/rubrica/internal/server/middleware"
	"github.com/agentstation/rubrica/internal/server/response"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()

	h := handlers.New(s.app, s.config.StaticDir, s.logger)
	s.registerRoutes(mux, h)

	return s.applyMiddleware(mux)
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	mux.HandleFunc("/favicon.ico", h.HandleFavicon)
	mux.HandleFunc("/health", h.HandleHealth)

	mux.HandleFunc("/parse-and-import", h.HandleParseAndImport)
	mux.HandleFunc("/test-connection", h.HandleTestConnection)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			response.NotFound(w, fmt.Sprintf("endpoint '%s' not found", r.URL.Path))
			return
		}
		h.HandleIndex(w, r)
	})
}

// applyMiddleware wraps handler with middleware chain.
// CORS sits outside auth and rate limiting so rejections carry CORS headers
// and preflights are never challenged.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	cfg := s.config

	if cfg.AuthToken != "" {
		handler = middleware.Auth(middleware.DefaultAuthConfig(cfg.AuthToken), s.logger)(handler)
	}

	if cfg.RateLimit > 0 {
		rateLimiter := middleware.NewRateLimiter(cfg.RateLimit, s.logger, s.trustedProxies...)
		handler = middleware.RateLimit(rateLimiter)(handler)
	}

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.CORSOrigins) > 0 {
		corsConfig.AllowedOrigins = cfg.CORSOrigins
	}
	if cfg.AuthToken != "" {
		corsConfig.AllowedHeaders = append(corsConfig.AllowedHeaders, "Authorization")
	}
	handler = middleware.CORS(corsConfig)(handler)

	return middleware.Chain(
		middleware.Recovery(s.logger),
		middleware.RequestID(),
		middleware.Logger(s.logger),
	)(handler)
}
