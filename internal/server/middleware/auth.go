package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/rubrica/internal/server/response"
)

// AuthConfig holds bearer authentication configuration.
type AuthConfig struct {
	// Token is the expected bearer token; empty disables authentication.
	Token string
	// Methods lists the protected HTTP methods.
	Methods []string
}

// DefaultAuthConfig protects the POST endpoints with token.
func DefaultAuthConfig(token string) AuthConfig {
	return AuthConfig{
		Token:   token,
		Methods: []string{http.MethodPost},
	}
}

// Auth middleware validates the bearer token on protected methods.
func Auth(config AuthConfig, logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.Token == "" || !isProtected(r.Method, config.Methods) {
				next.ServeHTTP(w, r)
				return
			}

			token := extractBearer(r)
			if subtle.ConstantTimeCompare([]byte(token), []byte(config.Token)) != 1 {
				logger.Warn().
					Str("path", r.URL.Path).
					Str("remote_addr", r.RemoteAddr).
					Bool("token_provided", token != "").
					Msg("Authentication failed")

				w.Header().Set("WWW-Authenticate", `Bearer realm="rubrica"`)
				response.Unauthorized(w, "invalid or missing bearer token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isProtected(method string, methods []string) bool {
	for _, m := range methods {
		if m == method {
			return true
		}
	}
	return false
}

// extractBearer returns the token of an "Authorization: Bearer <token>" header.
func extractBearer(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
