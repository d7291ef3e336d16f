package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/rubrica/pkg/errors"
	"github.com/agentstation/rubrica/pkg/logging"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func decodeFailure(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestChain(t *testing.T) {
	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		order = append(order, "handler")
	})

	Chain(mw("m1"), mw("m2"), mw("m3"))(handler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"m1", "m2", "m3", "handler"}, order)
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = logging.RequestID(r.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, w.Header().Get(RequestIDHeader))
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	})
}

func TestLogger(t *testing.T) {
	tl := logging.NewTestLogger(t)
	handler := Chain(RequestID(), Logger(tl.Logger))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodPost, "/parse-and-import", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	tl.AssertContains(t, `"status":418`)
	tl.AssertContains(t, `"path":"/parse-and-import"`)
	tl.AssertContains(t, `"method":"POST"`)
	tl.AssertContains(t, `"remote_addr":"192.0.2.1:1234"`)
	tl.AssertContains(t, `"request_id":"req-1"`)
}

func TestRecovery(t *testing.T) {
	tl := logging.NewTestLogger(t)
	handler := Recovery(tl.Logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeFailure(t, w)
	assert.Equal(t, false, body["success"])
	tl.AssertContains(t, "Panic recovered")
}

func TestCORS(t *testing.T) {
	handler := CORS(DefaultCORSConfig())(okHandler())

	t.Run("headers on every response", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type, Accept", w.Header().Get("Access-Control-Allow-Headers"))
	})

	t.Run("preflight", func(t *testing.T) {
		called := false
		h := CORS(DefaultCORSConfig())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/parse-and-import", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())
		assert.False(t, called)
	})

	t.Run("specific origins", func(t *testing.T) {
		cfg := DefaultCORSConfig()
		cfg.AllowedOrigins = []string{"https://app.example.com"}
		h := CORS(cfg)(okHandler())

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://app.example.com")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

		req.Header.Set("Origin", "https://evil.example.com")
		w = httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestAuth(t *testing.T) {
	logger := logging.NewNopLogger()
	tests := []struct {
		name   string
		token  string
		method string
		header string
		want   int
	}{
		{name: "disabled", token: "", method: http.MethodPost, want: http.StatusOK},
		{name: "get is public", token: "s3cret", method: http.MethodGet, want: http.StatusOK},
		{name: "missing token", token: "s3cret", method: http.MethodPost, want: http.StatusUnauthorized},
		{name: "wrong token", token: "s3cret", method: http.MethodPost, header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "raw token rejected", token: "s3cret", method: http.MethodPost, header: "s3cret", want: http.StatusUnauthorized},
		{name: "valid token", token: "s3cret", method: http.MethodPost, header: "Bearer s3cret", want: http.StatusOK},
		{name: "scheme is case insensitive", token: "s3cret", method: http.MethodPost, header: "bearer s3cret", want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Auth(DefaultAuthConfig(tt.token), logger)(okHandler())
			req := httptest.NewRequest(tt.method, "/parse-and-import", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Equal(t, false, decodeFailure(t, w)["success"])
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	rl := NewRateLimiter(2, logging.NewNopLogger())
	handler := RateLimit(rl)(okHandler())

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:1002"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2:1000"), "limits are per IP")
}

func TestRateLimiterEvictsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(1, logging.NewNopLogger())
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.Equal(t, 1, rl.Len())

	now = now.Add(11 * time.Minute)
	assert.True(t, rl.Allow("b"))
	assert.Equal(t, 1, rl.Len(), "idle visitor a is dropped")
	assert.True(t, rl.Allow("a"))
}

func TestRateLimiterSweepsAtMostOncePerMinute(t *testing.T) {
	rl := NewRateLimiter(1, logging.NewNopLogger())
	rl.idle = 10 * time.Second
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	now = now.Add(30 * time.Second)
	assert.True(t, rl.Allow("b"))
	assert.Equal(t, 2, rl.Len(), "no sweep within a minute of the last one")

	now = now.Add(31 * time.Second)
	assert.True(t, rl.Allow("c"))
	assert.Equal(t, 1, rl.Len())
}

func TestClientIP(t *testing.T) {
	untrusted := NewRateLimiter(1, logging.NewNopLogger())
	trusted, err := ParseTrustedProxies([]string{"192.0.2.1", "10.0.0.0/8"})
	require.NoError(t, err)
	behindProxy := NewRateLimiter(1, logging.NewNopLogger(), trusted...)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:4321"
	assert.Equal(t, "192.0.2.1", untrusted.clientIP(req))
	assert.Equal(t, "192.0.2.1", behindProxy.clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	assert.Equal(t, "192.0.2.1", untrusted.clientIP(req), "header ignored without a trusted proxy")
	assert.Equal(t, "203.0.113.5", behindProxy.clientIP(req))

	req.Header.Set("X-Forwarded-For", "198.51.100.9, 203.0.113.5")
	assert.Equal(t, "203.0.113.5", behindProxy.clientIP(req), "rightmost untrusted hop wins")

	req.Header.Set("X-Forwarded-For", "10.1.2.3")
	assert.Equal(t, "10.1.2.3", behindProxy.clientIP(req), "all hops trusted")

	req.Header.Set("X-Forwarded-For", "203.0.113.5")
	req.RemoteAddr = "198.51.100.7:80"
	assert.Equal(t, "198.51.100.7", behindProxy.clientIP(req), "remote host is not a trusted proxy")

	req.Header.Del("X-Forwarded-For")
	req.RemoteAddr = "unix"
	assert.Equal(t, "unix", behindProxy.clientIP(req))
}

func TestRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	rl := NewRateLimiter(1, logging.NewNopLogger())
	handler := RateLimit(rl)(okHandler())

	send := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "198.51.100.7:1000"
		req.Header.Set("X-Forwarded-For", forwarded)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.2"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.3"))
	assert.Equal(t, 1, rl.Len())
}

func TestParseTrustedProxies(t *testing.T) {
	prefixes, err := ParseTrustedProxies([]string{"10.0.0.0/8", " 127.0.0.1 ", "", "::1", "192.168.1.77/24"})
	require.NoError(t, err)
	require.Len(t, prefixes, 4)
	assert.Equal(t, "10.0.0.0/8", prefixes[0].String())
	assert.Equal(t, "127.0.0.1/32", prefixes[1].String())
	assert.Equal(t, "::1/128", prefixes[2].String())
	assert.Equal(t, "192.168.1.0/24", prefixes[3].String())

	for _, bad := range []string{"proxy.local", "10.0.0.0/99"} {
		_, err := ParseTrustedProxies([]string{bad})
		assert.True(t, errors.IsValidationError(err), bad)
	}
}
