package server

import (
	"net"
	"strconv"
	"time"
)

// Config holds server configuration.
type Config struct {
	// Server settings
	Host string
	Port int

	// StaticDir holds an index.html served at "/"; empty serves the embedded page.
	StaticDir string

	// CORS settings
	CORSOrigins []string

	// AuthToken protects POST endpoints with a bearer token when set.
	AuthToken string

	// RateLimit is requests per minute per IP (0 to disable).
	RateLimit int

	// TrustedProxies lists proxy IPs or CIDR ranges whose X-Forwarded-For
	// header is honored when identifying clients.
	TrustedProxies []string

	// HTTP timeouts
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
// WriteTimeout covers a whole import run, pauses between batches included.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         8080,
		CORSOrigins:  []string{"*"},
		RateLimit:    60,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
