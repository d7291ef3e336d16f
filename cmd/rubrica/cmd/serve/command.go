// Package serve provides the HTTP server command.
package serve

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/rubrica/internal/cmd/application"
	"github.com/agentstation/rubrica/internal/config"
	"github.com/agentstation/rubrica/internal/server"
	"github.com/agentstation/rubrica/pkg/errors"
)

// NewCommand creates the serve command using app context.
func NewCommand(app application.Application) *cobra.Command {
	defaults := server.DefaultConfig()

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server"},
		Short:   "Start the import web server",
		Long: `Start the HTTP server behind the upload page.

Endpoints:
  GET  /                  upload page (embedded, or index.html from --static-dir)
  GET  /health            liveness probe
  POST /parse-and-import  import a base64 encoded CSV/XLSX with a column mapping
  POST /test-connection   verify the Notion credential

POST endpoints can be protected with a bearer token (--auth-token or
RUBRICA_AUTH_TOKEN). HTTP_HOST and HTTP_PORT override the defaults.`,
		Example: `  # Start on default port 8080
  rubrica serve

  # Listen on all interfaces with a custom page
  rubrica serve --host 0.0.0.0 --static-dir ./web

  # Require a bearer token on imports
  rubrica serve --auth-token "$(openssl rand -hex 16)"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd, app)
		},
	}

	cmd.Flags().String("host", defaults.Host, "Bind address")
	cmd.Flags().Int("port", defaults.Port, "Server port")
	cmd.Flags().String("static-dir", "", "Directory containing index.html (default: embedded page)")
	cmd.Flags().String("auth-token", "", "Bearer token required on POST endpoints")
	cmd.Flags().StringSlice("cors-origins", defaults.CORSOrigins, "Allowed CORS origins (comma-separated)")
	cmd.Flags().Int("rate-limit", defaults.RateLimit, "Requests per minute per IP (0 to disable)")
	cmd.Flags().StringSlice("trusted-proxies", nil, "Proxy IPs or CIDR ranges whose X-Forwarded-For is honored")
	cmd.Flags().Duration("read-timeout", defaults.ReadTimeout, "HTTP read timeout")
	cmd.Flags().Duration("write-timeout", defaults.WriteTimeout, "HTTP write timeout")
	cmd.Flags().Duration("idle-timeout", defaults.IdleTimeout, "HTTP idle timeout")

	return cmd
}

// runServer starts the server and blocks until the command context is cancelled.
func runServer(cmd *cobra.Command, app application.Application) error {
	cfg, err := parseConfig(cmd)
	if err != nil {
		return err
	}
	logger := app.Logger()

	if _, err := app.Workspace(); err != nil {
		logger.Warn().Err(err).Msg("Notion is not configured; imports will fail until it is")
	}

	logger.Info().
		Str("addr", cfg.Addr()).
		Str("static_dir", cfg.StaticDir).
		Bool("auth", cfg.AuthToken != "").
		Int("rate_limit", cfg.RateLimit).
		Msg("Starting server")

	srv, err := server.New(app, cfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Rubrica listening on http://%s\n", cfg.Addr())
	return srv.ListenAndServe(cmd.Context())
}

// parseConfig parses command flags into server configuration.
// Explicit flags win over HTTP_HOST, HTTP_PORT and RUBRICA_AUTH_TOKEN.
func parseConfig(cmd *cobra.Command) (server.Config, error) {
	cfg := server.Config{
		Host:           mustGetString(cmd, "host"),
		Port:           mustGetInt(cmd, "port"),
		StaticDir:      mustGetString(cmd, "static-dir"),
		AuthToken:      mustGetString(cmd, "auth-token"),
		CORSOrigins:    mustGetStringSlice(cmd, "cors-origins"),
		RateLimit:      mustGetInt(cmd, "rate-limit"),
		TrustedProxies: mustGetStringSlice(cmd, "trusted-proxies"),
		ReadTimeout:    mustGetDuration(cmd, "read-timeout"),
		WriteTimeout:   mustGetDuration(cmd, "write-timeout"),
		IdleTimeout:    mustGetDuration(cmd, "idle-timeout"),
	}

	flags := cmd.Flags()
	if !flags.Changed("host") {
		if host := config.GetString(config.KeyHTTPHost); host != "" {
			cfg.Host = host
		}
	}
	if !flags.Changed("port") {
		if envPort := config.GetString(config.KeyHTTPPort); envPort != "" {
			p, err := parsePort(envPort)
			if err != nil {
				return cfg, err
			}
			cfg.Port = p
		}
	}
	if !flags.Changed("auth-token") {
		cfg.AuthToken = config.GetString(config.KeyAuthToken)
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return cfg, errors.NewValidationError("port", cfg.Port, fmt.Sprintf("out of range: %d", cfg.Port))
	}
	if cfg.RateLimit < 0 {
		return cfg, errors.NewValidationError("rate-limit", cfg.RateLimit, "must not be negative")
	}
	return cfg, nil
}

// parsePort safely parses a port string to integer.
func parsePort(portStr string) (int, error) {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, errors.WrapValidation("port", err)
	}
	if port < 1 || port > 65535 {
		return 0, errors.NewValidationError("port", port, fmt.Sprintf("out of range: %d", port))
	}
	return port, nil
}

// mustGetInt retrieves an integer flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetInt(cmd *cobra.Command, name string) int {
	val, err := cmd.Flags().GetInt(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetStringSlice retrieves a string slice flag value or panics if the flag doesn't exist.
func mustGetStringSlice(cmd *cobra.Command, name string) []string {
	val, err := cmd.Flags().GetStringSlice(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetDuration retrieves a duration flag value or panics if the flag doesn't exist.
func mustGetDuration(cmd *cobra.Command, name string) time.Duration {
	val, err := cmd.Flags().GetDuration(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
