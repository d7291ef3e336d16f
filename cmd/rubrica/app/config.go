package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/rubrica/internal/config"
	"github.com/agentstation/rubrica/pkg/constants"
)

// Config holds the application configuration loaded from config files,
// environment variables and .env files. Store and assistant credentials are
// read through internal/config when the clients are first built.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Import pacing
	BatchSize  int
	BatchPause time.Duration

	// Logging configuration. LogLevel holds the --log-level flag only;
	// EnvLogLevel holds LOG_LEVEL.
	LogLevel    string
	EnvLogLevel string
	LogFormat   string
	LogOutput   string
	// LogFields holds LOG_FIELDS, comma-separated key=value pairs added to every log line.
	LogFields string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables
// 3. .env files
// 4. Config file (~/.rubrica.yaml or ./.rubrica.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	bindKeys()

	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".rubrica")
	}

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()

	cfg := &Config{
		ConfigFile:  viper.ConfigFileUsed(),
		EnvLogLevel: getEnvOrDefault("LOG_LEVEL", ""),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput:   getEnvOrDefault("LOG_OUTPUT", "stderr"),
		LogFields:   getEnvOrDefault("LOG_FIELDS", ""),
	}
	cfg.refreshPacing()
	return cfg, nil
}

// UseConfigFile reads an explicit config file named by --config.
func (c *Config) UseConfigFile(path string) error {
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	c.ConfigFile = viper.ConfigFileUsed()
	c.refreshPacing()
	return nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags so flag values take
// precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

func (c *Config) refreshPacing() {
	c.BatchSize = config.GetInt(config.KeyBatchSize, constants.DefaultBatchSize)
	c.BatchPause = config.GetDuration(config.KeyBatchPause, constants.DefaultBatchPause)
}

// loadEnvFiles loads environment variables from .env files.
// Variables already set in the environment are never overridden.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// bindKeys explicitly binds the configuration keys to their environment variables.
func bindKeys() {
	keys := []string{
		config.KeyNotionToken,
		config.KeyNotionAPIURL,
		config.KeyNotionVersion,
		config.KeyContactsDB,
		config.KeyMunicipalitiesDB,
		config.KeyOpenAIAPIKey,
		config.KeyOpenAIAPIURL,
		config.KeyGeminiAPIKey,
		config.KeyGeminiAPIURL,
		config.KeyAssistantProvider,
		config.KeyAssistantModel,
		config.KeyBatchSize,
		config.KeyBatchPause,
		config.KeyAuthToken,
		config.KeyHTTPHost,
		config.KeyHTTPPort,
	}

	for _, key := range keys {
		if err := viper.BindEnv(key); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to bind environment variable %s: %v\n", key, err)
		}
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
