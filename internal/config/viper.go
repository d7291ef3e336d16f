// Package config holds viper lookup helpers and credential checks shared by
// the commands and the server.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/agentstation/rubrica/pkg/constants"
	"github.com/agentstation/rubrica/pkg/errors"
)

// Configuration keys.
const (
	KeyNotionToken       = "NOTION_TOKEN"
	KeyNotionAPIURL      = "NOTION_API_URL"
	KeyNotionVersion     = "NOTION_VERSION"
	KeyContactsDB        = "CONTATTI_DB_ID"
	KeyMunicipalitiesDB  = "COMUNI_DB_ID"
	KeyOpenAIAPIKey      = "OPENAI_API_KEY"
	KeyOpenAIAPIURL      = "OPENAI_API_URL"
	KeyGeminiAPIKey      = "GEMINI_API_KEY"
	KeyGeminiAPIURL      = "GEMINI_API_URL"
	KeyAssistantProvider = "ASSISTANT_PROVIDER"
	KeyAssistantModel    = "ASSISTANT_MODEL"
	KeyBatchSize         = "BATCH_SIZE"
	KeyBatchPause        = "BATCH_PAUSE"
	KeyAuthToken         = "RUBRICA_AUTH_TOKEN"
	KeyHTTPHost          = "HTTP_HOST"
	KeyHTTPPort          = "HTTP_PORT"
)

// Assistant providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

// GetString is a helper to get string values from Viper.
// It checks both OS environment variables and Viper configuration.
func GetString(key string) string {
	viperValue := strings.TrimSpace(viper.GetString(key))
	if viperValue == "" {
		return strings.TrimSpace(os.Getenv(key))
	}
	return viperValue
}

// GetStringDefault returns GetString(key), or def when unset.
func GetStringDefault(key, def string) string {
	if v := GetString(key); v != "" {
		return v
	}
	return def
}

// GetInt returns a positive integer setting, or def when unset or invalid.
func GetInt(key string, def int) int {
	if v, err := strconv.Atoi(GetString(key)); err == nil && v > 0 {
		return v
	}
	return def
}

// GetDuration returns a non-negative duration setting, or def when unset or invalid.
// Bare integers are read as seconds.
func GetDuration(key string, def time.Duration) time.Duration {
	raw := GetString(key)
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil && d >= 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return def
}

// Notion describes the store credentials and databases.
type Notion struct {
	Token            string
	BaseURL          string
	Version          string
	ContactsDB       string
	MunicipalitiesDB string
}

// LoadNotion reads the store settings. The token and both database ids are required.
func LoadNotion() (Notion, error) {
	n := Notion{
		Token:            GetString(KeyNotionToken),
		BaseURL:          GetStringDefault(KeyNotionAPIURL, constants.NotionAPIURL),
		Version:          GetStringDefault(KeyNotionVersion, constants.NotionVersion),
		ContactsDB:       GetString(KeyContactsDB),
		MunicipalitiesDB: GetString(KeyMunicipalitiesDB),
	}
	if n.Token == "" {
		return n, &errors.AuthenticationError{
			Provider: "notion",
			Method:   "bearer",
			Message:  "environment variable " + KeyNotionToken + " not set",
			Err:      errors.ErrAPIKeyRequired,
		}
	}
	var missing []string
	if n.ContactsDB == "" {
		missing = append(missing, KeyContactsDB)
	}
	if n.MunicipalitiesDB == "" {
		missing = append(missing, KeyMunicipalitiesDB)
	}
	if len(missing) > 0 {
		return n, errors.NewConfigError("notion", "missing "+strings.Join(missing, ", "), nil)
	}
	return n, nil
}

// Assistant describes the optional suggestion backend.
type Assistant struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
}

// Enabled reports whether a suggestion backend should be built.
func (a Assistant) Enabled() bool {
	return a.Provider != ProviderNone && a.APIKey != ""
}

// LoadAssistant reads the assistant settings. A missing key yields a
// disabled configuration; a malformed key yields a disabled configuration
// and an error the caller should log as a warning.
func LoadAssistant() (Assistant, error) {
	a := Assistant{
		Provider: strings.ToLower(GetStringDefault(KeyAssistantProvider, ProviderOpenAI)),
		BaseURL:  GetStringDefault(KeyOpenAIAPIURL, constants.OpenAIAPIURL),
	}

	switch a.Provider {
	case ProviderNone:
		return a, nil
	case ProviderOpenAI:
		a.Model = GetStringDefault(KeyAssistantModel, constants.DefaultOpenAIModel)
		a.APIKey = GetString(KeyOpenAIAPIKey)
		if err := ValidateAPIKey(KeyOpenAIAPIKey, a.APIKey, constants.OpenAIKeyPrefix); err != nil {
			a.APIKey = ""
			return a, err
		}
	case ProviderGemini:
		a.Model = GetStringDefault(KeyAssistantModel, constants.DefaultGeminiModel)
		a.BaseURL = GetString(KeyGeminiAPIURL)
		a.APIKey = GetString(KeyGeminiAPIKey)
		if err := ValidateAPIKey(KeyGeminiAPIKey, a.APIKey, constants.GeminiKeyPrefix); err != nil {
			a.APIKey = ""
			return a, err
		}
	default:
		provider := a.Provider
		a.Provider = ProviderNone
		return a, errors.NewValidationError(KeyAssistantProvider, provider, "unknown assistant provider")
	}
	return a, nil
}

// ValidateAPIKey checks a credential's shape. An empty key is not an error:
// optional credentials are simply absent.
func ValidateAPIKey(name, key, prefix string) error {
	if key == "" {
		return nil
	}
	if prefix != "" && !strings.HasPrefix(key, prefix) {
		return &errors.AuthenticationError{
			Provider: strings.ToLower(strings.TrimSuffix(name, "_API_KEY")),
			Method:   "api_key",
			Message:  name + " does not start with " + prefix,
			Err:      errors.ErrAPIKeyInvalid,
		}
	}
	return nil
}
