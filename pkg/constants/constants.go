// Package constants provides shared constants used throughout rubrica.
// This includes timeouts, batch sizing, and the fixed values of the
// external protocols the importer talks to.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// LookupTimeout bounds every reference store query and the connection test
	LookupTimeout = 10 * time.Second

	// CreateTimeout bounds contact page creation
	CreateTimeout = 30 * time.Second

	// AssistantTimeout bounds a single assistant completion
	AssistantTimeout = 10 * time.Second

	// DefaultHTTPTimeout is the fallback client timeout when a call has no deadline
	DefaultHTTPTimeout = 30 * time.Second

	// ShutdownTimeout is how long the server drains connections on shutdown
	ShutdownTimeout = 30 * time.Second

	// RetryBackoff is the base backoff duration for retries
	RetryBackoff = 1 * time.Second

	// MaxRetryBackoff is the maximum backoff duration for retries
	MaxRetryBackoff = 30 * time.Second
)

// Batch constants drive the import orchestrator
const (
	// DefaultBatchSize is the number of rows processed between pauses
	DefaultBatchSize = 5

	// DefaultBatchPause is the minimum spacing between consecutive batches
	DefaultBatchPause = 2 * time.Second
)

// Limit constants define various limits and capacities
const (
	// MaxRetries is the maximum number of attempts for a rate limited call
	MaxRetries = 3

	// FuzzyPageSize caps the candidates returned by a substring query
	FuzzyPageSize = 10

	// MaxUploadBytes caps the JSON body accepted by the import endpoint
	MaxUploadBytes = 32 << 20
)

// Notion protocol constants
const (
	// NotionAPIURL is the default Notion API base URL
	NotionAPIURL = "https://api.notion.com"

	// NotionVersion is sent in the Notion-Version header
	NotionVersion = "2022-06-28"

	// DefaultContactStatus is the Status select value set on every contact
	DefaultContactStatus = "Contatto"
)

// Assistant protocol constants
const (
	// OpenAIAPIURL is the default OpenAI API base URL
	OpenAIAPIURL = "https://api.openai.com"

	// OpenAIKeyPrefix is the prefix a well-formed OpenAI key carries
	OpenAIKeyPrefix = "sk-"

	// GeminiKeyPrefix is the prefix a well-formed Gemini API key carries
	GeminiKeyPrefix = "AIza"

	// DefaultOpenAIModel is the chat model used for suggestions
	DefaultOpenAIModel = "gpt-4o-mini"

	// DefaultGeminiModel is the Gemini model used for suggestions
	DefaultGeminiModel = "gemini-2.0-flash"

	// AssistantTemperature keeps suggestions close to deterministic
	AssistantTemperature = 0.1

	// AssistantMaxTokens caps the suggestion length
	AssistantMaxTokens = 50

	// NotFoundSentinel is the assistant answer meaning "no such municipality"
	NotFoundSentinel = "NON_TROVATO"
)

// File permission constants define standard Unix file permissions
const (
	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)
