package assistant

import (
	"github.com/agentstation/rubrica/internal/config"
	"github.com/agentstation/rubrica/internal/resolver"
)

// New builds the suggester described by cfg. It returns nil when the
// assistant is disabled, which turns the assistant step off.
func New(cfg config.Assistant) resolver.Suggester {
	if !cfg.Enabled() {
		return nil
	}
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGemini(cfg.APIKey, cfg.BaseURL, cfg.Model)
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.APIKey, cfg.BaseURL, cfg.Model)
	default:
		return nil
	}
}
