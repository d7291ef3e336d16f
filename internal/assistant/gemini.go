package assistant

import (
	"context"
	"sync"

	"google.golang.org/genai"

	"github.com/agentstation/rubrica/pkg/constants"
	"github.com/agentstation/rubrica/pkg/errors"
)

// Gemini suggests corrections through the Gemini API.
type Gemini struct {
	apiKey  string
	model   string
	baseURL string

	mu     sync.Mutex
	client *genai.Client
}

// NewGemini creates a Gemini backend. The SDK client is built on first use.
// An empty baseURL keeps the SDK's default endpoint.
func NewGemini(apiKey, baseURL, model string) *Gemini {
	if model == "" {
		model = constants.DefaultGeminiModel
	}
	return &Gemini{apiKey: apiKey, baseURL: baseURL, model: model}
}

// getOrCreateClient returns the shared SDK client.
func (g *Gemini) getOrCreateClient(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client != nil {
		return g.client, nil
	}
	if g.apiKey == "" {
		return nil, &errors.AuthenticationError{
			Provider: "gemini",
			Method:   "api_key",
			Message:  "API key required for Gemini",
			Err:      errors.ErrAPIKeyRequired,
		}
	}

	config := &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  g.apiKey,
	}
	if g.baseURL != "" {
		config.HTTPOptions = genai.HTTPOptions{BaseURL: g.baseURL}
	}
	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, errors.NewConfigError("gemini", "cannot create client", err)
	}
	g.client = client
	return client, nil
}

// SuggestCorrection implements resolver.Suggester.
func (g *Gemini) SuggestCorrection(ctx context.Context, name, emailHint string) (string, error) {
	client, err := g.getOrCreateClient(ctx)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, constants.AssistantTimeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(constants.AssistantTemperature)),
		MaxOutputTokens: int32(constants.AssistantMaxTokens),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
	}
	result, err := client.Models.GenerateContent(ctx, g.model, genai.Text(buildPrompt(name, emailHint)), config)
	if err != nil {
		return "", errors.WrapAPI("gemini", 0, err)
	}
	return cleanAnswer(result.Text()), nil
}
