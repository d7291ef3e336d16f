package assistant

import (
	"context"
	"strings"

	"github.com/agentstation/rubrica/internal/transport"
	"github.com/agentstation/rubrica/pkg/constants"
	"github.com/agentstation/rubrica/pkg/errors"
)

// OpenAI suggests corrections through the chat completions API.
type OpenAI struct {
	http    *transport.Client
	baseURL string
	model   string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// NewOpenAI creates an OpenAI backend. baseURL and model fall back to defaults when empty.
func NewOpenAI(apiKey, baseURL, model string, opts ...transport.Option) *OpenAI {
	if baseURL == "" {
		baseURL = constants.OpenAIAPIURL
	}
	if model == "" {
		model = constants.DefaultOpenAIModel
	}
	return &OpenAI{
		http:    transport.New("openai", apiKey, &transport.BearerAuth{}, opts...),
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
	}
}

// SuggestCorrection implements resolver.Suggester.
func (o *OpenAI) SuggestCorrection(ctx context.Context, name, emailHint string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.AssistantTimeout)
	defer cancel()

	req := chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: buildPrompt(name, emailHint)},
		},
		Temperature: constants.AssistantTemperature,
		MaxTokens:   constants.AssistantMaxTokens,
	}
	resp, err := o.http.PostJSON(ctx, o.baseURL+"/v1/chat/completions", req)
	if err != nil {
		return "", err
	}
	var out chatResponse
	if err := transport.DecodeResponse(resp, "openai", &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", errors.NewParseError("json", "openai response", "no choices returned", nil)
	}
	return cleanAnswer(out.Choices[0].Message.Content), nil
}
