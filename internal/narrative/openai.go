// Package narrative turns health results and alert findings into
// human-readable text through an external text-generation service. Every
// failure degrades to deterministic output; numeric results never depend on it.
package narrative

import (
	"context"
	"errors"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Generator produces free text for a prompt within a token budget.
// Implementations report failures as *TimeoutError, *AuthError or
// *MalformedResponseError.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

const systemPrompt = "You are an account director at a marketing agency. " +
	"Write plainly for account managers. Never invent numbers that are not in the prompt."

// OpenAIGenerator calls the OpenAI chat completions API.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
	apiKey string
}

// NewOpenAIGenerator creates a generator. baseURL may be empty for the default endpoint.
func NewOpenAIGenerator(apiKey, model, baseURL string) *OpenAIGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		apiKey: apiKey,
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if g.apiKey == "" {
		return "", &AuthError{Reason: "OPENAI_API_KEY is not set"}
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.3,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", classify(ctx, err)
	}

	if len(resp.Choices) == 0 {
		return "", &MalformedResponseError{Reason: "no choices returned"}
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", &MalformedResponseError{Reason: "empty completion"}
	}
	return text, nil
}

func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{Err: err}
	}

	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Reason: http.StatusText(status), Err: err}
	case 0, http.StatusGatewayTimeout, http.StatusRequestTimeout:
		// No HTTP status means the service was never reached.
		return &TimeoutError{Err: err}
	}
	return &MalformedResponseError{Reason: err.Error()}
}
