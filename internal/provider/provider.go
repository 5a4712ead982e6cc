// Package provider defines the interface for chat-completion backends used to
// write commit digests. Implementations can use different services (OpenAI,
// Claude, a local Copilot proxy) while presenting a consistent interface to
// the rest of the application.
package provider

import (
	"context"
	"fmt"
	"strings"
)

// Provider defines the interface for a single-turn chat completion.
type Provider interface {
	// Name returns the provider identifier (e.g., "openai", "claude").
	Name() string

	// Complete sends one system instruction and one user prompt and returns
	// the first completion choice.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
}

// CompletionRequest is the input to a chat completion.
type CompletionRequest struct {
	// Model overrides the provider's configured model when non-empty.
	Model string

	// System is the system instruction.
	System string

	// Prompt is the user message.
	Prompt string

	// Temperature controls response randomness (0.0-1.0).
	Temperature float64

	// MaxTokens limits the response length.
	MaxTokens int
}

// CompletionResponse holds the generated text and its token accounting.
type CompletionResponse struct {
	// Text is the content of the first choice.
	Text string

	// Model is the model that served the request, as reported by the service.
	Model string

	// Usage is the token accounting reported by the service, if any.
	Usage Usage
}

// Usage reports token consumption for one completion.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// IsZero reports whether the service returned no usage data.
func (u Usage) IsZero() bool {
	return u.PromptTokens == 0 && u.CompletionTokens == 0 && u.TotalTokens == 0
}

// Per-1k-token rates used to estimate the cost of a completion.
const (
	PromptCostPer1K     = 0.0015
	CompletionCostPer1K = 0.002
)

// EstimateCost returns an approximate cost in US dollars.
func (u Usage) EstimateCost() float64 {
	return (float64(u.PromptTokens)*PromptCostPer1K + float64(u.CompletionTokens)*CompletionCostPer1K) / 1000
}

// StatusError is returned when a service answers with a non-2xx status.
type StatusError struct {
	// Provider is the name of the provider that made the call.
	Provider string

	// StatusCode is the HTTP status code.
	StatusCode int

	// Body is the raw response body or error message.
	Body string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("%s API error: status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s API error: status %d: %s", e.Provider, e.StatusCode, body)
}

// ModelInfo describes an available AI model.
type ModelInfo struct {
	// ID is the model identifier to use in API calls.
	ID string `json:"id"`

	// Name is a human-readable display name (may equal ID if not provided).
	Name string `json:"name,omitempty"`

	// Description provides additional context about the model.
	Description string `json:"description,omitempty"`
}

// ModelLister is an optional interface for providers that can list available models.
// Use type assertion to check if a provider supports this: if lister, ok := p.(ModelLister); ok { ... }
type ModelLister interface {
	// ListModels returns the available models for this provider.
	ListModels(ctx context.Context) ([]ModelInfo, error)
}

// ModelSelector is an optional interface for providers that allow changing the model after creation.
type ModelSelector interface {
	// SetModel updates the model used by this provider.
	SetModel(model string)

	// Model returns the currently configured model.
	Model() string
}
