// Package mock provides a mock provider for testing.
package mock

import (
	"context"
	"fmt"
	"strings"

	"github.com/mwistrand/commitdigest/internal/provider"
)

// Provider is a mock provider for testing.
type Provider struct {
	// CompleteFunc allows customizing the Complete behavior.
	CompleteFunc func(ctx context.Context, req *provider.CompletionRequest) (*provider.CompletionResponse, error)

	// Calls tracks calls to Complete.
	Calls []*provider.CompletionRequest

	// Models is returned by ListModels.
	Models []provider.ModelInfo

	model string
}

// New creates a new mock provider with default behavior.
func New() *Provider {
	return &Provider{model: "mock-model"}
}

// Factory adapts New to provider.Factory.
func Factory(s provider.Settings) (provider.Provider, error) {
	p := New()
	if s.Model != "" {
		p.model = s.Model
	}
	return p, nil
}

// Name returns "mock".
func (p *Provider) Name() string {
	return "mock"
}

// SetModel updates the model reported by this provider.
func (p *Provider) SetModel(model string) {
	p.model = model
}

// Model returns the configured model.
func (p *Provider) Model() string {
	return p.model
}

// Complete returns a canned digest or calls the custom function.
func (p *Provider) Complete(ctx context.Context, req *provider.CompletionRequest) (*provider.CompletionResponse, error) {
	p.Calls = append(p.Calls, req)

	if p.CompleteFunc != nil {
		return p.CompleteFunc(ctx, req)
	}

	lines := strings.Count(req.Prompt, "\n") + 1
	text := fmt.Sprintf("• Mock summary of a %d-line prompt\n• Made various modifications", lines)
	promptTokens := len(strings.Fields(req.System)) + len(strings.Fields(req.Prompt))
	completionTokens := len(strings.Fields(text))

	return &provider.CompletionResponse{
		Text:  text,
		Model: p.model,
		Usage: provider.Usage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
		},
	}, nil
}

// ListModels returns Models, or a single entry for the configured model.
func (p *Provider) ListModels(ctx context.Context) ([]provider.ModelInfo, error) {
	if len(p.Models) > 0 {
		return p.Models, nil
	}
	return []provider.ModelInfo{{ID: p.model, Name: p.model}}, nil
}

// Reset clears recorded calls.
func (p *Provider) Reset() {
	p.Calls = nil
}
