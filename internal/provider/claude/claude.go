// Package claude provides a provider implementation using Anthropic's Claude API.
package claude

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/mwistrand/commitdigest/internal/provider"
)

// DefaultModel is the default Claude model to use.
const DefaultModel = "claude-sonnet-4-20250514"

// defaultMaxTokens is used when a request does not set MaxTokens; the
// Messages API requires a value.
const defaultMaxTokens = 1024

// ErrMissingAPIKey is returned by New when no key is given.
var ErrMissingAPIKey = errors.New("anthropic API key is required")

// Provider implements the provider.Provider interface using Claude.
type Provider struct {
	client anthropic.Client
	model  anthropic.Model
}

// New creates a new Claude provider with the given API key and model.
// If model is empty, DefaultModel is used. baseURL is optional.
func New(apiKey, baseURL, model string) (*Provider, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	if model == "" {
		model = DefaultModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// One bounded attempt per run; the digest falls back on failure.
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &Provider{
		client: anthropic.NewClient(opts...),
		model:  anthropic.Model(model),
	}, nil
}

// Factory adapts New to provider.Factory.
func Factory(s provider.Settings) (provider.Provider, error) {
	return New(s.APIKey, s.BaseURL, s.Model)
}

// Name returns "claude".
func (p *Provider) Name() string {
	return "claude"
}

// SetModel updates the model used by this provider.
func (p *Provider) SetModel(model string) {
	p.model = anthropic.Model(model)
}

// Model returns the currently configured model.
func (p *Provider) Model() string {
	return string(p.model)
}

// Complete sends the prompt through the Messages API.
func (p *Provider) Complete(ctx context.Context, req *provider.CompletionRequest) (*provider.CompletionResponse, error) {
	model := p.model
	if req.Model != "" {
		model = anthropic.Model(req.Model)
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:       model,
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(req.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			body := apiErr.RawJSON()
			if body == "" {
				body = err.Error()
			}
			return nil, &provider.StatusError{Provider: p.Name(), StatusCode: apiErr.StatusCode, Body: body}
		}
		return nil, fmt.Errorf("claude API error: %w", err)
	}

	text := extractTextContent(resp)
	if text == "" {
		return nil, errors.New("empty response from Claude")
	}

	return &provider.CompletionResponse{
		Text:  text,
		Model: string(resp.Model),
		Usage: provider.Usage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
			TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		},
	}, nil
}

// ListModels returns the models available to the API key.
func (p *Provider) ListModels(ctx context.Context) ([]provider.ModelInfo, error) {
	page, err := p.client.Models.List(ctx, anthropic.ModelListParams{})
	if err != nil {
		return nil, fmt.Errorf("listing claude models: %w", err)
	}

	models := make([]provider.ModelInfo, 0, len(page.Data))
	for _, m := range page.Data {
		models = append(models, provider.ModelInfo{ID: m.ID, Name: m.DisplayName})
	}
	return models, nil
}

// extractTextContent joins the text blocks of a Claude response.
func extractTextContent(resp *anthropic.Message) string {
	var parts []string
	for _, block := range resp.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
