// Package openai provides a provider for OpenAI-compatible chat completion
// endpoints. It is used directly for the OpenAI API and underneath the
// Copilot proxy provider.
package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mwistrand/commitdigest/internal/provider"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	// DefaultBaseURL is the OpenAI API root.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is the chat model used when none is configured.
	DefaultModel = "gpt-3.5-turbo"

	// DefaultTimeout bounds each HTTP request.
	DefaultTimeout = 60 * time.Second
)

// ErrMissingAPIKey is returned by New when the key is required but empty.
var ErrMissingAPIKey = errors.New("OpenAI API key is required")

// Provider implements provider.Provider against /chat/completions.
type Provider struct {
	name        string
	baseURL     string
	apiKey      string
	model       string
	keyOptional bool
	client      *http.Client
}

// Option customizes a Provider.
type Option func(*Provider)

// WithName overrides the provider name reported by Name and in errors.
func WithName(name string) Option {
	return func(p *Provider) { p.name = name }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.client = c }
}

// WithOptionalAPIKey allows construction without a key, for local proxies.
func WithOptionalAPIKey() Option {
	return func(p *Provider) { p.keyOptional = true }
}

// New creates a provider for the given endpoint. If baseURL is empty,
// DefaultBaseURL is used; if model is empty, DefaultModel is used.
func New(apiKey, baseURL, model string, opts ...Option) (*Provider, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}

	p := &Provider{
		name:    "openai",
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.apiKey == "" && !p.keyOptional {
		return nil, ErrMissingAPIKey
	}

	return p, nil
}

// Factory adapts New to provider.Factory.
func Factory(s provider.Settings) (provider.Provider, error) {
	return New(s.APIKey, s.BaseURL, s.Model)
}

// Name returns the provider name ("openai" unless overridden).
func (p *Provider) Name() string {
	return p.name
}

// BaseURL returns the endpoint root without a trailing slash.
func (p *Provider) BaseURL() string {
	return p.baseURL
}

// SetModel updates the model used by this provider.
func (p *Provider) SetModel(model string) {
	p.model = model
}

// Model returns the currently configured model.
func (p *Provider) Model() string {
	return p.model
}

// Complete sends a system and a user message and returns the first choice.
func (p *Provider) Complete(ctx context.Context, req *provider.CompletionRequest) (*provider.CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	body, err := buildChatRequest(model, req)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	respBody, err := p.do(ctx, http.MethodPost, "/chat/completions", body)
	if err != nil {
		return nil, err
	}

	return parseChatResponse(respBody, model)
}

// ListModels returns the models reported by GET /models.
func (p *Provider) ListModels(ctx context.Context) ([]provider.ModelInfo, error) {
	respBody, err := p.do(ctx, http.MethodGet, "/models", nil)
	if err != nil {
		return nil, err
	}
	return ParseModels(respBody)
}

func (p *Provider) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s request to %s: %w", p.name, p.baseURL, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &provider.StatusError{
			Provider:   p.name,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	return respBody, nil
}

// buildChatRequest renders the chat completion request body.
func buildChatRequest(model string, req *provider.CompletionRequest) ([]byte, error) {
	body := []byte(`{}`)
	var err error

	set := func(path string, value any) {
		if err == nil {
			body, err = sjson.SetBytes(body, path, value)
		}
	}

	messages := make([]map[string]string, 0, 2)
	if req.System != "" {
		messages = append(messages, map[string]string{"role": "system", "content": req.System})
	}
	messages = append(messages, map[string]string{"role": "user", "content": req.Prompt})

	set("model", model)
	set("messages", messages)
	set("temperature", req.Temperature)
	if req.MaxTokens > 0 {
		set("max_tokens", req.MaxTokens)
	}

	return body, err
}

// parseChatResponse extracts the first choice and the usage block.
func parseChatResponse(body []byte, model string) (*provider.CompletionResponse, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("parsing response: invalid JSON")
	}

	if msg := gjson.GetBytes(body, "error.message"); msg.Exists() {
		return nil, fmt.Errorf("API error: %s", msg.String())
	}

	content := gjson.GetBytes(body, "choices.0.message.content")
	if !content.Exists() {
		return nil, errors.New("empty response: no choices returned")
	}

	if served := gjson.GetBytes(body, "model").String(); served != "" {
		model = served
	}

	usage := gjson.GetBytes(body, "usage")
	return &provider.CompletionResponse{
		Text:  content.String(),
		Model: model,
		Usage: provider.Usage{
			PromptTokens:     int(usage.Get("prompt_tokens").Int()),
			CompletionTokens: int(usage.Get("completion_tokens").Int()),
			TotalTokens:      int(usage.Get("total_tokens").Int()),
		},
	}, nil
}

// ParseModels reads an OpenAI-style model list ({"data":[{"id":...}]}).
func ParseModels(body []byte) ([]provider.ModelInfo, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("parsing models: invalid JSON")
	}

	var models []provider.ModelInfo
	gjson.GetBytes(body, "data").ForEach(func(_, m gjson.Result) bool {
		id := m.Get("id").String()
		if id == "" {
			return true
		}
		models = append(models, provider.ModelInfo{
			ID:          id,
			Name:        id,
			Description: m.Get("owned_by").String(),
		})
		return true
	})

	if len(models) == 0 {
		return nil, errors.New("no models available")
	}
	return models, nil
}
