// Package copilot provides a provider that connects to a copilot-api proxy server.
// The proxy exposes GitHub Copilot through OpenAI-compatible endpoints, so
// requests are delegated to the openai provider without an API key.
// See https://github.com/ericc-ch/copilot-api for proxy setup.
package copilot

import (
	"context"
	"fmt"
	"strings"

	"github.com/mwistrand/commitdigest/internal/provider"
	"github.com/mwistrand/commitdigest/internal/provider/openai"
)

const (
	// DefaultBaseURL is the default URL for the copilot-api proxy.
	DefaultBaseURL = "http://localhost:4141"

	// DefaultModel is the default model to use with the proxy.
	DefaultModel = "gpt-4o"
)

// Provider implements provider.Provider using a copilot-api proxy.
type Provider struct {
	*openai.Provider
	baseURL      string
	proxyManager *ProxyManager
}

// New creates a new Copilot provider with the given base URL and model.
func New(baseURL, model string) (*Provider, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	if model == "" {
		model = DefaultModel
	}

	inner, err := openai.New("", baseURL+"/v1", model, openai.WithName("copilot"), openai.WithOptionalAPIKey())
	if err != nil {
		return nil, err
	}

	return &Provider{
		Provider:     inner,
		baseURL:      baseURL,
		proxyManager: NewProxyManager(baseURL),
	}, nil
}

// Factory adapts New to provider.Factory. The API key is ignored.
func Factory(s provider.Settings) (provider.Provider, error) {
	return New(s.BaseURL, s.Model)
}

// EnsureProxyRunning starts the copilot-api proxy if it's not already running.
// The logFn is called with status messages. Returns true if the proxy was started.
func (p *Provider) EnsureProxyRunning(ctx context.Context, logFn func(string, ...any)) (bool, error) {
	return p.proxyManager.EnsureRunning(ctx, logFn)
}

// Close stops the proxy if it was started by this provider.
func (p *Provider) Close() {
	if p.proxyManager != nil && p.proxyManager.WasStarted() {
		p.proxyManager.Stop()
	}
}

// ListModels returns the models cached by the proxy manager, querying the
// proxy when nothing is cached yet.
func (p *Provider) ListModels(ctx context.Context) ([]provider.ModelInfo, error) {
	if models := p.proxyManager.Models(); len(models) > 0 {
		return models, nil
	}
	models, err := p.Provider.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing models (is copilot-api proxy running at %s?): %w", p.baseURL, err)
	}
	return models, nil
}
