package provider

import (
	"fmt"
	"sort"
	"sync"
)

// Settings carries the per-run values a provider is constructed with.
type Settings struct {
	// APIKey authenticates against the service. Optional for local proxies.
	APIKey string

	// BaseURL overrides the service endpoint.
	BaseURL string

	// Model overrides the provider's default model.
	Model string
}

// Factory constructs a provider from settings.
type Factory func(s Settings) (Provider, error)

// Registry manages available provider constructors.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	defaultID string
}

// NewRegistry creates a new provider registry with the specified default provider ID.
func NewRegistry(defaultID string) *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		defaultID: defaultID,
	}
}

// Register adds a provider constructor under name.
// If a constructor with the same name already exists, it will be replaced.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// New constructs the named provider.
// If name is empty, the default provider is constructed.
// Returns an error if the provider is not registered or construction fails.
func (r *Registry) New(name string, s Settings) (Provider, error) {
	r.mu.RLock()
	if name == "" {
		name = r.defaultID
	}
	f, ok := r.factories[name]
	available := r.availableNames()
	r.mu.RUnlock()

	if !ok {
		if len(available) == 0 {
			return nil, fmt.Errorf("no providers registered")
		}
		return nil, fmt.Errorf("unknown provider %q; available: %v", name, available)
	}

	p, err := f(s)
	if err != nil {
		return nil, fmt.Errorf("creating %s provider: %w", name, err)
	}
	return p, nil
}

// SetDefault changes the default provider ID.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.factories[name]; !ok {
		return fmt.Errorf("provider %q not registered", name)
	}

	r.defaultID = name
	return nil
}

// Has returns true if a provider with the given name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// List returns the names of all registered providers.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.availableNames()
}

// availableNames returns sorted provider names (must hold read lock).
func (r *Registry) availableNames() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultName returns the name of the default provider.
func (r *Registry) DefaultName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultID
}
