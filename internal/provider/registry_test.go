package provider

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// testProvider is a minimal provider implementation for testing.
type testProvider struct {
	name     string
	settings Settings
}

func (p *testProvider) Name() string { return p.name }
func (p *testProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	return &CompletionResponse{Text: "test"}, nil
}

func factoryFor(name string) Factory {
	return func(s Settings) (Provider, error) {
		return &testProvider{name: name, settings: s}, nil
	}
}

func TestRegistryRegisterAndNew(t *testing.T) {
	r := NewRegistry("default")

	r.Register("provider1", factoryFor("provider1"))
	r.Register("provider2", factoryFor("provider2"))

	got, err := r.New("provider1", Settings{APIKey: "k1"})
	if err != nil {
		t.Fatalf("New(provider1) failed: %v", err)
	}
	if got.Name() != "provider1" {
		t.Errorf("Name() = %q, want %q", got.Name(), "provider1")
	}
	if got.(*testProvider).settings.APIKey != "k1" {
		t.Error("settings were not passed to the factory")
	}

	got, err = r.New("provider2", Settings{})
	if err != nil {
		t.Fatalf("New(provider2) failed: %v", err)
	}
	if got.Name() != "provider2" {
		t.Errorf("Name() = %q, want %q", got.Name(), "provider2")
	}
}

func TestRegistryDefault(t *testing.T) {
	r := NewRegistry("provider1")
	r.Register("provider1", factoryFor("provider1"))

	// New with empty name constructs the default
	got, err := r.New("", Settings{})
	if err != nil {
		t.Fatalf("New('') failed: %v", err)
	}
	if got.Name() != "provider1" {
		t.Errorf("Name() = %q, want %q", got.Name(), "provider1")
	}
	if r.DefaultName() != "provider1" {
		t.Errorf("DefaultName() = %q", r.DefaultName())
	}
}

func TestRegistryUnknown(t *testing.T) {
	r := NewRegistry("")

	_, err := r.New("missing", Settings{})
	if err == nil || !strings.Contains(err.Error(), "no providers registered") {
		t.Errorf("expected no providers error, got %v", err)
	}

	r.Register("a", factoryFor("a"))
	_, err = r.New("missing", Settings{})
	if err == nil || !strings.Contains(err.Error(), `unknown provider "missing"`) {
		t.Errorf("expected unknown provider error, got %v", err)
	}
}

func TestRegistryFactoryError(t *testing.T) {
	r := NewRegistry("broken")
	sentinel := errors.New("api key is required")
	r.Register("broken", func(Settings) (Provider, error) { return nil, sentinel })

	_, err := r.New("", Settings{})
	if !errors.Is(err, sentinel) {
		t.Errorf("expected wrapped factory error, got %v", err)
	}
}

func TestRegistrySetDefault(t *testing.T) {
	r := NewRegistry("a")
	r.Register("a", factoryFor("a"))
	r.Register("b", factoryFor("b"))

	if err := r.SetDefault("b"); err != nil {
		t.Fatalf("SetDefault(b) failed: %v", err)
	}
	if r.DefaultName() != "b" {
		t.Errorf("DefaultName() = %q, want b", r.DefaultName())
	}
	if err := r.SetDefault("missing"); err == nil {
		t.Error("expected error for unregistered default")
	}
}

func TestRegistryHasAndList(t *testing.T) {
	r := NewRegistry("")
	r.Register("zeta", factoryFor("zeta"))
	r.Register("alpha", factoryFor("alpha"))

	if !r.Has("zeta") || r.Has("beta") {
		t.Error("Has() returned unexpected result")
	}

	list := r.List()
	if len(list) != 2 || list[0] != "alpha" || list[1] != "zeta" {
		t.Errorf("List() = %v, want [alpha zeta]", list)
	}
}
