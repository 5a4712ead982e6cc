package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// clearEnv unsets every variable that would override file configuration.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range []string{
		"COMMITDIGEST_PROVIDER", "COMMITDIGEST_MODEL", "COMMITDIGEST_TIMEZONE",
		"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENAI_BASE_URL", "COPILOT_BASE_URL",
	} {
		t.Setenv(v, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Provider != DefaultProvider {
		t.Errorf("expected provider %q, got %q", DefaultProvider, cfg.Provider)
	}
	if cfg.Timezone != "Asia/Kolkata" {
		t.Errorf("expected timezone Asia/Kolkata, got %q", cfg.Timezone)
	}
	if cfg.ScheduleAt != "02:30" {
		t.Errorf("expected schedule-at 02:30, got %q", cfg.ScheduleAt)
	}
	if cfg.MaxCommits != 50 {
		t.Errorf("expected max-commits 50, got %d", cfg.MaxCommits)
	}
	if cfg.Model != "" {
		t.Errorf("expected empty model, got %q", cfg.Model)
	}
	if cfg.Profile != "auto" {
		t.Errorf("expected profile auto, got %q", cfg.Profile)
	}
}

func TestConfigSetGet(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		key   string
		value string
	}{
		{"provider", "claude"},
		{"model", "gpt-4o"},
		{"openai-api-key", "sk-test456789"},
		{"anthropic-api-key", "sk-ant-test123"},
		{"openai-base-url", "http://localhost:8080/v1"},
		{"copilot-base-url", "http://localhost:5000"},
		{"timezone", "UTC"},
		{"schedule-at", "07:15"},
		{"max-commits", "25"},
		{"profile", "go"},
		{"backend", "native"},
		{"output-dir", "reports"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if err := cfg.Set(tt.key, tt.value); err != nil {
				t.Fatalf("Set(%q, %q) failed: %v", tt.key, tt.value, err)
			}

			got, err := cfg.Get(tt.key)
			if err != nil {
				t.Fatalf("Get(%q) failed: %v", tt.key, err)
			}

			// API keys are masked on Get
			if strings.HasSuffix(tt.key, "api-key") {
				if got == tt.value {
					t.Error("expected API key to be masked")
				}
			} else if got != tt.value {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.value)
			}
		})
	}

	if len(tests) != len(Keys) {
		t.Errorf("test covers %d keys, Keys lists %d", len(tests), len(Keys))
	}
}

func TestConfigSetInvalidValues(t *testing.T) {
	tests := []struct{ key, value string }{
		{"unknown-key", "value"},
		{"timezone", "Mars/Olympus_Mons"},
		{"schedule-at", "25:00"},
		{"schedule-at", "2:3"},
		{"max-commits", "0"},
		{"max-commits", "many"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := DefaultConfig()
			if err := cfg.Set(tt.key, tt.value); err == nil {
				t.Errorf("Set(%q, %q) expected error", tt.key, tt.value)
			}
		})
	}
}

func TestConfigGetUnknownKey(t *testing.T) {
	cfg := DefaultConfig()
	_, err := cfg.Get("unknown-key")
	if err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestConfigValidate(t *testing.T) {
	withProvider := func(provider string, mutate func(*Config)) *Config {
		cfg := DefaultConfig()
		cfg.Provider = provider
		if mutate != nil {
			mutate(cfg)
		}
		return cfg
	}

	tests := []struct {
		name       string
		cfg        *Config
		wantErr    bool
		missingKey bool
	}{
		{
			name: "valid openai config",
			cfg:  withProvider("openai", func(c *Config) { c.OpenAIAPIKey = "sk-test" }),
		},
		{
			name:       "openai without api key",
			cfg:        withProvider("openai", nil),
			wantErr:    true,
			missingKey: true,
		},
		{
			name: "valid claude config",
			cfg:  withProvider("claude", func(c *Config) { c.AnthropicAPIKey = "sk-ant-test" }),
		},
		{
			name:       "claude without api key",
			cfg:        withProvider("claude", nil),
			wantErr:    true,
			missingKey: true,
		},
		{
			name: "copilot needs no key",
			cfg:  withProvider("copilot", nil),
		},
		{
			name: "mock needs no key",
			cfg:  withProvider("mock", nil),
		},
		{
			name:    "unknown provider",
			cfg:     withProvider("unknown", nil),
			wantErr: true,
		},
		{
			name:    "bad timezone",
			cfg:     withProvider("copilot", func(c *Config) { c.Timezone = "Nowhere/Land" }),
			wantErr: true,
		},
		{
			name:    "bad schedule",
			cfg:     withProvider("copilot", func(c *Config) { c.ScheduleAt = "noon" }),
			wantErr: true,
		},
		{
			name:    "bad max commits",
			cfg:     withProvider("copilot", func(c *Config) { c.MaxCommits = -1 }),
			wantErr: true,
		},
		{
			name:    "bad backend",
			cfg:     withProvider("copilot", func(c *Config) { c.Backend = "svn" }),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if errors.Is(err, ErrMissingAPIKey) != tt.missingKey {
				t.Errorf("errors.Is(err, ErrMissingAPIKey) = %v, want %v", !tt.missingKey, tt.missingKey)
			}
		})
	}
}

func TestConfigValidate_UnknownProviderListsAll(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "bogus"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
	for _, name := range []string{"openai", "claude", "copilot", "mock"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not list %s", err, name)
		}
	}
}

func TestConfigAPIKeyAndBaseURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SetAPIKey("sk-flag")
	if cfg.OpenAIAPIKey != "sk-flag" || cfg.APIKey() != "sk-flag" {
		t.Errorf("SetAPIKey() did not target the openai key")
	}

	cfg.Provider = "claude"
	cfg.SetAPIKey("sk-ant")
	if cfg.AnthropicAPIKey != "sk-ant" || cfg.APIKey() != "sk-ant" {
		t.Errorf("SetAPIKey() did not target the anthropic key")
	}

	cfg.Provider = "copilot"
	if cfg.APIKey() != "" {
		t.Errorf("copilot should have no API key")
	}
	if cfg.BaseURL() != DefaultCopilotBaseURL {
		t.Errorf("BaseURL() = %q, want %q", cfg.BaseURL(), DefaultCopilotBaseURL)
	}
}

func TestConfigLocation(t *testing.T) {
	cfg := DefaultConfig()
	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("Location() failed: %v", err)
	}
	if loc.String() != "Asia/Kolkata" {
		t.Errorf("Location() = %s", loc)
	}
}

func TestConfigEnvOverrides(t *testing.T) {
	t.Setenv("COMMITDIGEST_PROVIDER", "claude")
	t.Setenv("COMMITDIGEST_MODEL", "claude-haiku")
	t.Setenv("COMMITDIGEST_TIMEZONE", "UTC")
	t.Setenv("ANTHROPIC_API_KEY", "env-anthropic-key")
	t.Setenv("OPENAI_API_KEY", "env-openai-key")
	t.Setenv("OPENAI_BASE_URL", "http://gateway/v1")
	t.Setenv("COPILOT_BASE_URL", "http://localhost:5000")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	if cfg.Provider != "claude" {
		t.Errorf("Provider = %q, want %q", cfg.Provider, "claude")
	}
	if cfg.Model != "claude-haiku" {
		t.Errorf("Model = %q, want %q", cfg.Model, "claude-haiku")
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("Timezone = %q, want UTC", cfg.Timezone)
	}
	if cfg.AnthropicAPIKey != "env-anthropic-key" {
		t.Errorf("AnthropicAPIKey = %q, want %q", cfg.AnthropicAPIKey, "env-anthropic-key")
	}
	if cfg.OpenAIAPIKey != "env-openai-key" {
		t.Errorf("OpenAIAPIKey = %q, want %q", cfg.OpenAIAPIKey, "env-openai-key")
	}
	if cfg.OpenAIBaseURL != "http://gateway/v1" {
		t.Errorf("OpenAIBaseURL = %q", cfg.OpenAIBaseURL)
	}
	if cfg.CopilotBaseURL != "http://localhost:5000" {
		t.Errorf("CopilotBaseURL = %q, want %q", cfg.CopilotBaseURL, "http://localhost:5000")
	}
}

func TestConfigSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	clearEnv(t)

	cfg := DefaultConfig()
	cfg.Provider = "claude"
	cfg.Model = "claude-opus-4-20250514"
	cfg.AnthropicAPIKey = "test-api-key"
	cfg.MaxCommits = 30
	cfg.Backend = "native"

	if err := cfg.Save(""); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	configPath := filepath.Join(tmpDir, DefaultConfigDir, DefaultConfigFile)
	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatal("config file was not created")
	}
	if !strings.Contains(string(data), "max-commits: 30") {
		t.Errorf("expected YAML with kebab-case keys, got:\n%s", data)
	}

	loaded, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if loaded.Provider != cfg.Provider {
		t.Errorf("Provider = %q, want %q", loaded.Provider, cfg.Provider)
	}
	if loaded.Model != cfg.Model {
		t.Errorf("Model = %q, want %q", loaded.Model, cfg.Model)
	}
	if loaded.AnthropicAPIKey != cfg.AnthropicAPIKey {
		t.Errorf("AnthropicAPIKey = %q, want %q", loaded.AnthropicAPIKey, cfg.AnthropicAPIKey)
	}
	if loaded.MaxCommits != 30 || loaded.Backend != "native" {
		t.Errorf("loaded = %+v", loaded)
	}
	if loaded.Timezone != DefaultTimezone {
		t.Errorf("Timezone = %q, want default", loaded.Timezone)
	}
}

func TestLoad_ExplicitPath(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("provider: copilot\nprofile: auto\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Provider != "copilot" || cfg.Profile != "auto" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.ScheduleAt != DefaultScheduleAt {
		t.Errorf("defaults should survive partial files, got schedule-at %q", cfg.ScheduleAt)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Provider != DefaultProvider {
		t.Errorf("Provider = %q, want default", cfg.Provider)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("provider: [unterminated"), 0o600)

	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", ""},
		{"short", "****"},
		{"12345678", "****"},
		{"123456789", "1234...6789"},
		{"sk-ant-REDACTED", "sk-a...xxxx"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got := maskAPIKey(tt.key)
			if got != tt.want {
				t.Errorf("maskAPIKey(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}
