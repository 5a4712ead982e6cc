package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"
	// Zone lookups must work on hosts without a system zoneinfo database.
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// ErrMissingAPIKey is returned by Validate when the selected provider needs
// a key that is not configured.
var ErrMissingAPIKey = errors.New("API key not found")

// Config holds all configuration for the commitdigest CLI.
type Config struct {
	// Provider specifies which chat-completion provider to use.
	Provider string `yaml:"provider,omitempty"`

	// Model specifies the model to use with the selected provider.
	// Empty selects the provider's default.
	Model string `yaml:"model,omitempty"`

	// OpenAIAPIKey is the API key for the OpenAI provider.
	OpenAIAPIKey string `yaml:"openai-api-key,omitempty"`

	// AnthropicAPIKey is the API key for the Anthropic/Claude provider.
	AnthropicAPIKey string `yaml:"anthropic-api-key,omitempty"`

	// OpenAIBaseURL overrides the OpenAI endpoint.
	OpenAIBaseURL string `yaml:"openai-base-url,omitempty"`

	// CopilotBaseURL is the URL of the copilot-api proxy server.
	CopilotBaseURL string `yaml:"copilot-base-url,omitempty"`

	// Timezone is an IANA zone name.
	Timezone string `yaml:"timezone,omitempty"`

	// ScheduleAt is the HH:MM start time used by --schedule.
	ScheduleAt string `yaml:"schedule-at,omitempty"`

	// MaxCommits caps the commits kept for one report.
	MaxCommits int `yaml:"max-commits,omitempty"`

	// Profile is a language profile name or "auto".
	Profile string `yaml:"profile,omitempty"`

	// Backend selects the git backend ("cli" or "native").
	Backend string `yaml:"backend,omitempty"`

	// OutputDir is where reports are written.
	OutputDir string `yaml:"output-dir,omitempty"`
}

// Keys lists the configuration keys accepted by Get and Set.
var Keys = []string{
	"provider",
	"model",
	"openai-api-key",
	"anthropic-api-key",
	"openai-base-url",
	"copilot-base-url",
	"timezone",
	"schedule-at",
	"max-commits",
	"profile",
	"backend",
	"output-dir",
}

var clockPattern = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d$`)

// Load reads configuration from path (or the default config file when path
// is empty) and environment variables. Environment variables take precedence
// over file configuration.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		var err error
		path, err = ConfigPath()
		if err != nil {
			return nil, fmt.Errorf("determining config path: %w", err)
		}
	}

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Environment variables override file configuration
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save writes the configuration to path, or the default config file when
// path is empty.
func (c *Config) Save(path string) error {
	if path == "" {
		var err error
		path, err = ConfigPath()
		if err != nil {
			return fmt.Errorf("determining config path: %w", err)
		}
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// ConfigPath returns the full path to the configuration file.
func ConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, DefaultConfigDir, DefaultConfigFile), nil
}

// Validate checks if the configuration has all required values for the
// selected provider. A missing key wraps ErrMissingAPIKey.
func (c *Config) Validate() error {
	switch c.Provider {
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: set OPENAI_API_KEY, pass --api-key, or run 'commitdigest config set openai-api-key <key>'", ErrMissingAPIKey)
		}
	case "claude":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("%w: set ANTHROPIC_API_KEY, pass --api-key, or run 'commitdigest config set anthropic-api-key <key>'", ErrMissingAPIKey)
		}
	case "copilot", "mock":
		// Local providers need no key
	default:
		return fmt.Errorf("unknown provider %q; available providers: openai, claude, copilot, mock", c.Provider)
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	if !clockPattern.MatchString(c.ScheduleAt) {
		return fmt.Errorf("invalid schedule-at %q; expected HH:MM", c.ScheduleAt)
	}
	if c.MaxCommits <= 0 {
		return fmt.Errorf("max-commits must be positive, got %d", c.MaxCommits)
	}
	switch c.Backend {
	case "cli", "native":
	default:
		return fmt.Errorf("unknown backend %q; available backends: cli, native", c.Backend)
	}
	return nil
}

// APIKey returns the key for the selected provider.
func (c *Config) APIKey() string {
	switch c.Provider {
	case "openai":
		return c.OpenAIAPIKey
	case "claude":
		return c.AnthropicAPIKey
	}
	return ""
}

// SetAPIKey stores key for the selected provider. Providers without a key
// ignore it.
func (c *Config) SetAPIKey(key string) {
	switch c.Provider {
	case "openai":
		c.OpenAIAPIKey = key
	case "claude":
		c.AnthropicAPIKey = key
	}
}

// BaseURL returns the endpoint override for the selected provider.
func (c *Config) BaseURL() string {
	switch c.Provider {
	case "openai":
		return c.OpenAIBaseURL
	case "copilot":
		if c.CopilotBaseURL == "" {
			return DefaultCopilotBaseURL
		}
		return c.CopilotBaseURL
	}
	return ""
}

// Location loads the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("COMMITDIGEST_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := os.Getenv("COMMITDIGEST_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("COMMITDIGEST_TIMEZONE"); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAIAPIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		c.AnthropicAPIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.OpenAIBaseURL = v
	}
	if v := os.Getenv("COPILOT_BASE_URL"); v != "" {
		c.CopilotBaseURL = v
	}
}

// Set updates a configuration key with the given value.
func (c *Config) Set(key, value string) error {
	switch key {
	case "provider":
		c.Provider = value
	case "model":
		c.Model = value
	case "openai-api-key":
		c.OpenAIAPIKey = value
	case "anthropic-api-key":
		c.AnthropicAPIKey = value
	case "openai-base-url":
		c.OpenAIBaseURL = value
	case "copilot-base-url":
		c.CopilotBaseURL = value
	case "timezone":
		if _, err := time.LoadLocation(value); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", value, err)
		}
		c.Timezone = value
	case "schedule-at":
		if !clockPattern.MatchString(value) {
			return fmt.Errorf("invalid schedule-at %q; expected HH:MM", value)
		}
		c.ScheduleAt = value
	case "max-commits":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("max-commits must be a positive integer, got %q", value)
		}
		c.MaxCommits = n
	case "profile":
		c.Profile = value
	case "backend":
		c.Backend = value
	case "output-dir":
		c.OutputDir = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

// Get retrieves a configuration value by key. API keys are masked.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "provider":
		return c.Provider, nil
	case "model":
		return c.Model, nil
	case "openai-api-key":
		return maskAPIKey(c.OpenAIAPIKey), nil
	case "anthropic-api-key":
		return maskAPIKey(c.AnthropicAPIKey), nil
	case "openai-base-url":
		return c.OpenAIBaseURL, nil
	case "copilot-base-url":
		return c.CopilotBaseURL, nil
	case "timezone":
		return c.Timezone, nil
	case "schedule-at":
		return c.ScheduleAt, nil
	case "max-commits":
		return strconv.Itoa(c.MaxCommits), nil
	case "profile":
		return c.Profile, nil
	case "backend":
		return c.Backend, nil
	case "output-dir":
		return c.OutputDir, nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// maskAPIKey returns a masked version of an API key for display.
func maskAPIKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
