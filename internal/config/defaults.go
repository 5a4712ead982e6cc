// Package config provides configuration management for the commitdigest CLI.
package config

const (
	// DefaultProvider is the default chat-completion provider.
	DefaultProvider = "openai"

	// DefaultTimezone is the zone used for the time window, log timestamps
	// and the scheduled start.
	DefaultTimezone = "Asia/Kolkata"

	// DefaultScheduleAt is the local clock time used by --schedule.
	DefaultScheduleAt = "02:30"

	// DefaultMaxCommits caps the commits kept for one report.
	DefaultMaxCommits = 50

	// DefaultProfile detects the language profile from the repository's
	// build files.
	DefaultProfile = "auto"

	// DefaultBackend is the version-control backend.
	DefaultBackend = "cli"

	// DefaultOutputDir is where reports are written.
	DefaultOutputDir = "."

	// DefaultCopilotBaseURL is the default URL for the copilot-api proxy.
	DefaultCopilotBaseURL = "http://localhost:4141"

	// DefaultConfigDir is the directory name for commitdigest configuration.
	DefaultConfigDir = ".config/commitdigest"

	// DefaultConfigFile is the configuration file name.
	DefaultConfigFile = "config.yaml"
)

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Provider:   DefaultProvider,
		Timezone:   DefaultTimezone,
		ScheduleAt: DefaultScheduleAt,
		MaxCommits: DefaultMaxCommits,
		Profile:    DefaultProfile,
		Backend:    DefaultBackend,
		OutputDir:  DefaultOutputDir,
	}
}
