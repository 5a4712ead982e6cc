package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mwistrand/commitdigest/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage commitdigest configuration",
	Long: `View and modify commitdigest configuration.

Available keys:
  provider           AI provider to use (openai, claude, copilot)
  model              Model name for the selected provider
  openai-api-key     API key for OpenAI
  anthropic-api-key  API key for Claude/Anthropic
  openai-base-url    Alternative OpenAI-compatible endpoint
  copilot-base-url   URL of the copilot-api proxy
  timezone           IANA time zone for the window, logs and schedule
  schedule-at        HH:MM start time used by --schedule
  max-commits        Maximum commits analyzed per report
  profile            Language profile (kotlin, java, go, ...) or auto
  backend            Git backend (cli or native)
  output-dir         Directory for saved reports`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Show current config when run without subcommands
		return showConfig(cmd.OutOrStdout())
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		value, err := cfg.Get(args[0])
		if err != nil {
			return err
		}

		if value == "" {
			value = "(not set)"
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if err := cfg.Set(args[0], args[1]); err != nil {
			return err
		}

		if err := cfg.Save(cfgFile); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configFilePath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
}

// configFilePath returns --config when given, otherwise the default path.
func configFilePath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.ConfigPath()
}

func showConfig(w io.Writer) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	fmt.Fprintln(w, "Current configuration:")
	fmt.Fprintln(w)

	for _, key := range config.Keys {
		value, _ := cfg.Get(key)
		if value == "" {
			value = "(not set)"
		}
		fmt.Fprintf(w, "  %-20s %s\n", key+":", value)
	}

	fmt.Fprintln(w)
	path, _ := configFilePath()
	fmt.Fprintf(w, "Config file: %s\n", path)
	return nil
}
