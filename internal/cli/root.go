// Package cli provides the command-line interface for commitdigest.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mwistrand/commitdigest/internal/clierr"
	"github.com/mwistrand/commitdigest/internal/config"
)

var (
	// Version is set at build time.
	Version = "dev"

	// Commit is set at build time.
	Commit = "none"

	// Date is set at build time.
	Date = "unknown"
)

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
)

// rootCmd runs the summary when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "commitdigest",
	Short: "Summarize your recent git commits with AI",
	Long: `Commitdigest collects the commits you authored across every local and
remote branch within a time window, aggregates what changed, and asks a
chat-completion provider for a short high-level summary. The result is
saved as a Markdown report.

Example:
  commitdigest                       Summarize the last 24 hours
  commitdigest --hours 72 --no-save  Print a 3-day summary without saving
  commitdigest --schedule            Wait for the configured time, then run once
  commitdigest config set openai-api-key <key>   Set your API key`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for help and version commands
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return clierr.Wrap(1, "loading config", err)
		}
		return nil
	},
	RunE: runSummary,
}

// Execute runs the root command with ctx. Cancelling ctx interrupts the run.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// GetConfig returns the loaded configuration. Only valid after command execution starts.
func GetConfig() *config.Config {
	return cfg
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/commitdigest/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(modelsCmd)
}

// SetVersionInfo sets the version information for the CLI.
// This is called from main() with values set at build time.
func SetVersionInfo(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}

// Verbose prints a message if verbose mode is enabled.
func Verbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// HandleError prints err for the user and returns the process exit code.
// An interrupted run exits 0.
func HandleError(w io.Writer, err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(w, "\n⏹️  Analysis interrupted by user")
		return 0
	case errors.As(err, new(clierr.ExitCoder)):
		fmt.Fprintf(w, "❌ %v\n", err)
	default:
		fmt.Fprintf(w, "❌ Error: %v\n", err)
	}
	if hint := clierr.HintOf(err); hint != "" {
		fmt.Fprintf(w, "💡 %s\n", hint)
	}
	return clierr.ExitCodeOf(err)
}

// colorEnabled reports whether w is a terminal and NO_COLOR is unset.
func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
