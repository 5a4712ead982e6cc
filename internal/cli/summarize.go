package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mwistrand/commitdigest/internal/analysis"
	"github.com/mwistrand/commitdigest/internal/clierr"
	"github.com/mwistrand/commitdigest/internal/collect"
	"github.com/mwistrand/commitdigest/internal/config"
	"github.com/mwistrand/commitdigest/internal/digest"
	"github.com/mwistrand/commitdigest/internal/git"
	"github.com/mwistrand/commitdigest/internal/logging"
	"github.com/mwistrand/commitdigest/internal/prompt"
	"github.com/mwistrand/commitdigest/internal/provider"
	"github.com/mwistrand/commitdigest/internal/render"
	"github.com/mwistrand/commitdigest/internal/schedule"
)

// DefaultHours is the default look-back window.
const DefaultHours = 24

// SummaryTitle heads the report printed to the terminal.
const SummaryTitle = "📄 HIGH-LEVEL TECHNICAL SUMMARY:"

var (
	hoursBack    int
	noSave       bool
	quiet        bool
	scheduled    bool
	apiKey       string
	allAuthors   bool
	maxCommits   int
	providerName string
	modelName    string
	selectModel  bool
	backendName  string
	profileName  string
	outputDir    string
	noColor      bool
)

func init() {
	f := rootCmd.Flags()
	f.IntVar(&hoursBack, "hours", DefaultHours, "Hours back to analyze")
	f.BoolVar(&noSave, "no-save", false, "Don't save the report to a file")
	f.BoolVar(&quiet, "quiet", false, "Quiet mode: only warnings and errors")
	f.BoolVar(&scheduled, "schedule", false, "Wait until the configured daily time, then run once")
	f.StringVar(&apiKey, "api-key", "", "API key for the selected provider (overrides config and environment)")
	f.BoolVar(&allAuthors, "all-authors", false, "Summarize every author's commits on the current branch")
	f.IntVar(&maxCommits, "max-commits", 0, "Maximum commits to analyze (default from config)")
	f.StringVar(&providerName, "provider", "", "AI provider: openai, claude, copilot (default from config)")
	f.StringVar(&modelName, "model", "", "Model to use (default from config)")
	f.BoolVar(&selectModel, "select-model", false, "Pick the model interactively")
	f.StringVar(&backendName, "backend", "", "Git backend: cli or native (default from config)")
	f.StringVar(&profileName, "profile", "", "Language profile or \"auto\" (default from config)")
	f.StringVar(&outputDir, "output-dir", "", "Directory for saved reports (default from config)")
	f.BoolVar(&noColor, "no-color", false, "Disable colored output")
}

func runSummary(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("configuration not loaded")
	}
	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			return missingKeyError(cfg.Provider, err)
		}
		return clierr.Wrap(1, "Configuration Error", err)
	}
	if hoursBack <= 0 {
		return clierr.New(2, fmt.Sprintf("--hours must be positive, got %d", hoursBack))
	}
	loc, err := cfg.Location()
	if err != nil {
		return clierr.Wrap(1, "Configuration Error", err)
	}

	out := render.NewConsole(cmd.OutOrStdout(), !noColor && colorEnabled(cmd.OutOrStdout()))

	if scheduled {
		if err := waitForSchedule(ctx, cfg, loc, out); err != nil {
			return err
		}
	}

	return summarize(ctx, cmd, cfg, loc, out)
}

// applyFlags lets command-line flags override file and environment settings.
func applyFlags(cfg *config.Config) {
	if providerName != "" {
		cfg.Provider = providerName
	}
	if modelName != "" {
		cfg.Model = modelName
	}
	if apiKey != "" {
		cfg.SetAPIKey(apiKey)
	}
	if maxCommits > 0 {
		cfg.MaxCommits = maxCommits
	}
	if backendName != "" {
		cfg.Backend = backendName
	}
	if profileName != "" {
		cfg.Profile = profileName
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
}

// missingKeyError wraps a missing-credential error with exit code 1 and a
// hint naming the environment variable to set.
func missingKeyError(providerID string, err error) error {
	return clierr.WithHint(1, "Configuration Error", apiKeyHint(providerID), err)
}

func apiKeyHint(providerID string) string {
	switch providerID {
	case "claude":
		return "Set your Anthropic API key: export ANTHROPIC_API_KEY='your_key_here'"
	default:
		return "Set your OpenAI API key: export OPENAI_API_KEY='your_key_here'"
	}
}

func waitForSchedule(ctx context.Context, cfg *config.Config, loc *time.Location, out *render.Console) error {
	clock, err := schedule.ParseClock(cfg.ScheduleAt)
	if err != nil {
		return clierr.Wrap(1, "Configuration Error", err)
	}

	now := time.Now()
	target := schedule.Next(now, clock, loc)
	wait := target.Sub(now)

	out.Line("⏰ Scheduled to run at %s %s", clock, target.Format("MST"))
	out.Line("🕐 Next run: %s (%s)", target.Format("2006-01-02 15:04:05 MST"), schedule.Describe(now, target))
	out.Line("⏳ Waiting %s hours...", schedule.Hours(wait))

	return schedule.Wait(ctx, wait)
}

// summarize runs one collection, digest and report cycle.
func summarize(ctx context.Context, cmd *cobra.Command, cfg *config.Config, loc *time.Location, out *render.Console) error {
	now := time.Now().In(loc)
	logFile := logging.FileName(now)

	consoleLevel := slog.LevelInfo
	switch {
	case quiet:
		consoleLevel = slog.LevelWarn
	case verbose:
		consoleLevel = slog.LevelDebug
	}
	logger := logging.New(logging.Options{
		Console:      cmd.ErrOrStderr(),
		ConsoleLevel: consoleLevel,
		FilePath:     logFile,
		FileLevel:    slog.LevelInfo,
		Location:     loc,
		Warn:         cmd.ErrOrStderr(),
	})

	variant := collect.VariantMine
	if allAuthors {
		variant = collect.VariantAll
	}

	logger.Info("🚀 Git Commit Summarizer - High-Level Technical Analysis of MY changes")
	logger.Info(strings.Repeat("=", 60))

	Verbose("Opening git repository (%s backend)...", cfg.Backend)
	src, err := git.Open("", cfg.Backend)
	if err != nil {
		if errors.Is(err, git.ErrNotARepository) {
			logger.Error("Not in a git repository")
			return clierr.WithHint(1, "not in a git repository", "Please run from your project root.", err)
		}
		return fmt.Errorf("opening repository: %w", err)
	}
	repoDir := repoRoot(ctx, src)

	profile, err := analysis.ResolveProfile(cfg.Profile, repoDir)
	if err != nil {
		return clierr.Wrap(1, "Configuration Error", err)
	}
	Verbose("Using %s profile", profile.Name)

	p, closeProvider, err := newProvider(ctx, cfg, logger)
	if err != nil {
		return clierr.Wrap(1, "initializing AI provider", err)
	}
	defer closeProvider()

	current, err := src.CurrentBranch(ctx)
	if err != nil {
		logger.Warn("Could not determine current branch", "error", err)
		current = "HEAD"
	}

	var (
		id       git.Identity
		branches []git.Branch
		remote   string
	)
	if variant == collect.VariantMine {
		logger.Info(fmt.Sprintf("🔍 Analyzing MY commits from the last %d hours across all branches...", hoursBack))
		id = src.Identity(ctx)
		if id.IsEmpty() {
			logger.Warn("No git user.name or user.email configured; no commits can match")
		}
		branches = git.ListBranches(ctx, src)
		if remote, err = src.RemoteURL(ctx, "origin"); err != nil {
			logger.Debug("No origin remote", "error", err)
		}
	} else {
		logger.Info(fmt.Sprintf("🔍 Analyzing all commits from the last %d hours on %s...", hoursBack, current))
		branches = []git.Branch{{Name: current, Ref: "HEAD"}}
	}

	since := now.Add(-time.Duration(hoursBack) * time.Hour)
	result := collect.New(src, collect.Options{
		Since:      since,
		Variant:    variant,
		MaxCommits: cfg.MaxCommits,
		Profile:    profile,
	}, logger).Collect(ctx, branches, id)
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(result.Commits) == 0 {
		msg := fmt.Sprintf("No commits by you found in the last %d hours across any branch.", hoursBack)
		if variant == collect.VariantAll {
			msg = fmt.Sprintf("No commits found in the last %d hours on %s.", hoursBack, current)
		}
		logger.Info(msg)
		if !quiet {
			out.Report(SummaryTitle, msg)
		}
		return nil
	}

	a := analysis.Analyze(result.Commits)
	logger.Info(fmt.Sprintf("📊 Analysis: %d commits, %d %s files, %d branches",
		a.TotalCommits, len(a.LanguageFiles), profile.Language, len(a.Branches)))

	opts := digest.DefaultOptions()
	opts.Variant = variant
	opts.Profile = profile
	builder, err := digest.New(p, opts, logger)
	if err != nil {
		return fmt.Errorf("preparing digest: %w", err)
	}

	logger.Info("🤖 Generating high-level technical summary...")
	d := builder.Build(ctx, digest.Input{Commits: result.Commits, Analysis: a, Branch: current})
	if err := ctx.Err(); err != nil {
		return err
	}

	md := render.Markdown(render.Report{
		Variant:    variant,
		Author:     id,
		Generated:  now,
		Hours:      hoursBack,
		Repository: repoDir,
		Branch:     current,
		RemoteURL:  remote,
		Language:   profile.Language,
		Analysis:   a,
		Commits:    result.Commits,
		Digest:     d.Text,
		MaxCommits: cfg.MaxCommits,
		MaxBullets: opts.MaxBullets,
		MaxWords:   opts.MaxWordsPerBullet,
		LogFile:    logFile,
	})

	if !noSave {
		path, err := render.Save(md, cfg.OutputDir, render.FilePrefix(variant), now)
		if err != nil {
			logger.Error(fmt.Sprintf("Error saving report: %v", err))
		} else {
			logger.Info(fmt.Sprintf("💾 Report saved to: %s (%s)", path, humanize.Bytes(uint64(len(md)))))
		}
	}

	logger.Info("✅ Analysis completed!")
	logger.Info(fmt.Sprintf("📄 Log file: %s", logFile))

	if !quiet {
		out.Report(SummaryTitle, md)
	}
	return nil
}

// newRegistry registers every chat-completion provider.
func newRegistry() *provider.Registry {
	r := provider.NewRegistry(config.DefaultProvider)
	registerProviders(r)
	return r
}

// newProvider builds the configured provider. For copilot it starts the
// local proxy when needed; the returned func stops it again.
func newProvider(ctx context.Context, cfg *config.Config, logger *slog.Logger) (provider.Provider, func(), error) {
	p, err := newRegistry().New(cfg.Provider, provider.Settings{
		APIKey:  cfg.APIKey(),
		BaseURL: cfg.BaseURL(),
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {}
	if starter, ok := p.(proxyStarter); ok {
		started, err := starter.EnsureProxyRunning(ctx, func(format string, args ...any) {
			logger.Info(fmt.Sprintf(format, args...))
		})
		if err != nil {
			return nil, nil, fmt.Errorf("starting copilot proxy: %w", err)
		}
		if started {
			cleanup = starter.Close
		}
	}

	if selectModel {
		if err := chooseModel(ctx, p); err != nil {
			cleanup()
			return nil, nil, err
		}
	}
	return p, cleanup, nil
}

// repoRoot returns the top-level directory of the repository behind src,
// falling back to its working directory.
func repoRoot(ctx context.Context, src git.Source) string {
	if r, ok := src.(interface {
		GetRootDir(context.Context) (string, error)
	}); ok {
		if root, err := r.GetRootDir(ctx); err == nil {
			return root
		}
	}
	if d, ok := src.(interface{ Dir() string }); ok {
		return d.Dir()
	}
	return ""
}

// proxyStarter is implemented by providers backed by a local proxy process.
type proxyStarter interface {
	EnsureProxyRunning(ctx context.Context, logFn func(string, ...any)) (bool, error)
	Close()
}

// chooseModel lets the user pick one of the provider's models.
func chooseModel(ctx context.Context, p provider.Provider) error {
	lister, ok := p.(provider.ModelLister)
	if !ok {
		return fmt.Errorf("provider %s cannot list models", p.Name())
	}
	sel, ok := p.(provider.ModelSelector)
	if !ok {
		return fmt.Errorf("provider %s does not support model selection", p.Name())
	}

	models, err := lister.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("listing models: %w", err)
	}
	id, err := prompt.SelectModel(models, sel.Model())
	if err != nil {
		return err
	}
	sel.SetModel(id)
	return nil
}
