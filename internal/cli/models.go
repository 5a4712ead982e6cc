package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwistrand/commitdigest/internal/config"
	"github.com/mwistrand/commitdigest/internal/logging"
	"github.com/mwistrand/commitdigest/internal/prompt"
	"github.com/mwistrand/commitdigest/internal/provider"
	"github.com/mwistrand/commitdigest/internal/provider/claude"
	"github.com/mwistrand/commitdigest/internal/provider/copilot"
	"github.com/mwistrand/commitdigest/internal/provider/mock"
	"github.com/mwistrand/commitdigest/internal/provider/openai"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models offered by the configured provider",
	Long: `List the models offered by the configured provider.

The current model is marked. Use --provider to query another provider.

Example:
  commitdigest models
  commitdigest models --provider claude`,
	Args: cobra.NoArgs,
	RunE: runModels,
}

var modelsProvider string

func init() {
	modelsCmd.Flags().StringVar(&modelsProvider, "provider", "", "AI provider to query (default from config)")
}

// registerProviders adds every supported provider to r.
func registerProviders(r *provider.Registry) {
	r.Register("openai", openai.Factory)
	r.Register("claude", claude.Factory)
	r.Register("copilot", copilot.Factory)
	r.Register("mock", mock.Factory)
}

func runModels(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("configuration not loaded")
	}
	if modelsProvider != "" {
		cfg.Provider = modelsProvider
	}
	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			return missingKeyError(cfg.Provider, err)
		}
		return err
	}

	logger := logging.New(logging.Options{Console: cmd.ErrOrStderr()})
	p, closeProvider, err := newProvider(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeProvider()

	lister, ok := p.(provider.ModelLister)
	if !ok {
		return fmt.Errorf("provider %s cannot list models", p.Name())
	}
	models, err := lister.ListModels(ctx)
	if err != nil {
		return err
	}

	current := cfg.Model
	if sel, ok := p.(provider.ModelSelector); ok {
		current = sel.Model()
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Models for %s:\n\n", p.Name())
	for _, opt := range prompt.ModelOptions(models, current) {
		fmt.Fprintf(w, "  %s\n", opt.Key)
	}
	return nil
}
