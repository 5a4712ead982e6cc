// Package prompt provides interactive terminal prompts.
package prompt

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/mwistrand/commitdigest/internal/provider"
)

// Errors returned by SelectModel before any prompt is shown.
var (
	ErrNoModels       = errors.New("no models available")
	ErrNotInteractive = errors.New("cannot prompt for model: not running in an interactive terminal")
)

// IsInteractive returns true if stdin is connected to a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// SelectModel shows the models sorted by ID and returns the chosen ID.
// current, when listed, is marked and preselected.
func SelectModel(models []provider.ModelInfo, current string) (string, error) {
	if len(models) == 0 {
		return "", ErrNoModels
	}
	if !IsInteractive() {
		return "", ErrNotInteractive
	}

	selected := current
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select a model for the digest").
				Description("Use arrow keys to navigate, / to filter, enter to select").
				Options(ModelOptions(models, current)...).
				Value(&selected),
		),
	).WithAccessible(false)

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("model selection: %w", err)
	}
	return selected, nil
}

// ModelOptions builds the select options for models, sorted by ID.
func ModelOptions(models []provider.ModelInfo, current string) []huh.Option[string] {
	sorted := append([]provider.ModelInfo(nil), models...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	options := make([]huh.Option[string], len(sorted))
	for i, m := range sorted {
		options[i] = huh.NewOption(Label(m, current), m.ID)
	}
	return options
}

// Label formats a model for display.
func Label(m provider.ModelInfo, current string) string {
	label := m.Name
	if label == "" {
		label = m.ID
	}
	if m.Description != "" {
		label = fmt.Sprintf("%s - %s", label, m.Description)
	}
	if m.ID == current {
		label += " (current)"
	}
	return label
}
