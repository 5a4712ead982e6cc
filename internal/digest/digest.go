// Package digest turns collected commits into a short natural-language
// summary by asking a chat-completion provider. It never fails: any provider
// error becomes a fallback text that is embedded in the report instead.
package digest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mwistrand/commitdigest/internal/analysis"
	"github.com/mwistrand/commitdigest/internal/collect"
	"github.com/mwistrand/commitdigest/internal/digest/prompts"
	"github.com/mwistrand/commitdigest/internal/git"
	"github.com/mwistrand/commitdigest/internal/provider"
)

// Digest texts used when there is nothing to summarize.
const (
	NoCommitsMessage    = "• No commits found in the specified time period by you."
	NoCommitsMessageAll = "• No commits found in the specified time period."
)

// FallbackPrefix starts every digest produced after a provider failure.
const FallbackPrefix = "• AI summary failed"

// Bullet is the marker counted when logging the size of a digest.
const Bullet = "•"

// Options tunes prompt composition and the provider call.
type Options struct {
	// Variant selects the bullet prompt (mine) or the sectioned prompt (all).
	Variant collect.Variant

	// Profile supplies the language label and file filter.
	Profile analysis.Profile

	// Model overrides the provider's model when non-empty.
	Model string

	// MaxBullets is the exact bullet count requested.
	MaxBullets int

	// MaxWordsPerBullet is the word ceiling per bullet.
	MaxWordsPerBullet int

	// MaxCommitsInPrompt caps the commits listed in the bullet prompt.
	MaxCommitsInPrompt int

	// DisplayCap caps the commits listed in the sectioned prompt.
	DisplayCap int

	// MaxLanguageFiles caps the language files listed per commit.
	MaxLanguageFiles int

	// MaxTokens bounds the response size.
	MaxTokens int

	// Temperature is the sampling temperature. Nil selects the default;
	// use Float to request an explicit value, including zero.
	Temperature *float64

	// Timeout bounds the provider call.
	Timeout time.Duration
}

// DefaultOptions returns the standard digest settings.
func DefaultOptions() Options {
	return Options{
		MaxBullets:         6,
		MaxWordsPerBullet:  100,
		MaxCommitsInPrompt: 20,
		DisplayCap:         10,
		MaxLanguageFiles:   3,
		MaxTokens:          800,
		Temperature:        Float(0.3),
		Timeout:            60 * time.Second,
	}
}

// Float returns a pointer to v for Options.Temperature.
func Float(v float64) *float64 {
	return &v
}

// Input is the material a digest is written from.
type Input struct {
	// Commits are the retained commits, newest first.
	Commits []git.Commit

	// Analysis is the aggregate of Commits.
	Analysis *analysis.Analysis

	// Branch names the scanned branch in the all-authors variant.
	Branch string
}

// Result is the digest outcome.
type Result struct {
	// Text is the provider's answer or a fallback message.
	Text string

	// Model is the model that answered, if any.
	Model string

	// Usage is the token accounting, zero on failure.
	Usage provider.Usage

	// Bullets counts lines of Text starting with Bullet.
	Bullets int

	// Err is the provider failure that produced a fallback text.
	Err error
}

// Failed reports whether Text is a fallback message.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Builder composes prompts and calls a provider.
type Builder struct {
	provider provider.Provider
	opts     Options
	logger   *slog.Logger
	tmpl     *template.Template
}

// New creates a Builder. Zero-valued options fall back to DefaultOptions.
func New(p provider.Provider, opts Options, logger *slog.Logger) (*Builder, error) {
	def := DefaultOptions()
	if opts.MaxBullets <= 0 {
		opts.MaxBullets = def.MaxBullets
	}
	if opts.MaxWordsPerBullet <= 0 {
		opts.MaxWordsPerBullet = def.MaxWordsPerBullet
	}
	if opts.MaxCommitsInPrompt <= 0 {
		opts.MaxCommitsInPrompt = def.MaxCommitsInPrompt
	}
	if opts.DisplayCap <= 0 {
		opts.DisplayCap = def.DisplayCap
	}
	if opts.MaxLanguageFiles <= 0 {
		opts.MaxLanguageFiles = def.MaxLanguageFiles
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = def.MaxTokens
	}
	if opts.Temperature == nil {
		opts.Temperature = def.Temperature
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.Profile.Name == "" {
		opts.Profile, _ = analysis.LookupProfile(analysis.DefaultProfile)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	tmpl, err := template.ParseFS(prompts.FS, "*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing prompt templates: %w", err)
	}

	return &Builder{provider: p, opts: opts, logger: logger, tmpl: tmpl}, nil
}

// Options returns the effective options.
func (b *Builder) Options() Options {
	return b.opts
}

// Build writes the digest for in. Without commits the provider is not called.
func (b *Builder) Build(ctx context.Context, in Input) Result {
	if len(in.Commits) == 0 {
		if b.opts.Variant == collect.VariantAll {
			return Result{Text: NoCommitsMessageAll}
		}
		return Result{Text: NoCommitsMessage}
	}

	system, prompt, err := b.Prompt(in)
	if err != nil {
		return b.fallback(err)
	}

	b.logger.Info(fmt.Sprintf("AI Configuration: Provider=%s, Model=%s, MaxTokens=%d, MaxBullets=%d, MaxWords=%d",
		b.provider.Name(), b.modelName(), b.opts.MaxTokens, b.opts.MaxBullets, b.opts.MaxWordsPerBullet))

	ctx, cancel := context.WithTimeout(ctx, b.opts.Timeout)
	defer cancel()

	resp, err := b.provider.Complete(ctx, &provider.CompletionRequest{
		Model:       b.opts.Model,
		System:      system,
		Prompt:      prompt,
		Temperature: *b.opts.Temperature,
		MaxTokens:   b.opts.MaxTokens,
	})
	if err != nil {
		return b.fallback(err)
	}

	if !resp.Usage.IsZero() {
		b.logger.Info(fmt.Sprintf("%s API usage - Prompt: %s, Completion: %s, Total: %s, Est. Cost: $%.4f",
			b.provider.Name(),
			humanize.Comma(int64(resp.Usage.PromptTokens)),
			humanize.Comma(int64(resp.Usage.CompletionTokens)),
			humanize.Comma(int64(resp.Usage.TotalTokens)),
			resp.Usage.EstimateCost()))
	}

	bullets := CountBullets(resp.Text)
	b.logger.Info(fmt.Sprintf("Generated %d bullet points", bullets))

	return Result{Text: resp.Text, Model: resp.Model, Usage: resp.Usage, Bullets: bullets}
}

// Prompt renders the system instruction and the user prompt for in.
func (b *Builder) Prompt(in Input) (system, prompt string, err error) {
	name := "highlights"
	limit := b.opts.MaxCommitsInPrompt
	branches := collect.Preview(nonNil(in.Analysis).Branches, 5)
	if b.opts.Variant == collect.VariantAll {
		name = "sections"
		limit = b.opts.DisplayCap
		if in.Branch != "" {
			branches = in.Branch
		}
	}

	commits := in.Commits
	if len(commits) > limit {
		commits = commits[:limit]
	}
	lines := make([]string, 0, len(commits))
	for _, c := range commits {
		lines = append(lines, b.commitLine(c))
	}

	a := nonNil(in.Analysis)
	data := promptData{
		Language:   b.opts.Profile.Language,
		Lines:      lines,
		Total:      len(in.Commits),
		Analysis:   a,
		Branches:   branches,
		FileTypes:  formatFileTypes(a.TopFileTypes(5)),
		MaxBullets: b.opts.MaxBullets,
		MaxWords:   b.opts.MaxWordsPerBullet,
	}

	if system, err = b.render(name+"_system.tmpl", data); err != nil {
		return "", "", err
	}
	if prompt, err = b.render(name+".tmpl", data); err != nil {
		return "", "", err
	}
	return system, prompt, nil
}

type promptData struct {
	Language   string
	Lines      []string
	Total      int
	Analysis   *analysis.Analysis
	Branches   string
	FileTypes  string
	MaxBullets int
	MaxWords   int
}

func (b *Builder) render(name string, data promptData) (string, error) {
	var sb strings.Builder
	if err := b.tmpl.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return strings.TrimSpace(sb.String()), nil
}

// commitLine renders "[branch] subject (Kotlin: a, b, c)".
func (b *Builder) commitLine(c git.Commit) string {
	line := fmt.Sprintf("[%s] %s", c.Branch, c.Subject)
	if b.opts.Variant == collect.VariantAll {
		line = fmt.Sprintf("%s %s (%s)", c.ShortHash, c.Subject, c.Author)
	}
	if files := c.LanguageFiles; len(files) > 0 {
		if len(files) > b.opts.MaxLanguageFiles {
			files = files[:b.opts.MaxLanguageFiles]
		}
		line += fmt.Sprintf(" (%s: %s)", b.opts.Profile.Language, strings.Join(files, ", "))
	}
	return line
}

func (b *Builder) modelName() string {
	if b.opts.Model != "" {
		return b.opts.Model
	}
	if sel, ok := b.provider.(provider.ModelSelector); ok {
		return sel.Model()
	}
	return "default"
}

// fallback logs err and returns the text that replaces the digest.
func (b *Builder) fallback(err error) Result {
	b.logger.Error(fmt.Sprintf("Error calling %s API: %v", b.provider.Name(), err))
	return Result{Text: FallbackText(err), Err: err}
}

// FallbackText describes a provider failure as a single bullet. HTTP status
// failures embed the status code and the response body.
func FallbackText(err error) string {
	var statusErr *provider.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("%s: %s", FallbackPrefix, statusErr.Error())
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("%s due to network error: %v", FallbackPrefix, err)
	}

	return fmt.Sprintf("%s: %v", FallbackPrefix, err)
}

// CountBullets counts lines that start with Bullet after trimming.
func CountBullets(text string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), Bullet) {
			n++
		}
	}
	return n
}

func formatFileTypes(types []analysis.FileType) string {
	if len(types) == 0 {
		return "none"
	}
	parts := make([]string, len(types))
	for i, ft := range types {
		parts[i] = fmt.Sprintf("%s: %d", ft.Extension, ft.Count)
	}
	return strings.Join(parts, ", ")
}

func nonNil(a *analysis.Analysis) *analysis.Analysis {
	if a == nil {
		return analysis.Analyze(nil)
	}
	return a
}
