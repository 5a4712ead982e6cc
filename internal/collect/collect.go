// Package collect gathers the commits of a summary run across branches,
// deduplicates them, enriches them with file statistics, and keeps the most
// recent ones.
package collect

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/mwistrand/commitdigest/internal/analysis"
	"github.com/mwistrand/commitdigest/internal/git"
)

// DefaultMaxCommits is the retention limit applied when Options.MaxCommits is unset.
const DefaultMaxCommits = 50

// Variant selects between the contributor-scoped and the all-authors run.
type Variant int

const (
	// VariantMine scans every branch and keeps only the contributor's commits.
	VariantMine Variant = iota

	// VariantAll keeps every non-merge commit on the branches it is given.
	VariantAll
)

func (v Variant) String() string {
	if v == VariantAll {
		return "all"
	}
	return "mine"
}

// Source is the subset of git.Source the collector queries.
type Source interface {
	Log(ctx context.Context, q git.LogQuery) ([]git.Commit, error)
	ChangedFiles(ctx context.Context, hash string) ([]string, error)
	DiffStat(ctx context.Context, hash string) (string, error)
}

// Options configures a collection run.
type Options struct {
	// Since is the lower bound of the time window.
	Since time.Time

	// Variant selects identity filtering.
	Variant Variant

	// MaxCommits caps the number of retained commits.
	MaxCommits int

	// Profile decides which changed files are language and platform files.
	Profile analysis.Profile
}

// Result is the outcome of Collect.
type Result struct {
	// Commits are the retained commits, newest first.
	Commits []git.Commit

	// Found is the number of distinct matching commits before truncation.
	Found int
}

// Truncated reports whether commits were dropped by the retention limit.
func (r Result) Truncated() bool {
	return r.Found > len(r.Commits)
}

// Collector walks branch history through a Source.
type Collector struct {
	source Source
	opts   Options
	logger *slog.Logger
}

// New creates a Collector. A nil logger discards output.
func New(source Source, opts Options, logger *slog.Logger) *Collector {
	if opts.MaxCommits <= 0 {
		opts.MaxCommits = DefaultMaxCommits
	}
	if opts.Profile.Name == "" {
		opts.Profile, _ = analysis.LookupProfile(analysis.DefaultProfile)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Collector{source: source, opts: opts, logger: logger}
}

// Collect queries each branch in order and returns the retained commits.
// A commit reachable from several branches is attributed to the first branch
// that yielded it. Query failures are logged and skipped.
func (c *Collector) Collect(ctx context.Context, branches []git.Branch, id git.Identity) Result {
	mine := c.opts.Variant == VariantMine
	if mine {
		c.logger.Info(fmt.Sprintf("Searching for commits by: %s", id))
	}
	c.logger.Info(fmt.Sprintf("Time range: Since %s", c.opts.Since.Format(time.DateTime)))
	c.logger.Info(fmt.Sprintf("Checking %d branches: %s", len(branches), Preview(git.BranchNames(branches), 5)))

	var authors []string
	if mine {
		for _, v := range []string{id.Name, id.Email} {
			if v != "" {
				authors = append(authors, v)
			}
		}
	}

	seen := make(map[string]struct{})
	var commits []git.Commit

	for _, b := range branches {
		if ctx.Err() != nil {
			c.logger.Warn("collection interrupted", "error", ctx.Err())
			break
		}

		// Without any identity value nothing can match; skip the query.
		if mine && len(authors) == 0 {
			continue
		}

		found, err := c.source.Log(ctx, git.LogQuery{
			Ref:      b.Ref,
			Since:    c.opts.Since,
			Authors:  authors,
			WithRefs: mine,
		})
		if err != nil {
			c.logger.Warn(fmt.Sprintf("Error processing branch %s", b.Name), "error", err)
			continue
		}

		for _, commit := range found {
			if _, ok := seen[commit.Hash]; ok {
				continue
			}
			if mine && !MatchesIdentity(commit, id) {
				continue
			}
			seen[commit.Hash] = struct{}{}

			commit.Branch = b.Name
			commits = append(commits, c.enrich(ctx, commit))
		}
	}

	sort.SliceStable(commits, func(i, j int) bool {
		return commits[i].Date.After(commits[j].Date)
	})

	result := Result{Commits: commits, Found: len(commits)}
	if len(commits) > c.opts.MaxCommits {
		result.Commits = commits[:c.opts.MaxCommits]
		c.logger.Info(fmt.Sprintf("Limited analysis to %d most recent commits (found %d total)", c.opts.MaxCommits, len(commits)))
	}

	c.logger.Info(fmt.Sprintf("Found %d commits across %d branches (keeping %d most recent)", result.Found, len(branches), len(result.Commits)))
	return result
}

// enrich attaches changed files and diff statistics. Failures leave the
// corresponding fields empty.
func (c *Collector) enrich(ctx context.Context, commit git.Commit) git.Commit {
	files, err := c.source.ChangedFiles(ctx, commit.Hash)
	if err != nil {
		c.logger.Warn(fmt.Sprintf("Could not list files for %s", commit.ShortHash), "error", err)
	}
	stat, err := c.source.DiffStat(ctx, commit.Hash)
	if err != nil {
		c.logger.Warn(fmt.Sprintf("Could not read diff stats for %s", commit.ShortHash), "error", err)
	}

	commit.Files = files
	commit.DiffStat = stat
	commit.LanguageFiles = analysis.Filter(files, c.opts.Profile.IsLanguageFile)
	commit.PlatformFiles = analysis.Filter(files, c.opts.Profile.IsPlatformFile)
	return commit
}

// MatchesIdentity reports whether the commit's author name contains the
// identity name or its author email contains the identity email, ignoring
// case. Empty identity values never match.
func MatchesIdentity(commit git.Commit, id git.Identity) bool {
	if id.Name != "" && containsFold(commit.Author, id.Name) {
		return true
	}
	return id.Email != "" && containsFold(commit.AuthorEmail, id.Email)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Preview joins up to n items with ", " and appends "..." when more exist.
func Preview(items []string, n int) string {
	if len(items) <= n {
		return strings.Join(items, ", ")
	}
	return strings.Join(items[:n], ", ") + "..."
}
