// Package render formats a commit digest report as Markdown, saves it and
// prints it to the terminal.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mwistrand/commitdigest/internal/analysis"
	"github.com/mwistrand/commitdigest/internal/collect"
	"github.com/mwistrand/commitdigest/internal/git"
)

// Display caps.
const (
	BranchPreview = 5
	FileListCap   = 15
	CommitListCap = 10
)

// Report file name prefixes.
const (
	PrefixMine = "my_git_summary"
	PrefixAll  = "all_git_summary"
)

// TimestampLayout formats the generation time.
const TimestampLayout = "2006-01-02 15:04:05"

// Report is everything rendered into one document.
type Report struct {
	Variant   collect.Variant
	Author    git.Identity
	Generated time.Time
	Hours     int

	// Repository, Branch and RemoteURL describe the scanned repository.
	// Empty values are omitted.
	Repository string
	Branch     string
	RemoteURL  string

	// Language labels the language-file statistics, e.g. "Kotlin".
	Language string

	Analysis *analysis.Analysis
	Commits  []git.Commit
	Digest   string

	MaxCommits int
	MaxBullets int
	MaxWords   int

	// LogFile names the run log in the footer. Empty omits the line.
	LogFile string
}

// FilePrefix returns the report file prefix for v.
func FilePrefix(v collect.Variant) string {
	if v == collect.VariantAll {
		return PrefixAll
	}
	return PrefixMine
}

// FileName returns "<prefix>_<YYYYMMDD_HHMMSS>.md".
func FileName(prefix string, t time.Time) string {
	return prefix + "_" + t.Format("20060102_150405") + ".md"
}

// Markdown renders r. Sections whose collections are empty are skipped.
func Markdown(r Report) string {
	a := r.Analysis
	if a == nil {
		a = analysis.Analyze(nil)
	}
	language := r.Language
	if language == "" {
		language = "Language"
	}
	stamp := formatTime(r.Generated)
	mine := r.Variant != collect.VariantAll

	var b strings.Builder

	if mine {
		b.WriteString("# 📊 My Git Activity Summary - High-Level Technical Overview\n\n")
		fmt.Fprintf(&b, "**👤 Author:** %s\n", r.Author)
	} else {
		b.WriteString("# 📊 Git Activity Summary\n\n")
	}
	fmt.Fprintf(&b, "**🕐 Generated:** %s\n", stamp)
	fmt.Fprintf(&b, "**📅 Period:** Last %d hours\n", r.Hours)
	if r.Repository != "" {
		fmt.Fprintf(&b, "**📁 Repository:** %s\n", r.Repository)
	}
	if r.Branch != "" {
		fmt.Fprintf(&b, "**🔀 Current Branch:** %s\n", r.Branch)
	}
	if mine && r.RemoteURL != "" {
		fmt.Fprintf(&b, "**🔗 Remote:** %s\n", r.RemoteURL)
	}
	fmt.Fprintf(&b, "**🌿 Branches:** %s\n\n", collect.Preview(a.Branches, BranchPreview))

	b.WriteString("## 📈 Quick Stats\n")
	if mine {
		fmt.Fprintf(&b, "• **My Commits:** %d (analyzing up to %d)\n", a.TotalCommits, r.MaxCommits)
	} else {
		fmt.Fprintf(&b, "• **Commits:** %d (analyzing up to %d)\n", a.TotalCommits, r.MaxCommits)
	}
	fmt.Fprintf(&b, "• **Files Modified:** %d\n", a.TotalFiles())
	fmt.Fprintf(&b, "• **%s Files:** %d\n", language, len(a.LanguageFiles))
	fmt.Fprintf(&b, "• **Branches Touched:** %d\n\n", len(a.Branches))

	if mine {
		b.WriteString("## 🎯 Major Technical Accomplishments\n")
		fmt.Fprintf(&b, "*High-level summary of overall work (max %d bullets)*\n\n", r.MaxBullets)
	} else {
		b.WriteString("## 🎯 Summary\n\n")
	}
	b.WriteString(r.Digest)
	b.WriteString("\n\n")

	if len(a.LanguageFiles) > 0 {
		if mine {
			fmt.Fprintf(&b, "## 🔧 %s Files I Modified\n", language)
		} else {
			fmt.Fprintf(&b, "## 🔧 %s Files Modified\n", language)
		}
		for _, f := range head(a.LanguageFiles, FileListCap) {
			fmt.Fprintf(&b, "• `%s`\n", f)
		}
		if extra := len(a.LanguageFiles) - FileListCap; extra > 0 {
			fmt.Fprintf(&b, "• ... and %d more %s files\n", extra, language)
		}
		b.WriteString("\n")
	}

	if len(r.Commits) > 0 {
		if mine {
			b.WriteString("## 📝 My Recent Commits\n")
		} else {
			b.WriteString("## 📝 Recent Commits\n")
		}
		for i, c := range head(r.Commits, CommitListCap) {
			if mine {
				fmt.Fprintf(&b, "%d. **%s** [%s] %s\n", i+1, c.ShortHash, c.Branch, c.Subject)
			} else {
				fmt.Fprintf(&b, "%d. **%s** %s (%s)\n", i+1, c.ShortHash, c.Subject, c.Author)
			}
		}
		if extra := len(r.Commits) - CommitListCap; extra > 0 {
			fmt.Fprintf(&b, "   ... and %d more commits\n", extra)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "---\n*Generated by Git Commit Summarizer at %s*\n", stamp)
	if mine {
		fmt.Fprintf(&b, "*Configuration: Max %d commits, %d high-level bullets, %d words each*",
			r.MaxCommits, r.MaxBullets, r.MaxWords)
	} else {
		fmt.Fprintf(&b, "*Configuration: Max %d commits*", r.MaxCommits)
	}
	if r.LogFile != "" {
		fmt.Fprintf(&b, "\n*Log file: %s*", r.LogFile)
	}

	return b.String()
}

// Save writes content to dir under FileName(prefix, now) and returns the
// path. The directory is created if needed.
func Save(content, dir, prefix string, now time.Time) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(dir, FileName(prefix, now))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimestampLayout) + " " + t.Format("MST")
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
