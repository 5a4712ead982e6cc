package git

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Field separator used for parsing git log output.
const fieldDelimiter = "|"

// logFormat is hash|author_name|author_email|author_date|subject, with
// |ref_names appended when decorations are requested.
const (
	logFormat         = "%H|%an|%ae|%ad|%s"
	logFormatWithRefs = logFormat + "|%D"
)

// gitDateLayout matches git's --date=iso output and is accepted by --since.
const gitDateLayout = "2006-01-02 15:04:05 -0700"

// Log returns non-merge commits on q.Ref since q.Since, optionally limited
// to commits whose author contains any of q.Authors, ignoring case.
func (r *Repository) Log(ctx context.Context, q LogQuery) ([]Commit, error) {
	format := logFormat
	if q.WithRefs {
		format = logFormatWithRefs
	}

	args := []string{
		"log", q.Ref,
		"--since=" + q.Since.Format(gitDateLayout),
		"--pretty=format:" + format,
		"--date=iso",
		"--no-merges",
	}
	if len(q.Authors) > 0 {
		args = append(args, "--fixed-strings", "--regexp-ignore-case")
		for _, a := range q.Authors {
			args = append(args, "--author="+a)
		}
	}
	args = append(args, "--")

	lines, err := r.runLines(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("getting commits on %s: %w", q.Ref, err)
	}

	return parseLog(lines, q.WithRefs, q.Since.Location()), nil
}

// parseLog parses git log lines produced with logFormat or logFormatWithRefs.
// Lines that do not have the expected shape are skipped.
func parseLog(lines []string, withRefs bool, loc *time.Location) []Commit {
	var commits []Commit

	for _, line := range lines {
		parts := strings.SplitN(line, fieldDelimiter, 5)
		if len(parts) < 5 || parts[0] == "" {
			continue
		}

		subject, refs := parts[4], ""
		if withRefs {
			// Subjects may contain the delimiter; decorations never do.
			idx := strings.LastIndex(subject, fieldDelimiter)
			if idx == -1 {
				continue
			}
			subject, refs = subject[:idx], strings.TrimSpace(subject[idx+1:])
		}

		date, err := time.Parse(gitDateLayout, strings.TrimSpace(parts[3]))
		if err != nil {
			// Try alternate format
			date, _ = time.Parse(time.RFC3339, strings.TrimSpace(parts[3]))
		}
		if loc != nil && !date.IsZero() {
			date = date.In(loc)
		}

		commits = append(commits, Commit{
			Hash:        parts[0],
			ShortHash:   shortHash(parts[0]),
			Author:      parts[1],
			AuthorEmail: parts[2],
			Date:        date,
			Subject:     subject,
			Refs:        refs,
		})
	}

	return commits
}
