package git

import (
	"context"
	"fmt"
	"strings"
)

// ChangedFiles returns the paths changed by a single commit.
func (r *Repository) ChangedFiles(ctx context.Context, hash string) ([]string, error) {
	lines, err := r.runLines(ctx, "show", "--name-only", "--pretty=format:", hash)
	if err != nil {
		return nil, fmt.Errorf("getting files for %s: %w", shortHash(hash), err)
	}
	return lines, nil
}

// DiffStat returns the human-readable diff stat of a single commit.
func (r *Repository) DiffStat(ctx context.Context, hash string) (string, error) {
	lines, err := r.runLines(ctx, "show", "--stat", "--pretty=format:", hash)
	if err != nil {
		return "", fmt.Errorf("getting diff stat for %s: %w", shortHash(hash), err)
	}
	return strings.Join(lines, "\n"), nil
}
