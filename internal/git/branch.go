package git

import (
	"context"
	"strings"
)

// LocalBranches returns all local branch names.
func (r *Repository) LocalBranches(ctx context.Context) ([]string, error) {
	return r.runLines(ctx, "branch", "--format=%(refname:short)")
}

// RemoteBranches returns all remote-tracking branch names.
func (r *Repository) RemoteBranches(ctx context.Context) ([]string, error) {
	return r.runLines(ctx, "branch", "-r", "--format=%(refname:short)")
}

// ListBranches enumerates local and remote branches and normalizes them
// with NormalizeBranches. A failed listing contributes no branches.
func ListBranches(ctx context.Context, src Source) []Branch {
	local, _ := src.LocalBranches(ctx)
	remote, _ := src.RemoteBranches(ctx)
	return NormalizeBranches(local, remote)
}

// NormalizeBranches merges local and remote branch names into one namespace.
//
// Local entries lose any leading "*" marker and surrounding whitespace.
// Remote entries that point at a remote's HEAD are dropped, and the leading
// remote segment is stripped. Names are deduplicated in first-seen order,
// local entries first, so a local branch keeps its own ref when a remote
// branch of the same name exists. Same-named branches on different remotes
// collapse into one entry.
func NormalizeBranches(local, remote []string) []Branch {
	seen := make(map[string]bool)
	var branches []Branch

	add := func(name, ref string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		branches = append(branches, Branch{Name: name, Ref: ref})
	}

	for _, raw := range local {
		name := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(raw), "*"))
		if name == "" {
			continue
		}
		add(name, "refs/heads/"+name)
	}

	for _, raw := range remote {
		full := strings.TrimSpace(raw)
		if full == "" || isRemoteHead(full) {
			continue
		}
		_, name, ok := strings.Cut(full, "/")
		if !ok {
			// A bare remote name (e.g. "origin") is the short form of origin/HEAD.
			continue
		}
		add(name, "refs/remotes/"+full)
	}

	return branches
}

// isRemoteHead reports whether a remote branch entry is the symbolic
// default-branch pointer ("origin/HEAD" or "origin/HEAD -> origin/main").
func isRemoteHead(name string) bool {
	if strings.Contains(name, " -> ") {
		return true
	}
	return name == "HEAD" || strings.HasSuffix(name, "/HEAD")
}

// BranchNames returns the names of the given branches.
func BranchNames(branches []Branch) []string {
	names := make([]string, len(branches))
	for i, b := range branches {
		names[i] = b.Name
	}
	return names
}
