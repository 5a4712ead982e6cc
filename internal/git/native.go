package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// Native implements Source on top of go-git without spawning processes.
type Native struct {
	repo    *gitlib.Repository
	path    string
	timeout time.Duration
}

// OpenNative opens the repository containing dir with go-git.
// If dir is empty, the current working directory is used.
func OpenNative(dir string) (*Native, error) {
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	repo, err := gitlib.PlainOpenWithOptions(abs, &gitlib.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, gitlib.ErrRepositoryNotExists) {
			return nil, ErrNotARepository
		}
		return nil, fmt.Errorf("open repository: %w", err)
	}
	return &Native{repo: repo, path: abs, timeout: DefaultTimeout}, nil
}

// Dir returns the path the repository was opened from.
func (n *Native) Dir() string {
	return n.path
}

// GetRootDir returns the top-level directory of the worktree.
func (n *Native) GetRootDir(ctx context.Context) (string, error) {
	wt, err := n.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("getting repository root: %w", err)
	}
	return wt.Filesystem.Root(), nil
}

// Identity reads user.name and user.email from the repository config merged
// with the global config.
func (n *Native) Identity(ctx context.Context) Identity {
	cfg, err := n.repo.ConfigScoped(config.GlobalScope)
	if err != nil {
		return Identity{}
	}
	return Identity{Name: cfg.User.Name, Email: cfg.User.Email}
}

// LocalBranches returns local branch short names in sorted order.
func (n *Native) LocalBranches(ctx context.Context) ([]string, error) {
	iter, err := n.repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// RemoteBranches returns remote-tracking branch short names in sorted order,
// including symbolic HEAD pointers as git does.
func (n *Native) RemoteBranches(ctx context.Context) ([]string, error) {
	iter, err := n.repo.References()
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}
	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if ref.Name().IsRemote() {
			names = append(names, ref.Name().Short())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// CurrentBranch returns the checked-out branch, or "HEAD" when detached.
func (n *Native) CurrentBranch(ctx context.Context) (string, error) {
	head, err := n.repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "HEAD", nil
	}
	return head.Name().Short(), nil
}

// RemoteURL returns the first URL configured for the named remote.
func (n *Native) RemoteURL(ctx context.Context, remote string) (string, error) {
	r, err := n.repo.Remote(remote)
	if err != nil {
		return "", fmt.Errorf("getting remote url: %w", err)
	}
	urls := r.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("remote %q has no url", remote)
	}
	return urls[0], nil
}

// Log walks q.Ref newest first by committer time and returns non-merge
// commits committed since q.Since, like git log --since. The walk stops at
// the first older commit. Author filters match as case-insensitive
// substrings of "Name <email>".
func (n *Native) Log(ctx context.Context, q LogQuery) ([]Commit, error) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	hash, err := n.repo.ResolveRevision(plumbing.Revision(q.Ref))
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", q.Ref, err)
	}

	iter, err := n.repo.Log(&gitlib.LogOptions{From: *hash, Order: gitlib.LogOrderCommitterTime})
	if err != nil {
		return nil, fmt.Errorf("getting commits on %s: %w", q.Ref, err)
	}
	defer iter.Close()

	loc := q.Since.Location()
	var commits []Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.Committer.When.Before(q.Since) {
			return storer.ErrStop
		}
		if c.NumParents() > 1 {
			return nil
		}
		if !matchesAuthor(c.Author, q.Authors) {
			return nil
		}
		commits = append(commits, Commit{
			Hash:        c.Hash.String(),
			ShortHash:   shortHash(c.Hash.String()),
			Author:      c.Author.Name,
			AuthorEmail: c.Author.Email,
			Date:        c.Author.When.In(loc),
			Subject:     subjectOf(c.Message),
		})
		return nil
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("getting commits on %s: %w", q.Ref, ErrTimeout)
		}
		return nil, fmt.Errorf("getting commits on %s: %w", q.Ref, err)
	}
	return commits, nil
}

// ChangedFiles returns the paths touched by the commit relative to its first
// parent, sorted. Renamed files are reported under their new path and
// deleted files under their old one, as git show --name-only does.
func (n *Native) ChangedFiles(ctx context.Context, hash string) ([]string, error) {
	c, err := n.commit(hash)
	if err != nil {
		return nil, err
	}
	to, err := c.Tree()
	if err != nil {
		return nil, fmt.Errorf("tree for %s: %w", shortHash(hash), err)
	}
	from := &object.Tree{}
	if c.NumParents() > 0 {
		parent, err := c.Parent(0)
		if err != nil {
			return nil, fmt.Errorf("parent of %s: %w", shortHash(hash), err)
		}
		if from, err = parent.Tree(); err != nil {
			return nil, fmt.Errorf("parent tree of %s: %w", shortHash(hash), err)
		}
	}

	changes, err := object.DiffTreeWithOptions(ctx, from, to, object.DefaultDiffTreeOptions)
	if err != nil {
		return nil, fmt.Errorf("diff for %s: %w", shortHash(hash), err)
	}
	files := make([]string, 0, len(changes))
	for _, ch := range changes {
		name := ch.To.Name
		if name == "" {
			name = ch.From.Name
		}
		files = append(files, name)
	}
	sort.Strings(files)
	return files, nil
}

// DiffStat returns go-git's rendering of the commit's file statistics.
func (n *Native) DiffStat(ctx context.Context, hash string) (string, error) {
	stats, err := n.stats(hash)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(stats.String(), "\n"), nil
}

func (n *Native) commit(hash string) (*object.Commit, error) {
	c, err := n.repo.CommitObject(plumbing.NewHash(hash))
	if err != nil {
		return nil, fmt.Errorf("load commit %s: %w", shortHash(hash), err)
	}
	return c, nil
}

func (n *Native) stats(hash string) (object.FileStats, error) {
	c, err := n.commit(hash)
	if err != nil {
		return nil, err
	}
	stats, err := c.Stats()
	if err != nil {
		return nil, fmt.Errorf("stats for %s: %w", shortHash(hash), err)
	}
	return stats, nil
}

func matchesAuthor(sig object.Signature, authors []string) bool {
	if len(authors) == 0 {
		return true
	}
	ident := strings.ToLower(sig.Name + " <" + sig.Email + ">")
	for _, a := range authors {
		if strings.Contains(ident, strings.ToLower(a)) {
			return true
		}
	}
	return false
}

func subjectOf(message string) string {
	subject, _, _ := strings.Cut(strings.TrimSpace(message), "\n")
	return strings.TrimSpace(subject)
}
