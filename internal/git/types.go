// Package git provides read-only access to repository history: identity,
// branches, commit logs and per-commit file statistics.
package git

import (
	"context"
	"time"
)

// Commit represents a non-merge commit retained for a summary run.
type Commit struct {
	// Hash is the full commit hash.
	Hash string

	// ShortHash is the abbreviated commit hash (first 8 characters).
	ShortHash string

	// Author is the commit author name.
	Author string

	// AuthorEmail is the commit author email.
	AuthorEmail string

	// Date is the author timestamp, converted to the collection timezone.
	Date time.Time

	// Subject is the first line of the commit message.
	Subject string

	// Refs is the raw ref decoration reported by the log query, if any.
	Refs string

	// Branch is the normalized name of the branch the commit was first seen on.
	Branch string

	// Files lists the paths changed by the commit.
	Files []string

	// LanguageFiles is the subset of Files matching the language suffix filter.
	LanguageFiles []string

	// PlatformFiles is the subset of Files matching the platform suffix set.
	PlatformFiles []string

	// DiffStat is the human-readable diff statistics text.
	DiffStat string
}

// Branch is a branch name normalized across local and remote-tracking refs.
type Branch struct {
	// Name is the short name with any remote prefix removed.
	Name string

	// Ref is the fully qualified ref used for history queries.
	Ref string
}

// Identity is the contributor identity read from git configuration.
type Identity struct {
	Name  string
	Email string
}

// IsEmpty reports whether neither name nor email is known.
func (id Identity) IsEmpty() bool {
	return id.Name == "" && id.Email == ""
}

// String formats the identity as "Name <email>".
func (id Identity) String() string {
	return id.Name + " <" + id.Email + ">"
}

// LogQuery constrains a history query on a single ref.
type LogQuery struct {
	// Ref is the revision to walk from.
	Ref string

	// Since is the inclusive lower bound on commit time.
	Since time.Time

	// Authors are fixed-string author filters; a commit matching any of them
	// is returned. Empty means no author filtering.
	Authors []string

	// WithRefs requests ref decorations in the result.
	WithRefs bool
}

// Source is the version-control collaborator. Every method is a read-only
// query; implementations bound each call with their own timeout.
type Source interface {
	// Identity returns the configured user name and email. Failures yield
	// empty values rather than an error.
	Identity(ctx context.Context) Identity

	// LocalBranches returns local branch short names.
	LocalBranches(ctx context.Context) ([]string, error)

	// RemoteBranches returns remote-tracking branch short names ("origin/main").
	RemoteBranches(ctx context.Context) ([]string, error)

	// CurrentBranch returns the checked-out branch name, or "HEAD" when detached.
	CurrentBranch(ctx context.Context) (string, error)

	// RemoteURL returns the fetch URL of the named remote.
	RemoteURL(ctx context.Context, remote string) (string, error)

	// Log returns non-merge commits reachable from q.Ref committed at or after q.Since.
	Log(ctx context.Context, q LogQuery) ([]Commit, error)

	// ChangedFiles returns the paths changed by the given commit.
	ChangedFiles(ctx context.Context, hash string) ([]string, error)

	// DiffStat returns diff statistics text for the given commit.
	DiffStat(ctx context.Context, hash string) (string, error)
}

// Backend names accepted by Open.
const (
	BackendCLI    = "cli"
	BackendNative = "native"
)

// DefaultTimeout bounds each git invocation.
const DefaultTimeout = 30 * time.Second

// ShortHashLen is the length of Commit.ShortHash.
const ShortHashLen = 8

// shortHash abbreviates a full hash to ShortHashLen characters.
func shortHash(hash string) string {
	if len(hash) <= ShortHashLen {
		return hash
	}
	return hash[:ShortHashLen]
}
