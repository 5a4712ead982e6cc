package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ErrNotARepository is returned when the path is not a git repository.
var ErrNotARepository = errors.New("not a git repository")

// ErrTimeout is returned when a git invocation exceeds its time limit.
var ErrTimeout = errors.New("git command timed out")

// Repository implements Source by running the git binary.
type Repository struct {
	// dir is the working directory of the repository.
	dir string

	// timeout bounds each git invocation.
	timeout time.Duration
}

// Open returns a Source for dir using the named backend.
// An empty backend selects the CLI backend.
func Open(dir, backend string) (Source, error) {
	switch backend {
	case BackendCLI, "":
		return NewRepository(dir)
	case BackendNative:
		return OpenNative(dir)
	default:
		return nil, fmt.Errorf("unknown git backend %q; available: %s, %s", backend, BackendCLI, BackendNative)
	}
}

// NewRepository creates a new Repository for the given directory.
// If dir is empty, the current working directory is used.
// Returns ErrNotARepository if the directory is not within a git repository.
func NewRepository(dir string) (*Repository, error) {
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	r := &Repository{dir: dir, timeout: DefaultTimeout}
	if _, err := r.run(context.Background(), "rev-parse", "--git-dir"); err != nil {
		return nil, ErrNotARepository
	}

	return r, nil
}

// Dir returns the repository working directory.
func (r *Repository) Dir() string {
	return r.dir
}

// SetTimeout changes the per-invocation time limit.
func (r *Repository) SetTimeout(d time.Duration) {
	if d > 0 {
		r.timeout = d
	}
}

// run executes a git command and returns its trimmed output.
func (r *Repository) run(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("git %s: %w after %s", args[0], ErrTimeout, r.timeout)
		}
		errMsg := strings.TrimSpace(stderr.String())
		if errMsg == "" {
			errMsg = err.Error()
		}
		return "", fmt.Errorf("git %s: %s", args[0], errMsg)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// runLines executes a git command and returns its non-empty, trimmed output lines.
func (r *Repository) runLines(ctx context.Context, args ...string) ([]string, error) {
	output, err := r.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	return splitLines(output), nil
}

func splitLines(output string) []string {
	if output == "" {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Identity returns user.name and user.email from git configuration.
// A missing or unreadable value is returned as an empty string.
func (r *Repository) Identity(ctx context.Context) Identity {
	name, _ := r.run(ctx, "config", "user.name")
	email, _ := r.run(ctx, "config", "user.email")
	return Identity{Name: name, Email: email}
}

// CurrentBranch returns the name of the current branch.
func (r *Repository) CurrentBranch(ctx context.Context) (string, error) {
	branch, err := r.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("getting current branch: %w", err)
	}
	return branch, nil
}

// RemoteURL returns the configured URL of the named remote.
func (r *Repository) RemoteURL(ctx context.Context, remote string) (string, error) {
	url, err := r.run(ctx, "config", "--get", "remote."+remote+".url")
	if err != nil {
		return "", fmt.Errorf("getting remote url: %w", err)
	}
	return url, nil
}

// GetRootDir returns the repository root directory.
func (r *Repository) GetRootDir(ctx context.Context) (string, error) {
	root, err := r.run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("getting repository root: %w", err)
	}
	return root, nil
}
