package git

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

// setupTestRepo creates a temporary git repository for testing.
func setupTestRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()

	// Initialize git repo
	runGit(t, dir, "init")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "Test User")

	// Create initial commit
	writeFile(t, dir, "README.md", "# Test Repo\n")
	runGit(t, dir, "add", "README.md")
	runGit(t, dir, "commit", "-m", "Initial commit")

	return dir
}

// runGit runs a git command in the given directory.
func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v failed: %s\n%s", args, err, output)
	}
	return string(output)
}

// writeFile creates a file with the given content.
func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// commitFile writes a file and commits it with the given message.
func commitFile(t *testing.T, dir, name, content, message string, extra ...string) {
	t.Helper()

	writeFile(t, dir, name, content)
	runGit(t, dir, "add", name)
	runGit(t, dir, append([]string{"commit", "-m", message}, extra...)...)
}

func TestNewRepository(t *testing.T) {
	dir := setupTestRepo(t)

	repo, err := NewRepository(dir)
	if err != nil {
		t.Fatalf("NewRepository() failed: %v", err)
	}

	if repo.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", repo.Dir(), dir)
	}
}

func TestNewRepository_NotARepo(t *testing.T) {
	dir := t.TempDir()

	_, err := NewRepository(dir)
	if err != ErrNotARepository {
		t.Errorf("expected ErrNotARepository, got %v", err)
	}
}

func TestOpen_Backends(t *testing.T) {
	dir := setupTestRepo(t)

	for _, backend := range []string{"", BackendCLI, BackendNative} {
		t.Run("backend="+backend, func(t *testing.T) {
			src, err := Open(dir, backend)
			if err != nil {
				t.Fatalf("Open(%q) failed: %v", backend, err)
			}
			if src == nil {
				t.Fatal("Open() returned nil source")
			}
		})
	}

	if _, err := Open(dir, "svn"); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestCurrentBranch(t *testing.T) {
	dir := setupTestRepo(t)
	repo, _ := NewRepository(dir)

	branch, err := repo.CurrentBranch(context.Background())
	if err != nil {
		t.Fatalf("CurrentBranch() failed: %v", err)
	}

	// Default branch is usually main or master
	if branch != "main" && branch != "master" {
		t.Errorf("CurrentBranch() = %q, expected main or master", branch)
	}
}

func TestIdentity(t *testing.T) {
	dir := setupTestRepo(t)
	repo, _ := NewRepository(dir)

	id := repo.Identity(context.Background())
	if id.Name != "Test User" {
		t.Errorf("Name = %q, want %q", id.Name, "Test User")
	}
	if id.Email != "test@example.com" {
		t.Errorf("Email = %q, want %q", id.Email, "test@example.com")
	}
	if id.IsEmpty() {
		t.Error("IsEmpty() = true, want false")
	}
	if id.String() != "Test User <test@example.com>" {
		t.Errorf("String() = %q", id.String())
	}
}

func TestRemoteURL(t *testing.T) {
	dir := setupTestRepo(t)
	repo, _ := NewRepository(dir)
	ctx := context.Background()

	if _, err := repo.RemoteURL(ctx, "origin"); err == nil {
		t.Error("expected error when no remote is configured")
	}

	runGit(t, dir, "remote", "add", "origin", "git@example.com:team/app.git")

	url, err := repo.RemoteURL(ctx, "origin")
	if err != nil {
		t.Fatalf("RemoteURL() failed: %v", err)
	}
	if url != "git@example.com:team/app.git" {
		t.Errorf("RemoteURL() = %q", url)
	}
}

func TestRun_Timeout(t *testing.T) {
	dir := setupTestRepo(t)
	repo, _ := NewRepository(dir)
	repo.SetTimeout(time.Nanosecond)

	_, err := repo.run(context.Background(), "log")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
}

func TestGetRootDir(t *testing.T) {
	dir := setupTestRepo(t)

	// Create a subdirectory
	subdir := filepath.Join(dir, "sub", "dir")
	if err := os.MkdirAll(subdir, 0o755); err != nil {
		t.Fatal(err)
	}

	// Create repo from subdirectory
	repo, err := NewRepository(subdir)
	if err != nil {
		t.Fatalf("NewRepository() failed: %v", err)
	}

	root, err := repo.GetRootDir(context.Background())
	if err != nil {
		t.Fatalf("GetRootDir() failed: %v", err)
	}

	// Root should be the original dir (need to resolve symlinks for comparison on macOS)
	expectedRoot, _ := filepath.EvalSymlinks(dir)
	actualRoot, _ := filepath.EvalSymlinks(root)

	if actualRoot != expectedRoot {
		t.Errorf("GetRootDir() = %q, want %q", actualRoot, expectedRoot)
	}
}

func TestSplitLines(t *testing.T) {
	got := splitLines("  a \n\n b\n  \n")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("splitLines() = %q", got)
	}
	if splitLines("") != nil {
		t.Error("splitLines(\"\") should be nil")
	}
}
