package git

import (
	"context"
	"reflect"
	"testing"
)

func TestNormalizeBranches(t *testing.T) {
	tests := []struct {
		name   string
		local  []string
		remote []string
		want   []Branch
	}{
		{
			name: "empty",
			want: nil,
		},
		{
			name:  "local markers and whitespace",
			local: []string{"* main", "  feature/login ", "", "*"},
			want: []Branch{
				{Name: "main", Ref: "refs/heads/main"},
				{Name: "feature/login", Ref: "refs/heads/feature/login"},
			},
		},
		{
			name:   "remote head pointers excluded",
			remote: []string{"origin/HEAD", "origin/HEAD -> origin/main", "origin", "origin/main"},
			want: []Branch{
				{Name: "main", Ref: "refs/remotes/origin/main"},
			},
		},
		{
			name:   "local wins over remote of same name",
			local:  []string{"main"},
			remote: []string{"origin/main", "origin/release/1.0"},
			want: []Branch{
				{Name: "main", Ref: "refs/heads/main"},
				{Name: "release/1.0", Ref: "refs/remotes/origin/release/1.0"},
			},
		},
		{
			name:   "same name on two remotes collapses",
			remote: []string{"origin/dev", "upstream/dev"},
			want: []Branch{
				{Name: "dev", Ref: "refs/remotes/origin/dev"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeBranches(tt.local, tt.remote)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeBranches() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestListBranches(t *testing.T) {
	dir := setupTestRepo(t)
	repo, _ := NewRepository(dir)
	ctx := context.Background()

	// Create a new branch
	runGit(t, dir, "branch", "feature-test")

	branches := ListBranches(ctx, repo)

	if len(branches) < 2 {
		t.Errorf("expected at least 2 branches, got %d", len(branches))
	}

	found := false
	for _, b := range branches {
		if b.Name == "feature-test" {
			found = true
			if b.Ref != "refs/heads/feature-test" {
				t.Errorf("Ref = %q, want refs/heads/feature-test", b.Ref)
			}
			break
		}
	}
	if !found {
		t.Error("feature-test branch not found in branch list")
	}
}

func TestRemoteBranches_NoRemote(t *testing.T) {
	dir := setupTestRepo(t)
	repo, _ := NewRepository(dir)

	branches, err := repo.RemoteBranches(context.Background())
	if err != nil {
		t.Fatalf("RemoteBranches() failed: %v", err)
	}
	if len(branches) != 0 {
		t.Errorf("expected no remote branches, got %v", branches)
	}
}

func TestBranchNames(t *testing.T) {
	got := BranchNames([]Branch{{Name: "a"}, {Name: "b"}})
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("BranchNames() = %v", got)
	}
}
