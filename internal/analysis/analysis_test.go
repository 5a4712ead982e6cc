package analysis

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/mwistrand/commitdigest/internal/git"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCommits() []git.Commit {
	return []git.Commit{
		{
			Hash:          "a1",
			Branch:        "feature/login",
			Files:         []string{"app/Login.kt", "app/res/login.xml", "README"},
			LanguageFiles: []string{"app/Login.kt"},
			PlatformFiles: []string{"app/Login.kt", "app/res/login.xml"},
		},
		{
			Hash:          "b2",
			Branch:        "main",
			Files:         []string{"app/Login.kt", "build.gradle", ".gitignore"},
			LanguageFiles: []string{"app/Login.kt"},
			PlatformFiles: []string{"app/Login.kt", "build.gradle"},
		},
	}
}

func TestAnalyze(t *testing.T) {
	a := Analyze(sampleCommits())

	assert.Equal(t, 2, a.TotalCommits)
	assert.Equal(t, []string{".gitignore", "README", "app/Login.kt", "app/res/login.xml", "build.gradle"}, a.Files)
	assert.Equal(t, 5, a.TotalFiles())
	assert.Equal(t, []string{"app/Login.kt"}, a.LanguageFiles)
	assert.Equal(t, []string{"app/Login.kt", "app/res/login.xml", "build.gradle"}, a.PlatformFiles)
	assert.Equal(t, []string{"feature/login", "main"}, a.Branches)
	assert.Equal(t, map[string]int{
		".kt":       2,
		".xml":      1,
		".gradle":   1,
		NoExtension: 2,
	}, a.FileTypes)
}

func TestAnalyze_Empty(t *testing.T) {
	for _, commits := range [][]git.Commit{nil, {}} {
		a := Analyze(commits)

		require.NotNil(t, a)
		assert.Zero(t, a.TotalCommits)
		assert.Zero(t, a.TotalFiles())
		assert.Empty(t, a.Files)
		assert.Empty(t, a.LanguageFiles)
		assert.Empty(t, a.PlatformFiles)
		assert.Empty(t, a.Branches)
		assert.Empty(t, a.FileTypes)
		assert.Empty(t, a.TopFileTypes(5))
	}
}

func TestAnalyze_Idempotent(t *testing.T) {
	commits := sampleCommits()

	first := Analyze(commits)
	second := Analyze(commits)

	assert.True(t, reflect.DeepEqual(first, second))

	h1, err := first.Fingerprint()
	require.NoError(t, err)
	h2, err := second.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	other := Analyze(commits[:1])
	h3, err := other.Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestTopFileTypes(t *testing.T) {
	a := &Analysis{FileTypes: map[string]int{".kt": 4, ".xml": 2, ".md": 2, ".gradle": 1}}

	assert.Equal(t, []FileType{{".kt", 4}, {".md", 2}}, a.TopFileTypes(2))
	assert.Len(t, a.TopFileTypes(0), 4)
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"app/Main.kt":        ".kt",
		"archive.tar.gz":     ".gz",
		"Makefile":           NoExtension,
		".gitignore":         NoExtension,
		"config/.env.local":  ".local",
		"dir.with.dots/file": NoExtension,
		"trailing.":          NoExtension,
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, Extension(in))
		})
	}
}

func TestLookupProfile(t *testing.T) {
	p, err := LookupProfile("")
	require.NoError(t, err)
	assert.Equal(t, "kotlin", p.Name)
	assert.True(t, p.IsLanguageFile("app/Main.kt"))
	assert.False(t, p.IsLanguageFile("app/Main.java"))
	assert.True(t, p.IsPlatformFile("app/build.gradle"))

	p, err = LookupProfile("Go")
	require.NoError(t, err)
	assert.Equal(t, "Go", p.Language)

	_, err = LookupProfile("cobol")
	assert.Error(t, err)
}

func TestDetectProfile(t *testing.T) {
	tests := []struct {
		files []string
		want  string
	}{
		{nil, "kotlin"},
		{[]string{"build.gradle.kts"}, "kotlin"},
		{[]string{"build.gradle", "app/src/main/kotlin/Main.kt"}, "kotlin"},
		{[]string{"build.gradle"}, "java"},
		{[]string{"pom.xml"}, "java"},
		{[]string{"go.mod"}, "go"},
		{[]string{"package.json"}, "typescript"},
		{[]string{"requirements.txt"}, "python"},
		{[]string{"Cargo.toml"}, "rust"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				path := filepath.Join(dir, f)
				require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
				require.NoError(t, os.WriteFile(path, nil, 0o644))
			}
			assert.Equal(t, tt.want, DetectProfile(dir).Name)
		})
	}
}

func TestResolveProfile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), nil, 0o644))

	p, err := ResolveProfile(ProfileAuto, dir)
	require.NoError(t, err)
	assert.Equal(t, "go", p.Name)

	p, err = ResolveProfile("rust", dir)
	require.NoError(t, err)
	assert.Equal(t, "rust", p.Name)
}

func TestFilter(t *testing.T) {
	p, _ := LookupProfile("kotlin")
	paths := []string{"a.kt", "b.xml", "c.md", "d.kt"}

	assert.Equal(t, []string{"a.kt", "d.kt"}, Filter(paths, p.IsLanguageFile))
	assert.Equal(t, []string{"a.kt", "b.xml", "d.kt"}, Filter(paths, p.IsPlatformFile))
	assert.Nil(t, Filter(nil, p.IsLanguageFile))
}
