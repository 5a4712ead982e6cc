// Package analysis reduces a set of collected commits into summary statistics
// and detects which language profile a repository belongs to.
package analysis

import (
	"path"
	"sort"
	"strings"

	"github.com/mitchellh/hashstructure/v2"
	"github.com/mwistrand/commitdigest/internal/git"
)

// NoExtension is the FileTypes key for files without an extension.
const NoExtension = "no_extension"

// Analysis contains statistics derived from a commit collection.
// It holds no state of its own and is never mutated after Analyze returns.
type Analysis struct {
	// TotalCommits is the number of commits analyzed.
	TotalCommits int `json:"total_commits"`

	// Files lists every distinct changed path, sorted.
	Files []string `json:"files"`

	// LanguageFiles lists distinct paths matching the language filter, sorted.
	LanguageFiles []string `json:"language_files"`

	// PlatformFiles lists distinct paths matching the platform suffix set, sorted.
	PlatformFiles []string `json:"platform_files"`

	// Branches lists the distinct branches commits were attributed to, sorted.
	Branches []string `json:"branches"`

	// FileTypes counts changed-file occurrences per extension across all commits.
	FileTypes map[string]int `json:"file_types"`
}

// FileType is one entry of the extension histogram.
type FileType struct {
	Extension string
	Count     int
}

// Analyze builds an Analysis from commits. An empty input yields zero counts
// and empty collections.
func Analyze(commits []git.Commit) *Analysis {
	files := make(map[string]struct{})
	languageFiles := make(map[string]struct{})
	platformFiles := make(map[string]struct{})
	branches := make(map[string]struct{})
	fileTypes := make(map[string]int)

	for _, c := range commits {
		if c.Branch != "" {
			branches[c.Branch] = struct{}{}
		}
		for _, f := range c.Files {
			files[f] = struct{}{}
			fileTypes[Extension(f)]++
		}
		for _, f := range c.LanguageFiles {
			languageFiles[f] = struct{}{}
		}
		for _, f := range c.PlatformFiles {
			platformFiles[f] = struct{}{}
		}
	}

	return &Analysis{
		TotalCommits:  len(commits),
		Files:         sortedKeys(files),
		LanguageFiles: sortedKeys(languageFiles),
		PlatformFiles: sortedKeys(platformFiles),
		Branches:      sortedKeys(branches),
		FileTypes:     fileTypes,
	}
}

// TotalFiles returns the number of distinct changed files.
func (a *Analysis) TotalFiles() int {
	return len(a.Files)
}

// TopFileTypes returns up to n histogram entries ordered by descending count,
// then by extension. n <= 0 returns all entries.
func (a *Analysis) TopFileTypes(n int) []FileType {
	types := make([]FileType, 0, len(a.FileTypes))
	for ext, count := range a.FileTypes {
		types = append(types, FileType{Extension: ext, Count: count})
	}
	sort.Slice(types, func(i, j int) bool {
		if types[i].Count != types[j].Count {
			return types[i].Count > types[j].Count
		}
		return types[i].Extension < types[j].Extension
	})
	if n > 0 && len(types) > n {
		types = types[:n]
	}
	return types
}

// Fingerprint returns a structural hash of the analysis. Two analyses of the
// same commit collection have equal fingerprints.
func (a *Analysis) Fingerprint() (uint64, error) {
	return hashstructure.Hash(a, hashstructure.FormatV2, nil)
}

// Extension returns the extension of a path's base name including the dot,
// or NoExtension. Leading dots of dotfiles are not treated as extensions.
func Extension(p string) string {
	base := strings.TrimLeft(path.Base(p), ".")
	ext := path.Ext(base)
	if ext == "" || ext == "." {
		return NoExtension
	}
	return ext
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
