package analysis

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Profile describes which changed files count as language files and which
// belong to the wider platform of a project.
type Profile struct {
	// Name is the profile identifier used in configuration.
	Name string

	// Language is the display name used in prompts and reports.
	Language string

	// LanguageSuffixes selects language files.
	LanguageSuffixes []string

	// PlatformSuffixes selects platform files (a superset of the language).
	PlatformSuffixes []string
}

// ProfileAuto selects a profile from the repository's build files.
const ProfileAuto = "auto"

// DefaultProfile is used when nothing else is configured or detected.
const DefaultProfile = "kotlin"

var profiles = map[string]Profile{
	"kotlin": {
		Name:             "kotlin",
		Language:         "Kotlin",
		LanguageSuffixes: []string{".kt"},
		PlatformSuffixes: []string{".kt", ".xml", ".java", ".gradle"},
	},
	"java": {
		Name:             "java",
		Language:         "Java",
		LanguageSuffixes: []string{".java"},
		PlatformSuffixes: []string{".java", ".xml", ".gradle", ".properties"},
	},
	"go": {
		Name:             "go",
		Language:         "Go",
		LanguageSuffixes: []string{".go"},
		PlatformSuffixes: []string{".go", ".mod", ".sum", ".proto"},
	},
	"typescript": {
		Name:             "typescript",
		Language:         "TypeScript",
		LanguageSuffixes: []string{".ts", ".tsx"},
		PlatformSuffixes: []string{".ts", ".tsx", ".js", ".jsx", ".json", ".css", ".html"},
	},
	"python": {
		Name:             "python",
		Language:         "Python",
		LanguageSuffixes: []string{".py"},
		PlatformSuffixes: []string{".py", ".toml", ".cfg", ".txt"},
	},
	"rust": {
		Name:             "rust",
		Language:         "Rust",
		LanguageSuffixes: []string{".rs"},
		PlatformSuffixes: []string{".rs", ".toml"},
	},
}

// LookupProfile returns the named profile. An empty name returns the default.
func LookupProfile(name string) (Profile, error) {
	if name == "" {
		name = DefaultProfile
	}
	p, ok := profiles[strings.ToLower(name)]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q; available: %s", name, strings.Join(ProfileNames(), ", "))
	}
	return p, nil
}

// ProfileNames returns the sorted names of all built-in profiles.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveProfile returns the named profile, detecting one from repoRoot
// when name is ProfileAuto.
func ResolveProfile(name, repoRoot string) (Profile, error) {
	if name == ProfileAuto {
		return DetectProfile(repoRoot), nil
	}
	return LookupProfile(name)
}

// DetectProfile checks for common build files to pick a profile.
// Falls back to DefaultProfile when nothing is recognized.
func DetectProfile(repoRoot string) Profile {
	exists := func(name string) bool {
		_, err := os.Stat(filepath.Join(repoRoot, name))
		return err == nil
	}

	switch {
	case exists("build.gradle.kts"), exists("settings.gradle.kts"):
		return profiles["kotlin"]
	case exists("build.gradle"):
		// Android projects commonly keep Groovy build files with Kotlin sources
		if exists(filepath.Join("app", "src", "main", "kotlin")) || exists(filepath.Join("src", "main", "kotlin")) {
			return profiles["kotlin"]
		}
		return profiles["java"]
	case exists("pom.xml"):
		return profiles["java"]
	case exists("go.mod"):
		return profiles["go"]
	case exists("tsconfig.json"), exists("package.json"):
		return profiles["typescript"]
	case exists("pyproject.toml"), exists("requirements.txt"):
		return profiles["python"]
	case exists("Cargo.toml"):
		return profiles["rust"]
	}

	return profiles[DefaultProfile]
}

// IsLanguageFile reports whether path matches the language suffix filter.
func (p Profile) IsLanguageFile(path string) bool {
	return hasAnySuffix(path, p.LanguageSuffixes)
}

// IsPlatformFile reports whether path matches the platform suffix set.
func (p Profile) IsPlatformFile(path string) bool {
	return hasAnySuffix(path, p.PlatformSuffixes)
}

// Filter returns the paths for which keep is true, preserving order.
func Filter(paths []string, keep func(string) bool) []string {
	var out []string
	for _, p := range paths {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}
