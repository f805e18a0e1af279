// Package selector picks the bounded, deterministically ordered subset of
// repository files that the analyzers operate on.
package selector

import (
	"path"
	"sort"
	"strings"

	"github.com/repograde/repograde/pkg/models"
)

// MaxFiles caps how many paths a selection may contain.
const MaxFiles = 20

// importantPriority is assigned to well-known top-level config and doc
// filenames, ahead of any extension-based priority.
const importantPriority = 100

// importantFiles are always-relevant config/doc filenames, matched on the
// lowercased base name.
var importantFiles = map[string]bool{
	"package.json":       true,
	"tsconfig.json":      true,
	"go.mod":             true,
	"cargo.toml":         true,
	"pyproject.toml":     true,
	"requirements.txt":   true,
	"gemfile":            true,
	"pom.xml":            true,
	"build.gradle":       true,
	"composer.json":      true,
	"readme":             true,
	"readme.md":          true,
	"license":            true,
	"license.md":         true,
	"license.txt":        true,
	".env.example":       true,
	".eslintrc.json":     true,
	".prettierrc":        true,
	"dockerfile":         true,
	"docker-compose.yml": true,
	"makefile":           true,
	".gitlab-ci.yml":     true,
	".travis.yml":        true,
}

// extensionPriority ranks source and config extensions. TypeScript leads
// because it is the platform's primary typed language; other general-purpose
// languages follow in descending order.
var extensionPriority = map[string]int{
	".ts":     50,
	".tsx":    50,
	".js":     45,
	".jsx":    45,
	".mjs":    45,
	".cjs":    45,
	".go":     42,
	".py":     40,
	".rb":     38,
	".java":   36,
	".rs":     36,
	".cs":     34,
	".php":    32,
	".swift":  32,
	".kt":     32,
	".scala":  30,
	".c":      30,
	".cpp":    30,
	".h":      28,
	".vue":    40,
	".svelte": 40,
	".sql":    25,
	".sh":     22,
	".yml":    20,
	".yaml":   20,
	".json":   18,
	".toml":   18,
	".md":     15,
	".html":   15,
	".css":    15,
}

// defaultExtensionPriority applies to kept files whose extension carries no
// explicit rank.
const defaultExtensionPriority = 10

// noiseDirs are conventional dependency/build/output directories whose
// contents never contribute to a scan.
var noiseDirs = []string{
	"node_modules/",
	"dist/",
	"build/",
	"vendor/",
	"__pycache__/",
	".git/",
	"coverage/",
}

// Select deterministically ranks and truncates a raw tree listing to the
// working set of paths. Identical listings always yield the identical path
// sequence: downstream issue messages reference files in this order.
func Select(entries []models.TreeEntry) []string {
	type ranked struct {
		path     string
		priority int
	}

	var kept []ranked
	for _, e := range entries {
		if !e.IsBlob() {
			continue
		}
		if isNoise(e.Path) {
			continue
		}
		base := strings.ToLower(path.Base(e.Path))
		ext := strings.ToLower(path.Ext(e.Path))
		if important := importantFiles[base]; !important {
			if _, ok := extensionPriority[ext]; !ok && !keepUnrankedExt(base) {
				continue
			}
		}
		kept = append(kept, ranked{path: e.Path, priority: priorityFor(e.Path, base, ext)})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].priority != kept[j].priority {
			return kept[i].priority > kept[j].priority
		}
		return kept[i].path < kept[j].path
	})

	if len(kept) > MaxFiles {
		kept = kept[:MaxFiles]
	}

	paths := make([]string, len(kept))
	for i, r := range kept {
		paths[i] = r.path
	}
	return paths
}

// keepUnrankedExt keeps a handful of extensionless files that matter even
// though they carry no ranked extension.
func keepUnrankedExt(base string) bool {
	return base == ".gitignore" || base == ".env" || base == ".env.sample"
}

func priorityFor(p, base, ext string) int {
	if importantFiles[base] {
		return importantPriority
	}
	prio, ok := extensionPriority[ext]
	if !ok {
		prio = defaultExtensionPriority
	}
	return prio + depthBonus(p)
}

// depthBonus rewards files near the repository root. Depth is the number of
// directory separators in the path; the bonus floors at zero.
func depthBonus(p string) int {
	depth := strings.Count(p, "/")
	bonus := 15 - 5*depth
	if bonus < 0 {
		return 0
	}
	return bonus
}

// isNoise reports whether a path lives under a conventional noise directory
// or is otherwise never worth analyzing (minified bundles, test trees).
func isNoise(p string) bool {
	lower := strings.ToLower(p)
	for _, dir := range noiseDirs {
		if strings.HasPrefix(lower, dir) || strings.Contains(lower, "/"+dir) {
			return true
		}
	}
	if strings.Contains(lower, ".min.") {
		return true
	}
	for _, seg := range strings.Split(lower, "/") {
		if seg == "test" || seg == "tests" || seg == "__tests__" {
			return true
		}
	}
	return false
}
