// Package analyzer implements the deterministic pattern analyzers that score
// a repository's selected file set on security, code quality, and adherence
// to best practices. The analyzers are pure functions over their inputs:
// rule tables are fixed ordered data, and every returned issue list obeys the
// pipeline ordering invariant (critical first, ties by message).
package analyzer

import (
	"path"
	"strings"

	"github.com/repograde/repograde/pkg/models"
)

// codeExtensions identifies files treated as source code. Documentation and
// data-only formats are deliberately absent.
var codeExtensions = map[string]bool{
	".ts": true, ".tsx": true, ".js": true, ".jsx": true, ".mjs": true, ".cjs": true,
	".go": true, ".py": true, ".rb": true, ".java": true, ".rs": true,
	".c": true, ".cpp": true, ".h": true, ".cs": true, ".php": true,
	".swift": true, ".kt": true, ".scala": true, ".sh": true,
	".vue": true, ".svelte": true, ".sql": true,
}

// typedExtensions identifies statically typed source files, used by rules
// that only make sense there (e.g. "any" usage).
var typedExtensions = map[string]bool{
	".ts": true, ".tsx": true,
}

// isCodeFile reports whether a path has a recognized code extension.
func isCodeFile(p string) bool {
	return codeExtensions[strings.ToLower(path.Ext(p))]
}

// isDocFile reports whether a path is documentation or plain text.
func isDocFile(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".md", ".txt", ".rst":
		return true
	}
	return false
}

// isTestPath reports whether a path looks test-related.
func isTestPath(p string) bool {
	return strings.Contains(strings.ToLower(p), "test")
}

// clampScore bounds a score to [0,100].
func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// countCodeFiles returns how many files in the set carry a code extension.
func countCodeFiles(files []models.RepoFile) int {
	n := 0
	for _, f := range files {
		if isCodeFile(f.Path) {
			n++
		}
	}
	return n
}
