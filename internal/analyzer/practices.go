package analyzer

import (
	"path"
	"regexp"
	"strings"

	"github.com/repograde/repograde/pkg/models"
)

// Best-practices deductions. The score starts at 100 and floors at 0.
const (
	noReadmeDeduction       = 20
	thinReadmeDeduction     = 15
	shortReadmeDeduction    = 8
	noGitignoreDeduction    = 15
	noManifestDeduction     = 10
	noTSConfigDeduction     = 12
	noEnvExampleDeduction   = 12
	noTestsDeduction        = 20
	noLicenseDeduction      = 10
	noErrorHandlingDeduct   = 15
	unguardedAsyncDeduction = 10

	readmeThinChars  = 500
	readmeShortChars = 1000
)

var manifestFiles = map[string]bool{
	"package.json":     true,
	"go.mod":           true,
	"cargo.toml":       true,
	"requirements.txt": true,
	"pyproject.toml":   true,
	"gemfile":          true,
	"pom.xml":          true,
	"build.gradle":     true,
	"composer.json":    true,
}

var (
	envAccessPattern  = regexp.MustCompile(`process\.env\.|os\.environ|os\.Getenv|ENV\[`)
	testCallPattern   = regexp.MustCompile(`\bdescribe\s*\(|\bit\s*\(|\btest\s*\(|\bassert|func Test[A-Z]|@Test\b|def test_`)
	errorGuardPattern = regexp.MustCompile(`\btry\b|\bcatch\b|\bexcept\b|\brescue\b|if err != nil|\.catch\s*\(`)
	asyncPattern      = regexp.MustCompile(`\basync\b|\bawait\b|\.then\s*\(`)
	tryCatchPattern   = regexp.MustCompile(`\btry\b|\.catch\s*\(`)
)

// asyncGuardRatio is the minimum share of exception-guarding syntax relative
// to asynchronous syntax before async code is considered unguarded.
const (
	asyncGuardRatio    = 0.3
	asyncMinOccurrence = 5
)

// AnalyzePractices inspects filenames from the full listing and the fetched
// content of the working set for adherence to common project conventions.
func AnalyzePractices(files []models.RepoFile, allPaths []string) models.CategoryResult {
	score := 100
	var issues []models.Issue

	names := make(map[string]bool, len(allPaths))
	for _, p := range allPaths {
		names[strings.ToLower(path.Base(p))] = true
	}

	var content strings.Builder
	for _, f := range files {
		content.WriteString(f.Content)
		content.WriteByte('\n')
	}
	text := content.String()

	// README presence and substance.
	readme := findReadme(files)
	switch {
	case !hasPrefixName(names, "readme"):
		issues = append(issues, models.Issue{
			Severity: models.SeverityWarning,
			Message:  "No README file found",
		})
		score -= noReadmeDeduction
	case readme != nil && len(readme.Content) < readmeThinChars:
		issues = append(issues, models.Issue{
			Severity: models.SeverityWarning,
			Message:  "README is too short to be useful",
			File:     readme.Path,
		})
		score -= thinReadmeDeduction
	case readme != nil && len(readme.Content) < readmeShortChars:
		issues = append(issues, models.Issue{
			Severity: models.SeverityInfo,
			Message:  "README could be more detailed",
			File:     readme.Path,
		})
		score -= shortReadmeDeduction
	}

	if !names[".gitignore"] {
		issues = append(issues, models.Issue{
			Severity: models.SeverityWarning,
			Message:  "No .gitignore file found",
		})
		score -= noGitignoreDeduction
	}

	if !hasAnyName(names, manifestFiles) {
		issues = append(issues, models.Issue{
			Severity: models.SeverityInfo,
			Message:  "No dependency manifest found for any ecosystem",
		})
		score -= noManifestDeduction
	}

	if hasTypeScript(allPaths) && !names["tsconfig.json"] {
		issues = append(issues, models.Issue{
			Severity: models.SeverityWarning,
			Message:  "TypeScript sources without a tsconfig.json",
		})
		score -= noTSConfigDeduction
	}

	if envAccessPattern.MatchString(text) && !names[".env.example"] && !names[".env.sample"] {
		issues = append(issues, models.Issue{
			Severity: models.SeverityWarning,
			Message:  "Environment variables used without an example env file",
		})
		score -= noEnvExampleDeduction
	}

	if !hasTests(allPaths, text) {
		issues = append(issues, models.Issue{
			Severity: models.SeverityWarning,
			Message:  "No tests found in the repository",
		})
		score -= noTestsDeduction
	}

	if !hasPrefixName(names, "license") && !hasPrefixName(names, "licence") {
		issues = append(issues, models.Issue{
			Severity: models.SeverityInfo,
			Message:  "No LICENSE file found",
		})
		score -= noLicenseDeduction
	}

	if len(files) > 0 && !errorGuardPattern.MatchString(text) {
		issues = append(issues, models.Issue{
			Severity: models.SeverityWarning,
			Message:  "No error handling detected in analyzed code",
		})
		score -= noErrorHandlingDeduct
	}

	// Async code without proportional exception guarding.
	asyncCount := len(asyncPattern.FindAllStringIndex(text, -1))
	if asyncCount > asyncMinOccurrence {
		guards := len(tryCatchPattern.FindAllStringIndex(text, -1))
		if float64(guards) < asyncGuardRatio*float64(asyncCount) {
			issues = append(issues, models.Issue{
				Severity: models.SeverityWarning,
				Message:  "Asynchronous code appears largely unguarded by error handling",
			})
			score -= unguardedAsyncDeduction
		}
	}

	models.SortIssues(issues)
	return models.CategoryResult{Score: clampScore(score), Issues: issues}
}

func findReadme(files []models.RepoFile) *models.RepoFile {
	for i := range files {
		if strings.HasPrefix(strings.ToLower(path.Base(files[i].Path)), "readme") {
			return &files[i]
		}
	}
	return nil
}

func hasPrefixName(names map[string]bool, prefix string) bool {
	for n := range names {
		if strings.HasPrefix(n, prefix) {
			return true
		}
	}
	return false
}

func hasAnyName(names map[string]bool, wanted map[string]bool) bool {
	for n := range names {
		if wanted[n] {
			return true
		}
	}
	return false
}

func hasTypeScript(paths []string) bool {
	for _, p := range paths {
		switch strings.ToLower(path.Ext(p)) {
		case ".ts", ".tsx":
			return true
		}
	}
	return false
}

func hasTests(paths []string, text string) bool {
	for _, p := range paths {
		lower := strings.ToLower(p)
		if strings.Contains(lower, "test") || strings.Contains(lower, "spec") {
			return true
		}
	}
	return testCallPattern.MatchString(text)
}
