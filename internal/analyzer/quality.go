package analyzer

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/repograde/repograde/pkg/models"
)

// qualityRule is one declarative quality check. Unlike security rules,
// quality deductions accumulate per match, scaled by severity weight, with
// each rule's total contribution capped.
type qualityRule struct {
	pattern  *regexp.Regexp
	severity models.Severity
	message  string
	// typedOnly restricts the rule to statically typed source files.
	typedOnly bool
}

var qualityRules = []qualityRule{
	{
		pattern:  regexp.MustCompile(`console\.(log|debug|info)\s*\(`),
		severity: models.SeverityInfo,
		message:  "Debug console output left in code",
	},
	{
		pattern:  regexp.MustCompile(`(?i)\b(TODO|FIXME|HACK|XXX)\b`),
		severity: models.SeverityInfo,
		message:  "TODO/FIXME markers found",
	},
	{
		pattern:   regexp.MustCompile(`:\s*any\b|as\s+any\b|<any>`),
		severity:  models.SeverityWarning,
		message:   "Untyped 'any' usage in typed code",
		typedOnly: true,
	},
	{
		pattern:  regexp.MustCompile(`catch\s*(\([^)]*\))?\s*\{\s*\}`),
		severity: models.SeverityWarning,
		message:  "Empty exception handling block",
	},
	{
		pattern:  regexp.MustCompile(`\(([^()\n]*,){5,}[^()\n]*\)`),
		severity: models.SeverityWarning,
		message:  "Function with an excessively long parameter list",
	},
	{
		pattern:  regexp.MustCompile(`(?m)^(\t{6,}| {24,})\S`),
		severity: models.SeverityInfo,
		message:  "Deeply nested code (excessive indentation)",
	},
	{
		pattern:  regexp.MustCompile(`\n[ \t]*\n[ \t]*\n`),
		severity: models.SeverityInfo,
		message:  "Multiple consecutive blank lines",
	},
}

// Per-match severity weights and the per-rule contribution cap.
const (
	qualityWarningWeight = 5
	qualityInfoWeight    = 2
	qualityRuleCap       = 20
)

// Structural thresholds evaluated outside the rule table.
const (
	largeFileLines     = 500
	largeFileDeduction = 5

	longLineLength      = 150
	longLinesPerFileMax = 5
	longLinesDeduction  = 8

	namingConsistencyMin  = 0.6
	namingIssueDeduction  = 8
	namingMinFilesToJudge = 3
)

func qualityWeight(s models.Severity) int {
	if s == models.SeverityWarning {
		return qualityWarningWeight
	}
	return qualityInfoWeight
}

// AnalyzeQuality scans the working set for code quality problems and returns
// the code quality category result.
func AnalyzeQuality(files []models.RepoFile) models.CategoryResult {
	score := 100
	var issues []models.Issue

	var codeFiles []models.RepoFile
	totalLines := 0
	for _, f := range files {
		if isCodeFile(f.Path) {
			codeFiles = append(codeFiles, f)
			totalLines += strings.Count(f.Content, "\n") + 1
		}
	}
	if len(codeFiles) == 0 {
		totalLines = 0
	}

	// Pattern rules: deductions accumulate per match, capped per rule.
	for _, rule := range qualityRules {
		matchCount := 0
		firstFile := ""
		for _, f := range codeFiles {
			if rule.typedOnly && !typedExtensions[strings.ToLower(path.Ext(f.Path))] {
				continue
			}
			n := len(rule.pattern.FindAllStringIndex(f.Content, -1))
			if n > 0 && firstFile == "" {
				firstFile = f.Path
			}
			matchCount += n
		}
		if matchCount == 0 {
			continue
		}
		deduction := matchCount * qualityWeight(rule.severity)
		if deduction > qualityRuleCap {
			deduction = qualityRuleCap
		}
		score -= deduction
		issues = append(issues, models.Issue{
			Severity: rule.severity,
			Message:  rule.message,
			File:     firstFile,
		})
	}

	// Large files: one aggregate issue naming the first offender. Applies to
	// every fetched text file, docs included, not just code.
	for _, f := range files {
		if strings.Count(f.Content, "\n")+1 > largeFileLines {
			issues = append(issues, models.Issue{
				Severity: models.SeverityInfo,
				Message:  fmt.Sprintf("Large file exceeding %d lines", largeFileLines),
				File:     f.Path,
			})
			score -= largeFileDeduction
			break
		}
	}

	// Long lines, evaluated per file crossing the threshold, code or not.
	for _, f := range files {
		long := 0
		for _, line := range strings.Split(f.Content, "\n") {
			if len(line) > longLineLength {
				long++
			}
		}
		if long > longLinesPerFileMax {
			issues = append(issues, models.Issue{
				Severity: models.SeverityInfo,
				Message:  fmt.Sprintf("More than %d lines exceeding %d characters", longLinesPerFileMax, longLineLength),
				File:     f.Path,
			})
			score -= longLinesDeduction
		}
	}

	// File-count floor checks.
	switch n := len(codeFiles); {
	case n == 0:
		issues = append(issues, models.Issue{
			Severity: models.SeverityCritical,
			Message:  "No code files found in the repository",
		})
		score -= 50
	case n == 1:
		issues = append(issues, models.Issue{
			Severity: models.SeverityWarning,
			Message:  "Only one code file in the repository",
		})
		score -= 25
	case n <= 3:
		issues = append(issues, models.Issue{
			Severity: models.SeverityInfo,
			Message:  "Very few code files in the repository",
		})
		score -= 15
	}

	// Line-count bands, independent of the file-count bands.
	switch {
	case totalLines < 50:
		issues = append(issues, models.Issue{
			Severity: models.SeverityWarning,
			Message:  "Very little code to assess (under 50 lines)",
		})
		score -= 30
	case totalLines < 150:
		issues = append(issues, models.Issue{
			Severity: models.SeverityInfo,
			Message:  "Small codebase (under 150 lines)",
		})
		score -= 15
	case totalLines < 300:
		issues = append(issues, models.Issue{
			Severity: models.SeverityInfo,
			Message:  "Modest codebase (under 300 lines)",
		})
		score -= 8
	}

	// Naming convention consistency across file base names.
	if issue, penalized := namingConsistency(codeFiles); penalized {
		issues = append(issues, issue)
		score -= namingIssueDeduction
	}

	models.SortIssues(issues)
	return models.CategoryResult{Score: clampScore(score), Issues: issues}
}

// namingStyle classifies a file base name by simple character inspection.
func namingStyle(base string) string {
	name := strings.TrimSuffix(base, path.Ext(base))
	switch {
	case strings.Contains(name, "-"):
		return "kebab-case"
	case strings.Contains(name, "_"):
		return "snake_case"
	case len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z':
		return "PascalCase"
	default:
		return "camelCase"
	}
}

// namingConsistency flags file sets where no single naming style dominates.
func namingConsistency(files []models.RepoFile) (models.Issue, bool) {
	if len(files) <= namingMinFilesToJudge {
		return models.Issue{}, false
	}
	counts := map[string]int{}
	for _, f := range files {
		counts[namingStyle(path.Base(f.Path))]++
	}
	dominant := 0
	for _, c := range counts {
		if c > dominant {
			dominant = c
		}
	}
	if float64(dominant) >= namingConsistencyMin*float64(len(files)) {
		return models.Issue{}, false
	}
	return models.Issue{
		Severity: models.SeverityInfo,
		Message:  "Inconsistent file naming conventions",
	}, true
}
