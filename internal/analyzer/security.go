package analyzer

import (
	"path"
	"regexp"

	"github.com/repograde/repograde/pkg/models"
)

// securityRule is one declarative security check. Each rule contributes at
// most once per scan: the first file that matches records the issue and the
// rule is skipped thereafter.
type securityRule struct {
	pattern  *regexp.Regexp
	severity models.Severity
	message  string
	// exclude, when set, suppresses matches that it also matches. RE2 has no
	// lookahead, so exclusions are a second pass over each match.
	exclude *regexp.Regexp
}

// matches reports whether the rule fires on the given content.
func (r securityRule) matches(content string) bool {
	if r.exclude == nil {
		return r.pattern.MatchString(content)
	}
	for _, m := range r.pattern.FindAllString(content, -1) {
		if !r.exclude.MatchString(m) {
			return true
		}
	}
	return false
}

// securityRules is the fixed ordered rule table. Order matters only for
// reproducibility of which file gets named when several rules overlap.
var securityRules = []securityRule{
	{
		pattern:  regexp.MustCompile(`(?i)(api[_-]?key|apikey|access[_-]?token|auth[_-]?token)\s*[:=]\s*["'][^"']{6,}["']`),
		severity: models.SeverityCritical,
		message:  "Hardcoded API key detected",
	},
	{
		pattern:  regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[:=]\s*["'][^"']{4,}["']`),
		severity: models.SeverityCritical,
		message:  "Hardcoded password detected",
	},
	{
		pattern:  regexp.MustCompile(`(?i)(secret|private[_-]?key)\s*[:=]\s*["'][^"']{6,}["']`),
		severity: models.SeverityCritical,
		message:  "Hardcoded secret detected",
	},
	{
		pattern:  regexp.MustCompile(`-----BEGIN (RSA |EC |OPENSSH )?PRIVATE KEY-----`),
		severity: models.SeverityCritical,
		message:  "Private key material committed to the repository",
	},
	{
		pattern:  regexp.MustCompile(`\beval\s*\(|\bnew Function\s*\(|child_process|exec\s*\(\s*["']`),
		severity: models.SeverityWarning,
		message:  "Dangerous dynamic code execution detected",
	},
	{
		pattern:  regexp.MustCompile(`\.innerHTML\s*=|dangerouslySetInnerHTML|document\.write\s*\(`),
		severity: models.SeverityWarning,
		message:  "Unsanitized HTML injection risk",
	},
	{
		pattern:  regexp.MustCompile(`(?i)(SELECT|INSERT|UPDATE|DELETE)\s+.*\s*(\+|\|\||%s|\$\{)`),
		severity: models.SeverityWarning,
		message:  "SQL query built by string concatenation",
	},
	{
		pattern:  regexp.MustCompile(`http://[a-zA-Z0-9.\-]+`),
		severity: models.SeverityInfo,
		message:  "Plain HTTP URL found (use HTTPS)",
		exclude:  regexp.MustCompile(`http://(localhost|127\.0\.0\.1|0\.0\.0\.0)`),
	},
	{
		pattern:  regexp.MustCompile(`(?i)rejectUnauthorized\s*:\s*false|InsecureSkipVerify\s*:\s*true|verify\s*=\s*False|NODE_TLS_REJECT_UNAUTHORIZED`),
		severity: models.SeverityWarning,
		message:  "TLS certificate verification disabled",
	},
}

// Deductions applied per first match of a security rule.
const (
	securityCriticalDeduction = 30
	securityWarningDeduction  = 15
	securityInfoDeduction     = 8

	envFileDeduction = 25
)

func securityDeduction(s models.Severity) int {
	switch s {
	case models.SeverityCritical:
		return securityCriticalDeduction
	case models.SeverityWarning:
		return securityWarningDeduction
	default:
		return securityInfoDeduction
	}
}

// AnalyzeSecurity scans the working set against the security rule table and
// returns the security category result.
func AnalyzeSecurity(files []models.RepoFile) models.CategoryResult {
	if countCodeFiles(files) == 0 {
		return models.CategoryResult{
			Score: 50,
			Issues: []models.Issue{{
				Severity: models.SeverityInfo,
				Message:  "No code files found to assess for security issues",
			}},
		}
	}

	score := 100
	var issues []models.Issue
	seen := make([]bool, len(securityRules))

	for _, f := range files {
		if isDocFile(f.Path) || isTestPath(f.Path) {
			continue
		}
		for i, rule := range securityRules {
			if seen[i] {
				continue
			}
			if rule.matches(f.Content) {
				seen[i] = true
				issues = append(issues, models.Issue{
					Severity: rule.severity,
					Message:  rule.message,
					File:     f.Path,
				})
				score -= securityDeduction(rule.severity)
			}
		}
	}

	// A committed .env file is flagged independently of the rule table.
	for _, f := range files {
		if path.Base(f.Path) == ".env" {
			issues = append(issues, models.Issue{
				Severity: models.SeverityCritical,
				Message:  "Environment file with secrets committed to the repository",
				File:     f.Path,
			})
			score -= envFileDeduction
			break
		}
	}

	models.SortIssues(issues)
	return models.CategoryResult{Score: clampScore(score), Issues: issues}
}
