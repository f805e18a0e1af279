package mcpserver

// describeScan returns the scan_repository tool description.
func describeScan() string {
	return `Score a GitHub repository for security, code quality, and best practices.

USE WHEN: evaluating a dependency before adoption, reviewing a candidate's
portfolio project, or triaging an unfamiliar codebase. Works on any public
GitHub repository; private repositories need a GITHUB_TOKEN.

INTERPRETING RESULTS: the overall score is a 0-100 weighted combination of
three category scores (security 40%, code quality 35%, best practices 25%).
Each category lists up to five issues, worst first. Severity "critical" means
a likely real problem (hardcoded secrets, committed .env files); "warning"
means a risky pattern; "info" is advisory. Scores above 80 are healthy, below
50 need attention.

METRICS RETURNED: overall score, per-category scores and issues, a narrative
summary, three recommendations, the language distribution, and the list of
files analyzed. Analysis covers up to 20 representative files chosen by
manifest/config priority, so the score is a screening signal, not an audit.`
}
