package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/repograde/repograde/pkg/models"
)

// ScanReport renders a repository analysis result by composing the package's
// Report, Section, and Table primitives.
type ScanReport struct {
	Result *models.AnalysisResult
}

// NewScanReport wraps an analysis result for rendering.
func NewScanReport(result *models.AnalysisResult) *ScanReport {
	return &ScanReport{Result: result}
}

func (r *ScanReport) RenderData() any {
	return r.Result
}

func (r *ScanReport) RenderText(w io.Writer, colored bool) error {
	return r.report(false, colored).RenderText(w, colored)
}

func (r *ScanReport) RenderMarkdown(w io.Writer) error {
	return r.report(true, false).RenderMarkdown(w)
}

// report assembles the section list shared by the text and markdown renders.
// Severity and score coloring is baked into section content, so the markdown
// variant is always built uncolored.
func (r *ScanReport) report(markdown, colored bool) *Report {
	res := r.Result
	rep := &Report{
		Title: fmt.Sprintf("Repository Report: %s", res.Repository.FullName),
		Data:  res,
	}

	if res.Repository.Description != "" {
		rep.Sections = append(rep.Sections, &Section{Content: res.Repository.Description})
	}

	overall := fmt.Sprintf("%d/100", res.OverallScore)
	switch {
	case markdown:
		overall = fmt.Sprintf("**Overall Score: %s**", overall)
	case colored:
		overall = "Overall Score: " + ScoreColor(res.OverallScore, overall)
	default:
		overall = "Overall Score: " + overall
	}
	rep.Sections = append(rep.Sections, &Section{Content: overall})

	rep.Sections = append(rep.Sections, r.scoresTable(markdown, colored))

	if res.Summary != "" {
		rep.Sections = append(rep.Sections, &Section{Title: "Summary", Content: res.Summary})
	}

	categories := []struct {
		title  string
		issues []models.Issue
	}{
		{"Security Issues", res.Security.Issues},
		{"Code Quality Issues", res.CodeQuality.Issues},
		{"Best Practice Issues", res.BestPractices.Issues},
	}
	for _, cat := range categories {
		if len(cat.issues) == 0 {
			continue
		}
		rep.Sections = append(rep.Sections, &Section{
			Title:   cat.title,
			Content: issueLines(cat.issues, markdown, colored),
		})
	}

	if len(res.Recommendations) > 0 {
		var b strings.Builder
		for i, rec := range res.Recommendations {
			fmt.Fprintf(&b, "%d. %s\n", i+1, rec)
		}
		rep.Sections = append(rep.Sections, &Section{
			Title:   "Recommendations",
			Content: strings.TrimRight(b.String(), "\n"),
		})
	}

	rep.Sections = append(rep.Sections, &Section{Content: r.footer(markdown)})
	return rep
}

func (r *ScanReport) scoresTable(markdown, colored bool) *Table {
	res := r.Result
	cell := func(score int) string {
		s := fmt.Sprintf("%d", score)
		if colored && !markdown {
			return ScoreColor(score, s)
		}
		return s
	}
	title := ""
	if markdown {
		title = "Scores"
	}
	return NewTable(
		title,
		[]string{"Category", "Score", "Issues"},
		[][]string{
			{"Security", cell(res.Security.Score), fmt.Sprintf("%d", len(res.Security.Issues))},
			{"Code Quality", cell(res.CodeQuality.Score), fmt.Sprintf("%d", len(res.CodeQuality.Issues))},
			{"Best Practices", cell(res.BestPractices.Score), fmt.Sprintf("%d", len(res.BestPractices.Issues))},
		},
		nil,
		nil,
	)
}

func issueLines(issues []models.Issue, markdown, colored bool) string {
	var b strings.Builder
	for _, is := range issues {
		if markdown {
			if is.File != "" {
				fmt.Fprintf(&b, "- **%s**: %s (`%s`)\n", is.Severity, is.Message, is.File)
			} else {
				fmt.Fprintf(&b, "- **%s**: %s\n", is.Severity, is.Message)
			}
			continue
		}
		sev := strings.ToUpper(string(is.Severity))
		if colored {
			sev = SeverityColor(string(is.Severity), sev)
		}
		if is.File != "" {
			fmt.Fprintf(&b, "  [%s] %s (%s)\n", sev, is.Message, is.File)
		} else {
			fmt.Fprintf(&b, "  [%s] %s\n", sev, is.Message)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *ScanReport) footer(markdown bool) string {
	res := r.Result
	var b strings.Builder
	if len(res.Languages) > 0 {
		parts := make([]string, len(res.Languages))
		for i, lang := range res.Languages {
			parts[i] = fmt.Sprintf("%s %d%%", lang.Name, lang.Percent)
		}
		if markdown {
			fmt.Fprintf(&b, "**Languages:** %s\n", strings.Join(parts, ", "))
		} else {
			fmt.Fprintf(&b, "Languages: %s\n", strings.Join(parts, ", "))
		}
	}
	if markdown {
		fmt.Fprintf(&b, "**Files analyzed:** %d", len(res.AnalyzedFiles))
	} else {
		fmt.Fprintf(&b, "Files analyzed: %d", len(res.AnalyzedFiles))
	}
	return b.String()
}
