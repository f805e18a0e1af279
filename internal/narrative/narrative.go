// Package narrative produces the prose summary and recommendations for a
// scan. The text-generation call is strictly additive: it never alters the
// algorithmic scores, and any failure falls back to a deterministic template
// so a scan always completes.
package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	toon "github.com/toon-format/toon-go"

	"github.com/repograde/repograde/pkg/models"
)

// TextGenerator is the outbound port to a text-generation capability. It
// accepts a prompt and returns free text expected to contain a JSON object.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Input carries everything the generator may reference. Scores arrive
// already combined; the generator only adds prose.
type Input struct {
	Repo      models.Repository
	Paths     []string
	Languages models.Languages
	Breakdown models.ScoreBreakdown
	Overall   int
}

// Narrative is the generated summary plus exactly three recommendations.
type Narrative struct {
	Summary         string   `json:"summary"`
	Recommendations []string `json:"recommendations"`
}

// maxPromptIssues bounds how many issues are included in the prompt context,
// drawn security first, then quality, then practices.
const maxPromptIssues = 10

const recommendationCount = 3

// Generate invokes the text generator and parses its response. Call
// failures, malformed JSON, and rate limits all degrade to Fallback; the
// scan result is never blocked on the narrative layer.
func Generate(ctx context.Context, gen TextGenerator, in Input) Narrative {
	if gen == nil {
		return Fallback(in)
	}

	raw, err := gen.GenerateText(ctx, BuildPrompt(in))
	if err != nil {
		slog.WarnContext(ctx, "narrative generation failed, using fallback", "error", err)
		return Fallback(in)
	}

	n, err := parseResponse(raw)
	if err != nil {
		slog.WarnContext(ctx, "narrative response unparseable, using fallback", "error", err)
		return Fallback(in)
	}
	return n
}

// promptContext is the bounded context block encoded into the prompt.
type promptContext struct {
	Repository    string         `json:"repository"`
	Description   string         `json:"description,omitempty"`
	Languages     map[string]int `json:"languages,omitempty"`
	AnalyzedFiles []string       `json:"analyzed_files"`
	Scores        map[string]int `json:"scores"`
	Issues        []taggedIssue  `json:"issues,omitempty"`
}

type taggedIssue struct {
	Category string `json:"category"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	File     string `json:"file,omitempty"`
}

// BuildPrompt renders the instruction plus a TOON-encoded context block.
func BuildPrompt(in Input) string {
	langs := make(map[string]int, len(in.Languages))
	for _, l := range in.Languages {
		langs[l.Name] = l.Percent
	}

	pc := promptContext{
		Repository:    in.Repo.FullName,
		Description:   in.Repo.Description,
		Languages:     langs,
		AnalyzedFiles: in.Paths,
		Scores: map[string]int{
			"security":       in.Breakdown.Security.Score,
			"code_quality":   in.Breakdown.CodeQuality.Score,
			"best_practices": in.Breakdown.BestPractices.Score,
			"overall":        in.Overall,
		},
		Issues: collectIssues(in.Breakdown),
	}

	contextBlock, err := toon.Marshal(pc, toon.WithIndent(2))
	if err != nil {
		// TOON encoding of plain structs does not fail in practice; JSON is
		// the safety net.
		fallback, _ := json.Marshal(pc)
		contextBlock = fallback
	}

	var b strings.Builder
	b.WriteString("You are a code review assistant. Based on the repository analysis below, ")
	b.WriteString("write a concise assessment.\n\n")
	b.Write(contextBlock)
	b.WriteString("\n\nRespond with a JSON object with exactly two keys: ")
	b.WriteString(`"summary" (2-3 sentences about the repository's overall health) and `)
	b.WriteString(`"recommendations" (an array of exactly 3 short, actionable improvement suggestions). `)
	b.WriteString("Do not change or restate any numeric score beyond those provided.")
	return b.String()
}

// collectIssues takes at most maxPromptIssues from the already-sorted
// per-category lists, security first, then quality, then practices.
func collectIssues(b models.ScoreBreakdown) []taggedIssue {
	var out []taggedIssue
	add := func(category string, issues []models.Issue) {
		for _, is := range issues {
			if len(out) >= maxPromptIssues {
				return
			}
			out = append(out, taggedIssue{
				Category: category,
				Severity: string(is.Severity),
				Message:  is.Message,
				File:     is.File,
			})
		}
	}
	add("security", b.Security.Issues)
	add("code_quality", b.CodeQuality.Issues)
	add("best_practices", b.BestPractices.Issues)
	return out
}

// parseResponse extracts the narrative JSON from model output, stripping any
// markdown code fences first.
func parseResponse(raw string) (Narrative, error) {
	text := stripCodeFences(raw)

	var n Narrative
	if err := json.Unmarshal([]byte(text), &n); err != nil {
		return Narrative{}, fmt.Errorf("parse narrative JSON: %w", err)
	}
	if strings.TrimSpace(n.Summary) == "" {
		return Narrative{}, fmt.Errorf("narrative missing summary")
	}
	if len(n.Recommendations) == 0 {
		return Narrative{}, fmt.Errorf("narrative missing recommendations")
	}
	if len(n.Recommendations) > recommendationCount {
		n.Recommendations = n.Recommendations[:recommendationCount]
	}
	return n, nil
}

// stripCodeFences removes a wrapping markdown code fence, with or without a
// language tag.
func stripCodeFences(s string) string {
	text := strings.TrimSpace(s)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 {
		// Drop the language tag line (e.g. ```json).
		text = text[idx+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// Fallback builds the deterministic templated narrative used whenever the
// text-generation call is unavailable or unusable.
func Fallback(in Input) Narrative {
	return Narrative{
		Summary: fmt.Sprintf(
			"Analyzed %d files from %s. The repository scores %d/100 overall: security %d, code quality %d, best practices %d.",
			len(in.Paths), in.Repo.FullName, in.Overall,
			in.Breakdown.Security.Score, in.Breakdown.CodeQuality.Score, in.Breakdown.BestPractices.Score,
		),
		Recommendations: []string{
			"Review and address the reported security findings first.",
			"Add or expand automated tests to cover core functionality.",
			"Keep documentation (README, license, contribution guide) up to date.",
		},
	}
}
