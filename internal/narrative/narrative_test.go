package narrative

import (
	"context"
	"errors"
	"testing"

	"github.com/repograde/repograde/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	response string
	err      error
	prompt   string
}

func (f *fakeGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func sampleInput() Input {
	return Input{
		Repo: models.Repository{
			FullName:    "acme/widgets",
			Description: "A widget factory",
		},
		Paths: []string{"package.json", "src/index.ts"},
		Languages: models.Languages{
			{Name: "TypeScript", Percent: 75},
			{Name: "CSS", Percent: 25},
		},
		Breakdown: models.ScoreBreakdown{
			Security:      models.CategoryResult{Score: 70, Issues: []models.Issue{{Severity: models.SeverityCritical, Message: "Hardcoded API key detected", File: "src/index.ts"}}},
			CodeQuality:   models.CategoryResult{Score: 85},
			BestPractices: models.CategoryResult{Score: 90},
		},
		Overall: 80,
	}
}

func TestGenerate_ParsesResponse(t *testing.T) {
	gen := &fakeGenerator{
		response: `{"summary": "Solid project.", "recommendations": ["a", "b", "c"]}`,
	}

	n := Generate(context.Background(), gen, sampleInput())

	assert.Equal(t, "Solid project.", n.Summary)
	assert.Equal(t, []string{"a", "b", "c"}, n.Recommendations)
}

func TestGenerate_StripsCodeFences(t *testing.T) {
	gen := &fakeGenerator{
		response: "```json\n{\"summary\": \"Fenced.\", \"recommendations\": [\"a\", \"b\", \"c\"]}\n```",
	}

	n := Generate(context.Background(), gen, sampleInput())

	assert.Equal(t, "Fenced.", n.Summary)
}

func TestGenerate_FallbackOnError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("rate limited")}
	in := sampleInput()

	n := Generate(context.Background(), gen, in)

	assert.NotEmpty(t, n.Summary)
	require.Len(t, n.Recommendations, 3)
	assert.Equal(t, Fallback(in), n)
}

func TestGenerate_FallbackOnMalformedJSON(t *testing.T) {
	for _, response := range []string{
		"not json at all",
		`{"summary": ""}`,
		`{"summary": "ok"}`,
		`{"recommendations": ["a"]}`,
	} {
		gen := &fakeGenerator{response: response}
		n := Generate(context.Background(), gen, sampleInput())
		assert.Equal(t, Fallback(sampleInput()), n, "response %q should fall back", response)
	}
}

func TestGenerate_NilGeneratorFallsBack(t *testing.T) {
	n := Generate(context.Background(), nil, sampleInput())
	assert.Equal(t, Fallback(sampleInput()), n)
}

func TestGenerate_TruncatesExtraRecommendations(t *testing.T) {
	gen := &fakeGenerator{
		response: `{"summary": "ok", "recommendations": ["a", "b", "c", "d", "e"]}`,
	}

	n := Generate(context.Background(), gen, sampleInput())

	assert.Equal(t, []string{"a", "b", "c"}, n.Recommendations)
}

func TestBuildPrompt_IncludesContext(t *testing.T) {
	prompt := BuildPrompt(sampleInput())

	assert.Contains(t, prompt, "acme/widgets")
	assert.Contains(t, prompt, "src/index.ts")
	assert.Contains(t, prompt, "Hardcoded API key detected")
	assert.Contains(t, prompt, `"summary"`)
	assert.Contains(t, prompt, `"recommendations"`)
}

func TestCollectIssues_CapsAndOrdersByCategory(t *testing.T) {
	many := func(msg string, n int) []models.Issue {
		issues := make([]models.Issue, n)
		for i := range issues {
			issues[i] = models.Issue{Severity: models.SeverityInfo, Message: msg}
		}
		return issues
	}
	b := models.ScoreBreakdown{
		Security:      models.CategoryResult{Issues: many("sec", 6)},
		CodeQuality:   models.CategoryResult{Issues: many("qual", 6)},
		BestPractices: models.CategoryResult{Issues: many("prac", 6)},
	}

	got := collectIssues(b)

	require.Len(t, got, maxPromptIssues)
	assert.Equal(t, "security", got[0].Category)
	assert.Equal(t, "sec", got[5].Message)
	assert.Equal(t, "code_quality", got[6].Category)
	// Best-practices issues never make the cut here.
	for _, is := range got {
		assert.NotEqual(t, "best_practices", is.Category)
	}
}

func TestFallback_Deterministic(t *testing.T) {
	in := sampleInput()
	assert.Equal(t, Fallback(in), Fallback(in))
	assert.Contains(t, Fallback(in).Summary, "2 files")
	assert.Contains(t, Fallback(in).Summary, "80/100")
	assert.Len(t, Fallback(in).Recommendations, 3)
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no fences", `{"a":1}`, `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeFences(tt.input))
		})
	}
}
