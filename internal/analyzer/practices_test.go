package analyzer

import (
	"strings"
	"testing"

	"github.com/repograde/repograde/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wellFormedRepo() ([]models.RepoFile, []string) {
	files := []models.RepoFile{
		{Path: "README.md", Content: strings.Repeat("A detailed project description. ", 40)},
		{Path: "src/app.js", Content: "try { run() } catch (e) { report(e) }"},
	}
	paths := []string{
		"README.md", ".gitignore", "LICENSE", "package.json",
		"src/app.js", "src/app.test.js",
	}
	return files, paths
}

func TestAnalyzePractices_WellFormedRepo(t *testing.T) {
	files, paths := wellFormedRepo()

	result := AnalyzePractices(files, paths)

	assert.Equal(t, 100, result.Score)
	assert.Empty(t, result.Issues)
}

func TestAnalyzePractices_EmptyRepository(t *testing.T) {
	result := AnalyzePractices(nil, nil)

	// Missing README, .gitignore, manifest, tests, and license.
	assert.Equal(t, 25, result.Score)
	messages := make([]string, len(result.Issues))
	for i, is := range result.Issues {
		messages[i] = is.Message
	}
	assert.Contains(t, messages, "No README file found")
	assert.Contains(t, messages, "No .gitignore file found")
	assert.Contains(t, messages, "No tests found in the repository")
	assert.Contains(t, messages, "No LICENSE file found")
}

func TestAnalyzePractices_ThinReadme(t *testing.T) {
	files, paths := wellFormedRepo()
	files[0].Content = "# hi"

	result := AnalyzePractices(files, paths)

	assert.Equal(t, 85, result.Score)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "README is too short to be useful", result.Issues[0].Message)
}

func TestAnalyzePractices_ShortReadme(t *testing.T) {
	files, paths := wellFormedRepo()
	files[0].Content = strings.Repeat("word ", 120) // ~600 chars

	result := AnalyzePractices(files, paths)

	assert.Equal(t, 92, result.Score)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, models.SeverityInfo, result.Issues[0].Severity)
}

func TestAnalyzePractices_TypeScriptWithoutConfig(t *testing.T) {
	files, paths := wellFormedRepo()
	paths = append(paths, "src/main.ts")

	result := AnalyzePractices(files, paths)

	assert.Equal(t, 88, result.Score)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "TypeScript sources without a tsconfig.json", result.Issues[0].Message)

	paths = append(paths, "tsconfig.json")
	assert.Equal(t, 100, AnalyzePractices(files, paths).Score)
}

func TestAnalyzePractices_EnvWithoutExample(t *testing.T) {
	files, paths := wellFormedRepo()
	files[1].Content += "\nconst url = process.env.DATABASE_URL"

	result := AnalyzePractices(files, paths)

	assert.Equal(t, 88, result.Score)

	paths = append(paths, ".env.example")
	assert.Equal(t, 100, AnalyzePractices(files, paths).Score)
}

func TestAnalyzePractices_UnguardedAsync(t *testing.T) {
	files, paths := wellFormedRepo()
	files[1].Content += "\n" + strings.Repeat("await step()\n", 10)

	result := AnalyzePractices(files, paths)

	// 10 awaits against a single try is under the 30% guard ratio.
	assert.Equal(t, 90, result.Score)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, models.SeverityWarning, result.Issues[0].Severity)
}

func TestAnalyzePractices_GuardedAsyncPasses(t *testing.T) {
	files, paths := wellFormedRepo()
	files[1].Content += "\n" + strings.Repeat("try { await step() } catch (e) { log(e) }\n", 10)

	result := AnalyzePractices(files, paths)

	assert.Equal(t, 100, result.Score)
}

func TestAnalyzePractices_NoErrorHandling(t *testing.T) {
	files := []models.RepoFile{
		{Path: "README.md", Content: strings.Repeat("A detailed project description. ", 40)},
		{Path: "src/app.js", Content: "const add = (a, b) => a + b"},
	}
	_, paths := wellFormedRepo()

	result := AnalyzePractices(files, paths)

	assert.Equal(t, 85, result.Score)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "No error handling detected in analyzed code", result.Issues[0].Message)
}

func TestAnalyzePractices_TestDetectionByContent(t *testing.T) {
	files := []models.RepoFile{
		{Path: "README.md", Content: strings.Repeat("A detailed project description. ", 40)},
		{Path: "src/app.js", Content: "describe('app', () => { it('works', () => {}) })\ntry {} catch (e) { log(e) }"},
	}
	paths := []string{"README.md", ".gitignore", "LICENSE", "package.json", "src/app.js"}

	result := AnalyzePractices(files, paths)

	assert.Equal(t, 100, result.Score)
}

func TestAnalyzePractices_IssueOrdering(t *testing.T) {
	result := AnalyzePractices(nil, nil)

	for i := 0; i+1 < len(result.Issues); i++ {
		assert.LessOrEqual(t, result.Issues[i].Severity.Rank(), result.Issues[i+1].Severity.Rank())
	}
}

func TestAnalyzePractices_Deterministic(t *testing.T) {
	files, paths := wellFormedRepo()
	files[0].Content = "# short"

	first := AnalyzePractices(files, paths)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, AnalyzePractices(files, paths))
	}
}
