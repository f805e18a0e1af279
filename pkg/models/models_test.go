package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityRank(t *testing.T) {
	if SeverityCritical.Rank() >= SeverityWarning.Rank() {
		t.Error("critical should rank before warning")
	}
	if SeverityWarning.Rank() >= SeverityInfo.Rank() {
		t.Error("warning should rank before info")
	}
}

func TestSortIssues(t *testing.T) {
	issues := []Issue{
		{Severity: SeverityInfo, Message: "b"},
		{Severity: SeverityCritical, Message: "z"},
		{Severity: SeverityWarning, Message: "a"},
		{Severity: SeverityCritical, Message: "a"},
		{Severity: SeverityInfo, Message: "a"},
	}

	SortIssues(issues)

	want := []Issue{
		{Severity: SeverityCritical, Message: "a"},
		{Severity: SeverityCritical, Message: "z"},
		{Severity: SeverityWarning, Message: "a"},
		{Severity: SeverityInfo, Message: "a"},
		{Severity: SeverityInfo, Message: "b"},
	}
	assert.Equal(t, want, issues)
}

func TestSortIssues_Deterministic(t *testing.T) {
	build := func() []Issue {
		return []Issue{
			{Severity: SeverityWarning, Message: "same", File: "b.go"},
			{Severity: SeverityWarning, Message: "same", File: "a.go"},
			{Severity: SeverityInfo, Message: "x"},
		}
	}

	a, b := build(), build()
	SortIssues(a)
	SortIssues(b)
	assert.Equal(t, a, b)
	assert.Equal(t, "a.go", a[0].File)
}

func TestSortLanguages(t *testing.T) {
	langs := Languages{
		{Name: "CSS", Percent: 25},
		{Name: "TypeScript", Percent: 75},
	}
	SortLanguages(langs)
	assert.Equal(t, "TypeScript", langs[0].Name)

	// Ties break alphabetically.
	langs = Languages{
		{Name: "Ruby", Percent: 50},
		{Name: "Go", Percent: 50},
	}
	SortLanguages(langs)
	assert.Equal(t, "Go", langs[0].Name)
}

func TestLanguagesMarshalJSON_PreservesOrder(t *testing.T) {
	langs := Languages{
		{Name: "TypeScript", Percent: 75},
		{Name: "CSS", Percent: 25},
	}

	data, err := json.Marshal(langs)
	require.NoError(t, err)
	assert.Equal(t, `{"TypeScript":75,"CSS":25}`, string(data))
}

func TestLanguagesUnmarshalJSON(t *testing.T) {
	var langs Languages
	require.NoError(t, json.Unmarshal([]byte(`{"CSS":25,"TypeScript":75}`), &langs))
	require.Len(t, langs, 2)
	assert.Equal(t, Language{Name: "TypeScript", Percent: 75}, langs[0])
	assert.Equal(t, Language{Name: "CSS", Percent: 25}, langs[1])
}

func TestTreeEntryIsBlob(t *testing.T) {
	assert.True(t, TreeEntry{Path: "a.go", Type: "blob"}.IsBlob())
	assert.False(t, TreeEntry{Path: "src", Type: "tree"}.IsBlob())
}
