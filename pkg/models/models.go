// Package models defines the data model shared by the scan pipeline:
// repository metadata, analyzed files, issues, category results, and the
// final analysis artifact handed to external consumers.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Severity represents how serious an issue is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Rank returns the sort rank of a severity. Lower is worse.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

// Issue is a single finding produced by an analyzer. Immutable once created.
type Issue struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	File     string   `json:"file,omitempty"`
}

// SortIssues orders issues in place per the pipeline's ordering invariant:
// severity ascending (critical first), ties broken by case-sensitive
// lexicographic message comparison. The ordering is total, so repeated runs
// over identical input produce byte-identical output.
func SortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		ri, rj := issues[i].Severity.Rank(), issues[j].Severity.Rank()
		if ri != rj {
			return ri < rj
		}
		if issues[i].Message != issues[j].Message {
			return issues[i].Message < issues[j].Message
		}
		return issues[i].File < issues[j].File
	})
}

// RepoFile is a fetched repository file. Content is decoded text.
type RepoFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// TreeEntry is one entry of a repository tree listing.
type TreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

// IsBlob reports whether the entry is a file (git blob) rather than a tree.
func (e TreeEntry) IsBlob() bool { return e.Type == "blob" }

// CategoryResult holds one category's score and ordered findings.
type CategoryResult struct {
	Score  int     `json:"score"`
	Issues []Issue `json:"issues"`
}

// ScoreBreakdown groups the three category results. It is the sole input to
// the score combiner.
type ScoreBreakdown struct {
	Security      CategoryResult `json:"security"`
	CodeQuality   CategoryResult `json:"codeQuality"`
	BestPractices CategoryResult `json:"bestPractices"`
}

// Repository is the metadata resolved for a scanned repository.
type Repository struct {
	Owner         string `json:"owner"`
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Description   string `json:"description,omitempty"`
	Stars         int    `json:"stars"`
	Forks         int    `json:"forks"`
	URL           string `json:"url"`
	DefaultBranch string `json:"default_branch"`
}

// Language is one entry of a repository's language distribution.
type Language struct {
	Name    string `json:"name"`
	Percent int    `json:"percent"`
}

// Languages is a language distribution ordered by descending percentage,
// ties broken alphabetically by name.
type Languages []Language

// SortLanguages orders a distribution in place per the ordering invariant.
func SortLanguages(langs Languages) {
	sort.SliceStable(langs, func(i, j int) bool {
		if langs[i].Percent != langs[j].Percent {
			return langs[i].Percent > langs[j].Percent
		}
		return langs[i].Name < langs[j].Name
	})
}

// MarshalJSON renders the distribution as a JSON object keyed by language
// name, preserving the slice order. Go maps would lose the ordering
// invariant, so the object is built by hand.
func (l Languages) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, lang := range l {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(lang.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		fmt.Fprintf(&buf, ":%d", lang.Percent)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts the object form produced by MarshalJSON and restores
// the canonical ordering.
func (l *Languages) UnmarshalJSON(data []byte) error {
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	out := make(Languages, 0, len(m))
	for name, pct := range m {
		out = append(out, Language{Name: name, Percent: pct})
	}
	SortLanguages(out)
	*l = out
	return nil
}

// AnalysisResult is the terminal artifact of a scan. Per-category issue
// lists are truncated to at most 5 entries for external consumption.
type AnalysisResult struct {
	Repository      Repository     `json:"repository"`
	OverallScore    int            `json:"overallScore"`
	Summary         string         `json:"summary"`
	Security        CategoryResult `json:"security"`
	CodeQuality     CategoryResult `json:"codeQuality"`
	BestPractices   CategoryResult `json:"bestPractices"`
	Recommendations []string       `json:"recommendations"`
	Languages       Languages      `json:"languages"`
	AnalyzedFiles   []string       `json:"analyzed_files,omitempty"`
}
