// Package scan orchestrates the scoring pipeline: fetch, select, analyze,
// combine, and narrate. One Scan call is one logical request-response flow
// with no state shared across concurrent scans.
package scan

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/repograde/repograde/internal/analyzer"
	"github.com/repograde/repograde/internal/narrative"
	"github.com/repograde/repograde/internal/scoring"
	"github.com/repograde/repograde/internal/selector"
	"github.com/repograde/repograde/pkg/models"
)

// RepoSource is the inbound port to the source-hosting API. Implemented by
// githubapi.Client; tests inject canned sources.
type RepoSource interface {
	Repository(ctx context.Context, owner, name string) (*models.Repository, error)
	Tree(ctx context.Context, owner, name, branch string) ([]models.TreeEntry, error)
	FileContent(ctx context.Context, owner, name, path string) (string, error)
	Languages(ctx context.Context, owner, name string) (map[string]int, error)
}

// maxDisplayIssues caps per-category issues in the external artifact. The
// lists are already severity-sorted, so truncation keeps the worst findings.
const maxDisplayIssues = 5

const defaultFetchConcurrency = 8

// Service runs scans against an injected source and text generator.
type Service struct {
	source      RepoSource
	generator   narrative.TextGenerator
	timeout     time.Duration
	concurrency int
	onProgress  func(done, total int)
}

// Option configures a Service.
type Option func(*Service)

// WithGenerator sets the narrative text generator. Without one, every scan
// uses the deterministic fallback narrative.
func WithGenerator(gen narrative.TextGenerator) Option {
	return func(s *Service) { s.generator = gen }
}

// WithTimeout bounds a whole scan. Zero disables the deadline.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithConcurrency sets how many file-content fetches run in parallel.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithProgress registers a callback invoked after each content fetch.
func WithProgress(fn func(done, total int)) Option {
	return func(s *Service) { s.onProgress = fn }
}

// New creates a scan service.
func New(source RepoSource, opts ...Option) *Service {
	s := &Service{
		source:      source,
		concurrency: defaultFetchConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan runs the full pipeline for one repository and packages the result.
// Metadata and tree failures are fatal; individual content fetch failures
// and narrative failures degrade without aborting.
func (s *Service) Scan(ctx context.Context, owner, name string) (*models.AnalysisResult, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	repo, err := s.source.Repository(ctx, owner, name)
	if err != nil {
		return nil, err
	}

	entries, err := s.fetchTree(ctx, owner, name, repo.DefaultBranch)
	if err != nil {
		return nil, err
	}

	paths := selector.Select(entries)
	files := s.fetchContents(ctx, owner, name, paths)

	allPaths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsBlob() {
			allPaths = append(allPaths, e.Path)
		}
	}

	breakdown := models.ScoreBreakdown{
		Security:      analyzer.AnalyzeSecurity(files),
		CodeQuality:   analyzer.AnalyzeQuality(files),
		BestPractices: analyzer.AnalyzePractices(files, allPaths),
	}
	overall := scoring.Combine(breakdown)

	languages := s.fetchLanguages(ctx, owner, name)

	n := narrative.Generate(ctx, s.generator, narrative.Input{
		Repo:      *repo,
		Paths:     paths,
		Languages: languages,
		Breakdown: breakdown,
		Overall:   overall,
	})

	return &models.AnalysisResult{
		Repository:      *repo,
		OverallScore:    overall,
		Summary:         n.Summary,
		Security:        truncateIssues(breakdown.Security),
		CodeQuality:     truncateIssues(breakdown.CodeQuality),
		BestPractices:   truncateIssues(breakdown.BestPractices),
		Recommendations: n.Recommendations,
		Languages:       languages,
		AnalyzedFiles:   paths,
	}, nil
}

// fetchTree tries the declared default branch, then retries once against the
// conventional alternative before declaring the repository unreachable.
func (s *Service) fetchTree(ctx context.Context, owner, name, branch string) ([]models.TreeEntry, error) {
	if branch == "" {
		branch = "main"
	}
	entries, err := s.source.Tree(ctx, owner, name, branch)
	if err == nil {
		return entries, nil
	}

	secondary := "master"
	if branch == "master" {
		secondary = "main"
	}
	entries, retryErr := s.source.Tree(ctx, owner, name, secondary)
	if retryErr != nil {
		// Report the original failure; the retry was best-effort.
		return nil, err
	}
	return entries, nil
}

// fetchContents pulls file content concurrently and reassembles results in
// selector order. A failed fetch degrades that file to absent.
func (s *Service) fetchContents(ctx context.Context, owner, name string, paths []string) []models.RepoFile {
	contents := make([]string, len(paths))
	var done atomic.Int64

	p := pool.New().WithMaxGoroutines(s.concurrency)
	for i, path := range paths {
		p.Go(func() {
			content, err := s.source.FileContent(ctx, owner, name, path)
			if err == nil {
				contents[i] = content
			}
			if s.onProgress != nil {
				s.onProgress(int(done.Add(1)), len(paths))
			}
		})
	}
	p.Wait()

	files := make([]models.RepoFile, 0, len(paths))
	for i, path := range paths {
		if contents[i] == "" {
			continue
		}
		files = append(files, models.RepoFile{Path: path, Content: contents[i]})
	}
	return files
}

// fetchLanguages converts byte counts to integer percentages in canonical
// order. A failed fetch degrades to an empty distribution.
func (s *Service) fetchLanguages(ctx context.Context, owner, name string) models.Languages {
	bytes, err := s.source.Languages(ctx, owner, name)
	if err != nil || len(bytes) == 0 {
		return nil
	}

	total := 0
	for _, b := range bytes {
		total += b
	}
	if total == 0 {
		return nil
	}

	langs := make(models.Languages, 0, len(bytes))
	for lang, b := range bytes {
		langs = append(langs, models.Language{
			Name:    lang,
			Percent: int(math.Round(float64(b) / float64(total) * 100)),
		})
	}
	models.SortLanguages(langs)
	return langs
}

// truncateIssues caps a category's issue list for external consumption.
func truncateIssues(c models.CategoryResult) models.CategoryResult {
	if len(c.Issues) > maxDisplayIssues {
		c.Issues = c.Issues[:maxDisplayIssues]
	}
	return c
}
