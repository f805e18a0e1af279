// Package githubapi fetches repository metadata, tree listings, file content,
// and language statistics from the GitHub REST API.
package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v69/github"
	"github.com/repograde/repograde/pkg/models"
)

var (
	// ErrNotFound indicates the repository does not exist or is not visible
	// with the supplied credentials.
	ErrNotFound = errors.New("repository not found")
	// ErrRateLimited indicates the GitHub API rate limit was hit. The message
	// is shown verbatim by the CLI, so it carries the remedy.
	ErrRateLimited = errors.New("github rate limit exceeded; retry after a cooldown or set GITHUB_TOKEN for a higher limit")
)

// Client wraps the GitHub REST client. An empty token is valid: public
// repositories remain reachable under the tighter anonymous rate limit.
type Client struct {
	gh *github.Client
}

// New creates a client, attaching the token to outbound requests when set.
func New(token string) *Client {
	gh := github.NewClient(nil)
	if token != "" {
		gh = gh.WithAuthToken(token)
	}
	return &Client{gh: gh}
}

// NewWithBaseURL creates a client against a custom API endpoint. Used by
// tests and GitHub Enterprise setups.
func NewWithBaseURL(token, baseURL string) (*Client, error) {
	c := New(token)
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	c.gh.BaseURL = u
	return c, nil
}

// Repository resolves repository metadata. A 404 maps to ErrNotFound.
func (c *Client) Repository(ctx context.Context, owner, name string) (*models.Repository, error) {
	repo, _, err := c.gh.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, wrapErr(err, fmt.Sprintf("fetch repository %s/%s", owner, name))
	}
	return &models.Repository{
		Owner:         owner,
		Name:          repo.GetName(),
		FullName:      repo.GetFullName(),
		Description:   repo.GetDescription(),
		Stars:         repo.GetStargazersCount(),
		Forks:         repo.GetForksCount(),
		URL:           repo.GetHTMLURL(),
		DefaultBranch: repo.GetDefaultBranch(),
	}, nil
}

// Tree fetches the recursive tree listing for a branch.
func (c *Client) Tree(ctx context.Context, owner, name, branch string) ([]models.TreeEntry, error) {
	tree, _, err := c.gh.Git.GetTree(ctx, owner, name, branch, true)
	if err != nil {
		return nil, wrapErr(err, fmt.Sprintf("fetch tree %s/%s@%s", owner, name, branch))
	}
	entries := make([]models.TreeEntry, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		entries = append(entries, models.TreeEntry{
			Path: e.GetPath(),
			Type: e.GetType(),
		})
	}
	return entries, nil
}

// FileContent fetches and decodes one file's text content. Failures yield an
// empty string and the error; callers degrade rather than abort.
func (c *Client) FileContent(ctx context.Context, owner, name, path string) (string, error) {
	file, _, _, err := c.gh.Repositories.GetContents(ctx, owner, name, path, nil)
	if err != nil {
		return "", wrapErr(err, fmt.Sprintf("fetch content %s", path))
	}
	if file == nil {
		return "", fmt.Errorf("fetch content %s: not a file", path)
	}
	content, err := file.GetContent()
	if err != nil {
		return "", fmt.Errorf("decode content %s: %w", path, err)
	}
	return content, nil
}

// Languages fetches the language-name to byte-count mapping.
func (c *Client) Languages(ctx context.Context, owner, name string) (map[string]int, error) {
	langs, _, err := c.gh.Repositories.ListLanguages(ctx, owner, name)
	if err != nil {
		return nil, wrapErr(err, fmt.Sprintf("fetch languages %s/%s", owner, name))
	}
	return langs, nil
}

// wrapErr maps go-github errors onto the package's error taxonomy.
func wrapErr(err error, op string) error {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return fmt.Errorf("%s: %w", op, ErrRateLimited)
	}
	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		case http.StatusForbidden, http.StatusTooManyRequests:
			if strings.Contains(strings.ToLower(respErr.Message), "rate limit") {
				return fmt.Errorf("%s: %w", op, ErrRateLimited)
			}
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
