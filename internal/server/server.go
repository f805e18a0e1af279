// Package server exposes scans over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/repograde/repograde/internal/githubapi"
	"github.com/repograde/repograde/pkg/models"
)

// Scanner runs a full repository scan. Implemented by scan.Service.
type Scanner interface {
	Scan(ctx context.Context, owner, name string) (*models.AnalysisResult, error)
}

// Server wraps a gin engine around a scanner.
type Server struct {
	engine  *gin.Engine
	scanner Scanner
}

// New builds a server with routes registered.
func New(scanner Scanner) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{engine: engine, scanner: scanner}
	SetupRoutes(engine, scanner)
	return s
}

// SetupRoutes registers all HTTP routes on the given engine.
func SetupRoutes(router *gin.Engine, scanner Scanner) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := NewScanHandler(scanner)
	v1 := router.Group("/api/v1")
	{
		v1.GET("/scan/:owner/:repo", h.Scan)
	}
}

// Handler returns the underlying http.Handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves HTTP on addr until the listener fails.
func (s *Server) Run(addr string) error {
	slog.Info("starting server", "addr", addr)
	return s.engine.Run(addr)
}

// ScanHandler handles scan requests.
type ScanHandler struct {
	scanner Scanner
}

// NewScanHandler creates a scan handler.
func NewScanHandler(scanner Scanner) *ScanHandler {
	return &ScanHandler{scanner: scanner}
}

// Scan runs a scan for the owner/repo in the path and returns the full
// analysis result as JSON.
func (h *ScanHandler) Scan(c *gin.Context) {
	ctx := c.Request.Context()
	owner := c.Param("owner")
	repo := c.Param("repo")

	result, err := h.scanner.Scan(ctx, owner, repo)
	if err != nil {
		status := upstreamStatus(err)
		slog.WarnContext(ctx, "scan failed",
			"owner", owner, "repo", repo, "status", status, "error", err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	slog.InfoContext(ctx, "scan completed",
		"repo", result.Repository.FullName, "score", result.OverallScore)
	c.JSON(http.StatusOK, result)
}

// upstreamStatus maps source-hosting failures to response codes. Anything
// unrecognized is a bad gateway: the failure is upstream, not ours.
func upstreamStatus(err error) int {
	switch {
	case errors.Is(err, githubapi.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, githubapi.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
