package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/repograde/repograde/internal/githubapi"
	"github.com/repograde/repograde/internal/narrative"
	"github.com/repograde/repograde/internal/output"
	"github.com/repograde/repograde/internal/progress"
	"github.com/repograde/repograde/internal/scan"
	"github.com/repograde/repograde/pkg/config"
)

func scanCmd() *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "Score a GitHub repository",
		ArgsUsage: "<owner/repo | github.com URL>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "timeout",
				Usage: "Scan deadline in seconds (0 disables)",
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "Parallel file-content fetches",
			},
			&cli.BoolFlag{
				Name:  "no-narrative",
				Usage: "Skip the LLM narrative and use the deterministic fallback",
			},
		},
		Action: runScanCmd,
	}
}

func runScanCmd(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one repository argument, got %d", c.Args().Len())
	}
	owner, name, err := githubapi.ParseIdentifier(c.Args().First())
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("timeout") {
		cfg.Scan.TimeoutSeconds = c.Int("timeout")
	}
	if c.IsSet("concurrency") {
		cfg.Scan.Concurrency = c.Int("concurrency")
	}

	reporter := newScanProgress()
	svc, err := buildScanService(cfg, c.Bool("no-narrative"), scan.WithProgress(reporter.update))
	if err != nil {
		reporter.finish(err)
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	result, err := svc.Scan(ctx, owner, name)
	reporter.finish(err)
	if err != nil {
		return err
	}

	formatter, err := output.NewFormatter(
		output.ParseFormat(cfg.Output.Format), c.String("output"), cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(output.NewScanReport(result))
}

// buildScanService wires the GitHub client, optional narrative generator,
// and scan options from config.
func buildScanService(cfg *config.Config, noNarrative bool, extra ...scan.Option) (*scan.Service, error) {
	var source scan.RepoSource
	if cfg.GitHub.BaseURL != "" {
		client, err := githubapi.NewWithBaseURL(cfg.GitHub.Token, cfg.GitHub.BaseURL)
		if err != nil {
			return nil, err
		}
		source = client
	} else {
		source = githubapi.New(cfg.GitHub.Token)
	}

	opts := []scan.Option{
		scan.WithTimeout(cfg.Timeout()),
		scan.WithConcurrency(cfg.Scan.Concurrency),
	}
	opts = append(opts, extra...)

	if !noNarrative && cfg.LLM.APIKey != "" {
		gen, err := narrative.NewOpenAIGenerator(narrative.OpenAIConfig{
			APIKey:    cfg.LLM.APIKey,
			BaseURL:   cfg.LLM.BaseURL,
			Model:     cfg.LLM.Model,
			MaxTokens: cfg.LLM.MaxTokens,
		})
		if err != nil {
			return nil, err
		}
		opts = append(opts, scan.WithGenerator(gen))
	}

	return scan.New(source, opts...), nil
}

// scanProgress drives the stderr progress display: a spinner while repository
// metadata and the tree listing are fetched, then a bounded bar once file
// contents start streaming.
type scanProgress struct {
	mu      sync.Mutex
	spinner *progress.Tracker
	tracker *progress.Tracker
	stop    chan struct{}
	stopped bool
}

func newScanProgress() *scanProgress {
	p := &scanProgress{
		spinner: progress.NewSpinner("Fetching repository metadata..."),
		stop:    make(chan struct{}),
	}
	go func() {
		ticker := time.NewTicker(120 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-p.stop:
				return
			case <-ticker.C:
				p.mu.Lock()
				if !p.stopped {
					p.spinner.Tick()
				}
				p.mu.Unlock()
			}
		}
	}()
	return p
}

// update is the scan service's progress callback. The first call marks the
// end of the metadata phase and swaps the spinner for a bounded bar.
func (p *scanProgress) update(done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tracker == nil {
		p.stopSpinner(nil)
		p.tracker = progress.NewTracker("Fetching files...", total)
	}
	p.tracker.Set(done)
	if done >= total {
		p.tracker.FinishSuccess()
	}
}

// finish clears the spinner when the scan ended before any file fetch, for
// example on a missing repository.
func (p *scanProgress) finish(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tracker != nil {
		return
	}
	p.stopSpinner(err)
}

// stopSpinner requires p.mu held.
func (p *scanProgress) stopSpinner(err error) {
	if p.stopped {
		return
	}
	p.stopped = true
	close(p.stop)
	if err != nil {
		p.spinner.FinishError(err)
	} else {
		p.spinner.FinishSuccess()
	}
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	return ctx, cancel
}
