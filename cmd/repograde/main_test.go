package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/repograde/repograde/pkg/config"
)

// runWithFlags executes fn inside a minimal app so flag parsing matches the
// real command line.
func runWithFlags(t *testing.T, flags []cli.Flag, args []string, fn func(c *cli.Context)) {
	t.Helper()
	app := &cli.App{
		Flags: flags,
		Action: func(c *cli.Context) error {
			fn(c)
			return nil
		},
	}
	if err := app.Run(append([]string{"repograde"}, args...)); err != nil {
		t.Fatalf("app.Run() error: %v", err)
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}},
		&cli.StringFlag{Name: "token"},
		&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "text"},
		&cli.BoolFlag{Name: "no-color"},
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	runWithFlags(t, globalFlags(), nil, func(c *cli.Context) {
		cfg, err := loadConfig(c)
		if err != nil {
			t.Fatalf("loadConfig() error: %v", err)
		}
		if cfg.Output.Format != "text" {
			t.Errorf("format = %q, want text", cfg.Output.Format)
		}
	})
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	runWithFlags(t, globalFlags(), []string{"--token", "tok-abc", "--format", "json", "--no-color"}, func(c *cli.Context) {
		cfg, err := loadConfig(c)
		if err != nil {
			t.Fatalf("loadConfig() error: %v", err)
		}
		if cfg.GitHub.Token != "tok-abc" {
			t.Errorf("token = %q, want tok-abc", cfg.GitHub.Token)
		}
		if cfg.Output.Format != "json" {
			t.Errorf("format = %q, want json", cfg.Output.Format)
		}
		if cfg.Output.Color {
			t.Error("no-color should disable color")
		}
	})
}

func TestLoadConfig_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repograde.toml")
	content := "[scan]\ntimeout_seconds = 7\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	runWithFlags(t, globalFlags(), []string{"--config", path}, func(c *cli.Context) {
		cfg, err := loadConfig(c)
		if err != nil {
			t.Fatalf("loadConfig() error: %v", err)
		}
		if cfg.Scan.TimeoutSeconds != 7 {
			t.Errorf("timeout = %d, want 7", cfg.Scan.TimeoutSeconds)
		}
	})
}

func TestLoadConfig_MissingFileErrors(t *testing.T) {
	runWithFlags(t, globalFlags(), []string{"--config", "/nonexistent/repograde.toml"}, func(c *cli.Context) {
		if _, err := loadConfig(c); err == nil {
			t.Error("loadConfig() should fail for a missing --config file")
		}
	})
}

func TestBuildScanService(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.GitHub.Token = ""
	cfg.LLM.APIKey = ""

	svc, err := buildScanService(cfg, false)
	if err != nil {
		t.Fatalf("buildScanService() error: %v", err)
	}
	if svc == nil {
		t.Fatal("buildScanService() returned nil service")
	}
}

func TestBuildScanService_BadBaseURL(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.GitHub.BaseURL = "://bad"

	if _, err := buildScanService(cfg, false); err == nil {
		t.Error("buildScanService() should fail for an invalid base URL")
	}
}

func TestScanProgress_SpinnerThenTracker(t *testing.T) {
	p := newScanProgress()

	p.update(1, 2)
	if p.tracker == nil {
		t.Fatal("first progress update should swap the spinner for a tracker")
	}
	if !p.stopped {
		t.Error("spinner should stop once file fetching starts")
	}

	p.update(2, 2)
	p.finish(nil)
}

func TestScanProgress_FinishBeforeFetch(t *testing.T) {
	p := newScanProgress()

	p.finish(errors.New("repository not found"))
	if !p.stopped {
		t.Error("finish should stop the spinner when no fetch ever started")
	}

	// A second finish must be a no-op.
	p.finish(nil)
}

func TestCommandsRegistered(t *testing.T) {
	for _, cmd := range []*cli.Command{scanCmd(), serveCmd(), mcpCmd()} {
		if cmd.Name == "" {
			t.Error("command has no name")
		}
		if cmd.Action == nil {
			t.Errorf("command %s has no action", cmd.Name)
		}
	}
}
