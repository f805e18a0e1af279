package main

import (
	"github.com/urfave/cli/v2"

	"github.com/repograde/repograde/internal/server"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API server",
		Description: `Serves scans over HTTP:

  GET /health                      liveness check
  GET /api/v1/scan/:owner/:repo    run a scan and return the result as JSON

Upstream failures map to status codes: 404 when the repository does not
exist, 429 when GitHub rate-limits us, 504 on scan deadline, 502 otherwise.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Usage:   "Listen address",
				EnvVars: []string{"REPOGRADE_ADDR"},
			},
		},
		Action: runServeCmd,
	}
}

func runServeCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("addr") {
		cfg.Server.Addr = c.String("addr")
	}

	svc, err := buildScanService(cfg, false)
	if err != nil {
		return err
	}

	return server.New(svc).Run(cfg.Server.Addr)
}
