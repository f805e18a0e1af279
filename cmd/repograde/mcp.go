package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/repograde/repograde/internal/mcpserver"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that lets AI assistants score
GitHub repositories.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "repograde": {
        "command": "repograde",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - scan_repository    Score a repository for security, quality, and practices`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "manifest",
				Usage: "Print the MCP server manifest (server.json) and exit",
			},
		},
		Action: runMCPCmd,
	}
}

func runMCPCmd(c *cli.Context) error {
	if c.Bool("manifest") {
		data, err := mcpserver.GenerateManifest(version)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	svc, err := buildScanService(cfg, false)
	if err != nil {
		return err
	}

	return mcpserver.NewServer(version, svc).Run(c.Context)
}
