package main

import (
	"fmt"

	"github.com/nvandessel/sweep/internal/mcp"
	"github.com/spf13/cobra"
)

func newMCPServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-server",
		Short: "Run as an MCP server over stdio",
		Long: `Start a Model Context Protocol server on stdin/stdout exposing the
sweep_simulate, sweep_experiment, sweep_relation, and sweep_history tools
and the sweep://runs/ resources.

Operational logs go to stderr; tool calls are audited to
<root>/.sweep/audit.jsonl.

Example client configuration:
  {"mcpServers": {"sweep": {"command": "sweep", "args": ["mcp-server", "--root", "/path/to/project"]}}}`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")

			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			server, err := mcp.NewServer(&mcp.Config{
				Name:     "sweep",
				Version:  version,
				Root:     root,
				Settings: cfg,
				Logger:   newLogger(cmd, cfg),
			})
			if err != nil {
				return fmt.Errorf("failed to create MCP server: %w", err)
			}

			return server.Run(cmd.Context())
		},
	}
}
