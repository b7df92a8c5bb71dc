package main

import (
	"github.com/spf13/cobra"

	"github.com/1broseidon/bsptile/internal/mcp"
)

func newMCPCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Model Context Protocol server",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Long:  "Start the MCP server on stdio. Designed to be invoked by MCP clients; every tool is forwarded to the running daemon over its IPC socket.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the protocol; logs go to stderr.
			g.logger.Debug("mcp: serving on stdio")
			return mcp.NewServer(g.client(), g.logger).Run(cmd.Context())
		},
	})
	return cmd
}
