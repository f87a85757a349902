package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/1broseidon/wlshell/internal/logging"
	"github.com/1broseidon/wlshell/internal/mcp"
)

func newMCPCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Model Context Protocol server",
	}
	cmd.AddCommand(newMCPServeCmd(g))
	return cmd
}

func newMCPServeCmd(g *globalFlags) *cobra.Command {
	var logLevel string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (stdio transport)",
		Long: `Start the MCP server on stdio. Tool calls are forwarded to the running
daemon over its socket, so start 'wlshell run' first.

Example:
  claude mcp add wlshell -- wlshell mcp serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// stdout carries the protocol; logs go to stderr.
			logger, err := logging.New(logging.Options{
				Level:  logLevel,
				Format: "logfmt",
				Output: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}

			client := g.client()
			if err := client.Ping(); err != nil {
				logger.Warn("daemon not reachable yet", "error", err)
			}

			server := mcp.NewServer(client, logger)
			if err := server.Run(cmd.Context()); err != nil && cmd.Context().Err() == nil {
				return fmt.Errorf("MCP server error: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "log level for stderr diagnostics")
	return cmd
}
