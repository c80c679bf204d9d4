package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	longrunmcp "github.com/gorewood/longrun/internal/mcp"
)

// newServeCmd creates the serve command for running as an MCP server.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run as MCP server (stdio transport)",
		Long: `Run longrun as a Model Context Protocol (MCP) server over stdio.

This exposes harness operations as MCP tools that any MCP-capable agent
environment can use. The served project is --project (default: the
current directory).

Configure in your agent's MCP settings:
  {
    "mcpServers": {
      "longrun": {
        "command": "longrun",
        "args": ["serve", "-C", "/path/to/project"]
      }
    }
  }

Available tools: init_harness, status, add_feature, mark_passing, log_session`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := loadCurrentProject(cmd)
			if err != nil {
				newPrinter(cmd).Error(err)
				return err
			}
			server := longrunmcp.NewServer(buildVersion(), &longrunmcp.Deps{
				Layout:        env.layout,
				Resolver:      env.resolver,
				CommitMessage: env.config.CommitMessage,
				Logger:        env.logger,
			})
			env.logger.Debug("mcp server starting", "project", env.root)
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
