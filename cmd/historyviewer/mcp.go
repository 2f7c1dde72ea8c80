package main

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/historyviewer/internal/cli"
	"github.com/aretw0/historyviewer/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the history viewer as MCP tools, so agents can list versions,
diff records and drive compare selections.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		debug, _ := cmd.Flags().GetBool("debug")

		// Logs go to stderr so they never corrupt JSON-RPC on stdout.
		log.SetOutput(cmd.ErrOrStderr())
		logger, err := cli.CreateLogger(cfg.LogLevel, debug)
		if err != nil {
			return err
		}

		svc, err := cli.Build(cfg, logger, debug)
		if err != nil {
			return err
		}
		defer svc.Close()

		srv := mcp.NewServer(svc.Viewer, logger)

		switch transport {
		case "stdio":
			logger.Info("Starting History Viewer MCP Server (Stdio)")
			return srv.ServeStdio()
		case "sse":
			ctx := cli.NewSignalContext(context.Background())
			defer ctx.Cancel()

			addr := fmt.Sprintf(":%d", port)
			if err := srv.ServeSSE(ctx, addr, fmt.Sprintf("http://localhost:%d", port)); err != nil {
				return err
			}
			logger.Info("MCP Server stopped gracefully", "signal", ctx.Signal())
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8081, "Port to listen on (only for SSE)")
	mcpCmd.Flags().String("dir", "", "Directory of versioned documents (overrides config)")
}
