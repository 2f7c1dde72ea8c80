package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/historyviewer/internal/cli"
	"github.com/aretw0/historyviewer/internal/logging"
	"github.com/aretw0/historyviewer/internal/presentation/tui"
	httpAdapter "github.com/aretw0/historyviewer/pkg/adapters/http"
	"github.com/aretw0/historyviewer/pkg/adapters/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the history viewer HTTP API: compare selections per session,
version lists, version details and diffs. Optionally serves the MCP SSE
transport on a second address.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.Addr, _ = cmd.Flags().GetString("addr")
		}
		mcpAddr, _ := cmd.Flags().GetString("mcp-addr")
		debug, _ := cmd.Flags().GetBool("debug")

		logger, err := cli.CreateLogger(cfg.LogLevel, debug)
		if err != nil {
			return err
		}
		level, _ := logging.ParseLevel(cfg.LogLevel)

		if cfg.VersionsDir == "" {
			logger.Warn("No versions directory configured; version endpoints will find nothing")
		}

		svc, err := cli.Build(cfg, logger, debug)
		if err != nil {
			return err
		}
		defer svc.Close()

		handler := httpAdapter.NewHandler(svc.Viewer,
			httpAdapter.WithLogger(logging.NewJSON(os.Stderr, level)),
			httpAdapter.WithMetricsHandler(promhttp.HandlerFor(svc.Registry, promhttp.HandlerOpts{})),
		)
		srv := &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		if tui.IsTerminal(os.Stdout) {
			tui.PrintBanner(os.Stdout)
			cli.PrintSystemMessage("Listening on %s", cfg.Addr)
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		g, ctx := errgroup.WithContext(sigCtx)
		g.Go(func() error {
			logger.Info("Starting History Viewer Server", "addr", srv.Addr, "store", cfg.Store.Backend, "versions", cfg.VersionsDir)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		})
		if mcpAddr != "" {
			g.Go(func() error {
				return mcp.NewServer(svc.Viewer, logger).ServeSSE(ctx, mcpAddr, "http://localhost"+mcpAddr)
			})
		}
		g.Go(func() error {
			<-ctx.Done()
			logger.Info("Start shutdown", "signal", sigCtx.Signal())

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Graceful shutdown did not complete", "err", err)
				return srv.Close()
			}
			return nil
		})

		if err := g.Wait(); err != nil {
			return err
		}
		logger.Info("History Viewer Server stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	serveCmd.Flags().String("dir", "", "Directory of versioned documents (overrides config)")
	serveCmd.Flags().String("mcp-addr", "", "Also serve MCP over SSE on this address (e.g. :8081)")
}
