package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mj1618/composebox/internal/observe"
	"github.com/mj1618/composebox/internal/server"
	"github.com/mj1618/composebox/internal/transform"
	"github.com/mj1618/composebox/internal/version"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server exposing composebox tools",
	Long: `Start a Model Context Protocol (MCP) server that exposes scan, locate,
position, capture, transform and placement as tools.

Supported transports:
  stdio             Standard I/O (default)
  streamable-http   Streamable HTTP transport on /mcp, with Prometheus
                    metrics on /metrics

Examples:
  composebox serve
  composebox serve --transport streamable-http --port 8080
  composebox serve --metrics-addr :9464`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", server.TransportStdio, "Transport: stdio, streamable-http")
	serveCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
	serveCmd.Flags().String("metrics-addr", "", "Serve /metrics on this address (default: the MCP port for streamable-http, off for stdio)")
}

func runServe(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

	ctx := cmd.Context()
	tel, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceVersion: version.Version})
	if err != nil {
		return fmt.Errorf("failed to initialise telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown", "err", err)
		}
	}()

	svc, done, err := newService()
	if err != nil {
		return err
	}
	defer done()

	var tr transform.Transformer
	if t, err := newTransformer(); err != nil {
		slog.Warn("transform tool disabled", "err", err)
	} else {
		tr = t
	}

	srv := server.New(svc, tr)
	slog.Info("composebox MCP server starting", "transport", transport, "apps", appConfig.AppNames())
	return srv.Serve(ctx, server.Config{
		Transport:   transport,
		Addr:        fmt.Sprintf(":%d", port),
		MetricsAddr: metricsAddr,
		Metrics:     tel.Handler(),
	})
}
