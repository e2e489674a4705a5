// Package server exposes the compose-box operations as MCP tools.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/mj1618/composebox/internal/tracker"
	"github.com/mj1618/composebox/internal/transform"
	"github.com/mj1618/composebox/internal/version"
)

// Transports accepted by Serve.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "streamable-http"
)

// Config holds MCP server configuration.
type Config struct {
	Transport string
	// Addr is the listen address for streamable-http.
	Addr string
	// MetricsAddr serves /metrics on its own listener. With streamable-http
	// and an empty MetricsAddr, /metrics shares Addr.
	MetricsAddr string
	Metrics     http.Handler
}

// Server wraps the MCP server with the tracker service and an optional text
// transformer.
type Server struct {
	svc         *tracker.Service
	transformer transform.Transformer
	mcp         *mcpserver.MCPServer
}

// New creates an MCP server with all composebox tools registered. tr may be
// nil, in which case the transform tool reports that no provider is
// configured.
func New(svc *tracker.Service, tr transform.Transformer) *Server {
	s := &Server{svc: svc, transformer: tr}
	s.mcp = mcpserver.NewMCPServer(
		"composebox",
		version.Version,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithRecovery(),
	)
	s.registerTools()
	return s
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcpserver.MCPServer {
	return s.mcp
}

// Serve runs the server until ctx is cancelled or a transport fails.
func (s *Server) Serve(ctx context.Context, cfg Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	switch cfg.Transport {
	case "", TransportStdio:
		stdio := mcpserver.NewStdioServer(s.mcp)
		g.Go(func() error {
			// Closing stdin ends the session and stops the metrics listener.
			defer cancel()
			return stdio.Listen(gctx, os.Stdin, os.Stdout)
		})
		if cfg.MetricsAddr != "" && cfg.Metrics != nil {
			mux := http.NewServeMux()
			mux.Handle("/metrics", cfg.Metrics)
			serveHTTP(gctx, g, cfg.MetricsAddr, mux)
		}
	case TransportHTTP:
		mux := http.NewServeMux()
		mux.Handle("/mcp", mcpserver.NewStreamableHTTPServer(s.mcp))
		if cfg.Metrics != nil {
			if cfg.MetricsAddr == "" || cfg.MetricsAddr == cfg.Addr {
				mux.Handle("/metrics", cfg.Metrics)
			} else {
				mm := http.NewServeMux()
				mm.Handle("/metrics", cfg.Metrics)
				serveHTTP(gctx, g, cfg.MetricsAddr, mm)
			}
		}
		serveHTTP(gctx, g, cfg.Addr, mux)
	default:
		return fmt.Errorf("unsupported transport: %s (use %s or %s)", cfg.Transport, TransportStdio, TransportHTTP)
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// serveHTTP runs an http.Server in g and shuts it down when ctx ends.
func serveHTTP(ctx context.Context, g *errgroup.Group, addr string, h http.Handler) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		slog.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http %s: %w", addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}
