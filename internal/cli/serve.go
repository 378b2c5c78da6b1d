package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/cado/internal/logging"
	httpAdapter "github.com/aretw0/cado/pkg/adapters/http"
	"github.com/aretw0/cado/pkg/adapters/mcp"
	"github.com/aretw0/cado/pkg/session"
)

// shutdownTimeout gives outstanding requests a deadline for completion.
const shutdownTimeout = 5 * time.Second

// Serve runs the HTTP server until ctx is cancelled.
func Serve(ctx context.Context, opts Options, port string) error {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	logger := logging.NewJSON(os.Stderr, level)

	streams := httpAdapter.NewStreamManager(logger)
	app, err := Setup(opts, session.WithObserver(streams.Observe), session.WithLogger(logger))
	if err != nil {
		return err
	}
	defer app.Close()

	handler := httpAdapter.NewHandler(app.Manager,
		httpAdapter.WithLogger(logger),
		httpAdapter.WithStreams(streams),
		httpAdapter.WithGatherer(app.Registry),
	)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting cado server", "addr", srv.Addr, "dir", opts.Dir)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("Start shutdown")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			return srv.Close()
		}
		logger.Info("cado server stopped gracefully")
		return nil
	}
}

// ServeMCP runs the MCP server on stdio or SSE until ctx is cancelled.
func ServeMCP(ctx context.Context, opts Options, transport string, port int) error {
	app, err := Setup(opts)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := mcp.NewServer(app.Manager, mcp.WithLogger(app.Logger))

	switch transport {
	case "stdio":
		// Logs go to stderr; stdout carries JSON-RPC.
		app.Logger.Info("Starting cado MCP Server (Stdio)")
		return srv.ServeStdio()
	case "sse":
		app.Logger.Info("Starting cado MCP Server (SSE)", "port", port)
		if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	default:
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
	}
}
