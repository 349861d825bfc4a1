package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/kailas-cloud/docintel/internal/metrics"
	mcpTransport "github.com/kailas-cloud/docintel/internal/transport/mcp"
	"github.com/kailas-cloud/docintel/internal/version"
)

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:   "mcp",
		Usage:  "Serve the search tool over MCP stdio",
		Action: mcpAction,
	}
}

// mcpAction keeps stdout for JSON-RPC; logs go to stderr.
func mcpAction(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	// Graceful shutdown on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := buildDeps(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer d.Close()

	server := mcpTransport.NewServer(d.engine, version.Version, logger)
	return mcpTransport.Run(ctx, server, logger) //nolint:wrapcheck // already wrapped
}
