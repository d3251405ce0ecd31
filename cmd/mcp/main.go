package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/homelink/pkg/app"
	homelinkmcp "github.com/urmzd/homelink/pkg/mcp"
)

func main() {
	opts, err := app.ParseOptions("homelink-mcp", os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse flags")
	}

	// Logging must go to stderr, stdout is the MCP transport
	logCloser, err := app.SetupLogging(opts.LogLevel, opts.LogFile, os.Stderr)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure logging")
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start")
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close")
		}
	}()

	go a.Run(ctx)

	mcpServer := homelinkmcp.NewServer(a.Dispatcher, a.Executor, a.Store, a.Notifier)

	log.Info().Msg("Starting MCP server on stdio")

	if err := mcpServer.ServeStdio(ctx); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("MCP server failed")
	}
}
