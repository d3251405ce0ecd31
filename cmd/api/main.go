package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/homelink/pkg/api"
	"github.com/urmzd/homelink/pkg/app"
	"golang.org/x/sync/errgroup"

	_ "github.com/urmzd/homelink/docs"
)

// @title           Homelink API
// @version         1.0
// @description     Smart home fulfillment, mock account linking and device control

// @host      localhost:8080
// @BasePath  /
// @schemes   http https

const shutdownTimeout = 10 * time.Second

func main() {
	opts, err := app.ParseOptions("homelink-api", os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse flags")
	}

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

	router := api.NewRouter(api.Services{
		Registry:   a.Registry,
		Store:      a.Store,
		Executor:   a.Executor,
		Dispatcher: a.Dispatcher,
		Auth:       a.Auth,
		Notifier:   a.Notifier,
	})

	addr := a.Config.APIAddress()
	srv := router.Server(addr)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("address", addr).Msg("Starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		a.Run(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server failed")
	}
}
