package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ternarybob/capsa/internal/app"
	"github.com/ternarybob/capsa/internal/common"
	"github.com/ternarybob/capsa/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the Capsa server: rebuilds the vector index from the record store,
then serves the ingestion and query API until interrupted.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	config, logger, err := bootstrap()
	if err != nil {
		return err
	}

	common.PrintBanner(common.GetVersion())
	common.InstallCrashHandler("")

	application, err := app.New(config, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer application.Close()

	// Embeddings are not persisted: every start re-embeds the stored items
	// before the first query can be answered. Failure is not fatal — the
	// health endpoint exposes the item/chunk counts so a partial rebuild is
	// visible.
	if err := application.RebuildIndex(cmd.Context()); err != nil {
		logger.Warn().Err(err).Msg("Index rebuild failed; queries will run against a partial index")
	}

	srv := server.New(application)

	serverErr := make(chan error, 1)
	common.SafeGo(logger, "httpServer", func() {
		serverErr <- srv.Start()
	})

	logger.Info().
		Str("url", fmt.Sprintf("http://localhost:%d", config.Server.Port)).
		Msg("Capsa ready")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("Graceful shutdown failed")
	}

	return nil
}
