package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sitehound/sitehound/internal/api"
	"github.com/sitehound/sitehound/internal/database"
	"github.com/sitehound/sitehound/internal/logging"
)

// newServeCmd creates the 'serve' subcommand, which exposes health
// probes, metrics, and recorded page data over HTTP.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts the HTTP API server",
		RunE:  runServeCommand,
	}
	return cmd
}

func runServeCommand(cmd *cobra.Command, _ []string) error {
	logger := logging.L

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db database.Provider
	if dsn := viper.GetString("scraper.database_dsn"); dsn != "" {
		provider, err := database.NewPostgresProvider(ctx, dsn)
		if err != nil {
			return fmt.Errorf("init page database: %w", err)
		}
		defer func() {
			if cerr := provider.Close(); cerr != nil {
				logger.Warn("failed to close page database", zap.Error(cerr))
			}
		}()
		db = provider
	}

	server := api.NewServer(db, logger)
	addr := viper.GetString("server.listen_addr")
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server listening", zap.String("addr", addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown api server: %w", err)
		}
	}
	logger.Info("Serve command finished.")
	return nil
}
