package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	pubsubclient "cloud.google.com/go/pubsub"
	gcsclient "cloud.google.com/go/storage"
	guuid "github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sitehound/sitehound/internal/crawler"
	"github.com/sitehound/sitehound/internal/database"
	"github.com/sitehound/sitehound/internal/dispatcher"
	"github.com/sitehound/sitehound/internal/logging"
	"github.com/sitehound/sitehound/internal/progress"
	"github.com/sitehound/sitehound/internal/progress/sinks"
	pubsubpub "github.com/sitehound/sitehound/internal/publisher/pubsub"
	"github.com/sitehound/sitehound/internal/storage"
	"github.com/sitehound/sitehound/internal/storage/gcs"
	"github.com/sitehound/sitehound/internal/storage/local"
)

// newCrawlCmd creates the 'crawl' subcommand, which runs the configured
// seeds to completion and exits.
func newCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Starts a scrape over the configured seeds",
		Long: `Runs a recursive scrape over the seed URLs from the configuration.
Each seed becomes an independent run with its own visited registry;
runs execute concurrently up to scraper.concurrency.`,
		RunE: runCrawlCommand,
	}
	return cmd
}

func runCrawlCommand(cmd *cobra.Command, _ []string) error {
	logger := logging.L

	cfg, err := crawler.LoadConfig(viper.GetViper())
	if err != nil {
		return fmt.Errorf("load scraper config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	promSink, err := sinks.NewPrometheusSink(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("init prometheus sink: %w", err)
	}
	hub := progress.NewHub(progress.Config{Logger: logger, BaseContext: ctx},
		sinks.NewLogSink(logger), promSink)
	defer func() {
		if cerr := hub.Close(context.Background()); cerr != nil {
			logger.Warn("failed to close progress hub", zap.Error(cerr))
		}
	}()

	assetStore, err := buildAssetStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	var recorder crawler.PageRecorder
	if dsn := viper.GetString("scraper.database_dsn"); dsn != "" {
		db, dbErr := database.NewPostgresProvider(ctx, dsn)
		if dbErr != nil {
			return fmt.Errorf("init page database: %w", dbErr)
		}
		defer func() {
			if cerr := db.Close(); cerr != nil {
				logger.Warn("failed to close page database", zap.Error(cerr))
			}
		}()
		recorder = db
	}

	errorLog := crawler.NewFileErrorLog(
		filepath.Join(cfg.OutputDir, viper.GetString("scraper.error_log")), logger)
	fetcher, err := crawler.NewCollyFetcher(cfg, logger)
	if err != nil {
		return fmt.Errorf("init fetcher: %w", err)
	}
	robots := crawler.NewRobotsEnforcer(cfg.RespectRobots, cfg.EffectiveUserAgent(), logger)

	factory := func(runID guuid.UUID) *crawler.Engine {
		opts := []crawler.Option{
			crawler.WithRobots(robots),
			crawler.WithRetryPolicy(crawler.NewExponentialRetryPolicy()),
			crawler.WithErrorLog(errorLog),
			crawler.WithEmitter(hub),
			crawler.WithMediaSink(assetStore),
			crawler.WithRunID(runID),
		}
		if recorder != nil {
			opts = append(opts, crawler.WithPageRecorder(recorder))
		}
		return crawler.NewEngine(cfg, fetcher, logger, opts...)
	}

	dispatchOpts := []dispatcher.Option{
		dispatcher.WithEmitter(hub),
		dispatcher.WithConcurrency(viper.GetInt("scraper.concurrency")),
	}
	project := viper.GetString("scraper.pubsub.project")
	topic := viper.GetString("scraper.pubsub.topic")
	if project != "" && topic != "" {
		client, pubErr := pubsubclient.NewClient(ctx, project)
		if pubErr != nil {
			return fmt.Errorf("init pubsub client: %w", pubErr)
		}
		defer func() {
			if cerr := client.Close(); cerr != nil {
				logger.Warn("failed to close pubsub client", zap.Error(cerr))
			}
		}()
		dispatchOpts = append(dispatchOpts, dispatcher.WithPublisher(pubsubpub.New(client), topic))
	}

	disp := dispatcher.New(cfg, factory, logger, dispatchOpts...)
	if err := disp.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run scrape: %w", err)
	}

	logger.Info("Crawl command finished.")
	return nil
}

// buildAssetStore picks the blob backend: GCS when a bucket is configured,
// the local output directory otherwise.
func buildAssetStore(ctx context.Context, cfg crawler.Config, logger *zap.Logger) (*storage.AssetStore, error) {
	var store storage.BlobStore
	if bucket := viper.GetString("scraper.gcs_bucket"); bucket != "" {
		client, err := gcsclient.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("init gcs client: %w", err)
		}
		blob, err := gcs.New(client, gcs.Config{Bucket: bucket})
		if err != nil {
			return nil, fmt.Errorf("init gcs store: %w", err)
		}
		store = blob
	} else {
		blob, err := local.New(local.Config{BaseDir: cfg.OutputDir})
		if err != nil {
			return nil, fmt.Errorf("init local store: %w", err)
		}
		store = blob
	}
	assetStore, err := storage.NewAssetStore(store, "media", nil, logger)
	if err != nil {
		return nil, fmt.Errorf("init asset store: %w", err)
	}
	return assetStore, nil
}
