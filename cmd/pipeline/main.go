package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/maguenza/hackernews-ai-project/internal/db"
	"github.com/maguenza/hackernews-ai-project/internal/etl"
	"github.com/maguenza/hackernews-ai-project/internal/hn"
	"github.com/maguenza/hackernews-ai-project/pkg/config"
	"github.com/maguenza/hackernews-ai-project/pkg/logging"
	"github.com/maguenza/hackernews-ai-project/pkg/telemetry"
)

var rootCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "HackerNews ETL pipeline",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one synchronization pass and exit",
	RunE:  runOnce,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run synchronization passes on a cron schedule",
	RunE:  serve,
}

var createTablesCmd = &cobra.Command{
	Use:   "create-tables",
	Short: "Create or migrate the database schema and exit",
	RunE:  createTables,
}

func main() {
	rootCmd.AddCommand(runCmd, serveCmd, createTablesCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap loads configuration and brings up logging, telemetry, and
// the database connection shared by every subcommand.
func bootstrap() (*config.Config, *db.DB, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return nil, nil, nil, err
	}

	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return nil, nil, nil, err
	}

	telemetryShutdown, err := telemetry.Init(&cfg.Telemetry)
	if err != nil {
		logging.GetLogger().Error("Failed to initialize telemetry", zap.Error(err))
		return nil, nil, nil, err
	}

	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		logging.GetLogger().Error("Failed to connect to database", zap.Error(err))
		telemetryShutdown()
		return nil, nil, nil, err
	}

	cleanup := func() {
		database.Close()
		telemetryShutdown()
		logging.GetLogger().Sync()
	}
	return cfg, database, cleanup, nil
}

func newSync(cfg *config.Config, database *db.DB) (*etl.Sync, error) {
	client, err := hn.New(&cfg.HackerNews)
	if err != nil {
		return nil, fmt.Errorf("failed to create HackerNews client: %w", err)
	}

	fetcher := hn.NewTreeFetcher(client, cfg.Pipeline.MaxTreeNodes)
	loader := etl.NewLoader(database.DB)
	transformer := etl.NewTransformer(database.DB)

	return etl.NewSync(&cfg.Pipeline, client, fetcher, loader, transformer), nil
}

func runOnce(cmd *cobra.Command, args []string) error {
	cfg, database, cleanup, err := bootstrap()
	if err != nil {
		return err
	}
	defer cleanup()

	logger := logging.GetLogger()
	logger.Info("Starting HackerNews Pipeline")

	sync, err := newSync(cfg, database)
	if err != nil {
		logger.Error("Failed to build pipeline", zap.Error(err))
		return err
	}

	if _, err := sync.Run(cmd.Context()); err != nil {
		logger.Error("Pipeline run failed", zap.Error(err))
		return err
	}
	return nil
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, database, cleanup, err := bootstrap()
	if err != nil {
		return err
	}
	defer cleanup()

	logger := logging.GetLogger()
	logger.Info("Starting HackerNews Pipeline scheduler",
		zap.String("schedule", cfg.Pipeline.CronSchedule))

	sync, err := newSync(cfg, database)
	if err != nil {
		logger.Error("Failed to build pipeline", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.Pipeline.CronSchedule, func() {
		if _, err := sync.Run(ctx); err != nil {
			logger.Error("Scheduled pipeline run failed", zap.Error(err))
		}
	})
	if err != nil {
		logger.Error("Invalid cron schedule",
			zap.String("schedule", cfg.Pipeline.CronSchedule), zap.Error(err))
		return err
	}

	scheduler.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down pipeline scheduler...")
	cancel()
	<-scheduler.Stop().Done()
	logger.Info("Pipeline scheduler exited")
	return nil
}

func createTables(cmd *cobra.Command, args []string) error {
	_, database, cleanup, err := bootstrap()
	if err != nil {
		return err
	}
	defer cleanup()

	logger := logging.GetLogger()

	loader := etl.NewLoader(database.DB)
	if err := loader.CreateTables(cmd.Context()); err != nil {
		logger.Error("Failed to create tables", zap.Error(err))
		return err
	}

	logger.Info("Database schema is up to date")
	return nil
}
