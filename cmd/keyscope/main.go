package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MikaTepe/keyscope/internal/api"
	"github.com/MikaTepe/keyscope/internal/config"
	"github.com/MikaTepe/keyscope/internal/extractor"
	"github.com/MikaTepe/keyscope/internal/jobs"
	"github.com/MikaTepe/keyscope/internal/logging"
	"github.com/MikaTepe/keyscope/internal/scorer"
	"github.com/MikaTepe/keyscope/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (optional)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("Keyscope Keyword Extraction Service\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", storage.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", storage.DriverName)
		os.Exit(0)
	}

	_ = godotenv.Load()

	var cfg *config.AppConfig
	var err error
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, _, err = config.LoadDefault()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Mode)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting keyscope", "version", version, "build_mode", storage.BuildMode)

	sc, err := buildScorer(cfg)
	if err != nil {
		logger.Fatal("failed to initialize scorer", "error", err)
	}
	defer func() { _ = sc.Close() }()

	ext := extractor.New(sc, logger, extractor.WithWorkers(cfg.Extraction.Workers))

	store, err := storage.NewSQLiteStorage(cfg.Jobs.DBPath)
	if err != nil {
		logger.Fatal("failed to open job store", "error", err, "db_path", cfg.Jobs.DBPath)
	}
	defer func() { _ = store.Close() }()

	queue := jobs.New(store, ext, logger,
		jobs.WithWorkers(cfg.Jobs.Workers),
		jobs.WithMaxRetries(cfg.Jobs.MaxRetries))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := queue.Start(ctx); err != nil {
		logger.Fatal("failed to start job queue", "error", err)
	}

	server := api.NewServer(api.RouterConfig{
		ExtractHandler: api.NewExtractHandler(ext, logger),
		JobHandler:     api.NewJobHandler(queue, logger),
		HealthHandler:  api.NewHealthHandler(sc),
		Log:            logger,
		CORSOrigins:    cfg.Server.CORSOrigins,
	})

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	errChan := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "address", address)
		errChan <- server.Run(address)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-errChan:
		if err != nil {
			logger.Fatal("server error", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", "error", err)
	}
	queue.Stop()
	logger.Info("stopped")
}

// buildScorer prefers the config file but lets environment variables win,
// matching how the scorer sidecar is addressed in deployments
func buildScorer(cfg *config.AppConfig) (scorer.Scorer, error) {
	if os.Getenv(scorer.EnvProvider) != "" || os.Getenv(scorer.EnvBaseURL) != "" {
		return scorer.NewFromEnv()
	}

	apiKey := ""
	if cfg.Scorer.APIKeyEnv != "" {
		apiKey = os.Getenv(cfg.Scorer.APIKeyEnv)
	}
	return scorer.New(scorer.Config{
		Provider:  cfg.Scorer.Provider,
		BaseURL:   cfg.Scorer.BaseURL,
		APIKey:    apiKey,
		Model:     cfg.Scorer.Model,
		CacheSize: cfg.Scorer.CacheSize,
	})
}
