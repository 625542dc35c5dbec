package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fasterangels/shadowpipe/internal/api"
	"github.com/fasterangels/shadowpipe/internal/ingestion"
	"github.com/fasterangels/shadowpipe/internal/ingestion/liveprovider"
	"github.com/fasterangels/shadowpipe/internal/notify"
	"github.com/fasterangels/shadowpipe/internal/pipeline"
	"github.com/fasterangels/shadowpipe/internal/pkg/config"
	"github.com/fasterangels/shadowpipe/internal/pkg/logging"
	"github.com/fasterangels/shadowpipe/internal/pkg/storage"
)

const defaultConfigPath = "configs/production.yaml"

var appVersion = "dev"

func main() {
	fmt.Println("Starting Shadow Pipeline Service...")

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = defaultConfigPath
	}

	var configPath string
	flag.StringVar(&configPath, "config", defaultConfig, "Path to config file (can be set via CONFIG_PATH env var)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config from %s: %v, using defaults", configPath, err)
		cfg = config.Default()
	}

	logging.Setup(&cfg.Logging, "pipeline-service")
	slog.Info("Config loaded", "addr", cfg.Server.Addr, "max_matches", cfg.Activation.MaxMatches, "markets", cfg.Activation.Markets)

	refs, outcomes := openStorage(cfg)
	defer refs.Close()
	defer outcomes.Close()

	recorded, err := ingestion.NewRecordedConnector("recorded", ingestion.DefaultRecordedSnapshots())
	if err != nil {
		log.Fatalf("Failed to build recorded connector: %v", err)
	}
	ingestion.Register(recorded)
	ingestion.Register(liveprovider.New(cfg.LiveIO))
	slog.Info("Connectors registered", "names", ingestion.Names())

	notifier := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if notifier != nil {
		defer notifier.Stop()
	}

	pipe, err := pipeline.New(cfg, refs, outcomes, notifier, appVersion, slog.Default())
	if err != nil {
		log.Fatalf("Failed to create pipeline: %v", err)
	}

	server := api.NewServer(cfg, pipe, outcomes, slog.Default())

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("HTTP server failed: %v", err)
	case sig := <-stop:
		slog.Info("Shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	server.Stop(ctx)
	slog.Info("Shutdown complete")
}

// openStorage connects to Postgres when a DSN is configured and falls back
// to in-memory stores otherwise, so the service runs without a database.
func openStorage(cfg *config.Config) (storage.ReferenceStore, storage.OutcomeStore) {
	if cfg.Postgres.DSN == "" {
		slog.Warn("No Postgres DSN configured, using in-memory storage")
		return storage.NewMemoryReferenceStorage(), storage.NewMemoryOutcomeStorage()
	}

	refs, err := storage.NewPostgresReferenceStorage(&cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect reference storage: %v", err)
	}
	outcomes, err := storage.NewPostgresOutcomeStorage(&cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect outcome storage: %v", err)
	}
	return refs, outcomes
}
