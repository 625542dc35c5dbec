package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/fasterangels/shadowpipe/internal/pkg/config"
	"github.com/fasterangels/shadowpipe/internal/pkg/logging"
	"github.com/fasterangels/shadowpipe/internal/pkg/seed"
	"github.com/fasterangels/shadowpipe/internal/pkg/storage"
)

const defaultConfigPath = "configs/production.yaml"

func main() {
	fmt.Println("Seeding canonical reference data...")

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
	logging.Setup(&cfg.Logging, "seed")

	if cfg.Postgres.DSN == "" {
		log.Fatal("seed: POSTGRES_DSN is required")
	}

	store, err := storage.NewPostgresReferenceStorage(&cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect reference storage: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	counts, err := seed.Apply(ctx, store)
	if err != nil {
		log.Fatalf("Seed failed: %v", err)
	}

	fmt.Printf("Seed complete: %d competitions, %d teams, %d aliases, %d matches inserted\n",
		counts.Competitions, counts.Teams, counts.Aliases, counts.Matches)
}
