package main

import (
	"flag"
	"log"
	"os"

	"PairPull/internal/di"
	"PairPull/pkg/config"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config/config.yaml", "config file path")
	runOnce := flag.Bool("once", false, "run a single trading cycle and exit")
	flag.Parse()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if *runOnce {
		cfg.Scheduler.RunOnce = true
	}

	log.Printf("env=%s pair=%s/%s backend=%s", cfg.Environment, cfg.Strategy.Lead, cfg.Strategy.Lag, cfg.Journal.Backend)

	// Wire DI: Initialize all dependencies
	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	log.Printf("clickhouse: connected and schema ready - db: %s\n", cfg.ClickHouse.Database)

	// Run application (blocks until signal or run-once completion)
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
