// Fathom Sync Daemon — receives logbook entries and feedback from
// clients and batch-writes them to the local SQLite database.
//
// Usage:
//
//	fathom-syncd [flags]
//
// Flags:
//
//	--config    Path to config file (default: ~/.fathom/config.yaml)
//	--listen    TCP/UDS address to listen on (overrides config)
//	--db        Path to SQLite database file (overrides config)
//	--metrics   HTTP address for metrics (overrides config)
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/fathomdive/fathom/internal/config"
	"github.com/fathomdive/fathom/internal/database"
	"github.com/fathomdive/fathom/internal/syncd"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	listen := flag.String("listen", "", "TCP/UDS listen address")
	dbPath := flag.String("db", "", "Path to SQLite database file")
	metrics := flag.String("metrics", "", "Metrics HTTP address")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *listen != "" {
		cfg.Sync.ListenAddr = *listen
	}
	if *dbPath != "" {
		cfg.DatabasePath = *dbPath
	}
	if *metrics != "" {
		cfg.Sync.MetricsAddr = *metrics
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Ensure the database directory exists
	dbDir := filepath.Dir(cfg.DatabasePath)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		logger.Fatal("creating database directory", zap.String("dir", dbDir), zap.Error(err))
	}

	store, err := database.NewDBService(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("initializing database", zap.Error(err))
	}
	defer store.Close()

	daemon := syncd.NewDaemonSyncer(cfg.Sync, store, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := daemon.Start(ctx); err != nil {
		logger.Fatal("starting sync daemon", zap.Error(err))
	}

	fmt.Println()
	fmt.Println("  FATHOM SYNC")
	fmt.Println()
	fmt.Printf("  Listen:  %s\n", cfg.Sync.ListenAddr)
	fmt.Printf("  DB:      %s\n", cfg.DatabasePath)
	fmt.Printf("  Metrics: http://%s/metrics\n", cfg.Sync.MetricsAddr)
	fmt.Println()
	fmt.Println("  Press Ctrl+C to stop.")
	fmt.Println()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")
	cancel()
	if err := daemon.Stop(); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.DisableStacktrace = true
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zc.Level = lvl
	return zc.Build()
}
