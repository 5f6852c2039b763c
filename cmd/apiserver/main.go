// Package main runs the standalone REST API server for the deck engine.
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
	"time"

	"github.com/wsloan/spellforge/internal/api"
	"github.com/wsloan/spellforge/internal/config"
	"github.com/wsloan/spellforge/internal/storage"
)

var (
	port       = flag.Int("port", 0, "API server port (default: from config)")
	dbPath     = flag.String("db-path", "", "Card database path (default: from config)")
	configPath = flag.String("config", "", "Config file path (default: ~/.spellforge/config.toml)")
)

func main() {
	flag.Parse()

	fmt.Println("Spellforge - REST API Server")
	fmt.Println("============================")
	fmt.Println()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Storage.Path = *dbPath
	}
	if cfg.Storage.Path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to get home directory: %v", err)
		}
		cfg.Storage.Path = filepath.Join(home, ".spellforge", "cards.db")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Ensure the database directory exists
	dbDir := filepath.Dir(cfg.Storage.Path)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}

	fmt.Printf("Database: %s\n", cfg.Storage.Path)

	storageCfg := storage.DefaultConfig(cfg.Storage.Path)
	storageCfg.AutoMigrate = true
	db, err := storage.Open(storageCfg)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cardRepo := storage.NewCardRepository(db)
	pools, err := cardRepo.LoadPools(ctx)
	if err != nil {
		log.Fatalf("Failed to load card pool: %v", err)
	}
	fmt.Printf("Card pool: %d cards\n", len(pools.All()))

	server := api.NewServer(cfg, pools, storage.NewSpellbookRepository(db))

	// Reload the pool when the database file changes on disk.
	if cfg.Storage.Watch {
		watcher := storage.NewWatcher(cfg.Storage.Path, nil)
		go func() {
			err := watcher.Watch(ctx, func() {
				reloaded, err := cardRepo.LoadPools(ctx)
				if err != nil {
					log.Printf("Pool reload failed: %v", err)
					return
				}
				server.SetPools(reloaded)
				log.Printf("Card pool reloaded: %d cards", len(reloaded.All()))
			})
			if err != nil && ctx.Err() == nil {
				log.Printf("Database watcher stopped: %v", err)
			}
		}()
	}

	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start API server: %v", err)
	}

	fmt.Println()
	fmt.Printf("API server running at http://localhost:%d\n", server.Port())
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println()
	fmt.Println("Shutting down...")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	fmt.Println("API server stopped.")
}

// loadConfig reads the config file, falling back to defaults when the
// file does not exist.
func loadConfig() (*config.Config, error) {
	if *configPath != "" {
		return config.LoadFile(*configPath)
	}
	return config.Load()
}
