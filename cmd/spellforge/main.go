// Package main is the deck construction CLI: it builds a spellbook from
// the card database and writes the result as a deck list.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/wsloan/spellforge/internal/cards"
	"github.com/wsloan/spellforge/internal/charts"
	"github.com/wsloan/spellforge/internal/config"
	"github.com/wsloan/spellforge/internal/deck"
	"github.com/wsloan/spellforge/internal/export"
	"github.com/wsloan/spellforge/internal/storage"
)

var (
	configPath = flag.String("config", "", "Config file path (default: ~/.spellforge/config.toml)")
	dbPath     = flag.String("db-path", "", "Card database path (default: from config)")
	importPath = flag.String("import", "", "Import a JSON card file into the database and exit")

	avatarName   = flag.String("avatar", "", "Avatar to build around (default: auto-select)")
	archetypeTok = flag.String("archetype", "", "Archetype preference: balanced, combo, aggro, control, midrange")
	targetSpells = flag.Int("spells", 0, "Spellbook size (default: from config)")
	targetSites  = flag.Int("sites", 0, "Site count (default: from config)")

	format    = flag.String("format", "text", "Output format: text or json")
	output    = flag.String("output", "", "Output file (default: stdout)")
	chartsDir = flag.String("charts", "", "Directory to write analysis charts (disabled if empty)")
	verbose   = flag.Bool("v", false, "Print per-pick scoring diagnostics")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyFlags(cfg)
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

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}
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

	ctx := context.Background()
	cardRepo := storage.NewCardRepository(db)

	if *importPath != "" {
		if err := importCards(ctx, cardRepo, *importPath); err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		return
	}

	pools, err := cardRepo.LoadPools(ctx)
	if err != nil {
		log.Fatalf("Failed to load card pool: %v", err)
	}

	book, err := build(pools, cfg)
	if err != nil {
		log.Fatalf("Build failed: %v", err)
	}

	if err := storage.NewSpellbookRepository(db).SaveSpellbook(ctx, book, cfg.Builder.Archetype); err != nil {
		log.Printf("Warning: failed to save spellbook: %v", err)
	}

	if err := writeResult(book); err != nil {
		log.Fatalf("Failed to write deck list: %v", err)
	}

	if *chartsDir != "" {
		if err := renderCharts(book, *chartsDir); err != nil {
			log.Fatalf("Failed to render charts: %v", err)
		}
	}
}

// applyFlags overrides config values with explicit command-line flags.
func applyFlags(cfg *config.Config) {
	if *dbPath != "" {
		cfg.Storage.Path = *dbPath
	}
	if *archetypeTok != "" {
		cfg.Builder.Archetype = *archetypeTok
	}
	if *targetSpells != 0 {
		cfg.Builder.TargetSpells = *targetSpells
	}
	if *targetSites != 0 {
		cfg.Builder.TargetSites = *targetSites
	}
}

// build runs one deck construction pass over the pools.
func build(pools *deck.Pools, cfg *config.Config) (*deck.Spellbook, error) {
	opts := &deck.Options{
		Archetype:    cfg.Builder.Archetype,
		Weights:      cfg.Weights,
		TargetSpells: cfg.Builder.TargetSpells,
		TargetSites:  cfg.Builder.TargetSites,
		CopyLimits:   cfg.CopyLimits(),
		Workers:      cfg.Builder.Workers,
		Diagnostics:  *verbose,
	}
	if *avatarName != "" {
		for _, a := range pools.Avatars {
			if a.Name == *avatarName {
				opts.Avatar = a
				break
			}
		}
		if opts.Avatar == nil {
			return nil, fmt.Errorf("avatar %q not in pool", *avatarName)
		}
	}

	book, err := deck.NewBuilder(nil, nil).Build(pools, opts)
	if err != nil {
		return nil, err
	}

	if *verbose {
		for _, pick := range book.Picks {
			fmt.Fprintf(os.Stderr, "pick %3d: %-30s score %.4f (elemental %.3f, mechanical %.3f, curve %.3f, combo %.3f)\n",
				pick.Iteration, pick.Card, pick.Score,
				pick.Breakdown.Elemental, pick.Breakdown.Mechanical,
				pick.Breakdown.Curve, pick.Breakdown.Combo)
		}
		stats := book.CacheStats
		fmt.Fprintf(os.Stderr, "cache: %d hits, %d misses, %d entries\n", stats.Hits, stats.Misses, stats.Size)
	}
	if book.InsufficientPool {
		fmt.Fprintf(os.Stderr, "Warning: pool exhausted at %d of %d spells\n", len(book.Spells), cfg.Builder.TargetSpells)
	}

	return book, nil
}

// writeResult exports the spellbook to the chosen destination.
func writeResult(book *deck.Spellbook) error {
	out := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	return export.WriteSpellbook(out, book, export.Format(*format))
}

// renderCharts writes the cost curve and element distribution charts.
func renderCharts(book *deck.Spellbook, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create charts directory: %w", err)
	}
	chartCfg := charts.DefaultChartConfig()
	if err := charts.RenderCostCurve(book, chartCfg, filepath.Join(dir, "cost-curve.html")); err != nil {
		return err
	}
	return charts.RenderElementDistribution(book, chartCfg, filepath.Join(dir, "elements.html"))
}

// importCards loads a JSON array of cards into the database. Array
// order becomes the pool's deterministic input order.
func importCards(ctx context.Context, repo *storage.CardRepository, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read card file: %w", err)
	}
	var list []*cards.Card
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("failed to parse card file: %w", err)
	}
	if err := repo.InsertCards(ctx, list); err != nil {
		return err
	}
	fmt.Printf("Imported %d cards from %s\n", len(list), path)
	return nil
}

// loadConfig reads the config file, falling back to defaults when the
// file does not exist.
func loadConfig() (*config.Config, error) {
	if *configPath != "" {
		return config.LoadFile(*configPath)
	}
	return config.Load()
}
