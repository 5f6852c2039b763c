// Package config loads and validates the spellforge configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/wsloan/spellforge/internal/archetype"
	"github.com/wsloan/spellforge/internal/cards"
	"github.com/wsloan/spellforge/internal/synergy"
)

// Config represents the application configuration.
type Config struct {
	// Weights are the base aggregator signal weights.
	Weights synergy.Weights `toml:"weights"`

	// Builder holds deck construction settings.
	Builder BuilderConfig `toml:"builder"`

	// Server holds REST API settings.
	Server ServerConfig `toml:"server"`

	// Storage holds card database settings.
	Storage StorageConfig `toml:"storage"`
}

// BuilderConfig contains deck construction settings.
type BuilderConfig struct {
	TargetSpells int            `toml:"target_spells"` // Spellbook size (default 50)
	TargetSites  int            `toml:"target_sites"`  // Site count (default 30)
	Archetype    string         `toml:"archetype"`     // Default archetype preference
	Workers      int            `toml:"workers"`       // Scoring fan-out (0 = GOMAXPROCS)
	CopyLimits   map[string]int `toml:"copy_limits"`   // Rarity -> max copies
}

// ServerConfig contains REST API settings.
type ServerConfig struct {
	Port      int     `toml:"port"`       // Listen port
	RateLimit float64 `toml:"rate_limit"` // Build requests per second (0 = unlimited)
	RateBurst int     `toml:"rate_burst"` // Build request burst size
}

// StorageConfig contains card database settings.
type StorageConfig struct {
	Path  string `toml:"path"`  // SQLite database path
	Watch bool   `toml:"watch"` // Reload pool when the database file changes
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Weights: synergy.DefaultWeights(),
		Builder: BuilderConfig{
			TargetSpells: 50,
			TargetSites:  30,
			Archetype:    string(archetype.Balanced),
			Workers:      0,
			CopyLimits: map[string]int{
				string(cards.RarityOrdinary):    4,
				string(cards.RarityExceptional): 3,
				string(cards.RarityElite):       2,
				string(cards.RarityUnique):      1,
			},
		},
		Server: ServerConfig{
			Port:      8080,
			RateLimit: 2,
			RateBurst: 4,
		},
		Storage: StorageConfig{
			Path:  "",
			Watch: false,
		},
	}
}

// configPath returns the path to the configuration file.
func configPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".spellforge")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.toml"), nil
}

// Load loads the configuration from disk. Returns default config if the
// file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile loads the configuration from an explicit path.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}

// Save saves the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values. Invalid configuration is
// rejected up front; continuing would silently produce an unintended
// deck.
func (c *Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}

	if _, err := archetype.Parse(c.Builder.Archetype); err != nil {
		return err
	}

	if c.Builder.TargetSpells < 0 {
		return fmt.Errorf("target spells cannot be negative: %d", c.Builder.TargetSpells)
	}
	if c.Builder.TargetSites < 0 {
		return fmt.Errorf("target sites cannot be negative: %d", c.Builder.TargetSites)
	}
	for rarity, limit := range c.Builder.CopyLimits {
		if limit < 1 {
			return fmt.Errorf("copy limit for %s must be at least 1: %d", rarity, limit)
		}
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("rate limit cannot be negative: %f", c.Server.RateLimit)
	}

	return nil
}

// CopyLimits converts the configured limits to the builder's rarity map.
func (c *Config) CopyLimits() map[cards.Rarity]int {
	limits := make(map[cards.Rarity]int, len(c.Builder.CopyLimits))
	for rarity, limit := range c.Builder.CopyLimits {
		limits[cards.Rarity(rarity)] = limit
	}
	return limits
}
