package storage

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	config := DefaultConfig(filepath.Join(t.TempDir(), "test.db"))
	config.AutoMigrate = true
	db, err := Open(config)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})
	return db
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig("test.db")

	if config.Path != "test.db" {
		t.Errorf("expected path 'test.db', got '%s'", config.Path)
	}
	if config.MaxOpenConns != 25 {
		t.Errorf("expected MaxOpenConns 25, got %d", config.MaxOpenConns)
	}
	if config.BusyTimeout != 5*time.Second {
		t.Errorf("expected BusyTimeout 5s, got %v", config.BusyTimeout)
	}
	if config.JournalMode != "WAL" {
		t.Errorf("expected JournalMode 'WAL', got '%s'", config.JournalMode)
	}
	if config.AutoMigrate {
		t.Error("expected AutoMigrate to default to false")
	}
}

func TestOpenNilConfig(t *testing.T) {
	if _, err := Open(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestOpenAndMigrate(t *testing.T) {
	db := openTestDB(t)

	// Migrations are idempotent.
	if err := db.Migrate(); err != nil {
		t.Errorf("re-running migrations should be a no-op, got %v", err)
	}

	for _, table := range []string{"cards", "spellbooks"} {
		var name string
		err := db.Conn().QueryRow(
			`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table,
		).Scan(&name)
		if err != nil {
			t.Errorf("expected table %q after migration: %v", table, err)
		}
	}
}
