package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/wsloan/spellforge/internal/deck"
)

// ErrSpellbookNotFound is returned when a spellbook ID has no row.
var ErrSpellbookNotFound = errors.New("spellbook not found")

// SpellbookRecord is a stored build result with its metadata row.
type SpellbookRecord struct {
	ID               string          `json:"id"`
	Avatar           string          `json:"avatar"`
	Archetype        string          `json:"archetype"`
	TotalSynergy     float64         `json:"total_synergy"`
	SpellCount       int             `json:"spell_count"`
	SiteCount        int             `json:"site_count"`
	InsufficientPool bool            `json:"insufficient_pool"`
	CreatedAt        time.Time       `json:"created_at"`
	Spellbook        *deck.Spellbook `json:"spellbook,omitempty"`
}

// SpellbookRepository persists finished spellbooks.
type SpellbookRepository struct {
	db *DB
}

// NewSpellbookRepository creates a spellbook repository.
func NewSpellbookRepository(db *DB) *SpellbookRepository {
	return &SpellbookRepository{db: db}
}

// SaveSpellbook stores a finished spellbook with the archetype it was
// built under. The full spellbook is kept as a JSON payload; the
// metadata columns exist for listing without decoding.
func (r *SpellbookRepository) SaveSpellbook(ctx context.Context, book *deck.Spellbook, archetype string) error {
	payload, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("failed to marshal spellbook: %w", err)
	}

	avatar := ""
	if book.Avatar != nil {
		avatar = book.Avatar.Name
	}

	_, err = r.db.conn.ExecContext(ctx, `
		INSERT INTO spellbooks (id, avatar, archetype, total_synergy, spell_count, site_count, insufficient_pool, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		book.ID,
		avatar,
		archetype,
		book.TotalSynergy,
		len(book.Spells),
		len(book.Sites),
		boolToInt(book.InsufficientPool),
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to insert spellbook %s: %w", book.ID, err)
	}
	return nil
}

// GetSpellbook loads a stored spellbook by ID.
func (r *SpellbookRepository) GetSpellbook(ctx context.Context, id string) (*SpellbookRecord, error) {
	row := r.db.conn.QueryRowContext(ctx, `
		SELECT id, avatar, archetype, total_synergy, spell_count, site_count, insufficient_pool, payload, created_at
		FROM spellbooks WHERE id = ?`, id)

	var (
		rec          SpellbookRecord
		insufficient int
		payload      string
	)
	err := row.Scan(&rec.ID, &rec.Avatar, &rec.Archetype, &rec.TotalSynergy,
		&rec.SpellCount, &rec.SiteCount, &insufficient, &payload, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSpellbookNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan spellbook: %w", err)
	}

	rec.InsufficientPool = insufficient != 0
	var book deck.Spellbook
	if err := json.Unmarshal([]byte(payload), &book); err != nil {
		return nil, fmt.Errorf("failed to unmarshal spellbook payload: %w", err)
	}
	rec.Spellbook = &book
	return &rec, nil
}

// ListSpellbooks returns stored spellbook metadata, newest first,
// without decoding payloads.
func (r *SpellbookRepository) ListSpellbooks(ctx context.Context, limit int) ([]*SpellbookRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.conn.QueryContext(ctx, `
		SELECT id, avatar, archetype, total_synergy, spell_count, site_count, insufficient_pool, created_at
		FROM spellbooks ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query spellbooks: %w", err)
	}
	defer rows.Close()

	var records []*SpellbookRecord
	for rows.Next() {
		var (
			rec          SpellbookRecord
			insufficient int
		)
		if err := rows.Scan(&rec.ID, &rec.Avatar, &rec.Archetype, &rec.TotalSynergy,
			&rec.SpellCount, &rec.SiteCount, &insufficient, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan spellbook row: %w", err)
		}
		rec.InsufficientPool = insufficient != 0
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate spellbooks: %w", err)
	}
	return records, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
