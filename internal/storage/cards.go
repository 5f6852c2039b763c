package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wsloan/spellforge/internal/cards"
	"github.com/wsloan/spellforge/internal/deck"
)

// CardRepository provides access to the canonical card records.
type CardRepository struct {
	db *DB
}

// NewCardRepository creates a card repository over an open database.
func NewCardRepository(db *DB) *CardRepository {
	return &CardRepository{db: db}
}

// InsertCard stores one card record. Position fixes the card's place in
// its pool's input order; deterministic builds depend on it.
func (r *CardRepository) InsertCard(ctx context.Context, card *cards.Card, position int) error {
	thresholds, err := json.Marshal(card.Thresholds)
	if err != nil {
		return fmt.Errorf("failed to marshal thresholds: %w", err)
	}

	elements := make([]string, len(card.Elements))
	for i, e := range card.Elements {
		elements[i] = string(e)
	}

	_, err = r.db.conn.ExecContext(ctx, `
		INSERT INTO cards (name, base_name, category, subtype, elements, cost, thresholds, rarity, ability_text, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		card.Name,
		card.Base(),
		string(card.Category),
		card.Subtype,
		strings.Join(elements, ","),
		card.Cost,
		string(thresholds),
		string(card.Rarity),
		card.AbilityText,
		position,
	)
	if err != nil {
		return fmt.Errorf("failed to insert card %q: %w", card.Name, err)
	}
	return nil
}

// InsertCards stores a batch of cards in a single transaction,
// positioned in slice order.
func (r *CardRepository) InsertCards(ctx context.Context, list []*cards.Card) error {
	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cards (name, base_name, category, subtype, elements, cost, thresholds, rarity, ability_text, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, card := range list {
		thresholds, err := json.Marshal(card.Thresholds)
		if err != nil {
			return fmt.Errorf("failed to marshal thresholds for %q: %w", card.Name, err)
		}
		elements := make([]string, len(card.Elements))
		for j, e := range card.Elements {
			elements[j] = string(e)
		}
		if _, err := stmt.ExecContext(ctx,
			card.Name, card.Base(), string(card.Category), card.Subtype,
			strings.Join(elements, ","), card.Cost, string(thresholds),
			string(card.Rarity), card.AbilityText, i,
		); err != nil {
			return fmt.Errorf("failed to insert card %q: %w", card.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LoadPools reads every card and partitions it into builder pools,
// ordered by stored position so repeated loads reproduce the same input
// order.
func (r *CardRepository) LoadPools(ctx context.Context) (*deck.Pools, error) {
	rows, err := r.db.conn.QueryContext(ctx, `
		SELECT name, base_name, category, subtype, elements, cost, thresholds, rarity, ability_text
		FROM cards
		ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	pools := &deck.Pools{}
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		switch card.Category {
		case cards.CategoryAvatar:
			pools.Avatars = append(pools.Avatars, card)
		case cards.CategorySite:
			pools.Sites = append(pools.Sites, card)
		case cards.CategoryMinion:
			pools.Minions = append(pools.Minions, card)
		case cards.CategoryArtifact:
			pools.Artifacts = append(pools.Artifacts, card)
		case cards.CategoryAura:
			pools.Auras = append(pools.Auras, card)
		case cards.CategoryMagic:
			pools.Magics = append(pools.Magics, card)
		default:
			return nil, fmt.Errorf("unknown card category %q for %q", card.Category, card.Name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cards: %w", err)
	}
	return pools, nil
}

// CountCards returns the number of stored card records.
func (r *CardRepository) CountCards(ctx context.Context) (int, error) {
	var count int
	if err := r.db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count cards: %w", err)
	}
	return count, nil
}

// scanCard hydrates one card row.
func scanCard(rows *sql.Rows) (*cards.Card, error) {
	var (
		card          cards.Card
		category      string
		elementsCSV   string
		thresholdsRaw string
		rarity        string
	)
	if err := rows.Scan(
		&card.Name, &card.BaseName, &category, &card.Subtype,
		&elementsCSV, &card.Cost, &thresholdsRaw, &rarity, &card.AbilityText,
	); err != nil {
		return nil, fmt.Errorf("failed to scan card: %w", err)
	}

	card.Category = cards.Category(category)
	card.Rarity = cards.Rarity(rarity)

	if elementsCSV != "" {
		for _, e := range strings.Split(elementsCSV, ",") {
			card.Elements = append(card.Elements, cards.Element(e))
		}
	}
	if thresholdsRaw != "" && thresholdsRaw != "{}" {
		if err := json.Unmarshal([]byte(thresholdsRaw), &card.Thresholds); err != nil {
			return nil, fmt.Errorf("failed to unmarshal thresholds for %q: %w", card.Name, err)
		}
	}
	return &card, nil
}
