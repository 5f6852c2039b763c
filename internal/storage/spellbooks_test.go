package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wsloan/spellforge/internal/cards"
	"github.com/wsloan/spellforge/internal/deck"
)

func sampleSpellbook(id string) *deck.Spellbook {
	return &deck.Spellbook{
		ID: id,
		Avatar: &cards.Card{
			Name:     "The Flamecaller",
			Category: cards.CategoryAvatar,
			Elements: []cards.Element{cards.ElementFire},
			Rarity:   cards.RarityUnique,
		},
		Sites: []*cards.Card{
			{Name: "Smoldering Ridge", Category: cards.CategorySite, Rarity: cards.RarityOrdinary},
		},
		Spells: []*cards.Card{
			{Name: "Ember Wolf", Category: cards.CategoryMinion, Cost: 2, Rarity: cards.RarityOrdinary},
			{Name: "Searing Bolt", Category: cards.CategoryMagic, Cost: 1, Rarity: cards.RarityOrdinary},
		},
		TotalSynergy:     4.2,
		Counts:           map[cards.Category]int{cards.CategoryMinion: 1, cards.CategoryMagic: 1},
		InsufficientPool: true,
	}
}

func TestSaveAndGetSpellbook(t *testing.T) {
	db := openTestDB(t)
	repo := NewSpellbookRepository(db)
	ctx := context.Background()

	book := sampleSpellbook("book-1")
	require.NoError(t, repo.SaveSpellbook(ctx, book, "Combo"))

	rec, err := repo.GetSpellbook(ctx, "book-1")
	require.NoError(t, err)

	assert.Equal(t, "book-1", rec.ID)
	assert.Equal(t, "The Flamecaller", rec.Avatar)
	assert.Equal(t, "Combo", rec.Archetype)
	assert.Equal(t, 4.2, rec.TotalSynergy)
	assert.Equal(t, 2, rec.SpellCount)
	assert.Equal(t, 1, rec.SiteCount)
	assert.True(t, rec.InsufficientPool)
	assert.False(t, rec.CreatedAt.IsZero())

	require.NotNil(t, rec.Spellbook)
	assert.Equal(t, book.TotalSynergy, rec.Spellbook.TotalSynergy)
	require.Len(t, rec.Spellbook.Spells, 2)
	assert.Equal(t, "Ember Wolf", rec.Spellbook.Spells[0].Name)
}

func TestGetSpellbookNotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewSpellbookRepository(db)

	_, err := repo.GetSpellbook(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSpellbookNotFound)
}

func TestListSpellbooks(t *testing.T) {
	db := openTestDB(t)
	repo := NewSpellbookRepository(db)
	ctx := context.Background()

	for _, id := range []string{"book-1", "book-2", "book-3"} {
		require.NoError(t, repo.SaveSpellbook(ctx, sampleSpellbook(id), "Balanced"))
	}

	records, err := repo.ListSpellbooks(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, records, 3)
	for _, rec := range records {
		// Listing skips payload decoding.
		assert.Nil(t, rec.Spellbook)
		assert.Equal(t, "Balanced", rec.Archetype)
	}

	limited, err := repo.ListSpellbooks(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSaveSpellbookDuplicateID(t *testing.T) {
	db := openTestDB(t)
	repo := NewSpellbookRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.SaveSpellbook(ctx, sampleSpellbook("dup"), "Balanced"))
	require.Error(t, repo.SaveSpellbook(ctx, sampleSpellbook("dup"), "Balanced"))
}
