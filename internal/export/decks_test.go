package export

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/wsloan/spellforge/internal/cards"
	"github.com/wsloan/spellforge/internal/deck"
)

func sampleBook() *deck.Spellbook {
	return &deck.Spellbook{
		ID: "test-book",
		Avatar: &cards.Card{
			Name: "The Flamecaller", Category: cards.CategoryAvatar,
		},
		Sites: []*cards.Card{
			{Name: "Smoldering Ridge", Category: cards.CategorySite},
			{Name: "Smoldering Ridge", Category: cards.CategorySite},
		},
		Spells: []*cards.Card{
			{Name: "Ember Wolf", Category: cards.CategoryMinion, Cost: 2},
			{Name: "Ember Wolf", Category: cards.CategoryMinion, Cost: 2},
			{Name: "Searing Bolt", Category: cards.CategoryMagic, Cost: 1},
		},
		TotalSynergy:     3.5,
		InsufficientPool: true,
	}
}

func TestWriteSpellbookText(t *testing.T) {
	var b strings.Builder
	if err := WriteSpellbook(&b, sampleBook(), FormatText); err != nil {
		t.Fatalf("WriteSpellbook() error = %v", err)
	}
	out := b.String()

	for _, want := range []string{
		"Avatar\n  1 The Flamecaller",
		"Sites (2)",
		"2 Smoldering Ridge",
		"Minions (2)",
		"2 Ember Wolf",
		"Magics (1)",
		"1 Searing Bolt",
		"Total spells: 3",
		"Deck synergy: 3.50",
		"pool was exhausted",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text export missing %q:\n%s", want, out)
		}
	}
}

func TestWriteSpellbookJSON(t *testing.T) {
	var b strings.Builder
	if err := WriteSpellbook(&b, sampleBook(), FormatJSON); err != nil {
		t.Fatalf("WriteSpellbook() error = %v", err)
	}

	var decoded deck.Spellbook
	if err := json.Unmarshal([]byte(b.String()), &decoded); err != nil {
		t.Fatalf("JSON export must decode back into a spellbook: %v", err)
	}
	if decoded.ID != "test-book" || len(decoded.Spells) != 3 {
		t.Errorf("decoded spellbook mismatch: %+v", decoded)
	}
	if !decoded.InsufficientPool {
		t.Error("insufficient-pool flag must survive the round trip")
	}
}

func TestWriteSpellbookUnknownFormat(t *testing.T) {
	var b strings.Builder
	if err := WriteSpellbook(&b, sampleBook(), Format("yaml")); err == nil {
		t.Error("unknown format must be rejected")
	}
}
