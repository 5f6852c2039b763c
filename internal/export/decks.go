// Package export writes finished spellbooks to text and JSON formats.
// Export is a thin adapter over the build result; the engine itself owns
// no file format.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/wsloan/spellforge/internal/cards"
	"github.com/wsloan/spellforge/internal/deck"
)

// Format represents the deck export format.
type Format string

const (
	// FormatText represents a simple grouped card list.
	FormatText Format = "text"
	// FormatJSON represents the full spellbook as JSON.
	FormatJSON Format = "json"
)

// WriteSpellbook writes the spellbook to w in the given format.
func WriteSpellbook(w io.Writer, book *deck.Spellbook, format Format) error {
	switch format {
	case FormatText:
		return writeText(w, book)
	case FormatJSON:
		return writeJSON(w, book)
	default:
		return fmt.Errorf("unsupported export format: %q", format)
	}
}

// writeJSON emits the spellbook as indented JSON.
func writeJSON(w io.Writer, book *deck.Spellbook) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(book); err != nil {
		return fmt.Errorf("failed to encode spellbook: %w", err)
	}
	return nil
}

// writeText emits a readable deck list: avatar, sites, then spells
// grouped by category with copy counts.
func writeText(w io.Writer, book *deck.Spellbook) error {
	var b strings.Builder

	if book.Avatar != nil {
		fmt.Fprintf(&b, "Avatar\n  1 %s\n\n", book.Avatar.Name)
	}

	if len(book.Sites) > 0 {
		fmt.Fprintf(&b, "Sites (%d)\n", len(book.Sites))
		writeGroup(&b, book.Sites)
		b.WriteString("\n")
	}

	for _, category := range cards.SpellCategories {
		var group []*cards.Card
		for _, c := range book.Spells {
			if c.Category == category {
				group = append(group, c)
			}
		}
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%ss (%d)\n", category, len(group))
		writeGroup(&b, group)
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Total spells: %d\n", len(book.Spells))
	fmt.Fprintf(&b, "Deck synergy: %.2f\n", book.TotalSynergy)
	if book.InsufficientPool {
		b.WriteString("Warning: candidate pool was exhausted before the target size\n")
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write deck list: %w", err)
	}
	return nil
}

// writeGroup writes "count name" lines for a card group, sorted by name.
func writeGroup(b *strings.Builder, group []*cards.Card) {
	counts := groupCounts(group)
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(b, "  %d %s\n", counts[name], name)
	}
}

// groupCounts tallies copies per card name.
func groupCounts(group []*cards.Card) map[string]int {
	counts := make(map[string]int)
	for _, c := range group {
		counts[c.Name]++
	}
	return counts
}
