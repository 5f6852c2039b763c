// Package cards defines the canonical card records the deck engine consumes.
package cards

import "strings"

// Category identifies the kind of card.
type Category string

const (
	CategoryAvatar   Category = "Avatar"
	CategorySite     Category = "Site"
	CategoryMinion   Category = "Minion"
	CategoryArtifact Category = "Artifact"
	CategoryAura     Category = "Aura"
	CategoryMagic    Category = "Magic"
)

// SpellCategories lists the categories that go into a spellbook,
// in the order pools are presented to the builder.
var SpellCategories = []Category{
	CategoryMinion,
	CategoryArtifact,
	CategoryAura,
	CategoryMagic,
}

// Element is one of the four elemental affinities.
type Element string

const (
	ElementAir   Element = "Air"
	ElementEarth Element = "Earth"
	ElementFire  Element = "Fire"
	ElementWater Element = "Water"
)

// Elements lists all elements in canonical order.
var Elements = []Element{ElementAir, ElementEarth, ElementFire, ElementWater}

// Rarity determines how many copies of a base name a deck may run.
type Rarity string

const (
	RarityOrdinary    Rarity = "Ordinary"
	RarityExceptional Rarity = "Exceptional"
	RarityElite       Rarity = "Elite"
	RarityUnique      Rarity = "Unique"
)

// Card represents one canonical card record. Records are read-only inputs
// to the engine; nothing in this module mutates them.
type Card struct {
	// Name is the full printing name; BaseName is the identity used for
	// copy-counting. Multiple printings may share a base name.
	Name     string `json:"name"`
	BaseName string `json:"base_name"`

	Category Category `json:"category"`
	Subtype  string   `json:"subtype,omitempty"`

	Elements []Element `json:"elements"`

	// Cost is the mana cost to play the card. Thresholds are the
	// per-element resource requirements (for sites and avatars, the
	// per-element contribution they provide instead).
	Cost       int             `json:"cost"`
	Thresholds map[Element]int `json:"thresholds,omitempty"`

	Rarity Rarity `json:"rarity"`

	// AbilityText is the free-text rules box used for pattern matching.
	AbilityText string `json:"ability_text,omitempty"`
}

// Base returns the copy-counting identity of the card, falling back to
// Name for records without an explicit base name.
func (c *Card) Base() string {
	if c.BaseName != "" {
		return c.BaseName
	}
	return c.Name
}

// HasElement reports whether the card carries the given element tag.
func (c *Card) HasElement(e Element) bool {
	for _, el := range c.Elements {
		if el == e {
			return true
		}
	}
	return false
}

// IsSpell reports whether the card belongs in a spellbook.
func (c *Card) IsSpell() bool {
	switch c.Category {
	case CategoryMinion, CategoryArtifact, CategoryAura, CategoryMagic:
		return true
	}
	return false
}

// AbilityContains reports whether the ability text contains the given
// phrase, case-insensitively.
func (c *Card) AbilityContains(phrase string) bool {
	return strings.Contains(strings.ToLower(c.AbilityText), strings.ToLower(phrase))
}

// CopyLimit returns the maximum number of copies of a base name allowed
// for the card's rarity, per the standard deck-legality table.
func CopyLimit(r Rarity) int {
	switch r {
	case RarityOrdinary:
		return 4
	case RarityExceptional:
		return 3
	case RarityElite:
		return 2
	case RarityUnique:
		return 1
	}
	return 4
}
