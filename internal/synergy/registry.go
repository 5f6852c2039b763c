package synergy

import (
	"strings"

	"github.com/wsloan/spellforge/internal/cards"
)

// abilityHas reports whether the card's ability text mentions any of the
// given phrases, case-insensitively.
func abilityHas(c *cards.Card, phrases ...string) bool {
	text := strings.ToLower(c.AbilityText)
	for _, p := range phrases {
		if strings.Contains(text, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// DefaultPatterns is the built-in combo pattern registry. The slice order
// is the registration order and therefore the detection and reporting
// order; new patterns go at the end.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{
			Name:        "equipment_suite",
			Description: "{count} Equipment cards that arm the same bearers",
			MinCount:    2,
			BaseWeight:  1.5,
			Match: func(c *cards.Card) bool {
				return strings.EqualFold(c.Subtype, "Equipment") ||
					(c.Category == cards.CategoryArtifact && abilityHas(c, "equipment", "bearer", "wield"))
			},
		},
		{
			Name:        "tribal_subtype",
			Description: "{count} {group} minions sharing a tribe",
			MinCount:    3,
			BaseWeight:  1.0,
			Match: func(c *cards.Card) bool {
				return c.Category == cards.CategoryMinion && c.Subtype != ""
			},
			GroupKey: func(c *cards.Card) string { return c.Subtype },
		},
		{
			Name:        "airborne_assault",
			Description: "{count} airborne cards attacking over ground defenses",
			MinCount:    2,
			BaseWeight:  1.2,
			Match: func(c *cards.Card) bool {
				return abilityHas(c, "airborne")
			},
		},
		{
			Name:        "spellcaster_engine",
			Description: "{count} spellcasters and magic payoffs",
			MinCount:    2,
			BaseWeight:  1.4,
			Match: func(c *cards.Card) bool {
				if c.Category == cards.CategoryMinion && abilityHas(c, "spellcaster") {
					return true
				}
				return c.Category == cards.CategoryMagic && abilityHas(c, "spell", "cast")
			},
		},
		{
			Name:        "burn_package",
			Description: "{count} direct-damage effects stacking on the same target",
			MinCount:    2,
			BaseWeight:  1.1,
			Match: func(c *cards.Card) bool {
				return abilityHas(c, "deals damage", "deal 1 damage", "deal 2 damage", "deal 3 damage", "burn")
			},
		},
		{
			Name:        "deathrite_chain",
			Description: "{count} cards profiting when minions die",
			MinCount:    2,
			BaseWeight:  1.3,
			Match: func(c *cards.Card) bool {
				return abilityHas(c, "deathrite", "dies", "when this minion is killed", "graveyard")
			},
		},
		{
			Name:        "genesis_swarm",
			Description: "{count} token producers flooding the battlefield",
			MinCount:    2,
			BaseWeight:  1.2,
			Match: func(c *cards.Card) bool {
				return abilityHas(c, "genesis", "summon a", "conjure a", "token")
			},
		},
		{
			Name:        "submerged_depths",
			Description: "{count} water-dwelling cards controlling the seas",
			MinCount:    2,
			BaseWeight:  1.0,
			Match: func(c *cards.Card) bool {
				return abilityHas(c, "submerge", "waterbound", "underwater")
			},
		},
		{
			Name:        "ranged_line",
			Description: "{count} ranged attackers striking from safety",
			MinCount:    2,
			BaseWeight:  1.0,
			Match: func(c *cards.Card) bool {
				return abilityHas(c, "ranged", "shoot", "projectile")
			},
		},
		{
			Name:        "stealth_operation",
			Description: "{count} stealth cards slipping past defenders",
			MinCount:    2,
			BaseWeight:  1.1,
			Match: func(c *cards.Card) bool {
				return abilityHas(c, "stealth", "disguised", "cannot be intercepted")
			},
		},
		{
			Name:        "voidwalk_recursion",
			Description: "{count} cards moving through the void",
			MinCount:    2,
			BaseWeight:  1.2,
			Match: func(c *cards.Card) bool {
				return abilityHas(c, "voidwalk", "banish", "from the void")
			},
		},
		{
			Name:        "aura_enchanters",
			Description: "{count} auras warping the same region",
			MinCount:    2,
			BaseWeight:  0.9,
			Match: func(c *cards.Card) bool {
				return c.Category == cards.CategoryAura ||
					abilityHas(c, "while this aura", "enchanted")
			},
		},
		{
			Name:        "charge_rush",
			Description: "{count} charge cards pressing the early game",
			MinCount:    2,
			BaseWeight:  1.0,
			Match: func(c *cards.Card) bool {
				return abilityHas(c, "charge", "hasty", "attacks immediately")
			},
		},
		{
			Name:        "lethal_removal",
			Description: "{count} lethal threats trading up",
			MinCount:    2,
			BaseWeight:  1.0,
			Match: func(c *cards.Card) bool {
				return abilityHas(c, "lethal", "destroy target", "kill target")
			},
		},
	}
}
