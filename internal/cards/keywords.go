package cards

import "strings"

// MechanicKeywords is the fixed taxonomy of ability keywords used by the
// mechanical sub-scorer. This is deliberately simpler than the combo
// pattern registry: plain token presence, no grouping or arity rules.
var MechanicKeywords = []string{
	"airborne",
	"burrowing",
	"charge",
	"deathrite",
	"disable",
	"genesis",
	"immobile",
	"lethal",
	"movement",
	"ranged",
	"spellcaster",
	"stealth",
	"submerge",
	"voidwalk",
}

// KeywordsOf returns the mechanic keywords present in the card's ability
// text, in taxonomy order.
func KeywordsOf(c *Card) []string {
	text := strings.ToLower(c.AbilityText)
	var found []string
	for _, kw := range MechanicKeywords {
		if strings.Contains(text, kw) {
			found = append(found, kw)
		}
	}
	return found
}
