// Package deck assembles legal spellbooks from candidate card pools by
// constrained greedy selection over the synergy analyzer.
package deck

import (
	"github.com/wsloan/spellforge/internal/cards"
	"github.com/wsloan/spellforge/internal/synergy"
)

// Pools partitions the candidate cards by category. Slice order within
// each pool is the input order used for deterministic tie-breaking.
type Pools struct {
	Avatars   []*cards.Card `json:"avatars,omitempty"`
	Sites     []*cards.Card `json:"sites,omitempty"`
	Minions   []*cards.Card `json:"minions,omitempty"`
	Artifacts []*cards.Card `json:"artifacts,omitempty"`
	Auras     []*cards.Card `json:"auras,omitempty"`
	Magics    []*cards.Card `json:"magics,omitempty"`
}

// SpellCandidates returns the spell pools concatenated in category
// order. The resulting index order is the builder's tie-break order.
func (p *Pools) SpellCandidates() []*cards.Card {
	out := make([]*cards.Card, 0, len(p.Minions)+len(p.Artifacts)+len(p.Auras)+len(p.Magics))
	out = append(out, p.Minions...)
	out = append(out, p.Artifacts...)
	out = append(out, p.Auras...)
	out = append(out, p.Magics...)
	return out
}

// All returns every pooled card: avatars, sites, then spells.
func (p *Pools) All() []*cards.Card {
	out := make([]*cards.Card, 0, len(p.Avatars)+len(p.Sites))
	out = append(out, p.Avatars...)
	out = append(out, p.Sites...)
	return append(out, p.SpellCandidates()...)
}

// Context is the partially built deck at a point in selection. Only the
// builder mutates it, one card at a time; scorers receive its Reference
// snapshot and never write back.
type Context struct {
	Avatar *cards.Card
	Sites  []*cards.Card
	Spells []*cards.Card

	copyCounts map[string]int
}

// newContext creates an empty deck context.
func newContext() *Context {
	return &Context{copyCounts: make(map[string]int)}
}

// Reference returns the card sequence scorers evaluate candidates
// against: avatar, then sites, then spells in pick order.
func (c *Context) Reference() []*cards.Card {
	ref := make([]*cards.Card, 0, 1+len(c.Sites)+len(c.Spells))
	if c.Avatar != nil {
		ref = append(ref, c.Avatar)
	}
	ref = append(ref, c.Sites...)
	ref = append(ref, c.Spells...)
	return ref
}

// addSpell appends a spell and bumps its base-name copy count.
func (c *Context) addSpell(card *cards.Card) {
	c.Spells = append(c.Spells, card)
	c.copyCounts[card.Base()]++
}

// copies returns the number of copies of the base name already picked.
func (c *Context) copies(base string) int {
	return c.copyCounts[base]
}

// DominantElements returns the elements of the partial deck ordered by
// frequency, derived from avatar, sites, and spells.
func (c *Context) DominantElements() []cards.Element {
	counts := make(map[cards.Element]int)
	for _, card := range c.Reference() {
		for _, e := range card.Elements {
			counts[e]++
		}
	}
	var out []cards.Element
	for _, e := range cards.Elements {
		if counts[e] > 0 {
			out = append(out, e)
		}
	}
	// Stable by canonical order, then sort by count descending.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && counts[out[j]] > counts[out[j-1]]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// Pick records one spell selection and the scoring that justified it.
type Pick struct {
	Iteration int               `json:"iteration"`
	Card      string            `json:"card"`
	Score     float64           `json:"score"`
	Breakdown synergy.Breakdown `json:"breakdown"`
}

// Spellbook is the finished deck: avatar, sites, the ordered spell list,
// and aggregate metadata. It is the only value with a lifecycle beyond
// the build call.
type Spellbook struct {
	ID     string        `json:"id"`
	Avatar *cards.Card   `json:"avatar,omitempty"`
	Sites  []*cards.Card `json:"sites"`
	Spells []*cards.Card `json:"spells"`

	TotalSynergy float64                `json:"total_synergy"`
	Counts       map[cards.Category]int `json:"counts"`

	// InsufficientPool is set when the pools ran out before the target
	// spell count was reached. The partial result is still returned.
	InsufficientPool bool `json:"insufficient_pool"`

	// Diagnostics, populated only when requested.
	Combos []synergy.Instance `json:"combos,omitempty"`
	Picks  []Pick             `json:"picks,omitempty"`

	CacheStats synergy.CacheStats `json:"cache_stats"`
}

// countCategories tallies the spellbook's per-category counts.
func countCategories(spells []*cards.Card) map[cards.Category]int {
	counts := make(map[cards.Category]int)
	for _, c := range spells {
		counts[c.Category]++
	}
	return counts
}
