// Package synergy implements combo detection and multi-signal synergy
// scoring for deck construction.
package synergy

import (
	"fmt"
	"log"
	"strings"

	"github.com/wsloan/spellforge/internal/cards"
)

// Pattern is a registered combo-detection rule. Patterns are evaluated in
// registration order; order is part of the contract because it defines
// reporting order and tie-breaks downstream.
type Pattern struct {
	// Name identifies the pattern in instances and diagnostics.
	Name string

	// Description is a template rendered per instance. It receives the
	// participant count and the group key (empty when the pattern does
	// not group).
	Description string

	// MinCount is the minimum number of participating cards for a group
	// to become an instance. Groups below this are silently dropped.
	MinCount int

	// Match reports whether a single card participates in the pattern.
	Match func(c *cards.Card) bool

	// GroupKey optionally partitions matching cards into independent
	// occurrences (e.g. by shared subtype). A nil GroupKey puts all
	// matching cards into one group.
	GroupKey func(c *cards.Card) string

	// BaseWeight is the pattern's base synergy weight.
	BaseWeight float64

	// Scale converts base weight and participant count into the
	// instance's synergy value. Must be pure and monotonically
	// non-decreasing in count. Nil selects the default linear-capped
	// scaling.
	Scale func(baseWeight float64, count int) float64
}

// defaultScaleCap bounds the participant count fed into the default
// scaling so a single oversized group cannot dominate every other signal.
const defaultScaleCap = 6

// defaultScale is weight x count, capped.
func defaultScale(baseWeight float64, count int) float64 {
	if count > defaultScaleCap {
		count = defaultScaleCap
	}
	return baseWeight * float64(count)
}

// Instance is one concrete combo occurrence within a card set.
type Instance struct {
	Pattern     string        `json:"pattern"`
	Cards       []*cards.Card `json:"-"`
	CardNames   []string      `json:"cards"`
	Synergy     float64       `json:"synergy"`
	Description string        `json:"description"`
}

// Detector evaluates an ordered pattern registry against card sets.
type Detector struct {
	patterns []Pattern
	logger   *log.Logger
}

// NewDetector creates a detector over the given registry. A nil logger
// falls back to the standard logger.
func NewDetector(patterns []Pattern, logger *log.Logger) *Detector {
	if logger == nil {
		logger = log.Default()
	}
	return &Detector{patterns: patterns, logger: logger}
}

// Patterns returns the detector's registry in registration order.
func (d *Detector) Patterns() []Pattern {
	return d.patterns
}

// Detect scans the card set and emits one instance per qualifying group
// of each registered pattern, in registration order. Within a pattern,
// participants appear in the input set's iteration order. An empty set
// yields an empty result. A panicking predicate is isolated: the pattern
// contributes nothing for this call, and detection continues.
func (d *Detector) Detect(set []*cards.Card) []Instance {
	var instances []Instance
	for i := range d.patterns {
		p := &d.patterns[i]
		instances = append(instances, d.detectPattern(p, set)...)
	}
	return instances
}

// detectPattern evaluates a single pattern, recovering from predicate
// panics so one malformed pattern cannot abort the whole pass.
func (d *Detector) detectPattern(p *Pattern, set []*cards.Card) (out []Instance) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Printf("synergy: pattern %q failed: %v (skipping for this call)", p.Name, r)
			out = nil
		}
	}()

	// Group matching cards, preserving both input order within a group
	// and first-seen order across groups.
	groups := make(map[string][]*cards.Card)
	var order []string
	for _, c := range set {
		if !p.Match(c) {
			continue
		}
		key := ""
		if p.GroupKey != nil {
			key = p.GroupKey(c)
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], c)
	}

	minCount := p.MinCount
	if minCount < 2 {
		minCount = 2
	}
	scale := p.Scale
	if scale == nil {
		scale = defaultScale
	}

	for _, key := range order {
		members := groups[key]
		if len(members) < minCount {
			continue
		}
		names := make([]string, len(members))
		for i, m := range members {
			names[i] = m.Name
		}
		out = append(out, Instance{
			Pattern:     p.Name,
			Cards:       members,
			CardNames:   names,
			Synergy:     scale(p.BaseWeight, len(members)),
			Description: renderDescription(p.Description, len(members), key),
		})
	}
	return out
}

// TotalSynergy sums the synergy values of a detection result.
func TotalSynergy(instances []Instance) float64 {
	total := 0.0
	for _, inst := range instances {
		total += inst.Synergy
	}
	return total
}

// renderDescription fills the count and group-key slots of a pattern's
// description template.
func renderDescription(template string, count int, key string) string {
	s := strings.ReplaceAll(template, "{count}", fmt.Sprintf("%d", count))
	return strings.ReplaceAll(s, "{group}", key)
}
