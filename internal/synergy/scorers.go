package synergy

import (
	"sort"

	"github.com/wsloan/spellforge/internal/cards"
)

// The three sub-scorers are pure functions of (card, context). They never
// mutate their inputs and never consult global state; that purity is what
// makes the analysis cache valid.

// ElementStrictness controls how off-element candidates are treated by
// the elemental scorer.
type ElementStrictness int

const (
	// StrictnessLenient ignores off-element cards (score zero).
	StrictnessLenient ElementStrictness = iota
	// StrictnessStrict additionally discounts partially on-element cards.
	StrictnessStrict
)

// dominantElements returns the context's elements ordered by frequency,
// most common first, ties broken in canonical element order.
func dominantElements(context []*cards.Card) []cards.Element {
	counts := make(map[cards.Element]int)
	for _, c := range context {
		for _, e := range c.Elements {
			counts[e]++
		}
	}
	elems := make([]cards.Element, 0, len(counts))
	for _, e := range cards.Elements {
		if counts[e] > 0 {
			elems = append(elems, e)
		}
	}
	sort.SliceStable(elems, func(i, j int) bool {
		return counts[elems[i]] > counts[elems[j]]
	})
	return elems
}

// ElementalScore rewards overlap between the candidate's elements and the
// dominant elements already present in the context. An empty context is
// neutral ground: every candidate scores the same small constant so the
// first pick is decided by the other signals.
func ElementalScore(card *cards.Card, context []*cards.Card, strictness ElementStrictness) float64 {
	if len(card.Elements) == 0 {
		// Colorless cards fit any deck at a modest rate.
		return 0.25
	}

	dominant := dominantElements(context)
	if len(dominant) == 0 {
		return 0.5
	}

	// Weight overlap by dominance rank: matching the most common element
	// counts more than matching a splash.
	score := 0.0
	for rank, e := range dominant {
		if card.HasElement(e) {
			score += 1.0 / float64(rank+1)
		}
	}

	if strictness == StrictnessStrict && score == 0 {
		return 0.0
	}
	if score == 0 {
		// Off-element under lenient strictness: ignored, not penalized.
		return 0.1
	}
	return score
}

// MechanicalScore rewards shared mechanic keywords between the candidate
// and the context. It is simple token overlap over the fixed taxonomy,
// not full pattern matching.
func MechanicalScore(card *cards.Card, context []*cards.Card) float64 {
	own := cards.KeywordsOf(card)
	if len(own) == 0 {
		return 0.0
	}

	freq := make(map[string]int)
	for _, c := range context {
		for _, kw := range cards.KeywordsOf(c) {
			freq[kw]++
		}
	}

	score := 0.0
	for _, kw := range own {
		if n := freq[kw]; n > 0 {
			// Diminishing returns past three sharers.
			if n > 3 {
				n = 3
			}
			score += 0.4 * float64(n)
		}
	}
	return score
}

// curveTarget is the ideal share of spells per cost bucket. The shape
// favors low and mid costs over expensive finishers.
var curveTarget = []struct {
	maxCost int
	share   float64
}{
	{1, 0.20},
	{3, 0.40},
	{5, 0.25},
	{1 << 30, 0.15},
}

// curveBucket returns the index of the cost bucket a cost falls into.
func curveBucket(cost int) int {
	for i, b := range curveTarget {
		if cost <= b.maxCost {
			return i
		}
	}
	return len(curveTarget) - 1
}

// CurveScore rewards a candidate whose cost fills an underrepresented
// bucket of the context's cost distribution and scores zero for buckets
// already at or past their target share. Only spell cards shape the
// curve; avatars and sites in the context are ignored.
func CurveScore(card *cards.Card, context []*cards.Card) float64 {
	bucket := curveBucket(card.Cost)

	total := 0
	count := 0
	for _, c := range context {
		if !c.IsSpell() {
			continue
		}
		total++
		if curveBucket(c.Cost) == bucket {
			count++
		}
	}
	if total == 0 {
		// Everything is underrepresented in an empty deck; seed with the
		// bucket's target share so cheap cards lead.
		return curveTarget[bucket].share
	}

	actual := float64(count) / float64(total)
	deficit := curveTarget[bucket].share - actual
	if deficit <= 0 {
		// Saturated bucket. Never negative: overcrowding is penalized by
		// scoring nothing, not by going below zero.
		return 0.0
	}
	// Scale the deficit so a wide-open bucket is worth about one point.
	return deficit / curveTarget[bucket].share
}
