package synergy

import "github.com/wsloan/spellforge/internal/cards"

// ComboContribution computes the marginal combo synergy the candidate
// would add if appended to the context: the detection total over
// context+card minus the total over the context alone. Instances
// untouched by the addition appear identically on both sides and cancel
// exactly, so nothing is double-counted. Scaling functions are monotone
// non-decreasing in participant count, so the delta is clamped at zero
// only as a guard against misbehaving custom patterns.
func ComboContribution(d *Detector, card *cards.Card, context []*cards.Card) float64 {
	before := TotalSynergy(d.Detect(context))

	extended := make([]*cards.Card, 0, len(context)+1)
	extended = append(extended, context...)
	extended = append(extended, card)
	after := TotalSynergy(d.Detect(extended))

	delta := after - before
	if delta < 0 {
		return 0.0
	}
	return delta
}
