package synergy

import (
	"fmt"
	"math"

	"github.com/wsloan/spellforge/internal/archetype"
	"github.com/wsloan/spellforge/internal/cards"
)

// Weights controls the relative importance of the four synergy signals.
// The defaults are calibration starting points, not load-bearing design;
// they live in configuration rather than scattered through scoring logic.
type Weights struct {
	Elemental  float64 `toml:"elemental" json:"elemental"`
	Mechanical float64 `toml:"mechanical" json:"mechanical"`
	Curve      float64 `toml:"curve" json:"curve"`
	Combo      float64 `toml:"combo" json:"combo"`
}

// DefaultWeights returns the baseline signal weights.
func DefaultWeights() Weights {
	return Weights{
		Elemental:  0.30,
		Mechanical: 0.20,
		Curve:      0.20,
		Combo:      0.30,
	}
}

// ErrInvalidWeights is returned for malformed weight configuration.
var ErrInvalidWeights = fmt.Errorf("invalid synergy weights")

// Validate rejects negative weights and all-zero weight sets before any
// selection begins.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"elemental":  w.Elemental,
		"mechanical": w.Mechanical,
		"curve":      w.Curve,
		"combo":      w.Combo,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s = %v", ErrInvalidWeights, name, v)
		}
	}
	if w.Elemental+w.Mechanical+w.Curve+w.Combo == 0 {
		return fmt.Errorf("%w: all weights are zero", ErrInvalidWeights)
	}
	return nil
}

// applyPreference reweights the signals for an archetype preference.
func (w Weights) applyPreference(p archetype.Preference) Weights {
	m := archetype.MultipliersFor(p)
	return Weights{
		Elemental:  w.Elemental * m.Elemental,
		Mechanical: w.Mechanical * m.Mechanical,
		Curve:      w.Curve * m.Curve,
		Combo:      w.Combo * m.Combo,
	}
}

// Breakdown is the per-signal scoring result for one (card, context)
// evaluation. Breakdowns are derived, transient values; they are
// recomputed whenever the context changes.
type Breakdown struct {
	Card       string  `json:"card"`
	Elemental  float64 `json:"elemental"`
	Mechanical float64 `json:"mechanical"`
	Curve      float64 `json:"curve"`
	Combo      float64 `json:"combo"`
	Aggregate  float64 `json:"aggregate"`
}

// Analyzer aggregates the three sub-scores and the combo contribution
// into one comparable scalar per (card, context) pair, memoized through
// the analysis cache.
type Analyzer struct {
	detector   *Detector
	cache      *Cache
	weights    Weights
	strictness ElementStrictness
}

// NewAnalyzer creates an analyzer with the given detector, cache, and
// base weights already adjusted for the build's archetype preference.
// The weights must have been validated by the caller.
func NewAnalyzer(d *Detector, cache *Cache, w Weights, pref archetype.Preference, strictness ElementStrictness) *Analyzer {
	return &Analyzer{
		detector:   d,
		cache:      cache,
		weights:    w.applyPreference(pref),
		strictness: strictness,
	}
}

// Weights returns the analyzer's effective (preference-adjusted) weights.
func (a *Analyzer) Weights() Weights {
	return a.weights
}

// Detector returns the analyzer's combo detector.
func (a *Analyzer) Detector() *Detector {
	return a.detector
}

// CacheStats exposes the underlying cache counters.
func (a *Analyzer) CacheStats() CacheStats {
	return a.cache.Stats()
}

// CalculateSynergy returns the aggregate synergy of the candidate against
// the context. Equal inputs always yield equal, finite, non-negative
// outputs; results are served from the cache when the (card, context)
// fingerprint has been evaluated before.
func (a *Analyzer) CalculateSynergy(card *cards.Card, context []*cards.Card) float64 {
	fp := ContextFingerprint(context)
	return a.cache.Score(scoreKey(card, fp), func() float64 {
		return a.compute(card, context, fp)
	})
}

// BreakdownFor returns the per-signal breakdown behind a candidate's
// aggregate score. Used for diagnostics and pick justification.
func (a *Analyzer) BreakdownFor(card *cards.Card, context []*cards.Card) Breakdown {
	fp := ContextFingerprint(context)
	elemental := ElementalScore(card, context, a.strictness)
	mechanical := MechanicalScore(card, context)
	curve := CurveScore(card, context)
	combo := a.comboContribution(card, context, fp)
	return Breakdown{
		Card:       card.Name,
		Elemental:  elemental,
		Mechanical: mechanical,
		Curve:      curve,
		Combo:      combo,
		Aggregate: a.weights.Elemental*elemental +
			a.weights.Mechanical*mechanical +
			a.weights.Curve*curve +
			a.weights.Combo*combo,
	}
}

// compute performs the uncached aggregate evaluation.
func (a *Analyzer) compute(card *cards.Card, context []*cards.Card, contextFP string) float64 {
	score := a.weights.Elemental*ElementalScore(card, context, a.strictness) +
		a.weights.Mechanical*MechanicalScore(card, context) +
		a.weights.Curve*CurveScore(card, context) +
		a.weights.Combo*a.comboContribution(card, context, contextFP)
	if score < 0 || math.IsNaN(score) {
		return 0.0
	}
	return score
}

// comboContribution is ComboContribution routed through the cache: the
// detection total for the bare context is shared by every candidate
// scored in the same iteration.
func (a *Analyzer) comboContribution(card *cards.Card, context []*cards.Card, contextFP string) float64 {
	before := a.cache.Score(detectKey(contextFP), func() float64 {
		return TotalSynergy(a.detector.Detect(context))
	})

	extended := make([]*cards.Card, 0, len(context)+1)
	extended = append(extended, context...)
	extended = append(extended, card)
	after := a.cache.Score(detectKey(ContextFingerprint(extended)), func() float64 {
		return TotalSynergy(a.detector.Detect(extended))
	})

	delta := after - before
	if delta < 0 {
		return 0.0
	}
	return delta
}
