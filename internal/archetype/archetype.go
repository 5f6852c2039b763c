// Package archetype defines deck archetype preferences and the aggregator
// weight adjustments they imply.
package archetype

import (
	"fmt"
	"strings"
)

// Preference is an enumerated deck-building bias.
type Preference string

const (
	Balanced Preference = "Balanced"
	Combo    Preference = "Combo"
	Aggro    Preference = "Aggro"
	Control  Preference = "Control"
	Midrange Preference = "Midrange"
)

// Preferences lists the valid archetype preference tokens.
var Preferences = []Preference{Balanced, Combo, Aggro, Control, Midrange}

// ErrUnknownPreference is returned when an archetype token is not one of
// the enumerated preferences. This is a configuration error: the builder
// rejects it before any selection begins.
var ErrUnknownPreference = fmt.Errorf("unknown archetype preference")

// Parse resolves a preference token case-insensitively. An empty token
// resolves to Balanced.
func Parse(token string) (Preference, error) {
	if token == "" {
		return Balanced, nil
	}
	for _, p := range Preferences {
		if strings.EqualFold(token, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPreference, token)
}

// Multipliers describes how a preference reweights the four synergy
// signals relative to the configured base weights.
type Multipliers struct {
	Elemental  float64
	Mechanical float64
	Curve      float64
	Combo      float64
}

// preferenceMultipliers maps each archetype to its signal adjustments.
// Combo decks chase combo contribution at the expense of curve fit;
// Aggro leans on curve shape; Control favors elemental consistency.
var preferenceMultipliers = map[Preference]Multipliers{
	Balanced: {Elemental: 1.0, Mechanical: 1.0, Curve: 1.0, Combo: 1.0},
	Combo:    {Elemental: 0.8, Mechanical: 1.1, Curve: 0.6, Combo: 1.8},
	Aggro:    {Elemental: 1.0, Mechanical: 1.1, Curve: 1.5, Combo: 0.7},
	Control:  {Elemental: 1.4, Mechanical: 1.0, Curve: 0.9, Combo: 0.9},
	Midrange: {Elemental: 1.1, Mechanical: 1.2, Curve: 1.1, Combo: 0.8},
}

// MultipliersFor returns the weight adjustments for a preference.
func MultipliersFor(p Preference) Multipliers {
	if m, ok := preferenceMultipliers[p]; ok {
		return m
	}
	return preferenceMultipliers[Balanced]
}
