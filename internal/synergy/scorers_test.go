package synergy

import (
	"testing"

	"github.com/wsloan/spellforge/internal/cards"
)

func fireMinion(name string) *cards.Card {
	return minion(name, "", "", cards.ElementFire)
}

func TestElementalScore(t *testing.T) {
	fireContext := []*cards.Card{fireMinion("Ember Scout"), fireMinion("Flame Dancer")}

	tests := []struct {
		name       string
		card       *cards.Card
		context    []*cards.Card
		strictness ElementStrictness
		want       float64
	}{
		{
			name:    "colorless card scores the fixed modest rate",
			card:    artifact("Plain Rock", "", ""),
			context: fireContext,
			want:    0.25,
		},
		{
			name: "empty context is neutral",
			card: fireMinion("Ember Scout"),
			want: 0.5,
		},
		{
			name:    "matching the dominant element scores full rank weight",
			card:    fireMinion("Cinder Wisp"),
			context: fireContext,
			want:    1.0,
		},
		{
			name:    "off-element is ignored under lenient strictness",
			card:    minion("Tide Caller", "", "", cards.ElementWater),
			context: fireContext,
			want:    0.1,
		},
		{
			name:       "off-element scores zero under strict strictness",
			card:       minion("Tide Caller", "", "", cards.ElementWater),
			context:    fireContext,
			strictness: StrictnessStrict,
			want:       0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ElementalScore(tt.card, tt.context, tt.strictness)
			if got != tt.want {
				t.Errorf("ElementalScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestElementalScoreRanksSplashBelowDominant(t *testing.T) {
	// Three fire cards, one water card: fire is dominant, water a splash.
	context := []*cards.Card{
		fireMinion("A"), fireMinion("B"), fireMinion("C"),
		minion("D", "", "", cards.ElementWater),
	}

	fire := ElementalScore(fireMinion("E"), context, StrictnessLenient)
	water := ElementalScore(minion("F", "", "", cards.ElementWater), context, StrictnessLenient)
	if fire <= water {
		t.Errorf("dominant-element match (%v) should outrank splash match (%v)", fire, water)
	}
}

func TestMechanicalScore(t *testing.T) {
	context := []*cards.Card{
		minion("A", "", "Airborne."),
		minion("B", "", "Airborne, Charge."),
	}

	if got := MechanicalScore(minion("C", "", "Airborne."), context); got != 0.8 {
		t.Errorf("two airborne sharers should score 0.4 x 2 = 0.8, got %v", got)
	}
	if got := MechanicalScore(minion("D", "", ""), context); got != 0.0 {
		t.Errorf("a card with no keywords scores nothing, got %v", got)
	}
	if got := MechanicalScore(minion("E", "", "Stealth."), context); got != 0.0 {
		t.Errorf("no shared keywords scores nothing, got %v", got)
	}
}

func TestMechanicalScoreDiminishingReturns(t *testing.T) {
	three := []*cards.Card{
		minion("A", "", "Charge."), minion("B", "", "Charge."), minion("C", "", "Charge."),
	}
	six := append(append([]*cards.Card{}, three...),
		minion("D", "", "Charge."), minion("E", "", "Charge."), minion("F", "", "Charge."))

	candidate := minion("G", "", "Charge.")
	if MechanicalScore(candidate, three) != MechanicalScore(candidate, six) {
		t.Error("keyword reward should plateau past three sharers")
	}
}

func TestCurveScoreEmptyContext(t *testing.T) {
	cheap := &cards.Card{Name: "A", Category: cards.CategoryMagic, Cost: 1}
	if got := CurveScore(cheap, nil); got != 0.20 {
		t.Errorf("empty deck seeds with the bucket target, got %v", got)
	}
	mid := &cards.Card{Name: "B", Category: cards.CategoryMagic, Cost: 3}
	if got := CurveScore(mid, nil); got != 0.40 {
		t.Errorf("empty deck seeds with the bucket target, got %v", got)
	}
}

func TestCurveScoreSaturatedBucket(t *testing.T) {
	// Context is entirely cost-2 spells, so the 2-3 bucket is far past
	// its 40% target.
	var context []*cards.Card
	for _, name := range []string{"A", "B", "C", "D"} {
		context = append(context, &cards.Card{Name: name, Category: cards.CategoryMagic, Cost: 2})
	}

	if got := CurveScore(&cards.Card{Name: "E", Category: cards.CategoryMagic, Cost: 3}, context); got != 0.0 {
		t.Errorf("saturated bucket scores zero, never negative: got %v", got)
	}
	if got := CurveScore(&cards.Card{Name: "F", Category: cards.CategoryMagic, Cost: 1}, context); got <= 0 {
		t.Errorf("wide-open bucket should score positive, got %v", got)
	}
}

func TestCurveScoreIgnoresNonSpells(t *testing.T) {
	site := &cards.Card{Name: "Old Mill", Category: cards.CategorySite}
	avatar := &cards.Card{Name: "The Warden", Category: cards.CategoryAvatar}
	candidate := &cards.Card{Name: "A", Category: cards.CategoryMagic, Cost: 1}

	withNonSpells := CurveScore(candidate, []*cards.Card{site, avatar})
	if withNonSpells != CurveScore(candidate, nil) {
		t.Error("sites and avatars must not shape the spell curve")
	}
}

func TestScorersAreDeterministic(t *testing.T) {
	card := minion("C", "", "Airborne.", cards.ElementFire)
	context := []*cards.Card{
		minion("A", "", "Airborne.", cards.ElementFire),
		minion("B", "", "Charge.", cards.ElementWater),
	}

	for i := 0; i < 10; i++ {
		if ElementalScore(card, context, StrictnessLenient) != ElementalScore(card, context, StrictnessLenient) {
			t.Fatal("ElementalScore must be pure")
		}
		if MechanicalScore(card, context) != MechanicalScore(card, context) {
			t.Fatal("MechanicalScore must be pure")
		}
		if CurveScore(card, context) != CurveScore(card, context) {
			t.Fatal("CurveScore must be pure")
		}
	}
}
