package archetype

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		token   string
		want    Preference
		wantErr bool
	}{
		{"", Balanced, false},
		{"Balanced", Balanced, false},
		{"combo", Combo, false},
		{"AGGRO", Aggro, false},
		{"Control", Control, false},
		{"midRange", Midrange, false},
		{"tempo", "", true},
		{"Combos", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := Parse(tt.token)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.token, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrUnknownPreference) {
					t.Errorf("Parse(%q) error must wrap ErrUnknownPreference, got %v", tt.token, err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestMultipliersFor(t *testing.T) {
	if m := MultipliersFor(Balanced); m.Elemental != 1.0 || m.Combo != 1.0 {
		t.Errorf("Balanced must be identity, got %+v", m)
	}

	combo := MultipliersFor(Combo)
	if combo.Combo <= 1.0 {
		t.Errorf("Combo preference must boost combo contribution, got %v", combo.Combo)
	}
	if combo.Curve >= 1.0 {
		t.Errorf("Combo preference must relax curve fit, got %v", combo.Curve)
	}

	if m := MultipliersFor(Preference("bogus")); m != MultipliersFor(Balanced) {
		t.Errorf("unknown preference falls back to Balanced, got %+v", m)
	}
}
