package deck

import (
	"errors"
	"fmt"
	"io"
	"log"
	"testing"

	"github.com/wsloan/spellforge/internal/archetype"
	"github.com/wsloan/spellforge/internal/cards"
	"github.com/wsloan/spellforge/internal/synergy"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func testCard(name string, category cards.Category, rarity cards.Rarity, cost int, ability string, elements ...cards.Element) *cards.Card {
	return &cards.Card{
		Name:        name,
		Category:    category,
		Elements:    elements,
		Cost:        cost,
		Rarity:      rarity,
		AbilityText: ability,
	}
}

// testPools builds a fire-leaning pool large enough for small builds.
func testPools() *Pools {
	p := &Pools{
		Avatars: []*cards.Card{
			testCard("The Flamecaller", cards.CategoryAvatar, cards.RarityUnique, 0, "", cards.ElementFire),
			testCard("The Tidebinder", cards.CategoryAvatar, cards.RarityUnique, 0, "", cards.ElementWater),
		},
	}
	for i := 0; i < 8; i++ {
		element := cards.ElementFire
		if i%3 == 2 {
			element = cards.ElementWater
		}
		p.Sites = append(p.Sites, &cards.Card{
			Name:       fmt.Sprintf("Site %d", i),
			Category:   cards.CategorySite,
			Elements:   []cards.Element{element},
			Rarity:     cards.RarityOrdinary,
			Thresholds: map[cards.Element]int{element: 1},
		})
	}
	abilities := []string{"Airborne.", "Charge.", "Spellcaster.", "Deals damage to target minion.", ""}
	for i := 0; i < 12; i++ {
		p.Minions = append(p.Minions, testCard(
			fmt.Sprintf("Fire Minion %d", i),
			cards.CategoryMinion, cards.RarityOrdinary,
			1+i%5, abilities[i%len(abilities)], cards.ElementFire,
		))
	}
	for i := 0; i < 4; i++ {
		p.Magics = append(p.Magics, testCard(
			fmt.Sprintf("Fire Magic %d", i),
			cards.CategoryMagic, cards.RarityOrdinary,
			2+i, "Deals damage to each enemy minion.", cards.ElementFire,
		))
	}
	return p
}

func smallOptions() *Options {
	return &Options{
		TargetSpells: 10,
		TargetSites:  4,
		Workers:      1,
		Logger:       discardLogger(),
	}
}

func spellNames(book *Spellbook) []string {
	names := make([]string, len(book.Spells))
	for i, c := range book.Spells {
		names[i] = c.Name
	}
	return names
}

func TestBuildDeterministic(t *testing.T) {
	b := NewBuilder(nil, discardLogger())

	first, err := b.Build(testPools(), smallOptions())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	second, err := b.Build(testPools(), smallOptions())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	a, c := spellNames(first), spellNames(second)
	if len(a) != len(c) {
		t.Fatalf("spell counts differ: %d vs %d", len(a), len(c))
	}
	for i := range a {
		if a[i] != c[i] {
			t.Errorf("pick %d differs: %q vs %q", i, a[i], c[i])
		}
	}
	if first.TotalSynergy != second.TotalSynergy {
		t.Errorf("total synergy differs: %v vs %v", first.TotalSynergy, second.TotalSynergy)
	}
}

func TestBuildParallelMatchesSerial(t *testing.T) {
	b := NewBuilder(nil, discardLogger())

	serialOpts := smallOptions()
	serial, err := b.Build(testPools(), serialOpts)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	parallelOpts := smallOptions()
	parallelOpts.Workers = 8
	parallel, err := b.Build(testPools(), parallelOpts)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	a, c := spellNames(serial), spellNames(parallel)
	if len(a) != len(c) {
		t.Fatalf("spell counts differ: %d vs %d", len(a), len(c))
	}
	for i := range a {
		if a[i] != c[i] {
			t.Errorf("worker count changed pick %d: %q vs %q", i, a[i], c[i])
		}
	}
}

func TestBuildTieBreakIsPoolOrder(t *testing.T) {
	twinA := testCard("Twin A", cards.CategoryMinion, cards.RarityUnique, 2, "Airborne.", cards.ElementFire)
	twinB := testCard("Twin B", cards.CategoryMinion, cards.RarityUnique, 2, "Airborne.", cards.ElementFire)

	build := func(first, second *cards.Card) *Spellbook {
		pools := &Pools{Minions: []*cards.Card{first, second}}
		opts := &Options{TargetSpells: 2, TargetSites: 0, Workers: 1, Logger: discardLogger()}
		book, err := NewBuilder(nil, discardLogger()).Build(pools, opts)
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		return book
	}

	// The twins are indistinguishable to every scorer, so the earlier
	// pool entry must win the first pick.
	if got := build(twinA, twinB).Spells[0].Name; got != "Twin A" {
		t.Errorf("expected the earlier pool entry to win the tie, got %q", got)
	}
	if got := build(twinB, twinA).Spells[0].Name; got != "Twin B" {
		t.Errorf("expected the earlier pool entry to win the tie, got %q", got)
	}
}

func TestBuildHonorsCopyLimits(t *testing.T) {
	pools := &Pools{}
	for i := 0; i < 6; i++ {
		pools.Minions = append(pools.Minions,
			testCard("Ember Wolf", cards.CategoryMinion, cards.RarityOrdinary, 2, "Charge.", cards.ElementFire))
	}
	for i := 0; i < 3; i++ {
		pools.Minions = append(pools.Minions,
			testCard("The Kindler", cards.CategoryMinion, cards.RarityUnique, 3, "Spellcaster.", cards.ElementFire))
	}

	opts := &Options{TargetSpells: 20, TargetSites: 0, Workers: 1, Logger: discardLogger()}
	book, err := NewBuilder(nil, discardLogger()).Build(pools, opts)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	counts := make(map[string]int)
	for _, c := range book.Spells {
		counts[c.Base()]++
	}
	if counts["Ember Wolf"] != 4 {
		t.Errorf("Ordinary cards cap at 4 copies, got %d", counts["Ember Wolf"])
	}
	if counts["The Kindler"] != 1 {
		t.Errorf("Unique cards cap at 1 copy, got %d", counts["The Kindler"])
	}
	if !book.InsufficientPool {
		t.Error("expected InsufficientPool once every legal candidate is used up")
	}
}

func TestBuildCopyLimitOverride(t *testing.T) {
	pools := &Pools{}
	for i := 0; i < 6; i++ {
		pools.Minions = append(pools.Minions,
			testCard("Ember Wolf", cards.CategoryMinion, cards.RarityOrdinary, 2, "", cards.ElementFire))
	}

	opts := &Options{
		TargetSpells: 20,
		TargetSites:  0,
		Workers:      1,
		CopyLimits:   map[cards.Rarity]int{cards.RarityOrdinary: 2},
		Logger:       discardLogger(),
	}
	book, err := NewBuilder(nil, discardLogger()).Build(pools, opts)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(book.Spells) != 2 {
		t.Errorf("override limit of 2 should stop at 2 copies, got %d", len(book.Spells))
	}
}

func TestBuildInsufficientPool(t *testing.T) {
	pools := &Pools{
		Minions: []*cards.Card{
			testCard("A", cards.CategoryMinion, cards.RarityUnique, 1, "", cards.ElementFire),
			testCard("B", cards.CategoryMinion, cards.RarityUnique, 2, "", cards.ElementFire),
			testCard("C", cards.CategoryMinion, cards.RarityUnique, 3, "", cards.ElementFire),
		},
	}

	opts := &Options{TargetSpells: 50, TargetSites: 0, Workers: 1, Logger: discardLogger()}
	book, err := NewBuilder(nil, discardLogger()).Build(pools, opts)
	if err != nil {
		t.Fatalf("pool exhaustion must not be an error, got %v", err)
	}
	if !book.InsufficientPool {
		t.Error("expected InsufficientPool to be set")
	}
	if len(book.Spells) != 3 {
		t.Errorf("partial result should carry every legal pick, got %d spells", len(book.Spells))
	}
}

func TestBuildRejectsBadConfiguration(t *testing.T) {
	b := NewBuilder(nil, discardLogger())

	_, err := b.Build(testPools(), &Options{Archetype: "tempo", Logger: discardLogger()})
	if !errors.Is(err, archetype.ErrUnknownPreference) {
		t.Errorf("unknown archetype must fail upfront, got %v", err)
	}

	_, err = b.Build(testPools(), &Options{
		Weights: synergy.Weights{Elemental: -1, Combo: 1},
		Logger:  discardLogger(),
	})
	if !errors.Is(err, synergy.ErrInvalidWeights) {
		t.Errorf("malformed weights must fail upfront, got %v", err)
	}

	if _, err := b.Build(nil, smallOptions()); err == nil {
		t.Error("nil pools must be rejected")
	}
}

func TestBuildSelectsCoveringAvatar(t *testing.T) {
	book, err := NewBuilder(nil, discardLogger()).Build(testPools(), smallOptions())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if book.Avatar == nil || book.Avatar.Name != "The Flamecaller" {
		t.Errorf("the fire-heavy pool should select the fire avatar, got %+v", book.Avatar)
	}
}

func TestBuildAvatarOverride(t *testing.T) {
	pools := testPools()
	opts := smallOptions()
	opts.Avatar = pools.Avatars[1]

	book, err := NewBuilder(nil, discardLogger()).Build(pools, opts)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if book.Avatar.Name != "The Tidebinder" {
		t.Errorf("explicit avatar must be used verbatim, got %q", book.Avatar.Name)
	}
}

func TestBuildSitesBestEffort(t *testing.T) {
	pools := testPools()
	opts := smallOptions()
	opts.TargetSites = 30 // pool only has 8

	book, err := NewBuilder(nil, discardLogger()).Build(pools, opts)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(book.Sites) != len(pools.Sites) {
		t.Errorf("a thin site pool should be used in full, got %d of %d", len(book.Sites), len(pools.Sites))
	}
}

func TestBuildProgressStages(t *testing.T) {
	var stages []string
	opts := smallOptions()
	opts.Progress = func(ev ProgressEvent) {
		if len(stages) == 0 || stages[len(stages)-1] != ev.Stage {
			stages = append(stages, ev.Stage)
		}
	}

	if _, err := NewBuilder(nil, discardLogger()).Build(testPools(), opts); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := []string{"SelectingAvatar", "SelectingSites", "SelectingSpells", "Done"}
	if len(stages) != len(want) {
		t.Fatalf("expected stages %v, got %v", want, stages)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Errorf("stage %d = %q, want %q", i, stages[i], want[i])
		}
	}
}

func TestBuildDiagnostics(t *testing.T) {
	opts := smallOptions()
	opts.Diagnostics = true

	book, err := NewBuilder(nil, discardLogger()).Build(testPools(), opts)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if len(book.Picks) != len(book.Spells) {
		t.Errorf("expected one pick record per spell, got %d for %d spells", len(book.Picks), len(book.Spells))
	}
	for i, pick := range book.Picks {
		if pick.Iteration != i+1 {
			t.Errorf("pick %d carries iteration %d", i, pick.Iteration)
		}
		if pick.Card != book.Spells[i].Name {
			t.Errorf("pick %d names %q but spell is %q", i, pick.Card, book.Spells[i].Name)
		}
	}
	if book.CacheStats.Misses == 0 {
		t.Error("a build should populate the analysis cache")
	}
}

func TestBuildFreshIDPerInvocation(t *testing.T) {
	b := NewBuilder(nil, discardLogger())
	first, err := b.Build(testPools(), smallOptions())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	second, err := b.Build(testPools(), smallOptions())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if first.ID == "" || first.ID == second.ID {
		t.Errorf("each build gets its own identifier: %q vs %q", first.ID, second.ID)
	}
}
