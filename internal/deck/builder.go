package deck

import (
	"fmt"
	"log"
	"runtime"
	"sync"

	"github.com/google/uuid"

	"github.com/wsloan/spellforge/internal/archetype"
	"github.com/wsloan/spellforge/internal/cards"
	"github.com/wsloan/spellforge/internal/synergy"
)

// buildState tracks the builder's position in the selection pipeline.
// Transitions are strictly forward: SelectingAvatar -> SelectingSites ->
// SelectingSpells -> Done.
type buildState int

const (
	stateSelectingAvatar buildState = iota
	stateSelectingSites
	stateSelectingSpells
	stateDone
)

func (s buildState) String() string {
	switch s {
	case stateSelectingAvatar:
		return "SelectingAvatar"
	case stateSelectingSites:
		return "SelectingSites"
	case stateSelectingSpells:
		return "SelectingSpells"
	case stateDone:
		return "Done"
	}
	return "Unknown"
}

// ProgressEvent reports build progress to an optional observer.
type ProgressEvent struct {
	Stage     string  `json:"stage"`
	Iteration int     `json:"iteration"`
	Target    int     `json:"target"`
	Card      string  `json:"card,omitempty"`
	Score     float64 `json:"score,omitempty"`
}

// ProgressFunc receives progress events during a build. It must not
// block; slow consumers should buffer.
type ProgressFunc func(ProgressEvent)

// Options configures a single build invocation.
type Options struct {
	// Avatar, when set, skips avatar selection.
	Avatar *cards.Card

	// Archetype is the preference token ("", "Balanced", "Combo", ...).
	// Unknown tokens are rejected before any selection begins.
	Archetype string

	// Weights are the base aggregator weights. Zero value selects the
	// defaults.
	Weights synergy.Weights

	// TargetSpells is the spellbook size to build toward (default 50).
	TargetSpells int

	// TargetSites is the number of sites to select (default 30),
	// best-effort against the available site pool.
	TargetSites int

	// CopyLimits overrides the per-rarity copy limits. Missing rarities
	// fall back to the standard table.
	CopyLimits map[cards.Rarity]int

	// Workers bounds the per-iteration scoring fan-out. Zero means
	// GOMAXPROCS. Scoring within one iteration is order-independent;
	// the deterministic tie-break is applied only after all scores for
	// the iteration have been collected.
	Workers int

	// Strictness controls off-element handling in the elemental scorer.
	Strictness synergy.ElementStrictness

	// Diagnostics requests per-pick breakdowns and the final deck's
	// combo instances on the returned spellbook.
	Diagnostics bool

	Progress ProgressFunc
	Logger   *log.Logger
}

// DefaultTargetSpells is the standard spellbook size.
const DefaultTargetSpells = 50

// DefaultTargetSites is the standard site count.
const DefaultTargetSites = 30

// Builder runs the avatar/site/spell selection pipeline. A Builder is
// single-use: each Build call creates a fresh analysis cache, and no
// state is shared across invocations except the immutable pattern
// registry.
type Builder struct {
	patterns []synergy.Pattern
	logger   *log.Logger
}

// NewBuilder creates a builder over the given pattern registry. A nil
// registry selects the default patterns.
func NewBuilder(patterns []synergy.Pattern, logger *log.Logger) *Builder {
	if patterns == nil {
		patterns = synergy.DefaultPatterns()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Builder{patterns: patterns, logger: logger}
}

// Build assembles a spellbook from the candidate pools. Configuration
// errors (unknown archetype, malformed weights) are returned before any
// selection happens. Pool exhaustion is not an error: the partial
// spellbook comes back with InsufficientPool set.
func (b *Builder) Build(pools *Pools, opts *Options) (*Spellbook, error) {
	if pools == nil {
		return nil, fmt.Errorf("pools cannot be nil")
	}
	if opts == nil {
		opts = &Options{}
	}

	pref, err := archetype.Parse(opts.Archetype)
	if err != nil {
		return nil, err
	}
	weights := opts.Weights
	if weights == (synergy.Weights{}) {
		weights = synergy.DefaultWeights()
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	targetSpells := opts.TargetSpells
	if targetSpells <= 0 {
		targetSpells = DefaultTargetSpells
	}
	targetSites := opts.TargetSites
	if targetSites <= 0 {
		targetSites = DefaultTargetSites
	}
	logger := opts.Logger
	if logger == nil {
		logger = b.logger
	}

	cache := synergy.NewCache()
	detector := synergy.NewDetector(b.patterns, logger)
	analyzer := synergy.NewAnalyzer(detector, cache, weights, pref, opts.Strictness)

	run := &buildRun{
		builder:  b,
		pools:    pools,
		opts:     opts,
		analyzer: analyzer,
		context:  newContext(),
		target:   targetSpells,
		sites:    targetSites,
		logger:   logger,
		state:    stateSelectingAvatar,
	}
	return run.execute()
}

// buildRun holds the per-invocation state of one build.
type buildRun struct {
	builder  *Builder
	pools    *Pools
	opts     *Options
	analyzer *synergy.Analyzer
	context  *Context
	target   int
	sites    int
	logger   *log.Logger
	state    buildState
	picks    []Pick
}

// advance moves the state machine forward. Backward transitions are a
// programming error.
func (r *buildRun) advance(next buildState) {
	if next <= r.state {
		panic(fmt.Sprintf("deck: illegal state transition %s -> %s", r.state, next))
	}
	r.state = next
}

// execute drives the state machine to completion.
func (r *buildRun) execute() (*Spellbook, error) {
	r.selectAvatar()
	r.advance(stateSelectingSites)
	r.selectSites()
	r.advance(stateSelectingSpells)
	insufficient := r.selectSpells()
	r.advance(stateDone)

	return r.assemble(insufficient), nil
}

// selectAvatar uses the supplied avatar or picks the pool avatar that
// best covers the elements frequent across all spell pools. Ties are
// broken by input order.
func (r *buildRun) selectAvatar() {
	r.emit(ProgressEvent{Stage: r.state.String()})

	if r.opts.Avatar != nil {
		r.context.Avatar = r.opts.Avatar
		return
	}
	if len(r.pools.Avatars) == 0 {
		return
	}

	freq := make(map[cards.Element]int)
	for _, c := range r.pools.SpellCandidates() {
		for _, e := range c.Elements {
			freq[e]++
		}
	}

	var best *cards.Card
	bestCoverage := -1
	for _, avatar := range r.pools.Avatars {
		coverage := 0
		for _, e := range avatar.Elements {
			coverage += freq[e]
		}
		if coverage > bestCoverage {
			best = avatar
			bestCoverage = coverage
		}
	}
	r.context.Avatar = best
	r.logger.Printf("deck: selected avatar %q (element coverage %d)", best.Name, bestCoverage)
}

// selectSites chooses sites to satisfy a threshold profile consistent
// with the avatar and the spell mix: site slots are allocated to
// elements in proportion to their frequency among the spell candidates,
// then filled from the site pool in input order. Threshold coverage here
// shapes scoring only; legality enforcement is count and copy limits.
func (r *buildRun) selectSites() {
	r.emit(ProgressEvent{Stage: r.state.String()})
	if len(r.pools.Sites) == 0 {
		return
	}

	freq := make(map[cards.Element]int)
	total := 0
	for _, c := range r.pools.SpellCandidates() {
		for _, e := range c.Elements {
			freq[e]++
			total++
		}
	}
	if r.context.Avatar != nil {
		// The avatar's elements anchor the profile even in a thin pool.
		for _, e := range r.context.Avatar.Elements {
			freq[e] += total / 4
		}
	}

	// Desired sites per element, largest share first in canonical order.
	demand := make(map[cards.Element]int)
	if total > 0 {
		grandTotal := 0
		for _, e := range cards.Elements {
			grandTotal += freq[e]
		}
		for _, e := range cards.Elements {
			if grandTotal > 0 {
				demand[e] = r.sites * freq[e] / grandTotal
			}
		}
	}

	used := make(map[int]bool)
	pick := func(want func(*cards.Card) bool) bool {
		for i, site := range r.pools.Sites {
			if used[i] || !want(site) {
				continue
			}
			used[i] = true
			r.context.Sites = append(r.context.Sites, site)
			return true
		}
		return false
	}

	// Satisfy per-element demand first, then pad with whatever remains.
	for _, e := range cards.Elements {
		for n := 0; n < demand[e] && len(r.context.Sites) < r.sites; n++ {
			if !pick(func(s *cards.Card) bool { return s.HasElement(e) || s.Thresholds[e] > 0 }) {
				break
			}
		}
	}
	for len(r.context.Sites) < r.sites {
		if !pick(func(*cards.Card) bool { return true }) {
			break
		}
	}
	r.logger.Printf("deck: selected %d sites", len(r.context.Sites))
}

// selectSpells runs the greedy loop until the spellbook reaches the
// target size or the pools are exhausted. Returns true when the pools
// ran out first.
func (r *buildRun) selectSpells() bool {
	candidates := r.pools.SpellCandidates()
	remaining := make([]bool, len(candidates)) // true = consumed

	for iteration := 1; len(r.context.Spells) < r.target; iteration++ {
		legal := r.legalIndexes(candidates, remaining)
		if len(legal) == 0 {
			return true
		}

		reference := r.context.Reference()
		scores := r.scoreAll(candidates, legal, reference)

		// Deterministic winner: first strict maximum in candidate order,
		// which is pool input order.
		winner := legal[0]
		bestScore := scores[0]
		for i := 1; i < len(legal); i++ {
			if scores[i] > bestScore {
				winner = legal[i]
				bestScore = scores[i]
			}
		}

		card := candidates[winner]
		remaining[winner] = true
		if r.opts.Diagnostics {
			r.picks = append(r.picks, Pick{
				Iteration: iteration,
				Card:      card.Name,
				Score:     bestScore,
				Breakdown: r.analyzer.BreakdownFor(card, reference),
			})
		}
		r.context.addSpell(card)

		r.emit(ProgressEvent{
			Stage:     r.state.String(),
			Iteration: iteration,
			Target:    r.target,
			Card:      card.Name,
			Score:     bestScore,
		})
	}
	return false
}

// legalIndexes returns the candidate indexes still selectable under the
// per-base-name copy limits.
func (r *buildRun) legalIndexes(candidates []*cards.Card, consumed []bool) []int {
	var legal []int
	for i, c := range candidates {
		if consumed[i] {
			continue
		}
		if r.context.copies(c.Base()) >= r.copyLimit(c) {
			continue
		}
		legal = append(legal, i)
	}
	return legal
}

// copyLimit resolves the copy limit for a card, preferring the
// per-build override.
func (r *buildRun) copyLimit(c *cards.Card) int {
	if limit, ok := r.opts.CopyLimits[c.Rarity]; ok {
		return limit
	}
	return cards.CopyLimit(c.Rarity)
}

// scoreAll evaluates every legal candidate against the same fixed
// reference context. The fan-out is embarrassingly parallel; results are
// collected into a slice indexed by legal position and consumed only
// after every worker has finished, so the tie-break stays deterministic.
func (r *buildRun) scoreAll(candidates []*cards.Card, legal []int, reference []*cards.Card) []float64 {
	scores := make([]float64, len(legal))

	workers := r.opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(legal) {
		workers = len(legal)
	}
	if workers <= 1 {
		for i, idx := range legal {
			scores[i] = r.analyzer.CalculateSynergy(candidates[idx], reference)
		}
		return scores
	}

	var wg sync.WaitGroup
	work := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				scores[i] = r.analyzer.CalculateSynergy(candidates[legal[i]], reference)
			}
		}()
	}
	for i := range legal {
		work <- i
	}
	close(work)
	wg.Wait()
	return scores
}

// assemble produces the final spellbook value.
func (r *buildRun) assemble(insufficient bool) *Spellbook {
	book := &Spellbook{
		ID:               uuid.NewString(),
		Avatar:           r.context.Avatar,
		Sites:            r.context.Sites,
		Spells:           r.context.Spells,
		Counts:           countCategories(r.context.Spells),
		InsufficientPool: insufficient,
		CacheStats:       r.analyzer.CacheStats(),
	}

	// Total synergy of the finished deck is the detection total over the
	// full reference set.
	combos := r.analyzer.Detector().Detect(r.context.Reference())
	book.TotalSynergy = synergy.TotalSynergy(combos)

	if r.opts.Diagnostics {
		book.Combos = combos
		book.Picks = r.picks
	}

	if insufficient {
		r.logger.Printf("deck: pool exhausted at %d/%d spells", len(book.Spells), r.target)
	}
	r.emit(ProgressEvent{Stage: stateDone.String(), Iteration: len(book.Spells), Target: r.target})
	return book
}

// emit delivers a progress event when an observer is attached.
func (r *buildRun) emit(ev ProgressEvent) {
	if r.opts.Progress != nil {
		r.opts.Progress(ev)
	}
}
