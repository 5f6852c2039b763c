package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/wsloan/spellforge/internal/api/response"
	"github.com/wsloan/spellforge/internal/archetype"
	"github.com/wsloan/spellforge/internal/cards"
	"github.com/wsloan/spellforge/internal/config"
	"github.com/wsloan/spellforge/internal/synergy"
)

// ComboHandler handles combo detection and synergy scoring requests.
// Each request gets a fresh detector and cache so results never leak
// between calls.
type ComboHandler struct {
	pools PoolProvider
	cfg   *config.Config
}

// NewComboHandler creates a combo handler.
func NewComboHandler(pools PoolProvider, cfg *config.Config) *ComboHandler {
	return &ComboHandler{pools: pools, cfg: cfg}
}

// DetectRequest is the payload for POST /combos/detect.
type DetectRequest struct {
	// Cards names cards from the current pool to analyze.
	Cards []string `json:"cards"`
}

// DetectResponse is the result of a detection pass.
type DetectResponse struct {
	Combos       []synergy.Instance `json:"combos"`
	TotalSynergy float64            `json:"total_synergy"`
}

// DetectCombos handles POST /combos/detect: runs the pattern registry
// over the named cards.
func (h *ComboHandler) DetectCombos(w http.ResponseWriter, r *http.Request) {
	var req DetectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}

	group, err := h.resolveCards(req.Cards)
	if err != nil {
		if errors.Is(err, errPoolNotLoaded) {
			response.InternalError(w, err)
			return
		}
		response.NotFound(w, err)
		return
	}

	detector := synergy.NewDetector(synergy.DefaultPatterns(), nil)
	combos := detector.Detect(group)
	response.Success(w, DetectResponse{
		Combos:       combos,
		TotalSynergy: synergy.TotalSynergy(combos),
	})
}

// ScoreRequest is the payload for POST /combos/score.
type ScoreRequest struct {
	Card      string   `json:"card"`
	Context   []string `json:"context"`
	Archetype string   `json:"archetype,omitempty"`
}

// ScoreCard handles POST /combos/score: returns the weighted synergy
// breakdown for one candidate against a context.
func (h *ComboHandler) ScoreCard(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.Card == "" {
		response.BadRequest(w, fmt.Errorf("card is required"))
		return
	}

	pref, err := archetype.Parse(req.Archetype)
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	weights := h.cfg.Weights
	if err := weights.Validate(); err != nil {
		response.BadRequest(w, err)
		return
	}

	resolved, err := h.resolveCards(append([]string{req.Card}, req.Context...))
	if err != nil {
		if errors.Is(err, errPoolNotLoaded) {
			response.InternalError(w, err)
			return
		}
		response.NotFound(w, err)
		return
	}
	card, context := resolved[0], resolved[1:]

	analyzer := synergy.NewAnalyzer(
		synergy.NewDetector(synergy.DefaultPatterns(), nil),
		synergy.NewCache(),
		weights,
		pref,
		synergy.StrictnessLenient,
	)
	response.Success(w, analyzer.BreakdownFor(card, context))
}

// resolveCards maps card names to pool cards, preserving request order.
func (h *ComboHandler) resolveCards(names []string) ([]*cards.Card, error) {
	pools := h.pools.Pools()
	if pools == nil {
		return nil, errPoolNotLoaded
	}

	index := make(map[string]*cards.Card)
	for _, c := range pools.All() {
		if _, ok := index[c.Name]; !ok {
			index[c.Name] = c
		}
	}

	resolved := make([]*cards.Card, 0, len(names))
	for _, name := range names {
		c, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("card %q not in pool", name)
		}
		resolved = append(resolved, c)
	}
	return resolved, nil
}
