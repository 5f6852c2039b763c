package handlers

import (
	"net/http"
	"strings"

	"github.com/wsloan/spellforge/internal/api/response"
	"github.com/wsloan/spellforge/internal/cards"
)

// CardHandler handles card pool queries.
type CardHandler struct {
	pools PoolProvider
}

// NewCardHandler creates a card handler.
func NewCardHandler(pools PoolProvider) *CardHandler {
	return &CardHandler{pools: pools}
}

// PoolSummary describes the loaded pool.
type PoolSummary struct {
	Total      int                    `json:"total"`
	Categories map[cards.Category]int `json:"categories"`
	Elements   map[cards.Element]int  `json:"elements"`
}

// GetCards handles GET /cards: lists pool cards in input order, with
// optional ?category= and ?element= filters.
func (h *CardHandler) GetCards(w http.ResponseWriter, r *http.Request) {
	pools := h.pools.Pools()
	if pools == nil {
		response.InternalError(w, errPoolNotLoaded)
		return
	}

	category := strings.TrimSpace(r.URL.Query().Get("category"))
	element := strings.TrimSpace(r.URL.Query().Get("element"))

	var out []*cards.Card
	for _, c := range pools.All() {
		if category != "" && !strings.EqualFold(string(c.Category), category) {
			continue
		}
		if element != "" && !c.HasElement(cards.Element(capitalize(element))) {
			continue
		}
		out = append(out, c)
	}
	if out == nil {
		out = []*cards.Card{}
	}
	response.Success(w, out)
}

// GetPoolSummary handles GET /cards/summary: per-category and
// per-element counts for the loaded pool.
func (h *CardHandler) GetPoolSummary(w http.ResponseWriter, _ *http.Request) {
	pools := h.pools.Pools()
	if pools == nil {
		response.InternalError(w, errPoolNotLoaded)
		return
	}

	summary := PoolSummary{
		Categories: make(map[cards.Category]int),
		Elements:   make(map[cards.Element]int),
	}
	for _, c := range pools.All() {
		summary.Total++
		summary.Categories[c.Category]++
		for _, e := range c.Elements {
			summary.Elements[e]++
		}
	}
	response.Success(w, summary)
}

// capitalize normalizes a query token to the canonical element casing.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
