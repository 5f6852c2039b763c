// Package handlers implements the REST API endpoints.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wsloan/spellforge/internal/api/response"
	"github.com/wsloan/spellforge/internal/archetype"
	"github.com/wsloan/spellforge/internal/cards"
	"github.com/wsloan/spellforge/internal/config"
	"github.com/wsloan/spellforge/internal/deck"
	"github.com/wsloan/spellforge/internal/storage"
	"github.com/wsloan/spellforge/internal/synergy"
)

// PoolProvider supplies the current candidate pools. The API server
// swaps the pools when the card database changes on disk.
type PoolProvider interface {
	Pools() *deck.Pools
}

var errPoolNotLoaded = errors.New("card pool not loaded")

// ProgressSink receives build progress events for broadcasting.
type ProgressSink interface {
	Publish(eventType string, data interface{})
}

// DeckHandler handles deck build and retrieval requests.
type DeckHandler struct {
	pools    PoolProvider
	builder  *deck.Builder
	cfg      *config.Config
	books    *storage.SpellbookRepository
	progress ProgressSink
}

// NewDeckHandler creates a deck handler. books and progress may be nil.
func NewDeckHandler(pools PoolProvider, builder *deck.Builder, cfg *config.Config, books *storage.SpellbookRepository, progress ProgressSink) *DeckHandler {
	return &DeckHandler{
		pools:    pools,
		builder:  builder,
		cfg:      cfg,
		books:    books,
		progress: progress,
	}
}

// BuildRequest is the payload for POST /decks/build.
type BuildRequest struct {
	// Avatar optionally names an avatar from the pool.
	Avatar string `json:"avatar,omitempty"`

	// Archetype is the preference token (default from config).
	Archetype string `json:"archetype,omitempty"`

	TargetSpells int  `json:"target_spells,omitempty"`
	TargetSites  int  `json:"target_sites,omitempty"`
	Diagnostics  bool `json:"diagnostics,omitempty"`
}

// BuildDeck handles POST /decks/build: runs one build invocation
// against the current pools and persists the result.
func (h *DeckHandler) BuildDeck(w http.ResponseWriter, r *http.Request) {
	var req BuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}

	pools := h.pools.Pools()
	if pools == nil {
		response.InternalError(w, errPoolNotLoaded)
		return
	}

	arch := req.Archetype
	if arch == "" {
		arch = h.cfg.Builder.Archetype
	}

	opts := &deck.Options{
		Archetype:    arch,
		Weights:      h.cfg.Weights,
		TargetSpells: req.TargetSpells,
		TargetSites:  req.TargetSites,
		CopyLimits:   h.cfg.CopyLimits(),
		Workers:      h.cfg.Builder.Workers,
		Diagnostics:  req.Diagnostics,
	}
	if opts.TargetSpells == 0 {
		opts.TargetSpells = h.cfg.Builder.TargetSpells
	}
	if opts.TargetSites == 0 {
		opts.TargetSites = h.cfg.Builder.TargetSites
	}

	if req.Avatar != "" {
		avatar := findAvatar(pools, req.Avatar)
		if avatar == nil {
			response.NotFound(w, fmt.Errorf("avatar %q not in pool", req.Avatar))
			return
		}
		opts.Avatar = avatar
	}

	if h.progress != nil {
		opts.Progress = func(ev deck.ProgressEvent) {
			h.progress.Publish("build.progress", ev)
		}
	}

	book, err := h.builder.Build(pools, opts)
	if err != nil {
		if errors.Is(err, archetype.ErrUnknownPreference) || errors.Is(err, synergy.ErrInvalidWeights) {
			response.BadRequest(w, err)
			return
		}
		response.InternalError(w, err)
		return
	}

	if h.books != nil {
		if err := h.books.SaveSpellbook(r.Context(), book, arch); err != nil {
			response.InternalError(w, fmt.Errorf("built deck but failed to persist it: %w", err))
			return
		}
	}

	if h.progress != nil {
		h.progress.Publish("build.complete", map[string]interface{}{
			"id":                book.ID,
			"spells":            len(book.Spells),
			"total_synergy":     book.TotalSynergy,
			"insufficient_pool": book.InsufficientPool,
		})
	}

	response.Created(w, book)
}

// GetDecks handles GET /decks: lists stored spellbook metadata.
func (h *DeckHandler) GetDecks(w http.ResponseWriter, r *http.Request) {
	if h.books == nil {
		response.Success(w, []interface{}{})
		return
	}
	records, err := h.books.ListSpellbooks(r.Context(), 0)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	response.Success(w, records)
}

// GetDeck handles GET /decks/{deckID}: returns one stored spellbook.
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	if h.books == nil {
		response.NotFound(w, fmt.Errorf("spellbook persistence is disabled"))
		return
	}
	id := chi.URLParam(r, "deckID")
	record, err := h.books.GetSpellbook(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrSpellbookNotFound) {
			response.NotFound(w, err)
			return
		}
		response.InternalError(w, err)
		return
	}
	response.Success(w, record)
}

// findAvatar locates an avatar by name in the pool, input order.
func findAvatar(pools *deck.Pools, name string) *cards.Card {
	for _, avatar := range pools.Avatars {
		if avatar.Name == name {
			return avatar
		}
	}
	return nil
}
