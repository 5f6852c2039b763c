package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wsloan/spellforge/internal/api/handlers"
	"github.com/wsloan/spellforge/internal/api/response"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint (no versioning)
	s.router.Get("/health", s.healthCheck)

	// WebSocket endpoint (no JSON content-type requirement)
	s.router.Get("/ws", s.wsHub.ServeWs)

	// API v1 routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Deck routes
		deckHandler := handlers.NewDeckHandler(s, s.builder, s.cfg, s.books, s)
		r.Route("/decks", func(r chi.Router) {
			r.Get("/", deckHandler.GetDecks)
			r.Get("/{deckID}", deckHandler.GetDeck)
			r.With(s.buildThrottleMiddleware).Post("/build", deckHandler.BuildDeck)
		})

		// Combo routes
		comboHandler := handlers.NewComboHandler(s, s.cfg)
		r.Route("/combos", func(r chi.Router) {
			r.Post("/detect", comboHandler.DetectCombos)
			r.Post("/score", comboHandler.ScoreCard)
		})

		// Card pool routes
		cardHandler := handlers.NewCardHandler(s)
		r.Route("/cards", func(r chi.Router) {
			r.Get("/", cardHandler.GetCards)
			r.Get("/summary", cardHandler.GetPoolSummary)
		})
	})
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "spellforge-api",
	})
}
