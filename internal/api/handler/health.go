package handler

import (
	"net/http"

	"github.com/mcoot/swordgame-go/internal/api/response"
)

// HealthHandler reports liveness and how many players are connected
type HealthHandler struct {
	players PlayerReader
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(players PlayerReader) *HealthHandler {
	return &HealthHandler{players: players}
}

// Get handles GET /api/v1/health
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	players, err := h.players.Roster(r.Context())
	respond(w, response.Health{Status: "ok", Players: len(players)}, err)
}
