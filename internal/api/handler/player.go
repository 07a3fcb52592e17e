package handler

import (
	"context"
	"net/http"
	"sort"

	"github.com/gorilla/mux"

	"github.com/mcoot/swordgame-go/internal/api/response"
	"github.com/mcoot/swordgame-go/internal/model"
)

// PlayerReader reads live players. The dispatcher implements it so reads are
// serialized with game events.
type PlayerReader interface {
	Roster(ctx context.Context) ([]model.Player, error)
	Player(ctx context.Context, id model.ConnectionID) (model.Player, error)
}

// PlayerHandler handles player-related endpoints
type PlayerHandler struct {
	players PlayerReader
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(players PlayerReader) *PlayerHandler {
	return &PlayerHandler{
		players: players,
	}
}

// List handles GET /api/v1/players
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	players, err := h.players.Roster(r.Context())
	SortLeaderboard(players)
	respond(w, response.RosterFromModel(players), err)
}

// Get handles GET /api/v1/players/{id}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.ConnectionID(mux.Vars(r)["id"])

	player, err := h.players.Player(r.Context(), id)
	respond(w, response.PlayerFromModel(player), err)
}

// SortLeaderboard orders players by level, then money, both descending, then nickname
func SortLeaderboard(players []model.Player) {
	sort.SliceStable(players, func(i, j int) bool {
		a, b := players[i], players[j]
		if a.Level != b.Level {
			return a.Level > b.Level
		}
		if a.Money != b.Money {
			return a.Money > b.Money
		}
		return a.Nickname < b.Nickname
	})
}
