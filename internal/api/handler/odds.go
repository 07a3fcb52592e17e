package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/swordgame-go/internal/api/response"
	"github.com/mcoot/swordgame-go/internal/model"
)

// OddsHandler serves the enhancement odds table
type OddsHandler struct{}

// NewOddsHandler creates a new odds handler
func NewOddsHandler() *OddsHandler {
	return &OddsHandler{}
}

// Get handles GET /api/v1/odds/{level}
func (h *OddsHandler) Get(w http.ResponseWriter, r *http.Request) {
	level, err := strconv.Atoi(mux.Vars(r)["level"])
	if err != nil || level < 0 {
		respond(w, nil, model.ErrInvalidLevel)
		return
	}
	respond(w, response.OddsForLevel(level), nil)
}
