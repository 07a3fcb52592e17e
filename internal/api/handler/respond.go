package handler

import (
	"net/http"

	"github.com/mcoot/swordgame-go/internal/api/apierr"
	"github.com/mcoot/swordgame-go/internal/api/response"
)

// respond writes v as a 200, or the mapped error response when err is set
func respond(w http.ResponseWriter, v any, err error) {
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, v)
}
