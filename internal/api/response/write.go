package response

import (
	"encoding/json"
	"net/http"
)

// encodeFailure is written when a payload cannot be marshalled
const encodeFailure = `{"error":{"code":"INTERNAL_ERROR","message":"Internal server error"}}`

// JSON writes v with the given status. The body is marshalled before any
// header is sent so an encoding failure still yields a well-formed 500.
// Roster and player data change with every event, so nothing is cacheable.
func JSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status, body = http.StatusInternalServerError, []byte(encodeFailure)
	}

	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
