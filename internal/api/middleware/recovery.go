package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/swordgame-go/internal/api/apierr"
	"github.com/mcoot/swordgame-go/internal/middleware"
)

// Recovery creates panic recovery middleware for the API.
// Panics become the standard JSON internal error.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

// Logging is the shared request logger, scoped to the API
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger.With(slog.String("component", "api")))
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
