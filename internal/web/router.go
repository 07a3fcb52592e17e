// Package web assembles the HTTP surface: the game socket, the spectator
// feed, the JSON API and the static client.
package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/swordgame-go/internal/api"
	"github.com/mcoot/swordgame-go/internal/api/handler"
	"github.com/mcoot/swordgame-go/internal/middleware"
	"github.com/mcoot/swordgame-go/internal/transport/ws"
	"github.com/mcoot/swordgame-go/internal/web/sse"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger    *slog.Logger
	Hub       *ws.Hub
	Sink      ws.Sink
	Feed      *sse.Hub
	Greeting  sse.Greeting
	Players   handler.PlayerReader
	StaticDir string // Path to the static client; empty disables it
}

// NewRouter creates the top-level router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	api.Mount(r, api.RouterConfig{
		Logger:  cfg.Logger,
		Players: cfg.Players,
	})

	// Long-lived connections get their own subrouter so they are logged once, on upgrade or close
	live := r.NewRoute().Subrouter()
	useLiveMiddleware(live, cfg.Logger)
	live.Handle("/ws", cfg.Hub.Handler(cfg.Sink)).Methods(http.MethodGet)
	live.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		sse.ServeSSE(w, r, cfg.Feed, cfg.Greeting)
	}).Methods(http.MethodGet)

	if cfg.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.StaticDir))).Methods(http.MethodGet)
	}

	return r
}

// useLiveMiddleware puts request logging outside panic recovery so Recovery
// sees the logging writer and stays silent on a hijacked socket
func useLiveMiddleware(r *mux.Router, logger *slog.Logger) {
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Recovery(logger, nil))
}
