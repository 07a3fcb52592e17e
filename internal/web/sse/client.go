package sse

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/swordgame-go/internal/model"
)

const (
	// Time between keepalive comments
	pingPeriod = 30 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 256

	// Reconnect delay suggested to browsers, in milliseconds
	retryMillis = "3000"
)

// Client is one connected spectator
type Client struct {
	id          string
	hub         *Hub
	remoteAddr  string
	connectedAt time.Time
	send        chan []byte
}

// NewClient creates a new spectator client
func NewClient(hub *Hub, remoteAddr string) *Client {
	return &Client{
		id:          uuid.NewString(),
		hub:         hub,
		remoteAddr:  remoteAddr,
		connectedAt: time.Now(),
		send:        make(chan []byte, sendBufferSize),
	}
}

// Greeting produces the first event a new spectator sees, usually the roster
type Greeting func(r *http.Request) (model.Event, error)

// ServeSSE streams the spectator feed until the client goes away or the hub stops
func ServeSSE(w http.ResponseWriter, r *http.Request, hub *Hub, greet Greeting) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	// Register before reading the greeting so no broadcast falls between them
	client := NewClient(hub, r.RemoteAddr)
	if !hub.Register(client) {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}
	defer hub.Unregister(client)

	var first []byte
	if greet != nil {
		ev, err := greet(r)
		if err != nil {
			http.Error(w, "failed to load roster", http.StatusServiceUnavailable)
			return
		}
		if first, err = encodeEvent(ev); err != nil {
			http.Error(w, "failed to encode roster", http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	_, _ = w.Write([]byte("retry: " + retryMillis + "\n\n"))
	if first != nil {
		_, _ = w.Write(first)
	}
	flusher.Flush()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				// Hub closed the channel
				return
			}
			if _, err := w.Write(message); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
