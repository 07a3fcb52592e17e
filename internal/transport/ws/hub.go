package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/mcoot/swordgame-go/internal/model"
)

// Sink accepts inbound events decoded from client frames
type Sink interface {
	Submit(ctx context.Context, in model.Inbound) error
}

// Options tunes per-connection limits
type Options struct {
	// MessageRate is the sustained inbound frames per second per connection
	MessageRate float64
	// MessageBurst is how many frames may arrive at once before limiting kicks in
	MessageBurst int
	// SendBuffer is how many outbound frames may queue before the client is dropped
	SendBuffer int
}

// DefaultOptions returns the limits used when none are configured
func DefaultOptions() Options {
	return Options{
		MessageRate:  10,
		MessageBurst: 20,
		SendBuffer:   256,
	}
}

type audience int

const (
	toOne audience = iota
	toAll
	toAllExcept
	closeOne
)

// delivery is one outbound instruction, applied in submission order
type delivery struct {
	audience audience
	target   model.ConnectionID
	payload  []byte
	reason   string
}

// Hub tracks live sockets and fans out outbound events
type Hub struct {
	clients  map[model.ConnectionID]*Client
	mu       sync.RWMutex
	options  Options
	upgrader websocket.Upgrader
	logger   *slog.Logger

	outbound chan delivery
	done     chan struct{}
	stopOnce sync.Once
}

// NewHub creates a Hub. Call Run to start delivering events.
func NewHub(options Options, logger *slog.Logger) *Hub {
	defaults := DefaultOptions()
	if options.MessageRate <= 0 {
		options.MessageRate = defaults.MessageRate
	}
	if options.MessageBurst <= 0 {
		options.MessageBurst = defaults.MessageBurst
	}
	if options.SendBuffer <= 0 {
		options.SendBuffer = defaults.SendBuffer
	}

	return &Hub{
		clients: make(map[model.ConnectionID]*Client),
		options: options,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The game page may be served from anywhere; there is no auth to protect.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:   logger.With(slog.String("component", "websocket")),
		outbound: make(chan delivery, 1024),
		done:     make(chan struct{}),
	}
}

// Run applies outbound deliveries until ctx is cancelled, then closes every socket
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("websocket hub started")
	for {
		select {
		case d := <-h.outbound:
			h.deliver(d)

		case <-ctx.Done():
			h.shutdown()
			return
		}
	}
}

func (h *Hub) shutdown() {
	h.stopOnce.Do(func() { close(h.done) })

	h.mu.Lock()
	clientCount := len(h.clients)
	for id, client := range h.clients {
		close(client.send)
		delete(h.clients, id)
	}
	h.mu.Unlock()
	h.logger.Info("websocket hub stopped", slog.Int("disconnected_clients", clientCount))
}

// Handler returns the upgrade endpoint. Frames from accepted sockets go to sink.
func (h *Hub) Handler(sink Sink) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-h.done:
			http.Error(w, "server shutting down", http.StatusServiceUnavailable)
			return
		default:
		}

		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already written the error response
			h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
			return
		}

		id := model.ConnectionID(uuid.NewString())
		client := &Client{
			id:          id,
			hub:         h,
			conn:        conn,
			send:        make(chan []byte, h.options.SendBuffer),
			limiter:     rate.NewLimiter(rate.Limit(h.options.MessageRate), h.options.MessageBurst),
			connectedAt: time.Now(),
			logger: h.logger.With(
				slog.String("connection_id", string(id)),
				slog.String("remote_addr", r.RemoteAddr),
			),
		}

		// Registered before the read pump starts, so the login reply always finds it
		h.register(client)

		go client.writePump()
		go client.readPump(sink)
	}
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	h.clients[client.id] = client
	clientCount := len(h.clients)
	h.mu.Unlock()

	client.logger.Info("websocket client registered", slog.Int("total_clients", clientCount))
}

// unregister removes a client, closing its send channel if the hub has not already
func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(client, "")
}

func (h *Hub) dropLocked(client *Client, reason string) {
	if current, ok := h.clients[client.id]; !ok || current != client {
		return
	}
	delete(h.clients, client.id)
	client.closeReason = reason
	close(client.send)
}

// ClientCount returns the number of live sockets
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Send queues an event for one connection
func (h *Hub) Send(id model.ConnectionID, ev model.Event) {
	h.enqueue(ev, delivery{audience: toOne, target: id})
}

// Broadcast queues an event for every connection
func (h *Hub) Broadcast(ev model.Event) {
	h.enqueue(ev, delivery{audience: toAll})
}

// BroadcastExcept queues an event for every connection but one
func (h *Hub) BroadcastExcept(id model.ConnectionID, ev model.Event) {
	h.enqueue(ev, delivery{audience: toAllExcept, target: id})
}

// Close terminates a connection after everything queued before it has been sent
func (h *Hub) Close(id model.ConnectionID, reason string) {
	h.push(delivery{audience: closeOne, target: id, reason: reason})
}

func (h *Hub) enqueue(ev model.Event, d delivery) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("failed to encode event",
			slog.String("event", string(ev.Name)),
			slog.String("error", err.Error()),
		)
		return
	}
	d.payload = payload
	h.push(d)
}

func (h *Hub) push(d delivery) {
	select {
	case h.outbound <- d:
	case <-h.done:
	}
}

func (h *Hub) deliver(d delivery) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch d.audience {
	case toOne:
		if client, ok := h.clients[d.target]; ok {
			h.offerLocked(client, d.payload)
		}

	case toAll, toAllExcept:
		for id, client := range h.clients {
			if d.audience == toAllExcept && id == d.target {
				continue
			}
			h.offerLocked(client, d.payload)
		}

	case closeOne:
		if client, ok := h.clients[d.target]; ok {
			client.logger.Info("closing websocket", slog.String("reason", d.reason))
			h.dropLocked(client, d.reason)
		}
	}
}

// offerLocked queues a frame without blocking. A client that cannot keep up
// is disconnected rather than stalling everyone else.
func (h *Hub) offerLocked(client *Client, payload []byte) {
	select {
	case client.send <- payload:
	default:
		client.logger.Warn("websocket client too slow, disconnecting",
			slog.Int("buffer", cap(client.send)))
		h.dropLocked(client, "too slow")
	}
}
