package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/mcoot/swordgame-go/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound frame size
	maxMessageSize = 1024
)

// envelope is the wire shape of every frame
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client is one accepted websocket connection
type Client struct {
	id          model.ConnectionID
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	limiter     *rate.Limiter
	connectedAt time.Time
	logger      *slog.Logger

	// set by the hub before send is closed
	closeReason string
}

// ID returns the connection id assigned at upgrade
func (c *Client) ID() model.ConnectionID {
	return c.id
}

// decode turns a frame into an inbound event. Clients cannot inject a
// disconnect; that is only produced when the socket goes away.
func (c *Client) decode(frame []byte) (model.Inbound, error) {
	var env envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return model.Inbound{}, err
	}

	kind := model.InboundKind(env.Event)
	if !kind.Valid() || kind == model.InboundDisconnect {
		return model.Inbound{}, errors.New("unsupported event " + env.Event)
	}

	in := model.Inbound{ConnectionID: c.id, Kind: kind}
	if len(env.Data) > 0 {
		var text string
		if err := json.Unmarshal(env.Data, &text); err == nil {
			in.Text = text
		}
	}
	return in, nil
}

// readPump pumps frames from the socket to the sink. It owns the disconnect:
// whatever ends the read loop, exactly one disconnect is submitted.
func (c *Client) readPump(sink Sink) {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()

		err := sink.Submit(context.Background(), model.Inbound{ConnectionID: c.id, Kind: model.InboundDisconnect})
		if err != nil {
			c.logger.Debug("disconnect not delivered", slog.String("error", err.Error()))
		}
		c.logger.Info("websocket closed", slog.Duration("connection_duration", time.Since(c.connectedAt)))
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				c.logger.Warn("websocket read failed", slog.String("error", err.Error()))
			}
			return
		}

		if !c.limiter.Allow() {
			c.logger.Debug("frame dropped by rate limit")
			continue
		}

		in, err := c.decode(frame)
		if err != nil {
			c.logger.Debug("frame ignored", slog.String("error", err.Error()))
			continue
		}

		if err := sink.Submit(context.Background(), in); err != nil {
			c.logger.Warn("event not accepted",
				slog.String("event", string(in.Kind)),
				slog.String("error", err.Error()),
			)
			return
		}
	}
}

// writePump pumps queued frames to the socket, one envelope per message
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.writeClose()
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) writeClose() {
	code := websocket.CloseNormalClosure
	reason := "server shutting down"
	if c.closeReason != "" {
		code = websocket.ClosePolicyViolation
		reason = c.closeReason
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
}
