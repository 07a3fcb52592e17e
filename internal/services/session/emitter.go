package session

import "github.com/mcoot/swordgame-go/internal/model"

// Emitter delivers outbound events over the transport
type Emitter interface {
	// Send delivers to exactly one connection
	Send(id model.ConnectionID, ev model.Event)
	// Broadcast delivers to every connection
	Broadcast(ev model.Event)
	// BroadcastExcept delivers to every connection but one
	BroadcastExcept(id model.ConnectionID, ev model.Event)
	// Close terminates a connection
	Close(id model.ConnectionID, reason string)
}

// Broadcaster receives broadcast traffic only, e.g. a spectator feed
type Broadcaster interface {
	Broadcast(ev model.Event)
}

type tee struct {
	Emitter
	mirrors []Broadcaster
}

// Tee returns an Emitter that also copies every broadcast to the mirrors
func Tee(primary Emitter, mirrors ...Broadcaster) Emitter {
	return &tee{Emitter: primary, mirrors: mirrors}
}

func (t *tee) Broadcast(ev model.Event) {
	t.Emitter.Broadcast(ev)
	for _, m := range t.mirrors {
		m.Broadcast(ev)
	}
}

func (t *tee) BroadcastExcept(id model.ConnectionID, ev model.Event) {
	t.Emitter.BroadcastExcept(id, ev)
	for _, m := range t.mirrors {
		m.Broadcast(ev)
	}
}
