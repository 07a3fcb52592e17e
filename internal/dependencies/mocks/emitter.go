package mocks

import (
	"sync"

	"github.com/mcoot/swordgame-go/internal/model"
)

// Audience describes who a recorded event was addressed to
type Audience string

const (
	AudienceOne    Audience = "one"
	AudienceAll    Audience = "all"
	AudienceOthers Audience = "others"
	AudienceClosed Audience = "closed"
)

// Delivery is one recorded emission
type Delivery struct {
	Audience Audience
	// Target is the addressed connection for AudienceOne and AudienceClosed,
	// and the excluded connection for AudienceOthers
	Target model.ConnectionID
	Event  model.Event
	Reason string
}

// Emitter records everything the dispatcher emits
type Emitter struct {
	mu         sync.Mutex
	Deliveries []Delivery
}

// NewEmitter creates an empty recording emitter
func NewEmitter() *Emitter {
	return &Emitter{}
}

// Send records a unicast
func (e *Emitter) Send(id model.ConnectionID, ev model.Event) {
	e.record(Delivery{Audience: AudienceOne, Target: id, Event: ev})
}

// Broadcast records a broadcast to every connection
func (e *Emitter) Broadcast(ev model.Event) {
	e.record(Delivery{Audience: AudienceAll, Event: ev})
}

// BroadcastExcept records a broadcast that skips one connection
func (e *Emitter) BroadcastExcept(id model.ConnectionID, ev model.Event) {
	e.record(Delivery{Audience: AudienceOthers, Target: id, Event: ev})
}

// Close records a forced disconnect
func (e *Emitter) Close(id model.ConnectionID, reason string) {
	e.record(Delivery{Audience: AudienceClosed, Target: id, Reason: reason})
}

func (e *Emitter) record(d Delivery) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Deliveries = append(e.Deliveries, d)
}

// All returns a copy of the recorded deliveries
func (e *Emitter) All() []Delivery {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Delivery, len(e.Deliveries))
	copy(out, e.Deliveries)
	return out
}

// Named returns the recorded deliveries for one event name
func (e *Emitter) Named(name model.EventName) []Delivery {
	var out []Delivery
	for _, d := range e.All() {
		if d.Event.Name == name {
			out = append(out, d)
		}
	}
	return out
}

// Reset discards all recorded deliveries
func (e *Emitter) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Deliveries = nil
}
