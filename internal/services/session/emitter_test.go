package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/swordgame-go/internal/dependencies/mocks"
	"github.com/mcoot/swordgame-go/internal/model"
)

type recordingFeed struct {
	events []model.Event
}

func (f *recordingFeed) Broadcast(ev model.Event) {
	f.events = append(f.events, ev)
}

func TestTeeMirrorsBroadcastsOnly(t *testing.T) {
	primary := mocks.NewEmitter()
	feed := &recordingFeed{}
	em := Tee(primary, feed)

	em.Send("conn-1", model.Event{Name: model.EventUpdateStats})
	em.Broadcast(model.Event{Name: model.EventNews})
	em.BroadcastExcept("conn-1", model.Event{Name: model.EventUserJoined})
	em.Close("conn-2", "bye")

	assert.Len(t, primary.All(), 4)
	assert.Equal(t, []model.Event{
		{Name: model.EventNews},
		{Name: model.EventUserJoined},
	}, feed.events)
}
