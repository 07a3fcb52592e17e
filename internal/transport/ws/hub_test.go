package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/swordgame-go/internal/model"
	"github.com/mcoot/swordgame-go/internal/testutil"
)

// recordingSink collects submitted events
type recordingSink struct {
	mu     sync.Mutex
	events []model.Inbound
	seen   chan model.Inbound
}

func newRecordingSink() *recordingSink {
	return &recordingSink{seen: make(chan model.Inbound, 64)}
}

func (s *recordingSink) Submit(_ context.Context, in model.Inbound) error {
	s.mu.Lock()
	s.events = append(s.events, in)
	s.mu.Unlock()
	s.seen <- in
	return nil
}

func (s *recordingSink) count(id model.ConnectionID, kind model.InboundKind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, ev := range s.events {
		if ev.ConnectionID == id && ev.Kind == kind {
			n++
		}
	}
	return n
}

type HubSuite struct {
	suite.Suite
	hub    *Hub
	sink   *recordingSink
	server *httptest.Server
	cancel context.CancelFunc
}

func TestHubSuite(t *testing.T) {
	suite.Run(t, new(HubSuite))
}

func (s *HubSuite) SetupTest() {
	s.startHub(DefaultOptions())
}

func (s *HubSuite) startHub(opts Options) {
	if s.server != nil {
		s.TearDownTest()
	}
	var ctx context.Context
	ctx, s.cancel = context.WithCancel(context.Background())
	s.hub = NewHub(opts, testutil.NopLogger())
	s.sink = newRecordingSink()
	go s.hub.Run(ctx)
	s.server = httptest.NewServer(s.hub.Handler(s.sink))
}

func (s *HubSuite) TearDownTest() {
	s.server.Close()
	s.cancel()
	s.server = nil
}

func (s *HubSuite) dial() *websocket.Conn {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = conn.Close() })
	return conn
}

// login dials, logs in and returns the connection id the server assigned
func (s *HubSuite) login(nickname string) (*websocket.Conn, model.ConnectionID) {
	conn := s.dial()
	s.write(conn, `{"event":"login","data":"`+nickname+`"}`)
	in := s.next()
	s.Require().Equal(model.InboundLogin, in.Kind)
	s.Require().Equal(nickname, in.Text)
	return conn, in.ConnectionID
}

func (s *HubSuite) write(conn *websocket.Conn, frame string) {
	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, []byte(frame)))
}

func (s *HubSuite) next() model.Inbound {
	select {
	case in := <-s.sink.seen:
		return in
	case <-time.After(2 * time.Second):
		s.FailNow("timed out waiting for inbound event")
		return model.Inbound{}
	}
}

func (s *HubSuite) read(conn *websocket.Conn) map[string]any {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	_, data, err := conn.ReadMessage()
	s.Require().NoError(err)
	var out map[string]any
	s.Require().NoError(json.Unmarshal(data, &out))
	return out
}

func (s *HubSuite) TestLoginFrameIsDecoded() {
	_, id := s.login("Alice")

	s.NotEmpty(id)
	s.Eventually(func() bool { return s.hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
}

func (s *HubSuite) TestEachSocketGetsDistinctID() {
	_, a := s.login("Alice")
	_, b := s.login("Bob")

	s.NotEqual(a, b)
}

func (s *HubSuite) TestFramesWithoutDataDecode() {
	conn, id := s.login("Alice")

	s.write(conn, `{"event":"mine_gold"}`)
	s.write(conn, `{"event":"send_chat","data":"hi there"}`)

	mine := s.next()
	s.Equal(model.Inbound{ConnectionID: id, Kind: model.InboundMineGold}, mine)
	chat := s.next()
	s.Equal("hi there", chat.Text)
}

func (s *HubSuite) TestMalformedAndUnknownFramesAreIgnored() {
	conn, id := s.login("Alice")

	s.write(conn, `not json`)
	s.write(conn, `{"event":"teleport"}`)
	s.write(conn, `{"event":"disconnect"}`)
	s.write(conn, `{"event":"mine_gold"}`)

	s.Equal(model.InboundMineGold, s.next().Kind)
	s.Equal(0, s.sink.count(id, model.InboundDisconnect))
}

func (s *HubSuite) TestSendReachesOnlyTarget() {
	alice, aliceID := s.login("Alice")
	bob, _ := s.login("Bob")

	s.hub.Send(aliceID, model.Event{Name: model.EventNewsPersonal, Data: "just you"})
	s.hub.Broadcast(model.Event{Name: model.EventNews, Data: "everyone"})

	first := s.read(alice)
	s.Equal("news_personal", first["event"])
	s.Equal("just you", first["data"])
	s.Equal("news", s.read(alice)["event"])

	s.Equal("news", s.read(bob)["event"])
}

func (s *HubSuite) TestBroadcastExceptSkipsSender() {
	alice, aliceID := s.login("Alice")
	bob, _ := s.login("Bob")

	s.hub.BroadcastExcept(aliceID, model.Event{Name: model.EventUserJoined, Data: model.PlayerView{ID: aliceID, Nickname: "Alice"}})
	s.hub.Broadcast(model.Event{Name: model.EventNews, Data: "after"})

	joined := s.read(bob)
	s.Equal("user_joined", joined["event"])
	s.Equal("Alice", joined["data"].(map[string]any)["nickname"])

	s.Equal("news", s.read(alice)["event"])
}

func (s *HubSuite) TestClientCloseSubmitsOneDisconnect() {
	conn, id := s.login("Alice")

	s.Require().NoError(conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")))

	in := s.next()
	s.Equal(model.Inbound{ConnectionID: id, Kind: model.InboundDisconnect}, in)
	s.Eventually(func() bool { return s.hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	s.Equal(1, s.sink.count(id, model.InboundDisconnect))
}

func (s *HubSuite) TestServerCloseSendsPolicyViolation() {
	conn, id := s.login("Alice")

	s.hub.Send(id, model.Event{Name: model.EventNewsPersonal, Data: "before close"})
	s.hub.Close(id, "duplicate login")

	s.Equal("before close", s.read(conn)["data"])

	_, _, err := conn.ReadMessage()
	s.Require().Error(err)
	var closeErr *websocket.CloseError
	s.Require().ErrorAs(err, &closeErr)
	s.Equal(websocket.ClosePolicyViolation, closeErr.Code)
	s.Equal("duplicate login", closeErr.Text)

	s.Equal(model.InboundDisconnect, s.next().Kind)
	s.Equal(1, s.sink.count(id, model.InboundDisconnect))
}

func (s *HubSuite) TestRateLimitDropsExcessFrames() {
	s.startHub(Options{MessageRate: 0.001, MessageBurst: 3, SendBuffer: 16})
	conn := s.dial()

	for i := 0; i < 8; i++ {
		s.write(conn, `{"event":"mine_gold"}`)
	}
	s.Require().NoError(conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))

	var mined int
	for {
		in := s.next()
		if in.Kind == model.InboundDisconnect {
			break
		}
		mined++
	}
	s.Equal(3, mined)
}

func (s *HubSuite) TestShutdownClosesSockets() {
	conn, _ := s.login("Alice")

	s.cancel()

	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	_, _, err := conn.ReadMessage()
	var closeErr *websocket.CloseError
	s.Require().ErrorAs(err, &closeErr)
	s.Equal(websocket.CloseNormalClosure, closeErr.Code)
}

func TestSlowClientIsDropped(t *testing.T) {
	hub := NewHub(Options{SendBuffer: 1}, testutil.NopLogger())
	client := &Client{
		id:     "slow",
		hub:    hub,
		send:   make(chan []byte, 1),
		logger: testutil.NopLogger(),
	}
	hub.register(client)

	hub.deliver(delivery{audience: toOne, target: "slow", payload: []byte("1")})
	require.Equal(t, 1, hub.ClientCount())

	hub.deliver(delivery{audience: toAll, payload: []byte("2")})
	assert.Equal(t, 0, hub.ClientCount())
	assert.Equal(t, "too slow", client.closeReason)

	// unregister after a drop must not close send twice
	assert.NotPanics(t, func() { hub.unregister(client) })
}
