package e2e_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/swordgame-go/internal/api"
	"github.com/mcoot/swordgame-go/internal/factory"
	"github.com/mcoot/swordgame-go/internal/testutil"
	"github.com/mcoot/swordgame-go/internal/web"
)

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer runs a TestApp behind the production router and HTTP server
type testServer struct {
	app *factory.TestApp
	url string
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, app.Start(ctx))

	logger := testutil.NopLogger()
	router := web.NewRouter(web.RouterConfig{
		Logger:    logger,
		Hub:       app.Hub,
		Sink:      app.Dispatcher,
		Feed:      app.Feed,
		Greeting:  app.Greeting(),
		Players:   app.Dispatcher,
		StaticDir: filepath.Join(findProjectRoot(t), "public"),
	})

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := api.NewServer(router, api.DefaultServerConfig(), logger)
	go func() {
		if err := server.Serve(listener); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	ts := &testServer{app: app, url: "http://" + listener.Addr().String()}
	waitForServer(t, ts.url+"/api/v1/health")

	t.Cleanup(func() {
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = server.Shutdown(shutdownCtx)
		app.Wait()
	})
	return ts
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready")
}

// wireEvent is an outbound frame as a client sees it
type wireEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type wirePlayer struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Level    int    `json:"level"`
	Money    int64  `json:"money"`
}

type wireVisual struct {
	ID      string `json:"id"`
	Level   int    `json:"level"`
	Outcome string `json:"outcome"`
}

type wireChat struct {
	Nickname string `json:"nickname"`
	Msg      string `json:"msg"`
	Type     string `json:"type"`
}

// player is one websocket game client
type player struct {
	t    *testing.T
	conn *websocket.Conn
}

func dialPlayer(t *testing.T, ts *testServer) *player {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.url, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &player{t: t, conn: conn}
}

func (p *player) send(event string, data any) {
	p.t.Helper()
	frame := map[string]any{"event": event}
	if data != nil {
		frame["data"] = data
	}
	require.NoError(p.t, p.conn.WriteJSON(frame))
}

func (p *player) next() wireEvent {
	p.t.Helper()
	require.NoError(p.t, p.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev wireEvent
	require.NoError(p.t, p.conn.ReadJSON(&ev))
	return ev
}

// expect reads the next event, requires its name and decodes its data into v
func (p *player) expect(name string, v any) {
	p.t.Helper()
	ev := p.next()
	require.Equal(p.t, name, ev.Event, "data: %s", string(ev.Data))
	if v != nil {
		require.NoError(p.t, json.Unmarshal(ev.Data, v))
	}
}

// login joins and consumes the sender's join events, returning the roster
func (p *player) login(nickname string) map[string]wirePlayer {
	p.t.Helper()
	p.send("login", nickname)
	var roster map[string]wirePlayer
	p.expect("init_users", &roster)
	p.expect("news", nil)
	p.expect("chat_message", nil)
	return roster
}

func idOf(t *testing.T, roster map[string]wirePlayer, nickname string) string {
	t.Helper()
	for id, p := range roster {
		if p.Nickname == nickname {
			return id
		}
	}
	t.Fatalf("%s not in roster", nickname)
	return ""
}
