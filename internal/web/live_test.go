package web

import (
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/swordgame-go/internal/testutil"
)

// A panic after the socket upgrade must not try to write an HTTP error onto the hijacked connection
func TestLiveRoutesRecoverSilentlyAfterUpgrade(t *testing.T) {
	logger, logs := testutil.CaptureLogger()

	r := mux.NewRouter()
	live := r.NewRoute().Subrouter()
	useLiveMiddleware(live, logger)
	live.HandleFunc("/ws", func(w http.ResponseWriter, _ *http.Request) {
		conn, buf, err := http.NewResponseController(w).Hijack()
		if err != nil {
			panic(err)
		}
		_, _ = buf.WriteString("HTTP/1.1 204 No Content\r\nConnection: close\r\n\r\n")
		_ = buf.Flush()
		_ = conn.Close()
		panic("socket handler failed")
	})

	done := make(chan struct{})
	serverLog := &testutil.LogBuffer{}
	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer close(done)
		r.ServeHTTP(w, req)
	}))
	srv.Config.ErrorLog = log.New(serverLog, "", 0)
	srv.Start()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ws")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not return")
	}
	assert.NotContains(t, serverLog.String(), "hijacked connection")
	assert.Contains(t, logs.String(), "panic recovered")
	assert.Contains(t, logs.String(), `"upgraded":true`)
}
