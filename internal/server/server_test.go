package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/soar/VRPawn/internal/hub"
	"github.com/soar/VRPawn/internal/pawn"
	"github.com/soar/VRPawn/internal/runner"
	"github.com/soar/VRPawn/internal/xr"
)

const indexHTML = `<!DOCTYPE html>
<html>
  <head>
    <title>VRPawn</title>
    <style>
      body   {   margin: 0;   }
    </style>
  </head>
  <body>
    <p>  hello  </p>
  </body>
</html>
`

type nopController struct{}

func (nopController) StartSession()                   {}
func (nopController) EndSession()                     {}
func (nopController) SourcesChanged([]xr.SourceEvent) {}
func (nopController) Submit(runner.Frame)             {}

func frontend() fstest.MapFS {
	return fstest.MapFS{
		"index.html": {Data: []byte(indexHTML)},
		"app.js":     {Data: []byte("function add ( a , b ) {\n  return a + b ;\n}\n")},
		"model.bin":  {Data: []byte{0x00, 0x01, 0x02}},
		"sub/a.json": {Data: []byte("{ \"a\" : 1 }")},
	}
}

func newTestServer(t *testing.T, minify bool) (*Server, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	h := hub.NewHub(zap.NewNop())
	go h.Run(ctx)
	snapshots := make(chan pawn.Snapshot)
	b := hub.NewBroadcaster(h, snapshots, zap.NewNop())
	go b.Run(ctx)

	s, err := New(Options{
		Hub:         h,
		Broadcaster: b,
		Controller:  nopController{},
		Frontend:    frontend(),
		Minify:      minify,
		Logger:      zap.NewNop(),
	})
	require.NoError(t, err)
	return s, cancel
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestServesMinifiedFrontend(t *testing.T) {
	s, cancel := newTestServer(t, true)
	defer cancel()
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, body := get(t, srv, "/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "hello")
	assert.Less(t, len(body), len(indexHTML))

	resp, body = get(t, srv, "/app.js")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, "\n  ")

	resp, body = get(t, srv, "/sub/a.json")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"a":1}`, body)

	resp, body = get(t, srv, "/model.bin")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string([]byte{0x00, 0x01, 0x02}), body)

	resp, _ = get(t, srv, "/missing.html")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServesFrontendVerbatim(t *testing.T) {
	s, cancel := newTestServer(t, false)
	defer cancel()
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	_, body := get(t, srv, "/index.html")
	assert.Equal(t, indexHTML, body)
}

func TestWebSocketReceivesInitialState(t *testing.T) {
	s, cancel := newTestServer(t, true)
	defer cancel()
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var m hub.WSMessage
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, hub.TypeFull, m.Type)
	require.NotNil(t, m.Data)
	assert.False(t, m.Data.Active)
}

func TestShutdownBeforeListen(t *testing.T) {
	s, cancel := newTestServer(t, false)
	defer cancel()
	assert.NoError(t, s.Shutdown(context.Background()))
}
