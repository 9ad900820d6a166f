package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/blastfield/internal/config"
	"github.com/zeusync/blastfield/internal/core/observability/log"
)

func newTestServer(t *testing.T, cfg config.Config) (*Server, string) {
	t.Helper()
	srv := NewServer(cfg, log.Nop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	welcome := read(t, conn)
	require.Equal(t, MsgWelcome, welcome.Type)
	require.NotEmpty(t, welcome.SessionID)
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg ClientMessage) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
}

func read(t *testing.T, conn *websocket.Conn) ServerMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg ServerMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestBridge_TapAndExplode(t *testing.T) {
	_, url := newTestServer(t, config.Default())
	conn := dial(t, url)

	send(t, conn, ClientMessage{Type: MsgSession, Transition: "run"})
	lc := read(t, conn)
	require.Equal(t, MsgLifecycle, lc.Type)
	assert.Equal(t, "running", lc.Lifecycle.To)

	send(t, conn, ClientMessage{Type: MsgAnchorAdded, Anchor: &AnchorPayload{
		ID: "floor", Kind: "plane", Center: Vec{0, -0.5, 0}, Extent: Vec{2, 0, 3},
	}})
	surface := read(t, conn)
	require.Equal(t, MsgSurfaceUpsert, surface.Type)
	assert.Equal(t, &SurfacePayload{AnchorID: "floor", Center: Vec{0, -0.5, 0}, Width: 2, Depth: 3}, surface.Surface)

	send(t, conn, ClientMessage{Type: MsgTap, Hit: &Vec{1, -0.5, 0}})
	added := read(t, conn)
	require.Equal(t, MsgBodyAdd, added.Type)
	require.NotNil(t, added.Body)
	assert.Equal(t, "box", added.Body.Shape)
	assert.Equal(t, 1.0, added.Body.Size)
	assert.Equal(t, 2.0, added.Body.Mass)
	assert.Equal(t, Vec{1, 0, 0}, added.Body.Position)

	send(t, conn, ClientMessage{Type: MsgLongPress, Hit: &Vec{0, 0, 0}})
	impulses := read(t, conn)
	require.Equal(t, MsgImpulses, impulses.Type)
	require.Len(t, impulses.Impulses, 1)
	assert.Equal(t, ImpulsePayload{BodyID: added.Body.ID, Impulse: Vec{2, 0, 0}}, impulses.Impulses[0])
}

func TestBridge_BodyPositionFeedsExplosion(t *testing.T) {
	_, url := newTestServer(t, config.Default())
	conn := dial(t, url)

	send(t, conn, ClientMessage{Type: MsgSession, Transition: "run"})
	read(t, conn)

	send(t, conn, ClientMessage{Type: MsgTap, Hit: &Vec{4, 4, 4}})
	added := read(t, conn)

	send(t, conn, ClientMessage{Type: MsgBodyPosition, BodyID: added.Body.ID, Position: &Vec{0, 0, 1}})
	send(t, conn, ClientMessage{Type: MsgLongPress, Hit: &Vec{0, 0, 0}})
	impulses := read(t, conn)
	require.Equal(t, MsgImpulses, impulses.Type)
	assert.Equal(t, Vec{0, 0, 2}, impulses.Impulses[0].Impulse)
}

func TestBridge_Errors(t *testing.T) {
	_, url := newTestServer(t, config.Default())
	conn := dial(t, url)

	// input before the session runs
	send(t, conn, ClientMessage{Type: MsgTap, Seq: 7, Hit: &Vec{0, 0, 0}})
	msg := read(t, conn)
	require.Equal(t, MsgError, msg.Type)
	assert.Equal(t, uint64(7), msg.Seq)
	assert.Contains(t, msg.Error, "not running")

	send(t, conn, ClientMessage{Type: "teleport", Seq: 8})
	msg = read(t, conn)
	require.Equal(t, MsgError, msg.Type)
	assert.Contains(t, msg.Error, ErrUnknownMessage.Error())

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	msg = read(t, conn)
	require.Equal(t, MsgError, msg.Type)
	assert.Contains(t, msg.Error, ErrInvalidMessage.Error())

	send(t, conn, ClientMessage{Type: MsgAnchorAdded, Seq: 9})
	msg = read(t, conn)
	assert.Equal(t, uint64(9), msg.Seq)
	assert.Contains(t, msg.Error, ErrMissingField.Error())

	// the connection survives protocol errors
	send(t, conn, ClientMessage{Type: MsgSession, Transition: "run"})
	assert.Equal(t, MsgLifecycle, read(t, conn).Type)
}

func TestBridge_SessionFailureNotifiesUser(t *testing.T) {
	_, url := newTestServer(t, config.Default())
	conn := dial(t, url)

	send(t, conn, ClientMessage{Type: MsgSession, Transition: "run"})
	read(t, conn)

	send(t, conn, ClientMessage{Type: MsgSession, Transition: "failed", Error: "camera denied"})
	notice := read(t, conn)
	require.Equal(t, MsgNotice, notice.Type)
	assert.Equal(t, "AR session failed: camera denied", notice.Notice)
	lc := read(t, conn)
	require.Equal(t, MsgLifecycle, lc.Type)
	assert.Equal(t, "failed", lc.Lifecycle.To)

	send(t, conn, ClientMessage{Type: MsgTap, Hit: &Vec{0, 0, 0}})
	msg := read(t, conn)
	require.Equal(t, MsgError, msg.Type)
	assert.Contains(t, msg.Error, "ar session failed")
}

func TestBridge_NonPlaneAnchorIgnored(t *testing.T) {
	_, url := newTestServer(t, config.Default())
	conn := dial(t, url)

	send(t, conn, ClientMessage{Type: MsgAnchorAdded, Anchor: &AnchorPayload{ID: "face", Kind: "face"}})
	send(t, conn, ClientMessage{Type: MsgAnchorAdded, Anchor: &AnchorPayload{ID: "table", Kind: "plane", Extent: Vec{1, 0, 1}}})

	msg := read(t, conn)
	require.Equal(t, MsgSurfaceUpsert, msg.Type)
	assert.Equal(t, "table", msg.Surface.AnchorID)
}

func TestBridge_MaxSessions(t *testing.T) {
	cfg := config.Default()
	cfg.Server.MaxSessions = 1
	srv, url := newTestServer(t, cfg)

	dial(t, url)
	require.Eventually(t, func() bool { return srv.ActiveSessions() == 1 }, time.Second, 10*time.Millisecond)

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	srv := NewServer(config.Default(), log.Nop())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, healthResponse{Status: "ok", Sessions: 0}, body)
}

func TestServe_ShutdownClosesSessions(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewServer(config.Default(), log.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	conn := dial(t, "ws://"+ln.Addr().String()+"/ws")
	require.Eventually(t, func() bool { return srv.ActiveSessions() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)

	assert.ErrorIs(t, srv.Serve(context.Background(), ln), ErrServerClosed)
}
