package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/giantswarm/micrologger/microloggertest"
	"github.com/gorilla/websocket"

	"github.com/comalice/reactiontask/internal/core"
	"github.com/comalice/reactiontask/internal/primitives"
	"github.com/comalice/reactiontask/testutil"
)

// dialTestWS creates a test HTTP server that upgrades to WebSocket and returns
// the server-side connection. The caller must close the server.
func dialTestWS(t *testing.T) (*httptest.Server, *websocket.Conn) {
	t.Helper()

	connCh := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		connCh <- c
	}))

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientConn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("dial: %v", err)
	}
	_ = clientConn.Close()

	select {
	case serverConn := <-connCh:
		return srv, serverConn
	case <-time.After(2 * time.Second):
		srv.Close()
		t.Fatal("timed out waiting for server-side WebSocket connection")
		return nil, nil
	}
}

func newTestBroadcaster(t *testing.T, buffer int) *Broadcaster {
	t.Helper()
	b, err := NewBroadcaster(BroadcasterConfig{Logger: microloggertest.New(), SendBuffer: buffer})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

// addIdleClient registers a client without a writer, so its queue only
// drains when the test reads it.
func addIdleClient(b *Broadcaster, conn *websocket.Conn, buffer int) *client {
	c := &client{conn: conn, b: b, send: make(chan []byte, buffer)}
	b.mu.Lock()
	b.clients[c] = true
	b.mu.Unlock()
	return c
}

func TestNewBroadcaster_RequiresLogger(t *testing.T) {
	if _, err := NewBroadcaster(BroadcasterConfig{}); !IsInvalidConfig(err) {
		t.Errorf("got %v, want invalidConfigError", err)
	}
}

func TestBroadcaster_HostMessages(t *testing.T) {
	srv, conn := dialTestWS(t)
	defer srv.Close()

	b := newTestBroadcaster(t, 8)
	c := addIdleClient(b, conn, 8)

	b.EmitSignal()
	b.DebugLog("Reached SendSignal State")
	b.StopSignal()

	var got []WSMessage
	for i := 0; i < 3; i++ {
		var msg struct {
			Type    MessageType  `json:"type"`
			Payload DebugPayload `json:"payload"`
		}
		if err := json.Unmarshal(<-c.send, &msg); err != nil {
			t.Fatal(err)
		}
		got = append(got, WSMessage{Type: msg.Type, Payload: msg.Payload.Line})
	}

	want := []WSMessage{
		{Type: MsgSignal, Payload: ""},
		{Type: MsgDebug, Payload: "Reached SendSignal State"},
		{Type: MsgSignalStop, Payload: ""},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestBroadcaster_PublishSample(t *testing.T) {
	srv, conn := dialTestWS(t)
	defer srv.Close()

	b := newTestBroadcaster(t, 8)
	c := addIdleClient(b, conn, 8)

	b.Publish(context.Background(), core.TransitionRecord{
		Event:  primitives.ResponseReceived,
		From:   primitives.WaitResponse,
		To:     primitives.ProcessResponse,
		Sample: &primitives.Reaction{ElapsedMs: 900, ReactionMs: 300},
	})

	if n := len(c.send); n != 2 {
		t.Fatalf("got %d queued messages, want transition and sample", n)
	}
	if msg := string(<-c.send); !strings.Contains(msg, `"type":"transition"`) || !strings.Contains(msg, `"from":"WaitResponse"`) {
		t.Errorf("transition message = %s", msg)
	}
	if msg := string(<-c.send); !strings.Contains(msg, `"type":"sample"`) || !strings.Contains(msg, `"reactionMs":300`) {
		t.Errorf("sample message = %s", msg)
	}
}

func TestBroadcaster_SlowClientDisconnected(t *testing.T) {
	srv, conn := dialTestWS(t)
	defer srv.Close()

	b := newTestBroadcaster(t, 1)
	addIdleClient(b, conn, 1)

	b.EmitSignal()
	if b.ClientCount() != 1 {
		t.Fatal("client dropped before its queue was full")
	}
	b.StopSignal()
	if b.ClientCount() != 0 {
		t.Errorf("slow client still connected, ClientCount = %d", b.ClientCount())
	}
}

// TestWritePump_RemovesClientOnWriteError verifies that a write error removes
// the dead client from the broadcaster.
func TestWritePump_RemovesClientOnWriteError(t *testing.T) {
	srv, serverConn := dialTestWS(t)
	defer srv.Close()

	b := newTestBroadcaster(t, 4)
	c := addIdleClient(b, serverConn, 4)

	serverConn.Close()
	c.send <- []byte(`{"type":"test"}`)
	go c.writePump()

	if !testutil.WaitFor(2*time.Second, func() bool { return b.ClientCount() == 0 }) {
		t.Fatalf("client not removed after write error; ClientCount = %d", b.ClientCount())
	}
}

func TestBroadcaster_Close(t *testing.T) {
	srv, conn := dialTestWS(t)
	defer srv.Close()

	b := newTestBroadcaster(t, 4)
	c := addIdleClient(b, conn, 4)

	b.Close()
	if b.ClientCount() != 0 {
		t.Errorf("ClientCount = %d after Close", b.ClientCount())
	}
	if _, ok := <-c.send; ok {
		t.Error("send queue still open after Close")
	}
	b.EmitSignal()
}
