package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newHubServer(t *testing.T, hub *wsHub) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade error: %v", err)
			return
		}
		hub.add(conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dialHub(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	return conn
}

func waitForCount(t *testing.T, hub *wsHub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.count() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("hub has %d clients, want %d", hub.count(), want)
}

func TestHubBroadcastReachesClient(t *testing.T) {
	hub := newWSHub()
	srv := newHubServer(t, hub)

	conn := dialHub(t, srv)
	defer conn.Close()
	waitForCount(t, hub, 1)

	hub.broadcast([]byte(`{"angle_deg":90}`))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if string(msg) != `{"angle_deg":90}` {
		t.Errorf("got message %q, want %q", msg, `{"angle_deg":90}`)
	}
}

func TestHubDropsDisconnectedClient(t *testing.T) {
	hub := newWSHub()
	srv := newHubServer(t, hub)

	conn := dialHub(t, srv)
	waitForCount(t, hub, 1)

	// A client that goes away must leave the set without waiting for the
	// next broadcast to fail.
	conn.Close()
	waitForCount(t, hub, 0)
}
