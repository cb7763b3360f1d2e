package net

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"deepwarren/server/internal/dungeon"
	"deepwarren/server/internal/grid"
	"deepwarren/server/internal/sim"
	"deepwarren/server/logging"
)

const hubTestLayout = `
##########
#........#
#........#
##########
`

func newTestServer(t *testing.T) (*sim.Engine, *Hub, *httptest.Server) {
	t.Helper()
	m, err := dungeon.Parse(hubTestLayout)
	if err != nil {
		t.Fatalf("parse map: %v", err)
	}
	engine := sim.NewEngine(m, 1, logging.NopPublisher())
	hub := NewHub(logging.NopPublisher())
	srv := httptest.NewServer(NewMux(engine, hub))
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return engine, hub, srv
}

func dialObserver(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial observer: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHealthzAnswersOK(t *testing.T) {
	_, _, srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestSnapshotEndpointServesJSON(t *testing.T) {
	engine, _, srv := newTestServer(t)
	if _, err := engine.Spawn("rat", grid.Point{X: 2, Y: 1}); err != nil {
		t.Fatalf("spawn: %v", err)
	}

	resp, err := http.Get(srv.URL + "/snapshot")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("Content-Type"); got != "application/json" {
		t.Fatalf("expected json, got %q", got)
	}

	var snap sim.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(snap.Actors) != 1 || snap.Actors[0].Kind != "rat" {
		t.Fatalf("expected the rat in the snapshot, got %+v", snap.Actors)
	}
	if snap.MapWidth != 10 || snap.MapHeight != 4 {
		t.Fatalf("expected a 10x4 map, got %dx%d", snap.MapWidth, snap.MapHeight)
	}
}

func TestBroadcastReachesObservers(t *testing.T) {
	_, hub, srv := newTestServer(t)
	conn := dialObserver(t, srv)

	// Subscribing races the broadcast; retry until the hub has the client.
	deadline := time.Now().Add(time.Second)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	go func() {
		for time.Now().Before(deadline) {
			hub.Broadcast(sim.Snapshot{Turn: 3, MapWidth: 10, MapHeight: 4})
			time.Sleep(10 * time.Millisecond)
		}
	}()

	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var snap sim.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if snap.Turn != 3 {
		t.Fatalf("expected turn 3, got %d", snap.Turn)
	}
}

func TestCloseDisconnectsObservers(t *testing.T) {
	_, hub, srv := newTestServer(t)
	conn := dialObserver(t, srv)

	// Wait for the subscription to land before closing.
	waitUntil(t, func() bool { return hub.observerCount() == 1 })
	hub.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				t.Fatalf("expected a normal close, got %v", err)
			}
			return
		}
	}
}

func TestDisconnectedObserversAreForgotten(t *testing.T) {
	_, hub, srv := newTestServer(t)
	conn := dialObserver(t, srv)

	waitUntil(t, func() bool { return hub.observerCount() == 1 })
	conn.Close()
	waitUntil(t, func() bool { return hub.observerCount() == 0 })
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition never held")
}
