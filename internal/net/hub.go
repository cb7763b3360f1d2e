// Package net serves the observer surface: a websocket feed of per-turn
// snapshots plus a few plain HTTP endpoints.
package net

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"deepwarren/server/internal/sim"
	"deepwarren/server/logging"
	lognet "deepwarren/server/logging/network"
)

const writeTimeout = 5 * time.Second

// Hub fans simulation snapshots out to connected observers. Observers only
// watch; there is no client command path.
type Hub struct {
	mu        sync.Mutex
	clients   map[string]*client
	publisher logging.Publisher
	lastTurn  uint64
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// NewHub builds an empty hub.
func NewHub(publisher logging.Publisher) *Hub {
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	return &Hub{
		clients:   make(map[string]*client),
		publisher: publisher,
	}
}

// Subscribe registers a websocket connection and starts its writer. The
// returned id identifies the observer in logs.
func (h *Hub) Subscribe(conn *websocket.Conn, remoteAddr string) string {
	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, 16),
	}
	h.mu.Lock()
	h.clients[c.id] = c
	turn := h.lastTurn
	h.mu.Unlock()

	lognet.ObserverConnected(context.Background(), h.publisher, turn,
		lognet.Payload{ClientID: c.id, RemoteAddr: remoteAddr})

	go h.writer(c)
	go h.reader(c)
	return c.id
}

// Broadcast queues a snapshot for every observer. Observers whose send
// buffer is full are dropped rather than allowed to stall the loop.
func (h *Hub) Broadcast(snap sim.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	h.mu.Lock()
	h.lastTurn = snap.Turn
	var stalled []*client
	for _, c := range h.clients {
		select {
		case c.send <- data:
		default:
			stalled = append(stalled, c)
		}
	}
	h.mu.Unlock()

	for _, c := range stalled {
		h.drop(c, "slow consumer")
	}
}

func (h *Hub) observerCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every observer.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()
	for _, c := range clients {
		h.drop(c, "server shutdown")
	}
}

func (h *Hub) writer(c *client) {
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.drop(c, err.Error())
			c.conn.Close()
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.conn.Close()
}

// reader drains and discards inbound frames so pings and close frames are
// processed, and notices disconnects.
func (h *Hub) reader(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.drop(c, err.Error())
			return
		}
	}
}

func (h *Hub) drop(c *client, reason string) {
	h.mu.Lock()
	_, present := h.clients[c.id]
	if present {
		delete(h.clients, c.id)
		close(c.send)
	}
	turn := h.lastTurn
	h.mu.Unlock()
	if !present {
		return
	}
	lognet.ObserverDisconnected(context.Background(), h.publisher, turn,
		lognet.Payload{ClientID: c.id, Reason: reason})
}
