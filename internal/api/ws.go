package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// Hub pushes state snapshots to connected frontends over websockets. The
// frontend never has to poll; every state change arrives as a full snapshot.
type Hub struct {
	snapshot func() any
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}

	// Gorilla connections allow one concurrent writer; all writes go
	// through sendMu.
	sendMu sync.Mutex
}

// NewHub creates a Hub. snapshot produces the payload sent on connect and on
// every Broadcast.
func NewHub(snapshot func() any) *Hub {
	return &Hub{
		snapshot: snapshot,
		upgrader: websocket.Upgrader{
			// The server only listens on loopback; the webview shell and
			// browser tabs connect with arbitrary Origin headers.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// HandleWS handles GET /api/state/ws
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Websocket upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	slog.Debug("Websocket client connected", "clients", n)

	// Initial snapshot so the client renders without waiting for a change.
	h.send(conn, h.snapshot())

	// Drain the read side to notice disconnects.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast sends the current snapshot to every connected client.
func (h *Hub) Broadcast() {
	payload := h.snapshot()

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		h.send(c, payload)
	}
}

// ClientCount returns the number of connected frontends.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.clients = make(map[*websocket.Conn]struct{})
	h.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}

func (h *Hub) send(conn *websocket.Conn, payload any) {
	h.sendMu.Lock()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := conn.WriteJSON(payload)
	h.sendMu.Unlock()
	if err != nil {
		slog.Debug("Websocket write failed, dropping client", "error", err)
		h.drop(conn)
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()
	if ok {
		conn.Close()
	}
}
