package events

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const writeTimeout = 2 * time.Second

// Envelope is the discriminated form of an event on the wire
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Hub fans application events out to websocket clients. It satisfies
// app.Handle.
type Hub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader
	log      *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     LoopbackOrigin,
		},
		log: logger,
	}
}

// Emit broadcasts the event to every connected client
func (h *Hub) Emit(event string, payload any) error {
	b, err := json.Marshal(Envelope{Type: event, Payload: payload})
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for ws := range h.clients {
		_ = ws.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
			h.log.Debug("Dropping websocket client", "remote", ws.RemoteAddr(), "error", err)
			_ = ws.Close()
			delete(h.clients, ws)
		}
	}
	return nil
}

// ServeHTTP upgrades the request and keeps the client registered until it
// disconnects. Incoming messages are ignored.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("Websocket upgrade failed", "error", err)
		return
	}

	h.add(ws)
	h.log.Debug("Websocket client connected", "remote", ws.RemoteAddr())

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(ws)
	h.log.Debug("Websocket client disconnected", "remote", ws.RemoteAddr())
}

// Count returns the number of connected clients
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ws := range h.clients {
		_ = ws.Close()
		delete(h.clients, ws)
	}
}

func (h *Hub) add(ws *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[ws] = struct{}{}
	_ = ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	_ = ws.WriteJSON(Envelope{Type: "welcome", Payload: map[string]int{"clients": len(h.clients)}})
}

func (h *Hub) remove(ws *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, ws)
	h.mu.Unlock()
	_ = ws.Close()
}
