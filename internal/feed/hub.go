// Package feed pushes live occupancy updates to websocket subscribers.
package feed

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Shivanand-hulikatti/parking-lot/internal/logging"
	"github.com/Shivanand-hulikatti/parking-lot/internal/model"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 512
	clientBuffer   = 16
	hubBuffer      = 256
)

// Hub fans occupancy updates out to every connected client. Publish never
// blocks: an update that does not fit the buffer is dropped, and so is a
// client that cannot keep up.
type Hub struct {
	log       logging.Logger
	upgrader  websocket.Upgrader
	broadcast chan model.OccupancyUpdate

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan model.OccupancyUpdate
}

// NewHub constructs a Hub. Call Run to start delivering updates.
func NewHub(log logging.Logger) *Hub {
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		broadcast: make(chan model.OccupancyUpdate, hubBuffer),
		clients:   make(map[*client]struct{}),
	}
}

// Publish queues an update for delivery.
func (h *Hub) Publish(update model.OccupancyUpdate) {
	select {
	case h.broadcast <- update:
	default:
		h.log.Warn(context.Background(), "occupancy update dropped", "area_id", update.AreaID)
	}
}

// Run delivers queued updates until ctx is done, then disconnects everyone.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return nil
		case update := <-h.broadcast:
			h.fanOut(update)
		}
	}
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and keeps the subscriber until it goes away.
// Messages sent by the client are read and discarded.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		h.log.Warn(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan model.OccupancyUpdate, clientBuffer)}
	h.add(c)
	go h.writePump(c)

	conn.SetReadLimit(maxMessageSize)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(c)
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for update := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(update); err != nil {
			h.log.Debug(context.Background(), "websocket write failed", "error", err)
			return
		}
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) fanOut(update model.OccupancyUpdate) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- update:
		default:
			delete(h.clients, c)
			close(c.send)
		}
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
