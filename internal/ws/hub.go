package ws

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/keranjangku/keranjangku-backend/pkg/logger"
)

// Hub fans basket events out to connected collaborators. Each basket has its
// own room; delivery is fire-and-forget, slow or broken connections are
// dropped from the room.
type Hub struct {
	mu    sync.Mutex
	rooms map[uuid.UUID][]*websocket.Conn
	logg  *logger.Logger
}

// NewHub builds an empty hub.
func NewHub(logg *logger.Logger) *Hub {
	return &Hub{
		rooms: make(map[uuid.UUID][]*websocket.Conn),
		logg:  logg,
	}
}

// Subscribe adds the connection to the basket's room.
func (h *Hub) Subscribe(basketID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rooms[basketID] = append(h.rooms[basketID], conn)
}

// Unsubscribe removes the connection from the basket's room.
func (h *Hub) Unsubscribe(basketID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.rooms[basketID]
	kept := make([]*websocket.Conn, 0, len(conns))
	for _, c := range conns {
		if c != conn {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		delete(h.rooms, basketID)
		return
	}
	h.rooms[basketID] = kept
}

// Broadcast writes the message to every connection in the basket's room.
// Connections that fail the write are closed and evicted.
func (h *Hub) Broadcast(ctx context.Context, basketID uuid.UUID, message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.rooms[basketID]
	if len(conns) == 0 {
		return
	}
	kept := conns[:0]
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			if h.logg != nil {
				h.logg.Warn(ctx, "dropping websocket connection after failed write")
			}
			_ = conn.Close()
			continue
		}
		kept = append(kept, conn)
	}
	if len(kept) == 0 {
		delete(h.rooms, basketID)
		return
	}
	h.rooms[basketID] = kept
}

// RoomSize reports the number of live connections for a basket.
func (h *Hub) RoomSize(basketID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[basketID])
}
