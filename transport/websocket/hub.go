package websocket

import (
	"log/slog"
	"sync"
)

const DefaultSendBuffer = 16

// Hub keeps the open connections by player ID and delivers events to them.
type Hub struct {
	logger     *slog.Logger
	sendBuffer int

	mu          sync.RWMutex
	connections map[string]*connection
}

func NewHub(logger *slog.Logger, sendBuffer int) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = DefaultSendBuffer
	}

	return &Hub{
		logger:      logger.With("component", "ws_hub"),
		sendBuffer:  sendBuffer,
		connections: make(map[string]*connection),
	}
}

// Notify enqueues the event for the player's write pump. It never blocks:
// events for unknown players or full buffers are dropped.
func (that *Hub) Notify(playerID, event string, payload any) {
	log := that.logger.With("method", "Notify", "playerID", playerID, "event", event)

	data, err := encodeMessage(event, payload)
	if err != nil {
		log.Error("failed to encode event", "error", err)
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	conn, ok := that.connections[playerID]
	if !ok {
		log.Debug("connection not found")
		return
	}

	select {
	case conn.send <- data:
	default:
		log.Warn("send buffer is full, event dropped")
	}
}

// Count returns the number of open connections.
func (that *Hub) Count() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.connections)
}

func (that *Hub) register(conn *connection) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.connections[conn.id] = conn
}

// unregister closes the send channel under the write lock so Notify never
// sends on a closed channel.
func (that *Hub) unregister(conn *connection) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if current, ok := that.connections[conn.id]; ok && current == conn {
		delete(that.connections, conn.id)
	}

	conn.closeSend()
}

// Close drops every connection; their read pumps run the disconnect path.
func (that *Hub) Close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	for id, conn := range that.connections {
		conn.closeSend()
		_ = conn.ws.Close()
		delete(that.connections, id)
	}
}
