// Package ws pushes price-change events to branch price boards over
// WebSocket. Subscribers register per branch; rule writes fan out to every
// board of that branch.
package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const sendBuffer = 16

// Hub tracks board subscribers grouped by branch.
type Hub struct {
	mu           sync.RWMutex
	subscribers  map[int64]map[*subscriber]struct{}
	pingInterval time.Duration
	logger       *zap.Logger
}

type subscriber struct {
	branchID int64
	send     chan []byte
}

// NewHub builds the hub.
func NewHub(pingInterval time.Duration, logger *zap.Logger) *Hub {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Hub{
		subscribers:  make(map[int64]map[*subscriber]struct{}),
		pingInterval: pingInterval,
		logger:       logger,
	}
}

// Broadcast sends a JSON payload to every subscriber of a branch.
// Slow subscribers are skipped, not waited on.
func (h *Hub) Broadcast(branchID int64, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Warn("failed to encode board event", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subscribers[branchID] {
		select {
		case sub.send <- data:
		default:
			h.logger.Warn("dropping board event, buffer full", zap.Int64("branch_id", branchID))
		}
	}
}

func (h *Hub) add(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[sub.branchID] == nil {
		h.subscribers[sub.branchID] = make(map[*subscriber]struct{})
	}
	h.subscribers[sub.branchID][sub] = struct{}{}
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.subscribers[sub.branchID]
	if set == nil {
		return
	}
	if _, ok := set[sub]; ok {
		delete(set, sub)
		close(sub.send)
	}
	if len(set) == 0 {
		delete(h.subscribers, sub.branchID)
	}
}

// Serve runs the write loop for an upgraded connection until the peer
// disappears or ctx is cancelled. The caller owns the upgrade.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn, branchID int64) {
	sub := &subscriber{branchID: branchID, send: make(chan []byte, sendBuffer)}
	h.add(sub)
	defer func() {
		h.remove(sub)
		_ = conn.Close()
	}()

	// Reader only consumes control frames; boards never send data.
	go func() {
		conn.SetReadLimit(512)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.send:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
