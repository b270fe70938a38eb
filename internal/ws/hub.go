package ws

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"parkmap/internal/models"
	"parkmap/internal/service"
)

// SnapshotSource hands out the current view state, for pushes triggered by a
// single connection rather than a broadcast.
type SnapshotSource interface {
	View() service.Snapshot
}

// snapshotPayload is the wire form of one push.
type snapshotPayload struct {
	Type      string              `json:"type"`
	Lots      []models.ParkingLot `json:"lots"`
	Markers   []models.Marker     `json:"markers"`
	Region    service.Region      `json:"region"`
	EVOnly    bool                `json:"ev_only"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Hub tracks subscribed connections and pushes each of them its filtered
// view of every new snapshot. It implements service.SnapshotListener.
type Hub struct {
	mu     sync.RWMutex
	conns  map[*Connection]struct{}
	source SnapshotSource
	logger *zap.Logger
}

// NewHub builds connection hub.
func NewHub(source SnapshotSource, logger *zap.Logger) *Hub {
	return &Hub{
		conns:  make(map[*Connection]struct{}),
		source: source,
		logger: logger,
	}
}

// Add registers new connection and pushes it the current snapshot.
func (h *Hub) Add(conn *Connection) {
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
	h.push(conn, h.source.View())
}

// Remove removes connection.
func (h *Hub) Remove(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
}

// SnapshotReplaced broadcasts the new snapshot to every subscriber.
func (h *Hub) SnapshotReplaced(snapshot service.Snapshot) {
	h.mu.RLock()
	conns := make([]*Connection, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		h.push(conn, snapshot)
	}
}

// FilterChanged re-pushes the snapshot to the one connection whose filter
// flag just flipped.
func (h *Hub) FilterChanged(conn *Connection) {
	h.push(conn, h.source.View())
}

func (h *Hub) push(conn *Connection, snapshot service.Snapshot) {
	lots := models.FilterEV(snapshot.Lots, conn.EVOnly())
	payload, err := json.Marshal(snapshotPayload{
		Type:      "snapshot",
		Lots:      lots,
		Markers:   models.MarkersFor(lots),
		Region:    snapshot.Region,
		EVOnly:    conn.EVOnly(),
		UpdatedAt: snapshot.UpdatedAt,
	})
	if err != nil {
		h.logger.Error("failed to marshal snapshot push", zap.Error(err))
		return
	}
	conn.Send(payload)
}
