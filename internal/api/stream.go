package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/minsuk/revpulse/internal/engine"
	"github.com/minsuk/revpulse/pkg/logger"
)

// RefreshEvent is pushed to stream subscribers after every recompute
type RefreshEvent struct {
	Type        string    `json:"type"`
	GeneratedAt time.Time `json:"generatedAt"`
	Months      int       `json:"months"`
	Customers   int       `json:"customers"`
	Cohorts     int       `json:"cohorts"`
	Issues      int       `json:"issues"`
}

// Hub fans report refresh events out to websocket subscribers
type Hub struct {
	upgrader websocket.Upgrader
	logger   *logger.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

// NewHub creates a new stream hub
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: log,
		conns:  make(map[*websocket.Conn]bool),
	}
}

// HandleStream upgrades the request and subscribes it to refresh events
// GET /api/stream
func (h *Hub) HandleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.conns[conn] = true
	count := len(h.conns)
	h.mu.Unlock()

	h.logger.WithField("subscribers", count).Debug("Stream subscriber connected")

	// Drain inbound frames until the peer goes away
	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// NotifyRefresh broadcasts a refresh event for the given report.
// Registered as an insight.Service refresh listener.
func (h *Hub) NotifyRefresh(report *engine.Report) {
	event := RefreshEvent{
		Type:        "report.refreshed",
		GeneratedAt: report.GeneratedAt,
		Months:      len(report.Months),
		Customers:   len(report.Customers),
		Cohorts:     len(report.Cohorts),
		Issues:      len(report.Issues),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(event); err != nil {
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

// Close disconnects all subscribers
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns {
		conn.Close()
		delete(h.conns, conn)
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	conn.Close()

	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
}
