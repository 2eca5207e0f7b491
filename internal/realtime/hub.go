// Package realtime pushes finished validations to websocket subscribers.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wonny/dropscout/internal/contracts"
	"github.com/wonny/dropscout/internal/realtime/cache"
	"github.com/wonny/dropscout/pkg/logger"
	"github.com/wonny/dropscout/pkg/metrics"
)

const (
	// Ping/Pong settings
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second

	sendBuffer    = 32
	snapshotLimit = 20
)

// Hub fans validation results out to websocket clients.
// Slow clients drop messages rather than block publishers.
// ⭐ SSOT: implements contracts.ResultPublisher for the live feed
type Hub struct {
	logger   *logger.Logger
	recent   *cache.RecentResults
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

var _ contracts.ResultPublisher = (*Hub)(nil)

// NewHub creates a hub backed by recent for connect-time snapshots
func NewHub(recent *cache.RecentResults, log *logger.Logger) *Hub {
	if log == nil {
		log = logger.NewNop()
	}
	if recent == nil {
		recent = cache.NewRecentResults(0, log)
	}
	return &Hub{
		logger: log,
		recent: recent,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Recent returns the hub's result cache
func (h *Hub) Recent() *cache.RecentResults {
	return h.recent
}

// Publish records result and broadcasts it
func (h *Hub) Publish(result contracts.ValidationResult) {
	h.recent.Update(result)

	msg, err := json.Marshal(Event{Type: EventValidation, Result: &result, Timestamp: time.Now().UTC()})
	if err != nil {
		h.logger.WithError(err).Error("Failed to encode validation event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.WithField("client_id", c.id).Warn("Client send buffer full, dropping event")
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and streams events until the client leaves
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	c := &client{id: uuid.New().String(), conn: conn, send: make(chan []byte, sendBuffer)}

	snapshot, err := json.Marshal(Event{Type: EventSnapshot, Results: h.recent.Snapshot(snapshotLimit), Timestamp: time.Now().UTC()})
	if err == nil {
		c.send <- snapshot
	}

	if !h.register(c) {
		_ = conn.Close()
		return
	}

	h.logger.WithField("client_id", c.id).Info("WebSocket client connected")

	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	metrics.WebsocketClients.Set(float64(len(h.clients)))
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		metrics.WebsocketClients.Set(float64(len(h.clients)))
	}
	h.mu.Unlock()

	c.once.Do(func() { close(c.send) })
}

// readLoop only services control frames; the feed is server-to-client
func (h *Hub) readLoop(c *client) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
		h.logger.WithField("client_id", c.id).Info("WebSocket client disconnected")
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.WithError(err).Debug("WebSocket read error")
			}
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.logger.WithError(err).Debug("WebSocket write failed")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait)); err != nil {
				h.logger.WithError(err).Debug("Failed to send ping")
				return
			}
		}
	}
}

// Shutdown disconnects every client and rejects new ones
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.unregister(c)
	}

	h.logger.WithField("clients", len(clients)).Info("WebSocket hub stopped")
	return ctx.Err()
}
