package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/raslen-jendoubi/azure-ubuntu-devsecops/internal/application/health"
	"go.uber.org/zap"
)

// clientBuffer is the number of reports queued per client before dropping
const clientBuffer = 10

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // admin listener only
	},
}

// Handler handles WebSocket connections
type Handler struct {
	logger *zap.Logger

	mu      sync.Mutex
	clients map[chan *health.HealthStatus]struct{}
	last    *health.HealthStatus
	closed  bool
}

// NewHandler creates a new WebSocket handler
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{
		logger:  logger,
		clients: make(map[chan *health.HealthStatus]struct{}),
	}
}

// Report fans a health status out to every connected client
func (h *Handler) Report(status *health.HealthStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.last = status

	for ch := range h.clients {
		// Send to channel (non-blocking)
		select {
		case ch <- status:
		default:
			h.logger.Warn("health stream client is slow, dropping report")
		}
	}
}

// Close disconnects every client and ignores later reports
func (h *Handler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.clients {
		close(ch)
		delete(h.clients, ch)
	}
}

// subscribe registers a client channel, primed with the latest report
func (h *Handler) subscribe() (chan *health.HealthStatus, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, false
	}

	ch := make(chan *health.HealthStatus, clientBuffer)
	if h.last != nil {
		ch <- h.last
	}
	h.clients[ch] = struct{}{}
	return ch, true
}

func (h *Handler) unsubscribe(ch chan *health.HealthStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[ch]; ok {
		delete(h.clients, ch)
		close(ch)
	}
}

func (h *Handler) clientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// HandleHealthStream streams health reports over a WebSocket
func (h *Handler) HandleHealthStream(c *gin.Context) {
	// Upgrade connection
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	statusCh, ok := h.subscribe()
	if !ok {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		return
	}
	defer h.unsubscribe(statusCh)

	h.logger.Info("WebSocket connection established", zap.String("client", c.ClientIP()))

	// The request context is not cancelled once the connection is hijacked,
	// so a disconnect is detected by reading.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	// Send reports to client
	for {
		select {
		case <-ctx.Done():
			return
		case status, open := <-statusCh:
			if !open {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
				return
			}

			data, err := json.Marshal(status)
			if err != nil {
				h.logger.Error("failed to marshal health status", zap.Error(err))
				continue
			}

			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Error("failed to write message", zap.Error(err))
				return
			}
		}
	}
}
