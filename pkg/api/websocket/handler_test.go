package websocket

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/raslen-jendoubi/azure-ubuntu-devsecops/internal/application/health"
	"go.uber.org/zap"
)

func newStreamServer(t *testing.T, h *Handler) string {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health/ws", h.HandleHealthStream)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/health/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial error: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readStatus(t *testing.T, conn *websocket.Conn) health.HealthStatus {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var status health.HealthStatus
	if err := conn.ReadJSON(&status); err != nil {
		t.Fatalf("ReadJSON error: %v", err)
	}
	return status
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met before deadline")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHandler_StreamsReports(t *testing.T) {
	h := NewHandler(zap.NewNop())
	url := newStreamServer(t, h)

	h.Report(&health.HealthStatus{
		Targets: map[string]health.State{"site": health.StateListening},
		Healthy: true,
	})

	conn := dial(t, url)

	// A new client starts from the latest report.
	first := readStatus(t, conn)
	if !first.Healthy || first.Targets["site"] != health.StateListening {
		t.Fatalf("unexpected first report: %+v", first)
	}

	h.Report(&health.HealthStatus{
		Targets: map[string]health.State{"site": health.StateStopped},
		Healthy: false,
	})

	second := readStatus(t, conn)
	if second.Healthy || second.Targets["site"] != health.StateStopped {
		t.Fatalf("unexpected second report: %+v", second)
	}
}

func TestHandler_DisconnectUnsubscribes(t *testing.T) {
	h := NewHandler(zap.NewNop())
	url := newStreamServer(t, h)

	conn := dial(t, url)
	waitFor(t, func() bool { return h.clientCount() == 1 })

	conn.Close()
	waitFor(t, func() bool { return h.clientCount() == 0 })

	// Reporting with no clients must not block.
	h.Report(&health.HealthStatus{Healthy: true})
}

func TestHandler_CloseDisconnectsClients(t *testing.T) {
	h := NewHandler(zap.NewNop())
	url := newStreamServer(t, h)

	conn := dial(t, url)
	waitFor(t, func() bool { return h.clientCount() == 1 })

	h.Close()
	h.Close() // idempotent

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Fatalf("expected going away close, got: %v", err)
	}

	// Later clients are turned away.
	late := dial(t, url)
	late.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := late.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Fatalf("expected late client to be closed, got: %v", err)
	}
}
