package http

import (
	"net/http"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestEndToEnd_DefaultPort(t *testing.T) {
	s := NewServer(&Config{Addr: "127.0.0.1:5000", Logger: zap.NewNop()})
	if err := s.Listen(); err != nil {
		if strings.Contains(err.Error(), "address already in use") {
			t.Skipf("port 5000 busy: %v", err)
		}
		t.Fatalf("Listen error: %v", err)
	}
	// Hand the bound listener to the shared helper; Listen is not repeated.
	base := start(t, boundServer{s})

	resp, body := do(t, http.MethodGet, base+"/")
	if resp.StatusCode != http.StatusOK || string(body) != HomePage {
		t.Fatalf("expected 200 with home page, got=%d %q", resp.StatusCode, body)
	}

	resp, _ = do(t, http.MethodGet, base+"/missing")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got=%d", resp.StatusCode)
	}
}

// boundServer skips Listen for a server that is already bound
type boundServer struct{ *Server }

func (boundServer) Listen() error { return nil }
