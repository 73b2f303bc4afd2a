package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/raslen-jendoubi/azure-ubuntu-devsecops/internal/application/health"
	"go.uber.org/zap"
)

// listener binds an http.Server and tracks its lifecycle state
type listener struct {
	name   string
	server *http.Server
	logger *zap.Logger
	state  health.StateBox

	mu sync.Mutex
	ln net.Listener
}

// Name returns the listener name used in logs, metrics and health reports
func (l *listener) Name() string {
	return l.name
}

// State returns the lifecycle state of the listener
func (l *listener) State() health.State {
	return l.state.Load()
}

// Addr returns the bound address, or the configured one before Listen
func (l *listener) Addr() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ln != nil {
		return l.ln.Addr().String()
	}
	return l.server.Addr
}

// Listen binds the configured address. Bind errors are returned as is so
// the caller can treat them as fatal.
func (l *listener) Listen() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ln != nil {
		return fmt.Errorf("%s server is already bound to %s", l.name, l.ln.Addr())
	}

	ln, err := net.Listen("tcp", l.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s server on %s: %w", l.name, l.server.Addr, err)
	}
	l.ln = ln
	l.state.Store(health.StateListening)

	l.logger.Info("listening",
		zap.String("server", l.name),
		zap.String("addr", ln.Addr().String()))

	return nil
}

// Serve accepts connections on the bound listener until Shutdown
func (l *listener) Serve() error {
	l.mu.Lock()
	ln := l.ln
	l.mu.Unlock()

	if ln == nil {
		return fmt.Errorf("%s server is not bound", l.name)
	}

	if err := l.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.state.Store(health.StateStopped)
		return fmt.Errorf("failed to serve %s: %w", l.name, err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (l *listener) Shutdown(ctx context.Context) error {
	l.logger.Info("shutting down HTTP server", zap.String("server", l.name))
	l.state.Store(health.StateStopped)

	if err := l.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown %s server: %w", l.name, err)
	}

	// Serve closes the listener itself; this covers a bind without Serve.
	l.mu.Lock()
	if l.ln != nil {
		_ = l.ln.Close()
	}
	l.mu.Unlock()

	l.logger.Info("HTTP server shut down complete", zap.String("server", l.name))
	return nil
}
