package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/raslen-jendoubi/azure-ubuntu-devsecops/internal/application/health"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	// Name identifies the gRPC listener
	Name = "grpc"

	// ServiceName is the health service name reporting the public site
	ServiceName = "hello.Site"
)

// Server represents the gRPC health server
type Server struct {
	server *grpc.Server
	health *grpchealth.Server
	addr   string
	watch  string
	logger *zap.Logger
	state  health.StateBox

	mu sync.Mutex
	ln net.Listener
}

// Config holds gRPC server configuration
type Config struct {
	Addr   string
	// Target is the monitored listener whose state drives the serving status
	Target string
	Logger *zap.Logger
}

// NewServer creates a new gRPC server
func NewServer(cfg *Config) *Server {
	grpcServer := grpc.NewServer()
	healthServer := grpchealth.NewServer()

	// Nothing is serving until the first health report says so.
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	healthpb.RegisterHealthServer(grpcServer, healthServer)

	return &Server{
		server: grpcServer,
		health: healthServer,
		addr:   cfg.Addr,
		watch:  cfg.Target,
		logger: cfg.Logger,
	}
}

// Name returns the listener name
func (s *Server) Name() string {
	return Name
}

// State returns the lifecycle state of the gRPC listener
func (s *Server) State() health.State {
	return s.state.Load()
}

// Addr returns the bound address, or the configured one before Listen
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Report maps a health status onto the gRPC serving status
func (s *Server) Report(status *health.HealthStatus) {
	serving := healthpb.HealthCheckResponse_NOT_SERVING
	if status.Targets[s.watch] == health.StateListening {
		serving = healthpb.HealthCheckResponse_SERVING
	}

	s.health.SetServingStatus("", serving)
	s.health.SetServingStatus(ServiceName, serving)
}

// Listen binds the configured address
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ln != nil {
		return fmt.Errorf("gRPC server is already bound to %s", s.ln.Addr())
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to bind gRPC server on %s: %w", s.addr, err)
	}
	s.ln = ln
	s.state.Store(health.StateListening)

	s.logger.Info("listening",
		zap.String("server", Name),
		zap.String("addr", ln.Addr().String()))

	return nil
}

// Serve starts the gRPC server on the bound listener
func (s *Server) Serve() error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()

	if ln == nil {
		return fmt.Errorf("gRPC server is not bound")
	}

	if err := s.server.Serve(ln); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		s.state.Store(health.StateStopped)
		return fmt.Errorf("failed to serve gRPC: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server, forcing a stop when ctx expires
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down gRPC server")

	s.state.Store(health.StateStopped)
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()

	var err error
	select {
	case <-stopped:
	case <-ctx.Done():
		s.server.Stop()
		err = fmt.Errorf("failed to shutdown gRPC server gracefully: %w", ctx.Err())
	}

	s.mu.Lock()
	if s.ln != nil {
		_ = s.ln.Close()
	}
	s.mu.Unlock()

	s.logger.Info("gRPC server shut down complete")
	return err
}
