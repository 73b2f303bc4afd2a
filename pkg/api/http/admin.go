package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/raslen-jendoubi/azure-ubuntu-devsecops/internal/application/health"
	"go.uber.org/zap"
)

// AdminName identifies the admin listener
const AdminName = "admin"

// AdminServer serves health checks and metrics
type AdminServer struct {
	listener
	router  *gin.Engine
	monitor *health.Monitor
	version string
}

// AdminConfig holds admin server configuration
type AdminConfig struct {
	Addr              string
	Monitor           *health.Monitor
	Metrics           http.Handler
	Version           string
	ReadHeaderTimeout time.Duration
	Logger            *zap.Logger
}

// HealthResponse is the body of /health
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Version   string            `json:"version"`
	Checks    map[string]string `json:"checks"`
}

// NewAdminServer creates the admin HTTP server
func NewAdminServer(cfg *AdminConfig) *AdminServer {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	s := &AdminServer{
		listener: listener{
			name:   AdminName,
			logger: cfg.Logger,
			server: &http.Server{
				Addr:              cfg.Addr,
				Handler:           router,
				ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			},
		},
		router:  router,
		monitor: cfg.Monitor,
		version: cfg.Version,
	}

	s.router.GET("/health", s.handleHealth)
	if cfg.Metrics != nil {
		s.router.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	return s
}

// SetupWebSocket adds the health stream handler to the admin server
func (s *AdminServer) SetupWebSocket(handler interface {
	HandleHealthStream(*gin.Context)
}) {
	s.router.GET("/health/ws", handler.HandleHealthStream)
}

// Handler returns the routed handler, mainly for tests
func (s *AdminServer) Handler() http.Handler {
	return s.router
}

// handleHealth reports the state of every monitored listener
func (s *AdminServer) handleHealth(c *gin.Context) {
	status := s.monitor.GetStatus()

	checks := make(map[string]string, len(status.Targets))
	for name, st := range status.Targets {
		checks[name] = string(st)
	}

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: status.Timestamp.UTC().Format(time.RFC3339),
		Version:   s.version,
		Checks:    checks,
	}

	code := http.StatusOK
	if !status.Healthy {
		resp.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, resp)
}
