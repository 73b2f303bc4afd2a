package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SiteName identifies the public listener
const SiteName = "site"

// RequestMetrics records finished requests
type RequestMetrics interface {
	ObserveRequest(method, route string, status int, duration time.Duration)
}

// Server represents the public HTTP server
type Server struct {
	listener
	router *gin.Engine
}

// Config holds HTTP server configuration
type Config struct {
	Addr              string
	AccessLog         bool
	ReadHeaderTimeout time.Duration
	Metrics           RequestMetrics
	Logger            *zap.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(requestID())
	if cfg.Metrics != nil {
		router.Use(requestMetrics(cfg.Metrics))
	}
	if cfg.AccessLog {
		router.Use(requestLogger(cfg.Logger))
	}

	s := &Server{
		listener: listener{
			name:   SiteName,
			logger: cfg.Logger,
			server: &http.Server{
				Addr:              cfg.Addr,
				Handler:           router,
				ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			},
		},
		router: router,
	}

	s.setupRoutes()

	return s
}

// setupRoutes configures the single public route
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleHome)
	s.router.HEAD("/", s.handleHome)
}

// Handler returns the routed handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}
