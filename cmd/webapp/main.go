package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/raslen-jendoubi/azure-ubuntu-devsecops/internal/application/health"
	"github.com/raslen-jendoubi/azure-ubuntu-devsecops/internal/config"
	"github.com/raslen-jendoubi/azure-ubuntu-devsecops/pkg/adapters/metrics/prometheus"
	"github.com/raslen-jendoubi/azure-ubuntu-devsecops/pkg/api/grpc"
	"github.com/raslen-jendoubi/azure-ubuntu-devsecops/pkg/api/http"
	"github.com/raslen-jendoubi/azure-ubuntu-devsecops/pkg/api/websocket"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Version is set by build flags
	Version   = "dev"
	BuildTime = "unknown"
)

// component is a listener the process starts and stops
type component interface {
	Name() string
	Listen() error
	Serve() error
	Shutdown(ctx context.Context) error
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("starting web service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime))

	metricsCollector := prometheus.NewCollector(Version)
	monitor := health.NewMonitor(cfg.HealthCheckInterval, metricsCollector, logger)

	site := http.NewServer(&http.Config{
		Addr:              cfg.GetHTTPAddr(),
		AccessLog:         cfg.AccessLog,
		ReadHeaderTimeout: cfg.Timeouts.ReadHeader,
		Metrics:           metricsCollector,
		Logger:            logger,
	})
	monitor.Register(site)
	components := []component{site}

	var wsHandler *websocket.Handler
	if cfg.Admin.Enabled {
		admin := http.NewAdminServer(&http.AdminConfig{
			Addr:              cfg.GetAdminAddr(),
			Monitor:           monitor,
			Metrics:           metricsCollector.Handler(),
			Version:           Version,
			ReadHeaderTimeout: cfg.Timeouts.ReadHeader,
			Logger:            logger,
		})

		// Add WebSocket handler to admin server
		wsHandler = websocket.NewHandler(logger)
		admin.SetupWebSocket(wsHandler)
		monitor.AddReporter(wsHandler)

		monitor.Register(admin)
		components = append(components, admin)
	}

	if cfg.GRPC.Enabled {
		grpcServer := grpc.NewServer(&grpc.Config{
			Addr:   cfg.GetGRPCAddr(),
			Target: http.SiteName,
			Logger: logger,
		})
		monitor.Register(grpcServer)
		monitor.AddReporter(grpcServer)
		components = append(components, grpcServer)
	}

	// Bind everything before serving anything; a bind failure is fatal.
	for _, c := range components {
		if err := c.Listen(); err != nil {
			logger.Fatal("failed to bind listener",
				zap.String("server", c.Name()),
				zap.Error(err))
		}
	}

	for _, c := range components {
		go func(c component) {
			if err := c.Serve(); err != nil {
				logger.Fatal("server failed",
					zap.String("server", c.Name()),
					zap.Error(err))
			}
		}(c)
	}

	monitor.Check()
	monitor.Start()

	logger.Info("web service started",
		zap.String("http_addr", cfg.GetHTTPAddr()),
		zap.Bool("admin_enabled", cfg.Admin.Enabled),
		zap.Bool("grpc_enabled", cfg.GRPC.Enabled))

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("received shutdown signal")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.Shutdown)
	defer cancel()

	monitor.Stop()

	// Hijacked stream connections are not closed by http.Server.Shutdown.
	if wsHandler != nil {
		defer wsHandler.Close()
	}

	// Public site first so health reports stop serving before admin goes away.
	for _, c := range components {
		if err := c.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error",
				zap.String("server", c.Name()),
				zap.Error(err))
		}
		if c.Name() == http.SiteName {
			monitor.Check()
		}
	}

	logger.Info("web service shut down complete")
}

// initLogger initializes the logger based on log level
func initLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	return logger
}
