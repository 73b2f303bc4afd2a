package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// DefaultEnvFile is loaded before parsing when ENV_FILE is not set
const DefaultEnvFile = ".env"

// Config holds all configuration for the web service
type Config struct {
	// Public site
	Host      string `env:"APP_HOST" envDefault:"0.0.0.0"`
	Port      int    `env:"APP_PORT" envDefault:"5000"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	AccessLog bool   `env:"ACCESS_LOG" envDefault:"true"`

	// Admin listener (health + metrics)
	Admin AdminConfig

	// gRPC health listener
	GRPC GRPCConfig

	// Health monitor
	HealthCheckInterval time.Duration `env:"HEALTH_CHECK_INTERVAL" envDefault:"15s"`

	// Timeouts
	Timeouts TimeoutConfig
}

// AdminConfig holds the admin HTTP listener configuration
type AdminConfig struct {
	Enabled bool   `env:"ADMIN_ENABLED" envDefault:"true"`
	Host    string `env:"ADMIN_HOST" envDefault:"0.0.0.0"`
	Port    int    `env:"ADMIN_PORT" envDefault:"9090"`
}

// GRPCConfig holds the gRPC health listener configuration
type GRPCConfig struct {
	Enabled bool   `env:"GRPC_ENABLED" envDefault:"true"`
	Host    string `env:"GRPC_HOST" envDefault:"0.0.0.0"`
	Port    int    `env:"GRPC_PORT" envDefault:"9091"`
}

// TimeoutConfig holds various timeout configurations
type TimeoutConfig struct {
	ReadHeader time.Duration `env:"TIMEOUT_READ_HEADER" envDefault:"5s"`
	Shutdown   time.Duration `env:"TIMEOUT_SHUTDOWN" envDefault:"10s"`
}

// Load reads configuration from an optional env file and environment variables.
// Variables already present in the environment win over the file.
func Load() (*Config, error) {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file %s: %w", path, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	ports := []namedPort{{"HTTP", c.Port}}
	if c.Admin.Enabled {
		ports = append(ports, namedPort{"admin", c.Admin.Port})
	}
	if c.GRPC.Enabled {
		ports = append(ports, namedPort{"gRPC", c.GRPC.Port})
	}

	// Ports are compared regardless of host: 0.0.0.0 overlaps every address.
	seen := make(map[int]string, len(ports))
	for _, p := range ports {
		if err := validatePort(p.name, p.port); err != nil {
			return err
		}
		if other, ok := seen[p.port]; ok {
			return fmt.Errorf("%s and %s listeners must not share port %d", other, p.name, p.port)
		}
		seen[p.port] = p.name
	}

	if c.HealthCheckInterval <= 0 {
		return fmt.Errorf("health check interval must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

type namedPort struct {
	name string
	port int
}

func validatePort(name string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid %s port: %d", name, port)
	}
	return nil
}

// GetHTTPAddr returns the public HTTP server address
func (c *Config) GetHTTPAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// GetAdminAddr returns the admin server address
func (c *Config) GetAdminAddr() string {
	return net.JoinHostPort(c.Admin.Host, strconv.Itoa(c.Admin.Port))
}

// GetGRPCAddr returns the gRPC server address
func (c *Config) GetGRPCAddr() string {
	return net.JoinHostPort(c.GRPC.Host, strconv.Itoa(c.GRPC.Port))
}
