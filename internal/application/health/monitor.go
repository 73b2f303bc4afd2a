package health

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Target is a listener whose state is monitored
type Target interface {
	Name() string
	State() State
}

// Reporter receives every aggregated health status
type Reporter interface {
	Report(status *HealthStatus)
}

// MetricsRecorder records health metrics
type MetricsRecorder interface {
	SetServerUp(server string, up bool)
	IncHealthChecks(healthy bool)
}

// HealthStatus represents the health status of the service
type HealthStatus struct {
	Targets   map[string]State `json:"targets"`
	Healthy   bool             `json:"healthy"`
	Timestamp time.Time        `json:"timestamp"`
}

// Monitor monitors listener health
type Monitor struct {
	interval time.Duration
	metrics  MetricsRecorder
	logger   *zap.Logger

	mu        sync.RWMutex
	targets   []Target
	reporters []Reporter
	running   bool
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewMonitor creates a new health monitor. metrics may be nil.
func NewMonitor(interval time.Duration, metrics MetricsRecorder, logger *zap.Logger) *Monitor {
	return &Monitor{
		interval: interval,
		metrics:  metrics,
		logger:   logger,
	}
}

// Register adds a target to the monitor
func (m *Monitor) Register(t Target) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.targets = append(m.targets, t)
}

// AddReporter adds a reporter notified on every check
func (m *Monitor) AddReporter(r Reporter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reporters = append(m.reporters, r)
}

// Start starts the health monitor
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	stopCh, doneCh := make(chan struct{}), make(chan struct{})
	m.stopCh, m.doneCh = stopCh, doneCh
	m.mu.Unlock()

	go m.run(stopCh, doneCh)
}

// Stop stops the health monitor and waits for the loop to exit
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	stopCh, doneCh := m.stopCh, m.doneCh
	m.mu.Unlock()

	close(stopCh)
	<-doneCh
}

// run is the main health monitoring loop
func (m *Monitor) run(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			m.Check()
		}
	}
}

// Check samples every target once, records metrics and notifies reporters
func (m *Monitor) Check() *HealthStatus {
	status := m.GetStatus()

	m.mu.RLock()
	reporters := append([]Reporter(nil), m.reporters...)
	m.mu.RUnlock()

	if m.metrics != nil {
		for name, st := range status.Targets {
			m.metrics.SetServerUp(name, st == StateListening)
		}
		m.metrics.IncHealthChecks(status.Healthy)
	}

	for _, r := range reporters {
		r.Report(status)
	}

	m.logger.Debug("health check",
		zap.Int("targets", len(status.Targets)),
		zap.Bool("healthy", status.Healthy))

	if !status.Healthy {
		for name, st := range status.Targets {
			if st != StateListening {
				m.logger.Warn("listener is not serving",
					zap.String("server", name),
					zap.String("state", string(st)))
			}
		}
	}

	return status
}

// GetStatus returns the current health status without side effects
func (m *Monitor) GetStatus() *HealthStatus {
	m.mu.RLock()
	targets := append([]Target(nil), m.targets...)
	m.mu.RUnlock()

	states := make(map[string]State, len(targets))
	healthy := len(targets) > 0
	for _, t := range targets {
		st := t.State()
		states[t.Name()] = st
		if st != StateListening {
			healthy = false
		}
	}

	return &HealthStatus{
		Targets:   states,
		Healthy:   healthy,
		Timestamp: time.Now(),
	}
}

// IsHealthy returns true if every registered listener is serving
func (m *Monitor) IsHealthy() bool {
	return m.GetStatus().Healthy
}
