package health

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeTarget struct {
	name  string
	state StateBox
}

func (f *fakeTarget) Name() string { return f.name }
func (f *fakeTarget) State() State { return f.state.Load() }

type fakeMetrics struct {
	mu     sync.Mutex
	up     map[string]bool
	checks map[bool]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{up: map[string]bool{}, checks: map[bool]int{}}
}

func (f *fakeMetrics) SetServerUp(server string, up bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.up[server] = up
}

func (f *fakeMetrics) IncHealthChecks(healthy bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checks[healthy]++
}

type chanReporter chan *HealthStatus

func (c chanReporter) Report(s *HealthStatus) {
	select {
	case c <- s:
	default:
	}
}

func TestStateBox_ZeroValueIsStopped(t *testing.T) {
	var b StateBox
	if got := b.Load(); got != StateStopped {
		t.Fatalf("expected stopped, got=%s", got)
	}
	b.Store(StateListening)
	if got := b.Load(); got != StateListening {
		t.Fatalf("expected listening, got=%s", got)
	}
}

func TestMonitor_NoTargetsIsUnhealthy(t *testing.T) {
	m := NewMonitor(time.Second, nil, zap.NewNop())
	if m.IsHealthy() {
		t.Fatalf("expected monitor with no targets to be unhealthy")
	}
}

func TestMonitor_CheckAggregatesTargets(t *testing.T) {
	site := &fakeTarget{name: "site"}
	admin := &fakeTarget{name: "admin"}
	metrics := newFakeMetrics()

	core, logs := observer.New(zapcore.WarnLevel)
	m := NewMonitor(time.Second, metrics, zap.New(core))
	m.Register(site)
	m.Register(admin)

	site.state.Store(StateListening)

	status := m.Check()
	if status.Healthy {
		t.Fatalf("expected unhealthy while admin is stopped")
	}
	if status.Targets["site"] != StateListening || status.Targets["admin"] != StateStopped {
		t.Fatalf("unexpected target states: %+v", status.Targets)
	}
	if logs.FilterMessage("listener is not serving").Len() != 1 {
		t.Fatalf("expected one warning for the stopped listener, got=%d", logs.Len())
	}

	admin.state.Store(StateListening)
	status = m.Check()
	if !status.Healthy {
		t.Fatalf("expected healthy once every target listens")
	}

	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	if !metrics.up["site"] || !metrics.up["admin"] {
		t.Fatalf("expected both servers recorded up: %+v", metrics.up)
	}
	if metrics.checks[true] != 1 || metrics.checks[false] != 1 {
		t.Fatalf("unexpected check counts: %+v", metrics.checks)
	}
}

func TestMonitor_StartReportsPeriodically(t *testing.T) {
	site := &fakeTarget{name: "site"}
	site.state.Store(StateListening)

	reports := make(chanReporter, 1)
	m := NewMonitor(10*time.Millisecond, nil, zap.NewNop())
	m.Register(site)
	m.AddReporter(reports)

	m.Start()
	m.Start() // idempotent
	defer m.Stop()

	select {
	case s := <-reports:
		if !s.Healthy {
			t.Fatalf("expected healthy report, got %+v", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for a periodic report")
	}
}

func TestMonitor_StopIsIdempotent(t *testing.T) {
	m := NewMonitor(10*time.Millisecond, nil, zap.NewNop())
	m.Stop()
	m.Start()
	m.Stop()
	m.Stop()
	// Restart after stop works.
	m.Start()
	m.Stop()
}
