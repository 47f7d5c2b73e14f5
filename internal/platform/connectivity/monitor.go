// Package connectivity decides whether the backend is worth calling.
package connectivity

//go:generate mockgen -source=monitor.go -destination=mocks/mocks.go -package=mocks Monitor

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"legaltrack/internal/platform/metrics"
	"legaltrack/pkg/platform/circuit"
)

// Monitor is a boolean online signal fed by transport outcomes.
type Monitor interface {
	Online() bool
	// ReportSuccess records that the backend answered, whatever the status.
	ReportSuccess()
	// ReportFailure records that the backend could not be reached.
	ReportFailure(err error)
}

// BreakerMonitor goes offline after a run of consecutive failures and back
// online after the first success.
type BreakerMonitor struct {
	breaker *circuit.Breaker
	forced  atomic.Bool
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*BreakerMonitor)

func WithLogger(logger *slog.Logger) Option {
	return func(m *BreakerMonitor) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *BreakerMonitor) {
		m.metrics = mt
	}
}

func NewBreakerMonitor(failureThreshold int, opts ...Option) *BreakerMonitor {
	m := &BreakerMonitor{
		breaker: circuit.New("backend",
			circuit.WithFailureThreshold(failureThreshold),
			circuit.WithSuccessThreshold(1),
		),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *BreakerMonitor) Online() bool {
	return !m.forced.Load() && !m.breaker.IsOpen()
}

func (m *BreakerMonitor) ReportSuccess() {
	if _, change := m.breaker.RecordSuccess(); change.Closed {
		m.logger.Info("backend reachable again")
		m.metrics.SetOffline(m.forced.Load())
	}
}

func (m *BreakerMonitor) ReportFailure(err error) {
	if _, change := m.breaker.RecordFailure(); change.Opened {
		m.logger.Warn("backend unreachable, serving from cache", "error", err)
		m.metrics.SetOffline(true)
	}
}

// SetForcedOffline pins the monitor offline regardless of transport outcomes.
func (m *BreakerMonitor) SetForcedOffline(offline bool) {
	m.forced.Store(offline)
	m.metrics.SetOffline(!m.Online())
}

// Run probes the backend every interval while offline so the monitor can
// recover without user traffic. It returns when ctx is done.
func (m *BreakerMonitor) Run(ctx context.Context, interval time.Duration, probe func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !m.breaker.IsOpen() {
				continue
			}
			if err := probe(ctx); err != nil {
				m.logger.Debug("backend probe failed", "error", err)
				continue
			}
			m.ReportSuccess()
		}
	}
}
