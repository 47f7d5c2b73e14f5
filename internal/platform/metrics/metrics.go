package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the client. All methods are
// safe on a nil receiver so components can run without instrumentation.
type Metrics struct {
	// Cache lookups by namespace and outcome: hit, stale, miss, corrupted
	CacheLookups *prometheus.CounterVec

	// Background and blocking refreshes by result: ok, error, cancelled
	Refreshes *prometheus.CounterVec

	// Refresh calls that joined an in-flight fetch
	RefreshesShared prometheus.Counter

	// Remote request latency by endpoint
	BackendLatency *prometheus.HistogramVec

	// PDF downloads by result: ok, rejected, error, cached
	AssetDownloads *prometheus.CounterVec

	// 1 while the backend is considered unreachable
	Offline prometheus.Gauge
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		CacheLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "legaltrack_cache_lookups_total",
			Help: "Cache lookups by namespace and outcome",
		}, []string{"namespace", "outcome"}),

		Refreshes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "legaltrack_refreshes_total",
			Help: "Remote refreshes by result",
		}, []string{"result"}),

		RefreshesShared: promauto.NewCounter(prometheus.CounterOpts{
			Name: "legaltrack_refreshes_shared_total",
			Help: "Refresh requests that joined an in-flight fetch for the same key",
		}),

		BackendLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "legaltrack_backend_request_duration_seconds",
			Help:    "Duration of remote backend requests by endpoint",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"endpoint"}),

		AssetDownloads: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "legaltrack_asset_downloads_total",
			Help: "PDF fetches by result",
		}, []string{"result"}),

		Offline: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "legaltrack_backend_offline",
			Help: "1 when the backend is considered unreachable",
		}),
	}
}

func (m *Metrics) IncrementCacheLookup(namespace, outcome string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(namespace, outcome).Inc()
	}
}

func (m *Metrics) IncrementRefresh(result string) {
	if m != nil {
		m.Refreshes.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) IncrementRefreshShared() {
	if m != nil {
		m.RefreshesShared.Inc()
	}
}

// ObserveBackendLatency records the duration of one remote request.
func (m *Metrics) ObserveBackendLatency(endpoint string, d time.Duration) {
	if m != nil {
		m.BackendLatency.WithLabelValues(endpoint).Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementAssetDownload(result string) {
	if m != nil {
		m.AssetDownloads.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) SetOffline(offline bool) {
	if m == nil {
		return
	}
	if offline {
		m.Offline.Set(1)
		return
	}
	m.Offline.Set(0)
}
