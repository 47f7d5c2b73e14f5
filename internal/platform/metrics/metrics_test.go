package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementCacheLookup("lists", "hit")
		m.IncrementRefresh("ok")
		m.IncrementRefreshShared()
		m.ObserveBackendLatency("cases", time.Second)
		m.IncrementAssetDownload("ok")
		m.SetOffline(true)
	})
}
