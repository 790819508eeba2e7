// Package metrics exposes the engine's internal counters and gauges as
// Prometheus collectors, so an operator can watch buffer pool pressure and
// lock contention from the outside instead of reading log lines.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
)

var (
	BufferPoolAvailable = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ember_buffer_pool_available",
			Help: "Number of unpinned buffers currently available in the pool",
		},
	)

	BufferPinsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ember_buffer_pins_total",
			Help: "Total number of successful buffer pin operations",
		},
	)

	BufferPinWaitSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ember_buffer_pin_wait_seconds",
			Help:    "Time spent waiting for a buffer to become available",
			Buckets: prometheus.DefBuckets,
		},
	)

	LockWaitSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ember_lock_wait_seconds",
			Help:    "Time spent waiting to acquire a block lock, by lock type",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"type"},
	)

	LockTimeoutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ember_lock_timeouts_total",
			Help: "Total number of lock requests that timed out, by lock type",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(
		BufferPoolAvailable,
		BufferPinsTotal,
		BufferPinWaitSeconds,
		LockWaitSeconds,
		LockTimeoutsTotal,
	)
}

// Handler returns the HTTP handler that serves the registered metrics in
// the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
