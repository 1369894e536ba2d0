package authkit

import "sync/atomic"

// MetricID names one counter in the metrics registry.
type MetricID uint16

const (
	MetricSignInSuccess MetricID = iota
	MetricSignInFailure
	MetricSignInRateLimited
	MetricSignUpSuccess
	MetricSignUpFailure
	MetricSignUpRateLimited
	MetricSignOut
	MetricRefreshSuccess
	MetricRefreshFailure
	MetricPasswordResetRequest
	MetricStorageDegraded
	metricIDCount
)

func (id MetricID) String() string {
	switch id {
	case MetricSignInSuccess:
		return "sign_in_success"
	case MetricSignInFailure:
		return "sign_in_failure"
	case MetricSignInRateLimited:
		return "sign_in_rate_limited"
	case MetricSignUpSuccess:
		return "sign_up_success"
	case MetricSignUpFailure:
		return "sign_up_failure"
	case MetricSignUpRateLimited:
		return "sign_up_rate_limited"
	case MetricSignOut:
		return "sign_out"
	case MetricRefreshSuccess:
		return "refresh_success"
	case MetricRefreshFailure:
		return "refresh_failure"
	case MetricPasswordResetRequest:
		return "password_reset_request"
	case MetricStorageDegraded:
		return "storage_degraded"
	}
	return "unknown"
}

const cacheLineSize = 64

// Counters are padded to avoid false sharing between adjacent IDs
// incremented from different goroutines.
type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics is an in-process counter registry. A disabled registry
// accepts increments and stays at zero.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// NewMetrics creates a registry per cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Inc adds one to the counter. Safe for concurrent use.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// MetricsSnapshot is a point-in-time copy of every counter.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// Snapshot copies the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{Counters: make(map[MetricID]uint64, metricIDCount)}
	if m == nil {
		return snap
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		snap.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return snap
}
