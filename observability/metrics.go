package observability

import (
	gu "github.com/xraph/go-utils/metrics"
)

// Metrics holds the cache instruments, backed by any go-utils MetricFactory
// (fapp.Metrics() inside forge, or metrics.NewMetricsCollector() standalone).
// A nil *Metrics records nothing.
type Metrics struct {
	RemoteCallsTotal    gu.Counter
	RemoteLatency       gu.Histogram
	FallbacksTotal      gu.Counter
	OfflineReadsTotal   gu.Counter
	MirroredEventsTotal gu.Counter
	WritesTotal         gu.Counter
	RemindersTotal      gu.Counter
	SchedulerErrors     gu.Counter
}

// NewMetrics creates the instruments using the supplied factory.
func NewMetrics(factory gu.MetricFactory) *Metrics {
	return &Metrics{
		RemoteCallsTotal:    factory.Counter("huddle_remote_calls_total"),
		RemoteLatency:       factory.Histogram("huddle_remote_latency_seconds"),
		FallbacksTotal:      factory.Counter("huddle_cache_fallbacks_total"),
		OfflineReadsTotal:   factory.Counter("huddle_offline_reads_total"),
		MirroredEventsTotal: factory.Counter("huddle_mirrored_events_total"),
		WritesTotal:         factory.Counter("huddle_writes_total"),
		RemindersTotal:      factory.Counter("huddle_reminders_total"),
		SchedulerErrors:     factory.Counter("huddle_scheduler_errors_total"),
	}
}

// RecordRemoteCall records one remote call with its outcome and latency.
func (m *Metrics) RecordRemoteCall(op string, ok bool, latencySeconds float64) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.RemoteCallsTotal.WithLabels(map[string]string{"op": op, "result": result}).Inc()
	m.RemoteLatency.Observe(latencySeconds)
}

// RecordFallback records a read served from the cache after a remote failure.
func (m *Metrics) RecordFallback(op string) {
	if m == nil {
		return
	}
	m.FallbacksTotal.WithLabels(map[string]string{"op": op}).Inc()
}

// RecordOfflineRead records a read served from the cache while offline.
func (m *Metrics) RecordOfflineRead(op string) {
	if m == nil {
		return
	}
	m.OfflineReadsTotal.WithLabels(map[string]string{"op": op}).Inc()
}

// RecordMirror records n events written into the cache.
func (m *Metrics) RecordMirror(n int) {
	if m == nil {
		return
	}
	for range n {
		m.MirroredEventsTotal.Inc()
	}
}

// RecordWrite records a write attempt.
func (m *Metrics) RecordWrite(op, result string) {
	if m == nil {
		return
	}
	m.WritesTotal.WithLabels(map[string]string{"op": op, "result": result}).Inc()
}

// RecordReminder records a scheduler call, and a failure when err is non-nil.
func (m *Metrics) RecordReminder(action string, err error) {
	if m == nil {
		return
	}
	m.RemindersTotal.WithLabels(map[string]string{"action": action}).Inc()
	if err != nil {
		m.SchedulerErrors.WithLabels(map[string]string{"action": action}).Inc()
	}
}
