package notifier

import (
	"sync/atomic"
	"time"
)

// DeliveryStats tracks webhook delivery counts without locks; the reporter
// reads a consistent-enough snapshot for logging.
type DeliveryStats struct {
	delivered  int64
	failed     int64
	durationNs int64
	startedNs  int64
}

func NewDeliveryStats() *DeliveryStats {
	return &DeliveryStats{startedNs: time.Now().UnixNano()}
}

func (s *DeliveryStats) RecordSuccess(duration time.Duration) {
	atomic.AddInt64(&s.delivered, 1)
	atomic.AddInt64(&s.durationNs, int64(duration))
}

func (s *DeliveryStats) RecordFailure() {
	atomic.AddInt64(&s.failed, 1)
}

func (s *DeliveryStats) Snapshot() map[string]interface{} {
	delivered := atomic.LoadInt64(&s.delivered)
	failed := atomic.LoadInt64(&s.failed)
	durationNs := atomic.LoadInt64(&s.durationNs)
	startedNs := atomic.LoadInt64(&s.startedNs)

	elapsed := time.Since(time.Unix(0, startedNs)).Seconds()

	rate := 0.0
	if elapsed > 0 {
		rate = float64(delivered) / elapsed
	}
	avgDuration := time.Duration(0)
	if delivered > 0 {
		avgDuration = time.Duration(durationNs / delivered)
	}

	return map[string]interface{}{
		"delivered":       delivered,
		"failed":          failed,
		"rate_per_second": rate,
		"avg_duration_ms": avgDuration.Milliseconds(),
		"uptime_seconds":  elapsed,
	}
}
