package search

import (
	"sync/atomic"
	"time"
)

// MetricsCollector receives one call per search. Implement it to feed a
// monitoring system; see internal/metrics for a Prometheus collector.
type MetricsCollector interface {
	// RecordSearch is called after each search. results and skipped are zero
	// when err is non-nil.
	RecordSearch(kind string, results, skipped int, duration time.Duration, err error)
}

// NoopMetricsCollector discards every observation.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSearch(string, int, int, time.Duration, error) {}

// BasicMetricsCollector keeps in-memory counters.
type BasicMetricsCollector struct {
	SearchCount      atomic.Int64
	SearchErrors     atomic.Int64
	SearchTotalNanos atomic.Int64
	ResultCount      atomic.Int64
	SkippedCount     atomic.Int64
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(_ string, results, skipped int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
		return
	}
	b.ResultCount.Add(int64(results))
	b.SkippedCount.Add(int64(skipped))
}

// BasicMetricsStats is a point-in-time copy of BasicMetricsCollector.
type BasicMetricsStats struct {
	SearchCount    int64
	SearchErrors   int64
	SearchAvgNanos int64
	ResultCount    int64
	SkippedCount   int64
}

// GetStats returns a snapshot of the counters.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	s := BasicMetricsStats{
		SearchCount:  b.SearchCount.Load(),
		SearchErrors: b.SearchErrors.Load(),
		ResultCount:  b.ResultCount.Load(),
		SkippedCount: b.SkippedCount.Load(),
	}
	if s.SearchCount > 0 {
		s.SearchAvgNanos = b.SearchTotalNanos.Load() / s.SearchCount
	}
	return s
}

var (
	_ MetricsCollector = NoopMetricsCollector{}
	_ MetricsCollector = (*BasicMetricsCollector)(nil)
)
