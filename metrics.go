package vecsearch

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    buildCounter    prometheus.Counter
//	    searchHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordBuild(duration time.Duration, indexed, skipped int, err error) {
//	    p.buildCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordBuild is called after each index build.
	// indexed and skipped count the partitioned records, duration is the
	// total time taken, err is nil if successful.
	RecordBuild(duration time.Duration, indexed, skipped int, err error)

	// RecordSearch is called after each search operation.
	// k is the number of results requested, duration is the time taken,
	// err is nil if successful.
	RecordSearch(k int, duration time.Duration, err error)

	// RecordEmbedding is called after each embedding call.
	RecordEmbedding(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(time.Duration, int, int, error) {}
func (NoopMetricsCollector) RecordSearch(int, time.Duration, error)     {}
func (NoopMetricsCollector) RecordEmbedding(time.Duration, error)       {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BuildCount          atomic.Int64
	BuildErrors         atomic.Int64
	BuildTotalNanos     atomic.Int64
	IndexedRecords      atomic.Int64
	SkippedRecords      atomic.Int64
	SearchCount         atomic.Int64
	SearchErrors        atomic.Int64
	SearchTotalNanos    atomic.Int64
	EmbeddingCount      atomic.Int64
	EmbeddingErrors     atomic.Int64
	EmbeddingTotalNanos atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(duration time.Duration, indexed, skipped int, err error) {
	b.BuildCount.Add(1)
	b.BuildTotalNanos.Add(duration.Nanoseconds())
	b.IndexedRecords.Add(int64(indexed))
	b.SkippedRecords.Add(int64(skipped))
	if err != nil {
		b.BuildErrors.Add(1)
	}
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(k int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// RecordEmbedding implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEmbedding(duration time.Duration, err error) {
	b.EmbeddingCount.Add(1)
	b.EmbeddingTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.EmbeddingErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		BuildCount:        b.BuildCount.Load(),
		BuildErrors:       b.BuildErrors.Load(),
		BuildAvgNanos:     avgNanos(&b.BuildCount, &b.BuildTotalNanos),
		IndexedRecords:    b.IndexedRecords.Load(),
		SkippedRecords:    b.SkippedRecords.Load(),
		SearchCount:       b.SearchCount.Load(),
		SearchErrors:      b.SearchErrors.Load(),
		SearchAvgNanos:    avgNanos(&b.SearchCount, &b.SearchTotalNanos),
		EmbeddingCount:    b.EmbeddingCount.Load(),
		EmbeddingErrors:   b.EmbeddingErrors.Load(),
		EmbeddingAvgNanos: avgNanos(&b.EmbeddingCount, &b.EmbeddingTotalNanos),
	}
}

func avgNanos(count, total *atomic.Int64) int64 {
	c := count.Load()
	if c == 0 {
		return 0
	}
	return total.Load() / c
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	BuildCount        int64
	BuildErrors       int64
	BuildAvgNanos     int64
	IndexedRecords    int64
	SkippedRecords    int64
	SearchCount       int64
	SearchErrors      int64
	SearchAvgNanos    int64
	EmbeddingCount    int64
	EmbeddingErrors   int64
	EmbeddingAvgNanos int64
}
