package scango

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
type MetricsCollector interface {
	// RecordBuild is called after each index construction.
	// duration is the total time taken, err is nil if successful.
	RecordBuild(duration time.Duration, err error)

	// RecordCluster is called after each clustering query.
	// clusters is the number of clusters produced.
	RecordCluster(clusters int, duration time.Duration)

	// RecordSnapshot is called after each snapshot save or load.
	RecordSnapshot(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(time.Duration, error)    {}
func (NoopMetricsCollector) RecordCluster(int, time.Duration)    {}
func (NoopMetricsCollector) RecordSnapshot(time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BuildCount         atomic.Int64
	BuildErrors        atomic.Int64
	BuildTotalNanos    atomic.Int64
	ClusterCount       atomic.Int64
	ClusterTotalNanos  atomic.Int64
	SnapshotCount      atomic.Int64
	SnapshotErrors     atomic.Int64
	SnapshotTotalNanos atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(duration time.Duration, err error) {
	b.BuildCount.Add(1)
	b.BuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BuildErrors.Add(1)
	}
}

// RecordCluster implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCluster(clusters int, duration time.Duration) {
	b.ClusterCount.Add(1)
	b.ClusterTotalNanos.Add(duration.Nanoseconds())
}

// RecordSnapshot implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshot(duration time.Duration, err error) {
	b.SnapshotCount.Add(1)
	b.SnapshotTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SnapshotErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		BuildCount:       b.BuildCount.Load(),
		BuildErrors:      b.BuildErrors.Load(),
		BuildAvgNanos:    avgNanos(b.BuildTotalNanos.Load(), b.BuildCount.Load()),
		ClusterCount:     b.ClusterCount.Load(),
		ClusterAvgNanos:  avgNanos(b.ClusterTotalNanos.Load(), b.ClusterCount.Load()),
		SnapshotCount:    b.SnapshotCount.Load(),
		SnapshotErrors:   b.SnapshotErrors.Load(),
		SnapshotAvgNanos: avgNanos(b.SnapshotTotalNanos.Load(), b.SnapshotCount.Load()),
	}
}

func avgNanos(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	BuildCount       int64
	BuildErrors      int64
	BuildAvgNanos    int64
	ClusterCount     int64
	ClusterAvgNanos  int64
	SnapshotCount    int64
	SnapshotErrors   int64
	SnapshotAvgNanos int64
}
