package supercluster

import (
	"sync/atomic"
	"time"
)

// Operation labels passed to MetricsCollector.RecordQuery.
const (
	OpClusters      = "clusters"
	OpChildren      = "children"
	OpLeaves        = "leaves"
	OpExpansionZoom = "expansion_zoom"
	OpTile          = "tile"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    loadCounter    prometheus.Counter
//	    queryHistogram *prometheus.HistogramVec
//	}
//
//	func (p *PrometheusCollector) RecordQuery(op string, results int, duration time.Duration) {
//	    p.queryHistogram.WithLabelValues(op).Observe(duration.Seconds())
//	}
type MetricsCollector interface {
	// RecordLoad is called after each load. indexed is the number of rows
	// that entered the index, duration the total build time, err is nil
	// if successful.
	RecordLoad(indexed int, duration time.Duration, err error)

	// RecordQuery is called after each read operation with one of the Op*
	// labels, the number of features returned and the time taken.
	RecordQuery(op string, results int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLoad(int, time.Duration, error)    {}
func (NoopMetricsCollector) RecordQuery(string, int, time.Duration) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	LoadCount       atomic.Int64
	LoadErrors      atomic.Int64
	LoadIndexedRows atomic.Int64
	LoadTotalNanos  atomic.Int64
	QueryCount      atomic.Int64
	QueryResults    atomic.Int64
	QueryTotalNanos atomic.Int64
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(indexed int, duration time.Duration, err error) {
	b.LoadCount.Add(1)
	b.LoadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	b.LoadIndexedRows.Add(int64(indexed))
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(op string, results int, duration time.Duration) {
	b.QueryCount.Add(1)
	b.QueryResults.Add(int64(results))
	b.QueryTotalNanos.Add(duration.Nanoseconds())
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		LoadCount:       b.LoadCount.Load(),
		LoadErrors:      b.LoadErrors.Load(),
		LoadIndexedRows: b.LoadIndexedRows.Load(),
		LoadAvgNanos:    b.getAvgLoadNanos(),
		QueryCount:      b.QueryCount.Load(),
		QueryResults:    b.QueryResults.Load(),
		QueryAvgNanos:   b.getAvgQueryNanos(),
	}
}

func (b *BasicMetricsCollector) getAvgLoadNanos() int64 {
	count := b.LoadCount.Load()
	if count == 0 {
		return 0
	}
	return b.LoadTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgQueryNanos() int64 {
	count := b.QueryCount.Load()
	if count == 0 {
		return 0
	}
	return b.QueryTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	LoadCount       int64
	LoadErrors      int64
	LoadIndexedRows int64
	LoadAvgNanos    int64
	QueryCount      int64
	QueryResults    int64
	QueryAvgNanos   int64
}
