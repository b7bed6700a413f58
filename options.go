package supercluster

import (
	"log/slog"

	"github.com/RoaringBitmap/roaring/v2"
)

// Options contains configuration options for the cluster index.
type Options struct {
	// MinZoom is the lowest zoom level clusters are generated for.
	MinZoom int

	// MaxZoom is the highest zoom level clusters are generated for; level
	// MaxZoom+1 always holds every indexed point unclustered. The id
	// encoding caps it at 30.
	MaxZoom int

	// MinPoints is the minimum number of points required to form a cluster.
	MinPoints int

	// Radius is the cluster radius in pixels, measured against Extent.
	Radius float64

	// Extent is the tile extent in pixels the radius refers to.
	Extent int

	// NodeSize is the leaf size of the per-level spatial indexes. Larger
	// values build faster, smaller values query faster.
	NodeSize int

	// Logger receives structured operation logs. Nil disables logging.
	Logger *Logger

	// Metrics receives operation metrics. Nil disables collection.
	Metrics MetricsCollector
}

// DefaultOptions contains the default configuration options for the index.
var DefaultOptions = Options{
	MinZoom:   0,
	MaxZoom:   16,
	MinPoints: 2,
	Radius:    40,
	Extent:    512,
	NodeSize:  64,
}

func validateOptions(o *Options) error {
	if o.MinZoom < 0 || o.MinZoom > o.MaxZoom || o.MaxZoom > 30 {
		return &ErrInvalidZoomRange{MinZoom: o.MinZoom, MaxZoom: o.MaxZoom}
	}
	if o.MinPoints < 1 {
		return &ErrInvalidOption{Name: "MinPoints", Value: o.MinPoints}
	}
	if o.Radius < 0 {
		return &ErrInvalidOption{Name: "Radius", Value: o.Radius}
	}
	if o.Extent <= 0 {
		return &ErrInvalidOption{Name: "Extent", Value: o.Extent}
	}
	if o.NodeSize <= 0 {
		return &ErrInvalidOption{Name: "NodeSize", Value: o.NodeSize}
	}
	return nil
}

// WithLogger configures structured logging for operations.
//
// Example with JSON logging:
//
//	logger := supercluster.NewJSONLogger(slog.LevelDebug)
//	idx, _ := supercluster.New(supercluster.WithLogger(logger))
func WithLogger(logger *Logger) func(o *Options) {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) func(o *Options) {
	return func(o *Options) {
		o.Logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations.
//
// Example with BasicMetricsCollector:
//
//	metrics := &supercluster.BasicMetricsCollector{}
//	idx, _ := supercluster.New(supercluster.WithMetricsCollector(metrics))
//	// ... load and query ...
//	stats := metrics.GetStats()
//	fmt.Printf("Queries: %d, Avg latency: %dns\n", stats.QueryCount, stats.QueryAvgNanos)
func WithMetricsCollector(mc MetricsCollector) func(o *Options) {
	return func(o *Options) {
		o.Metrics = mc
	}
}

// LoadOptions contains per-load configuration.
type LoadOptions struct {
	// Mask selects which input rows to index. Nil indexes every row.
	Mask *roaring.Bitmap
}

// WithMask restricts a Load call to the rows whose index is set in bm.
// An empty bitmap indexes nothing; bits at or beyond the row count are
// ignored.
func WithMask(bm *roaring.Bitmap) func(o *LoadOptions) {
	return func(o *LoadOptions) {
		o.Mask = bm
	}
}
