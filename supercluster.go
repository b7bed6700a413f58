package supercluster

import (
	"time"

	"github.com/StoneTapeStudios/arrow-supercluster/internal/hierarchy"
)

// Index clusters a loaded set of geographic points at every zoom level
// and answers bounding-box, tile and hierarchy-navigation queries.
//
// An Index is single-owner: Load must not run concurrently with any other
// call. Query operations never mutate the hierarchy and are safe to call
// concurrently with each other, with one exception: GetClusters reuses an
// output buffer owned by the index and must not run concurrently with
// itself (see GetClusters).
type Index struct {
	opts    Options
	logger  *Logger
	metrics MetricsCollector

	coords []float64
	tree   *hierarchy.Tree
	view   ClusterView // reused across GetClusters calls
}

// New creates an index with the given option functions applied on top of
// DefaultOptions.
func New(optFns ...func(o *Options)) (*Index, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}
	if opts.Logger == nil {
		opts.Logger = NoopLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = NoopMetricsCollector{}
	}

	if err := validateOptions(&opts); err != nil {
		return nil, err
	}

	return &Index{
		opts:    opts,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}, nil
}

// Load builds the cluster hierarchy for an interleaved lng,lat buffer.
// Rows excluded by the optional mask or carrying a NaN coordinate are
// skipped silently. The buffer is retained read-only for exact point
// round-trips; the caller must not mutate it while the index is in use.
//
// A successful Load fully replaces any previously loaded state; a failed
// one leaves it untouched. Loading an empty buffer yields a valid, empty
// index.
func (idx *Index) Load(coords []float64, optFns ...func(o *LoadOptions)) error {
	start := time.Now()

	var lo LoadOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&lo)
		}
	}

	if len(coords)%2 != 0 {
		idx.logger.LogLoad(len(coords)/2, 0, time.Since(start), ErrOddCoordinates)
		idx.metrics.RecordLoad(0, time.Since(start), ErrOddCoordinates)
		return ErrOddCoordinates
	}

	tree := hierarchy.Build(coords, lo.Mask, hierarchy.Config{
		MinZoom:   idx.opts.MinZoom,
		MaxZoom:   idx.opts.MaxZoom,
		MinPoints: idx.opts.MinPoints,
		Radius:    idx.opts.Radius,
		Extent:    idx.opts.Extent,
		NodeSize:  idx.opts.NodeSize,
	})

	idx.coords = coords
	idx.tree = tree

	idx.logger.LogLoad(len(coords)/2, tree.Total, time.Since(start), nil)
	idx.metrics.RecordLoad(tree.Total, time.Since(start), nil)
	return nil
}

// IndexedPointCount returns the number of rows indexed by the last
// successful Load, after mask and NaN filtering. It is 0 before any Load.
func (idx *Index) IndexedPointCount() int {
	if idx.tree == nil {
		return 0
	}
	return idx.tree.Total
}

// Stats describes the built hierarchy. Diagnostic only.
type Stats struct {
	IndexedPoints int
	Levels        []LevelStats
}

// LevelStats counts one level's features.
type LevelStats struct {
	Zoom     int
	Features int
	Clusters int
}

// Stats returns per-level feature counts for the current hierarchy.
func (idx *Index) Stats() Stats {
	if idx.tree == nil {
		return Stats{}
	}

	st := Stats{IndexedPoints: idx.tree.Total}
	for zoom := idx.opts.MinZoom; zoom <= idx.opts.MaxZoom+1; zoom++ {
		level := idx.tree.Level(zoom)
		ls := LevelStats{Zoom: zoom, Features: len(level.Nodes)}
		for i := range level.Nodes {
			if level.Nodes[i].Weight > 1 {
				ls.Clusters++
			}
		}
		st.Levels = append(st.Levels, ls)
	}
	return st
}
