package supercluster

import (
	"math"
	"time"

	"github.com/StoneTapeStudios/arrow-supercluster/internal/hierarchy"
	"github.com/StoneTapeStudios/arrow-supercluster/projection"
)

// BBox is a geographic bounding box in degrees, west/south/east/north.
type BBox struct {
	MinLng float64
	MinLat float64
	MaxLng float64
	MaxLat float64
}

// GetClusters returns the features inside bbox at the given zoom. The zoom
// is floored and clamped into [MinZoom, MaxZoom+1]; latitudes clamp to
// [-90, 90] and longitudes wrap into [-180, 180], except a MaxLng of
// exactly 180 which is kept. A box spanning 360 degrees or more of raw
// longitude covers the whole world; a box whose wrapped west edge lies
// east of its east edge straddles the antimeridian and returns the eastern
// hemisphere's features followed by the western hemisphere's.
//
// The returned view aliases buffers owned by the index that the next
// GetClusters call reuses: it is valid until that call, and GetClusters is
// therefore the one query that must not run concurrently with itself. Use
// Clone to retain results.
func (idx *Index) GetClusters(bbox BBox, zoom float64) *ClusterView {
	start := time.Now()

	idx.view.reset()
	idx.collectClusters(&idx.view, bbox, zoom)

	idx.logger.LogClusters(zoom, idx.view.Count, time.Since(start))
	idx.metrics.RecordQuery(OpClusters, idx.view.Count, time.Since(start))
	return &idx.view
}

func (idx *Index) collectClusters(out *ClusterView, bbox BBox, zoom float64) {
	if idx.tree == nil {
		return
	}

	minLng := wrapLng(bbox.MinLng)
	minLat := clampLat(bbox.MinLat)
	maxLng := 180.0
	if bbox.MaxLng != 180 {
		maxLng = wrapLng(bbox.MaxLng)
	}
	maxLat := clampLat(bbox.MaxLat)

	if bbox.MaxLng-bbox.MinLng >= 360 {
		minLng, maxLng = -180, 180
	} else if minLng > maxLng {
		idx.collectRange(out, minLng, minLat, 180, maxLat, zoom)
		idx.collectRange(out, -180, minLat, maxLng, maxLat, zoom)
		return
	}

	idx.collectRange(out, minLng, minLat, maxLng, maxLat, zoom)
}

func (idx *Index) collectRange(out *ClusterView, minLng, minLat, maxLng, maxLat, zoom float64) {
	level := idx.tree.Level(idx.limitZoom(zoom))
	found := level.Range(
		projection.LngX(minLng), projection.LatY(maxLat),
		projection.LngX(maxLng), projection.LatY(minLat),
	)
	for _, i := range found {
		idx.emit(out, level, i)
	}
}

// emit appends one node as an output feature. Clusters unproject their
// centroid; points echo the exact caller-supplied coordinates.
func (idx *Index) emit(out *ClusterView, level *hierarchy.Level, i int) {
	n := &level.Nodes[i]
	if n.Weight > 1 {
		out.push(
			projection.XLng(float64(n.X)), projection.YLat(float64(n.Y)),
			n.Weight, idx.tree.EncodeID(n.Ref), FlagCluster,
		)
		return
	}
	row := int(n.Ref.Index)
	out.push(idx.coords[2*row], idx.coords[2*row+1], 1, int64(row), FlagPoint)
}

// limitZoom floors the requested zoom and clamps it onto an existing level.
func (idx *Index) limitZoom(zoom float64) int {
	if math.IsNaN(zoom) {
		return idx.opts.MinZoom
	}
	z := int(math.Floor(zoom))
	if z < idx.opts.MinZoom {
		z = idx.opts.MinZoom
	}
	if z > idx.opts.MaxZoom+1 {
		z = idx.opts.MaxZoom + 1
	}
	return z
}

func wrapLng(lng float64) float64 {
	return math.Mod(math.Mod(lng+180, 360)+360, 360) - 180
}

func clampLat(lat float64) float64 {
	return math.Max(-90, math.Min(90, lat))
}
