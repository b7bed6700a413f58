package hierarchy

import (
	"math"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/StoneTapeStudios/arrow-supercluster/projection"
)

// Build ingests an interleaved lng,lat buffer and derives every level of
// the hierarchy. Rows excluded by mask or carrying a NaN coordinate are
// dropped silently. coords is only read, never retained.
func Build(coords []float64, mask *roaring.Bitmap, cfg Config) *Tree {
	rows := len(coords) / 2

	leaves := make([]Node, 0, rows)
	for row := 0; row < rows; row++ {
		if mask != nil && !mask.Contains(uint32(row)) {
			continue
		}
		lng, lat := coords[2*row], coords[2*row+1]
		if math.IsNaN(lng) || math.IsNaN(lat) {
			continue
		}
		leaves = append(leaves, Node{
			X:      float32(projection.LngX(lng)),
			Y:      float32(projection.LatY(lat)),
			Weight: 1,
			Zoom:   NeverMerged,
			Parent: NoParent,
			Ref:    Ident{Index: uint32(row)},
		})
	}

	t := &Tree{
		Total:  len(leaves),
		cfg:    cfg,
		levels: make([]Level, cfg.MaxZoom+2),
	}

	leafLevel := &t.levels[cfg.MaxZoom+1]
	leafLevel.Nodes = leaves
	leafLevel.build(cfg.NodeSize)

	for zoom := cfg.MaxZoom; zoom >= cfg.MinZoom; zoom-- {
		level := &t.levels[zoom]
		level.Nodes = t.derive(&t.levels[zoom+1], zoom)
		level.build(cfg.NodeSize)
	}

	return t
}

// derive runs one merge pass: it reads src (the level at zoom+1) and
// produces the node list for zoom. Visit marks and parent links are
// written back into src, which is final afterwards.
func (t *Tree) derive(src *Level, zoom int) []Node {
	r := projection.Radius(t.cfg.Radius, t.cfg.Extent, zoom)
	out := make([]Node, 0, len(src.Nodes))

	for i := range src.Nodes {
		origin := &src.Nodes[i]
		if origin.Zoom <= int32(zoom) {
			continue // consumed by an earlier origin on this pass
		}
		origin.Zoom = int32(zoom)

		neighbors := src.Within(float64(origin.X), float64(origin.Y), r)

		originWeight := origin.Weight
		weight := originWeight
		for _, j := range neighbors {
			if n := &src.Nodes[j]; n.Zoom > int32(zoom) {
				weight += n.Weight
			}
		}

		if weight > originWeight && weight >= uint32(t.cfg.MinPoints) {
			ref := Ident{Cluster: true, Zoom: uint8(zoom + 1), Index: uint32(i)}
			id := t.EncodeID(ref)

			// Weighted centroid, accumulated in float64.
			wx := float64(origin.X) * float64(originWeight)
			wy := float64(origin.Y) * float64(originWeight)
			for _, j := range neighbors {
				n := &src.Nodes[j]
				if n.Zoom <= int32(zoom) {
					continue
				}
				n.Zoom = int32(zoom)
				wx += float64(n.X) * float64(n.Weight)
				wy += float64(n.Y) * float64(n.Weight)
				n.Parent = id
			}
			origin.Parent = id

			out = append(out, Node{
				X:      float32(wx / float64(weight)),
				Y:      float32(wy / float64(weight)),
				Weight: weight,
				Zoom:   NeverMerged,
				Parent: NoParent,
				Ref:    ref,
			})
			continue
		}

		// No merge. The origin carries over unchanged, and when the
		// neighborhood holds more than one row its members carry over too,
		// marked as visited so a later origin cannot recount them.
		out = append(out, *origin)
		if weight > 1 {
			for _, j := range neighbors {
				n := &src.Nodes[j]
				if n.Zoom <= int32(zoom) {
					continue
				}
				n.Zoom = int32(zoom)
				out = append(out, *n)
			}
		}
	}

	return out
}
