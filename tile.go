package supercluster

import (
	"math"
	"time"

	"github.com/StoneTapeStudios/arrow-supercluster/internal/hierarchy"
)

// GetTile returns the features overlapping slippy-map tile (z, x, y), with
// positions quantized to Extent-relative integers and padded by the
// cluster radius on every side. Tiles on the antimeridian edge include the
// sliver of features from the opposite edge, so straddling geometry
// renders on both. Returns nil when the tile is empty.
//
// Each call allocates a fresh Tile; GetTile is safe for concurrent use
// once Load has completed.
func (idx *Index) GetTile(z, x, y int) *Tile {
	start := time.Now()

	tile := idx.collectTile(z, x, y)

	count := 0
	if tile != nil {
		count = tile.Count
	}
	idx.logger.LogTile(z, x, y, count, time.Since(start))
	idx.metrics.RecordQuery(OpTile, count, time.Since(start))
	return tile
}

func (idx *Index) collectTile(z, x, y int) *Tile {
	if idx.tree == nil {
		return nil
	}

	level := idx.tree.Level(idx.limitZoom(float64(z)))
	z2 := math.Pow(2, float64(z))
	p := idx.opts.Radius / float64(idx.opts.Extent)
	top := (float64(y) - p) / z2
	bottom := (float64(y) + 1 + p) / z2

	tile := &Tile{}
	idx.addTileFeatures(tile, level,
		(float64(x)-p)/z2, top, (float64(x)+1+p)/z2, bottom,
		float64(x), float64(y), z2)

	if x == 0 {
		// Western edge tile: pull the padding sliver from the far east.
		idx.addTileFeatures(tile, level,
			1-p/z2, top, 1, bottom,
			z2, float64(y), z2)
	}
	if float64(x) == z2-1 {
		// Eastern edge tile: pull the padding sliver from the far west.
		idx.addTileFeatures(tile, level,
			0, top, p/z2, bottom,
			-1, float64(y), z2)
	}

	if tile.Count == 0 {
		return nil
	}
	return tile
}

func (idx *Index) addTileFeatures(tile *Tile, level *hierarchy.Level, minX, minY, maxX, maxY, tx, ty, z2 float64) {
	extent := float64(idx.opts.Extent)
	for _, i := range level.Range(minX, minY, maxX, maxY) {
		n := &level.Nodes[i]
		px := int32(math.Round(extent * (float64(n.X)*z2 - tx)))
		py := int32(math.Round(extent * (float64(n.Y)*z2 - ty)))
		tile.Positions = append(tile.Positions, px, py)
		if n.Weight > 1 {
			tile.Weights = append(tile.Weights, n.Weight)
			tile.IDs = append(tile.IDs, idx.tree.EncodeID(n.Ref))
			tile.Flags = append(tile.Flags, FlagCluster)
		} else {
			tile.Weights = append(tile.Weights, 1)
			tile.IDs = append(tile.IDs, int64(n.Ref.Index))
			tile.Flags = append(tile.Flags, FlagPoint)
		}
		tile.Count++
	}
}
