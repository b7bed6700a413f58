// Package hierarchy builds and stores the multi-resolution cluster tree:
// one immutable level per zoom from MaxZoom+1 (every indexed row,
// unclustered) down to MinZoom, each level derived from the one above it
// by a greedy radius merge.
package hierarchy

import "math"

// Sentinel values for Node bookkeeping fields.
const (
	// NeverMerged marks a node that no derivation pass has visited yet.
	NeverMerged int32 = math.MaxInt32

	// NoParent marks a node that has not been folded into a cluster.
	NoParent int64 = -1
)

// Ident identifies what a node stands for: a single source row, or a
// cluster minted at a particular level.
type Ident struct {
	Cluster bool
	Zoom    uint8  // level the cluster's origin node lives on; unused for rows
	Index   uint32 // origin position in that level, or the source row
}

// Node is one entry of one level. X and Y are normalized Mercator
// coordinates in reduced precision; all arithmetic on them happens in
// float64.
type Node struct {
	X, Y   float32
	Weight uint32 // source rows beneath this node
	Zoom   int32  // lowest zoom whose derivation pass has visited the node
	Parent int64  // encoded id of the cluster that consumed this node
	Ref    Ident
}

// Coordinates implements kdbush.Point.
func (n *Node) Coordinates() (float64, float64) {
	return float64(n.X), float64(n.Y)
}

// Config fixes the clustering parameters for one build.
type Config struct {
	MinZoom   int
	MaxZoom   int
	MinPoints int
	Radius    float64
	Extent    int
	NodeSize  int
}

// Tree is a finished hierarchy. Levels are immutable once built, with one
// exception: deriving level z rewrites the Zoom and Parent fields of level
// z+1, and only then.
type Tree struct {
	Total  int // rows that survived mask and NaN filtering
	cfg    Config
	levels []Level // indexed by zoom; slots below MinZoom stay empty
}

// Config returns the parameters the tree was built with.
func (t *Tree) Config() Config { return t.cfg }

// Level returns the level for zoom, clamped into [MinZoom, MaxZoom+1].
func (t *Tree) Level(zoom int) *Level {
	if zoom < t.cfg.MinZoom {
		zoom = t.cfg.MinZoom
	}
	if zoom > t.cfg.MaxZoom+1 {
		zoom = t.cfg.MaxZoom + 1
	}
	return &t.levels[zoom]
}

// LevelAt returns the level for zoom without clamping. ok is false when
// the tree holds no such level.
func (t *Tree) LevelAt(zoom int) (*Level, bool) {
	if zoom < t.cfg.MinZoom || zoom > t.cfg.MaxZoom+1 {
		return nil, false
	}
	return &t.levels[zoom], true
}

// EncodeID returns the externally visible feature id for ref. Rows are
// their own id; cluster ids pack the origin position and level, offset by
// the indexed row count so the two id spaces never collide. Level values
// stay in [1, 31], which is why MaxZoom must not exceed 30.
func (t *Tree) EncodeID(ref Ident) int64 {
	if !ref.Cluster {
		return int64(ref.Index)
	}
	return int64(ref.Index)<<5 + int64(ref.Zoom) + int64(t.Total)
}

// DecodeID recovers a cluster Ident from an external id. ok is false when
// the id cannot name a cluster of this tree; the caller still has to
// bounds-check the origin position against the level.
func (t *Tree) DecodeID(id int64) (Ident, bool) {
	v := id - int64(t.Total)
	if v <= 0 || v>>5 > math.MaxUint32 {
		return Ident{}, false
	}
	zoom := uint8(v & 31)
	if zoom == 0 {
		return Ident{}, false
	}
	return Ident{Cluster: true, Zoom: zoom, Index: uint32(v >> 5)}, true
}
