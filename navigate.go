package supercluster

import (
	"math"
	"time"

	"github.com/StoneTapeStudios/arrow-supercluster/projection"
)

// GetChildren returns the features a cluster was merged from: its origin
// node plus the neighbors consumed by the merge, one level above the
// cluster. Ids that do not resolve to a live cluster, including ids from a
// previous Load, yield an empty view. The caller owns the returned view.
func (idx *Index) GetChildren(clusterID int64) *ClusterView {
	start := time.Now()

	out := &ClusterView{}
	idx.collectChildren(out, clusterID)

	idx.logger.LogChildren(clusterID, out.Count, time.Since(start))
	idx.metrics.RecordQuery(OpChildren, out.Count, time.Since(start))
	return out
}

func (idx *Index) collectChildren(out *ClusterView, clusterID int64) {
	if idx.tree == nil {
		return
	}
	ref, ok := idx.tree.DecodeID(clusterID)
	if !ok {
		return
	}
	level, ok := idx.tree.LevelAt(int(ref.Zoom))
	if !ok || int(ref.Index) >= len(level.Nodes) {
		return
	}

	origin := &level.Nodes[ref.Index]
	r := projection.Radius(idx.opts.Radius, idx.opts.Extent, int(ref.Zoom)-1)
	for _, i := range level.Within(float64(origin.X), float64(origin.Y), r) {
		if level.Nodes[i].Parent == clusterID {
			idx.emit(out, level, i)
		}
	}
}

// GetLeaves returns the source row indices beneath a cluster in
// depth-first order, skipping offset leaves and stopping after limit.
// A limit of 0 or less returns every remaining leaf; a negative offset
// reads as 0. Unresolvable ids yield an empty slice.
func (idx *Index) GetLeaves(clusterID int64, limit, offset int) []uint32 {
	start := time.Now()

	if limit <= 0 {
		limit = math.MaxInt
	}
	if offset < 0 {
		offset = 0
	}

	var leaves []uint32
	idx.appendLeaves(&leaves, clusterID, limit, offset, 0)

	idx.logger.LogLeaves(clusterID, len(leaves), time.Since(start))
	idx.metrics.RecordQuery(OpLeaves, len(leaves), time.Since(start))
	return leaves
}

// appendLeaves walks one cluster's children, consuming the skip budget
// before emitting. Whole subtrees inside the budget are skipped by weight
// without descending. Returns the updated skip count.
func (idx *Index) appendLeaves(out *[]uint32, clusterID int64, limit, offset, skipped int) int {
	children := &ClusterView{}
	idx.collectChildren(children, clusterID)

	for i := 0; i < children.Count; i++ {
		if children.Flags[i] == FlagCluster {
			if skipped+int(children.Weights[i]) <= offset {
				skipped += int(children.Weights[i])
			} else {
				skipped = idx.appendLeaves(out, children.IDs[i], limit, offset, skipped)
			}
		} else if skipped < offset {
			skipped++
		} else {
			*out = append(*out, uint32(children.IDs[i]))
		}
		if len(*out) == limit {
			break
		}
	}

	return skipped
}

// GetClusterExpansionZoom returns the first zoom level at which the
// cluster breaks apart into multiple features, capped at MaxZoom+1. While
// exactly one cluster child remains the walk descends into it; a single
// point child stops the walk. Ids that do not decode as clusters return
// MaxZoom+1.
func (idx *Index) GetClusterExpansionZoom(clusterID int64) int {
	start := time.Now()

	zoom := idx.expansionZoom(clusterID)

	idx.logger.LogExpansionZoom(clusterID, zoom, time.Since(start))
	idx.metrics.RecordQuery(OpExpansionZoom, 0, time.Since(start))
	return zoom
}

func (idx *Index) expansionZoom(clusterID int64) int {
	if idx.tree == nil {
		return idx.opts.MaxZoom + 1
	}
	ref, ok := idx.tree.DecodeID(clusterID)
	if !ok {
		return idx.opts.MaxZoom + 1
	}

	expansionZoom := int(ref.Zoom) - 1
	id := clusterID
	for expansionZoom <= idx.opts.MaxZoom {
		children := &ClusterView{}
		idx.collectChildren(children, id)

		expansionZoom++
		if children.Count != 1 {
			break
		}
		if children.Flags[0] != FlagCluster {
			break // a lone point child cannot expand further
		}
		id = children.IDs[0]
	}
	return expansionZoom
}
