// Package supercluster provides a fast in-memory clustering engine for
// geographic point layers.
//
// The engine ingests a flat buffer of lng,lat pairs, builds one spatial
// index per zoom level from the fully unclustered level down to MinZoom by
// greedy radius merging, and answers bounding-box, tile and hierarchy
// queries against the result. Map renderers get unclustered points at high
// zooms and weighted clusters at low zooms from the same loaded dataset.
//
// # Quick Start
//
//	idx, _ := supercluster.New()
//	_ = idx.Load(coords) // []float64, interleaved lng,lat
//
//	view := idx.GetClusters(supercluster.BBox{
//	    MinLng: -180, MinLat: -85, MaxLng: 180, MaxLat: 85,
//	}, 3)
//	for i := 0; i < view.Count; i++ {
//	    if view.Flags[i] == supercluster.FlagCluster {
//	        // view.IDs[i] is a cluster id usable with GetChildren,
//	        // GetLeaves and GetClusterExpansionZoom.
//	    }
//	}
//
// # Input Model
//
// Load takes positions as one interleaved buffer, optionally filtered by a
// roaring bitmap row mask. Rows with NaN coordinates are skipped. The
// buffer is retained read-only so unclustered features round-trip the
// exact input coordinates.
//
// # Cluster Identity
//
// Point features carry their source row index as id. Cluster ids encode
// the cluster's origin position and level, offset by the indexed row
// count; they stay stable for the lifetime of one Load. Navigation calls
// with stale or foreign ids return empty results rather than errors.
//
// # Concurrency
//
// The engine itself takes no locks. Load requires exclusive access.
// Queries are pure reads and may run concurrently, except GetClusters,
// which reuses an index-owned output buffer and must not overlap with
// itself; Clone the view to retain results, or serve concurrent traffic
// from GetTile and GetChildren, which allocate fresh results.
package supercluster
