package supercluster_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	supercluster "github.com/StoneTapeStudios/arrow-supercluster"
	"github.com/StoneTapeStudios/arrow-supercluster/testutil"
)

func TestGetClusters_SinglePoint(t *testing.T) {
	idx, err := supercluster.New()
	require.NoError(t, err)
	require.NoError(t, idx.Load([]float64{13.405, 52.52}))

	for _, zoom := range []float64{-3, 0, 8.7, 16, 17, 40} {
		view := idx.GetClusters(worldBBox, zoom)
		require.Equal(t, 1, view.Count, "zoom %v", zoom)
		assert.Equal(t, supercluster.FlagPoint, view.Flags[0])
		assert.Equal(t, uint32(1), view.Weights[0])
		assert.Equal(t, int64(0), view.IDs[0])
		assert.Equal(t, 13.405, view.Positions[0])
		assert.Equal(t, 52.52, view.Positions[1])
	}
}

func TestGetClusters_IdenticalPair(t *testing.T) {
	idx, err := supercluster.New()
	require.NoError(t, err)
	require.NoError(t, idx.Load([]float64{
		-0.1276, 51.5072,
		-0.1276, 51.5072,
	}))

	view := idx.GetClusters(worldBBox, 0)
	require.Equal(t, 1, view.Count)
	assert.Equal(t, supercluster.FlagCluster, view.Flags[0])
	assert.Equal(t, uint32(2), view.Weights[0])
}

func TestGetClusters_UnclusteredLevelIsComplete(t *testing.T) {
	// Points spread far apart stay singletons at MaxZoom+1.
	coords := []float64{
		-120, 40,
		-60, -20,
		0, 0,
		60, 20,
		120, -40,
	}

	idx, err := supercluster.New()
	require.NoError(t, err)
	require.NoError(t, idx.Load(coords))

	view := idx.GetClusters(worldBBox, 17)
	require.Equal(t, idx.IndexedPointCount(), view.Count)
	for i := 0; i < view.Count; i++ {
		assert.Equal(t, supercluster.FlagPoint, view.Flags[i])
	}
}

func TestGetClusters_ExactRoundTrip(t *testing.T) {
	// Point positions must come back bit-identical to the input buffer,
	// untouched by the projection round trip.
	coords := testutil.NewRNG(3).WorldCoords(500)

	idx, err := supercluster.New()
	require.NoError(t, err)
	require.NoError(t, idx.Load(coords))

	view := idx.GetClusters(worldBBox, 17)
	for i := 0; i < view.Count; i++ {
		require.Equal(t, supercluster.FlagPoint, view.Flags[i])
		row := int(view.IDs[i])
		assert.Equal(t, coords[2*row], view.Positions[2*i])
		assert.Equal(t, coords[2*row+1], view.Positions[2*i+1])
	}
}

func TestGetClusters_MatchesBruteForce(t *testing.T) {
	// At MaxZoom+1 every node is a leaf, so a bbox query must agree with
	// a brute-force scan over the projected input.
	rng := testutil.NewRNG(21)
	coords := rng.WorldCoords(2000)
	rng.PunchNaN(coords, 0.05)

	idx, err := supercluster.New()
	require.NoError(t, err)
	require.NoError(t, idx.Load(coords))

	boxes := []supercluster.BBox{
		{MinLng: -60, MinLat: -30, MaxLng: 60, MaxLat: 30},
		{MinLng: -180, MinLat: 40, MaxLng: 0, MaxLat: 85},
		{MinLng: 10, MinLat: -85, MaxLng: 11, MaxLat: 85},
	}
	for _, bbox := range boxes {
		want := testutil.BruteForceRange(coords, bbox.MinLng, bbox.MinLat, bbox.MaxLng, bbox.MaxLat)

		view := idx.GetClusters(bbox, 17)
		got := make([]int, view.Count)
		for i := 0; i < view.Count; i++ {
			got[i] = int(view.IDs[i])
		}
		assert.ElementsMatch(t, want, got, "bbox %+v", bbox)
	}
}

func TestGetClusters_WeightsSumToTotal(t *testing.T) {
	coords := testutil.NewRNG(11).ClusteredCoords(3000, 12, 1.0)

	idx, err := supercluster.New()
	require.NoError(t, err)
	require.NoError(t, idx.Load(coords))

	for zoom := 0; zoom <= 17; zoom++ {
		view := idx.GetClusters(worldBBox, float64(zoom))
		total := uint32(0)
		for i := 0; i < view.Count; i++ {
			total += view.Weights[i]
		}
		assert.Equal(t, uint32(idx.IndexedPointCount()), total, "zoom %d", zoom)
	}
}

func TestGetClusters_BBoxFiltering(t *testing.T) {
	idx, err := supercluster.New()
	require.NoError(t, err)
	require.NoError(t, idx.Load([]float64{
		-73.99, 40.75, // New York
		2.2945, 48.8584, // Paris
		139.6917, 35.6895, // Tokyo
	}))

	t.Run("WesternHemisphere", func(t *testing.T) {
		view := idx.GetClusters(supercluster.BBox{MinLng: -180, MinLat: 0, MaxLng: 0, MaxLat: 85}, 17)
		require.Equal(t, 1, view.Count)
		assert.Equal(t, int64(0), view.IDs[0])
	})

	t.Run("LatitudeClamped", func(t *testing.T) {
		view := idx.GetClusters(supercluster.BBox{MinLng: -180, MinLat: -400, MaxLng: 180, MaxLat: 400}, 17)
		assert.Equal(t, 3, view.Count)
	})

	t.Run("OversizedSpanCoversWorld", func(t *testing.T) {
		view := idx.GetClusters(supercluster.BBox{MinLng: -700, MinLat: -85, MaxLng: 700, MaxLat: 85}, 17)
		assert.Equal(t, 3, view.Count)
	})

	t.Run("EmptyRegion", func(t *testing.T) {
		view := idx.GetClusters(supercluster.BBox{MinLng: -40, MinLat: -40, MaxLng: -30, MaxLat: -30}, 17)
		assert.Equal(t, 0, view.Count)
	})
}

func TestGetClusters_Antimeridian(t *testing.T) {
	idx, err := supercluster.New()
	require.NoError(t, err)
	require.NoError(t, idx.Load([]float64{
		178.5, 2.0, // Fiji side
		-179.5, -1.5, // just across the line
		-150.0, 3.0, // outside the box
		150.0, 3.0, // outside the box
	}))

	crossing := idx.GetClusters(supercluster.BBox{MinLng: 170, MinLat: -10, MaxLng: -170, MaxLat: 10}, 17).Clone()
	require.Equal(t, 2, crossing.Count)

	east := idx.GetClusters(supercluster.BBox{MinLng: 170, MinLat: -10, MaxLng: 180, MaxLat: 10}, 17).Clone()
	west := idx.GetClusters(supercluster.BBox{MinLng: -180, MinLat: -10, MaxLng: -170, MaxLat: 10}, 17).Clone()

	var union []int64
	for i := 0; i < east.Count; i++ {
		union = append(union, east.IDs[i])
	}
	for i := 0; i < west.Count; i++ {
		union = append(union, west.IDs[i])
	}
	assert.Equal(t, union, crossing.IDs)
}

func TestGetClusters_ViewReuse(t *testing.T) {
	idx, err := supercluster.New()
	require.NoError(t, err)
	require.NoError(t, idx.Load([]float64{10, 10, 20, 20, 30, 30}))

	first := idx.GetClusters(worldBBox, 17)
	require.Equal(t, 3, first.Count)
	retained := first.Clone()

	second := idx.GetClusters(supercluster.BBox{MinLng: 5, MinLat: 5, MaxLng: 15, MaxLat: 15}, 17)

	// Both results come from the same view value.
	assert.Same(t, first, second)
	assert.Equal(t, 1, first.Count)

	// The clone is unaffected by the reuse.
	assert.Equal(t, 3, retained.Count)
	assert.Len(t, retained.IDs, 3)
}
