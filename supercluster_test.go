package supercluster_test

import (
	"math"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	supercluster "github.com/StoneTapeStudios/arrow-supercluster"
	"github.com/StoneTapeStudios/arrow-supercluster/testutil"
)

var worldBBox = supercluster.BBox{MinLng: -180, MinLat: -90, MaxLng: 180, MaxLat: 90}

func TestNew(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		idx, err := supercluster.New()
		require.NoError(t, err)
		assert.Equal(t, 0, idx.IndexedPointCount())
	})

	t.Run("InvalidZoomRange", func(t *testing.T) {
		_, err := supercluster.New(func(o *supercluster.Options) {
			o.MinZoom = 5
			o.MaxZoom = 3
		})
		require.Error(t, err)

		var zerr *supercluster.ErrInvalidZoomRange
		require.ErrorAs(t, err, &zerr)
		assert.Equal(t, 5, zerr.MinZoom)
		assert.Equal(t, 3, zerr.MaxZoom)
	})

	t.Run("MaxZoomCeiling", func(t *testing.T) {
		_, err := supercluster.New(func(o *supercluster.Options) {
			o.MaxZoom = 31
		})
		require.Error(t, err)
	})

	t.Run("InvalidMinPoints", func(t *testing.T) {
		_, err := supercluster.New(func(o *supercluster.Options) {
			o.MinPoints = 0
		})
		var oerr *supercluster.ErrInvalidOption
		require.ErrorAs(t, err, &oerr)
		assert.Equal(t, "MinPoints", oerr.Name)
	})

	t.Run("InvalidNumericOptions", func(t *testing.T) {
		for name, fn := range map[string]func(o *supercluster.Options){
			"Radius":   func(o *supercluster.Options) { o.Radius = -1 },
			"Extent":   func(o *supercluster.Options) { o.Extent = 0 },
			"NodeSize": func(o *supercluster.Options) { o.NodeSize = -4 },
		} {
			_, err := supercluster.New(fn)
			var oerr *supercluster.ErrInvalidOption
			require.ErrorAs(t, err, &oerr, name)
			assert.Equal(t, name, oerr.Name)
		}
	})
}

func TestLoad(t *testing.T) {
	t.Run("OddBuffer", func(t *testing.T) {
		idx, err := supercluster.New()
		require.NoError(t, err)

		err = idx.Load([]float64{1, 2, 3})
		require.ErrorIs(t, err, supercluster.ErrOddCoordinates)
		assert.Equal(t, 0, idx.IndexedPointCount())
	})

	t.Run("Empty", func(t *testing.T) {
		idx, err := supercluster.New()
		require.NoError(t, err)
		require.NoError(t, idx.Load(nil))

		assert.Equal(t, 0, idx.IndexedPointCount())
		assert.Equal(t, 0, idx.GetClusters(worldBBox, 0).Count)
		assert.Nil(t, idx.GetTile(0, 0, 0))
	})

	t.Run("NaNRowsExcluded", func(t *testing.T) {
		idx, err := supercluster.New()
		require.NoError(t, err)

		coords := []float64{
			10, 10,
			math.NaN(), 20,
			30, math.NaN(),
			40, 40,
		}
		require.NoError(t, idx.Load(coords))
		assert.Equal(t, 2, idx.IndexedPointCount())

		view := idx.GetClusters(worldBBox, 17)
		require.Equal(t, 2, view.Count)
		assert.ElementsMatch(t, []int64{0, 3}, view.IDs)
	})

	t.Run("ReplacesPreviousState", func(t *testing.T) {
		idx, err := supercluster.New()
		require.NoError(t, err)

		require.NoError(t, idx.Load([]float64{10, 10, 20, 20, 30, 30}))
		assert.Equal(t, 3, idx.IndexedPointCount())

		require.NoError(t, idx.Load([]float64{50, 50}))
		assert.Equal(t, 1, idx.IndexedPointCount())

		view := idx.GetClusters(worldBBox, 17)
		require.Equal(t, 1, view.Count)
		assert.Equal(t, int64(0), view.IDs[0])
	})

	t.Run("FailedLoadKeepsState", func(t *testing.T) {
		idx, err := supercluster.New()
		require.NoError(t, err)
		require.NoError(t, idx.Load([]float64{10, 10, 20, 20}))

		require.Error(t, idx.Load([]float64{1, 2, 3}))
		assert.Equal(t, 2, idx.IndexedPointCount())
		assert.Equal(t, 2, idx.GetClusters(worldBBox, 17).Count)
	})
}

func TestLoad_Mask(t *testing.T) {
	coords := testutil.NewRNG(7).WorldCoords(100)

	t.Run("AllZeros", func(t *testing.T) {
		idx, err := supercluster.New()
		require.NoError(t, err)
		require.NoError(t, idx.Load(coords, supercluster.WithMask(roaring.New())))

		assert.Equal(t, 0, idx.IndexedPointCount())
		assert.Equal(t, 0, idx.GetClusters(worldBBox, 0).Count)
	})

	t.Run("SuffixRange", func(t *testing.T) {
		mask := roaring.New()
		mask.AddRange(40, 100)

		idx, err := supercluster.New()
		require.NoError(t, err)
		require.NoError(t, idx.Load(coords, supercluster.WithMask(mask)))
		require.Equal(t, 60, idx.IndexedPointCount())

		view := idx.GetClusters(worldBBox, 17)
		require.Equal(t, 60, view.Count)
		for i := 0; i < view.Count; i++ {
			assert.GreaterOrEqual(t, view.IDs[i], int64(40))
			assert.Less(t, view.IDs[i], int64(100))
		}
	})

	t.Run("OutOfRangeBitsIgnored", func(t *testing.T) {
		mask := roaring.New()
		mask.AddRange(0, 1000)

		idx, err := supercluster.New()
		require.NoError(t, err)
		require.NoError(t, idx.Load(coords, supercluster.WithMask(mask)))
		assert.Equal(t, 100, idx.IndexedPointCount())
	})
}

func TestDeterminism(t *testing.T) {
	coords := testutil.NewRNG(99).ClusteredCoords(2000, 20, 0.5)
	mask := roaring.New()
	mask.AddRange(100, 1900)

	run := func() *supercluster.ClusterView {
		idx, err := supercluster.New()
		require.NoError(t, err)
		require.NoError(t, idx.Load(coords, supercluster.WithMask(mask)))
		return idx.GetClusters(worldBBox, 4).Clone()
	}

	first := run()
	for i := 0; i < 3; i++ {
		again := run()
		assert.Equal(t, first.Count, again.Count)
		assert.Equal(t, first.Positions, again.Positions)
		assert.Equal(t, first.Weights, again.Weights)
		assert.Equal(t, first.IDs, again.IDs)
		assert.Equal(t, first.Flags, again.Flags)
	}
}

func TestStats(t *testing.T) {
	idx, err := supercluster.New(func(o *supercluster.Options) {
		o.MaxZoom = 4
	})
	require.NoError(t, err)
	require.NoError(t, idx.Load([]float64{
		-73.99, 40.75,
		-73.99, 40.75,
		139.69, 35.68,
	}))

	st := idx.Stats()
	assert.Equal(t, 3, st.IndexedPoints)
	require.Len(t, st.Levels, 6)

	leaf := st.Levels[len(st.Levels)-1]
	assert.Equal(t, 5, leaf.Zoom)
	assert.Equal(t, 3, leaf.Features)
	assert.Equal(t, 0, leaf.Clusters)

	bottom := st.Levels[0]
	assert.Equal(t, 0, bottom.Zoom)
	assert.Equal(t, 2, bottom.Features)
	assert.Equal(t, 1, bottom.Clusters)
}

func TestMetricsCollection(t *testing.T) {
	metrics := &supercluster.BasicMetricsCollector{}
	idx, err := supercluster.New(supercluster.WithMetricsCollector(metrics))
	require.NoError(t, err)

	require.NoError(t, idx.Load([]float64{10, 10, 20, 20}))
	idx.GetClusters(worldBBox, 3)
	idx.GetClusters(worldBBox, 5)
	idx.GetTile(0, 0, 0)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.LoadCount)
	assert.Equal(t, int64(2), stats.LoadIndexedRows)
	assert.Equal(t, int64(3), stats.QueryCount)
}
