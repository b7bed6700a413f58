// Package testutil provides deterministic random geo datasets and
// brute-force reference queries for tests and benchmarks.
package testutil

import (
	"math"
	"math/rand"
	"sync"

	"github.com/StoneTapeStudios/arrow-supercluster/projection"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// UniformCoords generates num interleaved lng,lat pairs uniform in the box.
// Locks only once per call.
func (r *RNG) UniformCoords(num int, minLng, minLat, maxLng, maxLat float64) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	coords := make([]float64, 2*num)
	for i := 0; i < num; i++ {
		coords[2*i] = minLng + r.rand.Float64()*(maxLng-minLng)
		coords[2*i+1] = minLat + r.rand.Float64()*(maxLat-minLat)
	}
	return coords
}

// WorldCoords generates num pairs spread across the whole world, keeping
// latitudes inside the square Mercator domain.
func (r *RNG) WorldCoords(num int) []float64 {
	return r.UniformCoords(num, -180, -85, 180, 85)
}

// ClusteredCoords generates num pairs drawn around random centers with
// Gaussian noise of spreadDeg degrees. Useful for testing hierarchy depth
// on non-uniform data.
func (r *RNG) ClusteredCoords(num, centers int, spreadDeg float64) []float64 {
	centerCoords := r.UniformCoords(centers, -160, -70, 160, 70)

	r.mu.Lock()
	defer r.mu.Unlock()

	coords := make([]float64, 2*num)
	for i := 0; i < num; i++ {
		c := i % centers
		coords[2*i] = centerCoords[2*c] + r.rand.NormFloat64()*spreadDeg
		coords[2*i+1] = centerCoords[2*c+1] + r.rand.NormFloat64()*spreadDeg
	}
	return coords
}

// PunchNaN overwrites rows with NaN coordinates at the given rate and
// returns the indices of the punched rows.
func (r *RNG) PunchNaN(coords []float64, rate float64) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var punched []int
	for row := 0; row < len(coords)/2; row++ {
		if r.rand.Float64() < rate {
			coords[2*row] = math.NaN()
			coords[2*row+1] = math.NaN()
			punched = append(punched, row)
		}
	}
	return punched
}

// BruteForceRange returns the rows whose projected position falls inside
// the projected box, reduced to float32 the way the engine stores node
// coordinates. Ground truth for range queries at the unclustered level.
func BruteForceRange(coords []float64, minLng, minLat, maxLng, maxLat float64) []int {
	minX, maxX := projection.LngX(minLng), projection.LngX(maxLng)
	minY, maxY := projection.LatY(maxLat), projection.LatY(minLat)

	var rows []int
	for row := 0; row < len(coords)/2; row++ {
		lng, lat := coords[2*row], coords[2*row+1]
		if math.IsNaN(lng) || math.IsNaN(lat) {
			continue
		}
		x := float64(float32(projection.LngX(lng)))
		y := float64(float32(projection.LatY(lat)))
		if x >= minX && x <= maxX && y >= minY && y <= maxY {
			rows = append(rows, row)
		}
	}
	return rows
}

// BruteForceWithin returns the rows whose projected position lies within
// distance radius of the projected query point, with the same float32
// reduction as BruteForceRange.
func BruteForceWithin(coords []float64, lng, lat, radius float64) []int {
	qx, qy := projection.LngX(lng), projection.LatY(lat)

	var rows []int
	for row := 0; row < len(coords)/2; row++ {
		clng, clat := coords[2*row], coords[2*row+1]
		if math.IsNaN(clng) || math.IsNaN(clat) {
			continue
		}
		x := float64(float32(projection.LngX(clng)))
		y := float64(float32(projection.LatY(clat)))
		if (x-qx)*(x-qx)+(y-qy)*(y-qy) <= radius*radius {
			rows = append(rows, row)
		}
	}
	return rows
}
