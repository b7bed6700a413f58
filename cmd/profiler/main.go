// Command profiler builds a cluster index over generated or file-backed
// coordinate datasets and measures load and query performance. It backs
// capacity planning and pprof sessions; the numbers it prints are not a
// stable interface.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	supercluster "github.com/StoneTapeStudios/arrow-supercluster"
	"github.com/StoneTapeStudios/arrow-supercluster/internal/coordio"
	"github.com/StoneTapeStudios/arrow-supercluster/testutil"
)

var (
	numPoints  = flag.Int("points", 100000, "number of points to generate")
	numCenters = flag.Int("centers", 50, "number of cluster centers in generated data")
	spread     = flag.Float64("spread", 0.5, "stddev of generated clusters in degrees")
	seed       = flag.Int64("seed", 42, "generator seed")

	dataset      = flag.String("dataset", "", "load coordinates from a coordio file instead of generating")
	writeDataset = flag.String("write-dataset", "", "write the generated coordinates to a coordio file and exit")
	compression  = flag.String("compression", "zstd", "dataset compression: none, lz4 or zstd")

	zoomLevel = flag.Float64("zoom", 8, "zoom level to query")
	workers   = flag.Int("workers", runtime.GOMAXPROCS(0), "concurrent tile query workers")
	qps       = flag.Float64("qps", 0, "tile query rate limit, 0 for unlimited")
	duration  = flag.Duration("duration", 5*time.Second, "length of the tile query phase")
	battery   = flag.Bool("battery", false, "run the full point-count x zoom battery and exit")

	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile = flag.String("memprofile", "", "write memory profile to file")
	verbose    = flag.Bool("v", false, "log engine operations")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "profiler:", err)
		os.Exit(1)
	}
}

func run() error {
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}

	if *battery {
		return runBattery()
	}

	coords, err := loadCoords()
	if err != nil {
		return err
	}

	if *writeDataset != "" {
		c, err := parseCompression(*compression)
		if err != nil {
			return err
		}
		if err := coordio.WriteFile(*writeDataset, coords, c); err != nil {
			return err
		}
		fmt.Printf("wrote %d rows to %s\n", len(coords)/2, *writeDataset)
		return nil
	}

	idx, loadDur, allocMB, err := buildIndex(coords)
	if err != nil {
		return err
	}

	fmt.Printf("indexed %d of %d rows in %v (%.2f MB allocated)\n",
		idx.IndexedPointCount(), len(coords)/2, loadDur, allocMB)
	for _, level := range idx.Stats().Levels {
		fmt.Printf("  z%-2d %8d features %8d clusters\n", level.Zoom, level.Features, level.Clusters)
	}

	if err := runQueryPhase(idx); err != nil {
		return err
	}

	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			return err
		}
		defer f.Close()
		runtime.GC()
		return pprof.WriteHeapProfile(f)
	}
	return nil
}

func loadCoords() ([]float64, error) {
	if *dataset != "" {
		return coordio.ReadFile(*dataset)
	}
	return testutil.NewRNG(*seed).ClusteredCoords(*numPoints, *numCenters, *spread), nil
}

func parseCompression(name string) (coordio.Compression, error) {
	switch name {
	case "none":
		return coordio.None, nil
	case "lz4":
		return coordio.LZ4, nil
	case "zstd":
		return coordio.ZSTD, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", name)
	}
}

func buildIndex(coords []float64) (*supercluster.Index, time.Duration, float64, error) {
	var optFns []func(o *supercluster.Options)
	if *verbose {
		optFns = append(optFns, supercluster.WithLogLevel(slog.LevelDebug))
	}
	idx, err := supercluster.New(optFns...)
	if err != nil {
		return nil, 0, 0, err
	}

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	start := time.Now()

	if err := idx.Load(coords); err != nil {
		return nil, 0, 0, err
	}

	loadDur := time.Since(start)
	runtime.ReadMemStats(&after)
	allocMB := float64(after.TotalAlloc-before.TotalAlloc) / 1024 / 1024
	return idx, loadDur, allocMB, nil
}

// runQueryPhase hammers GetTile from parallel workers, optionally rate
// limited, and reports aggregate throughput. GetTile allocates per call,
// so workers share the index without coordination.
func runQueryPhase(idx *supercluster.Index) error {
	z := int(*zoomLevel)
	n := 1 << z

	var limiter *rate.Limiter
	if *qps > 0 {
		limiter = rate.NewLimiter(rate.Limit(*qps), *workers)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	counts := make([]int64, *workers)
	features := make([]int64, *workers)
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < *workers; w++ {
		w := w
		rng := rand.New(rand.NewSource(*seed + int64(w)))
		g.Go(func() error {
			for ctx.Err() == nil {
				if limiter != nil {
					if err := limiter.Wait(ctx); err != nil {
						break
					}
				}
				tile := idx.GetTile(z, rng.Intn(n), rng.Intn(n))
				counts[w]++
				if tile != nil {
					features[w] += int64(tile.Count)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	elapsed := time.Since(start)
	var total, totalFeatures int64
	for w := 0; w < *workers; w++ {
		total += counts[w]
		totalFeatures += features[w]
	}
	fmt.Printf("tile queries: %d in %v (%.0f/s, %d workers, z%d, %d features)\n",
		total, elapsed.Round(time.Millisecond), float64(total)/elapsed.Seconds(), *workers, z, totalFeatures)
	return nil
}

func runBattery() error {
	pointCounts := []int{1000, 10000, 100000, 500000}
	zoomLevels := []float64{0, 4, 8, 12, 17}

	fmt.Printf("%-10s | %-6s | %-12s | %-12s | %-10s\n",
		"points", "zoom", "load", "query", "features")

	for _, points := range pointCounts {
		coords := testutil.NewRNG(*seed).ClusteredCoords(points, *numCenters, *spread)
		idx, loadDur, _, err := buildIndex(coords)
		if err != nil {
			return err
		}

		for _, zoom := range zoomLevels {
			start := time.Now()
			view := idx.GetClusters(supercluster.BBox{
				MinLng: -180, MinLat: -90, MaxLng: 180, MaxLat: 90,
			}, zoom)
			queryDur := time.Since(start)

			fmt.Printf("%-10d | %-6v | %-12v | %-12v | %-10d\n",
				points, zoom, loadDur.Round(time.Microsecond), queryDur.Round(time.Microsecond), view.Count)
		}
	}
	return nil
}
