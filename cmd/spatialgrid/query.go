package main

import (
	"fmt"
	"time"

	"github.com/grailbio/base/cmdutil"
	"v.io/x/lib/cmdline"

	"github.com/grailbio/spatialgrid/grid"
)

func newCmdQuery() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "query",
		Short:    "Build an index and run a batched radius or kNN query over a probe file",
		ArgsName: "points.csv[.gz] probes.csv[.gz]",
	}
	buildRadius := cmd.Flags.Float64("build-radius", 0, "Suggested build radius (0 derives it from the bounding box)")
	radius := cmd.Flags.Float64("radius", 0, "Radius query radius; mutually exclusive with -knn")
	k := cmd.Flags.Int("knn", 0, "kNN neighbor count; mutually exclusive with -radius")
	maxN := cmd.Flags.Int("max-n", 64, "Per-query output capacity for radius queries")
	workers := cmd.Flags.Int("workers", 0, "Worker goroutines; 0 uses GOMAXPROCS")
	sortResults := cmd.Flags.Bool("sort", true, "Sort each query's results by ascending distance")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("query takes a point-cloud path and a probe path, but got %v", argv)
		}
		if (*radius > 0) == (*k > 0) {
			return fmt.Errorf("query requires exactly one of -radius or -knn")
		}
		return runQuery(argv[0], argv[1], float32(*buildRadius), float32(*radius), *k, *maxN, *workers, *sortResults)
	})
	return cmd
}

func runQuery(pointsPath, probesPath string, buildRadius, radius float32, k, maxN, workers int, sortResults bool) error {
	points, err := loadPoints(pointsPath)
	if err != nil {
		return err
	}
	probes, err := loadPoints(probesPath)
	if err != nil {
		return err
	}

	idx, err := grid.Build(points, buildRadius)
	if err != nil {
		return fmt.Errorf("spatialgrid: build failed: %w", err)
	}
	defer idx.Close()

	stride := maxN
	if k > 0 {
		stride = k
	}
	d := &grid.SearchDescriptor{
		QueryPoints: probes,
		DistsSq:     make([]float32, len(probes)*stride),
		Indices:     make([]int32, len(probes)*stride),
		NNeighbors:  make([]int, len(probes)),
		Stride:      stride,
		Radius:      radius,
		K:           k,
		Sort:        sortResults,
	}

	start := time.Now()
	var total int
	if k > 0 {
		total, err = grid.BatchQueryKNN(idx, d, workers)
	} else {
		total, err = grid.BatchQueryRadius(idx, d, workers)
	}
	elapsed := time.Since(start)
	if err != nil {
		return err
	}

	fmt.Printf("probes:       %d\n", len(probes))
	fmt.Printf("total hits:   %d\n", total)
	fmt.Printf("elapsed:      %v\n", elapsed)
	return nil
}
