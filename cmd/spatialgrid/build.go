package main

import (
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"v.io/x/lib/cmdline"

	"github.com/grailbio/spatialgrid/grid"
)

func newCmdBuild() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "build",
		Short:    "Build a spatial hash grid index over a point cloud and report its parameters",
		ArgsName: "points.csv[.gz]",
	}
	radius := cmd.Flags.Float64("radius", 0, "Suggested build radius; cell_size = 2*radius. 0 derives cell_size from the bounding box.")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("build takes one point-cloud pathname, but got %v", argv)
		}
		return runBuild(argv[0], float32(*radius))
	})
	return cmd
}

func runBuild(path string, radius float32) error {
	points, err := loadPoints(path)
	if err != nil {
		return err
	}
	idx, err := grid.Build(points, radius)
	if err != nil {
		return fmt.Errorf("spatialgrid: build failed: %w", err)
	}
	defer idx.Close()

	fmt.Printf("points:      %d\n", idx.Len())
	fmt.Printf("cell_size:   %v\n", idx.CellSize())
	w, h, d := idx.Dims()
	fmt.Printf("dimensions:  %d x %d x %d (%d cells)\n", w, h, d, w*h*d)
	fmt.Printf("non-empty:   %d\n", idx.NonEmptyBins())
	return nil
}
