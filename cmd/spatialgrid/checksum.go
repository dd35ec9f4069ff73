package main

import (
	"encoding/binary"
	"fmt"
	"hash"
	"math"

	"blainsmith.com/go/seahash"
	"github.com/grailbio/base/cmdutil"
	"v.io/x/lib/cmdline"
)

func newCmdChecksum() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "checksum",
		Short:    "Print an order-independent seahash checksum of a loaded point cloud",
		ArgsName: "points.csv[.gz]",
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("checksum takes one point-cloud pathname, but got %v", argv)
		}
		return runChecksum(argv[0])
	})
	return cmd
}

// runChecksum hashes each point independently and sums the per-point
// hashes, so the result is the same regardless of the order points appear
// in the file.
func runChecksum(path string) error {
	points, err := loadPoints(path)
	if err != nil {
		return err
	}

	h := seahash.New()
	var sum uint64
	var buf [12]byte
	for _, p := range points {
		binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(p.X))
		binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(p.Y))
		binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(p.Z))
		sum += hashPoint(h, buf)
	}
	fmt.Printf("points:    %d\n", len(points))
	fmt.Printf("checksum:  %016x\n", sum)
	return nil
}

func hashPoint(h hash.Hash64, buf [12]byte) uint64 {
	h.Reset()
	h.Write(buf[:])
	return h.Sum64()
}
