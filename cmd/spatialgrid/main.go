// Command spatialgrid is a small CLI around the grid package: it builds an
// index over a flat point cloud and runs radius/kNN queries or a content
// checksum against it. The CLI owns its own file-loading and CSV parsing;
// grid itself never touches a file, consuming only in-memory []grid.Point
// slices and writing into caller-owned output buffers.
package main

import (
	"v.io/x/lib/cmdline"
)

func main() {
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(&cmdline.Command{
		Name:  "spatialgrid",
		Short: "Build and query a 3-D spatial hash grid index",
		Children: []*cmdline.Command{
			newCmdBuild(),
			newCmdQuery(),
			newCmdChecksum(),
		},
	})
}
