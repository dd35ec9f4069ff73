package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEmptyIndex(t *testing.T) {
	idx, err := Build(nil, 1.0)
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())

	dists := make([]float32, 4)
	indices := make([]int32, 4)
	assert.Equal(t, 0, idx.QueryRadius(Point{}, 1, dists, indices, true))
	assert.Equal(t, 0, idx.QueryKNN(Point{}, 4, dists, indices, true))
}

func TestBuildSinglePoint(t *testing.T) {
	idx, err := Build([]Point{{5, 5, 5}}, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())
	assert.Equal(t, int32(1), idx.width)
	assert.Equal(t, int32(1), idx.height)
	assert.Equal(t, int32(1), idx.depth)
}

func TestBuildCellSizeFromRadius(t *testing.T) {
	points := []Point{{0, 0, 0}, {10, 10, 10}}
	idx, err := Build(points, 1.5)
	require.NoError(t, err)
	assert.Equal(t, float32(3.0), idx.cellSize)
}

func TestBuildInvariants(t *testing.T) {
	points := gridPoints(10, 1.0)
	idx, err := Build(points, 0.5)
	require.NoError(t, err)

	// Bin lengths sum to the input count.
	total := 0
	for _, b := range idx.binInfo {
		total += int(b.length)
	}
	assert.Equal(t, len(points), total)

	// Every point in a bin hashes to that bin's cell key, and binInfo
	// entries occur in ascending packed-key order.
	var lastKey uint64
	haveLast := false
	for slot, b := range idx.binInfo {
		for _, ip := range idx.payload[b.offset : b.offset+b.length] {
			c := idx.cellCoordOf(ip.Point)
			key := c.packedKey(int64(idx.width), idx.slabSize)
			gotSlot, ok := idx.bins.Get(key)
			require.True(t, ok)
			assert.Equal(t, slot, int(gotSlot))
		}
		key := binKeyOf(t, idx, slot)
		if haveLast {
			assert.Less(t, lastKey, key)
		}
		lastKey = key
		haveLast = true
	}

	// Every input point's cell coordinate lies in grid bounds.
	for _, p := range points {
		c := idx.cellCoordOf(p)
		assert.True(t, c.inBounds(idx.width, idx.height, idx.depth))
	}
}

// binKeyOf recovers the packed key stored for binInfo slot by scanning the
// bin map (tests only; production code never needs this inverse lookup).
func binKeyOf(t *testing.T, idx *Index, slot int) uint64 {
	t.Helper()
	for _, ip := range idx.payload {
		c := idx.cellCoordOf(ip.Point)
		key := c.packedKey(int64(idx.width), idx.slabSize)
		gotSlot, ok := idx.bins.Get(key)
		if ok && int(gotSlot) == slot {
			return key
		}
	}
	t.Fatalf("no key found for slot %d", slot)
	return 0
}

// gridPoints returns a uniform lattice of perAxis^3 points with the given
// spacing, used by several tests as a deterministic, densely-packed point
// cloud.
func gridPoints(perAxis int, spacing float32) []Point {
	points := make([]Point, 0, perAxis*perAxis*perAxis)
	for z := 0; z < perAxis; z++ {
		for y := 0; y < perAxis; y++ {
			for x := 0; x < perAxis; x++ {
				points = append(points, Point{
					X: float32(x) * spacing,
					Y: float32(y) * spacing,
					Z: float32(z) * spacing,
				})
			}
		}
	}
	return points
}
