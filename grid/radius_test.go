package grid

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryRadiusSmallCloud(t *testing.T) {
	points := []Point{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {10, 10, 10},
	}
	idx, err := Build(points, 1.0)
	require.NoError(t, err)

	dists := make([]float32, 5)
	indices := make([]int32, 5)
	n := idx.QueryRadius(Point{0, 0, 0}, 1.1, dists, indices, true)

	require.Equal(t, 4, n)
	assert.Equal(t, []float32{0, 1, 1, 1}, dists[:n])
	gotIndices := append([]int32(nil), indices[:n]...)
	sort.Slice(gotIndices, func(i, j int) bool { return gotIndices[i] < gotIndices[j] })
	assert.Equal(t, []int32{0, 1, 2, 3}, gotIndices)
}

// A query far outside the bounding box returns zero results and must not
// touch out-of-bounds cells.
func TestQueryRadiusOutsideBoundingBox(t *testing.T) {
	points := []Point{{0, 0, 0}, {1, 1, 1}}
	idx, err := Build(points, 0.5)
	require.NoError(t, err)

	dists := make([]float32, 4)
	indices := make([]int32, 4)
	n := idx.QueryRadius(Point{1000, 1000, 1000}, 0.1, dists, indices, true)
	assert.Equal(t, 0, n)
}

// Completeness: for an output capacity >= the cloud size, radius search
// returns exactly the brute-force within-radius set.
func TestQueryRadiusCompletenessAgainstBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	points := make([]Point, 2000)
	for i := range points {
		points[i] = Point{rng.Float32() * 10, rng.Float32() * 10, rng.Float32() * 10}
	}
	idx, err := Build(points, 0.5)
	require.NoError(t, err)

	q := Point{5, 5, 5}
	const r = 1.3
	want := bruteForceRadius(points, q, r)

	dists := make([]float32, len(points))
	indices := make([]int32, len(points))
	n := idx.QueryRadius(q, r, dists, indices, true)

	require.Equal(t, len(want), n)
	for j := 0; j < n; j++ {
		assert.InDelta(t, points[indices[j]].DistSq(q), dists[j], 1e-4)
	}
	assert.ElementsMatch(t, want, indices[:n])
}

// When build radius == query radius, the cell sweep never exceeds 27 cells
// (3x3x3).
func TestQueryRadiusBuildRadiusCap(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	points := make([]Point, 500)
	for i := range points {
		points[i] = Point{rng.Float32() * 20, rng.Float32() * 20, rng.Float32() * 20}
	}
	const r = 0.75
	idx, err := Build(points, r)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		q := points[rng.Intn(len(points))]
		n := countRadiusSweepCells(idx, q, r)
		assert.LessOrEqual(t, n, 27)
	}
}

// countRadiusSweepCells replicates QueryRadius's sweep-enumeration step
// without running a full query, to check the sweep bound directly.
func countRadiusSweepCells(idx *Index, q Point, r float32) int {
	qNorm := q.Sub(idx.minPt)
	base := idx.cellCoordOf(q)
	onx := floorDiv(qNorm.X-r, idx.invCellSize) - base.x
	opx := floorDiv(qNorm.X+r, idx.invCellSize) - base.x
	ony := floorDiv(qNorm.Y-r, idx.invCellSize) - base.y
	opy := floorDiv(qNorm.Y+r, idx.invCellSize) - base.y
	onz := floorDiv(qNorm.Z-r, idx.invCellSize) - base.z
	opz := floorDiv(qNorm.Z+r, idx.invCellSize) - base.z
	n := 0
	for oz := onz; oz <= opz; oz++ {
		for oy := ony; oy <= opy; oy++ {
			for ox := onx; ox <= opx; ox++ {
				c := cellCoord{base.x + ox, base.y + oy, base.z + oz}
				if c.inBounds(idx.width, idx.height, idx.depth) {
					n++
				}
			}
		}
	}
	return n
}

func TestQueryRadiusPanicsOnContractViolation(t *testing.T) {
	idx, err := Build([]Point{{0, 0, 0}}, 1)
	require.NoError(t, err)

	assert.Panics(t, func() {
		idx.QueryRadius(Point{}, 1, nil, nil, false)
	})
	assert.Panics(t, func() {
		idx.QueryRadius(Point{}, 0, make([]float32, 1), make([]int32, 1), false)
	})
}

func bruteForceRadius(points []Point, q Point, r float32) []int32 {
	rSq := r * r
	var want []int32
	for i, p := range points {
		if p.DistSq(q) < rSq {
			want = append(want, int32(i))
		}
	}
	return want
}
