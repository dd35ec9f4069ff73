package grid

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortByDistanceSmall(t *testing.T) {
	dists := []float32{3, 1, 2}
	indices := []int32{30, 10, 20}
	sortByDistance(dists, indices)
	assert.Equal(t, []float32{1, 2, 3}, dists)
	assert.Equal(t, []int32{10, 20, 30}, indices)
}

func TestSortByDistanceEmptyAndSingleton(t *testing.T) {
	sortByDistance(nil, nil)
	d := []float32{7}
	i := []int32{70}
	sortByDistance(d, i)
	assert.Equal(t, []float32{7}, d)
	assert.Equal(t, []int32{70}, i)
}

func TestSortByDistanceRandomLarge(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	const n = 5000
	dists := make([]float32, n)
	indices := make([]int32, n)
	original := make(map[int32]float32, n)
	for i := range dists {
		dists[i] = rng.Float32() * 1000
		indices[i] = int32(i)
		original[int32(i)] = dists[i]
	}
	wantOrder := append([]float32(nil), dists...)
	sort.Slice(wantOrder, func(i, j int) bool { return wantOrder[i] < wantOrder[j] })

	sortByDistance(dists, indices)

	assert.True(t, sort.SliceIsSorted(dists, func(i, j int) bool { return dists[i] < dists[j] }))
	assert.Equal(t, wantOrder, dists)

	// Every (dist, index) pair must still correspond to the same original
	// entry: the distance at output position j equals the distance the
	// original point at indices[j] was assigned.
	for j, idx := range indices {
		assert.Equal(t, original[idx], dists[j])
	}
}
