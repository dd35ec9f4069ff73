package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundedSetKeepsSmallest(t *testing.T) {
	dists := make([]float32, 3)
	indices := make([]int32, 3)
	b := newBoundedSet(dists, indices, 3)

	for i, d := range []float32{5, 1, 9, 2, 0, 7} {
		b.push(d, int32(i))
	}
	assert.Equal(t, 3, b.Len())

	sortByDistance(dists[:b.Len()], indices[:b.Len()])
	assert.Equal(t, []float32{0, 1, 2}, dists[:b.Len()])
	assert.Equal(t, []int32{4, 1, 3}, indices[:b.Len()])
}

func TestBoundedSetUnderCapacity(t *testing.T) {
	dists := make([]float32, 5)
	indices := make([]int32, 5)
	b := newBoundedSet(dists, indices, 5)
	b.push(3, 0)
	b.push(1, 1)
	assert.Equal(t, 2, b.Len())
	assert.False(t, b.Full())
}

func TestBoundedSetTieBreakDoesNotCrash(t *testing.T) {
	dists := make([]float32, 2)
	indices := make([]int32, 2)
	b := newBoundedSet(dists, indices, 2)
	b.push(1, 0)
	b.push(1, 1)
	b.push(1, 2)
	assert.Equal(t, 2, b.Len())
}
