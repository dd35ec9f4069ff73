package grid

// sortByDistance orders dists and indices in lockstep, ascending by dists,
// using a hybrid quicksort (median-of-three pivot, tail recursion on the
// larger partition, bottoming out at small subranges) followed by a single
// insertion-sort pass over the whole range to clean up the near-sorted
// residue. It is deliberately hand-rolled rather than sort.Interface-based:
// this runs on the hot path of every query, once per candidate cell list and
// again on the final output, and boxing (distSq, idx) pairs behind an
// interface defeats the point of keeping them as flat float32/int32 slices.
//
// The same routine orders (a) a query's final result arrays by distance and
// (b) a candidate cell list by lower-bound distance before visitation.
func sortByDistance(dists []float32, indices []int32) {
	quicksortByDistance(dists, indices, 0, len(dists)-1)
	insertionSortByDistance(dists, indices)
}

// insertionSortCutoff is the subrange size at or below which quicksort stops
// recursing and leaves cleanup to the final insertion-sort pass.
const insertionSortCutoff = 12

func quicksortByDistance(dists []float32, indices []int32, lo, hi int) {
	for hi-lo+1 > insertionSortCutoff {
		p := partitionByDistance(dists, indices, lo, hi)
		// Recurse into the smaller partition; the tail call on the larger
		// one is this loop.
		if p-lo < hi-p {
			quicksortByDistance(dists, indices, lo, p-1)
			lo = p + 1
		} else {
			quicksortByDistance(dists, indices, p+1, hi)
			hi = p - 1
		}
	}
}

// partitionByDistance partitions dists[lo..hi]/indices[lo..hi] around a
// median-of-three pivot and returns the pivot's final index.
func partitionByDistance(dists []float32, indices []int32, lo, hi int) int {
	mid := lo + (hi-lo)/2
	medianOfThree(dists, indices, lo, mid, hi)
	swapDist(dists, indices, mid, hi-1)
	pivot := dists[hi-1]

	i := lo
	j := hi - 1
	for {
		for i++; dists[i] < pivot; i++ {
		}
		for j--; dists[j] > pivot; j-- {
		}
		if i >= j {
			break
		}
		swapDist(dists, indices, i, j)
	}
	swapDist(dists, indices, i, hi-1)
	return i
}

// medianOfThree orders dists[lo], dists[mid], dists[hi] so that the median
// of the three ends up at mid; the caller then moves it to hi-1 as the
// pivot.
func medianOfThree(dists []float32, indices []int32, lo, mid, hi int) {
	if dists[mid] < dists[lo] {
		swapDist(dists, indices, mid, lo)
	}
	if dists[hi] < dists[lo] {
		swapDist(dists, indices, hi, lo)
	}
	if dists[hi] < dists[mid] {
		swapDist(dists, indices, hi, mid)
	}
}

func insertionSortByDistance(dists []float32, indices []int32) {
	for i := 1; i < len(dists); i++ {
		d, idx := dists[i], indices[i]
		j := i - 1
		for j >= 0 && dists[j] > d {
			dists[j+1] = dists[j]
			indices[j+1] = indices[j]
			j--
		}
		dists[j+1] = d
		indices[j+1] = idx
	}
}

func swapDist(dists []float32, indices []int32, i, j int) {
	dists[i], dists[j] = dists[j], dists[i]
	indices[i], indices[j] = indices[j], indices[i]
}
