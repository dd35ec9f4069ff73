package grid

import (
	"runtime"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"v.io/x/lib/vlog"
)

// SearchDescriptor describes a batch of query points and the caller-owned
// output buffers a batched driver writes into. Exactly one of Radius or K is
// meaningful, selected by which batch function is called.
type SearchDescriptor struct {
	// QueryPoints holds the probe points, one per query.
	QueryPoints []Point

	// DistsSq and Indices are parallel output arrays of length
	// len(QueryPoints) * Stride; query q writes only to
	// [q*Stride : (q+1)*Stride).
	DistsSq []float32
	Indices []int32

	// NNeighbors, if non-nil, receives the per-query neighbor count;
	// len(NNeighbors) must equal len(QueryPoints).
	NNeighbors []int

	// Stride is the per-query output width: max_n for radius queries, k for
	// kNN queries.
	Stride int

	// Radius is the search radius for BatchQueryRadius.
	Radius float32
	// K is the neighbor count for BatchQueryKNN.
	K int

	// Sort requests ascending-distance output per query.
	Sort bool
}

// validate checks the shared descriptor contract: nil buffers, zero
// stride, and zero query count are programmer errors, not runtime
// conditions.
func (d *SearchDescriptor) validate() {
	if len(d.QueryPoints) == 0 {
		log.Panicf("grid: SearchDescriptor has no query points")
	}
	if d.Stride <= 0 {
		log.Panicf("grid: SearchDescriptor.Stride must be positive, got %d", d.Stride)
	}
	want := len(d.QueryPoints) * d.Stride
	if len(d.DistsSq) != want || len(d.Indices) != want {
		log.Panicf("grid: SearchDescriptor output buffers must have length %d, got %d/%d",
			want, len(d.DistsSq), len(d.Indices))
	}
	if d.NNeighbors != nil && len(d.NNeighbors) != len(d.QueryPoints) {
		log.Panicf("grid: SearchDescriptor.NNeighbors must have length %d, got %d",
			len(d.QueryPoints), len(d.NNeighbors))
	}
}

// resolveWorkers returns workers if positive, else runtime.GOMAXPROCS(0),
// one worker per hardware thread.
func resolveWorkers(workers int) int {
	if workers > 0 {
		return workers
	}
	return runtime.GOMAXPROCS(0)
}

// BatchQueryRadius runs a radius query for every point in d.QueryPoints,
// partitioning the batch across workers goroutines. Each worker owns a
// disjoint contiguous range of queries and writes only to that range's
// output slots, so no synchronization is needed across workers. The index
// is read-only for the duration of the call and may be queried concurrently
// by other callers at the same time.
//
// Returns the sum of per-query neighbor counts.
func BatchQueryRadius(idx *Index, d *SearchDescriptor, workers int) (int, error) {
	d.validate()
	if d.Radius <= 0 {
		log.Panicf("grid: BatchQueryRadius requires a positive radius, got %v", d.Radius)
	}
	workers = resolveWorkers(workers)
	total := make([]int, len(d.QueryPoints))

	vlog.Infof("grid: batch radius query, %d probes, r=%v, stride=%d, workers=%d",
		len(d.QueryPoints), d.Radius, d.Stride, workers)
	err := traverse.Each(workers, func(w int) error {
		lo, hi := shardRange(w, workers, len(d.QueryPoints))
		for q := lo; q < hi; q++ {
			start, end := q*d.Stride, (q+1)*d.Stride
			n := idx.QueryRadius(d.QueryPoints[q], d.Radius, d.DistsSq[start:end], d.Indices[start:end], d.Sort)
			total[q] = n
			if d.NNeighbors != nil {
				d.NNeighbors[q] = n
			}
		}
		return nil
	})
	return sumInts(total), err
}

// BatchQueryKNN is BatchQueryRadius's counterpart for k-nearest-neighbor
// queries: d.Stride must equal d.K.
func BatchQueryKNN(idx *Index, d *SearchDescriptor, workers int) (int, error) {
	d.validate()
	if d.K <= 0 {
		log.Panicf("grid: BatchQueryKNN requires a positive k, got %d", d.K)
	}
	if d.Stride != d.K {
		log.Panicf("grid: BatchQueryKNN requires Stride == K, got stride=%d k=%d", d.Stride, d.K)
	}
	workers = resolveWorkers(workers)
	total := make([]int, len(d.QueryPoints))

	vlog.Infof("grid: batch kNN query, %d probes, k=%d, workers=%d", len(d.QueryPoints), d.K, workers)
	err := traverse.Each(workers, func(w int) error {
		lo, hi := shardRange(w, workers, len(d.QueryPoints))
		for q := lo; q < hi; q++ {
			start, end := q*d.Stride, (q+1)*d.Stride
			n := idx.QueryKNN(d.QueryPoints[q], d.K, d.DistsSq[start:end], d.Indices[start:end], d.Sort)
			total[q] = n
			if d.NNeighbors != nil {
				d.NNeighbors[q] = n
			}
		}
		return nil
	})
	return sumInts(total), err
}

// shardRange returns worker w's contiguous [lo,hi) range of n items under
// ceil(n/workers)-per-worker partitioning.
func shardRange(w, workers, n int) (lo, hi int) {
	chunk := (n + workers - 1) / workers
	lo = w * chunk
	if lo > n {
		lo = n
	}
	hi = lo + chunk
	if hi > n {
		hi = n
	}
	return lo, hi
}

func sumInts(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}
