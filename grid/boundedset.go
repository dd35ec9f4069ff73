package grid

// boundedSet is a fixed-capacity collector of (distSq, idx) pairs that keeps
// the cap smallest-distance entries pushed so far, evicting the current
// worst entry in O(k) when a better candidate arrives. It mirrors a
// bounded-k "keep the best" accumulator: push is O(1) amortized while
// storage has room, and O(len) only on the replace-and-rescan path.
//
// The zero value is not usable; construct with newBoundedSet. Results are
// unordered on exit: callers that need a final ordering call sortByDistance
// on the same dists/indices slices afterward.
type boundedSet struct {
	dists   []float32
	indices []int32
	cap     int
	len     int
	maxIdx  int // position of the current worst entry, -1 when empty
}

// newBoundedSet returns a boundedSet backed by the caller-owned dists and
// indices slices, both of which must have length >= cap.
func newBoundedSet(dists []float32, indices []int32, cap int) boundedSet {
	return boundedSet{
		dists:   dists,
		indices: indices,
		cap:     cap,
		maxIdx:  -1,
	}
}

// Len returns the number of entries currently held.
func (b *boundedSet) Len() int { return b.len }

// Full reports whether the set has reached capacity.
func (b *boundedSet) Full() bool { return b.len == b.cap }

// Worst returns the squared distance of the current worst retained entry.
// Only valid when Len() > 0.
func (b *boundedSet) Worst() float32 { return b.dists[b.maxIdx] }

// push offers (d, i) to the set. It is kept if the set has room, or if it is
// strictly closer than the current worst retained entry; otherwise it is
// dropped. After any sequence of pushes, the stored set equals the
// min(cap, total pushed) smallest-distance entries seen so far.
func (b *boundedSet) push(d float32, i int32) {
	if b.len < b.cap {
		b.dists[b.len] = d
		b.indices[b.len] = i
		if b.maxIdx == -1 || d > b.dists[b.maxIdx] {
			b.maxIdx = b.len
		}
		b.len++
		return
	}
	if d >= b.dists[b.maxIdx] {
		return
	}
	b.dists[b.maxIdx] = d
	b.indices[b.maxIdx] = i
	b.rescanWorst()
}

// rescanWorst re-establishes maxIdx by a linear scan over [0,len). Called
// only on the replace path, so this does not affect the amortized cost of
// filling the set.
func (b *boundedSet) rescanWorst() {
	worst := 0
	for i := 1; i < b.len; i++ {
		if b.dists[i] > b.dists[worst] {
			worst = i
		}
	}
	b.maxIdx = worst
}
