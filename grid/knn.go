package grid

import "github.com/grailbio/base/log"

// QueryKNN collects the k nearest neighbors of q into distsSq/indices
// (parallel arrays of length k), returning min(k, idx.Len()).
//
// distsSq and indices must be non-nil, equal-length, and k must be
// positive; violating this is a programmer error and QueryKNN panics (see
// QueryRadius's doc comment for the same contract-violation policy).
//
// Shell-termination rule: a simpler heuristic (stop one shell after k
// neighbors are collected) can under-collect a neighbor sitting just past a
// shell boundary on a diagonal from the base cell when the cell size is
// much larger than the true k-th neighbor distance. QueryKNN instead keeps
// expanding shells until the next shell's minimum possible lower-bound
// distance exceeds the current worst retained distance, which is tight and
// only marginally more work in practice.
func (idx *Index) QueryKNN(q Point, k int, distsSq []float32, indices []int32, sortResult bool) int {
	if len(distsSq) == 0 || len(distsSq) != len(indices) {
		log.Panicf("grid: QueryKNN requires equal-length, non-empty output buffers, got %d/%d", len(distsSq), len(indices))
	}
	if k <= 0 {
		log.Panicf("grid: QueryKNN requires a positive k, got %d", k)
	}
	if idx.n == 0 {
		return 0
	}

	qNorm := q.Sub(idx.minPt)
	base := idx.cellCoordOf(q)
	storage := newBoundedSet(distsSq, indices, k)

	// Unlike the radius sweep, a shell's surface grows quadratically with
	// the layer, so the candidate buffer grows on demand instead of being
	// capped; the backing array is reused across layers.
	var shellScratch [cellSweepCapacity]cellCandidate
	shell := shellScratch[:0]
	for layer := int32(0); ; layer++ {
		shell = enumerateShell(idx, qNorm, base, layer, &storage, shell[:0])
		for _, cand := range shell {
			bin, ok := idx.lookupBin(cand.key)
			if !ok {
				continue
			}
			for _, ip := range idx.payload[bin.offset : bin.offset+bin.length] {
				storage.push(ip.Point.DistSq(q), ip.idx)
			}
		}
		if storage.Len() >= k && shellExhausted(idx, qNorm, base, layer, &storage) {
			break
		}
		if layer > idx.width+idx.height+idx.depth {
			// Every cell in the grid has now been considered; nothing more
			// to find even if storage never filled (e.g. k > idx.Len()).
			break
		}
	}

	n := storage.Len()
	if sortResult {
		sortByDistance(distsSq[:n], indices[:n])
	}
	return n
}

// enumerateShell appends to buf every cell on the surface of the cube
// [bx-layer,bx+layer] x [by-layer,by+layer] x [bz-layer,bz+layer] (or just
// the single base cell when layer == 0) and returns the extended slice.
// Cells whose lower bound already exceeds the current worst retained
// distance, once storage is full, are dropped without being visited.
func enumerateShell(idx *Index, qNorm Point, base cellCoord, layer int32, storage *boundedSet, buf []cellCandidate) []cellCandidate {
	consider := func(ox, oy, oz int32) []cellCandidate {
		c := cellCoord{base.x + ox, base.y + oy, base.z + oz}
		if !c.inBounds(idx.width, idx.height, idx.depth) {
			return buf
		}
		lb := lowerBoundDistSq(qNorm, c, ox, oy, oz, idx.cellSize)
		if storage.Full() && lb > storage.Worst() {
			return buf
		}
		return append(buf, cellCandidate{
			key:        c.packedKey(int64(idx.width), idx.slabSize),
			lowerBound: lb,
		})
	}

	if layer == 0 {
		return consider(0, 0, 0)
	}

	for oy := -layer; oy <= layer; oy++ {
		for oz := -layer; oz <= layer; oz++ {
			if abs32(oy) != layer && abs32(oz) != layer {
				// Interior of the face in (oy,oz): only the two x-faces of
				// the shell (ox = +-layer) belong to this layer's surface.
				buf = consider(-layer, oy, oz)
				buf = consider(layer, oy, oz)
				continue
			}
			// On an edge or corner of the (oy,oz) square: every ox in
			// [-layer,layer] is part of the surface.
			for ox := -layer; ox <= layer; ox++ {
				buf = consider(ox, oy, oz)
			}
		}
	}
	return buf
}

// shellExhausted reports whether every cell in the next shell (layer+1) has
// a lower-bound distance exceeding storage's current worst retained
// distance, meaning no cell beyond this point can hold a closer neighbor.
func shellExhausted(idx *Index, qNorm Point, base cellCoord, layer int32, storage *boundedSet) bool {
	next := layer + 1
	worst := storage.Worst()
	minLB := float32(-1)
	scan := func(ox, oy, oz int32) {
		c := cellCoord{base.x + ox, base.y + oy, base.z + oz}
		if !c.inBounds(idx.width, idx.height, idx.depth) {
			return
		}
		lb := lowerBoundDistSq(qNorm, c, ox, oy, oz, idx.cellSize)
		if minLB < 0 || lb < minLB {
			minLB = lb
		}
	}
	for oy := -next; oy <= next; oy++ {
		for oz := -next; oz <= next; oz++ {
			if abs32(oy) != next && abs32(oz) != next {
				scan(-next, oy, oz)
				scan(next, oy, oz)
				continue
			}
			for ox := -next; ox <= next; ox++ {
				scan(ox, oy, oz)
			}
		}
	}
	// minLB < 0 means the next shell is entirely out of grid bounds: there's
	// nothing left to find, so we're trivially exhausted.
	return minLB < 0 || minLB > worst
}

func abs32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}
