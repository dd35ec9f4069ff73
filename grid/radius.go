package grid

import "github.com/grailbio/base/log"

// cellSweepCapacity bounds the per-query scratch buffer of candidate cells
// for QueryRadius. It comfortably covers the 27-cell sweep a build with
// suggestedRadius == query radius produces, with headroom for callers who
// build and query at different radii. A sweep that would overflow this
// buffer is a contract violation (see QueryRadius's doc comment).
const cellSweepCapacity = 128

type cellCandidate struct {
	key        uint64
	lowerBound float32
}

// QueryRadius collects every point within r of q into the parallel output
// arrays distsSq/indices, keeping at most len(distsSq) nearest hits, and
// returns the number of points found.
//
// distsSq and indices must be non-nil and of equal, positive length; r must
// be positive. Violating either is a programmer error and QueryRadius
// panics.
//
// QueryRadius is safe to call concurrently with any number of other queries
// against the same Index; see BatchQueryRadius for a driver that does this
// across a batch of query points.
func (idx *Index) QueryRadius(q Point, r float32, distsSq []float32, indices []int32, sort bool) int {
	if len(distsSq) == 0 || len(distsSq) != len(indices) {
		log.Panicf("grid: QueryRadius requires equal-length, non-empty output buffers, got %d/%d", len(distsSq), len(indices))
	}
	if r <= 0 {
		log.Panicf("grid: QueryRadius requires a positive radius, got %v", r)
	}
	if idx.n == 0 {
		return 0
	}

	qNorm := q.Sub(idx.minPt)
	base := idx.cellCoordOf(q)

	onx := floorDiv(qNorm.X-r, idx.invCellSize) - base.x
	opx := floorDiv(qNorm.X+r, idx.invCellSize) - base.x
	ony := floorDiv(qNorm.Y-r, idx.invCellSize) - base.y
	opy := floorDiv(qNorm.Y+r, idx.invCellSize) - base.y
	onz := floorDiv(qNorm.Z-r, idx.invCellSize) - base.z
	opz := floorDiv(qNorm.Z+r, idx.invCellSize) - base.z

	var scratch [cellSweepCapacity]cellCandidate
	n := 0
	for oz := onz; oz <= opz; oz++ {
		for oy := ony; oy <= opy; oy++ {
			for ox := onx; ox <= opx; ox++ {
				c := cellCoord{base.x + ox, base.y + oy, base.z + oz}
				if !c.inBounds(idx.width, idx.height, idx.depth) {
					continue
				}
				if n == cellSweepCapacity {
					log.Panicf("grid: radius query sweep exceeded %d cells; query radius is too large relative to the build radius", cellSweepCapacity)
				}
				scratch[n] = cellCandidate{
					key:        c.packedKey(int64(idx.width), idx.slabSize),
					lowerBound: lowerBoundDistSq(qNorm, c, ox, oy, oz, idx.cellSize),
				}
				n++
			}
		}
	}
	cells := scratch[:n]
	sortCellsByLowerBound(cells)

	rSq := r * r
	storage := newBoundedSet(distsSq, indices, len(distsSq))
	for ci, cand := range cells {
		bin, ok := idx.lookupBin(cand.key)
		if ok {
			for _, ip := range idx.payload[bin.offset : bin.offset+bin.length] {
				d := ip.Point.DistSq(q)
				if d < rSq {
					storage.push(d, ip.idx)
				}
			}
		}
		if storage.Full() && ci+1 < len(cells) && cells[ci+1].lowerBound >= storage.Worst() {
			break
		}
	}

	n = storage.Len()
	if sort {
		sortByDistance(distsSq[:n], indices[:n])
	}
	return n
}

// floorDiv returns floor(num * invDen), i.e. floor(num/den) given den's
// reciprocal invDen, as an int32 cell-axis offset.
func floorDiv(num, invDen float32) int32 {
	v := num * invDen
	i := int32(v)
	if v < float32(i) {
		i--
	}
	return i
}

// lowerBoundDistSq returns the minimum possible squared distance from qNorm
// (already q - minPt) to any point inside cell c. The base-relative offsets
// ox/oy/oz only select which face of the cell faces the query on each axis;
// c is the absolute cell coordinate.
func lowerBoundDistSq(qNorm Point, c cellCoord, ox, oy, oz int32, cellSize float32) float32 {
	dx := axisLowerBound(qNorm.X, c.x, ox, cellSize)
	dy := axisLowerBound(qNorm.Y, c.y, oy, cellSize)
	dz := axisLowerBound(qNorm.Z, c.z, oz, cellSize)
	return dx*dx + dy*dy + dz*dz
}

// axisLowerBound returns the per-axis contribution to lowerBoundDistSq: 0
// when the cell is the base cell along this axis (offset 0, the query point
// itself may be inside it), the distance to the cell's near face otherwise.
func axisLowerBound(qAxis float32, cAxis, offset int32, cellSize float32) float32 {
	switch {
	case offset == 0:
		return 0
	case offset < 0:
		return qAxis - float32(cAxis+1)*cellSize
	default:
		return float32(cAxis)*cellSize - qAxis
	}
}

// sortCellsByLowerBound orders cells ascending by lower-bound distance so
// the visitation loop sees the most promising cells first. len(cells) is
// bounded by cellSweepCapacity, so all scratch stays on the stack.
func sortCellsByLowerBound(cells []cellCandidate) {
	var dists [cellSweepCapacity]float32
	var order [cellSweepCapacity]int32
	var orig [cellSweepCapacity]cellCandidate
	n := len(cells)
	for i, c := range cells {
		dists[i] = c.lowerBound
		order[i] = int32(i)
		orig[i] = c
	}
	sortByDistance(dists[:n], order[:n])
	for i, o := range order[:n] {
		cells[i] = orig[o]
	}
}
