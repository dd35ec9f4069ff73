package grid

import (
	"math"
	"sort"

	"github.com/grailbio/base/errors"
	"v.io/x/lib/vlog"

	"github.com/grailbio/spatialgrid/internal/binmap"
)

// binInfo is the half-open interval [offset, offset+length) inside the
// packed payload where a cell's points reside.
type binInfo struct {
	offset int32
	length int32
}

// Index is the immutable result of Build: grid parameters, a sparse map
// from packed cell key to a dense binInfo slot, and the packed payload of
// IndexedPoints. It is read-only for the rest of its lifetime and may be
// queried concurrently by any number of goroutines.
type Index struct {
	minPt, maxPt Point
	cellSize     float32
	invCellSize  float32
	width        int32
	height       int32
	depth        int32
	slabSize     int64

	bins    binmap.Map // packed cell key -> position in binInfos
	binInfo []binInfo  // dense, ascending packed-key order
	payload []indexedPoint

	n int // number of input points
}

const sqrt3 = 1.7320508075688772

// Build constructs an Index over points in one call (a bounding-box pass, a
// bucketing pass, then compaction). If suggestedRadius is positive, the cell
// size is fixed at 2*suggestedRadius (the configuration recommended for
// radius queries up to that radius, see Index.QueryRadius); otherwise the
// cell size is the longest bounding-box extent divided by 32*sqrt(3), so
// roughly 55 cells span the longest axis.
//
// Build is the only place an Index is ever mutated; once it returns, the
// result is safe to query from any number of goroutines without locking.
func Build(points []Point, suggestedRadius float32) (*Index, error) {
	errs := errors.Once{}

	idx := &Index{n: len(points)}
	if len(points) == 0 {
		vlog.Infof("grid: building empty index")
		return idx, nil
	}

	idx.minPt, idx.maxPt = boundingBox(points)
	idx.cellSize = cellSize(idx.minPt, idx.maxPt, suggestedRadius)
	if idx.cellSize <= 0 {
		errs.Set(errors.E("grid: degenerate bounding box produced a zero cell size"))
		return nil, errs.Err()
	}
	idx.invCellSize = 1 / idx.cellSize

	dx := idx.maxPt.X - idx.minPt.X
	dy := idx.maxPt.Y - idx.minPt.Y
	dz := idx.maxPt.Z - idx.minPt.Z
	idx.width = int32(dx/idx.cellSize) + 1
	idx.height = int32(dy/idx.cellSize) + 1
	idx.depth = int32(dz/idx.cellSize) + 1
	idx.slabSize = int64(idx.width) * int64(idx.height)

	scratch := bucketPoints(idx, points)
	compactBuckets(idx, scratch)

	vlog.Infof("grid: built index over %d points, %dx%dx%d cells (%d non-empty), cell_size=%v",
		len(points), idx.width, idx.height, idx.depth, len(idx.binInfo), idx.cellSize)
	return idx, errs.Err()
}

// Close releases the Index's owned allocations. Call it exactly once, when
// the index is no longer needed; there is no use-after-close detection.
func (idx *Index) Close() {
	idx.bins = binmap.Map{}
	idx.binInfo = nil
	idx.payload = nil
}

// Len returns the number of points the index was built over.
func (idx *Index) Len() int { return idx.n }

// CellSize returns the side length of a grid cell.
func (idx *Index) CellSize() float32 { return idx.cellSize }

// Dims returns the per-axis cell counts (width, height, depth).
func (idx *Index) Dims() (width, height, depth int32) {
	return idx.width, idx.height, idx.depth
}

// NonEmptyBins returns the number of cells that contain at least one point.
func (idx *Index) NonEmptyBins() int { return len(idx.binInfo) }

func boundingBox(points []Point) (minPt, maxPt Point) {
	minPt = points[0]
	maxPt = points[0]
	for _, p := range points[1:] {
		if p.X < minPt.X {
			minPt.X = p.X
		}
		if p.Y < minPt.Y {
			minPt.Y = p.Y
		}
		if p.Z < minPt.Z {
			minPt.Z = p.Z
		}
		if p.X > maxPt.X {
			maxPt.X = p.X
		}
		if p.Y > maxPt.Y {
			maxPt.Y = p.Y
		}
		if p.Z > maxPt.Z {
			maxPt.Z = p.Z
		}
	}
	return minPt, maxPt
}

func cellSize(minPt, maxPt Point, suggestedRadius float32) float32 {
	if suggestedRadius > 0 {
		return 2 * suggestedRadius
	}
	dx := float64(maxPt.X - minPt.X)
	dy := float64(maxPt.Y - minPt.Y)
	dz := float64(maxPt.Z - minPt.Z)
	maxDelta := math.Max(dx, math.Max(dy, dz))
	if maxDelta == 0 {
		// A single distinct point (or a stack of coincident ones): any
		// positive cell size works, since there's only ever one occupied
		// cell. Pick 1 so inv_cell_size stays finite.
		return 1
	}
	return float32(maxDelta / (32 * sqrt3))
}

// cellCoordOf returns the cell coordinate of p. For points inside the
// bounding box the result is always in grid bounds; query points outside it
// clamp toward zero, which only slackens the base cell's lower bound, never
// the sweep itself (offsets are floored independently of the base).
func (idx *Index) cellCoordOf(p Point) cellCoord {
	return cellCoord{
		x: int32((p.X - idx.minPt.X) * idx.invCellSize),
		y: int32((p.Y - idx.minPt.Y) * idx.invCellSize),
		z: int32((p.Z - idx.minPt.Z) * idx.invCellSize),
	}
}

// bucket is the builder's per-cell scratch list, freed once compactBuckets
// copies it into the packed payload.
type bucket struct {
	key    uint64
	points []indexedPoint
}

// bucketPoints assigns every input point to its cell, growing a per-cell
// scratch list on first sight of a new key. The binmap here temporarily
// stores an index into the scratch-bucket slice, not yet the final binInfo
// position (that's assigned during compaction, once keys are sorted).
func bucketPoints(idx *Index, points []Point) []bucket {
	var buckets []bucket
	var scratch binmap.Map
	for i, p := range points {
		c := idx.cellCoordOf(p)
		key := c.packedKey(int64(idx.width), idx.slabSize)
		slot, ok := scratch.Get(key)
		if !ok {
			slot = uint64(len(buckets))
			buckets = append(buckets, bucket{key: key})
			scratch.Put(key, slot)
		}
		b := &buckets[slot]
		b.points = append(b.points, indexedPoint{Point: p, idx: int32(i)})
	}
	return buckets
}

// compactBuckets sorts the scratch buckets by ascending packed key, so
// nearby cell keys end up adjacent in the payload and post-build traversal
// is linear, and copies each bucket's points contiguously into the packed
// payload, recording a binInfo and a bins[key] -> binInfo-slot mapping for
// each. This is the only place the final idx.bins/binInfo/payload are
// populated.
func compactBuckets(idx *Index, buckets []bucket) {
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].key < buckets[j].key })

	idx.binInfo = make([]binInfo, len(buckets))
	idx.payload = make([]indexedPoint, 0, idx.n)
	for slot, b := range buckets {
		offset := int32(len(idx.payload))
		idx.payload = append(idx.payload, b.points...)
		idx.binInfo[slot] = binInfo{offset: offset, length: int32(len(b.points))}
		idx.bins.Put(b.key, uint64(slot))
	}
}

// lookupBin returns the binInfo for packed cell key key, or (binInfo{},
// false) if the cell is empty (never bucketed).
func (idx *Index) lookupBin(key uint64) (binInfo, bool) {
	slot, ok := idx.bins.Get(key)
	if !ok {
		return binInfo{}, false
	}
	return idx.binInfo[slot], true
}
