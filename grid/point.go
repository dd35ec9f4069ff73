package grid

// Point is a 3-D coordinate in single precision, matching the caller's
// input point format.
type Point struct {
	X, Y, Z float32
}

// Sub returns p - q componentwise.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y, p.Z - q.Z}
}

// DistSq returns the squared Euclidean distance between p and q.
func (p Point) DistSq(q Point) float32 {
	d := p.Sub(q)
	return d.X*d.X + d.Y*d.Y + d.Z*d.Z
}

// indexedPoint augments a Point with the original input index. After Build,
// this is the only representation of grid contents kept; the caller's input
// slice need not outlive the Index.
type indexedPoint struct {
	Point
	idx int32
}

// cellCoord is a non-negative 3-D cell coordinate.
type cellCoord struct {
	x, y, z int32
}

// packedKey returns the row-major 64-bit encoding of c, using slabSize =
// width*height as the per-layer stride. Two cell coordinates produce the
// same key iff they are equal, given consistent width/slabSize.
func (c cellCoord) packedKey(width, slabSize int64) uint64 {
	return uint64(int64(c.z)*slabSize + int64(c.y)*width + int64(c.x))
}

// inBounds reports whether c lies within [0,width)x[0,height)x[0,depth).
func (c cellCoord) inBounds(width, height, depth int32) bool {
	return c.x >= 0 && c.x < width &&
		c.y >= 0 && c.y < height &&
		c.z >= 0 && c.z < depth
}
