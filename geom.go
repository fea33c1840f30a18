package sprite

// Point is a 2D position or texture coordinate.
// Vertex data is float32 end to end to match GPU vertex streams.
type Point struct {
	X, Y float32
}

// Rect is an axis-aligned rectangle given by its origin and size.
type Rect struct {
	X, Y, W, H float32
}

// Empty reports whether the rectangle has zero width or zero height.
// An empty clip rectangle means there is nothing visible to draw.
func (r Rect) Empty() bool {
	return r.W == 0 || r.H == 0
}
