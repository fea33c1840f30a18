package sprite

// Color is an RGBA color with float32 components, nominally in [0, 1].
// Filter colors and shader uniforms are carried as Colors.
type Color struct {
	R, G, B, A float32
}

// Equals reports exact component-wise equality.
//
// Batching compares filter colors bit-exactly, not approximately: two
// requests batch together only when every component matches, so a color
// that drifts by any amount starts a new batch.
func (c Color) Equals(other Color) bool {
	return c.R == other.R && c.G == other.G && c.B == other.B && c.A == other.A
}

// Premultiply returns the color with R, G, B scaled by A.
func (c Color) Premultiply() Color {
	return Color{R: c.R * c.A, G: c.G * c.A, B: c.B * c.A, A: c.A}
}

// Scale returns the color with all four components multiplied by s.
func (c Color) Scale(s float32) Color {
	return Color{R: c.R * s, G: c.G * s, B: c.B * s, A: c.A * s}
}
