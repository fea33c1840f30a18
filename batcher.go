package sprite

// Vertex is one corner of a buffered triangle: a screen-space position and
// a normalized texture coordinate. Two triangles (six vertices) are
// produced per submitted quad.
type Vertex struct {
	Pos Point
	UV  Point
}

// DrawRequest describes one textured-quad draw. Requests are consumed
// synchronously by Submit and never retained.
type DrawRequest struct {
	// Transform maps destination-rectangle-local space to screen space.
	Transform Matrix

	// Texture is the surface-assigned texture handle.
	Texture TextureID

	// SrcWidth and SrcHeight are the source texture dimensions in texels,
	// used to normalize Src into [0,1] texture coordinates.
	SrcWidth, SrcHeight int

	// Src is the source rectangle in texel space.
	Src Rect

	// Dest is the destination rectangle in local space, transformed to
	// screen space by Transform.
	Dest Rect

	// Clip is the current clip rectangle. A clip with zero width or
	// height drops the request entirely.
	Clip Rect

	// Opacity is the global opacity in [0,1].
	Opacity float32

	// Composite selects the blend-factor pair.
	Composite CompositeOp

	// FilterColor and Filter select the per-batch color transform.
	FilterColor Color
	Filter      FilterKind
}

// DefaultCapacity is the default buffer capacity in triangle slots.
// Each quad occupies two slots.
const DefaultCapacity = 1024

const vertsPerSlot = 3

// Batcher accumulates textured-quad draws into a shared vertex buffer and
// flushes them through a DrawSurface one batch at a time. All quads in a
// batch share one GPU state tuple: texture, opacity, composite operation,
// filter color and filter kind.
//
// A Batcher is not safe for concurrent use; see the package documentation.
type Batcher struct {
	surface DrawSurface

	// buf is pre-reserved to capacity*vertsPerSlot at construction and
	// only ever re-sliced, so the hot path never allocates.
	buf      []Vertex
	slots    int
	capacity int

	singleShader bool

	// Last known GPU-relevant state. Overwritten only when a submit
	// triggers a flush, never by Flush itself.
	lastTexture     TextureID
	lastOpacity     float32
	lastComposite   CompositeOp
	lastFilterColor Color
	lastFilter      FilterKind
}

// New creates a Batcher that flushes through surface.
func New(surface DrawSurface, opts ...Option) *Batcher {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Batcher{
		surface:      surface,
		buf:          make([]Vertex, 0, cfg.capacity*vertsPerSlot),
		capacity:     cfg.capacity,
		singleShader: cfg.singleShader,
		lastTexture:  NoTexture,
		lastOpacity:  1,
	}
}

// Submit queues one textured quad. If the request's GPU state differs from
// the pending batch's state, or the buffer lacks room for one more quad,
// the pending batch is flushed first under its own state, and the request's
// state becomes the batch's active state.
//
// A request whose clip rectangle has zero width or height is silently
// dropped: no vertices, no state change, no flush.
func (b *Batcher) Submit(req DrawRequest) {
	if req.Clip.Empty() {
		return
	}

	if req.Texture != b.lastTexture ||
		b.slots+2 >= b.capacity ||
		req.Opacity != b.lastOpacity ||
		req.Composite != b.lastComposite ||
		!b.lastFilterColor.Equals(req.FilterColor) ||
		req.Filter != b.lastFilter {
		b.Flush()
		b.lastTexture = req.Texture
		b.lastOpacity = req.Opacity
		b.lastComposite = req.Composite
		b.lastFilterColor = req.FilterColor
		b.lastFilter = req.Filter
	}

	// Normalize the source rectangle into [0,1]x[0,1].
	sMin := req.Src.X / float32(req.SrcWidth)
	tMin := req.Src.Y / float32(req.SrcHeight)
	sMax := (req.Src.X + req.Src.W) / float32(req.SrcWidth)
	tMax := (req.Src.Y + req.Src.H) / float32(req.SrcHeight)

	// Corner order: top-left, top-right, bottom-right, bottom-left.
	c := req.Transform.TransformRect(req.Dest)
	tl, tr, br, bl := c[0], c[1], c[2], c[3]

	// Two triangles sharing the top-left/bottom-right diagonal.
	b.buf = append(b.buf,
		Vertex{Pos: bl, UV: Point{X: sMin, Y: tMax}},
		Vertex{Pos: br, UV: Point{X: sMax, Y: tMax}},
		Vertex{Pos: tl, UV: Point{X: sMin, Y: tMin}},
		Vertex{Pos: br, UV: Point{X: sMax, Y: tMax}},
		Vertex{Pos: tr, UV: Point{X: sMax, Y: tMin}},
		Vertex{Pos: tl, UV: Point{X: sMin, Y: tMin}},
	)
	b.slots += 2
}

// Flush submits all buffered triangles as one draw call and clears the
// buffer. It is a no-op when the buffer is empty. A fully transparent
// batch (opacity <= 0) is cleared without touching the GPU.
//
// Flush does not reset the last known state: that is only overwritten by
// the next submit that triggers a flush.
func (b *Batcher) Flush() {
	if b.slots <= 0 {
		return
	}

	if b.lastOpacity > 0 {
		src, dst := b.lastComposite.BlendFactors()
		b.surface.SetBlend(src, dst)
		kind, u := b.shaderConfig()
		b.surface.BindShader(kind, u)
		b.surface.BindTexture(b.lastTexture, QuadSampling())
		b.surface.DrawTriangles(b.buf)
		Logger().Debug("sprite: flush",
			"quads", b.slots/2,
			"texture", int64(b.lastTexture),
			"composite", b.lastComposite.String())
	}

	b.slots = 0
	b.buf = b.buf[:0]
}

// shaderConfig resolves the batch's filter into a shader and its uniforms.
func (b *Batcher) shaderConfig() (ShaderKind, Uniforms) {
	o := b.lastOpacity
	draw := Color{R: o, G: o, B: o, A: o}

	if b.singleShader {
		return ShaderPrimary, Uniforms{DrawColor: draw}
	}

	switch b.lastFilter {
	case FilterLinearAdd:
		fc := b.lastFilterColor
		return ShaderLinearAdd, Uniforms{
			DrawColor: draw,
			AddColor:  Color{R: fc.R * fc.A, G: fc.G * fc.A, B: fc.B * fc.A, A: 0},
		}
	case FilterMultiply:
		fc := b.lastFilterColor
		return ShaderPrimary, Uniforms{
			DrawColor: Color{R: fc.R * o, G: fc.G * o, B: fc.B * o, A: o},
		}
	default:
		return ShaderPrimary, Uniforms{DrawColor: draw}
	}
}

// Len returns the number of triangle slots currently buffered.
func (b *Batcher) Len() int { return b.slots }

// Capacity returns the buffer capacity in triangle slots.
func (b *Batcher) Capacity() int { return b.capacity }
