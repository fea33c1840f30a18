package sprite

import (
	"math"
	"testing"

	"github.com/gogpu/gputypes"
)

// surfaceCall records one DrawSurface method invocation.
type surfaceCall struct {
	method string

	src, dst gputypes.BlendFactor
	kind     ShaderKind
	uniforms Uniforms
	texture  TextureID
	sampling Sampling
	verts    []Vertex
}

// recordingSurface is a DrawSurface test double that records every call.
type recordingSurface struct {
	calls []surfaceCall
}

func (r *recordingSurface) SetBlend(src, dst gputypes.BlendFactor) {
	r.calls = append(r.calls, surfaceCall{method: "SetBlend", src: src, dst: dst})
}

func (r *recordingSurface) BindShader(kind ShaderKind, u Uniforms) {
	r.calls = append(r.calls, surfaceCall{method: "BindShader", kind: kind, uniforms: u})
}

func (r *recordingSurface) BindTexture(tex TextureID, s Sampling) {
	r.calls = append(r.calls, surfaceCall{method: "BindTexture", texture: tex, sampling: s})
}

func (r *recordingSurface) DrawTriangles(verts []Vertex) {
	vs := make([]Vertex, len(verts))
	copy(vs, verts)
	r.calls = append(r.calls, surfaceCall{method: "DrawTriangles", verts: vs})
}

// draws returns only the DrawTriangles calls.
func (r *recordingSurface) draws() []surfaceCall {
	var out []surfaceCall
	for _, c := range r.calls {
		if c.method == "DrawTriangles" {
			out = append(out, c)
		}
	}
	return out
}

// lastCall returns the most recent call with the given method name.
func (r *recordingSurface) lastCall(t *testing.T, method string) surfaceCall {
	t.Helper()
	for i := len(r.calls) - 1; i >= 0; i-- {
		if r.calls[i].method == method {
			return r.calls[i]
		}
	}
	t.Fatalf("no %s call recorded", method)
	return surfaceCall{}
}

// baseRequest returns a valid request that tests mutate per case.
func baseRequest() DrawRequest {
	return DrawRequest{
		Transform: Identity(),
		Texture:   1,
		SrcWidth:  100,
		SrcHeight: 200,
		Src:       Rect{X: 10, Y: 20, W: 30, H: 40},
		Dest:      Rect{X: 0, Y: 0, W: 64, H: 64},
		Clip:      Rect{X: 0, Y: 0, W: 800, H: 600},
		Opacity:   1,
		Composite: CompositeSourceOver,
	}
}

func TestSubmitBatchesIdenticalState(t *testing.T) {
	rec := &recordingSurface{}
	b := New(rec)

	for range 10 {
		b.Submit(baseRequest())
	}

	if got := len(rec.draws()); got != 0 {
		t.Errorf("flushes during identical-state submits = %d, want 0", got)
	}
	if b.Len() != 20 {
		t.Errorf("Len() = %d, want 20", b.Len())
	}

	b.Flush()
	draws := rec.draws()
	if len(draws) != 1 {
		t.Fatalf("flushes after explicit Flush = %d, want 1", len(draws))
	}
	if got := len(draws[0].verts); got != 60 {
		t.Errorf("flushed vertex count = %d, want 60", got)
	}
}

func TestSubmitFlushesOnStateChange(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DrawRequest)
	}{
		{"texture", func(r *DrawRequest) { r.Texture = 2 }},
		{"opacity", func(r *DrawRequest) { r.Opacity = 0.5 }},
		{"composite op", func(r *DrawRequest) { r.Composite = CompositeDestinationIn }},
		{"filter color", func(r *DrawRequest) { r.FilterColor = Color{R: 1, A: 1} }},
		{"filter kind", func(r *DrawRequest) { r.Filter = FilterMultiply }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingSurface{}
			b := New(rec)

			b.Submit(baseRequest())
			b.Submit(baseRequest())
			if got := len(rec.draws()); got != 0 {
				t.Fatalf("flushes before state change = %d, want 0", got)
			}

			req := baseRequest()
			tt.mutate(&req)
			b.Submit(req)

			if got := len(rec.draws()); got != 1 {
				t.Errorf("flushes after state change = %d, want 1", got)
			}
			if got := len(rec.draws()[0].verts); got != 12 {
				t.Errorf("flushed vertex count = %d, want 12 (the two prior quads)", got)
			}
			if b.Len() != 2 {
				t.Errorf("Len() after flush+append = %d, want 2", b.Len())
			}
		})
	}
}

func TestSubmitOpacityComparesBitExact(t *testing.T) {
	rec := &recordingSurface{}
	b := New(rec)

	req := baseRequest()
	req.Opacity = 0.3
	b.Submit(req)

	same := baseRequest()
	same.Opacity = 0.3
	b.Submit(same)
	if got := len(rec.draws()); got != 0 {
		t.Errorf("flushes for bit-identical opacity = %d, want 0", got)
	}

	// The adjacent float32 value differs by one ulp and must still
	// trigger a flush: the comparison is exact, not approximate.
	differs := baseRequest()
	differs.Opacity = math.Nextafter32(0.3, 1)
	b.Submit(differs)
	if got := len(rec.draws()); got != 1 {
		t.Errorf("flushes for nearly-equal opacity = %d, want 1 (comparison is exact)", got)
	}
}

func TestSubmitDegenerateClipDropped(t *testing.T) {
	tests := []struct {
		name string
		clip Rect
	}{
		{"zero width", Rect{W: 0, H: 100}},
		{"zero height", Rect{W: 100, H: 0}},
		{"zero both", Rect{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingSurface{}
			b := New(rec)
			b.Submit(baseRequest())

			// A dropped request must not flush even though its state
			// (texture 99) differs from the batch.
			req := baseRequest()
			req.Texture = 99
			req.Clip = tt.clip
			b.Submit(req)

			if len(rec.calls) != 0 {
				t.Errorf("surface calls after degenerate clip = %d, want 0", len(rec.calls))
			}
			if b.Len() != 2 {
				t.Errorf("Len() = %d, want 2 (degenerate clip must not append)", b.Len())
			}

			// The dropped request's state was not adopted either.
			b.Submit(baseRequest())
			if got := len(rec.draws()); got != 0 {
				t.Errorf("flushes = %d, want 0 (state unchanged by dropped request)", got)
			}
		})
	}
}

func TestSubmitFlushesBeforeCapacityOverflow(t *testing.T) {
	rec := &recordingSurface{}
	b := New(rec, WithCapacity(8))

	// Three quads fill 6 of 8 slots without flushing.
	for range 3 {
		b.Submit(baseRequest())
	}
	if got := len(rec.draws()); got != 0 {
		t.Fatalf("flushes while filling = %d, want 0", got)
	}

	// The fourth quad would reach capacity; the headroom check flushes
	// first, then appends.
	b.Submit(baseRequest())
	draws := rec.draws()
	if len(draws) != 1 {
		t.Fatalf("flushes at capacity = %d, want 1", len(draws))
	}
	if got := len(draws[0].verts); got != 18 {
		t.Errorf("flushed vertex count = %d, want 18", got)
	}
	if b.Len() != 2 {
		t.Errorf("Len() after flush+append = %d, want 2", b.Len())
	}
}

func TestSubmitTextureCoordinates(t *testing.T) {
	rec := &recordingSurface{}
	b := New(rec)

	// srcRect (10,20,30,40) over a 100x200 texture.
	b.Submit(baseRequest())
	b.Flush()

	const (
		sMin = float32(0.1)
		tMin = float32(0.1)
		sMax = float32(0.4)
		tMax = float32(0.3)
	)
	want := [6]Point{
		{sMin, tMax}, {sMax, tMax}, {sMin, tMin},
		{sMax, tMax}, {sMax, tMin}, {sMin, tMin},
	}

	verts := rec.draws()[0].verts
	if len(verts) != 6 {
		t.Fatalf("vertex count = %d, want 6", len(verts))
	}
	for i, v := range verts {
		if v.UV != want[i] {
			t.Errorf("vertex %d UV = %+v, want %+v", i, v.UV, want[i])
		}
	}
}

func TestSubmitPositionsTransformed(t *testing.T) {
	rec := &recordingSurface{}
	b := New(rec)

	req := baseRequest()
	req.Transform = Translate(100, 50)
	req.Dest = Rect{X: 0, Y: 0, W: 10, H: 20}
	b.Submit(req)
	b.Flush()

	tl := Point{100, 50}
	tr := Point{110, 50}
	br := Point{110, 70}
	bl := Point{100, 70}
	want := [6]Point{bl, br, tl, br, tr, tl}

	verts := rec.draws()[0].verts
	for i, v := range verts {
		if v.Pos != want[i] {
			t.Errorf("vertex %d Pos = %+v, want %+v", i, v.Pos, want[i])
		}
	}
}

func TestFlushConfiguresBlendFactors(t *testing.T) {
	tests := []struct {
		name    string
		op      CompositeOp
		wantSrc gputypes.BlendFactor
		wantDst gputypes.BlendFactor
	}{
		{"source-over", CompositeSourceOver, gputypes.BlendFactorOne, gputypes.BlendFactorOneMinusSrcAlpha},
		{"destination-in", CompositeDestinationIn, gputypes.BlendFactorZero, gputypes.BlendFactorSrcAlpha},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingSurface{}
			b := New(rec)

			req := baseRequest()
			req.Composite = tt.op
			b.Submit(req)
			b.Flush()

			got := rec.lastCall(t, "SetBlend")
			if got.src != tt.wantSrc || got.dst != tt.wantDst {
				t.Errorf("SetBlend(%v, %v), want (%v, %v)",
					got.src, got.dst, tt.wantSrc, tt.wantDst)
			}
		})
	}
}

func TestFlushShaderSelection(t *testing.T) {
	filterColor := Color{R: 0.5, G: 0.25, B: 1, A: 0.5}

	tests := []struct {
		name     string
		filter   FilterKind
		opts     []Option
		wantKind ShaderKind
		wantU    Uniforms
	}{
		{
			name:     "no filter",
			filter:   FilterNone,
			wantKind: ShaderPrimary,
			wantU:    Uniforms{DrawColor: Color{0.5, 0.5, 0.5, 0.5}},
		},
		{
			name:     "linear add",
			filter:   FilterLinearAdd,
			wantKind: ShaderLinearAdd,
			wantU: Uniforms{
				DrawColor: Color{0.5, 0.5, 0.5, 0.5},
				AddColor:  Color{0.25, 0.125, 0.5, 0},
			},
		},
		{
			name:     "multiply",
			filter:   FilterMultiply,
			wantKind: ShaderPrimary,
			wantU:    Uniforms{DrawColor: Color{0.25, 0.125, 0.5, 0.5}},
		},
		{
			name:     "single shader mode ignores filter",
			filter:   FilterLinearAdd,
			opts:     []Option{WithSingleShader()},
			wantKind: ShaderPrimary,
			wantU:    Uniforms{DrawColor: Color{0.5, 0.5, 0.5, 0.5}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingSurface{}
			b := New(rec, tt.opts...)

			req := baseRequest()
			req.Opacity = 0.5
			req.Filter = tt.filter
			req.FilterColor = filterColor
			b.Submit(req)
			b.Flush()

			got := rec.lastCall(t, "BindShader")
			if got.kind != tt.wantKind {
				t.Errorf("shader = %v, want %v", got.kind, tt.wantKind)
			}
			if got.uniforms != tt.wantU {
				t.Errorf("uniforms = %+v, want %+v", got.uniforms, tt.wantU)
			}
		})
	}
}

func TestFlushBindsTextureWithFixedSampling(t *testing.T) {
	rec := &recordingSurface{}
	b := New(rec)

	req := baseRequest()
	req.Texture = 7
	b.Submit(req)
	b.Flush()

	got := rec.lastCall(t, "BindTexture")
	if got.texture != 7 {
		t.Errorf("bound texture = %d, want 7", got.texture)
	}
	if got.sampling != QuadSampling() {
		t.Errorf("sampling = %+v, want %+v", got.sampling, QuadSampling())
	}
}

func TestFlushCallOrder(t *testing.T) {
	rec := &recordingSurface{}
	b := New(rec)
	b.Submit(baseRequest())
	b.Flush()

	want := []string{"SetBlend", "BindShader", "BindTexture", "DrawTriangles"}
	if len(rec.calls) != len(want) {
		t.Fatalf("call count = %d, want %d", len(rec.calls), len(want))
	}
	for i, c := range rec.calls {
		if c.method != want[i] {
			t.Errorf("call %d = %s, want %s", i, c.method, want[i])
		}
	}
}

func TestFlushZeroOpacitySkipsGPU(t *testing.T) {
	rec := &recordingSurface{}
	b := New(rec)

	req := baseRequest()
	req.Opacity = 0
	b.Submit(req)
	if b.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", b.Len())
	}

	b.Flush()
	if len(rec.calls) != 0 {
		t.Errorf("surface calls for transparent batch = %d, want 0", len(rec.calls))
	}
	if b.Len() != 0 {
		t.Errorf("Len() after transparent flush = %d, want 0 (buffer must clear)", b.Len())
	}
}

func TestFlushEmptyIsNoop(t *testing.T) {
	rec := &recordingSurface{}
	b := New(rec)

	b.Flush()
	if len(rec.calls) != 0 {
		t.Errorf("surface calls on empty flush = %d, want 0", len(rec.calls))
	}

	// Idempotence: flush, then flush again with nothing in between.
	b.Submit(baseRequest())
	b.Flush()
	n := len(rec.calls)
	b.Flush()
	if len(rec.calls) != n {
		t.Errorf("second flush made %d extra calls, want 0", len(rec.calls)-n)
	}
}

func TestFlushPreservesLastState(t *testing.T) {
	rec := &recordingSurface{}
	b := New(rec)

	b.Submit(baseRequest())
	b.Flush()

	// Same state after an explicit flush: no triggered flush, just an
	// append into the fresh batch.
	b.Submit(baseRequest())
	if got := len(rec.draws()); got != 1 {
		t.Errorf("flushes = %d, want 1 (state survives an explicit flush)", got)
	}
	if b.Len() != 2 {
		t.Errorf("Len() = %d, want 2", b.Len())
	}
}

func TestFirstSubmitAdoptsState(t *testing.T) {
	rec := &recordingSurface{}
	b := New(rec)

	// Opacity differs from the constructed default (1), texture from
	// NoTexture: the first submit adopts everything without drawing.
	req := baseRequest()
	req.Opacity = 0.25
	b.Submit(req)
	if got := len(rec.draws()); got != 0 {
		t.Fatalf("draws on first submit = %d, want 0 (buffer was empty)", got)
	}

	b.Flush()
	got := rec.lastCall(t, "BindShader")
	want := Color{0.25, 0.25, 0.25, 0.25}
	if got.uniforms.DrawColor != want {
		t.Errorf("draw color = %+v, want %+v (first submit's state)", got.uniforms.DrawColor, want)
	}
}
