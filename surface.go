package sprite

import "github.com/gogpu/gputypes"

// TextureID identifies a texture owned by the DrawSurface. IDs are assigned
// by the surface implementation; the batcher only compares them.
type TextureID int64

// NoTexture is the sentinel "no texture bound" state a Batcher starts in.
// It never equals a surface-assigned ID, so the first submit always adopts
// the request's state.
const NoTexture TextureID = -1

// ShaderKind selects the GPU program a batch is drawn with.
type ShaderKind uint8

const (
	// ShaderPrimary samples the texture and multiplies by the draw color.
	ShaderPrimary ShaderKind = iota
	// ShaderLinearAdd additionally adds the add color after sampling.
	ShaderLinearAdd
)

// String returns the string representation of the ShaderKind.
func (k ShaderKind) String() string {
	if k == ShaderLinearAdd {
		return "linear-add"
	}
	return "primary"
}

// Uniforms carries the per-flush shader uniform values.
type Uniforms struct {
	// DrawColor modulates every sampled texel.
	DrawColor Color

	// AddColor is added to sampled texels; only meaningful for
	// ShaderLinearAdd, zero otherwise.
	AddColor Color
}

// Sampling describes texture sampling state.
type Sampling struct {
	MinFilter gputypes.FilterMode
	MagFilter gputypes.FilterMode
	AddressU  gputypes.AddressMode
	AddressV  gputypes.AddressMode
}

// QuadSampling is the fixed sampling state every batch is drawn with:
// linear minification, nearest magnification, clamp-to-edge on both axes.
// It is not configurable per request.
func QuadSampling() Sampling {
	return Sampling{
		MinFilter: gputypes.FilterModeLinear,
		MagFilter: gputypes.FilterModeNearest,
		AddressU:  gputypes.AddressModeClampToEdge,
		AddressV:  gputypes.AddressModeClampToEdge,
	}
}

// DrawSurface is the GPU collaborator a Batcher flushes through.
//
// A flush calls the four methods in a fixed order: SetBlend, BindShader,
// BindTexture, then DrawTriangles exactly once. Implementations own all
// GPU resources and surface their own failures; a missing texture or
// shader is not the batcher's responsibility to validate.
//
// Implementations must not retain the vertex slice passed to
// DrawTriangles past the call: the batcher reuses it for the next batch.
type DrawSurface interface {
	// SetBlend configures the blend-function pair for the next draw.
	SetBlend(src, dst gputypes.BlendFactor)

	// BindShader activates the shader program and sets its uniforms.
	BindShader(kind ShaderKind, u Uniforms)

	// BindTexture binds the batch texture with the given sampling state.
	BindTexture(tex TextureID, s Sampling)

	// DrawTriangles submits one triangle-list draw call covering verts.
	// len(verts) is always a non-zero multiple of 3.
	DrawTriangles(verts []Vertex)
}
