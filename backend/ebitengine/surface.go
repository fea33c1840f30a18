// Package ebitengine implements the sprite.DrawSurface contract on top of
// Ebitengine images.
//
// Batches are drawn with (*ebiten.Image).DrawTriangles, mapping the
// engine's blend-factor pairs onto ebiten.Blend. The linear-add filter has
// no vertex-color equivalent in Ebitengine, so it is approximated with a
// second additive pass over the same triangles.
package ebitengine

import (
	"github.com/gogpu/gputypes"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gogpu/sprite"
)

// Surface draws batches into an Ebitengine image.
//
// Like every DrawSurface, a Surface is owned by a single goroutine —
// in practice the one running the Ebitengine game loop.
type Surface struct {
	dst      *ebiten.Image
	textures []*ebiten.Image

	blend    ebiten.Blend
	shader   sprite.ShaderKind
	uniforms sprite.Uniforms
	bound    *ebiten.Image

	// Scratch buffers reused across draws to avoid per-flush allocation.
	verts   []ebiten.Vertex
	indices []uint16
}

// NewSurface creates a surface drawing into dst.
func NewSurface(dst *ebiten.Image) *Surface {
	return &Surface{
		dst:   dst,
		blend: ebiten.BlendSourceOver,
	}
}

// SetTarget redirects subsequent draws into dst. Call this each frame when
// drawing into the image handed to Game.Draw.
func (s *Surface) SetTarget(dst *ebiten.Image) {
	s.dst = dst
}

// Register adds img to the surface's texture set and returns its handle.
func (s *Surface) Register(img *ebiten.Image) sprite.TextureID {
	s.textures = append(s.textures, img)
	return sprite.TextureID(len(s.textures) - 1)
}

// SetBlend implements sprite.DrawSurface.
func (s *Surface) SetBlend(src, dst gputypes.BlendFactor) {
	s.blend = ebiten.Blend{
		BlendFactorSourceRGB:        convertFactor(src),
		BlendFactorSourceAlpha:      convertFactor(src),
		BlendFactorDestinationRGB:   convertFactor(dst),
		BlendFactorDestinationAlpha: convertFactor(dst),
		BlendOperationRGB:           ebiten.BlendOperationAdd,
		BlendOperationAlpha:         ebiten.BlendOperationAdd,
	}
}

// convertFactor maps a gputypes blend factor onto the Ebitengine
// equivalent. Factors a quad batch cannot emit map to one.
func convertFactor(f gputypes.BlendFactor) ebiten.BlendFactor {
	switch f {
	case gputypes.BlendFactorZero:
		return ebiten.BlendFactorZero
	case gputypes.BlendFactorOne:
		return ebiten.BlendFactorOne
	case gputypes.BlendFactorSrcAlpha:
		return ebiten.BlendFactorSourceAlpha
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return ebiten.BlendFactorOneMinusSourceAlpha
	case gputypes.BlendFactorDstAlpha:
		return ebiten.BlendFactorDestinationAlpha
	case gputypes.BlendFactorOneMinusDstAlpha:
		return ebiten.BlendFactorOneMinusDestinationAlpha
	default:
		return ebiten.BlendFactorOne
	}
}

// BindShader implements sprite.DrawSurface.
func (s *Surface) BindShader(kind sprite.ShaderKind, u sprite.Uniforms) {
	s.shader = kind
	s.uniforms = u
}

// BindTexture implements sprite.DrawSurface. Sampling is fixed by the
// draw options (nearest magnification, clamp-to-edge addressing).
func (s *Surface) BindTexture(tex sprite.TextureID, _ sprite.Sampling) {
	if tex < 0 || int(tex) >= len(s.textures) {
		sprite.Logger().Warn("ebitengine: unknown texture", "texture", int64(tex))
		s.bound = nil
		return
	}
	s.bound = s.textures[tex]
}

// DrawTriangles implements sprite.DrawSurface.
func (s *Surface) DrawTriangles(verts []sprite.Vertex) {
	if s.bound == nil || s.dst == nil {
		return
	}

	s.buildVertices(verts, s.uniforms.DrawColor)
	opts := &ebiten.DrawTrianglesOptions{
		Blend:   s.blend,
		Filter:  ebiten.FilterNearest,
		Address: ebiten.AddressClampToEdge,
	}
	s.dst.DrawTriangles(s.verts, s.indices, s.bound, opts)

	if s.shader == sprite.ShaderLinearAdd {
		// Second additive pass standing in for the linear-add shader:
		// the same geometry, colored with the add color, accumulated
		// on top of the first pass.
		s.buildVertices(verts, s.uniforms.AddColor)
		add := &ebiten.DrawTrianglesOptions{
			Blend: ebiten.Blend{
				BlendFactorSourceRGB:        ebiten.BlendFactorOne,
				BlendFactorSourceAlpha:      ebiten.BlendFactorZero,
				BlendFactorDestinationRGB:   ebiten.BlendFactorOne,
				BlendFactorDestinationAlpha: ebiten.BlendFactorOne,
				BlendOperationRGB:           ebiten.BlendOperationAdd,
				BlendOperationAlpha:         ebiten.BlendOperationAdd,
			},
			Filter:  ebiten.FilterNearest,
			Address: ebiten.AddressClampToEdge,
		}
		s.dst.DrawTriangles(s.verts, s.indices, s.bound, add)
	}
}

// buildVertices converts batch vertices to Ebitengine vertices, scaling
// normalized texture coordinates back to texels and applying tint as the
// per-vertex color.
func (s *Surface) buildVertices(verts []sprite.Vertex, tint sprite.Color) {
	texW := float32(s.bound.Bounds().Dx())
	texH := float32(s.bound.Bounds().Dy())

	s.verts = s.verts[:0]
	s.indices = s.indices[:0]
	for i, v := range verts {
		s.verts = append(s.verts, ebiten.Vertex{
			DstX:   v.Pos.X,
			DstY:   v.Pos.Y,
			SrcX:   v.UV.X * texW,
			SrcY:   v.UV.Y * texH,
			ColorR: tint.R,
			ColorG: tint.G,
			ColorB: tint.B,
			ColorA: tint.A,
		})
		s.indices = append(s.indices, uint16(i))
	}
}
