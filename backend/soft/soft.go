// Package soft implements the sprite.DrawSurface contract with a
// deterministic CPU compositor.
//
// The surface rasterizes batched triangles into an *image.RGBA, shading
// and blending each pixel exactly the way the GPU backends configure the
// hardware: the same shader selection, the same blend-factor pairs. Tests
// and examples render through it; it is not optimized for speed.
package soft

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"

	"github.com/gogpu/sprite"
	"github.com/gogpu/sprite/internal/blend"
)

// Surface composites batches on the CPU into an RGBA image.
//
// Like every DrawSurface, a Surface is owned by a single goroutine.
type Surface struct {
	dst      *image.RGBA
	textures []*image.RGBA

	// Pending draw state, set by the batcher between flush calls.
	srcFactor gputypes.BlendFactor
	dstFactor gputypes.BlendFactor
	shader    sprite.ShaderKind
	uniforms  sprite.Uniforms
	bound     *image.RGBA
}

// NewSurface creates a soft surface with a transparent width x height
// render target.
func NewSurface(width, height int) *Surface {
	return &Surface{
		dst:       image.NewRGBA(image.Rect(0, 0, width, height)),
		srcFactor: gputypes.BlendFactorOne,
		dstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
	}
}

// Image returns the render target. The returned image is live: subsequent
// flushes keep drawing into it.
func (s *Surface) Image() *image.RGBA {
	return s.dst
}

// Fill replaces every pixel of the render target with c.
func (s *Surface) Fill(c color.Color) {
	draw.Draw(s.dst, s.dst.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// Register copies img into the surface's texture set and returns its
// handle. Arbitrary image types are converted to premultiplied RGBA.
func (s *Surface) Register(img image.Image) sprite.TextureID {
	b := img.Bounds()
	tex := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(tex, tex.Bounds(), img, b.Min, draw.Src)
	s.textures = append(s.textures, tex)
	return sprite.TextureID(len(s.textures) - 1)
}

// SetBlend implements sprite.DrawSurface.
func (s *Surface) SetBlend(src, dst gputypes.BlendFactor) {
	s.srcFactor = src
	s.dstFactor = dst
}

// BindShader implements sprite.DrawSurface.
func (s *Surface) BindShader(kind sprite.ShaderKind, u sprite.Uniforms) {
	s.shader = kind
	s.uniforms = u
}

// BindTexture implements sprite.DrawSurface. The sampling state is noted
// but the rasterizer always samples nearest with clamp-to-edge; soft
// output is meant to be deterministic, not filtered.
func (s *Surface) BindTexture(tex sprite.TextureID, _ sprite.Sampling) {
	if tex < 0 || int(tex) >= len(s.textures) {
		sprite.Logger().Warn("soft: unknown texture", "texture", int64(tex))
		s.bound = nil
		return
	}
	s.bound = s.textures[tex]
}

// DrawTriangles implements sprite.DrawSurface. It rasterizes verts as a
// triangle list with the pending shader, texture, and blend state.
func (s *Surface) DrawTriangles(verts []sprite.Vertex) {
	if s.bound == nil {
		return
	}
	for i := 0; i+2 < len(verts); i += 3 {
		s.fillTriangle(verts[i], verts[i+1], verts[i+2])
	}
}

// edge is the signed area of the parallelogram spanned by (b-a) and (p-a).
func edge(a, b, p sprite.Point) float32 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}

func (s *Surface) fillTriangle(v0, v1, v2 sprite.Vertex) {
	area := edge(v0.Pos, v1.Pos, v2.Pos)
	if area == 0 {
		return
	}
	// Normalize winding so the inside test is sign-independent.
	if area < 0 {
		v1, v2 = v2, v1
		area = -area
	}

	bounds := s.dst.Bounds()
	minX := int(math32.Floor(min3(v0.Pos.X, v1.Pos.X, v2.Pos.X)))
	maxX := int(math32.Ceil(max3(v0.Pos.X, v1.Pos.X, v2.Pos.X)))
	minY := int(math32.Floor(min3(v0.Pos.Y, v1.Pos.Y, v2.Pos.Y)))
	maxY := int(math32.Ceil(max3(v0.Pos.Y, v1.Pos.Y, v2.Pos.Y)))
	minX = max(minX, bounds.Min.X)
	minY = max(minY, bounds.Min.Y)
	maxX = min(maxX, bounds.Max.X)
	maxY = min(maxY, bounds.Max.Y)

	for y := minY; y < maxY; y++ {
		for x := minX; x < maxX; x++ {
			p := sprite.Point{X: float32(x) + 0.5, Y: float32(y) + 0.5}
			w0 := edge(v1.Pos, v2.Pos, p)
			w1 := edge(v2.Pos, v0.Pos, p)
			w2 := edge(v0.Pos, v1.Pos, p)
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			b0, b1, b2 := w0/area, w1/area, w2/area
			u := b0*v0.UV.X + b1*v1.UV.X + b2*v2.UV.X
			v := b0*v0.UV.Y + b1*v1.UV.Y + b2*v2.UV.Y

			src := s.shade(s.sample(u, v))
			dst := pixelAt(s.dst, x, y)
			out := blend.Pixel(s.srcFactor, s.dstFactor, src, dst)
			setPixel(s.dst, x, y, out)
		}
	}
}

// sample fetches the texel nearest to normalized coordinates (u, v),
// clamped to the texture edge.
func (s *Surface) sample(u, v float32) blend.RGBA {
	tex := s.bound
	w := tex.Bounds().Dx()
	h := tex.Bounds().Dy()
	x := clampInt(int(u*float32(w)), 0, w-1)
	y := clampInt(int(v*float32(h)), 0, h-1)
	return pixelAt(tex, x, y)
}

// shade applies the active shader and uniforms to one sampled texel.
func (s *Surface) shade(texel blend.RGBA) blend.RGBA {
	u := s.uniforms
	out := blend.RGBA{
		R: texel.R * u.DrawColor.R,
		G: texel.G * u.DrawColor.G,
		B: texel.B * u.DrawColor.B,
		A: texel.A * u.DrawColor.A,
	}
	if s.shader == sprite.ShaderLinearAdd {
		out.R += u.AddColor.R
		out.G += u.AddColor.G
		out.B += u.AddColor.B
		out.A += u.AddColor.A
	}
	return out
}

func pixelAt(img *image.RGBA, x, y int) blend.RGBA {
	i := img.PixOffset(x, y)
	p := img.Pix[i : i+4 : i+4]
	return blend.RGBA{
		R: float32(p[0]) / 255,
		G: float32(p[1]) / 255,
		B: float32(p[2]) / 255,
		A: float32(p[3]) / 255,
	}
}

func setPixel(img *image.RGBA, x, y int, c blend.RGBA) {
	i := img.PixOffset(x, y)
	p := img.Pix[i : i+4 : i+4]
	p[0] = uint8(c.R*255 + 0.5)
	p[1] = uint8(c.G*255 + 0.5)
	p[2] = uint8(c.B*255 + 0.5)
	p[3] = uint8(c.A*255 + 0.5)
}

func min3(a, b, c float32) float32 { return math32.Min(a, math32.Min(b, c)) }
func max3(a, b, c float32) float32 { return math32.Max(a, math32.Max(b, c)) }

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
