package wgpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/draw"

	"github.com/gogpu/sprite"
)

// Texture is a GPU texture owned by a Surface.
type Texture struct {
	tex    hal.Texture
	view   hal.TextureView
	width  uint32
	height uint32
}

// CreateTexture uploads img and returns the handle a DrawRequest refers
// to it by. Arbitrary image types are converted to RGBA first; pixel data
// is stored BGRA to match the render pipeline's target format.
func (s *Surface) CreateTexture(img image.Image) (sprite.TextureID, error) {
	if s.closed {
		return sprite.NoTexture, ErrSurfaceClosed
	}

	b := img.Bounds()
	w := uint32(b.Dx())
	h := uint32(b.Dy())

	rgba, ok := img.(*image.RGBA)
	if !ok || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}

	tex, err := s.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "sprite_texture",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return sprite.NoTexture, fmt.Errorf("create texture: %w", err)
	}

	view, err := s.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: "sprite_texture_view",
	})
	if err != nil {
		s.device.DestroyTexture(tex)
		return sprite.NoTexture, fmt.Errorf("create texture view: %w", err)
	}

	s.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0},
		rgbaToBGRA(rgba.Pix),
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: w * 4, RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)

	id := s.nextID
	s.nextID++
	s.textures[id] = &Texture{tex: tex, view: view, width: w, height: h}

	sprite.Logger().Debug("wgpu: texture uploaded",
		"texture", int64(id), "width", w, "height", h)
	return id, nil
}

// DestroyTexture releases the texture behind id. Destroying a handle
// that is still referenced by buffered quads is a caller error; flush
// first.
func (s *Surface) DestroyTexture(id sprite.TextureID) {
	t, ok := s.textures[id]
	if !ok {
		return
	}
	t.destroy(s.device)
	delete(s.textures, id)
}

func (t *Texture) destroy(device hal.Device) {
	if t.view != nil {
		device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		device.DestroyTexture(t.tex)
		t.tex = nil
	}
}

// rgbaToBGRA swaps the red and blue channels, returning a new slice.
func rgbaToBGRA(pix []byte) []byte {
	out := make([]byte, len(pix))
	for i := 0; i+3 < len(pix); i += 4 {
		out[i] = pix[i+2]
		out[i+1] = pix[i+1]
		out[i+2] = pix[i]
		out[i+3] = pix[i+3]
	}
	return out
}
