package wgpu

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/sprite"
)

// Surface errors.
var (
	// ErrSurfaceClosed is returned when operating on a closed surface.
	ErrSurfaceClosed = errors.New("wgpu: surface closed")

	// ErrNoFrame is returned when EndFrame is called without BeginFrame.
	ErrNoFrame = errors.New("wgpu: no frame in progress")

	// ErrFrameInProgress is returned when BeginFrame is called twice.
	ErrFrameInProgress = errors.New("wgpu: frame already in progress")

	// ErrUnknownTexture is reported by EndFrame when a flush referenced a
	// texture handle the surface never created.
	ErrUnknownTexture = errors.New("wgpu: unknown texture")
)

// gpuWait bounds how long EndFrame waits for the GPU fence.
const gpuWait = 5 * time.Second

// Surface is a GPU implementation of sprite.DrawSurface.
//
// Like every DrawSurface, a Surface is owned by a single rendering
// goroutine. The DrawSurface methods cannot return errors, so failures
// inside a frame are deferred and reported by EndFrame.
type Surface struct {
	device hal.Device
	queue  hal.Queue

	width  uint32
	height uint32

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	sampler    hal.Sampler
	pipelines  map[pipelineKey]hal.RenderPipeline

	textures map[sprite.TextureID]*Texture
	nextID   sprite.TextureID

	// Per-frame recording state.
	encoder     hal.CommandEncoder
	pass        hal.RenderPassEncoder
	frameBufs   []hal.Buffer
	frameGroups []hal.BindGroup
	frameErr    error

	// Pending draw state set by the batcher between flushes.
	srcFactor gputypes.BlendFactor
	dstFactor gputypes.BlendFactor
	kind      sprite.ShaderKind
	uniforms  sprite.Uniforms
	bound     *Texture

	closed bool
}

// NewSurface creates a surface rendering at the given pixel dimensions.
// The device and queue stay owned by the caller.
func NewSurface(device hal.Device, queue hal.Queue, width, height int) (*Surface, error) {
	s := &Surface{
		device:    device,
		queue:     queue,
		width:     uint32(width),
		height:    uint32(height),
		pipelines: make(map[pipelineKey]hal.RenderPipeline),
		textures:  make(map[sprite.TextureID]*Texture),
		srcFactor: gputypes.BlendFactorOne,
		dstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
	}

	if err := s.createShared(); err != nil {
		s.Close()
		return nil, err
	}

	sprite.Logger().Info("wgpu: surface ready", "width", width, "height", height)
	return s, nil
}

// createShared builds the resources every pipeline variant shares: the
// shader module, bind group layout, pipeline layout, and the fixed
// sampler (linear minification, nearest magnification, clamp-to-edge).
func (s *Surface) createShared() error {
	shader, err := s.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "sprite_quad_shader",
		Source: hal.ShaderSource{WGSL: quadShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile quad shader: %w", err)
	}
	s.shader = shader

	// Bind group layout:
	//   Binding 0: QuadUniforms (uniform buffer, vertex+fragment)
	//   Binding 1: batch texture (texture_2d, fragment)
	//   Binding 2: sampler (fragment)
	bindLayout, err := s.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "sprite_quad_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	s.bindLayout = bindLayout

	pipeLayout, err := s.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "sprite_quad_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{s.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	s.pipeLayout = pipeLayout

	qs := sprite.QuadSampling()
	sampler, err := s.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "sprite_quad_sampler",
		AddressModeU: qs.AddressU,
		AddressModeV: qs.AddressV,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    qs.MagFilter,
		MinFilter:    qs.MinFilter,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return fmt.Errorf("create sampler: %w", err)
	}
	s.sampler = sampler

	return nil
}

// BeginFrame starts recording a render pass into target. The target is
// cleared to transparent black.
func (s *Surface) BeginFrame(target hal.TextureView) error {
	if s.closed {
		return ErrSurfaceClosed
	}
	if s.encoder != nil {
		return ErrFrameInProgress
	}

	encoder, err := s.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "sprite_frame_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("sprite_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "sprite_quad_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       target,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
		}},
	})

	s.encoder = encoder
	s.pass = rp
	s.frameErr = nil
	return nil
}

// SetBlend implements sprite.DrawSurface.
func (s *Surface) SetBlend(src, dst gputypes.BlendFactor) {
	s.srcFactor = src
	s.dstFactor = dst
}

// BindShader implements sprite.DrawSurface.
func (s *Surface) BindShader(kind sprite.ShaderKind, u sprite.Uniforms) {
	s.kind = kind
	s.uniforms = u
}

// BindTexture implements sprite.DrawSurface. The sampling state is fixed
// at surface creation; it is accepted here only to satisfy the contract.
func (s *Surface) BindTexture(tex sprite.TextureID, _ sprite.Sampling) {
	t, ok := s.textures[tex]
	if !ok {
		sprite.Logger().Warn("wgpu: unknown texture", "texture", int64(tex))
		s.bound = nil
		s.setFrameErr(fmt.Errorf("%w: %d", ErrUnknownTexture, tex))
		return
	}
	s.bound = t
}

// DrawTriangles implements sprite.DrawSurface. It records one draw call
// with the pending blend, shader, and texture state.
func (s *Surface) DrawTriangles(verts []sprite.Vertex) {
	if s.pass == nil || s.bound == nil || len(verts) == 0 {
		return
	}

	pipeline, err := s.ensurePipeline(pipelineKey{
		kind: s.kind,
		src:  s.srcFactor,
		dst:  s.dstFactor,
	})
	if err != nil {
		s.setFrameErr(err)
		return
	}

	vertBuf, err := s.createAndUploadBuffer("sprite_quad_verts",
		vertexBytes(verts), gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		s.setFrameErr(err)
		return
	}

	uniformBuf, err := s.createAndUploadBuffer("sprite_quad_uniform",
		uniformBytes(s.width, s.height, s.uniforms),
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		s.setFrameErr(err)
		return
	}

	bindGroup, err := s.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "sprite_quad_bind",
		Layout: s.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: quadUniformSize,
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{
				TextureView: s.bound.view.NativeHandle(),
			}},
			{Binding: 2, Resource: gputypes.SamplerBinding{
				Sampler: s.sampler.NativeHandle(),
			}},
		},
	})
	if err != nil {
		s.setFrameErr(fmt.Errorf("create bind group: %w", err))
		return
	}
	s.frameBufs = append(s.frameBufs, vertBuf, uniformBuf)
	s.frameGroups = append(s.frameGroups, bindGroup)

	s.pass.SetPipeline(pipeline)
	s.pass.SetBindGroup(0, bindGroup, nil)
	s.pass.SetVertexBuffer(0, vertBuf, 0)
	s.pass.Draw(uint32(len(verts)), 1, 0, 0)
}

// EndFrame finishes the render pass, submits it, and waits for the GPU.
// It returns the first error recorded during the frame, if any.
func (s *Surface) EndFrame() error {
	if s.closed {
		return ErrSurfaceClosed
	}
	if s.encoder == nil {
		return ErrNoFrame
	}
	defer s.releaseFrame()

	s.pass.End()
	s.pass = nil

	cmdBuf, err := s.encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer s.device.FreeCommandBuffer(cmdBuf)

	fence, err := s.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer s.device.DestroyFence(fence)

	if err := s.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := s.device.Wait(fence, 1, gpuWait)
	if err != nil {
		return fmt.Errorf("wait for GPU: %w", err)
	}
	if !fenceOK {
		return fmt.Errorf("wait for GPU: fence not signaled within %v", gpuWait)
	}

	return s.frameErr
}

// releaseFrame drops all per-frame resources.
func (s *Surface) releaseFrame() {
	for _, bg := range s.frameGroups {
		s.device.DestroyBindGroup(bg)
	}
	s.frameGroups = s.frameGroups[:0]
	for _, buf := range s.frameBufs {
		s.device.DestroyBuffer(buf)
	}
	s.frameBufs = s.frameBufs[:0]
	s.encoder = nil
	s.pass = nil
}

// setFrameErr records the first failure inside a frame for EndFrame.
func (s *Surface) setFrameErr(err error) {
	if s.frameErr == nil {
		s.frameErr = err
	}
}

// createAndUploadBuffer creates a GPU buffer and uploads data.
func (s *Surface) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := s.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	s.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

// Close releases all surface resources. The device and queue stay alive:
// they belong to the caller.
func (s *Surface) Close() {
	if s.closed {
		return
	}
	s.closed = true

	s.releaseFrame()
	for id, t := range s.textures {
		t.destroy(s.device)
		delete(s.textures, id)
	}
	for key, p := range s.pipelines {
		s.device.DestroyRenderPipeline(p)
		delete(s.pipelines, key)
	}
	if s.sampler != nil {
		s.device.DestroySampler(s.sampler)
		s.sampler = nil
	}
	if s.pipeLayout != nil {
		s.device.DestroyPipelineLayout(s.pipeLayout)
		s.pipeLayout = nil
	}
	if s.bindLayout != nil {
		s.device.DestroyBindGroupLayout(s.bindLayout)
		s.bindLayout = nil
	}
	if s.shader != nil {
		s.device.DestroyShaderModule(s.shader)
		s.shader = nil
	}
}
