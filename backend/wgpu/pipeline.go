package wgpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/sprite"
)

// quadShaderSource is the WGSL for both quad pipelines. The vertex stage
// maps screen-space positions to NDC using the viewport uniform; the two
// fragment entry points implement the primary and linear-add shaders.
const quadShaderSource = `
struct QuadUniforms {
    viewport: vec4<f32>,    // width, height, unused, unused
    draw_color: vec4<f32>,
    add_color: vec4<f32>,
}

@group(0) @binding(0) var<uniform> u: QuadUniforms;
@group(0) @binding(1) var quad_tex: texture_2d<f32>;
@group(0) @binding(2) var quad_samp: sampler;

struct VSOut {
    @builtin(position) pos: vec4<f32>,
    @location(0) uv: vec2<f32>,
}

@vertex
fn vs_main(@location(0) pos: vec2<f32>, @location(1) uv: vec2<f32>) -> VSOut {
    var out: VSOut;
    let ndc = vec2<f32>(
        pos.x / u.viewport.x * 2.0 - 1.0,
        1.0 - pos.y / u.viewport.y * 2.0,
    );
    out.pos = vec4<f32>(ndc, 0.0, 1.0);
    out.uv = uv;
    return out;
}

@fragment
fn fs_primary(in: VSOut) -> @location(0) vec4<f32> {
    return textureSample(quad_tex, quad_samp, in.uv) * u.draw_color;
}

@fragment
fn fs_linear_add(in: VSOut) -> @location(0) vec4<f32> {
    return textureSample(quad_tex, quad_samp, in.uv) * u.draw_color + u.add_color;
}
`

// quadUniformSize is the byte size of QuadUniforms: three vec4<f32>.
const quadUniformSize = 48

// quadVertexStride is the byte size of one vertex: position + uv.
const quadVertexStride = 16

// pipelineKey identifies one render pipeline variant. WebGPU bakes the
// blend function into the pipeline, so every (shader, blend pair) the
// batcher emits needs its own pipeline object.
type pipelineKey struct {
	kind sprite.ShaderKind
	src  gputypes.BlendFactor
	dst  gputypes.BlendFactor
}

// ensurePipeline returns the cached pipeline for key, creating it on
// first use.
func (s *Surface) ensurePipeline(key pipelineKey) (hal.RenderPipeline, error) {
	if p, ok := s.pipelines[key]; ok {
		return p, nil
	}

	entryPoint := "fs_primary"
	if key.kind == sprite.ShaderLinearAdd {
		entryPoint = "fs_linear_add"
	}

	blendState := gputypes.BlendState{
		Color: gputypes.BlendComponent{
			SrcFactor: key.src,
			DstFactor: key.dst,
			Operation: gputypes.BlendOperationAdd,
		},
		Alpha: gputypes.BlendComponent{
			SrcFactor: key.src,
			DstFactor: key.dst,
			Operation: gputypes.BlendOperationAdd,
		},
	}

	pipeline, err := s.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("sprite_quad_%s_%d_%d", key.kind, key.src, key.dst),
		Layout: s.pipeLayout,
		Vertex: hal.VertexState{
			Module:     s.shader,
			EntryPoint: "vs_main",
			Buffers:    quadVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     s.shader,
			EntryPoint: entryPoint,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    gputypes.TextureFormatBGRA8Unorm,
					Blend:     &blendState,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create quad pipeline %v: %w", key, err)
	}

	s.pipelines[key] = pipeline
	sprite.Logger().Debug("wgpu: pipeline created",
		"shader", key.kind.String(), "src", int(key.src), "dst", int(key.dst))
	return pipeline, nil
}

// quadVertexLayout returns the vertex buffer layout shared by both quad
// pipelines: interleaved position and texture coordinate, two float32
// each.
func quadVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: quadVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1}, // tex_coord
			},
		},
	}
}

// vertexBytes serializes vertices into the layout quadVertexLayout
// describes.
func vertexBytes(verts []sprite.Vertex) []byte {
	data := make([]byte, len(verts)*quadVertexStride)
	off := 0
	for _, v := range verts {
		putFloat32(data[off:], v.Pos.X)
		putFloat32(data[off+4:], v.Pos.Y)
		putFloat32(data[off+8:], v.UV.X)
		putFloat32(data[off+12:], v.UV.Y)
		off += quadVertexStride
	}
	return data
}

// uniformBytes serializes QuadUniforms.
func uniformBytes(width, height uint32, u sprite.Uniforms) []byte {
	data := make([]byte, quadUniformSize)
	putFloat32(data[0:], float32(width))
	putFloat32(data[4:], float32(height))
	putFloat32(data[16:], u.DrawColor.R)
	putFloat32(data[20:], u.DrawColor.G)
	putFloat32(data[24:], u.DrawColor.B)
	putFloat32(data[28:], u.DrawColor.A)
	putFloat32(data[32:], u.AddColor.R)
	putFloat32(data[36:], u.AddColor.G)
	putFloat32(data[40:], u.AddColor.B)
	putFloat32(data[44:], u.AddColor.A)
	return data
}

func putFloat32(b []byte, v float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
}
