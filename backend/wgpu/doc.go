// Package wgpu implements the sprite.DrawSurface contract on the GPU via
// the gogpu/wgpu hardware abstraction layer.
//
// The surface records one render pass per frame. Each batch flush becomes
// one draw call: a freshly uploaded vertex buffer, a uniform buffer with
// the batch's draw/add colors, and a render pipeline selected from a small
// cache keyed by shader kind and blend-factor pair (WebGPU bakes blend
// state into the pipeline, so each distinct composite operation gets its
// own pipeline the first time it is seen).
//
// Device and queue bring-up is the caller's job; the package only consumes
// hal.Device and hal.Queue.
//
// Usage:
//
//	surface, err := wgpu.NewSurface(device, queue, 800, 600)
//	if err != nil { ... }
//	b := sprite.New(surface)
//
//	for each frame {
//	    surface.BeginFrame(targetView)
//	    // b.Submit(...) as needed
//	    b.Flush()
//	    if err := surface.EndFrame(); err != nil { ... }
//	}
package wgpu
