// Package sprite provides a textured-quad batching engine for real-time
// 2D rendering.
//
// # Overview
//
// sprite accumulates individually submitted textured-quad draws into a
// shared vertex buffer and coalesces them into the minimum number of GPU
// draw calls. A batch is flushed only when a GPU state change makes it
// unavoidable: a different texture, opacity, composite operation, or color
// filter, or a full buffer.
//
// # Quick Start
//
//	import "github.com/gogpu/sprite"
//
//	// Create a batcher over any DrawSurface implementation
//	// (backend/wgpu, backend/ebitengine, or backend/soft).
//	b := sprite.New(surface)
//
//	// Submit quads; flushes happen automatically on state changes.
//	b.Submit(sprite.DrawRequest{
//	    Transform: sprite.Identity(),
//	    Texture:   tex,
//	    SrcWidth:  256, SrcHeight: 256,
//	    Src:  sprite.Rect{W: 256, H: 256},
//	    Dest: sprite.Rect{W: 128, H: 128},
//	    Clip: sprite.Rect{W: 800, H: 600},
//	    Opacity:   1,
//	    Composite: sprite.CompositeSourceOver,
//	})
//
//	// Flush remaining quads at the end of the frame.
//	b.Flush()
//
// # Backends
//
// The engine draws through the DrawSurface contract. Three implementations
// ship with the module:
//
//   - backend/wgpu: GPU rendering via gogpu/wgpu (WebGPU hal)
//   - backend/ebitengine: rendering into an Ebitengine image
//   - backend/soft: deterministic CPU compositing, used by tests
//
// # Concurrency
//
// A Batcher is owned by exactly one goroutine. Submit and Flush are
// synchronous and must never be called concurrently; this is a caller
// obligation, not something the engine enforces with locks. Multiple
// independent Batcher instances are fine.
package sprite
