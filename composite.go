package sprite

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// CompositeOp is a Porter-Duff style composite operation selecting the
// blend-factor pair a batch is drawn with.
type CompositeOp uint8

const (
	// CompositeSourceOver draws source over destination [default].
	CompositeSourceOver CompositeOp = iota
	// CompositeSourceAtop draws source where the destination is opaque.
	CompositeSourceAtop
	// CompositeSourceIn keeps source only where the destination is opaque.
	CompositeSourceIn
	// CompositeSourceOut keeps source only where the destination is clear.
	CompositeSourceOut
	// CompositeDestinationOver draws source under the destination.
	CompositeDestinationOver
	// CompositeDestinationAtop keeps destination where the source is opaque.
	CompositeDestinationAtop
	// CompositeDestinationIn keeps destination only where the source is opaque.
	CompositeDestinationIn
	// CompositeDestinationOut keeps destination only where the source is clear.
	CompositeDestinationOut
	// CompositeLighter is accepted for compatibility and blends as source-over.
	CompositeLighter
	// CompositeXor is accepted for compatibility and blends as source-over.
	CompositeXor
	// CompositeCopy is accepted for compatibility and blends as source-over.
	CompositeCopy
)

// BlendFactors resolves the composite operation into a fixed
// (source-factor, destination-factor) pair. Unrecognized and legacy
// operations (lighter, xor, copy) fall back to the source-over pair.
func (op CompositeOp) BlendFactors() (src, dst gputypes.BlendFactor) {
	switch op {
	case CompositeSourceAtop:
		return gputypes.BlendFactorDstAlpha, gputypes.BlendFactorOneMinusSrcAlpha
	case CompositeSourceIn:
		return gputypes.BlendFactorDstAlpha, gputypes.BlendFactorZero
	case CompositeSourceOut:
		return gputypes.BlendFactorOneMinusDstAlpha, gputypes.BlendFactorZero
	case CompositeSourceOver:
		return gputypes.BlendFactorOne, gputypes.BlendFactorOneMinusSrcAlpha
	case CompositeDestinationAtop:
		return gputypes.BlendFactorDstAlpha, gputypes.BlendFactorSrcAlpha
	case CompositeDestinationIn:
		return gputypes.BlendFactorZero, gputypes.BlendFactorSrcAlpha
	case CompositeDestinationOut:
		return gputypes.BlendFactorOneMinusSrcAlpha, gputypes.BlendFactorOneMinusSrcAlpha
	case CompositeDestinationOver:
		return gputypes.BlendFactorDstAlpha, gputypes.BlendFactorSrcAlpha
	default:
		return gputypes.BlendFactorOne, gputypes.BlendFactorOneMinusSrcAlpha
	}
}

// String returns the string representation of the CompositeOp.
func (op CompositeOp) String() string {
	switch op {
	case CompositeSourceOver:
		return "source-over"
	case CompositeSourceAtop:
		return "source-atop"
	case CompositeSourceIn:
		return "source-in"
	case CompositeSourceOut:
		return "source-out"
	case CompositeDestinationOver:
		return "destination-over"
	case CompositeDestinationAtop:
		return "destination-atop"
	case CompositeDestinationIn:
		return "destination-in"
	case CompositeDestinationOut:
		return "destination-out"
	case CompositeLighter:
		return "lighter"
	case CompositeXor:
		return "xor"
	case CompositeCopy:
		return "copy"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(op))
	}
}
