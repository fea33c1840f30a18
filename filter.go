package sprite

import "fmt"

// FilterKind is a per-batch color transform applied via shader uniforms.
type FilterKind uint8

const (
	// FilterNone applies no color transform.
	FilterNone FilterKind = iota
	// FilterLinearAdd adds the premultiplied filter color to sampled texels.
	FilterLinearAdd
	// FilterMultiply tints sampled texels by the filter color.
	FilterMultiply
)

// String returns the string representation of the FilterKind.
func (f FilterKind) String() string {
	switch f {
	case FilterNone:
		return "none"
	case FilterLinearAdd:
		return "linear-add"
	case FilterMultiply:
		return "multiply"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(f))
	}
}
