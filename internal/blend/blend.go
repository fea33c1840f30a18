// Package blend evaluates GPU blend-factor pairs on the CPU.
//
// All operations work with premultiplied alpha values in the range 0-1.
// This follows the WebGPU convention: the frame buffer equation is
//
//	result = src*srcFactor + dst*dstFactor
//
// evaluated per component, clamped to [0, 1]. The soft backend uses this
// package to reproduce exactly what the fixed-function GPU blend stage
// would do for a given factor pair.
package blend

import "github.com/gogpu/gputypes"

// RGBA is a premultiplied color with components in [0, 1].
type RGBA struct {
	R, G, B, A float32
}

// Coeff returns the scalar coefficient for factor f given the source and
// destination alpha. Factors outside the subset a quad batch can emit
// (zero, one, src-alpha and dst-alpha variants) resolve to 1.
func Coeff(f gputypes.BlendFactor, srcAlpha, dstAlpha float32) float32 {
	switch f {
	case gputypes.BlendFactorZero:
		return 0
	case gputypes.BlendFactorOne:
		return 1
	case gputypes.BlendFactorSrcAlpha:
		return srcAlpha
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return 1 - srcAlpha
	case gputypes.BlendFactorDstAlpha:
		return dstAlpha
	case gputypes.BlendFactorOneMinusDstAlpha:
		return 1 - dstAlpha
	default:
		return 1
	}
}

// Pixel blends premultiplied src onto premultiplied dst with the given
// factor pair and returns the resulting premultiplied color.
func Pixel(srcFactor, dstFactor gputypes.BlendFactor, src, dst RGBA) RGBA {
	sf := Coeff(srcFactor, src.A, dst.A)
	df := Coeff(dstFactor, src.A, dst.A)
	return RGBA{
		R: clamp01(src.R*sf + dst.R*df),
		G: clamp01(src.G*sf + dst.G*df),
		B: clamp01(src.B*sf + dst.B*df),
		A: clamp01(src.A*sf + dst.A*df),
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
