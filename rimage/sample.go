package rimage

import (
	"math"

	"go.viam.com/filter2d/utils"
)

// Sample is the set of element types an Image can store. Every value of every integer member is
// exactly representable in a float64, so pixels survive padding and accumulation unchanged.
// 64 bit integers are left out because values above 2^53 are not.
type Sample interface {
	uint8 | uint16 | uint32 | int8 | int16 | int32 | float32 | float64
}

// sampleRange describes how an accumulated float64 is narrowed back into a sample type.
// Integer types round half away from zero and saturate to [lo, hi]; NaN becomes 0.
// Float types store the value as is.
type sampleRange struct {
	lo, hi   float64
	integral bool
}

func rangeOf[T Sample]() sampleRange {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return sampleRange{0, math.MaxUint8, true}
	case uint16:
		return sampleRange{0, math.MaxUint16, true}
	case uint32:
		return sampleRange{0, math.MaxUint32, true}
	case int8:
		return sampleRange{math.MinInt8, math.MaxInt8, true}
	case int16:
		return sampleRange{math.MinInt16, math.MaxInt16, true}
	case int32:
		return sampleRange{math.MinInt32, math.MaxInt32, true}
	default:
		return sampleRange{math.Inf(-1), math.Inf(1), false}
	}
}

func narrow[T Sample](v float64, r sampleRange) T {
	if !r.integral {
		return T(v)
	}
	if math.IsNaN(v) {
		return 0
	}
	return T(utils.ClampF64(math.Round(v), r.lo, r.hi))
}

// Narrow converts v to the sample type T with the same rounding and saturation Convolve uses
// when storing results.
func Narrow[T Sample](v float64) T {
	return narrow[T](v, rangeOf[T]())
}
