package utils

import "math"

// ClampF64 restricts n to the closed interval [min, max].
func ClampF64(n, min, max float64) float64 {
	return math.Max(min, math.Min(n, max))
}

// MaxInt returns the larger of a and b.
func MaxInt(a, b int) int {
	if a < b {
		return b
	}
	return a
}

// MinInt returns the smaller of a and b.
func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// IsOdd reports whether n is odd. Negative numbers are handled.
func IsOdd(n int) bool {
	return n%2 != 0
}
