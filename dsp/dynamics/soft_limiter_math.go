//go:build !fastmath

package dynamics

import "math"

// mathTanh computes tanh(x) using standard library math.
func mathTanh(x float64) float64 {
	return math.Tanh(x)
}
