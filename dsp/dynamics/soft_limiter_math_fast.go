//go:build fastmath

package dynamics

import "github.com/meko-christian/algo-approx"

// mathTanh computes tanh(x) from a fast exponential approximation.
// Uses the identity: tanh(x) = 1 - 2/(e^(2x) + 1)
func mathTanh(x float64) float64 {
	return 1 - 2/(approx.FastExp(2*x)+1)
}
