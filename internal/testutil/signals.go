package testutil

import (
	"fmt"
	"math"
	"math/rand"
)

// DeterministicSine generates a sine wave starting at phase 0.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// DC generates a constant-valued slice, used both as a PCM signal and as a
// flat magnitude frame.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Silence returns an all-zero magnitude frame of n bins.
func Silence(n int) []float64 {
	return make([]float64, n)
}

// BandFrame returns a frame of n bins where bins [start, end) hold value and
// the rest are zero. Out-of-range bounds are clipped.
func BandFrame(n, start, end int, value float64) []float64 {
	out := make([]float64, n)
	start = max(start, 0)
	end = min(end, n)
	for i := start; i < end; i++ {
		out[i] = value
	}
	return out
}

// SizeName formats a frame or block size as a sub-benchmark name.
func SizeName(n int) string {
	return fmt.Sprintf("N=%d", n)
}
