package beat

import (
	"github.com/cwbudde/algo-beat/dsp/core"
	"github.com/cwbudde/algo-beat/dsp/spectrum"
)

// Flags reports which bands fired a beat on this call. Overall mirrors
// Bass; mid and high beats are informational.
type Flags struct {
	Overall bool
	Bass    bool
	Mid     bool
	High    bool
}

// Any reports whether any band fired.
func (f Flags) Any() bool {
	return f.Overall || f.Bass || f.Mid || f.High
}

// Impulses are per-band values that jump to 1 on a beat and decay
// geometrically otherwise.
type Impulses struct {
	Overall float64
	Bass    float64
	Mid     float64
	High    float64
}

// Result is the outcome of one [Analyzer.Analyze] call.
type Result struct {
	// Bass, Mid, High and Overall are visual-track energies, nominally in
	// [0, 1].
	Bass    float64
	Mid     float64
	High    float64
	Overall float64

	// DominantFrequency is the frequency of the strongest bin in Hz.
	DominantFrequency float64

	Beat    Flags
	Impulse Impulses

	// Bands aliases the analysed frame.
	Bands spectrum.Bands
}

// Levels returns the four energies in the shape consumed by the limiter
// and by byte-quantizing encoders.
func (r Result) Levels() core.Levels {
	return core.Levels{
		Overall: r.Overall,
		Bass:    r.Bass,
		Mid:     r.Mid,
		High:    r.High,
	}
}
