// Package level measures the sample level of the PCM feeding the capture
// stage, so a quiet or clipped input can be told apart from a track
// without beats.
package level

import (
	"math"

	"github.com/cwbudde/algo-beat/dsp/core"
)

// ClipThreshold is the absolute sample value counted as clipped.
const ClipThreshold = 0.999

// Stats holds time-domain level statistics.
type Stats struct {
	Length      int
	DC          float64
	RMS         float64
	RMSdB       float64
	Peak        float64
	PeakdB      float64
	CrestFactor float64
	Clipped     int
}

// RMS returns the root-mean-square of the signal.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	var sumSq float64
	for _, x := range signal {
		sumSq += x * x
	}

	return math.Sqrt(sumSq / float64(len(signal)))
}

// Peak returns the peak absolute amplitude of the signal.
func Peak(signal []float64) float64 {
	peak := 0.0
	for _, x := range signal {
		if a := math.Abs(x); a > peak {
			peak = a
		}
	}

	return peak
}

// Meter accumulates level statistics across blocks. It is not safe for
// concurrent use.
type Meter struct {
	n       int
	sum     float64
	comp    float64
	sumSq   float64
	peak    float64
	clipped int
}

// NewMeter creates an empty meter.
func NewMeter() *Meter {
	return &Meter{}
}

// Update adds a block of samples.
func (m *Meter) Update(samples []float64) {
	for _, x := range samples {
		m.n++

		// Kahan summation keeps the DC estimate stable over long files.
		y := x - m.comp
		t := m.sum + y
		m.comp = (t - m.sum) - y
		m.sum = t

		m.sumSq += x * x

		a := math.Abs(x)
		if a > m.peak {
			m.peak = a
		}
		if a >= ClipThreshold {
			m.clipped++
		}
	}
}

// Result returns the statistics of every sample seen since creation or
// Reset. dB fields are -Inf for silence.
func (m *Meter) Result() Stats {
	if m.n == 0 {
		return Stats{RMSdB: math.Inf(-1), PeakdB: math.Inf(-1)}
	}

	nf := float64(m.n)
	rms := math.Sqrt(m.sumSq / nf)

	var crest float64
	if rms > 0 {
		crest = m.peak / rms
	}

	return Stats{
		Length:      m.n,
		DC:          m.sum / nf,
		RMS:         rms,
		RMSdB:       core.LinearToDB(rms),
		Peak:        m.peak,
		PeakdB:      core.LinearToDB(m.peak),
		CrestFactor: crest,
		Clipped:     m.clipped,
	}
}

// Reset clears all accumulated data.
func (m *Meter) Reset() {
	*m = Meter{}
}
