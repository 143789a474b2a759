package spectrum

import (
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-beat/dsp/core"
)

// FullScale is the magnitude of a saturated bin in byte-scaled frames.
const FullScale = 255.0

// Energy returns the RMS of values normalised by fullScale:
//
//	sqrt(mean((v/fullScale)^2))
//
// An empty slice has zero energy. NaN and Inf members propagate. scratch is
// reused for the squared terms when its capacity allows and is returned for
// the next call.
func Energy(values []float64, fullScale float64, scratch []float64) (float64, []float64) {
	n := len(values)
	if n == 0 {
		return 0, scratch
	}

	scratch = core.Resize(scratch, 2*n)
	norm := scratch[:n]
	sq := scratch[n : 2*n]

	inv := 1 / fullScale
	for i, v := range values {
		norm[i] = v * inv
	}
	vecmath.MulBlock(sq, norm, norm)

	sum := 0.0
	for _, v := range sq {
		sum += v
	}

	return math.Sqrt(sum / float64(n)), scratch
}

// PeakBin returns the index of the first largest value in frame, considering
// only values strictly above zero. It returns 0 for an empty frame, a frame
// without positive values, or one whose positive values are all NaN.
func PeakBin(frame []float64) int {
	idx := 0
	peak := 0.0
	for i, v := range frame {
		if v > peak {
			peak = v
			idx = i
		}
	}
	return idx
}
