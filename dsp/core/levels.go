package core

import "math"

// Levels carries one scalar per band plus the overall level. It is the unit
// exchanged between the analyzer, the limiter and external consumers.
type Levels struct {
	Overall float64
	Bass    float64
	Mid     float64
	High    float64
}

// Peak returns the largest of the four values. NaN members are skipped.
func (l Levels) Peak() float64 {
	peak := l.Bass
	for _, v := range [...]float64{l.Mid, l.High, l.Overall} {
		if v > peak || math.IsNaN(peak) {
			peak = v
		}
	}
	return peak
}

// Scale returns l with every member multiplied by gain.
func (l Levels) Scale(gain float64) Levels {
	return Levels{
		Overall: l.Overall * gain,
		Bass:    l.Bass * gain,
		Mid:     l.Mid * gain,
		High:    l.High * gain,
	}
}

// Quantize maps each value to a byte as round(v*255) clamped to [0, 255],
// in the order overall, bass, mid, high. NaN maps to 0.
//
// This is the contract used by device encoders that transmit levels as
// 8-bit fields.
func (l Levels) Quantize() [4]uint8 {
	return [4]uint8{
		quantizeByte(l.Overall),
		quantizeByte(l.Bass),
		quantizeByte(l.Mid),
		quantizeByte(l.High),
	}
}

func quantizeByte(v float64) uint8 {
	if math.IsNaN(v) {
		return 0
	}
	return uint8(Clamp(math.Round(v*255), 0, 255))
}
