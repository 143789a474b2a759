package dynamics

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-beat/dsp/core"
)

const (
	defaultSoftLimiterThreshold   = 0.85
	defaultSoftLimiterReleaseStep = 0.05

	minSoftLimiterThreshold = 0.01
)

// maxSoftLimiterOutput is the largest value the compressed branch may return.
var maxSoftLimiterOutput = math.Nextafter(1, 0)

// SoftLimiterConfig holds the limiter tuning.
type SoftLimiterConfig struct {
	// Threshold is the level above which the soft knee engages.
	Threshold float64
	// ReleaseStep is the gain recovered per call below threshold.
	ReleaseStep float64
}

// DefaultSoftLimiterConfig returns threshold 0.85 and release step 0.05.
func DefaultSoftLimiterConfig() SoftLimiterConfig {
	return SoftLimiterConfig{
		Threshold:   defaultSoftLimiterThreshold,
		ReleaseStep: defaultSoftLimiterReleaseStep,
	}
}

// SoftLimiter keeps energies from transient peaks below 1.0.
//
// Above the threshold the excess is mapped through tanh into the remaining
// headroom, so the output approaches but never reaches 1.0. The limiter
// remembers the tightest gain it needed (fast attack) and releases it by a
// fixed step on every quiet call, which scales the following quiet values
// down for a short while instead of letting them jump back.
//
// A SoftLimiter is not safe for concurrent use.
type SoftLimiter struct {
	threshold     float64
	releaseStep   float64
	gainReduction float64
}

// NewSoftLimiter creates a limiter. The threshold is floored at 0.01. A
// threshold of 1 or more leaves no headroom for the knee; it falls back to
// the default, as do non-finite fields and a non-positive release step.
func NewSoftLimiter(cfg SoftLimiterConfig) *SoftLimiter {
	l := &SoftLimiter{
		threshold:     defaultSoftLimiterThreshold,
		releaseStep:   defaultSoftLimiterReleaseStep,
		gainReduction: 1,
	}
	if core.IsFinite(cfg.Threshold) && cfg.Threshold < 1 {
		l.threshold = floorThreshold(cfg.Threshold)
	}
	if cfg.ReleaseStep > 0 && core.IsFinite(cfg.ReleaseStep) {
		l.releaseStep = cfg.ReleaseStep
	}
	return l
}

// SetThreshold updates the knee threshold. Values below 0.01 are floored;
// values of 1 or more and non-finite values are rejected.
func (l *SoftLimiter) SetThreshold(threshold float64) error {
	if !core.IsFinite(threshold) || threshold >= 1 {
		return fmt.Errorf("soft limiter threshold must be finite and below 1: %f", threshold)
	}
	l.threshold = floorThreshold(threshold)
	return nil
}

// SetReleaseStep updates the per-call gain recovery.
func (l *SoftLimiter) SetReleaseStep(step float64) error {
	if step <= 0 || step > 1 || !core.IsFinite(step) {
		return fmt.Errorf("soft limiter release step must be in (0, 1]: %f", step)
	}
	l.releaseStep = step
	return nil
}

// Threshold returns the knee threshold.
func (l *SoftLimiter) Threshold() float64 { return l.threshold }

// ReleaseStep returns the per-call gain recovery.
func (l *SoftLimiter) ReleaseStep() float64 { return l.releaseStep }

// GainReduction returns the current gain factor in (0, 1]. Infinite input
// is limited but does not tighten it.
func (l *SoftLimiter) GainReduction() float64 { return l.gainReduction }

// Reset restores unity gain.
func (l *SoftLimiter) Reset() {
	l.gainReduction = 1
}

// Process limits a single energy value.
//
// Non-positive input releases the gain and returns 0. Input above the
// threshold returns the soft-knee value and tightens the gain reduction.
// Anything else releases the gain first and is then scaled by it.
func (l *SoftLimiter) Process(energy float64) float64 {
	if energy <= 0 {
		l.release()
		return 0
	}

	if energy > l.threshold {
		compressed := l.knee(energy)
		l.tighten(compressed, energy)
		return compressed
	}

	l.release()
	return energy * l.gainReduction
}

// ProcessBands limits all four levels with one shared gain reduction
// derived from their peak, so a transient in one band ducks every band and
// the balance between bands is preserved. Outputs are floored at 0.
func (l *SoftLimiter) ProcessBands(in core.Levels) core.Levels {
	peak := in.Peak()
	if peak > l.threshold {
		l.tighten(l.knee(peak), peak)
	} else {
		l.release()
	}

	out := in.Scale(l.gainReduction)
	out.Overall = floorZero(out.Overall)
	out.Bass = floorZero(out.Bass)
	out.Mid = floorZero(out.Mid)
	out.High = floorZero(out.High)
	return out
}

// knee maps x > threshold into (threshold, 1).
func (l *SoftLimiter) knee(x float64) float64 {
	headroom := 1 - l.threshold
	excess := x - l.threshold
	compressed := l.threshold + mathTanh(excess/l.threshold)*headroom
	return math.Min(compressed, maxSoftLimiterOutput)
}

// tighten lowers the gain to compressed/x. +Inf would drive it to 0.
func (l *SoftLimiter) tighten(compressed, x float64) {
	if core.IsFinite(x) {
		l.gainReduction = math.Min(l.gainReduction, compressed/x)
	}
}

func (l *SoftLimiter) release() {
	l.gainReduction = math.Min(l.gainReduction+l.releaseStep, 1)
}

func floorThreshold(v float64) float64 {
	return math.Max(v, minSoftLimiterThreshold)
}

func floorZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
