package beat

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-beat/dsp/core"
)

const (
	minSensitivity = 0.05
	maxSensitivity = 10.0
)

// BandThreshold is the detection rule for one band: a beat needs the
// sensitivity-scaled rise above the baseline to exceed Deviation and the
// fast energy itself to exceed Floor.
type BandThreshold struct {
	Deviation float64
	Floor     float64
}

// Config holds the analyzer tuning. The defaults were tuned for
// kick-driven dance music; alternative tunings can be substituted without
// touching the detection code.
type Config struct {
	core.SpectrumConfig

	// SmoothingFast is the new-value weight of the detection track.
	SmoothingFast float64
	// SmoothingVisual is the new-value weight of the reported track.
	SmoothingVisual float64
	// DecayKnee is the level below which the visual track is squashed
	// quadratically (v*v/knee) on every update. Zero disables the squash.
	DecayKnee float64
	// ImpulseDecay multiplies every impulse on calls without a beat.
	ImpulseDecay float64

	// BaselineRate is the baseline update weight once calibrated.
	BaselineRate float64
	// WarmupRate is the baseline update weight during warmup.
	WarmupRate float64
	// WarmupCalls is the number of initial calls with detection disabled.
	WarmupCalls int
	// CooldownCalls is the number of calls suppressed after a bass beat.
	CooldownCalls int

	// HistorySize is the length of the raw energy history ring.
	HistorySize int

	Bass BandThreshold
	Mid  BandThreshold
	High BandThreshold
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		SpectrumConfig:  core.DefaultSpectrumConfig(),
		SmoothingFast:   0.45,
		SmoothingVisual: 0.30,
		DecayKnee:       0.06,
		ImpulseDecay:    0.65,
		BaselineRate:    0.02,
		WarmupRate:      0.15,
		WarmupCalls:     30,
		CooldownCalls:   3,
		HistorySize:     43,
		Bass:            BandThreshold{Deviation: 0.06, Floor: 0.25},
		Mid:             BandThreshold{Deviation: 0.08, Floor: 0.20},
		High:            BandThreshold{Deviation: 0.08, Floor: 0.20},
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Validate reports the first field outside its allowed range.
func (c Config) Validate() error {
	if c.SampleRate <= 0 || !core.IsFinite(c.SampleRate) {
		return fmt.Errorf("beat: sample rate must be positive and finite: %f", c.SampleRate)
	}
	if c.FFTSize < 2 {
		return fmt.Errorf("beat: fft size must be at least 2: %d", c.FFTSize)
	}
	if !isUnitWeight(c.SmoothingFast) {
		return fmt.Errorf("beat: fast smoothing must be in (0, 1]: %f", c.SmoothingFast)
	}
	if !isUnitWeight(c.SmoothingVisual) {
		return fmt.Errorf("beat: visual smoothing must be in (0, 1]: %f", c.SmoothingVisual)
	}
	if c.DecayKnee < 0 || !core.IsFinite(c.DecayKnee) {
		return fmt.Errorf("beat: decay knee must be non-negative: %f", c.DecayKnee)
	}
	if c.ImpulseDecay < 0 || c.ImpulseDecay >= 1 || !core.IsFinite(c.ImpulseDecay) {
		return fmt.Errorf("beat: impulse decay must be in [0, 1): %f", c.ImpulseDecay)
	}
	if !isUnitWeight(c.BaselineRate) {
		return fmt.Errorf("beat: baseline rate must be in (0, 1]: %f", c.BaselineRate)
	}
	if !isUnitWeight(c.WarmupRate) {
		return fmt.Errorf("beat: warmup rate must be in (0, 1]: %f", c.WarmupRate)
	}
	if c.WarmupCalls < 0 {
		return fmt.Errorf("beat: warmup calls must be non-negative: %d", c.WarmupCalls)
	}
	if c.CooldownCalls < 0 {
		return fmt.Errorf("beat: cooldown calls must be non-negative: %d", c.CooldownCalls)
	}
	if c.HistorySize < 1 {
		return fmt.Errorf("beat: history size must be positive: %d", c.HistorySize)
	}

	return errors.Join(
		validateThreshold("bass", c.Bass),
		validateThreshold("mid", c.Mid),
		validateThreshold("high", c.High),
	)
}

// WithSampleRate sets the capture sample rate used for bin geometry.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *Config) {
		core.WithSampleRate(sampleRate)(&cfg.SpectrumConfig)
	}
}

// WithFFTSize sets the capture FFT size used for bin geometry.
func WithFFTSize(fftSize int) Option {
	return func(cfg *Config) {
		core.WithFFTSize(fftSize)(&cfg.SpectrumConfig)
	}
}

// WithSmoothing sets the new-value weights of the fast and visual tracks.
// Each weight must lie in (0, 1]; invalid weights are ignored.
func WithSmoothing(fast, visual float64) Option {
	return func(cfg *Config) {
		if isUnitWeight(fast) {
			cfg.SmoothingFast = fast
		}
		if isUnitWeight(visual) {
			cfg.SmoothingVisual = visual
		}
	}
}

// WithDecayKnee sets the quadratic squash level of the visual track.
func WithDecayKnee(knee float64) Option {
	return func(cfg *Config) {
		if knee >= 0 && core.IsFinite(knee) {
			cfg.DecayKnee = knee
		}
	}
}

// WithImpulseDecay sets the per-call impulse decay factor in [0, 1).
func WithImpulseDecay(decay float64) Option {
	return func(cfg *Config) {
		if decay >= 0 && decay < 1 {
			cfg.ImpulseDecay = decay
		}
	}
}

// WithBaselineRate sets the calibrated baseline update weight.
func WithBaselineRate(rate float64) Option {
	return func(cfg *Config) {
		if isUnitWeight(rate) {
			cfg.BaselineRate = rate
		}
	}
}

// WithWarmup sets the warmup length and its baseline update weight.
func WithWarmup(calls int, rate float64) Option {
	return func(cfg *Config) {
		if calls >= 0 {
			cfg.WarmupCalls = calls
		}
		if isUnitWeight(rate) {
			cfg.WarmupRate = rate
		}
	}
}

// WithCooldown sets the number of calls suppressed after a bass beat.
func WithCooldown(calls int) Option {
	return func(cfg *Config) {
		if calls >= 0 {
			cfg.CooldownCalls = calls
		}
	}
}

// WithHistorySize sets the length of the raw energy history.
func WithHistorySize(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.HistorySize = n
		}
	}
}

// WithThresholds replaces the per-band detection rules. Rules with negative
// or non-finite fields are ignored.
func WithThresholds(bass, mid, high BandThreshold) Option {
	return func(cfg *Config) {
		if validateThreshold("", bass) == nil {
			cfg.Bass = bass
		}
		if validateThreshold("", mid) == nil {
			cfg.Mid = mid
		}
		if validateThreshold("", high) == nil {
			cfg.High = high
		}
	}
}

// WithConfig replaces the whole configuration. An invalid config is
// ignored.
func WithConfig(c Config) Option {
	return func(cfg *Config) {
		if c.Validate() == nil {
			*cfg = c
		}
	}
}

// ClampSensitivity limits a host-supplied sensitivity to [0.05, 10].
// NaN maps to 1.
func ClampSensitivity(v float64) float64 {
	if v != v {
		return 1
	}
	return core.Clamp(v, minSensitivity, maxSensitivity)
}

func (c *Config) threshold(b band) BandThreshold {
	switch b {
	case bandBass:
		return c.Bass
	case bandMid:
		return c.Mid
	default:
		return c.High
	}
}

func isUnitWeight(w float64) bool {
	return w > 0 && w <= 1
}

func validateThreshold(name string, t BandThreshold) error {
	if t.Deviation < 0 || !core.IsFinite(t.Deviation) {
		return fmt.Errorf("beat: %s deviation must be non-negative and finite: %f", name, t.Deviation)
	}
	if t.Floor < 0 || !core.IsFinite(t.Floor) {
		return fmt.Errorf("beat: %s floor must be non-negative and finite: %f", name, t.Floor)
	}
	return nil
}
