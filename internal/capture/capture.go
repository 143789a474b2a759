// Package capture turns PCM samples into byte-scaled magnitude frames the
// way a browser AnalyserNode does, so offline tools can drive the beat
// analyzer with the same input a visualizer host would see.
package capture

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-beat/dsp/core"
	"github.com/cwbudde/algo-beat/dsp/spectrum"
	"github.com/cwbudde/algo-beat/dsp/window"
)

// Config holds the analyser settings.
type Config struct {
	FFTSize int
	// Smoothing blends each new magnitude with the previous one:
	// prev*Smoothing + cur*(1-Smoothing).
	Smoothing float64
	// MinDecibels and MaxDecibels map linearly to byte values 0 and 255.
	MinDecibels float64
	MaxDecibels float64
	Window      window.Type
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig mirrors the AnalyserNode defaults with a 2048-point FFT.
func DefaultConfig() Config {
	return Config{
		FFTSize:     2048,
		Smoothing:   0.8,
		MinDecibels: -100,
		MaxDecibels: -30,
		Window:      window.TypeBlackman,
	}
}

// WithFFTSize sets the transform length. It must be a power of two >= 32.
func WithFFTSize(n int) Option {
	return func(c *Config) { c.FFTSize = n }
}

// WithSmoothing sets the time smoothing constant in [0, 1).
func WithSmoothing(s float64) Option {
	return func(c *Config) { c.Smoothing = s }
}

// WithDecibelRange sets the dB range mapped onto [0, 255].
func WithDecibelRange(minDB, maxDB float64) Option {
	return func(c *Config) {
		c.MinDecibels = minDB
		c.MaxDecibels = maxDB
	}
}

// WithWindow selects the analysis window.
func WithWindow(t window.Type) Option {
	return func(c *Config) { c.Window = t }
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.FFTSize < 32 || c.FFTSize&(c.FFTSize-1) != 0 {
		return fmt.Errorf("capture: fft size must be a power of two >= 32: %d", c.FFTSize)
	}
	if c.Smoothing < 0 || c.Smoothing >= 1 || !core.IsFinite(c.Smoothing) {
		return fmt.Errorf("capture: smoothing must be in [0, 1): %f", c.Smoothing)
	}
	if !core.IsFinite(c.MinDecibels) || !core.IsFinite(c.MaxDecibels) || c.MinDecibels >= c.MaxDecibels {
		return fmt.Errorf("capture: invalid decibel range [%f, %f]", c.MinDecibels, c.MaxDecibels)
	}
	return nil
}

// Analyser keeps the most recent FFTSize samples and produces smoothed
// magnitude spectra on demand. It is not safe for concurrent use.
type Analyser struct {
	cfg    Config
	plan   *algofft.Plan[complex128]
	window []float64

	ring  []float64
	write int

	frame    []float64
	spectrum []complex128
	input    []complex128
	mag      []float64
	smoothed []float64
}

// New creates an analyser. Options are applied on top of DefaultConfig.
func New(opts ...Option) (*Analyser, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	plan, err := algofft.NewPlan64(cfg.FFTSize)
	if err != nil {
		return nil, fmt.Errorf("capture: init fft plan: %w", err)
	}

	bins := cfg.FFTSize / 2
	return &Analyser{
		cfg:      cfg,
		plan:     plan,
		window:   window.Generate(cfg.Window, cfg.FFTSize, window.WithPeriodic()),
		ring:     make([]float64, cfg.FFTSize),
		frame:    make([]float64, cfg.FFTSize),
		spectrum: make([]complex128, cfg.FFTSize),
		input:    make([]complex128, cfg.FFTSize),
		mag:      make([]float64, bins),
		smoothed: make([]float64, bins),
	}, nil
}

// Config returns the analyser configuration.
func (a *Analyser) Config() Config { return a.cfg }

// FrequencyBinCount returns the number of bins in each frame, FFTSize/2.
func (a *Analyser) FrequencyBinCount() int { return len(a.smoothed) }

// Write appends PCM samples, nominally in [-1, 1]. Only the most recent
// FFTSize samples are kept.
func (a *Analyser) Write(samples []float64) {
	n := len(a.ring)
	if len(samples) >= n {
		copy(a.ring, samples[len(samples)-n:])
		a.write = 0
		return
	}
	for _, s := range samples {
		a.ring[a.write] = s
		a.write++
		if a.write == n {
			a.write = 0
		}
	}
}

// FloatFrequencyData runs one analysis step and writes up to
// FrequencyBinCount smoothed magnitudes in dB to dst. It returns the number
// of bins written. Silent bins report -Inf.
func (a *Analyser) FloatFrequencyData(dst []float64) (int, error) {
	if err := a.analyse(); err != nil {
		return 0, err
	}
	n := min(len(dst), len(a.smoothed))
	for i := range n {
		dst[i] = core.LinearToDB(a.smoothed[i])
	}
	return n, nil
}

// ByteFrequencyData runs one analysis step and writes up to
// FrequencyBinCount byte-scaled magnitudes in [0, 255] to dst. It returns
// the number of bins written.
func (a *Analyser) ByteFrequencyData(dst []float64) (int, error) {
	if err := a.analyse(); err != nil {
		return 0, err
	}
	n := min(len(dst), len(a.smoothed))
	scale := spectrum.FullScale / (a.cfg.MaxDecibels - a.cfg.MinDecibels)
	for i := range n {
		db := core.LinearToDB(a.smoothed[i])
		v := math.Floor(scale * (db - a.cfg.MinDecibels))
		// -Inf for silent bins clamps to 0.
		dst[i] = core.Clamp(v, 0, spectrum.FullScale)
	}
	return n, nil
}

// Reset clears the sample ring and the smoothing state.
func (a *Analyser) Reset() {
	clear(a.ring)
	clear(a.smoothed)
	a.write = 0
}

func (a *Analyser) analyse() error {
	n := len(a.ring)
	// Oldest sample first.
	copy(a.frame, a.ring[a.write:])
	copy(a.frame[n-a.write:], a.ring[:a.write])
	if err := window.ApplyCoefficientsInPlace(a.frame, a.window); err != nil {
		return fmt.Errorf("capture: window: %w", err)
	}

	for i, s := range a.frame {
		a.input[i] = complex(s, 0)
	}
	if err := a.plan.Forward(a.spectrum, a.input); err != nil {
		return fmt.Errorf("capture: fft: %w", err)
	}

	spectrum.MagnitudeInto(a.mag, a.spectrum)
	vecmath.ScaleBlock(a.mag, a.mag, 1/float64(n))

	k := a.cfg.Smoothing
	for i, m := range a.mag {
		if !core.IsFinite(m) {
			m = 0
		}
		a.smoothed[i] = k*a.smoothed[i] + (1-k)*m
	}
	return nil
}
