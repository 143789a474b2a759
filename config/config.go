// Package config loads analyzer, limiter, tempo and capture tunings from
// TOML so alternative presets can be swapped without code changes.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/cwbudde/algo-beat/dsp/core"
	"github.com/cwbudde/algo-beat/dsp/dynamics"
	"github.com/cwbudde/algo-beat/dsp/window"
	"github.com/cwbudde/algo-beat/internal/capture"
	"github.com/cwbudde/algo-beat/measure/beat"
	"github.com/cwbudde/algo-beat/measure/tempo"
)

// Spectrum describes the capture geometry shared by all frames.
type Spectrum struct {
	SampleRate float64 `toml:"sample_rate"`
	FFTSize    int     `toml:"fft_size"`
}

// Threshold is a per-band detection rule.
type Threshold struct {
	Deviation float64 `toml:"deviation"`
	Floor     float64 `toml:"floor"`
}

// Analyzer holds the beat detector tuning.
type Analyzer struct {
	SmoothingFast   float64   `toml:"smoothing_fast"`
	SmoothingVisual float64   `toml:"smoothing_visual"`
	DecayKnee       float64   `toml:"decay_knee"`
	ImpulseDecay    float64   `toml:"impulse_decay"`
	BaselineRate    float64   `toml:"baseline_rate"`
	WarmupRate      float64   `toml:"warmup_rate"`
	WarmupCalls     int       `toml:"warmup_calls"`
	CooldownCalls   int       `toml:"cooldown_calls"`
	HistorySize     int       `toml:"history_size"`
	Bass            Threshold `toml:"bass"`
	Mid             Threshold `toml:"mid"`
	High            Threshold `toml:"high"`
}

// Limiter holds the soft limiter settings.
type Limiter struct {
	Enabled     bool    `toml:"enabled"`
	Threshold   float64 `toml:"threshold"`
	ReleaseStep float64 `toml:"release_step"`
}

// Tempo holds the BPM estimator settings.
type Tempo struct {
	Capacity int     `toml:"capacity"`
	MinBPM   int     `toml:"min_bpm"`
	MaxBPM   int     `toml:"max_bpm"`
	MinFPS   float64 `toml:"min_fps"`
}

// Capture holds the PCM-to-frame harness settings.
type Capture struct {
	Smoothing   float64 `toml:"smoothing"`
	MinDecibels float64 `toml:"min_decibels"`
	MaxDecibels float64 `toml:"max_decibels"`
	Window      string  `toml:"window"`
}

// Policy holds host-side runtime settings.
type Policy struct {
	Sensitivity float64 `toml:"sensitivity"`
}

// Config is the complete tuning document.
type Config struct {
	Spectrum Spectrum `toml:"spectrum"`
	Analyzer Analyzer `toml:"analyzer"`
	Limiter  Limiter  `toml:"limiter"`
	Tempo    Tempo    `toml:"tempo"`
	Capture  Capture  `toml:"capture"`
	Policy   Policy   `toml:"policy"`
}

// Default returns the built-in tuning. Every package default is reflected
// here, so a file only needs the keys it overrides.
func Default() Config {
	bc := beat.DefaultConfig()
	lc := dynamics.DefaultSoftLimiterConfig()
	tc := tempo.DefaultConfig()
	cc := capture.DefaultConfig()

	return Config{
		Spectrum: Spectrum{
			SampleRate: bc.SampleRate,
			FFTSize:    bc.FFTSize,
		},
		Analyzer: Analyzer{
			SmoothingFast:   bc.SmoothingFast,
			SmoothingVisual: bc.SmoothingVisual,
			DecayKnee:       bc.DecayKnee,
			ImpulseDecay:    bc.ImpulseDecay,
			BaselineRate:    bc.BaselineRate,
			WarmupRate:      bc.WarmupRate,
			WarmupCalls:     bc.WarmupCalls,
			CooldownCalls:   bc.CooldownCalls,
			HistorySize:     bc.HistorySize,
			Bass:            Threshold(bc.Bass),
			Mid:             Threshold(bc.Mid),
			High:            Threshold(bc.High),
		},
		Limiter: Limiter{
			Enabled:     true,
			Threshold:   lc.Threshold,
			ReleaseStep: lc.ReleaseStep,
		},
		Tempo: Tempo{
			Capacity: tc.Capacity,
			MinBPM:   tc.MinBPM,
			MaxBPM:   tc.MaxBPM,
			MinFPS:   tc.MinFPS,
		},
		Capture: Capture{
			Smoothing:   cc.Smoothing,
			MinDecibels: cc.MinDecibels,
			MaxDecibels: cc.MaxDecibels,
			Window:      cc.Window.String(),
		},
		Policy: Policy{Sensitivity: 1},
	}
}

// Load reads and validates the TOML file at path on top of Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a TOML document on top of Default. Unknown
// keys are rejected so that typos do not silently fall back to defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("decode: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Encode writes cfg as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate checks every section against the ranges of the package it
// configures.
func (c Config) Validate() error {
	if err := c.AnalyzerConfig().Validate(); err != nil {
		return err
	}
	if t := c.Limiter.Threshold; !core.IsFinite(t) || t <= 0 || t >= 1 {
		return fmt.Errorf("config: limiter threshold must be in (0, 1): %f", t)
	}
	if s := c.Limiter.ReleaseStep; !core.IsFinite(s) || s <= 0 || s > 1 {
		return fmt.Errorf("config: limiter release step must be in (0, 1]: %f", s)
	}
	if c.Tempo.Capacity < 2 {
		return fmt.Errorf("config: tempo capacity must be at least 2: %d", c.Tempo.Capacity)
	}
	if c.Tempo.MinBPM <= 0 || c.Tempo.MaxBPM < c.Tempo.MinBPM {
		return fmt.Errorf("config: invalid bpm range [%d, %d]", c.Tempo.MinBPM, c.Tempo.MaxBPM)
	}
	if c.Tempo.MinFPS <= 0 || !core.IsFinite(c.Tempo.MinFPS) {
		return fmt.Errorf("config: tempo min fps must be positive: %f", c.Tempo.MinFPS)
	}
	if _, err := c.CaptureOptions(); err != nil {
		return err
	}
	if s := c.Policy.Sensitivity; !core.IsFinite(s) || s <= 0 {
		return fmt.Errorf("config: sensitivity must be positive: %f", s)
	}
	return nil
}

// AnalyzerConfig converts the spectrum and analyzer sections.
func (c Config) AnalyzerConfig() beat.Config {
	return beat.Config{
		SpectrumConfig: core.SpectrumConfig{
			SampleRate: c.Spectrum.SampleRate,
			FFTSize:    c.Spectrum.FFTSize,
		},
		SmoothingFast:   c.Analyzer.SmoothingFast,
		SmoothingVisual: c.Analyzer.SmoothingVisual,
		DecayKnee:       c.Analyzer.DecayKnee,
		ImpulseDecay:    c.Analyzer.ImpulseDecay,
		BaselineRate:    c.Analyzer.BaselineRate,
		WarmupRate:      c.Analyzer.WarmupRate,
		WarmupCalls:     c.Analyzer.WarmupCalls,
		CooldownCalls:   c.Analyzer.CooldownCalls,
		HistorySize:     c.Analyzer.HistorySize,
		Bass:            beat.BandThreshold(c.Analyzer.Bass),
		Mid:             beat.BandThreshold(c.Analyzer.Mid),
		High:            beat.BandThreshold(c.Analyzer.High),
	}
}

// AnalyzerOptions returns the options that configure a beat.Analyzer.
func (c Config) AnalyzerOptions() []beat.Option {
	return []beat.Option{beat.WithConfig(c.AnalyzerConfig())}
}

// LimiterConfig converts the limiter section.
func (c Config) LimiterConfig() dynamics.SoftLimiterConfig {
	return dynamics.SoftLimiterConfig{
		Threshold:   c.Limiter.Threshold,
		ReleaseStep: c.Limiter.ReleaseStep,
	}
}

// TempoOptions returns the options that configure a tempo.Estimator.
func (c Config) TempoOptions() []tempo.Option {
	return []tempo.Option{
		tempo.WithCapacity(c.Tempo.Capacity),
		tempo.WithBPMRange(c.Tempo.MinBPM, c.Tempo.MaxBPM),
		tempo.WithMinFPS(c.Tempo.MinFPS),
	}
}

// CaptureOptions returns the options that configure a capture.Analyser.
func (c Config) CaptureOptions() ([]capture.Option, error) {
	win, err := window.ParseType(c.Capture.Window)
	if err != nil {
		return nil, fmt.Errorf("config: capture: %w", err)
	}
	opts := []capture.Option{
		capture.WithFFTSize(c.Spectrum.FFTSize),
		capture.WithSmoothing(c.Capture.Smoothing),
		capture.WithDecibelRange(c.Capture.MinDecibels, c.Capture.MaxDecibels),
		capture.WithWindow(win),
	}

	probe := capture.DefaultConfig()
	for _, opt := range opts {
		opt(&probe)
	}
	if err := probe.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return opts, nil
}

// Sensitivity returns the policy sensitivity clamped to the supported
// range.
func (c Config) Sensitivity() float64 {
	return beat.ClampSensitivity(c.Policy.Sensitivity)
}

// ErrNoPath is returned by Resolve when neither a flag nor the environment
// names a file.
var ErrNoPath = errors.New("config: no configuration path")

// Resolve picks the configuration path from flagValue, falling back to the
// environment variable env.
func Resolve(flagValue, env string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		return v, nil
	}
	return "", ErrNoPath
}
