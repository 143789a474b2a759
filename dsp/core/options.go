package core

// SpectrumConfig describes the analysis spectrum a magnitude frame was taken
// from. Bin geometry is derived from these constants, not from the length of
// the frame that is actually delivered.
type SpectrumConfig struct {
	SampleRate float64
	FFTSize    int
}

// SpectrumOption mutates a SpectrumConfig.
type SpectrumOption func(*SpectrumConfig)

// DefaultSpectrumConfig returns the capture settings of a browser
// AnalyserNode at 48 kHz with a 2048-point FFT.
func DefaultSpectrumConfig() SpectrumConfig {
	return SpectrumConfig{
		SampleRate: 48000,
		FFTSize:    2048,
	}
}

// WithSampleRate sets the capture sample rate.
func WithSampleRate(sampleRate float64) SpectrumOption {
	return func(cfg *SpectrumConfig) {
		if sampleRate > 0 && IsFinite(sampleRate) {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithFFTSize sets the FFT length used by the capture side.
func WithFFTSize(fftSize int) SpectrumOption {
	return func(cfg *SpectrumConfig) {
		if fftSize >= 2 {
			cfg.FFTSize = fftSize
		}
	}
}

// ApplySpectrumOptions applies zero or more options to the default config.
func ApplySpectrumOptions(opts ...SpectrumOption) SpectrumConfig {
	cfg := DefaultSpectrumConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Nyquist returns half the sample rate.
func (c SpectrumConfig) Nyquist() float64 {
	return c.SampleRate / 2
}

// BinWidth returns the width of one spectrum bin in Hz:
// (sampleRate/2) / (fftSize/2).
func (c SpectrumConfig) BinWidth() float64 {
	return c.Nyquist() / (float64(c.FFTSize) / 2)
}
