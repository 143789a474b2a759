package tempo

// Config holds the estimator settings.
type Config struct {
	// Capacity is the number of most recent beats kept.
	Capacity int
	// MinBPM and MaxBPM bound the accepted estimate. Estimates outside the
	// range report 0.
	MinBPM int
	MaxBPM int
	// MinFPS floors the frame rate used to convert intervals.
	MinFPS float64
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns capacity 16, range [40, 240] and a 10 fps floor.
func DefaultConfig() Config {
	return Config{
		Capacity: 16,
		MinBPM:   40,
		MaxBPM:   240,
		MinFPS:   10,
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

// WithCapacity sets the number of beats kept. Values below 2 are ignored.
func WithCapacity(n int) Option {
	return func(cfg *Config) {
		if n >= 2 {
			cfg.Capacity = n
		}
	}
}

// WithBPMRange sets the accepted estimate range. An empty or non-positive
// range is ignored.
func WithBPMRange(lo, hi int) Option {
	return func(cfg *Config) {
		if lo > 0 && hi >= lo {
			cfg.MinBPM = lo
			cfg.MaxBPM = hi
		}
	}
}

// WithMinFPS sets the frame rate floor. Non-positive values are ignored.
func WithMinFPS(fps float64) Option {
	return func(cfg *Config) {
		if fps > 0 {
			cfg.MinFPS = fps
		}
	}
}
