package tempo

import "math"

// reportInterval is the window in milliseconds over which frames are
// counted.
const reportInterval = 1000.0

// FrameRate measures the host's callback rate from timestamps. It is not
// safe for concurrent use.
type FrameRate struct {
	frames  int
	start   float64
	started bool
	fps     int
	ready   bool
}

// NewFrameRate creates a tracker with no measurement.
func NewFrameRate() *FrameRate {
	return &FrameRate{}
}

// Tick counts one frame at timestampMs. Once at least one second has passed
// since the window opened, the rate is updated, the window restarts at
// timestampMs and a report is flagged.
func (f *FrameRate) Tick(timestampMs float64) {
	f.frames++
	if !f.started {
		f.start = timestampMs
		f.started = true
	}

	elapsed := timestampMs - f.start
	if elapsed >= reportInterval {
		f.fps = int(math.Round(float64(f.frames) * 1000 / elapsed))
		f.frames = 0
		f.start = timestampMs
		f.ready = true
	}
}

// FPS returns the last measured rate, or 0 before the first report.
func (f *FrameRate) FPS() int { return f.fps }

// ReportReady reports whether a new measurement is available.
func (f *FrameRate) ReportReady() bool { return f.ready }

// ClearReport acknowledges the current measurement.
func (f *FrameRate) ClearReport() { f.ready = false }

// Reset discards all measurements.
func (f *FrameRate) Reset() {
	*f = FrameRate{}
}
