package tempo

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// minBeats is the number of beats needed before an estimate is made.
const minBeats = 3

// Estimator derives BPM from the mean interval between recent beats. It is
// not safe for concurrent use.
type Estimator struct {
	cfg       Config
	beats     []int
	intervals []float64
	bpm       int
	frames    int
}

// NewEstimator creates an estimator with no beats and a BPM of 0.
func NewEstimator(opts ...Option) *Estimator {
	cfg := ApplyOptions(opts...)
	return &Estimator{
		cfg:       cfg,
		beats:     make([]int, 0, cfg.Capacity),
		intervals: make([]float64, 0, cfg.Capacity-1),
	}
}

// Config returns the estimator configuration.
func (e *Estimator) Config() Config { return e.cfg }

// Tick advances the frame counter by one.
func (e *Estimator) Tick() { e.frames++ }

// FrameCount returns the number of Tick calls since creation or Reset.
func (e *Estimator) FrameCount() int { return e.frames }

// BPM returns the last accepted estimate, 0 when out of range, or 0 before
// any estimate.
func (e *Estimator) BPM() int { return e.bpm }

// Beats returns a copy of the recorded beat frames, oldest first.
func (e *Estimator) Beats() []int {
	out := make([]int, len(e.beats))
	copy(out, e.beats)
	return out
}

// RecordBeat appends a beat at frame and recomputes the estimate using fps
// to convert frame intervals into seconds. The oldest beat is evicted when
// the ring is full. Frames are not required to increase; a non-positive
// mean interval leaves the estimate unchanged.
func (e *Estimator) RecordBeat(frame int, fps float64) {
	if len(e.beats) == e.cfg.Capacity {
		copy(e.beats, e.beats[1:])
		e.beats = e.beats[:len(e.beats)-1]
	}
	e.beats = append(e.beats, frame)
	e.recalculate(fps)
}

// Reset clears beats, frame count and estimate.
func (e *Estimator) Reset() {
	e.beats = e.beats[:0]
	e.intervals = e.intervals[:0]
	e.bpm = 0
	e.frames = 0
}

func (e *Estimator) recalculate(fps float64) {
	if len(e.beats) < minBeats {
		return
	}
	// NaN compares false here, so it falls through to the range check and
	// yields 0.
	if fps < e.cfg.MinFPS {
		fps = e.cfg.MinFPS
	}

	e.intervals = e.intervals[:0]
	for i := 1; i < len(e.beats); i++ {
		e.intervals = append(e.intervals, float64(e.beats[i]-e.beats[i-1]))
	}
	mean := stat.Mean(e.intervals, nil)
	if mean <= 0 {
		return
	}

	bpm := math.Round(60 / (mean / fps))
	if bpm >= float64(e.cfg.MinBPM) && bpm <= float64(e.cfg.MaxBPM) {
		e.bpm = int(bpm)
	} else {
		e.bpm = 0
	}
}
