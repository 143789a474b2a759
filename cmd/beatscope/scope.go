package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/cwbudde/algo-beat/config"
	"github.com/cwbudde/algo-beat/dsp/core"
	"github.com/cwbudde/algo-beat/dsp/dynamics"
	"github.com/cwbudde/algo-beat/internal/capture"
	"github.com/cwbudde/algo-beat/measure/beat"
	"github.com/cwbudde/algo-beat/measure/tempo"
	"github.com/cwbudde/algo-beat/stats/level"
)

// dbFloor replaces -Inf levels in reports, which JSON cannot carry.
const dbFloor = -120.0

// frameReport is one analysed frame as printed by the reporters.
type frameReport struct {
	Frame    int         `json:"frame"`
	TimeMs   float64     `json:"time_ms"`
	Levels   core.Levels `json:"levels"`
	Wire     [4]uint8    `json:"wire"`
	Beat     beat.Flags  `json:"beat"`
	Impulse  float64     `json:"impulse"`
	Dominant float64     `json:"dominant_hz"`
	BPM      int         `json:"bpm"`
	Phase    string      `json:"phase"`
}

// summary is the end-of-run digest.
type summary struct {
	Frames   int     `json:"frames"`
	Beats    int     `json:"beats"`
	BPM      int     `json:"bpm"`
	FPS      int     `json:"fps"`
	PeakDBFS float64 `json:"peak_dbfs"`
	RMSDBFS  float64 `json:"rms_dbfs"`
	Clipped  int     `json:"clipped"`
}

// scope wires the capture stage, the analyzer, the limiter and the tempo
// trackers the way a visualizer host does once per rendered frame.
type scope struct {
	capture   *capture.Analyser
	analyzer  *beat.Analyzer
	limiter   *dynamics.SoftLimiter
	estimator *tempo.Estimator
	rate      *tempo.FrameRate
	meter     *level.Meter
	logger    *slog.Logger

	fps         float64
	sensitivity float64
	frame       []float64
	frames      int
	beats       int
}

func newScope(cfg config.Config, fps, sensitivity float64, logger *slog.Logger) (*scope, error) {
	if fps <= 0 || !core.IsFinite(fps) {
		return nil, fmt.Errorf("fps must be positive: %f", fps)
	}

	capOpts, err := cfg.CaptureOptions()
	if err != nil {
		return nil, err
	}
	c, err := capture.New(capOpts...)
	if err != nil {
		return nil, err
	}

	if sensitivity == 0 {
		sensitivity = cfg.Sensitivity()
	}

	s := &scope{
		capture:     c,
		analyzer:    beat.NewAnalyzer(cfg.AnalyzerOptions()...),
		estimator:   tempo.NewEstimator(cfg.TempoOptions()...),
		rate:        tempo.NewFrameRate(),
		meter:       level.NewMeter(),
		logger:      logger,
		fps:         fps,
		sensitivity: beat.ClampSensitivity(sensitivity),
		frame:       make([]float64, c.FrequencyBinCount()),
	}
	if cfg.Limiter.Enabled {
		s.limiter = dynamics.NewSoftLimiter(cfg.LimiterConfig())
	}
	return s, nil
}

// hop returns the number of samples between frames at sampleRate.
func (s *scope) hop(sampleRate int) int {
	return max(1, int(math.Round(float64(sampleRate)/s.fps)))
}

// step consumes one hop of samples and analyses the resulting frame.
func (s *scope) step(block []float64) (frameReport, error) {
	s.meter.Update(block)
	s.capture.Write(block)
	if _, err := s.capture.ByteFrequencyData(s.frame); err != nil {
		return frameReport{}, err
	}

	timeMs := float64(s.frames) * 1000 / s.fps
	s.rate.Tick(timeMs)
	if s.rate.ReportReady() {
		s.logger.Debug("frame rate", "fps", s.rate.FPS(), "frame", s.frames)
		s.rate.ClearReport()
	}
	s.estimator.Tick()

	res := s.analyzer.Analyze(s.frame, s.sensitivity)
	if res.Beat.Bass {
		s.estimator.RecordBeat(s.estimator.FrameCount(), s.measuredFPS())
	}
	if res.Beat.Overall {
		s.beats++
		if s.logger.Enabled(context.Background(), slog.LevelDebug) {
			s.logger.Debug("beat", "frame", s.frames, "bass", res.Bass,
				"recent_bass", historyMean(s.analyzer.History()).Bass)
		}
	}

	levels := res.Levels()
	if s.limiter != nil {
		levels = s.limiter.ProcessBands(levels)
	}

	rep := frameReport{
		Frame:    s.frames,
		TimeMs:   timeMs,
		Levels:   levels,
		Wire:     levels.Quantize(),
		Beat:     res.Beat,
		Impulse:  res.Impulse.Overall,
		Dominant: res.DominantFrequency,
		BPM:      s.estimator.BPM(),
		Phase:    s.analyzer.Phase().String(),
	}
	s.frames++
	return rep, nil
}

// measuredFPS prefers the tracked rate and falls back to the nominal one
// before the first measurement.
func (s *scope) measuredFPS() float64 {
	if fps := s.rate.FPS(); fps > 0 {
		return float64(fps)
	}
	return s.fps
}

func (s *scope) summary() summary {
	lv := s.meter.Result()
	return summary{
		Frames:   s.frames,
		Beats:    s.beats,
		BPM:      s.estimator.BPM(),
		FPS:      s.rate.FPS(),
		PeakDBFS: math.Max(lv.PeakdB, dbFloor),
		RMSDBFS:  math.Max(lv.RMSdB, dbFloor),
		Clipped:  lv.Clipped,
	}
}

// historyMean averages the analyzer's raw energy history.
func historyMean(h []core.Levels) core.Levels {
	var sum core.Levels
	if len(h) == 0 {
		return sum
	}
	for _, l := range h {
		sum.Overall += l.Overall
		sum.Bass += l.Bass
		sum.Mid += l.Mid
		sum.High += l.High
	}
	return sum.Scale(1 / float64(len(h)))
}
