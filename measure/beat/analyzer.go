package beat

import (
	"github.com/cwbudde/algo-beat/dsp/core"
	"github.com/cwbudde/algo-beat/dsp/spectrum"
)

type band int

const (
	bandBass band = iota
	bandMid
	bandHigh
	numBands
)

// track is a pair of moving averages over one energy series.
type track struct {
	fast   float64
	visual float64
}

// update advances both averages. Below the knee the visual track is
// squashed quadratically and keeps the squashed value.
func (t *track) update(raw float64, cfg *Config) {
	t.fast = core.Lerp(t.fast, raw, cfg.SmoothingFast)
	t.visual = core.Lerp(t.visual, raw, cfg.SmoothingVisual)
	if knee := cfg.DecayKnee; t.visual < knee {
		t.visual = t.visual * t.visual / knee
	}
}

type bandState struct {
	track
	baseline float64
	beat     bool
	impulse  float64
}

// Analyzer detects beats in successive magnitude frames. It is not safe
// for concurrent use; feed it from a single goroutine.
type Analyzer struct {
	cfg     Config
	mapper  *spectrum.Mapper
	scratch []float64

	gate    gate
	bands   [numBands]bandState
	overall track
	impulse float64
	history history
}

// NewAnalyzer creates an analyzer in the warmup phase.
func NewAnalyzer(opts ...Option) *Analyzer {
	cfg := ApplyOptions(opts...)
	a := &Analyzer{
		cfg: cfg,
		mapper: spectrum.NewMapper(
			core.WithSampleRate(cfg.SampleRate),
			core.WithFFTSize(cfg.FFTSize),
		),
		history: newHistory(cfg.HistorySize),
	}
	a.gate = newGate(cfg.WarmupCalls)
	return a
}

// Config returns the analyzer configuration.
func (a *Analyzer) Config() Config { return a.cfg }

// Mapper returns the band mapper used to split frames.
func (a *Analyzer) Mapper() *spectrum.Mapper { return a.mapper }

// Phase returns the current detector phase.
func (a *Analyzer) Phase() Phase { return a.gate.phase }

// Remaining returns the calls left in the warmup or cooldown phase, or 0
// when active.
func (a *Analyzer) Remaining() int { return a.gate.remaining }

// Baseline returns the per-band baselines. Overall is always zero; no
// baseline is tracked for it.
func (a *Analyzer) Baseline() core.Levels {
	return core.Levels{
		Bass: a.bands[bandBass].baseline,
		Mid:  a.bands[bandMid].baseline,
		High: a.bands[bandHigh].baseline,
	}
}

// History returns a copy of the raw per-call energies, oldest first.
func (a *Analyzer) History() []core.Levels {
	return a.history.snapshot()
}

// Reset returns the analyzer to its initial warmup state.
func (a *Analyzer) Reset() {
	a.bands = [numBands]bandState{}
	a.overall = track{}
	a.impulse = 0
	a.history.reset()
	a.gate = newGate(a.cfg.WarmupCalls)
}

// Analyze processes one byte-scaled magnitude frame (values nominally in
// [0, 255]). sensitivity scales the deviation from the baseline before it is
// compared with the band thresholds; hosts usually pass it through
// [ClampSensitivity] first.
//
// An empty frame returns a zero Result and leaves the state untouched.
func (a *Analyzer) Analyze(frame []float64, sensitivity float64) Result {
	if len(frame) == 0 {
		return Result{}
	}

	split := a.mapper.Split(frame)
	var raw [numBands]float64
	raw[bandBass], a.scratch = spectrum.Energy(split.Bass, spectrum.FullScale, a.scratch)
	raw[bandMid], a.scratch = spectrum.Energy(split.Mid, spectrum.FullScale, a.scratch)
	raw[bandHigh], a.scratch = spectrum.Energy(split.High, spectrum.FullScale, a.scratch)

	var rawOverall float64
	rawOverall, a.scratch = spectrum.Energy(frame, spectrum.FullScale, a.scratch)

	for i := range a.bands {
		a.bands[i].update(raw[i], &a.cfg)
	}
	a.overall.update(rawOverall, &a.cfg)

	overallBeat := a.detect(sensitivity)
	a.updateImpulses(overallBeat)

	a.history.push(core.Levels{
		Overall: rawOverall,
		Bass:    raw[bandBass],
		Mid:     raw[bandMid],
		High:    raw[bandHigh],
	})

	return Result{
		Bass:              a.bands[bandBass].visual,
		Mid:               a.bands[bandMid].visual,
		High:              a.bands[bandHigh].visual,
		Overall:           a.overall.visual,
		DominantFrequency: a.mapper.BinFrequency(spectrum.PeakBin(frame)),
		Beat: Flags{
			Overall: overallBeat,
			Bass:    a.bands[bandBass].beat,
			Mid:     a.bands[bandMid].beat,
			High:    a.bands[bandHigh].beat,
		},
		Impulse: Impulses{
			Overall: a.impulse,
			Bass:    a.bands[bandBass].impulse,
			Mid:     a.bands[bandMid].impulse,
			High:    a.bands[bandHigh].impulse,
		},
		Bands: split,
	}
}

// detect advances the phase machine and sets the per-band beat flags. It
// returns the overall beat, which follows the bass band.
func (a *Analyzer) detect(sensitivity float64) bool {
	switch a.gate.phase {
	case PhaseWarmup:
		a.gate.step()
		a.suppress(a.cfg.WarmupRate)
		return false
	case PhaseCooldown:
		a.gate.step()
		a.suppress(a.cfg.BaselineRate)
		return false
	}

	for i := range a.bands {
		b := &a.bands[i]
		// Baseline holds while the previous call's flag is set.
		if !b.beat {
			b.baseline = core.Lerp(b.baseline, b.fast, a.cfg.BaselineRate)
		}
		th := a.cfg.threshold(band(i))
		deviation := (b.fast - b.baseline) * sensitivity
		b.beat = deviation > th.Deviation && b.fast > th.Floor
	}

	overall := a.bands[bandBass].beat
	if overall {
		a.gate.enter(PhaseCooldown, a.cfg.CooldownCalls)
	}
	return overall
}

// suppress clears all beat flags and moves every baseline toward its fast
// track at rate.
func (a *Analyzer) suppress(rate float64) {
	for i := range a.bands {
		b := &a.bands[i]
		b.baseline = core.Lerp(b.baseline, b.fast, rate)
		b.beat = false
	}
}

func (a *Analyzer) updateImpulses(overallBeat bool) {
	decay := a.cfg.ImpulseDecay
	for i := range a.bands {
		b := &a.bands[i]
		if b.beat {
			b.impulse = 1
		} else {
			b.impulse *= decay
		}
	}
	if overallBeat {
		a.impulse = 1
	} else {
		a.impulse *= decay
	}
}
