package beat

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-beat/dsp/core"
	"github.com/cwbudde/algo-beat/internal/testutil"
)

const frameBins = 128

func bassFrame() []float64 {
	return testutil.BandFrame(frameBins, 0, 16, 255)
}

// calibrated returns an analyzer that has left warmup on a silent input.
func calibrated(t *testing.T, opts ...Option) *Analyzer {
	t.Helper()
	a := NewAnalyzer(opts...)
	silence := testutil.Silence(frameBins)
	for range 60 {
		if r := a.Analyze(silence, 1); r.Beat.Any() {
			t.Fatalf("beat on silence: %+v", r.Beat)
		}
	}
	if a.Phase() != PhaseActive {
		t.Fatalf("phase = %v, want active", a.Phase())
	}
	return a
}

func TestAnalyzeEmptyFrame(t *testing.T) {
	a := NewAnalyzer()
	a.Analyze(bassFrame(), 1)
	before := a.History()

	for _, frame := range [][]float64{nil, {}} {
		r := a.Analyze(frame, 1)
		if r.Bass != 0 || r.Mid != 0 || r.High != 0 || r.Overall != 0 || r.DominantFrequency != 0 {
			t.Fatalf("non-zero energies for empty frame: %+v", r)
		}
		if r.Beat.Any() || r.Impulse != (Impulses{}) {
			t.Fatalf("beat state for empty frame: %+v %+v", r.Beat, r.Impulse)
		}
		if len(r.Bands.Bass)+len(r.Bands.Mid)+len(r.Bands.High) != 0 {
			t.Fatalf("non-empty bands for empty frame: %+v", r.Bands)
		}
	}

	if got := a.History(); len(got) != len(before) {
		t.Fatalf("empty frame touched history: %d entries, want %d", len(got), len(before))
	}
	if a.Remaining() != DefaultConfig().WarmupCalls-1 {
		t.Fatalf("empty frame advanced warmup: remaining = %d", a.Remaining())
	}
}

func TestAnalyzeWarmupSuppressesBeats(t *testing.T) {
	a := NewAnalyzer()
	loud := testutil.DC(255, frameBins)
	for i := range DefaultConfig().WarmupCalls {
		if a.Phase() != PhaseWarmup {
			t.Fatalf("call %d: phase = %v, want warmup", i, a.Phase())
		}
		r := a.Analyze(loud, 10)
		if r.Beat.Any() {
			t.Fatalf("call %d: beat during warmup: %+v", i, r.Beat)
		}
	}
	if a.Phase() != PhaseActive {
		t.Fatalf("phase after warmup = %v, want active", a.Phase())
	}
}

func TestAnalyzeBassBeatAfterSilence(t *testing.T) {
	a := calibrated(t)

	fired := -1
	for i := range 5 {
		r := a.Analyze(bassFrame(), 1)
		if r.Beat.Bass {
			fired = i
			if !r.Beat.Overall {
				t.Fatalf("overall beat does not follow bass")
			}
			if r.Impulse.Bass != 1 || r.Impulse.Overall != 1 {
				t.Fatalf("impulses on beat = %+v, want bass and overall at 1", r.Impulse)
			}
			break
		}
	}
	if fired < 0 {
		t.Fatal("no bass beat within 5 calls of a strong bass hit")
	}
}

func TestAnalyzeCooldown(t *testing.T) {
	a := calibrated(t)
	frame := bassFrame()

	if r := a.Analyze(frame, 1); !r.Beat.Overall {
		t.Fatal("expected beat on first loud call")
	}
	if a.Phase() != PhaseCooldown || a.Remaining() != 3 {
		t.Fatalf("phase = %v remaining = %d, want cooldown 3", a.Phase(), a.Remaining())
	}

	for i := range 3 {
		r := a.Analyze(frame, 1)
		if r.Beat.Any() {
			t.Fatalf("cooldown call %d: beat %+v", i, r.Beat)
		}
	}
	if a.Phase() != PhaseActive {
		t.Fatalf("phase after cooldown = %v, want active", a.Phase())
	}

	if r := a.Analyze(frame, 1); !r.Beat.Overall {
		t.Fatal("expected beat after cooldown elapsed")
	}
}

func TestAnalyzeImpulseDecay(t *testing.T) {
	a := calibrated(t)
	if r := a.Analyze(bassFrame(), 1); r.Impulse.Bass != 1 {
		t.Fatalf("impulse = %v, want 1", r.Impulse.Bass)
	}

	silence := testutil.Silence(frameBins)
	want := 1.0
	for i := range 8 {
		r := a.Analyze(silence, 1)
		want *= 0.65
		if math.Abs(r.Impulse.Bass-want) > 1e-12 || math.Abs(r.Impulse.Overall-want) > 1e-12 {
			t.Fatalf("call %d: impulse = %+v, want %v", i, r.Impulse, want)
		}
	}
}

func TestAnalyzeSensitivity(t *testing.T) {
	medium := testutil.BandFrame(frameBins, 0, 12, 150)

	low := calibrated(t)
	for i := range 10 {
		if r := low.Analyze(medium, 0.1); r.Beat.Bass {
			t.Fatalf("call %d: beat at sensitivity 0.1", i)
		}
	}

	high := calibrated(t)
	if r := high.Analyze(medium, 2); !r.Beat.Bass {
		t.Fatal("no beat at sensitivity 2")
	}
}

func TestAnalyzeHighBandIndependent(t *testing.T) {
	a := calibrated(t)
	frame := testutil.BandFrame(frameBins, 64, frameBins, 255)

	r := a.Analyze(frame, 1)
	if !r.Beat.High {
		t.Fatal("expected high beat")
	}
	if r.Beat.Overall || r.Beat.Bass {
		t.Fatalf("high-only input fired bass: %+v", r.Beat)
	}
	if a.Phase() != PhaseActive {
		t.Fatalf("high beat entered %v", a.Phase())
	}
	if r.Impulse.High != 1 || r.Impulse.Overall != 0 {
		t.Fatalf("impulses = %+v", r.Impulse)
	}
}

func TestAnalyzeBaselineHoldsDuringBeat(t *testing.T) {
	a := calibrated(t)
	frame := testutil.BandFrame(frameBins, 64, frameBins, 255)

	a.Analyze(frame, 1)
	held := a.Baseline().High
	for i := range 3 {
		r := a.Analyze(frame, 1)
		if !r.Beat.High {
			t.Fatalf("call %d: high beat stopped", i)
		}
		if got := a.Baseline().High; got != held {
			t.Fatalf("call %d: baseline moved from %v to %v while beating", i, held, got)
		}
	}
}

func TestAnalyzeConvergence(t *testing.T) {
	a := NewAnalyzer()
	frame := testutil.DC(150, frameBins)

	var prev Result
	for i := range 35 {
		r := a.Analyze(frame, 1)
		if i >= 30 {
			if d := math.Abs(r.Overall - prev.Overall); d > 1e-3 {
				t.Fatalf("call %d: overall moved by %v", i, d)
			}
			if d := math.Abs(r.Bass - prev.Bass); d > 1e-3 {
				t.Fatalf("call %d: bass moved by %v", i, d)
			}
		}
		prev = r
	}
	if want := 150.0 / 255; math.Abs(prev.Overall-want) > 1e-3 {
		t.Fatalf("overall = %v, want about %v", prev.Overall, want)
	}
}

func TestAnalyzeSmoothingDirection(t *testing.T) {
	a := NewAnalyzer()
	loud := testutil.DC(200, frameBins)

	prev := 0.0
	for i := range 3 {
		r := a.Analyze(loud, 1)
		if r.Overall <= prev {
			t.Fatalf("call %d: overall %v did not rise above %v", i, r.Overall, prev)
		}
		prev = r.Overall
	}

	silence := testutil.Silence(frameBins)
	for i := range 10 {
		r := a.Analyze(silence, 1)
		if r.Overall >= prev {
			t.Fatalf("call %d: overall %v did not fall below %v", i, r.Overall, prev)
		}
		prev = r.Overall
	}
}

func TestAnalyzeEnergyBounds(t *testing.T) {
	a := NewAnalyzer()
	for _, frame := range [][]float64{
		testutil.DC(255, frameBins),
		testutil.Silence(frameBins),
		testutil.BandFrame(frameBins, 100, frameBins, 255),
	} {
		for range 40 {
			r := a.Analyze(frame, 1)
			levels := r.Levels()
			values := []float64{levels.Overall, levels.Bass, levels.Mid, levels.High}
			testutil.RequireFinite(t, values)
			for _, v := range values {
				if v < 0 || v > 1+1e-12 {
					t.Fatalf("energy %v outside [0, 1]", v)
				}
			}
		}
	}
}

func TestAnalyzeQuadraticDecay(t *testing.T) {
	a := NewAnalyzer()
	// A single call at 0.1 raw energy leaves the visual track at 0.03.
	r := a.Analyze(testutil.DC(25.5, frameBins), 1)
	if want := 0.03 * 0.03 / 0.06; math.Abs(r.Overall-want) > 1e-12 {
		t.Fatalf("overall = %v, want %v", r.Overall, want)
	}

	b := NewAnalyzer(WithDecayKnee(0))
	r = b.Analyze(testutil.DC(25.5, frameBins), 1)
	if math.Abs(r.Overall-0.03) > 1e-12 {
		t.Fatalf("overall without knee = %v, want 0.03", r.Overall)
	}
}

func TestAnalyzeQuadraticDecayFeedsBack(t *testing.T) {
	a := NewAnalyzer()
	// Constant 0.05 raw energy, below the 0.06 knee.
	frame := testutil.DC(12.75, frameBins)

	var r Result
	for range 200 {
		r = a.Analyze(frame, 1)
	}

	// The squashed value is the next call's starting point, so the track
	// settles where v = (0.7v + 0.015)^2 / 0.06.
	want := (0.039 - math.Sqrt(0.00108)) / 0.98
	for _, got := range []float64{r.Overall, r.Bass, r.Mid, r.High} {
		if math.Abs(got-want) > 1e-9 {
			t.Fatalf("settled level = %v, want %v", got, want)
		}
	}
	next := a.Analyze(frame, 1).Overall
	if math.Abs(next-r.Overall) > 1e-12 {
		t.Fatalf("level moved from %v to %v after settling", r.Overall, next)
	}
}

func TestAnalyzeDominantFrequency(t *testing.T) {
	a := NewAnalyzer()
	frame := testutil.DC(10, frameBins)
	frame[10] = 255

	r := a.Analyze(frame, 1)
	if r.DominantFrequency != 234.375 {
		t.Fatalf("dominant = %v, want 234.375", r.DominantFrequency)
	}

	r = a.Analyze(testutil.Silence(frameBins), 1)
	if r.DominantFrequency != 0 {
		t.Fatalf("dominant on silence = %v, want 0", r.DominantFrequency)
	}
}

func TestAnalyzeBandsAliasFrame(t *testing.T) {
	a := NewAnalyzer()
	frame := testutil.DC(1, frameBins)
	r := a.Analyze(frame, 1)

	if len(r.Bands.Bass) != 12 || len(r.Bands.Mid) != 77 || len(r.Bands.High) != 43 {
		t.Fatalf("band sizes = %d/%d/%d, want 12/77/43",
			len(r.Bands.Bass), len(r.Bands.Mid), len(r.Bands.High))
	}
	frame[0] = 42
	if r.Bands.Bass[0] != 42 {
		t.Fatal("bass band does not alias the frame")
	}
}

func TestAnalyzeNonFiniteInput(t *testing.T) {
	a := NewAnalyzer()

	nan := testutil.DC(100, frameBins)
	nan[5] = math.NaN()
	r := a.Analyze(nan, 1)
	if !math.IsNaN(r.Bass) || !math.IsNaN(r.Overall) {
		t.Fatalf("NaN did not propagate: bass=%v overall=%v", r.Bass, r.Overall)
	}
	if r.Beat.Any() {
		t.Fatalf("beat on NaN input: %+v", r.Beat)
	}

	inf := testutil.DC(100, frameBins)
	inf[100] = math.Inf(1)
	r = a.Analyze(inf, 1)
	if !math.IsInf(r.High, 1) {
		t.Fatalf("high = %v, want +Inf", r.High)
	}
	testutil.RequireFinite(t, []float64{r.Impulse.Overall, r.Impulse.Bass, r.Impulse.Mid, r.Impulse.High})
}

func TestAnalyzeShortFrame(t *testing.T) {
	a := NewAnalyzer()
	r := a.Analyze([]float64{255, 255, 255}, 1)
	if len(r.Bands.Mid) != 0 || len(r.Bands.High) != 0 {
		t.Fatalf("short frame produced mid/high bins: %+v", r.Bands)
	}
	if r.Mid != 0 || r.High != 0 {
		t.Fatalf("empty bands have energy: mid=%v high=%v", r.Mid, r.High)
	}
}

func TestAnalyzerHistory(t *testing.T) {
	a := NewAnalyzer(WithHistorySize(4))
	for i := range 6 {
		a.Analyze(testutil.DC(float64(i+1)*25.5, frameBins), 1)
	}

	h := a.History()
	if len(h) != 4 {
		t.Fatalf("history length = %d, want 4", len(h))
	}
	for i, l := range h {
		want := float64(i+3) * 0.1
		if math.Abs(l.Overall-want) > 1e-12 {
			t.Fatalf("history[%d].Overall = %v, want %v", i, l.Overall, want)
		}
	}

	h[0].Overall = -1
	if a.History()[0].Overall == -1 {
		t.Fatal("History returned internal storage")
	}
}

func TestAnalyzerReset(t *testing.T) {
	a := calibrated(t)
	a.Analyze(bassFrame(), 1)
	a.Reset()

	if a.Phase() != PhaseWarmup || a.Remaining() != 30 {
		t.Fatalf("phase = %v remaining = %d, want warmup 30", a.Phase(), a.Remaining())
	}
	if a.Baseline() != (core.Levels{}) {
		t.Fatalf("baseline not cleared: %+v", a.Baseline())
	}
	if len(a.History()) != 0 {
		t.Fatal("history not cleared")
	}

	r := a.Analyze(testutil.Silence(frameBins), 1)
	if r.Impulse != (Impulses{}) || r.Overall != 0 {
		t.Fatalf("state leaked through reset: %+v", r)
	}
}

func TestAnalyzerNoWarmup(t *testing.T) {
	a := NewAnalyzer(WithWarmup(0, 0.15))
	if a.Phase() != PhaseActive {
		t.Fatalf("phase = %v, want active", a.Phase())
	}
	if r := a.Analyze(bassFrame(), 1); !r.Beat.Bass {
		t.Fatal("expected immediate beat without warmup")
	}
}

func TestAnalyzerNoCooldown(t *testing.T) {
	a := calibrated(t, WithCooldown(0))
	a.Analyze(bassFrame(), 1)
	if a.Phase() != PhaseActive {
		t.Fatalf("phase = %v, want active with zero cooldown", a.Phase())
	}
}
