package beat

// Phase is the detector state. Exactly one phase is active at a time.
type Phase int

const (
	// PhaseWarmup calibrates the baseline with detection disabled.
	PhaseWarmup Phase = iota
	// PhaseActive detects beats.
	PhaseActive
	// PhaseCooldown suppresses detection after a bass beat.
	PhaseCooldown
)

func (p Phase) String() string {
	switch p {
	case PhaseWarmup:
		return "warmup"
	case PhaseActive:
		return "active"
	case PhaseCooldown:
		return "cooldown"
	default:
		return "unknown"
	}
}

// gate tracks the phase and the calls left in a timed phase.
type gate struct {
	phase     Phase
	remaining int
}

func newGate(warmupCalls int) gate {
	g := gate{}
	g.enter(PhaseWarmup, warmupCalls)
	return g
}

// enter switches to a timed phase. A zero length goes straight to active.
func (g *gate) enter(p Phase, calls int) {
	if calls <= 0 || p == PhaseActive {
		g.phase, g.remaining = PhaseActive, 0
		return
	}
	g.phase, g.remaining = p, calls
}

// step consumes one call of a timed phase.
func (g *gate) step() {
	if g.phase == PhaseActive {
		return
	}
	g.remaining--
	if g.remaining <= 0 {
		g.phase, g.remaining = PhaseActive, 0
	}
}
