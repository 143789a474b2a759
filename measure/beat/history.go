package beat

import "github.com/cwbudde/algo-beat/dsp/core"

// history is a fixed-size ring of raw per-call energies.
type history struct {
	buf   []core.Levels
	next  int
	count int
}

func newHistory(n int) history {
	return history{buf: make([]core.Levels, n)}
}

func (h *history) push(l core.Levels) {
	h.buf[h.next] = l
	h.next = (h.next + 1) % len(h.buf)
	if h.count < len(h.buf) {
		h.count++
	}
}

// snapshot returns the recorded entries, oldest first.
func (h *history) snapshot() []core.Levels {
	out := make([]core.Levels, 0, h.count)
	start := h.next - h.count
	if start < 0 {
		start += len(h.buf)
	}
	for i := range h.count {
		out = append(out, h.buf[(start+i)%len(h.buf)])
	}
	return out
}

func (h *history) reset() {
	clear(h.buf)
	h.next, h.count = 0, 0
}
