package spectrum

import (
	"sync"

	"github.com/cwbudde/algo-vecmath"
)

// scratchBuf holds pooled scratch memory for complex-to-real unpacking.
type scratchBuf struct {
	data []float64
}

var scratchPool = sync.Pool{
	New: func() any { return &scratchBuf{} },
}

func getScratch(n int) (re, im []float64, buf *scratchBuf) {
	buf = scratchPool.Get().(*scratchBuf)
	need := 2 * n
	if cap(buf.data) < need {
		buf.data = make([]float64, need)
	} else {
		buf.data = buf.data[:need]
	}
	return buf.data[:n], buf.data[n:need], buf
}

// MagnitudeInto writes |X[k]| for the first len(dst) bins of in to dst and
// returns the number of bins written.
//
// Scratch buffers are pooled, so steady-state calls do not allocate.
func MagnitudeInto(dst []float64, in []complex128) int {
	n := min(len(dst), len(in))
	if n == 0 {
		return 0
	}

	re, im, buf := getScratch(n)
	for i, c := range in[:n] {
		re[i] = real(c)
		im[i] = imag(c)
	}

	vecmath.Magnitude(dst[:n], re, im)
	scratchPool.Put(buf)
	return n
}
