package tempo_test

import (
	"fmt"

	"github.com/cwbudde/algo-beat/measure/tempo"
)

func ExampleEstimator() {
	e := tempo.NewEstimator()
	for _, frame := range []int{0, 15, 30, 45} {
		e.RecordBeat(frame, 30)
	}
	fmt.Println(e.BPM())
	// Output: 120
}

func ExampleFrameRate() {
	f := tempo.NewFrameRate()
	for ms := 0.0; ms <= 1000; ms += 20 {
		f.Tick(ms)
	}
	fmt.Println(f.FPS(), f.ReportReady())
	// Output: 51 true
}
