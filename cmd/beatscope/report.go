package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
)

type reporter interface {
	frame(r frameReport) error
	finish(s summary) error
}

// tableReporter prints aligned columns like the other tools in cmd/.
type tableReporter struct {
	w      *tabwriter.Writer
	header bool
}

func newTableReporter(w io.Writer) *tableReporter {
	return &tableReporter{w: tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)}
}

func (t *tableReporter) frame(r frameReport) error {
	if !t.header {
		fmt.Fprintf(t.w, "Frame\tTime(s)\tBeat\tBass\tMid\tHigh\tOverall\tImpulse\tPeak(Hz)\tBPM\tPhase\t\n")
		fmt.Fprintf(t.w, "-----\t-------\t----\t----\t---\t----\t-------\t-------\t--------\t---\t-----\t\n")
		t.header = true
	}
	fmt.Fprintf(t.w, "%d\t%.3f\t%s\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.1f\t%d\t%s\t\n",
		r.Frame, r.TimeMs/1000, beatMarker(r), r.Levels.Bass, r.Levels.Mid, r.Levels.High,
		r.Levels.Overall, r.Impulse, r.Dominant, r.BPM, r.Phase)
	return nil
}

func (t *tableReporter) finish(s summary) error {
	if err := t.w.Flush(); err != nil {
		return err
	}
	w := t.w
	fmt.Fprintf(w, "\nframes\t%d\t\nbeats\t%d\t\nbpm\t%d\t\nfps\t%d\t\n", s.Frames, s.Beats, s.BPM, s.FPS)
	fmt.Fprintf(w, "peak\t%.1f dBFS\t\nrms\t%.1f dBFS\t\nclipped\t%d\t\n", s.PeakDBFS, s.RMSDBFS, s.Clipped)
	return w.Flush()
}

func beatMarker(r frameReport) string {
	marker := ""
	if r.Beat.Bass {
		marker += "B"
	}
	if r.Beat.Mid {
		marker += "M"
	}
	if r.Beat.High {
		marker += "H"
	}
	if marker == "" {
		marker = "."
	}
	return marker
}

// jsonReporter writes one JSON object per line.
type jsonReporter struct {
	enc *json.Encoder
}

func newJSONReporter(w io.Writer) *jsonReporter {
	return &jsonReporter{enc: json.NewEncoder(w)}
}

func (j *jsonReporter) frame(r frameReport) error {
	return j.enc.Encode(struct {
		Type string `json:"type"`
		frameReport
	}{"frame", r})
}

func (j *jsonReporter) finish(s summary) error {
	return j.enc.Encode(struct {
		Type string `json:"type"`
		summary
	}{"summary", s})
}
