package main

import (
	"errors"
	"io"
	"log/slog"

	"github.com/cwbudde/algo-beat/config"
)

// quietInput is the peak level below which a file is reported as near
// silent.
const quietInput = -60.0

type options struct {
	fps         float64
	sensitivity float64
	all         bool
	json        bool
}

func run(path string, cfg config.Config, opts options, out io.Writer, logger *slog.Logger) error {
	src, err := openWAV(path)
	if err != nil {
		return err
	}
	defer src.Close()

	if src.sampleRate != int(cfg.Spectrum.SampleRate) {
		logger.Warn("sample rate differs from configured spectrum; bin frequencies follow the file",
			"file_rate", src.sampleRate, "configured", cfg.Spectrum.SampleRate)
		cfg.Spectrum.SampleRate = float64(src.sampleRate)
	}

	sc, err := newScope(cfg, opts.fps, opts.sensitivity, logger)
	if err != nil {
		return err
	}

	var rep reporter
	if opts.json {
		rep = newJSONReporter(out)
	} else {
		rep = newTableReporter(out)
	}

	return analyse(src, sc, rep, opts.all, logger)
}

// sampleReader is the part of wavSource the analysis loop needs.
type sampleReader interface {
	Read(dst []float64) (int, error)
}

func analyse(src sampleReader, sc *scope, rep reporter, all bool, logger *slog.Logger) error {
	block := make([]float64, sc.hop(int(sc.analyzer.Config().SampleRate)))
	logger.Debug("analysing", "hop", len(block), "fps", sc.fps, "sensitivity", sc.sensitivity)

	for {
		n, err := src.Read(block)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		r, err := sc.step(block[:n])
		if err != nil {
			return err
		}
		if all || r.Beat.Any() {
			if err := rep.frame(r); err != nil {
				return err
			}
		}
	}

	s := sc.summary()
	if s.PeakDBFS < quietInput {
		logger.Warn("input is near silent; few or no beats are expected", "peak_dbfs", s.PeakDBFS)
	}
	if s.Clipped > 0 {
		logger.Warn("input clips", "samples", s.Clipped)
	}
	logger.Info("done", "frames", s.Frames, "beats", s.Beats, "bpm", s.BPM)
	return rep.finish(s)
}
