// Command beatscope runs the beat analyzer over a WAV file and prints the
// detected beats.
//
// Usage:
//
//	beatscope [flags] file.wav
//
// The file is mixed to mono and fed to an AnalyserNode-style capture stage
// at a virtual frame rate, so the analyzer sees the same frames a
// visualizer host rendering at that rate would.
//
// Examples:
//
//	beatscope track.wav
//	beatscope -fps 60 -all track.wav
//	beatscope -config club.toml -json track.wav
//	BEATSCOPE_CONFIG=club.toml beatscope track.wav
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/cwbudde/algo-beat/config"
)

const configEnv = "BEATSCOPE_CONFIG"

func main() {
	configPath := flag.String("config", "", "TOML tuning file (default $"+configEnv+")")
	fps := flag.Float64("fps", 30, "virtual frame rate in frames per second")
	sensitivity := flag.Float64("sensitivity", 0, "beat sensitivity override in [0.05, 10]")
	all := flag.Bool("all", false, "report every frame, not only beats")
	jsonOut := flag.Bool("json", false, "write JSON lines instead of a table")
	dump := flag.Bool("dump-config", false, "print the effective configuration and exit")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: beatscope [flags] file.wav\n\n")
		fmt.Fprintf(os.Stderr, "Detects beats in a WAV file and estimates its tempo.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  beatscope track.wav\n")
		fmt.Fprintf(os.Stderr, "  beatscope -fps 60 -all track.wav\n")
		fmt.Fprintf(os.Stderr, "  beatscope -config club.toml -json track.wav\n")
	}
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("ignoring .env", "error", err)
	}

	cfg, err := loadConfig(*configPath, logger)
	if err != nil {
		logger.Error("configuration", "error", err)
		os.Exit(1)
	}

	if *dump {
		if err := cfg.Encode(os.Stdout); err != nil {
			logger.Error("encode configuration", "error", err)
			os.Exit(1)
		}
		return
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	opts := options{
		fps:         *fps,
		sensitivity: *sensitivity,
		all:         *all,
		json:        *jsonOut,
	}
	if err := run(flag.Arg(0), cfg, opts, os.Stdout, logger); err != nil {
		logger.Error("analysis failed", "file", flag.Arg(0), "error", err)
		os.Exit(1)
	}
}

func loadConfig(flagPath string, logger *slog.Logger) (config.Config, error) {
	path, err := config.Resolve(flagPath, configEnv)
	if errors.Is(err, config.ErrNoPath) {
		logger.Debug("using built-in configuration")
		return config.Default(), nil
	}
	logger.Debug("loading configuration", "path", path)
	return config.Load(path)
}
