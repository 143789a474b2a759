package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavSource streams a WAV file as mono float samples in [-1, 1].
type wavSource struct {
	file       *os.File
	dec        *wav.Decoder
	buf        *audio.IntBuffer
	channels   int
	offset     int
	scale      float64
	sampleRate int
	pending    []float64
	eof        bool
}

func openWAV(path string) (*wavSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wav: %w", err)
	}

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		f.Close()
		return nil, fmt.Errorf("%s: not a valid WAV file", path)
	}

	format := dec.Format()
	if format == nil || format.NumChannels < 1 || format.SampleRate <= 0 {
		f.Close()
		return nil, fmt.Errorf("%s: unsupported WAV format", path)
	}
	if dec.BitDepth == 0 || dec.BitDepth > 32 {
		f.Close()
		return nil, fmt.Errorf("%s: unsupported bit depth %d", path, dec.BitDepth)
	}

	// 8-bit PCM is stored unsigned.
	offset := 0
	if dec.BitDepth == 8 {
		offset = 128
	}

	return &wavSource{
		file: f,
		dec:  dec,
		buf: &audio.IntBuffer{
			Data:   make([]int, 4096*format.NumChannels),
			Format: format,
		},
		channels:   format.NumChannels,
		offset:     offset,
		scale:      1 / math.Exp2(float64(dec.BitDepth-1)),
		sampleRate: format.SampleRate,
	}, nil
}

// Read fills dst with mono samples and returns the number written. It
// returns io.EOF once the file is exhausted and no samples remain.
func (s *wavSource) Read(dst []float64) (int, error) {
	for len(s.pending) < len(dst) && !s.eof {
		if err := s.fill(); err != nil {
			return 0, err
		}
	}

	n := copy(dst, s.pending)
	s.pending = s.pending[n:]
	if n == 0 && s.eof {
		return 0, io.EOF
	}
	return n, nil
}

func (s *wavSource) fill() error {
	n, err := s.dec.PCMBuffer(s.buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode pcm: %w", err)
	}
	if n == 0 {
		s.eof = true
		return nil
	}

	frames := n / s.channels
	gain := s.scale / float64(s.channels)
	for i := range frames {
		sum := 0
		for c := range s.channels {
			sum += s.buf.Data[i*s.channels+c] - s.offset
		}
		s.pending = append(s.pending, float64(sum)*gain)
	}
	return nil
}

func (s *wavSource) Close() error {
	return s.file.Close()
}
