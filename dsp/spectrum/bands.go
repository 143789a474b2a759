package spectrum

import (
	"math"

	"github.com/cwbudde/algo-beat/dsp/core"
)

// Range is an inclusive frequency interval in Hz.
type Range struct {
	Low  float64
	High float64
}

// Ranges holds the three band intervals used to split a frame.
type Ranges struct {
	Bass Range
	Mid  Range
	High Range
}

// DefaultRanges returns bass 0-250 Hz, mid 250-2000 Hz and high
// 2000-20000 Hz.
func DefaultRanges() Ranges {
	return Ranges{
		Bass: Range{Low: 0, High: 250},
		Mid:  Range{Low: 250, High: 2000},
		High: Range{Low: 2000, High: 20000},
	}
}

// Bands is a frame split into three sub-slices. The slices alias the input
// frame. Adjacent bands may share the bin that straddles their boundary.
type Bands struct {
	Bass []float64
	Mid  []float64
	High []float64
}

// Mapper partitions magnitude frames into bands. It is stateless after
// construction and safe for concurrent use.
type Mapper struct {
	cfg      core.SpectrumConfig
	ranges   Ranges
	binWidth float64
}

// NewMapper creates a mapper for the default band ranges.
func NewMapper(opts ...core.SpectrumOption) *Mapper {
	return NewMapperWithRanges(DefaultRanges(), opts...)
}

// NewMapperWithRanges creates a mapper for custom band ranges.
func NewMapperWithRanges(ranges Ranges, opts ...core.SpectrumOption) *Mapper {
	cfg := core.ApplySpectrumOptions(opts...)
	return &Mapper{
		cfg:      cfg,
		ranges:   ranges,
		binWidth: cfg.BinWidth(),
	}
}

// Config returns the spectrum configuration.
func (m *Mapper) Config() core.SpectrumConfig { return m.cfg }

// Ranges returns the band ranges.
func (m *Mapper) Ranges() Ranges { return m.ranges }

// BinWidth returns the width of one bin in Hz.
func (m *Mapper) BinWidth() float64 { return m.binWidth }

// BinFrequency returns the frequency in Hz of bin i.
func (m *Mapper) BinFrequency(i int) float64 {
	return float64(i) * m.binWidth
}

// Split partitions frame into bass, mid and high bands.
//
// A range [lo, hi] covers bins floor(lo/w) through ceil(hi/w), with the end
// clamped to the last bin of frame. A range that starts past the end of the
// frame yields an empty band. An empty frame yields three empty bands.
func (m *Mapper) Split(frame []float64) Bands {
	return Bands{
		Bass: m.extract(frame, m.ranges.Bass),
		Mid:  m.extract(frame, m.ranges.Mid),
		High: m.extract(frame, m.ranges.High),
	}
}

// BinSpan returns the inclusive bin indices covered by r for a frame of n
// bins. ok is false when the range selects no bins.
func (m *Mapper) BinSpan(r Range, n int) (start, end int, ok bool) {
	start = int(math.Floor(r.Low / m.binWidth))
	end = min(int(math.Ceil(r.High/m.binWidth)), n-1)
	if start < 0 || start >= n || end < start {
		return 0, 0, false
	}
	return start, end, true
}

func (m *Mapper) extract(frame []float64, r Range) []float64 {
	start, end, ok := m.BinSpan(r, len(frame))
	if !ok {
		return []float64{}
	}
	return frame[start : end+1 : end+1]
}
