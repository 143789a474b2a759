package core

import (
	"math"
	"testing"
)

func TestLevelsPeak(t *testing.T) {
	tests := []struct {
		name string
		in   Levels
		want float64
	}{
		{name: "bass", in: Levels{Bass: 0.9, Mid: 0.2, High: 0.1, Overall: 0.5}, want: 0.9},
		{name: "overall", in: Levels{Bass: 0.1, Mid: 0.2, High: 0.1, Overall: 1.5}, want: 1.5},
		{name: "nan skipped", in: Levels{Bass: math.NaN(), Mid: 0.4, High: 0.1}, want: 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Peak(); got != tt.want {
				t.Fatalf("Peak() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevelsScale(t *testing.T) {
	got := Levels{Overall: 1, Bass: 0.5, Mid: 0.25, High: 2}.Scale(0.5)
	want := Levels{Overall: 0.5, Bass: 0.25, Mid: 0.125, High: 1}
	if got != want {
		t.Fatalf("Scale() = %#v, want %#v", got, want)
	}
}

func TestLevelsQuantize(t *testing.T) {
	tests := []struct {
		name string
		in   Levels
		want [4]uint8
	}{
		{name: "zero", in: Levels{}, want: [4]uint8{0, 0, 0, 0}},
		{name: "full scale", in: Levels{Overall: 1, Bass: 1, Mid: 1, High: 1}, want: [4]uint8{255, 255, 255, 255}},
		{name: "rounding", in: Levels{Overall: 0.5, Bass: 0.25, Mid: 0.002, High: 0.998}, want: [4]uint8{128, 64, 1, 254}},
		{name: "clamped", in: Levels{Overall: 1.4, Bass: -0.3, Mid: math.Inf(1), High: math.Inf(-1)}, want: [4]uint8{255, 0, 255, 0}},
		{name: "nan", in: Levels{Overall: math.NaN(), Bass: 0.1}, want: [4]uint8{0, 26, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Quantize(); got != tt.want {
				t.Fatalf("Quantize() = %v, want %v", got, tt.want)
			}
		})
	}
}
