package window

import (
	"math"
	"testing"
)

func TestGenerateAllTypes(t *testing.T) {
	for _, typ := range []Type{TypeRectangular, TypeHann, TypeHamming, TypeBlackman, TypeBlackmanHarris} {
		t.Run(typ.String(), func(t *testing.T) {
			w := Generate(typ, 64)
			if len(w) != 64 {
				t.Fatalf("len=%d, want 64", len(w))
			}

			for i, v := range w {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Fatalf("coefficient[%d] invalid: %v", i, v)
				}
				if v < -1e-12 || v > 1+1e-12 {
					t.Fatalf("coefficient[%d] = %v outside [0, 1]", i, v)
				}
			}
		})
	}
}

func TestPeriodicDiffersFromSymmetric(t *testing.T) {
	a := Generate(TypeHann, 16)

	b := Generate(TypeHann, 16, WithPeriodic())
	if len(a) != 16 || len(b) != 16 {
		t.Fatalf("unexpected lengths: %d %d", len(a), len(b))
	}

	if almostEqual(a[15], b[15], 1e-12) {
		t.Fatal("expected different end coefficient for periodic form")
	}
}

func TestApplyGeneratedByType(t *testing.T) {
	buf := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	if err := ApplyCoefficientsInPlace(buf, Generate(TypeRectangular, len(buf))); err != nil {
		t.Fatal(err)
	}

	for i, v := range buf {
		if v != float64(i+1) {
			t.Fatalf("rectangular should be passthrough at %d: %v", i, v)
		}
	}

	if err := ApplyCoefficientsInPlace(buf, Generate(TypeHann, len(buf))); err != nil {
		t.Fatal(err)
	}

	if buf[0] != 0 {
		t.Fatalf("hann first sample should be 0, got %v", buf[0])
	}
}

func TestApplyCoefficientsInPlace(t *testing.T) {
	samples := []float64{1, 2, 3}
	if err := ApplyCoefficientsInPlace(samples, []float64{0.5, 0.5, 0.5}); err != nil {
		t.Fatal(err)
	}

	if !almostEqual(samples[1], 1.0, 1e-12) {
		t.Fatalf("samples[1]=%v", samples[1])
	}

	if err := ApplyCoefficientsInPlace([]float64{1, 2}, []float64{1}); err == nil {
		t.Fatal("expected mismatch error")
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want Type
	}{
		{"", TypeBlackman},
		{"blackman", TypeBlackman},
		{" Hann ", TypeHann},
		{"Blackman-Harris", TypeBlackmanHarris},
		{"RECTANGULAR", TypeRectangular},
		{"hamming", TypeHamming},
	}
	for _, tc := range tests {
		got, err := ParseType(tc.in)
		if err != nil {
			t.Fatalf("ParseType(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseType(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	if _, err := ParseType("kaiser"); err == nil {
		t.Fatal("expected error for unknown window")
	}
	if got := Type(99).String(); got != "Type(99)" {
		t.Fatalf("String = %q", got)
	}
}

func TestGoldenVectors(t *testing.T) {
	hannExpected := []float64{
		0.0, 0.1882550990706332, 0.6112604669781572, 0.9504844339512095,
		0.9504844339512095, 0.6112604669781573, 0.1882550990706333, 0.0,
	}
	hammingExpected := []float64{
		0.08, 0.25319469114498255, 0.6423596296199047, 0.9544456792351128,
		0.9544456792351128, 0.6423596296199048, 0.25319469114498266, 0.08,
	}
	blackmanExpected := []float64{
		0.0, 0.09045342435412804, 0.45918295754596355, 0.9203636180999081,
		0.9203636180999083, 0.45918295754596383, 0.09045342435412812, 0.0,
	}
	bhExpected := []float64{
		0.00006, 0.03339172347815117, 0.332833504298565,
		0.8893697722232837, 0.8893697722232838, 0.3328335042985652,
		0.0333917234781512, 0.00006,
	}

	checkGolden(t, Generate(TypeHann, 8), hannExpected, 1e-10)
	checkGolden(t, Generate(TypeHamming, 8), hammingExpected, 1e-10)
	checkGolden(t, Generate(TypeBlackman, 8), blackmanExpected, 1e-10)
	checkGolden(t, Generate(TypeBlackmanHarris, 8), bhExpected, 1e-10)
	checkGolden(t, Generate(TypeBlackman, 4, WithPeriodic()), []float64{0, 0.34, 1, 0.34}, 1e-12)
}

func TestGenerateEdgeCases(t *testing.T) {
	if got := Generate(TypeHann, 0); got != nil {
		t.Fatalf("expected nil for zero length, got %v", got)
	}
	if got := Generate(TypeBlackman, 1); len(got) != 1 {
		t.Fatalf("len=%d, want 1", len(got))
	}
	if got := Generate(Type(99), 3); got[0] != 1 || got[2] != 1 {
		t.Fatalf("unknown type should be rectangular: %v", got)
	}
}

func checkGolden(t *testing.T, got, want []float64, tol float64) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("len mismatch got=%d want=%d", len(got), len(want))
	}

	for i := range got {
		if !almostEqual(got[i], want[i], tol) {
			t.Fatalf("index %d: got=%.16f want=%.16f", i, got[i], want[i])
		}
	}
}

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
