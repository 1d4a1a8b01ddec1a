package core

import (
	"math"
	"testing"
)

func TestNormalizeDelta_SeamCrossing(t *testing.T) {
	// 358° -> 2° while moving forward is +4°, not -356°.
	if got := NormalizeDelta(2 - 358); got != 4 {
		t.Fatalf("NormalizeDelta(-356) = %v, want 4", got)
	}
}

func TestNormalizeDelta_NoShortestArc(t *testing.T) {
	cases := map[float64]float64{
		0:    0,
		10:   10,
		200:  200, // large forward steps are kept as-is
		-10:  350,
		-200: 160,
	}
	for raw, want := range cases {
		if got := NormalizeDelta(raw); got != want {
			t.Fatalf("NormalizeDelta(%v) = %v, want %v", raw, got, want)
		}
	}
}

func TestRetrogradeDelta(t *testing.T) {
	cases := map[float64]float64{
		-10: -10,
		0:   0,
		356: -4, // 2° -> 358° moving backwards
	}
	for raw, want := range cases {
		if got := RetrogradeDelta(raw); got != want {
			t.Fatalf("RetrogradeDelta(%v) = %v, want %v", raw, got, want)
		}
	}
}

func TestNormalizeDegrees(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{360, 0},
		{725, 5},
		{-1, 359},
		{-720, 0},
		{-1e-15, 0},
	}
	for _, tc := range cases {
		got := NormalizeDegrees(tc.in)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("NormalizeDegrees(%v) = %v, want %v", tc.in, got, tc.want)
		}
		if got < 0 || got >= 360 {
			t.Fatalf("NormalizeDegrees(%v) = %v outside [0,360)", tc.in, got)
		}
	}
}
