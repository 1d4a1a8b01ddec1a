package core

import "math"

// FullCircle is the size of the longitude domain in degrees.
const FullCircle = 360.0

// NormalizeDegrees maps any angle into [0,360).
func NormalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, FullCircle)
	if deg < 0 {
		deg += FullCircle
	}
	// math.Mod can round a tiny negative up to exactly 360.
	if deg >= FullCircle {
		deg = 0
	}
	return deg
}

// NormalizeDelta corrects a forward-moving body's raw longitude delta for
// the 0°/360° seam: an apparent decrease means the body crossed 360→0, so
// 360 is added. Direction is never inferred from magnitude.
func NormalizeDelta(raw float64) float64 {
	if raw < 0 {
		return raw + FullCircle
	}
	return raw
}

// RetrogradeDelta is the mirror of NormalizeDelta for a body moving
// backwards: an apparent increase means it crossed 0→360, so 360 is
// subtracted. The result is never positive.
func RetrogradeDelta(raw float64) float64 {
	if raw > 0 {
		return raw - FullCircle
	}
	return raw
}
