package ephemeris

import "math"

const (
	degPerRad = 180.0 / math.Pi
	radPerDeg = math.Pi / 180.0
)

// Vec3 is a Cartesian vector. Units depend on the caller: AU for the
// planetary model, kilometres for satellites.
type Vec3 struct {
	X, Y, Z float64
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

// Scale returns v * k.
func (v Vec3) Scale(k float64) Vec3 {
	return Vec3{X: v.X * k, Y: v.Y * k, Z: v.Z * k}
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// planarDegenerate reports whether v has no usable projection on the XY
// plane, leaving longitude undefined.
func planarDegenerate(v Vec3) bool {
	return v.X*v.X+v.Y*v.Y < 1e-18
}

// longitude returns the XY-plane angle of pos in degrees, in [0,360).
func longitude(pos Vec3) float64 {
	deg := math.Atan2(pos.Y, pos.X) * degPerRad
	if deg < 0 {
		deg += 360
	}
	return deg
}

// longitudeRate returns d(longitude)/dt in radians per unit of vel's time
// base: (x·vy − y·vx) / (x² + y²).
func longitudeRate(pos, vel Vec3) float64 {
	return (pos.X*vel.Y - pos.Y*vel.X) / (pos.X*pos.X + pos.Y*pos.Y)
}
