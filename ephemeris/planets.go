package ephemeris

import (
	"math"
	"time"

	"github.com/signalsfoundry/longitude/model"
	"github.com/signalsfoundry/longitude/timectrl"
)

// earthOrbit is used as the observer for geocentric planet positions.
var earthOrbit = model.Orbit{RadiusAU: 1.000001, PeriodDays: 365.256363, LongitudeJ2000: 100.46435}

// heliocentric returns the position (AU) and velocity (AU/day) of a body on
// a circular, coplanar orbit. A zero radius is the Sun itself.
func heliocentric(o model.Orbit, at time.Time) (pos, vel Vec3) {
	if o.RadiusAU == 0 || o.PeriodDays <= 0 {
		return Vec3{}, Vec3{}
	}
	d := timectrl.DaysSinceJ2000(at)
	n := 2 * math.Pi / o.PeriodDays // rad/day
	theta := o.LongitudeJ2000*radPerDeg + n*d
	sin, cos := math.Sincos(theta)
	pos = Vec3{X: o.RadiusAU * cos, Y: o.RadiusAU * sin}
	vel = Vec3{X: -o.RadiusAU * n * sin, Y: o.RadiusAU * n * cos}
	return pos, vel
}

// planetPosition evaluates the circular-orbit model in frame. Geocentric
// positions subtract Earth's vector, which is what produces retrograde
// loops.
func planetPosition(b model.BodyDefinition, at time.Time, frame model.Frame) (model.Sample, error) {
	if frame.EarthFixed {
		return model.Sample{}, unsupported(b, frame)
	}

	pos, vel := heliocentric(b.Orbit, at)
	if frame.Center == model.Geocentric {
		epos, evel := heliocentric(earthOrbit, at)
		pos, vel = pos.Sub(epos), vel.Sub(evel)
	}
	if planarDegenerate(pos) {
		return model.Sample{}, unsupported(b, frame)
	}

	s := model.Sample{
		Time:      at,
		Longitude: longitude(pos),
		Velocity:  longitudeRate(pos, vel) * degPerRad,
	}
	return applyZodiac(s, frame), nil
}
