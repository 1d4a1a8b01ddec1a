package ephemeris

import (
	"time"

	"github.com/signalsfoundry/longitude/core"
	"github.com/signalsfoundry/longitude/model"
	"github.com/signalsfoundry/longitude/timectrl"
)

const (
	// ayanamsaJ2000 is the Lahiri ayanamsa at J2000, degrees.
	ayanamsaJ2000 = 23.85305
	// precessionPerDay is general precession in longitude, 50.29"/year.
	precessionPerDay = 50.29 / 3600.0 / 365.25
)

// Ayanamsa returns the tropical-to-sidereal offset in degrees at t.
func Ayanamsa(t time.Time) float64 {
	return ayanamsaJ2000 + precessionPerDay*timectrl.DaysSinceJ2000(t)
}

// applyZodiac converts a tropical sample into the frame's zodiac.
func applyZodiac(s model.Sample, frame model.Frame) model.Sample {
	if frame.Zodiac != model.Sidereal {
		return s
	}
	s.Longitude = core.NormalizeDegrees(s.Longitude - Ayanamsa(s.Time))
	s.Velocity -= precessionPerDay
	return s
}
