package model

import (
	"fmt"
	"strings"
)

// Center selects the origin longitudes are measured from.
type Center int

const (
	Geocentric Center = iota
	Heliocentric
)

// Zodiac selects the longitude zero point.
type Zodiac int

const (
	Tropical Zodiac = iota
	Sidereal
)

// Frame is the reference frame of a position query. It is a plain value
// passed with every query so concurrent measurements never share mutable
// frame state.
type Frame struct {
	Center Center
	Zodiac Zodiac
	// EarthFixed measures longitude in the rotating Earth frame
	// (sub-satellite longitude). Only satellites support it.
	EarthFixed bool
}

// DefaultFrame is geocentric tropical.
var DefaultFrame = Frame{Center: Geocentric, Zodiac: Tropical}

func (f Frame) String() string {
	parts := []string{"geocentric"}
	if f.Center == Heliocentric {
		parts[0] = "heliocentric"
	}
	if f.Zodiac == Sidereal {
		parts = append(parts, "sidereal")
	} else {
		parts = append(parts, "tropical")
	}
	if f.EarthFixed {
		parts = append(parts, "earth-fixed")
	}
	return strings.Join(parts, ",")
}

// ParseFrame parses a comma separated list such as "geocentric,sidereal"
// or "earth-fixed". Unspecified parts keep DefaultFrame values.
func ParseFrame(s string) (Frame, error) {
	f := DefaultFrame
	if strings.TrimSpace(s) == "" {
		return f, nil
	}
	for _, part := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "geocentric":
			f.Center = Geocentric
		case "heliocentric":
			f.Center = Heliocentric
		case "tropical":
			f.Zodiac = Tropical
		case "sidereal":
			f.Zodiac = Sidereal
		case "earth-fixed", "ecef":
			f.EarthFixed = true
		case "inertial", "eci":
			f.EarthFixed = false
		case "":
		default:
			return Frame{}, fmt.Errorf("unknown frame component %q", part)
		}
	}
	return f, nil
}
