package model

import "time"

// BodyKind indicates how a body's position is determined.
type BodyKind int

const (
	BodyKindUnknown   BodyKind = iota
	BodyKindPlanet             // circular heliocentric orbit
	BodyKindNode               // lunar node: mean regression plus oscillation
	BodyKindSatellite          // TLE-based SGP4 propagation
)

// String returns the catalog spelling of the kind.
func (k BodyKind) String() string {
	switch k {
	case BodyKindPlanet:
		return "planet"
	case BodyKindNode:
		return "node"
	case BodyKindSatellite:
		return "satellite"
	default:
		return "unknown"
	}
}

// ParseBodyKind maps a catalog string onto a BodyKind.
func ParseBodyKind(s string) BodyKind {
	switch s {
	case "planet":
		return BodyKindPlanet
	case "node":
		return BodyKindNode
	case "satellite":
		return BodyKindSatellite
	default:
		return BodyKindUnknown
	}
}

// Orbit holds circular-orbit elements for a planet-like body.
type Orbit struct {
	RadiusAU       float64 // heliocentric orbital radius
	PeriodDays     float64 // sidereal period
	LongitudeJ2000 float64 // mean ecliptic longitude at J2000, degrees
}

// NodeMotion describes a node's mean regression and its periodic term.
type NodeMotion struct {
	LongitudeJ2000 float64 // mean node longitude at J2000, degrees
	RatePerDay     float64 // mean motion, degrees/day (negative: regressing)
	AmplitudeDeg   float64 // amplitude of the oscillation
	OscPeriodDays  float64 // period of the oscillation
	Opposite       bool    // south node: mean node + 180°
}

// BodyDefinition describes one measurable body.
type BodyDefinition struct {
	ID   string
	Name string
	Kind BodyKind

	// Step is the sampling interval. It must keep consecutive angular
	// displacement well under 180°.
	Step time.Duration

	// NoiseGuard enables the seam noise workaround for bodies whose
	// provider is known to report spurious seam crossings.
	NoiseGuard bool

	Orbit Orbit
	Node  NodeMotion

	TLELine1 string
	TLELine2 string
	NoradID  uint32 // optional; informational for satellites
}
