package model

import "time"

// Sample is one position-oracle reading. Longitude is always in [0,360);
// Velocity is in degrees per day and its sign encodes direction.
type Sample struct {
	Time      time.Time
	Longitude float64
	Velocity  float64
}

// Direct reports whether the sample's velocity classifies as direct
// motion. Zero velocity counts as direct.
func (s Sample) Direct() bool {
	return s.Velocity >= 0
}
