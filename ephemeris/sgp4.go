package ephemeris

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/longitude/model"
)

// earthRotationRate is Earth's sidereal rotation rate in rad/s.
const earthRotationRate = 7.2921150e-5

const secondsPerDay = 86400.0

// ErrPropagation is returned when SGP4 yields no usable state vector, for
// example after orbital decay.
var ErrPropagation = errors.New("sgp4 propagation failed")

// satelliteCache holds parsed TLEs keyed by their two lines. Parsed
// satellites are never mutated after construction.
type satelliteCache struct {
	mu   sync.Mutex
	sats map[string]satellite.Satellite
}

func (c *satelliteCache) get(line1, line2 string) satellite.Satellite {
	key := line1 + "\n" + line2
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sats == nil {
		c.sats = make(map[string]satellite.Satellite)
	}
	sat, ok := c.sats[key]
	if !ok {
		sat = satellite.TLEToSat(line1, line2, satellite.GravityWGS72)
		c.sats[key] = sat
	}
	return sat
}

// propagate returns ECI position (km) and velocity (km/s) at t together with
// the Greenwich mean sidereal angle. go-satellite only accepts whole seconds,
// so the sub-second remainder is applied as a first-order correction.
func propagate(sat satellite.Satellite, t time.Time) (pos, vel Vec3, gmst float64) {
	t = t.UTC()
	whole := t.Truncate(time.Second)
	frac := t.Sub(whole).Seconds()

	year, month, day := whole.Date()
	hour, min, sec := whole.Clock()

	p, v := satellite.Propagate(sat, year, int(month), day, hour, min, sec)
	jd := satellite.JDay(year, int(month), day, hour, min, sec)

	pos = Vec3{X: p.X, Y: p.Y, Z: p.Z}
	vel = Vec3{X: v.X, Y: v.Y, Z: v.Z}
	if frac > 0 {
		pos = pos.Add(vel.Scale(frac))
	}
	gmst = satellite.ThetaG_JD(jd) + earthRotationRate*frac
	return pos, vel, gmst
}

// satellitePosition reports right ascension (inertial) or sub-satellite
// longitude (Earth-fixed) and its rate in degrees per day.
func satellitePosition(cache *satelliteCache, b model.BodyDefinition, at time.Time, frame model.Frame) (model.Sample, error) {
	if frame.Center != model.Geocentric || frame.Zodiac != model.Tropical {
		return model.Sample{}, unsupported(b, frame)
	}

	sat := cache.get(b.TLELine1, b.TLELine2)
	pos, vel, gmst := propagate(sat, at)
	if math.IsNaN(pos.X) || math.IsNaN(vel.X) || planarDegenerate(pos) {
		return model.Sample{}, fmt.Errorf("%w: %s at %s", ErrPropagation, b.ID, at.Format(time.RFC3339))
	}

	rate := longitudeRate(pos, vel) // rad/s
	if frame.EarthFixed {
		ecef := satellite.ECIToECEF(satellite.Vector3{X: pos.X, Y: pos.Y, Z: pos.Z}, gmst)
		pos = Vec3{X: ecef.X, Y: ecef.Y, Z: ecef.Z}
		rate -= earthRotationRate
	}

	return model.Sample{
		Time:      at,
		Longitude: longitude(pos),
		Velocity:  rate * degPerRad * secondsPerDay,
	}, nil
}
