package ephemeris

import (
	"math"
	"time"

	"github.com/signalsfoundry/longitude/core"
	"github.com/signalsfoundry/longitude/model"
	"github.com/signalsfoundry/longitude/timectrl"
)

// nodePosition evaluates a lunar node: mean regression plus one periodic
// term. With a periodic term the node briefly turns direct each cycle.
func nodePosition(b model.BodyDefinition, at time.Time, frame model.Frame) (model.Sample, error) {
	if frame.EarthFixed || frame.Center != model.Geocentric {
		return model.Sample{}, unsupported(b, frame)
	}

	m := b.Node
	d := timectrl.DaysSinceJ2000(at)
	lon := m.LongitudeJ2000 + m.RatePerDay*d
	vel := m.RatePerDay
	if m.AmplitudeDeg != 0 && m.OscPeriodDays > 0 {
		w := 2 * math.Pi / m.OscPeriodDays
		lon += m.AmplitudeDeg * math.Sin(w*d)
		vel += m.AmplitudeDeg * w * math.Cos(w*d)
	}
	if m.Opposite {
		lon += 180
	}

	s := model.Sample{Time: at, Longitude: core.NormalizeDegrees(lon), Velocity: vel}
	return applyZodiac(s, frame), nil
}
