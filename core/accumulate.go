package core

import "github.com/signalsfoundry/longitude/model"

// seamBand is the width in degrees of the band on either side of the
// 0°/360° seam used by the provider-noise guard.
const seamBand = 1.0

// Totals holds every policy's ingredients from a single walk of a series.
type Totals struct {
	Forward          float64 // seam-normalized direct motion, policy independent
	RetrogradeAbs    float64 // sum of |retrograde delta|
	RetrogradeSigned float64 // sum of signed (non-positive) retrograde deltas

	Segments int // segments walked, including skipped ones
	Skipped  int // segments dropped by the noise guard
}

// For derives the measurement for policy p.
func (t Totals) For(p model.Policy) float64 {
	switch p {
	case CountPositive:
		return t.Forward + t.RetrogradeAbs
	case CountNegative:
		return t.Forward + t.RetrogradeSigned
	default:
		return t.Forward
	}
}

// Policy aliases keep call sites in this package short.
const (
	ZeroOut       = model.ZeroOut
	CountPositive = model.CountPositive
	CountNegative = model.CountNegative
)

// Segment is one adjacent pair of samples in a series.
type Segment struct {
	Prev, Curr model.Sample
	Raw        float64 // Curr.Longitude - Prev.Longitude
}

// accumulate walks series once. Each segment is classified by its leading
// sample's velocity. With guard set, segments the noise guard rejects are
// reported to onSkip and contribute nothing.
func accumulate(series []model.Sample, guard bool, onSkip func(Segment)) Totals {
	var t Totals
	for i := 1; i < len(series); i++ {
		seg := Segment{Prev: series[i-1], Curr: series[i]}
		seg.Raw = seg.Curr.Longitude - seg.Prev.Longitude
		t.Segments++

		if guard && noisySegment(seg) {
			t.Skipped++
			if onSkip != nil {
				onSkip(seg)
			}
			continue
		}

		if seg.Prev.Direct() {
			t.Forward += NormalizeDelta(seg.Raw)
			continue
		}
		d := RetrogradeDelta(seg.Raw)
		t.RetrogradeSigned += d
		t.RetrogradeAbs -= d
	}
	return t
}

// nearSeam reports whether lon lies within seamBand of the 0°/360° seam.
func nearSeam(lon float64) bool {
	return lon < seamBand || lon > FullCircle-seamBand
}

// noisySegment flags a segment whose raw delta contradicts its velocity
// sign, implying a seam crossing, while neither endpoint lies near the
// seam. Such segments come from a known upstream oracle defect for a few
// node-like bodies.
func noisySegment(seg Segment) bool {
	if nearSeam(seg.Prev.Longitude) || nearSeam(seg.Curr.Longitude) {
		return false
	}
	if seg.Prev.Direct() {
		return seg.Raw < 0
	}
	return seg.Raw > 0
}
