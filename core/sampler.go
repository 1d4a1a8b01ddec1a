package core

import (
	"context"
	"time"

	"github.com/signalsfoundry/longitude/model"
	"github.com/signalsfoundry/longitude/timectrl"
)

// DefaultStep is used when a body has no usable step configured.
const DefaultStep = 24 * time.Hour

// sampleRange queries the provider at every step of r: Start, Start+step,
// ... strictly before End, then End. A non-empty range always yields at
// least two samples.
func sampleRange(ctx context.Context, q *query, r timectrl.Range, step time.Duration) ([]model.Sample, error) {
	if step <= 0 {
		step = DefaultStep
	}

	times := r.Steps(step)
	samples := make([]model.Sample, 0, len(times))
	for _, t := range times {
		s, err := q.at(ctx, t)
		if err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, nil
}
