package core

import (
	"context"
	"errors"
	"time"

	"github.com/signalsfoundry/longitude/model"
)

// DefaultMaxError is the default bracket width for sign change refinement.
const DefaultMaxError = time.Minute

// maxBisectionIterations caps the refinement loop. A time.Duration bracket
// reaches one nanosecond within 63 halvings, so the default only trips when
// the cap is lowered.
var maxBisectionIterations = 64

var (
	// ErrConvergence is returned when bisection exceeds its iteration cap.
	ErrConvergence = errors.New("sign change bisection did not converge")
	// ErrNoSignChange is returned when the bracket endpoints share a direction.
	ErrNoSignChange = errors.New("bracket endpoints have the same velocity sign")
)

// refineSignChange narrows the bracket [left, right] around a velocity sign
// change by bisection until it is no wider than maxError, and returns the
// sample at the right edge of the final bracket (the first known post-flip
// sample). left carries the entry sign throughout; right the post-flip sign.
func refineSignChange(ctx context.Context, q *query, left, right model.Sample, maxError time.Duration) (model.Sample, error) {
	if left.Direct() == right.Direct() {
		return model.Sample{}, ErrNoSignChange
	}
	if maxError <= 0 {
		maxError = DefaultMaxError
	}

	entry := left.Direct()
	t1, t2 := left.Time, right.Time
	result := right

	for iter := 0; t2.Sub(t1) > maxError; iter++ {
		if iter >= maxBisectionIterations {
			return model.Sample{}, ErrConvergence
		}
		mid := t1.Add(t2.Sub(t1) / 2)
		s, err := q.at(ctx, mid)
		if err != nil {
			return model.Sample{}, err
		}
		if s.Direct() == entry {
			t1 = mid
		} else {
			t2 = mid
			result = s
		}
	}
	return result, nil
}

// refineAll walks adjacent base samples and refines every sign change, in
// timestamp order.
func refineAll(ctx context.Context, q *query, base []model.Sample, maxError time.Duration) ([]model.Sample, error) {
	var refined []model.Sample
	for i := 1; i < len(base); i++ {
		prev, curr := base[i-1], base[i]
		if prev.Direct() == curr.Direct() {
			continue
		}
		s, err := refineSignChange(ctx, q, prev, curr, maxError)
		if err != nil {
			return nil, err
		}
		refined = append(refined, s)
	}
	return refined, nil
}
