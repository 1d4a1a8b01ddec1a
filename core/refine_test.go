package core

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/signalsfoundry/longitude/model"
)

// flipProvider is direct before flip and retrograde from flip onwards.
func flipProvider(flip time.Time) ProviderFunc {
	return func(_ context.Context, _ string, at time.Time, _ model.Frame) (model.Sample, error) {
		if at.Before(flip) {
			return model.Sample{Longitude: 10, Velocity: 1}, nil
		}
		return model.Sample{Longitude: 10, Velocity: -1}, nil
	}
}

func TestRefineSignChange_QueryCountMatchesClosedForm(t *testing.T) {
	cases := []struct {
		gap      time.Duration
		maxError time.Duration
	}{
		{64 * time.Minute, time.Minute},
		{100 * time.Minute, time.Minute},
		{90 * time.Minute, time.Minute},
		{24 * time.Hour, time.Minute},
		{24 * time.Hour, time.Second},
		{10 * 24 * time.Hour, 15 * time.Minute},
	}

	for _, tc := range cases {
		left := epoch
		right := epoch.Add(tc.gap)
		flip := left.Add(tc.gap / 3)

		counter := &countingProvider{inner: flipProvider(flip)}
		q := &query{provider: counter, body: "b"}

		got, err := refineSignChange(context.Background(), q,
			model.Sample{Time: left, Velocity: 1},
			model.Sample{Time: right, Velocity: -1},
			tc.maxError,
		)
		if err != nil {
			t.Fatalf("gap %v: refineSignChange: %v", tc.gap, err)
		}

		want := int(math.Ceil(math.Log2(float64(tc.gap) / float64(tc.maxError))))
		if counter.count() != want {
			t.Fatalf("gap %v / %v: provider queries = %d, want %d", tc.gap, tc.maxError, counter.count(), want)
		}
		if got.Time.Before(flip) || got.Time.Sub(flip) > tc.maxError {
			t.Fatalf("gap %v: refined time %v not within %v after flip %v", tc.gap, got.Time, tc.maxError, flip)
		}
		if got.Direct() {
			t.Fatalf("refined sample should carry the post-flip sign, got velocity %v", got.Velocity)
		}
	}
}

func TestRefineSignChange_RetrogradeToDirect(t *testing.T) {
	flip := epoch.Add(5 * time.Hour)
	provider := ProviderFunc(func(_ context.Context, _ string, at time.Time, _ model.Frame) (model.Sample, error) {
		if at.Before(flip) {
			return model.Sample{Velocity: -0.2}, nil
		}
		return model.Sample{Velocity: 0}, nil // zero counts as direct
	})

	got, err := refineSignChange(context.Background(), &query{provider: provider},
		model.Sample{Time: epoch, Velocity: -0.2},
		model.Sample{Time: epoch.Add(8 * time.Hour), Velocity: 0.3},
		time.Minute,
	)
	if err != nil {
		t.Fatalf("refineSignChange: %v", err)
	}
	if got.Time.Before(flip) || got.Time.Sub(flip) > time.Minute {
		t.Fatalf("refined time %v not within a minute after %v", got.Time, flip)
	}
}

func TestRefineSignChange_NarrowBracketNeedsNoQueries(t *testing.T) {
	counter := &countingProvider{inner: flipProvider(epoch)}
	right := model.Sample{Time: epoch.Add(30 * time.Second), Velocity: -1}

	got, err := refineSignChange(context.Background(), &query{provider: counter},
		model.Sample{Time: epoch, Velocity: 1}, right, time.Minute)
	if err != nil {
		t.Fatalf("refineSignChange: %v", err)
	}
	if counter.count() != 0 {
		t.Fatalf("expected no provider queries, got %d", counter.count())
	}
	if !got.Time.Equal(right.Time) {
		t.Fatalf("expected right bracket back, got %v", got.Time)
	}
}

func TestRefineSignChange_SameSignRejected(t *testing.T) {
	_, err := refineSignChange(context.Background(), &query{provider: flipProvider(epoch)},
		model.Sample{Time: epoch, Velocity: 1},
		model.Sample{Time: epoch.Add(time.Hour), Velocity: 0},
		time.Minute,
	)
	if !errors.Is(err, ErrNoSignChange) {
		t.Fatalf("expected ErrNoSignChange, got %v", err)
	}
}

func TestRefineSignChange_ProviderErrorPropagates(t *testing.T) {
	boom := errors.New("ephemeris offline")
	provider := ProviderFunc(func(context.Context, string, time.Time, model.Frame) (model.Sample, error) {
		return model.Sample{}, boom
	})

	_, err := refineSignChange(context.Background(), &query{provider: provider},
		model.Sample{Time: epoch, Velocity: 1},
		model.Sample{Time: epoch.Add(time.Hour), Velocity: -1},
		time.Minute,
	)
	if err != boom {
		t.Fatalf("expected provider error unchanged, got %v", err)
	}
}

func TestRefineSignChange_IterationCapReturnsErrConvergence(t *testing.T) {
	defer func(n int) { maxBisectionIterations = n }(maxBisectionIterations)
	maxBisectionIterations = 4

	// A one-day bracket at one-minute tolerance needs 11 halvings.
	counter := &countingProvider{inner: flipProvider(epoch.Add(7 * time.Hour))}
	_, err := refineSignChange(context.Background(), &query{provider: counter},
		model.Sample{Time: epoch, Velocity: 1},
		model.Sample{Time: epoch.Add(24 * time.Hour), Velocity: -1},
		time.Minute,
	)
	if !errors.Is(err, ErrConvergence) {
		t.Fatalf("expected ErrConvergence, got %v", err)
	}
	if counter.count() != 4 {
		t.Fatalf("provider queries = %d, want 4", counter.count())
	}
}

func TestEngine_ConvergenceFailureIsReported(t *testing.T) {
	defer func(n int) { maxBisectionIterations = n }(maxBisectionIterations)
	maxBisectionIterations = 2

	e := NewEngine(loopingProvider(), catalogWith("mercury", 24*time.Hour, false))
	_, err := e.Measure(context.Background(), Request{
		Body:  "mercury",
		Start: epoch,
		End:   epoch.Add(30 * 24 * time.Hour),
	})
	if !errors.Is(err, ErrConvergence) {
		t.Fatalf("expected ErrConvergence from the engine, got %v", err)
	}
}
