package core

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/signalsfoundry/longitude/model"
)

var epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func days(t time.Time) float64 {
	return t.Sub(epoch).Hours() / 24
}

// curveProvider evaluates an analytic longitude curve and its derivative.
func curveProvider(lon, vel func(d float64) float64) ProviderFunc {
	return func(_ context.Context, _ string, at time.Time, _ model.Frame) (model.Sample, error) {
		d := days(at)
		return model.Sample{Longitude: math.Mod(lon(d), 360), Velocity: vel(d)}, nil
	}
}

// linearProvider moves at a constant rate in degrees per day.
func linearProvider(start, rate float64) ProviderFunc {
	return curveProvider(
		func(d float64) float64 { return start + rate*d },
		func(float64) float64 { return rate },
	)
}

// loopingProvider makes periodic retrograde loops: mean motion 0.5°/day plus
// a 3° sinusoid with a 2π-day period.
func loopingProvider() ProviderFunc {
	return curveProvider(
		func(d float64) float64 { return 100 + 0.5*d + 3*math.Sin(d) },
		func(d float64) float64 { return 0.5 + 3*math.Cos(d) },
	)
}

// countingProvider records how many times the wrapped provider is queried.
type countingProvider struct {
	mu    sync.Mutex
	inner PositionProvider
	calls int
}

func (c *countingProvider) Position(ctx context.Context, body string, at time.Time, frame model.Frame) (model.Sample, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.inner.Position(ctx, body, at, frame)
}

func (c *countingProvider) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type mapCatalog map[string]model.BodyDefinition

func (m mapCatalog) GetBody(id string) (model.BodyDefinition, bool) {
	b, ok := m[id]
	return b, ok
}

func catalogWith(id string, step time.Duration, guard bool) mapCatalog {
	return mapCatalog{id: {ID: id, Name: id, Step: step, NoiseGuard: guard}}
}

type fakeMetrics struct {
	mu           sync.Mutex
	measurements map[string]int
	queries      map[string]int
	signChanges  int
	skips        int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{measurements: map[string]int{}, queries: map[string]int{}}
}

func (f *fakeMetrics) ObserveMeasurement(body string, policy model.Policy, outcome string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.measurements[outcome]++
}

func (f *fakeMetrics) AddProviderQueries(_, phase string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries[phase] += n
}

func (f *fakeMetrics) AddSignChanges(_ string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signChanges += n
}

func (f *fakeMetrics) AddGuardSkips(_ string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.skips += n
}
