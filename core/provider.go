package core

import (
	"context"
	"time"

	"github.com/signalsfoundry/longitude/model"
)

// PositionProvider is the position oracle. It returns a body's longitude and
// velocity at an instant, in the given frame. Implementations must be
// deterministic for a fixed (body, at, frame) and safe for concurrent use.
type PositionProvider interface {
	Position(ctx context.Context, body string, at time.Time, frame model.Frame) (model.Sample, error)
}

// ProviderFunc adapts a function to PositionProvider.
type ProviderFunc func(ctx context.Context, body string, at time.Time, frame model.Frame) (model.Sample, error)

// Position implements PositionProvider.
func (f ProviderFunc) Position(ctx context.Context, body string, at time.Time, frame model.Frame) (model.Sample, error) {
	return f(ctx, body, at, frame)
}

// query is the single per-measurement view of a provider: it pins body and
// frame, stamps the requested time on the sample, normalizes longitude and
// counts calls. Errors are returned exactly as the provider produced them.
type query struct {
	provider PositionProvider
	body     string
	frame    model.Frame
	calls    int
}

func (q *query) at(ctx context.Context, t time.Time) (model.Sample, error) {
	q.calls++
	s, err := q.provider.Position(ctx, q.body, t, q.frame)
	if err != nil {
		return model.Sample{}, err
	}
	return model.Sample{
		Time:      t,
		Longitude: NormalizeDegrees(s.Longitude),
		Velocity:  s.Velocity,
	}, nil
}
