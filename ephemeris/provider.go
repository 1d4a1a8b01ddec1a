// Package ephemeris implements the position oracle consumed by the
// measurement engine: circular-orbit planets, lunar nodes and SGP4
// satellites. Every query carries its own model.Frame; the provider keeps no
// frame state between calls.
package ephemeris

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/signalsfoundry/longitude/core"
	"github.com/signalsfoundry/longitude/model"
)

// ErrUnsupportedFrame is returned when a body cannot be expressed in the
// requested frame (for example a heliocentric Sun).
var ErrUnsupportedFrame = errors.New("frame not supported for body")

// Provider dispatches position queries to the model matching each body's
// kind. It is safe for concurrent use.
type Provider struct {
	catalog core.BodyCatalog
	sats    *satelliteCache
}

// NewProvider constructs a Provider over catalog.
func NewProvider(catalog core.BodyCatalog) *Provider {
	return &Provider{catalog: catalog, sats: &satelliteCache{}}
}

// Position implements core.PositionProvider.
func (p *Provider) Position(_ context.Context, body string, at time.Time, frame model.Frame) (model.Sample, error) {
	b, ok := p.catalog.GetBody(body)
	if !ok {
		return model.Sample{}, fmt.Errorf("%w: %q", core.ErrUnknownBody, body)
	}

	switch b.Kind {
	case model.BodyKindPlanet:
		return planetPosition(b, at, frame)
	case model.BodyKindNode:
		return nodePosition(b, at, frame)
	case model.BodyKindSatellite:
		return satellitePosition(p.sats, b, at, frame)
	default:
		return model.Sample{}, fmt.Errorf("body %q has unsupported kind %v", body, b.Kind)
	}
}

func unsupported(b model.BodyDefinition, frame model.Frame) error {
	return fmt.Errorf("%w: %s in %s", ErrUnsupportedFrame, b.ID, frame)
}
