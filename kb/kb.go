package kb

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/signalsfoundry/longitude/model"
)

// ErrInvalidBody is returned for body definitions that cannot be measured.
var ErrInvalidBody = errors.New("invalid body definition")

// Catalog is an in-memory, thread-safe store of body definitions.
type Catalog struct {
	mu     sync.RWMutex
	bodies map[string]model.BodyDefinition
}

// NewCatalog constructs an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{bodies: make(map[string]model.BodyDefinition)}
}

// AddBody adds a body. It returns an error if the ID already exists or the
// definition is unusable.
func (c *Catalog) AddBody(b model.BodyDefinition) error {
	if err := validate(b); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.bodies[b.ID]; exists {
		return fmt.Errorf("body with ID %q already exists", b.ID)
	}
	c.bodies[b.ID] = b
	return nil
}

// PutBody adds or replaces a body.
func (c *Catalog) PutBody(b model.BodyDefinition) error {
	if err := validate(b); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.bodies[b.ID] = b
	return nil
}

// RemoveBody deletes a body. It returns an error if the ID is unknown.
func (c *Catalog) RemoveBody(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.bodies[id]; !ok {
		return fmt.Errorf("body with ID %q not found", id)
	}
	delete(c.bodies, id)
	return nil
}

// GetBody returns a copy of the body with the given ID.
func (c *Catalog) GetBody(id string) (model.BodyDefinition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.bodies[id]
	return b, ok
}

// ListBodies returns a snapshot of all bodies sorted by ID.
func (c *Catalog) ListBodies() []model.BodyDefinition {
	c.mu.RLock()
	res := make([]model.BodyDefinition, 0, len(c.bodies))
	for _, b := range c.bodies {
		res = append(res, b)
	}
	c.mu.RUnlock()

	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// Len returns the number of bodies.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.bodies)
}

func validate(b model.BodyDefinition) error {
	if b.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidBody)
	}
	if b.Step < 0 {
		return fmt.Errorf("%w: %s: negative step %v", ErrInvalidBody, b.ID, b.Step)
	}
	switch b.Kind {
	case model.BodyKindPlanet:
		// A zero radius places the body at the origin (the Sun).
		if b.Orbit.RadiusAU < 0 || (b.Orbit.RadiusAU > 0 && b.Orbit.PeriodDays <= 0) {
			return fmt.Errorf("%w: %s: orbit needs a positive period", ErrInvalidBody, b.ID)
		}
	case model.BodyKindNode:
		if b.Node.AmplitudeDeg != 0 && b.Node.OscPeriodDays <= 0 {
			return fmt.Errorf("%w: %s: oscillation period must be positive", ErrInvalidBody, b.ID)
		}
	case model.BodyKindSatellite:
		if b.TLELine1 == "" || b.TLELine2 == "" {
			return fmt.Errorf("%w: %s: satellite needs both TLE lines", ErrInvalidBody, b.ID)
		}
	default:
		return fmt.Errorf("%w: %s: unknown kind", ErrInvalidBody, b.ID)
	}
	return nil
}
