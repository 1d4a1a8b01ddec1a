package kb

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/signalsfoundry/longitude/model"
)

//go:embed bodies.yaml
var defaultCatalogYAML []byte

// catalogFile is the on-disk YAML layout.
type catalogFile struct {
	Bodies []bodyEntry `yaml:"bodies"`
}

type bodyEntry struct {
	ID         string     `yaml:"id"`
	Name       string     `yaml:"name"`
	Kind       string     `yaml:"kind"`
	Step       string     `yaml:"step"`
	NoiseGuard bool       `yaml:"noise_guard"`
	Orbit      *orbitYAML `yaml:"orbit"`
	Node       *nodeYAML  `yaml:"node"`
	TLE        []string   `yaml:"tle"`
	NoradID    uint32     `yaml:"norad_id"`
}

type orbitYAML struct {
	RadiusAU       float64 `yaml:"radius_au"`
	PeriodDays     float64 `yaml:"period_days"`
	LongitudeJ2000 float64 `yaml:"longitude_j2000"`
}

type nodeYAML struct {
	LongitudeJ2000 float64 `yaml:"longitude_j2000"`
	RatePerDay     float64 `yaml:"rate_per_day"`
	AmplitudeDeg   float64 `yaml:"amplitude_deg"`
	OscPeriodDays  float64 `yaml:"oscillation_period_days"`
	Opposite       bool    `yaml:"opposite"`
}

// DefaultCatalog returns a catalog of the built-in bodies.
func DefaultCatalog() (*Catalog, error) {
	c := NewCatalog()
	if err := c.LoadYAML(defaultCatalogYAML); err != nil {
		return nil, fmt.Errorf("load built-in catalog: %w", err)
	}
	return c, nil
}

// LoadCatalogFile reads a YAML catalog from path. Entries override bodies of
// the same ID in the built-in catalog.
func LoadCatalogFile(path string) (*Catalog, error) {
	c, err := DefaultCatalog()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return c, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %q: %w", path, err)
	}
	defer f.Close()

	if err := c.Load(f); err != nil {
		return nil, fmt.Errorf("load catalog %q: %w", path, err)
	}
	return c, nil
}

// Load decodes YAML from r and puts every body into the catalog.
func (c *Catalog) Load(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return c.LoadYAML(data)
}

// LoadYAML decodes a YAML document and puts every body into the catalog.
func (c *Catalog) LoadYAML(data []byte) error {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("decode yaml: %w", err)
	}
	for i, entry := range file.Bodies {
		b, err := entry.definition()
		if err != nil {
			return fmt.Errorf("body %d (%q): %w", i, entry.ID, err)
		}
		if err := c.PutBody(b); err != nil {
			return err
		}
	}
	return nil
}

func (e bodyEntry) definition() (model.BodyDefinition, error) {
	b := model.BodyDefinition{
		ID:         e.ID,
		Name:       e.Name,
		Kind:       model.ParseBodyKind(e.Kind),
		NoiseGuard: e.NoiseGuard,
		NoradID:    e.NoradID,
	}
	if b.Name == "" {
		b.Name = e.ID
	}
	if e.Step != "" {
		step, err := time.ParseDuration(e.Step)
		if err != nil {
			return model.BodyDefinition{}, fmt.Errorf("step: %w", err)
		}
		b.Step = step
	}
	if e.Orbit != nil {
		b.Orbit = model.Orbit{
			RadiusAU:       e.Orbit.RadiusAU,
			PeriodDays:     e.Orbit.PeriodDays,
			LongitudeJ2000: e.Orbit.LongitudeJ2000,
		}
	}
	if e.Node != nil {
		b.Node = model.NodeMotion{
			LongitudeJ2000: e.Node.LongitudeJ2000,
			RatePerDay:     e.Node.RatePerDay,
			AmplitudeDeg:   e.Node.AmplitudeDeg,
			OscPeriodDays:  e.Node.OscPeriodDays,
			Opposite:       e.Node.Opposite,
		}
	}
	switch len(e.TLE) {
	case 0:
	case 2:
		b.TLELine1, b.TLELine2 = e.TLE[0], e.TLE[1]
	default:
		return model.BodyDefinition{}, fmt.Errorf("tle: want 2 lines, got %d", len(e.TLE))
	}
	return b, nil
}
