// Package units converts measured degrees into named presentation units.
package units

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownUnit is returned when a unit name is neither standard nor sized.
var ErrUnknownUnit = errors.New("unknown unit")

// Unit is a named angular size in degrees.
type Unit struct {
	Name string
	Size float64
}

var (
	Degrees    = Unit{Name: "degrees", Size: 1}
	Arcminutes = Unit{Name: "arcminutes", Size: 1.0 / 60}
	Arcseconds = Unit{Name: "arcseconds", Size: 1.0 / 3600}
	Circles    = Unit{Name: "circles", Size: 360}
	Signs      = Unit{Name: "signs", Size: 30}
	Nakshatras = Unit{Name: "nakshatras", Size: 360.0 / 27}
)

// Standard lists the built-in units in presentation order.
var Standard = []Unit{Degrees, Arcminutes, Arcseconds, Circles, Signs, Nakshatras}

// Lookup resolves a built-in unit by name, case-insensitively.
func Lookup(name string) (Unit, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, u := range Standard {
		if u.Name == name {
			return u, nil
		}
	}
	return Unit{}, fmt.Errorf("%w: %q", ErrUnknownUnit, name)
}

// Parse reads a comma-separated unit list. Each entry is either a built-in
// name or name=size for a custom unit of size degrees. An empty list yields
// degrees only.
func Parse(list string) ([]Unit, error) {
	if strings.TrimSpace(list) == "" {
		return []Unit{Degrees}, nil
	}
	var out []Unit
	for _, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, rawSize, sized := strings.Cut(entry, "=")
		if !sized {
			u, err := Lookup(name)
			if err != nil {
				return nil, err
			}
			out = append(out, u)
			continue
		}
		size, err := strconv.ParseFloat(strings.TrimSpace(rawSize), 64)
		if err != nil || size <= 0 {
			return nil, fmt.Errorf("unit %q: size must be a positive number of degrees", entry)
		}
		out = append(out, Unit{Name: strings.TrimSpace(name), Size: size})
	}
	return out, nil
}

// Table maps each unit name to degrees expressed in that unit.
func Table(degrees float64, units []Unit) map[string]float64 {
	out := make(map[string]float64, len(units))
	for _, u := range units {
		if u.Size == 0 {
			continue
		}
		out[u.Name] = degrees / u.Size
	}
	return out
}
