package model

import "fmt"

// Policy governs how retrograde segments contribute to a measurement.
type Policy int

const (
	// ZeroOut discards retrograde segments.
	ZeroOut Policy = iota
	// CountPositive adds the magnitude of retrograde segments.
	CountPositive
	// CountNegative adds retrograde segments with their true negative sign.
	CountNegative
)

// Policies lists every accounting policy in declaration order.
var Policies = []Policy{ZeroOut, CountPositive, CountNegative}

func (p Policy) String() string {
	switch p {
	case ZeroOut:
		return "zero-out"
	case CountPositive:
		return "count-positive"
	case CountNegative:
		return "count-negative"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy accepts the String spelling of a policy.
func ParsePolicy(s string) (Policy, error) {
	for _, p := range Policies {
		if p.String() == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown accounting policy %q", s)
}
