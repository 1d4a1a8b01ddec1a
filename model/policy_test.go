package model

import "testing"

func TestParsePolicy_RoundTrip(t *testing.T) {
	for _, p := range Policies {
		got, err := ParsePolicy(p.String())
		if err != nil {
			t.Fatalf("ParsePolicy(%q): %v", p.String(), err)
		}
		if got != p {
			t.Fatalf("ParsePolicy(%q) = %v, want %v", p.String(), got, p)
		}
	}
	if _, err := ParsePolicy("count-sideways"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}

func TestParseFrame(t *testing.T) {
	cases := []struct {
		in   string
		want Frame
	}{
		{"", DefaultFrame},
		{"heliocentric", Frame{Center: Heliocentric}},
		{"geocentric, sidereal", Frame{Center: Geocentric, Zodiac: Sidereal}},
		{"earth-fixed", Frame{EarthFixed: true}},
	}
	for _, tc := range cases {
		got, err := ParseFrame(tc.in)
		if err != nil {
			t.Fatalf("ParseFrame(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseFrame(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
	if _, err := ParseFrame("topocentric"); err == nil {
		t.Fatalf("expected error for unsupported component")
	}
}

func TestSampleDirect_ZeroIsDirect(t *testing.T) {
	if !(Sample{Velocity: 0}).Direct() {
		t.Fatalf("zero velocity should classify as direct")
	}
	if (Sample{Velocity: -0.1}).Direct() {
		t.Fatalf("negative velocity should classify as retrograde")
	}
}
