// Package scene holds the static table of simulator environments a run can target.
package scene

import (
	"slices"
	"fmt"
	"sort"
	"time"
)

// WeatherParameter mirrors the simulator's weather enum.
type WeatherParameter int

const (
	Rain WeatherParameter = iota
	RoadWetness
	Snow
	RoadSnow
	MapleLeaf
	RoadLeaf
	Dust
	Fog
)

// WeatherParameterCount is the number of settable weather parameters.
const WeatherParameterCount = 8

// WeatherOverlay is one weather parameter set at a fixed intensity.
type WeatherOverlay struct {
	Parameter WeatherParameter
	Intensity float32
}

// Range is a half-open interval [Min, Max).
type Range struct {
	Min float64
	Max float64
}

// RegionKind selects how two range draws map to a horizontal position.
type RegionKind int

const (
	// Rect draws x from XRange and y from YRange.
	Rect RegionKind = iota
	// Diagonal draws s from XRange and d from YRange and places the point at
	// (s+d, s-d), a band along the x=y diagonal.
	Diagonal
)

// Profile describes one environment. Profiles are values and never modified.
type Profile struct {
	Name   string
	XRange Range
	YRange Range
	Region RegionKind

	// ProbeAltitude is the height the ground probe starts from.
	ProbeAltitude float64

	// CollisionTolerant disables the depth-based collision check.
	CollisionTolerant bool

	// Weather enables the weather system, clears every parameter and applies Overlays.
	Weather  bool
	Overlays []WeatherOverlay

	// Pause is inserted after simulator commands for environments that fall behind.
	Pause time.Duration
}

// Position maps two draws (u from XRange, v from YRange) to a horizontal position.
func (p Profile) Position(u, v float64) (x, y float64) {
	if p.Region == Diagonal {
		return u + v, u - v
	}
	return u, v
}

// UnknownEnvironmentError is returned for names missing from the table.
type UnknownEnvironmentError struct {
	Name string
}

func (e *UnknownEnvironmentError) Error() string {
	return fmt.Sprintf("unknown environment %q", e.Name)
}

// Coordinates in the table come from the editor, divided by 100 (editor units are cm).
var profiles = map[string]Profile{
	"blocks": {
		Name:          "blocks",
		XRange:        Range{-50, 50},
		YRange:        Range{-50, 50},
		ProbeAltitude: 5,
		Pause:         50 * time.Millisecond,
	},
	"nh": {
		Name:          "nh",
		XRange:        Range{-150, 150},
		YRange:        Range{-150, 150},
		ProbeAltitude: 5,
		Weather:       true,
	},
	"nh_fall": {
		Name:          "nh_fall",
		XRange:        Range{-150, 150},
		YRange:        Range{-150, 150},
		ProbeAltitude: 5,
		Weather:       true,
		Overlays:      []WeatherOverlay{{MapleLeaf, 1}, {RoadLeaf, 1}},
	},
	"nh_winter": {
		Name:          "nh_winter",
		XRange:        Range{-150, 150},
		YRange:        Range{-150, 150},
		ProbeAltitude: 5,
		Weather:       true,
		Overlays:      []WeatherOverlay{{Snow, 1}, {RoadSnow, 1}},
	},
	// Several kilometres wide; the lake and roads lie along the diagonal and the
	// terrain height varies a lot, so probe from higher up.
	"mountains": {
		Name:          "mountains",
		XRange:        Range{0, 2500},
		YRange:        Range{-100, 100},
		Region:        Diagonal,
		ProbeAltitude: 100,
	},
	// Dense branches: sequences that brush them are kept.
	"trap": {
		Name:              "trap",
		XRange:            Range{-10, 10},
		YRange:            Range{-10, 10},
		ProbeAltitude:     5,
		CollisionTolerant: true,
	},
}

// BoundsFor returns the profile registered under name.
func BoundsFor(name string) (Profile, error) {
	p, ok := profiles[name]
	if !ok {
		return Profile{}, &UnknownEnvironmentError{Name: name}
	}
	p.Overlays = slices.Clone(p.Overlays)
	return p, nil
}

// Names returns the registered environment names in sorted order.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
