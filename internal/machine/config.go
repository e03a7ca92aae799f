package machine

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrConfig marks fatal pre-run configuration problems. All Validate
// failures wrap it.
var ErrConfig = errors.New("invalid machine config")

// Station is a fixed pick-up location for one brick color: the dispenser XY
// and the nozzle height at which a brick friction-fits into the socket.
type Station struct {
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	GrabZ float64 `yaml:"grab_z"`
}

// Config is the whole physical setup for one conversion run. It is built
// once (from a profile plus an optional YAML overlay), validated, and never
// mutated afterwards.
type Config struct {
	// Which structure axis plays which role. Values are axis indices 0..2.
	ColAxis   int `yaml:"col_axis"`
	RowAxis   int `yaml:"row_axis"`
	DepthAxis int `yaml:"depth_axis"`

	// DepthSlice selects a single depth slice; nil merges all slices.
	// Only meaningful when DepthPitch is zero (flat-wall layouts).
	DepthSlice *int `yaml:"depth_slice"`

	// Machine-space position of structure index (0,0,0), in mm.
	OriginX float64 `yaml:"origin_x"`
	OriginY float64 `yaml:"origin_y"`
	OriginZ float64 `yaml:"origin_z"`

	// Spacing per structure index step, in mm. RowPitch may be negative to
	// build top-down; DepthPitch zero collapses depth onto a fixed Y.
	ColPitch   float64 `yaml:"col_pitch"`
	RowPitch   float64 `yaml:"row_pitch"`
	DepthPitch float64 `yaml:"depth_pitch"`

	// Nozzle geometry: distance from reported nozzle Z down to the bottom
	// face of the held brick, and the extra travel below nominal resting
	// height that makes studs engage.
	NozzleDrop float64 `yaml:"nozzle_drop"`
	PushExtra  float64 `yaml:"push_extra"`

	ApproachClearance float64 `yaml:"approach_clearance"`
	SafeZ             float64 `yaml:"safe_z"`
	MaxZ              float64 `yaml:"max_z"`
	ClearRise         float64 `yaml:"clear_rise"`

	// Feed rates in mm/min.
	FeedTravel   int `yaml:"feed_travel"`
	FeedCarry    int `yaml:"feed_carry"`
	FeedApproach int `yaml:"feed_approach"`
	FeedPush     int `yaml:"feed_push"`
	FeedPark     int `yaml:"feed_park"`

	PickDwellMs   int `yaml:"pick_dwell_ms"`
	SettleDwellMs int `yaml:"settle_dwell_ms"`

	// Axis-datum declarations issued during setup. The machine has no
	// absolute Z reference; the operator parks the nozzle before the run and
	// the script labels that position ZDatum.
	HomeOffsetX float64 `yaml:"home_offset_x"`
	HomeOffsetY float64 `yaml:"home_offset_y"`
	ZDatum      float64 `yaml:"z_datum"`

	Stations map[string]Station `yaml:"stations"`
}

// Default is the 3-D build profile: depth drives machine Y, single RED
// dispenser geometry.
func Default() Config {
	return Config{
		ColAxis:   0,
		RowAxis:   1,
		DepthAxis: 2,

		OriginX: 64.0,
		OriginY: 32.0,
		OriginZ: 0.0,

		ColPitch:   16.0, // long axis of a 2x1 brick runs along X
		RowPitch:   9.6,
		DepthPitch: 8.0,

		ApproachClearance: 6.0,
		SafeZ:             70.0,
		MaxZ:              210.0,
		ClearRise:         10.0,

		FeedTravel:   20000,
		FeedCarry:    12000,
		FeedApproach: 4000,
		FeedPush:     500,
		FeedPark:     720,

		PickDwellMs:   500,
		SettleDwellMs: 200,

		HomeOffsetX: -11,
		HomeOffsetY: -7,
		ZDatum:      3.8,

		Stations: map[string]Station{
			"RED": {X: 24.0, Y: 0.0, GrabZ: 3.4},
		},
	}
}

// DefaultWall is the flat-wall profile: one brick deep, depth slice 0,
// two-color dispensers, taller nozzle head.
func DefaultWall() Config {
	slice := 0
	return Config{
		ColAxis:    0,
		RowAxis:    1,
		DepthAxis:  2,
		DepthSlice: &slice,

		OriginX: 50.0,
		OriginY: 150.0,
		OriginZ: 5.0,

		ColPitch: 16.0,
		RowPitch: 9.6,

		NozzleDrop: 20.0,
		PushExtra:  1.5,

		ApproachClearance: 6.0,
		SafeZ:             80.0,
		MaxZ:              210.0,
		ClearRise:         10.0,

		FeedTravel:   6000,
		FeedCarry:    2000,
		FeedApproach: 800,
		FeedPush:     150,
		FeedPark:     720,

		PickDwellMs:   500,
		SettleDwellMs: 200,

		ZDatum: 3.8,

		Stations: map[string]Station{
			"RED":    {X: 0.0, Y: 0.0, GrabZ: 5.0},
			"YELLOW": {X: 30.0, Y: 0.0, GrabZ: 5.0},
		},
	}
}

// Load overlays a YAML file on top of a base profile.
func Load(path string, base Config) (Config, error) {
	cfg := base
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// WithFeedScale returns a copy with every feed rate scaled by f. This is the
// trial-run preset: same motion, watchable speed.
func (c Config) WithFeedScale(f float64) Config {
	scale := func(feed int) int {
		v := int(float64(feed) * f)
		if v < 1 {
			v = 1
		}
		return v
	}
	c.FeedTravel = scale(c.FeedTravel)
	c.FeedCarry = scale(c.FeedCarry)
	c.FeedApproach = scale(c.FeedApproach)
	c.FeedPush = scale(c.FeedPush)
	return c
}

// Validate checks everything a run depends on before any motion is compiled.
// The color map is checked too: every color it can produce must have a
// station, so station lookup is total at compile time.
func (c Config) Validate(cm *ColorMap) error {
	if c.ColAxis < 0 || c.ColAxis > 2 || c.RowAxis < 0 || c.RowAxis > 2 || c.DepthAxis < 0 || c.DepthAxis > 2 {
		return fmt.Errorf("%w: axis indices must be 0..2", ErrConfig)
	}
	if c.ColAxis == c.RowAxis || c.ColAxis == c.DepthAxis || c.RowAxis == c.DepthAxis {
		return fmt.Errorf("%w: axis roles must be distinct (col=%d row=%d depth=%d)", ErrConfig, c.ColAxis, c.RowAxis, c.DepthAxis)
	}
	if c.ColPitch == 0 || c.RowPitch == 0 {
		return fmt.Errorf("%w: col and row pitch must be non-zero", ErrConfig)
	}
	if c.DepthSlice != nil && c.DepthPitch != 0 {
		return fmt.Errorf("%w: depth_slice and depth_pitch are mutually exclusive", ErrConfig)
	}
	if c.ApproachClearance <= 0 {
		return fmt.Errorf("%w: approach_clearance must be positive", ErrConfig)
	}
	if c.MaxZ <= c.SafeZ {
		return fmt.Errorf("%w: max_z %.1f must exceed safe_z %.1f", ErrConfig, c.MaxZ, c.SafeZ)
	}
	for _, f := range []struct {
		name string
		v    int
	}{
		{"feed_travel", c.FeedTravel},
		{"feed_carry", c.FeedCarry},
		{"feed_approach", c.FeedApproach},
		{"feed_push", c.FeedPush},
		{"feed_park", c.FeedPark},
	} {
		if f.v <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrConfig, f.name)
		}
	}
	if c.PickDwellMs < 0 || c.SettleDwellMs < 0 {
		return fmt.Errorf("%w: dwell durations must not be negative", ErrConfig)
	}
	if len(c.Stations) == 0 {
		return fmt.Errorf("%w: no stations configured", ErrConfig)
	}
	if cm != nil {
		if _, ok := c.Stations[cm.Default]; !ok {
			return fmt.Errorf("%w: no station for default color %q", ErrConfig, cm.Default)
		}
		for block, color := range cm.Blocks {
			if _, ok := c.Stations[color]; !ok {
				return fmt.Errorf("%w: no station for color %q (mapped from %s)", ErrConfig, color, block)
			}
		}
	}
	return nil
}
