package aurora

import (
	"math"
	"math/rand/v2"
)

// presetOrient is one hand-authored node orientation: rotations in degrees,
// scales unitless. Kept in degrees so the tables read like the design doc
// they were tuned in.
type presetOrient struct {
	uRot, vRot     float64
	uScale, vScale float64
}

// preset is a hand-authored control-point lattice: fixed dimensions plus an
// orientation per node. Locations stay on the regular lattice; the character
// comes entirely from the tangent field.
type preset struct {
	name    string
	w, h    int
	orients []presetOrient
}

// The preset library. Tuned by hand against real album art; order matters
// only for reproducibility of seeded picks.
var presets = []preset{
	{
		name: "drift", w: 4, h: 4,
		orients: []presetOrient{
			{0, 0, 1, 1}, {0, 0, 1, 1}, {0, 0, 1, 1}, {0, 0, 1, 1},
			{0, 0, 1, 1}, {18, -12, 1.1, 0.9}, {-15, 9, 0.95, 1.05}, {0, 0, 1, 1},
			{0, 0, 1, 1}, {-21, 15, 0.9, 1.1}, {12, -18, 1.05, 0.95}, {0, 0, 1, 1},
			{0, 0, 1, 1}, {0, 0, 1, 1}, {0, 0, 1, 1}, {0, 0, 1, 1},
		},
	},
	{
		name: "vortex", w: 5, h: 4,
		orients: []presetOrient{
			{0, 0, 1, 1}, {0, 0, 1, 1}, {0, 0, 1, 1}, {0, 0, 1, 1}, {0, 0, 1, 1},
			{0, 0, 1, 1}, {33, 33, 1.15, 1.15}, {45, 45, 1.2, 1.2}, {33, 33, 1.15, 1.15}, {0, 0, 1, 1},
			{0, 0, 1, 1}, {-33, -33, 1.15, 1.15}, {-45, -45, 1.2, 1.2}, {-33, -33, 1.15, 1.15}, {0, 0, 1, 1},
			{0, 0, 1, 1}, {0, 0, 1, 1}, {0, 0, 1, 1}, {0, 0, 1, 1}, {0, 0, 1, 1},
		},
	},
	{
		name: "ripple", w: 5, h: 5,
		orients: []presetOrient{
			{0, 0, 1, 1}, {0, 0, 1, 1}, {0, 0, 1, 1}, {0, 0, 1, 1}, {0, 0, 1, 1},
			{0, 0, 1, 1}, {24, 0, 1.1, 0.85}, {0, 24, 0.85, 1.1}, {24, 0, 1.1, 0.85}, {0, 0, 1, 1},
			{0, 0, 1, 1}, {0, -24, 0.85, 1.1}, {0, 0, 1.2, 1.2}, {0, -24, 0.85, 1.1}, {0, 0, 1, 1},
			{0, 0, 1, 1}, {-24, 0, 1.1, 0.85}, {0, -24, 0.85, 1.1}, {-24, 0, 1.1, 0.85}, {0, 0, 1, 1},
			{0, 0, 1, 1}, {0, 0, 1, 1}, {0, 0, 1, 1}, {0, 0, 1, 1}, {0, 0, 1, 1},
		},
	},
	{
		name: "banner", w: 6, h: 3,
		orients: []presetOrient{
			{0, 0, 1, 1}, {0, 0, 1, 1}, {0, 0, 1, 1}, {0, 0, 1, 1}, {0, 0, 1, 1}, {0, 0, 1, 1},
			{0, 0, 1, 1}, {27, -9, 1.15, 0.9}, {-18, 6, 0.9, 1.15}, {18, -6, 1.15, 0.9}, {-27, 9, 0.9, 1.15}, {0, 0, 1, 1},
			{0, 0, 1, 1}, {0, 0, 1, 1}, {0, 0, 1, 1}, {0, 0, 1, 1}, {0, 0, 1, 1}, {0, 0, 1, 1},
		},
	},
}

// applyPreset resizes g to the preset's dimensions and applies its
// orientation table. Locations keep their lattice defaults.
func applyPreset(g *Grid, p preset) error {
	if err := g.Resize(p.w, p.h); err != nil {
		return err
	}
	for y := 0; y < p.h; y++ {
		for x := 0; x < p.w; x++ {
			o := p.orients[y*p.w+x]
			g.At(x, y).SetOrientation(
				o.uRot*math.Pi/180,
				o.vRot*math.Pi/180,
				o.uScale,
				o.vScale,
			)
		}
	}
	return nil
}

// presetWeight is the probability a new transition uses a hand-authored
// preset instead of the procedural generator.
const presetWeight = 0.8

// buildTransitionGrid fills g with the lattice for a new album transition:
// a randomly-chosen preset most of the time, a procedural grid otherwise.
func buildTransitionGrid(g *Grid, w, h int, cfg GeneratorConfig, rng *rand.Rand) error {
	if rng.Float64() < presetWeight {
		return applyPreset(g, presets[rng.IntN(len(presets))])
	}
	cfg.Seed = rng.Uint64()
	return GenerateControlPoints(g, w, h, cfg, rng)
}
