package aurora

import (
	"math"
	"math/rand/v2"
)

// GeneratorConfig tunes the procedural control-point generator. The zero
// value is not useful; start from DefaultGeneratorConfig.
type GeneratorConfig struct {
	// Jitter bounds the uniform random offset per interior node, as a
	// fraction of the local lattice spacing.
	Jitter float64
	// NoiseScale is the value-noise frequency across the lattice.
	NoiseScale float64
	// NoiseMagnitude scales the displacement along the noise gradient.
	NoiseMagnitude float64
	// SmoothIterations is the number of 3×3 Gaussian smoothing passes.
	SmoothIterations int
	// Seed fixes the noise field. The jitter/orientation randomness comes
	// from the rand source passed to GenerateControlPoints.
	Seed uint64
}

// DefaultGeneratorConfig returns the tuning used for album transitions.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Jitter:           0.25,
		NoiseScale:       1.5,
		NoiseMagnitude:   0.35,
		SmoothIterations: 4,
	}
}

const maxOrientRot = 60 * math.Pi / 180

// GenerateControlPoints fills g with a random-but-coherent w×h lattice:
// a regular grid whose interior is perturbed by bounded jitter plus a
// displacement along the gradient of a smooth value-noise field, randomly
// re-oriented, then relaxed by iterative neighbour-averaging.
//
// Border nodes stay frozen at their lattice defaults for the whole algorithm
// (location on the lattice, rotation 0, scale 1), so the surface remains
// anchored to the screen edges.
func GenerateControlPoints(g *Grid, w, h int, cfg GeneratorConfig, rng *rand.Rand) error {
	if err := g.Resize(w, h); err != nil {
		return err
	}

	field := noiseField{seed: cfg.Seed}
	spacingX := 2.0 / float64(w-1)
	spacingY := 2.0 / float64(h-1)

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			p := g.At(x, y)

			// (a) bounded uniform jitter.
			p.Location.X += (rng.Float64()*2 - 1) * cfg.Jitter * spacingX
			p.Location.Y += (rng.Float64()*2 - 1) * cfg.Jitter * spacingY

			// (b) displacement along the noise gradient, fading to zero
			// toward the border.
			nx := float64(x) * cfg.NoiseScale
			ny := float64(y) * cfg.NoiseScale
			gx, gy := field.gradient(nx, ny)
			border := math.Min(
				math.Min(float64(x), float64(w-1-x))*spacingX,
				math.Min(float64(y), float64(h-1-y))*spacingY,
			)
			mag := cfg.NoiseMagnitude * smoothstep(0, 1, border)
			p.Location.X += gx * mag
			p.Location.Y += gy * mag

			// (c) independent random orientation per axis.
			p.SetOrientation(
				(rng.Float64()*2-1)*maxOrientRot,
				(rng.Float64()*2-1)*maxOrientRot,
				0.8+rng.Float64()*0.4,
				0.8+rng.Float64()*0.4,
			)
		}
	}

	smoothControlGrid(g, cfg.SmoothIterations)
	return nil
}

// smoothField identifies one scalar being smoothed per node.
type smoothField int

const (
	smoothX smoothField = iota
	smoothY
	smoothURot
	smoothVRot
	smoothUScale
	smoothVScale
	smoothFieldCount
)

func smoothGet(p *ControlPoint, f smoothField) float64 {
	switch f {
	case smoothX:
		return p.Location.X
	case smoothY:
		return p.Location.Y
	case smoothURot:
		return p.URot
	case smoothVRot:
		return p.VRot
	case smoothUScale:
		return p.UScale
	default:
		return p.VScale
	}
}

// gaussKernel is the 3×3 binomial kernel, weights summing to 16.
var gaussKernel = [3][3]float64{
	{1, 2, 1},
	{2, 4, 2},
	{1, 2, 1},
}

// smoothControlGrid runs iterations of 3×3 Gaussian smoothing over the
// position, rotation, and scale of interior nodes. Border nodes contribute to
// their neighbours' averages but are never modified. Each iteration blends
// the kernel result with the pre-blur value; the blend factor creeps up per
// iteration (clamped to [0, 1]) so later passes commit harder to the average.
func smoothControlGrid(g *Grid, iterations int) {
	w, h := g.Width(), g.Height()
	if w < 3 || h < 3 {
		return
	}

	interior := (w - 2) * (h - 2)
	snapshot := make([]float64, interior*int(smoothFieldCount))

	for iter := 0; iter < iterations; iter++ {
		blend := clamp(0.5+0.05*float64(iter), 0, 1)

		// Phase one: kernel over the pre-iteration values.
		idx := 0
		for y := 1; y < h-1; y++ {
			for x := 1; x < w-1; x++ {
				for f := smoothField(0); f < smoothFieldCount; f++ {
					var sum float64
					for ky := -1; ky <= 1; ky++ {
						for kx := -1; kx <= 1; kx++ {
							sum += gaussKernel[ky+1][kx+1] * smoothGet(g.At(x+kx, y+ky), f)
						}
					}
					snapshot[idx] = sum / 16
					idx++
				}
			}
		}

		// Phase two: blend back into the interior and refresh tangents.
		idx = 0
		for y := 1; y < h-1; y++ {
			for x := 1; x < w-1; x++ {
				p := g.At(x, y)
				p.Location.X = lerp(p.Location.X, snapshot[idx+int(smoothX)], blend)
				p.Location.Y = lerp(p.Location.Y, snapshot[idx+int(smoothY)], blend)
				p.SetOrientation(
					lerp(p.URot, snapshot[idx+int(smoothURot)], blend),
					lerp(p.VRot, snapshot[idx+int(smoothVRot)], blend),
					lerp(p.UScale, snapshot[idx+int(smoothUScale)], blend),
					lerp(p.VScale, snapshot[idx+int(smoothVScale)], blend),
				)
				idx += int(smoothFieldCount)
			}
		}
	}
}
