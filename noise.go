package aurora

import "math"

// noiseField is a smooth 2D value-noise field: hashed lattice values,
// bilinearly interpolated. Deterministic for a given seed.
type noiseField struct {
	seed uint64
}

// lattice returns the hashed value in [0, 1) at integer coordinates.
func (f noiseField) lattice(ix, iy int64) float64 {
	h := uint64(ix)*0x9E3779B97F4A7C15 ^ uint64(iy)*0xC2B2AE3D27D4EB4F ^ f.seed
	h ^= h >> 33
	h *= 0xFF51AFD7ED558CCD
	h ^= h >> 33
	return float64(h>>11) / float64(1<<53)
}

// at evaluates the field at (x, y) by bilinear interpolation of the four
// surrounding lattice values.
func (f noiseField) at(x, y float64) float64 {
	x0 := math.Floor(x)
	y0 := math.Floor(y)
	fx := x - x0
	fy := y - y0
	ix := int64(x0)
	iy := int64(y0)

	v00 := f.lattice(ix, iy)
	v10 := f.lattice(ix+1, iy)
	v01 := f.lattice(ix, iy+1)
	v11 := f.lattice(ix+1, iy+1)

	return lerp(lerp(v00, v10, fx), lerp(v01, v11, fx), fy)
}

// noiseGradientEps is the central-difference step for gradient estimation.
const noiseGradientEps = 1e-3

// gradient estimates the field's gradient at (x, y) by central finite
// difference and normalizes it to unit length. A flat neighbourhood yields
// the zero vector.
func (f noiseField) gradient(x, y float64) (float64, float64) {
	gx := f.at(x+noiseGradientEps, y) - f.at(x-noiseGradientEps, y)
	gy := f.at(x, y+noiseGradientEps) - f.at(x, y-noiseGradientEps)
	ln := math.Sqrt(gx*gx + gy*gy)
	if ln < 1e-12 {
		return 0, 0
	}
	return gx / ln, gy / ln
}

// smoothstep is the cubic Hermite step between edge0 and edge1.
func smoothstep(edge0, edge1, x float64) float64 {
	t := clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}
