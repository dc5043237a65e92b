package aurora

import (
	"fmt"
	"math"
)

// ControlPoint is one node of the gradient lattice: a position, a colour, and
// two tangent vectors that define a bicubic Hermite patch corner.
//
// The tangents are always a pure function of the stored rotation and scale:
//
//	UTangent = (cos(URot)·UScale,  sin(URot)·UScale)
//	VTangent = (-sin(VRot)·VScale, cos(VRot)·VScale)
//
// Mutate rotation and scale through SetOrientation so the derived tangents
// can never go stale. The tangent fields themselves are read-only outputs.
type ControlPoint struct {
	Location Vec2
	Color    RGB

	URot, VRot     float64 // radians
	UScale, VScale float64 // >= 0

	UTangent Vec2
	VTangent Vec2
}

// SetOrientation stores the rotations and scales and refreshes both derived
// tangents in the same call. There is no way to update one without the other.
func (p *ControlPoint) SetOrientation(uRot, vRot, uScale, vScale float64) {
	p.URot = uRot
	p.VRot = vRot
	p.UScale = uScale
	p.VScale = vScale
	p.UTangent = Vec2{X: math.Cos(uRot) * uScale, Y: math.Sin(uRot) * uScale}
	p.VTangent = Vec2{X: -math.Sin(vRot) * vScale, Y: math.Cos(vRot) * vScale}
}

// Grid is a dense row-major W×H lattice of control points. It is owned by a
// mesh state and replaced wholesale on Resize; per-point customization does
// not survive a resize.
type Grid struct {
	w, h   int
	points []ControlPoint
}

// NewGrid creates a grid initialized to the default lattice. Width and height
// must both be at least 2.
func NewGrid(w, h int) (*Grid, error) {
	g := &Grid{}
	if err := g.Resize(w, h); err != nil {
		return nil, err
	}
	return g, nil
}

// Resize reinitializes the grid to w×h nodes, border and interior alike,
// discarding all prior customization. Every node is seeded on the regular
// planar lattice spanning [-1, 1]² with rotation 0 and scale 1.
//
// The caller must re-tessellate afterwards: any previously computed mesh no
// longer matches the lattice.
func (g *Grid) Resize(w, h int) error {
	if w < 2 || h < 2 {
		return fmt.Errorf("aurora: grid resize %dx%d: both dimensions must be >= 2", w, h)
	}
	g.w = w
	g.h = h
	need := w * h
	if cap(g.points) < need {
		g.points = make([]ControlPoint, need)
	}
	g.points = g.points[:need]

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := &g.points[y*w+x]
			*p = ControlPoint{
				Location: Vec2{
					X: float64(x)/float64(w-1)*2 - 1,
					Y: float64(y)/float64(h-1)*2 - 1,
				},
				Color: RGB{1, 1, 1},
			}
			p.SetOrientation(0, 0, 1, 1)
		}
	}
	return nil
}

// Width returns the number of lattice columns.
func (g *Grid) Width() int { return g.w }

// Height returns the number of lattice rows.
func (g *Grid) Height() int { return g.h }

// At returns the control point at (x, y). Indexing is unchecked: the caller
// must respect 0 <= x < Width and 0 <= y < Height.
func (g *Grid) At(x, y int) *ControlPoint {
	return &g.points[y*g.w+x]
}

// Set overwrites the control point at (x, y). Indexing is unchecked, same as At.
func (g *Grid) Set(x, y int, p ControlPoint) {
	g.points[y*g.w+x] = p
}
