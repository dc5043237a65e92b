package aurora

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertVec2Near(t *testing.T, name string, got, want Vec2) {
	t.Helper()
	if math.Abs(got.X-want.X) > epsilon || math.Abs(got.Y-want.Y) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

// --- Grid.Resize ---

func TestGridResizeLattice(t *testing.T) {
	for _, dims := range [][2]int{{2, 2}, {3, 5}, {7, 4}, {10, 10}} {
		w, h := dims[0], dims[1]
		g, err := NewGrid(w, h)
		if err != nil {
			t.Fatalf("NewGrid(%d, %d): %v", w, h, err)
		}
		if g.Width() != w || g.Height() != h {
			t.Fatalf("dims = %dx%d, want %dx%d", g.Width(), g.Height(), w, h)
		}

		assertVec2Near(t, "location(0,0)", g.At(0, 0).Location, Vec2{-1, -1})
		assertVec2Near(t, "location(w-1,h-1)", g.At(w-1, h-1).Location, Vec2{1, 1})

		// Regular spacing across the whole lattice.
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				want := Vec2{
					X: float64(x)/float64(w-1)*2 - 1,
					Y: float64(y)/float64(h-1)*2 - 1,
				}
				assertVec2Near(t, "lattice node", g.At(x, y).Location, want)
			}
		}
	}
}

func TestGridResizeTooSmall(t *testing.T) {
	g := &Grid{}
	if err := g.Resize(1, 5); err == nil {
		t.Error("Resize(1, 5) should fail")
	}
	if err := g.Resize(5, 1); err == nil {
		t.Error("Resize(5, 1) should fail")
	}
	if err := g.Resize(0, 0); err == nil {
		t.Error("Resize(0, 0) should fail")
	}
}

func TestGridResizeDiscardsCustomization(t *testing.T) {
	g, _ := NewGrid(4, 4)
	g.At(1, 1).Color = RGB{0.2, 0.4, 0.6}
	g.At(1, 1).SetOrientation(0.5, -0.5, 1.3, 0.7)

	if err := g.Resize(4, 4); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	p := g.At(1, 1)
	if p.Color != (RGB{1, 1, 1}) {
		t.Errorf("colour survived resize: %v", p.Color)
	}
	if p.URot != 0 || p.UScale != 1 {
		t.Errorf("orientation survived resize: rot=%v scale=%v", p.URot, p.UScale)
	}
}

// --- ControlPoint.SetOrientation ---

func TestSetOrientationDefaultTangents(t *testing.T) {
	var p ControlPoint
	p.SetOrientation(0, 0, 1, 1)
	assertVec2Near(t, "UTangent", p.UTangent, Vec2{1, 0})
	assertVec2Near(t, "VTangent", p.VTangent, Vec2{0, 1})
}

func TestSetOrientationTangentInvariant(t *testing.T) {
	angles := []float64{-1.2, -0.3, 0, 0.7, math.Pi / 3}
	scales := []float64{0, 0.5, 1, 1.8}
	var p ControlPoint
	for _, ur := range angles {
		for _, vr := range angles {
			for _, us := range scales {
				for _, vs := range scales {
					p.SetOrientation(ur, vr, us, vs)
					assertVec2Near(t, "UTangent", p.UTangent,
						Vec2{math.Cos(ur) * us, math.Sin(ur) * us})
					assertVec2Near(t, "VTangent", p.VTangent,
						Vec2{-math.Sin(vr) * vs, math.Cos(vr) * vs})
				}
			}
		}
	}
}

func TestSetOrientationNoStaleTangents(t *testing.T) {
	var p ControlPoint
	p.SetOrientation(0.4, 0.4, 1.1, 1.1)
	first := p.UTangent
	p.SetOrientation(1.1, 0.4, 1.1, 1.1)
	if p.UTangent == first {
		t.Error("UTangent not refreshed by rotation change")
	}
	assertNear(t, "stored URot", p.URot, 1.1)
}

func TestGridSetOverwrites(t *testing.T) {
	g, _ := NewGrid(3, 3)
	var p ControlPoint
	p.Location = Vec2{0.25, -0.5}
	p.Color = RGB{1, 0, 0}
	p.SetOrientation(0.1, 0.2, 1, 1)
	g.Set(2, 1, p)
	got := g.At(2, 1)
	assertVec2Near(t, "Set location", got.Location, Vec2{0.25, -0.5})
	if got.Color != (RGB{1, 0, 0}) {
		t.Errorf("Set colour = %v", got.Color)
	}
}
