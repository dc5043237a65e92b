package aurora

import (
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween/ease"
)

// Vec2 is a 2D vector used for control-point positions and tangents.
// Mesh space spans [-1, 1] on both axes; conversion to pixels happens at
// upload time.
type Vec2 struct {
	X, Y float64
}

// RGB is a 3-channel colour with components in [0, 1]. Control points carry
// no alpha: fade progress lives on the mesh state, not on the lattice.
type RGB struct {
	R, G, B float64
}

// blendCrossfade composites an offscreen pass onto the visible surface.
// Colour uses source-alpha weighting while alpha accumulates with factor one,
// so stacked fading generations don't punch holes in each other.
var blendCrossfade = ebiten.Blend{
	BlendFactorSourceRGB:        ebiten.BlendFactorSourceAlpha,
	BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
	BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
	BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
	BlendOperationRGB:           ebiten.BlendOperationAdd,
	BlendOperationAlpha:         ebiten.BlendOperationAdd,
}

// easeInOutSine reparameterizes linear fade progress t in [0, 1] for
// perceptually smoother transitions.
func easeInOutSine(t float64) float64 {
	return float64(ease.InOutSine(float32(t), 0, 1, 1))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// warnedKeys tracks warnings that should fire a single time per key.
// Plain map, no sync.Once: aurora is single-threaded.
var warnedKeys map[string]bool

// warnf logs a one-shot warning to stderr keyed by key.
func warnf(key, format string, args ...any) {
	if warnedKeys[key] {
		return
	}
	if warnedKeys == nil {
		warnedKeys = make(map[string]bool)
	}
	warnedKeys[key] = true
	_, _ = fmt.Fprintf(os.Stderr, "[aurora] warning: "+format+"\n", args...)
}

// errorf logs an error to stderr. Used where the render loop must stay alive
// rather than propagate (album load failure, tick recovery).
func errorf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, "[aurora] error: "+format+"\n", args...)
}
