package aurora

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Crossfade tuning. Alpha ramps linearly at fadeRatePerMS and deliberately
// overshoots into [-0.1, 1.1]: the soft margin absorbs float drift so a
// settled state never oscillates around the end stops.
const (
	fadeCeiling   = 1.1
	fadeFloor     = -0.1
	fadeRatePerMS = 1.0 / 500.0
)

// meshState is one generation of background mid-transition: its own lattice,
// tessellated mesh, album texture, pooled offscreen target, and fade
// progress. Exactly one state is the latest (arriving) generation; older
// ones drain out and are disposed once their alpha crosses the floor.
type meshState struct {
	grid    *Grid
	eval    *PatchEvaluator
	buf     *MeshBuffer
	texture *ebiten.Image
	target  *ebiten.Image

	alpha     float64
	departing bool
	dirty     bool // lattice or subdivision changed; re-tessellate before draw
}

// dispose releases the state's GPU resources. Tolerates partially-built
// states (nil texture/target) so teardown is safe on every path.
func (s *meshState) dispose(pool *renderTargetPool) {
	if s.texture != nil {
		s.texture.Deallocate()
		s.texture = nil
	}
	if s.target != nil {
		if pool != nil {
			pool.Release(s.target)
		} else {
			s.target.Deallocate()
		}
		s.target = nil
	}
}

// advanceFades moves every state's alpha by dt milliseconds. The last
// non-departing state is the arriving one and ramps toward the ceiling;
// everything else ramps toward the floor. When allDeparting is true (cover
// removed mid-transition) the arriving state drains too.
func advanceFades(states []*meshState, dtMS float64, allDeparting bool) {
	step := dtMS * fadeRatePerMS
	last := len(states) - 1
	for i, st := range states {
		arriving := i == last && !st.departing && !allDeparting
		if arriving {
			st.alpha = clamp(st.alpha+step, fadeFloor, fadeCeiling)
		} else {
			st.alpha = clamp(st.alpha-step, fadeFloor, fadeCeiling)
		}
	}
}

// pruneFaded removes and disposes states that have drained to the floor.
// Callers must finish iterating the list for rendering before calling this:
// render first, filter second, never both in one pass.
func pruneFaded(states []*meshState, pool *renderTargetPool) []*meshState {
	kept := states[:0]
	for _, st := range states {
		if st.alpha <= fadeFloor {
			st.dispose(pool)
			continue
		}
		kept = append(kept, st)
	}
	// Zero the tail so disposed states don't linger behind the slice.
	for i := len(kept); i < len(states); i++ {
		states[i] = nil
	}
	return kept
}

// fadesSettled reports whether the transition machine is at rest: either no
// states at all, or exactly one fully-arrived state.
func fadesSettled(states []*meshState) bool {
	if len(states) == 0 {
		return true
	}
	return len(states) == 1 && !states[0].departing && states[0].alpha >= fadeCeiling
}
