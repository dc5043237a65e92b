package aurora

import (
	"math"
	"testing"
)

func TestGovernorUncapped(t *testing.T) {
	var g frameGovernor
	for _, fps := range []float64{0, -5, math.Inf(1)} {
		g.setFPS(fps)
		for now := 0.0; now < 10; now++ {
			if !g.admit(now) {
				t.Fatalf("setFPS(%v): tick at %v throttled, want uncapped", fps, now)
			}
		}
	}
}

func TestGovernorThrottles(t *testing.T) {
	var g frameGovernor
	g.setFPS(10) // 100 ms interval

	if !g.admit(0) {
		t.Fatal("first tick must render")
	}
	if g.admit(50) {
		t.Error("tick at 50 ms admitted before the deadline")
	}
	if !g.admit(100) {
		t.Error("tick at the deadline rejected")
	}
	if g.admit(199) {
		t.Error("tick at 199 ms admitted before the second deadline")
	}
	if !g.admit(200) {
		t.Error("tick at 200 ms rejected")
	}
}

// Overshoot past a deadline shortens the next interval, so the cadence stays
// pinned to the cap instead of drifting late.
func TestGovernorOvershootCarry(t *testing.T) {
	var g frameGovernor
	g.setFPS(10)

	if !g.admit(0) {
		t.Fatal("first tick must render")
	}
	// 30 ms late; the next deadline moves to 200, not 230.
	if !g.admit(130) {
		t.Fatal("late tick rejected")
	}
	if g.admit(199) {
		t.Error("overshoot not carried: deadline drifted past 200")
	}
	if !g.admit(200) {
		t.Error("tick at the corrected deadline rejected")
	}
}

// A stall longer than one interval resets the cadence rather than rendering a
// burst to catch up.
func TestGovernorLongStall(t *testing.T) {
	var g frameGovernor
	g.setFPS(10)

	g.admit(0)
	if !g.admit(5000) {
		t.Fatal("tick after stall rejected")
	}
	// No carried overshoot: the next deadline is a full interval away.
	if g.admit(5050) {
		t.Error("post-stall tick admitted early")
	}
	if !g.admit(5100) {
		t.Error("post-stall cadence broken")
	}
}

func TestGovernorReset(t *testing.T) {
	var g frameGovernor
	g.setFPS(10)
	g.admit(0)
	g.reset()
	if !g.admit(10) {
		t.Error("tick after reset rejected")
	}
}

func TestPerfMonitorDisabled(t *testing.T) {
	var m perfMonitor
	for i := 0; i < 100; i++ {
		m.sample(float64(i) * 10)
	}
	if len(m.stamps) != 0 {
		t.Error("disabled monitor recorded samples")
	}
	if m.fps() != 0 {
		t.Errorf("disabled monitor fps = %v, want 0", m.fps())
	}
}

func TestPerfMonitorSteadyRate(t *testing.T) {
	m := perfMonitor{enabled: true}
	// 60 fps cadence for two seconds; the window keeps only the last second.
	for i := 0; i <= 120; i++ {
		m.sample(float64(i) * 1000 / 60)
	}
	got := m.fps()
	if math.Abs(got-60) > 1 {
		t.Errorf("fps = %v, want ~60", got)
	}
	if len(m.stamps) > 62 {
		t.Errorf("window kept %d stamps, want about one second's worth", len(m.stamps))
	}
}

func TestPerfMonitorIdle(t *testing.T) {
	m := perfMonitor{enabled: true}
	m.sample(0)
	if m.fps() != 0 {
		t.Errorf("single sample fps = %v, want 0", m.fps())
	}
}
