package aurora

import "math"

// frameGovernor enforces a maximum render rate on a millisecond timeline.
// The overshoot past a deadline is subtracted from the next interval, so the
// effective rate stays pinned to the cap on high-refresh displays instead of
// drifting below it.
type frameGovernor struct {
	interval float64 // ms between frames; 0 means uncapped
	next     float64 // earliest timeline position for the next frame
}

// setFPS caps the render rate. Zero, negative, or +Inf removes the cap
// entirely: every tick renders.
func (g *frameGovernor) setFPS(fps float64) {
	if fps <= 0 || math.IsInf(fps, 1) {
		g.interval = 0
		g.next = 0
		return
	}
	g.interval = 1000 / fps
}

// admit reports whether a frame may render at timeline position now (ms).
// On admission it schedules the next deadline, carrying the overshoot
// remainder forward.
func (g *frameGovernor) admit(now float64) bool {
	if g.interval <= 0 {
		return true
	}
	if now < g.next {
		return false
	}
	over := now - g.next
	if over > g.interval {
		// Long stall (pause, tab hidden): don't try to catch up.
		over = 0
	}
	g.next = now + g.interval - over
	return true
}

// reset clears the schedule so the next tick renders immediately.
func (g *frameGovernor) reset() {
	g.next = 0
}

// perfWindowMS is the sliding window the performance monitor averages over.
const perfWindowMS = 1000

// perfMonitor tracks rendered-frame timestamps over a sliding window.
// Disabled by default; sampling costs nothing when off.
type perfMonitor struct {
	enabled bool
	stamps  []float64
}

// sample records a rendered frame at timeline position now (ms) and evicts
// stamps older than the window.
func (m *perfMonitor) sample(now float64) {
	if !m.enabled {
		return
	}
	m.stamps = append(m.stamps, now)
	cut := 0
	for cut < len(m.stamps) && m.stamps[cut] <= now-perfWindowMS {
		cut++
	}
	if cut > 0 {
		m.stamps = m.stamps[:copy(m.stamps, m.stamps[cut:])]
	}
}

// fps returns the frame rate over the window, or 0 when disabled or idle.
func (m *perfMonitor) fps() float64 {
	if !m.enabled || len(m.stamps) < 2 {
		return 0
	}
	span := m.stamps[len(m.stamps)-1] - m.stamps[0]
	if span <= 0 {
		return 0
	}
	return float64(len(m.stamps)-1) * 1000 / span
}
