package aurora

import (
	"fmt"
	"image"
	"math/rand/v2"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// AlbumSource produces one decoded album image. Decoding and fetching live
// outside aurora; a source only hands over pixels. Load may fail
// transiently, in which case the renderer retries on subsequent ticks.
type AlbumSource interface {
	Load() (image.Image, error)
}

type staticImageSource struct {
	img image.Image
}

func (s staticImageSource) Load() (image.Image, error) { return s.img, nil }

// StaticImage wraps an already-decoded image as an AlbumSource.
func StaticImage(img image.Image) AlbumSource {
	return staticImageSource{img: img}
}

// maxAlbumRetries bounds transient load failures before the renderer gives
// up and falls back to the no-cover state.
const maxAlbumRetries = 5

// volume smoothing approaches the caller-supplied level over roughly this
// many milliseconds.
const volumeSmoothMS = 200

// RendererConfig configures a Renderer. Zero fields take defaults.
type RendererConfig struct {
	// Width, Height are the drawable surface size in pixels. Fixed for the
	// renderer's lifetime.
	Width, Height int

	// GridWidth, GridHeight are the control lattice dimensions used for
	// procedurally generated transitions (presets carry their own).
	// Default 5×5.
	GridWidth, GridHeight int

	// Subdivisions is the tessellation sample count per patch cell per
	// axis. Default 10.
	Subdivisions int

	// FPS caps the render rate. Zero defaults to 60; +Inf or a negative
	// value disables the cap.
	FPS float64

	// Seed fixes all procedural randomness. Zero seeds from the clock.
	Seed uint64

	// Generator tunes procedural lattices. The zero value takes
	// DefaultGeneratorConfig.
	Generator GeneratorConfig
}

// Renderer owns the animation loop state: the live mesh-state list, the
// offscreen compositing chain, frame pacing, and the public control surface.
// All methods must be called from the game loop goroutine.
type Renderer struct {
	cfg RendererConfig

	states  []*meshState
	pending *albumRequest

	noCover       bool
	manualControl bool
	wireframe     bool
	staticMode    bool
	paused        bool
	disposed      bool

	subdivisions int
	gridW, gridH int

	ws  Workspace
	rng *rand.Rand

	gov  frameGovernor
	perf perfMonitor

	volume       float64
	targetVolume float64

	timeMS   float64 // timeline position of the current tick
	lastTick float64
	epoch    time.Time
	now      func() time.Time // injectable clock

	mainProg   *program
	pool       renderTargetPool
	frame      *ebiten.Image // composited output, blitted to the screen each Draw
	frameValid bool
}

type albumRequest struct {
	src      AlbumSource
	attempts int
}

// NewRenderer creates a renderer for a Width×Height drawable surface. GPU
// resources are created lazily on first draw, never here.
func NewRenderer(cfg RendererConfig) *Renderer {
	if cfg.Width <= 0 {
		cfg.Width = 1
	}
	if cfg.Height <= 0 {
		cfg.Height = 1
	}
	if cfg.GridWidth < 2 {
		cfg.GridWidth = 5
	}
	if cfg.GridHeight < 2 {
		cfg.GridHeight = 5
	}
	if cfg.Subdivisions < 1 {
		cfg.Subdivisions = 10
	}
	if cfg.FPS == 0 {
		cfg.FPS = 60
	}
	if cfg.Generator == (GeneratorConfig{}) {
		cfg.Generator = DefaultGeneratorConfig()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	r := &Renderer{
		cfg:          cfg,
		noCover:      true,
		subdivisions: cfg.Subdivisions,
		gridW:        cfg.GridWidth,
		gridH:        cfg.GridHeight,
		rng:          rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)),
		epoch:        time.Now(),
		now:          time.Now,
	}
	r.gov.setFPS(cfg.FPS)
	return r
}

// nowMS returns the renderer's timeline position in milliseconds.
func (r *Renderer) nowMS() float64 {
	return float64(r.now().Sub(r.epoch)) / float64(time.Millisecond)
}

// Update advances the renderer by one tick: pending album work, volume
// smoothing, crossfade progress, and disposal of drained states. A panic
// inside the tick is logged and swallowed so the scheduler stays alive.
func (r *Renderer) Update() error {
	if r.disposed || r.paused {
		return nil
	}
	now := r.nowMS()
	dt := now - r.lastTick
	if r.lastTick == 0 {
		dt = 0
	}
	r.lastTick = now
	r.timeMS = now

	func() {
		defer func() {
			if rec := recover(); rec != nil {
				errorf("tick failed: %v", rec)
			}
		}()
		r.tick(dt)
	}()
	return nil
}

// tick is the per-frame state advance. dt is in milliseconds.
func (r *Renderer) tick(dt float64) {
	r.processPendingAlbum()

	// Smooth the ambient volume toward the caller-supplied level, snapping
	// once the gap is inaudible so the settle detector can close.
	r.volume += (r.targetVolume - r.volume) * clamp(dt/volumeSmoothMS, 0, 1)
	if diff := r.targetVolume - r.volume; diff > -1e-3 && diff < 1e-3 {
		r.volume = r.targetVolume
	}

	if len(r.states) > 0 {
		advanceFades(r.states, dt, r.noCover)
		before := len(r.states)
		r.states = pruneFaded(r.states, &r.pool)
		if len(r.states) != before || !fadesSettled(r.states) {
			r.frameValid = false
		}
	}

	if r.manualControl {
		// Manual control implies the caller may be mutating control
		// points every frame; keep re-tessellating.
		for _, st := range r.states {
			st.dirty = true
		}
		r.frameValid = false
	}

	if r.volume != r.targetVolume {
		r.frameValid = false
	}
}

// processPendingAlbum runs the bounded retry loop for the most recent
// SetAlbum call. Overlapping SetAlbum calls replace the pending request
// before it is processed: last call wins.
func (r *Renderer) processPendingAlbum() {
	if r.pending == nil {
		return
	}
	req := r.pending

	img, err := req.src.Load()
	if err != nil {
		req.attempts++
		if req.attempts >= maxAlbumRetries {
			errorf("album load failed after %d attempts: %v", req.attempts, err)
			r.pending = nil
			r.noCover = true
			r.frameValid = false
		}
		return
	}
	r.pending = nil
	if img == nil {
		r.noCover = true
		r.frameValid = false
		return
	}

	processed := processAlbumImage(img)
	tex := ebiten.NewImageFromImage(processed)

	if r.manualControl && len(r.states) > 0 {
		// Manual control swaps the texture in place: no crossfade, no
		// new generation.
		latest := r.states[len(r.states)-1]
		if latest.texture != nil {
			latest.texture.Deallocate()
		}
		latest.texture = tex
		r.noCover = false
		r.frameValid = false
		return
	}

	st, err := r.newMeshState(tex)
	if err != nil {
		errorf("building transition state: %v", err)
		tex.Deallocate()
		return
	}
	for _, prev := range r.states {
		prev.departing = true
	}
	r.states = append(r.states, st)
	r.noCover = false
	r.frameValid = false
	r.gov.reset()
}

// newMeshState builds a fresh generation: lattice, evaluator, and a mesh
// tessellated once up front.
func (r *Renderer) newMeshState(tex *ebiten.Image) (*meshState, error) {
	grid := &Grid{}
	if err := buildTransitionGrid(grid, r.gridW, r.gridH, r.cfg.Generator, r.rng); err != nil {
		return nil, err
	}
	st := &meshState{
		grid:    grid,
		eval:    &PatchEvaluator{Grid: grid, Subdivisions: r.subdivisions},
		buf:     NewMeshBuffer(),
		texture: tex,
		alpha:   0,
	}
	st.buf.SetWireframe(r.wireframe)
	st.buf.Tessellate(st.eval, &r.ws)
	return st, nil
}

// Draw renders the background onto screen. Rendering happens into an
// offscreen frame first; throttled, paused, and statically-settled draws
// reuse the previous frame.
func (r *Renderer) Draw(screen *ebiten.Image) {
	if r.disposed {
		return
	}
	r.ensureFrame()

	// Paused, statically-settled, and throttled draws blit the cached
	// frame. The admit call is last so skipped draws don't consume the
	// throttle schedule.
	static := r.staticMode && r.frameValid && fadesSettled(r.states) && !r.manualControl
	if !r.paused && !static && r.gov.admit(r.timeMS) {
		r.renderFrame()
		r.perf.sample(r.timeMS)
		r.frameValid = true
	}

	var op ebiten.DrawImageOptions
	op.Blend = ebiten.BlendCopy
	screen.DrawImage(r.frame, &op)
}

// ensureFrame lazily creates the composited-output image.
func (r *Renderer) ensureFrame() {
	if r.frame != nil {
		return
	}
	r.frame = ebiten.NewImage(r.cfg.Width, r.cfg.Height)
}

// renderFrame runs the two-pass pipeline: every live state renders its mesh
// into its own offscreen target (opaque pass), then each target composites
// onto the frame weighted by its eased crossfade alpha.
func (r *Renderer) renderFrame() {
	if r.mainProg == nil {
		r.mainProg = newProgram("gradient", mainShaderSrc, "Time", "Aspect", "Volume", "Alpha")
	}
	w, h := r.cfg.Width, r.cfg.Height

	r.frame.Clear()

	r.mainProg.set("Time", float32(r.timeMS/10000))
	r.mainProg.set("Aspect", float32(float64(w)/float64(h)))
	r.mainProg.set("Volume", float32(r.volume))
	r.mainProg.set("Alpha", float32(1))

	for _, st := range r.states {
		if st.dirty {
			st.buf.Tessellate(st.eval, &r.ws)
			st.dirty = false
		}
		if st.target == nil {
			st.target = r.pool.Acquire(w, h)
		} else {
			st.target.Clear()
		}
		view := st.target.SubImage(image.Rect(0, 0, w, h)).(*ebiten.Image)
		st.buf.draw(view, r.mainProg.shader, st.texture, r.mainProg.uniforms)

		var op ebiten.DrawImageOptions
		op.Blend = blendCrossfade
		op.ColorScale.ScaleAlpha(float32(easeInOutSine(clamp(st.alpha, 0, 1))))
		r.frame.DrawImage(view, &op)
	}
}

// --- Public control surface ---

// SetAlbum requests a background change. A nil source enters the no-cover
// state (all generations fade out). Overlapping calls are not queued: the
// most recent request wins.
func (r *Renderer) SetAlbum(src AlbumSource) {
	if r.disposed {
		return
	}
	if src == nil {
		r.pending = nil
		r.noCover = true
		r.frameValid = false
		return
	}
	r.pending = &albumRequest{src: src}
	r.gov.reset()
}

// SetLowFreqVolume supplies the low-frequency audio amplitude the shading
// pulse follows. The renderer smooths it over time.
func (r *Renderer) SetLowFreqVolume(v float64) {
	r.targetVolume = clamp(v, 0, 1)
}

// SetManualControl toggles manual lattice control. While enabled, album
// changes swap the current texture in place (no crossfade) and the mesh
// re-tessellates every frame so external control-point edits show up.
func (r *Renderer) SetManualControl(on bool) {
	r.manualControl = on
	r.frameValid = false
	r.gov.reset()
}

// SetWireframe toggles the debug wireframe pass on every live state.
func (r *Renderer) SetWireframe(on bool) {
	r.wireframe = on
	for _, st := range r.states {
		st.buf.SetWireframe(on)
	}
	r.frameValid = false
}

// ResizeControlPoints re-seeds the latest generation's lattice to w×h
// default nodes, discarding prior customization, and re-tessellates. The
// dimensions also become the default for future procedural lattices.
func (r *Renderer) ResizeControlPoints(w, h int) error {
	if w < 2 || h < 2 {
		return fmt.Errorf("aurora: resize control points %dx%d: both dimensions must be >= 2", w, h)
	}
	r.gridW, r.gridH = w, h
	if st := r.latest(); st != nil {
		if err := st.grid.Resize(w, h); err != nil {
			return err
		}
		st.dirty = true
		r.frameValid = false
	}
	return nil
}

// ResetSubdivision changes the tessellation density (sample steps per patch
// cell per axis) for all live states.
func (r *Renderer) ResetSubdivision(level int) error {
	if level < 1 {
		return fmt.Errorf("aurora: subdivision level %d: must be >= 1", level)
	}
	r.subdivisions = level
	for _, st := range r.states {
		st.eval.Subdivisions = level
		st.dirty = true
	}
	r.frameValid = false
	return nil
}

// ControlPoint returns the node at (x, y) of the latest generation's
// lattice, or nil when no generation is live. Indexing is unchecked beyond
// that, matching Grid.At.
func (r *Renderer) ControlPoint(x, y int) *ControlPoint {
	st := r.latest()
	if st == nil {
		return nil
	}
	return st.grid.At(x, y)
}

// SetStaticMode stops re-rendering once the crossfade settles; the last
// composited frame is reused until the next cover change or control call.
func (r *Renderer) SetStaticMode(on bool) {
	r.staticMode = on
	if !on {
		r.frameValid = false
		r.gov.reset()
	}
}

// SetFPS caps the render rate. +Inf or a non-positive value removes
// throttling entirely.
func (r *Renderer) SetFPS(fps float64) {
	r.gov.setFPS(fps)
}

// Pause freezes the renderer: ticks stop advancing and draws reuse the last
// frame. Any throttling schedule is discarded.
func (r *Renderer) Pause() {
	r.paused = true
	r.gov.reset()
}

// Resume restarts a paused renderer without a delta-time jump.
func (r *Renderer) Resume() {
	if !r.paused {
		return
	}
	r.paused = false
	r.lastTick = 0
	r.frameValid = false
}

// EnablePerformanceMonitor toggles frame-rate sampling for CurrentFPS.
func (r *Renderer) EnablePerformanceMonitor(on bool) {
	r.perf.enabled = on
	if !on {
		r.perf.stamps = r.perf.stamps[:0]
	}
}

// CurrentFPS reports the rendered frame rate over the last second, or 0 when
// the performance monitor is disabled.
func (r *Renderer) CurrentFPS() float64 {
	return r.perf.fps()
}

// Dispose releases every GPU resource and cancels all pending work.
// Idempotent: a second call is a no-op. After Dispose the renderer renders
// nothing and schedules nothing.
func (r *Renderer) Dispose() {
	if r.disposed {
		return
	}
	r.disposed = true
	r.pending = nil
	for _, st := range r.states {
		st.dispose(&r.pool)
	}
	r.states = nil
	r.pool.Dispose()
	if r.frame != nil {
		r.frame.Deallocate()
		r.frame = nil
	}
	if r.mainProg != nil {
		r.mainProg.dispose()
		r.mainProg = nil
	}
}

// latest returns the arriving (most recent) state, or nil.
func (r *Renderer) latest() *meshState {
	if len(r.states) == 0 {
		return nil
	}
	return r.states[len(r.states)-1]
}
