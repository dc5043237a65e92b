// Package aurora renders an animated, organically-morphing mesh-gradient
// background for [Ebitengine], derived from album-art pixel data. It is the
// kind of slowly-breathing colour field that sits behind a lyrics or
// now-playing UI.
//
// The pipeline: a rectangular lattice of [ControlPoint] values (position,
// colour, and two tangents per node) is tessellated into triangles by a
// bicubic Hermite patch evaluator, shaded through a Kage program that samples
// the processed album texture, and composited onto the screen with a
// crossfade whenever the album changes.
//
// # Quick start
//
//	r := aurora.NewRenderer(aurora.RendererConfig{Width: 640, Height: 480})
//	r.SetAlbum(aurora.StaticImage(cover))
//
//	type Game struct{ r *aurora.Renderer }
//
//	func (g *Game) Update() error              { return g.r.Update() }
//	func (g *Game) Draw(s *ebiten.Image)       { g.r.Draw(s) }
//	func (g *Game) Layout(w, h int) (int, int) { return w, h }
//
// Aurora owns no window and fetches no media: the caller supplies decoded
// images (or an [AlbumSource] that produces one) and a destination
// [ebiten.Image] each frame. Everything else (control-point generation,
// tessellation, crossfading, frame pacing) happens inside [Renderer].
//
// # Concurrency
//
// Aurora is single-threaded. All methods must be called from the Ebitengine
// game loop goroutine; there are no locks and reentrancy is not supported.
//
// [Ebitengine]: https://ebitengine.org
package aurora
