package aurora

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// wireframeColor is the stroke colour for the debug wireframe pass.
var wireframeColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// vertexStride is the logical vertex layout: 2 position, 3 colour, 2 uv.
const vertexStride = 7

// SurfaceEvaluator produces sampled vertices for a MeshBuffer. The buffer
// owns storage and indices; the evaluator owns the surface math. This is a
// strategy, not a base class: one buffer type serves every surface kind.
type SurfaceEvaluator interface {
	// VertexDims returns the logical vertex lattice size the evaluator
	// will fill (columns, rows).
	VertexDims() (w, h int)
	// Tessellate writes every vertex into dst via WriteVertex. ws is
	// caller-owned scratch, write-before-read: the evaluator must fully
	// overwrite any workspace value before using it.
	Tessellate(dst *MeshBuffer, ws *Workspace)
}

// MeshBuffer owns a flat vertex buffer and an index buffer for an N×M logical
// vertex lattice. It knows nothing about patches: vertices arrive through
// WriteVertex and leave as ebiten triangles (or a debug wireframe).
type MeshBuffer struct {
	verts []float32
	inds  []uint16
	vw    int
	vh    int

	wireframe bool

	// upload scratch, high-water-mark (never shrinks)
	ebVerts []ebiten.Vertex

	warnedRange bool
}

// NewMeshBuffer creates an empty mesh buffer. Call Resize before tessellating.
func NewMeshBuffer() *MeshBuffer {
	return &MeshBuffer{}
}

// Resize allocates storage for a vw×vh vertex lattice and rebuilds the index
// buffer. Existing vertex data is discarded; the evaluator must rewrite every
// vertex before the buffer is drawn.
func (b *MeshBuffer) Resize(vw, vh int) {
	if vw < 2 {
		vw = 2
	}
	if vh < 2 {
		vh = 2
	}
	b.vw = vw
	b.vh = vh
	if vw*vh > 1<<16 {
		warnf("meshbuffer-overflow", "vertex lattice %dx%d exceeds 16-bit indexing; mesh will render incorrectly", vw, vh)
	}

	need := vw * vh * vertexStride
	if cap(b.verts) < need {
		b.verts = make([]float32, need)
	}
	b.verts = b.verts[:need]
	for i := range b.verts {
		b.verts[i] = 0
	}
	b.warnedRange = false
	b.rebuildIndices()
}

// SetWireframe toggles debug wireframe mode and rebuilds the index buffer.
func (b *MeshBuffer) SetWireframe(on bool) {
	if b.wireframe == on {
		return
	}
	b.wireframe = on
	if b.vw >= 2 && b.vh >= 2 {
		b.rebuildIndices()
	}
}

// Wireframe reports whether the buffer draws as a debug wireframe.
func (b *MeshBuffer) Wireframe() bool { return b.wireframe }

// VertexDims returns the logical vertex lattice size (columns, rows).
func (b *MeshBuffer) VertexDims() (int, int) { return b.vw, b.vh }

// rebuildIndices fills the index buffer: two CCW triangles per quad, or five
// line segments per quad (four edges plus a diagonal) in wireframe mode.
func (b *MeshBuffer) rebuildIndices() {
	quads := (b.vw - 1) * (b.vh - 1)

	var need int
	if b.wireframe {
		need = quads * 10 // 5 segments, 2 indices each
	} else {
		need = quads * 6
	}
	if cap(b.inds) < need {
		b.inds = make([]uint16, need)
	}
	b.inds = b.inds[:need]

	w := b.vw
	ii := 0
	for y := 0; y < b.vh-1; y++ {
		for x := 0; x < b.vw-1; x++ {
			i00 := uint16(y*w + x)
			i01 := uint16(y*w + x + 1)
			i10 := uint16((y+1)*w + x)
			i11 := uint16((y+1)*w + x + 1)
			if b.wireframe {
				b.inds[ii+0], b.inds[ii+1] = i00, i01
				b.inds[ii+2], b.inds[ii+3] = i00, i10
				b.inds[ii+4], b.inds[ii+5] = i01, i11
				b.inds[ii+6], b.inds[ii+7] = i10, i11
				b.inds[ii+8], b.inds[ii+9] = i01, i10
				ii += 10
			} else {
				b.inds[ii+0], b.inds[ii+1], b.inds[ii+2] = i00, i01, i10
				b.inds[ii+3], b.inds[ii+4], b.inds[ii+5] = i01, i11, i10
				ii += 6
			}
		}
	}
}

// WriteVertex stores one logical vertex at the given lattice index. An
// out-of-range index is a tessellation bug: it is logged once and skipped so
// the render loop stays alive.
func (b *MeshBuffer) WriteVertex(idx int, x, y, r, g, bl, u, v float32) {
	off := idx * vertexStride
	if idx < 0 || off+vertexStride > len(b.verts) {
		if !b.warnedRange {
			b.warnedRange = true
			errorf("vertex index %d out of range (buffer holds %d vertices)", idx, b.vw*b.vh)
		}
		return
	}
	b.verts[off+0] = x
	b.verts[off+1] = y
	b.verts[off+2] = r
	b.verts[off+3] = g
	b.verts[off+4] = bl
	b.verts[off+5] = u
	b.verts[off+6] = v
}

// Vertex returns the logical vertex at idx as (x, y, r, g, b, u, v).
func (b *MeshBuffer) Vertex(idx int) [vertexStride]float32 {
	var out [vertexStride]float32
	copy(out[:], b.verts[idx*vertexStride:])
	return out
}

// VertexCount returns the number of logical vertices.
func (b *MeshBuffer) VertexCount() int { return b.vw * b.vh }

// Indices returns the current index buffer. The returned slice MUST NOT be mutated.
func (b *MeshBuffer) Indices() []uint16 { return b.inds }

// Tessellate resizes the buffer to the evaluator's dimensions and lets the
// evaluator fill every vertex.
func (b *MeshBuffer) Tessellate(eval SurfaceEvaluator, ws *Workspace) {
	vw, vh := eval.VertexDims()
	if vw != b.vw || vh != b.vh {
		b.Resize(vw, vh)
	}
	eval.Tessellate(b, ws)
}

// upload converts the logical vertices into b.ebVerts for submission.
// Positions map [-1,1]² onto the dstW×dstH target; uv maps onto the texture
// in pixel units as Kage shaders expect.
func (b *MeshBuffer) upload(texW, texH, dstW, dstH float32) []ebiten.Vertex {
	n := b.vw * b.vh
	if cap(b.ebVerts) < n {
		b.ebVerts = make([]ebiten.Vertex, n)
	}
	b.ebVerts = b.ebVerts[:n]

	for i := 0; i < n; i++ {
		off := i * vertexStride
		b.ebVerts[i] = ebiten.Vertex{
			DstX:   (b.verts[off+0] + 1) * 0.5 * dstW,
			DstY:   (b.verts[off+1] + 1) * 0.5 * dstH,
			SrcX:   b.verts[off+5] * texW,
			SrcY:   b.verts[off+6] * texH,
			ColorR: b.verts[off+2],
			ColorG: b.verts[off+3],
			ColorB: b.verts[off+4],
			ColorA: 1,
		}
	}
	return b.ebVerts
}

// draw submits the mesh to dst: an opaque triangle pass through the shading
// program, or stroked line segments in wireframe mode.
func (b *MeshBuffer) draw(dst *ebiten.Image, shader *ebiten.Shader, tex *ebiten.Image, uniforms map[string]any) {
	if b.vw < 2 || b.vh < 2 || tex == nil {
		return
	}
	texB := tex.Bounds()
	dstB := dst.Bounds()
	verts := b.upload(
		float32(texB.Dx()), float32(texB.Dy()),
		float32(dstB.Dx()), float32(dstB.Dy()),
	)

	if b.wireframe {
		for i := 0; i+1 < len(b.inds); i += 2 {
			a := verts[b.inds[i]]
			c := verts[b.inds[i+1]]
			vector.StrokeLine(dst, a.DstX, a.DstY, c.DstX, c.DstY, 1, wireframeColor, false)
		}
		return
	}

	var op ebiten.DrawTrianglesShaderOptions
	op.Uniforms = uniforms
	op.Images[0] = tex
	op.Blend = ebiten.BlendCopy // opaque pass; crossfade blending happens at composite
	dst.DrawTrianglesShader(verts, b.inds, shader, &op)
}
