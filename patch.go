package aurora

// mat4 is a row-major 4×4 matrix. vec4 is a 4-component row vector.
type (
	mat4 [4][4]float64
	vec4 [4]float64
)

// hermiteBasis is the fixed cubic Hermite basis H. For a power-basis row
// vector p(t) = [t³, t², t, 1], the product p·H yields the four blending
// functions [h00, h01, h10, h11].
var hermiteBasis = mat4{
	{2, -2, 1, 1},
	{-3, 3, -2, -1},
	{0, 0, 1, 0},
	{1, 0, 0, 0},
}

// matMul stores a·b into dst. dst must not alias a or b.
func matMul(dst, a, b *mat4) {
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			dst[i][j] = a[i][0]*b[0][j] + a[i][1]*b[1][j] + a[i][2]*b[2][j] + a[i][3]*b[3][j]
		}
	}
}

// matMulTransposeB stores a·bᵀ into dst. dst must not alias a or b.
func matMulTransposeB(dst, a, b *mat4) {
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			dst[i][j] = a[i][0]*b[j][0] + a[i][1]*b[j][1] + a[i][2]*b[j][2] + a[i][3]*b[j][3]
		}
	}
}

// vecMat stores the row-vector product v·m into dst. dst must not alias v.
func vecMat(dst *vec4, v *vec4, m *mat4) {
	for j := 0; j < 4; j++ {
		dst[j] = v[0]*m[0][j] + v[1]*m[1][j] + v[2]*m[2][j] + v[3]*m[3][j]
	}
}

func dot4(a, b *vec4) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] + a[3]*b[3]
}

// powerVec fills dst with the power basis [t³, t², t, 1].
func powerVec(t float64, dst *vec4) {
	t2 := t * t
	dst[0] = t2 * t
	dst[1] = t2
	dst[2] = t
	dst[3] = 1
}

// channel indices into the per-cell coefficient matrices.
const (
	chX = iota
	chY
	chR
	chG
	chB
	channelCount
)

// Workspace holds the scratch matrices and vectors a tessellation pass reuses
// across every cell, purely to avoid per-cell allocation. Every value is
// fully overwritten before each use; no state carries over between cells.
// The zero value is ready to use. A Workspace belongs to its caller and must
// not be shared across concurrent tessellations (aurora is single-threaded,
// so in practice one per renderer).
type Workspace struct {
	coeff [channelCount]mat4 // H·M·Hᵀ per channel, rebuilt per cell
	m     mat4               // Hermite coefficient matrix for one channel
	tmp   mat4               // intermediate product H·M
	rows  [channelCount]vec4 // per-sample-row intermediates uVec·coeff
	uvec  vec4
	vvec  vec4
}

// PatchEvaluator tessellates a control-point grid as a quilt of bicubic
// Hermite patches: one patch per lattice cell, Subdivisions sample steps per
// cell per axis, with cell-boundary samples shared between neighbours so the
// whole surface is one continuous vertex lattice.
//
// The patches carry no twist vectors: the cross (uv) tangent term is fixed
// at zero.
type PatchEvaluator struct {
	Grid         *Grid
	Subdivisions int // sample steps per cell per axis, >= 1
}

// VertexDims returns the tessellated vertex lattice size: (W-1)·S+1 columns
// by (H-1)·S+1 rows for a W×H grid at subdivision S.
func (e *PatchEvaluator) VertexDims() (int, int) {
	s := e.steps()
	return (e.Grid.Width()-1)*s + 1, (e.Grid.Height()-1)*s + 1
}

func (e *PatchEvaluator) steps() int {
	if e.Subdivisions < 1 {
		return 1
	}
	return e.Subdivisions
}

// Tessellate samples every patch cell into dst. For each cell it builds, per
// scalar channel (x, y, r, g, b), the 4×4 Hermite coefficient matrix from the
// corner values and tangents, folds in the basis as H·M·Hᵀ once, then
// evaluates uVec·M'·vVec at each of the (S+1)² parametric samples.
func (e *PatchEvaluator) Tessellate(dst *MeshBuffer, ws *Workspace) {
	g := e.Grid
	s := e.steps()
	gw, gh := g.Width(), g.Height()
	vw := (gw-1)*s + 1
	vh := (gh-1)*s + 1
	inv := 1.0 / float64(s)

	for cy := 0; cy < gh-1; cy++ {
		for cx := 0; cx < gw-1; cx++ {
			p00 := g.At(cx, cy)
			p10 := g.At(cx+1, cy)
			p01 := g.At(cx, cy+1)
			p11 := g.At(cx+1, cy+1)

			e.channelMatrix(&ws.m, chX, p00, p10, p01, p11)
			foldBasis(&ws.coeff[chX], &ws.m, &ws.tmp)
			e.channelMatrix(&ws.m, chY, p00, p10, p01, p11)
			foldBasis(&ws.coeff[chY], &ws.m, &ws.tmp)
			e.channelMatrix(&ws.m, chR, p00, p10, p01, p11)
			foldBasis(&ws.coeff[chR], &ws.m, &ws.tmp)
			e.channelMatrix(&ws.m, chG, p00, p10, p01, p11)
			foldBasis(&ws.coeff[chG], &ws.m, &ws.tmp)
			e.channelMatrix(&ws.m, chB, p00, p10, p01, p11)
			foldBasis(&ws.coeff[chB], &ws.m, &ws.tmp)

			for i := 0; i <= s; i++ {
				powerVec(float64(i)*inv, &ws.uvec)
				for c := 0; c < channelCount; c++ {
					vecMat(&ws.rows[c], &ws.uvec, &ws.coeff[c])
				}
				gx := cx*s + i

				for j := 0; j <= s; j++ {
					powerVec(float64(j)*inv, &ws.vvec)
					gy := cy*s + j

					x := dot4(&ws.rows[chX], &ws.vvec)
					y := dot4(&ws.rows[chY], &ws.vvec)
					r := dot4(&ws.rows[chR], &ws.vvec)
					gc := dot4(&ws.rows[chG], &ws.vvec)
					b := dot4(&ws.rows[chB], &ws.vvec)

					// The tessellated surface is one continuous quilt:
					// u runs down the grid's height axis, v runs inverted
					// across its width axis. Texture sampling depends on
					// exactly this layout.
					u := float64(gy) / float64(vh-1)
					v := 1 - float64(gx)/float64(vw-1)

					dst.WriteVertex(gy*vw+gx,
						float32(x), float32(y),
						float32(r), float32(gc), float32(b),
						float32(u), float32(v))
				}
			}
		}
	}
}

// channelMatrix builds the Hermite coefficient matrix for one scalar channel.
// Rows index the u end conditions (value at u=0, value at u=1, u-tangent at
// u=0, u-tangent at u=1); columns index the v end conditions the same way.
// The lower-right 2×2 twist block stays zero.
func (e *PatchEvaluator) channelMatrix(m *mat4, ch int, p00, p10, p01, p11 *ControlPoint) {
	f := channelValue
	ut := channelUTangent
	vt := channelVTangent

	m[0][0], m[0][1], m[0][2], m[0][3] = f(p00, ch), f(p01, ch), vt(p00, ch), vt(p01, ch)
	m[1][0], m[1][1], m[1][2], m[1][3] = f(p10, ch), f(p11, ch), vt(p10, ch), vt(p11, ch)
	m[2][0], m[2][1], m[2][2], m[2][3] = ut(p00, ch), ut(p01, ch), 0, 0
	m[3][0], m[3][1], m[3][2], m[3][3] = ut(p10, ch), ut(p11, ch), 0, 0
}

// foldBasis stores H·m·Hᵀ into dst using tmp as the intermediate.
func foldBasis(dst, m, tmp *mat4) {
	matMul(tmp, &hermiteBasis, m)
	matMulTransposeB(dst, tmp, &hermiteBasis)
}

func channelValue(p *ControlPoint, ch int) float64 {
	switch ch {
	case chX:
		return p.Location.X
	case chY:
		return p.Location.Y
	case chR:
		return p.Color.R
	case chG:
		return p.Color.G
	default:
		return p.Color.B
	}
}

// channelUTangent returns the u-direction tangent component for a channel.
// Colour channels interpolate without tangents.
func channelUTangent(p *ControlPoint, ch int) float64 {
	switch ch {
	case chX:
		return p.UTangent.X
	case chY:
		return p.UTangent.Y
	default:
		return 0
	}
}

func channelVTangent(p *ControlPoint, ch int) float64 {
	switch ch {
	case chX:
		return p.VTangent.X
	case chY:
		return p.VTangent.Y
	default:
		return 0
	}
}
