package aurora

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// albumCanvasSize is the fixed working canvas the album art is reduced to
// before colour processing. The gradient only needs broad hue regions, so a
// small canvas keeps per-change cost flat regardless of source resolution.
const albumCanvasSize = 64

// colour matrices, 4×5 row-major (offset in elements 4, 9, 14, 19).

// contrastMatrix pivots channel values around mid-gray: c=1 is identity,
// 0 collapses to gray, >1 spreads.
func contrastMatrix(c float64) [20]float64 {
	t := (1 - c) / 2
	return [20]float64{
		c, 0, 0, 0, t,
		0, c, 0, 0, t,
		0, 0, c, 0, t,
		0, 0, 0, 1, 0,
	}
}

// saturateMatrix mixes each channel with luma. The 0.3/0.59/0.11 weights are
// the classic video luma split; they sum to 1 so grays are fixed points.
func saturateMatrix(s float64) [20]float64 {
	lr := (1 - s) * 0.3
	lg := (1 - s) * 0.59
	lb := (1 - s) * 0.11
	return [20]float64{
		lr + s, lg, lb, 0, 0,
		lr, lg + s, lb, 0, 0,
		lr, lg, lb + s, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// brightnessMatrix scales all channels: b=1 is identity, <1 darkens.
func brightnessMatrix(b float64) [20]float64 {
	return [20]float64{
		b, 0, 0, 0, 0,
		0, b, 0, 0, 0,
		0, 0, b, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// applyColorMatrix transforms every pixel of img in place, clamping each
// output channel to [0, 1].
func applyColorMatrix(img *image.RGBA, m [20]float64) {
	pix := img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		r := float64(pix[i]) / 255
		g := float64(pix[i+1]) / 255
		b := float64(pix[i+2]) / 255
		a := float64(pix[i+3]) / 255

		nr := clamp(m[0]*r+m[1]*g+m[2]*b+m[3]*a+m[4], 0, 1)
		ng := clamp(m[5]*r+m[6]*g+m[7]*b+m[8]*a+m[9], 0, 1)
		nb := clamp(m[10]*r+m[11]*g+m[12]*b+m[13]*a+m[14], 0, 1)
		na := clamp(m[15]*r+m[16]*g+m[17]*b+m[18]*a+m[19], 0, 1)

		pix[i] = uint8(nr*255 + 0.5)
		pix[i+1] = uint8(ng*255 + 0.5)
		pix[i+2] = uint8(nb*255 + 0.5)
		pix[i+3] = uint8(na*255 + 0.5)
	}
}

// boxBlur3 runs passes of a 3×3 box blur over img. The kernel shrinks at the
// edges instead of wrapping. Two passes approximate a small Gaussian.
func boxBlur3(img *image.RGBA, passes int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return
	}
	src := img.Pix
	tmp := make([]uint8, len(src))

	for p := 0; p < passes; p++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				var sr, sg, sb, sa, n int
				for ky := -1; ky <= 1; ky++ {
					yy := y + ky
					if yy < 0 || yy >= h {
						continue
					}
					for kx := -1; kx <= 1; kx++ {
						xx := x + kx
						if xx < 0 || xx >= w {
							continue
						}
						o := (yy*w + xx) * 4
						sr += int(src[o])
						sg += int(src[o+1])
						sb += int(src[o+2])
						sa += int(src[o+3])
						n++
					}
				}
				o := (y*w + x) * 4
				tmp[o] = uint8((sr + n/2) / n)
				tmp[o+1] = uint8((sg + n/2) / n)
				tmp[o+2] = uint8((sb + n/2) / n)
				tmp[o+3] = uint8((sa + n/2) / n)
			}
		}
		copy(src, tmp)
	}
}

// processAlbumImage reduces src onto the working canvas and runs the fixed
// colour pipeline the gradient texture expects: crush the dynamic range,
// oversaturate so hue regions separate, restore contrast, pull brightness
// down below the lyrics layer, then soften with a small blur.
func processAlbumImage(src image.Image) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, albumCanvasSize, albumCanvasSize))
	xdraw.ApproxBiLinear.Scale(canvas, canvas.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	applyColorMatrix(canvas, contrastMatrix(0.4))
	applyColorMatrix(canvas, saturateMatrix(3.0))
	applyColorMatrix(canvas, contrastMatrix(1.7))
	applyColorMatrix(canvas, brightnessMatrix(0.75))
	boxBlur3(canvas, 2)

	return canvas
}
