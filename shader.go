package aurora

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// mainShaderSrc is the gradient shading program. The interpolated vertex
// colour carries the tessellated gradient; the album texture (imageSrc0)
// contributes local hue variance; Time drives a slow procedural drift and
// Volume an audio-reactive pulse. Ebitengine stores premultiplied alpha, so
// the texture is un-premultiplied before mixing.
const mainShaderSrc = `//kage:unit pixels
package main

var Time float
var Aspect float
var Volume float
var Alpha float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	tex := imageSrc0At(src)
	if tex.a > 0 {
		tex.rgb /= tex.a
	}

	// Slow drift across the surface. The frequencies are deliberately
	// non-harmonic so the motion never visibly loops.
	p := dst.xy * 0.004
	drift := 0.5*sin(Time*2.0+p.x*Aspect*1.7+p.y*1.1) +
		0.5*sin(Time*3.1-p.x*Aspect*0.9+p.y*2.3)

	grad := color.rgb
	mixed := mix(grad, tex.rgb, 0.55+0.1*drift)
	mixed += 0.04 * drift

	pulse := 1.0 + 0.25*Volume
	rgb := clamp(mixed*pulse, 0.0, 1.0)

	a := clamp(Alpha, 0.0, 1.0)
	return vec4(rgb*a, a)
}
`

// program pairs a compiled Kage shader with the uniform names it declares.
// Setting an undeclared uniform logs a warning once per name instead of
// failing, so a renamed shader uniform degrades to a visual glitch rather
// than a dead render loop.
type program struct {
	shader   *ebiten.Shader
	label    string
	known    map[string]bool
	uniforms map[string]any
	warned   map[string]bool
}

// newProgram compiles src. Compile failure panics with the program label and
// the driver's compile log; a renderer cannot run without its shader.
func newProgram(label, src string, uniformNames ...string) *program {
	s, err := ebiten.NewShader([]byte(src))
	if err != nil {
		panic("aurora: failed to compile " + label + " shader: " + err.Error())
	}
	p := &program{
		shader:   s,
		label:    label,
		known:    make(map[string]bool, len(uniformNames)),
		uniforms: make(map[string]any, len(uniformNames)),
		warned:   make(map[string]bool),
	}
	for _, n := range uniformNames {
		p.known[n] = true
	}
	return p
}

// set stages a uniform value for the next draw.
func (p *program) set(name string, v any) {
	if !p.known[name] {
		if !p.warned[name] {
			p.warned[name] = true
			warnf(p.label+"/"+name, "%s shader has no uniform %q; value ignored", p.label, name)
		}
		return
	}
	p.uniforms[name] = v
}

// dispose releases the compiled shader. Safe to call more than once.
func (p *program) dispose() {
	if p.shader != nil {
		p.shader.Deallocate()
		p.shader = nil
	}
}
