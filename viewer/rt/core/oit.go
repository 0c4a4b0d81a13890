package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// CPU mirror of the weighted blended OIT math in the transparency and screen
// shaders. The renderer never calls it; it pins down what the blend states and
// shaders compute so the math can be tested without a device.

// RevealageClear is the value revealage is cleared to before accumulation.
const RevealageClear = 1.0

// Weight is the depth and coverage weight of a transparent fragment. depth is
// window-space depth in [0, 1].
func Weight(depth, alpha float32) float32 {
	a := math32.Min(1, alpha*10) + 0.01
	d := 1 - depth*0.9
	w := a * a * a * 1e8 * d * d * d
	return mgl32.Clamp(w, 1e-2, 3e3)
}

// Fragment is one transparent sample with straight (non-premultiplied) colour.
type Fragment struct {
	Color mgl32.Vec4
	Depth float32
}

// OITPixel holds one pixel of the accum and revealage attachments.
type OITPixel struct {
	Accum     mgl32.Vec4
	Revealage float32
}

func NewOITPixel() OITPixel {
	return OITPixel{Revealage: RevealageClear}
}

// Accumulate applies one fragment with the accumulation blend states:
// accum uses One/One, revealage uses Zero/OneMinusSrcColor.
func (p *OITPixel) Accumulate(f Fragment) {
	a := f.Color.W()
	w := Weight(f.Depth, a)
	premul := mgl32.Vec4{f.Color.X() * a, f.Color.Y() * a, f.Color.Z() * a, a}
	p.Accum = p.Accum.Add(premul.Mul(w))
	p.Revealage *= 1 - a
}

// Resolve is the screen pass fragment output: averaged colour and coverage.
func (p OITPixel) Resolve() mgl32.Vec4 {
	div := math32.Max(p.Accum.W(), 1e-5)
	return mgl32.Vec4{
		p.Accum.X() / div,
		p.Accum.Y() / div,
		p.Accum.Z() / div,
		mgl32.Clamp(1-p.Revealage, 0, 1),
	}
}

// CompositeOver blends the resolved pixel onto an opaque background with the
// screen pipeline's SrcAlpha/OneMinusSrcAlpha blend.
func (p OITPixel) CompositeOver(bg mgl32.Vec3) mgl32.Vec3 {
	c := p.Resolve()
	a := c.W()
	return c.Vec3().Mul(a).Add(bg.Mul(1 - a))
}
