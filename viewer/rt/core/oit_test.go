package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeight_Bounds(t *testing.T) {
	for _, depth := range []float32{0, 0.25, 0.5, 0.99, 1} {
		for _, alpha := range []float32{0, 0.05, 0.5, 1} {
			w := Weight(depth, alpha)
			assert.GreaterOrEqual(t, w, float32(1e-2))
			assert.LessOrEqual(t, w, float32(3e3))
		}
	}
}

func TestWeight_DepthFalloff(t *testing.T) {
	// faint fragments stay under the clamp, so depth shows through
	near, far := Weight(0.1, 0.001), Weight(0.9, 0.001)
	assert.InDelta(t, 602.9, near, 0.5)
	assert.InDelta(t, 5.49, far, 0.01)
	assert.Less(t, far, near, "farther fragments weigh less")

	// strong alpha saturates at every depth
	assert.Equal(t, float32(3e3), Weight(0.1, 0.5))
	assert.Equal(t, float32(3e3), Weight(0.9, 0.5))
	assert.Equal(t, float32(3e3), Weight(0, 1))
}

func TestOITPixel_ClearState(t *testing.T) {
	p := NewOITPixel()
	c := p.Resolve()
	assert.Zero(t, c.W(), "nothing accumulated means fully revealed")

	bg := mgl32.Vec3{0.1, 0.2, 0.3}
	assert.Equal(t, bg, p.CompositeOver(bg))
}

// Three quads at (-2,0,-2), (0,0,0) and (2,0,2) seen from a camera backed
// off far enough to have all of them in front of the near plane.
func TestOITPixel_ThreeModels(t *testing.T) {
	scene := NewScene()
	cam := NewCamera(1)
	cam.Eye = mgl32.Vec3{0, 0, 6}
	u := NewUniforms()
	u.UpdateView(cam)
	proj := readMat(t, u.Bytes(), 2)

	glass := mgl32.Vec4{0.6, 0.8, 1.0, 0.4}
	var frags []Fragment
	for _, i := range scene.DrawOrder() {
		world := scene.Models[i].ObjectToWorld().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
		clip := proj.Mul4(cam.View()).Mul4x1(world)
		depth := clip.Z() / clip.W()
		require.True(t, depth >= 0 && depth <= 1, "model %d depth %v", i, depth)
		frags = append(frags, Fragment{Color: glass, Depth: depth})
	}

	p := NewOITPixel()
	prevReveal := p.Revealage
	for _, f := range frags {
		p.Accumulate(f)
		assert.Less(t, p.Revealage, prevReveal, "each draw contributes independently")
		prevReveal = p.Revealage
	}

	c := p.Resolve()
	assert.InDelta(t, 1-p.Revealage, c.W(), 1e-6)
	assert.InDelta(t, 1-0.6*0.6*0.6, c.W(), 1e-5)
	assert.GreaterOrEqual(t, c.W(), float32(0))
	assert.LessOrEqual(t, c.W(), float32(1))
	assert.True(t, c.Vec3().ApproxEqualThreshold(glass.Vec3(), 1e-4), "same colour everywhere averages to itself, got %v", c)
}

func TestOITPixel_OrderIndependent(t *testing.T) {
	frags := []Fragment{
		{Color: mgl32.Vec4{1, 0, 0, 0.5}, Depth: 0.2},
		{Color: mgl32.Vec4{0, 1, 0, 0.3}, Depth: 0.5},
		{Color: mgl32.Vec4{0, 0, 1, 0.7}, Depth: 0.8},
	}
	orders := [][]int{{0, 1, 2}, {2, 1, 0}, {1, 0, 2}, {2, 0, 1}}

	var first mgl32.Vec4
	for n, order := range orders {
		p := NewOITPixel()
		for _, i := range order {
			p.Accumulate(frags[i])
		}
		got := p.Resolve()
		if n == 0 {
			first = got
			continue
		}
		assert.True(t, first.ApproxEqualThreshold(got, 1e-5), "order %v: %v vs %v", order, got, first)
	}
}

func TestOITPixel_OpaqueFragmentHidesBackground(t *testing.T) {
	p := NewOITPixel()
	p.Accumulate(Fragment{Color: mgl32.Vec4{1, 1, 1, 1}, Depth: 0.5})

	assert.Zero(t, p.Revealage)
	got := p.CompositeOver(mgl32.Vec3{0.1, 0.2, 0.3})
	assert.True(t, got.ApproxEqualThreshold(mgl32.Vec3{1, 1, 1}, 1e-5), "got %v", got)
}
