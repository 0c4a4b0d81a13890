package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScene(t *testing.T) {
	s := NewScene()

	require.Len(t, s.Vertices, 8)
	assert.Equal(t, uint32(12), s.IndexCount())
	for _, idx := range s.Indices {
		assert.Less(t, int(idx), len(s.Vertices))
	}

	require.Len(t, s.Models, 3)
	assert.Equal(t, mgl32.Vec3{-2, 0, -2}, s.Models[0].Position)
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, s.Models[1].Position)
	assert.Equal(t, mgl32.Vec3{2, 0, 2}, s.Models[2].Position)
}

func TestScene_QuadsFaceCamera(t *testing.T) {
	// Triangles must wind counter-clockwise seen from +Z, or back-face
	// culling drops them.
	s := NewScene()
	for i := 0; i < len(s.Indices); i += 3 {
		a := mgl32.Vec3(s.Vertices[s.Indices[i]].Position)
		b := mgl32.Vec3(s.Vertices[s.Indices[i+1]].Position)
		c := mgl32.Vec3(s.Vertices[s.Indices[i+2]].Position)
		n := b.Sub(a).Cross(c.Sub(a))
		assert.Greater(t, n.Z(), float32(0), "triangle %d", i/3)
	}
}

func TestScene_DrawOrder(t *testing.T) {
	s := NewScene()
	assert.Equal(t, []int{2, 1, 0}, s.DrawOrder())

	s.Models = nil
	assert.Empty(t, s.DrawOrder())
}

func TestTransformComposition(t *testing.T) {
	tr := NewTransform(mgl32.Vec3{10, 20, 30})
	tr.Scale = mgl32.Vec3{2, 2, 2}
	tr.Rotation = mgl32.QuatRotate(mgl32.DegToRad(30), mgl32.Vec3{0, 1, 0})

	// T * R * S: scale first, then rotate, then translate
	origin := tr.ObjectToWorld().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.True(t, origin.ApproxEqualThreshold(mgl32.Vec4{10, 20, 30, 1}, 1e-4), "got %v", origin)
	unitZ := tr.ObjectToWorld().Mul4x1(mgl32.Vec4{0, 0, 1, 0})
	want := mgl32.Vec4{2 * 0.5, 0, 2 * 0.8660254, 0}
	assert.True(t, unitZ.Sub(want).Len() < 1e-4, "got %v", unitZ)

	p := NewTransform(mgl32.Vec3{-2, 0, -2}).ObjectToWorld().Mul4x1(mgl32.Vec4{0.5, 0.5, 1, 1})
	assert.Equal(t, mgl32.Vec4{-1.5, 0.5, -1, 1}, p)
}
