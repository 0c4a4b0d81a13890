package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is the quad vertex format. Fields tagged gpu:"layout" become vertex
// attributes in declaration order.
type Vertex struct {
	Position [3]float32 `gpu:"layout" format:"float3" location:"0"`
	TexCoord [2]float32 `gpu:"layout" format:"float2" location:"1"`
}

// Scene is the fixed demo content: two textured quads drawn once per model
// transform.
type Scene struct {
	Vertices []Vertex
	Indices  []uint16
	Models   []Transform
}

func NewScene() *Scene {
	return &Scene{
		Vertices: QuadVertices(),
		Indices:  QuadIndices(),
		Models: []Transform{
			NewTransform(mgl32.Vec3{-2, 0, -2}),
			NewTransform(mgl32.Vec3{0, 0, 0}),
			NewTransform(mgl32.Vec3{2, 0, 2}),
		},
	}
}

func QuadVertices() []Vertex {
	return []Vertex{
		// back quad, z=1
		{Position: [3]float32{0.5, -0.5, 1}, TexCoord: [2]float32{0, 1}},
		{Position: [3]float32{1.5, -0.5, 1}, TexCoord: [2]float32{1, 1}},
		{Position: [3]float32{0.5, 0.5, 1}, TexCoord: [2]float32{0, 0}},
		{Position: [3]float32{1.5, 0.5, 1}, TexCoord: [2]float32{1, 0}},

		// front quad, z=0
		{Position: [3]float32{-0.5, -0.5, 0}, TexCoord: [2]float32{0, 1}},
		{Position: [3]float32{0.5, -0.5, 0}, TexCoord: [2]float32{1, 1}},
		{Position: [3]float32{-0.5, 0.5, 0}, TexCoord: [2]float32{0, 0}},
		{Position: [3]float32{0.5, 0.5, 0}, TexCoord: [2]float32{1, 0}},
	}
}

func QuadIndices() []uint16 {
	return []uint16{
		0, 1, 2,
		2, 1, 3,

		4, 5, 6,
		6, 5, 7,
	}
}

// DrawOrder lists model indices in submission order, last model first.
// Weighted blending makes the result independent of this order up to
// floating point rounding.
func (s *Scene) DrawOrder() []int {
	order := make([]int, len(s.Models))
	for i := range order {
		order[i] = len(s.Models) - 1 - i
	}
	return order
}

func (s *Scene) IndexCount() uint32 {
	return uint32(len(s.Indices))
}
