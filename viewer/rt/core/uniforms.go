package core

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"reflect"

	"github.com/go-gl/mathgl/mgl32"
)

// UniformsSize is the packed size of Uniforms: three column-major mat4x4<f32>.
const UniformsSize = 3 * 16 * 4

// openGLToWebGPU remaps clip-space depth from [-1, 1] to [0, 1].
var openGLToWebGPU = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// Uniforms is the per-draw block bound at group 1.
type Uniforms struct {
	Model      mgl32.Mat4
	View       mgl32.Mat4
	Projection mgl32.Mat4
}

func NewUniforms() Uniforms {
	return Uniforms{
		Model:      mgl32.Ident4(),
		View:       mgl32.Ident4(),
		Projection: mgl32.Ident4(),
	}
}

func (u *Uniforms) UpdateView(c *Camera) {
	u.View = c.View()
	u.Projection = c.Projection()
}

func (u *Uniforms) UpdateModel(t Transform) {
	u.Model = t.ObjectToWorld()
}

// Bytes packs the block for upload. The projection is converted to WebGPU
// depth conventions here; Projection itself keeps the OpenGL form.
func (u Uniforms) Bytes() []byte {
	gpu := u
	gpu.Projection = openGLToWebGPU.Mul4(u.Projection)

	buf := new(bytes.Buffer)
	buf.Grow(UniformsSize)
	if err := writeUniformBytes(reflect.ValueOf(gpu), buf); err != nil {
		// Uniforms only holds float32 matrices.
		panic(err)
	}
	return buf.Bytes()
}

func writeUniformBytes(field reflect.Value, buf *bytes.Buffer) error {
	switch field.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < field.Len(); i++ {
			if err := writeUniformBytes(field.Index(i), buf); err != nil {
				return err
			}
		}

	case reflect.Struct:
		for i := 0; i < field.NumField(); i++ {
			if err := writeUniformBytes(field.Field(i), buf); err != nil {
				return err
			}
		}

	case reflect.Uint32, reflect.Int32, reflect.Float32:
		if err := binary.Write(buf, binary.LittleEndian, field.Interface()); err != nil {
			return fmt.Errorf("write uniform scalar: %w", err)
		}

	default:
		return fmt.Errorf("unsupported uniform type: %v", field.Type())
	}
	return nil
}
