package core

import (
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertMatNear(t *testing.T, want, got mgl32.Mat4) {
	t.Helper()
	assert.True(t, want.ApproxEqualThreshold(got, 1e-5), "want\n%v\ngot\n%v", want, got)
}

func TestNewCamera_Defaults(t *testing.T) {
	c := NewCamera(16.0 / 9.0)

	assert.Equal(t, mgl32.Vec3{0, 0, 2}, c.Eye)
	assert.InDelta(t, 90, c.FovyDegrees(), 1e-4)
	// cos(-90deg) is not exactly zero in float32
	assert.InDelta(t, 0, c.Target.X(), 1e-6)
	assert.InDelta(t, 0, c.Target.Y(), 1e-6)
	assert.InDelta(t, -1, c.Target.Z(), 1e-6, "default look direction is -Z, got %v", c.Target)
}

func TestCamera_ViewProjectionScenario(t *testing.T) {
	c := NewCamera(1)
	c.Eye = mgl32.Vec3{0, 0, 2}
	c.Target = mgl32.Vec3{0, 0, 0.1}.Sub(c.Eye).Normalize()
	c.Fovy = mgl32.DegToRad(90)
	c.Near, c.Far = 0.1, 100

	assertMatNear(t, mgl32.LookAtV(c.Eye, mgl32.Vec3{0, 0, 0.1}, mgl32.Vec3{0, 1, 0}), c.View())
	// Looking down -Z from z=2 is a pure translation.
	assertMatNear(t, mgl32.Translate3D(0, 0, -2), c.View())

	near, far := float32(0.1), float32(100)
	want := mgl32.Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, (far + near) / (near - far), -1,
		0, 0, 2 * far * near / (near - far), 0,
	}
	assertMatNear(t, want, c.Projection())
}

func TestCamera_MouseUpdateClampsPitch(t *testing.T) {
	c := NewCamera(1)
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 2000; i++ {
		dx := float32(rng.NormFloat64() * 200)
		dy := float32(rng.NormFloat64() * 400)
		c.MouseUpdate(dx, dy)

		require.GreaterOrEqual(t, c.Pitch, float32(-PitchLimit))
		require.LessOrEqual(t, c.Pitch, float32(PitchLimit))
		require.InDelta(t, 1, c.Target.Len(), 1e-5, "target must stay unit length")
	}

	c.MouseUpdate(0, -1e6)
	assert.Equal(t, float32(PitchLimit), c.Pitch)
	c.MouseUpdate(0, 1e6)
	assert.Equal(t, float32(-PitchLimit), c.Pitch)
}

func TestCamera_MouseUpdateDirection(t *testing.T) {
	c := NewCamera(1)

	// 90 degrees of yaw turns from -Z to +X.
	c.MouseUpdate(90/Sensitivity, 0)
	assert.True(t, c.Target.ApproxEqualThreshold(mgl32.Vec3{1, 0, 0}, 1e-5), "got %v", c.Target)

	// Mouse up looks up.
	c.MouseUpdate(0, -10)
	assert.Greater(t, c.Target.Y(), float32(0))
}

func TestCamera_UpdateDampsToZero(t *testing.T) {
	for _, v0 := range []float32{2.5, -2.5, 0.5, -0.011, 100} {
		c := NewCamera(1)
		c.Velocity = mgl32.Vec3{v0, -v0, 0}

		prev := c.Velocity
		for i := 0; i < 200; i++ {
			c.Update(0.05)
			for axis := 0; axis < 3; axis++ {
				cur, old := c.Velocity[axis], prev[axis]
				require.LessOrEqual(t, math32.Abs(cur), math32.Abs(old), "speed never grows")
				require.False(t, cur*old < 0, "damping never flips sign")
				if cur != 0 {
					require.Greater(t, math32.Abs(cur), float32(DampLimit))
				}
			}
			prev = c.Velocity
		}
		assert.Equal(t, mgl32.Vec3{}, c.Velocity, "v0=%v", v0)
	}
}

func TestCamera_UpdateIntegratesBeforeDamping(t *testing.T) {
	c := NewCamera(1)
	c.Impulse(2, -1)
	require.Equal(t, -c.MoveSpeed, c.Velocity.Z())

	c.Update(0.05)
	assert.InDelta(t, 2-0.05*2.5, c.Eye.Z(), 1e-6)
	assert.InDelta(t, -2.5*Damp, c.Velocity.Z(), 1e-6)

	c.Impulse(7, 1)
	assert.InDelta(t, -2.5*Damp, c.Velocity.Z(), 1e-6, "out of range axis is ignored")
}

func TestCamera_ZoomBounds(t *testing.T) {
	c := NewCamera(1)
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 500; i++ {
		c.Zoom(float32(rng.Intn(21) - 10))
		deg := c.FovyDegrees()
		require.GreaterOrEqual(t, deg, c.ZoomMin-1e-3)
		require.LessOrEqual(t, deg, c.ZoomMax+1e-3)
	}

	c.Zoom(1000)
	assert.InDelta(t, 45, c.FovyDegrees(), 1e-3)
	c.Zoom(-1000)
	assert.InDelta(t, 120, c.FovyDegrees(), 1e-3)
}

func TestCamera_SetAspect(t *testing.T) {
	c := NewCamera(1)
	c.SetAspect(1920, 1080)
	assert.InDelta(t, 16.0/9.0, c.Aspect, 1e-6)

	c.SetAspect(0, 1080)
	assert.InDelta(t, 16.0/9.0, c.Aspect, 1e-6, "minimised window keeps the last aspect")
}
