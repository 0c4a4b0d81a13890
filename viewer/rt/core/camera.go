package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	Sensitivity = 0.05
	// Damp scales velocity once per simulation tick.
	Damp = 0.75
	// DampLimit is the speed at or below which a velocity axis snaps to zero.
	DampLimit  = 0.01
	PitchLimit = 89.9
)

// Camera is a Y-up, right-handed first-person camera. Target is a unit look
// direction derived from Yaw and Pitch (degrees); Fovy is in radians.
type Camera struct {
	Eye      mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3
	Aspect   float32
	Fovy     float32
	Near     float32
	Far      float32
	Velocity mgl32.Vec3
	Yaw      float32
	Pitch    float32

	MoveSpeed float32
	// Zoom bounds and step, in degrees.
	ZoomMin  float32
	ZoomMax  float32
	ZoomStep float32
}

func NewCamera(aspect float32) *Camera {
	c := &Camera{
		Eye:       mgl32.Vec3{0, 0, 2},
		Up:        mgl32.Vec3{0, 1, 0},
		Aspect:    aspect,
		Fovy:      mgl32.DegToRad(90),
		Near:      0.1,
		Far:       100,
		Yaw:       -90,
		MoveSpeed: 2.5,
		ZoomMin:   45,
		ZoomMax:   120,
		ZoomStep:  2,
	}
	c.updateTarget()
	return c
}

func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye, c.Eye.Add(c.Target), c.Up)
}

// Projection uses the OpenGL clip convention (depth in [-1, 1]).
func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(c.Fovy, c.Aspect, c.Near, c.Far)
}

func (c *Camera) SetAspect(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
}

// MouseUpdate applies a raw mouse delta in pixels. Screen Y grows downward, so
// moving the mouse up raises the pitch.
func (c *Camera) MouseUpdate(dx, dy float32) {
	c.Yaw += dx * Sensitivity
	c.Pitch -= dy * Sensitivity
	c.Pitch = mgl32.Clamp(c.Pitch, -PitchLimit, PitchLimit)
	c.updateTarget()
}

func (c *Camera) updateTarget() {
	yaw := mgl32.DegToRad(c.Yaw)
	pitch := mgl32.DegToRad(c.Pitch)
	dir := mgl32.Vec3{
		math32.Cos(yaw) * math32.Cos(pitch),
		math32.Sin(pitch),
		math32.Sin(yaw) * math32.Cos(pitch),
	}
	c.Target = dir.Normalize()
}

// Update integrates position over dt seconds, then damps velocity by one tick.
func (c *Camera) Update(dt float32) {
	c.Eye = c.Eye.Add(c.Velocity.Mul(dt))
	for i := range c.Velocity {
		v := c.Velocity[i] * Damp
		if math32.Abs(v) <= DampLimit {
			v = 0
		}
		c.Velocity[i] = v
	}
}

// Impulse sets the velocity along one world axis (0=X, 1=Y, 2=Z) to
// sign*MoveSpeed. Damping alone brings it back to rest.
func (c *Camera) Impulse(axis int, sign float32) {
	if axis < 0 || axis > 2 {
		return
	}
	c.Velocity[axis] = sign * c.MoveSpeed
}

// Zoom narrows the field of view for positive scroll steps.
func (c *Camera) Zoom(dy float32) {
	deg := mgl32.RadToDeg(c.Fovy) - dy*c.ZoomStep
	c.Fovy = mgl32.DegToRad(mgl32.Clamp(deg, c.ZoomMin, c.ZoomMax))
}

func (c *Camera) FovyDegrees() float32 {
	return mgl32.RadToDeg(c.Fovy)
}
