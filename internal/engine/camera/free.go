package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// FreeTuning holds the free-fly integration constants.
type FreeTuning struct {
	VelMin       float32
	VelMax       float32
	Acceleration float32 // velocity added per frame at full input
	Deadzone     float32 // below this speed, velocity decays
	VelDecay     float32 // per-frame decay inside the dead zone

	RotStep    float32 // accumulator change per frame at full input
	RotLimit   float32 // accumulator bound, radians
	RotEpsilon float32 // accumulators inside this band snap to zero
}

// DefaultFreeTuning returns the stock free-fly feel.
func DefaultFreeTuning() FreeTuning {
	return FreeTuning{
		VelMin:       -5,
		VelMax:       5,
		Acceleration: 0.05,
		Deadzone:     0.25,
		VelDecay:     0.001,
		RotStep:      0.01,
		RotLimit:     1,
		RotEpsilon:   0.001,
	}
}

// FreeCamera is a fly-through camera whose view matrix is built incrementally.
type FreeCamera struct {
	Tuning FreeTuning

	Velocity float32
	XRot     float32
	YRot     float32
	ZRot     float32

	initial mgl32.Mat4
	view    mgl32.Mat4
}

// NewFreeCamera places the camera at pos looking down -Z.
func NewFreeCamera(pos mgl32.Vec3, tuning FreeTuning) *FreeCamera {
	initial := mgl32.Translate3D(-pos.X(), -pos.Y(), -pos.Z())
	return &FreeCamera{Tuning: tuning, initial: initial, view: initial}
}

// View returns the current view matrix.
func (c *FreeCamera) View() mgl32.Mat4 {
	return c.view
}

// Position returns the eye position in world space.
func (c *FreeCamera) Position() mgl32.Vec3 {
	return c.view.Inv().Col(3).Vec3()
}

// Reset zeroes the velocity and restores the starting view matrix.
// Rotation accumulators are left to decay on their own.
func (c *FreeCamera) Reset() {
	c.Velocity = 0
	c.view = c.initial
}

// Update integrates one frame of input. move.Z() drives velocity along the
// view axis; rot drives the X, Y and Z rotation accumulators. Input axes
// are clamped to [-1, 1].
func (c *FreeCamera) Update(dt float32, move, rot mgl32.Vec3) mgl32.Mat4 {
	t := c.Tuning

	mz := mgl32.Clamp(move.Z(), -1, 1)
	if mz != 0 && c.Velocity >= t.VelMin && c.Velocity <= t.VelMax {
		c.Velocity = mgl32.Clamp(c.Velocity+mz*t.Acceleration, t.VelMin, t.VelMax)
	}
	if abs(c.Velocity) < t.Deadzone {
		c.Velocity = towardZero(c.Velocity, t.VelDecay)
	}

	c.XRot = c.accumulate(c.XRot, rot.X())
	c.YRot = c.accumulate(c.YRot, rot.Y())
	c.ZRot = c.accumulate(c.ZRot, rot.Z())

	r := mgl32.HomogRotate3DX(c.XRot * dt).
		Mul4(mgl32.HomogRotate3DY(c.YRot * dt)).
		Mul4(mgl32.HomogRotate3DZ(-c.ZRot * dt))
	c.view = r.Mul4(c.view)
	c.view = mgl32.Translate3D(0, 0, c.Velocity*dt).Mul4(c.view)
	return c.view
}

// accumulate integrates input while the angle is within the limit and
// decays it otherwise. The result never leaves [-RotLimit, RotLimit].
func (c *FreeCamera) accumulate(angle, in float32) float32 {
	t := c.Tuning
	in = mgl32.Clamp(in, -1, 1)
	if in != 0 && angle >= -t.RotLimit && angle <= t.RotLimit {
		angle = mgl32.Clamp(angle+in*t.RotStep, -t.RotLimit, t.RotLimit)
	} else {
		angle = towardZero(angle, t.RotStep)
	}
	if abs(angle) < t.RotEpsilon {
		angle = 0
	}
	return angle
}

func towardZero(v, step float32) float32 {
	if abs(v) <= step {
		return 0
	}
	if v > 0 {
		return v - step
	}
	return v + step
}

func abs(v float32) float32 {
	return float32(math.Abs(float64(v)))
}
