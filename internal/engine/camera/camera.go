// Package camera provides the free-fly and orbit cameras plus projection helpers.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// OrbitCamera orbits around a target point.
type OrbitCamera struct {
	// Spherical coordinates around the target
	Distance  float32 // Distance from target
	RotationX float32 // Pitch (vertical angle, radians)
	RotationY float32 // Yaw (horizontal angle, radians)

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates an orbit camera sized for planet close-ups.
func NewOrbitCamera(distance, pitch, yaw float32) *OrbitCamera {
	c := &OrbitCamera{
		Distance:        distance,
		RotationX:       pitch,
		RotationY:       yaw,
		MinDistance:     2.0,
		MaxDistance:     400.0,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
	c.clamp()
	return c
}

// Offset returns the camera position relative to the target.
func (c *OrbitCamera) Offset() mgl32.Vec3 {
	sp, cp := math.Sincos(float64(c.RotationX))
	sy, cy := math.Sincos(float64(c.RotationY))
	return mgl32.Vec3{
		c.Distance * float32(cp*sy),
		c.Distance * float32(sp),
		c.Distance * float32(cp*cy),
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position(target mgl32.Vec3) mgl32.Vec3 {
	return target.Add(c.Offset())
}

// ViewMatrix returns a fresh look-at from the camera position to target.
func (c *OrbitCamera) ViewMatrix(target mgl32.Vec3) mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(target), target, mgl32.Vec3{0, 1, 0})
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.RotationY -= deltaX * c.DragSensitivity
	c.RotationX += deltaY * c.DragSensitivity
	c.clamp()
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.clamp()
}

func (c *OrbitCamera) clamp() {
	c.RotationX = mgl32.Clamp(c.RotationX, c.MinPitch, c.MaxPitch)
	c.Distance = mgl32.Clamp(c.Distance, c.MinDistance, c.MaxDistance)
}

// SkyboxView strips the translation from a view matrix, keeping its 3x3
// rotation so the sky stays centred on the eye.
func SkyboxView(view mgl32.Mat4) mgl32.Mat4 {
	return view.Mat3().Mat4()
}
