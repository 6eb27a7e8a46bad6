package camera

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Projection holds perspective parameters.
type Projection struct {
	FovY   float32 // radians
	Aspect float32
	Near   float32
	Far    float32
	// FlipY negates the Y scale for backends whose clip space points Y down.
	FlipY bool
}

// NewProjection builds a projection from a vertical field of view in degrees
// and a framebuffer size.
func NewProjection(fovYDegrees float32, width, height int, near, far float32, flipY bool) Projection {
	p := Projection{FovY: mgl32.DegToRad(fovYDegrees), Near: near, Far: far, FlipY: flipY}
	p.SetViewport(width, height)
	return p
}

// SetViewport updates the aspect ratio. Degenerate sizes are ignored.
func (p *Projection) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		if p.Aspect == 0 {
			p.Aspect = 1
		}
		return
	}
	p.Aspect = float32(width) / float32(height)
}

// Matrix returns the perspective projection matrix.
func (p Projection) Matrix() mgl32.Mat4 {
	m := mgl32.Perspective(p.FovY, p.Aspect, p.Near, p.Far)
	if p.FlipY {
		m.Set(1, 1, -m.At(1, 1))
	}
	return m
}

// SkyboxScale is the uniform scale that keeps the sky cube inside the far plane.
func (p Projection) SkyboxScale() float32 {
	return p.Far / 2
}
