package camera

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Mode selects how the view matrix is produced.
type Mode int

const (
	// ModeFree accumulates input into an incrementally built view.
	ModeFree Mode = iota
	// ModeOrbit looks at a tracked target from a spherical offset.
	ModeOrbit
)

// String returns the config name of the mode.
func (m Mode) String() string {
	if m == ModeOrbit {
		return "orbit"
	}
	return "free"
}

// ParseMode maps a config name to a Mode, defaulting to ModeFree.
func ParseMode(s string) Mode {
	if s == "orbit" {
		return ModeOrbit
	}
	return ModeFree
}

// Motion is one frame of continuous camera input.
type Motion struct {
	Move   mgl32.Vec3
	Rotate mgl32.Vec3
	DragX  float32
	DragY  float32
	Wheel  float32
}

// Controller owns both cameras and routes input to the active one.
type Controller struct {
	Mode  Mode
	Free  *FreeCamera
	Orbit *OrbitCamera

	view mgl32.Mat4
}

// NewController creates a controller starting in mode.
func NewController(mode Mode, free *FreeCamera, orbit *OrbitCamera) *Controller {
	return &Controller{Mode: mode, Free: free, Orbit: orbit, view: free.View()}
}

// Toggle switches between free and orbit mode.
func (c *Controller) Toggle() Mode {
	if c.Mode == ModeFree {
		c.Mode = ModeOrbit
	} else {
		c.Mode = ModeFree
	}
	return c.Mode
}

// Update advances the active camera and returns its view matrix. target is
// the tracked body's position and is only used in orbit mode.
func (c *Controller) Update(dt float32, m Motion, target mgl32.Vec3) mgl32.Mat4 {
	switch c.Mode {
	case ModeOrbit:
		if m.DragX != 0 || m.DragY != 0 {
			c.Orbit.HandleDrag(m.DragX, m.DragY)
		}
		if m.Wheel != 0 {
			c.Orbit.HandleZoom(m.Wheel)
		}
		c.view = c.Orbit.ViewMatrix(target)
	default:
		c.view = c.Free.Update(dt, m.Move, m.Rotate)
	}
	return c.view
}

// View returns the view matrix computed by the last Update.
func (c *Controller) View() mgl32.Mat4 {
	return c.view
}

// ResetView resets the free camera. Orbit mode has nothing to reset.
func (c *Controller) ResetView() {
	c.Free.Reset()
	if c.Mode == ModeFree {
		c.view = c.Free.View()
	}
}
