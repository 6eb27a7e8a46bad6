package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/orrery/internal/engine/gpu"
)

// Kind tags an entity's role and fixes its place in the draw order.
type Kind int

const (
	KindSkybox Kind = iota
	KindSun
	KindPlanet
	KindMoon
	KindRing
	kindCount
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindSkybox:
		return "skybox"
	case KindSun:
		return "sun"
	case KindPlanet:
		return "planet"
	case KindMoon:
		return "moon"
	case KindRing:
		return "ring"
	default:
		return "unknown"
	}
}

// Entity is one drawable object.
type Entity struct {
	Name string
	Kind Kind
	// Body indexes the body table, or -1 for the skybox and rings.
	Body int
	// Primary indexes the body a moon or ring is attached to, or -1.
	Primary int

	Mesh    gpu.Mesh
	Texture gpu.Texture
	Set     gpu.DescriptorSet

	// Ring placement.
	Spin   float32
	Scale  float32
	Tilted bool

	world mgl32.Mat4
}

// World returns the world matrix computed by the last UpdateFrame.
func (e *Entity) World() mgl32.Mat4 {
	return e.world
}

// Drawable reports whether recording the entity would issue a draw.
func (e *Entity) Drawable() bool {
	return !e.Mesh.Empty()
}
