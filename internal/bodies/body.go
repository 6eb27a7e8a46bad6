// Package bodies holds the static orbital parameter table loaded at startup.
package bodies

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Kind classifies a body by what it orbits.
type Kind int

const (
	// KindStar is the primary star at the origin. It never translates.
	KindStar Kind = iota
	// KindPlanet orbits the star.
	KindPlanet
	// KindSatellite orbits a planet.
	KindSatellite
)

// String returns the kind name used in logs and errors.
func (k Kind) String() string {
	switch k {
	case KindStar:
		return "star"
	case KindPlanet:
		return "planet"
	case KindSatellite:
		return "satellite"
	default:
		return "unknown"
	}
}

// Body is one celestial body's orbital and physical parameters.
// Angles are in radians; distances and periods are in scene units.
type Body struct {
	Name string
	Kind Kind
	// Primary names the body a satellite orbits. Empty for stars and planets.
	Primary string

	OrbitRadius float64
	// RevolutionPeriod is the time for one orbit. Negative means retrograde.
	RevolutionPeriod    float64
	RotationPeriod      float64
	EclipticInclination float64
	AxialTilt           float64
	Scale               mgl32.Vec3

	// Texture is an optional texture base name overriding Name.
	Texture string
}

// TextureName returns the texture base name for the body.
func (b Body) TextureName() string {
	if b.Texture != "" {
		return b.Texture
	}
	return b.Name
}

// Orbits reports whether the body has an orbital translation.
func (b Body) Orbits() bool {
	return b.Kind != KindStar && b.OrbitRadius != 0
}
