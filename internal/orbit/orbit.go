// Package orbit evaluates body world transforms from orbital parameters.
//
// Positions use the blended form
//
//	(cos a * r, sin(incl) * r * sin a, sin a * r * cos(incl))
//
// which tilts the orbit by moving part of the Z swing into Y. It is not a
// rigid rotation of the orbital plane; the visuals depend on it as is.
package orbit

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/orrery/internal/bodies"
)

// FullTurn is the phase scale that completes one revolution per period.
const FullTurn = 2 * math.Pi

// Evaluator turns simulation time into transforms.
type Evaluator struct {
	// PhaseScale is the angle, in radians, swept during one period.
	PhaseScale float64
}

// NewEvaluator returns an evaluator with the given phase scale. A zero
// scale selects FullTurn.
func NewEvaluator(phaseScale float64) Evaluator {
	if phaseScale == 0 {
		phaseScale = FullTurn
	}
	return Evaluator{PhaseScale: phaseScale}
}

// Phase returns the angle reached after time t for the given period.
func (e Evaluator) Phase(period, t float64) float64 {
	if period == 0 {
		return 0
	}
	return t * e.PhaseScale / period
}

// OrbitPosition returns the offset from the primary for orbit radius r,
// inclination incl and orbital angle a.
func OrbitPosition(r, incl, a float64) mgl32.Vec3 {
	sa, ca := math.Sincos(a)
	return mgl32.Vec3{
		float32(ca * r),
		float32(math.Sin(incl) * r * sa),
		float32(sa * r * math.Cos(incl)),
	}
}

// Spin returns the axial tilt composed with the self-rotation at time t.
func (e Evaluator) Spin(b bodies.Body, t float64) mgl32.Mat4 {
	tilt := mgl32.HomogRotate3DZ(float32(b.AxialTilt))
	return tilt.Mul4(mgl32.HomogRotate3DY(float32(e.Phase(b.RotationPeriod, t))))
}

// BodyTransform returns the world matrix and position of a star or planet.
// Stars stay at the origin and are only scaled.
func (e Evaluator) BodyTransform(b bodies.Body, t float64) (mgl32.Mat4, mgl32.Vec3) {
	if !b.Orbits() {
		return scale(b.Scale), mgl32.Vec3{}
	}
	pos := OrbitPosition(b.OrbitRadius, b.EclipticInclination, e.Phase(b.RevolutionPeriod, t))
	return compose(pos, e.Spin(b, t), b.Scale), pos
}

// SatellitePosition returns a satellite's offset from its primary. With no
// inclination the orbit lies in the XY plane:
//
//	(cos a * r, sin a * r, 0)
//
// A non-zero inclination tilts that plane about the X axis.
func SatellitePosition(r, incl, a float64) mgl32.Vec3 {
	sa, ca := math.Sincos(a)
	si, ci := math.Sincos(incl)
	return mgl32.Vec3{
		float32(ca * r),
		float32(sa * r * ci),
		float32(sa * r * si),
	}
}

// SatelliteTransform places a body relative to its primary's position.
func (e Evaluator) SatelliteTransform(b bodies.Body, primaryPos mgl32.Vec3, t float64) (mgl32.Mat4, mgl32.Vec3) {
	rel := SatellitePosition(b.OrbitRadius, b.EclipticInclination, e.Phase(b.RevolutionPeriod, t))
	pos := primaryPos.Add(rel)
	return compose(pos, e.Spin(b, t), b.Scale), pos
}

// RingTransform returns T(primaryPos) * Rz(tilt) * Ry(spin) * S(s). Both
// angles are in radians; a zero tilt leaves the ring in the XZ plane.
func RingTransform(primaryPos mgl32.Vec3, tilt, spin, s float32) mgl32.Mat4 {
	return mgl32.Translate3D(primaryPos.X(), primaryPos.Y(), primaryPos.Z()).
		Mul4(mgl32.HomogRotate3DZ(tilt)).
		Mul4(mgl32.HomogRotate3DY(spin)).
		Mul4(mgl32.Scale3D(s, s, s))
}

// NormalMatrix returns the inverse transpose of a world matrix.
func NormalMatrix(world mgl32.Mat4) mgl32.Mat4 {
	if world.Det() == 0 {
		return mgl32.Ident4()
	}
	return world.Inv().Transpose()
}

func compose(pos mgl32.Vec3, rot mgl32.Mat4, s mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(pos.X(), pos.Y(), pos.Z()).Mul4(rot).Mul4(scale(s))
}

func scale(s mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Scale3D(s.X(), s.Y(), s.Z())
}
