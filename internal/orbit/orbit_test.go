package orbit

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/orrery/internal/bodies"
)

const eps = 1e-3

func vecNear(a, b mgl32.Vec3, tol float32) bool {
	return a.ApproxEqualThreshold(b, tol)
}

func earth() bodies.Body {
	return bodies.Body{
		Name:             "Earth",
		Kind:             bodies.KindPlanet,
		OrbitRadius:      100,
		RevolutionPeriod: 365.25,
		RotationPeriod:   1,
		Scale:            mgl32.Vec3{1, 1, 1},
	}
}

func TestZeroTimePosition(t *testing.T) {
	e := NewEvaluator(0)
	tests := []struct {
		name   string
		radius float64
		incl   float64
	}{
		{"flat", 100, 0},
		{"inclined", 42, 0.3},
		{"steep", 7, math.Pi / 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := earth()
			b.OrbitRadius = tt.radius
			b.EclipticInclination = tt.incl
			_, pos := e.BodyTransform(b, 0)
			want := mgl32.Vec3{float32(tt.radius), 0, 0}
			if !vecNear(pos, want, eps) {
				t.Errorf("got %v, want %v", pos, want)
			}
		})
	}
}

func TestEarthQuarterPeriod(t *testing.T) {
	e := NewEvaluator(FullTurn)
	_, pos := e.BodyTransform(earth(), 91.3125)
	want := mgl32.Vec3{0, 0, 100}
	if !vecNear(pos, want, eps) {
		t.Errorf("got %v, want %v", pos, want)
	}
}

func TestPeriodicity(t *testing.T) {
	e := NewEvaluator(FullTurn)
	b := earth()
	b.EclipticInclination = 0.2
	for _, at := range []float64{0, 13.7, 100, 250.5} {
		_, p0 := e.BodyTransform(b, at)
		_, p1 := e.BodyTransform(b, at+b.RevolutionPeriod)
		if !vecNear(p0, p1, 0.01) {
			t.Errorf("t=%v: %v != %v after one period", at, p0, p1)
		}
	}
}

func TestRetrogradeRunsBackwards(t *testing.T) {
	e := NewEvaluator(FullTurn)
	b := earth()
	b.RevolutionPeriod = -365.25
	_, pos := e.BodyTransform(b, 91.3125)
	want := mgl32.Vec3{0, 0, -100}
	if !vecNear(pos, want, eps) {
		t.Errorf("got %v, want %v", pos, want)
	}
}

func TestLiteralPhaseScale(t *testing.T) {
	e := NewEvaluator(1)
	if got := e.Phase(4, 2); got != 0.5 {
		t.Errorf("phase = %v, want 0.5", got)
	}
}

func TestInclinationBlend(t *testing.T) {
	incl := math.Pi / 6
	pos := OrbitPosition(10, incl, math.Pi/2)
	want := mgl32.Vec3{0, float32(10 * math.Sin(incl)), float32(10 * math.Cos(incl))}
	if !vecNear(pos, want, eps) {
		t.Errorf("got %v, want %v", pos, want)
	}
}

func TestWorldMatrixTranslationAndScale(t *testing.T) {
	e := NewEvaluator(FullTurn)
	b := earth()
	b.Scale = mgl32.Vec3{2, 2, 2}
	world, pos := e.BodyTransform(b, 0)
	if !vecNear(world.Col(3).Vec3(), pos, eps) {
		t.Errorf("translation column %v, want %v", world.Col(3).Vec3(), pos)
	}
	// Rotation preserves length, so column 0 carries the scale.
	if l := world.Col(0).Vec3().Len(); math.Abs(float64(l)-2) > eps {
		t.Errorf("scaled basis length = %v, want 2", l)
	}
}

func TestStarIsScaleOnly(t *testing.T) {
	e := NewEvaluator(FullTurn)
	sun := bodies.Body{Name: "Sun", Kind: bodies.KindStar, Scale: mgl32.Vec3{10, 10, 10}}
	world, pos := e.BodyTransform(sun, 1234)
	if pos != (mgl32.Vec3{}) {
		t.Errorf("star moved to %v", pos)
	}
	if !world.ApproxEqual(mgl32.Scale3D(10, 10, 10)) {
		t.Errorf("star world = %v", world)
	}
}

func TestSatelliteFollowsPrimary(t *testing.T) {
	e := NewEvaluator(FullTurn)
	moon := bodies.Body{
		Name:             "Moon",
		Kind:             bodies.KindSatellite,
		Primary:          "Earth",
		OrbitRadius:      5,
		RevolutionPeriod: 27.3,
		RotationPeriod:   27.3,
		Scale:            mgl32.Vec3{1, 1, 1},
	}
	primary := mgl32.Vec3{40, 1, -3}
	_, pos := e.SatelliteTransform(moon, primary, 0)
	want := mgl32.Vec3{45, 1, -3}
	if !vecNear(pos, want, eps) {
		t.Errorf("got %v, want %v", pos, want)
	}

	// Without inclination the orbit lies in the XY plane.
	_, q := e.SatelliteTransform(moon, primary, 27.3/4)
	want = mgl32.Vec3{40, 6, -3}
	if !vecNear(q, want, eps) {
		t.Errorf("quarter orbit got %v, want %v", q, want)
	}
}

func TestSatellitePosition(t *testing.T) {
	if got := SatellitePosition(4, 0, math.Pi/2); !vecNear(got, mgl32.Vec3{0, 4, 0}, eps) {
		t.Errorf("flat orbit at quarter turn = %v, want (0,4,0)", got)
	}
	// Inclination tilts the plane about X and keeps the radius.
	got := SatellitePosition(4, math.Pi/2, math.Pi/2)
	if !vecNear(got, mgl32.Vec3{0, 0, 4}, eps) {
		t.Errorf("inclined orbit at quarter turn = %v, want (0,0,4)", got)
	}
	for _, a := range []float64{0.3, 1.7, 4.2} {
		if l := SatellitePosition(4, 0.4, a).Len(); math.Abs(float64(l)-4) > eps {
			t.Errorf("radius at %v = %v, want 4", a, l)
		}
	}
}

func TestRingTransform(t *testing.T) {
	p := mgl32.Vec3{130, 0, 0}
	m := RingTransform(p, 0, math.Pi/2, 0.5)
	if !vecNear(m.Col(3).Vec3(), p, eps) {
		t.Errorf("ring not centred on primary: %v", m.Col(3))
	}
	// Ry(pi/2) maps +X to -Z.
	x := m.Mul4x1(mgl32.Vec4{1, 0, 0, 1}).Vec3()
	want := mgl32.Vec3{130, 0, -0.5}
	if !vecNear(x, want, eps) {
		t.Errorf("got %v, want %v", x, want)
	}

	// The stock ring turns 59.6 rad about Y.
	stock := RingTransform(mgl32.Vec3{}, 0, 59.6, 1)
	if col := stock.Col(0).Vec3(); !vecNear(col, mgl32.Vec3{-0.99593, 0, -0.09014}, 1e-3) {
		t.Errorf("stock ring basis X = %v", col)
	}

	// Tilt about Z lifts the ring's +X edge.
	tilted := RingTransform(mgl32.Vec3{}, math.Pi/2, 0, 1)
	x = tilted.Mul4x1(mgl32.Vec4{1, 0, 0, 1}).Vec3()
	if !vecNear(x, mgl32.Vec3{0, 1, 0}, eps) {
		t.Errorf("tilted edge at %v, want (0,1,0)", x)
	}
}

func TestNormalMatrix(t *testing.T) {
	world := mgl32.Translate3D(5, 6, 7).Mul4(mgl32.HomogRotate3DY(0.7)).Mul4(mgl32.Scale3D(3, 3, 3))
	n := NormalMatrix(world)
	// For uniform scale the normal matrix is the rotation divided by the scale.
	want := mgl32.HomogRotate3DY(0.7).Mat3().Mul(1.0 / 3)
	if !n.Mat3().ApproxEqualThreshold(want, 1e-4) {
		t.Errorf("normal matrix %v, want %v", n.Mat3(), want)
	}

	if NormalMatrix(mgl32.Mat4{}) != mgl32.Ident4() {
		t.Error("singular world should give identity")
	}
}
