package mesh

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func faceNormal(d Data, tri int) (mgl32.Vec3, mgl32.Vec3) {
	a := d.Vertices[d.Indices[tri*3]].Position
	b := d.Vertices[d.Indices[tri*3+1]].Position
	c := d.Vertices[d.Indices[tri*3+2]].Position
	n := b.Sub(a).Cross(c.Sub(a))
	centroid := a.Add(b).Add(c).Mul(1.0 / 3)
	return n, centroid
}

func checkIndices(t *testing.T, d Data) {
	t.Helper()
	if len(d.Indices)%3 != 0 {
		t.Fatalf("index count %d is not a multiple of 3", len(d.Indices))
	}
	for i, idx := range d.Indices {
		if int(idx) >= len(d.Vertices) {
			t.Fatalf("index %d = %d out of range (%d vertices)", i, idx, len(d.Vertices))
		}
	}
}

func TestSphere(t *testing.T) {
	d := Sphere(64, 32)
	if got, want := len(d.Vertices), 65*33; got != want {
		t.Errorf("vertices = %d, want %d", got, want)
	}
	if got, want := len(d.Indices), 64*32*6; got != want {
		t.Errorf("indices = %d, want %d", got, want)
	}
	checkIndices(t, d)

	for i, v := range d.Vertices {
		if math.Abs(float64(v.Position.Len())-1) > 1e-5 {
			t.Fatalf("vertex %d not on unit sphere: %v", i, v.Position)
		}
		if v.UV[0] < 0 || v.UV[0] > 1 || v.UV[1] < 0 || v.UV[1] > 1 {
			t.Fatalf("vertex %d uv out of range: %v", i, v.UV)
		}
	}

	// Skip pole triangles, which are degenerate.
	outward := 0
	checked := 0
	for tri := 0; tri < len(d.Indices)/3; tri++ {
		n, c := faceNormal(d, tri)
		if n.Len() < 1e-7 {
			continue
		}
		checked++
		if n.Dot(c) > 0 {
			outward++
		}
	}
	if checked == 0 || outward != checked {
		t.Errorf("%d of %d faces wound outward", outward, checked)
	}
}

func TestSphereTooCoarse(t *testing.T) {
	if !Sphere(2, 8).Empty() || !Sphere(8, 1).Empty() {
		t.Error("degenerate detail should give an empty mesh")
	}
}

func TestSkyboxCubeFacesInward(t *testing.T) {
	d := SkyboxCube(2)
	if len(d.Vertices) != 8 || len(d.Indices) != 36 {
		t.Fatalf("got %d vertices, %d indices", len(d.Vertices), len(d.Indices))
	}
	checkIndices(t, d)
	for tri := 0; tri < 12; tri++ {
		n, c := faceNormal(d, tri)
		if n.Dot(c) >= 0 {
			t.Errorf("triangle %d faces outward", tri)
		}
	}
	for _, v := range d.Vertices {
		for _, x := range v.Position {
			if x != 2 && x != -2 {
				t.Fatalf("corner not scaled: %v", v.Position)
			}
		}
	}
}

func TestRing(t *testing.T) {
	d := Ring(30, 55, 128)
	if len(d.Vertices) != 2*129 || len(d.Indices) != 128*6 {
		t.Fatalf("got %d vertices, %d indices", len(d.Vertices), len(d.Indices))
	}
	checkIndices(t, d)
	for tri := 0; tri < len(d.Indices)/3; tri++ {
		n, _ := faceNormal(d, tri)
		if n.Y() <= 0 {
			t.Fatalf("triangle %d faces down: %v", tri, n)
		}
	}
	for i, v := range d.Vertices {
		r := v.Position.Len()
		want := float32(30)
		if i%2 == 1 {
			want = 55
		}
		if math.Abs(float64(r-want)) > 1e-3 {
			t.Fatalf("vertex %d radius %v, want %v", i, r, want)
		}
	}

	if !Ring(5, 5, 16).Empty() {
		t.Error("zero-width ring should be empty")
	}
}

func TestFloats(t *testing.T) {
	d := Data{Vertices: []Vertex{{
		Position: mgl32.Vec3{1, 2, 3},
		Normal:   mgl32.Vec3{4, 5, 6},
		UV:       mgl32.Vec2{7, 8},
	}}}
	got := d.Floats()
	want := []float32{1, 2, 3, 4, 5, 6, 7, 8}
	if len(got) != len(want) {
		t.Fatalf("len = %d", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("float %d = %v, want %v", i, got[i], want[i])
		}
	}
	if len(got)*4 != VertexSize {
		t.Errorf("stride mismatch")
	}
}
