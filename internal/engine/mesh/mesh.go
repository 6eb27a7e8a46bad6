// Package mesh generates the procedural geometry used by the scene.
package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is the interleaved vertex layout shared by every pipeline.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

// VertexSize is the byte stride of Vertex.
const VertexSize = 8 * 4

// Data is CPU-side geometry ready for upload.
type Data struct {
	Vertices []Vertex
	Indices  []uint32
}

// Empty reports whether the mesh has nothing to draw.
func (d Data) Empty() bool {
	return len(d.Vertices) == 0 || len(d.Indices) == 0
}

// Floats flattens the vertices into position, normal, uv order.
func (d Data) Floats() []float32 {
	out := make([]float32, 0, len(d.Vertices)*8)
	for _, v := range d.Vertices {
		out = append(out,
			v.Position[0], v.Position[1], v.Position[2],
			v.Normal[0], v.Normal[1], v.Normal[2],
			v.UV[0], v.UV[1],
		)
	}
	return out
}

// Sphere builds a unit UV sphere with counter-clockwise outward faces.
// It returns empty data when the detail is too coarse to form a solid.
func Sphere(segments, rings int) Data {
	if segments < 3 || rings < 2 {
		return Data{}
	}

	d := Data{
		Vertices: make([]Vertex, 0, (rings+1)*(segments+1)),
		Indices:  make([]uint32, 0, rings*segments*6),
	}
	for r := 0; r <= rings; r++ {
		phi := math.Pi * float64(r) / float64(rings)
		sp, cp := math.Sincos(phi)
		for s := 0; s <= segments; s++ {
			theta := 2 * math.Pi * float64(s) / float64(segments)
			st, ct := math.Sincos(theta)
			p := mgl32.Vec3{float32(sp * ct), float32(cp), float32(sp * st)}
			d.Vertices = append(d.Vertices, Vertex{
				Position: p,
				Normal:   p,
				UV:       mgl32.Vec2{float32(s) / float32(segments), float32(r) / float32(rings)},
			})
		}
	}

	stride := uint32(segments + 1)
	for r := 0; r < rings; r++ {
		for s := 0; s < segments; s++ {
			a := uint32(r)*stride + uint32(s)
			b := a + stride
			d.Indices = append(d.Indices, a, a+1, b, a+1, b+1, b)
		}
	}
	return d
}

// SkyboxCube builds an 8-vertex cube with faces wound to be visible from
// inside. Normals point inward.
func SkyboxCube(size float32) Data {
	corners := [8]mgl32.Vec3{
		{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
		{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
	}
	d := Data{Vertices: make([]Vertex, 0, len(corners))}
	for _, c := range corners {
		d.Vertices = append(d.Vertices, Vertex{
			Position: c.Mul(size),
			Normal:   c.Mul(-1).Normalize(),
		})
	}
	d.Indices = []uint32{
		4, 6, 5, 4, 7, 6, // +Z
		1, 3, 0, 1, 2, 3, // -Z
		5, 2, 1, 5, 6, 2, // +X
		0, 7, 4, 0, 3, 7, // -X
		7, 2, 6, 7, 3, 2, // +Y
		0, 5, 1, 0, 4, 5, // -Y
	}
	return d
}

// Ring builds a flat annulus in the XZ plane facing +Y. U runs from the
// inner edge (0) to the outer edge (1).
func Ring(inner, outer float32, segments int) Data {
	if segments < 3 || outer <= inner {
		return Data{}
	}

	d := Data{
		Vertices: make([]Vertex, 0, 2*(segments+1)),
		Indices:  make([]uint32, 0, segments*6),
	}
	up := mgl32.Vec3{0, 1, 0}
	for s := 0; s <= segments; s++ {
		theta := 2 * math.Pi * float64(s) / float64(segments)
		st, ct := math.Sincos(theta)
		dir := mgl32.Vec3{float32(ct), 0, float32(st)}
		v := float32(s) / float32(segments)
		d.Vertices = append(d.Vertices,
			Vertex{Position: dir.Mul(inner), Normal: up, UV: mgl32.Vec2{0, v}},
			Vertex{Position: dir.Mul(outer), Normal: up, UV: mgl32.Vec2{1, v}},
		)
	}
	for s := 0; s < segments; s++ {
		i0 := uint32(2 * s)
		o0 := i0 + 1
		i1 := i0 + 2
		o1 := i0 + 3
		d.Indices = append(d.Indices, i0, i1, o0, i1, o1, o0)
	}
	return d
}
