package scene

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// UniformSize is the std140 size of the Frame block: four mat4 and a vec4.
const UniformSize = 4*64 + 16

// Uniforms is the per-entity record written every frame.
type Uniforms struct {
	Model      mgl32.Mat4
	View       mgl32.Mat4
	Projection mgl32.Mat4
	Normal     mgl32.Mat4
	LightPos   mgl32.Vec3
	// Ambient is the unlit light fraction, packed into LightPos.w.
	Ambient float32
}

// AppendStd140 appends the record in std140 layout. Matrices are column-major.
func (u *Uniforms) AppendStd140(dst []byte) []byte {
	for _, m := range [...]*mgl32.Mat4{&u.Model, &u.View, &u.Projection, &u.Normal} {
		for _, f := range m {
			dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
		}
	}
	for _, f := range [4]float32{u.LightPos[0], u.LightPos[1], u.LightPos[2], u.Ambient} {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
	}
	return dst
}
