// Package gpu is the boundary between the scene and a graphics backend.
// The scene records commands and writes uniforms through these types; a
// backend replays them.
package gpu

import (
	"errors"
	"image"

	"github.com/Faultbox/orrery/internal/engine/mesh"
)

// ErrClosed is returned by a device used after Close.
var ErrClosed = errors.New("gpu: device closed")

// Mesh is an uploaded vertex/index buffer pair.
type Mesh struct {
	ID          uint32
	VertexCount int
	IndexCount  int
}

// Empty reports whether drawing the mesh would produce nothing.
func (m Mesh) Empty() bool {
	return m.ID == 0 || m.IndexCount == 0
}

// Texture is an uploaded 2D texture.
type Texture struct {
	ID     uint32
	Width  int
	Height int
}

// Valid reports whether the texture was uploaded.
func (t Texture) Valid() bool {
	return t.ID != 0
}

// DescriptorSet binds one texture and one uniform slot per frame in flight.
type DescriptorSet struct {
	ID uint32
}

// Pipeline is a shader program plus fixed-function state.
type Pipeline struct {
	ID   uint32
	Name string
}

// DepthFunc selects the depth comparison.
type DepthFunc int

const (
	DepthLess DepthFunc = iota
	DepthLessEqual
)

// CullMode selects which faces are discarded.
type CullMode int

const (
	CullBack CullMode = iota
	CullNone
	CullFront
)

// PipelineDesc describes a pipeline to create.
type PipelineDesc struct {
	Name string
	// Shader names the shader pair the backend compiles.
	Shader     string
	Depth      DepthFunc
	DepthWrite bool
	Cull       CullMode
	Blend      bool
}

// UniformWriter writes a uniform record into one frame slot.
type UniformWriter interface {
	WriteUniform(set DescriptorSet, imageIndex int, data []byte) error
}

// Resources creates GPU objects at startup.
type Resources interface {
	UploadMesh(d mesh.Data) (Mesh, error)
	UploadTexture(img *image.RGBA) (Texture, error)
	CreateDescriptorSet(tex Texture, uniformSize int) (DescriptorSet, error)
	CreatePipeline(desc PipelineDesc) (Pipeline, error)
}

// Device is a graphics backend with a fixed number of frames in flight.
type Device interface {
	UniformWriter
	Resources

	// AcquireFrameSlot blocks until a frame slot is free and returns its index.
	AcquireFrameSlot() (int, error)
	Submit(cb *CommandBuffer) error
	PresentFrame(imageIndex int) error

	FramesInFlight() int
	// YDown reports whether clip-space Y points down.
	YDown() bool
	Resize(width, height int)
	Close()
}

// FrameReader is implemented by devices that can read back the last frame.
// Pixels are tightly packed RGBA rows ordered bottom to top.
type FrameReader interface {
	ReadPixels() (pixels []byte, width, height int, err error)
}
