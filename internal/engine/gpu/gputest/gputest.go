// Package gputest provides an in-memory gpu.Device that records every call.
package gputest

import (
	"fmt"
	"image"
	"image/color"

	"github.com/Faultbox/orrery/internal/engine/gpu"
	"github.com/Faultbox/orrery/internal/engine/mesh"
)

// EventKind tags a recorded device call.
type EventKind int

const (
	Acquire EventKind = iota
	Write
	Submit
	Present
)

// Event is one recorded per-frame device call.
type Event struct {
	Kind       EventKind
	ImageIndex int
	Set        gpu.DescriptorSet
	Data       []byte
	Commands   []gpu.Command
}

// SetInfo is what a descriptor set was created with, plus its slot contents.
type SetInfo struct {
	Texture     gpu.Texture
	UniformSize int
	Slots       [][]byte
}

// Device records uploads, uniform writes and submissions.
type Device struct {
	Frames        int
	ClipYDown     bool
	Width, Height int

	Meshes    map[uint32]mesh.Data
	Textures  map[uint32]*image.RGBA
	Sets      map[uint32]*SetInfo
	Pipelines map[uint32]gpu.PipelineDesc
	Events    []Event

	// Failure injection.
	MeshErr    error
	TextureErr error
	AcquireErr error

	nextID uint32
	frame  int
	closed bool
}

// New creates a device with the given number of frames in flight.
func New(frames int) *Device {
	if frames < 1 {
		frames = 1
	}
	return &Device{
		Frames:    frames,
		Width:     640,
		Height:    360,
		Meshes:    make(map[uint32]mesh.Data),
		Textures:  make(map[uint32]*image.RGBA),
		Sets:      make(map[uint32]*SetInfo),
		Pipelines: make(map[uint32]gpu.PipelineDesc),
	}
}

func (d *Device) id() uint32 {
	d.nextID++
	return d.nextID
}

// UploadMesh stores the mesh data. Empty data yields an empty handle.
func (d *Device) UploadMesh(m mesh.Data) (gpu.Mesh, error) {
	if d.MeshErr != nil {
		return gpu.Mesh{}, d.MeshErr
	}
	if m.Empty() {
		return gpu.Mesh{}, nil
	}
	id := d.id()
	d.Meshes[id] = m
	return gpu.Mesh{ID: id, VertexCount: len(m.Vertices), IndexCount: len(m.Indices)}, nil
}

// UploadTexture stores the image.
func (d *Device) UploadTexture(img *image.RGBA) (gpu.Texture, error) {
	if d.TextureErr != nil {
		return gpu.Texture{}, d.TextureErr
	}
	if img == nil {
		return gpu.Texture{}, fmt.Errorf("gputest: nil image")
	}
	id := d.id()
	d.Textures[id] = img
	b := img.Bounds()
	return gpu.Texture{ID: id, Width: b.Dx(), Height: b.Dy()}, nil
}

// CreateDescriptorSet allocates one uniform slot per frame in flight.
func (d *Device) CreateDescriptorSet(tex gpu.Texture, uniformSize int) (gpu.DescriptorSet, error) {
	if uniformSize <= 0 {
		return gpu.DescriptorSet{}, fmt.Errorf("gputest: uniform size %d", uniformSize)
	}
	id := d.id()
	d.Sets[id] = &SetInfo{Texture: tex, UniformSize: uniformSize, Slots: make([][]byte, d.Frames)}
	return gpu.DescriptorSet{ID: id}, nil
}

// CreatePipeline stores the description.
func (d *Device) CreatePipeline(desc gpu.PipelineDesc) (gpu.Pipeline, error) {
	id := d.id()
	d.Pipelines[id] = desc
	return gpu.Pipeline{ID: id, Name: desc.Name}, nil
}

// WriteUniform copies data into the set's slot for imageIndex.
func (d *Device) WriteUniform(set gpu.DescriptorSet, imageIndex int, data []byte) error {
	info, ok := d.Sets[set.ID]
	if !ok {
		return fmt.Errorf("gputest: unknown descriptor set %d", set.ID)
	}
	if imageIndex < 0 || imageIndex >= d.Frames {
		return fmt.Errorf("gputest: image index %d out of range", imageIndex)
	}
	if len(data) > info.UniformSize {
		return fmt.Errorf("gputest: %d bytes exceed uniform size %d", len(data), info.UniformSize)
	}
	buf := append([]byte(nil), data...)
	info.Slots[imageIndex] = buf
	d.Events = append(d.Events, Event{Kind: Write, ImageIndex: imageIndex, Set: set, Data: buf})
	return nil
}

// AcquireFrameSlot hands out slots round-robin.
func (d *Device) AcquireFrameSlot() (int, error) {
	if d.closed {
		return 0, gpu.ErrClosed
	}
	if d.AcquireErr != nil {
		return 0, d.AcquireErr
	}
	idx := d.frame % d.Frames
	d.frame++
	d.Events = append(d.Events, Event{Kind: Acquire, ImageIndex: idx})
	return idx, nil
}

// Submit copies the recorded commands.
func (d *Device) Submit(cb *gpu.CommandBuffer) error {
	if d.closed {
		return gpu.ErrClosed
	}
	cmds := append([]gpu.Command(nil), cb.Commands()...)
	d.Events = append(d.Events, Event{Kind: Submit, Commands: cmds})
	return nil
}

// PresentFrame records the present.
func (d *Device) PresentFrame(imageIndex int) error {
	if d.closed {
		return gpu.ErrClosed
	}
	d.Events = append(d.Events, Event{Kind: Present, ImageIndex: imageIndex})
	return nil
}

// FramesInFlight returns the slot count.
func (d *Device) FramesInFlight() int { return d.Frames }

// YDown reports the configured clip-space convention.
func (d *Device) YDown() bool { return d.ClipYDown }

// Resize records the new framebuffer size.
func (d *Device) Resize(width, height int) {
	d.Width, d.Height = width, height
}

// Close marks the device closed.
func (d *Device) Close() { d.closed = true }

// ReadPixels returns opaque black rows except the bottom one, which is white.
func (d *Device) ReadPixels() ([]byte, int, int, error) {
	pix := make([]byte, d.Width*d.Height*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i+3] = byte(color.Opaque.A)
		if i < d.Width*4 {
			pix[i], pix[i+1], pix[i+2] = 0xff, 0xff, 0xff
		}
	}
	return pix, d.Width, d.Height, nil
}

// Submits returns the command lists of every submit, in order.
func (d *Device) Submits() [][]gpu.Command {
	var out [][]gpu.Command
	for _, e := range d.Events {
		if e.Kind == Submit {
			out = append(out, e.Commands)
		}
	}
	return out
}

// Kinds returns the event kinds in order, for sequence assertions.
func (d *Device) Kinds() []EventKind {
	out := make([]EventKind, len(d.Events))
	for i, e := range d.Events {
		out[i] = e.Kind
	}
	return out
}

// ClearEvents forgets recorded per-frame events, keeping resources.
func (d *Device) ClearEvents() {
	d.Events = d.Events[:0]
}

var _ gpu.Device = (*Device)(nil)
var _ gpu.FrameReader = (*Device)(nil)
