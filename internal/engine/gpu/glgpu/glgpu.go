// Package glgpu implements gpu.Device on OpenGL 4.1 core.
// Every call must happen on the thread that owns the GL context.
package glgpu

import (
	"fmt"
	"image"
	"time"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/orrery/internal/engine/gpu"
	"github.com/Faultbox/orrery/internal/engine/mesh"
	"github.com/Faultbox/orrery/internal/engine/shader"
	"github.com/Faultbox/orrery/internal/logger"
)

// frameBinding is the uniform buffer binding point of the Frame block.
const frameBinding = 0

// fenceTimeout bounds a single wait on an in-flight frame.
const fenceTimeout = time.Second

// Config holds device settings.
type Config struct {
	Width          int
	Height         int
	FramesInFlight int
	ClearColor     [4]float32
	// Swap presents the back buffer, usually the window's SwapBuffers.
	Swap func()
}

type meshObj struct {
	vao, vbo, ebo uint32
}

type setObj struct {
	texture uint32
	size    int
	ubos    []uint32
}

type pipelineObj struct {
	program uint32
	desc    gpu.PipelineDesc
}

// Device is an OpenGL backed gpu.Device.
type Device struct {
	cfg Config
	log *zap.Logger

	meshes    map[uint32]meshObj
	textures  map[uint32]bool
	sets      map[uint32]*setObj
	pipelines map[uint32]pipelineObj
	nextID    uint32

	fences []uintptr
	frame  int
	slot   int

	width, height int
	closed        bool
}

// New initializes OpenGL. It must be called after the GL context exists.
func New(cfg Config) (*Device, error) {
	if cfg.FramesInFlight < 1 {
		cfg.FramesInFlight = 1
	}
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	d := &Device{
		cfg:       cfg,
		log:       logger.Named("gpu"),
		meshes:    make(map[uint32]meshObj),
		textures:  make(map[uint32]bool),
		sets:      make(map[uint32]*setObj),
		pipelines: make(map[uint32]pipelineObj),
		fences:    make([]uintptr, cfg.FramesInFlight),
	}

	d.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.Int("frames_in_flight", cfg.FramesInFlight),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.FrontFace(gl.CCW)
	c := cfg.ClearColor
	gl.ClearColor(c[0], c[1], c[2], c[3])
	d.Resize(cfg.Width, cfg.Height)
	return d, nil
}

func (d *Device) id() uint32 {
	d.nextID++
	return d.nextID
}

// UploadMesh creates a VAO with position, normal and uv attributes.
func (d *Device) UploadMesh(m mesh.Data) (gpu.Mesh, error) {
	if m.Empty() {
		return gpu.Mesh{}, nil
	}
	floats := m.Floats()

	var obj meshObj
	gl.GenVertexArrays(1, &obj.vao)
	gl.BindVertexArray(obj.vao)

	gl.GenBuffers(1, &obj.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, obj.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(floats)*4, gl.Ptr(floats), gl.STATIC_DRAW)

	gl.GenBuffers(1, &obj.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, obj.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, gl.Ptr(m.Indices), gl.STATIC_DRAW)

	// Position
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, mesh.VertexSize, 0)
	gl.EnableVertexAttribArray(0)
	// Normal
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, mesh.VertexSize, 12)
	gl.EnableVertexAttribArray(1)
	// UV
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, mesh.VertexSize, 24)
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)

	if e := gl.GetError(); e != gl.NO_ERROR {
		return gpu.Mesh{}, fmt.Errorf("uploading mesh: GL error 0x%x", e)
	}
	id := d.id()
	d.meshes[id] = obj
	return gpu.Mesh{ID: id, VertexCount: len(m.Vertices), IndexCount: len(m.Indices)}, nil
}

// UploadTexture creates a mipmapped RGBA texture.
func (d *Device) UploadTexture(img *image.RGBA) (gpu.Texture, error) {
	if img == nil || len(img.Pix) == 0 {
		return gpu.Texture{}, fmt.Errorf("uploading texture: empty image")
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	var texID uint32
	gl.GenTextures(1, &texID)
	gl.BindTexture(gl.TEXTURE_2D, texID)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameterf(gl.TEXTURE_2D, gl.TEXTURE_MAX_ANISOTROPY, 8.0)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	d.textures[texID] = true
	return gpu.Texture{ID: texID, Width: w, Height: h}, nil
}

// CreateDescriptorSet allocates one uniform buffer per frame in flight.
func (d *Device) CreateDescriptorSet(tex gpu.Texture, uniformSize int) (gpu.DescriptorSet, error) {
	if uniformSize <= 0 {
		return gpu.DescriptorSet{}, fmt.Errorf("descriptor set: uniform size %d", uniformSize)
	}
	set := &setObj{texture: tex.ID, size: uniformSize, ubos: make([]uint32, d.cfg.FramesInFlight)}
	gl.GenBuffers(int32(len(set.ubos)), &set.ubos[0])
	for _, ubo := range set.ubos {
		gl.BindBuffer(gl.UNIFORM_BUFFER, ubo)
		gl.BufferData(gl.UNIFORM_BUFFER, uniformSize, nil, gl.DYNAMIC_DRAW)
	}
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)

	id := d.id()
	d.sets[id] = set
	return gpu.DescriptorSet{ID: id}, nil
}

// CreatePipeline compiles the named embedded shader program.
func (d *Device) CreatePipeline(desc gpu.PipelineDesc) (gpu.Pipeline, error) {
	program, err := shader.Load(desc.Shader, frameBinding)
	if err != nil {
		return gpu.Pipeline{}, fmt.Errorf("pipeline %s: %w", desc.Name, err)
	}
	id := d.id()
	d.pipelines[id] = pipelineObj{program: program, desc: desc}
	d.log.Debug("pipeline created", zap.String("name", desc.Name), zap.String("shader", desc.Shader))
	return gpu.Pipeline{ID: id, Name: desc.Name}, nil
}

// AcquireFrameSlot waits for the GPU to finish the frame that last used
// the next slot, then clears the framebuffer.
func (d *Device) AcquireFrameSlot() (int, error) {
	if d.closed {
		return 0, gpu.ErrClosed
	}
	idx := d.frame % len(d.fences)
	if f := d.fences[idx]; f != 0 {
		for {
			r := gl.ClientWaitSync(f, gl.SYNC_FLUSH_COMMANDS_BIT, uint64(fenceTimeout.Nanoseconds()))
			if r == gl.ALREADY_SIGNALED || r == gl.CONDITION_SATISFIED {
				break
			}
			if r == gl.WAIT_FAILED {
				gl.DeleteSync(f)
				d.fences[idx] = 0
				return 0, fmt.Errorf("waiting for frame slot %d: fence wait failed", idx)
			}
			d.log.Warn("frame slot still busy", zap.Int("slot", idx))
		}
		gl.DeleteSync(f)
		d.fences[idx] = 0
	}
	d.frame++
	d.slot = idx

	gl.DepthMask(true)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	return idx, nil
}

// WriteUniform uploads data into the set's buffer for imageIndex.
func (d *Device) WriteUniform(set gpu.DescriptorSet, imageIndex int, data []byte) error {
	s, ok := d.sets[set.ID]
	if !ok {
		return fmt.Errorf("write uniform: unknown descriptor set %d", set.ID)
	}
	if imageIndex < 0 || imageIndex >= len(s.ubos) {
		return fmt.Errorf("write uniform: image index %d out of range", imageIndex)
	}
	if len(data) > s.size {
		return fmt.Errorf("write uniform: %d bytes exceed %d", len(data), s.size)
	}
	if len(data) == 0 {
		return nil
	}
	gl.BindBuffer(gl.UNIFORM_BUFFER, s.ubos[imageIndex])
	gl.BufferSubData(gl.UNIFORM_BUFFER, 0, len(data), gl.Ptr(data))
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
	return nil
}

// Submit replays the command buffer and fences the current slot.
func (d *Device) Submit(cb *gpu.CommandBuffer) error {
	if d.closed {
		return gpu.ErrClosed
	}
	for i, c := range cb.Commands() {
		switch c.Kind {
		case gpu.CmdBindPipeline:
			p, ok := d.pipelines[c.Pipeline.ID]
			if !ok {
				return fmt.Errorf("command %d: unknown pipeline %d", i, c.Pipeline.ID)
			}
			gl.UseProgram(p.program)
			applyState(p.desc)

		case gpu.CmdBindDescriptorSet:
			s, ok := d.sets[c.Set.ID]
			if !ok {
				return fmt.Errorf("command %d: unknown descriptor set %d", i, c.Set.ID)
			}
			gl.BindBufferBase(gl.UNIFORM_BUFFER, frameBinding, s.ubos[c.ImageIndex])
			gl.ActiveTexture(gl.TEXTURE0)
			gl.BindTexture(gl.TEXTURE_2D, s.texture)

		case gpu.CmdBindMesh:
			m, ok := d.meshes[c.Mesh.ID]
			if !ok {
				return fmt.Errorf("command %d: unknown mesh %d", i, c.Mesh.ID)
			}
			gl.BindVertexArray(m.vao)

		case gpu.CmdDrawIndexed:
			gl.DrawElementsWithOffset(gl.TRIANGLES, int32(c.IndexCount), gl.UNSIGNED_INT, 0)
		}
	}
	gl.BindVertexArray(0)

	d.fences[d.slot] = gl.FenceSync(gl.SYNC_GPU_COMMANDS_COMPLETE, 0)
	if e := gl.GetError(); e != gl.NO_ERROR {
		return fmt.Errorf("submit: GL error 0x%x", e)
	}
	return nil
}

func applyState(desc gpu.PipelineDesc) {
	switch desc.Depth {
	case gpu.DepthLessEqual:
		gl.DepthFunc(gl.LEQUAL)
	default:
		gl.DepthFunc(gl.LESS)
	}
	gl.DepthMask(desc.DepthWrite)

	switch desc.Cull {
	case gpu.CullNone:
		gl.Disable(gl.CULL_FACE)
	case gpu.CullFront:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.FRONT)
	default:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	}

	if desc.Blend {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	} else {
		gl.Disable(gl.BLEND)
	}
}

// PresentFrame swaps the window buffers.
func (d *Device) PresentFrame(imageIndex int) error {
	if d.closed {
		return gpu.ErrClosed
	}
	if imageIndex != d.slot {
		return fmt.Errorf("present: image %d was not acquired (current %d)", imageIndex, d.slot)
	}
	if d.cfg.Swap != nil {
		d.cfg.Swap()
	}
	return nil
}

// FramesInFlight returns the number of uniform slots per set.
func (d *Device) FramesInFlight() int {
	return len(d.fences)
}

// YDown is false: OpenGL clip space has Y up.
func (d *Device) YDown() bool {
	return false
}

// Resize updates the viewport.
func (d *Device) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	d.width, d.height = width, height
	gl.Viewport(0, 0, int32(width), int32(height))
	d.log.Debug("viewport resized", zap.Int("width", width), zap.Int("height", height))
}

// ReadPixels reads the back buffer as bottom-up RGBA rows.
func (d *Device) ReadPixels() ([]byte, int, int, error) {
	if d.width == 0 || d.height == 0 {
		return nil, 0, 0, fmt.Errorf("read pixels: no framebuffer")
	}
	pix := make([]byte, d.width*d.height*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(d.width), int32(d.height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&pix[0]))
	if e := gl.GetError(); e != gl.NO_ERROR {
		return nil, 0, 0, fmt.Errorf("read pixels: GL error 0x%x", e)
	}
	return pix, d.width, d.height, nil
}

// Close releases every GL object.
func (d *Device) Close() {
	if d.closed {
		return
	}
	d.closed = true
	d.log.Info("closing GPU device")

	for i, f := range d.fences {
		if f != 0 {
			gl.DeleteSync(f)
			d.fences[i] = 0
		}
	}
	for _, m := range d.meshes {
		gl.DeleteVertexArrays(1, &m.vao)
		gl.DeleteBuffers(1, &m.vbo)
		gl.DeleteBuffers(1, &m.ebo)
	}
	for _, s := range d.sets {
		gl.DeleteBuffers(int32(len(s.ubos)), &s.ubos[0])
	}
	for tex := range d.textures {
		gl.DeleteTextures(1, &tex)
	}
	for _, p := range d.pipelines {
		gl.DeleteProgram(p.program)
	}
}

var (
	_ gpu.Device      = (*Device)(nil)
	_ gpu.FrameReader = (*Device)(nil)
)
