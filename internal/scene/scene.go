// Package scene builds the renderable entity list and drives the per-frame
// uniform updates and draw recording.
package scene

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"path"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/orrery/internal/bodies"
	"github.com/Faultbox/orrery/internal/engine/gpu"
	"github.com/Faultbox/orrery/internal/engine/mesh"
	"github.com/Faultbox/orrery/internal/engine/texture"
	"github.com/Faultbox/orrery/internal/logger"
	"github.com/Faultbox/orrery/internal/orbit"
)

// ErrMandatoryAsset is returned when the sun's mesh or texture is unusable.
var ErrMandatoryAsset = errors.New("mandatory asset missing")

// ringSegments is the tessellation of ring meshes.
const ringSegments = 128

// Loader finds raw asset bytes. *assets.Manager satisfies it.
type Loader interface {
	LoadAny(base string, exts []string) ([]byte, string, error)
}

// RingSpec places a ring around a primary body.
type RingSpec struct {
	Name        string
	Primary     string
	Texture     string
	InnerRadius float32
	OuterRadius float32
	Spin        float32 // radians about Y
	Scale       float32

	// TiltWithPrimary leans the ring by the primary's axial tilt.
	TiltWithPrimary bool
}

// Options controls which entities are built and how.
type Options struct {
	Skybox bool
	Moons  bool
	Rings  bool

	SkyboxTexture string
	SunTexture    string
	TextureDir    string
	TextureExts   []string

	SphereSegments int
	SphereRings    int
	RingList       []RingSpec

	// SkyboxScale is the uniform scale of the sky cube, normally far/2.
	SkyboxScale float32
	Ambient     float32
	Evaluator   orbit.Evaluator

	// MeshOverrides replaces the generated geometry for the named entities.
	MeshOverrides map[string]mesh.Data
	// MeshFiles maps entity names to OBJ files read through the Loader.
	// A file that cannot be read or parsed yields an empty mesh.
	MeshFiles     map[string]string
}

// DefaultOptions returns every feature enabled with stock detail.
func DefaultOptions() Options {
	return Options{
		Skybox:         true,
		Moons:          true,
		Rings:          true,
		SkyboxTexture:  "Skybox",
		TextureDir:     "textures",
		TextureExts:    []string{".jpg", ".png"},
		SphereSegments: 64,
		SphereRings:    32,
		SkyboxScale:    250,
		Ambient:        0.08,
		Evaluator:      orbit.NewEvaluator(orbit.FullTurn),
	}
}

// Stats summarizes one recorded frame.
type Stats struct {
	Draws   int
	Skipped int
}

// Scene is the fixed entity list plus the GPU objects it draws with.
type Scene struct {
	table *bodies.Table
	opts  Options
	log   *zap.Logger

	entities  []Entity
	pipelines [kindCount]gpu.Pipeline

	positions []mgl32.Vec3
	worlds    []mgl32.Mat4
	evaluated bool
	evalTime  float64
	buf       []byte

	// Degraded lists entities built with a fallback texture or no mesh.
	Degraded []string
}

type builder struct {
	res    gpu.Resources
	loader Loader
	opts   Options
	log    *zap.Logger

	sphere   gpu.Mesh
	fallback gpu.Texture
}

// Build uploads meshes and textures and creates one descriptor set per
// entity. A missing sun mesh or texture is fatal; other missing assets
// degrade to a fallback texture or an undrawn entity.
func Build(res gpu.Resources, table *bodies.Table, loader Loader, opts Options) (*Scene, error) {
	s := &Scene{
		table:     table,
		opts:      opts,
		log:       logger.Named("scene"),
		positions: make([]mgl32.Vec3, table.Len()),
		worlds:    make([]mgl32.Mat4, table.Len()),
		buf:       make([]byte, 0, UniformSize),
	}
	b := &builder{res: res, loader: loader, opts: opts, log: s.log}

	if err := s.createPipelines(res, opts.Rings && len(opts.RingList) > 0); err != nil {
		return nil, err
	}

	var err error
	b.sphere, err = res.UploadMesh(mesh.Sphere(opts.SphereSegments, opts.SphereRings))
	if err != nil {
		return nil, fmt.Errorf("uploading sphere mesh: %w", err)
	}

	if opts.Skybox {
		if err := s.addSkybox(b); err != nil {
			return nil, err
		}
	}
	if err := s.addSun(b); err != nil {
		return nil, err
	}
	for _, i := range table.OfKind(bodies.KindPlanet) {
		if err := s.addBody(b, i, KindPlanet); err != nil {
			return nil, err
		}
	}
	if opts.Moons {
		for _, i := range table.OfKind(bodies.KindSatellite) {
			if err := s.addBody(b, i, KindMoon); err != nil {
				return nil, err
			}
		}
	}
	if opts.Rings {
		for _, r := range opts.RingList {
			if err := s.addRing(b, r); err != nil {
				return nil, err
			}
		}
	}

	s.log.Info("scene built",
		zap.Int("entities", len(s.entities)),
		zap.Int("degraded", len(s.Degraded)),
	)
	return s, nil
}

func (s *Scene) createPipelines(res gpu.Resources, rings bool) error {
	descs := [kindCount]gpu.PipelineDesc{
		KindSkybox: {Name: "skybox", Shader: "skybox", Depth: gpu.DepthLessEqual, Cull: gpu.CullBack},
		KindSun:    {Name: "sun", Shader: "sun", Depth: gpu.DepthLess, DepthWrite: true, Cull: gpu.CullBack},
		KindPlanet: {Name: "planet", Shader: "planet", Depth: gpu.DepthLess, DepthWrite: true, Cull: gpu.CullBack},
		KindRing:   {Name: "ring", Shader: "ring", Depth: gpu.DepthLess, Cull: gpu.CullNone, Blend: true},
	}
	for k, d := range descs {
		kind := Kind(k)
		if d.Name == "" || (kind == KindSkybox && !s.opts.Skybox) || (kind == KindRing && !rings) {
			continue
		}
		p, err := res.CreatePipeline(d)
		if err != nil {
			return fmt.Errorf("creating %s pipeline: %w", d.Name, err)
		}
		s.pipelines[kind] = p
	}
	// Moons share the planet pipeline.
	s.pipelines[KindMoon] = s.pipelines[KindPlanet]
	return nil
}

func (s *Scene) addSkybox(b *builder) error {
	m, err := b.meshOr("Skybox", mesh.SkyboxCube(1))
	if err != nil {
		return err
	}
	if m.Empty() {
		s.degrade("Skybox", "empty mesh, entity will not be drawn")
	}
	tex, fallback, err := b.texture("Skybox", s.opts.SkyboxTexture, false)
	if err != nil {
		return err
	}
	if fallback {
		s.Degraded = append(s.Degraded, "Skybox")
	}
	return s.add(b, Entity{Name: "Skybox", Kind: KindSkybox, Body: -1, Primary: -1, Mesh: m, Texture: tex})
}

func (s *Scene) addSun(b *builder) error {
	i := s.table.Star()
	body := s.table.Body(i)
	m, err := b.mesh(body.Name)
	if err != nil {
		return err
	}
	if m.Empty() {
		return fmt.Errorf("%w: %s mesh is empty", ErrMandatoryAsset, body.Name)
	}
	name := s.opts.SunTexture
	if name == "" {
		name = body.TextureName()
	}
	img, err := b.image(name)
	if err != nil {
		return fmt.Errorf("%w: %s texture: %v", ErrMandatoryAsset, body.Name, err)
	}
	tex, err := b.res.UploadTexture(img)
	if err != nil {
		return fmt.Errorf("%w: %s texture: %v", ErrMandatoryAsset, body.Name, err)
	}
	return s.add(b, Entity{Name: body.Name, Kind: KindSun, Body: i, Primary: -1, Mesh: m, Texture: tex})
}

func (s *Scene) addBody(b *builder, i int, kind Kind) error {
	body := s.table.Body(i)
	m, err := b.mesh(body.Name)
	if err != nil {
		return err
	}
	if m.Empty() {
		s.degrade(body.Name, "empty mesh, entity will not be drawn")
	}
	tex, fallback, err := b.texture(body.Name, body.TextureName(), false)
	if err != nil {
		return err
	}
	if fallback {
		s.Degraded = append(s.Degraded, body.Name)
	}

	primary := -1
	if kind == KindMoon {
		primary = s.table.Index(body.Primary)
	}
	return s.add(b, Entity{Name: body.Name, Kind: kind, Body: i, Primary: primary, Mesh: m, Texture: tex})
}

func (s *Scene) addRing(b *builder, r RingSpec) error {
	primary := s.table.Index(r.Primary)
	if primary < 0 {
		s.degrade(r.Name, "primary "+r.Primary+" not in body data, ring skipped")
		return nil
	}
	m, err := b.meshOr(r.Name, mesh.Ring(r.InnerRadius, r.OuterRadius, ringSegments))
	if err != nil {
		return err
	}
	if m.Empty() {
		s.degrade(r.Name, "empty mesh, entity will not be drawn")
	}
	tex, fallback, err := b.texture(r.Name, r.Texture, true)
	if err != nil {
		return err
	}
	if fallback {
		s.Degraded = append(s.Degraded, r.Name)
	}
	scale := r.Scale
	if scale == 0 {
		scale = 1
	}
	return s.add(b, Entity{
		Name: r.Name, Kind: KindRing, Body: -1, Primary: primary,
		Mesh: m, Texture: tex, Spin: r.Spin, Scale: scale, Tilted: r.TiltWithPrimary,
	})
}

func (s *Scene) add(b *builder, e Entity) error {
	set, err := b.res.CreateDescriptorSet(e.Texture, UniformSize)
	if err != nil {
		return fmt.Errorf("descriptor set for %s: %w", e.Name, err)
	}
	e.Set = set
	s.entities = append(s.entities, e)
	return nil
}

func (s *Scene) degrade(name, reason string) {
	s.log.Warn("degraded entity", zap.String("entity", name), zap.String("reason", reason))
	s.Degraded = append(s.Degraded, name)
}

// mesh returns the body's own geometry or the shared sphere.
func (b *builder) mesh(name string) (gpu.Mesh, error) {
	d, ok := b.custom(name)
	if !ok {
		return b.sphere, nil
	}
	return b.upload(name, d)
}

// meshOr uploads the entity's own geometry, or def when it has none.
func (b *builder) meshOr(name string, def mesh.Data) (gpu.Mesh, error) {
	if d, ok := b.custom(name); ok {
		def = d
	}
	return b.upload(name, def)
}

func (b *builder) upload(name string, d mesh.Data) (gpu.Mesh, error) {
	m, err := b.res.UploadMesh(d)
	if err != nil {
		return gpu.Mesh{}, fmt.Errorf("uploading mesh for %s: %w", name, err)
	}
	return m, nil
}

// custom looks up an override or a mesh file. Unreadable files come back as
// empty data so the caller applies its empty-mesh policy.
func (b *builder) custom(name string) (mesh.Data, bool) {
	if d, ok := b.opts.MeshOverrides[name]; ok {
		return d, true
	}
	file, ok := b.opts.MeshFiles[name]
	if !ok {
		return mesh.Data{}, false
	}
	d, err := b.loadOBJ(file)
	if err != nil {
		b.log.Warn("mesh file unusable",
			zap.String("entity", name),
			zap.String("file", file),
			zap.Error(err),
		)
		return mesh.Data{}, true
	}
	return d, true
}

func (b *builder) loadOBJ(file string) (mesh.Data, error) {
	if b.loader == nil {
		return mesh.Data{}, errors.New("no asset loader")
	}
	ext := path.Ext(file)
	data, _, err := b.loader.LoadAny(strings.TrimSuffix(file, ext), []string{ext})
	if err != nil {
		return mesh.Data{}, err
	}
	return mesh.ParseOBJ(bytes.NewReader(data))
}

func (b *builder) image(name string) (*image.RGBA, error) {
	if b.loader == nil {
		return nil, errors.New("no asset loader")
	}
	data, file, err := b.loader.LoadAny(path.Join(b.opts.TextureDir, name), b.opts.TextureExts)
	if err != nil {
		return nil, err
	}
	return texture.Decode(file, data)
}

// texture loads a texture, substituting the shared fallback when the image
// is missing or undecodable. The bool reports whether the fallback was used.
// Upload failures are returned.
func (b *builder) texture(entity, name string, alphaMask bool) (gpu.Texture, bool, error) {
	img, err := b.image(name)
	if err != nil {
		b.log.Warn("texture unavailable, using fallback",
			zap.String("entity", entity),
			zap.String("texture", name),
			zap.Error(err),
		)
		tex, err := b.fallbackTexture()
		return tex, true, err
	}
	if alphaMask {
		texture.LuminanceToAlpha(img)
	}
	tex, err := b.res.UploadTexture(img)
	if err != nil {
		return gpu.Texture{}, false, fmt.Errorf("uploading texture %s: %w", name, err)
	}
	return tex, false, nil
}

func (b *builder) fallbackTexture() (gpu.Texture, error) {
	if b.fallback.Valid() {
		return b.fallback, nil
	}
	tex, err := b.res.UploadTexture(texture.Fallback())
	if err != nil {
		return gpu.Texture{}, fmt.Errorf("uploading fallback texture: %w", err)
	}
	b.fallback = tex
	return tex, nil
}

// Entities returns the entity list in draw order.
func (s *Scene) Entities() []Entity {
	return s.entities
}

// Table returns the body table the scene was built from.
func (s *Scene) Table() *bodies.Table {
	return s.table
}

// Position returns a body's position from the last Evaluate or UpdateFrame.
func (s *Scene) Position(body int) mgl32.Vec3 {
	if body < 0 || body >= len(s.positions) {
		return mgl32.Vec3{}
	}
	return s.positions[body]
}
