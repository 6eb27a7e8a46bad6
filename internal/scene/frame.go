package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/orrery/internal/bodies"
	"github.com/Faultbox/orrery/internal/engine/camera"
	"github.com/Faultbox/orrery/internal/engine/gpu"
	"github.com/Faultbox/orrery/internal/orbit"
)

// Evaluate computes every body's world matrix and position at time t.
// Satellites are placed after their primaries. Repeated calls with the same
// t reuse the previous result.
func (s *Scene) Evaluate(t float64) {
	if s.evaluated && s.evalTime == t {
		return
	}
	s.evaluated, s.evalTime = true, t
	ev := s.opts.Evaluator
	for i := 0; i < s.table.Len(); i++ {
		b := s.table.Body(i)
		if b.Kind == bodies.KindSatellite {
			continue
		}
		s.worlds[i], s.positions[i] = ev.BodyTransform(b, t)
	}
	for i := 0; i < s.table.Len(); i++ {
		b := s.table.Body(i)
		if b.Kind != bodies.KindSatellite {
			continue
		}
		primary := s.positions[s.table.Index(b.Primary)]
		s.worlds[i], s.positions[i] = ev.SatelliteTransform(b, primary, t)
	}
}

// UpdateFrame writes one uniform record per entity into the slot for
// imageIndex. No other slot is touched.
func (s *Scene) UpdateFrame(w gpu.UniformWriter, imageIndex int, view, projection mgl32.Mat4, t float64) error {
	s.Evaluate(t)
	light := s.positions[s.table.Star()]
	skyView := camera.SkyboxView(view)

	for i := range s.entities {
		e := &s.entities[i]
		u := Uniforms{
			View:       view,
			Projection: projection,
			LightPos:   light,
			Ambient:    s.opts.Ambient,
		}
		switch e.Kind {
		case KindSkybox:
			sc := s.opts.SkyboxScale
			e.world = mgl32.Scale3D(sc, sc, sc)
			u.View = skyView
		case KindRing:
			var tilt float32
			if e.Tilted {
				tilt = float32(s.table.Body(e.Primary).AxialTilt)
			}
			e.world = orbit.RingTransform(s.positions[e.Primary], tilt, e.Spin, e.Scale)
		default:
			e.world = s.worlds[e.Body]
		}
		u.Model = e.world
		u.Normal = orbit.NormalMatrix(e.world)

		s.buf = u.AppendStd140(s.buf[:0])
		if err := w.WriteUniform(e.Set, imageIndex, s.buf); err != nil {
			return fmt.Errorf("writing uniforms for %s: %w", e.Name, err)
		}
	}
	return nil
}

// Record appends the frame's draws to cb: skybox, sun, planets, moons,
// rings. Entities with an empty mesh are skipped.
func (s *Scene) Record(cb *gpu.CommandBuffer, imageIndex int) Stats {
	var st Stats
	var bound gpu.Pipeline
	for i := range s.entities {
		e := &s.entities[i]
		if !e.Drawable() {
			st.Skipped++
			continue
		}
		if p := s.pipelines[e.Kind]; p != bound {
			cb.BindPipeline(p)
			bound = p
		}
		cb.BindDescriptorSet(e.Set, imageIndex)
		cb.BindMesh(e.Mesh)
		cb.DrawIndexed(e.Mesh.IndexCount)
		st.Draws++
	}
	return st
}
