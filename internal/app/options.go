package app

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/orrery/internal/config"
	"github.com/Faultbox/orrery/internal/engine/camera"
	"github.com/Faultbox/orrery/internal/orbit"
	"github.com/Faultbox/orrery/internal/scene"
	"github.com/Faultbox/orrery/internal/sim"
)

// SceneOptions maps the scene and graphics sections onto scene.Options.
func SceneOptions(cfg *config.Config) scene.Options {
	opts := scene.DefaultOptions()
	sc := cfg.Scene
	opts.Skybox = sc.Skybox
	opts.Moons = sc.Moons
	opts.Rings = sc.Rings
	opts.SkyboxTexture = sc.SkyboxTexture
	opts.SunTexture = sc.SunTexture
	if len(sc.TextureExts) > 0 {
		opts.TextureExts = sc.TextureExts
	}
	opts.TextureDir = cfg.Data.TextureDir
	if sc.SphereDetail[0] > 0 && sc.SphereDetail[1] > 0 {
		opts.SphereSegments, opts.SphereRings = sc.SphereDetail[0], sc.SphereDetail[1]
	}
	opts.RingList = opts.RingList[:0]
	for _, r := range sc.RingList {
		opts.RingList = append(opts.RingList, scene.RingSpec{
			Name:        r.Name,
			Primary:     r.Primary,
			Texture:     r.Texture,
			InnerRadius: r.InnerRadius,
			OuterRadius: r.OuterRadius,
			Spin:        r.Spin,
			Scale:       r.Scale,

			TiltWithPrimary: r.TiltWithPrimary,
		})
	}
	opts.MeshFiles = sc.MeshFiles
	opts.SkyboxScale = cfg.Graphics.Far / 2
	opts.Evaluator = orbit.NewEvaluator(cfg.Simulation.PhaseScale)
	return opts
}

// ClockSettings maps the simulation section onto sim.Settings.
func ClockSettings(cfg *config.Config) sim.Settings {
	s := cfg.Simulation
	return sim.Settings{
		DefaultSpeed: s.DefaultSpeed,
		MinSpeed:     s.MinSpeed,
		MaxSpeed:     s.MaxSpeed,
		Step:         s.SpeedStep,
	}
}

// NewCameraController builds both cameras from the camera section.
func NewCameraController(cfg *config.Config) *camera.Controller {
	c := cfg.Camera
	tuning := camera.FreeTuning{
		VelMin:       c.VelMin,
		VelMax:       c.VelMax,
		Acceleration: c.Acceleration,
		Deadzone:     c.Deadzone,
		VelDecay:     c.VelDecay,
		RotStep:      c.RotStep,
		RotLimit:     c.RotLimit,
		RotEpsilon:   c.RotEpsilon,
	}
	free := camera.NewFreeCamera(mgl32.Vec3(c.InitialPos), tuning)
	orbitCam := camera.NewOrbitCamera(c.OrbitDistance, c.OrbitPitch, c.OrbitYaw)
	return camera.NewController(camera.ParseMode(c.Mode), free, orbitCam)
}
