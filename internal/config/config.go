// Package config handles renderer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Camera modes accepted by CameraConfig.Mode.
const (
	CameraFree  = "free"
	CameraOrbit = "orbit"
)

// Config holds all renderer settings.
type Config struct {
	Graphics   GraphicsConfig   `yaml:"graphics"`
	Simulation SimulationConfig `yaml:"simulation"`
	Camera     CameraConfig     `yaml:"camera"`
	Scene      SceneConfig      `yaml:"scene"`
	Data       DataConfig       `yaml:"data"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Debug      DebugConfig      `yaml:"debug"`
}

// GraphicsConfig holds display and projection settings.
type GraphicsConfig struct {
	Width          int     `yaml:"width"`
	Height         int     `yaml:"height"`
	Fullscreen     bool    `yaml:"fullscreen"`
	VSync          bool    `yaml:"vsync"`
	FramesInFlight int     `yaml:"frames_in_flight"`
	FovYDegrees    float32 `yaml:"fov_y"`
	Near           float32 `yaml:"near"`
	Far            float32 `yaml:"far"`
}

// SimulationConfig holds clock and orbital phase settings.
type SimulationConfig struct {
	BodiesFile   string  `yaml:"bodies_file"`
	DefaultSpeed float64 `yaml:"default_speed"`
	MinSpeed     float64 `yaml:"min_speed"`
	MaxSpeed     float64 `yaml:"max_speed"`
	SpeedStep    float64 `yaml:"speed_step"`
	// PhaseScale is the orbital phase, in radians, covered by one period.
	PhaseScale float64 `yaml:"phase_scale"`
}

// CameraConfig holds the free-fly and orbit camera tuning.
type CameraConfig struct {
	Mode       string     `yaml:"mode"`
	InitialPos [3]float32 `yaml:"initial_position"`

	VelMin       float32 `yaml:"vel_min"`
	VelMax       float32 `yaml:"vel_max"`
	Acceleration float32 `yaml:"acceleration"`
	Deadzone     float32 `yaml:"deadzone"`
	VelDecay     float32 `yaml:"vel_decay"`

	RotStep    float32 `yaml:"rot_step"`
	RotLimit   float32 `yaml:"rot_limit"`
	RotEpsilon float32 `yaml:"rot_epsilon"`

	OrbitTarget   string  `yaml:"orbit_target"`
	OrbitDistance float32 `yaml:"orbit_distance"`
	OrbitPitch    float32 `yaml:"orbit_pitch"`
	OrbitYaw      float32 `yaml:"orbit_yaw"`
}

// RingConfig describes a ring drawn around a primary body.
type RingConfig struct {
	Name        string  `yaml:"name"`
	Primary     string  `yaml:"primary"`
	Texture     string  `yaml:"texture"`
	InnerRadius float32 `yaml:"inner_radius"`
	OuterRadius float32 `yaml:"outer_radius"`
	Spin        float32 `yaml:"spin"` // radians about the primary's Y axis
	Scale       float32 `yaml:"scale"`

	TiltWithPrimary bool `yaml:"tilt_with_primary"`
}

// SceneConfig holds entity feature flags and asset names.
type SceneConfig struct {
	Skybox        bool         `yaml:"skybox"`
	Moons         bool         `yaml:"moons"`
	Rings         bool         `yaml:"rings"`
	SkyboxTexture string       `yaml:"skybox_texture"`
	SunTexture    string       `yaml:"sun_texture"`
	TextureExts   []string     `yaml:"texture_exts"`
	SphereDetail  [2]int       `yaml:"sphere_detail"`
	RingList      []RingConfig `yaml:"ring_list"`

	// MeshFiles swaps the generated geometry of the named entities for OBJ
	// files under the asset dirs, e.g. {Saturn: models/saturn.obj}.
	MeshFiles map[string]string `yaml:"mesh_files,omitempty"`
}

// DataConfig holds asset search paths.
type DataConfig struct {
	AssetDirs  []string `yaml:"asset_dirs"`
	TextureDir string   `yaml:"texture_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// DebugConfig holds developer conveniences.
type DebugConfig struct {
	ScreenshotDir string  `yaml:"screenshot_dir"`
	HUDRate       float64 `yaml:"hud_rate"`
}

// Default returns the stock renderer tuning.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:          1600,
			Height:         900,
			VSync:          true,
			FramesInFlight: 2,
			FovYDegrees:    45,
			Near:           0.1,
			Far:            500,
		},
		Simulation: SimulationConfig{
			BodiesFile:   "solarSystemData.json",
			DefaultSpeed: 0.75,
			MinSpeed:     0.1,
			MaxSpeed:     3.0,
			SpeedStep:    0.05,
			PhaseScale:   6.283185307179586,
		},
		Camera: CameraConfig{
			Mode:          CameraFree,
			InitialPos:    [3]float32{0, 10, 100},
			VelMin:        -5,
			VelMax:        5,
			Acceleration:  0.05,
			Deadzone:      0.25,
			VelDecay:      0.001,
			RotStep:       0.01,
			RotLimit:      1,
			RotEpsilon:    0.001,
			OrbitTarget:   "Earth",
			OrbitDistance: 30,
			OrbitPitch:    0.4,
			OrbitYaw:      0,
		},
		Scene: SceneConfig{
			Skybox:        true,
			Moons:         true,
			Rings:         true,
			SkyboxTexture: "Skybox",
			SunTexture:    "Sun",
			TextureExts:   []string{".jpg", ".png", ".bmp", ".webp"},
			SphereDetail:  [2]int{64, 32},
			RingList: []RingConfig{{
				Name:        "SaturnRing",
				Primary:     "Saturn",
				Texture:     "ringAlpha",
				InnerRadius: 30,
				OuterRadius: 55,
				Spin:        59.6,
				Scale:       0.18,
			}},
		},
		Data: DataConfig{
			AssetDirs:  []string{"."},
			TextureDir: "textures",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Debug: DebugConfig{
			ScreenshotDir: "screenshots",
			HUDRate:       10,
		},
	}
}

// Validate reports every out-of-range setting at once.
func (c *Config) Validate() error {
	var errs []error
	g := c.Graphics
	if g.Width <= 0 || g.Height <= 0 {
		errs = append(errs, fmt.Errorf("graphics: window size %dx%d must be positive", g.Width, g.Height))
	}
	if g.FramesInFlight < 1 || g.FramesInFlight > 3 {
		errs = append(errs, fmt.Errorf("graphics: frames_in_flight %d must be 1..3", g.FramesInFlight))
	}
	if g.FovYDegrees <= 0 || g.FovYDegrees >= 180 {
		errs = append(errs, fmt.Errorf("graphics: fov_y %.1f must be in (0, 180)", g.FovYDegrees))
	}
	if g.Near <= 0 || g.Far <= g.Near {
		errs = append(errs, fmt.Errorf("graphics: need 0 < near (%g) < far (%g)", g.Near, g.Far))
	}

	s := c.Simulation
	if s.BodiesFile == "" {
		errs = append(errs, errors.New("simulation: bodies_file is required"))
	}
	if s.MinSpeed > s.MaxSpeed {
		errs = append(errs, fmt.Errorf("simulation: min_speed %g exceeds max_speed %g", s.MinSpeed, s.MaxSpeed))
	}
	if s.DefaultSpeed < s.MinSpeed || s.DefaultSpeed > s.MaxSpeed {
		errs = append(errs, fmt.Errorf("simulation: default_speed %g outside [%g, %g]", s.DefaultSpeed, s.MinSpeed, s.MaxSpeed))
	}
	if s.SpeedStep <= 0 {
		errs = append(errs, fmt.Errorf("simulation: speed_step %g must be positive", s.SpeedStep))
	}
	if s.PhaseScale == 0 {
		errs = append(errs, errors.New("simulation: phase_scale must be non-zero"))
	}

	cam := c.Camera
	if cam.Mode != CameraFree && cam.Mode != CameraOrbit {
		errs = append(errs, fmt.Errorf("camera: unknown mode %q", cam.Mode))
	}
	if cam.VelMin > 0 || cam.VelMax < 0 {
		errs = append(errs, fmt.Errorf("camera: velocity range [%g, %g] must contain zero", cam.VelMin, cam.VelMax))
	}
	if cam.RotLimit <= 0 || cam.RotEpsilon < 0 {
		errs = append(errs, errors.New("camera: rot_limit must be positive and rot_epsilon non-negative"))
	}
	if cam.OrbitDistance <= 0 {
		errs = append(errs, fmt.Errorf("camera: orbit_distance %g must be positive", cam.OrbitDistance))
	}

	if c.Scene.SphereDetail[0] < 3 || c.Scene.SphereDetail[1] < 2 {
		errs = append(errs, fmt.Errorf("scene: sphere_detail %v too coarse", c.Scene.SphereDetail))
	}
	for _, r := range c.Scene.RingList {
		if r.Primary == "" || r.InnerRadius < 0 || r.OuterRadius <= r.InnerRadius {
			errs = append(errs, fmt.Errorf("scene: ring %q needs a primary and inner < outer radius", r.Name))
		}
	}
	for name, file := range c.Scene.MeshFiles {
		if !strings.EqualFold(filepath.Ext(file), ".obj") {
			errs = append(errs, fmt.Errorf("scene: mesh_files %s = %q is not an .obj file", name, file))
		}
	}
	return errors.Join(errs...)
}
