package app

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/orrery/internal/assets"
	"github.com/Faultbox/orrery/internal/bodies"
	"github.com/Faultbox/orrery/internal/config"
	"github.com/Faultbox/orrery/internal/engine/gpu/gputest"
	"github.com/Faultbox/orrery/internal/scene"
)

const triangleOBJ = `v 0 0 1
v 1 0 0
v 0 1 0
vt 0 0
vt 1 0
vt 0 1
f 1/1 2/2 3/3
`

// assetDir lays out textures for every body plus the given mesh files and
// a config pointing at them, returning the config path.
func assetDir(t *testing.T, meshes map[string]string, meshFiles string) string {
	t.Helper()
	dir := t.TempDir()
	write := func(name string, data []byte) {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, data, 0644); err != nil {
			t.Fatal(err)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
	for _, n := range []string{"Skybox", "Sun", "Earth", "Mars", "Saturn", "Moon", "ringAlpha"} {
		write("textures/"+n+".png", buf.Bytes())
	}
	for name, src := range meshes {
		write(name, []byte(src))
	}

	cfgPath := filepath.Join(dir, "orrery.yaml")
	write("orrery.yaml", []byte(`data:
  asset_dirs: [`+dir+`]
scene:
  texture_exts: [.png]
  sphere_detail: [8, 4]
  mesh_files:
`+meshFiles))
	return cfgPath
}

func buildFromConfig(t *testing.T, cfgPath string) (*scene.Scene, error) {
	t.Helper()
	cfg, err := config.LoadFile(cfgPath)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	table, err := bodies.Parse([]byte(bodiesJSON))
	if err != nil {
		t.Fatal(err)
	}
	am := assets.NewManager(cfg.Data.AssetDirs...)
	defer am.Close()
	return scene.Build(gputest.New(1), table, am, SceneOptions(cfg))
}

func TestMeshFilesFromConfig(t *testing.T) {
	cfgPath := assetDir(t, map[string]string{
		"models/saturn.obj": triangleOBJ,
		"models/mars.obj":   "# vertices only\nv 0 0 0\nv 1 0 0\n",
	}, "    Saturn: models/saturn.obj\n    Mars: models/mars.obj\n    Earth: models/missing.obj\n")

	s, err := buildFromConfig(t, cfgPath)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	byName := map[string]scene.Entity{}
	for _, e := range s.Entities() {
		byName[e.Name] = e
	}
	if m := byName["Saturn"].Mesh; m.VertexCount != 3 || m.IndexCount != 3 {
		t.Errorf("Saturn mesh = %+v, want the 3-vertex OBJ", m)
	}
	for _, name := range []string{"Mars", "Earth"} {
		if !byName[name].Mesh.Empty() {
			t.Errorf("%s mesh should be empty", name)
		}
	}
	if m := byName["Moon"].Mesh; m.IndexCount != 8*4*6 {
		t.Errorf("Moon should keep the generated sphere, got %+v", m)
	}

	degraded := map[string]bool{}
	for _, n := range s.Degraded {
		degraded[n] = true
	}
	if !degraded["Mars"] || !degraded["Earth"] || degraded["Saturn"] {
		t.Errorf("degraded = %v, want Mars and Earth only", s.Degraded)
	}
}

func TestSunMeshFileIsMandatory(t *testing.T) {
	cfgPath := assetDir(t, map[string]string{"models/sun.obj": ""}, "    Sun: models/sun.obj\n")
	if _, err := buildFromConfig(t, cfgPath); !errors.Is(err, scene.ErrMandatoryAsset) {
		t.Errorf("got %v, want ErrMandatoryAsset", err)
	}
}
