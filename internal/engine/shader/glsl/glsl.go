// Package glsl provides the embedded GLSL sources for each pipeline.
package glsl

import (
	"embed"
	"fmt"
	"sort"
)

//go:embed *.vert *.frag
var files embed.FS

// programs maps a pipeline shader name to its vertex and fragment files.
var programs = map[string][2]string{
	"planet": {"body.vert", "planet.frag"},
	"sun":    {"body.vert", "sun.frag"},
	"ring":   {"body.vert", "ring.frag"},
	"skybox": {"skybox.vert", "skybox.frag"},
}

// UniformBlock is the name of the per-draw std140 block in every program.
const UniformBlock = "Frame"

// TextureSampler is the sampler uniform bound to texture unit 0.
const TextureSampler = "uTexture"

// Program returns the vertex and fragment sources for a named program.
func Program(name string) (vertex, fragment string, err error) {
	p, ok := programs[name]
	if !ok {
		return "", "", fmt.Errorf("unknown shader program %q", name)
	}
	v, err := files.ReadFile(p[0])
	if err != nil {
		return "", "", fmt.Errorf("reading %s: %w", p[0], err)
	}
	f, err := files.ReadFile(p[1])
	if err != nil {
		return "", "", fmt.Errorf("reading %s: %w", p[1], err)
	}
	return string(v), string(f), nil
}

// Names lists the available programs in sorted order.
func Names() []string {
	out := make([]string, 0, len(programs))
	for n := range programs {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
