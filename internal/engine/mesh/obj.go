package mesh

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

type objKey struct{ v, vt, vn int }

// ParseOBJ reads Wavefront OBJ geometry. Only v, vt, vn and f records are
// used; polygons are fan-triangulated and V is flipped to top-left origin.
// Faces without normals take the normalized position, which suits the
// unit-sized body meshes.
func ParseOBJ(r io.Reader) (Data, error) {
	var (
		positions []mgl32.Vec3
		uvs       []mgl32.Vec2
		normals   []mgl32.Vec3
		d         Data
		seen      = map[objKey]uint32{}
	)

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v", "vn":
			vec, err := parseFloats(fields[1:], 3)
			if err != nil {
				return Data{}, fmt.Errorf("obj line %d: %w", line, err)
			}
			v := mgl32.Vec3{vec[0], vec[1], vec[2]}
			if fields[0] == "v" {
				positions = append(positions, v)
			} else {
				normals = append(normals, v)
			}
		case "vt":
			vec, err := parseFloats(fields[1:], 2)
			if err != nil {
				return Data{}, fmt.Errorf("obj line %d: %w", line, err)
			}
			uvs = append(uvs, mgl32.Vec2{vec[0], 1 - vec[1]})
		case "f":
			if len(fields) < 4 {
				return Data{}, fmt.Errorf("obj line %d: face needs at least 3 vertices", line)
			}
			face := make([]uint32, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				k, err := parseRef(ref, len(positions), len(uvs), len(normals))
				if err != nil {
					return Data{}, fmt.Errorf("obj line %d: %w", line, err)
				}
				idx, ok := seen[k]
				if !ok {
					idx = uint32(len(d.Vertices))
					seen[k] = idx
					d.Vertices = append(d.Vertices, objVertex(k, positions, uvs, normals))
				}
				face = append(face, idx)
			}
			for i := 1; i+1 < len(face); i++ {
				d.Indices = append(d.Indices, face[0], face[i], face[i+1])
			}
		}
	}
	if err := sc.Err(); err != nil {
		return Data{}, fmt.Errorf("reading obj: %w", err)
	}
	return d, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d components, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := range out {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}

// parseRef resolves one v, v/vt, v//vn or v/vt/vn reference to zero-based
// indices, -1 meaning absent. Negative references count from the end.
func parseRef(ref string, nv, nvt, nvn int) (objKey, error) {
	parts := strings.Split(ref, "/")
	if len(parts) > 3 {
		return objKey{}, fmt.Errorf("bad face reference %q", ref)
	}
	k := objKey{-1, -1, -1}
	counts := [3]int{nv, nvt, nvn}
	dst := [3]*int{&k.v, &k.vt, &k.vn}
	for i, p := range parts {
		if p == "" {
			if i == 0 {
				return objKey{}, fmt.Errorf("bad face reference %q", ref)
			}
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return objKey{}, fmt.Errorf("bad face reference %q: %w", ref, err)
		}
		if n < 0 {
			n = counts[i] + n
		} else {
			n--
		}
		if n < 0 || n >= counts[i] {
			return objKey{}, fmt.Errorf("face reference %q out of range", ref)
		}
		*dst[i] = n
	}
	return k, nil
}

func objVertex(k objKey, positions []mgl32.Vec3, uvs []mgl32.Vec2, normals []mgl32.Vec3) Vertex {
	v := Vertex{Position: positions[k.v]}
	if k.vt >= 0 {
		v.UV = uvs[k.vt]
	}
	if k.vn >= 0 {
		v.Normal = normals[k.vn]
	} else if v.Position.Len() > 0 {
		v.Normal = v.Position.Normalize()
	}
	return v
}
