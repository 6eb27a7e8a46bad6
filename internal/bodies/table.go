package bodies

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// DefaultPrimary is the primary assumed for satellites that do not name one.
const DefaultPrimary = "Earth"

var (
	// ErrMalformed reports a body document that is not a mapping of body entries.
	ErrMalformed = errors.New("malformed body data")
	// ErrMissingField reports a required field absent from an entry.
	ErrMissingField = errors.New("missing field")
	// ErrZeroPeriod reports a zero revolution or rotation period.
	ErrZeroPeriod = errors.New("period must be non-zero")
	// ErrUnknownPrimary reports a satellite whose primary is not a planet in the table.
	ErrUnknownPrimary = errors.New("unknown primary")
	// ErrNoStar reports a table without a star.
	ErrNoStar = errors.New("no star in body data")
)

// entry mirrors one body record in the data file. Pointers distinguish
// absent fields from explicit zeros.
type entry struct {
	Type                string   `yaml:"type"`
	Primary             string   `yaml:"primary"`
	Texture             string   `yaml:"texture"`
	DistanceFromSun     *float64 `yaml:"distance_from_sun"`
	DistanceFromPlanet  *float64 `yaml:"distance_from_planet"`
	RevolutionPeriod    *float64 `yaml:"revolution_period"`
	RotationPeriod      *float64 `yaml:"rotation_period"`
	EclipticInclination *float64 `yaml:"ecliptic_inclination"`
	AxialTilt           *float64 `yaml:"axial_tilt"`
	Radius              *float64 `yaml:"radius"`
}

// Table is the read-only set of bodies in declaration order.
type Table struct {
	bodies []Body
	index  map[string]int
	star   int
}

// Load reads and parses a body data file. JSON and YAML are both accepted.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading body data: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse builds a Table from a document keyed by body name.
func Parse(data []byte) (*Table, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: expected an object keyed by body name", ErrMalformed)
	}
	root := doc.Content[0]

	t := &Table{index: make(map[string]int), star: -1}
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		if _, dup := t.index[name]; dup {
			return nil, fmt.Errorf("%w: body %q declared twice", ErrMalformed, name)
		}

		var e entry
		if err := root.Content[i+1].Decode(&e); err != nil {
			return nil, fmt.Errorf("%w: body %q: %v", ErrMalformed, name, err)
		}
		b, err := e.body(name)
		if err != nil {
			return nil, fmt.Errorf("body %q: %w", name, err)
		}

		if b.Kind == KindStar {
			if t.star >= 0 {
				return nil, fmt.Errorf("%w: body %q is a second star after %q", ErrMalformed, name, t.bodies[t.star].Name)
			}
			t.star = len(t.bodies)
		}
		t.index[name] = len(t.bodies)
		t.bodies = append(t.bodies, b)
	}

	if t.star < 0 {
		return nil, ErrNoStar
	}
	for _, b := range t.bodies {
		if b.Kind != KindSatellite {
			continue
		}
		p, ok := t.Lookup(b.Primary)
		if !ok || p.Kind != KindPlanet {
			return nil, fmt.Errorf("body %q: %w %q", b.Name, ErrUnknownPrimary, b.Primary)
		}
	}
	return t, nil
}

func (e entry) body(name string) (Body, error) {
	b := Body{
		Name:                name,
		Texture:             e.Texture,
		EclipticInclination: radians(e.EclipticInclination),
		AxialTilt:           radians(e.AxialTilt),
	}

	if e.Radius == nil {
		return b, fmt.Errorf("%w %q", ErrMissingField, "radius")
	}
	r := float32(*e.Radius)
	b.Scale = mgl32.Vec3{r, r, r}

	switch {
	case e.Type == "star" || (e.Type == "" && name == "Sun"):
		b.Kind = KindStar
		b.RevolutionPeriod = value(e.RevolutionPeriod)
		b.RotationPeriod = value(e.RotationPeriod)
		return b, nil
	case e.DistanceFromPlanet != nil:
		if e.DistanceFromSun != nil {
			return b, fmt.Errorf("%w: both distance_from_sun and distance_from_planet set", ErrMalformed)
		}
		b.Kind = KindSatellite
		b.OrbitRadius = *e.DistanceFromPlanet
		b.Primary = e.Primary
		if b.Primary == "" {
			b.Primary = DefaultPrimary
		}
	case e.DistanceFromSun != nil:
		b.Kind = KindPlanet
		b.OrbitRadius = *e.DistanceFromSun
	default:
		return b, fmt.Errorf("%w %q", ErrMissingField, "distance_from_sun")
	}

	if e.RevolutionPeriod == nil {
		return b, fmt.Errorf("%w %q", ErrMissingField, "revolution_period")
	}
	if e.RotationPeriod == nil {
		return b, fmt.Errorf("%w %q", ErrMissingField, "rotation_period")
	}
	if *e.RevolutionPeriod == 0 {
		return b, fmt.Errorf("revolution_period: %w", ErrZeroPeriod)
	}
	if *e.RotationPeriod == 0 {
		return b, fmt.Errorf("rotation_period: %w", ErrZeroPeriod)
	}
	b.RevolutionPeriod = *e.RevolutionPeriod
	b.RotationPeriod = *e.RotationPeriod
	return b, nil
}

func value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func radians(deg *float64) float64 {
	return value(deg) * math.Pi / 180
}

// Len returns the number of bodies.
func (t *Table) Len() int {
	return len(t.bodies)
}

// Body returns the body at index i.
func (t *Table) Body(i int) Body {
	return t.bodies[i]
}

// Bodies returns a copy of all bodies in declaration order.
func (t *Table) Bodies() []Body {
	out := make([]Body, len(t.bodies))
	copy(out, t.bodies)
	return out
}

// Index returns the position of the named body, or -1.
func (t *Table) Index(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// Lookup returns the named body.
func (t *Table) Lookup(name string) (Body, bool) {
	i, ok := t.index[name]
	if !ok {
		return Body{}, false
	}
	return t.bodies[i], true
}

// Star returns the index of the first star.
func (t *Table) Star() int {
	return t.star
}

// OfKind returns the indices of all bodies of kind k in declaration order.
func (t *Table) OfKind(k Kind) []int {
	var out []int
	for i, b := range t.bodies {
		if b.Kind == k {
			out = append(out, i)
		}
	}
	return out
}
