// Package mood defines the emotional categories entities are tagged with.
package mood

import (
	"fmt"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/moodbiome/config"
)

// ID indexes a category in its Table.
type ID uint8

// None is the sentinel for "no category", e.g. the dominant category of an
// empty population.
const None ID = 255

// Category holds the visual and physical parameters of one emotion.
type Category struct {
	ID            ID
	Name          string
	Color         color.RGBA
	ParticleColor color.RGBA
	SpeedFactor   float32
	SizeFactor    float32
}

// Table is the immutable category lookup. It is built once at startup and
// shared read-only by the simulation and the renderers.
type Table struct {
	categories []Category
	byName     map[string]ID
}

// NewTable builds a table from category configs in order.
func NewTable(cfgs []config.CategoryConfig) (*Table, error) {
	if len(cfgs) == 0 {
		return nil, fmt.Errorf("mood: empty category list")
	}
	if len(cfgs) >= int(None) {
		return nil, fmt.Errorf("mood: %d categories exceeds the limit of %d", len(cfgs), None)
	}

	t := &Table{
		categories: make([]Category, 0, len(cfgs)),
		byName:     make(map[string]ID, len(cfgs)),
	}
	for i, c := range cfgs {
		if _, dup := t.byName[c.Name]; dup {
			return nil, fmt.Errorf("mood: duplicate category %q", c.Name)
		}
		base, err := parseHex(c.Color)
		if err != nil {
			return nil, fmt.Errorf("mood: category %q color: %w", c.Name, err)
		}
		particle, err := parseHex(c.ParticleColor)
		if err != nil {
			return nil, fmt.Errorf("mood: category %q particle color: %w", c.Name, err)
		}
		id := ID(i)
		t.categories = append(t.categories, Category{
			ID:            id,
			Name:          c.Name,
			Color:         base,
			ParticleColor: particle,
			SpeedFactor:   float32(c.Speed),
			SizeFactor:    float32(c.Size),
		})
		t.byName[c.Name] = id
	}
	return t, nil
}

// MustTable is like NewTable but panics on error.
func MustTable(cfgs []config.CategoryConfig) *Table {
	t, err := NewTable(cfgs)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup resolves a category by name.
func (t *Table) Lookup(name string) (ID, bool) {
	id, ok := t.byName[name]
	return id, ok
}

// Get returns the category for id.
func (t *Table) Get(id ID) (*Category, bool) {
	if int(id) >= len(t.categories) {
		return nil, false
	}
	return &t.categories[id], true
}

// Valid reports whether id names a category in this table.
func (t *Table) Valid(id ID) bool {
	return int(id) < len(t.categories)
}

// Len returns the number of categories.
func (t *Table) Len() int {
	return len(t.categories)
}

// All returns the categories in table order. The slice must not be modified.
func (t *Table) All() []Category {
	return t.categories
}

// Name returns the display name for id, "None" for the sentinel.
func (t *Table) Name(id ID) string {
	if c, ok := t.Get(id); ok {
		return c.Name
	}
	return "None"
}

// Fade blends a category color toward black by alpha in [0,1], in Lab space
// so dim entities keep their hue.
func Fade(c color.RGBA, alpha float32) color.RGBA {
	if alpha >= 1 {
		return c
	}
	if alpha < 0 {
		alpha = 0
	}
	src, _ := colorful.MakeColor(color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
	r, g, b := colorful.Color{}.BlendLab(src, float64(alpha)).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: uint8(float32(c.A) * alpha)}
}

func parseHex(s string) (color.RGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}
