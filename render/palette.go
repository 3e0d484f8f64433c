package render

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/ojrac/opensimplex-go"

	"github.com/TFMV/giantgraph/models"
)

// Palette provides color schemes for vertices and edges
type Palette struct {
	Name         string
	VertexColors []models.Color
	EdgeColors   []models.Color
	Background   string
}

// DefaultPalette returns a default color palette with vibrant colors
func DefaultPalette() *Palette {
	return &Palette{
		Name: "default",
		VertexColors: []models.Color{
			0x4285F4, // Blue
			0xEA4335, // Red
			0xFBBC05, // Yellow
			0x34A853, // Green
			0x673AB7, // Purple
			0x3F51B5, // Indigo
			0x00BCD4, // Cyan
			0x009688, // Teal
			0xFF5722, // Deep Orange
		},
		EdgeColors: []models.Color{
			0x666666,
			0x888888,
			0xAAAAAA,
		},
		Background: "#000000",
	}
}

// SurrealPalette returns a surrealist-inspired color palette
func SurrealPalette() *Palette {
	return &Palette{
		Name: "surreal",
		VertexColors: []models.Color{
			0xFF6D00, // Amber
			0x2979FF, // Blue
			0x00E676, // Green
			0xF50057, // Pink
			0x651FFF, // Deep Purple
			0xC6FF00, // Lime
			0xFF3D00, // Deep Orange
			0x00B0FF, // Light Blue
			0x76FF03, // Light Green
		},
		EdgeColors: []models.Color{
			0x9C27B0, // Purple
			0x00BFA5, // Teal
			0xF50057, // Pink
		},
		Background: "#212121",
	}
}

// GetPalette returns a palette by name
func GetPalette(name string) (*Palette, error) {
	switch strings.ToLower(name) {
	case "default", "":
		return DefaultPalette(), nil
	case "surreal":
		return SurrealPalette(), nil
	default:
		return nil, fmt.Errorf("unknown palette: %s", name)
	}
}

// White always returns white, the demo vertex color
func White() models.ColorFunc {
	return Fixed(0xFFFFFF)
}

// Fixed always returns c
func Fixed(c models.Color) models.ColorFunc {
	return func() models.Color {
		return c
	}
}

// RandomColor returns a uniformly random 24-bit color per call
func RandomColor(rnd *rand.Rand) models.ColorFunc {
	return func() models.Color {
		return models.Color(rnd.IntN(0x1000000))
	}
}

// PaletteColor picks uniformly from colors
func PaletteColor(rnd *rand.Rand, colors []models.Color) models.ColorFunc {
	if len(colors) == 0 {
		return White()
	}
	return func() models.Color {
		return colors[rnd.IntN(len(colors))]
	}
}

// NoiseColor walks a simplex noise field to produce slowly drifting hues
func NoiseColor(seed int64) models.ColorFunc {
	noise := opensimplex.New(seed)
	t := 0.0
	return func() models.Color {
		t += 0.05
		hue := (noise.Eval2(t, 0) + 1) / 2 * 360
		value := 0.75 + 0.25*(noise.Eval2(0, t)+1)/2
		return hsv(hue, 0.8, value)
	}
}

// hsv converts hue in degrees, saturation and value in [0,1] to a color
func hsv(h, s, v float64) models.Color {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	channel := func(f float64) models.Color {
		return models.Color(math.Round((f + m) * 255))
	}
	return channel(r)<<16 | channel(g)<<8 | channel(b)
}

// ParseColor parses a #rrggbb or #rgb color
func ParseColor(s string) (models.Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return 0, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return models.Color(v), nil
}

// ParseColorFunc builds a color function from a textual spec: a hex color,
// "white", "random", "noise", or "palette:<name>". Edge and vertex specs
// draw from the matching side of a palette.
func ParseColorFunc(spec string, forEdges bool, rnd *rand.Rand, seed int64) (models.ColorFunc, error) {
	spec = strings.ToLower(strings.TrimSpace(spec))
	switch {
	case spec == "white":
		return White(), nil
	case spec == "random":
		return RandomColor(rnd), nil
	case spec == "noise":
		return NoiseColor(seed), nil
	case strings.HasPrefix(spec, "palette:"):
		p, err := GetPalette(strings.TrimPrefix(spec, "palette:"))
		if err != nil {
			return nil, err
		}
		if forEdges {
			return PaletteColor(rnd, p.EdgeColors), nil
		}
		return PaletteColor(rnd, p.VertexColors), nil
	default:
		c, err := ParseColor(spec)
		if err != nil {
			return nil, err
		}
		return Fixed(c), nil
	}
}
