package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"time"

	"github.com/TFMV/giantgraph/models"
)

// ErrNoFrame is returned when nothing has been painted yet
var ErrNoFrame = errors.New("no frame painted")

// OutputOptions defines rendering configuration options
type OutputOptions struct {
	Format     string  // Output format (svg, ascii, json, dot, png, html)
	Width      float64 // Width of the output; the frame viewport when zero
	Height     float64 // Height of the output; the frame viewport when zero
	Background string  // Background color
	Timestamp  bool    // Include timestamp in the output
	ShowStats  bool    // Include frame number and edge counts
	Columns    int     // ASCII grid width; derived from Width when zero
	Rows       int     // ASCII grid height; derived from Height when zero
	Quality    string  // Rendering quality (low, medium, high)
	FrameURL   string  // Frame endpoint polled by the HTML page
	HoverURL   string  // Hover endpoint the HTML page posts pointer positions to
	ControlURL string  // Prefix of the lifecycle endpoints used by the HTML page
}

// Renderer interface defines methods that all rendering backends must implement
type Renderer interface {
	// Render creates a visualization of the frame using the provided options
	Render(frame *models.Frame, options *OutputOptions) ([]byte, error)

	// Name returns the name of the renderer
	Name() string

	// Description returns a description of the renderer
	Description() string
}

// NewDefaultOptions creates a default set of output options
func NewDefaultOptions(format string) *OutputOptions {
	return &OutputOptions{
		Format:     format,
		Background: "#000000",
		Timestamp:  false,
		ShowStats:  false,
		Quality:    "medium",
		FrameURL:   "/api/frame",
		HoverURL:   "/api/hover",
		ControlURL: "/api",
	}
}

// GetRenderer returns the appropriate renderer based on format
func GetRenderer(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "svg":
		return &SVGRenderer{}, nil
	case "ascii", "txt":
		return &ASCIIRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "dot":
		return &DOTRenderer{}, nil
	case "png":
		return &PNGRenderer{}, nil
	case "html":
		return &HTMLRenderer{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// ContentType returns the MIME type for a format
func ContentType(format string) string {
	switch strings.ToLower(format) {
	case "svg":
		return "image/svg+xml"
	case "json":
		return "application/json"
	case "png":
		return "image/png"
	case "html":
		return "text/html; charset=utf-8"
	case "dot":
		return "text/vnd.graphviz"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Generate renders a frame in the given format with default options
func Generate(frame *models.Frame, format string) ([]byte, error) {
	return GenerateWithOptions(frame, NewDefaultOptions(format))
}

// GenerateWithOptions renders a frame with specific output options
func GenerateWithOptions(frame *models.Frame, options *OutputOptions) ([]byte, error) {
	if frame == nil {
		return nil, ErrNoFrame
	}
	renderer, err := GetRenderer(options.Format)
	if err != nil {
		return nil, err
	}
	output, err := renderer.Render(frame, options)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", renderer.Name(), err)
	}
	return output, nil
}

// size returns the output size, defaulting to the frame viewport
func size(frame *models.Frame, options *OutputOptions) (float64, float64) {
	w, h := options.Width, options.Height
	if w <= 0 {
		w = frame.Viewport.Width
	}
	if h <= 0 {
		h = frame.Viewport.Height
	}
	return w, h
}

// SVGRenderer outputs SVG format
type SVGRenderer struct{}

// Name returns the name of the renderer
func (r *SVGRenderer) Name() string {
	return "SVG Renderer"
}

// Description returns a description of the renderer
func (r *SVGRenderer) Description() string {
	return "Renders frames as Scalable Vector Graphics (SVG)"
}

// Render creates an SVG representation of the frame
func (r *SVGRenderer) Render(frame *models.Frame, options *OutputOptions) ([]byte, error) {
	var buf bytes.Buffer
	width, height := size(frame, options)

	buf.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<svg width="%g" height="%g" viewBox="0 0 %g %g" xmlns="http://www.w3.org/2000/svg">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, frame.Viewport.Width, frame.Viewport.Height, options.Background))

	// Edges first so vertices are drawn on top
	for _, e := range frame.VisibleEdges() {
		buf.WriteString(fmt.Sprintf(`<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%g" stroke-opacity="%.3f"/>
`, e.X1, e.Y1, e.X2, e.Y2, e.Color, e.Width, e.Opacity))
	}

	for _, v := range frame.RevealedVertices() {
		buf.WriteString(fmt.Sprintf(`<circle cx="%.2f" cy="%.2f" r="%g" fill="%s" fill-opacity="%.3f"/>
`, v.X, v.Y, v.Radius, v.Color, v.Opacity))
	}

	if options.ShowStats {
		buf.WriteString(fmt.Sprintf(`<text x="5" y="15" font-family="sans-serif" font-size="10" fill="#808080">Frame: %d | Edges: %d/%d</text>
`, frame.Number, frame.EdgeCount, frame.MaxEdges))
	}

	if options.Timestamp {
		timeStr := time.Now().Format("2006-01-02 15:04:05")
		buf.WriteString(fmt.Sprintf(`<text x="5" y="%g" font-family="sans-serif" font-size="8" fill="#808080">%s</text>
`, frame.Viewport.Height-5, timeStr))
	}

	buf.WriteString(`</svg>`)
	return buf.Bytes(), nil
}

// ASCIIRenderer outputs ASCII art format
type ASCIIRenderer struct{}

// Name returns the name of the renderer
func (r *ASCIIRenderer) Name() string {
	return "ASCII Renderer"
}

// Description returns a description of the renderer
func (r *ASCIIRenderer) Description() string {
	return "Renders frames as ASCII art for terminal or text-based output"
}

const (
	vertexGlyph = 'o'
	// edgeGlyphs are ordered from faint to bright
	edgeGlyphs = ".:*"
)

// Render creates an ASCII representation of the frame
func (r *ASCIIRenderer) Render(frame *models.Frame, options *OutputOptions) ([]byte, error) {
	w, h := size(frame, options)

	width := options.Columns
	if width <= 0 {
		width = max(int(w/10), 40)
	}
	height := options.Rows
	if height <= 0 {
		height = max(int(h/20), 20)
	}
	if width < 3 || height < 3 {
		return nil, fmt.Errorf("ascii grid %dx%d is too small", width, height)
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = ' '
		}
	}

	// Draw a border around the viewport
	for i := 0; i < width; i++ {
		grid[0][i] = '-'
		grid[height-1][i] = '-'
	}
	for i := 0; i < height; i++ {
		grid[i][0] = '|'
		grid[i][width-1] = '|'
	}
	grid[0][0] = '+'
	grid[0][width-1] = '+'
	grid[height-1][0] = '+'
	grid[height-1][width-1] = '+'

	toCell := func(x, y float64) (int, int) {
		cx := int(x*float64(width-2)/frame.Viewport.Width) + 1
		cy := int(y*float64(height-2)/frame.Viewport.Height) + 1
		return clamp(cx, 1, width-2), clamp(cy, 1, height-2)
	}

	for _, e := range frame.VisibleEdges() {
		x1, y1 := toCell(e.X1, e.Y1)
		x2, y2 := toCell(e.X2, e.Y2)
		drawLine(grid, x1, y1, x2, y2, edgeGlyph(e.Opacity))
	}

	for _, v := range frame.RevealedVertices() {
		x, y := toCell(v.X, v.Y)
		grid[y][x] = vertexGlyph
	}

	if options.ShowStats {
		writeRow(grid, 1, fmt.Sprintf("frame %d  edges %d/%d  %s", frame.Number, frame.EdgeCount, frame.MaxEdges, frame.State))
	}

	if options.Timestamp && height > 4 {
		writeRow(grid, height-2, time.Now().Format("2006-01-02 15:04"))
	}

	var result strings.Builder
	for _, row := range grid {
		result.WriteString(string(row))
		result.WriteRune('\n')
	}

	return []byte(result.String()), nil
}

// edgeGlyph picks a brighter glyph for more opaque edges
func edgeGlyph(opacity float64) rune {
	glyphs := []rune(edgeGlyphs)
	i := int(opacity * float64(len(glyphs)))
	return glyphs[clamp(i, 0, len(glyphs)-1)]
}

// writeRow writes text inside the border on row y if it fits
func writeRow(grid [][]rune, y int, text string) {
	width := len(grid[y])
	if len(text) >= width-4 {
		return
	}
	for i, c := range []rune(text) {
		grid[y][i+2] = c
	}
}

// JSONRenderer outputs raw JSON format
type JSONRenderer struct{}

// Name returns the name of the renderer
func (r *JSONRenderer) Name() string {
	return "JSON Renderer"
}

// Description returns a description of the renderer
func (r *JSONRenderer) Description() string {
	return "Renders frames as JSON for the browser page and other clients"
}

// Render creates a JSON representation of the frame
func (r *JSONRenderer) Render(frame *models.Frame, options *OutputOptions) ([]byte, error) {
	if options.Quality == "high" {
		return json.MarshalIndent(frame, "", "  ")
	}
	return json.Marshal(frame)
}

// DOTRenderer outputs Graphviz DOT format
type DOTRenderer struct{}

// Name returns the name of the renderer
func (r *DOTRenderer) Name() string {
	return "DOT Renderer"
}

// Description returns a description of the renderer
func (r *DOTRenderer) Description() string {
	return "Renders the grown graph in Graphviz DOT format with pinned positions"
}

// Render creates a DOT representation of the frame
func (r *DOTRenderer) Render(frame *models.Frame, options *OutputOptions) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("graph G {\n")
	buf.WriteString(fmt.Sprintf("  graph [bgcolor=\"%s\", size=\"%g,%g\"];\n",
		options.Background, frame.Viewport.Width/72.0, frame.Viewport.Height/72.0))
	buf.WriteString("  node [shape=point];\n")

	for _, v := range frame.Vertices {
		style := "solid"
		if v.Opacity == 0 {
			style = "invis"
		}
		// DOT's y axis points up
		buf.WriteString(fmt.Sprintf("  v%d [color=\"%s\", width=%g, style=%s, pos=\"%g,%g!\"];\n",
			v.Index, v.Color, 2*v.Radius/72.0, style, v.X/72.0, (frame.Viewport.Height-v.Y)/72.0))
	}

	for _, e := range frame.Edges {
		style := "solid"
		if !e.Visible {
			style = "invis"
		}
		buf.WriteString(fmt.Sprintf("  v%d -- v%d [color=\"%s%02x\", penwidth=%g, style=%s];\n",
			e.Src, e.Dest, e.Color, uint8(math.Round(e.Opacity*255)), e.Width, style))
	}

	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// PNGRenderer rasterizes frames
type PNGRenderer struct{}

// Name returns the name of the renderer
func (r *PNGRenderer) Name() string {
	return "PNG Renderer"
}

// Description returns a description of the renderer
func (r *PNGRenderer) Description() string {
	return "Renders frames as PNG images"
}

// Render creates a PNG image of the frame
func (r *PNGRenderer) Render(frame *models.Frame, options *OutputOptions) ([]byte, error) {
	width := int(math.Ceil(frame.Viewport.Width))
	height := int(math.Ceil(frame.Viewport.Height))
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("cannot rasterize a %dx%d viewport", width, height)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	br, bg, bb := parseHexColor(options.Background)
	fill := color.RGBA{R: br, G: bg, B: bb, A: 255}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, fill)
		}
	}

	for _, e := range frame.VisibleEdges() {
		r, g, b := parseHexColor(e.Color)
		brush := max(int(math.Round(e.Width)), 1)
		plotLine(int(e.X1), int(e.Y1), int(e.X2), int(e.Y2), func(x, y int) {
			for dy := 0; dy < brush; dy++ {
				for dx := 0; dx < brush; dx++ {
					blend(img, x+dx-brush/2, y+dy-brush/2, r, g, b, e.Opacity)
				}
			}
		})
	}

	for _, v := range frame.RevealedVertices() {
		r, g, b := parseHexColor(v.Color)
		rad := math.Max(v.Radius, 0.5)
		for y := int(v.Y - rad); y <= int(v.Y+rad); y++ {
			for x := int(v.X - rad); x <= int(v.X+rad); x++ {
				if math.Hypot(float64(x)-v.X, float64(y)-v.Y) <= rad {
					blend(img, x, y, r, g, b, v.Opacity)
				}
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// blend draws a color over a pixel with the given opacity
func blend(img *image.RGBA, x, y int, r, g, b uint8, alpha float64) {
	if !(image.Point{X: x, Y: y}.In(img.Rect)) {
		return
	}
	dst := img.RGBAAt(x, y)
	mix := func(src, dst uint8) uint8 {
		return uint8(math.Round(float64(src)*alpha + float64(dst)*(1-alpha)))
	}
	img.SetRGBA(x, y, color.RGBA{R: mix(r, dst.R), G: mix(g, dst.G), B: mix(b, dst.B), A: 255})
}

// Helper functions

// Parse a hex color string into RGB components
func parseHexColor(hex string) (uint8, uint8, uint8) {
	hex = strings.TrimPrefix(hex, "#")

	if len(hex) == 3 {
		// Convert 3-digit hex to 6-digit
		r := parseHexDigit(hex[0])
		g := parseHexDigit(hex[1])
		b := parseHexDigit(hex[2])
		return r * 17, g * 17, b * 17
	} else if len(hex) >= 6 {
		r := parseHexByte(hex[0:2])
		g := parseHexByte(hex[2:4])
		b := parseHexByte(hex[4:6])
		return r, g, b
	}

	// Default to black if invalid
	return 0, 0, 0
}

func parseHexDigit(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}

func parseHexByte(s string) uint8 {
	var result uint8
	for i := 0; i < len(s); i++ {
		result = result*16 + parseHexDigit(s[i])
	}
	return result
}

// Clamp a value between lo and hi
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// plotLine visits every cell of a line using Bresenham's algorithm
func plotLine(x1, y1, x2, y2 int, plot func(x, y int)) {
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx := 1
	if x1 >= x2 {
		sx = -1
	}
	sy := 1
	if y1 >= y2 {
		sy = -1
	}
	err := dx + dy

	for {
		plot(x1, y1)

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 >= dy {
			if x1 == x2 {
				break
			}
			err += dy
			x1 += sx
		}
		if e2 <= dx {
			if y1 == y2 {
				break
			}
			err += dx
			y1 += sy
		}
	}
}

// drawLine draws a line on the ASCII grid, keeping brighter glyphs already there
func drawLine(grid [][]rune, x1, y1, x2, y2 int, glyph rune) {
	plotLine(x1, y1, x2, y2, func(x, y int) {
		if y < 0 || y >= len(grid) || x < 0 || x >= len(grid[y]) {
			return
		}
		if strings.IndexRune(edgeGlyphs, grid[y][x]) < strings.IndexRune(edgeGlyphs, glyph) {
			grid[y][x] = glyph
		}
	})
}

// Absolute value of an integer
func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
