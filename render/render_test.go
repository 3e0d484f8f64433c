package render

import (
	"bytes"
	"encoding/json"
	"image/png"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/giantgraph/models"
)

func testFrame() *models.Frame {
	return &models.Frame{
		ID:       "test",
		Number:   7,
		State:    "running",
		Viewport: models.Viewport{Width: 200, Height: 100},
		Vertices: []models.VertexView{
			{Index: 0, X: 20, Y: 20, Radius: 2, Color: "#ffffff", Opacity: 1},
			{Index: 1, X: 180, Y: 80, Radius: 2, Color: "#ffffff", Opacity: 1},
			{Index: 2, X: 100, Y: 90, Radius: 2, Color: "#ffffff", Opacity: 0},
		},
		Edges: []models.EdgeView{
			{Src: 0, Dest: 1, X1: 20, Y1: 20, X2: 180, Y2: 80, Color: "#ff0000", Width: 1, Opacity: 0.5, Visible: true},
			{Src: 1, Dest: 2, X1: 180, Y1: 80, X2: 100, Y2: 90, Color: "#00ff00", Width: 1, Opacity: 0, Visible: false},
		},
		EdgeCount: 2,
		MaxEdges:  3,
		Revealed:  2,
	}
}

func TestGetRenderer(t *testing.T) {
	for _, format := range []string{"svg", "ascii", "txt", "json", "dot", "png", "html", "SVG"} {
		r, err := GetRenderer(format)
		require.NoError(t, err, format)
		assert.NotEmpty(t, r.Name())
		assert.NotEmpty(t, r.Description())
	}

	_, err := GetRenderer("gif")
	assert.Error(t, err)
}

func TestGenerateWithoutFrame(t *testing.T) {
	_, err := Generate(nil, "svg")
	assert.ErrorIs(t, err, ErrNoFrame)
}

func TestSVGRendererSkipsHiddenElements(t *testing.T) {
	out, err := Generate(testFrame(), "svg")
	require.NoError(t, err)

	svg := string(out)
	assert.True(t, strings.HasPrefix(svg, "<?xml"))
	assert.Equal(t, 2, strings.Count(svg, "<circle"))
	assert.Equal(t, 1, strings.Count(svg, "<line"))
	assert.Contains(t, svg, `stroke-opacity="0.500"`)
	assert.Contains(t, svg, `stroke="#ff0000"`)
	assert.NotContains(t, svg, "#00ff00")
}

func TestSVGRendererStats(t *testing.T) {
	options := NewDefaultOptions("svg")
	options.ShowStats = true

	out, err := GenerateWithOptions(testFrame(), options)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Frame: 7 | Edges: 2/3")
}

func TestASCIIRendererGrid(t *testing.T) {
	options := NewDefaultOptions("ascii")
	options.Columns = 42
	options.Rows = 12

	out, err := GenerateWithOptions(testFrame(), options)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	require.Len(t, lines, 12)
	for _, line := range lines {
		assert.Len(t, []rune(line), 42)
	}
	assert.Equal(t, '+', []rune(lines[0])[0])
	assert.Equal(t, 2, strings.Count(string(out), "o"))
	assert.Contains(t, string(out), ":")
}

func TestASCIIRendererTooSmall(t *testing.T) {
	options := NewDefaultOptions("ascii")
	options.Columns = 2
	options.Rows = 2

	_, err := GenerateWithOptions(testFrame(), options)
	assert.Error(t, err)
}

func TestEdgeGlyph(t *testing.T) {
	assert.Equal(t, '.', edgeGlyph(0))
	assert.Equal(t, ':', edgeGlyph(0.5))
	assert.Equal(t, '*', edgeGlyph(1))
}

func TestJSONRendererRoundTrip(t *testing.T) {
	out, err := Generate(testFrame(), "json")
	require.NoError(t, err)

	var frame models.Frame
	require.NoError(t, json.Unmarshal(out, &frame))
	assert.Equal(t, uint64(7), frame.Number)
	assert.Len(t, frame.Edges, 2)
	assert.Equal(t, 3, frame.MaxEdges)
}

func TestDOTRendererHidesInvisible(t *testing.T) {
	out, err := Generate(testFrame(), "dot")
	require.NoError(t, err)

	dot := string(out)
	assert.True(t, strings.HasPrefix(dot, "graph G {"))
	assert.Contains(t, dot, `v0 -- v1 [color="#ff000080"`)
	assert.Contains(t, dot, `v1 -- v2 [color="#00ff0000", penwidth=1, style=invis]`)
	assert.Contains(t, dot, `v2 [color="#ffffff"`)
}

func TestPNGRendererRasterizes(t *testing.T) {
	out, err := Generate(testFrame(), "png")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())

	// vertex 0 is white on black
	r, g, b, _ := img.At(20, 20).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), g)
	assert.Equal(t, uint32(0xffff), b)

	// the hidden vertex leaves the background untouched
	r, _, _, _ = img.At(100, 90).RGBA()
	assert.Zero(t, r)
}

func TestHTMLRendererPage(t *testing.T) {
	options := NewDefaultOptions("html")
	options.FrameURL = "/custom/frame"

	out, err := GenerateWithOptions(testFrame(), options)
	require.NoError(t, err)

	page := string(out)
	assert.Contains(t, page, `<canvas id="view" width="200" height="100">`)
	assert.Contains(t, page, `fetch("/custom/frame")`)
	assert.Contains(t, page, `"/api/hover"`)
	assert.NotContains(t, page, "%!")
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/svg+xml", ContentType("svg"))
	assert.Equal(t, "image/png", ContentType("png"))
	assert.Equal(t, "text/plain; charset=utf-8", ContentType("ascii"))
}

func TestParseHexColor(t *testing.T) {
	r, g, b := parseHexColor("#ff8000")
	assert.Equal(t, []uint8{0xff, 0x80, 0x00}, []uint8{r, g, b})

	r, g, b = parseHexColor("#fff")
	assert.Equal(t, []uint8{0xff, 0xff, 0xff}, []uint8{r, g, b})

	r, g, b = parseHexColor("bogus")
	assert.Equal(t, []uint8{0, 0, 0}, []uint8{r, g, b})
}

func TestBufferKeepsLatest(t *testing.T) {
	buf := NewBuffer()
	assert.Nil(t, buf.Latest())
	_, err := buf.Render(NewDefaultOptions("svg"))
	assert.ErrorIs(t, err, ErrNoFrame)

	first, second := testFrame(), testFrame()
	second.Number = 8
	require.NoError(t, buf.Paint(first))
	require.NoError(t, buf.Paint(second))

	assert.Same(t, second, buf.Latest())
	assert.Equal(t, uint64(2), buf.Painted())

	out, err := buf.Render(NewDefaultOptions("json"))
	require.NoError(t, err)
	assert.Contains(t, string(out), `"number":8`)
}

func TestParseColorFunc(t *testing.T) {
	rnd := rand.New(rand.NewPCG(1, 2))

	tests := []struct {
		spec    string
		want    models.Color
		fixed   bool
		wantErr bool
	}{
		{spec: "white", want: 0xFFFFFF, fixed: true},
		{spec: "#123456", want: 0x123456, fixed: true},
		{spec: "#abc", want: 0xAABBCC, fixed: true},
		{spec: "random"},
		{spec: "noise"},
		{spec: "palette:surreal"},
		{spec: "palette:none", wantErr: true},
		{spec: "#12345", wantErr: true},
		{spec: "chartreuse", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			fn, err := ParseColorFunc(tt.spec, false, rnd, 1)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			c := fn()
			assert.LessOrEqual(t, c, models.Color(0xFFFFFF))
			if tt.fixed {
				assert.Equal(t, tt.want, c)
			}
		})
	}
}

func TestPaletteColorDrawsFromPalette(t *testing.T) {
	rnd := rand.New(rand.NewPCG(3, 4))
	p := SurrealPalette()

	fn := PaletteColor(rnd, p.EdgeColors)
	for range 50 {
		assert.Contains(t, p.EdgeColors, fn())
	}

	assert.Equal(t, models.Color(0xFFFFFF), PaletteColor(rnd, nil)())
}

func TestNoiseColorIsDeterministic(t *testing.T) {
	a, b := NoiseColor(42), NoiseColor(42)
	for range 10 {
		assert.Equal(t, a(), b())
	}
}

func TestHSV(t *testing.T) {
	assert.Equal(t, models.Color(0xFF0000), hsv(0, 1, 1))
	assert.Equal(t, models.Color(0x00FF00), hsv(120, 1, 1))
	assert.Equal(t, models.Color(0x0000FF), hsv(240, 1, 1))
	assert.Equal(t, models.Color(0xFFFFFF), hsv(0, 0, 1))
}
