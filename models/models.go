// Package models provides the data structures shared by the giantgraph packages.
// It defines vertices, edges, the viewport they live in and the frame snapshots
// handed to rendering backends.
package models

import (
	"fmt"
	"math"
)

// DefaultBoostFrames is the number of frames a hover boost lasts
const DefaultBoostFrames = 50

// Point is a position or a vector in viewport coordinates
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistanceTo returns the Euclidean distance between two points
func (p Point) DistanceTo(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// DirectionTo returns the unit vector pointing from p to q.
// Coincident points have no direction and yield the zero vector.
func (p Point) DirectionTo(q Point) Point {
	d := p.DistanceTo(q)
	if d == 0 {
		return Point{}
	}
	return Point{X: (q.X - p.X) / d, Y: (q.Y - p.Y) / d}
}

// Viewport is the rectangle all positions are bounded by
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether p lies strictly inside the viewport
func (vp Viewport) Contains(p Point) bool {
	return p.X > 0 && p.X < vp.Width && p.Y > 0 && p.Y < vp.Height
}

// Color is a 24-bit RGB color
type Color uint32

// ColorFunc produces a color; it is invoked once per vertex or edge at creation
type ColorFunc func() Color

// RGB splits the color into its channels
func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Hex returns the color in #rrggbb form
func (c Color) Hex() string {
	return fmt.Sprintf("#%06x", uint32(c)&0xFFFFFF)
}

// DestinationSampler picks the next drift destination for a vertex
type DestinationSampler interface {
	Sample(vp Viewport) Point
}

// VertexParams are the per-vertex constants fixed at construction
type VertexParams struct {
	Radius           float64
	MouseSensitivity float64
	MaxSpeed         float64
	BoostFrames      int
}

// Vertex is a drifting point of the animation. Its identity is its index in the
// controller's vertex list.
type Vertex struct {
	X, Y float64

	Color Color

	dest      Point
	direction Point
	speed     float64
	opacity   float64
	boost     int // remaining boosted frames

	params VertexParams
}

// Edge links two vertex indices. The pair is unordered for existence checks
// but kept in creation order.
type Edge struct {
	Src   int
	Dest  int
	Color Color

	opacity float64
	length  float64
	visible bool
}

// VertexView is the render-facing projection of a vertex
type VertexView struct {
	Index   int     `json:"index"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Radius  float64 `json:"radius"`
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
}

// EdgeView is the render-facing projection of an edge
type EdgeView struct {
	Src     int     `json:"src"`
	Dest    int     `json:"dest"`
	X1      float64 `json:"x1"`
	Y1      float64 `json:"y1"`
	X2      float64 `json:"x2"`
	Y2      float64 `json:"y2"`
	Color   string  `json:"color"`
	Width   float64 `json:"width"`
	Opacity float64 `json:"opacity"`
	Visible bool    `json:"visible"`
}

// Frame is an immutable snapshot of one repaint
type Frame struct {
	ID        string       `json:"id"`
	Number    uint64       `json:"number"`
	State     string       `json:"state"`
	Viewport  Viewport     `json:"viewport"`
	Vertices  []VertexView `json:"vertices"`
	Edges     []EdgeView   `json:"edges"`
	EdgeCount int          `json:"edge_count"`
	MaxEdges  int          `json:"max_edges"`
	Revealed  int          `json:"revealed"`
}
