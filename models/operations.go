package models

import (
	"math"
)

// NewVertex creates an invisible vertex at rest on pos. Its destination starts
// on its own position, so the first frame samples a real one.
func NewVertex(pos Point, color Color, params VertexParams) Vertex {
	if params.BoostFrames < 0 {
		params.BoostFrames = 0
	}
	return Vertex{
		X:      pos.X,
		Y:      pos.Y,
		Color:  color,
		dest:   pos,
		speed:  1,
		params: params,
	}
}

// Position returns the current position
func (v *Vertex) Position() Point {
	return Point{X: v.X, Y: v.Y}
}

// Destination returns the point the vertex is drifting towards
func (v *Vertex) Destination() Point {
	return v.dest
}

// Direction returns the unit vector of travel (zero while undefined)
func (v *Vertex) Direction() Point {
	return v.direction
}

// Speed returns the current scalar speed
func (v *Vertex) Speed() float64 {
	return v.speed
}

// Opacity is 0 until the vertex is revealed and 1 afterwards
func (v *Vertex) Opacity() float64 {
	return v.opacity
}

// Revealed reports whether the vertex has been an edge endpoint
func (v *Vertex) Revealed() bool {
	return v.opacity > 0
}

// BoostRemaining returns how many boosted frames are left
func (v *Vertex) BoostRemaining() int {
	return v.boost
}

// Params returns the vertex constants
func (v *Vertex) Params() VertexParams {
	return v.params
}

// Retarget samples a new destination and derives the direction towards it
func (v *Vertex) Retarget(vp Viewport, s DestinationSampler) {
	v.dest = s.Sample(vp)
	v.direction = v.Position().DirectionTo(v.dest)
}

// MoveFrame advances the vertex by one frame
func (v *Vertex) MoveFrame(vp Viewport, s DestinationSampler) {
	if v.X <= 0 || v.X >= vp.Width || v.Y <= 0 || v.Y >= vp.Height || v.arrived() {
		v.Retarget(vp, s)
	}

	v.X += v.direction.X * v.speed
	v.Y += v.direction.Y * v.speed

	v.decay()
}

// arrived is true once either coordinate matches the destination or the
// destination is closer than one step.
func (v *Vertex) arrived() bool {
	if v.X == v.dest.X || v.Y == v.dest.Y {
		return true
	}
	return v.Position().DistanceTo(v.dest) < v.speed
}

// decay slows a boosted vertex linearly back to speed 1
func (v *Vertex) decay() {
	if v.boost == 0 {
		v.speed = 1
		return
	}

	v.boost--
	total := float64(v.params.BoostFrames)
	elapsed := total - float64(v.boost)
	v.speed = math.Max(1, v.params.MaxSpeed*(1-elapsed/total))
}

// Hover boosts the vertex to its max speed for the configured number of frames
func (v *Vertex) Hover() {
	v.speed = v.params.MaxSpeed
	v.boost = v.params.BoostFrames
}

// Reveal makes the vertex visible. It returns true only on the call that
// changed the opacity.
func (v *Vertex) Reveal() bool {
	if v.opacity > 0 {
		return false
	}
	v.opacity = 1
	return true
}

// hitReach is the half-width of the diamond hit region
func (v *Vertex) hitReach() float64 {
	return v.params.Radius + v.params.MouseSensitivity
}

// HitRegion returns the diamond around the current position, starting on the
// right corner and going clockwise in screen coordinates.
func (v *Vertex) HitRegion() [4]Point {
	r := v.hitReach()
	return [4]Point{
		{X: v.X + r, Y: v.Y},
		{X: v.X, Y: v.Y + r},
		{X: v.X - r, Y: v.Y},
		{X: v.X, Y: v.Y - r},
	}
}

// Contains reports whether p falls inside the hit region
func (v *Vertex) Contains(p Point) bool {
	return math.Abs(p.X-v.X)+math.Abs(p.Y-v.Y) <= v.hitReach()
}

// NewEdge creates an edge between two vertex indices
func NewEdge(src, dest int, color Color) Edge {
	return Edge{
		Src:   src,
		Dest:  dest,
		Color: color,
	}
}

// MoveFrame recomputes the edge opacity from the live endpoint positions.
// Edges longer than threshold are invisible.
func (e *Edge) MoveFrame(vertices []Vertex, threshold float64) {
	src := vertices[e.Src].Position()
	dest := vertices[e.Dest].Position()
	e.length = src.DistanceTo(dest)

	if e.length > threshold {
		e.opacity = 0
		e.visible = false
		return
	}

	e.opacity = clamp01((threshold - e.length) / threshold)
	e.visible = true
}

// Opacity returns the opacity computed on the last frame
func (e *Edge) Opacity() float64 {
	return e.opacity
}

// Visible reports whether the edge was within threshold on the last frame
func (e *Edge) Visible() bool {
	return e.visible
}

// Length returns the endpoint distance measured on the last frame
func (e *Edge) Length() float64 {
	return e.length
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
