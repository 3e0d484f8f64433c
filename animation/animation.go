// Package animation drives the growing graph: it owns the vertices, edges and
// adjacency, grows the graph one edge per frame, moves everything and paints a
// frame on the surface. Frames are driven by a Scheduler; each tick requests
// the next one until the animation is ended.
package animation

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TFMV/giantgraph/graph"
	"github.com/TFMV/giantgraph/models"
	"github.com/TFMV/giantgraph/physics"
)

// ErrInvalidOptions is returned by New when the options violate a precondition
var ErrInvalidOptions = errors.New("invalid animation options")

var validate = validator.New()

// State is the lifecycle state of a controller
type State int

const (
	Stopped State = iota
	Running
	Paused
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

// Surface is where frames are painted
type Surface interface {
	Paint(frame *models.Frame) error
}

// Options configures a controller. Surface is the attachment point frames are
// painted on and Scheduler the per-frame primitive driving the ticks.
type Options struct {
	Surface   Surface   `validate:"required"`
	Scheduler Scheduler `validate:"required"`

	Width  int `validate:"gt=0"`
	Height int `validate:"gt=0"`

	VertexRadius           float64          `validate:"gt=0"`
	VertexCount            int              `validate:"gt=0"`
	VertexColor            models.ColorFunc `validate:"required"`
	VertexMaxSpeed         float64          `validate:"gt=0"`
	VertexMouseSensitivity float64          `validate:"gte=0"`

	EdgeWidth     float64          `validate:"gt=0"`
	EdgeThreshold float64          `validate:"gt=0"`
	EdgeColor     models.ColorFunc `validate:"required"`

	// Sampler picks drift destinations; uniform when nil
	Sampler models.DestinationSampler `validate:"-"`
	// Seed for placement and growth; 0 seeds from the clock
	Seed int64
	// BoostFrames is the hover boost length; 0 means models.DefaultBoostFrames
	BoostFrames int `validate:"gte=0"`

	Logger   *zap.Logger `validate:"-"`
	Observer Observer    `validate:"-"`
}

// Stats is a point-in-time summary of a controller
type Stats struct {
	ID        string `json:"id"`
	State     string `json:"state"`
	Frame     uint64 `json:"frame"`
	Vertices  int    `json:"vertices"`
	EdgeCount int    `json:"edge_count"`
	MaxEdges  int    `json:"max_edges"`
	Revealed  int    `json:"revealed"`
}

// Controller runs one animation
type Controller struct {
	// paintMu keeps each snapshot, its paint and its observer events in
	// order across goroutines. It is taken before mu.
	paintMu sync.Mutex
	mu      sync.Mutex

	id       string
	opts     Options
	viewport models.Viewport
	params   models.VertexParams
	rnd      *rand.Rand
	sampler  models.DestinationSampler
	grower   *graph.Grower
	logger   *zap.Logger
	observer Observer

	stopped    bool
	paused     bool
	generation uint64
	frame      uint64

	vertices []models.Vertex
	edges    []models.Edge
	adj      *graph.Adjacency
	revealed int

	last *models.Frame
}

// New validates opts and creates a stopped controller
func New(opts Options) (*Controller, error) {
	if err := validate.Struct(opts); err != nil {
		return nil, formatValidationError(err)
	}

	if opts.BoostFrames == 0 {
		opts.BoostFrames = models.DefaultBoostFrames
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	observer := opts.Observer
	if observer == nil {
		observer = nopObserver{}
	}

	rnd := physics.NewRand(opts.Seed)
	sampler := opts.Sampler
	if sampler == nil {
		sampler = physics.NewUniformSampler(rnd)
	}

	c := &Controller{
		id:   uuid.New().String(),
		opts: opts,
		viewport: models.Viewport{
			Width:  float64(opts.Width),
			Height: float64(opts.Height),
		},
		params: models.VertexParams{
			Radius:           opts.VertexRadius,
			MouseSensitivity: opts.VertexMouseSensitivity,
			MaxSpeed:         opts.VertexMaxSpeed,
			BoostFrames:      opts.BoostFrames,
		},
		rnd:      rnd,
		sampler:  sampler,
		grower:   graph.NewGrower(rnd),
		observer: observer,
		stopped:  true,
	}
	c.logger = logger.With(zap.String("animation", c.id))
	c.last = c.snapshotLocked()
	return c, nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s: is required", fe.Field()))
		case "gt":
			msgs = append(msgs, fmt.Sprintf("%s: must be greater than %s", fe.Field(), fe.Param()))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s: must be at least %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s: failed %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidOptions, strings.Join(msgs, "; "))
}

// ID returns the unique id of this animation
func (c *Controller) ID() string {
	return c.id
}

// Viewport returns the bounds vertices move in
func (c *Controller) Viewport() models.Viewport {
	return c.viewport
}

// State returns the lifecycle state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	switch {
	case c.stopped:
		return Stopped
	case c.paused:
		return Paused
	default:
		return Running
	}
}

// Start allocates the vertices and begins ticking. It does nothing unless the
// controller is stopped.
func (c *Controller) Start() {
	c.paintMu.Lock()
	c.mu.Lock()
	if !c.stopped {
		c.mu.Unlock()
		c.paintMu.Unlock()
		return
	}
	c.stopped = false
	c.paused = false
	c.generation++
	gen := c.generation
	c.placeVertices()
	maxEdges := c.adj.MaxEdges()
	c.mu.Unlock()

	c.logger.Info("animation started",
		zap.Int("vertices", c.opts.VertexCount),
		zap.Int("max_edges", maxEdges))
	c.observer.StateChanged(Running)
	c.paintMu.Unlock()

	c.tick(gen)
}

// Pause freezes growth and motion; the tick loop keeps running
func (c *Controller) Pause() {
	c.setPaused(true)
}

// Unpause resumes growth and motion
func (c *Controller) Unpause() {
	c.setPaused(false)
}

func (c *Controller) setPaused(paused bool) {
	c.paintMu.Lock()
	defer c.paintMu.Unlock()

	c.mu.Lock()
	if c.stopped || c.paused == paused {
		c.mu.Unlock()
		return
	}
	c.paused = paused
	state := c.stateLocked()
	frame := c.snapshotLocked()
	c.last = frame
	c.mu.Unlock()

	c.paint(frame)
	c.logger.Debug("animation state changed", zap.Stringer("state", state))
	c.observer.StateChanged(state)
}

// End stops the animation and releases all vertices and edges. The pending
// tick sees the stop and does not reschedule.
func (c *Controller) End() {
	c.paintMu.Lock()
	defer c.paintMu.Unlock()

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	c.paused = false
	c.vertices = nil
	c.edges = nil
	c.adj = nil
	c.revealed = 0
	frame := c.snapshotLocked()
	c.last = frame
	c.mu.Unlock()

	c.paint(frame)
	c.logger.Info("animation ended", zap.Uint64("frames", frame.Number))
	c.observer.StateChanged(Stopped)
}

func (c *Controller) placeVertices() {
	n := c.opts.VertexCount
	c.vertices = make([]models.Vertex, n)
	for i := range c.vertices {
		pos := physics.RandomPosition(c.rnd, c.viewport)
		v := models.NewVertex(pos, c.opts.VertexColor(), c.params)
		v.Retarget(c.viewport, c.sampler)
		c.vertices[i] = v
	}
	c.adj = graph.NewAdjacency(n)
	c.edges = make([]models.Edge, 0, min(c.adj.MaxEdges(), 4096))
	c.revealed = 0
	c.frame = 0
}

// tick is one frame of the loop started by the generation gen
func (c *Controller) tick(gen uint64) {
	start := time.Now()

	c.paintMu.Lock()
	c.mu.Lock()
	if c.stopped || gen != c.generation {
		c.mu.Unlock()
		c.paintMu.Unlock()
		return
	}
	if c.paused {
		c.mu.Unlock()
		c.observer.TickObserved(TickStats{Paused: true})
		c.paintMu.Unlock()
		c.schedule(gen)
		return
	}

	stats := c.step()
	frame := c.snapshotLocked()
	c.last = frame
	c.mu.Unlock()

	c.paint(frame)

	stats.Duration = time.Since(start)
	c.observer.TickObserved(stats)
	c.paintMu.Unlock()

	c.schedule(gen)
}

func (c *Controller) schedule(gen uint64) {
	c.mu.Lock()
	current := !c.stopped && gen == c.generation
	c.mu.Unlock()
	if !current {
		return
	}
	c.opts.Scheduler.RequestFrame(func() {
		c.tick(gen)
	})
}

func (c *Controller) paint(frame *models.Frame) {
	if err := c.opts.Surface.Paint(frame); err != nil {
		c.logger.Warn("paint failed", zap.Uint64("frame", frame.Number), zap.Error(err))
	}
}

// step grows the graph by at most one edge and moves everything
func (c *Controller) step() TickStats {
	var stats TickStats

	if !c.adj.Complete() {
		p, err := c.grower.Grow(c.adj)
		if err != nil {
			c.logger.Error("edge growth failed", zap.Error(err))
		} else {
			c.edges = append(c.edges, models.NewEdge(p.Src, p.Dst, c.opts.EdgeColor()))
			if c.vertices[p.Src].Reveal() {
				c.revealed++
			}
			if c.vertices[p.Dst].Reveal() {
				c.revealed++
			}
			stats.EdgeAdded = true
			stats.Attempts = p.Attempts
			stats.Fallback = p.Fallback

			if c.adj.Complete() {
				c.logger.Info("graph complete", zap.Int("edges", c.adj.EdgeCount()), zap.Uint64("frame", c.frame+1))
			}
		}
	}

	for i := range c.vertices {
		c.vertices[i].MoveFrame(c.viewport, c.sampler)
	}
	for i := range c.edges {
		c.edges[i].MoveFrame(c.vertices, c.opts.EdgeThreshold)
	}

	c.frame++
	stats.Frame = c.frame
	stats.EdgeCount = c.adj.EdgeCount()
	stats.MaxEdges = c.adj.MaxEdges()
	stats.Revealed = c.revealed
	return stats
}

func (c *Controller) snapshotLocked() *models.Frame {
	f := &models.Frame{
		ID:       c.id,
		Number:   c.frame,
		State:    c.stateLocked().String(),
		Viewport: c.viewport,
		Vertices: make([]models.VertexView, len(c.vertices)),
		Edges:    make([]models.EdgeView, len(c.edges)),
		Revealed: c.revealed,
	}
	if c.adj != nil {
		f.EdgeCount = c.adj.EdgeCount()
		f.MaxEdges = c.adj.MaxEdges()
	}

	for i := range c.vertices {
		v := &c.vertices[i]
		f.Vertices[i] = models.VertexView{
			Index:   i,
			X:       v.X,
			Y:       v.Y,
			Radius:  c.opts.VertexRadius,
			Color:   v.Color.Hex(),
			Opacity: v.Opacity(),
		}
	}
	for i := range c.edges {
		e := &c.edges[i]
		src, dest := c.vertices[e.Src], c.vertices[e.Dest]
		f.Edges[i] = models.EdgeView{
			Src:     e.Src,
			Dest:    e.Dest,
			X1:      src.X,
			Y1:      src.Y,
			X2:      dest.X,
			Y2:      dest.Y,
			Color:   e.Color.Hex(),
			Width:   c.opts.EdgeWidth,
			Opacity: e.Opacity(),
			Visible: e.Visible(),
		}
	}
	return f
}

// Hover boosts every vertex whose hit region contains p and returns how many
// were boosted
func (c *Controller) Hover(p models.Point) int {
	c.mu.Lock()
	n := 0
	for i := range c.vertices {
		if c.vertices[i].Contains(p) {
			c.vertices[i].Hover()
			n++
		}
	}
	c.mu.Unlock()

	if n > 0 {
		c.observer.HoverObserved(n)
	}
	return n
}

// HoverVertex boosts the vertex at index i
func (c *Controller) HoverVertex(i int) bool {
	c.mu.Lock()
	if i < 0 || i >= len(c.vertices) {
		c.mu.Unlock()
		return false
	}
	c.vertices[i].Hover()
	c.mu.Unlock()

	c.observer.HoverObserved(1)
	return true
}

// Frame returns the most recently painted frame
func (c *Controller) Frame() *models.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Vertices returns a copy of the live vertices
func (c *Controller) Vertices() []models.Vertex {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Vertex(nil), c.vertices...)
}

// Edges returns a copy of the live edges
func (c *Controller) Edges() []models.Edge {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Edge(nil), c.edges...)
}

// Stats returns a summary of the current state
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		ID:       c.id,
		State:    c.stateLocked().String(),
		Frame:    c.frame,
		Vertices: len(c.vertices),
		Revealed: c.revealed,
	}
	if c.adj != nil {
		s.EdgeCount = c.adj.EdgeCount()
		s.MaxEdges = c.adj.MaxEdges()
	}
	return s
}
