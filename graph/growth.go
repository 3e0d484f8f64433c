package graph

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// ErrComplete is returned by Grow once every pair is linked
var ErrComplete = errors.New("graph is complete")

// attemptsPerVertex scales the default rejection-sampling budget with n
const attemptsPerVertex = 64

// Pick is one chosen pair plus how it was found
type Pick struct {
	Src      int
	Dst      int
	Attempts int  // random draws spent on both endpoints
	Fallback bool // a full scan resolved at least one endpoint
}

// Grower chooses the next edge uniformly at random. Each endpoint is drawn by
// rejection sampling; past maxAttempts draws it switches to a uniform choice
// over a full scan of the valid candidates, which keeps the distribution the
// same while bounding the work.
type Grower struct {
	rnd         *rand.Rand
	maxAttempts int
}

// GrowerOption configures a Grower
type GrowerOption func(*Grower)

// WithMaxAttempts caps the rejection draws per endpoint. Values below 1 mean
// 64 draws per vertex.
func WithMaxAttempts(n int) GrowerOption {
	return func(g *Grower) {
		g.maxAttempts = n
	}
}

// NewGrower creates a growth policy drawing from rnd
func NewGrower(rnd *rand.Rand, opts ...GrowerOption) *Grower {
	g := &Grower{rnd: rnd}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Grower) limit(n int) int {
	if g.maxAttempts > 0 {
		return g.maxAttempts
	}
	return attemptsPerVertex * n
}

// Pick chooses an unsaturated source and an unlinked destination. It returns
// false when the graph is already complete.
func (g *Grower) Pick(adj *Adjacency) (Pick, bool) {
	n := adj.Len()
	if n < 2 || adj.Complete() {
		return Pick{}, false
	}
	limit := g.limit(n)

	var p Pick
	src, tries, ok := g.sample(n, limit, func(i int) bool {
		return !adj.Saturated(i)
	})
	p.Attempts += tries
	if !ok {
		src = g.scan(n, func(i int) bool { return !adj.Saturated(i) })
		p.Fallback = true
	}

	valid := func(i int) bool {
		return i != src && !adj.Exists(src, i)
	}
	dst, tries, ok := g.sample(n, limit, valid)
	p.Attempts += tries
	if !ok {
		dst = g.scan(n, valid)
		p.Fallback = true
	}

	p.Src, p.Dst = src, dst
	return p, true
}

// Grow picks a pair and links it
func (g *Grower) Grow(adj *Adjacency) (Pick, error) {
	p, ok := g.Pick(adj)
	if !ok {
		return Pick{}, ErrComplete
	}
	if err := adj.Link(p.Src, p.Dst); err != nil {
		return p, fmt.Errorf("grow: %w", err)
	}
	return p, nil
}

func (g *Grower) sample(n, limit int, valid func(int) bool) (int, int, bool) {
	for i := 1; i <= limit; i++ {
		c := g.rnd.IntN(n)
		if valid(c) {
			return c, i, true
		}
	}
	return -1, limit, false
}

// scan must only be called when at least one index is valid
func (g *Grower) scan(n int, valid func(int) bool) int {
	candidates := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if valid(i) {
			candidates = append(candidates, i)
		}
	}
	return candidates[g.rnd.IntN(len(candidates))]
}
