// Package graph tracks which vertex pairs are linked and decides which pair
// to link next.
package graph

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrSelfLoop is returned when both endpoints are the same vertex
	ErrSelfLoop = errors.New("self-loop")
	// ErrDuplicateEdge is returned when the pair is already linked
	ErrDuplicateEdge = errors.New("duplicate edge")
	// ErrVertexOutOfRange is returned for indices outside [0, n)
	ErrVertexOutOfRange = errors.New("vertex index out of range")
)

// Adjacency is a simple undirected graph over vertex indices 0..n-1, stored
// as one neighbor set per vertex.
type Adjacency struct {
	neighbors []map[int]struct{}
	edges     int
}

// NewAdjacency creates an edgeless graph over n vertices
func NewAdjacency(n int) *Adjacency {
	if n < 0 {
		n = 0
	}
	a := &Adjacency{neighbors: make([]map[int]struct{}, n)}
	for i := range a.neighbors {
		a.neighbors[i] = make(map[int]struct{})
	}
	return a
}

// Len returns the number of vertices
func (a *Adjacency) Len() int {
	return len(a.neighbors)
}

// MaxEdges returns n(n-1)/2
func (a *Adjacency) MaxEdges() int {
	n := len(a.neighbors)
	return n * (n - 1) / 2
}

// EdgeCount returns the number of linked pairs
func (a *Adjacency) EdgeCount() int {
	return a.edges
}

// Complete reports whether every pair is linked
func (a *Adjacency) Complete() bool {
	return a.edges >= a.MaxEdges()
}

func (a *Adjacency) inRange(i int) bool {
	return i >= 0 && i < len(a.neighbors)
}

// Exists reports whether a and b are linked. The relation is symmetric.
func (a *Adjacency) Exists(u, v int) bool {
	if !a.inRange(u) || !a.inRange(v) {
		return false
	}
	_, ok := a.neighbors[u][v]
	return ok
}

// Degree returns the number of neighbors of v
func (a *Adjacency) Degree(v int) int {
	if !a.inRange(v) {
		return 0
	}
	return len(a.neighbors[v])
}

// Saturated reports whether v is already linked to every other vertex
func (a *Adjacency) Saturated(v int) bool {
	return a.Degree(v) >= len(a.neighbors)-1
}

// Neighbors returns the neighbors of v in ascending order
func (a *Adjacency) Neighbors(v int) []int {
	if !a.inRange(v) {
		return nil
	}
	result := make([]int, 0, len(a.neighbors[v]))
	for n := range a.neighbors[v] {
		result = append(result, n)
	}
	slices.Sort(result)
	return result
}

// Link records an undirected edge between u and v
func (a *Adjacency) Link(u, v int) error {
	if !a.inRange(u) || !a.inRange(v) {
		return fmt.Errorf("link %d-%d over %d vertices: %w", u, v, len(a.neighbors), ErrVertexOutOfRange)
	}
	if u == v {
		return fmt.Errorf("link %d-%d: %w", u, v, ErrSelfLoop)
	}
	if a.Exists(u, v) {
		return fmt.Errorf("link %d-%d: %w", u, v, ErrDuplicateEdge)
	}

	a.neighbors[u][v] = struct{}{}
	a.neighbors[v][u] = struct{}{}
	a.edges++
	return nil
}
