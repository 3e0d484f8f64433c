package graph_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/TFMV/giantgraph/graph"
)

type AdjacencySuite struct {
	suite.Suite
	adj *graph.Adjacency
}

func (s *AdjacencySuite) SetupTest() {
	s.adj = graph.NewAdjacency(4)
}

func (s *AdjacencySuite) TestEmpty() {
	require := require.New(s.T())
	require.Equal(4, s.adj.Len())
	require.Equal(6, s.adj.MaxEdges())
	require.Zero(s.adj.EdgeCount())
	require.False(s.adj.Complete())
	require.False(s.adj.Exists(0, 1))
	require.Empty(s.adj.Neighbors(2))
}

func (s *AdjacencySuite) TestLinkIsSymmetric() {
	require := require.New(s.T())
	require.NoError(s.adj.Link(2, 0))

	require.True(s.adj.Exists(0, 2))
	require.True(s.adj.Exists(2, 0))
	require.Equal([]int{2}, s.adj.Neighbors(0))
	require.Equal([]int{0}, s.adj.Neighbors(2))
	require.Equal(1, s.adj.EdgeCount())
}

func (s *AdjacencySuite) TestLinkRejectsInvalidPairs() {
	require := require.New(s.T())
	require.NoError(s.adj.Link(1, 3))

	require.ErrorIs(s.adj.Link(1, 1), graph.ErrSelfLoop)
	require.ErrorIs(s.adj.Link(3, 1), graph.ErrDuplicateEdge)
	require.ErrorIs(s.adj.Link(1, 3), graph.ErrDuplicateEdge)
	require.ErrorIs(s.adj.Link(-1, 2), graph.ErrVertexOutOfRange)
	require.ErrorIs(s.adj.Link(0, 4), graph.ErrVertexOutOfRange)
	require.Equal(1, s.adj.EdgeCount(), "rejected links must not count")
}

func (s *AdjacencySuite) TestSaturation() {
	require := require.New(s.T())
	require.NoError(s.adj.Link(0, 1))
	require.NoError(s.adj.Link(0, 2))
	require.False(s.adj.Saturated(0))
	require.NoError(s.adj.Link(0, 3))

	require.True(s.adj.Saturated(0))
	require.Equal(3, s.adj.Degree(0))
	require.Equal([]int{1, 2, 3}, s.adj.Neighbors(0))
	require.False(s.adj.Saturated(1))
}

func (s *AdjacencySuite) TestCompleteGraph() {
	require := require.New(s.T())
	for u := 0; u < 4; u++ {
		for v := u + 1; v < 4; v++ {
			require.NoError(s.adj.Link(u, v))
		}
	}
	require.True(s.adj.Complete())
	require.Equal(s.adj.MaxEdges(), s.adj.EdgeCount())
}

func TestAdjacencySuite(t *testing.T) {
	suite.Run(t, new(AdjacencySuite))
}

func TestSingleVertexIsComplete(t *testing.T) {
	adj := graph.NewAdjacency(1)
	require.True(t, adj.Complete())
	require.Zero(t, adj.MaxEdges())

	g := graph.NewGrower(rand.New(rand.NewPCG(1, 2)))
	_, ok := g.Pick(adj)
	require.False(t, ok)
	_, err := g.Grow(adj)
	require.ErrorIs(t, err, graph.ErrComplete)
}

func TestGrowerCompletesGraph(t *testing.T) {
	const n = 12
	adj := graph.NewAdjacency(n)
	g := graph.NewGrower(rand.New(rand.NewPCG(7, 11)))

	seen := make(map[[2]int]bool)
	for i := 0; i < adj.MaxEdges(); i++ {
		p, err := g.Grow(adj)
		require.NoError(t, err)
		require.NotEqual(t, p.Src, p.Dst)

		key := [2]int{min(p.Src, p.Dst), max(p.Src, p.Dst)}
		require.False(t, seen[key], "pair %v added twice", key)
		seen[key] = true
	}

	require.True(t, adj.Complete())
	_, err := g.Grow(adj)
	require.ErrorIs(t, err, graph.ErrComplete)
}

func TestGrowerFallbackScan(t *testing.T) {
	const n = 8
	adj := graph.NewAdjacency(n)
	g := graph.NewGrower(rand.New(rand.NewPCG(3, 5)), graph.WithMaxAttempts(1))

	fallbacks := 0
	for !adj.Complete() {
		p, err := g.Grow(adj)
		require.NoError(t, err)
		require.LessOrEqual(t, p.Attempts, 2)
		if p.Fallback {
			fallbacks++
		}
	}

	require.Equal(t, adj.MaxEdges(), adj.EdgeCount())
	require.Positive(t, fallbacks, "a single draw per endpoint cannot finish without scanning")
}

func TestGrowerPickLeavesGraphUntouched(t *testing.T) {
	adj := graph.NewAdjacency(5)
	g := graph.NewGrower(rand.New(rand.NewPCG(1, 1)))

	p, ok := g.Pick(adj)
	require.True(t, ok)
	require.False(t, adj.Exists(p.Src, p.Dst))
	require.Zero(t, adj.EdgeCount())
	require.GreaterOrEqual(t, p.Attempts, 2)
}
