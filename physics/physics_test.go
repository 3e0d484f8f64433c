package physics_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/giantgraph/models"
	"github.com/TFMV/giantgraph/physics"
)

func TestSamplersStayInViewport(t *testing.T) {
	vp := models.Viewport{Width: 320, Height: 180}

	for _, name := range []string{physics.SamplerUniform, physics.SamplerNoise} {
		t.Run(name, func(t *testing.T) {
			s, err := physics.GetSampler(name, physics.NewRand(42), 42)
			require.NoError(t, err)

			for i := 0; i < 2000; i++ {
				p := s.Sample(vp)
				require.GreaterOrEqual(t, p.X, 0.0)
				require.Less(t, p.X, vp.Width)
				require.GreaterOrEqual(t, p.Y, 0.0)
				require.Less(t, p.Y, vp.Height)
				require.Equal(t, math.Floor(p.X), p.X, "destinations are integer valued")
				require.Equal(t, math.Floor(p.Y), p.Y)
			}
		})
	}
}

func TestUniformSamplerIsDeterministic(t *testing.T) {
	vp := models.Viewport{Width: 1000, Height: 1000}
	a := physics.NewUniformSampler(physics.NewRand(9))
	b := physics.NewUniformSampler(physics.NewRand(9))

	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Sample(vp), b.Sample(vp))
	}
}

func TestGetSamplerUnknown(t *testing.T) {
	_, err := physics.GetSampler("spiral", physics.NewRand(1), 1)
	assert.Error(t, err)

	s, err := physics.GetSampler("", physics.NewRand(1), 1)
	require.NoError(t, err)
	assert.IsType(t, &physics.UniformSampler{}, s)
}

func TestRandomPositionSinglePixel(t *testing.T) {
	p := physics.RandomPosition(physics.NewRand(3), models.Viewport{Width: 1, Height: 1})
	assert.Equal(t, models.Point{}, p)
}
