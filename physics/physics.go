package physics

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/TFMV/giantgraph/models"
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Sampler names accepted by GetSampler
const (
	SamplerUniform = "uniform"
	SamplerNoise   = "noise"
)

// NewRand creates a deterministic random source from a seed
func NewRand(seed int64) *rand.Rand {
	s := uint64(seed)
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}

// RandomPosition returns a uniform integer-valued point in [0,w)×[0,h)
func RandomPosition(rnd *rand.Rand, vp models.Viewport) models.Point {
	return models.Point{
		X: math.Floor(rnd.Float64() * vp.Width),
		Y: math.Floor(rnd.Float64() * vp.Height),
	}
}

// UniformSampler draws destinations uniformly over the viewport
type UniformSampler struct {
	rnd *rand.Rand
}

// NewUniformSampler creates a uniform sampler drawing from rnd
func NewUniformSampler(rnd *rand.Rand) *UniformSampler {
	return &UniformSampler{rnd: rnd}
}

// Sample returns a uniform integer-valued point in the viewport
func (s *UniformSampler) Sample(vp models.Viewport) models.Point {
	return RandomPosition(s.rnd, vp)
}

// NoiseSampler displaces uniform destinations along a slowly evolving
// simplex noise field, so nearby vertices tend to drift the same way.
type NoiseSampler struct {
	rnd            *rand.Rand
	noiseGenerator opensimplex.Noise
	noiseScale     float64
	distortion     float64 // displacement as a fraction of the viewport size
	timeStep       float64
	timeIncrement  float64
}

// NewNoiseSampler creates a noise sampler; seed drives the noise field
func NewNoiseSampler(rnd *rand.Rand, seed int64) *NoiseSampler {
	return &NoiseSampler{
		rnd:            rnd,
		noiseGenerator: opensimplex.New(seed),
		noiseScale:     0.005,
		distortion:     0.25,
		timeIncrement:  0.01,
	}
}

// Sample returns a displaced, integer-valued point inside the viewport
func (s *NoiseSampler) Sample(vp models.Viewport) models.Point {
	c := RandomPosition(s.rnd, vp)

	nx := s.noiseGenerator.Eval3(c.X*s.noiseScale, c.Y*s.noiseScale, s.timeStep)
	ny := s.noiseGenerator.Eval3(c.X*s.noiseScale+100, c.Y*s.noiseScale+100, s.timeStep)
	s.timeStep += s.timeIncrement

	c.X += nx * s.distortion * vp.Width
	c.Y += ny * s.distortion * vp.Height

	return models.Point{
		X: math.Floor(clamp(c.X, 0, vp.Width-1)),
		Y: math.Floor(clamp(c.Y, 0, vp.Height-1)),
	}
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	return math.Max(lo, math.Min(hi, v))
}

// GetSampler returns a destination sampler by name
func GetSampler(name string, rnd *rand.Rand, seed int64) (models.DestinationSampler, error) {
	switch strings.ToLower(name) {
	case "", SamplerUniform:
		return NewUniformSampler(rnd), nil
	case SamplerNoise:
		return NewNoiseSampler(rnd, seed), nil
	default:
		return nil, fmt.Errorf("unknown sampler: %s", name)
	}
}
