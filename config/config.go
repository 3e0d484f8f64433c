// Package config loads and validates animation settings from flags and
// YAML or JSON files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/TFMV/giantgraph/animation"
	"github.com/TFMV/giantgraph/models"
	"github.com/TFMV/giantgraph/physics"
	"github.com/TFMV/giantgraph/render"
)

// Output modes
const (
	ModeServer   = "server"
	ModeTerminal = "terminal"
)

// Config holds every setting of a run
type Config struct {
	Mode   string `yaml:"mode" json:"mode" validate:"oneof=server terminal svg ascii json dot png"`
	Output string `yaml:"output" json:"output"`
	Frames int    `yaml:"frames" json:"frames" validate:"gte=0"`
	Port   int    `yaml:"port" json:"port" validate:"gt=0,lte=65535"`
	FPS    int    `yaml:"fps" json:"fps" validate:"gt=0,lte=240"`
	Debug  bool   `yaml:"debug" json:"debug"`
	// CORSOrigins is a comma-separated list of origins allowed to call the API
	CORSOrigins string `yaml:"cors_origins" json:"cors_origins"`

	Seed    int64  `yaml:"seed" json:"seed"`
	Sampler string `yaml:"sampler" json:"sampler" validate:"oneof=uniform noise"`

	Width      int    `yaml:"width" json:"width" validate:"gt=0"`
	Height     int    `yaml:"height" json:"height" validate:"gt=0"`
	Background string `yaml:"background" json:"background" validate:"hexcolor"`

	Vertex VertexConfig `yaml:"vertex" json:"vertex"`
	Edge   EdgeConfig   `yaml:"edge" json:"edge"`
}

// VertexConfig holds vertex settings
type VertexConfig struct {
	Radius float64 `yaml:"radius" json:"radius" validate:"gt=0"`
	// Count of vertices; 0 derives it from the viewport area
	Count            int     `yaml:"count" json:"count" validate:"gte=0"`
	Color            string  `yaml:"color" json:"color" validate:"required"`
	MaxSpeed         float64 `yaml:"max_speed" json:"max_speed" validate:"gt=0"`
	MouseSensitivity float64 `yaml:"mouse_sensitivity" json:"mouse_sensitivity" validate:"gte=0"`
	BoostFrames      int     `yaml:"boost_frames" json:"boost_frames" validate:"gte=0"`
}

// EdgeConfig holds edge settings
type EdgeConfig struct {
	Width     float64 `yaml:"width" json:"width" validate:"gt=0"`
	Threshold float64 `yaml:"threshold" json:"threshold" validate:"gt=0"`
	Color     string  `yaml:"color" json:"color" validate:"required"`
}

var validate = validator.New()

// Default returns the settings of the demo page
func Default() *Config {
	return &Config{
		Mode:       ModeServer,
		Frames:     600,
		Port:       8080,
		FPS:        animation.DefaultFPS,
		Sampler:    physics.SamplerUniform,
		Width:      1280,
		Height:     720,
		Background: "#000000",
		Vertex: VertexConfig{
			Radius:           1,
			Color:            "white",
			MaxSpeed:         4,
			MouseSensitivity: 10,
			BoostFrames:      models.DefaultBoostFrames,
		},
		Edge: EdgeConfig{
			Width:     1,
			Threshold: 200,
			Color:     "random",
		},
	}
}

// VertexCount returns the configured count, or one vertex per 100x100 block
// of the viewport
func (c *Config) VertexCount() int {
	if c.Vertex.Count > 0 {
		return c.Vertex.Count
	}
	n := int(float64(c.Width) / 100 * float64(c.Height) / 100)
	return max(n, 1)
}

// AllowedOrigins splits CORSOrigins
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		msgs := make([]string, 0, len(verrs))
		for _, e := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s (got %v)", e.Namespace(), e.Tag(), e.Param(), e.Value()))
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// Options builds controller options. Colors and samplers are resolved here
// so a bad color spec fails before anything starts.
func (c *Config) Options(surface animation.Surface, scheduler animation.Scheduler, logger *zap.Logger) (animation.Options, error) {
	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	colors := physics.NewRand(seed + 1)
	vertexColor, err := render.ParseColorFunc(c.Vertex.Color, false, colors, seed)
	if err != nil {
		return animation.Options{}, fmt.Errorf("vertex color: %w", err)
	}
	edgeColor, err := render.ParseColorFunc(c.Edge.Color, true, colors, seed)
	if err != nil {
		return animation.Options{}, fmt.Errorf("edge color: %w", err)
	}

	sampler, err := physics.GetSampler(c.Sampler, physics.NewRand(seed+2), seed)
	if err != nil {
		return animation.Options{}, err
	}

	return animation.Options{
		Surface:                surface,
		Scheduler:              scheduler,
		Width:                  c.Width,
		Height:                 c.Height,
		VertexRadius:           c.Vertex.Radius,
		VertexCount:            c.VertexCount(),
		VertexColor:            vertexColor,
		VertexMaxSpeed:         c.Vertex.MaxSpeed,
		VertexMouseSensitivity: c.Vertex.MouseSensitivity,
		EdgeWidth:              c.Edge.Width,
		EdgeThreshold:          c.Edge.Threshold,
		EdgeColor:              edgeColor,
		Sampler:                sampler,
		Seed:                   seed,
		BoostFrames:            c.Vertex.BoostFrames,
		Logger:                 logger,
	}, nil
}

// FileLoader decodes one configuration file format
type FileLoader interface {
	Load(reader io.Reader, target any) error
	Extensions() []string
}

// YAMLLoader loads configuration from YAML files
type YAMLLoader struct{}

func (y *YAMLLoader) Load(reader io.Reader, target any) error {
	err := yaml.NewDecoder(reader).Decode(target)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (y *YAMLLoader) Extensions() []string {
	return []string{".yaml", ".yml"}
}

// JSONLoader loads configuration from JSON files
type JSONLoader struct{}

func (j *JSONLoader) Load(reader io.Reader, target any) error {
	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func (j *JSONLoader) Extensions() []string {
	return []string{".json"}
}

var loaders = map[string]FileLoader{}

func init() {
	for _, l := range []FileLoader{&YAMLLoader{}, &JSONLoader{}} {
		for _, ext := range l.Extensions() {
			loaders[ext] = l
		}
	}
}

// Load reads a configuration file over the defaults. An empty path returns
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	loader, ok := loaders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("unsupported config format: %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	if err := loader.Load(file, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
