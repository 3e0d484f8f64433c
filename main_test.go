package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/TFMV/giantgraph/config"
)

func TestFlagsOverrideConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "giant.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: svg\nwidth: 500\nfps: 24\n"), 0o644))

	opts := parseFlags([]string{"-config", path, "-width", "640", "-seed", "9"})
	cfg, err := opts.load()
	require.NoError(t, err)

	assert.Equal(t, "svg", cfg.Mode)
	assert.Equal(t, 640, cfg.Width)
	assert.Equal(t, 24, cfg.FPS)
	assert.Equal(t, int64(9), cfg.Seed)
	// unset flags keep the defaults
	assert.Equal(t, config.Default().Height, cfg.Height)
}

func TestInvalidFlagValue(t *testing.T) {
	opts := parseFlags([]string{"-mode", "canvas"})
	_, err := opts.load()
	assert.Error(t, err)
}

func TestRunHeadless(t *testing.T) {
	dir := t.TempDir()

	for _, mode := range []string{"svg", "ascii", "json", "dot", "png"} {
		t.Run(mode, func(t *testing.T) {
			out := filepath.Join(dir, "frame."+extension(mode))
			opts := parseFlags([]string{
				"-mode", mode,
				"-output", out,
				"-frames", "20",
				"-width", "300",
				"-height", "200",
				"-vertices", "10",
				"-seed", "1",
			})
			cfg, err := opts.load()
			require.NoError(t, err)

			require.NoError(t, runHeadless(cfg, zap.NewNop()))

			data, err := os.ReadFile(out)
			require.NoError(t, err)
			assert.NotEmpty(t, data)
			if mode == "json" {
				assert.True(t, strings.Contains(string(data), `"number":20`))
			}
		})
	}
}
