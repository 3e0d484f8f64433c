package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/TFMV/giantgraph/animation"
	"github.com/TFMV/giantgraph/config"
	"github.com/TFMV/giantgraph/metrics"
	"github.com/TFMV/giantgraph/render"
	"github.com/TFMV/giantgraph/server"
	"github.com/TFMV/giantgraph/tui"
)

// options holds the flags that are not part of a config file
type options struct {
	ConfigFile string
	Watch      bool
	flags      *flag.FlagSet
	values     *config.Config
}

func main() {
	// Cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := parseFlags(os.Args[1:])

	cfg, err := opts.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	switch cfg.Mode {
	case config.ModeServer:
		err = runServer(ctx, cfg, opts, logger)
	case config.ModeTerminal:
		err = runTerminal(ctx, cfg)
	default:
		err = runHeadless(cfg, logger)
	}
	if err != nil {
		logger.Fatal("giantgraph failed", zap.String("mode", cfg.Mode), zap.Error(err))
	}
}

// parseFlags parses command-line flags. Flags left at their defaults do not
// override values from a config file.
func parseFlags(args []string) *options {
	defaults := config.Default()
	values := config.Default()
	opts := &options{
		flags:  flag.NewFlagSet("giantgraph", flag.ExitOnError),
		values: values,
	}
	fs := opts.flags

	// Basic options
	fs.StringVar(&opts.ConfigFile, "config", "", "Path to a YAML or JSON config file")
	fs.BoolVar(&opts.Watch, "watch", false, "Reload the config file on change (server mode)")
	fs.StringVar(&values.Mode, "mode", defaults.Mode, "Run mode: server, terminal, svg, ascii, json, dot, png")
	fs.StringVar(&values.Output, "output", defaults.Output, "Output file for headless modes (defaults to 'output.[format]', '-' for stdout)")
	fs.IntVar(&values.Frames, "frames", defaults.Frames, "Frames to step before writing in headless modes")
	fs.IntVar(&values.Port, "port", defaults.Port, "Port for server mode")
	fs.StringVar(&values.CORSOrigins, "cors", defaults.CORSOrigins, "Comma-separated origins allowed to call the API")
	fs.IntVar(&values.FPS, "fps", defaults.FPS, "Frames per second")

	// Animation options
	fs.IntVar(&values.Width, "width", defaults.Width, "Viewport width")
	fs.IntVar(&values.Height, "height", defaults.Height, "Viewport height")
	fs.IntVar(&values.Vertex.Count, "vertices", defaults.Vertex.Count, "Number of vertices (0 derives it from the viewport)")
	fs.StringVar(&values.Vertex.Color, "vertex-color", defaults.Vertex.Color, "Vertex color: #rrggbb, white, random, noise, palette:<name>")
	fs.StringVar(&values.Edge.Color, "edge-color", defaults.Edge.Color, "Edge color: #rrggbb, white, random, noise, palette:<name>")
	fs.Float64Var(&values.Edge.Threshold, "threshold", defaults.Edge.Threshold, "Length beyond which edges are hidden")
	fs.Int64Var(&values.Seed, "seed", defaults.Seed, "Random seed (0 seeds from the clock)")
	fs.StringVar(&values.Sampler, "sampler", defaults.Sampler, "Destination sampler: uniform, noise")

	// Advanced options
	fs.BoolVar(&values.Debug, "debug", defaults.Debug, "Enable debug logging")

	fs.Parse(args)
	return opts
}

// load reads the config file, if any, and applies explicitly set flags on top
func (o *options) load() (*config.Config, error) {
	cfg, err := config.Load(o.ConfigFile)
	if err != nil {
		return nil, err
	}
	o.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// apply copies every flag given on the command line into cfg
func (o *options) apply(cfg *config.Config) {
	v := o.values
	o.flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			cfg.Mode = v.Mode
		case "output":
			cfg.Output = v.Output
		case "frames":
			cfg.Frames = v.Frames
		case "port":
			cfg.Port = v.Port
		case "cors":
			cfg.CORSOrigins = v.CORSOrigins
		case "fps":
			cfg.FPS = v.FPS
		case "width":
			cfg.Width = v.Width
		case "height":
			cfg.Height = v.Height
		case "vertices":
			cfg.Vertex.Count = v.Vertex.Count
		case "vertex-color":
			cfg.Vertex.Color = v.Vertex.Color
		case "edge-color":
			cfg.Edge.Color = v.Edge.Color
		case "threshold":
			cfg.Edge.Threshold = v.Edge.Threshold
		case "seed":
			cfg.Seed = v.Seed
		case "sampler":
			cfg.Sampler = v.Sampler
		case "debug":
			cfg.Debug = v.Debug
		}
	})
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Mode == config.ModeTerminal {
		// the terminal belongs to the animation
		return zap.NewNop(), nil
	}
	if cfg.Debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// runServer serves the animation until ctx is done
func runServer(ctx context.Context, cfg *config.Config, opts *options, logger *zap.Logger) error {
	sched := animation.NewTickerScheduler(cfg.FPS)
	registry := metrics.NewRegistry()

	ctrl, buf, err := newAnimation(cfg, sched, registry, logger)
	if err != nil {
		return err
	}

	srv := server.New(ctrl, buf, server.Config{
		Port:           cfg.Port,
		Background:     cfg.Background,
		AllowedOrigins: cfg.AllowedOrigins(),
		Logger:         logger,
		Metrics:        registry,
	})

	if opts.Watch && opts.ConfigFile != "" {
		watcher, err := config.NewWatcher(opts.ConfigFile, cfg, logger)
		if err != nil {
			return err
		}
		defer watcher.Stop()

		watcher.OnChange(func(next *config.Config) {
			opts.apply(next)
			if next.Port != cfg.Port || next.Mode != cfg.Mode {
				logger.Warn("port and mode changes need a restart")
			}
			ctrl, buf, err := newAnimation(next, sched, registry, logger)
			if err != nil {
				logger.Error("reloaded configuration rejected", zap.Error(err))
				return
			}
			srv.Replace(ctrl, buf)
		})
	}

	go sched.Run(ctx)
	ctrl.Start()

	return srv.Run(ctx)
}

// runTerminal draws the animation in the terminal
func runTerminal(ctx context.Context, cfg *config.Config) error {
	sched := animation.NewManualScheduler()
	ctrl, buf, err := newAnimation(cfg, sched, nil, zap.NewNop())
	if err != nil {
		return err
	}
	return tui.Run(ctx, tui.New(ctrl, sched, buf, cfg.FPS))
}

// runHeadless steps the animation and writes the final frame
func runHeadless(cfg *config.Config, logger *zap.Logger) error {
	sched := animation.NewManualScheduler()
	ctrl, buf, err := newAnimation(cfg, sched, nil, logger)
	if err != nil {
		return err
	}

	// Start paints the first frame
	ctrl.Start()
	sched.Run(cfg.Frames - 1)

	options := render.NewDefaultOptions(cfg.Mode)
	options.Background = cfg.Background
	output, err := buf.Render(options)
	if err != nil {
		return fmt.Errorf("rendering failed: %w", err)
	}
	stats := ctrl.Stats()
	ctrl.End()

	path := cfg.Output
	if path == "" {
		path = "output." + extension(cfg.Mode)
	}
	if path == "-" {
		_, err = os.Stdout.Write(output)
		return err
	}
	if err := os.WriteFile(path, output, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	logger.Info("processing complete",
		zap.String("output", path),
		zap.Uint64("frames", stats.Frame),
		zap.Int("edges", stats.EdgeCount),
		zap.Int("max_edges", stats.MaxEdges))
	return nil
}

func newAnimation(cfg *config.Config, sched animation.Scheduler, observer animation.Observer, logger *zap.Logger) (*animation.Controller, *render.Buffer, error) {
	buf := render.NewBuffer()
	opts, err := cfg.Options(buf, sched, logger)
	if err != nil {
		return nil, nil, err
	}
	opts.Observer = observer

	ctrl, err := animation.New(opts)
	if err != nil {
		return nil, nil, err
	}
	return ctrl, buf, nil
}

func extension(mode string) string {
	if mode == "ascii" {
		return "txt"
	}
	return mode
}
