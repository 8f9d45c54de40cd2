package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-xr/common"
	"github.com/Carmen-Shannon/oxy-xr/engine"
	"github.com/Carmen-Shannon/oxy-xr/engine/desktop"
	"github.com/Carmen-Shannon/oxy-xr/engine/immersive"
	"github.com/Carmen-Shannon/oxy-xr/engine/renderer"
	"github.com/Carmen-Shannon/oxy-xr/engine/viewer"
	"github.com/Carmen-Shannon/oxy-xr/engine/window"
	"github.com/Carmen-Shannon/oxy-xr/internal/config"
	"github.com/Carmen-Shannon/oxy-xr/internal/logger"
	"github.com/Carmen-Shannon/oxy-xr/internal/metrics"
)

const viewerSceneKey = 0

// runOptions holds command-line overrides applied on top of the loaded config.
type runOptions struct {
	configPath  string
	source      string
	environment string
	logLevel    string
	metrics     bool
	noImmersive bool
}

// settings is the loaded config plus choices only available on the command line.
type settings struct {
	config.Config
	immersive bool
}

// settings loads the config, applies the flag overrides and sets the log level.
func (o *runOptions) settings() (settings, error) {
	c, err := config.Load(o.configPath)
	if err != nil {
		return settings{}, err
	}
	c.Viewer.Source = common.Coalesce(o.source, c.Viewer.Source)
	c.Viewer.Environment = common.Coalesce(o.environment, c.Viewer.Environment)
	c.Log.Level = common.Coalesce(o.logLevel, c.Log.Level)
	c.Metrics.Enabled = common.Coalesce(o.metrics, c.Metrics.Enabled)

	level, ok := logger.ParseLevel(c.Log.Level)
	if !ok {
		return settings{}, fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	logger.SetLevel(level)
	return settings{Config: c, immersive: !o.noImmersive}, nil
}

func run(ctx context.Context, s settings) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var sessionMetrics *immersive.Metrics
	if s.Metrics.Enabled {
		sessionMetrics = immersive.NewMetrics()
		exporter, err := metrics.NewExporter(s.Metrics.Address, sessionMetrics)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		go func() {
			if err := exporter.Serve(ctx); err != nil {
				logger.Error("metrics endpoint stopped", "err", err)
			}
		}()
	}

	win := window.NewWindow(
		window.WithTitle(s.Window.Title),
		window.WithWidth(s.Window.Width),
		window.WithHeight(s.Window.Height),
		window.WithSizeLimits(s.Window.MinWidth, s.Window.MinHeight, s.Window.MaxWidth, s.Window.MaxHeight),
		window.WithEscapeCloses(false),
	)
	r := renderer.NewRenderer(renderer.BackendTypeWGPU, win, rendererOptions(s.Renderer)...)
	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithRenderer(r),
		engine.WithTickRate(s.Engine.TickRate),
		engine.WithRenderFrameLimit(s.Engine.FrameLimit),
		engine.WithProfiling(s.Engine.Profiling),
	)

	v := viewer.NewViewer(
		viewer.WithWorkers(s.Viewer.Workers),
		viewer.WithEnvironments(s.Viewer.Environments...),
		viewer.WithEnvironmentAttributes(s.Viewer.Environment, s.Viewer.Skybox),
		viewer.WithSurface(win, r),
	)
	sc := v.Scene()
	sc.SetActive(true)
	eng.AddScene(viewerSceneKey, sc)
	v.RequestResize()
	v.SetSource(s.Viewer.Source)

	bindOrbitInput(win, v)

	if s.immersive {
		platform := desktop.NewPlatform(win, desktop.WithIdleEscape(eng.Quit))
		v.AttachImmersive(platform, eng,
			immersive.WithRenderer(r),
			immersive.WithTuning(s.Interaction.Tuning()),
			immersive.WithMetrics(sessionMetrics),
		)
		go activate(ctx, v)
	} else {
		win.SetKeyDownCallback(func(keyCode uint32) {
			if keyCode == common.KeyEsc {
				eng.Quit()
			}
		})
	}

	logger.Info("viewer started", "source", s.Viewer.Source, "immersive", s.immersive)
	eng.Run()
	return nil
}

func rendererOptions(c config.RendererConfig) []renderer.RendererBuilderOption {
	mode := renderer.PresentModeVSync
	if !c.VSync {
		mode = renderer.PresentModeUncapped
	}
	msaa := renderer.MSAA4x
	if c.MSAA == 1 {
		msaa = renderer.MSAAOff
	}
	return []renderer.RendererBuilderOption{
		renderer.WithPresentMode(mode),
		renderer.WithMSAA(msaa),
		renderer.WithForceSoftwareRenderer(c.Software),
	}
}

// activate enters the immersive session once the model is ready. A refused session leaves the
// orbit viewer running.
func activate(ctx context.Context, v viewer.Viewer) {
	err := v.Activate(ctx)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
	default:
		logger.Warn("immersive session unavailable", "err", err)
	}
}
