// Package config loads oxy-xr settings from defaults, an optional YAML file and OXY_ environment
// variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/Carmen-Shannon/oxy-xr/engine/immersive"
)

// PathEnv names the environment variable that points at the config file.
const PathEnv = "OXY_CONFIG"

// DefaultPath is read when neither an explicit path nor PathEnv is given. It may be absent.
const DefaultPath = "oxy-xr.yaml"

// Config holds application configuration.
type Config struct {
	Window      WindowConfig      `mapstructure:"window"`
	Engine      EngineConfig      `mapstructure:"engine"`
	Renderer    RendererConfig    `mapstructure:"renderer"`
	Viewer      ViewerConfig      `mapstructure:"viewer"`
	Interaction InteractionConfig `mapstructure:"interaction"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Log         LogConfig         `mapstructure:"log"`
}

// WindowConfig holds the desktop window settings. Zero size limits are unbounded.
type WindowConfig struct {
	Title     string `mapstructure:"title"`
	Width     int    `mapstructure:"width"`
	Height    int    `mapstructure:"height"`
	MinWidth  int    `mapstructure:"min_width"`
	MinHeight int    `mapstructure:"min_height"`
	MaxWidth  int    `mapstructure:"max_width"`
	MaxHeight int    `mapstructure:"max_height"`
}

// EngineConfig holds loop settings.
type EngineConfig struct {
	TickRate   float64 `mapstructure:"tick_rate"`
	FrameLimit float64 `mapstructure:"frame_limit"`
	Profiling  bool    `mapstructure:"profiling"`
}

// RendererConfig holds GPU presentation settings.
type RendererConfig struct {
	VSync    bool `mapstructure:"vsync"`
	MSAA     int  `mapstructure:"msaa"`
	Software bool `mapstructure:"software"`
}

// ViewerConfig holds what is displayed and how it is lit.
type ViewerConfig struct {
	Source       string   `mapstructure:"source"`
	Environment  string   `mapstructure:"environment"`
	Skybox       string   `mapstructure:"skybox"`
	Environments []string `mapstructure:"environments"`
	Workers      int      `mapstructure:"workers"`
}

// InteractionConfig holds the immersive controller constants.
type InteractionConfig struct {
	RotationStep       float64 `mapstructure:"rotation_step"`
	MaxRotationSpeed   float64 `mapstructure:"max_rotation_speed"`
	ZoomStep           float64 `mapstructure:"zoom_step"`
	ButtonZoomStep     float64 `mapstructure:"button_zoom_step"`
	MinScale           float64 `mapstructure:"min_scale"`
	MaxScale           float64 `mapstructure:"max_scale"`
	AxisRotationFactor float64 `mapstructure:"axis_rotation_factor"`
	FarRayLength       float64 `mapstructure:"far_ray_length"`
	ModelDistance      float64 `mapstructure:"model_distance"`
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration. path wins over OXY_CONFIG; with neither, ./oxy-xr.yaml is read if
// present. Env var overrides use prefix OXY_ with dots replaced by underscores, e.g.
// OXY_WINDOW_WIDTH.
//
// Parameters:
//   - path: an explicit config file, or empty
//
// Returns:
//   - Config: the loaded configuration
//   - error: error if an explicit file cannot be read, decoding fails or a value is invalid
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	explicit := path
	if explicit == "" {
		explicit = os.Getenv(PathEnv)
	}
	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.SetConfigFile(DefaultPath)
	}

	v.SetEnvPrefix("OXY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		missing := errors.Is(err, os.ErrNotExist) || errors.As(err, new(viper.ConfigFileNotFoundError))
		if explicit != "" || !missing {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("window.title", "oxy-xr")
	v.SetDefault("window.width", 1280)
	v.SetDefault("window.height", 720)
	v.SetDefault("window.min_width", 320)
	v.SetDefault("window.min_height", 200)
	v.SetDefault("window.max_width", 0)
	v.SetDefault("window.max_height", 0)

	v.SetDefault("engine.tick_rate", 60.0)
	v.SetDefault("engine.frame_limit", 0.0)
	v.SetDefault("engine.profiling", false)

	v.SetDefault("renderer.vsync", true)
	v.SetDefault("renderer.msaa", 4)
	v.SetDefault("renderer.software", false)

	v.SetDefault("viewer.source", "builtin:cube")
	v.SetDefault("viewer.environment", "neutral")
	v.SetDefault("viewer.skybox", "")
	v.SetDefault("viewer.environments", []string{})
	v.SetDefault("viewer.workers", 2)

	d := immersive.DefaultTuning()
	v.SetDefault("interaction.rotation_step", float64(d.RotationStep))
	v.SetDefault("interaction.max_rotation_speed", float64(d.MaxRotationSpeed))
	v.SetDefault("interaction.zoom_step", float64(d.ZoomStep))
	v.SetDefault("interaction.button_zoom_step", float64(d.ButtonZoomStep))
	v.SetDefault("interaction.min_scale", float64(d.MinScale))
	v.SetDefault("interaction.max_scale", float64(d.MaxScale))
	v.SetDefault("interaction.axis_rotation_factor", float64(d.AxisRotationFactor))
	v.SetDefault("interaction.far_ray_length", float64(d.FarRayLength))
	v.SetDefault("interaction.model_distance", float64(d.ModelDistance))

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.address", ":9464")

	v.SetDefault("log.level", "info")
}

// Validate checks values that would otherwise fail later at runtime.
//
// Returns:
//   - error: a description of every invalid value, or nil
func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.Renderer.MSAA != 1 && c.Renderer.MSAA != 4 {
		errs = append(errs, fmt.Errorf("renderer msaa must be 1 or 4, got %d", c.Renderer.MSAA))
	}
	if c.Engine.TickRate < 0 || c.Engine.FrameLimit < 0 {
		errs = append(errs, errors.New("engine rates must not be negative"))
	}
	if c.Viewer.Source == "" {
		errs = append(errs, errors.New("viewer source is required"))
	}
	if c.Viewer.Workers < 1 {
		errs = append(errs, fmt.Errorf("viewer workers must be at least 1, got %d", c.Viewer.Workers))
	}
	i := c.Interaction
	if i.MinScale <= 0 || i.MaxScale <= i.MinScale {
		errs = append(errs, fmt.Errorf("interaction scale bounds must satisfy 0 < min < max, got %g..%g", i.MinScale, i.MaxScale))
	}
	if i.RotationStep < 0 || i.MaxRotationSpeed < 0 || i.ZoomStep < 0 || i.ButtonZoomStep < 0 {
		errs = append(errs, errors.New("interaction steps must not be negative"))
	}
	if c.Metrics.Enabled && c.Metrics.Address == "" {
		errs = append(errs, errors.New("metrics address is required when metrics are enabled"))
	}
	return errors.Join(errs...)
}

// Tuning converts the interaction section into controller constants.
//
// Returns:
//   - immersive.Tuning: the controller constants
func (i InteractionConfig) Tuning() immersive.Tuning {
	return immersive.Tuning{
		RotationStep:       float32(i.RotationStep),
		MaxRotationSpeed:   float32(i.MaxRotationSpeed),
		ZoomStep:           float32(i.ZoomStep),
		ButtonZoomStep:     float32(i.ButtonZoomStep),
		MinScale:           float32(i.MinScale),
		MaxScale:           float32(i.MaxScale),
		AxisRotationFactor: float32(i.AxisRotationFactor),
		FarRayLength:       float32(i.FarRayLength),
		ModelDistance:      float32(i.ModelDistance),
	}
}
