package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-xr/engine/immersive"
)

// inTempDir runs the test from an empty directory so no stray oxy-xr.yaml is picked up.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(PathEnv, "")
	return dir
}

func writeConfig(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	inTempDir(t)

	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, WindowConfig{Title: "oxy-xr", Width: 1280, Height: 720, MinWidth: 320, MinHeight: 200}, c.Window)
	assert.Equal(t, RendererConfig{VSync: true, MSAA: 4}, c.Renderer)
	assert.Equal(t, 60.0, c.Engine.TickRate)
	assert.Equal(t, "builtin:cube", c.Viewer.Source)
	assert.Equal(t, "neutral", c.Viewer.Environment)
	assert.Equal(t, 2, c.Viewer.Workers)
	assert.False(t, c.Metrics.Enabled)
	assert.Equal(t, ":9464", c.Metrics.Address)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, immersive.DefaultTuning(), c.Interaction.Tuning())
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := inTempDir(t)
	path := writeConfig(t, dir, "custom.yaml", `
window:
  title: demo
  width: 800
viewer:
  source: models/helmet.glb
  environments: [studio, sunset.hdr]
interaction:
  max_scale: 4
  zoom_step: 0.02
renderer:
  vsync: false
metrics:
  enabled: true
`)
	t.Setenv("OXY_WINDOW_HEIGHT", "600")
	t.Setenv("OXY_INTERACTION_MIN_SCALE", "0.5")

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, WindowConfig{Title: "demo", Width: 800, Height: 600, MinWidth: 320, MinHeight: 200}, c.Window)
	assert.False(t, c.Renderer.VSync)
	assert.Equal(t, "models/helmet.glb", c.Viewer.Source)
	assert.Equal(t, []string{"studio", "sunset.hdr"}, c.Viewer.Environments)
	assert.True(t, c.Metrics.Enabled)

	tuning := c.Interaction.Tuning()
	assert.Equal(t, float32(4), tuning.MaxScale)
	assert.Equal(t, float32(0.5), tuning.MinScale)
	assert.Equal(t, float32(0.02), tuning.ZoomStep)
	assert.Equal(t, immersive.DefaultTuning().RotationStep, tuning.RotationStep)
}

func TestLoadUsesPathEnvAndDefaultFile(t *testing.T) {
	dir := inTempDir(t)
	writeConfig(t, dir, DefaultPath, "window:\n  title: from-default\n")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-default", c.Window.Title)

	envPath := writeConfig(t, dir, "env.yaml", "window:\n  title: from-env\n")
	t.Setenv(PathEnv, envPath)
	c, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.Window.Title)
}

func TestLoadErrors(t *testing.T) {
	dir := inTempDir(t)

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "read config")

	bad := writeConfig(t, dir, "bad.yaml", "window: [unclosed\n")
	_, err = Load(bad)
	assert.ErrorContains(t, err, "read config")

	invalid := writeConfig(t, dir, "invalid.yaml", "window:\n  width: 0\ninteraction:\n  min_scale: 2\n  max_scale: 1\n")
	_, err = Load(invalid)
	assert.ErrorContains(t, err, "window size must be positive")
	assert.ErrorContains(t, err, "scale bounds")
}

func TestValidate(t *testing.T) {
	inTempDir(t)
	c, err := Load("")
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	c.Viewer.Workers = 0
	c.Renderer.MSAA = 2
	c.Metrics.Enabled = true
	c.Metrics.Address = ""
	err = c.Validate()
	assert.ErrorContains(t, err, "workers")
	assert.ErrorContains(t, err, "msaa")
	assert.ErrorContains(t, err, "metrics address")
}
