package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-xr/engine/viewer"
	"github.com/Carmen-Shannon/oxy-xr/internal/config"
	"github.com/Carmen-Shannon/oxy-xr/internal/logger"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(config.PathEnv, "")
	t.Cleanup(func() { logger.SetLevel(slog.LevelInfo) })
	return dir
}

func TestSettingsDefaults(t *testing.T) {
	isolate(t)

	s, err := (&runOptions{}).settings()
	require.NoError(t, err)
	assert.True(t, s.immersive)
	assert.Equal(t, "builtin:cube", s.Viewer.Source)
	assert.False(t, s.Metrics.Enabled)
}

func TestSettingsFlagOverrides(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte("viewer:\n  source: a.glb\n  environment: studio\n"), 0o600))

	s, err := (&runOptions{
		configPath:  path,
		source:      "b.gltf",
		logLevel:    "debug",
		metrics:     true,
		noImmersive: true,
	}).settings()
	require.NoError(t, err)
	assert.Equal(t, "b.gltf", s.Viewer.Source)
	assert.Equal(t, "studio", s.Viewer.Environment)
	assert.Equal(t, "debug", s.Log.Level)
	assert.True(t, s.Metrics.Enabled)
	assert.False(t, s.immersive)
}

func TestSettingsRejectsUnknownLogLevel(t *testing.T) {
	isolate(t)
	_, err := (&runOptions{logLevel: "loud"}).settings()
	assert.ErrorContains(t, err, "unknown log level")
}

func TestRootCommandReportsConfigErrors(t *testing.T) {
	dir := isolate(t)

	cmd := newRootCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--config", filepath.Join(dir, "missing.yaml")})
	assert.ErrorContains(t, cmd.Execute(), "read config")

	cmd = newRootCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"one.glb", "two.glb"})
	assert.Error(t, cmd.Execute())
}

type fakeInput struct {
	down, up, move func(x, y int32)
	scroll         func(delta float32)
}

func (f *fakeInput) SetMiddleMouseDownCallback(callback func(x, y int32)) { f.down = callback }
func (f *fakeInput) SetMiddleMouseUpCallback(callback func(x, y int32))   { f.up = callback }
func (f *fakeInput) SetMouseMoveCallback(callback func(x, y int32))       { f.move = callback }
func (f *fakeInput) SetScrollCallback(callback func(delta float32))       { f.scroll = callback }

func TestOrbitInput(t *testing.T) {
	v := viewer.NewViewer()
	in := &fakeInput{}
	bindOrbitInput(in, v)

	var changes int
	v.OnCameraChange(func() { changes++ })
	ctrl := v.Scene().Camera().Controller()
	azimuth, radius := ctrl.Azimuth(), ctrl.Radius()

	// Moving without a drag does nothing.
	in.move(50, 0)
	assert.Equal(t, azimuth, ctrl.Azimuth())
	assert.Equal(t, 0, changes)

	in.down(0, 0)
	in.move(-20, 0)
	in.up(-20, 0)
	assert.InDelta(t, azimuth+2*0.03, ctrl.Azimuth(), 1e-5)
	assert.Equal(t, 1, changes)

	in.scroll(1)
	assert.Less(t, ctrl.Radius(), radius)
	assert.Equal(t, 2, changes)
}
