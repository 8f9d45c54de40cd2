package immersive

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-xr/engine/camera"
	"github.com/Carmen-Shannon/oxy-xr/engine/input"
	"github.com/Carmen-Shannon/oxy-xr/engine/panel"
	"github.com/Carmen-Shannon/oxy-xr/engine/scene"
)

func TestNewControllerPanicsWithoutCollaborators(t *testing.T) {
	p, l, h := &fakePlatform{}, &fakeLoop{}, &fakeHost{}
	assert.Panics(t, func() { NewController(nil, l, h) })
	assert.Panics(t, func() { NewController(p, nil, h) })
	assert.Panics(t, func() { NewController(p, l, nil) })
}

func TestPresentTakesOverScene(t *testing.T) {
	f := newFixture(t)
	f.present(t)

	assert.Equal(t, ModeImmersiveVR, f.platform.mode)
	assert.Equal(t, ReferenceSpaceLocal, f.platform.space)
	assert.Equal(t, scene.BlackBackground, f.scene.Background())
	assert.False(t, f.scene.HotspotsVisible())

	root := f.scene.Root()
	assert.Equal(t, root, f.ctrl.Panel().Parent())
	assert.False(t, f.ctrl.Panel().Visible())
	assert.Equal(t, root, f.session.controller.Parent())
	assert.Equal(t, root, f.session.grip.Parent())

	x, y, z := f.model.Position()
	assert.Equal(t, [3]float32{0.5, 0.25, -5}, [3]float32{x, y, z})

	assert.True(t, f.loop.hasCallback())
	assert.Equal(t, 1, f.renderer.renders, "Present waits for one presented frame")
	assert.True(t, f.ctrl.IsPresenting())
	assert.Equal(t, "session-1", f.ctrl.Session().ID())
}

func TestPresentRequiresScene(t *testing.T) {
	f := newFixture(t)
	err := f.ctrl.Present(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoScene)
	assert.Zero(t, f.platform.requests)
}

func TestSecondPresentIsRejectedWithoutSideEffects(t *testing.T) {
	f := newFixture(t)
	f.present(t)
	other := scene.NewScene("other", camera.NewCamera())

	err := f.ctrl.Present(context.Background(), other)
	assert.ErrorIs(t, err, ErrAlreadyPresenting)

	var se *SessionError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "present", se.Op)

	assert.Equal(t, 1, f.platform.requests)
	assert.Equal(t, scene.BlackBackground, f.scene.Background())
	assert.False(t, f.scene.HotspotsVisible())
	assert.Equal(t, scene.Background{Color: [4]float32{1, 1, 1, 1}}, other.Background())
	assert.True(t, other.HotspotsVisible())
	assert.Equal(t, StateActive, f.ctrl.State())
}

func TestPresentWhileRequestingIsRejected(t *testing.T) {
	f := newFixture(t)
	other := scene.NewScene("other", camera.NewCamera())

	var nested error
	var during State
	f.platform.onRequest = func() {
		during = f.ctrl.State()
		nested = f.ctrl.Present(context.Background(), other)
	}
	f.present(t)

	assert.Equal(t, StateRequesting, during)
	assert.ErrorIs(t, nested, ErrAlreadyPresenting)
	assert.Equal(t, 1, f.platform.requests)
	assert.Equal(t, scene.Background{Color: [4]float32{1, 1, 1, 1}}, other.Background())
	assert.True(t, other.HotspotsVisible())
	assert.Equal(t, StateActive, f.ctrl.State())
}

func TestSessionEndedBeforePresentingLeavesSceneUntouched(t *testing.T) {
	f := newFixture(t)
	f.session.ended = true
	bg := f.scene.Background()

	err := f.ctrl.Present(context.Background(), f.scene)
	assert.ErrorIs(t, err, ErrSessionEnded)

	assert.Equal(t, StateIdle, f.ctrl.State())
	assert.False(t, f.loop.hasCallback())
	assert.Equal(t, bg, f.scene.Background())
	assert.True(t, f.scene.HotspotsVisible())
	assert.Nil(t, f.ctrl.Panel().Parent())
	x, y, z := f.model.Position()
	assert.Equal(t, [3]float32{0.5, 0.25, 0}, [3]float32{x, y, z})
	assert.Zero(t, f.host.resizes)

	f.platform.session = newFakeSession()
	f.present(t)
}

func TestRequestFailureLeavesSceneUntouched(t *testing.T) {
	f := newFixture(t)
	f.platform.err = errDenied
	bg := f.scene.Background()

	err := f.ctrl.Present(context.Background(), f.scene)
	assert.ErrorIs(t, err, ErrSessionRequestFailed)
	assert.ErrorIs(t, err, errDenied)

	assert.Equal(t, StateIdle, f.ctrl.State())
	assert.False(t, f.loop.hasCallback())
	assert.Empty(t, f.session.onEnd)
	assert.Empty(t, f.session.onConnect)
	assert.Equal(t, bg, f.scene.Background())
	assert.True(t, f.scene.HotspotsVisible())
	assert.Nil(t, f.ctrl.Panel().Parent())
	x, y, z := f.model.Position()
	assert.Equal(t, [3]float32{0.5, 0.25, 0}, [3]float32{x, y, z})

	// The controller is usable again.
	f.platform.err = nil
	f.present(t)
}

func TestTeardownRestoresSceneAfterAnyMutation(t *testing.T) {
	f := newFixture(t)
	f.model.SetRotation(0.1, 0.2, 0.3)
	f.model.SetScale(1.2, 1.2, 1.2)
	pos, scale, rot := f.model.TransformData()
	bg := f.scene.Background()
	f.present(t)

	pad := &input.Snapshot{Pressed: make([]bool, 6), Values: []float32{0, 0, 0.8, -0.6}}
	f.session.connect(InputSource{TargetRayMode: input.TargetRayTrackedPointer, Gamepad: pad})

	f.aimAt(t, panel.SurfaceZoomIn)
	for range 400 {
		f.loop.frame()
	}
	f.aimAt(t, panel.SurfaceLeft)
	for range 50 {
		f.loop.frame()
	}
	pad.Pressed[4] = true
	f.aimAt(t, panel.SurfaceZoomOut)
	for range 400 {
		f.loop.frame()
	}

	require.NoError(t, f.ctrl.StopPresenting())
	assert.Equal(t, StateIdle, f.ctrl.State())

	gotPos, gotScale, gotRot := f.model.TransformData()
	assert.Equal(t, pos, gotPos)
	assert.Equal(t, scale, gotScale)
	assert.Equal(t, rot, gotRot)
	assert.Equal(t, bg, f.scene.Background())
	assert.True(t, f.scene.HotspotsVisible())
	x, y, z := f.scene.Root().Position()
	assert.Equal(t, [3]float32{0, 0, 0}, [3]float32{x, y, z})

	assert.Nil(t, f.ctrl.Panel().Parent())
	assert.False(t, f.ctrl.Panel().Visible())
	assert.Nil(t, f.session.controller.Parent())
	assert.Empty(t, f.session.controller.Children())
	assert.False(t, f.scene.Camera().HasSessionTransform())
	assert.False(t, f.loop.hasCallback())
	assert.Empty(t, f.ctrl.Highlighted())
	assert.Zero(t, f.ctrl.RotationSpeed())

	assert.Equal(t, []EnvironmentAttributes{{Environment: "neutral", Skybox: "sky.hdr"}}, f.host.restored)
	assert.Equal(t, 1, f.host.recomputes)
	assert.Equal(t, 1, f.host.resizes)
	assert.Zero(t, f.host.cameraChanges, "camera change waits for the next tick")
	f.loop.frame()
	assert.Equal(t, 1, f.host.cameraChanges)
}

func TestSessionEndsOnlyOnce(t *testing.T) {
	m := NewMetrics()
	f := newFixture(t, WithMetrics(m))
	f.present(t)

	require.NoError(t, f.session.End())
	require.NoError(t, f.ctrl.StopPresenting())
	require.NoError(t, f.session.End())

	assert.Equal(t, 1, f.host.resizes)
	assert.Len(t, f.host.restored, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsEnded))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.sessionsActive))
}

func TestStopPresentingWhenIdleDoesNothing(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.ctrl.StopPresenting())
	assert.Zero(t, f.session.endCalls)
}

func TestStopPresentingRestoresSceneWhenPlatformFails(t *testing.T) {
	f := newFixture(t)
	f.present(t)
	f.session.endErr = errors.New("device lost")

	err := f.ctrl.StopPresenting()
	require.Error(t, err)
	var se *SessionError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "session-1", se.Session)

	assert.Equal(t, StateIdle, f.ctrl.State())
	assert.True(t, f.scene.HotspotsVisible())
}

func TestFirstFrameFailureEndsSession(t *testing.T) {
	f := newFixture(t)
	f.loop.tickErr = context.DeadlineExceeded

	err := f.ctrl.Present(context.Background(), f.scene)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StateIdle, f.ctrl.State())
	assert.Equal(t, 1, f.session.endCalls)
	assert.True(t, f.scene.HotspotsVisible())
}

func TestTeardownSurvivesFailingSteps(t *testing.T) {
	f := newFixture(t)
	f.host.envErr = errors.New("unknown environment")
	f.present(t)

	require.NoError(t, f.ctrl.StopPresenting())
	assert.Equal(t, StateIdle, f.ctrl.State())
	assert.Equal(t, 1, f.host.recomputes)
	assert.Equal(t, 1, f.host.resizes)
}

func TestZoomIsClampedToScaleBounds(t *testing.T) {
	f := newFixture(t)
	f.present(t)
	f.session.connect(InputSource{TargetRayMode: input.TargetRayTrackedPointer})

	f.aimAt(t, panel.SurfaceZoomIn)
	for range 250 {
		f.loop.frame()
		sx, _, _ := f.model.Scale()
		require.LessOrEqual(t, sx, float32(3))
	}
	sx, sy, sz := f.model.Scale()
	assert.Equal(t, [3]float32{3, 3, 3}, [3]float32{sx, sy, sz})

	f.loop.frame()
	sx, _, _ = f.model.Scale()
	assert.Equal(t, float32(3), sx, "zooming in at the bound is a no-op")

	f.aimAt(t, panel.SurfaceZoomOut)
	for range 300 {
		f.loop.frame()
		sx, _, _ := f.model.Scale()
		require.GreaterOrEqual(t, sx, float32(0.3))
	}
	sx, _, _ = f.model.Scale()
	assert.Equal(t, float32(0.3), sx)
}

func TestSeveralInputSourcesDispatchOncePerFrame(t *testing.T) {
	f := newFixture(t)
	f.present(t)
	f.session.connect(InputSource{TargetRayMode: input.TargetRayGaze})
	f.session.connect(InputSource{TargetRayMode: input.TargetRayTrackedPointer})

	f.aimAt(t, panel.SurfaceZoomIn)
	before, _, _ := f.model.Scale()
	f.loop.frame()
	after, _, _ := f.model.Scale()
	assert.InDelta(t, 0.01, after-before, 1e-6)
	assert.Equal(t, DefaultTuning().RotationStep, f.ctrl.RotationSpeed())
	assert.Equal(t, []string{panel.SurfaceZoomIn}, f.ctrl.Highlighted())

	line := f.session.controller.GetObjectByName(panel.LineName)
	require.NotNil(t, line)
	_, _, length := line.Scale()
	assert.InDelta(t, aimDistance, length, 1e-3)

	f.aimAt(t, panel.SurfaceLeft)
	f.loop.frame()
	// The speed ramped once on the previous frame, and LEFT applies it once.
	_, ry, _ := f.model.Rotation()
	assert.InDelta(t, DefaultTuning().RotationStep, ry, 1e-7)
}

func TestRotationSpeedRampsWhileHitAndResets(t *testing.T) {
	f := newFixture(t)
	f.present(t)
	f.session.connect(InputSource{TargetRayMode: input.TargetRayTrackedPointer})

	f.aimAt(t, panel.SurfaceLeft)
	var prev float32
	for range 300 {
		f.loop.frame()
		speed := f.ctrl.RotationSpeed()
		require.GreaterOrEqual(t, speed, prev)
		require.LessOrEqual(t, speed, float32(0.02))
		prev = speed
	}
	assert.Equal(t, float32(0.02), f.ctrl.RotationSpeed())
	_, ry, _ := f.model.Rotation()
	assert.Greater(t, ry, float32(0), "LEFT yaws the model positively")

	f.aimAway(t)
	f.loop.frame()
	assert.Equal(t, float32(0), f.ctrl.RotationSpeed())
}

func TestRotateSurfacesDirection(t *testing.T) {
	tests := []struct {
		surface   string
		pitchSign int
		yawSign   int
	}{
		{panel.SurfaceLeft, 0, 1},
		{panel.SurfaceRight, 0, -1},
		{panel.SurfaceTop, -1, 0},
		{panel.SurfaceBottom, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.surface, func(t *testing.T) {
			f := newFixture(t)
			f.present(t)
			f.session.connect(InputSource{TargetRayMode: input.TargetRayTrackedPointer})
			f.aimAt(t, tt.surface)
			for range 10 {
				f.loop.frame()
			}
			rx, ry, _ := f.model.Rotation()
			assert.Equal(t, tt.pitchSign, sign(rx))
			assert.Equal(t, tt.yawSign, sign(ry))
		})
	}
}

func TestHighlightTracksCurrentHits(t *testing.T) {
	f := newFixture(t)
	f.present(t)
	f.session.connect(InputSource{TargetRayMode: input.TargetRayTrackedPointer})
	top := f.surface(t, panel.SurfaceTop)
	right := f.surface(t, panel.SurfaceRight)

	f.aimAt(t, panel.SurfaceTop)
	f.loop.frame()
	assert.Equal(t, []string{panel.SurfaceTop}, f.ctrl.Highlighted())
	assert.True(t, top.Material().Highlighted())

	line := f.session.controller.GetObjectByName(panel.LineName)
	require.NotNil(t, line)
	_, _, lz := line.Scale()
	assert.InDelta(t, aimDistance, lz, 1e-4)

	f.aimAt(t, panel.SurfaceRight)
	f.loop.frame()
	assert.Equal(t, []string{panel.SurfaceRight}, f.ctrl.Highlighted())
	assert.False(t, top.Material().Highlighted())
	assert.True(t, right.Material().Highlighted())

	f.aimAway(t)
	f.loop.frame()
	assert.Empty(t, f.ctrl.Highlighted())
	assert.False(t, right.Material().Highlighted())
	_, _, lz = line.Scale()
	assert.Equal(t, float32(5), lz)
}

func TestUnsupportedInputModeIsIgnored(t *testing.T) {
	m := NewMetrics()
	f := newFixture(t, WithMetrics(m))
	f.present(t)

	pad := &input.Snapshot{Pressed: []bool{false, false, false, false, false, true}}
	f.session.connect(InputSource{TargetRayMode: input.TargetRayScreen, Gamepad: pad})
	assert.Empty(t, f.session.controller.Children())

	f.aimAt(t, panel.SurfaceZoomIn)
	assert.NotPanics(t, func() {
		for range 5 {
			f.loop.frame()
		}
	})
	sx, _, _ := f.model.Scale()
	assert.Equal(t, float32(1), sx)
	assert.Empty(t, f.ctrl.Highlighted())
	assert.Zero(t, f.ctrl.RotationSpeed())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.inputSources.WithLabelValues(string(input.TargetRayScreen))))
}

func TestGazeSourceShowsPanelAndReticle(t *testing.T) {
	f := newFixture(t)
	f.present(t)

	f.session.connect(InputSource{TargetRayMode: input.TargetRayGaze})
	assert.True(t, f.ctrl.Panel().Visible())
	assert.NotNil(t, f.session.controller.GetObjectByName(panel.ReticleName))
	assert.Nil(t, f.session.controller.GetObjectByName(panel.LineName))
}

func TestGamepadButtonsZoomWhileHeld(t *testing.T) {
	f := newFixture(t)
	f.present(t)
	pad := &input.Snapshot{Pressed: []bool{false, false, false, false, false, true}}
	f.session.connect(InputSource{TargetRayMode: input.TargetRayTrackedPointer, Gamepad: pad})
	f.aimAway(t)

	f.loop.frame()
	f.loop.frame()
	sx, _, _ := f.model.Scale()
	assert.InDelta(t, 1.2, sx, 1e-5)

	pad.Pressed[5] = false
	pad.Pressed[4] = true
	for range 30 {
		f.loop.frame()
	}
	sx, _, _ = f.model.Scale()
	assert.Equal(t, float32(0.3), sx)
}

func TestThumbstickRotatesAndWraps(t *testing.T) {
	f := newFixture(t)
	f.present(t)
	pad := &input.Snapshot{Values: []float32{0, 0, 1, -0.5}}
	f.session.connect(InputSource{TargetRayMode: input.TargetRayTrackedPointer, Gamepad: pad})
	f.aimAway(t)

	f.loop.frame()
	rx, ry, _ := f.model.Rotation()
	assert.InDelta(t, -0.05, rx, 1e-6)
	assert.InDelta(t, 0.1, ry, 1e-6)

	for range 100 {
		f.loop.frame()
	}
	_, ry, _ = f.model.Rotation()
	assert.LessOrEqual(t, ry, float32(math.Pi))
	assert.GreaterOrEqual(t, ry, float32(-math.Pi))
}

func TestViewerPoseDrivesCamera(t *testing.T) {
	f := newFixture(t)
	f.present(t)
	assert.False(t, f.scene.Camera().HasSessionTransform())

	f.session.tracked = true
	f.session.pose = [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 1.6, 0, 1}
	f.loop.frame()
	assert.True(t, f.scene.Camera().HasSessionTransform())
	_, y, _ := f.scene.Camera().Position()
	assert.InDelta(t, 1.6, y, 1e-6)
}

type panickingRenderer struct{}

func (panickingRenderer) Render(s scene.Scene, cam camera.Camera) error { panic("gpu lost") }

func TestFramePanicIsContained(t *testing.T) {
	f := newFixture(t, WithRenderer(panickingRenderer{}))
	assert.NotPanics(t, func() { f.present(t) })
	assert.NotPanics(t, f.loop.frame)
	assert.Equal(t, StateActive, f.ctrl.State())
}

func TestMissingModelIsNothingToDo(t *testing.T) {
	f := newFixture(t)
	f.scene.Remove(f.model)
	f.present(t)
	f.session.connect(InputSource{TargetRayMode: input.TargetRayTrackedPointer, Gamepad: &input.Snapshot{Pressed: []bool{false, false, false, false, true}}})

	f.aimAt(t, panel.SurfaceZoomIn)
	assert.NotPanics(t, func() { f.loop.frame() })
	assert.Equal(t, []string{panel.SurfaceZoomIn}, f.ctrl.Highlighted())
	require.NoError(t, f.ctrl.StopPresenting())
}

func TestMetricsFollowSessionLifecycle(t *testing.T) {
	m := NewMetrics()
	f := newFixture(t, WithMetrics(m))

	f.platform.err = errDenied
	require.Error(t, f.ctrl.Present(context.Background(), f.scene))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestFailures))

	f.platform.err = nil
	f.present(t)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsStarted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsActive))

	f.session.connect(InputSource{TargetRayMode: input.TargetRayTrackedPointer})
	f.aimAt(t, panel.SurfaceTop)
	f.loop.frame()
	f.loop.frame()
	assert.Equal(t, 2.0, testutil.ToFloat64(m.surfaceHits.WithLabelValues(panel.SurfaceTop)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.frameDuration))

	require.NoError(t, f.ctrl.StopPresenting())
	assert.Equal(t, 0.0, testutil.ToFloat64(m.sessionsActive))
}

func TestNilMetricsRecordNothing(t *testing.T) {
	f := newFixture(t, WithMetrics(nil))
	f.present(t)
	require.NoError(t, f.ctrl.StopPresenting())
}

func TestSessionErrorFormat(t *testing.T) {
	err := &SessionError{Op: "request session", Cause: ErrSessionRequestFailed}
	assert.Equal(t, "[immersive] request session: session request failed", err.Error())

	err = &SessionError{Op: "stop presenting", Session: "abc", Cause: errDenied}
	assert.Equal(t, "[immersive] stop presenting (session abc): permission denied", err.Error())
	assert.True(t, errors.Is(err, errDenied))
}

func TestDefaultTuningFillsZeroFields(t *testing.T) {
	tuning := Tuning{MaxScale: 2}.withDefaults()
	assert.Equal(t, float32(2), tuning.MaxScale)
	assert.Equal(t, float32(0.3), tuning.MinScale)
	assert.Equal(t, float32(0.0001), tuning.RotationStep)
	assert.Equal(t, DefaultTuning(), Tuning{}.withDefaults())
}

func sign(v float32) int {
	switch {
	case v > 1e-6:
		return 1
	case v < -1e-6:
		return -1
	}
	return 0
}
