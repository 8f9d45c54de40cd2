package immersive

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-xr/common"
	"github.com/Carmen-Shannon/oxy-xr/engine/camera"
	"github.com/Carmen-Shannon/oxy-xr/engine/loop"
	"github.com/Carmen-Shannon/oxy-xr/engine/node"
	"github.com/Carmen-Shannon/oxy-xr/engine/scene"
)

type fakeSession struct {
	mu sync.Mutex

	id         string
	controller node.Node
	grip       node.Node
	pose       [16]float32
	tracked    bool
	endErr     error
	ended      bool
	onConnect  []func(InputSource)
	onEnd      []func()
	endCalls   int
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		id:         "session-1",
		controller: node.NewGroup("controller"),
		grip:       node.NewGroup("grip"),
	}
}

func (s *fakeSession) ID() string                     { return s.id }
func (s *fakeSession) ReferenceSpace() ReferenceSpace { return ReferenceSpaceLocal }

func (s *fakeSession) Controller(index int) node.Node {
	if index != 0 {
		return nil
	}
	return s.controller
}

func (s *fakeSession) ControllerGrip(index int) node.Node {
	if index != 0 {
		return nil
	}
	return s.grip
}

func (s *fakeSession) OnInputSourceConnected(callback func(InputSource)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onConnect = append(s.onConnect, callback)
}

func (s *fakeSession) OnEnd(callback func()) {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		callback()
		return
	}
	s.onEnd = append(s.onEnd, callback)
	s.mu.Unlock()
}

func (s *fakeSession) ViewerPose() ([16]float32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pose, s.tracked
}

func (s *fakeSession) End() error {
	s.mu.Lock()
	s.endCalls++
	if s.endErr != nil {
		s.mu.Unlock()
		return s.endErr
	}
	if s.ended {
		s.mu.Unlock()
		return nil
	}
	s.ended = true
	listeners := s.onEnd
	s.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
	return nil
}

func (s *fakeSession) connect(src InputSource) {
	s.mu.Lock()
	listeners := s.onConnect
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(src)
	}
}

type fakePlatform struct {
	session  *fakeSession
	err      error
	requests int
	mode     Mode
	space    ReferenceSpace
	// onRequest runs while the request is pending.
	onRequest func()
}

func (p *fakePlatform) RequestSession(ctx context.Context, mode Mode, space ReferenceSpace) (Session, error) {
	p.requests++
	p.mode, p.space = mode, space
	if p.onRequest != nil {
		p.onRequest()
	}
	if p.err != nil {
		return nil, p.err
	}
	return p.session, nil
}

type fakeLoop struct {
	mu       sync.Mutex
	callback func(loop.Frame)
	after    []func()
	tickErr  error
	frames   uint64
}

func (l *fakeLoop) SetFrameCallback(callback func(loop.Frame)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.callback = callback
}

func (l *fakeLoop) NextTick(ctx context.Context) error {
	if l.tickErr != nil {
		return l.tickErr
	}
	l.frame()
	return nil
}

func (l *fakeLoop) AfterNextTick(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.after = append(l.after, fn)
}

func (l *fakeLoop) hasCallback() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.callback != nil
}

// frame runs one loop iteration: the frame callback, then the after-tick functions.
func (l *fakeLoop) frame() {
	l.mu.Lock()
	l.frames++
	cb, after, n := l.callback, l.after, l.frames
	l.after = nil
	l.mu.Unlock()
	if cb != nil {
		cb(loop.Frame{Number: n})
	}
	for _, fn := range after {
		fn()
	}
}

type fakeHost struct {
	attrs         EnvironmentAttributes
	envErr        error
	restored      []EnvironmentAttributes
	recomputes    int
	resizes       int
	cameraChanges int
}

func (h *fakeHost) EnvironmentAttributes() EnvironmentAttributes { return h.attrs }

func (h *fakeHost) SetEnvironmentAndBackground(environment, skybox string) error {
	h.restored = append(h.restored, EnvironmentAttributes{Environment: environment, Skybox: skybox})
	return h.envErr
}

func (h *fakeHost) RecomputeCameraAttributes() { h.recomputes++ }
func (h *fakeHost) RequestResize()             { h.resizes++ }
func (h *fakeHost) DispatchCameraChange()      { h.cameraChanges++ }

type fakeRenderer struct {
	renders int
	err     error
}

func (r *fakeRenderer) Render(s scene.Scene, cam camera.Camera) error {
	r.renders++
	return r.err
}

var errDenied = errors.New("permission denied")

type fixture struct {
	platform *fakePlatform
	session  *fakeSession
	loop     *fakeLoop
	host     *fakeHost
	renderer *fakeRenderer
	scene    scene.Scene
	model    node.Node
	ctrl     Controller
}

func newFixture(t *testing.T, options ...ControllerBuilderOption) *fixture {
	t.Helper()
	sess := newFakeSession()
	f := &fixture{
		platform: &fakePlatform{session: sess},
		session:  sess,
		loop:     &fakeLoop{},
		host:     &fakeHost{attrs: EnvironmentAttributes{Environment: "neutral", Skybox: "sky.hdr"}},
		renderer: &fakeRenderer{},
		model:    node.NewNode(node.WithName(scene.TargetName), node.WithPosition(0.5, 0.25, 0)),
	}
	f.scene = scene.NewScene("main", camera.NewCamera(),
		scene.WithNodes(f.model),
		scene.WithBackground(scene.Background{Color: [4]float32{0.2, 0.3, 0.4, 1}, Skybox: "sky.hdr"}),
	)
	f.ctrl = NewController(f.platform, f.loop, f.host, append([]ControllerBuilderOption{WithRenderer(f.renderer)}, options...)...)
	return f
}

func (f *fixture) present(t *testing.T) {
	t.Helper()
	require.NoError(t, f.ctrl.Present(context.Background(), f.scene))
	require.Equal(t, StateActive, f.ctrl.State())
}

// surface returns the panel surface named name.
func (f *fixture) surface(t *testing.T, name string) node.Node {
	t.Helper()
	n := f.ctrl.Panel().GetObjectByName(name)
	require.NotNil(t, n, name)
	return n
}

// aimAt points the session controller at the center of the named surface from a short
// distance in front of it.
func (f *fixture) aimAt(t *testing.T, name string) {
	t.Helper()
	world := f.surface(t, name).WorldMatrix()
	center := common.MatrixPosition(world[:])
	normal := common.Normalize3(common.TransformDirection(world[:], common.Vec3{0, 0, 1}))
	eye := common.Add3(center, common.Scale3(normal, aimDistance))
	f.look(t, eye, center)
}

// aimAway points the session controller straight up, away from the panel.
func (f *fixture) aimAway(t *testing.T) {
	t.Helper()
	var pose [16]float32
	common.BuildModelMatrix(pose[:], 0, 0, 0, 1.5, 0, 0, 1, 1, 1)
	f.session.controller.SetPose(&pose)
}

func (f *fixture) look(t *testing.T, eye, target common.Vec3) {
	t.Helper()
	var view, pose [16]float32
	common.LookAt(view[:], eye[0], eye[1], eye[2], target[0], target[1], target[2], 0, 1, 0)
	require.True(t, common.Invert4(pose[:], view[:]))
	f.session.controller.SetPose(&pose)
}

const aimDistance = 0.05
