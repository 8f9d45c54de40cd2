package immersive

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-xr/engine/input"
	"github.com/Carmen-Shannon/oxy-xr/engine/loop"
	"github.com/Carmen-Shannon/oxy-xr/engine/node"
	"github.com/Carmen-Shannon/oxy-xr/engine/panel"
	"github.com/Carmen-Shannon/oxy-xr/engine/raycaster"
	"github.com/Carmen-Shannon/oxy-xr/engine/scene"
	"github.com/Carmen-Shannon/oxy-xr/internal/logger"
)

type controllerImpl struct {
	mu *sync.Mutex

	platform  Platform
	loop      FrameLoop
	host      Host
	renderer  Renderer
	raycaster raycaster.Raycaster
	tuning    Tuning
	metrics   *Metrics

	panelOptions []panel.BuilderOption
	panel        node.Node

	state         State
	active        *activeSession
	rotationSpeed float32
	highlighted   []node.Node
}

// activeSession is everything that lives exactly as long as one session.
type activeSession struct {
	session Session
	scene   scene.Scene
	model   node.Node
	started time.Time

	// endOnce guards teardown against the platform and StopPresenting both ending the session.
	endOnce sync.Once
	// ended is set under the controller mutex once the session has ended.
	ended bool

	controller node.Node
	grip       node.Node
	rays       []*inputRay

	saved savedState
}

// savedState is the scene as it was before the session took it over.
type savedState struct {
	background      scene.Background
	hotspotsVisible bool
	rootPosition    [3]float32
	modelPosition   [3]float32
	modelScale      [3]float32
	modelRotation   [3]float32
	environment     EnvironmentAttributes
}

// inputRay is one connected input source that points into the scene.
type inputRay struct {
	mode    input.TargetRayMode
	visual  node.Node
	line    node.Node
	adapter input.Adapter
}

// Controller presents scenes in immersive sessions, one at a time.
//
// The lifecycle is Idle, Requesting, Active, Ending and back to Idle. While Active the
// controller owns the presented scene's background, hotspot visibility and camera session link,
// and renders every frame itself through the frame loop's frame callback.
type Controller interface {
	// Present requests a session and starts presenting s in it. It returns once the first
	// presented frame has completed.
	//
	// Parameters:
	//   - ctx: bounds the session request and the wait for the first frame
	//   - s: the scene to present
	//
	// Returns:
	//   - error: a *SessionError wrapping ErrAlreadyPresenting, ErrSessionRequestFailed or
	//     ErrNoScene, or the frame loop's error
	Present(ctx context.Context, s scene.Scene) error

	// StopPresenting ends the current session. The scene is restored by the same path as a
	// platform-initiated end. Does nothing if no session is active.
	//
	// Returns:
	//   - error: error if the platform failed to end the session
	StopPresenting() error

	// State returns the lifecycle state.
	State() State

	// IsPresenting reports whether a session is active.
	IsPresenting() bool

	// Session returns the active session, or nil.
	Session() Session

	// RotationSpeed returns the current rotation speed in radians per frame.
	RotationSpeed() float32

	// Highlighted returns the names of the panel surfaces highlighted by the last frame.
	Highlighted() []string

	// Panel returns the control panel group.
	Panel() node.Node
}

var _ Controller = &controllerImpl{}

// NewController creates an idle Controller.
// Panics if platform, loop or host is nil.
//
// Parameters:
//   - platform: hands out sessions
//   - loop: drives frames while presenting
//   - host: restores the viewer state after a session
//   - options: functional options to configure the controller
//
// Returns:
//   - Controller: the newly created controller
func NewController(platform Platform, loop FrameLoop, host Host, options ...ControllerBuilderOption) Controller {
	if platform == nil {
		panic("immersive: NewController requires a non-nil Platform")
	}
	if loop == nil {
		panic("immersive: NewController requires a non-nil FrameLoop")
	}
	if host == nil {
		panic("immersive: NewController requires a non-nil Host")
	}

	c := &controllerImpl{
		mu:        &sync.Mutex{},
		platform:  platform,
		loop:      loop,
		host:      host,
		raycaster: raycaster.NewRaycaster(),
		tuning:    DefaultTuning(),
		metrics:   NewMetrics(),
		state:     StateIdle,
	}
	for _, option := range options {
		option(c)
	}
	c.tuning = c.tuning.withDefaults()
	c.panel = panel.Build(c.panelOptions...)
	c.panel.SetVisible(false)
	return c
}

func (c *controllerImpl) Present(ctx context.Context, s scene.Scene) error {
	if s == nil {
		return &SessionError{Op: "present", Cause: ErrNoScene}
	}

	c.mu.Lock()
	if c.state != StateIdle {
		state := c.state
		c.mu.Unlock()
		return &SessionError{Op: "present", Cause: fmt.Errorf("%w (state %s)", ErrAlreadyPresenting, state)}
	}
	c.state = StateRequesting
	c.mu.Unlock()

	sess, err := c.platform.RequestSession(ctx, ModeImmersiveVR, ReferenceSpaceLocal)
	if err == nil && sess == nil {
		err = errors.New("platform returned no session")
	}
	if err != nil {
		c.mu.Lock()
		c.state = StateIdle
		c.mu.Unlock()
		c.metrics.requestFailed()
		return &SessionError{Op: "request session", Cause: fmt.Errorf("%w: %w", ErrSessionRequestFailed, err)}
	}

	// The end listener goes in before the scene is touched so an early end still tears down.
	as := &activeSession{session: sess, scene: s}
	sess.OnEnd(func() { c.end(as) })
	if !c.begin(as) {
		c.mu.Lock()
		c.state = StateIdle
		c.mu.Unlock()
		return &SessionError{Op: "present", Session: sess.ID(), Cause: ErrSessionEnded}
	}
	log := logger.With("session", sess.ID())
	log.Info("immersive session started", "scene", s.Name())

	sess.OnInputSourceConnected(func(src InputSource) { c.connect(as, src) })
	c.loop.SetFrameCallback(func(f loop.Frame) { c.onFrame(as, f) })

	if err := c.loop.NextTick(ctx); err != nil {
		log.Warn("first immersive frame did not complete, ending session", "err", err)
		if endErr := sess.End(); endErr != nil {
			log.Warn("failed to end session", "err", endErr)
		}
		c.end(as)
		return &SessionError{Op: "await first frame", Session: sess.ID(), Cause: err}
	}
	return nil
}

// begin takes the scene over for as and records what has to be restored afterwards.
//
// Returns:
//   - bool: false if the session already ended, in which case nothing was changed
func (c *controllerImpl) begin(as *activeSession) bool {
	env := c.host.EnvironmentAttributes()

	c.mu.Lock()
	defer c.mu.Unlock()

	if as.ended {
		return false
	}

	s, sess := as.scene, as.session
	root := s.Root()
	as.model = s.Target()
	as.started = time.Now()
	as.controller = sess.Controller(0)
	as.grip = sess.ControllerGrip(0)
	as.saved = savedState{
		background:      s.Background(),
		hotspotsVisible: s.HotspotsVisible(),
		environment:     env,
	}
	as.saved.rootPosition[0], as.saved.rootPosition[1], as.saved.rootPosition[2] = root.Position()
	if as.model != nil {
		as.saved.modelPosition, as.saved.modelScale, as.saved.modelRotation = as.model.TransformData()
	}

	c.panel.SetVisible(false)
	s.SetHotspotsVisibility(false)
	s.QueueRender()
	s.SetBackground(scene.BlackBackground)

	root.Add(c.panel)
	if as.controller != nil {
		root.Add(as.controller)
	}
	if as.grip != nil {
		root.Add(as.grip)
	}
	if as.model != nil {
		x, y, _ := as.model.Position()
		as.model.SetPosition(x, y, -c.tuning.ModelDistance)
	}

	c.state = StateActive
	c.active = as
	c.rotationSpeed = 0
	c.highlighted = nil
	c.metrics.sessionStarted()
	return true
}

// connect wires up an input source. Sources with an unsupported target-ray mode are ignored.
func (c *controllerImpl) connect(as *activeSession, src InputSource) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != as || c.state != StateActive {
		return
	}
	c.metrics.inputSourceConnected(string(src.TargetRayMode))

	visual := panel.BuildInputRayVisual(src.TargetRayMode)
	if visual == nil {
		logger.Debug("ignoring input source", "session", as.session.ID(), "mode", src.TargetRayMode)
		return
	}
	if src.TargetRayMode == input.TargetRayGaze {
		c.panel.SetVisible(true)
	}

	ray := &inputRay{mode: src.TargetRayMode, visual: visual}
	if visual.Name() == panel.LineName {
		ray.line = visual
	}
	if as.controller != nil {
		as.controller.Add(visual)
	}
	if src.Gamepad != nil {
		ray.adapter = input.NewAdapter(src.Gamepad)
		c.wireAdapter(as, ray.adapter)
	}
	as.rays = append(as.rays, ray)
	logger.Debug("input source connected", "session", as.session.ID(), "mode", src.TargetRayMode, "handedness", src.Handedness)
}

// wireAdapter maps gamepad events onto the model. Adapters are only updated from inside the
// frame update, which holds c.mu.
func (c *controllerImpl) wireAdapter(as *activeSession, a input.Adapter) {
	a.OnButtonPressed(func(index int) {
		switch index {
		case buttonZoomIn:
			c.zoomLocked(as, c.tuning.ButtonZoomStep)
		case buttonZoomOut:
			c.zoomLocked(as, -c.tuning.ButtonZoomStep)
		}
	})
	a.OnAxesChanged(func(x, y float32) {
		c.rotateLocked(as, y*c.tuning.AxisRotationFactor, x*c.tuning.AxisRotationFactor)
	})
}

func (c *controllerImpl) StopPresenting() error {
	c.mu.Lock()
	as := c.active
	active := as != nil && c.state == StateActive
	c.mu.Unlock()
	if !active {
		return nil
	}

	if err := as.session.End(); err != nil {
		logger.Warn("platform failed to end session, restoring scene anyway", "session", as.session.ID(), "err", err)
		c.end(as)
		return &SessionError{Op: "stop presenting", Session: as.session.ID(), Cause: err}
	}
	return nil
}

func (c *controllerImpl) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *controllerImpl) IsPresenting() bool {
	return c.State() == StateActive
}

func (c *controllerImpl) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return nil
	}
	return c.active.session
}

func (c *controllerImpl) RotationSpeed() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rotationSpeed
}

func (c *controllerImpl) Highlighted() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.highlighted))
	for _, n := range c.highlighted {
		names = append(names, n.Name())
	}
	return names
}

func (c *controllerImpl) Panel() node.Node {
	return c.panel
}
