// Package viewer is the model viewer element: it owns a scene with one displayed model, loads
// that model in the background, and lends the scene to an immersive controller on activation.
// The viewer is the immersive.Host that restores its own presentation after a session ends.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/Carmen-Shannon/oxy-xr/engine/camera"
	"github.com/Carmen-Shannon/oxy-xr/engine/immersive"
	"github.com/Carmen-Shannon/oxy-xr/engine/loader"
	"github.com/Carmen-Shannon/oxy-xr/engine/node"
	"github.com/Carmen-Shannon/oxy-xr/engine/scene"
	"github.com/Carmen-Shannon/oxy-xr/internal/logger"
)

// NeutralEnvironment is the built-in lighting environment. It and the empty name are always valid.
const NeutralEnvironment = "neutral"

var (
	// ErrNoSource is returned when waiting for a load before any source was set.
	ErrNoSource = errors.New("no model source set")
	// ErrUnknownEnvironment is returned for environment or skybox names the viewer does not know.
	ErrUnknownEnvironment = errors.New("unknown environment")
	// ErrNoImmersive is returned by Activate before AttachImmersive.
	ErrNoImmersive = errors.New("no immersive controller attached")
)

// SurfaceSize reports the drawable size in pixels, typically a window.
type SurfaceSize interface {
	Width() int
	Height() int
}

// Resizer reacts to a new drawable size, typically a renderer.
type Resizer interface {
	Resize(width, height int)
}

type viewer struct {
	mu *sync.Mutex

	scene  scene.Scene
	loader loader.Loader

	pool    worker.DynamicWorkerPool
	workers int
	taskID  atomic.Int64

	source     string
	load       *loadState
	sourced    chan struct{}
	sourceOnce sync.Once

	attrs        immersive.EnvironmentAttributes
	environments map[string]bool

	size    SurfaceSize
	resizer Resizer

	cameraListeners []func()

	immersive immersive.Controller
}

// loadState tracks one SetSource call. done closes when the load finishes.
type loadState struct {
	source string
	done   chan struct{}
	model  node.Node
	err    error
}

// Viewer displays one model and presents it in immersive sessions on request.
type Viewer interface {
	immersive.Host

	// Scene returns the scene the viewer draws.
	//
	// Returns:
	//   - scene.Scene: the owned scene
	Scene() scene.Scene

	// SetSource starts loading a model in the background. The previous model stays on screen
	// until the new one finishes; a load superseded by a later SetSource is discarded.
	//
	// Parameters:
	//   - source: a model file path or a loader.BuiltinPrefix primitive
	SetSource(source string)

	// Source returns the source of the most recent SetSource call.
	Source() string

	// Loaded reports whether the most recent load finished successfully.
	Loaded() bool

	// WaitLoaded blocks until the most recent load finishes.
	//
	// Parameters:
	//   - ctx: cancels the wait
	//
	// Returns:
	//   - error: the load error, ErrNoSource, or ctx.Err()
	WaitLoaded(ctx context.Context) error

	// SetEnvironmentAttributes sets the configured environment and skybox and applies them.
	// These are the values an immersive session restores when it ends.
	//
	// Parameters:
	//   - environment: the environment map name
	//   - skybox: the skybox image name
	//
	// Returns:
	//   - error: ErrUnknownEnvironment for names the viewer does not know
	SetEnvironmentAttributes(environment, skybox string) error

	// OnCameraChange registers a listener for camera-change notifications.
	//
	// Parameters:
	//   - callback: called after each camera change
	OnCameraChange(callback func())

	// AttachImmersive creates the immersive controller that Activate presents through.
	// A previous controller is replaced.
	//
	// Parameters:
	//   - platform: grants immersive sessions
	//   - loop: the frame loop the session renders on
	//   - options: controller options
	//
	// Returns:
	//   - immersive.Controller: the new controller
	AttachImmersive(platform immersive.Platform, loop immersive.FrameLoop, options ...immersive.ControllerBuilderOption) immersive.Controller

	// Immersive returns the attached controller, or nil.
	Immersive() immersive.Controller

	// Activate waits for a source to be set and loaded, then presents the scene immersively.
	// A load that already failed is issued again before waiting. There is no timeout beyond ctx.
	//
	// Parameters:
	//   - ctx: cancels the wait and the session request
	//
	// Returns:
	//   - error: a *immersive.SessionError wrapping ErrLoadNeverCompleted if the load failed,
	//     ErrNoImmersive, or the Present error
	Activate(ctx context.Context) error
}

var _ Viewer = &viewer{}

// NewViewer creates a Viewer with an orbiting camera and an empty scene.
//
// Parameters:
//   - options: functional options to configure the viewer
//
// Returns:
//   - Viewer: the new viewer
func NewViewer(options ...ViewerBuilderOption) Viewer {
	v := &viewer{
		mu:           &sync.Mutex{},
		workers:      2,
		environments: make(map[string]bool),
		sourced:      make(chan struct{}),
	}
	for _, option := range options {
		option(v)
	}
	if v.loader == nil {
		v.loader = loader.NewLoader()
	}
	if v.scene == nil {
		cam := camera.NewCamera(camera.WithController(camera.NewOrbitController()))
		v.scene = scene.NewScene("viewer", cam)
	}
	v.pool = worker.NewDynamicWorkerPool(v.workers, 256, 1*time.Second)
	v.applyEnvironment(v.attrs.Environment, v.attrs.Skybox)
	return v
}

func (v *viewer) Scene() scene.Scene {
	return v.scene
}

func (v *viewer) SetSource(source string) {
	state := &loadState{source: source, done: make(chan struct{})}

	v.mu.Lock()
	v.source = source
	v.load = state
	v.mu.Unlock()
	v.sourceOnce.Do(func() { close(v.sourced) })

	v.pool.SubmitTask(worker.Task{
		ID: int(v.taskID.Add(1)),
		Do: func() (any, error) {
			defer close(state.done)
			model, err := v.loader.Load(context.Background(), source)
			state.model, state.err = model, err
			if err != nil {
				logger.Warn("model load failed", "source", source, "err", err)
				return nil, err
			}
			v.install(state)
			return model, nil
		},
	})
}

// install swaps the loaded model into the scene unless a newer SetSource superseded it.
func (v *viewer) install(state *loadState) {
	v.mu.Lock()
	current := v.load == state
	v.mu.Unlock()
	if !current {
		logger.Debug("discarding superseded model", "source", state.source)
		return
	}

	if old := v.scene.Target(); old != nil && old.Parent() != nil {
		old.Parent().Remove(old)
	}
	v.scene.Add(node.NewGroup(scene.TargetName, node.WithChildren(state.model)))
	v.scene.QueueRender()
	logger.Info("model loaded", "source", state.source)
}

func (v *viewer) Source() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.source
}

func (v *viewer) Loaded() bool {
	v.mu.Lock()
	state := v.load
	v.mu.Unlock()
	if state == nil {
		return false
	}
	select {
	case <-state.done:
		return state.err == nil
	default:
		return false
	}
}

// failedLoad reports the source of the current load when that load finished with an error.
func (v *viewer) failedLoad() (string, bool) {
	v.mu.Lock()
	state := v.load
	v.mu.Unlock()
	if state == nil {
		return "", false
	}
	select {
	case <-state.done:
		return state.source, state.err != nil
	default:
		return "", false
	}
}

func (v *viewer) WaitLoaded(ctx context.Context) error {
	v.mu.Lock()
	state := v.load
	v.mu.Unlock()
	if state == nil {
		return ErrNoSource
	}
	select {
	case <-state.done:
		return state.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (v *viewer) AttachImmersive(platform immersive.Platform, loop immersive.FrameLoop, options ...immersive.ControllerBuilderOption) immersive.Controller {
	ctrl := immersive.NewController(platform, loop, v, options...)
	v.mu.Lock()
	v.immersive = ctrl
	v.mu.Unlock()
	return ctrl
}

func (v *viewer) Immersive() immersive.Controller {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.immersive
}

func (v *viewer) Activate(ctx context.Context) error {
	select {
	case <-v.sourced:
	case <-ctx.Done():
		return ctx.Err()
	}
	if source, failed := v.failedLoad(); failed {
		logger.Info("retrying model load", "source", source)
		v.SetSource(source)
	}
	if err := v.WaitLoaded(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &immersive.SessionError{
			Op:    "activate",
			Cause: fmt.Errorf("%w: %w", immersive.ErrLoadNeverCompleted, err),
		}
	}

	ctrl := v.Immersive()
	if ctrl == nil {
		return ErrNoImmersive
	}
	return ctrl.Present(ctx, v.scene)
}

func (v *viewer) SetEnvironmentAttributes(environment, skybox string) error {
	if err := v.validate(environment, skybox); err != nil {
		return err
	}
	v.mu.Lock()
	v.attrs = immersive.EnvironmentAttributes{Environment: environment, Skybox: skybox}
	v.mu.Unlock()
	return v.SetEnvironmentAndBackground(environment, skybox)
}

func (v *viewer) EnvironmentAttributes() immersive.EnvironmentAttributes {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.attrs
}

func (v *viewer) SetEnvironmentAndBackground(environment, skybox string) error {
	if err := v.validate(environment, skybox); err != nil {
		return err
	}
	v.applyEnvironment(environment, skybox)
	return nil
}

func (v *viewer) applyEnvironment(environment, skybox string) {
	v.scene.SetEnvironmentAndSkybox(environment, skybox)
	bg := v.scene.Background()
	bg.Skybox = skybox
	v.scene.SetBackground(bg)
}

func (v *viewer) validate(names ...string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.environments) == 0 {
		return nil
	}
	for _, name := range names {
		if name == "" || name == NeutralEnvironment || v.environments[name] {
			continue
		}
		return fmt.Errorf("%w: %q", ErrUnknownEnvironment, name)
	}
	return nil
}

func (v *viewer) RecomputeCameraAttributes() {
	cam := v.scene.Camera()
	if ctrl := cam.Controller(); ctrl != nil {
		ctrl.Resync()
	}
	cam.Update()
	v.scene.QueueRender()
}

func (v *viewer) RequestResize() {
	if v.size == nil {
		return
	}
	w, h := v.size.Width(), v.size.Height()
	if w <= 0 || h <= 0 {
		return
	}
	v.scene.Camera().SetAspect(float32(w) / float32(h))
	if v.resizer != nil {
		v.resizer.Resize(w, h)
	}
	v.scene.QueueRender()
}

func (v *viewer) OnCameraChange(callback func()) {
	if callback == nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cameraListeners = append(v.cameraListeners, callback)
}

func (v *viewer) DispatchCameraChange() {
	v.mu.Lock()
	listeners := slices.Clone(v.cameraListeners)
	v.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}
