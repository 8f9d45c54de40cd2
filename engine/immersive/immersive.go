// Package immersive presents a scene through a head-mounted display session.
//
// A Controller asks a Platform for a session, takes over the scene for the session's duration
// and drives a control panel of six surfaces from the connected input sources: pointing at an
// arrow rotates the displayed model, pointing at a zoom surface scales it. When the session ends
// the scene is put back the way it was found.
package immersive

import (
	"context"

	"github.com/Carmen-Shannon/oxy-xr/engine/camera"
	"github.com/Carmen-Shannon/oxy-xr/engine/input"
	"github.com/Carmen-Shannon/oxy-xr/engine/loop"
	"github.com/Carmen-Shannon/oxy-xr/engine/node"
	"github.com/Carmen-Shannon/oxy-xr/engine/scene"
)

// Mode is the kind of session requested from the platform.
type Mode string

// ModeImmersiveVR takes over the display with a fully virtual view.
const ModeImmersiveVR Mode = "immersive-vr"

// ReferenceSpace is the coordinate frame in which the platform reports poses.
type ReferenceSpace string

// ReferenceSpaceLocal places the origin at the viewer's position when the session started.
const ReferenceSpaceLocal ReferenceSpace = "local"

// State is the lifecycle state of a Controller.
type State int

const (
	// StateIdle means no session exists and Present may be called.
	StateIdle State = iota
	// StateRequesting means a session request is in flight.
	StateRequesting
	// StateActive means a session is presenting and frames are being handled.
	StateActive
	// StateEnding means the session ended and the scene is being restored.
	StateEnding
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateActive:
		return "active"
	case StateEnding:
		return "ending"
	}
	return "unknown"
}

// InputSource describes an input device that connected to a session.
type InputSource struct {
	// TargetRayMode tells how the source points into the scene.
	TargetRayMode input.TargetRayMode
	// Handedness is "left", "right" or empty when unknown.
	Handedness string
	// Gamepad is the device's button and axis state, or nil if it has none.
	Gamepad input.RawDevice
}

// Session is a live immersive presentation handed out by a Platform.
type Session interface {
	// ID returns an identifier for logs and metrics.
	ID() string

	// ReferenceSpace returns the frame in which poses are reported.
	ReferenceSpace() ReferenceSpace

	// Controller returns the node that follows the target ray of input source index, or nil.
	// Only index 0 is supported.
	//
	// Parameters:
	//   - index: the input source index
	//
	// Returns:
	//   - node.Node: the target-ray node or nil
	Controller(index int) node.Node

	// ControllerGrip returns the node that follows the grip pose of input source index, or nil.
	// Only index 0 is supported.
	//
	// Parameters:
	//   - index: the input source index
	//
	// Returns:
	//   - node.Node: the grip node or nil
	ControllerGrip(index int) node.Node

	// OnInputSourceConnected registers a listener called once per input source as it connects.
	//
	// Parameters:
	//   - callback: function receiving the connected source
	OnInputSourceConnected(callback func(src InputSource))

	// OnEnd registers a listener called at most once when the session ends for any reason.
	// Registering on a session that has already ended calls callback immediately.
	//
	// Parameters:
	//   - callback: function to call
	OnEnd(callback func())

	// ViewerPose returns the viewer's current world transform.
	//
	// Returns:
	//   - [16]float32: the column-major viewer transform
	//   - bool: false if the pose is not tracked right now
	ViewerPose() ([16]float32, bool)

	// End asks the platform to end the session. The end listeners fire once the session is over.
	//
	// Returns:
	//   - error: error if the platform could not end the session
	End() error
}

// Platform hands out immersive sessions.
type Platform interface {
	// RequestSession asks for a new session. It blocks until the platform grants or refuses it,
	// or ctx is done.
	//
	// Parameters:
	//   - ctx: the request context
	//   - mode: the session mode
	//   - space: the reference space for poses
	//
	// Returns:
	//   - Session: the granted session
	//   - error: error if the session was refused
	RequestSession(ctx context.Context, mode Mode, space ReferenceSpace) (Session, error)
}

// FrameLoop is the render loop that drives a presenting Controller. engine.Engine satisfies it.
type FrameLoop interface {
	// SetFrameCallback hands every frame to callback instead of the loop's own scene rendering.
	// Pass nil to go back to normal rendering.
	SetFrameCallback(callback func(loop.Frame))

	// NextTick blocks until the loop completes one full iteration.
	NextTick(ctx context.Context) error

	// AfterNextTick runs fn once after the next loop iteration completes.
	AfterNextTick(fn func())
}

// Renderer draws a scene from a camera's point of view.
type Renderer interface {
	Render(s scene.Scene, cam camera.Camera) error
}

// EnvironmentAttributes are the environment map and skybox the host was configured with.
type EnvironmentAttributes struct {
	Environment string
	Skybox      string
}

// Host is the viewer that owns the scene outside of a session. The controller calls back into
// it while restoring the scene.
type Host interface {
	// EnvironmentAttributes returns the environment settings the host is configured with.
	EnvironmentAttributes() EnvironmentAttributes

	// SetEnvironmentAndBackground re-applies an environment map and skybox to the scene.
	//
	// Parameters:
	//   - environment: the environment map
	//   - skybox: the skybox image
	//
	// Returns:
	//   - error: error if the environment could not be applied
	SetEnvironmentAndBackground(environment, skybox string) error

	// RecomputeCameraAttributes re-derives the orbit and target from the current camera.
	RecomputeCameraAttributes()

	// RequestResize asks for the viewport to be measured again.
	RequestResize()

	// DispatchCameraChange notifies camera-change listeners.
	DispatchCameraChange()
}
