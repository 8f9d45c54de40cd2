package input

import "slices"

// RawDevice is a gamepad-like input device that can be polled for its current state.
// Implementations must return fresh slices or slices the caller may read without locking.
type RawDevice interface {
	// Buttons returns the pressed flag of every button, indexed by button number.
	//
	// Returns:
	//   - []bool: the pressed flags
	Buttons() []bool

	// Axes returns the value of every analog axis, indexed by axis number, each in [-1, 1].
	//
	// Returns:
	//   - []float32: the axis values
	Axes() []float32
}

// JoystickSource provides polled joystick snapshots, typically a window that pumps the
// platform event loop.
type JoystickSource interface {
	// JoystickState returns the last polled state of joystick id.
	//
	// Parameters:
	//   - id: the joystick slot
	//
	// Returns:
	//   - buttons: the pressed flags
	//   - axes: the axis values
	//   - present: false if no joystick is connected in that slot
	JoystickState(id int) (buttons []bool, axes []float32, present bool)
}

// Snapshot is a fixed RawDevice state. It is handy for platforms that receive device state
// as values rather than handles, and for tests.
type Snapshot struct {
	Pressed []bool
	Values  []float32
}

var _ RawDevice = &Snapshot{}

func (s *Snapshot) Buttons() []bool {
	return s.Pressed
}

func (s *Snapshot) Axes() []float32 {
	return s.Values
}

type joystickDevice struct {
	source JoystickSource
	id     int
}

var _ RawDevice = &joystickDevice{}

// NewJoystickDevice wraps one joystick slot of a JoystickSource as a RawDevice.
// A disconnected joystick reports no buttons and no axes.
//
// Parameters:
//   - source: the joystick source to poll
//   - id: the joystick slot
//
// Returns:
//   - RawDevice: the device
func NewJoystickDevice(source JoystickSource, id int) RawDevice {
	if source == nil {
		panic("input: joystick source is required")
	}
	return &joystickDevice{source: source, id: id}
}

func (j *joystickDevice) Buttons() []bool {
	buttons, _, present := j.source.JoystickState(j.id)
	if !present {
		return nil
	}
	return slices.Clone(buttons)
}

func (j *joystickDevice) Axes() []float32 {
	_, axes, present := j.source.JoystickState(j.id)
	if !present {
		return nil
	}
	return slices.Clone(axes)
}

// TargetRayMode classifies how an input source points into the scene.
type TargetRayMode string

const (
	// TargetRayTrackedPointer is a handheld controller with its own tracked pointing ray.
	TargetRayTrackedPointer TargetRayMode = "tracked-pointer"
	// TargetRayGaze points along the viewer's head direction.
	TargetRayGaze TargetRayMode = "gaze"
	// TargetRayScreen is a screen tap projected into the scene. It is not supported for
	// interaction.
	TargetRayScreen TargetRayMode = "screen"
)
