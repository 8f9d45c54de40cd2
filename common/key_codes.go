package common

// Virtual key codes for the desktop session's keyboard-driven viewer pose.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyW     = 87  // W key (ASCII)
	KeyA     = 65  // A key (ASCII)
	KeyS     = 83  // S key (ASCII)
	KeyD     = 68  // D key (ASCII)
	KeyQ     = 81  // Q key (ASCII)
	KeyE     = 69  // E key (ASCII)
	KeyX     = 88  // X key (ASCII)
	KeySpace = 32  // Spacebar (ASCII)
	KeyEsc   = 256 // Escape key (GLFW)

	KeyRight = 262 // Right arrow (GLFW)
	KeyLeft  = 263 // Left arrow (GLFW)
	KeyDown  = 264 // Down arrow (GLFW)
	KeyUp    = 265 // Up arrow (GLFW)
)

// Gamepad button and axis indices for the standard controller layout reported by the
// immersive platform (trigger, squeeze, touchpad, thumbstick, then face buttons A/B).
const (
	ButtonTrigger    = 0
	ButtonSqueeze    = 1
	ButtonTouchpad   = 2
	ButtonThumbstick = 3
	ButtonA          = 4 // zoom out
	ButtonB          = 5 // zoom in

	AxisTouchpadX   = 0
	AxisTouchpadY   = 1
	AxisThumbstickX = 2
	AxisThumbstickY = 3
)
