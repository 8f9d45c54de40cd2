package desktop

import "github.com/Carmen-Shannon/oxy-xr/common"

// PlatformBuilderOption is a functional option for configuring a Platform via NewPlatform.
type PlatformBuilderOption func(*platform)

// WithJoystick selects the joystick slot that acts as the tracked controller. Defaults to 0.
//
// Parameters:
//   - id: the joystick slot
//
// Returns:
//   - PlatformBuilderOption: functional option to set the joystick slot
func WithJoystick(id int) PlatformBuilderOption {
	return func(p *platform) {
		p.joystick = id
	}
}

// WithMoveStep sets how far the viewer walks per frame while a movement key is held.
//
// Parameters:
//   - step: the distance per frame
//
// Returns:
//   - PlatformBuilderOption: functional option to set the move step
func WithMoveStep(step float32) PlatformBuilderOption {
	return func(p *platform) {
		p.moveStep = step
	}
}

// WithTurnStep sets how far the viewer turns per frame, in radians, while an arrow key is held.
//
// Parameters:
//   - step: the angle per frame
//
// Returns:
//   - PlatformBuilderOption: functional option to set the turn step
func WithTurnStep(step float32) PlatformBuilderOption {
	return func(p *platform) {
		p.turnStep = step
	}
}

// WithEyeHeight sets the viewer's starting height. Defaults to 1.6.
func WithEyeHeight(height float32) PlatformBuilderOption {
	return func(p *platform) {
		p.eyeHeight = height
	}
}

// WithHandOffset sets where the emulated controller sits relative to the viewer's head.
func WithHandOffset(offset common.Vec3) PlatformBuilderOption {
	return func(p *platform) {
		p.handOffset = offset
	}
}

// WithIdleEscape sets the function called when Escape is pressed with no session running,
// typically closing the window.
//
// Parameters:
//   - fn: the function to call
//
// Returns:
//   - PlatformBuilderOption: functional option to set the idle escape handler
func WithIdleEscape(fn func()) PlatformBuilderOption {
	return func(p *platform) {
		p.onIdleEscape = fn
	}
}
