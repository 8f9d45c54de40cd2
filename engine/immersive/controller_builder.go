package immersive

import (
	"github.com/Carmen-Shannon/oxy-xr/engine/panel"
	"github.com/Carmen-Shannon/oxy-xr/engine/raycaster"
)

// ControllerBuilderOption is a functional option for configuring a Controller.
type ControllerBuilderOption func(*controllerImpl)

// WithRenderer sets the renderer that draws each presented frame. Without one the controller
// still updates the scene but draws nothing.
//
// Parameters:
//   - r: the renderer
//
// Returns:
//   - ControllerBuilderOption: option function to apply
func WithRenderer(r Renderer) ControllerBuilderOption {
	return func(c *controllerImpl) {
		c.renderer = r
	}
}

// WithTuning replaces the interaction constants. Zero fields keep their defaults.
//
// Parameters:
//   - t: the tuning
//
// Returns:
//   - ControllerBuilderOption: option function to apply
func WithTuning(t Tuning) ControllerBuilderOption {
	return func(c *controllerImpl) {
		c.tuning = t
	}
}

// WithMetrics sets the collectors the controller records into. Pass nil to record nothing.
//
// Parameters:
//   - m: the metrics
//
// Returns:
//   - ControllerBuilderOption: option function to apply
func WithMetrics(m *Metrics) ControllerBuilderOption {
	return func(c *controllerImpl) {
		c.metrics = m
	}
}

// WithRaycaster replaces the raycaster used to hit-test the control panel.
//
// Parameters:
//   - r: the raycaster
//
// Returns:
//   - ControllerBuilderOption: option function to apply
func WithRaycaster(r raycaster.Raycaster) ControllerBuilderOption {
	return func(c *controllerImpl) {
		if r != nil {
			c.raycaster = r
		}
	}
}

// WithPanelOptions passes options through to the control panel builder.
func WithPanelOptions(options ...panel.BuilderOption) ControllerBuilderOption {
	return func(c *controllerImpl) {
		c.panelOptions = append(c.panelOptions, options...)
	}
}
