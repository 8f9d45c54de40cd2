package renderer

// RendererBuilderOption configures a renderer before NewRenderer creates its backend.
type RendererBuilderOption func(*renderer)

// WithPresentMode picks between waiting for vertical blank and presenting immediately.
//
// Parameters:
//   - mode: PresentModeVSync (default) or PresentModeUncapped
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresentMode = &mode
	}
}

// WithMSAA sets the sample count of the colour target. Defaults to MSAA4x.
//
// Parameters:
//   - count: MSAAOff or MSAA4x
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingMSAA = &count
	}
}

// WithForceSoftwareRenderer requests the fallback (CPU) adapter, for machines without a usable
// GPU. A software Vulkan driver such as lavapipe must be installed.
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}
