package raycaster

// RaycasterBuilderOption is a functional option for configuring a Raycaster during construction.
type RaycasterBuilderOption func(*raycasterImpl)

// WithRange limits hits to distances in [near, far].
//
// Parameters:
//   - near: the minimum hit distance
//   - far: the maximum hit distance
//
// Returns:
//   - RaycasterBuilderOption: functional option to set the hit range
func WithRange(near, far float32) RaycasterBuilderOption {
	return func(r *raycasterImpl) {
		r.near = near
		r.far = far
	}
}

// WithVisibleOnly skips hidden nodes and their subtrees.
//
// Parameters:
//   - visibleOnly: true to ignore hidden nodes
//
// Returns:
//   - RaycasterBuilderOption: functional option to set visibility filtering
func WithVisibleOnly(visibleOnly bool) RaycasterBuilderOption {
	return func(r *raycasterImpl) {
		r.visibleOnly = visibleOnly
	}
}
