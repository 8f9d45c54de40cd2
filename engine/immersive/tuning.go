package immersive

import "github.com/Carmen-Shannon/oxy-xr/common"

// Tuning holds the interaction constants of a Controller.
type Tuning struct {
	// RotationStep is added to the rotation speed every frame a panel surface is hit.
	RotationStep float32
	// MaxRotationSpeed caps the rotation speed, in radians per frame.
	MaxRotationSpeed float32
	// ZoomStep is the scale change per frame while a zoom surface is hit.
	ZoomStep float32
	// ButtonZoomStep is the scale change per frame while a zoom button is held.
	ButtonZoomStep float32
	// MinScale and MaxScale bound the model's scale.
	MinScale float32
	MaxScale float32
	// AxisRotationFactor converts thumbstick deflection into radians per frame.
	AxisRotationFactor float32
	// FarRayLength is the length of a pointer line that hits nothing.
	FarRayLength float32
	// ModelDistance is how far in front of the viewer the model is placed.
	ModelDistance float32
}

// DefaultTuning returns the stock interaction constants.
func DefaultTuning() Tuning {
	return Tuning{
		RotationStep:       0.0001,
		MaxRotationSpeed:   0.02,
		ZoomStep:           0.01,
		ButtonZoomStep:     0.1,
		MinScale:           0.3,
		MaxScale:           3,
		AxisRotationFactor: 0.1,
		FarRayLength:       5,
		ModelDistance:      5,
	}
}

// withDefaults fills zero fields from DefaultTuning.
func (t Tuning) withDefaults() Tuning {
	d := DefaultTuning()
	if t.RotationStep <= 0 {
		t.RotationStep = d.RotationStep
	}
	if t.MaxRotationSpeed <= 0 {
		t.MaxRotationSpeed = d.MaxRotationSpeed
	}
	if t.ZoomStep <= 0 {
		t.ZoomStep = d.ZoomStep
	}
	if t.ButtonZoomStep <= 0 {
		t.ButtonZoomStep = d.ButtonZoomStep
	}
	if t.MinScale <= 0 {
		t.MinScale = d.MinScale
	}
	if t.MaxScale <= t.MinScale {
		t.MaxScale = max(d.MaxScale, t.MinScale)
	}
	t.AxisRotationFactor = common.Coalesce(t.AxisRotationFactor, d.AxisRotationFactor)
	if t.FarRayLength <= 0 {
		t.FarRayLength = d.FarRayLength
	}
	if t.ModelDistance <= 0 {
		t.ModelDistance = d.ModelDistance
	}
	return t
}
