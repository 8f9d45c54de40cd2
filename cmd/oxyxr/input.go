package main

import (
	"github.com/Carmen-Shannon/oxy-xr/engine/immersive"
	"github.com/Carmen-Shannon/oxy-xr/engine/viewer"
)

// pixelsPerOrbitStep converts a mouse drag into orbit controller steps.
const pixelsPerOrbitStep = 10

// orbitInput is the part of a window that drives the orbit camera.
type orbitInput interface {
	SetMiddleMouseDownCallback(callback func(x, y int32))
	SetMiddleMouseUpCallback(callback func(x, y int32))
	SetMouseMoveCallback(callback func(x, y int32))
	SetScrollCallback(callback func(delta float32))
}

// bindOrbitInput orbits the viewer camera on a middle-mouse drag and zooms it on scroll. Input
// is ignored while an immersive session owns the camera.
func bindOrbitInput(w orbitInput, v viewer.Viewer) {
	var dragging bool
	var lastX, lastY int32

	orbiting := func() bool {
		ctrl := v.Immersive()
		return ctrl == nil || ctrl.State() == immersive.StateIdle
	}
	changed := func() {
		v.RecomputeCameraAttributes()
		v.DispatchCameraChange()
	}

	w.SetMiddleMouseDownCallback(func(x, y int32) {
		dragging = true
		lastX, lastY = x, y
	})
	w.SetMiddleMouseUpCallback(func(_, _ int32) {
		dragging = false
	})
	w.SetMouseMoveCallback(func(x, y int32) {
		if !dragging {
			return
		}
		dx, dy := x-lastX, y-lastY
		lastX, lastY = x, y
		if !orbiting() {
			return
		}
		cam := v.Scene().Camera().Controller()
		if cam == nil {
			return
		}
		cam.Orbit(-float32(dx)/pixelsPerOrbitStep, float32(dy)/pixelsPerOrbitStep)
		changed()
	})
	w.SetScrollCallback(func(delta float32) {
		if !orbiting() {
			return
		}
		cam := v.Scene().Camera().Controller()
		if cam == nil {
			return
		}
		cam.Zoom(delta)
		changed()
	})
}
