package immersive

import (
	"slices"
	"time"

	"github.com/Carmen-Shannon/oxy-xr/common"
	"github.com/Carmen-Shannon/oxy-xr/engine/loop"
	"github.com/Carmen-Shannon/oxy-xr/engine/node"
	"github.com/Carmen-Shannon/oxy-xr/engine/panel"
	"github.com/Carmen-Shannon/oxy-xr/engine/raycaster"
	"github.com/Carmen-Shannon/oxy-xr/internal/logger"
)

// Gamepad buttons that zoom the model while held.
const (
	buttonZoomIn  = common.ButtonB
	buttonZoomOut = common.ButtonA
)

// onFrame is the frame loop callback while as is presenting. A panic is logged and the frame
// dropped so the loop keeps running.
func (c *controllerImpl) onFrame(as *activeSession, f loop.Frame) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("immersive frame panicked", "session", as.session.ID(), "frame", f.Number, "panic", r)
		}
	}()

	if !c.update(as) {
		return
	}

	if c.renderer != nil {
		if err := c.renderer.Render(as.scene, as.scene.Camera()); err != nil {
			logger.Debug("immersive render failed", "session", as.session.ID(), "frame", f.Number, "err", err)
		}
	}
	c.metrics.frameHandled(time.Since(start))
}

// update runs the raycast and dispatch step for one frame.
//
// Returns:
//   - bool: false if as is no longer the active session
func (c *controllerImpl) update(as *activeSession) bool {
	// Read before locking: a platform may connect input sources from inside ViewerPose.
	pose, tracked := as.session.ViewerPose()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != as || c.state != StateActive {
		return false
	}

	if tracked {
		as.scene.Camera().SetSessionTransform(pose)
	}

	// Every ray hangs off controller 0, so one cast serves all of them.
	var current []node.Node
	var nearest raycaster.Intersection
	hit := false
	if len(as.rays) > 0 {
		nearest, hit = c.cast(as)
	}
	length := c.tuning.FarRayLength
	if hit {
		length = nearest.Distance
	}
	for _, ray := range as.rays {
		if ray.line != nil {
			sx, sy, _ := ray.line.Scale()
			ray.line.SetScale(sx, sy, length)
		}
	}

	if hit {
		surface := nearest.Object
		if m := surface.Material(); m != nil {
			m.SetHighlighted(true)
		}
		current = append(current, surface)
		c.dispatchLocked(as, surface.Name())
		c.metrics.surfaceHit(surface.Name())
		c.rotationSpeed = min(c.rotationSpeed+c.tuning.RotationStep, c.tuning.MaxRotationSpeed)
	} else {
		c.rotationSpeed = 0
	}

	for _, n := range c.highlighted {
		if slices.Contains(current, n) {
			continue
		}
		if m := n.Material(); m != nil {
			m.SetHighlighted(false)
		}
	}
	c.highlighted = current

	for _, ray := range as.rays {
		if ray.adapter != nil {
			ray.adapter.Update()
		}
	}
	return true
}

// cast points the raycaster along the session's controller and returns the nearest panel
// surface it hits.
func (c *controllerImpl) cast(as *activeSession) (raycaster.Intersection, bool) {
	if as.controller == nil {
		return raycaster.Intersection{}, false
	}
	c.raycaster.SetFromMatrix(as.controller.WorldMatrix())
	hits := c.raycaster.IntersectObjects(c.panel.Children(), true)
	if len(hits) == 0 {
		return raycaster.Intersection{}, false
	}
	return hits[0], true
}

// dispatchLocked applies the action of the surface named name to the model.
func (c *controllerImpl) dispatchLocked(as *activeSession, name string) {
	switch name {
	case panel.SurfaceLeft:
		c.rotateLocked(as, 0, c.rotationSpeed)
	case panel.SurfaceRight:
		c.rotateLocked(as, 0, -c.rotationSpeed)
	case panel.SurfaceTop:
		c.rotateLocked(as, -c.rotationSpeed, 0)
	case panel.SurfaceBottom:
		c.rotateLocked(as, c.rotationSpeed, 0)
	case panel.SurfaceZoomIn:
		c.zoomLocked(as, c.tuning.ZoomStep)
	case panel.SurfaceZoomOut:
		c.zoomLocked(as, -c.tuning.ZoomStep)
	}
}

// rotateLocked adds pitch and yaw to the model's rotation, wrapping both into [-π, π].
func (c *controllerImpl) rotateLocked(as *activeSession, pitch, yaw float32) {
	if as.model == nil || (pitch == 0 && yaw == 0) {
		return
	}
	rx, ry, rz := as.model.Rotation()
	as.model.SetRotation(common.WrapAngle(rx+pitch), common.WrapAngle(ry+yaw), rz)
}

// zoomLocked adds delta to every scale axis of the model, clamped to the scale bounds.
// Zooming further in at the maximum, or further out at the minimum, does nothing.
func (c *controllerImpl) zoomLocked(as *activeSession, delta float32) {
	if as.model == nil || delta == 0 {
		return
	}
	lo, hi := c.tuning.MinScale, c.tuning.MaxScale
	sx, sy, sz := as.model.Scale()
	if (delta > 0 && sx >= hi) || (delta < 0 && sx <= lo) {
		return
	}
	as.model.SetScale(
		common.Clamp(sx+delta, lo, hi),
		common.Clamp(sy+delta, lo, hi),
		common.Clamp(sz+delta, lo, hi),
	)
}
