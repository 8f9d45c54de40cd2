package immersive

import (
	"fmt"
	"time"

	"github.com/Carmen-Shannon/oxy-xr/internal/logger"
)

// end tears as down exactly once, whichever of the platform and StopPresenting gets there first.
func (c *controllerImpl) end(as *activeSession) {
	as.endOnce.Do(func() { c.teardown(as) })
}

// teardown gives the scene back. Every step runs even if an earlier one fails; failures are
// logged.
func (c *controllerImpl) teardown(as *activeSession) {
	c.mu.Lock()
	as.ended = true
	if c.active != as {
		c.mu.Unlock()
		return
	}
	c.state = StateEnding
	for _, n := range c.highlighted {
		if m := n.Material(); m != nil {
			m.SetHighlighted(false)
		}
	}
	c.highlighted = nil
	c.rotationSpeed = 0
	rays := as.rays
	c.mu.Unlock()

	log := logger.With("session", as.session.ID())
	run := func(op string, fn func() error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("teardown step panicked", "op", op, "panic", r)
			}
		}()
		if err := fn(); err != nil {
			log.Warn("teardown step failed", "op", op, "err", err)
		}
	}

	s := as.scene
	saved := as.saved

	run("release frame loop", func() error {
		c.loop.SetFrameCallback(nil)
		return nil
	})
	run("detach panel", func() error {
		root := s.Root()
		root.Remove(c.panel)
		c.panel.SetVisible(false)
		if as.controller != nil {
			for _, ray := range rays {
				as.controller.Remove(ray.visual)
			}
		}
		root.Remove(as.controller, as.grip)
		return nil
	})
	run("restore root position", func() error {
		s.Root().SetPosition(saved.rootPosition[0], saved.rootPosition[1], saved.rootPosition[2])
		return nil
	})
	run("restore background", func() error {
		s.SetBackground(saved.background)
		s.SetHotspotsVisibility(saved.hotspotsVisible)
		return nil
	})
	run("restore model", func() error {
		if as.model == nil {
			return nil
		}
		p, sc, r := saved.modelPosition, saved.modelScale, saved.modelRotation
		as.model.SetPosition(p[0], p[1], p[2])
		as.model.SetScale(sc[0], sc[1], sc[2])
		as.model.SetRotation(r[0], r[1], r[2])
		return nil
	})
	run("restore environment", func() error {
		if err := c.host.SetEnvironmentAndBackground(saved.environment.Environment, saved.environment.Skybox); err != nil {
			return fmt.Errorf("failed to restore environment %q: %w", saved.environment.Environment, err)
		}
		return nil
	})
	run("unlink camera", func() error {
		s.Camera().ClearSessionTransform()
		return nil
	})
	run("update hotspots", func() error {
		s.UpdateHotspots()
		return nil
	})
	run("recompute camera", func() error {
		c.host.RecomputeCameraAttributes()
		return nil
	})
	run("request resize", func() error {
		c.host.RequestResize()
		return nil
	})
	run("schedule camera change", func() error {
		c.loop.AfterNextTick(c.host.DispatchCameraChange)
		return nil
	})
	s.QueueRender()

	c.mu.Lock()
	c.active = nil
	c.state = StateIdle
	c.mu.Unlock()

	c.metrics.sessionEnded(time.Since(as.started))
	log.Info("immersive session ended")
}
