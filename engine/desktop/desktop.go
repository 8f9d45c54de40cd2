// Package desktop emulates an immersive platform on a desktop window. Joystick 0 stands in for
// a tracked controller and the keyboard moves the viewer's head: W/S walk, A/D strafe, arrow
// keys look around and Escape ends the session.
package desktop

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Carmen-Shannon/oxy-xr/common"
	"github.com/Carmen-Shannon/oxy-xr/engine/immersive"
	"github.com/Carmen-Shannon/oxy-xr/engine/input"
	"github.com/Carmen-Shannon/oxy-xr/internal/logger"
)

var (
	// ErrUnsupportedMode is returned for session modes other than immersive VR.
	ErrUnsupportedMode = errors.New("unsupported session mode")
	// ErrUnsupportedSpace is returned for reference spaces other than local.
	ErrUnsupportedSpace = errors.New("unsupported reference space")
	// ErrSessionActive is returned when a session is requested while another one runs.
	ErrSessionActive = errors.New("a session is already active")
)

// Window is the part of a desktop window the platform needs. window.Window satisfies it.
type Window interface {
	input.JoystickSource

	SetKeyDownCallback(callback func(keyCode uint32))
	SetKeyUpCallback(callback func(keyCode uint32))
}

type platform struct {
	mu *sync.Mutex

	window   Window
	joystick int

	moveStep   float32
	turnStep   float32
	eyeHeight  float32
	handOffset common.Vec3

	onIdleEscape func()

	active *session
}

// Platform is an immersive.Platform backed by a desktop window.
type Platform interface {
	immersive.Platform

	// Active returns the running session, or nil.
	//
	// Returns:
	//   - immersive.Session: the running session or nil
	Active() immersive.Session
}

var _ Platform = &platform{}

// NewPlatform creates a desktop platform and takes over the window's key callbacks.
// Panics if w is nil.
//
// Parameters:
//   - w: the window providing keys and joysticks
//   - options: functional options to configure the platform
//
// Returns:
//   - Platform: the new platform
func NewPlatform(w Window, options ...PlatformBuilderOption) Platform {
	if w == nil {
		panic("desktop: window is required")
	}
	p := &platform{
		mu:         &sync.Mutex{},
		window:     w,
		moveStep:   0.02,
		turnStep:   0.02,
		eyeHeight:  1.6,
		handOffset: common.Vec3{0.2, -0.35, -0.3},
	}
	for _, option := range options {
		option(p)
	}
	w.SetKeyDownCallback(p.keyDown)
	w.SetKeyUpCallback(p.keyUp)
	return p
}

func (p *platform) RequestSession(ctx context.Context, mode immersive.Mode, space immersive.ReferenceSpace) (immersive.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if mode != immersive.ModeImmersiveVR {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMode, mode)
	}
	if space != immersive.ReferenceSpaceLocal {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSpace, space)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active != nil {
		return nil, ErrSessionActive
	}
	s := newSession(uuid.NewString(), p)
	p.active = s
	logger.Info("desktop session started", "session", s.id)
	return s, nil
}

func (p *platform) Active() immersive.Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active == nil {
		return nil
	}
	return p.active
}

// release forgets s if it is still the active session.
func (p *platform) release(s *session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active == s {
		p.active = nil
	}
}

func (p *platform) current() *session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

func (p *platform) keyDown(keyCode uint32) {
	s := p.current()
	if s == nil {
		if keyCode == common.KeyEsc && p.onIdleEscape != nil {
			p.onIdleEscape()
		}
		return
	}
	if keyCode == common.KeyEsc {
		if err := s.End(); err != nil {
			logger.Warn("ending desktop session failed", "session", s.id, "err", err)
		}
		return
	}
	s.press(keyCode, true)
}

func (p *platform) keyUp(keyCode uint32) {
	if s := p.current(); s != nil {
		s.press(keyCode, false)
	}
}
