package desktop

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-xr/common"
	"github.com/Carmen-Shannon/oxy-xr/engine/immersive"
	"github.com/Carmen-Shannon/oxy-xr/engine/input"
	"github.com/Carmen-Shannon/oxy-xr/engine/node"
	"github.com/Carmen-Shannon/oxy-xr/internal/logger"
)

const maxPitch = 1.4

type session struct {
	mu *sync.Mutex

	id       string
	platform *platform

	controller node.Node
	grip       node.Node

	position common.Vec3
	yaw      float32
	pitch    float32
	held     map[uint32]bool

	onConnect []func(immersive.InputSource)
	onEnd     []func()

	// the pointer mode announced for input source 0, empty until the first pose
	announced input.TargetRayMode
	ended     bool
}

var _ immersive.Session = &session{}

func newSession(id string, p *platform) *session {
	return &session{
		mu:         &sync.Mutex{},
		id:         id,
		platform:   p,
		controller: node.NewGroup("controller-0"),
		grip:       node.NewGroup("grip-0"),
		position:   common.Vec3{0, p.eyeHeight, 0},
		held:       make(map[uint32]bool),
	}
}

func (s *session) ID() string {
	return s.id
}

func (s *session) ReferenceSpace() immersive.ReferenceSpace {
	return immersive.ReferenceSpaceLocal
}

func (s *session) Controller(index int) node.Node {
	if index != 0 {
		return nil
	}
	return s.controller
}

func (s *session) ControllerGrip(index int) node.Node {
	if index != 0 {
		return nil
	}
	return s.grip
}

func (s *session) OnInputSourceConnected(callback func(src immersive.InputSource)) {
	if callback == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onConnect = append(s.onConnect, callback)
}

// OnEnd registers callback for the end of the session. If the session has already ended it
// runs callback straight away.
func (s *session) OnEnd(callback func()) {
	if callback == nil {
		return
	}
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		callback()
		return
	}
	s.onEnd = append(s.onEnd, callback)
	s.mu.Unlock()
}

// ViewerPose advances the keyboard-driven head by one frame, moves the controller with it and
// announces input sources. Joystick 0 connects as a tracked pointer; without one a gaze source
// connects on the first frame. A joystick plugged in later still connects as a tracked pointer.
func (s *session) ViewerPose() ([16]float32, bool) {
	var head [16]float32

	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return head, false
	}
	s.integrate()
	common.BuildModelMatrix(head[:], s.position[0], s.position[1], s.position[2], s.pitch, s.yaw, 0, 1, 1, 1)

	var connected []immersive.InputSource
	_, _, present := s.platform.window.JoystickState(s.platform.joystick)
	switch {
	case present && s.announced != input.TargetRayTrackedPointer:
		s.announced = input.TargetRayTrackedPointer
		connected = append(connected, immersive.InputSource{
			TargetRayMode: input.TargetRayTrackedPointer,
			Handedness:    "right",
			Gamepad:       input.NewJoystickDevice(s.platform.window, s.platform.joystick),
		})
	case !present && s.announced == "":
		s.announced = input.TargetRayGaze
		connected = append(connected, immersive.InputSource{TargetRayMode: input.TargetRayGaze})
	}
	mode := s.announced
	listeners := s.onConnect
	offset := s.platform.handOffset
	s.mu.Unlock()

	hand := head
	if mode == input.TargetRayTrackedPointer {
		var local [16]float32
		common.BuildModelMatrix(local[:], offset[0], offset[1], offset[2], 0, 0, 0, 1, 1, 1)
		common.Mul4(hand[:], head[:], local[:])
	}
	s.controller.SetPose(&hand)
	s.grip.SetPose(&hand)

	for _, src := range connected {
		logger.Debug("input source connected", "session", s.id, "mode", src.TargetRayMode)
		for _, fn := range listeners {
			fn(src)
		}
	}
	return head, true
}

// integrate applies the held keys for one frame. Caller must hold the mutex.
func (s *session) integrate() {
	move := s.platform.moveStep
	turn := s.platform.turnStep

	if s.held[common.KeyLeft] {
		s.yaw += turn
	}
	if s.held[common.KeyRight] {
		s.yaw -= turn
	}
	if s.held[common.KeyUp] {
		s.pitch += turn
	}
	if s.held[common.KeyDown] {
		s.pitch -= turn
	}
	s.yaw = common.WrapAngle(s.yaw)
	s.pitch = common.Clamp(s.pitch, -maxPitch, maxPitch)

	sin := float32(math.Sin(float64(s.yaw)))
	cos := float32(math.Cos(float64(s.yaw)))
	forward := common.Vec3{-sin, 0, -cos}
	right := common.Vec3{cos, 0, -sin}

	if s.held[common.KeyW] {
		s.position = common.Add3(s.position, common.Scale3(forward, move))
	}
	if s.held[common.KeyS] {
		s.position = common.Sub3(s.position, common.Scale3(forward, move))
	}
	if s.held[common.KeyD] {
		s.position = common.Add3(s.position, common.Scale3(right, move))
	}
	if s.held[common.KeyA] {
		s.position = common.Sub3(s.position, common.Scale3(right, move))
	}
}

func (s *session) press(keyCode uint32, down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.held[keyCode] = down
}

func (s *session) End() error {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return nil
	}
	s.ended = true
	listeners := s.onEnd
	s.mu.Unlock()

	s.platform.release(s)
	logger.Info("desktop session ended", "session", s.id)
	for _, fn := range listeners {
		fn()
	}
	return nil
}
