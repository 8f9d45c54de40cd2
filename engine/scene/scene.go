package scene

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-xr/common"
	"github.com/Carmen-Shannon/oxy-xr/engine/camera"
	"github.com/Carmen-Shannon/oxy-xr/engine/node"
)

// TargetName is the node name of the displayed model.
const TargetName = "Target"

// Background is what the renderer clears to before drawing: a solid color, optionally
// covered by a skybox image. It is comparable so saved values can be checked for equality.
type Background struct {
	Color  [4]float32
	Skybox string
}

// BlackBackground is an opaque black background with no skybox.
var BlackBackground = Background{Color: [4]float32{0, 0, 0, 1}}

// Environment is the image-based lighting setup of a scene.
type Environment struct {
	// Image is the environment map used for lighting, empty for the neutral default.
	Image string
	// Skybox is the image shown behind the model, empty for none.
	Skybox string
}

// Hotspot is an annotation anchored to the displayed model. Hotspots are only drawn when the
// scene's hotspot visibility flag is on and they face the camera.
type Hotspot struct {
	Name     string
	Position common.Vec3
	Normal   common.Vec3

	// FacingCamera is recomputed by UpdateHotspots.
	FacingCamera bool
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool

	root node.Node
	cam  camera.Camera

	background  Background
	environment Environment

	hotspots        []Hotspot
	hotspotsVisible bool

	needsRender atomic.Bool
}

// Scene is a node graph presenting one displayed model, together with the presentation state
// around it: background, lighting environment, hotspot annotations and camera.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Active returns whether this scene is rendered by the engine.
	Active() bool

	// SetActive sets whether this scene is rendered by the engine.
	SetActive(active bool)

	// Root returns the root node. Moving it moves everything in the scene.
	//
	// Returns:
	//   - node.Node: the root node
	Root() node.Node

	// Add attaches nodes to the root.
	//
	// Parameters:
	//   - nodes: the nodes to attach
	Add(nodes ...node.Node)

	// Remove detaches nodes from the root.
	//
	// Parameters:
	//   - nodes: the nodes to detach
	Remove(nodes ...node.Node)

	// GetObjectByName searches the scene graph for a node by name.
	//
	// Parameters:
	//   - name: the node name
	//
	// Returns:
	//   - node.Node: the first match, or nil
	GetObjectByName(name string) node.Node

	// Target returns the displayed model, the node named TargetName, or nil if none is loaded.
	//
	// Returns:
	//   - node.Node: the displayed model or nil
	Target() node.Node

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// Background returns the current background.
	Background() Background

	// SetBackground replaces the background and queues a render.
	//
	// Parameters:
	//   - bg: the new background
	SetBackground(bg Background)

	// Environment returns the current lighting environment.
	Environment() Environment

	// SetEnvironmentAndSkybox replaces the lighting environment and queues a render.
	// The background is left alone.
	//
	// Parameters:
	//   - image: the environment map, empty for the neutral default
	//   - skybox: the skybox image, empty for none
	SetEnvironmentAndSkybox(image, skybox string)

	// HotspotsVisible reports whether hotspots are drawn.
	HotspotsVisible() bool

	// SetHotspotsVisibility shows or hides every hotspot.
	//
	// Parameters:
	//   - visible: true to draw hotspots
	SetHotspotsVisibility(visible bool)

	// AddHotspot registers a hotspot. A hotspot with the same name is replaced.
	//
	// Parameters:
	//   - h: the hotspot
	AddHotspot(h Hotspot)

	// Hotspots returns a snapshot of the registered hotspots.
	Hotspots() []Hotspot

	// UpdateHotspots recomputes which hotspots face the camera, taking the root transform
	// into account.
	UpdateHotspots()

	// QueueRender marks the scene dirty so the next frame redraws it.
	QueueRender()

	// ConsumeRender reports whether a render was queued and clears the flag.
	//
	// Returns:
	//   - bool: true if a render was queued since the last call
	ConsumeRender() bool
}

var _ Scene = &scene{}

// NewScene creates a Scene with an empty root, a white background and hotspots shown.
// Panics if cam is nil.
//
// Parameters:
//   - name: the scene identifier
//   - cam: the scene camera
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}

	s := &scene{
		mu:              &sync.RWMutex{},
		name:            name,
		active:          true,
		root:            node.NewGroup(name),
		cam:             cam,
		background:      Background{Color: [4]float32{1, 1, 1, 1}},
		hotspotsVisible: true,
	}
	for _, option := range options {
		option(s)
	}
	s.needsRender.Store(true)
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Root() node.Node {
	return s.root
}

func (s *scene) Add(nodes ...node.Node) {
	s.root.Add(nodes...)
	s.QueueRender()
}

func (s *scene) Remove(nodes ...node.Node) {
	s.root.Remove(nodes...)
	s.QueueRender()
}

func (s *scene) GetObjectByName(name string) node.Node {
	return s.root.GetObjectByName(name)
}

func (s *scene) Target() node.Node {
	return s.root.GetObjectByName(TargetName)
}

func (s *scene) Camera() camera.Camera {
	return s.cam
}

func (s *scene) Background() Background {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.background
}

func (s *scene) SetBackground(bg Background) {
	s.mu.Lock()
	s.background = bg
	s.mu.Unlock()
	s.QueueRender()
}

func (s *scene) Environment() Environment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.environment
}

func (s *scene) SetEnvironmentAndSkybox(image, skybox string) {
	s.mu.Lock()
	s.environment = Environment{Image: image, Skybox: skybox}
	s.mu.Unlock()
	s.QueueRender()
}

func (s *scene) HotspotsVisible() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hotspotsVisible
}

func (s *scene) SetHotspotsVisibility(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hotspotsVisible = visible
}

func (s *scene) AddHotspot(h Hotspot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := slices.IndexFunc(s.hotspots, func(o Hotspot) bool { return o.Name == h.Name }); i >= 0 {
		s.hotspots[i] = h
		return
	}
	s.hotspots = append(s.hotspots, h)
}

func (s *scene) Hotspots() []Hotspot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.hotspots)
}

func (s *scene) UpdateHotspots() {
	world := s.root.WorldMatrix()
	cx, cy, cz := s.cam.Position()
	eye := common.Vec3{cx, cy, cz}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.hotspots {
		h := &s.hotspots[i]
		pos := common.TransformPoint(world[:], h.Position)
		normal := common.TransformDirection(world[:], h.Normal)
		toEye := common.Normalize3(common.Sub3(eye, pos))
		h.FacingCamera = common.Dot3(normal, toEye) > 0
	}
}

func (s *scene) QueueRender() {
	s.needsRender.Store(true)
}

func (s *scene) ConsumeRender() bool {
	return s.needsRender.Swap(false)
}
