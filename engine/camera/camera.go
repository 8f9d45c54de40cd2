package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-xr/common"
)

type cameraImpl struct {
	mu *sync.Mutex

	up [3]float32

	fov    float32
	aspect float32
	near   float32
	far    float32

	viewMatrix           [16]float32
	projectionMatrix     [16]float32
	viewProjectionMatrix [16]float32

	// sessionTransform is the viewer pose reported by an immersive session. While set it
	// drives the view matrix instead of the controller.
	sessionTransform *[16]float32

	controller Controller
}

// Camera defines the interface for the scene camera.
// Outside an immersive session the camera follows its orbit Controller. During a session the
// platform-reported viewer pose is linked in with SetSessionTransform and takes precedence
// until it is cleared.
type Camera interface {
	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// ViewMatrix returns the current 4x4 view matrix (column-major).
	//
	// Returns:
	//   - [16]float32: the view matrix
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the current 4x4 projection matrix (column-major).
	//
	// Returns:
	//   - [16]float32: the projection matrix
	ProjectionMatrix() [16]float32

	// ViewProjectionMatrix returns projection * view (column-major).
	//
	// Returns:
	//   - [16]float32: the combined matrix
	ViewProjectionMatrix() [16]float32

	// Position returns the camera's world-space position: the session pose translation while a
	// session transform is linked, the controller position otherwise.
	//
	// Returns:
	//   - x, y, z: the camera position
	Position() (x, y, z float32)

	// Controller returns the attached orbit controller, or nil.
	//
	// Returns:
	//   - Controller: the controller or nil
	Controller() Controller

	// SetController attaches an orbit controller.
	//
	// Parameters:
	//   - ctrl: the controller to attach
	SetController(ctrl Controller)

	// SetAspect sets the aspect ratio and recomputes matrices.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// SetFov sets the vertical field of view in radians and recomputes matrices.
	//
	// Parameters:
	//   - fov: field of view in radians
	SetFov(fov float32)

	// SetSessionTransform links the camera to a viewer pose. The view matrix becomes the
	// inverse of m until ClearSessionTransform is called.
	//
	// Parameters:
	//   - m: the viewer's column-major world transform
	SetSessionTransform(m [16]float32)

	// ClearSessionTransform unlinks the viewer pose and returns control to the controller.
	ClearSessionTransform()

	// HasSessionTransform reports whether a viewer pose is linked.
	//
	// Returns:
	//   - bool: true while a session transform is set
	HasSessionTransform() bool

	// Update recomputes matrices from the session transform or the controller.
	// Should be called once per frame.
	Update()
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with a 45° field of view.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		up:     [3]float32{0, 1, 0},
		fov:    45.0 * (math.Pi / 180.0), // radians
		aspect: 1.0,
		near:   0.01,
		far:    100.0,
	}
	common.Identity(c.viewMatrix[:])
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) Position() (x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sessionTransform != nil {
		p := common.MatrixPosition(c.sessionTransform[:])
		return p[0], p[1], p[2]
	}
	if c.controller != nil {
		return c.controller.Position()
	}
	return 0, 0, 0
}

func (c *cameraImpl) Controller() Controller {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) SetController(ctrl Controller) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateMatrices()
}

func (c *cameraImpl) SetSessionTransform(m [16]float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionTransform = &m
	c.updateMatrices()
}

func (c *cameraImpl) ClearSessionTransform() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionTransform = nil
	c.updateMatrices()
}

func (c *cameraImpl) HasSessionTransform() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionTransform != nil
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateMatrices()
}

// updateMatrices recalculates the view, projection and view-projection matrices.
// The view comes from the session transform when linked, else from the controller; with
// neither the previous view matrix is kept.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	switch {
	case c.sessionTransform != nil:
		if !common.Invert4(c.viewMatrix[:], c.sessionTransform[:]) {
			common.Identity(c.viewMatrix[:])
		}
	case c.controller != nil:
		px, py, pz := c.controller.Position()
		tx, ty, tz := c.controller.Target()
		common.LookAt(c.viewMatrix[:],
			px, py, pz,
			tx, ty, tz,
			c.up[0], c.up[1], c.up[2],
		)
	}

	common.Perspective(c.projectionMatrix[:],
		c.fov, c.aspect, c.near, c.far,
	)
	common.Mul4(c.viewProjectionMatrix[:], c.projectionMatrix[:], c.viewMatrix[:])
}
