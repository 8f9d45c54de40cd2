package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-xr/common"
)

// orbitController keeps the camera on a sphere around a target point.
type orbitController struct {
	mu *sync.Mutex

	// Camera position (computed from target + spherical coords)
	position [3]float32
	target   [3]float32

	// Spherical coordinates (offset from target)
	radius    float32
	azimuth   float32 // Horizontal angle around Y axis, 0 = +Z
	elevation float32 // Vertical angle from horizontal plane

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	orbitSpeed float32
	zoomSpeed  float32
}

// Controller owns the camera's position and look-at target outside immersive sessions.
type Controller interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - x, y, z: world-space camera position
	Position() (x, y, z float32)

	// SetPosition moves the camera without touching the orbit parameters. Call Resync to
	// re-derive them from the new position.
	//
	// Parameters:
	//   - x, y, z: the new position
	SetPosition(x, y, z float32)

	// Target returns the look-at point.
	//
	// Returns:
	//   - x, y, z: the target
	Target() (x, y, z float32)

	// SetTarget moves the look-at point and keeps the camera at the same orbit offset from it.
	//
	// Parameters:
	//   - x, y, z: the new target
	SetTarget(x, y, z float32)

	// Orbit rotates the camera around the target by multiples of the orbit speed. Elevation is
	// clamped to its bounds; azimuth wraps.
	//
	// Parameters:
	//   - dAzimuth: horizontal steps (positive = right)
	//   - dElevation: vertical steps (positive = up)
	Orbit(dAzimuth, dElevation float32)

	// Zoom moves the camera toward (positive delta) or away from the target, clamped to the
	// radius bounds.
	//
	// Parameters:
	//   - delta: zoom steps
	Zoom(delta float32)

	// Radius returns the current distance from the target.
	//
	// Returns:
	//   - float32: the orbit radius
	Radius() float32

	// Azimuth returns the horizontal orbit angle in radians.
	//
	// Returns:
	//   - float32: the azimuth
	Azimuth() float32

	// Elevation returns the vertical orbit angle in radians.
	//
	// Returns:
	//   - float32: the elevation
	Elevation() float32

	// Resync recomputes radius, azimuth and elevation from the current position and target,
	// then snaps the position back onto the clamped orbit. Used after something other than
	// the controller has moved the camera.
	Resync()
}

var _ Controller = &orbitController{}

// NewOrbitController creates an orbit Controller framing an object of roughly unit size at
// the origin.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - Controller: the newly created controller
func NewOrbitController(options ...OrbitControllerOption) Controller {
	oc := &orbitController{
		mu: &sync.Mutex{},

		radius:    4.0,
		azimuth:   0.0,
		elevation: float32(math.Pi / 12),

		minRadius:    0.5,
		maxRadius:    50.0,
		minElevation: float32(-math.Pi/2 + 0.05),
		maxElevation: float32(math.Pi/2 - 0.05),

		orbitSpeed: 0.03,
		zoomSpeed:  0.25,
	}
	for _, option := range options {
		option(oc)
	}
	oc.clamp()
	oc.updatePosition()
	return oc
}

// updatePosition recomputes the camera position from spherical coordinates.
// Caller must hold the mutex.
func (oc *orbitController) updatePosition() {
	cosElev := float32(math.Cos(float64(oc.elevation)))
	sinElev := float32(math.Sin(float64(oc.elevation)))
	cosAzim := float32(math.Cos(float64(oc.azimuth)))
	sinAzim := float32(math.Sin(float64(oc.azimuth)))

	oc.position[0] = oc.target[0] + oc.radius*cosElev*sinAzim
	oc.position[1] = oc.target[1] + oc.radius*sinElev
	oc.position[2] = oc.target[2] + oc.radius*cosElev*cosAzim
}

// clamp applies the radius and elevation bounds.
// Caller must hold the mutex.
func (oc *orbitController) clamp() {
	oc.radius = common.Clamp(oc.radius, oc.minRadius, oc.maxRadius)
	oc.elevation = common.Clamp(oc.elevation, oc.minElevation, oc.maxElevation)
}

func (oc *orbitController) Position() (x, y, z float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.position[0], oc.position[1], oc.position[2]
}

func (oc *orbitController) SetPosition(x, y, z float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.position = [3]float32{x, y, z}
}

func (oc *orbitController) Target() (x, y, z float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.target[0], oc.target[1], oc.target[2]
}

func (oc *orbitController) SetTarget(x, y, z float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.target = [3]float32{x, y, z}
	oc.updatePosition()
}

func (oc *orbitController) Orbit(dAzimuth, dElevation float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.azimuth = common.WrapAngle(oc.azimuth + dAzimuth*oc.orbitSpeed)
	oc.elevation += dElevation * oc.orbitSpeed
	oc.clamp()
	oc.updatePosition()
}

func (oc *orbitController) Zoom(delta float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.radius -= delta * oc.zoomSpeed
	oc.clamp()
	oc.updatePosition()
}

func (oc *orbitController) Radius() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.radius
}

func (oc *orbitController) Azimuth() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.azimuth
}

func (oc *orbitController) Elevation() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.elevation
}

func (oc *orbitController) Resync() {
	oc.mu.Lock()
	defer oc.mu.Unlock()

	offset := common.Sub3(oc.position, oc.target)
	r := common.Length3(offset)
	if r < 1e-6 {
		oc.updatePosition()
		return
	}
	oc.radius = r
	oc.elevation = float32(math.Asin(float64(common.Clamp(offset[1]/r, -1, 1))))
	oc.azimuth = float32(math.Atan2(float64(offset[0]), float64(offset[2])))
	oc.clamp()
	oc.updatePosition()
}
