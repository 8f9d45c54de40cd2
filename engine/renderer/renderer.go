package renderer

import (
	"errors"
	"sync"

	"github.com/Carmen-Shannon/oxy-xr/engine/camera"
	"github.com/Carmen-Shannon/oxy-xr/engine/scene"
	"github.com/Carmen-Shannon/oxy-xr/engine/window"
)

// ErrNoScene is returned by Render when called without a scene.
var ErrNoScene = errors.New("renderer: nil scene")

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount

	frames uint64
}

// Renderer draws a scene graph with flat-colored geometry on top of the scene background.
// Mesh shapes are drawn as triangles, line shapes as segments, and visible hotspots that face
// the camera as small crosses.
type Renderer interface {
	// Render draws one frame of s as seen by cam and presents it.
	//
	// Parameters:
	//   - s: the scene to draw
	//   - cam: the camera to draw from
	//
	// Returns:
	//   - error: ErrNoScene, or a backend error if the frame could not be acquired
	Render(s scene.Scene, cam camera.Camera) error

	// Resize configures the underlying backend to handle a new surface size.
	// This should be called when re-sizing the window or when the surface size should change.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode sets the surface present mode. Takes effect on the next Resize.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// Frames returns the number of frames presented so far.
	Frames() uint64

	// Release frees the GPU resources. The renderer must not be used afterwards.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer drawing into the given window's surface.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - window: the window providing the surface descriptor and initial size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
func NewRenderer(backendType RendererBackendType, window window.Window, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(window.SurfaceDescriptor(), r.forceFallbackAdapter, msaa)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	r.backend.ConfigureSurface(window.Width(), window.Height())
	return r
}

func (r *renderer) Render(s scene.Scene, cam camera.Camera) error {
	if s == nil {
		return ErrNoScene
	}
	if cam == nil {
		cam = s.Camera()
	}

	cam.Update()
	viewProj := cam.ViewProjectionMatrix()
	batch := buildFrameGeometry(s, viewProj)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.backend.BeginFrame(s.Background().Color); err != nil {
		return err
	}
	r.backend.Draw(TopologyTriangles, batch.triangles)
	r.backend.Draw(TopologyLines, batch.lines)
	r.backend.EndFrame()
	r.backend.Present()
	r.frames++
	return nil
}

func (r *renderer) Resize(width, height int) {
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Frames() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.Release()
}
