package renderer

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing.
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// RendererBackend is the GPU-facing half of the Renderer. A frame is one BeginFrame, any
// number of Draw calls, EndFrame and Present.
type RendererBackend interface {
	// ConfigureSurface (re)creates the swapchain and the size-dependent attachments.
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode sets the present mode used by the next ConfigureSurface.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// BeginFrame acquires the swapchain texture and opens a render pass cleared to clearColor.
	//
	// Parameters:
	//   - clearColor: RGBA clear color
	//
	// Returns:
	//   - error: an error if the surface texture or command encoder could not be acquired
	BeginFrame(clearColor [4]float32) error

	// Draw uploads a batch of clip-space vertices and draws them.
	// Each vertex is 8 floats: clip position (x, y, z, w) followed by RGBA color.
	//
	// Parameters:
	//   - topology: triangle list or line list
	//   - vertices: the interleaved vertex data
	Draw(topology Topology, vertices []float32)

	// EndFrame ends the render pass and submits the command buffer.
	EndFrame()

	// Present shows the frame and releases the swapchain texture.
	Present()

	// Release frees every GPU object owned by the backend.
	Release()
}
