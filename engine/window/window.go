package window

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides platform windowing, keyboard/mouse events and gamepad polling.
// Callbacks are delivered on the thread running ProcessMessages; every other method is safe
// to call from any goroutine.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the function called for mouse wheel events.
	//
	// Parameters:
	//   - callback: function receiving scroll delta (positive = up/zoom in, negative = down/zoom out)
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the function called when a key is pressed or repeats.
	//
	// Parameters:
	//   - callback: function receiving the key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the function called when a key is released.
	//
	// Parameters:
	//   - callback: function receiving the key code
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetMiddleMouseDownCallback sets the function called when the middle mouse button is pressed.
	SetMiddleMouseDownCallback(callback func(x, y int32))

	// SetMiddleMouseUpCallback sets the function called when the middle mouse button is released.
	SetMiddleMouseUpCallback(callback func(x, y int32))

	// SetMouseMoveCallback sets the function called when the cursor moves.
	SetMouseMoveCallback(callback func(x, y int32))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// JoystickState returns the gamepad snapshot taken during the last message loop iteration.
	//
	// Parameters:
	//   - id: the joystick slot, starting at 0
	//
	// Returns:
	//   - []bool: pressed state per button
	//   - []float32: value per axis in [-1, 1]
	//   - bool: false if no joystick is connected in that slot
	JoystickState(id int) (buttons []bool, axes []float32, present bool)

	// IsRunning returns true if the window is still active.
	IsRunning() bool

	// Close asks the window to close. The window is destroyed by the message loop on its own
	// thread, so Close may be called from any goroutine.
	//
	// Returns:
	//   - error: error if the window was never initialized
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Calls OnUpdate callback each iteration.
	ProcessMessages()

	// Destroy releases the platform window. Call it on the ProcessMessages thread after the
	// loop has returned and nothing renders into the surface anymore.
	Destroy()

	// Width returns the current framebuffer width in pixels.
	Width() int

	// Height returns the current framebuffer height in pixels.
	Height() int
}

type callbacks struct {
	onUpdate          func()
	onResize          func(width, height int)
	onScroll          func(delta float32)
	onKeyDown         func(keyCode uint32)
	onKeyUp           func(keyCode uint32)
	onMiddleMouseDown func(x, y int32)
	onMiddleMouseUp   func(x, y int32)
	onMouseMove       func(x, y int32)
}

type joystickSnapshot struct {
	buttons []bool
	axes    []float32
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	mu *sync.RWMutex

	title string

	maxWidth  int
	maxHeight int
	minWidth  int
	minHeight int

	// framebuffer size in pixels
	width  int
	height int

	// escapeCloses makes the Escape key close the window instead of reaching onKeyDown.
	escapeCloses bool

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	cb callbacks

	joysticks map[int]joystickSnapshot

	closeRequested atomic.Bool
}

var _ Window = &engineWindow{}

// NewWindow creates and spawns a new Window with the specified options.
// Applies default values first, then each option in order. Must be called from the thread
// that will run ProcessMessages.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the spawned window
func NewWindow(options ...WindowBuilderOption) Window {
	w := &engineWindow{
		mu:           &sync.RWMutex{},
		title:        "oxy-xr",
		maxWidth:     3840,
		maxHeight:    2160,
		minWidth:     320,
		minHeight:    200,
		width:        1280,
		height:       720,
		escapeCloses: true,
		joysticks:    make(map[int]joystickSnapshot),
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

func (w *engineWindow) snapshotCallbacks() callbacks {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cb
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cb.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cb.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cb.onScroll = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cb.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cb.onKeyUp = callback
}

func (w *engineWindow) SetMiddleMouseDownCallback(callback func(x, y int32)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cb.onMiddleMouseDown = callback
}

func (w *engineWindow) SetMiddleMouseUpCallback(callback func(x, y int32)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cb.onMiddleMouseUp = callback
}

func (w *engineWindow) SetMouseMoveCallback(callback func(x, y int32)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cb.onMouseMove = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) JoystickState(id int) ([]bool, []float32, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	js, ok := w.joysticks[id]
	if !ok {
		return nil, nil, false
	}
	return append([]bool(nil), js.buttons...), append([]float32(nil), js.axes...), true
}

// setJoysticks replaces the gamepad snapshot. Called by the platform layer once per loop iteration.
func (w *engineWindow) setJoysticks(snapshot map[int]joystickSnapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.joysticks = snapshot
}

func (w *engineWindow) setSize(width, height int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.width = width
	w.height = height
}

func (w *engineWindow) IsRunning() bool {
	return !w.closeRequested.Load() && platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	if w.internalWindow == nil {
		return fmt.Errorf("window is not initialized")
	}
	w.closeRequested.Store(true)
	return nil
}

func (w *engineWindow) Destroy() {
	platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}

		if cb := w.snapshotCallbacks(); cb.onUpdate != nil {
			cb.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.width
}

func (w *engineWindow) Height() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.height
}
