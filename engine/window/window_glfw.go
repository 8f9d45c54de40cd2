package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// maxJoysticks is the number of GLFW joystick slots polled each iteration.
var maxJoysticks = int(glfw.JoystickLast) + 1

// glfwWindow holds the GLFW-specific window state.
type glfwWindow struct {
	parent    *engineWindow
	window    *glfw.Window
	running   bool
	destroyed bool
}

// newPlatformWindow creates the GLFW window with input callbacks and stores it as the internal window.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
// go-gl/glfw: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw
func newPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	// WebGPU provides its own graphics API, so disable OpenGL context creation.
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create GLFW window: %w", err)
	}
	win.SetSizeLimits(sizeLimit(w.minWidth), sizeLimit(w.minHeight), sizeLimit(w.maxWidth), sizeLimit(w.maxHeight))

	gw := &glfwWindow{
		parent:  w,
		window:  win,
		running: true,
	}
	w.internalWindow = gw

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press && w.escapeCloses {
			gw.running = false
			win.SetShouldClose(true)
			return
		}
		cb := w.snapshotCallbacks()
		switch action {
		case glfw.Press, glfw.Repeat:
			if cb.onKeyDown != nil {
				cb.onKeyDown(uint32(key))
			}
		case glfw.Release:
			if cb.onKeyUp != nil {
				cb.onKeyUp(uint32(key))
			}
		}
	})

	win.SetScrollCallback(func(_ *glfw.Window, xoff, yoff float64) {
		if cb := w.snapshotCallbacks(); cb.onScroll != nil {
			cb.onScroll(float32(yoff))
		}
	})

	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button != glfw.MouseButtonMiddle {
			return
		}
		xpos, ypos := win.GetCursorPos()
		cb := w.snapshotCallbacks()
		switch action {
		case glfw.Press:
			if cb.onMiddleMouseDown != nil {
				cb.onMiddleMouseDown(int32(xpos), int32(ypos))
			}
		case glfw.Release:
			if cb.onMiddleMouseUp != nil {
				cb.onMiddleMouseUp(int32(xpos), int32(ypos))
			}
		}
	})

	win.SetCursorPosCallback(func(_ *glfw.Window, xpos, ypos float64) {
		if cb := w.snapshotCallbacks(); cb.onMouseMove != nil {
			cb.onMouseMove(int32(xpos), int32(ypos))
		}
	})

	// Framebuffer size, not window size: they differ on high-DPI displays and the surface
	// needs pixels.
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.setSize(width, height)
		if cb := w.snapshotCallbacks(); cb.onResize != nil {
			cb.onResize(width, height)
		}
	})

	w.setSize(win.GetFramebufferSize())
	w.setJoysticks(pollJoysticks())

	return nil
}

// pollJoysticks snapshots every connected joystick. Must run on the main thread.
//
// Reference: https://www.glfw.org/docs/latest/input_guide.html#joystick
func pollJoysticks() map[int]joystickSnapshot {
	out := make(map[int]joystickSnapshot)
	for id := 0; id < maxJoysticks; id++ {
		js := glfw.Joystick(id)
		if !js.Present() {
			continue
		}
		actions := js.GetButtons()
		buttons := make([]bool, len(actions))
		for i, a := range actions {
			buttons[i] = a == glfw.Press
		}
		out[id] = joystickSnapshot{buttons: buttons, axes: js.GetAxes()}
	}
	return out
}

// platformGetSurfaceDescriptor creates a platform-appropriate wgpu.SurfaceDescriptor from the GLFW window.
//
// Reference: https://pkg.go.dev/github.com/cogentcore/webgpu/wgpuglfw#GetSurfaceDescriptor
func platformGetSurfaceDescriptor(w *engineWindow) *wgpu.SurfaceDescriptor {
	if w.internalWindow == nil {
		return nil
	}
	gw := w.internalWindow.(*glfwWindow)
	return wgpuglfw.GetSurfaceDescriptor(gw.window)
}

// platformIsRunningCheck returns whether the GLFW window is still active.
func platformIsRunningCheck(w *engineWindow) bool {
	if w.internalWindow == nil {
		return false
	}
	gw := w.internalWindow.(*glfwWindow)
	return gw.running && !gw.destroyed && !gw.window.ShouldClose()
}

// platformCloseWindow destroys the GLFW window and terminates the GLFW library.
// Must run on the main thread; a second call is a no-op.
func platformCloseWindow(w *engineWindow) {
	if w.internalWindow == nil {
		return
	}
	gw := w.internalWindow.(*glfwWindow)
	if gw.destroyed {
		return
	}
	gw.running = false
	gw.destroyed = true
	gw.window.SetShouldClose(true)
	gw.window.Destroy()
	glfw.Terminate()
}

// platformProcessMessages polls GLFW for pending events without blocking and refreshes the
// joystick snapshot.
//
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#PollEvents
func platformProcessMessages(w *engineWindow) bool {
	glfw.PollEvents()
	w.setJoysticks(pollJoysticks())
	return platformIsRunningCheck(w)
}

// sizeLimit maps an unset bound to glfw.DontCare.
func sizeLimit(v int) int {
	if v <= 0 {
		return glfw.DontCare
	}
	return v
}
