//go:build !headless

package window

import (
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/cockroachdb/errors"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwWindow holds the GLFW-specific window state.
type glfwWindow struct {
	parent    *engineWindow
	window    *glfw.Window
	running   bool
	closeOnce sync.Once

	// windowed position and size restored when leaving fullscreen.
	windowedX, windowedY int
	windowedW, windowedH int
}

var _ platform = &glfwWindow{}

// newPlatformWindow creates the GLFW window with input callbacks and stores it as the platform.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
// go-gl/glfw: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw
func newPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return errors.Wrap(err, "initialize GLFW")
	}

	// WebGPU provides its own graphics API, so disable OpenGL context creation.
	// Reference: https://www.glfw.org/docs/latest/window_guide.html#window_hints_ctx
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	if w.resizable {
		glfw.WindowHint(glfw.Resizable, glfw.True)
	} else {
		glfw.WindowHint(glfw.Resizable, glfw.False)
	}

	var monitor *glfw.Monitor
	if w.fullscreen {
		monitor = glfw.GetPrimaryMonitor()
		if monitor != nil {
			mode := monitor.GetVideoMode()
			w.width, w.height = mode.Width, mode.Height
		}
	}

	win, err := glfw.CreateWindow(w.width, w.height, w.title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return errors.Wrap(err, "create GLFW window")
	}

	gw := &glfwWindow{
		parent:    w,
		window:    win,
		running:   true,
		windowedW: w.width,
		windowedH: w.height,
	}
	w.platform = gw

	// Method values keep the callbacks on the Go side, so no pointer is stored in GLFW.
	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetKeyCallback
	win.SetKeyCallback(gw.onKey)
	win.SetCloseCallback(gw.onClose)

	// Use framebuffer size callback for pixel-accurate resize events.
	// On high-DPI displays (e.g., macOS Retina), framebuffer size differs from window size.
	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetFramebufferSizeCallback
	win.SetFramebufferSizeCallback(gw.onFramebufferSize)

	// Update stored dimensions to reflect actual framebuffer size (may differ from requested on high-DPI).
	w.width, w.height = win.GetFramebufferSize()

	return nil
}

func (gw *glfwWindow) onKey(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if key < 0 {
		return
	}
	switch action {
	case glfw.Press, glfw.Repeat:
		gw.parent.keyDown(uint32(key))
	case glfw.Release:
		gw.parent.keyUp(uint32(key))
	}
}

func (gw *glfwWindow) onClose(_ *glfw.Window) {
	gw.parent.closeRequested()
}

func (gw *glfwWindow) onFramebufferSize(_ *glfw.Window, width, height int) {
	gw.parent.resized(width, height)
}

// surfaceDescriptor creates a platform-appropriate wgpu.SurfaceDescriptor from the GLFW window.
// Uses the wgpuglfw bridge package which has per-platform implementations (Windows, X11, Wayland, macOS).
//
// Reference: https://pkg.go.dev/github.com/cogentcore/webgpu/wgpuglfw#GetSurfaceDescriptor
func (gw *glfwWindow) surfaceDescriptor() *wgpu.SurfaceDescriptor {
	if !gw.running {
		return nil
	}
	return wgpuglfw.GetSurfaceDescriptor(gw.window)
}

func (gw *glfwWindow) displayModes() []common.DisplayMode {
	monitor := glfw.GetPrimaryMonitor()
	if monitor == nil {
		return nil
	}
	vidModes := monitor.GetVideoModes()
	modes := make([]common.DisplayMode, 0, len(vidModes))
	for _, m := range vidModes {
		modes = append(modes, common.DisplayMode{
			Width:   m.Width,
			Height:  m.Height,
			Refresh: common.Rational{Numerator: uint32(m.RefreshRate), Denominator: 1},
		})
	}
	return modes
}

// setFullscreen swaps the window between the primary monitor and its last windowed placement.
//
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetMonitor
func (gw *glfwWindow) setFullscreen(fullscreen bool) error {
	if !gw.running {
		return errors.New("window is closed")
	}
	if !fullscreen {
		gw.window.SetMonitor(nil, gw.windowedX, gw.windowedY, gw.windowedW, gw.windowedH, glfw.DontCare)
		return nil
	}
	monitor := glfw.GetPrimaryMonitor()
	if monitor == nil {
		return errors.New("no primary monitor")
	}
	if gw.window.GetMonitor() == nil {
		gw.windowedX, gw.windowedY = gw.window.GetPos()
		gw.windowedW, gw.windowedH = gw.window.GetSize()
	}
	mode := monitor.GetVideoMode()
	gw.window.SetMonitor(monitor, 0, 0, mode.Width, mode.Height, mode.RefreshRate)
	return nil
}

// isRunning returns whether the GLFW window is still active.
// Returns false if the running flag is cleared or GLFW reports ShouldClose.
func (gw *glfwWindow) isRunning() bool {
	return gw.running && !gw.window.ShouldClose()
}

func (gw *glfwWindow) requestClose() {
	if gw.running {
		gw.window.SetShouldClose(true)
	}
}

// close destroys the GLFW window and terminates the GLFW library.
func (gw *glfwWindow) close() error {
	gw.closeOnce.Do(func() {
		gw.running = false
		gw.window.SetShouldClose(true)
		gw.window.Destroy()
		glfw.Terminate()
	})
	return nil
}

// pollEvents polls GLFW for pending events without blocking.
// This is the GLFW equivalent of the Win32 PeekMessage loop.
//
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#PollEvents
func (gw *glfwWindow) pollEvents() bool {
	glfw.PollEvents()
	return gw.isRunning()
}
