package window

import (
	"runtime"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides platform windowing and input event handling.
// Wraps platform-specific window implementations with a common interface.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the window is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetKeyDownCallback sets the callback for key press events.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the callback for key release events.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetCloseCallback sets the function called once when the user asks the window to close.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetCloseCallback(callback func())

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.).
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the surface descriptor, or nil for windows without a surface
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// DisplayModes lists the modes of the monitor the window would go fullscreen on.
	//
	// Returns:
	//   - []common.DisplayMode: the modes, empty if the platform reports none
	DisplayModes() []common.DisplayMode

	// SetFullscreen moves the window onto the primary monitor at its size, or back to a
	// decorated window.
	//
	// Parameters:
	//   - fullscreen: true to enter fullscreen
	//
	// Returns:
	//   - error: error if the window is closed or has no monitor
	SetFullscreen(fullscreen bool) error

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// RequestClose makes the message loop stop after the current iteration.
	RequestClose()

	// Close closes the window and releases platform resources. Closing twice is a no-op.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Calls OnUpdate callback each iteration.
	ProcessMessages()

	// Width returns the current window client area width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current window client area height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// platform is the OS side of a window. Event handlers reach the engineWindow through the
// callbacks it holds.
type platform interface {
	pollEvents() bool
	isRunning() bool
	requestClose()
	close() error
	surfaceDescriptor() *wgpu.SurfaceDescriptor
	displayModes() []common.DisplayMode
	setFullscreen(fullscreen bool) error
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, platform state, and event callbacks.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// width is the current window client area width in pixels.
	width int

	// height is the current window client area height in pixels.
	height int

	// fullscreen is whether the window starts on the primary monitor.
	fullscreen bool

	// resizable is whether the user can resize the window.
	resizable bool

	// platform holds the platform-specific window.
	platform platform

	onUpdate  func()
	onResize  func(width, height int)
	onKeyDown func(keyCode uint32)
	onKeyUp   func(keyCode uint32)
	onClose   func()
}

var _ Window = &engineWindow{}

func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:  "oxy-tutorial",
		width:  800,
		height: 600,
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

// NewWindow creates and shows a desktop window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the created window
//   - error: a fatal startup error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		return nil, common.Fatal(err, "create platform window")
	}
	return w, nil
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SetCloseCallback(callback func()) {
	w.onClose = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return w.platform.surfaceDescriptor()
}

func (w *engineWindow) DisplayModes() []common.DisplayMode {
	return w.platform.displayModes()
}

func (w *engineWindow) SetFullscreen(fullscreen bool) error {
	return w.platform.setFullscreen(fullscreen)
}

func (w *engineWindow) IsRunning() bool {
	return w.platform.isRunning()
}

func (w *engineWindow) RequestClose() {
	w.platform.requestClose()
}

func (w *engineWindow) Close() error {
	return w.platform.close()
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := w.platform.pollEvents(); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

// keyDown forwards a press to the key down callback.
func (w *engineWindow) keyDown(keyCode uint32) {
	if w.onKeyDown != nil {
		w.onKeyDown(keyCode)
	}
}

// keyUp forwards a release to the key up callback.
func (w *engineWindow) keyUp(keyCode uint32) {
	if w.onKeyUp != nil {
		w.onKeyUp(keyCode)
	}
}

// closeRequested forwards a close request to the close callback.
func (w *engineWindow) closeRequested() {
	if w.onClose != nil {
		w.onClose()
	}
}

// resized records the new client size and forwards it to the resize callback.
func (w *engineWindow) resized(width, height int) {
	w.width = width
	w.height = height
	if w.onResize != nil {
		w.onResize(width, height)
	}
}
