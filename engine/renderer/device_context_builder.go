package renderer

import "github.com/Carmen-Shannon/oxy-tutorial/common"

// DeviceContextBuilderOption is a functional option applied to a device context during construction via NewDeviceContext.
type DeviceContextBuilderOption func(*deviceContextImpl)

// WithScreenSize sets the back buffer size in pixels.
//
// Parameters:
//   - width: the back buffer width
//   - height: the back buffer height
//
// Returns:
//   - DeviceContextBuilderOption: a function that applies the screen size option
func WithScreenSize(width, height int) DeviceContextBuilderOption {
	return func(d *deviceContextImpl) {
		d.width = width
		d.height = height
	}
}

// WithVSync sets whether presentation waits for the display's vertical blank.
//
// Parameters:
//   - enabled: true to lock presentation to the refresh rate
//
// Returns:
//   - DeviceContextBuilderOption: a function that applies the vsync option
func WithVSync(enabled bool) DeviceContextBuilderOption {
	return func(d *deviceContextImpl) {
		d.vsync = enabled
	}
}

// WithFullscreen sets whether the swap chain starts in fullscreen.
//
// Parameters:
//   - fullscreen: true to start fullscreen
//
// Returns:
//   - DeviceContextBuilderOption: a function that applies the fullscreen option
func WithFullscreen(fullscreen bool) DeviceContextBuilderOption {
	return func(d *deviceContextImpl) {
		d.fullscreen = fullscreen
	}
}

// WithDepthRange sets the near and far planes used by both projection matrices.
//
// Parameters:
//   - near: distance to the near plane
//   - far: distance to the far plane
//
// Returns:
//   - DeviceContextBuilderOption: a function that applies the depth range option
func WithDepthRange(near, far float32) DeviceContextBuilderOption {
	return func(d *deviceContextImpl) {
		d.screenNear = near
		d.screenDepth = far
	}
}

// WithFieldOfView sets the vertical field of view of the perspective projection.
//
// Parameters:
//   - radians: the field of view in radians
//
// Returns:
//   - DeviceContextBuilderOption: a function that applies the field of view option
func WithFieldOfView(radians float32) DeviceContextBuilderOption {
	return func(d *deviceContextImpl) {
		d.fieldOfView = radians
	}
}

// WithDisplayModes supplies the display modes reported by the primary monitor. The refresh rate
// of the mode matching the screen size is requested for the swap chain.
//
// Parameters:
//   - modes: the enumerated display modes
//
// Returns:
//   - DeviceContextBuilderOption: a function that applies the display modes option
func WithDisplayModes(modes []common.DisplayMode) DeviceContextBuilderOption {
	return func(d *deviceContextImpl) {
		d.modes = modes
	}
}
