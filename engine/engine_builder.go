package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-tutorial/engine/audio"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/camera"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/profiler"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/scene"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler replaces the frame timer, e.g. with one running on a fake clock.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		if p != nil {
			e.profiler = p
		}
	}
}

// WithWindow sets the window the engine renders into and reads input from. Required.
//
// Parameters:
//   - w: a created Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithBackend sets the renderer backend. Without it Run creates a WebGPU backend on the
// window's surface.
//
// Parameters:
//   - b: the renderer backend
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithBackend(b renderer.RendererBackend) EngineBuilderOption {
	return func(e *engine) {
		e.backend = b
	}
}

// WithBackendOptions adds options for the WebGPU backend Run creates when no backend is set.
//
// Parameters:
//   - options: WebGPU backend options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithBackendOptions(options ...renderer.WGPUBackendOption) EngineBuilderOption {
	return func(e *engine) {
		e.backendOptions = append(e.backendOptions, options...)
	}
}

// WithDeviceOptions adds options for the device context. The screen size and display modes
// come from the window and can be overridden here.
//
// Parameters:
//   - options: device context options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithDeviceOptions(options ...renderer.DeviceContextBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.deviceOptions = append(e.deviceOptions, options...)
	}
}

// WithSceneOptions adds options for the scene.
//
// Parameters:
//   - options: scene options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSceneOptions(options ...scene.SceneBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.sceneOptions = append(e.sceneOptions, options...)
	}
}

// WithAssets sets the files the scene loads.
//
// Parameters:
//   - assets: the mesh, texture and overlay files
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithAssets(assets scene.Assets) EngineBuilderOption {
	return func(e *engine) {
		e.assets = assets
	}
}

// WithSound plays a looping WAV file for the whole run. The audio context is only created
// when a sound is set.
//
// Parameters:
//   - path: the .wav file
//   - options: audio context options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSound(path string, options ...audio.ContextBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.soundPath = path
		e.audioOptions = append(e.audioOptions, options...)
	}
}

// WithCameraController replaces the controller that turns arrow and page keys into camera
// motion.
//
// Parameters:
//   - cc: the camera controller
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCameraController(cc camera.CameraController) EngineBuilderOption {
	return func(e *engine) {
		if cc != nil {
			e.controller = cc
		}
	}
}

// WithFrameBudget stops the loop after n frames. 0 runs until quit (default).
//
// Parameters:
//   - n: the number of frames to render
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameBudget(n uint64) EngineBuilderOption {
	return func(e *engine) {
		e.frameBudget = n
	}
}

// WithRenderFrameLimit sets an optional frame rate cap in frames per second.
// Pass 0 to uncap the loop (default).
//
// Parameters:
//   - fps: maximum frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
	}
}
