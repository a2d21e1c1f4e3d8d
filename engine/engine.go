package engine

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/audio"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/camera"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/profiler"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/scene"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/window"
	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

// engine implements the Engine interface.
// Owns the window, input, scene and audio, and drives one frame per message loop iteration.
type engine struct {
	mu *sync.Mutex

	window  window.Window
	input   *window.Input
	backend renderer.RendererBackend

	backendOptions []renderer.WGPUBackendOption

	deviceOptions []renderer.DeviceContextBuilderOption
	sceneOptions  []scene.SceneBuilderOption
	assets        scene.Assets

	soundPath    string
	audioOptions []audio.ContextBuilderOption

	ctx      renderer.DeviceContext
	sc       scene.Scene
	audioCtx audio.Context
	sound    audio.Sound

	controller camera.CameraController

	profiler         *profiler.Profiler
	profilingEnabled bool

	tickCallback     func(deltaTime float32)
	renderFrameLimit time.Duration
	frameBudget      uint64
	frames           atomic.Uint64

	started     bool
	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once
}

// Engine is the application shell. It creates the rendering device and the scene on Run, pumps
// window messages, renders a frame per iteration and tears everything down when the loop ends.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Input returns the key state table fed by the window.
	//
	// Returns:
	//   - *window.Input: the key state table
	Input() *window.Input

	// Scene returns the scene, nil before Run has created it.
	//
	// Returns:
	//   - scene.Scene: the scene
	Scene() scene.Scene

	// Audio returns the audio context, nil when no sound was configured.
	//
	// Returns:
	//   - audio.Context: the audio context
	Audio() audio.Context

	// Profiler returns the frame timer.
	//
	// Returns:
	//   - *profiler.Profiler: the profiler
	Profiler() *profiler.Profiler

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickCallback registers the function called each frame after input and before the
	// scene renders.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the loop (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Frames returns how many frames the loop has run.
	Frames() uint64

	// Run initializes the device, the scene and the audio, then runs the message loop until
	// Quit, a window close, the quit key or the frame budget ends it. Everything is shut down
	// before Run returns.
	//
	// Returns:
	//   - error: a fatal startup error, in which case no frame was rendered
	Run() error

	// Quit stops the message loop after the current frame.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:          &sync.Mutex{},
		input:       window.NewInput(),
		quitChannel: make(chan struct{}),
		profiler:    profiler.NewProfiler(),
		controller:  camera.NewCameraController(),
	}

	for _, opt := range options {
		opt(e)
	}
	e.profiler.SetLogging(e.profilingEnabled)

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Input() *window.Input {
	return e.input
}

func (e *engine) Scene() scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sc
}

func (e *engine) Audio() audio.Context {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.audioCtx
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
	e.profiler.SetLogging(true)
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
	e.profiler.SetLogging(false)
}

// SetTickCallback registers the function called each frame.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetRenderFrameLimit sets an optional frame rate cap.
// Pass 0 to uncap the loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) Frames() uint64 {
	return e.frames.Load()
}

func (e *engine) Run() error {
	if e.window == nil {
		return common.Fatal(nil, "engine: no window")
	}
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return common.Fatal(nil, "engine: already run")
	}
	e.started = true
	e.mu.Unlock()

	if err := e.initialize(); err != nil {
		e.shutdown()
		return err
	}

	e.input.Attach(e.window)
	e.window.SetCloseCallback(e.Quit)
	e.window.SetUpdateCallback(e.frame)
	log.Printf("engine: running")

	e.window.ProcessMessages()

	e.shutdown()
	return nil
}

// Quit signals the message loop to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
		if e.window != nil {
			e.window.RequestClose()
		}
	})
}

// initialize creates the device context and the scene, then loads the scene assets and the
// sound at the same time. The sound starts once both are ready.
func (e *engine) initialize() error {
	backend := e.backend
	if backend == nil {
		surface := e.window.SurfaceDescriptor()
		if surface == nil {
			return common.Fatal(nil, "engine: the window has no surface to render to")
		}
		options := append([]renderer.WGPUBackendOption{renderer.WithFullscreenHandler(e.window.SetFullscreen)}, e.backendOptions...)
		b, err := renderer.NewWGPUBackend(surface, options...)
		if err != nil {
			return common.Fatal(err, "engine: could not create the renderer backend")
		}
		backend = b
	}

	options := append([]renderer.DeviceContextBuilderOption{
		renderer.WithScreenSize(e.window.Width(), e.window.Height()),
		renderer.WithDisplayModes(e.window.DisplayModes()),
	}, e.deviceOptions...)
	ctx, err := renderer.NewDeviceContext(backend, options...)
	if err != nil {
		return errors.Wrap(err, "engine: could not initialize the device context")
	}
	e.ctx = ctx

	sc, err := scene.NewScene(ctx, e.sceneOptions...)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.sc = sc
	e.mu.Unlock()

	// Both loads finish at Wait, before the message loop starts, so frames stay single threaded.
	group, _ := errgroup.WithContext(context.Background())
	group.Go(func() error {
		return sc.Initialize(e.assets)
	})
	if e.soundPath != "" {
		group.Go(e.initializeAudio)
	}
	if err := group.Wait(); err != nil {
		return err
	}

	pos, rot := sc.Camera().Position(), sc.Camera().Rotation()
	e.controller.SetPosition(pos.X(), pos.Y(), pos.Z())
	e.controller.SetRotation(rot.X(), rot.Y(), rot.Z())

	if e.sound != nil {
		if err := e.sound.Play(); err != nil {
			return common.Fatal(err, "engine: could not play the sound file")
		}
	}
	return nil
}

// initializeAudio opens the sound device and loads the configured sound.
func (e *engine) initializeAudio() error {
	ac, err := audio.NewContext(e.audioOptions...)
	if err != nil {
		return errors.Wrap(err, "engine: could not initialize the sound object")
	}
	e.mu.Lock()
	e.audioCtx = ac
	e.mu.Unlock()

	sound, err := ac.LoadSound(e.soundPath)
	if err != nil {
		return errors.Wrap(err, "engine: could not load the sound file")
	}
	e.sound = sound
	return nil
}

// frame runs once per message loop iteration: input, camera, scene and frame pacing.
func (e *engine) frame() {
	select {
	case <-e.quitChannel:
		return
	default:
	}
	if e.input.IsEscapePressed() {
		e.Quit()
		return
	}

	start := time.Now()
	dt := e.profiler.Tick()

	e.controller.SetFrameTime(float32(dt.Seconds() * 1000))
	e.controller.TurnLeft(e.input.IsKeyDown(common.KeyLeft))
	e.controller.TurnRight(e.input.IsKeyDown(common.KeyRight))
	e.controller.MoveForward(e.input.IsKeyDown(common.KeyUp))
	e.controller.MoveBackward(e.input.IsKeyDown(common.KeyDown))
	e.controller.LookUpward(e.input.IsKeyDown(common.KeyPageUp))
	e.controller.LookDownward(e.input.IsKeyDown(common.KeyPageDown))
	e.controller.Apply(e.sc.Camera())

	if e.tickCallback != nil {
		e.tickCallback(float32(dt.Seconds()))
	}

	if err := e.sc.Frame(dt); err != nil {
		log.Printf("engine: frame %d dropped: %v", e.ctx.Frame(), err)
	}

	if n := e.frames.Add(1); e.frameBudget > 0 && n >= e.frameBudget {
		e.Quit()
	}

	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - time.Since(start); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

// shutdown releases everything in reverse creation order. Each step tolerates a partially
// initialized engine.
func (e *engine) shutdown() {
	e.mu.Lock()
	ac, sc := e.audioCtx, e.sc
	e.mu.Unlock()

	if ac != nil {
		ac.Shutdown()
	}
	if sc != nil {
		sc.Shutdown()
	} else if e.ctx != nil {
		e.ctx.Shutdown()
	}
	if err := e.window.Close(); err != nil {
		log.Printf("engine: close window: %v", err)
	}
	log.Printf("engine: shut down after %d frames", e.frames.Load())
}
