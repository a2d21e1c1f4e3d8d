package renderer

import (
	"log"
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
)

// Default screen configuration used when no builder option overrides it.
const (
	DefaultScreenWidth  = 800
	DefaultScreenHeight = 600
	DefaultScreenDepth  = 1000.0
	DefaultScreenNear   = 0.1
	DefaultVSync        = true
	DefaultFullscreen   = false
	DefaultFieldOfView  = math.Pi / 4
)

// DeviceHandles is a snapshot of every object a DeviceContext owns.
type DeviceHandles struct {
	Device             Handle
	Context            Handle
	SwapChain          Handle
	RenderTargetView   Handle
	DepthStencilBuffer Handle
	DepthStencilView   Handle
	DepthEnabledState  Handle
	DepthDisabledState Handle
	RasterizerState    Handle
	BoundDepthState    Handle
}

func (h DeviceHandles) all() []Handle {
	return []Handle{
		h.Device, h.Context, h.SwapChain, h.RenderTargetView, h.DepthStencilBuffer,
		h.DepthStencilView, h.DepthEnabledState, h.DepthDisabledState, h.RasterizerState, h.BoundDepthState,
	}
}

// AllLive reports whether every handle is non-null.
func (h DeviceHandles) AllLive() bool {
	for _, handle := range h.all() {
		if handle.IsNull() {
			return false
		}
	}
	return true
}

// AllNull reports whether every handle is null.
func (h DeviceHandles) AllNull() bool {
	for _, handle := range h.all() {
		if !handle.IsNull() {
			return false
		}
	}
	return true
}

// deviceContextImpl is the implementation of the DeviceContext interface.
type deviceContextImpl struct {
	mu      *sync.Mutex
	backend RendererBackend

	width       int
	height      int
	vsync       bool
	fullscreen  bool
	screenNear  float32
	screenDepth float32
	fieldOfView float32
	modes       []common.DisplayMode

	adapter common.AdapterInfo
	refresh common.Rational
	handles DeviceHandles

	// acquired holds pointers into handles in creation order. Shutdown and failed
	// construction release them back to front.
	acquired []*Handle

	projection common.Mat4
	ortho      common.Mat4
	world      common.Mat4

	frame   uint64
	inFrame bool

	vertexBuffer Handle
	vertexStride uint64
	indexBuffer  Handle
}

// DeviceContext owns the GPU device, its immediate submission context, the swap chain and the
// standing projection matrices. It presents frames and toggles the depth-test state.
type DeviceContext interface {
	// BeginFrame clears the back buffer to the given colour and the depth buffer to 1.
	// Calling it twice without EndFrame returns a dropped-frame error.
	//
	// Parameters:
	//   - r, g, b, a: the clear colour
	//
	// Returns:
	//   - error: a dropped-frame error if the frame could not begin
	BeginFrame(r, g, b, a float32) error

	// EndFrame submits the frame and presents it. With vsync enabled, presentation blocks
	// until the next refresh interval.
	//
	// Returns:
	//   - error: a dropped-frame error if no frame is in progress or presentation failed
	EndFrame() error

	// SetDepthTestEnabled binds either the depth-enabled or the depth-disabled state.
	//
	// Parameters:
	//   - enabled: true to bind the depth-enabled state
	SetDepthTestEnabled(enabled bool)

	// DepthTestEnabled reports whether the depth-enabled state is bound.
	DepthTestEnabled() bool

	// DepthStencilState returns the currently bound depth-stencil state.
	DepthStencilState() Handle

	// RasterizerState returns the rasterizer state every pipeline uses.
	RasterizerState() Handle

	// Projection returns the perspective projection matrix.
	Projection() common.Mat4

	// Ortho returns the orthographic projection matrix used for 2D overlays.
	Ortho() common.Mat4

	// World returns the identity world matrix.
	World() common.Mat4

	// ScreenSize returns the back buffer size in pixels.
	ScreenSize() (int, int)

	// RefreshRate returns the refresh rate requested for the swap chain.
	RefreshRate() common.Rational

	// VSync reports whether presentation waits for vertical blank.
	VSync() bool

	// AdapterInfo describes the adapter the device was created on.
	AdapterInfo() common.AdapterInfo

	// Handles returns a snapshot of every owned handle.
	Handles() DeviceHandles

	// Frame returns the number of frames begun so far.
	Frame() uint64

	// InFrame reports whether a frame is between BeginFrame and EndFrame.
	InFrame() bool

	// SetInputBuffers binds the vertex and index buffers used by subsequent draws.
	//
	// Parameters:
	//   - vertex: the vertex buffer
	//   - stride: the byte size of one vertex
	//   - index: the 32-bit index buffer
	SetInputBuffers(vertex Handle, stride uint64, index Handle)

	// InputBuffers returns the bound vertex buffer, its stride and the bound index buffer.
	InputBuffers() (Handle, uint64, Handle)

	// Backend returns the backend objects are created on.
	Backend() RendererBackend

	// Shutdown leaves fullscreen and releases every owned object in reverse creation order.
	// Calling it again does nothing.
	Shutdown()
}

var _ DeviceContext = &deviceContextImpl{}

// NewDeviceContext creates a DeviceContext on backend and acquires every object it owns:
// device, context and swap chain, render target view, depth-stencil buffer, depth-enabled
// state, depth-stencil view, rasterizer state and depth-disabled state. The viewport and
// projection matrices are set from the screen size and depth range. When any step fails,
// the objects acquired so far are released and a fatal startup error is returned.
//
// Parameters:
//   - backend: the backend to create objects on
//   - options: functional options applied after defaults
//
// Returns:
//   - DeviceContext: the initialized context
//   - error: a fatal startup error
func NewDeviceContext(backend RendererBackend, options ...DeviceContextBuilderOption) (DeviceContext, error) {
	if backend == nil {
		return nil, common.Fatal(nil, "device context: backend is nil")
	}

	d := &deviceContextImpl{
		mu:          &sync.Mutex{},
		backend:     backend,
		width:       DefaultScreenWidth,
		height:      DefaultScreenHeight,
		vsync:       DefaultVSync,
		fullscreen:  DefaultFullscreen,
		screenNear:  DefaultScreenNear,
		screenDepth: DefaultScreenDepth,
		fieldOfView: DefaultFieldOfView,
	}
	for _, opt := range options {
		opt(d)
	}

	if d.width <= 0 || d.height <= 0 {
		return nil, common.Fatal(nil, "device context: invalid screen size %dx%d", d.width, d.height)
	}
	if d.screenNear <= 0 || d.screenDepth <= d.screenNear {
		return nil, common.Fatal(nil, "device context: invalid depth range near=%v far=%v", d.screenNear, d.screenDepth)
	}

	if err := d.initialize(); err != nil {
		d.releaseAll()
		return nil, err
	}
	return d, nil
}

func (d *deviceContextImpl) initialize() error {
	adapter, err := d.backend.AdapterInfo()
	if err != nil {
		return common.Fatal(err, "enumerate display adapter")
	}
	d.adapter = adapter

	refresh, matched := common.SelectDisplayMode(d.modes, d.width, d.height)
	if !matched {
		log.Printf("renderer: no display mode matches %dx%d, using %s", d.width, d.height, refresh)
	}
	if !d.vsync {
		refresh = common.Rational{Numerator: 0, Denominator: 1}
	}
	d.refresh = refresh
	log.Printf("renderer: adapter %q, %dx%d @ %s, vsync=%v fullscreen=%v", adapter.Name, d.width, d.height, refresh, d.vsync, d.fullscreen)

	objs, err := d.backend.CreateDevice(SwapChainDescriptor{
		Width:      d.width,
		Height:     d.height,
		Refresh:    refresh,
		VSync:      d.vsync,
		Fullscreen: d.fullscreen,
	})
	if err != nil {
		return common.Fatal(err, "create device and swap chain")
	}
	d.handles.Device, d.handles.Context, d.handles.SwapChain = objs.Device, objs.Context, objs.SwapChain
	d.acquired = append(d.acquired, &d.handles.Device, &d.handles.Context, &d.handles.SwapChain)

	if err := d.acquire(&d.handles.RenderTargetView, "render target view", d.backend.CreateRenderTargetView); err != nil {
		return err
	}
	if err := d.acquire(&d.handles.DepthStencilBuffer, "depth stencil buffer", func() (Handle, error) {
		return d.backend.CreateDepthStencilBuffer(d.width, d.height)
	}); err != nil {
		return err
	}
	if err := d.acquire(&d.handles.DepthEnabledState, "depth stencil state", func() (Handle, error) {
		return d.backend.CreateDepthStencilState(depthStencilDescriptor(true))
	}); err != nil {
		return err
	}
	d.handles.BoundDepthState = d.handles.DepthEnabledState

	if err := d.acquire(&d.handles.DepthStencilView, "depth stencil view", func() (Handle, error) {
		return d.backend.CreateDepthStencilView(d.handles.DepthStencilBuffer)
	}); err != nil {
		return err
	}
	if err := d.acquire(&d.handles.RasterizerState, "rasterizer state", func() (Handle, error) {
		return d.backend.CreateRasterizerState(RasterizerDescriptor{
			Label:     "Rasterizer State",
			Cull:      CullBack,
			Fill:      FillSolid,
			DepthClip: true,
		})
	}); err != nil {
		return err
	}

	d.backend.SetViewport(Viewport{
		Width:    float32(d.width),
		Height:   float32(d.height),
		MinDepth: 0,
		MaxDepth: 1,
	})

	aspect := float32(d.width) / float32(d.height)
	d.projection = common.PerspectiveFovLH(d.fieldOfView, aspect, d.screenNear, d.screenDepth)
	d.world = common.Identity()
	d.ortho = common.OrthoLH(float32(d.width), float32(d.height), d.screenNear, d.screenDepth)

	return d.acquire(&d.handles.DepthDisabledState, "depth disabled stencil state", func() (Handle, error) {
		return d.backend.CreateDepthStencilState(depthStencilDescriptor(false))
	})
}

// acquire creates one object and records it for reverse-order release.
func (d *deviceContextImpl) acquire(slot *Handle, what string, create func() (Handle, error)) error {
	h, err := create()
	if err != nil {
		return common.Fatal(err, "create %s", what)
	}
	*slot = h
	d.acquired = append(d.acquired, slot)
	return nil
}

// depthStencilDescriptor returns the standard depth-stencil configuration: depth less with
// full writes and a stencil that increments on back-face depth failure and decrements on
// front-face depth failure. The disabled variant only turns depth testing off.
func depthStencilDescriptor(depthEnabled bool) DepthStencilDescriptor {
	label := "Depth Stencil State"
	if !depthEnabled {
		label = "Depth Disabled Stencil State"
	}
	return DepthStencilDescriptor{
		Label:            label,
		DepthEnable:      depthEnabled,
		DepthWrite:       true,
		DepthFunc:        CompareLess,
		StencilEnable:    true,
		StencilReadMask:  0xFF,
		StencilWriteMask: 0xFF,
		Front: StencilFace{
			FailOp:      StencilKeep,
			DepthFailOp: StencilIncrement,
			PassOp:      StencilKeep,
			Compare:     CompareAlways,
		},
		Back: StencilFace{
			FailOp:      StencilKeep,
			DepthFailOp: StencilDecrement,
			PassOp:      StencilKeep,
			Compare:     CompareAlways,
		},
	}
}

func (d *deviceContextImpl) BeginFrame(r, g, b, a float32) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.handles.Device.IsNull() {
		return common.Dropped(nil, "begin frame: device context is shut down")
	}
	if d.inFrame {
		return common.Dropped(nil, "begin frame %d: previous frame not ended", d.frame)
	}
	if err := d.backend.BeginFrame([4]float32{r, g, b, a}); err != nil {
		return common.Dropped(err, "begin frame %d", d.frame+1)
	}
	d.frame++
	d.inFrame = true
	return nil
}

func (d *deviceContextImpl) EndFrame() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.inFrame {
		return common.Dropped(nil, "end frame: no frame in progress")
	}
	d.inFrame = false
	if err := d.backend.EndFrame(); err != nil {
		return common.Dropped(err, "submit frame %d", d.frame)
	}
	if err := d.backend.Present(); err != nil {
		return common.Dropped(err, "present frame %d", d.frame)
	}
	return nil
}

func (d *deviceContextImpl) SetDepthTestEnabled(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if enabled {
		d.handles.BoundDepthState = d.handles.DepthEnabledState
	} else {
		d.handles.BoundDepthState = d.handles.DepthDisabledState
	}
}

func (d *deviceContextImpl) DepthTestEnabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.handles.BoundDepthState.IsNull() && d.handles.BoundDepthState == d.handles.DepthEnabledState
}

func (d *deviceContextImpl) DepthStencilState() Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.handles.BoundDepthState
}

func (d *deviceContextImpl) RasterizerState() Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.handles.RasterizerState
}

func (d *deviceContextImpl) Projection() common.Mat4 {
	return d.projection
}

func (d *deviceContextImpl) Ortho() common.Mat4 {
	return d.ortho
}

func (d *deviceContextImpl) World() common.Mat4 {
	return d.world
}

func (d *deviceContextImpl) ScreenSize() (int, int) {
	return d.width, d.height
}

func (d *deviceContextImpl) RefreshRate() common.Rational {
	return d.refresh
}

func (d *deviceContextImpl) VSync() bool {
	return d.vsync
}

func (d *deviceContextImpl) AdapterInfo() common.AdapterInfo {
	return d.adapter
}

func (d *deviceContextImpl) Handles() DeviceHandles {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.handles
}

func (d *deviceContextImpl) Frame() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frame
}

func (d *deviceContextImpl) InFrame() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inFrame
}

func (d *deviceContextImpl) SetInputBuffers(vertex Handle, stride uint64, index Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.vertexBuffer, d.vertexStride, d.indexBuffer = vertex, stride, index
}

func (d *deviceContextImpl) InputBuffers() (Handle, uint64, Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.vertexBuffer, d.vertexStride, d.indexBuffer
}

func (d *deviceContextImpl) Backend() RendererBackend {
	return d.backend
}

func (d *deviceContextImpl) Shutdown() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.acquired) == 0 {
		return
	}
	// The swap chain must leave fullscreen before it is released.
	if !d.handles.SwapChain.IsNull() {
		if err := d.backend.SetFullscreenState(false); err != nil {
			log.Printf("renderer: leave fullscreen: %v", err)
		}
	}
	d.inFrame = false
	d.vertexBuffer, d.vertexStride, d.indexBuffer = NullHandle, 0, NullHandle
	d.releaseAll()
	log.Printf("renderer: device context released after %d frames", d.frame)
}

// releaseAll releases acquired objects back to front and nulls each handle.
func (d *deviceContextImpl) releaseAll() {
	for i := len(d.acquired) - 1; i >= 0; i-- {
		slot := d.acquired[i]
		d.backend.Release(*slot)
		*slot = NullHandle
	}
	d.acquired = nil
	d.handles.BoundDepthState = NullHandle
}
