package renderer

import (
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/cockroachdb/errors"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	depthStencilFormat = wgpu.TextureFormatDepth24PlusStencil8
	stencilReference   = 1
)

type wgpuObject struct {
	kind  ObjectKind
	label string
	value any
}

// wgpuRenderTarget stands in for the swap chain back buffer view. WebGPU hands out a new
// surface texture every frame, so the view itself is created in BeginFrame.
type wgpuRenderTarget struct {
	format wgpu.TextureFormat
}

type wgpuDepthStencil struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

type wgpuPipeline struct {
	pipeline       *wgpu.RenderPipeline
	layout         *wgpu.PipelineLayout
	uniformLayout  *wgpu.BindGroupLayout
	resourceLayout *wgpu.BindGroupLayout
	desc           PipelineDescriptor
}

type wgpuRendererBackendImpl struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode
	depthView     *wgpu.TextureView
	viewport      Viewport

	forceFallbackAdapter bool
	fullscreenHandler    func(fullscreen bool) error

	next       Handle
	objects    map[Handle]*wgpuObject
	bindGroups map[string]*wgpu.BindGroup

	// Frame state between BeginFrame and Present.
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

// WGPUBackendOption is a functional option applied to the wgpu backend during construction via NewWGPUBackend.
type WGPUBackendOption func(*wgpuRendererBackendImpl)

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - WGPUBackendOption: a function that applies the force software renderer option
func WithForceSoftwareRenderer(force bool) WGPUBackendOption {
	return func(b *wgpuRendererBackendImpl) {
		b.forceFallbackAdapter = force
	}
}

// WithFullscreenHandler sets the function that moves the presentation window in or out of
// fullscreen. WebGPU surfaces have no fullscreen state of their own, so the window owns it.
//
// Parameters:
//   - handler: called by SetFullscreenState
//
// Returns:
//   - WGPUBackendOption: a function that applies the fullscreen handler option
func WithFullscreenHandler(handler func(fullscreen bool) error) WGPUBackendOption {
	return func(b *wgpuRendererBackendImpl) {
		b.fullscreenHandler = handler
	}
}

// NewWGPUBackend creates a WebGPU backend presenting to the surface described by
// surfaceDescriptor. The calling goroutine is locked to its OS thread, since the surface
// and the window it belongs to must be driven from the thread that created them.
//
// Parameters:
//   - surfaceDescriptor: the platform surface of the presentation window
//   - options: functional options applied after defaults
//
// Returns:
//   - RendererBackend: the new backend
//   - error: an error if no compatible adapter was found
func NewWGPUBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, options ...WGPUBackendOption) (RendererBackend, error) {
	runtime.LockOSThread()
	b := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
		objects:     make(map[Handle]*wgpuObject),
		bindGroups:  make(map[string]*wgpu.BindGroup),
	}
	for _, opt := range options {
		opt(b)
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: b.forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		b.surface.Release()
		b.instance.Release()
		return nil, errors.Wrap(err, "request adapter")
	}
	b.adapter = a
	return b, nil
}

func (b *wgpuRendererBackendImpl) store(kind ObjectKind, label string, value any) Handle {
	b.next++
	b.objects[b.next] = &wgpuObject{kind: kind, label: label, value: value}
	return b.next
}

func (b *wgpuRendererBackendImpl) lookup(h Handle, kind ObjectKind) (*wgpuObject, error) {
	obj, ok := b.objects[h]
	if !ok {
		return nil, errors.Newf("%s handle %d is not live", kind, h)
	}
	if obj.kind != kind {
		return nil, errors.Newf("handle %d is a %s, not a %s", h, obj.kind, kind)
	}
	return obj, nil
}

func (b *wgpuRendererBackendImpl) Type() RendererBackendType {
	return BackendTypeWGPU
}

func (b *wgpuRendererBackendImpl) AdapterInfo() (common.AdapterInfo, error) {
	if b.adapter == nil {
		return common.AdapterInfo{}, errors.New("no adapter")
	}
	info := b.adapter.GetInfo()
	return common.AdapterInfo{
		Name:        info.Name,
		Description: info.DriverDescription,
	}, nil
}

func (b *wgpuRendererBackendImpl) CreateDevice(desc SwapChainDescriptor) (DeviceObjects, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	d, err := b.adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return DeviceObjects{}, errors.Wrap(err, "request device")
	}
	b.device = d
	b.queue = d.GetQueue()

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 {
		b.releaseDeviceLocked()
		return DeviceObjects{}, errors.New("surface reports no formats")
	}
	b.surfaceFormat = capabilities.Formats[0]

	b.presentMode = wgpu.PresentModeFifo
	if !desc.VSync {
		for _, mode := range capabilities.PresentModes {
			if mode == wgpu.PresentModeImmediate {
				b.presentMode = wgpu.PresentModeImmediate
				break
			}
		}
	}

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(desc.Width),
		Height:      uint32(desc.Height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	if desc.Fullscreen && b.fullscreenHandler != nil {
		if err := b.fullscreenHandler(true); err != nil {
			b.releaseDeviceLocked()
			return DeviceObjects{}, errors.Wrap(err, "enter fullscreen")
		}
	}

	return DeviceObjects{
		Device:    b.store(KindDevice, objectLabel(KindDevice, ""), b.device),
		Context:   b.store(KindContext, objectLabel(KindContext, ""), b.queue),
		SwapChain: b.store(KindSwapChain, objectLabel(KindSwapChain, ""), b.surface),
	}, nil
}

// releaseDeviceLocked drops a device and queue that were requested but never handed out as
// handles. b.mu must be held.
func (b *wgpuRendererBackendImpl) releaseDeviceLocked() {
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
}

func (b *wgpuRendererBackendImpl) CreateRenderTargetView() (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.device == nil {
		return NullHandle, errors.New("create render target view: no device")
	}
	return b.store(KindRenderTargetView, objectLabel(KindRenderTargetView, ""), &wgpuRenderTarget{format: b.surfaceFormat}), nil
}

func (b *wgpuRendererBackendImpl) CreateDepthStencilBuffer(width, height int) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	label := objectLabel(KindDepthStencilBuffer, "")
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        depthStencilFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return NullHandle, errors.Wrap(err, "create depth stencil texture")
	}
	return b.store(KindDepthStencilBuffer, label, &wgpuDepthStencil{texture: tex}), nil
}

func (b *wgpuRendererBackendImpl) CreateDepthStencilView(buffer Handle) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	obj, err := b.lookup(buffer, KindDepthStencilBuffer)
	if err != nil {
		return NullHandle, err
	}
	view, err := obj.value.(*wgpuDepthStencil).texture.CreateView(nil)
	if err != nil {
		return NullHandle, errors.Wrap(err, "create depth stencil view")
	}
	b.depthView = view
	return b.store(KindDepthStencilView, objectLabel(KindDepthStencilView, ""), view), nil
}

func (b *wgpuRendererBackendImpl) CreateDepthStencilState(desc DepthStencilDescriptor) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.store(KindDepthStencilState, objectLabel(KindDepthStencilState, desc.Label), desc), nil
}

func (b *wgpuRendererBackendImpl) CreateRasterizerState(desc RasterizerDescriptor) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if desc.Fill == FillWireframe {
		return NullHandle, errors.New("create rasterizer state: wireframe fill is not supported by WebGPU")
	}
	return b.store(KindRasterizerState, objectLabel(KindRasterizerState, desc.Label), desc), nil
}

func (b *wgpuRendererBackendImpl) SetViewport(vp Viewport) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.viewport = vp
}

func (b *wgpuRendererBackendImpl) SetFullscreenState(fullscreen bool) error {
	if b.fullscreenHandler == nil {
		return nil
	}
	return b.fullscreenHandler(fullscreen)
}

func (b *wgpuRendererBackendImpl) CreateBuffer(desc BufferDescriptor, contents []byte) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var usage wgpu.BufferUsage
	switch desc.Bind {
	case BindVertexBuffer:
		usage = wgpu.BufferUsageVertex
	case BindIndexBuffer:
		usage = wgpu.BufferUsageIndex
	case BindConstantBuffer:
		usage = wgpu.BufferUsageUniform
	}
	usage |= wgpu.BufferUsageCopyDst

	label := objectLabel(KindBuffer, desc.Label)
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  desc.Size,
		Usage: usage,
	})
	if err != nil {
		return NullHandle, errors.Wrapf(err, "create buffer %s", label)
	}
	if len(contents) > 0 {
		if err := b.queue.WriteBuffer(buf, 0, contents); err != nil {
			buf.Release()
			return NullHandle, errors.Wrapf(err, "fill buffer %s", label)
		}
	}
	return b.store(KindBuffer, label, buf), nil
}

func (b *wgpuRendererBackendImpl) WriteBuffer(buffer Handle, offset uint64, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	obj, err := b.lookup(buffer, KindBuffer)
	if err != nil {
		return err
	}
	return b.queue.WriteBuffer(obj.value.(*wgpu.Buffer), offset, data)
}

func (b *wgpuRendererBackendImpl) CreateTexture(desc TextureDescriptor, pixels []byte) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	label := objectLabel(KindTexture, desc.Label)
	size := wgpu.Extent3D{
		Width:              uint32(desc.Width),
		Height:             uint32(desc.Height),
		DepthOrArrayLayers: 1,
	}
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Size:          size,
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return NullHandle, errors.Wrapf(err, "create texture %s", label)
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(desc.Width) * 4,
			RowsPerImage: uint32(desc.Height),
		},
		&size,
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return NullHandle, errors.Wrapf(err, "create view for texture %s", label)
	}
	return b.store(KindTexture, label, view), nil
}

var addressModes = map[AddressMode]wgpu.AddressMode{
	AddressWrap:   wgpu.AddressModeRepeat,
	AddressClamp:  wgpu.AddressModeClampToEdge,
	AddressMirror: wgpu.AddressModeMirrorRepeat,
}

func (b *wgpuRendererBackendImpl) CreateSampler(desc SamplerDescriptor) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	filter := wgpu.FilterModeLinear
	mipFilter := wgpu.MipmapFilterModeLinear
	if desc.Filter == FilterPoint {
		filter = wgpu.FilterModeNearest
		mipFilter = wgpu.MipmapFilterModeNearest
	}

	label := objectLabel(KindSampler, desc.Label)
	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         label,
		AddressModeU:  addressModes[desc.AddressU],
		AddressModeV:  addressModes[desc.AddressV],
		AddressModeW:  addressModes[desc.AddressW],
		MagFilter:     filter,
		MinFilter:     filter,
		MipmapFilter:  mipFilter,
		LodMinClamp:   desc.MinLOD,
		LodMaxClamp:   common.Coalesce(desc.MaxLOD, 32.0),
		MaxAnisotropy: common.Coalesce(desc.MaxAnisotropy, 1),
	})
	if err != nil {
		return NullHandle, errors.Wrapf(err, "create sampler %s", label)
	}
	return b.store(KindSampler, label, samp), nil
}

func (b *wgpuRendererBackendImpl) CreateShader(desc ShaderDescriptor) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	label := objectLabel(KindShader, desc.Label)
	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: desc.Source,
		},
	})
	if err != nil {
		return NullHandle, &ShaderCompileError{Label: label, Diagnostic: err.Error()}
	}
	return b.store(KindShader, label, module), nil
}

var compareFunctions = map[CompareFunction]wgpu.CompareFunction{
	CompareNever:        wgpu.CompareFunctionNever,
	CompareLess:         wgpu.CompareFunctionLess,
	CompareEqual:        wgpu.CompareFunctionEqual,
	CompareLessEqual:    wgpu.CompareFunctionLessEqual,
	CompareGreater:      wgpu.CompareFunctionGreater,
	CompareNotEqual:     wgpu.CompareFunctionNotEqual,
	CompareGreaterEqual: wgpu.CompareFunctionGreaterEqual,
	CompareAlways:       wgpu.CompareFunctionAlways,
}

// Direct3D's INCR and DECR wrap around, as do WebGPU's wrap variants.
var stencilOps = map[StencilOp]wgpu.StencilOperation{
	StencilKeep:      wgpu.StencilOperationKeep,
	StencilZero:      wgpu.StencilOperationZero,
	StencilReplace:   wgpu.StencilOperationReplace,
	StencilIncrement: wgpu.StencilOperationIncrementWrap,
	StencilDecrement: wgpu.StencilOperationDecrementWrap,
	StencilInvert:    wgpu.StencilOperationInvert,
}

var cullModes = map[CullMode]wgpu.CullMode{
	CullNone:  wgpu.CullModeNone,
	CullFront: wgpu.CullModeFront,
	CullBack:  wgpu.CullModeBack,
}

var vertexFormats = map[VertexFormat]wgpu.VertexFormat{
	FormatFloat32x2: wgpu.VertexFormatFloat32x2,
	FormatFloat32x3: wgpu.VertexFormatFloat32x3,
	FormatFloat32x4: wgpu.VertexFormatFloat32x4,
}

func stencilFace(f StencilFace) wgpu.StencilFaceState {
	return wgpu.StencilFaceState{
		Compare:     compareFunctions[f.Compare],
		FailOp:      stencilOps[f.FailOp],
		DepthFailOp: stencilOps[f.DepthFailOp],
		PassOp:      stencilOps[f.PassOp],
	}
}

func depthStencilState(desc DepthStencilDescriptor) *wgpu.DepthStencilState {
	state := &wgpu.DepthStencilState{
		Format:            depthStencilFormat,
		DepthWriteEnabled: desc.DepthEnable && desc.DepthWrite,
		DepthCompare:      wgpu.CompareFunctionAlways,
		StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
	}
	if desc.DepthEnable {
		state.DepthCompare = compareFunctions[desc.DepthFunc]
	}
	if desc.StencilEnable {
		state.StencilFront = stencilFace(desc.Front)
		state.StencilBack = stencilFace(desc.Back)
		state.StencilReadMask = uint32(desc.StencilReadMask)
		state.StencilWriteMask = uint32(desc.StencilWriteMask)
	}
	return state
}

func shaderStageVisibility(stage ShaderStage) wgpu.ShaderStage {
	if stage == StageVertex {
		return wgpu.ShaderStageVertex
	}
	return wgpu.ShaderStageFragment
}

func (b *wgpuRendererBackendImpl) CreatePipeline(desc PipelineDescriptor) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	vsObj, err := b.lookup(desc.VertexShader, KindShader)
	if err != nil {
		return NullHandle, errors.Wrap(err, "create pipeline: vertex shader")
	}
	psObj, err := b.lookup(desc.PixelShader, KindShader)
	if err != nil {
		return NullHandle, errors.Wrap(err, "create pipeline: pixel shader")
	}
	dsObj, err := b.lookup(desc.DepthStencilState, KindDepthStencilState)
	if err != nil {
		return NullHandle, errors.Wrap(err, "create pipeline")
	}
	rsObj, err := b.lookup(desc.RasterizerState, KindRasterizerState)
	if err != nil {
		return NullHandle, errors.Wrap(err, "create pipeline")
	}
	raster := rsObj.value.(RasterizerDescriptor)
	label := objectLabel(KindPipeline, desc.Label)

	uniformEntries := make([]wgpu.BindGroupLayoutEntry, len(desc.Uniforms))
	for i, u := range desc.Uniforms {
		uniformEntries[i] = wgpu.BindGroupLayoutEntry{
			Binding:    uint32(i),
			Visibility: shaderStageVisibility(u.Stage),
		}
		uniformEntries[i].Buffer.Type = wgpu.BufferBindingTypeUniform
		uniformEntries[i].Buffer.MinBindingSize = u.Size
	}
	uniformLayout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   label + " Constants",
		Entries: uniformEntries,
	})
	if err != nil {
		return NullHandle, errors.Wrapf(err, "create constant buffer layout for %s", label)
	}
	layouts := []*wgpu.BindGroupLayout{uniformLayout}

	var resourceLayout *wgpu.BindGroupLayout
	if desc.TextureCount > 0 || desc.Sampler {
		entries := make([]wgpu.BindGroupLayoutEntry, 0, desc.TextureCount+1)
		for i := 0; i < desc.TextureCount; i++ {
			entry := wgpu.BindGroupLayoutEntry{
				Binding:    uint32(i),
				Visibility: wgpu.ShaderStageFragment,
			}
			entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
			entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
			entries = append(entries, entry)
		}
		if desc.Sampler {
			entry := wgpu.BindGroupLayoutEntry{
				Binding:    uint32(desc.TextureCount),
				Visibility: wgpu.ShaderStageFragment,
			}
			entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
			entries = append(entries, entry)
		}
		resourceLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   label + " Resources",
			Entries: entries,
		})
		if err != nil {
			uniformLayout.Release()
			return NullHandle, errors.Wrapf(err, "create resource layout for %s", label)
		}
		layouts = append(layouts, resourceLayout)
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            label,
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return NullHandle, errors.Wrapf(err, "create pipeline layout for %s", label)
	}

	attrs := make([]wgpu.VertexAttribute, len(desc.Attributes))
	for i, a := range desc.Attributes {
		attrs[i] = wgpu.VertexAttribute{
			Format:         vertexFormats[a.Format],
			Offset:         a.Offset,
			ShaderLocation: a.Location,
		}
	}

	frontFace := wgpu.FrontFaceCW
	if raster.FrontCounterClockwise {
		frontFace = wgpu.FrontFaceCCW
	}

	target := wgpu.ColorTargetState{
		Format:    b.surfaceFormat,
		WriteMask: wgpu.ColorWriteMaskAll,
	}
	if desc.AlphaBlend {
		target.Blend = &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorZero,
				Operation: wgpu.BlendOperationAdd,
			},
		}
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  label,
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vsObj.value.(*wgpu.ShaderModule),
			EntryPoint: desc.VertexEntryPoint,
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: desc.Stride,
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes:  attrs,
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     psObj.value.(*wgpu.ShaderModule),
			EntryPoint: desc.PixelEntryPoint,
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: frontFace,
			CullMode:  cullModes[raster.Cull],
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: depthStencilState(dsObj.value.(DepthStencilDescriptor)),
	})
	if err != nil {
		return NullHandle, errors.Wrapf(err, "create render pipeline %s", label)
	}

	return b.store(KindPipeline, label, &wgpuPipeline{
		pipeline:       created,
		layout:         pipelineLayout,
		uniformLayout:  uniformLayout,
		resourceLayout: resourceLayout,
		desc:           desc,
	}), nil
}

func (b *wgpuRendererBackendImpl) BeginFrame(clearColor [4]float32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:    view,
			LoadOp:  wgpu.LoadOpClear,
			StoreOp: wgpu.StoreOpStore,
			ClearValue: wgpu.Color{
				R: float64(clearColor[0]),
				G: float64(clearColor[1]),
				B: float64(clearColor[2]),
				A: float64(clearColor[3]),
			},
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:              b.depthView,
			DepthLoadOp:       wgpu.LoadOpClear,
			DepthStoreOp:      wgpu.StoreOpDiscard,
			DepthClearValue:   1.0,
			StencilLoadOp:     wgpu.LoadOpClear,
			StencilStoreOp:    wgpu.StoreOpDiscard,
			StencilClearValue: 0,
		},
	})
	vp := b.viewport
	if vp.Width > 0 && vp.Height > 0 {
		pass.SetViewport(vp.X, vp.Y, vp.Width, vp.Height, vp.MinDepth, vp.MaxDepth)
	}
	pass.SetStencilReference(stencilReference)

	b.frameEncoder = encoder
	b.framePass = pass
	b.frameSurface = surfaceTexture
	b.frameView = view
	return nil
}

// bindGroup returns a cached bind group for the given entries, creating it on first use.
// Handles are never reused, so a key naming released objects is simply never hit again.
func (b *wgpuRendererBackendImpl) bindGroup(pipeline Handle, group int, layout *wgpu.BindGroupLayout, key string, entries func() ([]wgpu.BindGroupEntry, error)) (*wgpu.BindGroup, error) {
	cacheKey := fmt.Sprintf("%d/%d/%s", pipeline, group, key)
	if bg, ok := b.bindGroups[cacheKey]; ok {
		return bg, nil
	}
	e, err := entries()
	if err != nil {
		return nil, err
	}
	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   cacheKey,
		Layout:  layout,
		Entries: e,
	})
	if err != nil {
		return nil, err
	}
	b.bindGroups[cacheKey] = bg
	return bg, nil
}

func (b *wgpuRendererBackendImpl) Draw(call DrawCall) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return errors.New("draw: no frame in progress")
	}
	pipeObj, err := b.lookup(call.Pipeline, KindPipeline)
	if err != nil {
		return err
	}
	pipe := pipeObj.value.(*wgpuPipeline)
	vbObj, err := b.lookup(call.VertexBuffer, KindBuffer)
	if err != nil {
		return errors.Wrap(err, "draw: vertex buffer")
	}
	ibObj, err := b.lookup(call.IndexBuffer, KindBuffer)
	if err != nil {
		return errors.Wrap(err, "draw: index buffer")
	}
	if len(call.Constants) != len(pipe.desc.Uniforms) {
		return errors.Newf("draw: pipeline %s expects %d constant buffers, got %d", pipeObj.label, len(pipe.desc.Uniforms), len(call.Constants))
	}
	if len(call.Textures) != pipe.desc.TextureCount {
		return errors.Newf("draw: pipeline %s expects %d textures, got %d", pipeObj.label, pipe.desc.TextureCount, len(call.Textures))
	}

	var key strings.Builder
	for _, c := range call.Constants {
		fmt.Fprintf(&key, "%d@%d+%d;", c.Buffer, c.Offset, c.Size)
	}
	constants, err := b.bindGroup(call.Pipeline, 0, pipe.uniformLayout, key.String(), func() ([]wgpu.BindGroupEntry, error) {
		entries := make([]wgpu.BindGroupEntry, len(call.Constants))
		for i, c := range call.Constants {
			obj, err := b.lookup(c.Buffer, KindBuffer)
			if err != nil {
				return nil, errors.Wrapf(err, "constant buffer %d", i)
			}
			entries[i] = wgpu.BindGroupEntry{
				Binding: uint32(i),
				Buffer:  obj.value.(*wgpu.Buffer),
				Offset:  c.Offset,
				Size:    c.Size,
			}
		}
		return entries, nil
	})
	if err != nil {
		return errors.Wrap(err, "draw: constant buffers")
	}

	b.framePass.SetPipeline(pipe.pipeline)
	b.framePass.SetBindGroup(0, constants, nil)

	if pipe.resourceLayout != nil {
		key.Reset()
		for _, t := range call.Textures {
			fmt.Fprintf(&key, "t%d;", t)
		}
		fmt.Fprintf(&key, "s%d", call.Sampler)
		resources, err := b.bindGroup(call.Pipeline, 1, pipe.resourceLayout, key.String(), func() ([]wgpu.BindGroupEntry, error) {
			entries := make([]wgpu.BindGroupEntry, 0, len(call.Textures)+1)
			for i, t := range call.Textures {
				obj, err := b.lookup(t, KindTexture)
				if err != nil {
					return nil, errors.Wrapf(err, "texture slot %d", i)
				}
				entries = append(entries, wgpu.BindGroupEntry{
					Binding:     uint32(i),
					TextureView: obj.value.(*wgpu.TextureView),
				})
			}
			if pipe.desc.Sampler {
				obj, err := b.lookup(call.Sampler, KindSampler)
				if err != nil {
					return nil, errors.Wrap(err, "sampler")
				}
				entries = append(entries, wgpu.BindGroupEntry{
					Binding: uint32(len(call.Textures)),
					Sampler: obj.value.(*wgpu.Sampler),
				})
			}
			return entries, nil
		})
		if err != nil {
			return errors.Wrap(err, "draw: shader resources")
		}
		b.framePass.SetBindGroup(1, resources, nil)
	}

	b.framePass.SetVertexBuffer(0, vbObj.value.(*wgpu.Buffer), 0, wgpu.WholeSize)
	b.framePass.SetIndexBuffer(ibObj.value.(*wgpu.Buffer), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	b.framePass.DrawIndexed(call.IndexCount, 1, 0, 0, 0)
	return nil
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return errors.New("end frame: no frame in progress")
	}
	b.framePass.End()
	b.framePass.Release()
	b.framePass = nil

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		b.frameEncoder.Release()
		b.frameEncoder = nil
		b.releaseFrameSurface()
		return errors.Wrap(err, "finish command encoder")
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	b.frameEncoder.Release()
	b.frameEncoder = nil
	return nil
}

func (b *wgpuRendererBackendImpl) Present() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return nil
	}
	b.surface.Present()
	b.releaseFrameSurface()
	return nil
}

func (b *wgpuRendererBackendImpl) releaseFrameSurface() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackendImpl) Release(h Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	obj, ok := b.objects[h]
	if !ok {
		return
	}
	delete(b.objects, h)

	switch v := obj.value.(type) {
	case *wgpu.Buffer:
		v.Release()
	case *wgpu.TextureView:
		v.Release()
		if obj.kind == KindDepthStencilView && b.depthView == v {
			b.depthView = nil
		}
	case *wgpu.Sampler:
		v.Release()
	case *wgpu.ShaderModule:
		v.Release()
	case *wgpuDepthStencil:
		v.texture.Release()
	case *wgpuPipeline:
		prefix := fmt.Sprintf("%d/", h)
		for key, bg := range b.bindGroups {
			if strings.HasPrefix(key, prefix) {
				bg.Release()
				delete(b.bindGroups, key)
			}
		}
		v.pipeline.Release()
		v.layout.Release()
		v.uniformLayout.Release()
		if v.resourceLayout != nil {
			v.resourceLayout.Release()
		}
	case *wgpu.Surface:
		b.releaseFrameSurface()
		v.Release()
		b.surface = nil
	case *wgpu.Queue:
		v.Release()
		b.queue = nil
	case *wgpu.Device:
		for key, bg := range b.bindGroups {
			bg.Release()
			delete(b.bindGroups, key)
		}
		v.Release()
		b.device = nil
		if b.adapter != nil {
			b.adapter.Release()
			b.adapter = nil
		}
		if b.instance != nil {
			b.instance.Release()
			b.instance = nil
		}
	}
}

func (b *wgpuRendererBackendImpl) LiveObjects() map[ObjectKind]int {
	b.mu.Lock()
	defer b.mu.Unlock()

	counts := make(map[ObjectKind]int)
	for _, obj := range b.objects {
		counts[obj.kind]++
	}
	return counts
}
