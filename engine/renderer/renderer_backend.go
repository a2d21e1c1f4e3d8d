package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/google/uuid"
)

// RendererBackendType identifies the GPU backend implementation behind a DeviceContext.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota

	// BackendTypeHeadless selects the recording backend which creates no GPU objects.
	BackendTypeHeadless
)

func (t RendererBackendType) String() string {
	switch t {
	case BackendTypeWGPU:
		return "wgpu"
	case BackendTypeHeadless:
		return "headless"
	default:
		return "unknown"
	}
}

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

// ConstantBufferAlignment is the byte alignment of every constant buffer slot offset.
// It matches the WebGPU default minUniformBufferOffsetAlignment.
const ConstantBufferAlignment = 256

// Handle is an opaque reference to an object owned by a RendererBackend.
// The zero Handle is the null handle.
type Handle uint64

// NullHandle is the handle value of a released or never-created object.
const NullHandle Handle = 0

// IsNull reports whether h refers to no object.
func (h Handle) IsNull() bool {
	return h == NullHandle
}

// ObjectKind classifies the objects a backend creates.
type ObjectKind int

const (
	KindDevice ObjectKind = iota
	KindContext
	KindSwapChain
	KindRenderTargetView
	KindDepthStencilBuffer
	KindDepthStencilView
	KindDepthStencilState
	KindRasterizerState
	KindBuffer
	KindTexture
	KindSampler
	KindShader
	KindPipeline
)

var objectKindNames = map[ObjectKind]string{
	KindDevice:             "device",
	KindContext:            "context",
	KindSwapChain:          "swap-chain",
	KindRenderTargetView:   "render-target-view",
	KindDepthStencilBuffer: "depth-stencil-buffer",
	KindDepthStencilView:   "depth-stencil-view",
	KindDepthStencilState:  "depth-stencil-state",
	KindRasterizerState:    "rasterizer-state",
	KindBuffer:             "buffer",
	KindTexture:            "texture",
	KindSampler:            "sampler",
	KindShader:             "shader",
	KindPipeline:           "pipeline",
}

func (k ObjectKind) String() string {
	if name, ok := objectKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// objectLabel returns label when set, otherwise a unique label for an object of the given kind.
func objectLabel(kind ObjectKind, label string) string {
	if label != "" {
		return label
	}
	return kind.String() + "-" + uuid.NewString()
}

// SwapChainDescriptor configures the device and swap chain created by CreateDevice.
type SwapChainDescriptor struct {
	Width      int
	Height     int
	Refresh    common.Rational
	VSync      bool
	Fullscreen bool
}

// DeviceObjects are the three handles returned by CreateDevice.
type DeviceObjects struct {
	Device    Handle
	Context   Handle
	SwapChain Handle
}

// CompareFunction is a depth or stencil comparison.
type CompareFunction int

const (
	CompareNever CompareFunction = iota
	CompareLess
	CompareEqual
	CompareLessEqual
	CompareGreater
	CompareNotEqual
	CompareGreaterEqual
	CompareAlways
)

// StencilOp is the action applied to a stencil value.
type StencilOp int

const (
	StencilKeep StencilOp = iota
	StencilZero
	StencilReplace
	StencilIncrement
	StencilDecrement
	StencilInvert
)

// StencilFace configures stencil behaviour for one triangle facing.
type StencilFace struct {
	FailOp      StencilOp
	DepthFailOp StencilOp
	PassOp      StencilOp
	Compare     CompareFunction
}

// DepthStencilDescriptor configures a depth-stencil state object.
type DepthStencilDescriptor struct {
	Label            string
	DepthEnable      bool
	DepthWrite       bool
	DepthFunc        CompareFunction
	StencilEnable    bool
	StencilReadMask  uint8
	StencilWriteMask uint8
	Front            StencilFace
	Back             StencilFace
}

// CullMode selects which triangle facing is discarded.
type CullMode int

const (
	CullNone CullMode = iota
	CullFront
	CullBack
)

// FillMode selects solid or wireframe rasterization.
type FillMode int

const (
	FillSolid FillMode = iota
	FillWireframe
)

// RasterizerDescriptor configures a rasterizer state object.
type RasterizerDescriptor struct {
	Label                 string
	Cull                  CullMode
	Fill                  FillMode
	FrontCounterClockwise bool
	DepthClip             bool
	DepthBias             int32
	DepthBiasClamp        float32
	SlopeScaledDepthBias  float32
}

// Viewport is the render target region mapped from clip space.
type Viewport struct {
	X, Y          float32
	Width, Height float32
	MinDepth      float32
	MaxDepth      float32
}

// BufferUsage describes how a buffer's contents change after creation.
type BufferUsage int

const (
	// UsageDefault buffers are written once at creation and never touched by the CPU again.
	UsageDefault BufferUsage = iota
	// UsageDynamic buffers are rewritten by the CPU every frame.
	UsageDynamic
)

// BufferBind selects the pipeline stage a buffer binds to.
type BufferBind int

const (
	BindVertexBuffer BufferBind = iota
	BindIndexBuffer
	BindConstantBuffer
)

// BufferDescriptor configures a buffer object.
type BufferDescriptor struct {
	Label string
	Size  uint64
	Usage BufferUsage
	Bind  BufferBind
}

// TextureDescriptor configures an RGBA8 shader-resource texture.
type TextureDescriptor struct {
	Label  string
	Width  int
	Height int
}

// FilterMode selects texture filtering.
type FilterMode int

const (
	FilterLinear FilterMode = iota
	FilterPoint
)

// AddressMode selects how texture coordinates outside [0, 1] are resolved.
type AddressMode int

const (
	AddressWrap AddressMode = iota
	AddressClamp
	AddressMirror
)

// SamplerDescriptor configures a sampler state object.
type SamplerDescriptor struct {
	Label         string
	Filter        FilterMode
	AddressU      AddressMode
	AddressV      AddressMode
	AddressW      AddressMode
	MaxAnisotropy uint16
	MinLOD        float32
	MaxLOD        float32
}

// ShaderStage is a programmable pipeline stage.
type ShaderStage int

const (
	StageVertex ShaderStage = iota
	StagePixel
)

func (s ShaderStage) String() string {
	if s == StageVertex {
		return "vertex"
	}
	return "pixel"
}

// ShaderDescriptor is one shader stage to compile.
type ShaderDescriptor struct {
	Label      string
	Stage      ShaderStage
	Source     string
	EntryPoint string
}

// ShaderCompileError carries the full compiler diagnostic of a failed shader compile.
type ShaderCompileError struct {
	Label      string
	Diagnostic string
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("compile %s: %s", e.Label, e.Diagnostic)
}

// VertexFormat is the per-attribute data format of a vertex buffer.
type VertexFormat int

const (
	FormatFloat32x2 VertexFormat = iota
	FormatFloat32x3
	FormatFloat32x4
)

// Size returns the byte size of one attribute of this format.
func (f VertexFormat) Size() uint64 {
	switch f {
	case FormatFloat32x2:
		return 8
	case FormatFloat32x3:
		return 12
	case FormatFloat32x4:
		return 16
	default:
		return 0
	}
}

func (f VertexFormat) String() string {
	switch f {
	case FormatFloat32x2:
		return "float32x2"
	case FormatFloat32x3:
		return "float32x3"
	case FormatFloat32x4:
		return "float32x4"
	default:
		return "unknown"
	}
}

// VertexAttribute is one input layout element.
type VertexAttribute struct {
	Semantic string
	Format   VertexFormat
	Offset   uint64
	Location uint32
}

// UniformBinding is one constant buffer slot in a pipeline layout.
type UniformBinding struct {
	Stage ShaderStage
	Size  uint64
}

// PipelineDescriptor configures a pipeline object. Depth-stencil and rasterizer state are
// baked into the pipeline, so a program creates one pipeline per depth-stencil state it draws with.
type PipelineDescriptor struct {
	Label             string
	VertexShader      Handle
	PixelShader       Handle
	VertexEntryPoint  string
	PixelEntryPoint   string
	Attributes        []VertexAttribute
	Stride            uint64
	Uniforms          []UniformBinding
	TextureCount      int
	Sampler           bool
	DepthStencilState Handle
	RasterizerState   Handle
	AlphaBlend        bool
}

// BufferRange selects a constant buffer slot bound for one draw.
type BufferRange struct {
	Buffer Handle
	Offset uint64
	Size   uint64
}

// DrawCall is one indexed triangle-list draw with base vertex and base index zero.
type DrawCall struct {
	Pipeline     Handle
	VertexBuffer Handle
	Stride       uint64
	IndexBuffer  Handle
	IndexCount   uint32
	Constants    []BufferRange
	Textures     []Handle
	Sampler      Handle
}

// RendererBackend is the GPU API a DeviceContext drives. Implementations own every object
// they create and hand out Handles to them. A Handle is valid until passed to Release.
type RendererBackend interface {
	// Type reports which implementation this is.
	Type() RendererBackendType

	// AdapterInfo describes the primary display adapter.
	//
	// Returns:
	//   - common.AdapterInfo: the adapter description
	//   - error: an error if no adapter is available
	AdapterInfo() (common.AdapterInfo, error)

	// CreateDevice creates the device, its immediate submission context and the swap chain.
	//
	// Parameters:
	//   - desc: the swap chain configuration
	//
	// Returns:
	//   - DeviceObjects: the created handles
	//   - error: an error if any of the three objects could not be created
	CreateDevice(desc SwapChainDescriptor) (DeviceObjects, error)

	// CreateRenderTargetView creates a render target view over the swap chain back buffer.
	CreateRenderTargetView() (Handle, error)

	// CreateDepthStencilBuffer creates a 24-bit depth, 8-bit stencil texture.
	CreateDepthStencilBuffer(width, height int) (Handle, error)

	// CreateDepthStencilView creates a view over a depth-stencil buffer and attaches it to the
	// output merger together with the render target view.
	CreateDepthStencilView(buffer Handle) (Handle, error)

	// CreateDepthStencilState creates a depth-stencil state object.
	CreateDepthStencilState(desc DepthStencilDescriptor) (Handle, error)

	// CreateRasterizerState creates a rasterizer state object.
	CreateRasterizerState(desc RasterizerDescriptor) (Handle, error)

	// SetViewport sets the viewport used by every subsequent frame.
	SetViewport(vp Viewport)

	// SetFullscreenState moves the swap chain in or out of exclusive fullscreen.
	SetFullscreenState(fullscreen bool) error

	// CreateBuffer creates a buffer, optionally filled with initial contents.
	CreateBuffer(desc BufferDescriptor, contents []byte) (Handle, error)

	// WriteBuffer replaces len(data) bytes of a dynamic buffer starting at offset.
	WriteBuffer(buffer Handle, offset uint64, data []byte) error

	// CreateTexture creates a shader-resource view over an RGBA8 image.
	CreateTexture(desc TextureDescriptor, pixels []byte) (Handle, error)

	// CreateSampler creates a sampler state object.
	CreateSampler(desc SamplerDescriptor) (Handle, error)

	// CreateShader compiles one shader stage. A compile failure returns a *ShaderCompileError.
	CreateShader(desc ShaderDescriptor) (Handle, error)

	// CreatePipeline links compiled shaders, an input layout and fixed-function state.
	CreatePipeline(desc PipelineDescriptor) (Handle, error)

	// BeginFrame acquires the next back buffer and clears colour to clearColor and depth to 1.
	BeginFrame(clearColor [4]float32) error

	// Draw records one indexed draw into the current frame.
	Draw(call DrawCall) error

	// EndFrame submits the commands recorded since BeginFrame.
	EndFrame() error

	// Present shows the back buffer. With vsync this blocks until the next refresh interval.
	Present() error

	// Release destroys the object behind h. Releasing NullHandle or an unknown handle is a no-op.
	Release(h Handle)

	// LiveObjects returns the number of live objects of each kind.
	LiveObjects() map[ObjectKind]int
}
