package renderer

import (
	"regexp"
	"sync"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/cockroachdb/errors"
)

// BufferWrite is one WriteBuffer call recorded by the headless backend.
type BufferWrite struct {
	Buffer Handle
	Offset uint64
	Data   []byte
}

// RecordedDraw is one Draw call recorded by the headless backend together with the
// depth-stencil state baked into its pipeline.
type RecordedDraw struct {
	Frame             uint64
	Call              DrawCall
	DepthStencilState Handle
}

// HeadlessBackend is a RendererBackend that allocates no GPU objects. It tracks every
// object it hands out and records buffer writes, draws and presents so callers can
// inspect what a frame would have done.
type HeadlessBackend interface {
	RendererBackend

	// Writes returns every WriteBuffer call since the last ResetRecording.
	Writes() []BufferWrite

	// Draws returns every Draw call since the last ResetRecording.
	Draws() []RecordedDraw

	// Presents returns the number of Present calls since creation.
	Presents() int

	// Fullscreen reports the current fullscreen state.
	Fullscreen() bool

	// Viewport returns the last viewport set.
	Viewport() Viewport

	// ReleaseOrder returns the kinds of released objects in release order.
	ReleaseOrder() []ObjectKind

	// Object returns the kind and label of a live handle.
	Object(h Handle) (ObjectKind, string, bool)

	// ResetRecording clears recorded writes and draws.
	ResetRecording()

	// FailOn makes the next creation of an object of kind fail. Used to exercise startup
	// failure paths.
	FailOn(kind ObjectKind)

	// FailWrites makes every WriteBuffer call fail while set.
	FailWrites(fail bool)
}

type headlessObject struct {
	kind  ObjectKind
	label string
	size  uint64
	desc  any
}

type headlessRendererBackendImpl struct {
	mu *sync.Mutex

	next    Handle
	objects map[Handle]*headlessObject

	adapter      common.AdapterInfo
	viewport     Viewport
	fullscreen   bool
	inFrame      bool
	frame        uint64
	presents     int
	writes       []BufferWrite
	draws        []RecordedDraw
	releaseOrder []ObjectKind

	failOn     map[ObjectKind]bool
	failWrites bool
}

var _ HeadlessBackend = &headlessRendererBackendImpl{}

// HeadlessBackendOption is a functional option applied to the headless backend during construction.
type HeadlessBackendOption func(*headlessRendererBackendImpl)

// WithHeadlessAdapter sets the adapter description the headless backend reports.
//
// Parameters:
//   - info: the adapter description
//
// Returns:
//   - HeadlessBackendOption: a function that applies the adapter option
func WithHeadlessAdapter(info common.AdapterInfo) HeadlessBackendOption {
	return func(h *headlessRendererBackendImpl) {
		h.adapter = info
	}
}

// NewHeadlessBackend creates a HeadlessBackend.
//
// Parameters:
//   - options: functional options applied after defaults
//
// Returns:
//   - HeadlessBackend: the new backend
func NewHeadlessBackend(options ...HeadlessBackendOption) HeadlessBackend {
	h := &headlessRendererBackendImpl{
		mu:      &sync.Mutex{},
		objects: make(map[Handle]*headlessObject),
		failOn:  make(map[ObjectKind]bool),
		adapter: common.AdapterInfo{Name: "Headless Adapter", Description: "recording backend"},
	}
	for _, opt := range options {
		opt(h)
	}
	return h
}

var entryPointRegex = regexp.MustCompile(`@(vertex|fragment)\s+fn\s+(\w+)\s*\(`)

func (h *headlessRendererBackendImpl) create(kind ObjectKind, label string, size uint64, desc any) (Handle, error) {
	if h.failOn[kind] {
		delete(h.failOn, kind)
		return NullHandle, errors.Newf("create %s: injected failure", kind)
	}
	h.next++
	h.objects[h.next] = &headlessObject{kind: kind, label: objectLabel(kind, label), size: size, desc: desc}
	return h.next, nil
}

func (h *headlessRendererBackendImpl) lookup(handle Handle, kind ObjectKind) (*headlessObject, error) {
	obj, ok := h.objects[handle]
	if !ok {
		return nil, errors.Newf("%s handle %d is not live", kind, handle)
	}
	if obj.kind != kind {
		return nil, errors.Newf("handle %d is a %s, not a %s", handle, obj.kind, kind)
	}
	return obj, nil
}

func (h *headlessRendererBackendImpl) Type() RendererBackendType {
	return BackendTypeHeadless
}

func (h *headlessRendererBackendImpl) AdapterInfo() (common.AdapterInfo, error) {
	return h.adapter, nil
}

func (h *headlessRendererBackendImpl) CreateDevice(desc SwapChainDescriptor) (DeviceObjects, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if desc.Width <= 0 || desc.Height <= 0 {
		return DeviceObjects{}, errors.Newf("invalid swap chain size %dx%d", desc.Width, desc.Height)
	}

	var objs DeviceObjects
	var err error
	if objs.Device, err = h.create(KindDevice, "", 0, nil); err != nil {
		return DeviceObjects{}, err
	}
	if objs.Context, err = h.create(KindContext, "", 0, nil); err != nil {
		h.releaseLocked(objs.Device)
		return DeviceObjects{}, err
	}
	if objs.SwapChain, err = h.create(KindSwapChain, "", 0, desc); err != nil {
		h.releaseLocked(objs.Context)
		h.releaseLocked(objs.Device)
		return DeviceObjects{}, err
	}
	h.fullscreen = desc.Fullscreen
	return objs, nil
}

func (h *headlessRendererBackendImpl) CreateRenderTargetView() (Handle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.create(KindRenderTargetView, "", 0, nil)
}

func (h *headlessRendererBackendImpl) CreateDepthStencilBuffer(width, height int) (Handle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.create(KindDepthStencilBuffer, "", uint64(width*height*4), nil)
}

func (h *headlessRendererBackendImpl) CreateDepthStencilView(buffer Handle) (Handle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.lookup(buffer, KindDepthStencilBuffer); err != nil {
		return NullHandle, err
	}
	return h.create(KindDepthStencilView, "", 0, buffer)
}

func (h *headlessRendererBackendImpl) CreateDepthStencilState(desc DepthStencilDescriptor) (Handle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.create(KindDepthStencilState, desc.Label, 0, desc)
}

func (h *headlessRendererBackendImpl) CreateRasterizerState(desc RasterizerDescriptor) (Handle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.create(KindRasterizerState, desc.Label, 0, desc)
}

func (h *headlessRendererBackendImpl) SetViewport(vp Viewport) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.viewport = vp
}

func (h *headlessRendererBackendImpl) SetFullscreenState(fullscreen bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fullscreen = fullscreen
	return nil
}

func (h *headlessRendererBackendImpl) CreateBuffer(desc BufferDescriptor, contents []byte) (Handle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if desc.Size == 0 {
		return NullHandle, errors.Newf("create buffer %q: zero size", desc.Label)
	}
	if uint64(len(contents)) > desc.Size {
		return NullHandle, errors.Newf("create buffer %q: %d bytes of contents exceed size %d", desc.Label, len(contents), desc.Size)
	}
	return h.create(KindBuffer, desc.Label, desc.Size, desc)
}

func (h *headlessRendererBackendImpl) WriteBuffer(buffer Handle, offset uint64, data []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.failWrites {
		return errors.New("write buffer: injected failure")
	}
	obj, err := h.lookup(buffer, KindBuffer)
	if err != nil {
		return err
	}
	if desc, ok := obj.desc.(BufferDescriptor); ok && desc.Usage != UsageDynamic {
		return errors.Newf("write buffer %q: buffer is not dynamic", obj.label)
	}
	if offset+uint64(len(data)) > obj.size {
		return errors.Newf("write buffer %q: range [%d, %d) exceeds size %d", obj.label, offset, offset+uint64(len(data)), obj.size)
	}
	h.writes = append(h.writes, BufferWrite{Buffer: buffer, Offset: offset, Data: append([]byte(nil), data...)})
	return nil
}

func (h *headlessRendererBackendImpl) CreateTexture(desc TextureDescriptor, pixels []byte) (Handle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if want := desc.Width * desc.Height * 4; want == 0 || len(pixels) != want {
		return NullHandle, errors.Newf("create texture %q: %d bytes for %dx%d RGBA8", desc.Label, len(pixels), desc.Width, desc.Height)
	}
	return h.create(KindTexture, desc.Label, uint64(len(pixels)), desc)
}

func (h *headlessRendererBackendImpl) CreateSampler(desc SamplerDescriptor) (Handle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.create(KindSampler, desc.Label, 0, desc)
}

func (h *headlessRendererBackendImpl) CreateShader(desc ShaderDescriptor) (Handle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	wantStage := "vertex"
	if desc.Stage == StagePixel {
		wantStage = "fragment"
	}
	found := false
	for _, m := range entryPointRegex.FindAllStringSubmatch(desc.Source, -1) {
		if m[1] == wantStage && m[2] == desc.EntryPoint {
			found = true
			break
		}
	}
	if !found {
		return NullHandle, &ShaderCompileError{
			Label:      desc.Label,
			Diagnostic: "entry point '" + desc.EntryPoint + "' with @" + wantStage + " attribute not found",
		}
	}
	return h.create(KindShader, desc.Label, uint64(len(desc.Source)), desc)
}

func (h *headlessRendererBackendImpl) CreatePipeline(desc PipelineDescriptor) (Handle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.lookup(desc.VertexShader, KindShader); err != nil {
		return NullHandle, errors.Wrap(err, "create pipeline: vertex shader")
	}
	if _, err := h.lookup(desc.PixelShader, KindShader); err != nil {
		return NullHandle, errors.Wrap(err, "create pipeline: pixel shader")
	}
	if _, err := h.lookup(desc.DepthStencilState, KindDepthStencilState); err != nil {
		return NullHandle, errors.Wrap(err, "create pipeline")
	}
	if _, err := h.lookup(desc.RasterizerState, KindRasterizerState); err != nil {
		return NullHandle, errors.Wrap(err, "create pipeline")
	}
	return h.create(KindPipeline, desc.Label, 0, desc)
}

func (h *headlessRendererBackendImpl) BeginFrame(clearColor [4]float32) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.inFrame {
		return errors.New("begin frame: previous frame not ended")
	}
	h.inFrame = true
	h.frame++
	return nil
}

func (h *headlessRendererBackendImpl) Draw(call DrawCall) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.inFrame {
		return errors.New("draw: no frame in progress")
	}
	pipe, err := h.lookup(call.Pipeline, KindPipeline)
	if err != nil {
		return err
	}
	if _, err := h.lookup(call.VertexBuffer, KindBuffer); err != nil {
		return errors.Wrap(err, "draw: vertex buffer")
	}
	if _, err := h.lookup(call.IndexBuffer, KindBuffer); err != nil {
		return errors.Wrap(err, "draw: index buffer")
	}
	desc := pipe.desc.(PipelineDescriptor)
	if len(call.Textures) != desc.TextureCount {
		return errors.Newf("draw: pipeline %q expects %d textures, got %d", pipe.label, desc.TextureCount, len(call.Textures))
	}
	if len(call.Constants) != len(desc.Uniforms) {
		return errors.Newf("draw: pipeline %q expects %d constant buffers, got %d", pipe.label, len(desc.Uniforms), len(call.Constants))
	}
	h.draws = append(h.draws, RecordedDraw{Frame: h.frame, Call: call, DepthStencilState: desc.DepthStencilState})
	return nil
}

func (h *headlessRendererBackendImpl) EndFrame() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.inFrame {
		return errors.New("end frame: no frame in progress")
	}
	h.inFrame = false
	return nil
}

func (h *headlessRendererBackendImpl) Present() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.presents++
	return nil
}

func (h *headlessRendererBackendImpl) Release(handle Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.releaseLocked(handle)
}

func (h *headlessRendererBackendImpl) releaseLocked(handle Handle) {
	obj, ok := h.objects[handle]
	if !ok {
		return
	}
	delete(h.objects, handle)
	h.releaseOrder = append(h.releaseOrder, obj.kind)
}

func (h *headlessRendererBackendImpl) LiveObjects() map[ObjectKind]int {
	h.mu.Lock()
	defer h.mu.Unlock()

	counts := make(map[ObjectKind]int)
	for _, obj := range h.objects {
		counts[obj.kind]++
	}
	return counts
}

func (h *headlessRendererBackendImpl) Writes() []BufferWrite {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]BufferWrite(nil), h.writes...)
}

func (h *headlessRendererBackendImpl) Draws() []RecordedDraw {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]RecordedDraw(nil), h.draws...)
}

func (h *headlessRendererBackendImpl) Presents() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.presents
}

func (h *headlessRendererBackendImpl) Fullscreen() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.fullscreen
}

func (h *headlessRendererBackendImpl) Viewport() Viewport {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.viewport
}

func (h *headlessRendererBackendImpl) ReleaseOrder() []ObjectKind {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]ObjectKind(nil), h.releaseOrder...)
}

func (h *headlessRendererBackendImpl) Object(handle Handle) (ObjectKind, string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	obj, ok := h.objects[handle]
	if !ok {
		return 0, "", false
	}
	return obj.kind, obj.label, true
}

func (h *headlessRendererBackendImpl) ResetRecording() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.writes = nil
	h.draws = nil
}

func (h *headlessRendererBackendImpl) FailOn(kind ObjectKind) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failOn[kind] = true
}

func (h *headlessRendererBackendImpl) FailWrites(fail bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failWrites = fail
}
