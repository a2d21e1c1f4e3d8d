package shader

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer"
	"github.com/cockroachdb/errors"
)

// EntryPoint is the function name both stages of every technique export.
const EntryPoint = "main"

const (
	// DefaultRingSize is the number of constant buffer slots per frame.
	DefaultRingSize = 64

	// DefaultDiagnosticsPath is where a failed compile leaves the compiler output.
	DefaultDiagnosticsPath = "shader-error.txt"
)

// State is the lifecycle state of a Program.
type State int

const (
	StateUninitialized State = iota
	StateCompiled
	StateBound
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateCompiled:
		return "compiled"
	case StateBound:
		return "bound"
	default:
		return "unknown"
	}
}

// constantRing hands out one slot of a constant buffer per SetParameters call. Every slot is
// rewritten in full and none is reused within a frame, so a draw never sees a later write.
type constantRing struct {
	buffer   renderer.Handle
	slotSize uint64
	slots    int
	next     int
	frame    uint64
}

func (r *constantRing) acquire(frame uint64) (uint64, bool) {
	if frame != r.frame {
		r.frame = frame
		r.next = 0
	}
	if r.next >= r.slots {
		return 0, false
	}
	offset := uint64(r.next) * r.slotSize
	r.next++
	return offset, true
}

// programImpl is the implementation of the Program interface.
type programImpl struct {
	mu        *sync.Mutex
	ctx       renderer.DeviceContext
	backend   renderer.RendererBackend
	technique Technique

	sources         fs.FS
	diagnosticsPath string
	ringSize        int
	samplerDesc     renderer.SamplerDescriptor

	state        State
	vertexShader renderer.Handle
	pixelShader  renderer.Handle
	sampler      renderer.Handle
	rings        []*constantRing

	// pipelines maps a depth-stencil state to the pipeline variant baked with it.
	pipelines map[renderer.Handle]renderer.Handle

	constants []renderer.BufferRange
	textures  []renderer.Handle
}

// Program is one compiled technique: both shader stages, the input layout, its constant
// buffers, a sampler and a pipeline per depth-stencil state of the DeviceContext.
type Program interface {
	// Technique returns the technique the program was built from.
	Technique() Technique

	// State returns the lifecycle state.
	State() State

	// SetParameters transposes the world, view and projection matrices, rewrites every constant
	// buffer in full and binds the textures for the next draws.
	//
	// Parameters:
	//   - params: the values of this draw
	//
	// Returns:
	//   - error: a dropped-frame error if the program is not initialized, the texture count does
	//     not match the technique or a constant buffer could not be written
	SetParameters(params Parameters) error

	// Draw issues an indexed triangle-list draw of the mesh bound on the DeviceContext using
	// the pipeline for the currently bound depth-stencil state.
	//
	// Parameters:
	//   - indexCount: the number of indices to draw
	//
	// Returns:
	//   - error: a dropped-frame error if parameters were never set or no compatible mesh is bound
	Draw(indexCount uint32) error

	// Release destroys every object of the program and returns it to StateUninitialized.
	Release()
}

var _ Program = &programImpl{}

// NewProgram reads, compiles and validates a technique and creates its GPU objects.
// A missing source file is a not-found fatal error. A compile failure writes the compiler
// output to the diagnostics file. An input layout or binding that does not match the sources
// fails creation.
//
// Parameters:
//   - ctx: the device context to create objects on
//   - technique: the technique to build
//   - options: functional options applied after defaults
//
// Returns:
//   - Program: the compiled program
//   - error: a fatal startup error
func NewProgram(ctx renderer.DeviceContext, technique Technique, options ...ProgramBuilderOption) (Program, error) {
	if ctx == nil {
		return nil, common.Fatal(nil, "shader %s: device context is nil", technique.Name)
	}
	p := &programImpl{
		mu:              &sync.Mutex{},
		ctx:             ctx,
		backend:         ctx.Backend(),
		technique:       technique,
		sources:         DefaultSources(),
		diagnosticsPath: DefaultDiagnosticsPath,
		ringSize:        DefaultRingSize,
		samplerDesc: renderer.SamplerDescriptor{
			Label:         technique.Name + " Sampler",
			Filter:        renderer.FilterLinear,
			AddressU:      renderer.AddressWrap,
			AddressV:      renderer.AddressWrap,
			AddressW:      renderer.AddressWrap,
			MaxAnisotropy: 1,
			MinLOD:        0,
			MaxLOD:        32,
		},
		pipelines: make(map[renderer.Handle]renderer.Handle),
	}
	for _, opt := range options {
		opt(p)
	}
	if p.ringSize <= 0 {
		return nil, common.Fatal(nil, "shader %s: ring size must be positive, got %d", technique.Name, p.ringSize)
	}

	if err := p.initialize(); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

func (p *programImpl) initialize() error {
	t := p.technique

	vsSource, err := p.readSource(t.VertexSource)
	if err != nil {
		return err
	}
	psSource, err := p.readSource(t.PixelSource)
	if err != nil {
		return err
	}

	if p.vertexShader, err = p.compile(renderer.StageVertex, t.VertexSource, vsSource); err != nil {
		return err
	}
	if p.pixelShader, err = p.compile(renderer.StagePixel, t.PixelSource, psSource); err != nil {
		return err
	}

	vs := reflectSource(vsSource, renderer.StageVertex)
	ps := reflectSource(psSource, renderer.StagePixel)
	if err := validateInputLayout(t, vs); err != nil {
		return common.Fatal(err, "create input layout for %s", t.Name)
	}
	if err := validateBindings(t, vs, ps); err != nil {
		return common.Fatal(err, "create shader bindings for %s", t.Name)
	}

	for _, cb := range t.ConstantBuffers {
		slotSize := roundUpAlign(renderer.ConstantBufferAlignment, cb.Size)
		h, err := p.backend.CreateBuffer(renderer.BufferDescriptor{
			Label: t.Name + " " + cb.Name,
			Size:  slotSize * uint64(p.ringSize),
			Usage: renderer.UsageDynamic,
			Bind:  renderer.BindConstantBuffer,
		}, nil)
		if err != nil {
			return common.Fatal(err, "create %s for %s", cb.Name, t.Name)
		}
		p.rings = append(p.rings, &constantRing{buffer: h, slotSize: slotSize, slots: p.ringSize})
	}

	if t.Sampler {
		if p.sampler, err = p.backend.CreateSampler(p.samplerDesc); err != nil {
			return common.Fatal(err, "create sampler state for %s", t.Name)
		}
	}

	uniforms := make([]renderer.UniformBinding, len(t.ConstantBuffers))
	for i, cb := range t.ConstantBuffers {
		uniforms[i] = renderer.UniformBinding{Stage: cb.Stage, Size: cb.Size}
	}
	handles := p.ctx.Handles()
	for _, depthState := range []renderer.Handle{handles.DepthEnabledState, handles.DepthDisabledState} {
		pipe, err := p.backend.CreatePipeline(renderer.PipelineDescriptor{
			Label:             fmt.Sprintf("%s Pipeline %d", t.Name, depthState),
			VertexShader:      p.vertexShader,
			PixelShader:       p.pixelShader,
			VertexEntryPoint:  EntryPoint,
			PixelEntryPoint:   EntryPoint,
			Attributes:        t.InputLayout(),
			Stride:            t.Stride(),
			Uniforms:          uniforms,
			TextureCount:      t.TextureCount,
			Sampler:           t.Sampler,
			DepthStencilState: depthState,
			RasterizerState:   handles.RasterizerState,
			AlphaBlend:        t.AlphaBlend,
		})
		if err != nil {
			return common.Fatal(err, "create pipeline for %s", t.Name)
		}
		p.pipelines[depthState] = pipe
	}

	p.state = StateCompiled
	log.Printf("shader: %s compiled (%d constant buffers, %d textures)", t.Name, len(t.ConstantBuffers), t.TextureCount)
	return nil
}

// readSource reads one stage source, telling a missing file apart from other read failures.
func (p *programImpl) readSource(name string) (string, error) {
	data, err := fs.ReadFile(p.sources, name)
	if errors.Is(err, fs.ErrNotExist) {
		return "", common.Fatal(common.NotFound(err, name), "missing shader file")
	}
	if err != nil {
		return "", common.Fatal(err, "read shader file %s", name)
	}
	return string(data), nil
}

// compile compiles one stage. A compiler error leaves its full output in the diagnostics file.
func (p *programImpl) compile(stage renderer.ShaderStage, name, source string) (renderer.Handle, error) {
	h, err := p.backend.CreateShader(renderer.ShaderDescriptor{
		Label:      name,
		Stage:      stage,
		Source:     source,
		EntryPoint: EntryPoint,
	})
	if err == nil {
		return h, nil
	}

	var compileErr *renderer.ShaderCompileError
	if !errors.As(err, &compileErr) {
		return renderer.NullHandle, common.Fatal(err, "create %s shader %s", stage, name)
	}
	diagnostic := fmt.Sprintf("%s (%s shader)\n%s\n", name, stage, compileErr.Diagnostic)
	if werr := os.WriteFile(p.diagnosticsPath, []byte(diagnostic), 0o644); werr != nil {
		log.Printf("shader: write %s: %v", p.diagnosticsPath, werr)
	}
	return renderer.NullHandle, common.Fatal(err, "error compiling shader, check %s for message", p.diagnosticsPath)
}

// validateInputLayout checks that the vertex entry point reads exactly the technique's
// attributes, attribute i at location i with the same format.
func validateInputLayout(t Technique, vs reflection) error {
	if len(vs.inputs) != len(t.Attributes) {
		return errors.Newf("vertex shader reads %d inputs, technique %s declares %d", len(vs.inputs), t.Name, len(t.Attributes))
	}
	for i, a := range t.Attributes {
		in := vs.inputs[i]
		if in.location != i {
			return errors.Newf("vertex input %s is at location %d, %s expects location %d", in.name, in.location, a.Semantic, i)
		}
		if !in.known || in.format != a.Format {
			return errors.Newf("vertex input %s at location %d is %s, %s expects %s", in.name, i, in.typeName, a.Semantic, a.Format)
		}
	}
	return nil
}

// validateBindings checks that constant buffer i is declared at @group(0) @binding(i) in its
// stage with the technique's size, and that the pixel stage declares the texture slots and
// sampler in @group(1).
func validateBindings(t Technique, vs, ps reflection) error {
	for i, cb := range t.ConstantBuffers {
		r := vs
		if cb.Stage == renderer.StagePixel {
			r = ps
		}
		u, ok := r.uniform(0, i)
		if !ok {
			return errors.Newf("%s shader does not declare %s at @group(0) @binding(%d)", cb.Stage, cb.Name, i)
		}
		if u.size != cb.Size {
			return errors.Newf("%s is %d bytes in the %s shader, %s writes %d", u.typeName, u.size, cb.Stage, cb.Name, cb.Size)
		}
	}
	for i := 0; i < t.TextureCount; i++ {
		b, ok := ps.resource(1, i)
		if !ok || !strings.HasPrefix(b.typeName, "texture_") {
			return errors.Newf("pixel shader does not declare texture slot %d at @group(1) @binding(%d)", i, i)
		}
	}
	if t.Sampler {
		b, ok := ps.resource(1, t.TextureCount)
		if !ok || b.typeName != "sampler" {
			return errors.Newf("pixel shader does not declare a sampler at @group(1) @binding(%d)", t.TextureCount)
		}
	}
	return nil
}

func (p *programImpl) Technique() Technique {
	return p.technique
}

func (p *programImpl) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *programImpl) SetParameters(params Parameters) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	t := p.technique
	if p.state == StateUninitialized {
		return common.Dropped(nil, "set parameters on %s: program is not initialized", t.Name)
	}
	if len(params.Textures) != t.TextureCount {
		return common.Dropped(nil, "set parameters on %s: expects %d textures, got %d", t.Name, t.TextureCount, len(params.Textures))
	}
	for i, tex := range params.Textures {
		if tex.IsNull() {
			return common.Dropped(nil, "set parameters on %s: texture slot %d is null", t.Name, i)
		}
	}

	// WGSL multiplies column vectors, so each row-vector matrix is uploaded transposed.
	params.World = params.World.Transpose()
	params.View = params.View.Transpose()
	params.Projection = params.Projection.Transpose()

	frame := p.ctx.Frame()
	constants := make([]renderer.BufferRange, len(t.ConstantBuffers))
	for i, cb := range t.ConstantBuffers {
		ring := p.rings[i]
		offset, ok := ring.acquire(frame)
		if !ok {
			return common.Dropped(nil, "set parameters on %s: %s has no free slot left in frame %d", t.Name, cb.Name, frame)
		}
		data := make([]byte, cb.Size)
		cb.Encode(data, &params)
		if err := p.backend.WriteBuffer(ring.buffer, offset, data); err != nil {
			return common.Dropped(err, "set parameters on %s: write %s", t.Name, cb.Name)
		}
		constants[i] = renderer.BufferRange{Buffer: ring.buffer, Offset: offset, Size: cb.Size}
	}

	p.constants = constants
	p.textures = append([]renderer.Handle(nil), params.Textures...)
	p.state = StateBound
	return nil
}

func (p *programImpl) Draw(indexCount uint32) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	t := p.technique
	if p.state != StateBound {
		return common.Dropped(nil, "draw %s: parameters were never set", t.Name)
	}
	vertexBuffer, stride, indexBuffer := p.ctx.InputBuffers()
	if vertexBuffer.IsNull() || indexBuffer.IsNull() {
		return common.Dropped(nil, "draw %s: no mesh bound", t.Name)
	}
	if stride != t.Stride() {
		return common.Dropped(nil, "draw %s: bound mesh stride %d does not match input layout stride %d", t.Name, stride, t.Stride())
	}
	pipe, ok := p.pipelines[p.ctx.DepthStencilState()]
	if !ok {
		return common.Dropped(nil, "draw %s: no pipeline for depth stencil state %d", t.Name, p.ctx.DepthStencilState())
	}

	err := p.backend.Draw(renderer.DrawCall{
		Pipeline:     pipe,
		VertexBuffer: vertexBuffer,
		Stride:       stride,
		IndexBuffer:  indexBuffer,
		IndexCount:   indexCount,
		Constants:    p.constants,
		Textures:     p.textures,
		Sampler:      p.sampler,
	})
	if err != nil {
		return common.Dropped(err, "draw %s", t.Name)
	}
	return nil
}

func (p *programImpl) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for depthState, pipe := range p.pipelines {
		p.backend.Release(pipe)
		delete(p.pipelines, depthState)
	}
	p.backend.Release(p.sampler)
	for _, ring := range p.rings {
		p.backend.Release(ring.buffer)
	}
	p.backend.Release(p.pixelShader)
	p.backend.Release(p.vertexShader)

	p.sampler, p.pixelShader, p.vertexShader = renderer.NullHandle, renderer.NullHandle, renderer.NullHandle
	p.rings = nil
	p.constants = nil
	p.textures = nil
	p.state = StateUninitialized
}
