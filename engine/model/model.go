package model

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer"
	"github.com/google/uuid"
)

type meshImpl struct {
	mu *sync.Mutex

	ctx          renderer.DeviceContext
	label        string
	format       VertexFormat
	vertexCount  int
	vertexBuffer renderer.Handle
	indexBuffer  renderer.Handle
}

// Mesh is geometry uploaded to immutable vertex and index buffers. The index buffer holds
// 0..N-1, so IndexCount always equals VertexCount.
type Mesh interface {
	// Label returns the label the buffers were created with.
	Label() string

	// Format returns the vertex format of the vertex buffer.
	Format() VertexFormat

	// VertexCount returns the number of vertices uploaded.
	VertexCount() int

	// IndexCount returns the number of indices uploaded.
	IndexCount() int

	// Indices returns the index list that was uploaded.
	Indices() []uint32

	// Bind makes this mesh the input of subsequent draws on the device context.
	//
	// Returns:
	//   - error: a dropped-frame error if the mesh was released
	Bind() error

	// Release frees both buffers. Calling it again does nothing.
	Release()
}

var _ Mesh = &meshImpl{}

// NewMesh uploads data to a vertex and an index buffer created with default usage.
//
// Parameters:
//   - ctx: the device context the buffers are created on
//   - data: the mesh geometry, at least one vertex
//   - options: functional options applied after defaults
//
// Returns:
//   - Mesh: the uploaded mesh
//   - error: a fatal startup error
func NewMesh(ctx renderer.DeviceContext, data MeshData, options ...MeshBuilderOption) (Mesh, error) {
	m := &meshImpl{
		mu:          &sync.Mutex{},
		ctx:         ctx,
		format:      data.Format,
		vertexCount: len(data.Vertices),
	}
	for _, opt := range options {
		opt(m)
	}
	if m.label == "" {
		m.label = "mesh-" + uuid.NewString()
	}
	if ctx == nil {
		return nil, common.Fatal(nil, "mesh %s: device context is nil", m.label)
	}
	if len(data.Vertices) == 0 {
		return nil, common.Fatal(common.Malformed("mesh has no vertices"), "mesh %s", m.label)
	}
	if data.Format.Stride() == 0 {
		return nil, common.Fatal(nil, "mesh %s: unknown vertex format %d", m.label, int(data.Format))
	}

	backend := ctx.Backend()
	vertices := data.VertexBytes()
	vb, err := backend.CreateBuffer(renderer.BufferDescriptor{
		Label: m.label + " Vertex Buffer",
		Size:  uint64(len(vertices)),
		Usage: renderer.UsageDefault,
		Bind:  renderer.BindVertexBuffer,
	}, vertices)
	if err != nil {
		return nil, common.Fatal(err, "mesh %s: create vertex buffer", m.label)
	}
	m.vertexBuffer = vb

	indices := data.IndexBytes()
	ib, err := backend.CreateBuffer(renderer.BufferDescriptor{
		Label: m.label + " Index Buffer",
		Size:  uint64(len(indices)),
		Usage: renderer.UsageDefault,
		Bind:  renderer.BindIndexBuffer,
	}, indices)
	if err != nil {
		m.Release()
		return nil, common.Fatal(err, "mesh %s: create index buffer", m.label)
	}
	m.indexBuffer = ib
	return m, nil
}

func (m *meshImpl) Label() string {
	return m.label
}

func (m *meshImpl) Format() VertexFormat {
	return m.format
}

func (m *meshImpl) VertexCount() int {
	return m.vertexCount
}

func (m *meshImpl) IndexCount() int {
	return m.vertexCount
}

func (m *meshImpl) Indices() []uint32 {
	return MeshData{Vertices: make([]Vertex, m.vertexCount)}.Indices()
}

func (m *meshImpl) Bind() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.vertexBuffer.IsNull() || m.indexBuffer.IsNull() {
		return common.Dropped(nil, "bind mesh %s: released", m.label)
	}
	m.ctx.SetInputBuffers(m.vertexBuffer, m.format.Stride(), m.indexBuffer)
	return nil
}

func (m *meshImpl) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()

	backend := m.ctx.Backend()
	vb, stride, ib := m.ctx.InputBuffers()
	if vb == m.vertexBuffer && ib == m.indexBuffer && !vb.IsNull() {
		m.ctx.SetInputBuffers(renderer.NullHandle, stride, renderer.NullHandle)
	}
	for _, h := range []*renderer.Handle{&m.indexBuffer, &m.vertexBuffer} {
		if !h.IsNull() {
			backend.Release(*h)
			*h = renderer.NullHandle
		}
	}
}
