package model

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer"
	"github.com/google/uuid"
)

// bitmapVertexCount is two triangles.
const bitmapVertexCount = 6

type bitmapImpl struct {
	mu *sync.Mutex

	ctx          renderer.DeviceContext
	label        string
	screenWidth  int
	screenHeight int
	width        int
	height       int

	// lastX and lastY are the position the vertex buffer currently holds.
	lastX, lastY int
	written      bool

	vertexBuffer renderer.Handle
	indexBuffer  renderer.Handle
}

// Bitmap is a screen-aligned textured quad for 2D overlays. Its vertices are placed in pixels
// relative to the top-left corner of the screen and are meant to be drawn through the
// orthographic projection with the base view matrix and depth testing off.
type Bitmap interface {
	// Label returns the label the buffers were created with.
	Label() string

	// Size returns the bitmap size in pixels.
	Size() (int, int)

	// Position returns the top-left corner the vertex buffer was last written for.
	Position() (int, int)

	// IndexCount returns the number of indices to draw.
	IndexCount() int

	// Render rewrites the vertex buffer when the position changed and binds the bitmap as the
	// input of subsequent draws.
	//
	// Parameters:
	//   - x, y: the top-left corner in pixels, y growing downwards
	//
	// Returns:
	//   - error: a dropped-frame error if the bitmap was released or the write failed
	Render(x, y int) error

	// Release frees both buffers. Calling it again does nothing.
	Release()
}

var _ Bitmap = &bitmapImpl{}

// NewBitmap creates a dynamic vertex buffer and an immutable index buffer for a quad of the
// given size on a screen the size of ctx's back buffer.
//
// Parameters:
//   - ctx: the device context the buffers are created on
//   - width, height: the bitmap size in pixels
//   - options: functional options applied after defaults
//
// Returns:
//   - Bitmap: the bitmap, not yet positioned
//   - error: a fatal startup error
func NewBitmap(ctx renderer.DeviceContext, width, height int, options ...BitmapBuilderOption) (Bitmap, error) {
	b := &bitmapImpl{
		mu:     &sync.Mutex{},
		ctx:    ctx,
		width:  width,
		height: height,
	}
	for _, opt := range options {
		opt(b)
	}
	if b.label == "" {
		b.label = "bitmap-" + uuid.NewString()
	}
	if ctx == nil {
		return nil, common.Fatal(nil, "bitmap %s: device context is nil", b.label)
	}
	if width <= 0 || height <= 0 {
		return nil, common.Fatal(nil, "bitmap %s: size %dx%d", b.label, width, height)
	}
	b.screenWidth, b.screenHeight = ctx.ScreenSize()

	backend := ctx.Backend()
	vb, err := backend.CreateBuffer(renderer.BufferDescriptor{
		Label: b.label + " Vertex Buffer",
		Size:  uint64(bitmapVertexCount) * FormatPositionTexture.Stride(),
		Usage: renderer.UsageDynamic,
		Bind:  renderer.BindVertexBuffer,
	}, nil)
	if err != nil {
		return nil, common.Fatal(err, "bitmap %s: create vertex buffer", b.label)
	}
	b.vertexBuffer = vb

	indices := MeshData{Vertices: make([]Vertex, bitmapVertexCount)}.IndexBytes()
	ib, err := backend.CreateBuffer(renderer.BufferDescriptor{
		Label: b.label + " Index Buffer",
		Size:  uint64(len(indices)),
		Usage: renderer.UsageDefault,
		Bind:  renderer.BindIndexBuffer,
	}, indices)
	if err != nil {
		b.Release()
		return nil, common.Fatal(err, "bitmap %s: create index buffer", b.label)
	}
	b.indexBuffer = ib
	return b, nil
}

// BitmapVertices returns the quad for a bitmap of the given size with its top-left corner at
// x, y on a screen of the given size, in the coordinate space of an orthographic projection
// centred on the screen.
//
// Parameters:
//   - screenWidth, screenHeight: the screen size in pixels
//   - width, height: the bitmap size in pixels
//   - x, y: the top-left corner in pixels, y growing downwards
//
// Returns:
//   - MeshData: six vertices in FormatPositionTexture
func BitmapVertices(screenWidth, screenHeight, width, height, x, y int) MeshData {
	left := float32(-screenWidth/2 + x)
	right := left + float32(width)
	top := float32(screenHeight/2 - y)
	bottom := top - float32(height)

	corner := func(px, py, u, v float32) Vertex {
		return Vertex{Position: common.Vec3{px, py, 0}, TexCoord: common.Vec2{u, v}, Normal: towardsEye, Color: white}
	}
	return MeshData{
		Format: FormatPositionTexture,
		Vertices: []Vertex{
			corner(left, top, 0, 0),
			corner(right, bottom, 1, 1),
			corner(left, bottom, 0, 1),
			corner(left, top, 0, 0),
			corner(right, top, 1, 0),
			corner(right, bottom, 1, 1),
		},
	}
}

func (b *bitmapImpl) Label() string {
	return b.label
}

func (b *bitmapImpl) Size() (int, int) {
	return b.width, b.height
}

func (b *bitmapImpl) Position() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastX, b.lastY
}

func (b *bitmapImpl) IndexCount() int {
	return bitmapVertexCount
}

func (b *bitmapImpl) Render(x, y int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.vertexBuffer.IsNull() || b.indexBuffer.IsNull() {
		return common.Dropped(nil, "render bitmap %s: released", b.label)
	}
	if !b.written || x != b.lastX || y != b.lastY {
		data := BitmapVertices(b.screenWidth, b.screenHeight, b.width, b.height, x, y)
		if err := b.ctx.Backend().WriteBuffer(b.vertexBuffer, 0, data.VertexBytes()); err != nil {
			return common.Dropped(err, "render bitmap %s: write vertices", b.label)
		}
		b.lastX, b.lastY, b.written = x, y, true
	}
	b.ctx.SetInputBuffers(b.vertexBuffer, FormatPositionTexture.Stride(), b.indexBuffer)
	return nil
}

func (b *bitmapImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	backend := b.ctx.Backend()
	vb, stride, ib := b.ctx.InputBuffers()
	if vb == b.vertexBuffer && ib == b.indexBuffer && !vb.IsNull() {
		b.ctx.SetInputBuffers(renderer.NullHandle, stride, renderer.NullHandle)
	}
	for _, h := range []*renderer.Handle{&b.indexBuffer, &b.vertexBuffer} {
		if !h.IsNull() {
			backend.Release(*h)
			*h = renderer.NullHandle
		}
	}
}
