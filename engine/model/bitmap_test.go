package model

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float32At(data []byte, index int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(data[index*4:]))
}

func TestBitmapVertices(t *testing.T) {
	data := BitmapVertices(800, 600, 256, 128, 100, 50)
	require.Len(t, data.Vertices, 6)

	topLeft := data.Vertices[0]
	assert.Equal(t, common.Vec3{-300, 250, 0}, topLeft.Position)
	assert.Equal(t, common.Vec2{0, 0}, topLeft.TexCoord)

	bottomRight := data.Vertices[1]
	assert.Equal(t, common.Vec3{-44, 122, 0}, bottomRight.Position)
	assert.Equal(t, common.Vec2{1, 1}, bottomRight.TexCoord)

	assert.Equal(t, common.Vec3{-44, 250, 0}, data.Vertices[4].Position)
}

func TestBitmapRenderWritesOnlyOnMove(t *testing.T) {
	ctx, backend := newTestContext(t)
	bitmap, err := NewBitmap(ctx, 256, 256, WithBitmapLabel("overlay"))
	require.NoError(t, err)
	defer bitmap.Release()

	assert.Equal(t, "overlay", bitmap.Label())
	assert.Equal(t, 6, bitmap.IndexCount())

	require.NoError(t, bitmap.Render(100, 100))
	require.NoError(t, bitmap.Render(100, 100))
	require.Len(t, backend.Writes(), 1)

	first := backend.Writes()[0].Data
	require.Len(t, first, 6*20)
	assert.Equal(t, float32(-300), float32At(first, 0))
	assert.Equal(t, float32(200), float32At(first, 1))

	require.NoError(t, bitmap.Render(0, 0))
	require.Len(t, backend.Writes(), 2)
	x, y := bitmap.Position()
	assert.Equal(t, 0, x)
	assert.Equal(t, 0, y)

	vb, stride, ib := ctx.InputBuffers()
	assert.False(t, vb.IsNull())
	assert.False(t, ib.IsNull())
	assert.Equal(t, uint64(20), stride)
}

func TestBitmapReleaseAndFailures(t *testing.T) {
	ctx, backend := newTestContext(t)

	_, err := NewBitmap(ctx, 0, 10)
	require.Error(t, err)
	assert.Equal(t, common.ClassFatalStartup, common.Classify(err))

	bitmap, err := NewBitmap(ctx, 32, 32)
	require.NoError(t, err)

	backend.FailWrites(true)
	err = bitmap.Render(1, 1)
	require.Error(t, err)
	assert.Equal(t, common.ClassFrameDropped, common.Classify(err))
	backend.FailWrites(false)

	require.NoError(t, bitmap.Render(1, 1))
	bitmap.Release()
	bitmap.Release()
	assert.Zero(t, backend.LiveObjects()[renderer.KindBuffer])

	err = bitmap.Render(1, 1)
	require.Error(t, err)
	assert.Equal(t, common.ClassFrameDropped, common.Classify(err))
}
