package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func newTestContext(t *testing.T) (renderer.DeviceContext, renderer.HeadlessBackend) {
	t.Helper()
	backend := renderer.NewHeadlessBackend()
	ctx, err := renderer.NewDeviceContext(backend)
	require.NoError(t, err)
	t.Cleanup(ctx.Shutdown)
	return ctx, backend
}

func solid(w, h int, c color.Color) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestNewTexture(t *testing.T) {
	ctx, backend := newTestContext(t)
	path := writePNG(t, t.TempDir(), "stone01.png", solid(4, 2, color.NRGBA{R: 255, A: 255}))

	tex, err := NewTexture(ctx, path)
	require.NoError(t, err)

	w, h := tex.Size()
	assert.Equal(t, 4, w)
	assert.Equal(t, 2, h)
	assert.Equal(t, path, tex.Path())
	assert.Equal(t, "stone01.png", tex.Label())

	kind, label, ok := backend.Object(tex.Handle())
	require.True(t, ok)
	assert.Equal(t, renderer.KindTexture, kind)
	assert.Equal(t, "stone01.png", label)

	tex.Release()
	tex.Release()
	assert.True(t, tex.Handle().IsNull())
	assert.Zero(t, backend.LiveObjects()[renderer.KindTexture])
}

func TestNewTextureErrors(t *testing.T) {
	ctx, _ := newTestContext(t)
	dir := t.TempDir()

	_, err := NewTexture(ctx, filepath.Join(dir, "missing.png"))
	require.Error(t, err)
	assert.Equal(t, common.ClassFatalStartup, common.Classify(err))
	assert.True(t, errors.Is(err, common.ErrNotFound))

	garbage := filepath.Join(dir, "garbage.png")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0o644))
	_, err = NewTexture(ctx, garbage)
	require.Error(t, err)
	assert.Equal(t, common.ClassFatalStartup, common.Classify(err))
	assert.True(t, errors.Is(err, common.ErrMalformedData))
}

func TestDecodeConvertsToRGBA(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, solid(3, 3, color.NRGBA{G: 255, A: 255})))

	img, err := Decode(&buf, 0)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 3), img.Bounds())
	assert.Len(t, img.Pix, 3*3*4)
	assert.Equal(t, color.RGBA{G: 255, A: 255}, img.RGBAAt(1, 1))
}

func TestDecodeMaxDimension(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(64, 16, color.White)))

	img, err := Decode(&buf, 32)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 8), img.Bounds())
}

func TestFit(t *testing.T) {
	tests := []struct {
		w, h, limit  int
		wantW, wantH int
	}{
		{100, 50, 0, 100, 50},
		{100, 50, 200, 100, 50},
		{100, 50, 10, 10, 5},
		{50, 100, 10, 5, 10},
		{1000, 1, 10, 10, 1},
	}
	for _, tc := range tests {
		w, h := fit(tc.w, tc.h, tc.limit)
		assert.Equal(t, tc.wantW, w)
		assert.Equal(t, tc.wantH, h)
	}
}

func TestNewTextureFromImage(t *testing.T) {
	ctx, backend := newTestContext(t)

	sub := image.NewRGBA(image.Rect(0, 0, 8, 8)).SubImage(image.Rect(2, 2, 6, 4))
	tex, err := NewTextureFromImage(ctx, sub, WithLabel("font"))
	require.NoError(t, err)
	w, h := tex.Size()
	assert.Equal(t, 4, w)
	assert.Equal(t, 2, h)
	_, label, ok := backend.Object(tex.Handle())
	require.True(t, ok)
	assert.Equal(t, "font", label)

	_, err = NewTextureFromImage(ctx, image.NewRGBA(image.Rectangle{}))
	assert.Equal(t, common.ClassFatalStartup, common.Classify(err))
}

func TestNewTextureArrayKeepsSlotOrder(t *testing.T) {
	ctx, backend := newTestContext(t)
	dir := t.TempDir()
	paths := []string{
		writePNG(t, dir, "stone01.png", solid(2, 2, color.White)),
		writePNG(t, dir, "dirt01.png", solid(4, 4, color.White)),
		writePNG(t, dir, "alpha01.png", solid(8, 8, color.White)),
	}

	pool := worker.NewDynamicWorkerPool(2, 16, time.Second)
	defer pool.Stop()

	arr, err := NewTextureArray(ctx, paths, WithWorkerPool(pool), WithLabel("square"))
	require.NoError(t, err)
	require.Equal(t, 3, arr.Len())

	for i, tex := range arr.Textures() {
		w, _ := tex.Size()
		assert.Equal(t, 2<<i, w)
		assert.Equal(t, paths[i], tex.Path())
	}
	handles := arr.Handles()
	_, label, ok := backend.Object(handles[1])
	require.True(t, ok)
	assert.Equal(t, "square[1]", label)

	arr.Release()
	assert.Zero(t, backend.LiveObjects()[renderer.KindTexture])
}

func TestNewTextureArrayFailureReleases(t *testing.T) {
	ctx, backend := newTestContext(t)
	dir := t.TempDir()
	paths := []string{
		writePNG(t, dir, "stone01.png", solid(2, 2, color.White)),
		filepath.Join(dir, "missing.png"),
	}

	_, err := NewTextureArray(ctx, paths)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slot 1")
	assert.True(t, errors.Is(err, common.ErrNotFound))

	backend.FailOn(renderer.KindTexture)
	paths[1] = writePNG(t, dir, "dirt01.png", solid(2, 2, color.White))
	_, err = NewTextureArray(ctx, paths)
	require.Error(t, err)
	assert.Zero(t, backend.LiveObjects()[renderer.KindTexture])

	_, err = NewTextureArray(ctx, nil)
	assert.Equal(t, common.ClassFatalStartup, common.Classify(err))
}
