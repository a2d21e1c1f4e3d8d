package texture

import (
	"image"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer"
	"github.com/google/uuid"
)

type textureImpl struct {
	mu *sync.Mutex

	ctx    renderer.DeviceContext
	label  string
	path   string
	width  int
	height int
	handle renderer.Handle
}

// Texture is an RGBA8 image uploaded as a shader-resource view.
type Texture interface {
	// Label returns the label the view was created with.
	Label() string

	// Path returns the file the texture was loaded from, or "" for in-memory images.
	Path() string

	// Size returns the uploaded width and height in pixels.
	Size() (int, int)

	// Handle returns the shader-resource view, or the null handle after Release.
	Handle() renderer.Handle

	// Release frees the view. Calling it again does nothing.
	Release()
}

var _ Texture = &textureImpl{}

// loadConfig holds the options shared by NewTexture and NewTextureArray.
type loadConfig struct {
	label        string
	maxDimension int
	pool         worker.DynamicWorkerPool
}

func newLoadConfig(options []TextureBuilderOption) *loadConfig {
	cfg := &loadConfig{}
	for _, opt := range options {
		opt(cfg)
	}
	return cfg
}

// NewTexture decodes the image at path and uploads it.
//
// Parameters:
//   - ctx: the device context the view is created on
//   - path: the image file
//   - options: functional options, see WithLabel and WithMaxDimension
//
// Returns:
//   - Texture: the uploaded texture
//   - error: a fatal startup error that also matches ErrNotFound or ErrMalformedData
func NewTexture(ctx renderer.DeviceContext, path string, options ...TextureBuilderOption) (Texture, error) {
	cfg := newLoadConfig(options)
	img, err := DecodeFile(path, cfg.maxDimension)
	if err != nil {
		return nil, common.Fatal(err, "texture %s", path)
	}
	return upload(ctx, img, common.Coalesce(cfg.label, filepath.Base(path)), path)
}

// NewTextureFromImage uploads an image that is already in memory.
//
// Parameters:
//   - ctx: the device context the view is created on
//   - img: the image, converted to RGBA8 if needed
//   - options: functional options, see WithLabel and WithMaxDimension
//
// Returns:
//   - Texture: the uploaded texture
//   - error: a fatal startup error
func NewTextureFromImage(ctx renderer.DeviceContext, img image.Image, options ...TextureBuilderOption) (Texture, error) {
	cfg := newLoadConfig(options)
	if img == nil || img.Bounds().Empty() {
		return nil, common.Fatal(common.Malformed("image is empty"), "texture %s", cfg.label)
	}
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Bounds().Min != (image.Point{}) || rgba.Stride != 4*rgba.Bounds().Dx() || cfg.maxDimension > 0 {
		rgba = toRGBA(img, cfg.maxDimension)
	}
	return upload(ctx, rgba, common.Coalesce(cfg.label, "texture-"+uuid.NewString()), "")
}

func upload(ctx renderer.DeviceContext, img *image.RGBA, label, path string) (*textureImpl, error) {
	if ctx == nil {
		return nil, common.Fatal(nil, "texture %s: device context is nil", label)
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	handle, err := ctx.Backend().CreateTexture(renderer.TextureDescriptor{
		Label:  label,
		Width:  w,
		Height: h,
	}, img.Pix)
	if err != nil {
		return nil, common.Fatal(err, "texture %s: create shader resource view", label)
	}
	return &textureImpl{
		mu:     &sync.Mutex{},
		ctx:    ctx,
		label:  label,
		path:   path,
		width:  w,
		height: h,
		handle: handle,
	}, nil
}

func (t *textureImpl) Label() string {
	return t.label
}

func (t *textureImpl) Path() string {
	return t.path
}

func (t *textureImpl) Size() (int, int) {
	return t.width, t.height
}

func (t *textureImpl) Handle() renderer.Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.handle
}

func (t *textureImpl) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.handle.IsNull() {
		return
	}
	t.ctx.Backend().Release(t.handle)
	t.handle = renderer.NullHandle
}
