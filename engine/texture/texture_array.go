package texture

import (
	"fmt"
	"image"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer"
	"github.com/cockroachdb/errors"
)

type textureArrayImpl struct {
	textures []Texture
}

// TextureArray is an ordered group of textures bound to consecutive slots. The order is the
// order the consuming shader declares its textures in, e.g. [color, alpha] or [color, bump].
type TextureArray interface {
	// Len returns the number of textures.
	Len() int

	// Textures returns the textures in slot order.
	Textures() []Texture

	// Handles returns the shader-resource views in slot order.
	Handles() []renderer.Handle

	// Release frees every view. Calling it again does nothing.
	Release()
}

var _ TextureArray = &textureArrayImpl{}

// NewTextureArray loads paths in order. Decoding may run in parallel when WithWorkerPool is
// given; upload always happens in slot order on the calling goroutine. When any file fails,
// the views created so far are released.
//
// Parameters:
//   - ctx: the device context the views are created on
//   - paths: the image files in slot order
//   - options: functional options, see WithLabel, WithMaxDimension and WithWorkerPool
//
// Returns:
//   - TextureArray: the uploaded textures
//   - error: a fatal startup error naming the first slot that failed
func NewTextureArray(ctx renderer.DeviceContext, paths []string, options ...TextureBuilderOption) (TextureArray, error) {
	if len(paths) == 0 {
		return nil, common.Fatal(nil, "texture array: no files")
	}
	cfg := newLoadConfig(options)

	images := make([]*image.RGBA, len(paths))
	failures := make([]error, len(paths))
	decode := func(i int) {
		images[i], failures[i] = DecodeFile(paths[i], cfg.maxDimension)
	}

	if cfg.pool == nil {
		for i := range paths {
			decode(i)
		}
	} else {
		var wg sync.WaitGroup
		for i := range paths {
			wg.Add(1)
			slot := i
			cfg.pool.SubmitTask(worker.Task{
				ID: slot,
				Do: func() (any, error) {
					defer wg.Done()
					decode(slot)
					return nil, failures[slot]
				},
			})
		}
		wg.Wait()
	}

	for i, err := range failures {
		if err != nil {
			return nil, common.Fatal(err, "texture array slot %d", i)
		}
	}

	arr := &textureArrayImpl{textures: make([]Texture, 0, len(paths))}
	for i, img := range images {
		label := filepath.Base(paths[i])
		if cfg.label != "" {
			label = fmt.Sprintf("%s[%d]", cfg.label, i)
		}
		tex, err := upload(ctx, img, label, paths[i])
		if err != nil {
			arr.Release()
			return nil, errors.Wrapf(err, "texture array slot %d", i)
		}
		arr.textures = append(arr.textures, tex)
	}
	return arr, nil
}

func (a *textureArrayImpl) Len() int {
	return len(a.textures)
}

func (a *textureArrayImpl) Textures() []Texture {
	return append([]Texture(nil), a.textures...)
}

func (a *textureArrayImpl) Handles() []renderer.Handle {
	handles := make([]renderer.Handle, len(a.textures))
	for i, t := range a.textures {
		handles[i] = t.Handle()
	}
	return handles
}

func (a *textureArrayImpl) Release() {
	for i := len(a.textures) - 1; i >= 0; i-- {
		a.textures[i].Release()
	}
}
