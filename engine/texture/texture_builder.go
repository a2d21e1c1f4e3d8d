package texture

import (
	"github.com/Carmen-Shannon/automation/tools/worker"
)

// TextureBuilderOption is a functional option for NewTexture, NewTextureFromImage and
// NewTextureArray.
type TextureBuilderOption func(*loadConfig)

// WithLabel sets the label of the created view. Arrays suffix it with the slot index.
//
// Parameters:
//   - label: the texture name
//
// Returns:
//   - TextureBuilderOption: a function that applies the label option
func WithLabel(label string) TextureBuilderOption {
	return func(c *loadConfig) {
		c.label = label
	}
}

// WithMaxDimension scales images whose width or height exceeds limit down to fit.
//
// Parameters:
//   - limit: the largest allowed side in pixels, or 0 for no limit
//
// Returns:
//   - TextureBuilderOption: a function that applies the max dimension option
func WithMaxDimension(limit int) TextureBuilderOption {
	return func(c *loadConfig) {
		c.maxDimension = limit
	}
}

// WithWorkerPool decodes the files of a texture array in parallel on pool. Without it files
// are decoded one after another on the calling goroutine.
//
// Parameters:
//   - pool: the pool decode tasks are submitted to
//
// Returns:
//   - TextureBuilderOption: a function that applies the worker pool option
func WithWorkerPool(pool worker.DynamicWorkerPool) TextureBuilderOption {
	return func(c *loadConfig) {
		c.pool = pool
	}
}
