package scene

import (
	"io/fs"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/light"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer/shader"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *sceneImpl)

// WithTechnique selects the technique the main object is drawn with. Defaults to the texture
// technique.
//
// Parameters:
//   - technique: the technique
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithTechnique(technique shader.Technique) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.technique = technique
	}
}

// WithClearColor sets the colour the back buffer is cleared to each frame. Defaults to opaque black.
//
// Parameters:
//   - r, g, b, a: the clear colour
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithClearColor(r, g, b, a float32) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.clearColor = [4]float32{r, g, b, a}
	}
}

// WithShaderSources sets the file system technique sources are read from. Defaults to the
// embedded sources.
//
// Parameters:
//   - sources: the shader file system
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithShaderSources(sources fs.FS) SceneBuilderOption {
	return func(s *sceneImpl) {
		if sources != nil {
			s.sources = sources
		}
	}
}

// WithDiagnosticsPath sets the file shader compiler output is written to.
//
// Parameters:
//   - path: the diagnostics file
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithDiagnosticsPath(path string) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.diagnosticsPath = path
	}
}

// WithConstantRingSize sets how many draws per frame each program can serve.
//
// Parameters:
//   - slots: the ring size of every program the scene creates
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithConstantRingSize(slots int) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.ringSize = slots
	}
}

// WithLoadWorkers sets how many textures of an array are decoded at once. Defaults to 3.
//
// Parameters:
//   - n: the number of decode workers (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLoadWorkers(n int) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.loadWorkers = max(n, 1)
	}
}

// WithMaxTextureDimension downscales textures whose larger side exceeds limit.
//
// Parameters:
//   - limit: the largest width or height kept, 0 for no limit
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithMaxTextureDimension(limit int) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.maxTextureDimension = limit
	}
}

// WithCameraPosition sets where the camera starts. Defaults to (0, 0, -10).
//
// Parameters:
//   - x, y, z: the camera position
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCameraPosition(x, y, z float32) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.cameraPosition = common.Vec3{x, y, z}
	}
}

// WithRotationSpeed sets the yaw added to the main object each nominal frame, in radians.
//
// Parameters:
//   - radians: the yaw per frame, negative to spin the other way
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithRotationSpeed(radians float32) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.rotationSpeed = radians
	}
}

// WithTranslationSpeed sets the texture translation added each nominal frame.
//
// Parameters:
//   - speed: the translation per frame in texture coordinates
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithTranslationSpeed(speed float32) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.translationSpeed = speed
	}
}

// WithLight sets the light instead of the default one lit techniques create.
//
// Parameters:
//   - l: the light
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLight(l light.Light) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.lgt = l
	}
}
