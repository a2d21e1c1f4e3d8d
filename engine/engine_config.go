package engine

import (
	"github.com/Carmen-Shannon/oxy-tutorial/engine/audio"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/config"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/scene"
)

// ConfigOptions translates settings into engine options. The window and backend are not
// included since they depend on how the program was started.
//
// Parameters:
//   - cfg: validated settings
//
// Returns:
//   - []EngineBuilderOption: the options, in the order they should be applied
func ConfigOptions(cfg config.Config) []EngineBuilderOption {
	sceneOptions := []scene.SceneBuilderOption{
		scene.WithTechnique(cfg.Technique()),
		scene.WithClearColor(cfg.Scene.ClearColor[0], cfg.Scene.ClearColor[1], cfg.Scene.ClearColor[2], cfg.Scene.ClearColor[3]),
		scene.WithRotationSpeed(cfg.Scene.RotationSpeed),
		scene.WithDiagnosticsPath(cfg.Debug.DiagnosticsPath),
	}
	if cfg.Assets.ShaderDir != "" {
		sceneOptions = append(sceneOptions, scene.WithShaderSources(shader.DirSources(cfg.Resolve(cfg.Assets.ShaderDir))))
	}

	assets := scene.Assets{Mesh: cfg.Resolve(cfg.Assets.Mesh)}
	for _, t := range cfg.Assets.Textures {
		assets.Textures = append(assets.Textures, cfg.Resolve(t))
	}
	if cfg.Assets.Overlay != "" {
		assets.Overlay = &scene.Overlay{
			Texture: cfg.Resolve(cfg.Assets.Overlay),
			X:       cfg.Assets.OverlayX,
			Y:       cfg.Assets.OverlayY,
		}
	}

	options := []EngineBuilderOption{
		WithDeviceOptions(
			renderer.WithVSync(cfg.Screen.VSync),
			renderer.WithFullscreen(cfg.Screen.Fullscreen),
			renderer.WithDepthRange(cfg.Screen.Near, cfg.Screen.Far),
		),
		WithSceneOptions(sceneOptions...),
		WithAssets(assets),
		WithProfiling(cfg.Debug.Profiling),
		WithFrameBudget(uint64(max(cfg.Debug.Frames, 0))),
	}
	if cfg.Audio.Enabled {
		options = append(options, WithSound(cfg.Resolve(cfg.Audio.File), audio.WithVolume(cfg.Audio.Volume)))
	}
	return options
}
