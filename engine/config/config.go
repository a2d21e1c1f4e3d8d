package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/scene"
	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
)

// DefaultFile is the config file read when no path is given.
const DefaultFile = "oxy-tutorial.toml"

// Config holds every setting the application reads at startup.
type Config struct {
	Screen Screen `toml:"screen"`
	Assets Assets `toml:"assets"`
	Audio  Audio  `toml:"audio"`
	Scene  Scene  `toml:"scene"`
	Debug  Debug  `toml:"debug"`
}

// Screen is the display and projection setup.
type Screen struct {
	Width      int     `toml:"width"`
	Height     int     `toml:"height"`
	Fullscreen bool    `toml:"fullscreen"`
	VSync      bool    `toml:"vsync"`
	Near       float32 `toml:"near"`
	Far        float32 `toml:"far"`
}

// Assets names the files the scene loads. Relative paths are resolved against Dir.
type Assets struct {
	Dir       string   `toml:"dir"`
	ShaderDir string   `toml:"shader_dir"`
	Mesh      string   `toml:"mesh"`
	Textures  []string `toml:"textures"`
	Overlay   string   `toml:"overlay"`
	OverlayX  int      `toml:"overlay_x"`
	OverlayY  int      `toml:"overlay_y"`
}

// Audio is the background sound.
type Audio struct {
	Enabled bool    `toml:"enabled"`
	File    string  `toml:"file"`
	Volume  float64 `toml:"volume"`
}

// Scene selects what is drawn.
type Scene struct {
	Technique     string     `toml:"technique"`
	ClearColor    [4]float32 `toml:"clear_color"`
	RotationSpeed float32    `toml:"rotation_speed"`
}

// Debug holds development switches.
type Debug struct {
	Profiling       bool   `toml:"profiling"`
	Headless        bool   `toml:"headless"`
	Frames          int    `toml:"frames"`
	DiagnosticsPath string `toml:"diagnostics_path"`
}

// Default returns the built-in settings: an 800x600 window with vsync, a colour triangle and
// no sound.
//
// Returns:
//   - Config: the default settings
func Default() Config {
	return Config{
		Screen: Screen{
			Width:  800,
			Height: 600,
			VSync:  true,
			Near:   0.1,
			Far:    1000,
		},
		Assets: Assets{
			Dir: ".",
		},
		Audio: Audio{
			Volume: 1,
		},
		Scene: Scene{
			Technique:     shader.ColorTechnique.Name,
			ClearColor:    [4]float32{0, 0, 0, 1},
			RotationSpeed: scene.DefaultRotationSpeed,
		},
		Debug: Debug{
			DiagnosticsPath: "shader-error.txt",
		},
	}
}

// Load reads the TOML file at path over the defaults. A missing file yields the defaults.
//
// Parameters:
//   - path: the config file
//
// Returns:
//   - Config: the settings
//   - error: a fatal startup error if the file cannot be read, parsed or validated
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Default(), common.Fatal(err, "read config %s", path)
	}
	cfg, err := Decode(bytes.NewReader(data))
	if err != nil {
		return cfg, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Decode reads TOML over the defaults. Keys the Config does not declare are rejected.
//
// Parameters:
//   - r: the TOML document
//
// Returns:
//   - Config: the settings
//   - error: a fatal startup error that also matches ErrMalformedData
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			err = errors.Wrapf(err, "line %d column %d", row, col)
		}
		return Default(), common.Fatal(errors.Mark(err, common.ErrMalformedData), "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Encode writes the settings as TOML.
//
// Parameters:
//   - w: the destination
//
// Returns:
//   - error: an error if writing fails
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate checks the settings for values no component can start with.
//
// Returns:
//   - error: a fatal startup error naming the first bad setting
func (c Config) Validate() error {
	switch {
	case c.Screen.Width <= 0 || c.Screen.Height <= 0:
		return common.Fatal(nil, "screen size %dx%d must be positive", c.Screen.Width, c.Screen.Height)
	case c.Screen.Near <= 0 || c.Screen.Far <= c.Screen.Near:
		return common.Fatal(nil, "depth range %g..%g must satisfy 0 < near < far", c.Screen.Near, c.Screen.Far)
	case c.Debug.Frames < 0:
		return common.Fatal(nil, "frame budget %d must not be negative", c.Debug.Frames)
	case c.Audio.Enabled && c.Audio.File == "":
		return common.Fatal(nil, "audio is enabled without a file")
	}
	if _, ok := shader.TechniqueByName(c.Scene.Technique); !ok {
		return common.Fatal(nil, "unknown technique %q", c.Scene.Technique)
	}
	return nil
}

// Technique returns the technique named by the scene settings, the colour technique if the
// name is unknown.
func (c Config) Technique() shader.Technique {
	if t, ok := shader.TechniqueByName(c.Scene.Technique); ok {
		return t
	}
	return shader.ColorTechnique
}

// Resolve joins a relative asset path onto the asset directory. Empty paths stay empty.
//
// Parameters:
//   - path: the asset path as written in the config
//
// Returns:
//   - string: the path to open
func (c Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Assets.Dir, path)
}
