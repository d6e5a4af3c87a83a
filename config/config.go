// Package config holds the render settings of the demo, read from a TOML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/bloeys/nrend/materials"
	"github.com/pelletier/go-toml/v2"
)

const DefaultPath = "nrend.toml"

type WindowSettings struct {
	Title  string `toml:"title"`
	Width  int32  `toml:"width"`
	Height int32  `toml:"height"`
	VSync  bool   `toml:"vsync"`
}

type RenderSettings struct {
	ClearColor [4]float32 `toml:"clear_color"`
	// SrgbOutput lets the GPU gamma correct the final image
	SrgbOutput  bool `toml:"srgb_output"`
	PointLights int  `toml:"point_lights"`
	DebugLines  bool `toml:"debug_lines"`
}

type ShaderSettings struct {
	// HotReloadDir is watched for changed shaders. Empty disables hot reload and only embedded shaders are used
	HotReloadDir string `toml:"hot_reload_dir"`
}

// EffectSettings are the initial factors of the built-in post process effects
type EffectSettings struct {
	Invert    float32 `toml:"invert"`
	Grayscale float32 `toml:"grayscale"`
	Damage    float32 `toml:"damage"`
	Blur      float32 `toml:"blur"`
	BlurSize  float32 `toml:"blur_size"`
}

type Settings struct {
	Window  WindowSettings `toml:"window"`
	Render  RenderSettings `toml:"render"`
	Shaders ShaderSettings `toml:"shaders"`
	Effects EffectSettings `toml:"effects"`
}

func Default() Settings {
	return Settings{
		Window: WindowSettings{
			Title:  "nrend",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Render: RenderSettings{
			ClearColor:  [4]float32{0, 0, 0, 1},
			SrgbOutput:  true,
			PointLights: materials.MaxPointLights,
			DebugLines:  true,
		},
		Effects: EffectSettings{
			BlurSize: 2,
		},
	}
}

func (s *Settings) Validate() error {

	if s.Window.Width <= 0 || s.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", s.Window.Width, s.Window.Height)
	}

	if s.Render.PointLights < 0 || s.Render.PointLights > materials.MaxPointLights {
		return fmt.Errorf("point_lights must be in [0, %d], got %d", materials.MaxPointLights, s.Render.PointLights)
	}

	for name, f := range map[string]float32{"invert": s.Effects.Invert, "grayscale": s.Effects.Grayscale, "damage": s.Effects.Damage, "blur": s.Effects.Blur} {
		if f < 0 || f > 1 {
			return fmt.Errorf("effect factor '%s' must be in [0, 1], got %v", name, f)
		}
	}

	return nil
}

// Decode reads settings from r on top of the defaults. Unknown keys are an error
func Decode(r io.Reader) (Settings, error) {

	s := Default()

	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {

		var strictErr *toml.StrictMissingError
		if errors.As(err, &strictErr) {
			return Settings{}, fmt.Errorf("unknown settings: %s", strictErr.String())
		}

		return Settings{}, err
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}

	return s, nil
}

// Load reads the settings file at path. A missing file is not an error and returns the defaults
func Load(path string) (Settings, error) {

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}

	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings file '%s': %w", path, err)
	}

	s, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings file '%s': %w", path, err)
	}

	return s, nil
}

func Save(path string, s *Settings) error {

	data, err := toml.Marshal(s)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
