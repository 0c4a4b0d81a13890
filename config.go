package oitview

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type WindowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
}

type RenderConfig struct {
	// Mode is "oit" (weighted-blended transparency) or "opaque".
	Mode string `toml:"mode"`
	// PresentMode is "fifo", "immediate" or "mailbox".
	PresentMode     string     `toml:"present_mode"`
	ClearColor      [4]float64 `toml:"clear_color"`
	Filter          string     `toml:"filter"`
	Wrap            string     `toml:"wrap"`
	ValidateShaders bool       `toml:"validate_shaders"`
}

type CameraConfig struct {
	FovyDeg   float32 `toml:"fovy_deg"`
	Near      float32 `toml:"near"`
	Far       float32 `toml:"far"`
	MoveSpeed float32 `toml:"move_speed"`
	ZoomMin   float32 `toml:"zoom_min"`
	ZoomMax   float32 `toml:"zoom_max"`
	ZoomStep  float32 `toml:"zoom_step"`
}

type TimerConfig struct {
	UPS        int `toml:"ups"`
	MaxCatchUp int `toml:"max_catch_up"`
}

type AssetsConfig struct {
	// Root is an on-disk resource root with img/ and shaders/ below it.
	// Empty selects the resources embedded in the binary.
	Root    string `toml:"root"`
	Texture string `toml:"texture"`
}

type InputConfig struct {
	// Bindings maps key names to action names, e.g. up = "forward".
	Bindings map[string]string `toml:"bindings"`
}

type DebugConfig struct {
	Enabled      bool `toml:"enabled"`
	WatchShaders bool `toml:"watch_shaders"`
}

type Config struct {
	Window WindowConfig `toml:"window"`
	Render RenderConfig `toml:"render"`
	Camera CameraConfig `toml:"camera"`
	Timer  TimerConfig  `toml:"timer"`
	Assets AssetsConfig `toml:"assets"`
	Input  InputConfig  `toml:"input"`
	Debug  DebugConfig  `toml:"debug"`
}

func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "oitview",
		},
		Render: RenderConfig{
			Mode:            "oit",
			PresentMode:     "fifo",
			ClearColor:      [4]float64{0.1, 0.2, 0.3, 1.0},
			Filter:          "linear",
			Wrap:            "clamp",
			ValidateShaders: true,
		},
		Camera: CameraConfig{
			FovyDeg:   90,
			Near:      0.1,
			Far:       100,
			MoveSpeed: 2.5,
			ZoomMin:   45,
			ZoomMax:   120,
			ZoomStep:  2,
		},
		Timer: TimerConfig{
			UPS:        UPS,
			MaxCatchUp: DefaultMaxCatchUp,
		},
		Assets: AssetsConfig{
			Texture: "img/glass.png",
		},
	}
}

// LoadConfig reads a TOML file over DefaultConfig. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("parse config: %s", strict.String())
		}
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Encode renders the config as TOML.
func (c Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	switch c.Render.Mode {
	case "oit", "opaque":
	default:
		errs = append(errs, fmt.Errorf("render.mode must be \"oit\" or \"opaque\", got %q", c.Render.Mode))
	}
	switch c.Render.PresentMode {
	case "fifo", "immediate", "mailbox":
	default:
		errs = append(errs, fmt.Errorf("render.present_mode %q is not supported", c.Render.PresentMode))
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		errs = append(errs, fmt.Errorf("camera clip planes must satisfy 0 < near < far, got %v..%v", c.Camera.Near, c.Camera.Far))
	}
	if c.Camera.ZoomMin <= 0 || c.Camera.ZoomMax >= 180 || c.Camera.ZoomMin > c.Camera.ZoomMax {
		errs = append(errs, fmt.Errorf("camera zoom bounds %v..%v are invalid", c.Camera.ZoomMin, c.Camera.ZoomMax))
	} else if c.Camera.FovyDeg < c.Camera.ZoomMin || c.Camera.FovyDeg > c.Camera.ZoomMax {
		errs = append(errs, fmt.Errorf("camera.fovy_deg %v is outside the zoom bounds", c.Camera.FovyDeg))
	}
	if c.Timer.UPS <= 0 {
		errs = append(errs, fmt.Errorf("timer.ups must be positive, got %d", c.Timer.UPS))
	}
	if c.Timer.MaxCatchUp < 0 {
		errs = append(errs, fmt.Errorf("timer.max_catch_up must not be negative"))
	}
	if c.Assets.Texture == "" {
		errs = append(errs, errors.New("assets.texture must be set"))
	}
	if c.Debug.WatchShaders && c.Assets.Root == "" {
		errs = append(errs, errors.New("debug.watch_shaders needs assets.root"))
	}
	return errors.Join(errs...)
}
