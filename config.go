package voxstream

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	ModeThreaded = "threaded"
	ModeBounded  = "bounded"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Window    WindowConfig    `yaml:"window"`
	Streaming StreamingConfig `yaml:"streaming"`
	Camera    CameraConfig    `yaml:"camera"`
	Log       LogConfig       `yaml:"log"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type StreamingConfig struct {
	Mode          string `yaml:"mode"`
	Radius        int32  `yaml:"radius"`
	BatchSize     int    `yaml:"batch_size"`
	Workers       int    `yaml:"workers"` // 0 uses every core
	CacheCapacity int    `yaml:"cache_capacity"`
	ResultBuffer  int    `yaml:"result_buffer"`
}

type CameraConfig struct {
	Speed       float32    `yaml:"speed"`
	Sensitivity float32    `yaml:"sensitivity"`
	Fov         float32    `yaml:"fov"`
	Near        float32    `yaml:"near"`
	Far         float32    `yaml:"far"`
	TickRate    int        `yaml:"tick_rate"`
	Position    [3]float32 `yaml:"position,flow"`
}

type LogConfig struct {
	Prefix string `yaml:"prefix"`
	Debug  bool   `yaml:"debug"`
}

func DefaultConfig() Config {
	return Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "voxstream",
		},
		Streaming: StreamingConfig{
			Mode:          ModeThreaded,
			Radius:        16,
			BatchSize:     4,
			Workers:       0,
			CacheCapacity: 1024,
			ResultBuffer:  256,
		},
		Camera: CameraConfig{
			Speed:       50,
			Sensitivity: 0.1,
			Fov:         60,
			Near:        0.01,
			Far:         1000,
			TickRate:    60,
			Position:    [3]float32{0, 260, 0},
		},
		Log: LogConfig{
			Prefix: "voxstream",
		},
	}
}

// LoadConfig reads a YAML file over the defaults. An empty path returns the
// defaults. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	if err := decodeConfig(f, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func decodeConfig(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
		}
	}

	check(c.Window.Width > 0 && c.Window.Height > 0, "window size %dx%d", c.Window.Width, c.Window.Height)

	s := c.Streaming
	check(s.Mode == ModeThreaded || s.Mode == ModeBounded, "streaming mode %q", s.Mode)
	check(s.Radius > 0, "streaming radius %d", s.Radius)
	check(s.BatchSize > 0, "batch size %d", s.BatchSize)
	check(s.Workers >= 0, "workers %d", s.Workers)
	check(s.ResultBuffer > 0, "result buffer %d", s.ResultBuffer)
	if s.Mode == ModeBounded {
		check(s.CacheCapacity > 0, "cache capacity %d", s.CacheCapacity)
	}

	cam := c.Camera
	check(cam.Speed > 0, "camera speed %v", cam.Speed)
	check(cam.Fov > 0 && cam.Fov < 180, "camera fov %v", cam.Fov)
	check(cam.Near > 0 && cam.Far > cam.Near, "camera clip range %v..%v", cam.Near, cam.Far)
	check(cam.TickRate > 0, "tick rate %d", cam.TickRate)

	return errors.Join(errs...)
}
