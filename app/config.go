package app

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Window         WindowConfig    `yaml:"window"`
	FramesInFlight int             `yaml:"frames_in_flight"`
	Waves          WavesConfig     `yaml:"waves"`
	Disturb        DisturbConfig   `yaml:"disturb"`
	Water          WaterConfig     `yaml:"water"`
	Camera         CameraConfig    `yaml:"camera"`
	Telemetry      TelemetryConfig `yaml:"telemetry"`
	Debug          bool            `yaml:"debug"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type WavesConfig struct {
	Rows        int     `yaml:"rows"`
	Cols        int     `yaml:"cols"`
	SpatialStep float32 `yaml:"spatial_step"`
	TimeStep    float32 `yaml:"time_step"`
	Speed       float32 `yaml:"speed"`
	Damping     float32 `yaml:"damping"`
}

// DisturbConfig drives the periodic random water drops. A zero seed
// derives one from the clock.
type DisturbConfig struct {
	Interval     float32 `yaml:"interval"`
	MinMagnitude float32 `yaml:"min_magnitude"`
	MaxMagnitude float32 `yaml:"max_magnitude"`
	Seed         uint64  `yaml:"seed"`
}

// WaterConfig holds the texture scroll rates in UV units per second.
type WaterConfig struct {
	ScrollU float32 `yaml:"scroll_u"`
	ScrollV float32 `yaml:"scroll_v"`
}

type CameraConfig struct {
	MoveSpeed float32 `yaml:"move_speed"`
	LookSpeed float32 `yaml:"look_speed"`
}

type TelemetryConfig struct {
	Dir          string `yaml:"dir"`
	WindowFrames int    `yaml:"window_frames"`
}

// LoadConfig starts from the embedded defaults and overlays the file
// at path if one is given.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.FramesInFlight < 2 {
		return fmt.Errorf("frames_in_flight must be at least 2, got %d", c.FramesInFlight)
	}
	if c.Waves.Rows < 3 || c.Waves.Cols < 3 {
		return fmt.Errorf("waves grid %dx%d too small", c.Waves.Rows, c.Waves.Cols)
	}
	if c.Disturb.Interval <= 0 {
		return fmt.Errorf("disturb interval must be positive, got %v", c.Disturb.Interval)
	}
	if c.Disturb.MinMagnitude > c.Disturb.MaxMagnitude {
		return fmt.Errorf("disturb magnitude range [%v,%v] inverted",
			c.Disturb.MinMagnitude, c.Disturb.MaxMagnitude)
	}
	return nil
}
