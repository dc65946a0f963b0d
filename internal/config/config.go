// Package config handles softraster configuration loading and management.
package config

import (
	"fmt"
	"slices"
)

// Output modes.
const (
	ModeTerminal = "terminal"
	ModeWindow   = "window"
	ModeSnapshot = "snapshot"
)

// Modes lists every supported output mode.
var Modes = []string{ModeTerminal, ModeWindow, ModeSnapshot}

// Config holds all viewer settings.
type Config struct {
	Render  RenderConfig  `yaml:"render"`
	Camera  CameraConfig  `yaml:"camera"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// RenderConfig holds rasterizer and framebuffer settings.
type RenderConfig struct {
	Width       int        `yaml:"width"`
	Height      int        `yaml:"height"`
	FOVDegrees  float64    `yaml:"fov_degrees"`
	Near        float64    `yaml:"near"`
	Far         float64    `yaml:"far"`
	Mipmaps     bool       `yaml:"mipmaps"`
	DoubleSided bool       `yaml:"double_sided"`
	FrustumCull bool       `yaml:"frustum_cull"`
	Background  [3]int     `yaml:"background,flow"` // 0-255 per channel
	LightDir    [3]float64 `yaml:"light_dir,flow"`
}

// CameraConfig holds camera placement and motion settings.
type CameraConfig struct {
	// Position overrides automatic framing when set.
	Position        *[3]float64 `yaml:"position,flow,omitempty"`
	MoveSpeed       float64     `yaml:"move_speed"`  // units per second
	Sensitivity     float64     `yaml:"sensitivity"` // radians per cell of mouse travel
	SpringFrequency float64     `yaml:"spring_frequency"`
	SpringDamping   float64     `yaml:"spring_damping"`
}

// OutputConfig selects how frames are presented.
type OutputConfig struct {
	Mode   string `yaml:"mode"`
	Path   string `yaml:"path"`   // snapshot file or printf pattern for turntables
	Frames int    `yaml:"frames"` // snapshot frame count; above 1 renders a turntable
	FPS    int    `yaml:"fps"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Width:       640,
			Height:      360,
			FOVDegrees:  72,
			Near:        0.1,
			Far:         100,
			Mipmaps:     true,
			FrustumCull: true,
			Background:  [3]int{30, 30, 40},
			LightDir:    [3]float64{0.3, 1, 0.5},
		},
		Camera: CameraConfig{
			MoveSpeed:       2,
			Sensitivity:     0.01,
			SpringFrequency: 6,
			SpringDamping:   1,
		},
		Output: OutputConfig{
			Mode:   ModeTerminal,
			Path:   "frame.png",
			Frames: 1,
			FPS:    30,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch {
	case c.Render.Width <= 0 || c.Render.Height <= 0:
		return fmt.Errorf("render size %dx%d must be positive", c.Render.Width, c.Render.Height)
	case c.Render.FOVDegrees <= 0 || c.Render.FOVDegrees >= 180:
		return fmt.Errorf("fov %v must be between 0 and 180 degrees", c.Render.FOVDegrees)
	case c.Render.Near <= 0 || c.Render.Far <= c.Render.Near:
		return fmt.Errorf("clip planes near=%v far=%v must satisfy 0 < near < far", c.Render.Near, c.Render.Far)
	case !slices.Contains(Modes, c.Output.Mode):
		return fmt.Errorf("unknown output mode %q (want one of %v)", c.Output.Mode, Modes)
	case c.Output.Frames < 1:
		return fmt.Errorf("frame count %d must be at least 1", c.Output.Frames)
	case c.Output.FPS < 1:
		return fmt.Errorf("fps %d must be at least 1", c.Output.FPS)
	}
	return nil
}
