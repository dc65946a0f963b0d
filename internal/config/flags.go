package config

import (
	"flag"
	"math"
	"strings"
)

// Flags holds the command line overrides. Only flags that were set on the
// command line override the config file.
type Flags struct {
	fs *flag.FlagSet

	config      *string
	mode        *string
	width       *int
	height      *int
	fov         *float64
	out         *string
	frames      *int
	fps         *int
	mipmaps     *bool
	doubleSided *bool
	debug       *bool
	logFile     *string
}

// RegisterFlags adds the softraster flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		fs:          fs,
		config:      fs.String("config", "", "Path to config file"),
		mode:        fs.String("mode", ModeTerminal, "Output mode: "+strings.Join(Modes, ", ")),
		width:       fs.Int("width", 0, "Framebuffer width in pixels"),
		height:      fs.Int("height", 0, "Framebuffer height in pixels"),
		fov:         fs.Float64("fov", 0, "Vertical field of view in degrees"),
		out:         fs.String("out", "", "Snapshot output path (printf pattern when -frames > 1)"),
		frames:      fs.Int("frames", 0, "Number of snapshot frames; more than one renders a turntable"),
		fps:         fs.Int("fps", 0, "Target frames per second for interactive modes"),
		mipmaps:     fs.Bool("mipmaps", true, "Generate texture mipmaps"),
		doubleSided: fs.Bool("double-sided", false, "Draw back faces"),
		debug:       fs.Bool("debug", false, "Enable debug logging"),
		logFile:     fs.String("log-file", "", "Also write logs to this file, rotated"),
	}
}

// ConfigPath returns the explicit config path if provided via -config.
func (f *Flags) ConfigPath() string {
	return *f.config
}

// apply copies explicitly set flags into cfg.
func (f *Flags) apply(cfg *Config) {
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "mode":
			cfg.Output.Mode = *f.mode
		case "width":
			cfg.Render.Width = *f.width
		case "height":
			cfg.Render.Height = *f.height
		case "fov":
			cfg.Render.FOVDegrees = *f.fov
		case "out":
			cfg.Output.Path = *f.out
		case "frames":
			cfg.Output.Frames = *f.frames
		case "fps":
			cfg.Output.FPS = *f.fps
		case "mipmaps":
			cfg.Render.Mipmaps = *f.mipmaps
		case "double-sided":
			cfg.Render.DoubleSided = *f.doubleSided
		case "debug":
			if *f.debug {
				cfg.Logging.Level = "debug"
			}
		case "log-file":
			cfg.Logging.LogFile = *f.logFile
		}
	})
}

// FOV returns the vertical field of view in radians.
func (r RenderConfig) FOV() float64 {
	return r.FOVDegrees * math.Pi / 180
}
