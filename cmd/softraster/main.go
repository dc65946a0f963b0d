// softraster - software 3D renderer for glTF models.
// Draws in the terminal, in a window, or to PNG files, entirely on the CPU.
//
// Controls (terminal and window):
//
//	W/S         - Move forward/back
//	A/D         - Strafe left/right
//	Space/C     - Move up/down
//	Arrows      - Turn
//	Mouse drag  - Look around
//	X           - Toggle wireframe
//	T           - Toggle textures
//	B           - Toggle bounding box
//	G           - Toggle grid and axes
//	R           - Reset camera
//	?           - Toggle HUD (terminal)
//	Esc         - Quit
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/taigrr/softraster/internal/config"
	"github.com/taigrr/softraster/internal/logger"
	"github.com/taigrr/softraster/pkg/models"
	"github.com/taigrr/softraster/pkg/render"
)

func main() {
	flags := config.RegisterFlags(flag.CommandLine)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "softraster - software 3D renderer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: softraster [options] [model.gltf|model.glb]\n\n")
		fmt.Fprintf(os.Stderr, "Without a model a textured demo cube is shown.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() > 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flags, flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(flags *config.Flags, modelPath string) error {
	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}

	logOpts := logger.Options{Level: cfg.Logging.Level}
	// The terminal viewer owns the screen, so it only logs to a file.
	if cfg.Output.Mode != config.ModeTerminal {
		logOpts.Console = os.Stderr
	}
	if cfg.Logging.LogFile != "" {
		logOpts.File = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	log, err := logger.New(logOpts)
	if err != nil {
		return err
	}
	defer logger.Sync(log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	table := render.NewMaterialTable()
	model, name, err := loadModel(modelPath, table, cfg, log)
	if err != nil {
		return err
	}
	log.Info("model ready",
		zap.String("name", name),
		zap.Int("triangles", model.TriangleCount()),
		zap.Strings("materials", table.Names()))

	sc := newScene(model, table, cfg)

	switch cfg.Output.Mode {
	case config.ModeWindow:
		return runWindow(sc, cfg, name, log)
	case config.ModeSnapshot:
		paths, err := snapshot(ctx, sc, cfg, os.Stderr, log)
		if err != nil {
			return err
		}
		log.Info("snapshot complete", zap.Int("frames", len(paths)), zap.String("first", paths[0]))
		return nil
	default:
		return runTerminal(ctx, sc, cfg, name, log)
	}
}

// loadModel loads path, or builds the demo cube when path is empty.
func loadModel(path string, table *render.MaterialTable, cfg *config.Config, log *zap.Logger) (*render.Model, string, error) {
	if path == "" {
		return demoModel(table, cfg.Render.Mipmaps), "demo cube", nil
	}
	if !models.IsModelPath(path) {
		return nil, "", fmt.Errorf("unsupported format: %s (use .gltf or .glb)", filepath.Ext(path))
	}

	opts := models.DefaultOptions()
	opts.GenerateMipmaps = cfg.Render.Mipmaps
	opts.Logger = log.Named("models")
	model, err := models.Load(path, table, opts)
	if err != nil {
		return nil, "", fmt.Errorf("load model: %w", err)
	}
	return model, filepath.Base(path), nil
}
