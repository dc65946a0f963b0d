package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/taigrr/softraster/internal/config"
	"github.com/taigrr/softraster/pkg/render"
)

// snapshot renders cfg.Output.Frames images to disk. With more than one
// frame the model turns once around its vertical axis. Frames are
// rasterized in order; PNG encoding runs concurrently.
func snapshot(ctx context.Context, sc *scene, cfg *config.Config, progress io.Writer, log *zap.Logger) ([]string, error) {
	frames := cfg.Output.Frames
	bar := progressbar.NewOptions(frames,
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("rendering"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	defer bar.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	paths := make([]string, frames)
	for i := range frames {
		if gctx.Err() != nil {
			break
		}
		angle := 2 * math.Pi * float64(i) / float64(frames)
		fb := render.NewFramebuffer(cfg.Render.Width, cfg.Render.Height)
		sc.draw(fb, sc.turntable(angle), viewFlags{})
		stats := sc.renderer.Stats

		path := framePath(cfg.Output.Path, i, frames)
		paths[i] = path
		g.Go(func() error {
			if err := fb.SavePNG(path); err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
			log.Debug("frame written",
				zap.String("path", path),
				zap.Int("fragments", stats.Fragments),
				zap.Int("back_faces", stats.BackFaces),
				zap.Int("meshes_culled", stats.MeshesCulled))
			_ = bar.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return paths, nil
}

// framePath names frame i of n. A single frame uses pattern as is. A
// pattern containing a % verb is formatted with the frame index; otherwise
// a zero-padded index is inserted before the extension.
func framePath(pattern string, i, n int) string {
	if n <= 1 {
		return pattern
	}
	if strings.Contains(pattern, "%") {
		return fmt.Sprintf(pattern, i)
	}
	ext := filepath.Ext(pattern)
	return fmt.Sprintf("%s_%04d%s", strings.TrimSuffix(pattern, ext), i, ext)
}
