package main

import (
	"fmt"
	"time"

	"github.com/taigrr/softraster/pkg/render"
)

// hud renders an overlay with model info and frame counters.
type hud struct {
	filename  string
	polyCount int
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

func newHUD(filename string, polyCount int) *hud {
	return &hud{
		filename:  filename,
		polyCount: polyCount,
		fpsTime:   time.Now(),
	}
}

// UpdateFPS updates the FPS counter (call once per frame)
func (h *hud) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Render draws the HUD directly to the terminal with ANSI escapes. The top
// and bottom rows are always cleared so that hiding the HUD works.
func (h *hud) Render(width, height int, show bool, flags viewFlags, stats render.Stats) {
	const (
		reset     = "\x1b[0m"
		bold      = "\x1b[1m"
		bgBlack   = "\x1b[40m"
		fgWhite   = "\x1b[97m"
		fgGreen   = "\x1b[92m"
		fgCyan    = "\x1b[96m"
		clearLine = "\x1b[2K"
	)
	moveTo := func(row, col int) string {
		return fmt.Sprintf("\x1b[%d;%dH", row, col)
	}

	fmt.Print(moveTo(1, 1) + clearLine)
	fmt.Print(moveTo(height, 1) + clearLine)
	if !show {
		return
	}

	fmt.Printf("%s%s%s %.0f FPS %s", moveTo(1, 1), bgBlack, fgGreen, h.fps, reset)

	titleCol := max((width-len(h.filename)-2)/2, 1)
	fmt.Printf("%s%s%s%s %s %s", moveTo(1, titleCol), bold, bgBlack, fgWhite, h.filename, reset)

	polys := fmt.Sprintf(" %d tris ", h.polyCount)
	fmt.Printf("%s%s%s%s%s%s", moveTo(1, max(width-len(polys), 1)), bgBlack, fgCyan, bold, polys, reset)

	fmt.Printf("%s%s%s %s wire  %s tex  %s bounds  %s grid | %d px, %d culled, %d back %s",
		moveTo(height, 1), bgBlack, fgWhite,
		check(flags.Wireframe), check(!flags.Untexture), check(flags.Bounds), check(flags.Grid),
		stats.Fragments, stats.MeshesCulled, stats.BackFaces, reset)
}

func check(on bool) string {
	if on {
		return "[✓]"
	}
	return "[ ]"
}
