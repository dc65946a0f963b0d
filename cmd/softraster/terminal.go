package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"go.uber.org/zap"

	"github.com/taigrr/softraster/internal/config"
	"github.com/taigrr/softraster/pkg/render"
)

// terminalInput is written by the event goroutine and read by the frame
// loop.
type terminalInput struct {
	mu sync.Mutex

	forward, right, up float64 // movement targets, -1..1
	dragX, dragY       int     // accumulated mouse drag in cells
	turnYaw, turnPitch float64 // key turning targets, -1..1
	flags              viewFlags
	showHUD            bool
	reset              bool
	resized            bool
	width, height      int

	mouseDown              bool
	lastMouseX, lastMouseY int
}

// runTerminal shows the scene in the terminal until Esc or ctrl+c.
func runTerminal(ctx context.Context, sc *scene, cfg *config.Config, name string, log *zap.Logger) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	fmt.Fprint(os.Stdout, "\x1b[?1003h") // any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // SGR extended mouse mode

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	in := &terminalInput{width: width, height: height}
	go handleTerminalEvents(term, in, cancel)

	fb := render.NewFramebuffer(width, height*2)
	fps := cfg.Output.FPS
	move := newMotion(fps, cfg.Camera.SpringFrequency, cfg.Camera.SpringDamping)
	hud := newHUD(name, sc.model.TriangleCount())
	log.Info("terminal viewer started", zap.Int("cols", width), zap.Int("rows", height))

	frameTime := time.Second / time.Duration(fps)
	lastFrame := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		now := time.Now()
		dt := math.Min(now.Sub(lastFrame).Seconds(), 0.1)
		lastFrame = now

		in.mu.Lock()
		if in.resized {
			in.resized = false
			width, height = in.width, in.height
			term.Erase()
			term.Resize(width, height)
			fb.Resize(width, height*2)
		}
		if in.reset {
			in.reset = false
			sc.resetCamera()
			move.Reset()
		}
		move.Forward.Target = in.forward
		move.Right.Target = in.right
		move.Up.Target = in.up
		move.Yaw.Target = in.turnYaw
		move.Pitch.Target = in.turnPitch
		dragX, dragY := in.dragX, in.dragY
		in.dragX, in.dragY = 0, 0
		flags, showHUD := in.flags, in.showHUD
		in.mu.Unlock()

		move.Update(1)
		in.decay(0.9)

		speed := cfg.Camera.MoveSpeed * dt
		sc.camera.Move(move.Forward.Velocity*speed, move.Right.Velocity*speed, move.Up.Velocity*speed)
		sens := cfg.Camera.Sensitivity
		sc.camera.Look(
			-float64(dragX)*sens-move.Yaw.Velocity*dt*1.5,
			-float64(dragY)*sens*2+move.Pitch.Velocity*dt*1.5,
		)

		sc.draw(fb, sc.turntable(0), flags)
		fb.Draw(term, uv.Rect(0, 0, width, height))
		if err := term.Display(); err != nil {
			return fmt.Errorf("display: %w", err)
		}

		hud.UpdateFPS()
		hud.Render(width, height, showHUD, flags, sc.renderer.Stats)

		if elapsed := time.Since(now); elapsed < frameTime {
			time.Sleep(frameTime - elapsed)
		}
	}
}

// decay shrinks the held movement targets.
func (in *terminalInput) decay(f float64) {
	in.mu.Lock()
	defer in.mu.Unlock()
	for _, v := range []*float64{&in.forward, &in.right, &in.up, &in.turnYaw, &in.turnPitch} {
		*v *= f
		if math.Abs(*v) < 1e-3 {
			*v = 0
		}
	}
}

func handleTerminalEvents(term *uv.Terminal, in *terminalInput, cancel context.CancelFunc) {
	for ev := range term.Events() {
		in.mu.Lock()
		switch ev := ev.(type) {
		case uv.WindowSizeEvent:
			in.width, in.height = ev.Width, ev.Height
			in.resized = true

		case uv.KeyPressEvent:
			switch {
			case ev.MatchString("escape", "ctrl+c"):
				in.mu.Unlock()
				cancel()
				return
			case ev.MatchString("w"):
				in.forward = 1
			case ev.MatchString("s"):
				in.forward = -1
			case ev.MatchString("d"):
				in.right = 1
			case ev.MatchString("a"):
				in.right = -1
			case ev.MatchString("space", "e"):
				in.up = 1
			case ev.MatchString("c", "q"):
				in.up = -1
			case ev.MatchString("left"):
				in.turnYaw = -1
			case ev.MatchString("right"):
				in.turnYaw = 1
			case ev.MatchString("up"):
				in.turnPitch = 1
			case ev.MatchString("down"):
				in.turnPitch = -1
			case ev.MatchString("r"):
				in.reset = true
			case ev.MatchString("x"):
				in.flags.Wireframe = !in.flags.Wireframe
			case ev.MatchString("t"):
				in.flags.Untexture = !in.flags.Untexture
			case ev.MatchString("b"):
				in.flags.Bounds = !in.flags.Bounds
			case ev.MatchString("g"):
				in.flags.Grid = !in.flags.Grid
				in.flags.Axes = in.flags.Grid
			case ev.MatchString("?", "shift+/"):
				in.showHUD = !in.showHUD
			}

		case uv.KeyReleaseEvent:
			switch {
			case ev.MatchString("w", "s"):
				in.forward = 0
			case ev.MatchString("a", "d"):
				in.right = 0
			case ev.MatchString("space", "e", "c", "q"):
				in.up = 0
			case ev.MatchString("left", "right"):
				in.turnYaw = 0
			case ev.MatchString("up", "down"):
				in.turnPitch = 0
			}

		case uv.MouseClickEvent:
			in.mouseDown = true
			in.lastMouseX, in.lastMouseY = ev.X, ev.Y

		case uv.MouseReleaseEvent:
			in.mouseDown = false

		case uv.MouseMotionEvent:
			if in.mouseDown {
				in.dragX += ev.X - in.lastMouseX
				in.dragY += ev.Y - in.lastMouseY
				in.lastMouseX, in.lastMouseY = ev.X, ev.Y
			}

		case uv.MouseWheelEvent:
			switch ev.Button {
			case uv.MouseWheelUp:
				in.forward = 1
			case uv.MouseWheelDown:
				in.forward = -1
			}
		}
		in.mu.Unlock()
	}
}
