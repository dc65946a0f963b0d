package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/taigrr/softraster/internal/config"
	"github.com/taigrr/softraster/pkg/render"
)

// windowViewer presents the scene in a desktop window. Ebiten only blits
// the finished framebuffer; all drawing happens in the software renderer.
type windowViewer struct {
	sc    *scene
	cfg   *config.Config
	fb    *render.Framebuffer
	pix   []byte
	move  *motion
	flags viewFlags
	log   *zap.Logger

	lastFrame              time.Time
	dragging               bool
	lastMouseX, lastMouseY int
	statsLogged            time.Time
}

func runWindow(sc *scene, cfg *config.Config, name string, log *zap.Logger) error {
	w, h := cfg.Render.Width, cfg.Render.Height
	v := &windowViewer{
		sc:        sc,
		cfg:       cfg,
		fb:        render.NewFramebuffer(w, h),
		pix:       make([]byte, w*h*4),
		move:      newMotion(cfg.Output.FPS, cfg.Camera.SpringFrequency, cfg.Camera.SpringDamping),
		log:       log,
		lastFrame: time.Now(),
	}

	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(fmt.Sprintf("softraster - %s", name))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.Output.FPS)

	log.Info("window viewer started", zap.Int("width", w), zap.Int("height", h))
	if err := ebiten.RunGame(v); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

// keyAxis returns +1, -1 or 0 for a pair of opposing keys.
func keyAxis(pos, neg ebiten.Key) float64 {
	v := 0.0
	if ebiten.IsKeyPressed(pos) {
		v++
	}
	if ebiten.IsKeyPressed(neg) {
		v--
	}
	return v
}

func (v *windowViewer) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	now := time.Now()
	dt := min(now.Sub(v.lastFrame).Seconds(), 0.1)
	v.lastFrame = now

	// Window keys report releases, so targets follow the keys directly.
	v.move.Forward.Target = keyAxis(ebiten.KeyW, ebiten.KeyS)
	v.move.Right.Target = keyAxis(ebiten.KeyD, ebiten.KeyA)
	v.move.Up.Target = keyAxis(ebiten.KeySpace, ebiten.KeyC)
	v.move.Yaw.Target = keyAxis(ebiten.KeyArrowRight, ebiten.KeyArrowLeft)
	v.move.Pitch.Target = keyAxis(ebiten.KeyArrowUp, ebiten.KeyArrowDown)
	v.move.Update(1)

	cam := v.sc.camera
	speed := v.cfg.Camera.MoveSpeed * dt
	cam.Move(v.move.Forward.Velocity*speed, v.move.Right.Velocity*speed, v.move.Up.Velocity*speed)
	cam.Look(-v.move.Yaw.Velocity*dt*1.5, v.move.Pitch.Velocity*dt*1.5)

	x, y := ebiten.CursorPosition()
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		if v.dragging {
			sens := v.cfg.Camera.Sensitivity / 4
			cam.Look(-float64(x-v.lastMouseX)*sens, -float64(y-v.lastMouseY)*sens)
		}
		v.dragging = true
	} else {
		v.dragging = false
	}
	v.lastMouseX, v.lastMouseY = x, y

	for key, toggle := range map[ebiten.Key]*bool{
		ebiten.KeyX: &v.flags.Wireframe,
		ebiten.KeyT: &v.flags.Untexture,
		ebiten.KeyB: &v.flags.Bounds,
		ebiten.KeyG: &v.flags.Grid,
	} {
		if inpututil.IsKeyJustPressed(key) {
			*toggle = !*toggle
		}
	}
	v.flags.Axes = v.flags.Grid
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		v.sc.resetCamera()
		v.move.Reset()
	}
	return nil
}

func (v *windowViewer) Draw(screen *ebiten.Image) {
	v.sc.draw(v.fb, v.sc.turntable(0), v.flags)
	v.fb.CopyRGBA(v.pix)
	screen.WritePixels(v.pix)

	if time.Since(v.statsLogged) >= 5*time.Second {
		s := v.sc.renderer.Stats
		v.log.Debug("frame stats",
			zap.Float64("fps", ebiten.ActualFPS()),
			zap.Int("triangles", s.Triangles),
			zap.Int("fragments", s.Fragments),
			zap.Int("culled", s.MeshesCulled))
		v.statsLogged = time.Now()
	}
}

// Layout renders at the configured resolution and lets ebiten scale it to
// the window.
func (v *windowViewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return v.fb.Width, v.fb.Height
}
