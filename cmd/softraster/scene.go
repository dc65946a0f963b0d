package main

import (
	"math"

	"github.com/taigrr/softraster/internal/config"
	"github.com/taigrr/softraster/pkg/math3d"
	"github.com/taigrr/softraster/pkg/render"
)

// Overlay colors.
var (
	wireColor   = render.RGB(0, 255, 128)
	boundsColor = render.RGB(255, 200, 0)
	gridColor   = render.RGB(70, 70, 80)
)

// viewFlags are the display toggles shared by the interactive viewers.
type viewFlags struct {
	Wireframe bool
	Bounds    bool
	Grid      bool
	Axes      bool
	Untexture bool
}

// scene ties a loaded model to the renderer and camera that draw it.
type scene struct {
	model      *render.Model
	materials  *render.MaterialTable
	renderer   *render.Renderer
	camera     *render.Camera
	bounds     render.AABB
	background render.Color

	home struct {
		pos        math3d.Vec3
		yaw, pitch float64
	}
}

func newScene(model *render.Model, materials *render.MaterialTable, cfg *config.Config) *scene {
	r := render.NewRenderer(materials)
	r.DoubleSided = cfg.Render.DoubleSided
	r.FrustumCull = cfg.Render.FrustumCull
	if l := cfg.Render.LightDir; l != [3]float64{} {
		r.LightDir = math3d.V3(l[0], l[1], l[2])
	}

	cam := render.NewCamera()
	cam.FOV = cfg.Render.FOV()
	cam.Near = cfg.Render.Near
	cam.Far = cfg.Render.Far
	cam.Aspect = float64(cfg.Render.Width) / float64(cfg.Render.Height)

	s := &scene{
		model:      model,
		materials:  materials,
		renderer:   r,
		camera:     cam,
		bounds:     model.Bounds(),
		background: backgroundColor(cfg.Render.Background),
	}

	if p := cfg.Camera.Position; p != nil {
		cam.SetPosition(math3d.V3(p[0], p[1], p[2]))
		cam.LookAt(s.bounds.Center())
	} else {
		cam.Frame(s.bounds)
	}
	s.home.pos, s.home.yaw, s.home.pitch = cam.Position(), cam.Yaw, cam.Pitch
	return s
}

func backgroundColor(c [3]int) render.Color {
	ch := func(v int) uint8 { return uint8(max(0, min(255, v))) }
	return render.RGB(ch(c[0]), ch(c[1]), ch(c[2]))
}

// resetCamera returns the camera to where it started.
func (s *scene) resetCamera() {
	s.camera.SetPosition(s.home.pos)
	s.camera.SetRotation(s.home.yaw, s.home.pitch)
}

// turntable returns a transform spinning the model by angle radians around
// the vertical axis through its bounds center.
func (s *scene) turntable(angle float64) math3d.Transform {
	t := math3d.NewTransform()
	if angle == 0 || s.bounds.IsEmpty() {
		return t
	}
	t.Rotation = math3d.QuatFromAxisAngle(math3d.UnitY, math.Mod(angle, 2*math.Pi))
	c := s.bounds.Center()
	t.Translation = c.Sub(t.Rotation.Rotate(c))
	return t
}

// draw renders one frame into fb, which it clears first.
func (s *scene) draw(fb *render.Framebuffer, transform math3d.Transform, flags viewFlags) {
	s.camera.Aspect = float64(fb.Width) / float64(max(1, fb.Height))
	s.camera.Apply(s.renderer)
	s.renderer.ResetStats()

	fb.Clear(s.background)

	if flags.Grid {
		size := math.Ceil(math.Max(s.bounds.Size().X, s.bounds.Size().Z)*2) + 2
		s.renderer.DrawGrid(fb, size, size/20, gridColor)
	}

	if flags.Untexture {
		s.renderer.Materials = nil
	}
	if flags.Wireframe {
		s.renderer.DrawModelWireframe(fb, s.model, transform, wireColor)
	} else {
		s.renderer.DrawModel(fb, s.model, transform)
	}
	s.renderer.Materials = s.materials

	if flags.Bounds {
		s.renderer.DrawBounds(fb, s.bounds, transform, boundsColor)
	}
	if flags.Axes {
		s.renderer.DrawAxes(fb, s.bounds.Size().Len()/2)
	}
}
