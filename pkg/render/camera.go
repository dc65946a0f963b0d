package render

import (
	"math"

	"github.com/taigrr/softraster/pkg/math3d"
)

// maxPitch stops the camera just short of looking straight up or down,
// where yaw becomes ambiguous.
const maxPitch = math.Pi/2 - 1e-3

// Camera is a first-person fly camera. Yaw and pitch are the source of
// truth; the transform's rotation is rebuilt from them whenever they change.
type Camera struct {
	Transform math3d.Transform

	Pitch float64 // Rotation around X (look up/down), radians
	Yaw   float64 // Rotation around Y (look left/right), radians

	FOV    float64 // Vertical field of view in radians
	Aspect float64 // Width / Height
	Near   float64
	Far    float64
}

// NewCamera creates a camera at the origin looking down -Z.
func NewCamera() *Camera {
	return &Camera{
		Transform: math3d.NewTransform(),
		FOV:       0.4 * math.Pi,
		Aspect:    16.0 / 9.0,
		Near:      0.1,
		Far:       100,
	}
}

// Position returns the camera position.
func (c *Camera) Position() math3d.Vec3 {
	return c.Transform.Translation
}

// SetPosition moves the camera without changing where it looks.
func (c *Camera) SetPosition(p math3d.Vec3) {
	c.Transform.Translation = p
}

// SetRotation sets yaw and pitch in radians. Pitch is clamped.
func (c *Camera) SetRotation(yaw, pitch float64) {
	c.Yaw = yaw
	c.Pitch = math.Max(-maxPitch, math.Min(maxPitch, pitch))
	c.Transform.Rotation = math3d.QuatFromEulerYXZ(c.Yaw, c.Pitch, 0)
}

// Look turns the camera by the given yaw and pitch deltas.
func (c *Camera) Look(dYaw, dPitch float64) {
	c.SetRotation(c.Yaw+dYaw, c.Pitch+dPitch)
}

// LookAt turns the camera toward target.
func (c *Camera) LookAt(target math3d.Vec3) {
	d := target.Sub(c.Transform.Translation)
	if d.LenSq() == 0 {
		return
	}
	d = d.Normalize()
	c.SetRotation(math.Atan2(-d.X, -d.Z), math.Asin(math.Max(-1, math.Min(1, d.Y))))
}

// Move translates the camera: forward and right follow the view direction,
// up is always world +Y.
func (c *Camera) Move(forward, right, up float64) {
	t := &c.Transform
	t.Translation = t.Translation.
		Add(t.Forward().Scale(forward)).
		Add(t.Right().Scale(right)).
		Add(math3d.UnitY.Scale(up))
}

// ViewMatrix returns the world-to-view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	return c.Transform.ViewMatrix()
}

// ProjectionMatrix returns the perspective projection.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	return math3d.Perspective(c.FOV, c.Aspect, c.Near, c.Far)
}

// Apply loads the camera's matrices into r.
func (c *Camera) Apply(r *Renderer) {
	r.SetViewMatrix(c.ViewMatrix())
	r.SetProjectionMatrix(c.ProjectionMatrix())
}

// Frame places the camera so that box fills most of the view, looking at its
// center from the +Z side.
func (c *Camera) Frame(box AABB) {
	if box.IsEmpty() {
		return
	}
	center := box.Center()
	radius := box.Size().Len() / 2
	dist := radius / math.Sin(c.FOV/2)
	c.SetPosition(center.Add(math3d.V3(0, radius*0.3, dist)))
	c.LookAt(center)
	c.Far = math.Max(c.Far, dist+radius*4)
}
