package render

import (
	"math"

	"github.com/taigrr/softraster/pkg/math3d"
)

// DrawLine3D draws a world-space segment on top of fb without a depth test.
// The segment is clipped against the near plane and the framebuffer edges.
func (r *Renderer) DrawLine3D(fb *Framebuffer, a, b math3d.Vec3, c Color) {
	vp := r.Projection.Mul(r.View)
	r.drawClipLine(fb, vp.MulVec4(a.Extend(1)), vp.MulVec4(b.Extend(1)), c)
}

func (r *Renderer) drawClipLine(fb *Framebuffer, a, b math3d.Vec4, c Color) {
	if a.Z < 0 && b.Z < 0 {
		return
	}
	if a.Z < 0 {
		a = a.Lerp(b, (0-a.Z)/(b.Z-a.Z))
	} else if b.Z < 0 {
		b = b.Lerp(a, (0-b.Z)/(a.Z-b.Z))
	}
	if a.W <= 0 || b.W <= 0 {
		return
	}
	w, h := float64(fb.Width), float64(fb.Height)
	toScreen := func(v math3d.Vec4) math3d.Vec2 {
		return math3d.V2((v.X/v.W+1)/2*w, (-v.Y/v.W+1)/2*h)
	}
	p, q, ok := clipSegment(toScreen(a), toScreen(b), w, h)
	if !ok {
		return
	}
	fb.DrawLine(int(math.Floor(p.X)), int(math.Floor(p.Y)), int(math.Floor(q.X)), int(math.Floor(q.Y)), c)
}

// clipSegment clips p-q to the rectangle [0,w)x[0,h) (Liang-Barsky).
func clipSegment(p, q math3d.Vec2, w, h float64) (math3d.Vec2, math3d.Vec2, bool) {
	d := q.Sub(p)
	t0, t1 := 0.0, 1.0
	hi := math.Nextafter(w, 0)
	vi := math.Nextafter(h, 0)
	for _, c := range [4][2]float64{
		{-d.X, p.X},
		{d.X, hi - p.X},
		{-d.Y, p.Y},
		{d.Y, vi - p.Y},
	} {
		den, num := c[0], c[1]
		if den == 0 {
			if num < 0 {
				return p, q, false
			}
			continue
		}
		t := num / den
		if den < 0 {
			t0 = math.Max(t0, t)
		} else {
			t1 = math.Min(t1, t)
		}
		if t0 > t1 {
			return p, q, false
		}
	}
	return p.Add(d.Scale(t0)), p.Add(d.Scale(t1)), true
}

// DrawMeshWireframe outlines every triangle of mesh after near clipping.
func (r *Renderer) DrawMeshWireframe(fb *Framebuffer, mesh *Mesh, transform math3d.Transform, c Color) {
	checkMesh(mesh)
	stage := newVertexStage(transform.Matrix(), r.View, r.Projection)
	v := mesh.Vertices
	for i := 0; i < len(v); i += 3 {
		clipped := ClipNear(stage.shade(&v[i]), stage.shade(&v[i+1]), stage.shade(&v[i+2]))
		for t := range clipped.N {
			tri := &clipped.Tris[t]
			for e := range 3 {
				r.drawClipLine(fb, tri[e].Position, tri[(e+1)%3].Position, c)
			}
		}
	}
}

// DrawModelWireframe outlines every mesh of model.
func (r *Renderer) DrawModelWireframe(fb *Framebuffer, model *Model, transform math3d.Transform, c Color) {
	for _, key := range model.Keys() {
		r.DrawMeshWireframe(fb, model.Meshes[key], transform, c)
	}
}

// DrawBounds outlines box after transforming it to world space.
func (r *Renderer) DrawBounds(fb *Framebuffer, box AABB, transform math3d.Transform, c Color) {
	if box.IsEmpty() {
		return
	}
	m := transform.Matrix()
	corners := box.Corners()
	for i := range corners {
		corners[i] = m.MulPoint(corners[i])
	}
	// Corner i has bit 0 set for max X, bit 1 for max Y and bit 2 for max
	// Z, so edges join indices that differ in exactly one bit.
	for i := range 8 {
		for _, bit := range [3]int{1, 2, 4} {
			if j := i | bit; j != i {
				r.DrawLine3D(fb, corners[i], corners[j], c)
			}
		}
	}
}

// DrawAxes draws the world axes from the origin in red, green and blue.
func (r *Renderer) DrawAxes(fb *Framebuffer, length float64) {
	r.DrawLine3D(fb, math3d.Vec3{}, math3d.UnitX.Scale(length), ColorRed)
	r.DrawLine3D(fb, math3d.Vec3{}, math3d.UnitY.Scale(length), ColorGreen)
	r.DrawLine3D(fb, math3d.Vec3{}, math3d.UnitZ.Scale(length), ColorBlue)
}

// DrawGrid draws a square grid on the y = 0 plane.
func (r *Renderer) DrawGrid(fb *Framebuffer, size, step float64, c Color) {
	if step <= 0 {
		return
	}
	half := size / 2
	n := int(size / step)
	for i := 0; i <= n; i++ {
		o := -half + float64(i)*step
		r.DrawLine3D(fb, math3d.V3(o, 0, -half), math3d.V3(o, 0, half), c)
		r.DrawLine3D(fb, math3d.V3(-half, 0, o), math3d.V3(half, 0, o), c)
	}
}
