package render

import "github.com/taigrr/softraster/pkg/math3d"

// FragIn is a vertex after the vertex shader: a clip-space position plus
// the attributes that get interpolated across the triangle.
type FragIn struct {
	Position math3d.Vec4
	Normal   math3d.Vec3
	Tangent  math3d.Vec3
	Color    math3d.Vec3
	UV       math3d.Vec2
}

// Lerp interpolates every field from a to b.
func (a FragIn) Lerp(b FragIn, t float64) FragIn {
	return FragIn{
		Position: a.Position.Lerp(b.Position, t),
		Normal:   a.Normal.Lerp(b.Normal, t),
		Tangent:  a.Tangent.Lerp(b.Tangent, t),
		Color:    a.Color.Lerp(b.Color, t),
		UV:       a.UV.Lerp(b.UV, t),
	}
}

// ClippedTriangles holds up to two triangles produced by ClipNear.
type ClippedTriangles struct {
	Tris [2][3]FragIn
	N    int
}

// nearCrossing returns the point on segment a-b where clip z is 0.
func nearCrossing(a, b FragIn) FragIn {
	t := (0 - a.Position.Z) / (b.Position.Z - a.Position.Z)
	return a.Lerp(b, t)
}

// ClipNear clips a clip-space triangle against the near plane z = 0.
// Vertices with z < 0 are behind it. Inputs are only ever rotated, never
// swapped, so the winding of every output triangle matches the input.
func ClipNear(a, b, c FragIn) ClippedTriangles {
	behindA := a.Position.Z < 0
	behindB := b.Position.Z < 0
	behindC := c.Position.Z < 0

	var out ClippedTriangles
	switch count(behindA, behindB, behindC) {
	case 0:
		out.Tris[0] = [3]FragIn{a, b, c}
		out.N = 1

	case 1:
		// Rotate so the vertex behind is c.
		switch {
		case behindA:
			a, b, c = b, c, a
		case behindB:
			a, b, c = c, a, b
		}
		midAC := nearCrossing(a, c)
		midBC := nearCrossing(b, c)
		out.Tris[0] = [3]FragIn{a, b, midAC}
		out.Tris[1] = [3]FragIn{midAC, b, midBC}
		out.N = 2

	case 2:
		// Rotate so the vertex in front is a.
		switch {
		case !behindB:
			a, b, c = b, c, a
		case !behindC:
			a, b, c = c, a, b
		}
		out.Tris[0] = [3]FragIn{a, nearCrossing(a, b), nearCrossing(a, c)}
		out.N = 1
	}
	return out
}

func count(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}
