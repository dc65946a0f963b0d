package render

import (
	"math"

	"github.com/taigrr/softraster/pkg/math3d"
)

// rasterVertex is a clipped vertex after the perspective divide. Attributes
// are stored pre-multiplied by invW so that screen-linear interpolation
// followed by a divide by the interpolated invW is perspective-correct.
type rasterVertex struct {
	pos     math3d.Vec2 // pixels, y down
	z, w    float64     // clip space
	invW    float64
	uv      math3d.Vec2
	normal  math3d.Vec3
	tangent math3d.Vec3
	color   math3d.Vec3
}

// toRaster divides by w and maps NDC to pixel coordinates.
func toRaster(f *FragIn, width, height int) rasterVertex {
	invW := 1 / f.Position.W
	ndc := f.Position.XYZ().Scale(invW)
	return rasterVertex{
		pos: math3d.V2(
			(ndc.X+1)/2*float64(width),
			(-ndc.Y+1)/2*float64(height),
		),
		z:       f.Position.Z,
		w:       f.Position.W,
		invW:    invW,
		uv:      f.UV.Scale(invW),
		normal:  f.Normal.Scale(invW),
		tangent: f.Tangent.Scale(invW),
		color:   f.Color.Scale(invW),
	}
}

// edge is the doubled signed area of triangle (a, b, p). In pixel space
// (y down) it is positive for triangles that are counter-clockwise in NDC.
func edge(a, b, p math3d.Vec2) float64 {
	return (p.X-a.X)*(b.Y-a.Y) - (p.Y-a.Y)*(b.X-a.X)
}

// edgeCoeffs returns A, B, C such that edge(a, b, p) = A*p.X + B*p.Y + C.
func edgeCoeffs(a, b math3d.Vec2) (A, B, C float64) {
	A = b.Y - a.Y
	B = a.X - b.X
	C = -a.X*A - a.Y*B
	return
}

// fragment is the perspective-corrected attribute set at one pixel.
type fragment struct {
	depth   float64
	uv      math3d.Vec2
	normal  math3d.Vec3
	tangent math3d.Vec3
	color   math3d.Vec3
}

// interpolate blends the three vertices with screen-space barycentric
// weights b. Depth is the ratio of the blended clip-space z and w; every
// other attribute is perspective-corrected.
func interpolate(v *[3]rasterVertex, b [3]float64) fragment {
	correction := 1 / (b[0]*v[0].invW + b[1]*v[1].invW + b[2]*v[2].invW)
	w0, w1, w2 := b[0]*correction, b[1]*correction, b[2]*correction

	return fragment{
		depth: (b[0]*v[0].z + b[1]*v[1].z + b[2]*v[2].z) /
			(b[0]*v[0].w + b[1]*v[1].w + b[2]*v[2].w),
		uv:    v[0].uv.Scale(w0).Add(v[1].uv.Scale(w1)).Add(v[2].uv.Scale(w2)),
		normal: v[0].normal.Scale(w0).
			Add(v[1].normal.Scale(w1)).
			Add(v[2].normal.Scale(w2)),
		tangent: v[0].tangent.Scale(w0).
			Add(v[1].tangent.Scale(w1)).
			Add(v[2].tangent.Scale(w2)),
		color: v[0].color.Scale(w0).
			Add(v[1].color.Scale(w1)).
			Add(v[2].color.Scale(w2)),
	}
}

// textureBinding is a material prepared for one triangle.
type textureBinding struct {
	tex      *Texture
	sampler  Sampler
	mipBias  float64 // log2(texel area) - log2(pixel area)
	maxLevel float64
}

// bindTexture computes the per-triangle part of mip selection: the ratio of
// the triangle's area in level-0 texels to its area in pixels.
func bindTexture(mat *Material, tri *[3]FragIn, screenArea float64) *textureBinding {
	t := mat.Texture
	size := math3d.V2(float64(t.Width), float64(t.Height))
	texArea := math.Abs(edge(tri[0].UV.Mul(size), tri[1].UV.Mul(size), tri[2].UV.Mul(size)))

	return &textureBinding{
		tex:      t,
		sampler:  mat.Sampler,
		mipBias:  math.Log2(texArea) - math.Log2(screenArea),
		maxLevel: float64(max(0, t.Levels()-2)),
	}
}

// level picks the integer mip level for a fragment at the given depth.
// Nearer fragments get a larger share of the bias.
func (b *textureBinding) level(depth float64) int {
	l := b.mipBias * (1 - depth)
	if !(l > 0) {
		return 0
	}
	return int(math.Min(l, b.maxLevel))
}

// fill scans the triangle's bounding box. It reports false if the box was
// empty after clamping to the framebuffer.
func (r *Renderer) fill(fb *Framebuffer, v *[3]rasterVertex, area float64, tex *textureBinding, light math3d.Vec3) bool {
	p0, p1, p2 := v[0].pos, v[1].pos, v[2].pos
	minX := max(0, int(math.Floor(min(p0.X, p1.X, p2.X))))
	minY := max(0, int(math.Floor(min(p0.Y, p1.Y, p2.Y))))
	maxX := min(fb.Width, int(math.Ceil(max(p0.X, p1.X, p2.X))))
	maxY := min(fb.Height, int(math.Ceil(max(p0.Y, p1.Y, p2.Y))))
	if minX >= maxX || minY >= maxY {
		return false
	}

	a0, b0, c0 := edgeCoeffs(p1, p2)
	a1, b1, c1 := edgeCoeffs(p2, p0)
	a2, b2, c2 := edgeCoeffs(p0, p1)
	invArea := 1 / area

	for y := minY; y < maxY; y++ {
		py := float64(y) + 0.5
		row := y * fb.Width
		for x := minX; x < maxX; x++ {
			px := float64(x) + 0.5
			e0 := a0*px + b0*py + c0
			e1 := a1*px + b1*py + c1
			e2 := a2*px + b2*py + c2
			if e0 < 0 || e1 < 0 || e2 < 0 {
				continue
			}

			frag := interpolate(v, [3]float64{e0 * invArea, e1 * invArea, e2 * invArea})
			idx := row + x
			if frag.depth < 0 || frag.depth > 1 || frag.depth > fb.Depth[idx] {
				r.Stats.DepthRejected++
				continue
			}

			lambert := frag.normal.Normalize().Dot(light)*0.5 + 0.5
			color := frag.color.Scale(lambert)

			if tex != nil {
				texel := tex.tex.SampleAt(frag.uv.X, frag.uv.Y, tex.level(frag.depth), tex.sampler)
				if texel.A() < 128 {
					r.Stats.Discarded++
					continue
				}
				color = color.Mul(texel.Vec3())
			}

			fb.Color[idx] = ColorFromVec3(color)
			fb.Depth[idx] = frag.depth
			r.Stats.Fragments++
		}
	}
	return true
}
