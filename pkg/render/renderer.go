package render

import (
	"fmt"
	"math"

	"github.com/taigrr/softraster/pkg/math3d"
)

// DefaultLightDir is the fixed directional light used for shading, in world
// space. It need not be normalized.
var DefaultLightDir = math3d.V3(0.3, 1, 0.5)

// Renderer draws meshes into a Framebuffer. It holds the camera matrices,
// the material table and per-frame counters; it has no other state and
// never clears the framebuffer itself.
type Renderer struct {
	Projection math3d.Mat4
	View       math3d.Mat4
	Materials  *MaterialTable
	LightDir   math3d.Vec3

	DoubleSided bool // Draw clockwise triangles too
	FrustumCull bool // Skip whole meshes whose bounds are outside the view

	Stats Stats
}

// Stats counts what happened during a frame. Reset it with ResetStats.
type Stats struct {
	Triangles     int // Triangles submitted
	Clipped       int // Triangles entirely behind the near plane
	BackFaces     int // Triangles dropped for winding
	Degenerate    int // Triangles with zero area or no pixels
	Fragments     int // Pixels written
	DepthRejected int // Pixels failing the depth test or range
	Discarded     int // Pixels removed by the alpha test
	MeshesDrawn   int
	MeshesCulled  int
}

// NewRenderer returns a renderer with identity matrices.
func NewRenderer(materials *MaterialTable) *Renderer {
	if materials == nil {
		materials = NewMaterialTable()
	}
	return &Renderer{
		Projection: math3d.Identity(),
		View:       math3d.Identity(),
		Materials:  materials,
		LightDir:   DefaultLightDir,
	}
}

// SetViewMatrix sets the world-to-view matrix.
func (r *Renderer) SetViewMatrix(m math3d.Mat4) {
	r.View = m
}

// SetProjectionMatrix sets the view-to-clip matrix.
func (r *Renderer) SetProjectionMatrix(m math3d.Mat4) {
	r.Projection = m
}

// ResetStats zeroes the frame counters.
func (r *Renderer) ResetStats() {
	r.Stats = Stats{}
}

// vertexStage holds the matrices shared by every vertex of one draw call.
type vertexStage struct {
	model  math3d.Mat4
	normal math3d.Mat4
	mvp    math3d.Mat4
}

func newVertexStage(model, view, proj math3d.Mat4) vertexStage {
	return vertexStage{
		model:  model,
		normal: model.NormalMatrix(),
		mvp:    proj.Mul(view).Mul(model),
	}
}

func (s *vertexStage) shade(v *Vertex) FragIn {
	return FragIn{
		Position: s.mvp.MulVec4(v.Position.Extend(1)),
		Normal:   s.normal.MulDir(v.Normal).Normalize(),
		Tangent:  s.model.MulDir(v.Tangent).Normalize(),
		Color:    v.Color,
		UV:       v.UV,
	}
}

// VertexShader transforms v by model, then view, then projection. Normals
// go through the inverse-transpose of model and tangents through model
// itself, both renormalized; color and UV pass through.
func VertexShader(v Vertex, model, view, proj math3d.Mat4) FragIn {
	s := newVertexStage(model, view, proj)
	return s.shade(&v)
}

func checkFramebuffer(fb *Framebuffer) {
	n := fb.Width * fb.Height
	if len(fb.Color) != n || len(fb.Depth) != n {
		panic(fmt.Sprintf("render: framebuffer %dx%d has %d color and %d depth entries",
			fb.Width, fb.Height, len(fb.Color), len(fb.Depth)))
	}
}

func checkMesh(mesh *Mesh) {
	if err := mesh.Validate(); err != nil {
		panic("render: " + err.Error())
	}
}

// DrawMesh draws every triangle of mesh with the given object
// transform. mat may be nil for untextured drawing.
func (r *Renderer) DrawMesh(fb *Framebuffer, mesh *Mesh, transform math3d.Transform, mat *Material) {
	r.drawMesh(fb, mesh, transform.Matrix(), mat)
}

// DrawModel draws each mesh of model with its material. Keys are resolved
// against the material table once per mesh; unknown keys and NoMaterial
// draw untextured.
func (r *Renderer) DrawModel(fb *Framebuffer, model *Model, transform math3d.Transform) {
	m := transform.Matrix()
	for _, key := range model.Keys() {
		var mat *Material
		if key != NoMaterial {
			mat = r.Materials.Lookup(key)
		}
		r.drawMesh(fb, model.Meshes[key], m, mat)
	}
}

func (r *Renderer) drawMesh(fb *Framebuffer, mesh *Mesh, model math3d.Mat4, mat *Material) {
	checkFramebuffer(fb)
	if mesh == nil {
		return
	}
	checkMesh(mesh)
	stage := newVertexStage(model, r.View, r.Projection)

	if r.FrustumCull && !NewFrustum(stage.mvp).IntersectsAABB(mesh.Bounds()) {
		r.Stats.MeshesCulled++
		return
	}
	r.Stats.MeshesDrawn++

	if mat != nil && (mat.Texture == nil || len(mat.Texture.Offsets) == 0) {
		mat = nil
	}
	light := r.LightDir.Normalize()

	v := mesh.Vertices
	for i := 0; i < len(v); i += 3 {
		r.Stats.Triangles++
		clipped := ClipNear(stage.shade(&v[i]), stage.shade(&v[i+1]), stage.shade(&v[i+2]))
		if clipped.N == 0 {
			r.Stats.Clipped++
			continue
		}
		for t := range clipped.N {
			tri := clipped.Tris[t]
			r.drawTriangle(fb, &tri, mat, light)
		}
	}
}

// drawTriangle takes one clipped triangle from clip space to pixels.
func (r *Renderer) drawTriangle(fb *Framebuffer, tri *[3]FragIn, mat *Material, light math3d.Vec3) {
	var rv [3]rasterVertex
	for i := range tri {
		rv[i] = toRaster(&tri[i], fb.Width, fb.Height)
	}

	area := edge(rv[0].pos, rv[1].pos, rv[2].pos)
	if area == 0 || math.IsNaN(area) {
		r.Stats.Degenerate++
		return
	}
	if area < 0 {
		if !r.DoubleSided {
			r.Stats.BackFaces++
			return
		}
		rv[1], rv[2] = rv[2], rv[1]
		tri[1], tri[2] = tri[2], tri[1]
		area = -area
	}

	var tex *textureBinding
	if mat != nil {
		tex = bindTexture(mat, tri, area)
	}
	if !r.fill(fb, &rv, area, tex, light) {
		r.Stats.Degenerate++
	}
}
