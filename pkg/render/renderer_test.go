package render

import (
	"math"
	"testing"

	"github.com/taigrr/softraster/pkg/math3d"
)

var white = math3d.V3(1, 1, 1)

// litVertex builds a vertex whose normal faces the light, so Lambert
// shading leaves its color unchanged.
func litVertex(x, y, z float64, c math3d.Vec3) Vertex {
	return Vertex{Position: math3d.V3(x, y, z), Normal: DefaultLightDir, Color: c}
}

// pixelVertex places a vertex at pixel coordinates under identity matrices.
func pixelVertex(fb *Framebuffer, px, py, z float64, c math3d.Vec3) Vertex {
	return litVertex(px/float64(fb.Width)*2-1, 1-py/float64(fb.Height)*2, z, c)
}

// createTestRenderer returns an identity-matrix renderer and a cleared
// framebuffer.
func createTestRenderer(width, height int) (*Renderer, *Framebuffer) {
	fb := NewFramebuffer(width, height)
	fb.Clear(ColorBlack)
	return NewRenderer(NewMaterialTable()), fb
}

// quadMesh covers NDC [-1,1]^2 at depth z with UV (0,0) at the top left.
func quadMesh(z float64) *Mesh {
	v := func(x, y, u, w float64) Vertex {
		vert := litVertex(x, y, z, white)
		vert.UV = math3d.V2(u, w)
		return vert
	}
	bl, br := v(-1, -1, 0, 1), v(1, -1, 1, 1)
	tr, tl := v(1, 1, 1, 0), v(-1, 1, 0, 0)

	m := &Mesh{}
	m.AddTriangle(bl, br, tr)
	m.AddTriangle(bl, tr, tl)
	return m
}

func TestDrawMeshWhiteTriangle(t *testing.T) {
	tests := []struct {
		name        string
		pts         [3]math3d.Vec2
		doubleSided bool
	}{
		{"counter-clockwise", [3]math3d.Vec2{{X: 100, Y: 100}, {X: 300, Y: 500}, {X: 500, Y: 100}}, false},
		{"clockwise double sided", [3]math3d.Vec2{{X: 100, Y: 100}, {X: 500, Y: 100}, {X: 300, Y: 500}}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, fb := createTestRenderer(600, 600)
			r.DoubleSided = tc.doubleSided
			pts := tc.pts

			mesh := &Mesh{}
			mesh.AddTriangle(
				pixelVertex(fb, pts[0].X, pts[0].Y, 0.5, white),
				pixelVertex(fb, pts[1].X, pts[1].Y, 0.5, white),
				pixelVertex(fb, pts[2].X, pts[2].Y, 0.5, white),
			)
			r.DrawMesh(fb, mesh, math3d.NewTransform(), nil)

			area := edge(pts[0], pts[1], pts[2])
			const margin = 1e-6
			for y := range fb.Height {
				for x := range fb.Width {
					p := math3d.V2(float64(x)+0.5, float64(y)+0.5)
					e := [3]float64{
						edge(pts[1], pts[2], p) / area,
						edge(pts[2], pts[0], p) / area,
						edge(pts[0], pts[1], p) / area,
					}
					inside := e[0] > margin && e[1] > margin && e[2] > margin
					outside := e[0] < -margin || e[1] < -margin || e[2] < -margin

					got := fb.Pixel(x, y)
					switch {
					case inside && got != ColorWhite:
						t.Fatalf("pixel (%d,%d) inside = %#08x, want white", x, y, uint32(got))
					case outside && got != ColorBlack:
						t.Fatalf("pixel (%d,%d) outside = %#08x, want black", x, y, uint32(got))
					case inside && math.Abs(fb.DepthAt(x, y)-0.5) > 1e-9:
						t.Fatalf("pixel (%d,%d) depth = %v, want 0.5", x, y, fb.DepthAt(x, y))
					}
				}
			}
			if r.Stats.Fragments == 0 {
				t.Error("no fragments written")
			}
		})
	}
}

func TestDrawMeshCheckerQuad(t *testing.T) {
	r, fb := createTestRenderer(8, 8)
	mat := &Material{Texture: NewCheckerTexture(2, 2, ColorWhite, ColorBlack), Sampler: DefaultSampler()}

	r.DrawMesh(fb, quadMesh(0.5), math3d.NewTransform(), mat)

	for y := range 8 {
		for x := range 8 {
			want := ColorWhite
			if (x < 4) != (y < 4) {
				want = ColorBlack
			}
			if got := fb.Pixel(x, y); got != want {
				t.Errorf("pixel (%d,%d) = %#08x, want %#08x", x, y, uint32(got), uint32(want))
			}
			if math.Abs(fb.DepthAt(x, y)-0.5) > 1e-9 {
				t.Errorf("pixel (%d,%d) not written", x, y)
			}
		}
	}
}

func TestDepthOrder(t *testing.T) {
	red, blue := math3d.V3(1, 0, 0), math3d.V3(0, 0, 1)
	near := &Mesh{}
	near.AddTriangle(litVertex(-1, -1, 0.3, red), litVertex(1, -1, 0.3, red), litVertex(0, 1, 0.3, red))
	far := &Mesh{}
	far.AddTriangle(litVertex(-1, 1, 0.6, blue), litVertex(0, -1, 0.6, blue), litVertex(1, 1, 0.6, blue))

	orders := map[string][2]*Mesh{
		"near first": {near, far},
		"far first":  {far, near},
	}

	for name, order := range orders {
		t.Run(name, func(t *testing.T) {
			r, fb := createTestRenderer(64, 64)
			for _, m := range order {
				r.DrawMesh(fb, m, math3d.NewTransform(), nil)
			}
			if got := fb.Pixel(32, 32); got != ColorRed {
				t.Errorf("overlap = %#08x, want red", uint32(got))
			}
			if got := fb.DepthAt(32, 32); math.Abs(got-0.3) > 1e-9 {
				t.Errorf("depth = %v, want 0.3", got)
			}
			// Near the top corners only the far triangle is present.
			if got := fb.Pixel(2, 1); got != ColorBlue {
				t.Errorf("far-only pixel = %#08x, want blue", uint32(got))
			}
		})
	}
}

func TestDepthRangeRejected(t *testing.T) {
	r, fb := createTestRenderer(16, 16)
	for _, z := range []float64{-0.5, 1.5} {
		r.DrawMesh(fb, quadMesh(z), math3d.NewTransform(), nil)
	}
	if r.Stats.Fragments != 0 {
		t.Errorf("wrote %d fragments outside [0,1]", r.Stats.Fragments)
	}
}

func TestBackFaceCulling(t *testing.T) {
	cw := &Mesh{}
	cw.AddTriangle(litVertex(-1, -1, 0.5, white), litVertex(0, 1, 0.5, white), litVertex(1, -1, 0.5, white))

	t.Run("single sided", func(t *testing.T) {
		r, fb := createTestRenderer(32, 32)
		r.DrawMesh(fb, cw, math3d.NewTransform(), nil)
		if r.Stats.Fragments != 0 || r.Stats.BackFaces != 1 {
			t.Errorf("stats = %+v, want one back face and no fragments", r.Stats)
		}
	})

	t.Run("double sided", func(t *testing.T) {
		r, fb := createTestRenderer(32, 32)
		r.DoubleSided = true
		r.DrawMesh(fb, cw, math3d.NewTransform(), nil)
		if r.Stats.Fragments == 0 {
			t.Error("double sided triangle wrote nothing")
		}
		if got := fb.Pixel(16, 16); got != ColorWhite {
			t.Errorf("center = %#08x, want white", uint32(got))
		}
	})
}

func TestAlphaTestDiscards(t *testing.T) {
	r, fb := createTestRenderer(8, 8)
	pixels := []byte{255, 255, 255, 127}
	tex, err := LoadTexture(pixels, 1, 1, 4)
	if err != nil {
		t.Fatal(err)
	}
	r.DrawMesh(fb, quadMesh(0.5), math3d.NewTransform(), &Material{Texture: tex})

	// Pixels on the shared diagonal are visited by both triangles.
	if r.Stats.Fragments != 0 || r.Stats.Discarded < 64 {
		t.Errorf("stats = %+v, want every pixel discarded", r.Stats)
	}
	for i := range fb.Color {
		if fb.Color[i] != ColorBlack || !math.IsInf(fb.Depth[i], 1) {
			t.Fatalf("pixel %d written by a discarded fragment", i)
		}
	}
}

func TestLambertShading(t *testing.T) {
	r, fb := createTestRenderer(8, 8)
	m := quadMesh(0.5)
	for i := range m.Vertices {
		m.Vertices[i].Normal = DefaultLightDir.Negate()
	}
	r.DrawMesh(fb, m, math3d.NewTransform(), nil)
	// Facing away from the light: -1*0.5 + 0.5 = 0.
	if got := fb.Pixel(4, 4); got != ColorBlack {
		t.Errorf("unlit pixel = %#08x, want black", uint32(got))
	}

	for i := range m.Vertices {
		m.Vertices[i].Normal = DefaultLightDir.Cross(math3d.UnitX)
	}
	fb.Clear(ColorBlack)
	r.DrawMesh(fb, m, math3d.NewTransform(), nil)
	if got := fb.Pixel(4, 4); got != RGB(128, 128, 128) {
		t.Errorf("grazing pixel = %#08x, want mid gray", uint32(got))
	}
}

func TestNearPlaneClippingUnderPerspective(t *testing.T) {
	r, fb := createTestRenderer(64, 64)
	r.SetProjectionMatrix(math3d.Perspective(math.Pi/2, 1, 0.1, 100))

	// A floor running from behind the camera to far ahead of it.
	floor := &Mesh{}
	a := litVertex(-10, -1, 5, white)
	b := litVertex(10, -1, 5, white)
	c := litVertex(10, -1, -50, white)
	d := litVertex(-10, -1, -50, white)
	for _, v := range []*Vertex{&a, &b, &c, &d} {
		v.Normal = math3d.UnitY
	}
	floor.AddTriangle(a, b, c)
	floor.AddTriangle(a, c, d)
	r.DrawMesh(fb, floor, math3d.NewTransform(), nil)

	if r.Stats.Fragments == 0 {
		t.Fatal("floor not drawn")
	}
	for i, d := range fb.Depth {
		if math.IsNaN(d) || (!math.IsInf(d, 1) && (d < 0 || d > 1)) {
			t.Fatalf("depth[%d] = %v", i, d)
		}
	}
	if fb.Pixel(32, 63) == ColorBlack {
		t.Error("bottom of the view should show the floor")
	}
	if fb.Pixel(32, 0) != ColorBlack {
		t.Error("top of the view should be empty")
	}
}

func TestDrawMeshPanicsOnPartialTriangle(t *testing.T) {
	m := quadMesh(0.5)
	m.Vertices = m.Vertices[:4]
	if err := m.Validate(); err == nil {
		t.Error("Validate accepted 4 vertices")
	}

	tests := []struct {
		name string
		draw func(r *Renderer, fb *Framebuffer)
	}{
		{"filled", func(r *Renderer, fb *Framebuffer) {
			r.DrawMesh(fb, m, math3d.NewTransform(), nil)
		}},
		{"wireframe", func(r *Renderer, fb *Framebuffer) {
			r.DrawMeshWireframe(fb, m, math3d.NewTransform(), ColorRed)
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, fb := createTestRenderer(8, 8)
			defer func() {
				if recover() == nil {
					t.Error("expected panic for 4 vertices")
				}
			}()
			tc.draw(r, fb)
		})
	}
}

func TestDrawMeshPanicsOnMismatchedBuffers(t *testing.T) {
	r, fb := createTestRenderer(8, 8)
	fb.Depth = fb.Depth[:10]

	defer func() {
		if recover() == nil {
			t.Error("expected panic for mismatched depth buffer")
		}
	}()
	r.DrawMesh(fb, quadMesh(0.5), math3d.NewTransform(), nil)
}

func TestDrawModelResolvesMaterials(t *testing.T) {
	r, fb := createTestRenderer(8, 8)
	black, err := LoadTexture([]byte{0, 0, 0}, 1, 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	r.Materials.Add("black", Material{Texture: black})

	tests := []struct {
		key  string
		want Color
	}{
		{"black", ColorBlack},
		{NoMaterial, ColorWhite},
		{"missing", ColorWhite},
	}

	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			fb.Clear(ColorSky)
			model := NewModel()
			model.Meshes[tc.key] = quadMesh(0.5)
			r.DrawModel(fb, model, math3d.NewTransform())
			if got := fb.Pixel(3, 3); got != tc.want {
				t.Errorf("pixel = %#08x, want %#08x", uint32(got), uint32(tc.want))
			}
		})
	}
}

func TestFrustumCullingKeepsPixels(t *testing.T) {
	draw := func(cull bool) (*Framebuffer, Stats) {
		r, fb := createTestRenderer(32, 32)
		r.FrustumCull = cull
		r.SetProjectionMatrix(math3d.Perspective(1.2, 1, 0.1, 100))

		model := NewModel()
		model.Meshes["visible"] = quadMesh(0)
		behind := quadMesh(0)
		for i := range behind.Vertices {
			behind.Vertices[i].Position.Z = 10
		}
		model.Meshes["behind"] = behind

		tr := math3d.NewTransform()
		tr.Translation = math3d.V3(0, 0, -3)
		r.DrawModel(fb, model, tr)
		return fb, r.Stats
	}

	plain, _ := draw(false)
	culled, stats := draw(true)
	if stats.MeshesCulled != 1 || stats.MeshesDrawn != 1 {
		t.Errorf("stats = %+v, want one drawn and one culled", stats)
	}
	for i := range plain.Color {
		if plain.Color[i] != culled.Color[i] {
			t.Fatalf("pixel %d differs with culling enabled", i)
		}
	}
}

func TestVertexShaderNormalMatrix(t *testing.T) {
	tr := math3d.NewTransform()
	tr.Scale = math3d.V3(4, 1, 1)
	v := Vertex{
		Position: math3d.V3(1, 1, 0),
		Normal:   math3d.V3(1, 1, 0),
		Tangent:  math3d.V3(1, -1, 0),
	}

	out := VertexShader(v, tr.Matrix(), math3d.Identity(), math3d.Identity())
	if d := out.Normal.Dot(out.Tangent); math.Abs(d) > 1e-9 {
		t.Errorf("normal and tangent not perpendicular after scale: dot %v", d)
	}
	if l := out.Normal.Len(); math.Abs(l-1) > 1e-9 {
		t.Errorf("normal length %v, want 1", l)
	}
	if want := math3d.V4(4, 1, 0, 1); out.Position != want {
		t.Errorf("position = %v, want %v", out.Position, want)
	}
}

func BenchmarkDrawMeshQuad(b *testing.B) {
	r, fb := createTestRenderer(320, 240)
	mat := &Material{Texture: NewCheckerTexture(64, 8, ColorWhite, ColorGray), Sampler: DefaultSampler()}
	mat.Texture.GenerateMipmaps()
	m := quadMesh(0.5)

	for b.Loop() {
		fb.Clear(ColorBlack)
		r.DrawMesh(fb, m, math3d.NewTransform(), mat)
	}
}
