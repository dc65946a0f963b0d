package main

import (
	"github.com/taigrr/softraster/pkg/math3d"
	"github.com/taigrr/softraster/pkg/render"
)

const demoMaterial = "checker"

// demoModel builds a unit cube with a checker texture on every face, used
// when no model file is given.
func demoModel(table *render.MaterialTable, mipmaps bool) *render.Model {
	tex := render.NewCheckerTexture(64, 8, render.RGB(220, 220, 220), render.RGB(90, 90, 110))
	if mipmaps {
		tex.GenerateMipmaps()
	}
	table.Add(demoMaterial, render.Material{Texture: tex, Sampler: render.DefaultSampler()})

	model := render.NewModel()
	mesh := model.Mesh(demoMaterial)

	// Each face is spanned by u and v from its corner so that u x v is the
	// outward normal.
	faces := []struct{ n, u, v math3d.Vec3 }{
		{math3d.V3(0, 0, 1), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)},
		{math3d.V3(0, 0, -1), math3d.V3(-1, 0, 0), math3d.V3(0, 1, 0)},
		{math3d.V3(1, 0, 0), math3d.V3(0, 0, -1), math3d.V3(0, 1, 0)},
		{math3d.V3(-1, 0, 0), math3d.V3(0, 0, 1), math3d.V3(0, 1, 0)},
		{math3d.V3(0, 1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, -1)},
		{math3d.V3(0, -1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, 1)},
	}
	white := math3d.V3(1, 1, 1)
	for _, f := range faces {
		corner := func(su, sv float64) render.Vertex {
			p := f.n.Scale(0.5).Add(f.u.Scale(su - 0.5)).Add(f.v.Scale(sv - 0.5))
			return render.Vertex{
				Position: p,
				Normal:   f.n,
				Tangent:  f.u,
				Color:    white,
				// Texture rows run top to bottom.
				UV: math3d.V2(su, 1-sv),
			}
		}
		a, b, c, d := corner(0, 0), corner(1, 0), corner(1, 1), corner(0, 1)
		mesh.AddTriangle(a, b, c)
		mesh.AddTriangle(a, c, d)
	}
	return model
}
