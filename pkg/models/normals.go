package models

import (
	"fmt"

	"github.com/taigrr/softraster/pkg/math3d"
)

// primitive is one decoded glTF primitive in object space, still indexed.
type primitive struct {
	positions []math3d.Vec3
	normals   []math3d.Vec3
	tangents  []math3d.Vec3
	uvs       []math3d.Vec2
	colors    []math3d.Vec3
	indices   []uint32
}

// flatNormals gives every triangle its own face normal. Vertices shared
// between triangles are split so that each corner keeps its face's normal.
func (p *primitive) flatNormals() {
	out := primitive{
		positions: make([]math3d.Vec3, 0, len(p.indices)),
		normals:   make([]math3d.Vec3, 0, len(p.indices)),
		indices:   make([]uint32, len(p.indices)),
	}
	for t := 0; t+2 < len(p.indices); t += 3 {
		a, b, c := p.positions[p.indices[t]], p.positions[p.indices[t+1]], p.positions[p.indices[t+2]]
		n := b.Sub(a).Cross(c.Sub(a)).Normalize()
		for k := range 3 {
			src := p.indices[t+k]
			out.indices[t+k] = uint32(len(out.positions))
			out.positions = append(out.positions, p.positions[src])
			out.normals = append(out.normals, n)
			if p.tangents != nil {
				out.tangents = append(out.tangents, p.tangents[src])
			}
			if p.uvs != nil {
				out.uvs = append(out.uvs, p.uvs[src])
			}
			if p.colors != nil {
				out.colors = append(out.colors, p.colors[src])
			}
		}
	}
	*p = out
}

// smoothNormals averages area-weighted face normals over shared vertices.
func (p *primitive) smoothNormals() {
	normals := make([]math3d.Vec3, len(p.positions))
	for t := 0; t+2 < len(p.indices); t += 3 {
		i0, i1, i2 := p.indices[t], p.indices[t+1], p.indices[t+2]
		a, b, c := p.positions[i0], p.positions[i1], p.positions[i2]
		// Unnormalized, so larger faces weigh more.
		n := b.Sub(a).Cross(c.Sub(a))
		normals[i0] = normals[i0].Add(n)
		normals[i1] = normals[i1].Add(n)
		normals[i2] = normals[i2].Add(n)
	}
	for i := range normals {
		normals[i] = normals[i].Normalize()
	}
	p.normals = normals
}

// checkCounts verifies that every present attribute has one entry per
// position.
func (p *primitive) checkCounts() error {
	n := len(p.positions)
	for _, c := range []struct {
		name string
		len  int
		set  bool
	}{
		{"NORMAL", len(p.normals), p.normals != nil},
		{"TANGENT", len(p.tangents), p.tangents != nil},
		{"TEXCOORD_0", len(p.uvs), p.uvs != nil},
		{"COLOR_0", len(p.colors), p.colors != nil},
	} {
		if c.set && c.len != n {
			return fmt.Errorf("%s has %d entries for %d positions", c.name, c.len, n)
		}
	}
	return nil
}
