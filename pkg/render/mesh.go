package render

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/taigrr/softraster/pkg/math3d"
)

// ErrVertexCount is returned by Mesh.Validate when the vertex list does not
// split into whole triangles.
var ErrVertexCount = errors.New("vertex count is not a multiple of 3")

// Vertex carries every attribute the pipeline interpolates.
type Vertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	Tangent  math3d.Vec3
	Color    math3d.Vec3 // 0..1 per channel
	UV       math3d.Vec2
}

// Mesh is an unindexed triangle list: vertices 3i, 3i+1 and 3i+2 form
// triangle i. Counter-clockwise triangles (as seen on screen) face the
// viewer.
type Mesh struct {
	Vertices []Vertex
}

// AddTriangle appends one triangle.
func (m *Mesh) AddTriangle(a, b, c Vertex) {
	m.Vertices = append(m.Vertices, a, b, c)
}

// TriangleCount returns the number of whole triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Vertices) / 3
}

// Validate checks that the vertex list holds whole triangles. The renderer
// panics on meshes that fail it.
func (m *Mesh) Validate() error {
	if n := len(m.Vertices); n%3 != 0 {
		return fmt.Errorf("%w: %d vertices", ErrVertexCount, n)
	}
	return nil
}

// Bounds returns the object-space bounding box.
func (m *Mesh) Bounds() AABB {
	b := EmptyAABB()
	for i := range m.Vertices {
		b = b.Extend(m.Vertices[i].Position)
	}
	return b
}

// Model groups geometry by material: each key names an entry in a
// MaterialTable (or is NoMaterial) and maps to the triangles drawn with it.
type Model struct {
	Meshes map[string]*Mesh
}

// NewModel creates an empty model.
func NewModel() *Model {
	return &Model{Meshes: make(map[string]*Mesh)}
}

// Mesh returns the mesh for key, creating it if needed.
func (m *Model) Mesh(key string) *Mesh {
	mesh, ok := m.Meshes[key]
	if !ok {
		mesh = &Mesh{}
		m.Meshes[key] = mesh
	}
	return mesh
}

// Keys returns the material keys in sorted order, which is also the order
// DrawModel draws them in.
func (m *Model) Keys() []string {
	return slices.Sorted(maps.Keys(m.Meshes))
}

// TriangleCount returns the total number of triangles in all meshes.
func (m *Model) TriangleCount() int {
	n := 0
	for _, mesh := range m.Meshes {
		n += mesh.TriangleCount()
	}
	return n
}

// Bounds returns the object-space box around every mesh.
func (m *Model) Bounds() AABB {
	b := EmptyAABB()
	for _, mesh := range m.Meshes {
		b = b.Union(mesh.Bounds())
	}
	return b
}

// Validate checks every mesh.
func (m *Model) Validate() error {
	for _, key := range m.Keys() {
		if err := m.Meshes[key].Validate(); err != nil {
			return fmt.Errorf("mesh %q: %w", key, err)
		}
	}
	return nil
}
