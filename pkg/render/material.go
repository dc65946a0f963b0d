package render

import (
	"fmt"
	"slices"
)

// NoMaterial is the model key for geometry without a material. It is never
// present in a MaterialTable.
const NoMaterial = ""

// Material binds a texture to the sampler it is read with.
type Material struct {
	Name    string
	Texture *Texture
	Sampler Sampler
}

// MaterialID is a stable handle into a MaterialTable.
type MaterialID int

// InvalidMaterial is returned for names the table does not know.
const InvalidMaterial MaterialID = -1

// MaterialTable owns the materials of a loaded scene. Names are resolved to
// handles at load time; the renderer resolves each model key once per mesh
// and never per pixel. The table is read-only while rendering.
type MaterialTable struct {
	ids       map[string]MaterialID
	materials []*Material
}

// NewMaterialTable creates an empty table.
func NewMaterialTable() *MaterialTable {
	return &MaterialTable{ids: make(map[string]MaterialID)}
}

// Add stores m under name and returns its handle. Adding a name that is
// already present replaces the material but keeps the handle.
func (t *MaterialTable) Add(name string, m Material) MaterialID {
	if name == NoMaterial {
		panic("render: material name must not be empty")
	}
	m.Name = name
	if id, ok := t.ids[name]; ok {
		t.materials[id] = &m
		return id
	}
	id := MaterialID(len(t.materials))
	t.ids[name] = id
	t.materials = append(t.materials, &m)
	return id
}

// ID returns the handle for name.
func (t *MaterialTable) ID(name string) (MaterialID, bool) {
	if t == nil {
		return InvalidMaterial, false
	}
	id, ok := t.ids[name]
	if !ok {
		return InvalidMaterial, false
	}
	return id, true
}

// Get returns the material for a handle, or nil.
func (t *MaterialTable) Get(id MaterialID) *Material {
	if t == nil || id < 0 || int(id) >= len(t.materials) {
		return nil
	}
	return t.materials[id]
}

// Lookup returns the material stored under name, or nil.
func (t *MaterialTable) Lookup(name string) *Material {
	id, ok := t.ID(name)
	if !ok {
		return nil
	}
	return t.Get(id)
}

// Len returns the number of materials.
func (t *MaterialTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.materials)
}

// Names returns all material names in sorted order.
func (t *MaterialTable) Names() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.ids))
	for name := range t.ids {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// String summarizes the table for logs.
func (t *MaterialTable) String() string {
	return fmt.Sprintf("MaterialTable(%d)", t.Len())
}
