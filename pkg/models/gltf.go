// Package models loads glTF scenes into render models.
package models

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/taigrr/softraster/pkg/math3d"
	"github.com/taigrr/softraster/pkg/render"
)

// ErrNoGeometry is returned when a document has no drawable triangles.
var ErrNoGeometry = errors.New("no triangle geometry")

// vertexGamma is the exponent applied to COLOR_0 values.
const vertexGamma = 1 / 2.2

// Options controls how a document is converted.
type Options struct {
	// GenerateMipmaps builds a full mip chain for every decoded texture.
	GenerateMipmaps bool
	// CalculateNormals fills in normals for primitives that have none.
	CalculateNormals bool
	// SmoothNormals averages generated normals across shared vertices
	// instead of using one normal per face.
	SmoothNormals bool

	Logger *zap.Logger
}

// DefaultOptions returns the options used by the command line tool.
func DefaultOptions() Options {
	return Options{
		GenerateMipmaps:  true,
		CalculateNormals: true,
		SmoothNormals:    true,
	}
}

// loader carries per-document state while converting.
type loader struct {
	doc   *gltf.Document
	dir   string
	opts  Options
	log   *zap.Logger
	table *render.MaterialTable
	model *render.Model

	textures map[int]*render.Texture // by image index
	keys     map[int]string          // by material index
}

// Load reads a .gltf or .glb file. Every material with a base color
// texture is added to table under its name (or material_<index> when
// unnamed), and the returned model groups triangles by that key.
// Primitives without a usable material are grouped under render.NoMaterial.
func Load(path string, table *render.MaterialTable, opts Options) (*render.Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return Convert(doc, filepath.Dir(path), table, opts)
}

// Convert builds a model from an already parsed document. dir is used to
// resolve relative image URIs.
func Convert(doc *gltf.Document, dir string, table *render.MaterialTable, opts Options) (*render.Model, error) {
	if table == nil {
		table = render.NewMaterialTable()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	l := &loader{
		doc:      doc,
		dir:      dir,
		opts:     opts,
		log:      log,
		table:    table,
		model:    render.NewModel(),
		textures: make(map[int]*render.Texture),
		keys:     make(map[int]string),
	}

	if len(doc.Scenes) == 0 {
		// Documents without scenes still carry meshes; draw each one once
		// untransformed.
		for i := range doc.Meshes {
			if err := l.mesh(i, math3d.Identity()); err != nil {
				return nil, err
			}
		}
	}
	for _, scene := range doc.Scenes {
		for _, n := range scene.Nodes {
			if err := l.node(n, math3d.Identity(), 0); err != nil {
				return nil, err
			}
		}
	}

	if l.model.TriangleCount() == 0 {
		return nil, ErrNoGeometry
	}
	log.Debug("model loaded",
		zap.Int("triangles", l.model.TriangleCount()),
		zap.Int("meshes", len(l.model.Meshes)),
		zap.Int("materials", table.Len()))
	return l.model, nil
}

// maxNodeDepth guards against cyclic node graphs in malformed files.
const maxNodeDepth = 256

func (l *loader) node(idx int, parent math3d.Mat4, depth int) error {
	if idx < 0 || idx >= len(l.doc.Nodes) {
		return fmt.Errorf("node %d out of range", idx)
	}
	if depth > maxNodeDepth {
		return fmt.Errorf("node %d: hierarchy deeper than %d", idx, maxNodeDepth)
	}
	n := l.doc.Nodes[idx]
	world := parent.Mul(localMatrix(n))
	if n.Mesh != nil {
		if err := l.mesh(*n.Mesh, world); err != nil {
			return fmt.Errorf("node %q: %w", n.Name, err)
		}
	}
	for _, c := range n.Children {
		if err := l.node(c, world, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// localMatrix returns the node's matrix, or its TRS when no matrix is set.
func localMatrix(n *gltf.Node) math3d.Mat4 {
	m := math3d.Mat4(n.MatrixOrDefault())
	if m != math3d.Identity() {
		return m
	}
	t, r, s := n.TranslationOrDefault(), n.RotationOrDefault(), n.ScaleOrDefault()
	return math3d.FromScaleRotationTranslation(
		math3d.V3(s[0], s[1], s[2]),
		math3d.Quat{X: r[0], Y: r[1], Z: r[2], W: r[3]},
		math3d.V3(t[0], t[1], t[2]),
	)
}

func (l *loader) mesh(idx int, world math3d.Mat4) error {
	if idx < 0 || idx >= len(l.doc.Meshes) {
		return fmt.Errorf("mesh %d out of range", idx)
	}
	m := l.doc.Meshes[idx]
	for pi, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			l.log.Debug("skipping non-triangle primitive",
				zap.String("mesh", m.Name), zap.Int("primitive", pi))
			continue
		}
		p, err := l.readPrimitive(prim)
		if err != nil {
			return fmt.Errorf("mesh %q primitive %d: %w", m.Name, pi, err)
		}
		if p == nil {
			continue
		}
		key, err := l.material(prim.Material)
		if err != nil {
			return fmt.Errorf("mesh %q primitive %d: %w", m.Name, pi, err)
		}
		l.emit(p, world, l.model.Mesh(key))
	}
	return nil
}

// readPrimitive decodes the attributes of prim. It returns nil when the
// primitive has no positions.
func (l *loader) readPrimitive(prim *gltf.Primitive) (*primitive, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil
	}
	acr, err := l.accessor(posIdx)
	if err != nil {
		return nil, err
	}
	pos, err := modeler.ReadPosition(l.doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}
	p := &primitive{positions: vec3s(pos)}

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if acr, err = l.accessor(idx); err != nil {
			return nil, err
		}
		n, err := modeler.ReadNormal(l.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("read normals: %w", err)
		}
		p.normals = vec3s(n)
	}
	if idx, ok := prim.Attributes[gltf.TANGENT]; ok {
		if acr, err = l.accessor(idx); err != nil {
			return nil, err
		}
		tan, err := modeler.ReadTangent(l.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("read tangents: %w", err)
		}
		p.tangents = make([]math3d.Vec3, len(tan))
		for i, t := range tan {
			p.tangents[i] = math3d.V3(float64(t[0]), float64(t[1]), float64(t[2]))
		}
	}
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if acr, err = l.accessor(idx); err != nil {
			return nil, err
		}
		uv, err := modeler.ReadTextureCoord(l.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("read uvs: %w", err)
		}
		p.uvs = make([]math3d.Vec2, len(uv))
		for i, t := range uv {
			p.uvs[i] = math3d.V2(float64(t[0]), float64(t[1]))
		}
	}
	if idx, ok := prim.Attributes[gltf.COLOR_0]; ok {
		if acr, err = l.accessor(idx); err != nil {
			return nil, err
		}
		c, err := modeler.ReadColor(l.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("read colors: %w", err)
		}
		p.colors = make([]math3d.Vec3, len(c))
		for i, rgba := range c {
			p.colors[i] = vertexColor(rgba)
		}
	}

	if prim.Indices != nil {
		if acr, err = l.accessor(*prim.Indices); err != nil {
			return nil, err
		}
		if p.indices, err = modeler.ReadIndices(l.doc, acr, nil); err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
		for _, i := range p.indices {
			if int(i) >= len(p.positions) {
				return nil, fmt.Errorf("index %d out of range for %d vertices", i, len(p.positions))
			}
		}
	} else {
		p.indices = make([]uint32, len(p.positions))
		for i := range p.indices {
			p.indices[i] = uint32(i)
		}
	}
	if err := p.checkCounts(); err != nil {
		return nil, err
	}
	// A trailing partial triangle is dropped.
	p.indices = p.indices[:len(p.indices)/3*3]

	if p.normals == nil && l.opts.CalculateNormals {
		if l.opts.SmoothNormals {
			p.smoothNormals()
		} else {
			p.flatNormals()
		}
	}
	return p, nil
}

func (l *loader) accessor(idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(l.doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", idx)
	}
	return l.doc.Accessors[idx], nil
}

// emit bakes world into the primitive's vertices and appends its
// triangles to dst. Mirroring transforms flip the winding back.
func (l *loader) emit(p *primitive, world math3d.Mat4, dst *render.Mesh) {
	normal := world.NormalMatrix()
	flip := world.Determinant() < 0

	vertex := func(i uint32) render.Vertex {
		v := render.Vertex{
			Position: world.MulPoint(p.positions[i]),
			Color:    math3d.V3(1, 1, 1),
		}
		if i < uint32(len(p.normals)) {
			v.Normal = normal.MulDir(p.normals[i]).Normalize()
		}
		if i < uint32(len(p.tangents)) {
			v.Tangent = world.MulDir(p.tangents[i]).Normalize()
		}
		if i < uint32(len(p.uvs)) {
			v.UV = p.uvs[i]
		}
		if i < uint32(len(p.colors)) {
			v.Color = p.colors[i]
		}
		return v
	}

	for t := 0; t+2 < len(p.indices); t += 3 {
		a, b, c := vertex(p.indices[t]), vertex(p.indices[t+1]), vertex(p.indices[t+2])
		if flip {
			b, c = c, b
		}
		dst.AddTriangle(a, b, c)
	}
}

// material returns the model key for a primitive's material, adding the
// material to the table the first time it is seen.
func (l *loader) material(idx *int) (string, error) {
	if idx == nil {
		return render.NoMaterial, nil
	}
	if key, ok := l.keys[*idx]; ok {
		return key, nil
	}
	if *idx < 0 || *idx >= len(l.doc.Materials) {
		return "", fmt.Errorf("material %d out of range", *idx)
	}
	m := l.doc.Materials[*idx]
	key := materialKey(m, *idx)

	tex, sampler, err := l.baseColor(m)
	if err != nil {
		return "", fmt.Errorf("material %q: %w", key, err)
	}
	if tex == nil {
		l.keys[*idx] = render.NoMaterial
		return render.NoMaterial, nil
	}
	l.table.Add(key, render.Material{Texture: tex, Sampler: sampler})
	l.keys[*idx] = key
	l.log.Debug("material loaded",
		zap.String("key", key),
		zap.Int("width", tex.Width),
		zap.Int("height", tex.Height),
		zap.Int("levels", tex.Levels()))
	return key, nil
}

func materialKey(m *gltf.Material, idx int) string {
	if m.Name != "" {
		return m.Name
	}
	return fmt.Sprintf("material_%d", idx)
}

// baseColor resolves the base color texture of m. It returns a nil texture
// when the material has none.
func (l *loader) baseColor(m *gltf.Material) (*render.Texture, render.Sampler, error) {
	sampler := render.DefaultSampler()
	if m.PBRMetallicRoughness == nil || m.PBRMetallicRoughness.BaseColorTexture == nil {
		return nil, sampler, nil
	}
	ti := m.PBRMetallicRoughness.BaseColorTexture.Index
	if ti < 0 || ti >= len(l.doc.Textures) {
		return nil, sampler, fmt.Errorf("texture %d out of range", ti)
	}
	gt := l.doc.Textures[ti]
	if gt.Sampler != nil && *gt.Sampler >= 0 && *gt.Sampler < len(l.doc.Samplers) {
		sampler = convertSampler(l.doc.Samplers[*gt.Sampler])
	}
	if gt.Source == nil {
		return nil, sampler, nil
	}
	tex, err := l.image(*gt.Source)
	return tex, sampler, err
}

// image decodes an image once per document.
func (l *loader) image(idx int) (*render.Texture, error) {
	if tex, ok := l.textures[idx]; ok {
		return tex, nil
	}
	if idx < 0 || idx >= len(l.doc.Images) {
		return nil, fmt.Errorf("image %d out of range", idx)
	}
	img := l.doc.Images[idx]

	var (
		tex *render.Texture
		err error
	)
	switch {
	case img.BufferView != nil:
		var data []byte
		if data, err = l.bufferView(*img.BufferView); err == nil {
			tex, err = render.DecodeTexture(bytes.NewReader(data))
		}
	case img.IsEmbeddedResource():
		var data []byte
		if data, err = img.MarshalData(); err == nil {
			tex, err = render.DecodeTexture(bytes.NewReader(data))
		}
	case img.URI != "":
		var name string
		if name, err = url.PathUnescape(img.URI); err == nil {
			tex, err = render.OpenTexture(filepath.Join(l.dir, filepath.FromSlash(name)))
		}
	default:
		err = errors.New("image has no source")
	}
	if err != nil {
		return nil, fmt.Errorf("image %d: %w", idx, err)
	}

	if l.opts.GenerateMipmaps {
		tex.GenerateMipmaps()
	}
	l.textures[idx] = tex
	return tex, nil
}

func (l *loader) bufferView(idx int) ([]byte, error) {
	if idx < 0 || idx >= len(l.doc.BufferViews) {
		return nil, fmt.Errorf("buffer view %d out of range", idx)
	}
	bv := l.doc.BufferViews[idx]
	if bv.Buffer < 0 || bv.Buffer >= len(l.doc.Buffers) {
		return nil, fmt.Errorf("buffer %d out of range", bv.Buffer)
	}
	data := l.doc.Buffers[bv.Buffer].Data
	end := bv.ByteOffset + bv.ByteLength
	if bv.ByteOffset < 0 || end > len(data) {
		return nil, fmt.Errorf("buffer view %d exceeds buffer length %d", idx, len(data))
	}
	return data[bv.ByteOffset:end], nil
}

// convertSampler maps glTF sampler state onto the renderer's sampler.
// Unset filters fall back to nearest.
func convertSampler(s *gltf.Sampler) render.Sampler {
	out := render.Sampler{
		WrapU: convertWrap(s.WrapS),
		WrapV: convertWrap(s.WrapT),
	}
	if s.MagFilter == gltf.MagLinear {
		out.Mag = render.FilterLinear
	}
	switch s.MinFilter {
	case gltf.MinLinear, gltf.MinLinearMipMapNearest, gltf.MinLinearMipMapLinear:
		out.Min = render.FilterLinear
	}
	switch s.MinFilter {
	case gltf.MinNearestMipMapLinear, gltf.MinLinearMipMapLinear:
		out.Mip = render.FilterLinear
	}
	return out
}

func convertWrap(w gltf.WrappingMode) render.WrapMode {
	switch w {
	case gltf.WrapClampToEdge:
		return render.WrapClamp
	case gltf.WrapMirroredRepeat:
		return render.WrapMirror
	default:
		return render.WrapRepeat
	}
}

// vertexColor converts an 8-bit COLOR_0 value to a gamma-encoded 0..1
// triple. Alpha is ignored.
func vertexColor(c [4]uint8) math3d.Vec3 {
	ch := func(b uint8) float64 {
		return math.Min(1, math.Pow(float64(b)/255, vertexGamma))
	}
	return math3d.V3(ch(c[0]), ch(c[1]), ch(c[2]))
}

func vec3s(in [][3]float32) []math3d.Vec3 {
	out := make([]math3d.Vec3, len(in))
	for i, v := range in {
		out[i] = math3d.V3(float64(v[0]), float64(v[1]), float64(v[2]))
	}
	return out
}

// IsModelPath reports whether path has a glTF extension.
func IsModelPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		return true
	}
	return false
}
