package loader

import (
	"errors"
	"fmt"
	"io"

	"github.com/Carmen-Shannon/oxy-xr/common"
	"github.com/Carmen-Shannon/oxy-xr/engine/node"
)

// gltfImporter is the loaderBackend for .gltf and .glb sources. It parses the document with a
// gltfParser and turns the selected scene into a node tree.
type gltfImporter struct{}

var _ loaderBackend = &gltfImporter{}

var errNoGeometry = errors.New("document contains no triangle geometry")

func (i *gltfImporter) Load(path string) (node.Node, error) {
	p := &gltfParser{}
	if err := p.parseFile(path); err != nil {
		return nil, fmt.Errorf("gltf %s: %w", path, err)
	}
	return i.build(p)
}

// LoadReader parses a stream. External buffers resolve against the working directory.
func (i *gltfImporter) LoadReader(r io.Reader, isGLB bool) (node.Node, error) {
	p := &gltfParser{}
	if err := p.parseReader(r, isGLB); err != nil {
		return nil, err
	}
	return i.build(p)
}

// build converts the default scene (or the first one, or every parentless node when the
// document declares no scenes) into a group.
func (i *gltfImporter) build(p *gltfParser) (node.Node, error) {
	doc := p.document
	roots := sceneRoots(doc)

	b := &gltfTreeBuilder{parser: p, materials: make(map[int]node.Material), visiting: make(map[int]bool)}
	group := node.NewGroup("")
	for _, idx := range roots {
		n, err := b.node(idx)
		if err != nil {
			return nil, err
		}
		group.Add(n)
	}
	if b.triangles == 0 {
		return nil, errNoGeometry
	}
	return group, nil
}

func sceneRoots(doc *gltfDocument) []int {
	if len(doc.Scenes) > 0 {
		s := 0
		if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
			s = *doc.Scene
		}
		return doc.Scenes[s].Nodes
	}

	child := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			child[c] = true
		}
	}
	var roots []int
	for idx := range doc.Nodes {
		if !child[idx] {
			roots = append(roots, idx)
		}
	}
	return roots
}

type gltfTreeBuilder struct {
	parser    *gltfParser
	materials map[int]node.Material
	visiting  map[int]bool
	triangles int
}

func (b *gltfTreeBuilder) node(idx int) (node.Node, error) {
	doc := b.parser.document
	if idx < 0 || idx >= len(doc.Nodes) {
		return nil, fmt.Errorf("node index %d out of range", idx)
	}
	if b.visiting[idx] {
		return nil, fmt.Errorf("node %d is part of a cycle", idx)
	}
	b.visiting[idx] = true
	defer delete(b.visiting, idx)

	src := doc.Nodes[idx]
	n := node.NewGroup(src.Name)
	if pose, ok := localPose(src); ok {
		n.SetPose(&pose)
	}

	if src.Mesh != nil {
		meshes, err := b.mesh(*src.Mesh)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", idx, err)
		}
		n.Add(meshes...)
	}
	for _, c := range src.Children {
		child, err := b.node(c)
		if err != nil {
			return nil, err
		}
		n.Add(child)
	}
	return n, nil
}

// localPose returns the node's local matrix, or false when it has no transform.
func localPose(n gltfNode) ([16]float32, bool) {
	var m [16]float32
	if n.Matrix != nil {
		return *n.Matrix, true
	}
	if n.Translation == nil && n.Rotation == nil && n.Scale == nil {
		return m, false
	}

	t := [3]float32{}
	q := [4]float32{0, 0, 0, 1}
	s := [3]float32{1, 1, 1}
	if n.Translation != nil {
		t = *n.Translation
	}
	if n.Rotation != nil {
		q = *n.Rotation
	}
	if n.Scale != nil {
		s = *n.Scale
	}
	common.ComposeTRS(m[:], t, q, s)
	return m, true
}

// mesh returns one shaped node per triangle primitive. Other topologies are skipped.
func (b *gltfTreeBuilder) mesh(idx int) ([]node.Node, error) {
	doc := b.parser.document
	if idx < 0 || idx >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", idx)
	}
	src := doc.Meshes[idx]

	var out []node.Node
	for pi, prim := range src.Primitives {
		if prim.Mode != nil && *prim.Mode != gltfPrimitiveModeTriangles {
			continue
		}
		posIdx, ok := prim.Attributes["POSITION"]
		if !ok {
			continue
		}
		positions, err := b.parser.readVec3(posIdx)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d positions: %w", idx, pi, err)
		}
		var indices []uint32
		if prim.Indices != nil {
			if indices, err = b.parser.readIndices(*prim.Indices); err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d indices: %w", idx, pi, err)
			}
		}

		shape := node.NewMeshShape(positions, indices)
		b.triangles += len(shape.Triangles())

		name := src.Name
		if len(src.Primitives) > 1 {
			name = fmt.Sprintf("%s.%d", src.Name, pi)
		}
		out = append(out, node.NewNode(
			node.WithName(name),
			node.WithShape(shape),
			node.WithMaterial(b.material(prim.Material)),
		))
	}
	return out, nil
}

func (b *gltfTreeBuilder) material(idx *int) node.Material {
	doc := b.parser.document
	if idx == nil || *idx < 0 || *idx >= len(doc.Materials) {
		return node.NewMaterial()
	}
	if m, ok := b.materials[*idx]; ok {
		return m
	}

	src := doc.Materials[*idx]
	options := []node.MaterialBuilderOption{node.WithDoubleSided(src.DoubleSided)}
	if src.PbrMetallicRoughness != nil && src.PbrMetallicRoughness.BaseColorFactor != nil {
		c := src.PbrMetallicRoughness.BaseColorFactor
		options = append(options, node.WithColor(c[0], c[1], c[2], c[3]))
	}
	if src.EmissiveFactor != nil {
		e := src.EmissiveFactor
		options = append(options, node.WithEmissive(e[0], e[1], e[2]))
	}
	m := node.NewMaterial(options...)
	b.materials[*idx] = m
	return m
}
