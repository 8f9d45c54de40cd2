package loader

import (
	"errors"
	"fmt"
	"io"

	"github.com/Carmen-Shannon/oxy-xr/common"
	"github.com/Carmen-Shannon/oxy-xr/engine/node"
)

// Built-in primitive names accepted after the BuiltinPrefix.
const (
	PrimitiveCube    = "cube"
	PrimitivePyramid = "pyramid"
)

// primitiveLoaderBackend builds unit-sized models in code, used for demos and tests
// without model files on disk.
type primitiveLoaderBackend struct{}

var _ loaderBackend = &primitiveLoaderBackend{}

var errUnknownPrimitive = errors.New("unknown primitive")

func (b *primitiveLoaderBackend) Load(name string) (node.Node, error) {
	var shape node.Shape
	switch name {
	case PrimitiveCube:
		shape = node.NewMeshShape(cubeVertices(), cubeIndices)
	case PrimitivePyramid:
		shape = node.NewMeshShape(pyramidVertices(), pyramidIndices)
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownPrimitive, name)
	}
	mesh := node.NewNode(
		node.WithName(name),
		node.WithShape(shape),
		node.WithMaterial(node.NewMaterial(node.WithHexColor(0xb0b0b0))),
	)
	return node.NewGroup("", node.WithChildren(mesh)), nil
}

func (b *primitiveLoaderBackend) LoadReader(r io.Reader, isGLB bool) (node.Node, error) {
	return nil, errors.New("primitives cannot be read from a stream")
}

func cubeVertices() []common.Vec3 {
	const h = 0.5
	return []common.Vec3{
		{-h, -h, -h}, {h, -h, -h}, {h, h, -h}, {-h, h, -h},
		{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h},
	}
}

// Counter-clockwise when viewed from outside.
var cubeIndices = []uint32{
	4, 5, 6, 4, 6, 7, // +z
	1, 0, 3, 1, 3, 2, // -z
	5, 1, 2, 5, 2, 6, // +x
	0, 4, 7, 0, 7, 3, // -x
	7, 6, 2, 7, 2, 3, // +y
	0, 1, 5, 0, 5, 4, // -y
}

func pyramidVertices() []common.Vec3 {
	const h = 0.5
	return []common.Vec3{
		{-h, -h, h}, {h, -h, h}, {h, -h, -h}, {-h, -h, -h},
		{0, h, 0},
	}
}

var pyramidIndices = []uint32{
	0, 1, 4,
	1, 2, 4,
	2, 3, 4,
	3, 0, 4,
	0, 3, 2, 0, 2, 1,
}
