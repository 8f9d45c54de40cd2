package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-xr/common"
)

func TestNewNodeDefaults(t *testing.T) {
	n := NewNode()

	assert.True(t, n.Visible())
	pos, scale, rot := n.TransformData()
	assert.Equal(t, [3]float32{0, 0, 0}, pos)
	assert.Equal(t, [3]float32{1, 1, 1}, scale)
	assert.Equal(t, [3]float32{0, 0, 0}, rot)
	assert.Nil(t, n.Parent())
	assert.Empty(t, n.Children())
	assert.NotEqual(t, n.ID(), NewNode().ID())
}

func TestAddReparentsChild(t *testing.T) {
	a := NewGroup("a")
	b := NewGroup("b")
	child := NewNode(WithName("child"))

	a.Add(child)
	require.Equal(t, a, child.Parent())

	b.Add(child)
	assert.Equal(t, b, child.Parent())
	assert.Empty(t, a.Children())
	assert.Len(t, b.Children(), 1)

	// Adding again is a no-op.
	b.Add(child)
	assert.Len(t, b.Children(), 1)

	b.Remove(child)
	assert.Nil(t, child.Parent())
	assert.Empty(t, b.Children())
}

func TestGetObjectByNameSearchesDepthFirst(t *testing.T) {
	target := NewNode(WithName("Target"))
	root := NewGroup("root", WithChildren(
		NewGroup("lights"),
		NewGroup("content", WithChildren(NewGroup("wrapper", WithChildren(target)))),
	))

	assert.Equal(t, target, root.GetObjectByName("Target"))
	assert.Equal(t, root, root.GetObjectByName("root"))
	assert.Nil(t, root.GetObjectByName("missing"))
}

func TestWorldMatrixComposesParents(t *testing.T) {
	child := NewNode(WithPosition(0, 0, -1))
	parent := NewGroup("parent", WithPosition(0, 2, 0), WithUniformScale(2), WithChildren(child))
	root := NewGroup("root", WithPosition(0, 0, -5), WithChildren(parent))
	_ = root

	w := child.WorldMatrix()
	assert.InDeltaSlice(t, []float32{0, 2, -7}, w[12:15], 1e-6)
}

func TestSetPoseOverridesLocalTransform(t *testing.T) {
	n := NewNode(WithPosition(1, 1, 1))

	var pose [16]float32
	common.Identity(pose[:])
	pose[12], pose[13], pose[14] = 4, 5, 6
	n.SetPose(&pose)

	m := n.LocalMatrix()
	assert.Equal(t, pose, m)

	// The node keeps a copy; mutating the caller's matrix does not leak in.
	pose[12] = 100
	m = n.LocalMatrix()
	assert.Equal(t, float32(4), m[12])

	n.SetPose(nil)
	m = n.LocalMatrix()
	assert.Equal(t, float32(1), m[12])
}

func TestTraverseVisitsEveryNode(t *testing.T) {
	root := NewGroup("root", WithChildren(
		NewGroup("a", WithChildren(NewGroup("a1"), NewGroup("a2"))),
		NewGroup("b"),
	))

	var names []string
	root.Traverse(func(n Node) { names = append(names, n.Name()) })
	assert.Equal(t, []string{"root", "a", "a1", "a2", "b"}, names)
}

func TestPolygonShapeTriangulatesConcaveOutline(t *testing.T) {
	const a, b = 0.3, 1
	plus := NewPolygonShape([][2]float32{
		{a, b}, {a, a}, {b, a}, {b, -a}, {a, -a}, {a, -b},
		{-a, -b}, {-a, -a}, {-b, -a}, {-b, a}, {-a, a}, {-a, b}, {a, b},
	})

	assert.Equal(t, ShapeKindMesh, plus.Kind())
	assert.Len(t, plus.Points(), 12)
	require.Len(t, plus.Triangles(), 10)

	var area float32
	for _, tri := range plus.Triangles() {
		e1 := common.Sub3(tri[1], tri[0])
		e2 := common.Sub3(tri[2], tri[0])
		area += common.Length3(common.Cross3(e1, e2)) / 2
	}
	// Cross of two 0.6 x 2 bars overlapping in a 0.6 x 0.6 square.
	assert.InDelta(t, 2*0.6*2-0.36, area, 1e-5)
}

func TestRingAndLineShapes(t *testing.T) {
	ring := NewRingShape(0.02, 0.04, 32)
	assert.Len(t, ring.Triangles(), 64)

	line := NewLineShape(common.Vec3{0, 0, 0}, common.Vec3{0, 0, -1})
	assert.Equal(t, ShapeKindLine, line.Kind())
	assert.Nil(t, line.Triangles())
	assert.Len(t, line.Points(), 2)
}

func TestMaterialHighlight(t *testing.T) {
	m := NewMaterial(WithHexColor(0xd4ffff), WithDoubleSided(true))

	assert.InDelta(t, 212.0/255, m.Color()[0], 1e-6)
	assert.True(t, m.DoubleSided())
	assert.False(t, m.Highlighted())

	m.SetHighlighted(true)
	assert.True(t, m.Highlighted())
}

func TestNewMeshShapeIndexed(t *testing.T) {
	verts := []common.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}}
	s := NewMeshShape(verts, []uint32{0, 1, 2, 1, 3, 2, 0, 1, 9})

	assert.Equal(t, ShapeKindMesh, s.Kind())
	require.Len(t, s.Triangles(), 2)
	assert.Equal(t, [3]common.Vec3{verts[1], verts[3], verts[2]}, s.Triangles()[1])
	assert.Equal(t, verts, s.Points())
}

func TestNewMeshShapeTriangleList(t *testing.T) {
	verts := []common.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {5, 5, 5}}
	s := NewMeshShape(verts, nil)

	require.Len(t, s.Triangles(), 1)
	assert.Equal(t, [3]common.Vec3{verts[0], verts[1], verts[2]}, s.Triangles()[0])

	verts[0] = common.Vec3{9, 9, 9}
	assert.Equal(t, common.Vec3{0, 0, 0}, s.Points()[0])
}
