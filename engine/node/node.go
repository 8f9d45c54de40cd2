package node

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-xr/common"
)

// nodeCount is an atomic counter used to hand out unique node IDs.
var nodeCount atomic.Uint64

type node struct {
	mu *sync.RWMutex

	id      uint64
	name    string
	visible atomic.Bool

	position [3]float32
	rotation [3]float32
	scale    [3]float32

	// pose, when set, replaces the local transform built from position/rotation/scale.
	// Tracked devices write their platform-reported matrix here every frame.
	pose *[16]float32

	parent   Node
	children []Node

	shape    Shape
	material Material
}

// Node defines the interface for an element of the scene graph.
// A Node carries a local transform (position, Euler rotation, scale), an optional drawable
// Shape with its Material, and an ordered list of children. World matrices are derived on
// demand by walking the parent chain.
type Node interface {
	// ID returns the node's unique identifier.
	//
	// Returns:
	//   - uint64: the node ID
	ID() uint64

	// Name returns the lookup name of the node.
	//
	// Returns:
	//   - string: the node name, empty if unnamed
	Name() string

	// SetName sets the lookup name of the node.
	//
	// Parameters:
	//   - name: the new name
	SetName(name string)

	// Visible returns whether the node (and its subtree) should be drawn.
	//
	// Returns:
	//   - bool: true if visible
	Visible() bool

	// SetVisible sets whether the node (and its subtree) should be drawn.
	//
	// Parameters:
	//   - visible: true to draw the node
	SetVisible(visible bool)

	// Position returns the node's local position.
	//
	// Returns:
	//   - x, y, z: position components
	Position() (x, y, z float32)

	// Rotation returns the node's local Euler rotation in radians.
	//
	// Returns:
	//   - rx, ry, rz: rotation angles
	Rotation() (rx, ry, rz float32)

	// Scale returns the node's local scale.
	//
	// Returns:
	//   - sx, sy, sz: scale factors
	Scale() (sx, sy, sz float32)

	// TransformData reads the whole local transform under a single lock.
	//
	// Returns:
	//   - pos: position as [3]float32 (x, y, z)
	//   - scale: scale as [3]float32 (x, y, z)
	//   - rot: rotation as [3]float32 (rx, ry, rz)
	TransformData() (pos, scale, rot [3]float32)

	// SetPosition sets the node's local position.
	//
	// Parameters:
	//   - x, y, z: new position components
	SetPosition(x, y, z float32)

	// SetRotation sets the node's local Euler rotation in radians.
	//
	// Parameters:
	//   - rx, ry, rz: new rotation angles
	SetRotation(rx, ry, rz float32)

	// SetScale sets the node's local scale.
	//
	// Parameters:
	//   - sx, sy, sz: new scale factors
	SetScale(sx, sy, sz float32)

	// SetPose overrides the local transform with an externally supplied matrix, such as the
	// grip or target-ray pose of a tracked controller. Pass nil to go back to the
	// position/rotation/scale transform.
	//
	// Parameters:
	//   - m: column-major 4x4 matrix, or nil to clear the override
	SetPose(m *[16]float32)

	// LocalMatrix returns the node's local transform.
	//
	// Returns:
	//   - [16]float32: the column-major local matrix
	LocalMatrix() [16]float32

	// WorldMatrix returns the node's transform relative to the scene root by composing the
	// local matrices of every ancestor.
	//
	// Returns:
	//   - [16]float32: the column-major world matrix
	WorldMatrix() [16]float32

	// Parent returns the node's parent, or nil for a detached or root node.
	//
	// Returns:
	//   - Node: the parent or nil
	Parent() Node

	// Children returns a snapshot of the node's direct children.
	//
	// Returns:
	//   - []Node: the children in insertion order
	Children() []Node

	// Add attaches children to this node, detaching each one from its previous parent first.
	// Adding a node that is already a child is a no-op.
	//
	// Parameters:
	//   - children: the nodes to attach
	Add(children ...Node)

	// Remove detaches children from this node. Nodes that are not children are ignored.
	//
	// Parameters:
	//   - children: the nodes to detach
	Remove(children ...Node)

	// GetObjectByName searches this node and its descendants depth-first and returns the
	// first node with the given name.
	//
	// Parameters:
	//   - name: the name to look for
	//
	// Returns:
	//   - Node: the matching node, or nil if none matches
	GetObjectByName(name string) Node

	// Traverse calls fn for this node and every descendant, depth-first.
	//
	// Parameters:
	//   - fn: the visitor
	Traverse(fn func(Node))

	// Shape returns the drawable shape of the node, or nil for a pure group.
	//
	// Returns:
	//   - Shape: the shape or nil
	Shape() Shape

	// Material returns the material of the node, or nil if none is set.
	//
	// Returns:
	//   - Material: the material or nil
	Material() Material

	// setParent is called by Add and Remove to keep the parent link in sync.
	setParent(parent Node)
}

var _ Node = &node{}

// NewNode creates a new Node configured with the given options.
// The node starts visible, at the origin, unrotated and with unit scale.
//
// Parameters:
//   - options: functional options to configure the node
//
// Returns:
//   - Node: the newly created node
func NewNode(options ...NodeBuilderOption) Node {
	n := &node{
		mu:    &sync.RWMutex{},
		id:    nodeCount.Add(1),
		scale: [3]float32{1, 1, 1},
	}
	n.visible.Store(true)
	for _, option := range options {
		option(n)
	}
	return n
}

// NewGroup creates a named Node without a shape, used to collect other nodes under one transform.
//
// Parameters:
//   - name: the group name
//   - options: additional functional options
//
// Returns:
//   - Node: the newly created group
func NewGroup(name string, options ...NodeBuilderOption) Node {
	return NewNode(append([]NodeBuilderOption{WithName(name)}, options...)...)
}

func (n *node) ID() uint64 {
	return n.id
}

func (n *node) Name() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.name
}

func (n *node) SetName(name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.name = name
}

func (n *node) Visible() bool {
	return n.visible.Load()
}

func (n *node) SetVisible(visible bool) {
	n.visible.Store(visible)
}

func (n *node) Position() (x, y, z float32) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.position[0], n.position[1], n.position[2]
}

func (n *node) Rotation() (rx, ry, rz float32) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.rotation[0], n.rotation[1], n.rotation[2]
}

func (n *node) Scale() (sx, sy, sz float32) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.scale[0], n.scale[1], n.scale[2]
}

func (n *node) TransformData() (pos, scale, rot [3]float32) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.position, n.scale, n.rotation
}

func (n *node) SetPosition(x, y, z float32) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.position = [3]float32{x, y, z}
}

func (n *node) SetRotation(rx, ry, rz float32) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rotation = [3]float32{rx, ry, rz}
}

func (n *node) SetScale(sx, sy, sz float32) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.scale = [3]float32{sx, sy, sz}
}

func (n *node) SetPose(m *[16]float32) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if m == nil {
		n.pose = nil
		return
	}
	p := *m
	n.pose = &p
}

func (n *node) LocalMatrix() [16]float32 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.pose != nil {
		return *n.pose
	}
	var m [16]float32
	common.BuildModelMatrix(m[:],
		n.position[0], n.position[1], n.position[2],
		n.rotation[0], n.rotation[1], n.rotation[2],
		n.scale[0], n.scale[1], n.scale[2],
	)
	return m
}

func (n *node) WorldMatrix() [16]float32 {
	world := n.LocalMatrix()
	for p := n.Parent(); p != nil; p = p.Parent() {
		local := p.LocalMatrix()
		var out [16]float32
		common.Mul4(out[:], local[:], world[:])
		world = out
	}
	return world
}

func (n *node) Parent() Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.parent
}

func (n *node) Children() []Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return slices.Clone(n.children)
}

func (n *node) Add(children ...Node) {
	for _, child := range children {
		if child == nil || child == Node(n) {
			continue
		}
		if prev := child.Parent(); prev != nil {
			if prev == Node(n) {
				continue
			}
			prev.Remove(child)
		}
		n.mu.Lock()
		n.children = append(n.children, child)
		n.mu.Unlock()
		child.setParent(n)
	}
}

func (n *node) Remove(children ...Node) {
	for _, child := range children {
		if child == nil {
			continue
		}
		n.mu.Lock()
		idx := slices.Index(n.children, child)
		if idx >= 0 {
			n.children = slices.Delete(n.children, idx, idx+1)
		}
		n.mu.Unlock()
		if idx >= 0 {
			child.setParent(nil)
		}
	}
}

func (n *node) GetObjectByName(name string) Node {
	if n.Name() == name {
		return n
	}
	for _, child := range n.Children() {
		if found := child.GetObjectByName(name); found != nil {
			return found
		}
	}
	return nil
}

func (n *node) Traverse(fn func(Node)) {
	fn(n)
	for _, child := range n.Children() {
		child.Traverse(fn)
	}
}

func (n *node) Shape() Shape {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.shape
}

func (n *node) Material() Material {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.material
}

func (n *node) setParent(parent Node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.parent = parent
}
