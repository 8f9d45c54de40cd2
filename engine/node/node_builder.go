package node

// NodeBuilderOption is a functional option for configuring a Node during construction.
type NodeBuilderOption func(*node)

// WithName sets the lookup name of the Node.
//
// Parameters:
//   - name: the node name
//
// Returns:
//   - NodeBuilderOption: functional option to set the name
func WithName(name string) NodeBuilderOption {
	return func(n *node) {
		n.name = name
	}
}

// WithVisible sets whether the Node starts visible.
//
// Parameters:
//   - visible: true to draw the node
//
// Returns:
//   - NodeBuilderOption: functional option to set the visibility
func WithVisible(visible bool) NodeBuilderOption {
	return func(n *node) {
		n.visible.Store(visible)
	}
}

// WithPosition sets the initial local position of the Node.
//
// Parameters:
//   - x: the x position
//   - y: the y position
//   - z: the z position
//
// Returns:
//   - NodeBuilderOption: functional option to set the initial position
func WithPosition(x, y, z float32) NodeBuilderOption {
	return func(n *node) {
		n.position = [3]float32{x, y, z}
	}
}

// WithRotation sets the initial local Euler rotation of the Node in radians.
//
// Parameters:
//   - rx: the x rotation angle
//   - ry: the y rotation angle
//   - rz: the z rotation angle
//
// Returns:
//   - NodeBuilderOption: functional option to set the initial rotation
func WithRotation(rx, ry, rz float32) NodeBuilderOption {
	return func(n *node) {
		n.rotation = [3]float32{rx, ry, rz}
	}
}

// WithScale sets the initial local scale of the Node.
//
// Parameters:
//   - sx: the x scale factor
//   - sy: the y scale factor
//   - sz: the z scale factor
//
// Returns:
//   - NodeBuilderOption: functional option to set the initial scale
func WithScale(sx, sy, sz float32) NodeBuilderOption {
	return func(n *node) {
		n.scale = [3]float32{sx, sy, sz}
	}
}

// WithUniformScale sets the same initial scale factor on all three axes.
//
// Parameters:
//   - s: the scale factor
//
// Returns:
//   - NodeBuilderOption: functional option to set the initial scale
func WithUniformScale(s float32) NodeBuilderOption {
	return WithScale(s, s, s)
}

// WithShape sets the drawable Shape of the Node.
//
// Parameters:
//   - s: the shape
//
// Returns:
//   - NodeBuilderOption: functional option to set the shape
func WithShape(s Shape) NodeBuilderOption {
	return func(n *node) {
		n.shape = s
	}
}

// WithMaterial sets the Material of the Node.
//
// Parameters:
//   - m: the material
//
// Returns:
//   - NodeBuilderOption: functional option to set the material
func WithMaterial(m Material) NodeBuilderOption {
	return func(n *node) {
		n.material = m
	}
}

// WithChildren attaches children to the Node at construction time.
//
// Parameters:
//   - children: the nodes to attach
//
// Returns:
//   - NodeBuilderOption: functional option to add children
func WithChildren(children ...Node) NodeBuilderOption {
	return func(n *node) {
		for _, child := range children {
			if child == nil {
				continue
			}
			n.children = append(n.children, child)
			child.setParent(n)
		}
	}
}
