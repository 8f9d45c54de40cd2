package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-xr/engine/node"
)

// loaderBackend turns one kind of source into a node tree. The loader picks a backend per
// source and owns caching; backends are stateless.
type loaderBackend interface {
	// Load builds the tree for a path. For primitives the path is the primitive name.
	Load(path string) (node.Node, error)

	// LoadReader builds the tree from a stream, isGLB selecting the binary container.
	LoadReader(r io.Reader, isGLB bool) (node.Node, error)
}
