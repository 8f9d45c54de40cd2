package loader

import (
	"context"
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-xr/engine/node"
	"github.com/Carmen-Shannon/oxy-xr/internal/logger"
)

// BuiltinPrefix marks a source as a built-in primitive rather than a file, e.g. "builtin:cube".
const BuiltinPrefix = "builtin:"

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	modelCache map[string]node.Node

	gltf       loaderBackend
	primitives loaderBackend
}

// Loader loads model sources into node hierarchies and caches them by source.
// File formats (glTF, GLB) and built-in primitives sit behind a generic backend.
type Loader interface {
	// Load imports a model source and caches the result. A cached source is returned
	// without touching the backend. The backend is selected from the source: the
	// BuiltinPrefix selects a primitive, .gltf/.glb select the glTF backend.
	//
	// Parameters:
	//   - ctx: cancels the load before the result is cached
	//   - source: the file path or builtin primitive name
	//
	// Returns:
	//   - node.Node: the root of the loaded hierarchy
	//   - error: error if the source is unsupported, loading fails or ctx is done
	Load(ctx context.Context, source string) (node.Node, error)

	// LoadReader imports a glTF or GLB stream and caches it by the given name.
	//
	// Parameters:
	//   - name: the cache key for the loaded model
	//   - r: the reader providing model data
	//   - isGLB: true if the reader provides GLB binary data
	//
	// Returns:
	//   - node.Node: the root of the loaded hierarchy
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, isGLB bool) (node.Node, error)

	// Get retrieves a cached model by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - node.Node: the cached model or nil
	Get(name string) node.Node

	// Models returns a copy of the model cache.
	//
	// Returns:
	//   - map[string]node.Node: all cached models keyed by name
	Models() map[string]node.Node
}

var _ Loader = &loader{}

// NewLoader creates a new Loader with the glTF and primitive backends and the options applied.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new Loader instance
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		modelCache: make(map[string]node.Node),
		gltf:       &gltfImporter{},
		primitives: &primitiveLoaderBackend{},
	}
	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) Load(ctx context.Context, source string) (node.Node, error) {
	if cached := l.Get(source); cached != nil {
		return cached, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	backend, path, err := l.resolveBackend(source)
	if err != nil {
		return nil, err
	}

	root, err := backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", source, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger.Debug("model loaded", "source", source, "children", len(root.Children()))
	return l.store(source, root), nil
}

func (l *loader) LoadReader(name string, r io.Reader, isGLB bool) (node.Node, error) {
	if cached := l.Get(name); cached != nil {
		return cached, nil
	}

	root, err := l.gltf.LoadReader(r, isGLB)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}
	return l.store(name, root), nil
}

// store caches root under key unless a concurrent load got there first, in which case the
// earlier result wins.
func (l *loader) store(key string, root node.Node) node.Node {
	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.modelCache[key]; ok {
		return existing
	}
	l.modelCache[key] = root
	return root
}

func (l *loader) Get(name string) node.Node {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.modelCache[name]
}

func (l *loader) Models() map[string]node.Node {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return maps.Clone(l.modelCache)
}

// resolveBackend selects a backend from the source and returns the path to hand it.
func (l *loader) resolveBackend(source string) (loaderBackend, string, error) {
	if name, ok := strings.CutPrefix(source, BuiltinPrefix); ok {
		return l.primitives, name, nil
	}
	switch ext := strings.ToLower(filepath.Ext(source)); ext {
	case ".gltf", ".glb":
		return l.gltf, source, nil
	default:
		return nil, "", fmt.Errorf("unsupported model format: %q", ext)
	}
}
