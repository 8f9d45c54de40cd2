package loader

import "github.com/Carmen-Shannon/oxy-xr/engine/node"

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithModel pre-populates the model cache with a model.
//
// Parameters:
//   - key: the cache key for the model
//   - model: the model to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the model option to a loader
func WithModel(key string, model node.Node) LoaderBuilderOption {
	return func(l *loader) {
		if model != nil {
			l.modelCache[key] = model
		}
	}
}
