package viewer

import (
	"github.com/Carmen-Shannon/oxy-xr/engine/loader"
	"github.com/Carmen-Shannon/oxy-xr/engine/scene"
)

// ViewerBuilderOption is a functional option for configuring a Viewer via NewViewer.
type ViewerBuilderOption func(*viewer)

// WithLoader sets the model loader. A loader with the default backends is used otherwise.
//
// Parameters:
//   - l: the loader
//
// Returns:
//   - ViewerBuilderOption: functional option to set the loader
func WithLoader(l loader.Loader) ViewerBuilderOption {
	return func(v *viewer) {
		v.loader = l
	}
}

// WithScene sets the scene the viewer draws into instead of a new one.
//
// Parameters:
//   - s: the scene
//
// Returns:
//   - ViewerBuilderOption: functional option to set the scene
func WithScene(s scene.Scene) ViewerBuilderOption {
	return func(v *viewer) {
		v.scene = s
	}
}

// WithWorkers sets how many background workers load models. Defaults to 2.
//
// Parameters:
//   - n: the worker count, ignored if < 1
//
// Returns:
//   - ViewerBuilderOption: functional option to set the worker count
func WithWorkers(n int) ViewerBuilderOption {
	return func(v *viewer) {
		if n >= 1 {
			v.workers = n
		}
	}
}

// WithEnvironments restricts environment and skybox names to the given set plus the neutral
// default. Without it any name is accepted.
//
// Parameters:
//   - names: the known environment and skybox names
//
// Returns:
//   - ViewerBuilderOption: functional option to set the known environments
func WithEnvironments(names ...string) ViewerBuilderOption {
	return func(v *viewer) {
		for _, name := range names {
			v.environments[name] = true
		}
	}
}

// WithEnvironmentAttributes sets the initial environment and skybox. They are not validated.
//
// Parameters:
//   - environment: the environment map name
//   - skybox: the skybox image name
//
// Returns:
//   - ViewerBuilderOption: functional option to set the environment attributes
func WithEnvironmentAttributes(environment, skybox string) ViewerBuilderOption {
	return func(v *viewer) {
		v.attrs.Environment = environment
		v.attrs.Skybox = skybox
	}
}

// WithSurface connects the drawable size and the component that reacts to it. RequestResize
// is a no-op without a size.
//
// Parameters:
//   - size: the drawable size source
//   - r: the resize target, may be nil
//
// Returns:
//   - ViewerBuilderOption: functional option to set the surface
func WithSurface(size SurfaceSize, r Resizer) ViewerBuilderOption {
	return func(v *viewer) {
		v.size = size
		v.resizer = r
	}
}
