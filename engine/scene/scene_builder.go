package scene

import "github.com/Carmen-Shannon/oxy-xr/engine/node"

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the scene is rendered by the engine.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithNodes attaches initial nodes to the scene root.
//
// Parameters:
//   - nodes: the nodes to attach
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithNodes(nodes ...node.Node) SceneBuilderOption {
	return func(s *scene) {
		s.root.Add(nodes...)
	}
}

// WithBackground sets the initial background.
//
// Parameters:
//   - bg: the background
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithBackground(bg Background) SceneBuilderOption {
	return func(s *scene) {
		s.background = bg
	}
}

// WithEnvironment sets the initial lighting environment.
//
// Parameters:
//   - image: the environment map
//   - skybox: the skybox image
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithEnvironment(image, skybox string) SceneBuilderOption {
	return func(s *scene) {
		s.environment = Environment{Image: image, Skybox: skybox}
	}
}

// WithHotspots registers initial hotspots.
//
// Parameters:
//   - hotspots: the hotspots
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithHotspots(hotspots ...Hotspot) SceneBuilderOption {
	return func(s *scene) {
		s.hotspots = append(s.hotspots, hotspots...)
	}
}
