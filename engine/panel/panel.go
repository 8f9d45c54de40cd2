// Package panel builds the in-scene control panel used to rotate and zoom the displayed model
// during an immersive session, and the visuals that show where an input source is pointing.
package panel

import (
	"math"

	"github.com/Carmen-Shannon/oxy-xr/common"
	"github.com/Carmen-Shannon/oxy-xr/engine/input"
	"github.com/Carmen-Shannon/oxy-xr/engine/node"
)

// Surface names. The session controller dispatches on these.
const (
	SurfaceTop     = "TOP"
	SurfaceBottom  = "BOTTOM"
	SurfaceLeft    = "LEFT"
	SurfaceRight   = "RIGHT"
	SurfaceZoomIn  = "ZOOMIN"
	SurfaceZoomOut = "ZOOMOUT"
)

// Node names used to find visuals again after they are attached.
const (
	GroupName   = "controls"
	LineName    = "line"
	ReticleName = "reticle"
)

// DefaultColor is the base color of every panel surface.
const DefaultColor = 0xd4ffff

// Group placement relative to the scene root: the panel hangs below the viewer's eye height.
const (
	groupOffsetY = -1.5
	groupOffsetZ = -0.1
)

// surfaceScale shrinks the unit-sized outlines down to button size.
const surfaceScale = 0.05

var (
	triangleOutline = [][2]float32{{1, -0.8}, {-1, -0.8}, {0, 1}, {1, -0.8}}

	plusOutline = [][2]float32{
		{0.3, 1}, {0.3, 0.3}, {1, 0.3}, {1, -0.3}, {0.3, -0.3}, {0.3, -1},
		{-0.3, -1}, {-0.3, -0.3}, {-1, -0.3}, {-1, 0.3}, {-0.3, 0.3}, {-0.3, 1}, {0.3, 1},
	}

	minusOutline = [][2]float32{{1, 0.3}, {1, -0.3}, {-1, -0.3}, {-1, 0.3}, {1, 0.3}}
)

// surfacePlacement is the fixed placement of one panel surface.
type surfacePlacement struct {
	name     string
	outline  [][2]float32
	position [3]float32
	rotation [3]float32
}

// layout places the four arrows in a diamond with the zoom buttons to their right, all tilted
// back toward the viewer.
var layout = []surfacePlacement{
	{SurfaceTop, triangleOutline, [3]float32{-0.1, 1.35, -0.45}, [3]float32{-0.7, 0, 0}},
	{SurfaceBottom, triangleOutline, [3]float32{-0.1, 1.25, -0.35}, [3]float32{-0.7, 0, math.Pi}},
	{SurfaceLeft, triangleOutline, [3]float32{-0.2, 1.3, -0.4}, [3]float32{-0.7, 0, math.Pi / 2}},
	{SurfaceRight, triangleOutline, [3]float32{0, 1.3, -0.4}, [3]float32{-0.7, 0, -math.Pi / 2}},
	{SurfaceZoomIn, plusOutline, [3]float32{0.15, 1.35, -0.42}, [3]float32{-0.7, 0, 0}},
	{SurfaceZoomOut, minusOutline, [3]float32{0.15, 1.25, -0.35}, [3]float32{-0.7, 0, 0}},
}

// Build creates the control panel group with its six surfaces. Every surface gets its own
// double-sided material so highlights can be toggled independently.
//
// Parameters:
//   - options: functional options to configure the panel
//
// Returns:
//   - node.Node: the panel group
func Build(options ...BuilderOption) node.Node {
	cfg := &config{color: DefaultColor, scale: surfaceScale}
	for _, option := range options {
		option(cfg)
	}

	group := node.NewGroup(GroupName, node.WithPosition(0, groupOffsetY, groupOffsetZ))
	for _, s := range layout {
		group.Add(node.NewNode(
			node.WithName(s.name),
			node.WithShape(node.NewPolygonShape(s.outline)),
			node.WithMaterial(node.NewMaterial(
				node.WithHexColor(cfg.color),
				node.WithEmissive(1, 0, 0),
				node.WithDoubleSided(true),
			)),
			node.WithPosition(s.position[0], s.position[1], s.position[2]),
			node.WithRotation(s.rotation[0], s.rotation[1], s.rotation[2]),
			node.WithUniformScale(cfg.scale),
		))
	}
	return group
}

// BuildInputRayVisual creates the visual for an input source's pointing ray.
//
// A tracked pointer gets a one-unit line from the controller origin along -Z, named LineName;
// scaling the node along Z stretches it to any length. A gaze source gets a thin ring one unit
// ahead, named ReticleName. Other modes have no visual.
//
// Parameters:
//   - mode: the input source's target-ray mode
//
// Returns:
//   - node.Node: the visual, or nil if the mode is not supported
func BuildInputRayVisual(mode input.TargetRayMode) node.Node {
	switch mode {
	case input.TargetRayTrackedPointer:
		return node.NewNode(
			node.WithName(LineName),
			node.WithShape(node.NewLineShape(common.Vec3{0, 0, 0}, common.Vec3{0, 0, -1})),
			node.WithMaterial(node.NewMaterial(node.WithColor(0.5, 0.5, 0.5, 1))),
		)
	case input.TargetRayGaze:
		return node.NewNode(
			node.WithName(ReticleName),
			node.WithShape(node.NewRingShape(0.02, 0.04, 32)),
			node.WithMaterial(node.NewMaterial(node.WithColor(1, 1, 1, 0.5))),
			node.WithPosition(0, 0, -1),
		)
	}
	return nil
}
