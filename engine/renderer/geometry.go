package renderer

import (
	"github.com/Carmen-Shannon/oxy-xr/common"
	"github.com/Carmen-Shannon/oxy-xr/engine/node"
	"github.com/Carmen-Shannon/oxy-xr/engine/scene"
)

// hotspotMarkerSize is the half-length of a hotspot cross in scene units.
const hotspotMarkerSize = 0.02

var hotspotColor = [4]float32{1, 1, 1, 1}

type frameGeometry struct {
	triangles []float32
	lines     []float32
}

// buildFrameGeometry flattens the visible part of the scene graph into clip-space vertex
// batches. Invisible nodes hide their whole subtree.
func buildFrameGeometry(s scene.Scene, viewProj [16]float32) frameGeometry {
	var g frameGeometry
	appendNode(&g, s.Root(), viewProj)

	if s.HotspotsVisible() {
		world := s.Root().WorldMatrix()
		var mvp [16]float32
		common.Mul4(mvp[:], viewProj[:], world[:])
		for _, h := range s.Hotspots() {
			if !h.FacingCamera {
				continue
			}
			p := h.Position
			for axis := 0; axis < 2; axis++ {
				a, b := p, p
				a[axis] -= hotspotMarkerSize
				b[axis] += hotspotMarkerSize
				g.lines = appendVertex(g.lines, mvp, a, hotspotColor)
				g.lines = appendVertex(g.lines, mvp, b, hotspotColor)
			}
		}
	}
	return g
}

func appendNode(g *frameGeometry, n node.Node, viewProj [16]float32) {
	if !n.Visible() {
		return
	}

	if shape := n.Shape(); shape != nil {
		world := n.WorldMatrix()
		var mvp [16]float32
		common.Mul4(mvp[:], viewProj[:], world[:])
		color := shadedColor(n.Material())

		switch shape.Kind() {
		case node.ShapeKindMesh:
			for _, tri := range shape.Triangles() {
				for _, v := range tri {
					g.triangles = appendVertex(g.triangles, mvp, v, color)
				}
			}
		case node.ShapeKindLine:
			pts := shape.Points()
			for i := 0; i+1 < len(pts); i++ {
				g.lines = appendVertex(g.lines, mvp, pts[i], color)
				g.lines = appendVertex(g.lines, mvp, pts[i+1], color)
			}
		}
	}

	for _, child := range n.Children() {
		appendNode(g, child, viewProj)
	}
}

// shadedColor is the base color with the emissive color added while highlighted.
func shadedColor(m node.Material) [4]float32 {
	if m == nil {
		return [4]float32{1, 1, 1, 1}
	}
	c := m.Color()
	if m.Highlighted() {
		e := m.EmissiveColor()
		for i := 0; i < 3; i++ {
			c[i] = common.Clamp(c[i]+e[i], 0, 1)
		}
	}
	return c
}

func appendVertex(dst []float32, mvp [16]float32, p common.Vec3, color [4]float32) []float32 {
	x := mvp[0]*p[0] + mvp[4]*p[1] + mvp[8]*p[2] + mvp[12]
	y := mvp[1]*p[0] + mvp[5]*p[1] + mvp[9]*p[2] + mvp[13]
	z := mvp[2]*p[0] + mvp[6]*p[1] + mvp[10]*p[2] + mvp[14]
	w := mvp[3]*p[0] + mvp[7]*p[1] + mvp[11]*p[2] + mvp[15]
	return append(dst, x, y, z, w, color[0], color[1], color[2], color[3])
}
