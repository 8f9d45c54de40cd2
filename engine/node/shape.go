package node

import (
	"math"
	"slices"

	"github.com/Carmen-Shannon/oxy-xr/common"
)

// ShapeKind tags the primitive type of a Shape.
type ShapeKind int

const (
	// ShapeKindMesh is a filled, raycastable triangle mesh.
	ShapeKindMesh ShapeKind = iota
	// ShapeKindLine is a polyline. Lines are drawn but never hit by rays.
	ShapeKindLine
)

// Shape is the local-space geometry of a Node.
type Shape interface {
	// Kind returns the primitive type of the shape.
	//
	// Returns:
	//   - ShapeKind: the primitive type
	Kind() ShapeKind

	// Triangles returns the shape's triangles in local space. Line shapes return nil.
	//
	// Returns:
	//   - [][3]common.Vec3: the triangle list
	Triangles() [][3]common.Vec3

	// Points returns the shape's vertices in local space in drawing order.
	//
	// Returns:
	//   - []common.Vec3: the vertex list
	Points() []common.Vec3
}

type meshShape struct {
	points    []common.Vec3
	triangles [][3]common.Vec3
}

type lineShape struct {
	points []common.Vec3
}

var (
	_ Shape = &meshShape{}
	_ Shape = &lineShape{}
)

// NewPolygonShape builds a filled planar shape in the XY plane from a closed outline.
// A trailing point equal to the first one is dropped, so outlines written as closed paths
// are accepted as-is. The outline may be concave; it is triangulated by ear clipping.
//
// Parameters:
//   - outline: the outline vertices as (x, y) pairs
//
// Returns:
//   - Shape: the filled shape
func NewPolygonShape(outline [][2]float32) Shape {
	pts := slices.Clone(outline)
	if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}

	s := &meshShape{points: make([]common.Vec3, len(pts))}
	for i, p := range pts {
		s.points[i] = common.Vec3{p[0], p[1], 0}
	}
	for _, tri := range triangulate(pts) {
		s.triangles = append(s.triangles, [3]common.Vec3{s.points[tri[0]], s.points[tri[1]], s.points[tri[2]]})
	}
	return s
}

// NewRingShape builds a flat annulus in the XY plane centered on the origin.
//
// Parameters:
//   - inner: the inner radius
//   - outer: the outer radius
//   - segments: the number of angular segments, at least 3
//
// Returns:
//   - Shape: the ring shape
func NewRingShape(inner, outer float32, segments int) Shape {
	segments = max(segments, 3)
	s := &meshShape{}

	step := 2 * math.Pi / float64(segments)
	ring := func(r float32, i int) common.Vec3 {
		a := step * float64(i%segments)
		return common.Vec3{r * float32(math.Cos(a)), r * float32(math.Sin(a)), 0}
	}
	for i := 0; i < segments; i++ {
		i0, o0 := ring(inner, i), ring(outer, i)
		i1, o1 := ring(inner, i+1), ring(outer, i+1)
		s.points = append(s.points, i0, o0)
		s.triangles = append(s.triangles,
			[3]common.Vec3{i0, o0, o1},
			[3]common.Vec3{i0, o1, i1},
		)
	}
	return s
}

// NewMeshShape builds a triangle mesh from indexed vertices. Index triples that reference a
// vertex out of range are skipped.
//
// Parameters:
//   - vertices: the vertex positions
//   - indices: three indices per triangle; nil means vertices are already a triangle list
//
// Returns:
//   - Shape: the mesh shape
func NewMeshShape(vertices []common.Vec3, indices []uint32) Shape {
	s := &meshShape{points: slices.Clone(vertices)}
	if indices == nil {
		for i := 0; i+2 < len(vertices); i += 3 {
			s.triangles = append(s.triangles, [3]common.Vec3{vertices[i], vertices[i+1], vertices[i+2]})
		}
		return s
	}
	n := uint32(len(vertices))
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		if a >= n || b >= n || c >= n {
			continue
		}
		s.triangles = append(s.triangles, [3]common.Vec3{vertices[a], vertices[b], vertices[c]})
	}
	return s
}

// NewLineShape builds a polyline through the given points.
//
// Parameters:
//   - points: the polyline vertices
//
// Returns:
//   - Shape: the line shape
func NewLineShape(points ...common.Vec3) Shape {
	return &lineShape{points: slices.Clone(points)}
}

func (s *meshShape) Kind() ShapeKind {
	return ShapeKindMesh
}

func (s *meshShape) Triangles() [][3]common.Vec3 {
	return s.triangles
}

func (s *meshShape) Points() []common.Vec3 {
	return s.points
}

func (s *lineShape) Kind() ShapeKind {
	return ShapeKindLine
}

func (s *lineShape) Triangles() [][3]common.Vec3 {
	return nil
}

func (s *lineShape) Points() []common.Vec3 {
	return s.points
}

// triangulate splits a simple polygon into triangles by ear clipping and returns index triples.
func triangulate(pts [][2]float32) [][3]int {
	n := len(pts)
	if n < 3 {
		return nil
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	// Work in counter-clockwise order so convexity is a positive cross product.
	if signedArea(pts) < 0 {
		slices.Reverse(idx)
	}

	var out [][3]int
	for guard := 0; len(idx) > 3 && guard < n*n; guard++ {
		clipped := false
		for i := range idx {
			prev := idx[(i+len(idx)-1)%len(idx)]
			cur := idx[i]
			next := idx[(i+1)%len(idx)]
			if !isEar(pts, idx, prev, cur, next) {
				continue
			}
			out = append(out, [3]int{prev, cur, next})
			idx = slices.Delete(idx, i, i+1)
			clipped = true
			break
		}
		if !clipped {
			// Degenerate outline; stop rather than loop forever.
			break
		}
	}
	if len(idx) == 3 {
		out = append(out, [3]int{idx[0], idx[1], idx[2]})
	}
	return out
}

func isEar(pts [][2]float32, idx []int, prev, cur, next int) bool {
	a, b, c := pts[prev], pts[cur], pts[next]
	if cross2(a, b, c) <= 0 {
		return false
	}
	for _, j := range idx {
		if j == prev || j == cur || j == next {
			continue
		}
		if q := pts[j]; q == a || q == b || q == c {
			continue
		}
		if pointInTriangle(pts[j], a, b, c) {
			return false
		}
	}
	return true
}

func signedArea(pts [][2]float32) float32 {
	var area float32
	for i := range pts {
		p, q := pts[i], pts[(i+1)%len(pts)]
		area += p[0]*q[1] - q[0]*p[1]
	}
	return area / 2
}

func cross2(a, b, c [2]float32) float32 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

func pointInTriangle(p, a, b, c [2]float32) bool {
	return cross2(a, b, p) > 0 && cross2(b, c, p) > 0 && cross2(c, a, p) > 0
}
