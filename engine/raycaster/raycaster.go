package raycaster

import (
	"math"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-xr/common"
	"github.com/Carmen-Shannon/oxy-xr/engine/node"
)

// Intersection is a single ray hit against a node's geometry.
type Intersection struct {
	// Distance is the world-space distance from the ray origin to Point.
	Distance float32
	// Point is the world-space hit position.
	Point common.Vec3
	// Object is the node whose shape was hit.
	Object node.Node
}

type raycasterImpl struct {
	mu *sync.Mutex

	ray         common.Ray
	near        float32
	far         float32
	visibleOnly bool
}

// Raycaster tests a world-space ray against the mesh shapes of scene nodes.
// Line shapes are never hit. Results are sorted nearest first, so index 0 is always the
// closest surface along the ray.
type Raycaster interface {
	// Ray returns the ray currently being cast.
	//
	// Returns:
	//   - common.Ray: the current ray
	Ray() common.Ray

	// Set replaces the ray being cast.
	//
	// Parameters:
	//   - ray: the new ray, with a unit-length direction
	Set(ray common.Ray)

	// SetFromMatrix points the ray along the local -Z axis of a world transform, starting at
	// the transform's translation. Scale in the matrix does not affect the direction length.
	//
	// Parameters:
	//   - world: a column-major 4x4 world matrix
	SetFromMatrix(world [16]float32)

	// IntersectObject tests the ray against n, and against its descendants when recursive is
	// true.
	//
	// Parameters:
	//   - n: the node to test
	//   - recursive: true to also test every descendant
	//
	// Returns:
	//   - []Intersection: the hits sorted by ascending distance, or nil
	IntersectObject(n node.Node, recursive bool) []Intersection

	// IntersectObjects tests the ray against every node in nodes, merging the hits.
	//
	// Parameters:
	//   - nodes: the nodes to test
	//   - recursive: true to also test every descendant
	//
	// Returns:
	//   - []Intersection: the hits sorted by ascending distance, or nil
	IntersectObjects(nodes []node.Node, recursive bool) []Intersection
}

var _ Raycaster = &raycasterImpl{}

// NewRaycaster creates a Raycaster with an unbounded far distance that tests hidden nodes too.
//
// Parameters:
//   - options: functional options to configure the raycaster
//
// Returns:
//   - Raycaster: the newly created raycaster
func NewRaycaster(options ...RaycasterBuilderOption) Raycaster {
	r := &raycasterImpl{
		mu:  &sync.Mutex{},
		ray: common.Ray{Direction: common.Vec3{0, 0, -1}},
		far: float32(math.Inf(1)),
	}
	for _, option := range options {
		option(r)
	}
	return r
}

func (r *raycasterImpl) Ray() common.Ray {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ray
}

func (r *raycasterImpl) Set(ray common.Ray) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ray = ray
}

func (r *raycasterImpl) SetFromMatrix(world [16]float32) {
	r.Set(common.NewRayFromMatrix(world[:]))
}

func (r *raycasterImpl) IntersectObject(n node.Node, recursive bool) []Intersection {
	return r.IntersectObjects([]node.Node{n}, recursive)
}

func (r *raycasterImpl) IntersectObjects(nodes []node.Node, recursive bool) []Intersection {
	r.mu.Lock()
	ray, near, far, visibleOnly := r.ray, r.near, r.far, r.visibleOnly
	r.mu.Unlock()

	var hits []Intersection
	var visit func(n node.Node)
	visit = func(n node.Node) {
		if n == nil {
			return
		}
		if visibleOnly && !n.Visible() {
			return
		}
		if hit, ok := intersectNode(ray, n); ok && hit.Distance >= near && hit.Distance <= far {
			hits = append(hits, hit)
		}
		if !recursive {
			return
		}
		for _, child := range n.Children() {
			visit(child)
		}
	}
	for _, n := range nodes {
		visit(n)
	}

	slices.SortStableFunc(hits, func(a, b Intersection) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		}
		return 0
	})
	return hits
}

// intersectNode returns the nearest hit of ray against n's own shape.
func intersectNode(ray common.Ray, n node.Node) (Intersection, bool) {
	shape := n.Shape()
	if shape == nil || shape.Kind() != node.ShapeKindMesh {
		return Intersection{}, false
	}
	tris := shape.Triangles()
	if len(tris) == 0 {
		return Intersection{}, false
	}

	doubleSided := true
	if mat := n.Material(); mat != nil {
		doubleSided = mat.DoubleSided()
	}

	world := n.WorldMatrix()
	best := Intersection{Distance: float32(math.Inf(1)), Object: n}
	found := false
	for _, tri := range tris {
		a := common.TransformPoint(world[:], tri[0])
		b := common.TransformPoint(world[:], tri[1])
		c := common.TransformPoint(world[:], tri[2])
		if !doubleSided {
			normal := common.Cross3(common.Sub3(b, a), common.Sub3(c, a))
			if common.Dot3(normal, ray.Direction) >= 0 {
				continue
			}
		}
		if t, ok := ray.IntersectTriangle(a, b, c); ok && t < best.Distance {
			best.Distance = t
			found = true
		}
	}
	if !found {
		return Intersection{}, false
	}
	best.Point = ray.At(best.Distance)
	return best, true
}
