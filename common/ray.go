package common

// rayEpsilon rejects near-parallel triangles and hits behind or at the ray origin.
const rayEpsilon = 1e-7

// Ray is a half-line in world space. Direction is expected to be unit length so distances
// returned by the intersection helpers are world units.
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// NewRayFromMatrix builds the pointing ray of a world transform: the origin is the matrix
// translation and the direction is the matrix's local -Z axis.
//
// Parameters:
//   - world: a column-major 4x4 world matrix
//
// Returns:
//   - Ray: the pointing ray
func NewRayFromMatrix(world []float32) Ray {
	return Ray{
		Origin:    MatrixPosition(world),
		Direction: TransformDirection(world, Vec3{0, 0, -1}),
	}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) Vec3 {
	return Add3(r.Origin, Scale3(r.Direction, t))
}

// IntersectTriangle tests the ray against triangle (a, b, c) using the Möller–Trumbore
// algorithm. Both windings are accepted.
//
// Reference: https://en.wikipedia.org/wiki/M%C3%B6ller%E2%80%93Trumbore_intersection_algorithm
//
// Parameters:
//   - a, b, c: triangle vertices in the same space as the ray
//
// Returns:
//   - float32: distance along the ray to the hit point
//   - bool: true if the ray hits the triangle in front of its origin
func (r Ray) IntersectTriangle(a, b, c Vec3) (float32, bool) {
	edge1 := Sub3(b, a)
	edge2 := Sub3(c, a)
	p := Cross3(r.Direction, edge2)
	det := Dot3(edge1, p)
	if det > -rayEpsilon && det < rayEpsilon {
		return 0, false
	}
	invDet := 1 / det

	s := Sub3(r.Origin, a)
	u := Dot3(s, p) * invDet
	if u < 0 || u > 1 {
		return 0, false
	}

	q := Cross3(s, edge1)
	v := Dot3(r.Direction, q) * invDet
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t := Dot3(edge2, q) * invDet
	if t <= rayEpsilon {
		return 0, false
	}
	return t, true
}
