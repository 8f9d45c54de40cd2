package common

import "math"

// Vec3 is a three-component vector used for positions, directions and Euler angles.
type Vec3 = [3]float32

// Add3 returns a + b.
func Add3(a, b Vec3) Vec3 {
	return Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// Sub3 returns a - b.
func Sub3(a, b Vec3) Vec3 {
	return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// Scale3 returns v scaled by s.
func Scale3(v Vec3, s float32) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// Dot3 returns the dot product of a and b.
func Dot3(a, b Vec3) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// Cross3 returns the cross product a × b.
func Cross3(a, b Vec3) Vec3 {
	return Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Length3 returns the euclidean length of v.
func Length3(v Vec3) float32 {
	return float32(math.Sqrt(float64(Dot3(v, v))))
}

// Normalize3 returns v scaled to unit length. A zero vector is returned unchanged.
func Normalize3(v Vec3) Vec3 {
	l := Length3(v)
	if l < 1e-8 {
		return v
	}
	return Scale3(v, 1/l)
}

// TransformPoint applies a column-major 4x4 affine matrix to a point (w = 1).
//
// Parameters:
//   - m: the matrix (16 elements, column-major)
//   - p: the point to transform
//
// Returns:
//   - Vec3: the transformed point
func TransformPoint(m []float32, p Vec3) Vec3 {
	return Vec3{
		m[0]*p[0] + m[4]*p[1] + m[8]*p[2] + m[12],
		m[1]*p[0] + m[5]*p[1] + m[9]*p[2] + m[13],
		m[2]*p[0] + m[6]*p[1] + m[10]*p[2] + m[14],
	}
}

// TransformDirection applies only the upper 3x3 part of a column-major matrix to a direction
// (w = 0) and normalizes the result, so scale baked into the matrix does not leak into the
// returned direction.
//
// Parameters:
//   - m: the matrix (16 elements, column-major)
//   - d: the direction to transform
//
// Returns:
//   - Vec3: the transformed unit direction
func TransformDirection(m []float32, d Vec3) Vec3 {
	return Normalize3(Vec3{
		m[0]*d[0] + m[4]*d[1] + m[8]*d[2],
		m[1]*d[0] + m[5]*d[1] + m[9]*d[2],
		m[2]*d[0] + m[6]*d[1] + m[10]*d[2],
	})
}

// MatrixPosition returns the translation column of a column-major 4x4 matrix.
func MatrixPosition(m []float32) Vec3 {
	return Vec3{m[12], m[13], m[14]}
}

// WrapAngle folds an angle in radians into the half-open range (-π, π].
func WrapAngle(a float32) float32 {
	w := math.Remainder(float64(a), 2*math.Pi)
	if w <= -math.Pi {
		w += 2 * math.Pi
	}
	return float32(w)
}
