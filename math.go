package quadsim

import (
	"math"

	"github.com/gonum/floats"
	"github.com/gonum/matrix/mat64"
)

const (
	// Gravity is the gravitational acceleration at sea level in m/s^2.
	Gravity = 9.81
)

// norm returns the norm of a given vector which is supposed to be 3x1.
func norm(v []float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// unit returns the unit vector of a given vector.
func unit(a []float64) (b []float64) {
	n := norm(a)
	if floats.EqualWithinAbs(n, 0, 1e-12) {
		return []float64{0, 0, 0}
	}
	b = make([]float64, len(a))
	for i, val := range a {
		b[i] = val / n
	}
	return
}

// dot performs the inner product via mat64/BLAS.
func dot(a, b []float64) float64 {
	return mat64.Dot(mat64.NewVector(len(a), a), mat64.NewVector(len(b), b))
}

// cross performs the cross product.
func cross(a, b []float64) []float64 {
	return []float64{a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0]}
}

/* Quaternions are stored as [w x y z] (scalar first, Hamilton convention). */

// QuatMult returns the Hamilton product q⊗p. Non-commutative.
func QuatMult(q, p []float64) []float64 {
	return []float64{
		p[0]*q[0] - q[1]*p[1] - q[2]*p[2] - q[3]*p[3],
		q[1]*p[0] + q[0]*p[1] + q[2]*p[3] - q[3]*p[2],
		q[2]*p[0] + q[0]*p[2] + q[3]*p[1] - q[1]*p[3],
		q[3]*p[0] + q[0]*p[3] + q[1]*p[2] - q[2]*p[1],
	}
}

// QuatConjugate returns the conjugate of q (vector part negated).
func QuatConjugate(q []float64) []float64 {
	return []float64{q[0], -q[1], -q[2], -q[3]}
}

// QuatUnit returns q scaled to unit norm.
func QuatUnit(q []float64) []float64 {
	n := math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
	if floats.EqualWithinAbs(n, 0, 1e-12) {
		return []float64{1, 0, 0, 0}
	}
	return []float64{q[0] / n, q[1] / n, q[2] / n, q[3] / n}
}

// QuatFromVectors returns the minimal rotation mapping the direction of `from`
// onto the direction of `to`, via the bisector construction. Both inputs are
// normalized defensively. When the bisector vanishes (antiparallel input
// pair), the identity quaternion is returned: callers which may hit that case
// must handle it themselves (cf. Controller attitude fallback).
func QuatFromVectors(from, to []float64) []float64 {
	from = unit(from)
	to = unit(to)
	mid := []float64{from[0] + to[0], from[1] + to[1], from[2] + to[2]}
	if floats.EqualWithinAbs(norm(mid), 0, 1e-12) {
		return []float64{1, 0, 0, 0}
	}
	mid = unit(mid)
	x := cross(from, mid)
	return []float64{dot(from, mid), x[0], x[1], x[2]}
}
