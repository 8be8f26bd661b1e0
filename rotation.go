package quadsim

import "github.com/gonum/matrix/mat64"

// DCM returns the direction cosine matrix of the unit quaternion q, rotating
// body-frame vectors into the world frame.
func DCM(q []float64) *mat64.Dense {
	w, x, y, z := q[0], q[1], q[2], q[3]
	return mat64.NewDense(3, 3, []float64{
		1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y),
		2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x),
		2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y)})
}

// MxV33 multiplies a matrix with a vector. Note that there is no dimension check!
func MxV33(m *mat64.Dense, v []float64) (o []float64) {
	vVec := mat64.NewVector(len(v), v)
	var rVec mat64.Vector
	rVec.MulVec(m, vVec)
	return []float64{rVec.At(0, 0), rVec.At(1, 0), rVec.At(2, 0)}
}

// MtxV33 multiplies the transpose of a matrix with a vector.
func MtxV33(m *mat64.Dense, v []float64) (o []float64) {
	vVec := mat64.NewVector(len(v), v)
	var rVec mat64.Vector
	rVec.MulVec(m.T(), vVec)
	return []float64{rVec.At(0, 0), rVec.At(1, 0), rVec.At(2, 0)}
}

// Homogeneous returns the 4x4 rigid transform assembled from the attitude
// quaternion q and the world-frame position p.
func Homogeneous(q, p []float64) *mat64.Dense {
	r := DCM(q)
	h := mat64.NewDense(4, 4, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			h.Set(i, j, r.At(i, j))
		}
		h.Set(i, 3, p[i])
	}
	h.Set(3, 3, 1)
	return h
}
