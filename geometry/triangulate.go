package geometry

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// crossProductMatrix returns the skew-symmetric matrix [p]_x such that
// [p]_x * v == p.Cross(v).
func crossProductMatrix(p r3.Vector) *mat.Dense {
	c := mat.NewDense(3, 3, nil)
	c.Set(0, 1, -p.Z)
	c.Set(0, 2, p.Y)
	c.Set(1, 0, p.Z)
	c.Set(1, 2, -p.X)
	c.Set(2, 0, -p.Y)
	c.Set(2, 1, p.X)
	return c
}

// Triangulate reconstructs a 3D point from two homogeneous image
// observations kp1, kp2 (in each camera's normalized plane, z=1) and their
// 3x4 camera projection matrices P1, P2, using the DLT cross-product
// stacking: A = [ [kp1]_x * P1 ; [kp2]_x * P2 ], whose nullspace (rightmost
// right-singular vector, dehomogenized) is X.
func Triangulate(kp1, kp2 r3.Vector, p1, p2 *mat.Dense) (r3.Vector, error) {
	kp1Cross := crossProductMatrix(kp1)
	kp2Cross := crossProductMatrix(kp2)

	var a1, a2 mat.Dense
	a1.Mul(kp1Cross, p1)
	a2.Mul(kp2Cross, p2)

	var a mat.Dense
	a.Stack(&a1, &a2)

	svd, err := factorizeSVD(&a)
	if err != nil {
		return r3.Vector{}, err
	}
	const rcond = 1e-15
	var svdFull mat.SVD
	if !svdFull.Factorize(&a, mat.SVDFull) {
		return r3.Vector{}, errors.New("failed to factorize triangulation system")
	}
	if svdFull.Rank(rcond) == 0 {
		return r3.Vector{}, errors.New("degenerate triangulation: zero rank system")
	}

	last := svd.V.ColView(3)
	w := last.AtVec(3)
	if w == 0 {
		return r3.Vector{}, errors.New("degenerate triangulation: point at infinity")
	}
	return r3.Vector{
		X: last.AtVec(0) / w,
		Y: last.AtVec(1) / w,
		Z: last.AtVec(2) / w,
	}, nil
}
