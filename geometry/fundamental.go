package geometry

import (
	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"
)

// FundamentalEightPoint estimates a 3x3 rank-2 fundamental matrix F
// satisfying p2^T F p1 = 0 for every pair, using the normalized 8-point
// algorithm: an 8x9 DLT matrix, whose nullspace reshaped 3x3 gives an
// unconstrained F'; the smallest singular value of F' is zeroed to enforce
// rank 2; the result is de-normalized as F = T2^T F' T1 and scaled so
// F[2][2] == 1.
func FundamentalEightPoint(p1, p2 []r2.Point) (*mat.Dense, error) {
	n1, t1 := Normalize(p1)
	n2, t2 := Normalize(p2)

	m := mat.NewDense(len(n1), 9, nil)
	for i := range n1 {
		x, y := n1[i].X, n1[i].Y
		xp, yp := n2[i].X, n2[i].Y
		m.SetRow(i, []float64{xp * x, xp * y, xp, yp * x, yp * y, yp, x, y, 1})
	}

	svd1, err := factorizeSVD(m)
	if err != nil {
		return nil, err
	}
	last := svd1.V.ColView(8)
	data := make([]float64, 9)
	for i := range data {
		data[i] = last.AtVec(i)
	}
	f := mat.NewDense(3, 3, data)

	svd2, err := factorizeSVD(f)
	if err != nil {
		return nil, err
	}
	s := svd2.S
	s.Set(2, 2, 0)

	var fHat mat.Dense
	fHat.Mul(svd2.U, s)
	f.Mul(&fHat, svd2.VT)

	t2T := transpose(t2)
	f.Mul(t2T, f)
	f.Mul(f, t1)
	f.Scale(1/f.At(2, 2), f)

	return f, nil
}
