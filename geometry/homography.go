package geometry

import (
	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"
)

// HomographyDLT estimates a 3x3 homography H such that p2 ~ H*p1 from a
// minimal set of correspondences (8, per the RANSAC minimal-set size),
// using the direct linear transform: two rows per correspondence stacked
// into a 16x9 matrix, whose nullspace (rightmost right-singular vector,
// reshaped 3x3) is the normalized homography H'. The result is
// de-normalized as H = T2^-1 * H' * T1.
func HomographyDLT(p1, p2 []r2.Point) (*mat.Dense, error) {
	n1, t1 := Normalize(p1)
	n2, t2 := Normalize(p2)

	rows := 2 * len(n1)
	m := mat.NewDense(rows, 9, nil)
	for i := range n1 {
		x, y := n1[i].X, n1[i].Y
		xp, yp := n2[i].X, n2[i].Y
		m.SetRow(2*i, []float64{-x, -y, -1, 0, 0, 0, xp * x, xp * y, xp})
		m.SetRow(2*i+1, []float64{0, 0, 0, -x, -y, -1, yp * x, yp * y, yp})
	}

	svd, err := factorizeSVD(m)
	if err != nil {
		return nil, err
	}
	h := mat.NewDense(3, 3, nil)
	last := svd.V.ColView(8)
	data := make([]float64, 9)
	for i := range data {
		data[i] = last.AtVec(i)
	}
	h.SetRow(0, data[0:3])
	h.SetRow(1, data[3:6])
	h.SetRow(2, data[6:9])

	var t2Inv mat.Dense
	if err := t2Inv.Inverse(t2); err != nil {
		return nil, err
	}

	var out mat.Dense
	out.Mul(&t2Inv, h)
	out.Mul(&out, t1)
	out.Scale(1/out.At(2, 2), &out)
	return &out, nil
}
