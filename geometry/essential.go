package geometry

import "gonum.org/v1/gonum/mat"

// DecomposeEssential factors an essential matrix E = U*Sigma*V^T into the
// two candidate rotations and the (up-to-sign) translation direction: t is
// the third column of U, normalized; W is the pi/2 rotation about Z;
// R1 = U*W*V^T, R2 = U*W^T*V^T, with sign flips applied so both rotations
// have positive determinant. The caller enumerates the four candidate
// motions {(R1,t),(R1,-t),(R2,t),(R2,-t)}.
func DecomposeEssential(e *mat.Dense) (r1, r2, t *mat.Dense, err error) {
	svd, err := factorizeSVD(e)
	if err != nil {
		return nil, nil, nil, err
	}
	u, vt := svd.U, svd.VT
	if mat.Det(u) < 0 {
		u.Scale(-1, u)
	}
	if mat.Det(vt) < 0 {
		vt.Scale(-1, vt)
	}

	w := mat.NewDense(3, 3, nil)
	w.Set(0, 1, 1)
	w.Set(1, 0, -1)
	w.Set(2, 2, 1)

	var R1, R2 mat.Dense
	R1.Mul(u, w)
	R1.Mul(&R1, vt)
	R2.Mul(u, transpose(w))
	R2.Mul(&R2, vt)

	u3 := u.ColView(2)
	tvec := mat.NewDense(3, 1, []float64{u3.AtVec(0), u3.AtVec(1), u3.AtVec(2)})

	return &R1, &R2, tvec, nil
}
