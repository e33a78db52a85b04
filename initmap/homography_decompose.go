package initmap

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Candidate is one of the (at most 8) motions a homography decomposes
// into.
type Candidate struct {
	R *mat.Dense
	T r3.Vector
}

// DecomposeHomography implements the Faugeras SVD-based decomposition of a
// homography H (pts1 -> pts2) into up to 8 candidate (R,t) motions, given
// the shared camera matrix k. It fails if the singular values of
// A = K^-1*H*K do not satisfy the strict descending-order requirement
// (d1/d2 and d2/d3 both >= 1.00001) needed for the decomposition to be
// well-conditioned.
func DecomposeHomography(h, k *mat.Dense) ([]Candidate, error) {
	var kInv mat.Dense
	if err := kInv.Inverse(k); err != nil {
		return nil, errors.Wrap(err, "camera matrix not invertible")
	}
	var kInvH, a mat.Dense
	kInvH.Mul(&kInv, h)
	a.Mul(&kInvH, k)

	var svd mat.SVD
	if !svd.Factorize(&a, mat.SVDFull) {
		return nil, errors.New("failed to factorize homography")
	}
	sv := svd.Values(nil)
	d1, d2, d3 := sv[0], sv[1], sv[2]
	if d2 == 0 || d1/d2 < 1.00001 || d2/d3 < 1.00001 {
		return nil, errors.New("homography singular values not strictly descending")
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	s := mat.Det(&u) * mat.Det(&v)

	var vt mat.Dense
	vt.CloneFrom(v.T())

	candidates := make([]Candidate, 0, 8)

	aux1 := math.Sqrt((d1*d1 - d2*d2) / (d1*d1 - d3*d3))
	aux3 := math.Sqrt((d2*d2 - d3*d3) / (d1*d1 - d3*d3))
	x1 := [4]float64{aux1, aux1, -aux1, -aux1}
	x3 := [4]float64{aux3, -aux3, aux3, -aux3}

	auxStheta := math.Sqrt((d1*d1-d2*d2)*(d2*d2-d3*d3)) / ((d1 + d3) * d2)
	ctheta := (d2*d2 + d1*d3) / ((d1 + d3) * d2)
	stheta := [4]float64{auxStheta, -auxStheta, -auxStheta, auxStheta}

	for i := 0; i < 4; i++ {
		rp := mat.NewDense(3, 3, []float64{
			ctheta, 0, -stheta[i],
			0, 1, 0,
			stheta[i], 0, ctheta,
		})
		r := composeR(s, &u, rp, &vt)

		tp := r3.Vector{X: x1[i], Y: 0, Z: -x3[i]}
		tScaled := r3.Vector{X: tp.X * (d1 - d3), Y: tp.Y * (d1 - d3), Z: tp.Z * (d1 - d3)}
		t := applyMat3(&u, tScaled)
		t = normalizeVec(t)

		candidates = append(candidates, Candidate{R: r, T: t})
	}

	auxSphi := math.Sqrt((d1*d1-d2*d2)*(d2*d2-d3*d3)) / ((d1 - d3) * d2)
	cphi := (d1*d3 - d2*d2) / ((d1 - d3) * d2)
	sphi := [4]float64{auxSphi, -auxSphi, -auxSphi, auxSphi}

	for i := 0; i < 4; i++ {
		rp := mat.NewDense(3, 3, []float64{
			cphi, 0, sphi[i],
			0, -1, 0,
			sphi[i], 0, -cphi,
		})
		r := composeR(s, &u, rp, &vt)

		tp := r3.Vector{X: x1[i], Y: 0, Z: x3[i]}
		tScaled := r3.Vector{X: tp.X * (d1 + d3), Y: tp.Y * (d1 + d3), Z: tp.Z * (d1 + d3)}
		t := applyMat3(&u, tScaled)
		t = normalizeVec(t)

		candidates = append(candidates, Candidate{R: r, T: t})
	}

	return candidates, nil
}

func composeR(s float64, u, rp, vt *mat.Dense) *mat.Dense {
	var uRp mat.Dense
	uRp.Mul(u, rp)
	var r mat.Dense
	r.Mul(&uRp, vt)
	r.Scale(s, &r)
	return &r
}

func applyMat3(m *mat.Dense, v r3.Vector) r3.Vector {
	return r3.Vector{
		X: m.At(0, 0)*v.X + m.At(0, 1)*v.Y + m.At(0, 2)*v.Z,
		Y: m.At(1, 0)*v.X + m.At(1, 1)*v.Y + m.At(1, 2)*v.Z,
		Z: m.At(2, 0)*v.X + m.At(2, 1)*v.Y + m.At(2, 2)*v.Z,
	}
}

func normalizeVec(v r3.Vector) r3.Vector {
	n := v.Norm()
	if n == 0 {
		return v
	}
	return r3.Vector{X: v.X / n, Y: v.Y / n, Z: v.Z / n}
}
