// Package geometry implements the projective-geometry kernels shared by
// the monocular two-view initializer: point normalization, DLT homography
// and fundamental matrix estimation, essential matrix decomposition, and
// linear triangulation.
package geometry

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// svdResult holds the U, V, V^T, and Sigma factors of a full SVD.
type svdResult struct {
	U  *mat.Dense
	V  *mat.Dense
	VT *mat.Dense
	S  *mat.Dense
}

func factorizeSVD(m *mat.Dense) (*svdResult, error) {
	var svd mat.SVD
	if !svd.Factorize(m, mat.SVDFull) {
		return nil, errors.New("failed to factorize matrix")
	}
	u, v, vt, sigma := &mat.Dense{}, &mat.Dense{}, &mat.Dense{}, &mat.Dense{}
	svd.UTo(u)
	svd.VTo(v)
	vt.CloneFrom(v.T())

	values := svd.Values(nil)
	sigma.CloneFrom(mat.NewDiagDense(len(values), values))

	return &svdResult{U: u, V: v, VT: vt, S: sigma}, nil
}

func transpose(m *mat.Dense) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(c, r, nil)
	out.Copy(m.T())
	return out
}

func identity(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}
