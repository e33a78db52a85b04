// Package spatial provides the small SE(3) pose type and the fixed-cell
// 2D grid index used by Frame for local keypoint lookup.
package spatial

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// RotationMatrix is a 3x3 orthonormal rotation.
type RotationMatrix struct {
	m *mat.Dense
}

// NewRotationMatrix wraps a 3x3 *mat.Dense as a RotationMatrix.
func NewRotationMatrix(m *mat.Dense) *RotationMatrix {
	return &RotationMatrix{m: mat.DenseCopyOf(m)}
}

// Identity returns the identity rotation.
func Identity() *RotationMatrix {
	m := mat.NewDense(3, 3, nil)
	m.Set(0, 0, 1)
	m.Set(1, 1, 1)
	m.Set(2, 2, 1)
	return &RotationMatrix{m: m}
}

// Dense exposes the underlying 3x3 matrix.
func (r *RotationMatrix) Dense() *mat.Dense {
	return r.m
}

// Transpose returns R^T.
func (r *RotationMatrix) Transpose() *RotationMatrix {
	t := mat.NewDense(3, 3, nil)
	t.Copy(r.m.T())
	return &RotationMatrix{m: t}
}

// Apply rotates a vector: r*v.
func (r *RotationMatrix) Apply(v r3.Vector) r3.Vector {
	x := r.m.At(0, 0)*v.X + r.m.At(0, 1)*v.Y + r.m.At(0, 2)*v.Z
	y := r.m.At(1, 0)*v.X + r.m.At(1, 1)*v.Y + r.m.At(1, 2)*v.Z
	z := r.m.At(2, 0)*v.X + r.m.At(2, 1)*v.Y + r.m.At(2, 2)*v.Z
	return r3.Vector{X: x, Y: y, Z: z}
}
