// Package initmap implements the geometric cheirality check and the
// two-view monocular initializer built on top of ransac and geometry.
package initmap

import (
	"math"
	"sort"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/slamcore/geometry"
	"go.viam.com/slamcore/utils"
)

// CheiralityResult is the outcome of running the cheirality test for one
// candidate (R,t) motion against a set of putative matches.
type CheiralityResult struct {
	NGood       int
	Points3D    []r3.Vector
	Good        []bool
	ParallaxDeg float64
}

func mulRotPlusT(r *mat.Dense, x r3.Vector, t r3.Vector) r3.Vector {
	return r3.Vector{
		X: r.At(0, 0)*x.X + r.At(0, 1)*x.Y + r.At(0, 2)*x.Z + t.X,
		Y: r.At(1, 0)*x.X + r.At(1, 1)*x.Y + r.At(1, 2)*x.Z + t.Y,
		Z: r.At(2, 0)*x.X + r.At(2, 1)*x.Y + r.At(2, 2)*x.Z + t.Z,
	}
}

func projectHomogeneous(p *mat.Dense, x r3.Vector) (u, v float64, ok bool) {
	homX := mat.NewVecDense(4, []float64{x.X, x.Y, x.Z, 1})
	var out mat.VecDense
	out.MulVec(p, homX)
	w := out.AtVec(2)
	if w == 0 {
		return 0, 0, false
	}
	return out.AtVec(0) / w, out.AtVec(1) / w, true
}

// RunCheirality triangulates every inlier pair under the candidate motion
// (r,t) and counts how many land in front of both cameras with acceptable
// reprojection error. kp1/kp2 are pixel-space keypoints (z=1 homogeneous);
// k is the camera matrix; th2 is the squared reprojection-error threshold
// in pixels.
func RunCheirality(r *mat.Dense, t r3.Vector, kp1, kp2 []r3.Vector, inlierMask []bool, k *mat.Dense, th2 float64) CheiralityResult {
	p1 := mat.NewDense(3, 4, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			p1.Set(i, j, k.At(i, j))
		}
	}
	var kr mat.Dense
	kr.Mul(k, r)
	kt := mat.NewVecDense(3, []float64{t.X, t.Y, t.Z})
	var kt3 mat.VecDense
	kt3.MulVec(k, kt)
	p2 := mat.NewDense(3, 4, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			p2.Set(i, j, kr.At(i, j))
		}
		p2.Set(i, 3, kt3.AtVec(i))
	}

	o1 := r3.Vector{}
	rTrans := mat.DenseCopyOf(r.T())
	rawT := mat.NewVecDense(3, []float64{t.X, t.Y, t.Z})
	var negRTt mat.VecDense
	negRTt.MulVec(rTrans, rawT)
	o2 := r3.Vector{X: -negRTt.AtVec(0), Y: -negRTt.AtVec(1), Z: -negRTt.AtVec(2)}

	result := CheiralityResult{
		Points3D: make([]r3.Vector, len(kp1)),
		Good:     make([]bool, len(kp1)),
	}
	var cosParallaxes []float64

	for i := range kp1 {
		if !inlierMask[i] {
			continue
		}
		x, err := geometry.Triangulate(kp1[i], kp2[i], p1, p2)
		if err != nil {
			continue
		}
		if math.IsNaN(x.X) || math.IsNaN(x.Y) || math.IsNaN(x.Z) ||
			math.IsInf(x.X, 0) || math.IsInf(x.Y, 0) || math.IsInf(x.Z, 0) {
			continue
		}

		d1 := r3.Vector{X: x.X - o1.X, Y: x.Y - o1.Y, Z: x.Z - o1.Z}
		d2 := r3.Vector{X: x.X - o2.X, Y: x.Y - o2.Y, Z: x.Z - o2.Z}
		n1, n2 := d1.Norm(), d2.Norm()
		if n1 == 0 || n2 == 0 {
			continue
		}
		cosParallax := d1.Dot(d2) / (n1 * n2)

		if x.Z <= 0 && cosParallax < 0.99998 {
			continue
		}

		x2 := mulRotPlusT(r, x, t)
		if x2.Z <= 0 && cosParallax < 0.99998 {
			continue
		}

		u1, v1, ok1 := projectHomogeneous(p1, x)
		if !ok1 {
			continue
		}
		e1 := (u1-kp1[i].X)*(u1-kp1[i].X) + (v1-kp1[i].Y)*(v1-kp1[i].Y)
		if e1 > th2 {
			continue
		}

		u2, v2, ok2 := projectHomogeneous(p2, x)
		if !ok2 {
			continue
		}
		e2 := (u2-kp2[i].X)*(u2-kp2[i].X) + (v2-kp2[i].Y)*(v2-kp2[i].Y)
		if e2 > th2 {
			continue
		}

		result.NGood++
		result.Points3D[i] = x
		good := cosParallax < 0.99998
		result.Good[i] = good
		cosParallaxes = append(cosParallaxes, cosParallax)
	}

	if len(cosParallaxes) == 0 {
		result.ParallaxDeg = 0
		return result
	}
	sort.Float64s(cosParallaxes)
	idx := 49
	if idx >= len(cosParallaxes) {
		idx = len(cosParallaxes) - 1
	}
	result.ParallaxDeg = utils.RadToDeg(math.Acos(cosParallaxes[idx]))
	return result
}
