package geometry

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"
)

func identityProjection() *mat.Dense {
	p := mat.NewDense(3, 4, nil)
	p.Set(0, 0, 1)
	p.Set(1, 1, 1)
	p.Set(2, 2, 1)
	return p
}

func projectionWithPose(r *mat.Dense, t []float64) *mat.Dense {
	p := mat.NewDense(3, 4, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			p.Set(i, j, r.At(i, j))
		}
		p.Set(i, 3, t[i])
	}
	return p
}

func TestTriangulateRoundTrip(t *testing.T) {
	x := r3.Vector{X: 0.4, Y: -0.2, Z: 3.0}

	p1 := identityProjection()
	r2 := mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	p2 := projectionWithPose(r2, []float64{0.5, 0, 0})

	kp1 := r3.Vector{X: x.X / x.Z, Y: x.Y / x.Z, Z: 1}
	x2 := r3.Vector{X: x.X + 0.5, Y: x.Y, Z: x.Z}
	kp2 := r3.Vector{X: x2.X / x2.Z, Y: x2.Y / x2.Z, Z: 1}

	got, err := Triangulate(kp1, kp2, p1, p2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, math.Abs(got.X-x.X) < 1e-4, test.ShouldBeTrue)
	test.That(t, math.Abs(got.Y-x.Y) < 1e-4, test.ShouldBeTrue)
	test.That(t, math.Abs(got.Z-x.Z) < 1e-4, test.ShouldBeTrue)
}

func TestDecomposeEssentialRecoversRotation(t *testing.T) {
	theta := 0.2
	r := mat.NewDense(3, 3, []float64{
		math.Cos(theta), 0, math.Sin(theta),
		0, 1, 0,
		-math.Sin(theta), 0, math.Cos(theta),
	})
	tHat := crossProductMatrix(r3.Vector{X: 0, Y: 0, Z: 1})
	var e mat.Dense
	e.Mul(tHat, r)

	r1, r2, tOut, err := DecomposeEssential(&e)
	test.That(t, err, test.ShouldBeNil)

	closeToR := func(cand *mat.Dense) bool {
		var diff mat.Dense
		diff.Sub(cand, r)
		return mat.Norm(&diff, 2) < 1e-6
	}
	test.That(t, closeToR(r1) || closeToR(r2), test.ShouldBeTrue)
	test.That(t, tOut.At(2, 0) != 0 || tOut.At(0, 0) != 0, test.ShouldBeTrue)
}
