package initmap

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/slamcore/geometry"
)

// TestCheiralityUniquenessAmongFourDecompositions builds a forward-facing
// synthetic point cloud and checks that exactly one of the four essential
// matrix decompositions (R1,t), (R1,-t), (R2,t), (R2,-t) puts the large
// majority of the cloud in front of both cameras, matching the disambiguation
// step of the fundamental-matrix reconstruction branch.
func TestCheiralityUniquenessAmongFourDecompositions(t *testing.T) {
	k := mat.NewDense(3, 3, []float64{500, 0, 320, 0, 500, 240, 0, 0, 1})
	theta := 5 * math.Pi / 180
	r := mat.NewDense(3, 3, []float64{
		math.Cos(theta), 0, math.Sin(theta),
		0, 1, 0,
		-math.Sin(theta), 0, math.Cos(theta),
	})
	trueT := r3.Vector{X: 0.5, Y: 0, Z: 0}

	rng := rand.New(rand.NewSource(4))
	n := 200
	kp1 := make([]r3.Vector, n)
	kp2 := make([]r3.Vector, n)
	inliers := make([]bool, n)
	for i := 0; i < n; i++ {
		x := rng.Float64()*4 - 2
		y := rng.Float64()*4 - 2
		z := 3 + rng.Float64()*5
		u1 := 500*x/z + 320
		v1 := 500*y/z + 240
		kp1[i] = r3.Vector{X: u1, Y: v1, Z: 1}

		x2 := r.At(0, 0)*x + r.At(0, 1)*y + r.At(0, 2)*z + trueT.X
		y2 := r.At(1, 0)*x + r.At(1, 1)*y + r.At(1, 2)*z + trueT.Y
		z2 := r.At(2, 0)*x + r.At(2, 1)*y + r.At(2, 2)*z + trueT.Z
		u2 := 500*x2/z2 + 320
		v2 := 500*y2/z2 + 240
		kp2[i] = r3.Vector{X: u2, Y: v2, Z: 1}
		inliers[i] = true
	}

	tCross := mat.NewDense(3, 3, []float64{
		0, -trueT.Z, trueT.Y,
		trueT.Z, 0, -trueT.X,
		-trueT.Y, trueT.X, 0,
	})
	var e mat.Dense
	e.Mul(tCross, r)
	r1, r2, tCol, err := geometry.DecomposeEssential(&e)
	test.That(t, err, test.ShouldBeNil)
	tHat := vecFromCol(tCol)

	candidates := []Candidate{
		{R: r1, T: tHat},
		{R: r1, T: negVec(tHat)},
		{R: r2, T: tHat},
		{R: r2, T: negVec(tHat)},
	}

	th2 := 4.0
	goodCount := 0
	for _, c := range candidates {
		res := RunCheirality(c.R, c.T, kp1, kp2, inliers, k, th2)
		if float64(res.NGood) > 0.99*float64(n) {
			goodCount++
		}
	}
	test.That(t, goodCount, test.ShouldEqual, 1)
}
