package initmap

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/slamcore/utils"
)

func testCameraMatrix() *mat.Dense {
	k := mat.NewDense(3, 3, nil)
	k.Set(0, 0, 500)
	k.Set(1, 1, 500)
	k.Set(0, 2, 320)
	k.Set(1, 2, 240)
	k.Set(2, 2, 1)
	return k
}

func rotationAboutY(theta float64) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		math.Cos(theta), 0, math.Sin(theta),
		0, 1, 0,
		-math.Sin(theta), 0, math.Cos(theta),
	})
}

func projectPoint(k *mat.Dense, x, y, z float64) r2.Point {
	fx, fy := k.At(0, 0), k.At(1, 1)
	cx, cy := k.At(0, 2), k.At(1, 2)
	return r2.Point{X: fx*x/z + cx, Y: fy*y/z + cy}
}

func rotateAndTranslate(r *mat.Dense, x, y, z, tx, ty, tz float64) (float64, float64, float64) {
	nx := r.At(0, 0)*x + r.At(0, 1)*y + r.At(0, 2)*z + tx
	ny := r.At(1, 0)*x + r.At(1, 1)*y + r.At(1, 2)*z + ty
	nz := r.At(2, 0)*x + r.At(2, 1)*y + r.At(2, 2)*z + tz
	return nx, ny, nz
}

// rotationErrorDeg is the angle of the rotation that takes est to want,
// derived from the trace of their relative rotation.
func rotationErrorDeg(want, est *mat.Dense) float64 {
	var rel mat.Dense
	rel.Mul(want.T(), est)
	tr := rel.At(0, 0) + rel.At(1, 1) + rel.At(2, 2)
	c := (tr - 1) / 2
	if c > 1 {
		c = 1
	}
	if c < -1 {
		c = -1
	}
	return utils.RadToDeg(math.Acos(c))
}

// directionErrorDeg is the angle between two vectors, ignoring their
// magnitude and sign convention: monocular initialization only recovers
// translation up to scale, and the homography/fundamental decompositions
// can hand back either a vector or its negation depending on which
// candidate cheirality selects.
func directionErrorDeg(want, est r3.Vector) float64 {
	cos := want.Dot(est) / (want.Norm() * est.Norm())
	if cos < 0 {
		cos = -cos
	}
	if cos > 1 {
		cos = 1
	}
	return utils.RadToDeg(math.Acos(cos))
}

func triangulatedCount(mask []bool) int {
	n := 0
	for _, ok := range mask {
		if ok {
			n++
		}
	}
	return n
}

func TestInitializePlanarSceneSucceedsViaHomography(t *testing.T) {
	k := testCameraMatrix()
	r := rotationAboutY(5 * math.Pi / 180)
	tx, ty, tz := 0.5, 0.0, 0.0

	rng := rand.New(rand.NewSource(1))
	n := 100
	refKps := make([]r2.Point, n)
	curKps := make([]r2.Point, n)
	matches := make(MatchList, n)
	for i := 0; i < n; i++ {
		x := (rng.Float64()*4 - 2)
		y := (rng.Float64()*4 - 2)
		z := 5.0
		refKps[i] = projectPoint(k, x, y, z)
		nx, ny, nz := rotateAndTranslate(r, x, y, z, tx, ty, tz)
		if nz <= 0 {
			nz = z
		}
		curKps[i] = projectPoint(k, nx, ny, nz)
		matches[i] = Match{Idx1: i, Idx2: i}
	}

	init := NewInitializer(refKps, 1.0, 200, 7)
	res, ok := init.Initialize(curKps, matches, k)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, res, test.ShouldNotBeNil)
	test.That(t, len(res.Points3D), test.ShouldEqual, n)

	// A perfectly planar, noiseless scene admits an exact homography, so
	// the ratio test must route through the homography branch rather than
	// the fundamental one.
	test.That(t, triangulatedCount(res.TriangulatedMask) >= 90, test.ShouldBeTrue)
	test.That(t, rotationErrorDeg(r, res.R) < 0.5, test.ShouldBeTrue)
	test.That(t, directionErrorDeg(r3.Vector{X: tx, Y: ty, Z: tz}, res.T) < 2.0, test.ShouldBeTrue)
}

func TestInitializeGeneral3DSceneSucceedsViaFundamental(t *testing.T) {
	k := testCameraMatrix()
	r := rotationAboutY(5 * math.Pi / 180)
	tx, ty, tz := 0.5, 0.0, 0.0

	rng := rand.New(rand.NewSource(2))
	n := 100
	refKps := make([]r2.Point, n)
	curKps := make([]r2.Point, n)
	matches := make(MatchList, n)
	for i := 0; i < n; i++ {
		x := rng.Float64()*4 - 2
		y := rng.Float64()*4 - 2
		z := 3 + rng.Float64()*5
		refKps[i] = projectPoint(k, x, y, z)
		nx, ny, nz := rotateAndTranslate(r, x, y, z, tx, ty, tz)
		if nz <= 0 {
			nz = z
		}
		curKps[i] = projectPoint(k, nx, ny, nz)
		matches[i] = Match{Idx1: i, Idx2: i}
	}

	init := NewInitializer(refKps, 1.0, 200, 11)
	res, ok := init.Initialize(curKps, matches, k)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, res, test.ShouldNotBeNil)

	// Points spread across a range of depths admit no exact homography, so
	// the ratio test must route through the fundamental branch instead.
	test.That(t, triangulatedCount(res.TriangulatedMask) >= 90, test.ShouldBeTrue)
	test.That(t, rotationErrorDeg(r, res.R) < 0.5, test.ShouldBeTrue)
	test.That(t, directionErrorDeg(r3.Vector{X: tx, Y: ty, Z: tz}, res.T) < 2.0, test.ShouldBeTrue)
}

func TestInitializeSmallTranslationReturnsNotInitialized(t *testing.T) {
	k := testCameraMatrix()
	r := rotationAboutY(0.01)
	tx, ty, tz := 0.02, 0.0, 0.0

	rng := rand.New(rand.NewSource(3))
	n := 60
	refKps := make([]r2.Point, n)
	curKps := make([]r2.Point, n)
	matches := make(MatchList, n)
	for i := 0; i < n; i++ {
		x := rng.Float64()*4 - 2
		y := rng.Float64()*4 - 2
		z := 3 + rng.Float64()*5
		refKps[i] = projectPoint(k, x, y, z)
		nx, ny, nz := rotateAndTranslate(r, x, y, z, tx, ty, tz)
		if nz <= 0 {
			nz = z
		}
		curKps[i] = projectPoint(k, nx, ny, nz)
		matches[i] = Match{Idx1: i, Idx2: i}
	}

	init := NewInitializer(refKps, 1.0, 200, 13)
	_, ok := init.Initialize(curKps, matches, k)
	test.That(t, ok, test.ShouldBeFalse)
}

func TestInitializeTooFewMatchesReturnsNotInitialized(t *testing.T) {
	k := testCameraMatrix()
	init := NewInitializer([]r2.Point{{X: 1, Y: 1}}, 1.0, 50, 1)
	_, ok := init.Initialize([]r2.Point{{X: 1, Y: 1}}, MatchList{{Idx1: 0, Idx2: 0}}, k)
	test.That(t, ok, test.ShouldBeFalse)
}
