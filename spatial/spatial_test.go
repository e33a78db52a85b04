package spatial

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"
)

func TestPoseRoundTrip(t *testing.T) {
	theta := 0.3
	rcw := NewRotationMatrix(mat.NewDense(3, 3, []float64{
		math.Cos(theta), 0, math.Sin(theta),
		0, 1, 0,
		-math.Sin(theta), 0, math.Cos(theta),
	}))
	tcw := r3.Vector{X: 0.1, Y: -0.2, Z: 1.5}
	pose := NewPose(rcw, tcw)

	pw := r3.Vector{X: 1, Y: 2, Z: 5}
	pc := pose.ToCamera(pw)
	back := pose.ToWorld(pc)

	test.That(t, math.Abs(back.X-pw.X) < 1e-9, test.ShouldBeTrue)
	test.That(t, math.Abs(back.Y-pw.Y) < 1e-9, test.ShouldBeTrue)
	test.That(t, math.Abs(back.Z-pw.Z) < 1e-9, test.ShouldBeTrue)
}

func TestPoseIdentityIsNoOp(t *testing.T) {
	pose := NewPose(Identity(), r3.Vector{})
	p := r3.Vector{X: 3, Y: -1, Z: 2}
	got := pose.ToCamera(p)
	test.That(t, got, test.ShouldResemble, p)
}

func TestGridIndexInsertAndQuery(t *testing.T) {
	bounds := Bounds{MinX: 0, MaxX: 640, MinY: 0, MaxY: 480}
	grid := NewGridIndex(bounds)

	type kp struct {
		x, y  float64
		level int
	}
	kps := []kp{
		{100, 100, 0},
		{102, 101, 1},
		{300, 300, 0},
		{-5, 50, 0}, // out of range on x after clamp check below
	}
	for i, k := range kps {
		grid.Insert(i, k.x, k.y)
	}
	locate := func(idx int) (float64, float64, int) {
		return kps[idx].x, kps[idx].y, kps[idx].level
	}

	got := grid.Query(100, 100, 10, -1, -1, locate)
	test.That(t, len(got) >= 1, test.ShouldBeTrue)
	found0, found1 := false, false
	for _, idx := range got {
		if idx == 0 {
			found0 = true
		}
		if idx == 1 {
			found1 = true
		}
	}
	test.That(t, found0, test.ShouldBeTrue)
	test.That(t, found1, test.ShouldBeTrue)

	farAway := grid.Query(300, 300, 10, -1, -1, locate)
	for _, idx := range farAway {
		test.That(t, idx != 0, test.ShouldBeTrue)
	}

	levelFiltered := grid.Query(100, 100, 10, 1, 1, locate)
	for _, idx := range levelFiltered {
		test.That(t, kps[idx].level, test.ShouldEqual, 1)
	}
}

func TestGridIndexOutOfRangeInsertIsDropped(t *testing.T) {
	bounds := Bounds{MinX: 0, MaxX: 640, MinY: 0, MaxY: 480}
	grid := NewGridIndex(bounds)
	grid.Insert(0, -1000, -1000)
	got := grid.Query(0, 0, 640, -1, -1, func(idx int) (float64, float64, int) {
		return -1000, -1000, 0
	})
	test.That(t, len(got), test.ShouldEqual, 0)
}

func TestGridIndexQueryOutOfImageIsEmpty(t *testing.T) {
	bounds := Bounds{MinX: 0, MaxX: 640, MinY: 0, MaxY: 480}
	grid := NewGridIndex(bounds)
	grid.Insert(0, 100, 100)
	locate := func(idx int) (float64, float64, int) { return 100, 100, 0 }

	got := grid.Query(-1000, -1000, 5, -1, -1, locate)
	test.That(t, len(got), test.ShouldEqual, 0)
}
