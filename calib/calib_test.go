package calib

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func newTestIntrinsics(t *testing.T, dist Distortion) *Intrinsics {
	in, err := NewIntrinsics(640, 480, 500, 500, 320, 240, dist, 40, 40)
	test.That(t, err, test.ShouldBeNil)
	return in
}

func TestNewIntrinsicsDegenerate(t *testing.T) {
	_, err := NewIntrinsics(640, 480, 0, 500, 320, 240, Distortion{}, 40, 40)
	test.That(t, err, test.ShouldEqual, ErrDegenerateCalibration)
}

func TestNewIntrinsicsComputesBaseline(t *testing.T) {
	in := newTestIntrinsics(t, Distortion{})
	test.That(t, in.B, test.ShouldEqual, in.Bf/in.Fx)
}

func TestUndistortPointsIdempotentWhenZero(t *testing.T) {
	in := newTestIntrinsics(t, Distortion{})
	pts := []Point2D{{X: 100, Y: 50}, {X: 400, Y: 300}}
	got := in.UndistortPoints(pts)
	test.That(t, got, test.ShouldResemble, pts)
}

func TestUndistortRoundTripsForwardDistortion(t *testing.T) {
	dist := Distortion{K1: -0.28, K2: 0.07, P1: 0.0002, P2: -0.0001, K3: 0}
	newTestIntrinsics(t, dist)

	xu, yu := 0.15, -0.08
	xd, yd := dist.forwardDistort(xu, yu)
	gotXu, gotYu := dist.undistortNormalized(xd, yd)

	test.That(t, math.Abs(gotXu-xu) < 1e-6, test.ShouldBeTrue)
	test.That(t, math.Abs(gotYu-yu) < 1e-6, test.ShouldBeTrue)
}

func TestProjectBackprojectRoundTrip(t *testing.T) {
	in := newTestIntrinsics(t, Distortion{})
	x, y, z := 0.3, -0.2, 2.5
	p := in.Project(x, y, z)
	gotX, gotY := in.Backproject(p.X, p.Y, z)
	test.That(t, math.Abs(gotX-x) < 1e-9, test.ShouldBeTrue)
	test.That(t, math.Abs(gotY-y) < 1e-9, test.ShouldBeTrue)
}

func TestComputeImageBoundsWithoutDistortionIsRectangle(t *testing.T) {
	in := newTestIntrinsics(t, Distortion{})
	b := in.ComputeImageBounds(640, 480)
	test.That(t, b.MinX, test.ShouldEqual, 0.0)
	test.That(t, b.MinY, test.ShouldEqual, 0.0)
	test.That(t, b.MaxX, test.ShouldEqual, 640.0)
	test.That(t, b.MaxY, test.ShouldEqual, 480.0)
}

func TestComputeImageBoundsWithDistortionShrinksOrGrows(t *testing.T) {
	dist := Distortion{K1: -0.28, K2: 0.07}
	in := newTestIntrinsics(t, dist)
	b := in.ComputeImageBounds(640, 480)
	test.That(t, b.MaxX-b.MinX != 640.0, test.ShouldBeTrue)
}

func TestLoadCalibConfigMissingFile(t *testing.T) {
	_, err := LoadCalibConfig("/nonexistent/path/calib.json")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestConfigValidateRejectsZeroFocalLength(t *testing.T) {
	cfg := &Config{Width: 640, Height: 480, Fx: 0, Fy: 500}
	err := cfg.Validate("test")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestConfigIntrinsicsBuildsFromValidatedFields(t *testing.T) {
	cfg := &Config{Width: 640, Height: 480, Fx: 500, Fy: 500, Cx: 320, Cy: 240, Bf: 40, ThDepth: 40}
	in, err := cfg.Intrinsics()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, in.Width, test.ShouldEqual, 640)
}
