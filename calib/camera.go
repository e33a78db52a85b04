// Package calib implements the pinhole camera model: intrinsics, plumb-bob
// lens distortion, undistortion of image-plane points, and the image-bound
// computation used to seed a session's spatial grid index.
package calib

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrDegenerateCalibration is returned when intrinsics cannot support a
// projective camera (zero focal length).
var ErrDegenerateCalibration = errors.New("degenerate calibration: fx or fy is zero")

// Point2D is an image-plane coordinate.
type Point2D struct {
	X, Y float64
}

// Intrinsics holds a pinhole camera's calibration: focal lengths and
// principal point, their inverses, lens distortion, the stereo
// baseline-times-focal-length term, the derived baseline, and the
// depth-classification threshold used by downstream stereo/RGB-D
// consumers.
type Intrinsics struct {
	Width, Height int
	Fx, Fy        float64
	Cx, Cy        float64
	InvFx, InvFy  float64
	Distortion    Distortion
	Bf            float64
	B             float64 // = Bf / Fx, kept even for monocular cameras; see DESIGN.md.
	ThDepth       float64
}

// NewIntrinsics fills in the derived inverse-focal-length and baseline
// fields from fx, fy, and bf.
func NewIntrinsics(width, height int, fx, fy, cx, cy float64, dist Distortion, bf, thDepth float64) (*Intrinsics, error) {
	if fx == 0 || fy == 0 {
		return nil, ErrDegenerateCalibration
	}
	return &Intrinsics{
		Width:      width,
		Height:     height,
		Fx:         fx,
		Fy:         fy,
		Cx:         cx,
		Cy:         cy,
		InvFx:      1 / fx,
		InvFy:      1 / fy,
		Distortion: dist,
		Bf:         bf,
		B:          bf / fx,
		ThDepth:    thDepth,
	}, nil
}

// CameraMatrix builds the 3x3 pinhole camera matrix
//
//	[fx  0 cx]
//	[ 0 fy cy]
//	[ 0  0  1]
func (in *Intrinsics) CameraMatrix() *mat.Dense {
	k := mat.NewDense(3, 3, nil)
	k.Set(0, 0, in.Fx)
	k.Set(1, 1, in.Fy)
	k.Set(0, 2, in.Cx)
	k.Set(1, 2, in.Cy)
	k.Set(2, 2, 1)
	return k
}

// Project maps a camera-frame 3D point to an image-plane pixel using the
// pinhole projection fx*x/z+cx, fy*y/z+cy. Callers must guard against a
// near-zero z themselves.
func (in *Intrinsics) Project(x, y, z float64) Point2D {
	return Point2D{
		X: in.Fx*x/z + in.Cx,
		Y: in.Fy*y/z + in.Cy,
	}
}

// Backproject maps an image-plane pixel plus metric depth to a camera-frame
// 3D point.
func (in *Intrinsics) Backproject(u, v, z float64) (x, y float64) {
	x = (u - in.Cx) * in.InvFx * z
	y = (v - in.Cy) * in.InvFy * z
	return x, y
}

// UndistortPoints applies the plumb-bob undistortion model to a batch of
// image-plane points. If the distortion coefficients are all zero, the
// input is returned unchanged.
func (in *Intrinsics) UndistortPoints(pts []Point2D) []Point2D {
	if in.Distortion.IsZero() {
		out := make([]Point2D, len(pts))
		copy(out, pts)
		return out
	}
	out := make([]Point2D, len(pts))
	for i, p := range pts {
		xn := (p.X - in.Cx) * in.InvFx
		yn := (p.Y - in.Cy) * in.InvFy
		xu, yu := in.Distortion.undistortNormalized(xn, yn)
		out[i] = Point2D{
			X: xu*in.Fx + in.Cx,
			Y: yu*in.Fy + in.Cy,
		}
	}
	return out
}

// ImageBounds is the axis-aligned undistorted extent of an image, computed
// once per session and shared by every Frame.
type ImageBounds struct {
	MinX, MaxX, MinY, MaxY float64
}

// ComputeImageBounds undistorts the four corners of a width x height image
// and returns the axis-aligned extrema of the resulting quadrilateral. If
// distortion is zero the bounds are exactly the image rectangle.
func (in *Intrinsics) ComputeImageBounds(width, height int) ImageBounds {
	corners := []Point2D{
		{0, 0},
		{float64(width), 0},
		{0, float64(height)},
		{float64(width), float64(height)},
	}
	undist := in.UndistortPoints(corners)

	b := ImageBounds{
		MinX: undist[0].X,
		MaxX: undist[0].X,
		MinY: undist[0].Y,
		MaxY: undist[0].Y,
	}
	for _, p := range undist[1:] {
		if p.X < b.MinX {
			b.MinX = p.X
		}
		if p.X > b.MaxX {
			b.MaxX = p.X
		}
		if p.Y < b.MinY {
			b.MinY = p.Y
		}
		if p.Y > b.MaxY {
			b.MaxY = p.Y
		}
	}
	return b
}
