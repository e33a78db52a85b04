package frame

import (
	"context"
	"math"

	"github.com/golang/geo/r3"

	"go.viam.com/slamcore/calib"
	"go.viam.com/slamcore/spatial"
	"go.viam.com/slamcore/stereo"
	"go.viam.com/slamcore/utils"
)

// Frame is the per-timestamp unit assembled from one (stereo, RGB-D, or
// monocular) capture: undistorted keypoints and descriptors, per-keypoint
// depth and virtual right-coordinate, a spatial grid over the undistorted
// keypoints, and the pose once the tracker has estimated one.
type Frame struct {
	ID int

	Calib  *calib.CalibrationContext
	Scales PyramidScaleTable

	KeypointsRaw []Keypoint
	Keypoints    []Keypoint
	Descriptors  []Descriptor

	RightU []float64
	Depth  []float64

	MapPoints []MapPoint
	Outlier   []bool

	Grid *spatial.GridIndex
	Pose *spatial.Pose

	B  float64
	Bf float64

	bowWords      map[uint32]float64
	bowFeatureVec map[uint32][]int
}

// NewStereoFrame runs left and right extraction in parallel, joins them,
// undistorts the left keypoints, invokes the stereo matcher, and builds the
// grid over the undistorted keypoints. cc is the shared, already-built
// calibration context (image bounds computed once per session, not on
// first-frame branching).
func NewStereoFrame(id int, left, right Image, leftMask, rightMask Image, extractorLeft, extractorRight Extractor, cc *calib.CalibrationContext) (*Frame, error) {
	var leftKps, rightKps []Keypoint
	var leftDesc, rightDesc []Descriptor

	_, err := utils.RunInParallel(context.Background(), []utils.SimpleFunc{
		func(ctx context.Context) error {
			leftKps, leftDesc = extractorLeft.Extract(left, leftMask)
			return nil
		},
		func(ctx context.Context) error {
			rightKps, rightDesc = extractorRight.Extract(right, rightMask)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	in := cc.Intrinsics
	b := in.Bf / in.Fx

	rawPts := keypointsToPoints(leftKps)
	undistPts := in.UndistortPoints(rawPts)
	undistKps := applyUndistorted(leftKps, undistPts)

	scales := extractorScales(extractorLeft)

	leftPyramid := pyramidAdapter{ext: extractorLeft}
	rightPyramid := pyramidAdapter{ext: extractorRight}
	stereoRes := stereo.Match(undistKps, rightKps, leftDesc, rightDesc, scales, leftPyramid, rightPyramid, in.Fx, in.Bf, b, in.Height)

	return newFrame(id, cc, scales, leftKps, undistKps, leftDesc, stereoRes, b), nil
}

// NewRGBDFrame runs extraction on the color/gray image, undistorts, and
// binds depth from depthImg to synthesize a virtual right coordinate for
// each keypoint. It is identical to the stereo constructor except for the
// depth-source step.
func NewRGBDFrame(id int, img, mask Image, extractor Extractor, depthImg DepthImage, cc *calib.CalibrationContext) (*Frame, error) {
	rawKps, desc := extractor.Extract(img, mask)

	in := cc.Intrinsics
	b := in.Bf / in.Fx

	rawPts := keypointsToPoints(rawKps)
	undistPts := in.UndistortPoints(rawPts)
	undistKps := applyUndistorted(rawKps, undistPts)

	scales := extractorScales(extractor)
	res := stereo.BindRGBDepth(rawKps, undistKps, depthImg, in.Bf)

	return newFrame(id, cc, scales, rawKps, undistKps, desc, res, b), nil
}

// NewMonocularFrame extracts and undistorts but leaves RightU and Depth at
// -1 for every keypoint, since no depth source exists.
func NewMonocularFrame(id int, img, mask Image, extractor Extractor, cc *calib.CalibrationContext) (*Frame, error) {
	rawKps, desc := extractor.Extract(img, mask)

	in := cc.Intrinsics
	b := in.Bf / in.Fx

	rawPts := keypointsToPoints(rawKps)
	undistPts := in.UndistortPoints(rawPts)
	undistKps := applyUndistorted(rawKps, undistPts)

	scales := extractorScales(extractor)
	res := stereo.Result{
		RightU: make([]float64, len(undistKps)),
		Depth:  make([]float64, len(undistKps)),
	}
	for i := range res.RightU {
		res.RightU[i] = -1
		res.Depth[i] = -1
	}

	return newFrame(id, cc, scales, rawKps, undistKps, desc, res, b), nil
}

func newFrame(id int, cc *calib.CalibrationContext, scales PyramidScaleTable, rawKps, undistKps []Keypoint, desc []Descriptor, res stereo.Result, b float64) *Frame {
	f := &Frame{
		ID:           id,
		Calib:        cc,
		Scales:       scales,
		KeypointsRaw: rawKps,
		Keypoints:    undistKps,
		Descriptors:  desc,
		RightU:       res.RightU,
		Depth:        res.Depth,
		MapPoints:    make([]MapPoint, len(undistKps)),
		Outlier:      make([]bool, len(undistKps)),
		B:            b,
		Bf:           cc.Intrinsics.Bf,
	}
	f.Grid = spatial.NewGridIndex(spatial.Bounds{
		MinX: cc.Bounds.MinX, MaxX: cc.Bounds.MaxX,
		MinY: cc.Bounds.MinY, MaxY: cc.Bounds.MaxY,
	})
	for i, kp := range undistKps {
		f.Grid.Insert(i, kp.X, kp.Y)
	}
	return f
}

// SetPose derives Rcw/Rwc/Ow from a world-to-camera pose and stores it.
func (f *Frame) SetPose(rcw *spatial.RotationMatrix, tcw r3.Vector) {
	f.Pose = spatial.NewPose(rcw, tcw)
}

// GetFeaturesInArea returns the indices of undistorted keypoints within an
// axis-aligned window of half-width r around (x,y), delegating to the grid.
func (f *Frame) GetFeaturesInArea(x, y, r float64, lvlMin, lvlMax int) []int {
	return f.Grid.Query(x, y, r, lvlMin, lvlMax, func(idx int) (float64, float64, int) {
		kp := f.Keypoints[idx]
		return kp.X, kp.Y, kp.Octave
	})
}

// IsInFrustum tests whether a map point projects inside this frame's
// frustum under the current pose, and on success writes the map point's
// track-projection scratch.
func (f *Frame) IsInFrustum(mp MapPoint, viewCosLimit float64) bool {
	if f.Pose == nil {
		return false
	}
	pw := mp.WorldPos()
	pc := f.Pose.ToCamera(pw)
	if pc.Z <= 0 {
		return false
	}

	in := f.Calib.Intrinsics
	proj := in.Project(pc.X, pc.Y, pc.Z)
	if proj.X < f.Calib.Bounds.MinX || proj.X > f.Calib.Bounds.MaxX ||
		proj.Y < f.Calib.Bounds.MinY || proj.Y > f.Calib.Bounds.MaxY {
		return false
	}

	po := r3.Vector{X: pw.X - f.Pose.Ow.X, Y: pw.Y - f.Pose.Ow.Y, Z: pw.Z - f.Pose.Ow.Z}
	dist := po.Norm()
	if dist < mp.MinDistanceInvariance() || dist > mp.MaxDistanceInvariance() {
		return false
	}

	n := mp.MeanViewingDir()
	viewCos := po.Dot(n) / dist
	if viewCos < viewCosLimit {
		return false
	}

	level := mp.PredictScale(dist)

	mp.SetTrackInView(true)
	mp.SetTrackProjX(proj.X)
	mp.SetTrackProjXR(proj.X - f.Bf/pc.Z)
	mp.SetTrackProjY(proj.Y)
	mp.SetTrackScaleLevel(level)
	mp.SetTrackViewCos(viewCos)
	return true
}

// UnprojectStereo back-projects keypoint i into world coordinates using its
// depth, returning ok=false when depth is not valid.
func (f *Frame) UnprojectStereo(i int) (r3.Vector, bool) {
	if i < 0 || i >= len(f.Depth) || f.Depth[i] <= 0 {
		return r3.Vector{}, false
	}
	if f.Pose == nil {
		return r3.Vector{}, false
	}
	kp := f.Keypoints[i]
	in := f.Calib.Intrinsics
	x, y := in.Backproject(kp.X, kp.Y, f.Depth[i])
	pc := r3.Vector{X: x, Y: y, Z: f.Depth[i]}
	return f.Pose.ToWorld(pc), true
}

// PosInGrid derives the cell (cx,cy) a keypoint falls into, using the same
// formula GridIndex.Insert uses internally, exposed for callers that need
// it without an actual insertion (e.g. re-deriving neighbors).
func (f *Frame) PosInGrid(kp Keypoint) (cx, cy int, ok bool) {
	b := f.Calib.Bounds
	fcx := math.Round((kp.X - b.MinX) * float64(spatial.Cols) / (b.MaxX - b.MinX))
	fcy := math.Round((kp.Y - b.MinY) * float64(spatial.Rows) / (b.MaxY - b.MinY))
	cx, cy = int(fcx), int(fcy)
	if cx < 0 || cx >= spatial.Cols || cy < 0 || cy >= spatial.Rows {
		return 0, 0, false
	}
	return cx, cy, true
}

func keypointsToPoints(kps []Keypoint) []calib.Point2D {
	pts := make([]calib.Point2D, len(kps))
	for i, kp := range kps {
		pts[i] = calib.Point2D{X: kp.X, Y: kp.Y}
	}
	return pts
}

func applyUndistorted(kps []Keypoint, pts []calib.Point2D) []Keypoint {
	out := make([]Keypoint, len(kps))
	for i, kp := range kps {
		out[i] = Keypoint{X: pts[i].X, Y: pts[i].Y, Octave: kp.Octave, Response: kp.Response, Angle: kp.Angle}
	}
	return out
}

func extractorScales(ext Extractor) PyramidScaleTable {
	return PyramidScaleTable{
		Levels:          ext.Levels(),
		ScaleFactor:     ext.ScaleFactor(),
		ScaleFactors:    ext.ScaleFactors(),
		InvScaleFactors: ext.InvScaleFactors(),
		LevelSigma2:     ext.LevelSigma2(),
		InvLevelSigma2:  ext.InvLevelSigma2(),
	}
}

// pyramidAdapter lets stereo.Match read an Extractor's pyramid buffers
// without stereo importing frame.
type pyramidAdapter struct {
	ext Extractor
}

func (p pyramidAdapter) At(level, x, y int) int {
	return p.ext.ImagePyramid(level).At(level, x, y)
}

func (p pyramidAdapter) Width(level int) int {
	return p.ext.ImagePyramid(level).Width(level)
}

func (p pyramidAdapter) Height(level int) int {
	return p.ext.ImagePyramid(level).Height(level)
}
