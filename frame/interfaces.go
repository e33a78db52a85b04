// Package frame assembles calibrated, undistorted keypoints, descriptors,
// and (for stereo/RGB-D) depth into a Frame: the per-timestamp unit the
// tracker feeds into pose estimation and mapping.
package frame

import (
	"github.com/golang/geo/r3"

	"go.viam.com/slamcore/stereo"
)

// Keypoint, Descriptor and PyramidScaleTable are the same types the stereo
// matcher operates on; frame re-exports them under its own name so callers
// assembling a Frame don't need to import stereo directly.
type (
	Keypoint          = stereo.Keypoint
	Descriptor        = stereo.Descriptor
	PyramidScaleTable = stereo.PyramidScaleTable
)

// Image is a row-major grayscale image, matching the "input data" contract:
// no color model, no encoding, just addressable intensity.
type Image interface {
	At(x, y int) int
	Width() int
	Height() int
}

// Extractor is the feature-extraction collaborator: it runs a detector and
// descriptor over an image (optionally masked) and exposes the pyramid
// buffers the stereo matcher reads after extraction joins.
type Extractor interface {
	Extract(img Image, mask Image) ([]Keypoint, []Descriptor)
	Levels() int
	ScaleFactor() float64
	ScaleFactors() []float64
	InvScaleFactors() []float64
	LevelSigma2() []float64
	InvLevelSigma2() []float64
	ImagePyramid(level int) stereo.PyramidImage
}

// Vocabulary is the bag-of-words collaborator used by ComputeBoW.
type Vocabulary interface {
	Transform(descriptors []Descriptor, level int) (words map[uint32]float64, featureVec map[uint32][]int)
}

// MapPoint is the non-owning map-point collaborator used by IsInFrustum. Its
// tracking scratch fields are mutated by IsInFrustum on a successful test.
type MapPoint interface {
	WorldPos() r3.Vector
	MeanViewingDir() r3.Vector
	MinDistanceInvariance() float64
	MaxDistanceInvariance() float64
	PredictScale(distance float64) int

	SetTrackInView(inView bool)
	SetTrackProjX(x float64)
	SetTrackProjXR(xr float64)
	SetTrackProjY(y float64)
	SetTrackScaleLevel(level int)
	SetTrackViewCos(cos float64)
}

// DepthImage is the depth-source collaborator for RGB-D frames.
type DepthImage = stereo.DepthImage
