package initmap

import (
	"context"
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/slamcore/geometry"
	"go.viam.com/slamcore/ransac"
	"go.viam.com/slamcore/slamlog"
	"go.viam.com/slamcore/utils"
)

const (
	ratioThreshold      = 0.40
	minParallaxDeg      = 1.0
	minTriangulated     = 50
	minimalSetSize      = 8
	noTieMaxGoodFactor  = 0.7
	fGoodFraction       = 0.9
	hSecondBestFraction = 0.75
)

// Match pairs a reference-frame keypoint index with a current-frame
// keypoint index.
type Match struct {
	Idx1, Idx2 int
}

// MatchList is the correspondence list Initialize consumes.
type MatchList []Match

// Result is a successful two-view initialization: the recovered relative
// motion, the triangulated points (indexed like the input match list), and
// which of them triangulated successfully.
type Result struct {
	R                *mat.Dense
	T                r3.Vector
	Points3D         []r3.Vector
	TriangulatedMask []bool
}

// Initializer holds the reference-frame keypoints, measurement sigma, RANSAC
// iteration count and seed. It holds no minimal-set table: each Initialize
// call draws one from the seed, sized to that call's matches, and shares it
// between the homography and fundamental RANSACs.
type Initializer struct {
	refKps   []r2.Point
	sigma    float64
	maxIters int
	seed     uint64
}

// NewInitializer builds an Initializer over a reference frame's undistorted
// keypoints.
func NewInitializer(refKps []r2.Point, sigma float64, maxIters int, seed uint64) *Initializer {
	return &Initializer{refKps: refKps, sigma: sigma, maxIters: maxIters, seed: seed}
}

// Initialize attempts a two-view reconstruction between the reference frame
// and currentKps given matches. Only the branch picked by the score ratio
// (homography or fundamental) is tried; it returns ok=false ("not
// initialized yet") when that branch does not clear its acceptance
// thresholds, and the caller should retry with the next frame.
func (init *Initializer) Initialize(currentKps []r2.Point, matches MatchList, k *mat.Dense) (*Result, bool) {
	n := len(matches)
	if n < minimalSetSize {
		slamlog.Global().Debugw("dropping initialization attempt, too few matches", "matches", n, "needed", minimalSetSize)
		return nil, false
	}
	pts1 := make([]r2.Point, n)
	pts2 := make([]r2.Point, n)
	for i, m := range matches {
		pts1[i] = init.refKps[m.Idx1]
		pts2[i] = currentKps[m.Idx2]
	}

	sigma2 := init.sigma * init.sigma
	sets := ransac.DrawMinimalSets(n, minimalSetSize, init.maxIters, init.seed)

	var hModel, fModel *mat.Dense
	var hInliers, fInliers []bool
	var hScore, fScore float64

	_, err := utils.RunInParallel(context.Background(), []utils.SimpleFunc{
		func(ctx context.Context) error {
			engine := ransac.NewEngineFromSets(n, minimalSetSize, sets)
			hModel, hInliers, hScore = engine.Run(
				func(sample []int) (*mat.Dense, bool) {
					p1, p2 := gather(pts1, pts2, sample)
					h, err := geometry.HomographyDLT(p1, p2)
					return h, err == nil
				},
				func(model *mat.Dense) (float64, []bool) {
					var invH mat.Dense
					if err := invH.Inverse(model); err != nil {
						return 0, make([]bool, n)
					}
					return ransac.ScoreHomography(pts1, pts2, model, &invH, sigma2)
				},
			)
			return nil
		},
		func(ctx context.Context) error {
			engine := ransac.NewEngineFromSets(n, minimalSetSize, sets)
			fModel, fInliers, fScore = engine.Run(
				func(sample []int) (*mat.Dense, bool) {
					p1, p2 := gather(pts1, pts2, sample)
					f, err := geometry.FundamentalEightPoint(p1, p2)
					return f, err == nil
				},
				func(model *mat.Dense) (float64, []bool) {
					return ransac.ScoreFundamental(pts1, pts2, model, sigma2)
				},
			)
			return nil
		},
	})
	if err != nil || hModel == nil || fModel == nil {
		slamlog.Global().Debugw("dropping initialization attempt, no minimal set produced a model", "err", err)
		return nil, false
	}

	th2 := 4 * sigma2
	ratioH := hScore / (hScore + fScore)

	if ratioH > ratioThreshold {
		if res, ok := reconstructFromHomography(hModel, hInliers, k, th2, pts1, pts2); ok {
			return res, true
		}
		return nil, false
	}
	res, ok := reconstructFromFundamental(fModel, fInliers, k, th2, pts1, pts2)
	return res, ok
}

func gather(pts1, pts2 []r2.Point, idx []int) ([]r2.Point, []r2.Point) {
	p1 := make([]r2.Point, len(idx))
	p2 := make([]r2.Point, len(idx))
	for i, j := range idx {
		p1[i] = pts1[j]
		p2[i] = pts2[j]
	}
	return p1, p2
}

func toHomogeneous(pts []r2.Point) []r3.Vector {
	out := make([]r3.Vector, len(pts))
	for i, p := range pts {
		out[i] = r3.Vector{X: p.X, Y: p.Y, Z: 1}
	}
	return out
}

func countInliers(mask []bool) int {
	n := 0
	for _, b := range mask {
		if b {
			n++
		}
	}
	return n
}

func reconstructFromFundamental(f *mat.Dense, inliers []bool, k *mat.Dense, th2 float64, pts1, pts2 []r2.Point) (*Result, bool) {
	var kt, e mat.Dense
	kt.CloneFrom(k.T())
	var ktF mat.Dense
	ktF.Mul(&kt, f)
	e.Mul(&ktF, k)

	r1, r2m, t, err := geometry.DecomposeEssential(&e)
	if err != nil {
		slamlog.Global().Debugw("dropping fundamental branch, essential matrix did not decompose", "err", err)
		return nil, false
	}
	tVec := vecFromCol(t)
	candidates := []Candidate{
		{R: r1, T: tVec},
		{R: r1, T: negVec(tVec)},
		{R: r2m, T: tVec},
		{R: r2m, T: negVec(tVec)},
	}

	kp1 := toHomogeneous(pts1)
	kp2 := toHomogeneous(pts2)
	nInliers := countInliers(inliers)

	results := make([]CheiralityResult, len(candidates))
	maxGood, maxIdx := -1, -1
	for i, c := range candidates {
		results[i] = RunCheirality(c.R, c.T, kp1, kp2, inliers, k, th2)
		if results[i].NGood > maxGood {
			maxGood = results[i].NGood
			maxIdx = i
		}
	}
	if maxIdx < 0 {
		slamlog.Global().Debug("dropping fundamental branch, no candidate motion triangulated any point")
		return nil, false
	}
	for i, res := range results {
		if i != maxIdx && float64(res.NGood) > noTieMaxGoodFactor*float64(maxGood) {
			slamlog.Global().Debugw("dropping fundamental branch, ambiguous winner", "best", maxGood, "runnerUp", res.NGood)
			return nil, false
		}
	}
	needed := math.Max(fGoodFraction*float64(nInliers), minTriangulated)
	if float64(maxGood) < needed {
		slamlog.Global().Debugw("dropping fundamental branch, too few triangulated points", "good", maxGood, "needed", needed)
		return nil, false
	}
	if results[maxIdx].ParallaxDeg < minParallaxDeg {
		slamlog.Global().Debugw("dropping fundamental branch, parallax too small", "parallaxDeg", results[maxIdx].ParallaxDeg)
		return nil, false
	}

	return &Result{
		R:                candidates[maxIdx].R,
		T:                candidates[maxIdx].T,
		Points3D:         results[maxIdx].Points3D,
		TriangulatedMask: results[maxIdx].Good,
	}, true
}

func reconstructFromHomography(h *mat.Dense, inliers []bool, k *mat.Dense, th2 float64, pts1, pts2 []r2.Point) (*Result, bool) {
	candidates, err := DecomposeHomography(h, k)
	if err != nil {
		slamlog.Global().Debugw("dropping homography branch, homography did not decompose", "err", err)
		return nil, false
	}

	kp1 := toHomogeneous(pts1)
	kp2 := toHomogeneous(pts2)
	nInliers := countInliers(inliers)

	results := make([]CheiralityResult, len(candidates))
	bestIdx, secondIdx := -1, -1
	for i, c := range candidates {
		results[i] = RunCheirality(c.R, c.T, kp1, kp2, inliers, k, th2)
		if bestIdx < 0 || results[i].NGood > results[bestIdx].NGood {
			secondIdx = bestIdx
			bestIdx = i
		} else if secondIdx < 0 || results[i].NGood > results[secondIdx].NGood {
			secondIdx = i
		}
	}
	if bestIdx < 0 {
		slamlog.Global().Debug("dropping homography branch, no candidate motion triangulated any point")
		return nil, false
	}
	bestGood := results[bestIdx].NGood
	secondGood := 0
	if secondIdx >= 0 {
		secondGood = results[secondIdx].NGood
	}

	if float64(bestGood) <= fGoodFraction*float64(nInliers) {
		slamlog.Global().Debugw("dropping homography branch, too few triangulated points", "good", bestGood, "inliers", nInliers)
		return nil, false
	}
	if float64(secondGood) >= hSecondBestFraction*float64(bestGood) {
		slamlog.Global().Debugw("dropping homography branch, ambiguous winner", "best", bestGood, "runnerUp", secondGood)
		return nil, false
	}
	if results[bestIdx].ParallaxDeg < minParallaxDeg {
		slamlog.Global().Debugw("dropping homography branch, parallax too small", "parallaxDeg", results[bestIdx].ParallaxDeg)
		return nil, false
	}
	if bestGood <= minTriangulated {
		slamlog.Global().Debugw("dropping homography branch, too few triangulated points", "good", bestGood, "minTriangulated", minTriangulated)
		return nil, false
	}

	return &Result{
		R:                candidates[bestIdx].R,
		T:                candidates[bestIdx].T,
		Points3D:         results[bestIdx].Points3D,
		TriangulatedMask: results[bestIdx].Good,
	}, true
}

func vecFromCol(t *mat.Dense) r3.Vector {
	return r3.Vector{X: t.At(0, 0), Y: t.At(1, 0), Z: t.At(2, 0)}
}

func negVec(v r3.Vector) r3.Vector {
	return r3.Vector{X: -v.X, Y: -v.Y, Z: -v.Z}
}
