// Command slamcorecheck loads a calibration file, synthesizes a planar
// two-view scene, and runs the monocular initializer against it end to end.
// It exists to give a maintainer one binary to run by hand after touching
// calib, geometry, ransac, or initmap.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/golang/geo/r2"

	"go.viam.com/slamcore/calib"
	"go.viam.com/slamcore/initmap"
	"go.viam.com/slamcore/ransac"
	"go.viam.com/slamcore/slamlog"
	"go.viam.com/slamcore/utils"
)

func main() {
	calibPath := flag.String("calib", "", "path to calibration JSON")
	ransacPath := flag.String("ransac-config", "", "optional path to a RANSAC tunables JSON file")
	numPoints := flag.Int("points", 150, "number of synthetic scene points")
	seed := flag.Int64("seed", 42, "RNG seed for the synthetic scene")
	flag.Parse()

	logger := slamlog.NewLogger("slamcorecheck")

	if *calibPath == "" {
		logger.Error("missing required -calib flag")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := calib.LoadCalibConfig(*calibPath)
	if err != nil {
		logger.Errorw("failed to load calibration", "error", err)
		os.Exit(1)
	}
	intr, err := cfg.Intrinsics()
	if err != nil {
		logger.Errorw("invalid intrinsics", "error", err)
		os.Exit(1)
	}
	k := intr.CameraMatrix()

	maxIters, sigma := 200, 1.0
	if *ransacPath != "" {
		rcfg, err := ransac.LoadRansacConfig(*ransacPath)
		if err != nil {
			logger.Errorw("failed to load ransac config", "error", err)
			os.Exit(1)
		}
		maxIters, sigma = rcfg.MaxIters, rcfg.Sigma
	}

	thetaDeg := 5.0
	theta := utils.DegToRad(thetaDeg)
	tx := 0.5

	rng := rand.New(rand.NewSource(*seed))
	n := *numPoints
	refKps := make([]r2.Point, n)
	curKps := make([]r2.Point, n)
	matches := make(initmap.MatchList, n)
	for i := 0; i < n; i++ {
		x := rng.Float64()*4 - 2
		y := rng.Float64()*4 - 2
		z := 5.0
		p1 := intr.Project(x, y, z)
		refKps[i] = r2.Point{X: p1.X, Y: p1.Y}

		x2 := math.Cos(theta)*x + math.Sin(theta)*z + tx
		z2 := -math.Sin(theta)*x + math.Cos(theta)*z
		if z2 <= 0 {
			z2 = z
		}
		p2 := intr.Project(x2, y, z2)
		curKps[i] = r2.Point{X: p2.X, Y: p2.Y}
		matches[i] = initmap.Match{Idx1: i, Idx2: i}
	}

	init := initmap.NewInitializer(refKps, sigma, maxIters, uint64(*seed))
	res, ok := init.Initialize(curKps, matches, k)
	if !ok {
		fmt.Println("FAIL: initializer did not converge on the synthetic scene")
		os.Exit(1)
	}

	fmt.Printf("PASS: recovered %d triangulated points\n", len(res.Points3D))
	fmt.Printf("recovered translation direction: (%.4f, %.4f, %.4f)\n", res.T.X, res.T.Y, res.T.Z)
}
