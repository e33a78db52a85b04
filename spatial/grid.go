package spatial

import (
	"math"

	"go.viam.com/slamcore/slamlog"
)

// Cols and Rows fix the GridIndex dimensions, matching the source system's
// 64x48 default.
const (
	Cols = 64
	Rows = 48
)

// KeypointLocator answers where keypoint idx sits and at what pyramid
// level, so GridIndex.Query can filter a cell's contents without owning
// the keypoint array itself.
type KeypointLocator func(idx int) (x, y float64, level int)

// GridIndex is a fixed COLS x ROWS index over undistorted image
// coordinates. Each cell holds the indices of keypoints falling in it;
// insertion and range queries are O(1) amortized in the number of cells
// touched rather than O(N) over every keypoint.
type GridIndex struct {
	bounds   Bounds
	invCellW float64
	invCellH float64
	cells    [Cols][Rows][]int
}

// Bounds is the axis-aligned undistorted image extent the grid is built
// over; it mirrors calib.ImageBounds without importing calib, keeping
// spatial free of a dependency on the camera-calibration package.
type Bounds struct {
	MinX, MaxX, MinY, MaxY float64
}

// NewGridIndex builds an empty grid over the given bounds.
func NewGridIndex(bounds Bounds) *GridIndex {
	return &GridIndex{
		bounds:   bounds,
		invCellW: float64(Cols) / (bounds.MaxX - bounds.MinX),
		invCellH: float64(Rows) / (bounds.MaxY - bounds.MinY),
	}
}

func (g *GridIndex) cellFor(x, y float64) (cx, cy int, ok bool) {
	cx = int(math.Round((x - g.bounds.MinX) * g.invCellW))
	cy = int(math.Round((y - g.bounds.MinY) * g.invCellH))
	if cx < 0 || cx >= Cols || cy < 0 || cy >= Rows {
		return 0, 0, false
	}
	return cx, cy, true
}

// Insert places keypoint idx, at undistorted coordinate (x,y), into its
// cell. Points whose cell falls outside [0,Cols)x[0,Rows) are silently
// dropped, matching the source's OutOfRangeCoordinate handling.
func (g *GridIndex) Insert(idx int, x, y float64) {
	cx, cy, ok := g.cellFor(x, y)
	if !ok {
		slamlog.Global().Debugw("dropping keypoint outside grid bounds", "idx", idx, "x", x, "y", y)
		return
	}
	g.cells[cx][cy] = append(g.cells[cx][cy], idx)
}

// Query returns the indices of every keypoint within an axis-aligned
// window of half-width/height r around (x,y), optionally filtered to a
// pyramid level range. lvlMin/lvlMax < 0 disable that bound. The order of
// returned indices is unspecified.
func (g *GridIndex) Query(x, y, r float64, lvlMin, lvlMax int, locate KeypointLocator) []int {
	minCellX := int(math.Floor((x - g.bounds.MinX - r) * g.invCellW))
	if minCellX < 0 {
		minCellX = 0
	}
	maxCellX := int(math.Ceil((x - g.bounds.MinX + r) * g.invCellW))
	if maxCellX > Cols-1 {
		maxCellX = Cols - 1
	}
	if minCellX > maxCellX {
		return nil
	}

	minCellY := int(math.Floor((y - g.bounds.MinY - r) * g.invCellH))
	if minCellY < 0 {
		minCellY = 0
	}
	maxCellY := int(math.Ceil((y - g.bounds.MinY + r) * g.invCellH))
	if maxCellY > Rows-1 {
		maxCellY = Rows - 1
	}
	if minCellY > maxCellY {
		return nil
	}

	checkLevels := lvlMin > 0 || lvlMax >= 0

	var out []int
	for cx := minCellX; cx <= maxCellX; cx++ {
		for cy := minCellY; cy <= maxCellY; cy++ {
			for _, idx := range g.cells[cx][cy] {
				kx, ky, level := locate(idx)
				if checkLevels {
					if lvlMin > 0 && level < lvlMin {
						continue
					}
					if lvlMax >= 0 && level > lvlMax {
						continue
					}
				}
				if math.Abs(kx-x) < r && math.Abs(ky-y) < r {
					out = append(out, idx)
				}
			}
		}
	}
	return out
}
