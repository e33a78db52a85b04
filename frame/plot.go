package frame

import (
	"image"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"
)

// PlotKeypoints renders a frame's undistorted keypoints as circles over the
// source image and, when withStereo is true, draws a connecting segment to
// each keypoint's matched right-image coordinate (skipping unmatched
// keypoints, where RightU is -1). This is a debugging aid, not part of the
// geometric core.
func PlotKeypoints(img *image.Gray, f *Frame, withStereo bool, outPath string) error {
	if img == nil {
		return errors.New("nil image")
	}
	w, h := img.Bounds().Max.X, img.Bounds().Max.Y

	dc := gg.NewContext(w, h)
	dc.DrawImage(img, 0, 0)

	dc.SetRGBA(0, 0, 1, 0.5)
	for _, kp := range f.Keypoints {
		dc.DrawCircle(kp.X, kp.Y, 3.0)
		dc.Fill()
	}

	if withStereo {
		dc.SetRGBA(1, 0, 0, 0.5)
		dc.SetLineWidth(1)
		for i, kp := range f.Keypoints {
			if f.RightU[i] < 0 {
				continue
			}
			dc.DrawLine(kp.X, kp.Y, f.RightU[i], kp.Y)
			dc.Stroke()
		}
	}

	return dc.SavePNG(outPath)
}
