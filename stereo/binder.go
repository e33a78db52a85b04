package stereo

// DepthImage exposes metric depth lookups at integer pixel coordinates,
// matching the depth-source collaborator's storage units to bf's unit
// system.
type DepthImage interface {
	DepthAt(u, v int) float64
}

// BindRGBDepth synthesizes a virtual stereo partner for an RGB-D frame: for
// each raw left keypoint at integer pixel (u,v), it looks up depth d and,
// if positive, stores depth[i]=d and right_u[i]=uUndist-bf/d. Keypoints
// without valid depth are left at right_u=depth=-1, mirroring a rejected
// stereo match.
func BindRGBDepth(rawKps []Keypoint, undistKps []Keypoint, depthImg DepthImage, bf float64) Result {
	res := Result{
		RightU: make([]float64, len(rawKps)),
		Depth:  make([]float64, len(rawKps)),
	}
	for i, raw := range rawKps {
		res.RightU[i] = -1
		res.Depth[i] = -1

		u := int(raw.X + 0.5)
		v := int(raw.Y + 0.5)
		d := depthImg.DepthAt(u, v)
		if d <= 0 {
			continue
		}
		res.Depth[i] = d
		res.RightU[i] = undistKps[i].X - bf/d
	}
	return res
}
