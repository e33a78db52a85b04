package spatial

import "github.com/golang/geo/r3"

// Pose is a camera pose Tcw in SE(3): world-to-camera rotation and
// translation, plus their derived camera-to-world counterparts (Rwc, Ow)
// that Frame and Cheirality need on every frustum test and unprojection.
type Pose struct {
	Rcw *RotationMatrix
	Tcw r3.Vector
	Rwc *RotationMatrix
	Ow  r3.Vector // camera center in world coordinates: -Rcw^T * tcw
}

// NewPose derives Rwc and Ow from a world-to-camera rotation and
// translation, per Frame.set_pose.
func NewPose(rcw *RotationMatrix, tcw r3.Vector) *Pose {
	rwc := rcw.Transpose()
	ow := rwc.Apply(tcw)
	ow = r3.Vector{X: -ow.X, Y: -ow.Y, Z: -ow.Z}
	return &Pose{Rcw: rcw, Tcw: tcw, Rwc: rwc, Ow: ow}
}

// ToCamera transforms a world-frame point into the camera frame:
// Pc = Rcw*Pw + tcw.
func (p *Pose) ToCamera(pw r3.Vector) r3.Vector {
	pc := p.Rcw.Apply(pw)
	return r3.Vector{X: pc.X + p.Tcw.X, Y: pc.Y + p.Tcw.Y, Z: pc.Z + p.Tcw.Z}
}

// ToWorld transforms a camera-frame point into the world frame:
// Pw = Rwc*Pc + Ow.
func (p *Pose) ToWorld(pc r3.Vector) r3.Vector {
	pw := p.Rwc.Apply(pc)
	return r3.Vector{X: pw.X + p.Ow.X, Y: pw.Y + p.Ow.Y, Z: pw.Z + p.Ow.Z}
}
