package calib

// Distortion holds plumb-bob (Brown-Conrady) lens distortion coefficients:
// k1, k2, k3 are radial terms, p1, p2 are tangential terms.
type Distortion struct {
	K1 float64 `json:"k1"`
	K2 float64 `json:"k2"`
	P1 float64 `json:"p1"`
	P2 float64 `json:"p2"`
	K3 float64 `json:"k3"`
}

// IsZero reports whether every coefficient is zero, in which case
// undistortion is the identity transform.
func (d *Distortion) IsZero() bool {
	if d == nil {
		return true
	}
	return d.K1 == 0 && d.K2 == 0 && d.P1 == 0 && d.P2 == 0 && d.K3 == 0
}

// forwardDistort applies the forward plumb-bob model to a normalized
// undistorted coordinate (xu, yu), returning the normalized distorted
// coordinate it would produce.
func (d *Distortion) forwardDistort(xu, yu float64) (float64, float64) {
	r2 := xu*xu + yu*yu
	r4 := r2 * r2
	r6 := r4 * r2

	radial := 1.0 + d.K1*r2 + d.K2*r4 + d.K3*r6
	tanX := 2.0*d.P1*xu*yu + d.P2*(r2+2.0*xu*xu)
	tanY := 2.0*d.P2*xu*yu + d.P1*(r2+2.0*yu*yu)

	return xu*radial + tanX, yu*radial + tanY
}

// undistortNormalized solves the forward plumb-bob model for the
// undistorted normalized coordinate that produces (xd, yd), via
// Newton-Raphson iteration on the 2x2 Jacobian of forwardDistort.
func (d *Distortion) undistortNormalized(xd, yd float64) (float64, float64) {
	if d.IsZero() {
		return xd, yd
	}

	const maxIterations = 20
	const tolerance = 1e-10

	xu, yu := xd, yd
	for i := 0; i < maxIterations; i++ {
		r2 := xu*xu + yu*yu
		r4 := r2 * r2

		radial := 1.0 + d.K1*r2 + d.K2*r4 + d.K3*r2*r4
		tanX := 2.0*d.P1*xu*yu + d.P2*(r2+2.0*xu*xu)
		tanY := 2.0*d.P2*xu*yu + d.P1*(r2+2.0*yu*yu)

		xdEst := xu*radial + tanX
		ydEst := yu*radial + tanY

		errX := xdEst - xd
		errY := ydEst - yd
		if errX*errX+errY*errY < tolerance*tolerance {
			break
		}

		dRadDx := 2.0 * xu * (d.K1 + 2.0*d.K2*r2 + 3.0*d.K3*r4)
		dRadDy := 2.0 * yu * (d.K1 + 2.0*d.K2*r2 + 3.0*d.K3*r4)

		dxdDxu := radial + xu*dRadDx + 2.0*d.P1*yu + d.P2*(2.0*xu+4.0*xu)
		dxdDyu := xu*dRadDy + 2.0*d.P1*xu + d.P2*2.0*yu
		dydDxu := yu*dRadDx + 2.0*d.P2*yu + d.P1*2.0*xu
		dydDyu := radial + yu*dRadDy + 2.0*d.P2*xu + d.P1*(2.0*yu+4.0*yu)

		det := dxdDxu*dydDyu - dxdDyu*dydDxu
		if det == 0 {
			break
		}

		xu -= (dydDyu*errX - dxdDyu*errY) / det
		yu -= (-dydDxu*errX + dxdDxu*errY) / det
	}

	return xu, yu
}
