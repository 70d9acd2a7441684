package mathutil

import "math"

func rotX(c, s float64) Mat3 {
	return Mat3{
		1, 0, 0,
		0, c, -s,
		0, s, c,
	}
}

func rotY(c, s float64) Mat3 {
	return Mat3{
		c, 0, s,
		0, 1, 0,
		-s, 0, c,
	}
}

func rotZ(c, s float64) Mat3 {
	return Mat3{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	}
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(d float64) float64 {
	return d * math.Pi / 180
}

// SinCosDeg returns cos and sin of an angle in degrees. Quarter turns are
// exact so axis-aligned rotations carry no 1e-16 residue.
func SinCosDeg(deg float64) (c, s float64) {
	w := WrapDegrees(deg)
	switch w {
	case 0:
		return 1, 0
	case 90:
		return 0, 1
	case 180:
		return -1, 0
	case 270:
		return 0, -1
	}
	r := Deg2Rad(w)
	return math.Cos(r), math.Sin(r)
}

// EulerDeg composes a rotation from pitch (X), yaw (Y) and roll (Z) in
// degrees, applied roll first, then pitch, then yaw: Ry × Rx × Rz.
func EulerDeg(pitch, yaw, roll float64) Mat3 {
	cx, sx := SinCosDeg(pitch)
	cy, sy := SinCosDeg(yaw)
	cz, sz := SinCosDeg(roll)
	return Mat3Mul(Mat3Mul(rotY(cy, sy), rotX(cx, sx)), rotZ(cz, sz))
}
