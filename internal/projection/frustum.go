package projection

import (
	"math"

	"cave-projector/internal/mathutil"
)

// Frustum is the near-plane window of an asymmetric perspective frustum.
type Frustum struct {
	Left, Right, Bottom, Top float64
	Near, Far                float64
}

// Matrix returns PerspectiveOffCenter for the frustum.
func (f Frustum) Matrix() mathutil.Mat4 {
	return PerspectiveOffCenter(f.Left, f.Right, f.Bottom, f.Top, f.Near, f.Far)
}

// VerticalFOV is the full vertical field of view in degrees.
func (f Frustum) VerticalFOV() float64 {
	return (math.Atan(f.Top/f.Near) - math.Atan(f.Bottom/f.Near)) * 180 / math.Pi
}

// PerspectiveOffCenter builds the OpenGL-style off-center projection,
// row-major:
//
//	x 0 a 0
//	0 y b 0
//	0 0 c d
//	0 0 e 0
func PerspectiveOffCenter(left, right, bottom, top, near, far float64) mathutil.Mat4 {
	x := 2 * near / (right - left)
	y := 2 * near / (top - bottom)
	a := (right + left) / (right - left)
	b := (top + bottom) / (top - bottom)
	c := -(far + near) / (far - near)
	d := -(2 * far * near) / (far - near)
	e := -1.0

	return mathutil.Mat4{
		x, 0, a, 0,
		0, y, b, 0,
		0, 0, c, d,
		0, 0, e, 0,
	}
}

// Perspective is the symmetric special case. fovY is the full vertical
// field of view in degrees, aspect = width/height.
func Perspective(fovY, aspect, near, far float64) mathutil.Mat4 {
	top := near * math.Tan(mathutil.Deg2Rad(fovY/2))
	right := top * aspect
	return PerspectiveOffCenter(-right, right, -top, top, near, far)
}
