package mathutil

import "math"

// Mat4 is a 4×4 matrix stored row-major, m[row*4+col]. Projection and view
// matrices use the OpenGL column-vector convention: clip = P × V × p.
type Mat4 [16]float64

// Mat4Mul returns a × b.
func Mat4Mul(a, b Mat4) Mat4 {
	var m Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m[r*4+c] = a[r*4+0]*b[0*4+c] + a[r*4+1]*b[1*4+c] +
				a[r*4+2]*b[2*4+c] + a[r*4+3]*b[3*4+c]
		}
	}
	return m
}

// Translation returns the affine matrix that moves points by t.
func Translation(t Vec3) Mat4 {
	return Mat4{
		1, 0, 0, t[0],
		0, 1, 0, t[1],
		0, 0, 1, t[2],
		0, 0, 0, 1,
	}
}

// MulPoint transforms a 3D point (w=1) by the 4×4 matrix, ignoring the
// bottom row. Only meaningful for affine matrices.
func (m Mat4) MulPoint(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2] + m[3],
		m[4]*v[0] + m[5]*v[1] + m[6]*v[2] + m[7],
		m[8]*v[0] + m[9]*v[1] + m[10]*v[2] + m[11],
	}
}

// MulVec4 returns M × (v, w) as homogeneous coordinates.
func (m Mat4) MulVec4(v Vec3, w float64) [4]float64 {
	return [4]float64{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2] + m[3]*w,
		m[4]*v[0] + m[5]*v[1] + m[6]*v[2] + m[7]*w,
		m[8]*v[0] + m[9]*v[1] + m[10]*v[2] + m[11]*w,
		m[12]*v[0] + m[13]*v[1] + m[14]*v[2] + m[15]*w,
	}
}

// FromMat3Translation builds a 4×4 affine matrix from a 3×3 rotation and translation.
func FromMat3Translation(r Mat3, t Vec3) Mat4 {
	return Mat4{
		r[0], r[1], r[2], t[0],
		r[3], r[4], r[5], t[1],
		r[6], r[7], r[8], t[2],
		0, 0, 0, 1,
	}
}

// RigidInverse inverts an affine matrix whose upper 3×3 is a rotation:
// inv([R t]) = [Rᵀ -Rᵀt].
func (m Mat4) RigidInverse() Mat4 {
	rt := Mat3{m[0], m[1], m[2], m[4], m[5], m[6], m[8], m[9], m[10]}.Transpose()
	t := rt.MulVec3(Vec3{m[3], m[7], m[11]}).Neg()
	return FromMat3Translation(rt, t)
}

// IsFinite reports whether every element is a finite number.
func (m Mat4) IsFinite() bool {
	for _, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
