// Package projection computes the generalized off-axis perspective
// projection for a flat screen given by three corners and an eye point.
//
// Compute is a pure function: it holds no state between frames and never
// returns a matrix containing NaN or Inf.
package projection

import (
	"errors"
	"fmt"
	"math"

	"cave-projector/internal/mathutil"
)

var (
	// ErrInvalidClipRange is returned when near <= 0 or far <= near.
	ErrInvalidClipRange = errors.New("projection: invalid clip range")
	// ErrDegenerateGeometry is returned for coincident or collinear corners.
	ErrDegenerateGeometry = errors.New("projection: degenerate screen geometry")
	// ErrInvalidEyePosition is returned when the eye is on or behind the
	// screen plane.
	ErrInvalidEyePosition = errors.New("projection: eye not in front of screen")
)

// Screen is anything that can hand over its reference corners.
type Screen interface {
	Corners() (lowerLeft, lowerRight, upperLeft mathutil.Vec3)
}

// Basis is the screen's orthonormal right/up/normal frame. Normal points
// toward the viewer.
type Basis struct {
	Right, Up, Normal mathutil.Vec3
}

// Frame is the per-frame output for one wall.
type Frame struct {
	Projection mathutil.Mat4
	View       mathutil.Mat4

	Frustum  Frustum
	Basis    Basis
	Distance float64 // perpendicular eye-to-screen distance
}

// ViewProjection returns Projection × View.
func (f Frame) ViewProjection() mathutil.Mat4 {
	return mathutil.Mat4Mul(f.Projection, f.View)
}

// ComputeScreen is Compute with corners taken from s.
func ComputeScreen(eye mathutil.Vec3, s Screen, near, far float64) (Frame, error) {
	ll, lr, ul := s.Corners()
	return Compute(eye, ll, lr, ul, near, far)
}

// Compute derives the projection and view matrices that make an image
// rendered from eye line up with the screen spanned by lowerLeft,
// lowerRight and upperLeft.
func Compute(eye, lowerLeft, lowerRight, upperLeft mathutil.Vec3, near, far float64) (Frame, error) {
	if !(near > 0) || !(far > near) || math.IsInf(far, 0) {
		return Frame{}, fmt.Errorf("%w: near=%v far=%v", ErrInvalidClipRange, near, far)
	}
	if !lowerLeft.IsFinite() || !lowerRight.IsFinite() || !upperLeft.IsFinite() {
		return Frame{}, fmt.Errorf("%w: non-finite corner", ErrDegenerateGeometry)
	}
	if !eye.IsFinite() {
		return Frame{}, fmt.Errorf("%w: non-finite eye %v", ErrInvalidEyePosition, eye)
	}

	basis, err := screenBasis(lowerLeft, lowerRight, upperLeft)
	if err != nil {
		return Frame{}, err
	}
	vr, vu, vn := basis.Right, basis.Up, basis.Normal

	va := lowerLeft.Sub(eye)
	vb := lowerRight.Sub(eye)
	vc := upperLeft.Sub(eye)

	d := -va.Dot(vn)
	if !(d > 0) {
		return Frame{}, fmt.Errorf("%w: distance %v", ErrInvalidEyePosition, d)
	}

	k := near / d
	f := Frustum{
		Left:   vr.Dot(va) * k,
		Right:  vr.Dot(vb) * k,
		Bottom: vu.Dot(va) * k,
		Top:    vu.Dot(vc) * k,
		Near:   near,
		Far:    far,
	}

	frame := Frame{
		Projection: f.Matrix(),
		View:       ViewMatrix(basis, eye),
		Frustum:    f,
		Basis:      basis,
		Distance:   d,
	}
	// A screen seen almost edge-on can still overflow; never hand that out.
	if !frame.Projection.IsFinite() || !frame.View.IsFinite() {
		return Frame{}, fmt.Errorf("%w: non-finite matrix at distance %v", ErrInvalidEyePosition, d)
	}
	return frame, nil
}

// ViewMatrix rotates world space into the screen basis and moves the eye to
// the origin: transpose(cols(vr, vu, vn)) × T(−eye).
func ViewMatrix(b Basis, eye mathutil.Vec3) mathutil.Mat4 {
	rot := mathutil.Mat3FromCols(b.Right, b.Up, b.Normal).Transpose()
	return mathutil.Mat4Mul(mathutil.FromMat3Translation(rot, mathutil.Vec3{}), mathutil.Translation(eye.Neg()))
}

func screenBasis(ll, lr, ul mathutil.Vec3) (Basis, error) {
	edgeR := lr.Sub(ll)
	edgeU := ul.Sub(ll)
	if edgeR.Len() < mathutil.Epsilon || edgeU.Len() < mathutil.Epsilon {
		return Basis{}, fmt.Errorf("%w: coincident corners", ErrDegenerateGeometry)
	}
	vr := edgeR.Normalize()
	vu := edgeU.Normalize()
	n := vr.Cross(vu)
	if n.Len() < mathutil.Epsilon {
		return Basis{}, fmt.Errorf("%w: collinear edges", ErrDegenerateGeometry)
	}
	return Basis{Right: vr, Up: vu, Normal: n.Normalize().Neg()}, nil
}
