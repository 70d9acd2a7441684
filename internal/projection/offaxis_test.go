package projection

import (
	"errors"
	"math"
	"testing"

	"cave-projector/internal/mathutil"
)

const epsilon = 1e-12

var (
	screenLL = mathutil.Vec3{-1, 0, 1}
	screenLR = mathutil.Vec3{1, 0, 1}
	screenUL = mathutil.Vec3{-1, 2, 1}
)

func ndc(m mathutil.Mat4, p mathutil.Vec3) mathutil.Vec3 {
	c := m.MulVec4(p, 1)
	return mathutil.Vec3{c[0] / c[3], c[1] / c[3], c[2] / c[3]}
}

func matApproxEqual(a, b mathutil.Mat4, tol float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

func TestPerspectiveOffCenterLayout(t *testing.T) {
	m := PerspectiveOffCenter(-1, 3, -2, 4, 0.5, 10)
	want := mathutil.Mat4{
		2 * 0.5 / 4, 0, 2.0 / 4, 0,
		0, 2 * 0.5 / 6, 2.0 / 6, 0,
		0, 0, -10.5 / 9.5, -10.0 / 9.5,
		0, 0, -1, 0,
	}
	if !matApproxEqual(m, want, epsilon) {
		t.Errorf("PerspectiveOffCenter =\n%v\nwant\n%v", m, want)
	}
}

func TestPerspectiveOffCenterMapsCornerRays(t *testing.T) {
	tests := []Frustum{
		{-0.1, 0.1, -0.1, 0.1, 0.1, 100},
		{-0.3, 0.05, -0.02, 0.2, 0.1, 50},
		{0.1, 0.4, 0.2, 0.3, 0.5, 2},
		{-2, -1, -3, 5, 1, 1000},
	}
	for _, f := range tests {
		m := f.Matrix()
		corners := []struct {
			p      mathutil.Vec3
			nx, ny float64
		}{
			{mathutil.Vec3{f.Left, f.Bottom, -f.Near}, -1, -1},
			{mathutil.Vec3{f.Right, f.Bottom, -f.Near}, 1, -1},
			{mathutil.Vec3{f.Left, f.Top, -f.Near}, -1, 1},
			{mathutil.Vec3{f.Right, f.Top, -f.Near}, 1, 1},
		}
		for _, c := range corners {
			got := ndc(m, c.p)
			if math.Abs(got[0]-c.nx) > 1e-9 || math.Abs(got[1]-c.ny) > 1e-9 || math.Abs(got[2]+1) > 1e-9 {
				t.Errorf("frustum %+v: corner %v -> %v, want (%v,%v,-1)", f, c.p, got, c.nx, c.ny)
			}
		}
		// Far plane maps to +1.
		far := ndc(m, mathutil.Vec3{f.Left * f.Far / f.Near, f.Bottom * f.Far / f.Near, -f.Far})
		if math.Abs(far[2]-1) > 1e-9 {
			t.Errorf("frustum %+v: far depth = %v, want 1", f, far[2])
		}
	}
}

func TestComputeSymmetricScreen(t *testing.T) {
	frame, err := Compute(mathutil.Vec3{0, 1, 0}, screenLL, screenLR, screenUL, 0.1, 100)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	f := frame.Frustum
	if math.Abs(f.Left+f.Right) > epsilon || math.Abs(f.Bottom+f.Top) > epsilon {
		t.Errorf("frustum not centred: %+v", f)
	}
	if math.Abs(f.Top-0.1) > epsilon {
		t.Errorf("top = %v, want 0.1", f.Top)
	}
	if frame.Distance != 1 {
		t.Errorf("distance = %v, want 1", frame.Distance)
	}

	fov := 2 * math.Atan(f.Top/f.Near) * 180 / math.Pi
	if math.Abs(fov-frame.Frustum.VerticalFOV()) > 1e-9 {
		t.Errorf("VerticalFOV = %v, want %v", frame.Frustum.VerticalFOV(), fov)
	}
	want := Perspective(fov, 1, 0.1, 100)
	if !matApproxEqual(frame.Projection, want, 1e-12) {
		t.Errorf("projection =\n%v\nwant symmetric\n%v", frame.Projection, want)
	}

	wantView := mathutil.Mat4{
		1, 0, 0, 0,
		0, 1, 0, -1,
		0, 0, -1, 0,
		0, 0, 0, 1,
	}
	if !matApproxEqual(frame.View, wantView, epsilon) {
		t.Errorf("view =\n%v\nwant\n%v", frame.View, wantView)
	}
}

func TestComputeWallCornersFillViewport(t *testing.T) {
	eyes := []mathutil.Vec3{
		{0, 1, 0},
		{0.7, 1.9, -0.4},
		{-0.95, 0.05, 0.9},
		{3, -2, -5},
	}
	ur := screenLR.Add(screenUL.Sub(screenLL))
	for _, eye := range eyes {
		frame, err := Compute(eye, screenLL, screenLR, screenUL, 0.1, 100)
		if err != nil {
			t.Fatalf("eye %v: Compute() error = %v", eye, err)
		}
		vp := frame.ViewProjection()
		checks := []struct {
			p      mathutil.Vec3
			nx, ny float64
		}{
			{screenLL, -1, -1},
			{screenLR, 1, -1},
			{screenUL, -1, 1},
			{ur, 1, 1},
		}
		for _, c := range checks {
			got := ndc(vp, c.p)
			if math.Abs(got[0]-c.nx) > 1e-9 || math.Abs(got[1]-c.ny) > 1e-9 {
				t.Errorf("eye %v: corner %v -> ndc %v, want (%v,%v)", eye, c.p, got, c.nx, c.ny)
			}
		}
		if o := frame.View.MulPoint(eye); !o.ApproxEqual(mathutil.Vec3{}, 1e-12) {
			t.Errorf("eye %v: view maps eye to %v, want origin", eye, o)
		}
	}
}

func TestComputeIdempotent(t *testing.T) {
	eye := mathutil.Vec3{0.31, 1.47, -0.22}
	a, errA := Compute(eye, screenLL, screenLR, screenUL, 0.05, 250)
	b, errB := Compute(eye, screenLL, screenLR, screenUL, 0.05, 250)
	if errA != nil || errB != nil {
		t.Fatalf("Compute() errors = %v, %v", errA, errB)
	}
	if a.Projection != b.Projection || a.View != b.View {
		t.Error("Compute() is not bit-identical across calls")
	}
}

func TestComputeEyeBehindScreen(t *testing.T) {
	tests := []struct {
		name string
		eye  mathutil.Vec3
	}{
		{"behind", mathutil.Vec3{0, 1, 2}},
		{"on plane", mathutil.Vec3{0, 1, 1}},
		{"NaN", mathutil.Vec3{math.NaN(), 1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := Compute(tt.eye, screenLL, screenLR, screenUL, 0.1, 100)
			if !errors.Is(err, ErrInvalidEyePosition) {
				t.Fatalf("Compute() error = %v, want ErrInvalidEyePosition", err)
			}
			if frame.Projection != (mathutil.Mat4{}) {
				t.Error("Compute() returned a matrix alongside an error")
			}
		})
	}
}

func TestComputeDegenerateScreen(t *testing.T) {
	eye := mathutil.Vec3{0, 1, 0}
	tests := []struct {
		name       string
		ll, lr, ul mathutil.Vec3
	}{
		{"lr on ll", screenLL, screenLL, screenUL},
		{"ul on ll", screenLL, screenLR, screenLL},
		{"collinear", screenLL, screenLR, mathutil.Vec3{3, 0, 1}},
		{"all same", screenLL, screenLL, screenLL},
		{"inf corner", screenLL, mathutil.Vec3{math.Inf(1), 0, 1}, screenUL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(eye, tt.ll, tt.lr, tt.ul, 0.1, 100)
			if !errors.Is(err, ErrDegenerateGeometry) {
				t.Fatalf("Compute() error = %v, want ErrDegenerateGeometry", err)
			}
		})
	}
}

func TestComputeInvalidClipRange(t *testing.T) {
	eye := mathutil.Vec3{0, 1, 0}
	tests := []struct {
		name      string
		near, far float64
	}{
		{"zero near", 0, 100},
		{"negative near", -0.1, 100},
		{"far equals near", 1, 1},
		{"far below near", 10, 1},
		{"NaN near", math.NaN(), 100},
		{"inf far", 0.1, math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(eye, screenLL, screenLR, screenUL, tt.near, tt.far)
			if !errors.Is(err, ErrInvalidClipRange) {
				t.Fatalf("Compute() error = %v, want ErrInvalidClipRange", err)
			}
		})
	}
}

type quad struct{ ll, lr, ul mathutil.Vec3 }

func (q quad) Corners() (mathutil.Vec3, mathutil.Vec3, mathutil.Vec3) { return q.ll, q.lr, q.ul }

func TestComputeScreen(t *testing.T) {
	eye := mathutil.Vec3{0.2, 1.1, 0.1}
	a, err := ComputeScreen(eye, quad{screenLL, screenLR, screenUL}, 0.1, 100)
	if err != nil {
		t.Fatalf("ComputeScreen() error = %v", err)
	}
	b, _ := Compute(eye, screenLL, screenLR, screenUL, 0.1, 100)
	if a.Projection != b.Projection || a.View != b.View {
		t.Error("ComputeScreen() differs from Compute()")
	}
}
