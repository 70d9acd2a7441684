package layout

import "cave-projector/internal/mathutil"

// Display describes one physical wall as loaded from the room config.
type Display struct {
	Name         string
	OutputIndex  int
	Width        float64 // metres
	Height       float64 // metres
	RenderWidth  int     // pixels
	RenderHeight int     // pixels
}

// Wall is the derived, immutable geometry of one display in the room frame.
type Wall struct {
	Name         string
	OutputIndex  int
	Center       mathutil.Vec3
	Orientation  mathutil.Mat3
	Euler        mathutil.Vec3 // pitch, yaw, roll in degrees, convention yaw included
	Width        float64
	Height       float64
	RenderWidth  int
	RenderHeight int

	LowerLeft  mathutil.Vec3
	LowerRight mathutil.Vec3
	UpperLeft  mathutil.Vec3
}

// Right is the wall's local X axis.
func (w Wall) Right() mathutil.Vec3 { return w.Orientation.Col(0) }

// Up is the wall's local Y axis.
func (w Wall) Up() mathutil.Vec3 { return w.Orientation.Col(1) }

// Normal is the screen normal on the viewer side: −normalize(right × up),
// the same vector the projector derives from the corners.
func (w Wall) Normal() mathutil.Vec3 {
	return w.Right().Cross(w.Up()).Normalize().Neg().Canonical()
}

// Corners returns lower-left, lower-right and upper-left.
func (w Wall) Corners() (ll, lr, ul mathutil.Vec3) {
	return w.LowerLeft, w.LowerRight, w.UpperLeft
}

// UpperRight completes the rectangle.
func (w Wall) UpperRight() mathutil.Vec3 {
	return w.LowerRight.Add(w.UpperLeft.Sub(w.LowerLeft))
}

// Quaternion returns Orientation as (x, y, z, w).
func (w Wall) Quaternion() mathutil.Quat { return mathutil.Mat3ToQuat(w.Orientation) }

// Channel is the external output channel name the wall's image is sent to.
func (w Wall) Channel() string { return w.Name }

// Pose places the room in a consumer's world frame.
type Pose struct {
	Origin mathutil.Vec3
	Yaw    float64 // degrees about +Y
}

// Matrix returns the room-to-world transform.
func (p Pose) Matrix() mathutil.Mat4 {
	return mathutil.FromMat3Translation(mathutil.EulerDeg(0, p.Yaw, 0), p.Origin)
}

// Room is the output of Build.
type Room struct {
	Eye   mathutil.Vec3 // room-local
	Pose  Pose
	Walls []Wall
}

// Wall looks up a wall by name (case-insensitive).
func (r Room) Wall(name string) (Wall, bool) {
	key := normalizeName(name)
	for _, w := range r.Walls {
		if normalizeName(w.Name) == key {
			return w, true
		}
	}
	return Wall{}, false
}

// ToWorld maps a room-local point into the world frame.
func (r Room) ToWorld(p mathutil.Vec3) mathutil.Vec3 {
	return r.Pose.Matrix().MulPoint(p)
}

// WorldCorners returns w's corners in the world frame.
func (r Room) WorldCorners(w Wall) (ll, lr, ul mathutil.Vec3) {
	m := r.Pose.Matrix()
	return m.MulPoint(w.LowerLeft), m.MulPoint(w.LowerRight), m.MulPoint(w.UpperLeft)
}
