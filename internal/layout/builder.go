// Package layout derives wall geometry for a CAVE from named display
// descriptors.
//
// Walls are width×height rectangles facing the room interior. The distance
// of a vertical wall from the room centre comes from the perpendicular
// wall's width: front/back sit at ±side/2 on Z, left/right at ±front/2 on X.
package layout

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"cave-projector/internal/logging"
	"cave-projector/internal/mathutil"
)

// ErrConfiguration marks invalid room input. Build wraps it with the
// offending display.
var ErrConfiguration = errors.New("layout: invalid configuration")

// ConventionYaw is composed into every wall's rotation. It flips the quad's
// forward axis to match the camera-facing convention; changing it turns
// every wall around.
const ConventionYaw = 180.0

// Wall names recognised by the placement policy.
const (
	Front   = "front"
	Back    = "back"
	Left    = "left"
	Right   = "right"
	Floor   = "floor"
	Ceiling = "ceiling"
)

// Options control Build.
type Options struct {
	// Strict rejects unknown wall names. When false they are placed at
	// the origin with only ConventionYaw applied.
	Strict bool
	Pose   Pose
}

// placement is the position and base rotation of a named wall before the
// convention yaw.
type placement struct {
	pos   mathutil.Vec3
	pitch float64
	yaw   float64
	known bool
}

// Build derives the geometry of every display. Any invalid display fails
// the whole room; no partial wall set is returned.
func Build(eye mathutil.Vec3, displays []Display, opts Options) (Room, error) {
	if len(displays) == 0 {
		return Room{}, fmt.Errorf("%w: no displays", ErrConfiguration)
	}
	if !eye.IsFinite() {
		return Room{}, fmt.Errorf("%w: eye position %v is not finite", ErrConfiguration, eye)
	}

	seen := make(map[string]bool, len(displays))
	for _, d := range displays {
		if err := validate(d); err != nil {
			return Room{}, err
		}
		key := normalizeName(d.Name)
		if seen[key] {
			return Room{}, fmt.Errorf("%w: duplicate wall %q", ErrConfiguration, d.Name)
		}
		seen[key] = true
	}

	frontWidth, hasFront := widthOf(displays, Front, Back)
	sideWidth, hasSide := widthOf(displays, Left, Right)

	poseM := opts.Pose.Matrix()
	toRoom := poseM.RigidInverse()

	walls := make([]Wall, 0, len(displays))
	for _, d := range displays {
		fw, sw := frontWidth, sideWidth
		if !hasFront {
			fw = d.Width
		}
		if !hasSide {
			sw = d.Width
		}

		p := place(normalizeName(d.Name), d, fw, sw)
		if !p.known {
			if opts.Strict {
				return Room{}, fmt.Errorf("%w: unknown wall name %q", ErrConfiguration, d.Name)
			}
			logging.Logger().Warn("layout: unknown wall name, placing at origin", "name", d.Name)
		}

		euler := mathutil.Vec3{p.pitch, mathutil.WrapDegrees(p.yaw + ConventionYaw), 0}.Canonical()
		rot := mathutil.EulerDeg(euler[0], euler[1], euler[2]).Canonical()

		w := Wall{
			Name:         d.Name,
			OutputIndex:  d.OutputIndex,
			Center:       p.pos.Canonical(),
			Orientation:  rot,
			Euler:        euler,
			Width:        d.Width,
			Height:       d.Height,
			RenderWidth:  d.RenderWidth,
			RenderHeight: d.RenderHeight,
		}

		// Corners are taken in world space and mapped back through the room
		// pose, so they are room-local whatever the room's placement.
		worldCenter := poseM.MulPoint(w.Center)
		worldRot := mathutil.Mat3Mul(mathutil.EulerDeg(0, opts.Pose.Yaw, 0), rot)
		halfW := worldRot.Col(0).Scale(d.Width / 2)
		halfH := worldRot.Col(1).Scale(d.Height / 2)

		w.LowerLeft = toRoom.MulPoint(worldCenter.Sub(halfW).Sub(halfH)).Canonical()
		w.LowerRight = toRoom.MulPoint(worldCenter.Add(halfW).Sub(halfH)).Canonical()
		w.UpperLeft = toRoom.MulPoint(worldCenter.Sub(halfW).Add(halfH)).Canonical()

		logging.Logger().Debug("layout: wall placed",
			"name", w.Name, "center", w.Center, "yaw", euler[1], "pitch", euler[0])
		walls = append(walls, w)
	}

	return Room{Eye: eye, Pose: opts.Pose, Walls: walls}, nil
}

func place(name string, d Display, frontWidth, sideWidth float64) placement {
	switch name {
	case Front:
		return placement{pos: mathutil.Vec3{0, 0, sideWidth / 2}, yaw: 180, known: true}
	case Back:
		return placement{pos: mathutil.Vec3{0, 0, -sideWidth / 2}, yaw: 0, known: true}
	case Left:
		return placement{pos: mathutil.Vec3{-frontWidth / 2, 0, 0}, yaw: 90, known: true}
	case Right:
		return placement{pos: mathutil.Vec3{frontWidth / 2, 0, 0}, yaw: -90, known: true}
	case Floor:
		return placement{pos: mathutil.Vec3{0, -d.Height / 2, 0}, pitch: 90, known: true}
	case Ceiling:
		return placement{pos: mathutil.Vec3{0, d.Height / 2, 0}, pitch: -90, known: true}
	}
	return placement{}
}

func validate(d Display) error {
	name := d.Name
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: display with empty name", ErrConfiguration)
	}
	if !(d.Width > 0) || math.IsInf(d.Width, 0) {
		return fmt.Errorf("%w: wall %q: width %v must be positive", ErrConfiguration, name, d.Width)
	}
	if !(d.Height > 0) || math.IsInf(d.Height, 0) {
		return fmt.Errorf("%w: wall %q: height %v must be positive", ErrConfiguration, name, d.Height)
	}
	if d.RenderWidth <= 0 || d.RenderHeight <= 0 {
		return fmt.Errorf("%w: wall %q: render size %dx%d must be positive",
			ErrConfiguration, name, d.RenderWidth, d.RenderHeight)
	}
	return nil
}

// widthOf returns the width of the first named wall present, in order.
func widthOf(displays []Display, names ...string) (float64, bool) {
	for _, n := range names {
		for _, d := range displays {
			if normalizeName(d.Name) == n {
				return d.Width, true
			}
		}
	}
	return 0, false
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
