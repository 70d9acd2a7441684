// Package plan draws a top-down floor plan of a room: walls, eye position
// and the horizontal extent of each vertical wall's frustum.
package plan

import (
	"fmt"
	"math"

	"cave-projector/internal/layout"
	"cave-projector/internal/mathutil"
	"cave-projector/internal/scene"

	"github.com/gogpu/gg"
)

const (
	margin    = 0.12 // fraction of the view left around the room
	gridStep  = 1.0  // metres
	wallWidth = 6
	eyeRadius = 6
)

// view maps room X/Z to pixels, X to the right and +Z up the page.
type view struct {
	minX, minZ float64
	scale      float64
	size       float64
}

func newView(room layout.Room, eye mathutil.Vec3, size int) view {
	minX, maxX := eye[0], eye[0]
	minZ, maxZ := eye[2], eye[2]
	for _, w := range room.Walls {
		for _, p := range []mathutil.Vec3{w.LowerLeft, w.LowerRight, w.UpperLeft, w.UpperRight()} {
			minX, maxX = math.Min(minX, p[0]), math.Max(maxX, p[0])
			minZ, maxZ = math.Min(minZ, p[2]), math.Max(maxZ, p[2])
		}
	}
	span := math.Max(math.Max(maxX-minX, maxZ-minZ), 1)
	pad := span * margin
	span += 2 * pad
	cx, cz := (minX+maxX)/2, (minZ+maxZ)/2
	return view{
		minX:  cx - span/2,
		minZ:  cz - span/2,
		scale: float64(size) / span,
		size:  float64(size),
	}
}

// point returns the pixel position of room point p.
func (v view) point(p mathutil.Vec3) (x, y float64) {
	return (p[0] - v.minX) * v.scale, v.size - (p[2]-v.minZ)*v.scale
}

// Draw renders the plan onto a new size x size context. The caller owns
// the context and should Close it.
func Draw(room layout.Room, eye mathutil.Vec3, size int) (*gg.Context, error) {
	if size <= 0 {
		return nil, fmt.Errorf("plan: invalid size %d", size)
	}
	v := newView(room, eye, size)
	dc := gg.NewContext(size, size)
	dc.ClearWithColor(gg.White)

	if err := drawPlan(dc, v, room, eye); err != nil {
		dc.Close()
		return nil, err
	}
	if err := dc.FlushGPU(); err != nil {
		dc.Close()
		return nil, fmt.Errorf("plan: flush: %w", err)
	}
	return dc, nil
}

func drawPlan(dc *gg.Context, v view, room layout.Room, eye mathutil.Vec3) error {
	if err := drawGrid(dc, v); err != nil {
		return err
	}

	// Floor and ceiling footprints first, dashed.
	for _, w := range room.Walls {
		if !isHorizontal(w) {
			continue
		}
		dc.SetColor(scene.ColorFor(w.Name))
		dc.SetStroke(gg.DashedStroke(8, 6).WithWidth(2))
		corners := []mathutil.Vec3{w.LowerLeft, w.LowerRight, w.UpperRight(), w.UpperLeft}
		for i, p := range corners {
			x, y := v.point(p)
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.ClosePath()
		if err := dc.Stroke(); err != nil {
			return fmt.Errorf("plan: %s footprint: %w", w.Name, err)
		}
	}

	ex, ey := v.point(eye)

	// Frustum edges to each vertical wall's lower corners.
	dc.SetRGB(0.55, 0.55, 0.6)
	dc.SetStroke(solid(1))
	for _, w := range room.Walls {
		if isHorizontal(w) {
			continue
		}
		for _, p := range []mathutil.Vec3{w.LowerLeft, w.LowerRight} {
			x, y := v.point(p)
			dc.DrawLine(ex, ey, x, y)
		}
	}
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("plan: frustum: %w", err)
	}

	for _, w := range room.Walls {
		if isHorizontal(w) {
			continue
		}
		dc.SetColor(scene.ColorFor(w.Name))
		dc.SetStroke(solid(wallWidth))
		x0, y0 := v.point(w.LowerLeft)
		x1, y1 := v.point(w.LowerRight)
		dc.DrawLine(x0, y0, x1, y1)
		if err := dc.Stroke(); err != nil {
			return fmt.Errorf("plan: wall %s: %w", w.Name, err)
		}

		// Short tick along the inward normal.
		mid := w.LowerLeft.Add(w.LowerRight).Scale(0.5)
		tip := mid.Add(w.Normal().Scale(0.25))
		mx, my := v.point(mid)
		tx, ty := v.point(tip)
		dc.SetStroke(solid(2))
		dc.DrawLine(mx, my, tx, ty)
		if err := dc.Stroke(); err != nil {
			return fmt.Errorf("plan: wall %s: %w", w.Name, err)
		}
	}

	dc.SetRGB(0.1, 0.1, 0.1)
	dc.DrawCircle(ex, ey, eyeRadius)
	if err := dc.Fill(); err != nil {
		return fmt.Errorf("plan: eye: %w", err)
	}
	return nil
}

// Save draws the plan and writes it to path as PNG.
func Save(path string, room layout.Room, eye mathutil.Vec3, size int) error {
	dc, err := Draw(room, eye, size)
	if err != nil {
		return err
	}
	defer dc.Close()
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("plan: save %s: %w", path, err)
	}
	return nil
}

func drawGrid(dc *gg.Context, v view) error {
	dc.SetRGB(0.9, 0.9, 0.92)
	dc.SetStroke(solid(1))
	span := v.size / v.scale
	for g := math.Ceil(v.minX/gridStep) * gridStep; g <= v.minX+span; g += gridStep {
		x, _ := v.point(mathutil.Vec3{g, 0, 0})
		dc.DrawLine(x, 0, x, v.size)
	}
	for g := math.Ceil(v.minZ/gridStep) * gridStep; g <= v.minZ+span; g += gridStep {
		_, y := v.point(mathutil.Vec3{0, 0, g})
		dc.DrawLine(0, y, v.size, y)
	}
	if err := dc.Stroke(); err != nil {
		return fmt.Errorf("plan: grid: %w", err)
	}
	return nil
}

// solid returns an undashed stroke. A Stroke set with SetStroke wins over
// SetLineWidth, so widths are always set through it.
func solid(width float64) gg.Stroke {
	return gg.DefaultStroke().WithWidth(width)
}

// isHorizontal reports whether w lies in a horizontal plane (floor or
// ceiling) rather than standing upright.
func isHorizontal(w layout.Wall) bool {
	return math.Abs(w.Normal()[1]) > 0.5
}
