// Package scene builds the reference geometry the preview renderer draws
// through each wall. It is sized from the room so every wall sees part of it.
package scene

import (
	"image/color"
	"math"
	"strings"

	"cave-projector/internal/layout"
	"cave-projector/internal/mathutil"
)

// Triangle indexes three vertices of its mesh.
type Triangle struct {
	V        [3]int
	UV       [3][2]float64
	Color    color.NRGBA
	Textured bool // sample the scene texture instead of Color
}

// Mesh is an indexed triangle list in room coordinates.
type Mesh struct {
	Name  string
	Verts []mathutil.Vec3
	Tris  []Triangle
}

// Scene is a flat list of meshes.
type Scene struct {
	Meshes []Mesh
}

// TriangleCount returns the total number of triangles.
func (s Scene) TriangleCount() int {
	n := 0
	for _, m := range s.Meshes {
		n += len(m.Tris)
	}
	return n
}

// Transform returns a copy of s with every vertex mapped through m.
func (s Scene) Transform(m mathutil.Mat4) Scene {
	out := Scene{Meshes: make([]Mesh, len(s.Meshes))}
	for i, mesh := range s.Meshes {
		verts := make([]mathutil.Vec3, len(mesh.Verts))
		for j, v := range mesh.Verts {
			verts[j] = m.MulPoint(v)
		}
		out.Meshes[i] = Mesh{Name: mesh.Name, Verts: verts, Tris: mesh.Tris}
	}
	return out
}

// Wall colours used for cubes and the floor plan.
var WallColors = map[string]color.NRGBA{
	layout.Front:   {220, 60, 60, 255},
	layout.Back:    {60, 170, 80, 255},
	layout.Left:    {60, 110, 220, 255},
	layout.Right:   {230, 190, 40, 255},
	layout.Floor:   {150, 90, 200, 255},
	layout.Ceiling: {40, 190, 200, 255},
}

// ColorFor returns the wall's colour, grey for unknown names.
func ColorFor(name string) color.NRGBA {
	if c, ok := WallColors[normalize(name)]; ok {
		return c
	}
	return color.NRGBA{160, 160, 170, 255}
}

const (
	gridCell  = 0.5
	cubeSize  = 0.4
	axisLen   = 0.5
	axisThick = 0.03
)

// Calibration returns a checkerboard ground grid under the walls, a cube
// in front of and behind each wall, and an XYZ axis marker at the origin.
// When textured is set the grid cells sample the scene texture.
func Calibration(room layout.Room, textured bool) Scene {
	var s Scene
	s.Meshes = append(s.Meshes, grid(room, textured))

	for _, w := range room.Walls {
		c := ColorFor(w.Name)
		n := w.Normal()
		s.Meshes = append(s.Meshes,
			Box(w.Name+"_inside", w.Center.Add(n.Scale(0.6)), mathutil.Vec3{cubeSize, cubeSize, cubeSize}, c),
			Box(w.Name+"_beyond", w.Center.Sub(n.Scale(1.0)), mathutil.Vec3{cubeSize, cubeSize, cubeSize}, c),
		)
	}

	s.Meshes = append(s.Meshes,
		Box("axis_x", mathutil.Vec3{axisLen / 2, 0, 0}, mathutil.Vec3{axisLen, axisThick, axisThick}, color.NRGBA{255, 0, 0, 255}),
		Box("axis_y", mathutil.Vec3{0, axisLen / 2, 0}, mathutil.Vec3{axisThick, axisLen, axisThick}, color.NRGBA{0, 255, 0, 255}),
		Box("axis_z", mathutil.Vec3{0, 0, axisLen / 2}, mathutil.Vec3{axisThick, axisThick, axisLen}, color.NRGBA{0, 0, 255, 255}),
	)
	return s
}

// grid spans twice the room footprint at the height of the lowest corner.
func grid(room layout.Room, textured bool) Mesh {
	minY, ext := math.Inf(1), 1.0
	for _, w := range room.Walls {
		for _, p := range []mathutil.Vec3{w.LowerLeft, w.LowerRight, w.UpperLeft, w.UpperRight()} {
			minY = math.Min(minY, p[1])
			ext = math.Max(ext, math.Max(math.Abs(p[0]), math.Abs(p[2])))
		}
	}
	if math.IsInf(minY, 1) {
		minY = 0
	}

	n := int(math.Ceil(2 * ext / gridCell))
	m := Mesh{Name: "grid"}
	light := color.NRGBA{200, 200, 200, 255}
	dark := color.NRGBA{70, 70, 80, 255}

	for i := -n; i < n; i++ {
		for j := -n; j < n; j++ {
			x0, z0 := float64(i)*gridCell, float64(j)*gridCell
			c := light
			if (i+j)%2 != 0 {
				c = dark
			}
			m.addQuad(
				mathutil.Vec3{x0, minY, z0},
				mathutil.Vec3{x0 + gridCell, minY, z0},
				mathutil.Vec3{x0 + gridCell, minY, z0 + gridCell},
				mathutil.Vec3{x0, minY, z0 + gridCell},
				c, textured,
			)
		}
	}
	return m
}

// Box returns an axis-aligned box centred at c with full extents size.
func Box(name string, c, size mathutil.Vec3, col color.NRGBA) Mesh {
	h := size.Scale(0.5)
	p := func(sx, sy, sz float64) mathutil.Vec3 {
		return mathutil.Vec3{c[0] + sx*h[0], c[1] + sy*h[1], c[2] + sz*h[2]}
	}
	m := Mesh{Name: name}
	// -Z, +Z, -X, +X, -Y, +Y; counter-clockwise seen from outside.
	m.addQuad(p(1, -1, -1), p(-1, -1, -1), p(-1, 1, -1), p(1, 1, -1), col, false)
	m.addQuad(p(-1, -1, 1), p(1, -1, 1), p(1, 1, 1), p(-1, 1, 1), col, false)
	m.addQuad(p(-1, -1, -1), p(-1, -1, 1), p(-1, 1, 1), p(-1, 1, -1), col, false)
	m.addQuad(p(1, -1, 1), p(1, -1, -1), p(1, 1, -1), p(1, 1, 1), col, false)
	m.addQuad(p(-1, -1, -1), p(1, -1, -1), p(1, -1, 1), p(-1, -1, 1), col, false)
	m.addQuad(p(-1, 1, 1), p(1, 1, 1), p(1, 1, -1), p(-1, 1, -1), col, false)
	return m
}

// addQuad appends a, b, c, d as two triangles (a-b-c, a-c-d).
func (m *Mesh) addQuad(a, b, c, d mathutil.Vec3, col color.NRGBA, textured bool) {
	base := len(m.Verts)
	m.Verts = append(m.Verts, a, b, c, d)
	uv := [4][2]float64{{0, 1}, {1, 1}, {1, 0}, {0, 0}}
	m.Tris = append(m.Tris,
		Triangle{V: [3]int{base, base + 1, base + 2}, UV: [3][2]float64{uv[0], uv[1], uv[2]}, Color: col, Textured: textured},
		Triangle{V: [3]int{base, base + 2, base + 3}, UV: [3][2]float64{uv[0], uv[2], uv[3]}, Color: col, Textured: textured},
	)
}

func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
