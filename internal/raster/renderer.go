// Package raster is a small software rasterizer used to preview what each
// wall shows for a given eye position.
package raster

import (
	"image"
	"image/color"

	"cave-projector/internal/mathutil"
	"cave-projector/internal/scene"
)

// Background is the clear colour of every preview.
var Background = color.NRGBA{18, 18, 24, 255}

// Renderer draws scenes through a view-projection matrix.
type Renderer struct {
	Light      LightConfig
	Background color.NRGBA
	Texture    *image.NRGBA // sampled by textured triangles; nil falls back to flat colour
}

// NewRenderer returns a renderer with the default lighting and background.
func NewRenderer(tex *image.NRGBA) *Renderer {
	return &Renderer{
		Light:      DefaultLightConfig(),
		Background: Background,
		Texture:    tex,
	}
}

// Render rasterizes s into a w x h image. vp maps room coordinates to clip
// space with the near plane at z = -w.
func (r *Renderer) Render(s scene.Scene, vp mathutil.Mat4, w, h int) *image.NRGBA {
	if w <= 0 || h <= 0 {
		return image.NewNRGBA(image.Rectangle{})
	}
	fb := NewFrameBuffer(w, h, r.Background)

	var clip [3]vertex
	poly := make([]vertex, 0, 8)

	for _, mesh := range s.Meshes {
		if len(mesh.Verts) == 0 {
			continue
		}
		cs := make([][4]float64, len(mesh.Verts))
		for i, v := range mesh.Verts {
			cs[i] = vp.MulVec4(v, 1)
		}

		for _, tri := range mesh.Tris {
			if !validIndices(tri.V, len(mesh.Verts)) {
				continue
			}
			a, b, c := mesh.Verts[tri.V[0]], mesh.Verts[tri.V[1]], mesh.Verts[tri.V[2]]
			normal := b.Sub(a).Cross(c.Sub(a))
			if normal.Len() < 1e-12 {
				continue
			}
			shade := r.Light.ComputeShade(normal.Normalize())

			var tex *image.NRGBA
			if tri.Textured {
				tex = r.Texture
			}

			for k := 0; k < 3; k++ {
				clip[k] = vertex{P: cs[tri.V[k]], UV: tri.UV[k]}
			}
			poly = clipNear(clip[:], poly[:0])
			if len(poly) < 3 {
				continue
			}

			// Fan-triangulate the clipped polygon.
			s0 := toScreen(poly[0], w, h)
			for k := 1; k+1 < len(poly); k++ {
				s1 := toScreen(poly[k], w, h)
				s2 := toScreen(poly[k+1], w, h)
				RasterizeTriangle(fb, s0, s1, s2, tex, tri.Color, shade, &r.Light)
			}
		}
	}

	return fb.Image()
}

func validIndices(v [3]int, n int) bool {
	for _, i := range v {
		if i < 0 || i >= n {
			return false
		}
	}
	return true
}
