package raster

import (
	"image"
	"image/color"
	"math"
)

// screenVertex is a vertex after the perspective divide and viewport
// mapping. InvW and the UV/w terms interpolate linearly in screen space.
type screenVertex struct {
	X, Y   float64
	InvW   float64
	UoverW float64
	VoverW float64
}

func toScreen(v vertex, w, h int) screenVertex {
	invW := 1 / v.P[3]
	return screenVertex{
		X:      (v.P[0]*invW + 1) * 0.5 * float64(w),
		Y:      (1 - v.P[1]*invW) * 0.5 * float64(h),
		InvW:   invW,
		UoverW: v.UV[0] * invW,
		VoverW: v.UV[1] * invW,
	}
}

// RasterizeTriangle fills one screen-space triangle with perspective-correct
// texturing and a 1/w depth test. tex may be nil, in which case col is used.
//
// Hot path: no allocation inside the pixel loop. Shading is per face.
func RasterizeTriangle(
	fb *FrameBuffer,
	v0, v1, v2 screenVertex,
	tex *image.NRGBA,
	col color.NRGBA,
	shade float64,
	lc *LightConfig,
) {
	det := (v1.Y-v2.Y)*(v0.X-v2.X) + (v2.X-v1.X)*(v0.Y-v2.Y)
	if det > -1e-12 && det < 1e-12 {
		return
	}
	invDet := 1.0 / det

	minX := int(math.Floor(math.Min(math.Min(v0.X, v1.X), v2.X)))
	maxX := int(math.Ceil(math.Max(math.Max(v0.X, v1.X), v2.X)))
	minY := int(math.Floor(math.Min(math.Min(v0.Y, v1.Y), v2.Y)))
	maxY := int(math.Ceil(math.Max(math.Max(v0.Y, v1.Y), v2.Y)))

	if minX < 0 {
		minX = 0
	}
	if maxX > fb.Width-1 {
		maxX = fb.Width - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY > fb.Height-1 {
		maxY = fb.Height - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	dy12 := v1.Y - v2.Y
	dx21 := v2.X - v1.X
	dy20 := v2.Y - v0.Y
	dx02 := v0.X - v2.X

	// Flat colour is constant over the face, shade it once.
	fr, fg, fbb := lc.shadePixel(col.R, col.G, col.B, shade)

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) + 0.5 - v2.Y
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - v2.X
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			invW := w0*v0.InvW + w1*v1.InvW + w2*v2.InvW
			zIdx := rowOff + sx
			if invW <= fb.ZBuf[zIdx] {
				continue
			}

			r, g, b, a := fr, fg, fbb, col.A
			if tex != nil {
				u := (w0*v0.UoverW + w1*v1.UoverW + w2*v2.UoverW) / invW
				v := (w0*v0.VoverW + w1*v1.VoverW + w2*v2.VoverW) / invW
				var tr, tg, tb uint8
				tr, tg, tb, a = SampleTexture(tex, u, v)
				// Skip transparent texels
				if a < 8 {
					continue
				}
				r, g, b = lc.shadePixel(tr, tg, tb, shade)
			}
			fb.ZBuf[zIdx] = invW

			i := zIdx * 4
			fb.Color[i] = r
			fb.Color[i+1] = g
			fb.Color[i+2] = b
			fb.Color[i+3] = a
		}
	}
}
