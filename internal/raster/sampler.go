package raster

import (
	"image"
	"math"
)

// SampleTexture performs bilinear filtering with UV wrapping; v = 0 is the
// top row. Accesses tex.Pix directly for performance.
func SampleTexture(tex *image.NRGBA, u, v float64) (r, g, b, a uint8) {
	w := tex.Rect.Dx()
	h := tex.Rect.Dy()
	if w == 0 || h == 0 {
		return 0, 0, 0, 0
	}

	u -= math.Floor(u)
	v -= math.Floor(v)

	fx := u * float64(w-1)
	fy := v * float64(h-1)
	x0 := int(fx)
	y0 := int(fy)
	x1 := (x0 + 1) % w
	y1 := (y0 + 1) % h
	dx := fx - float64(x0)
	dy := fy - float64(y0)

	off := func(x, y int) int { return y*tex.Stride + x*4 }
	i00, i10, i01, i11 := off(x0, y0), off(x1, y0), off(x0, y1), off(x1, y1)

	w00 := (1 - dx) * (1 - dy)
	w10 := dx * (1 - dy)
	w01 := (1 - dx) * dy
	w11 := dx * dy

	pix := tex.Pix
	mix := func(c int) uint8 {
		return uint8(float64(pix[i00+c])*w00 + float64(pix[i10+c])*w10 +
			float64(pix[i01+c])*w01 + float64(pix[i11+c])*w11 + 0.5)
	}
	return mix(0), mix(1), mix(2), mix(3)
}
