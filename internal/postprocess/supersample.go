package postprocess

import (
	"image"

	"golang.org/x/image/draw"
)

// Downsample resizes img to w x h with CatmullRom filtering in
// premultiplied alpha, so transparent edges keep their colour. It returns
// img unchanged when it already has that size.
func Downsample(img *image.NRGBA, w, h int) *image.NRGBA {
	b := img.Bounds()
	if (b.Dx() == w && b.Dy() == h) || w <= 0 || h <= 0 {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), premultiply(img), image.Rect(0, 0, b.Dx(), b.Dy()), draw.Src, nil)
	return unpremultiply(dst)
}

func premultiply(src *image.NRGBA) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		s := src.Pix[y*src.Stride : y*src.Stride+w*4]
		d := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		for i := 0; i < len(s); i += 4 {
			a := uint32(s[i+3])
			d[i] = uint8((uint32(s[i])*a + 127) / 255)
			d[i+1] = uint8((uint32(s[i+1])*a + 127) / 255)
			d[i+2] = uint8((uint32(s[i+2])*a + 127) / 255)
			d[i+3] = s[i+3]
		}
	}
	return dst
}

func unpremultiply(src *image.RGBA) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		s := src.Pix[y*src.Stride : y*src.Stride+w*4]
		d := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		for i := 0; i < len(s); i += 4 {
			a := float64(s[i+3])
			// Near-zero alpha carries no usable colour.
			if a > 1 {
				inv := 255.0 / a
				d[i] = clamp8(float64(s[i]) * inv)
				d[i+1] = clamp8(float64(s[i+1]) * inv)
				d[i+2] = clamp8(float64(s[i+2]) * inv)
			}
			d[i+3] = s[i+3]
		}
	}
	return dst
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
