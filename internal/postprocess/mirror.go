package postprocess

import "image"

// FlipHorizontal returns a left-right mirrored copy of img, as needed by
// walls fed from a rear projector.
func FlipHorizontal(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+w*4]
		dst := out.Pix[y*out.Stride : y*out.Stride+w*4]
		for x := 0; x < w; x++ {
			copy(dst[(w-1-x)*4:(w-x)*4], src[x*4:x*4+4])
		}
	}
	return out
}

// FlipVertical returns a top-bottom mirrored copy of img.
func FlipVertical(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		copy(out.Pix[(h-1-y)*out.Stride:(h-1-y)*out.Stride+w*4], img.Pix[y*img.Stride:y*img.Stride+w*4])
	}
	return out
}
