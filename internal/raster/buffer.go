package raster

import (
	"image"
	"image/color"
	"math"
)

// FrameBuffer holds the rendering target as flat slices for cache locality.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []uint8   // RGBA interleaved, len = W*H*4
	ZBuf   []float64 // depth per pixel (larger is closer), initialized to -inf
}

// NewFrameBuffer allocates a buffer cleared to bg and a -inf z-buffer.
func NewFrameBuffer(w, h int, bg color.NRGBA) *FrameBuffer {
	n := w * h
	zbuf := make([]float64, n)
	for i := range zbuf {
		zbuf[i] = math.Inf(-1)
	}
	col := make([]uint8, n*4)
	for i := 0; i < n; i++ {
		col[i*4] = bg.R
		col[i*4+1] = bg.G
		col[i*4+2] = bg.B
		col[i*4+3] = bg.A
	}
	return &FrameBuffer{
		Width:  w,
		Height: h,
		Color:  col,
		ZBuf:   zbuf,
	}
}

// Image copies the colour buffer into an NRGBA image.
func (fb *FrameBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	copy(img.Pix, fb.Color)
	return img
}
