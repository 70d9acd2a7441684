package postprocess

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// Fit scales img to fit fillRatio of a w x h canvas, keeping its aspect
// ratio, and centers it on a bg-filled canvas.
func Fit(img *image.NRGBA, w, h int, fillRatio float64, bg color.NRGBA) *image.NRGBA {
	canvas := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if srcW == 0 || srcH == 0 || w == 0 || h == 0 {
		return canvas
	}

	scaleF := fillRatio * math.Min(float64(w)/float64(srcW), float64(h)/float64(srcH))
	newW := max(int(float64(srcW)*scaleF+0.5), 1)
	newH := max(int(float64(srcH)*scaleF+0.5), 1)

	offX := (w - newW) / 2
	offY := (h - newH) / 2
	dst := image.Rect(offX, offY, offX+newW, offY+newH)
	draw.CatmullRom.Scale(canvas, dst, img, b, draw.Over, nil)
	return canvas
}

// ContactSheet lays images out left to right, top to bottom, cols per row,
// each fitted into a cellW x cellH cell.
func ContactSheet(imgs []*image.NRGBA, cols, cellW, cellH int, bg color.NRGBA) *image.NRGBA {
	if cols < 1 {
		cols = 1
	}
	rows := (len(imgs) + cols - 1) / cols
	if rows == 0 {
		rows = 1
	}
	sheet := image.NewNRGBA(image.Rect(0, 0, cols*cellW, rows*cellH))
	draw.Draw(sheet, sheet.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	for i, img := range imgs {
		if img == nil {
			continue
		}
		cell := Fit(img, cellW, cellH, 0.94, bg)
		x, y := (i%cols)*cellW, (i/cols)*cellH
		draw.Draw(sheet, image.Rect(x, y, x+cellW, y+cellH), cell, image.Point{}, draw.Src)
	}
	return sheet
}
