package main

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/mjkern/avrboard/lcd"
)

const (
	charCols = 5
	charRows = 10
	colGap   = 1
	rowGap   = 1
)

var (
	pixelOff = color.Gray{Y: 40}
	pixelOn  = color.Gray{Y: 220}
)

// renderDisplay rasterizes both 16-character lines of an LCD into a
// one-pixel-per-dot grayscale image, unscaled.
func renderDisplay(display [2][16]lcd.Character) *image.Gray {
	cellW, cellH := charCols+colGap, charRows+rowGap
	img := image.NewGray(image.Rect(0, 0, 16*cellW, 2*cellH))
	for y := img.Bounds().Min.Y; y < img.Bounds().Max.Y; y++ {
		for x := img.Bounds().Min.X; x < img.Bounds().Max.X; x++ {
			img.Set(x, y, pixelOff)
		}
	}
	for line := 0; line < 2; line++ {
		for col := 0; col < 16; col++ {
			ch := display[line][col]
			for row := 0; row < charRows; row++ {
				bits := ch[row]
				for pixCol := 0; pixCol < charCols; pixCol++ {
					x, y := col*cellW+pixCol, line*cellH+row
					if bits&(1<<uint(charCols-1-pixCol)) != 0 {
						img.Set(x, y, pixelOn)
					}
				}
			}
		}
	}
	return img
}

// scaleDisplay upscales img by factor with a nearest-neighbor filter,
// which keeps the dot-matrix look instead of smoothing it into a blur.
func scaleDisplay(img image.Image, factor int) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
