// Package backend is the drawing surface the overlay renders into.
package backend

import (
	"errors"
	"image"
	"image/color"
)

// Point is a screen position in pixels.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Texture is a handle to a pixel buffer uploaded to a canvas.
type Texture uint32

// ErrTextureLimit is returned when a canvas cannot hold another texture.
var ErrTextureLimit = errors.New("backend: texture limit reached")

// Canvas is the low-level draw target.
type Canvas interface {
	// Bounds is the drawable area in pixels.
	Bounds() image.Rectangle
	DrawLine(a, b Point, width float64, c color.RGBA)
	// BlitRaster copies img with its top-left corner at (x, y). With mask
	// set, the alpha channel is honoured; otherwise pixels are copied as is.
	BlitRaster(img *image.RGBA, x, y int, mask bool)
	UploadTexture(img *image.RGBA) (Texture, error)
	// DrawTexture draws t at (x, y) with every texel pixelSize pixels wide.
	DrawTexture(t Texture, x, y int, pixelSize int)
	DeleteTexture(t Texture)
}
