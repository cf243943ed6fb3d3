// Package backendtest provides a recording canvas for renderer tests.
package backendtest

import (
	"image"
	"image/color"

	"wxmap/internal/backend"
)

// Line is one recorded DrawLine call.
type Line struct {
	A, B  backend.Point
	Width float64
	Color color.RGBA
}

// Blit is one recorded BlitRaster call.
type Blit struct {
	Img  *image.RGBA
	X, Y int
	Mask bool
}

// TextureDraw is one recorded DrawTexture call.
type TextureDraw struct {
	Tex       backend.Texture
	X, Y      int
	PixelSize int
}

// Recorder is a backend.Canvas that remembers every call.
type Recorder struct {
	W, H     int
	Lines    []Line
	Blits    []Blit
	Draws    []TextureDraw
	Uploads  int
	Deleted  []backend.Texture
	Textures map[backend.Texture]*image.RGBA
	next     backend.Texture

	// UploadErr, when set, fails every UploadTexture.
	UploadErr error
}

// New returns a recorder with a w×h drawable area.
func New(w, h int) *Recorder {
	return &Recorder{W: w, H: h, Textures: make(map[backend.Texture]*image.RGBA)}
}

func (r *Recorder) Bounds() image.Rectangle { return image.Rect(0, 0, r.W, r.H) }

func (r *Recorder) DrawLine(a, b backend.Point, width float64, c color.RGBA) {
	r.Lines = append(r.Lines, Line{A: a, B: b, Width: width, Color: c})
}

func (r *Recorder) BlitRaster(img *image.RGBA, x, y int, mask bool) {
	r.Blits = append(r.Blits, Blit{Img: img, X: x, Y: y, Mask: mask})
}

func (r *Recorder) UploadTexture(img *image.RGBA) (backend.Texture, error) {
	r.Uploads++
	if r.UploadErr != nil {
		return 0, r.UploadErr
	}
	r.next++
	r.Textures[r.next] = img
	return r.next, nil
}

func (r *Recorder) DrawTexture(t backend.Texture, x, y int, pixelSize int) {
	r.Draws = append(r.Draws, TextureDraw{Tex: t, X: x, Y: y, PixelSize: pixelSize})
}

func (r *Recorder) DeleteTexture(t backend.Texture) {
	delete(r.Textures, t)
	r.Deleted = append(r.Deleted, t)
}

// DrawCount counts every call that put pixels on the canvas.
func (r *Recorder) DrawCount() int { return len(r.Lines) + len(r.Blits) + len(r.Draws) }

// Reset forgets recorded draw calls but keeps live textures.
func (r *Recorder) Reset() {
	r.Lines, r.Blits, r.Draws = nil, nil, nil
}
