package backend

import (
	"image"

	"golang.org/x/image/draw"
)

// Surface turns a block-sampled colour raster into something a Canvas can
// draw every frame. blocks holds one pixel per sampled block; pixelSize is
// the block edge in screen pixels.
type Surface interface {
	// Fits reports whether a raster covering w×h screen pixels can be built.
	Fits(w, h, pixelSize int) bool
	Build(c Canvas, blocks *image.RGBA, pixelSize int) (Raster, error)
}

// Raster is a built, reusable colour raster.
type Raster interface {
	Draw(c Canvas, x, y int)
	// Release frees the pixel buffer or texture handle.
	Release(c Canvas)
	Size() (w, h int)
}

const (
	// MaxBitmap is the largest bitmap edge, in screen pixels.
	MaxBitmap = 1024
	// MaxTexture is the largest texture edge, in texels.
	MaxTexture = 512
)

// BitmapSurface expands the blocks into a full-resolution bitmap blitted
// with its alpha mask.
type BitmapSurface struct{}

func (BitmapSurface) Fits(w, h, pixelSize int) bool {
	return w <= MaxBitmap && h <= MaxBitmap
}

func (BitmapSurface) Build(c Canvas, blocks *image.RGBA, pixelSize int) (Raster, error) {
	sb := blocks.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, sb.Dx()*pixelSize, sb.Dy()*pixelSize))
	draw.NearestNeighbor.Scale(img, img.Bounds(), blocks, sb, draw.Src, nil)
	return &bitmapRaster{img: img}, nil
}

type bitmapRaster struct {
	img *image.RGBA
}

func (r *bitmapRaster) Draw(c Canvas, x, y int) {
	if r.img != nil {
		c.BlitRaster(r.img, x, y, true)
	}
}

func (r *bitmapRaster) Release(Canvas) { r.img = nil }

func (r *bitmapRaster) Size() (int, int) {
	if r.img == nil {
		return 0, 0
	}
	b := r.img.Bounds()
	return b.Dx(), b.Dy()
}

// TextureSurface uploads the blocks as a texture, one texel per block, and
// lets the canvas scale it up when drawing.
type TextureSurface struct{}

func (TextureSurface) Fits(w, h, pixelSize int) bool {
	if pixelSize <= 0 {
		return false
	}
	return w/pixelSize <= MaxTexture && h/pixelSize <= MaxTexture
}

func (TextureSurface) Build(c Canvas, blocks *image.RGBA, pixelSize int) (Raster, error) {
	t, err := c.UploadTexture(blocks)
	if err != nil {
		return nil, err
	}
	b := blocks.Bounds()
	return &textureRaster{tex: t, w: b.Dx(), h: b.Dy(), px: pixelSize, live: true}, nil
}

type textureRaster struct {
	tex  Texture
	w, h int
	px   int
	live bool
}

func (r *textureRaster) Draw(c Canvas, x, y int) {
	if r.live {
		c.DrawTexture(r.tex, x, y, r.px)
	}
}

func (r *textureRaster) Release(c Canvas) {
	if r.live {
		c.DeleteTexture(r.tex)
		r.live = false
	}
}

func (r *textureRaster) Size() (int, int) { return r.w * r.px, r.h * r.px }

// SurfaceFor returns the surface named by a configuration value:
// "bitmap" or "texture".
func SurfaceFor(name string) (Surface, bool) {
	switch name {
	case "", "bitmap":
		return BitmapSurface{}, true
	case "texture":
		return TextureSurface{}, true
	}
	return nil, false
}
