package backend

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// maxTextures bounds the texture table of an Image canvas.
const maxTextures = 4096

// Image is a Canvas over an in-memory RGBA image. Lines are anti-aliased
// through a vector rasterizer; textures live in a handle table and are scaled
// with nearest-neighbour sampling when drawn.
type Image struct {
	img  *image.RGBA
	ras  *vector.Rasterizer
	tex  map[Texture]*image.RGBA
	next Texture
}

// NewImage returns a canvas of w×h pixels, cleared to transparent.
func NewImage(w, h int) *Image {
	return Wrap(image.NewRGBA(image.Rect(0, 0, w, h)))
}

// Wrap returns a canvas drawing into img.
func Wrap(img *image.RGBA) *Image {
	b := img.Bounds()
	return &Image{
		img: img,
		ras: vector.NewRasterizer(b.Dx(), b.Dy()),
		tex: make(map[Texture]*image.RGBA),
	}
}

// Image returns the target image.
func (c *Image) Image() *image.RGBA { return c.img }

func (c *Image) Bounds() image.Rectangle { return c.img.Bounds() }

// Fill paints the whole canvas with col.
func (c *Image) Fill(col color.RGBA) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

func (c *Image) DrawLine(a, b Point, width float64, col color.RGBA) {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	if l == 0 || width <= 0 {
		return
	}
	// quad around the segment, half the width on each side
	nx, ny := -dy/l*width/2, dx/l*width/2
	o := c.img.Bounds().Min
	ax, ay := float32(a.X-float64(o.X)), float32(a.Y-float64(o.Y))
	bx, by := float32(b.X-float64(o.X)), float32(b.Y-float64(o.Y))
	fnx, fny := float32(nx), float32(ny)

	bd := c.img.Bounds()
	c.ras.Reset(bd.Dx(), bd.Dy())
	c.ras.DrawOp = draw.Over
	c.ras.MoveTo(ax+fnx, ay+fny)
	c.ras.LineTo(bx+fnx, by+fny)
	c.ras.LineTo(bx-fnx, by-fny)
	c.ras.LineTo(ax-fnx, ay-fny)
	c.ras.ClosePath()
	c.ras.Draw(c.img, bd, image.NewUniform(col), image.Point{})
}

func (c *Image) BlitRaster(img *image.RGBA, x, y int, mask bool) {
	op := draw.Src
	if mask {
		op = draw.Over
	}
	r := img.Bounds().Sub(img.Bounds().Min).Add(image.Pt(x, y))
	draw.Draw(c.img, r, img, img.Bounds().Min, op)
}

func (c *Image) UploadTexture(img *image.RGBA) (Texture, error) {
	if len(c.tex) >= maxTextures {
		return 0, ErrTextureLimit
	}
	c.next++
	cp := image.NewRGBA(img.Bounds().Sub(img.Bounds().Min))
	draw.Draw(cp, cp.Bounds(), img, img.Bounds().Min, draw.Src)
	c.tex[c.next] = cp
	return c.next, nil
}

func (c *Image) DrawTexture(t Texture, x, y int, pixelSize int) {
	src, ok := c.tex[t]
	if !ok || pixelSize <= 0 {
		return
	}
	sb := src.Bounds()
	dr := image.Rect(x, y, x+sb.Dx()*pixelSize, y+sb.Dy()*pixelSize)
	draw.NearestNeighbor.Scale(c.img, dr, src, sb, draw.Over, nil)
}

func (c *Image) DeleteTexture(t Texture) { delete(c.tex, t) }

// Textures is the number of live textures.
func (c *Image) Textures() int { return len(c.tex) }
