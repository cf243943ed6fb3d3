package tui

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/draw"

	"wxmap/internal/backend"
)

// dotThreshold is how far a pixel's luminance must stand out from its
// cell's average to light a braille dot when blitting.
const dotThreshold = 0.25

// Canvas is a backend.Canvas rendered with braille characters. Each cell is
// 2×4 micro-pixels; lines light dots in their colour and rasters set the
// cell background to the average of the pixels they cover.
type Canvas struct {
	w, h int // in cells
	m    [][]uint8
	fg   [][]color.RGBA
	bg   [][]color.RGBA

	tex  map[backend.Texture]*image.RGBA
	next backend.Texture
}

// NewCanvas returns a canvas of w×h cells.
func NewCanvas(w, h int) *Canvas {
	c := &Canvas{tex: make(map[backend.Texture]*image.RGBA)}
	c.Resize(w, h)
	return c
}

// Resize changes the cell size, clearing the canvas. Textures survive.
func (c *Canvas) Resize(w, h int) {
	c.w, c.h = max(w, 0), max(h, 0)
	c.m = make([][]uint8, c.h)
	c.fg = make([][]color.RGBA, c.h)
	c.bg = make([][]color.RGBA, c.h)
	for i := range c.m {
		c.m[i] = make([]uint8, c.w)
		c.fg[i] = make([]color.RGBA, c.w)
		c.bg[i] = make([]color.RGBA, c.w)
	}
}

// Clear erases every dot and background, keeping textures.
func (c *Canvas) Clear() {
	for y := 0; y < c.h; y++ {
		clear(c.m[y])
		clear(c.fg[y])
		clear(c.bg[y])
	}
}

// Size is the canvas size in cells.
func (c *Canvas) Size() (w, h int) { return c.w, c.h }

func (c *Canvas) Bounds() image.Rectangle { return image.Rect(0, 0, c.w*2, c.h*4) }

// dotBits maps a micro-pixel inside a cell to its braille bit.
var dotBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// setPixel sets a micro-pixel at micro coords (2x4 per cell)
func (c *Canvas) setPixel(mx, my int, col color.RGBA) {
	if mx < 0 || my < 0 {
		return
	}
	cx, cy := mx/2, my/4
	if cy >= c.h || cx >= c.w {
		return
	}
	c.m[cy][cx] |= dotBits[mx%2][my%4]
	c.fg[cy][cx] = col
}

func (c *Canvas) DrawLine(a, b backend.Point, _ float64, col color.RGBA) {
	x0, y0, x1, y1, ok := clip(a.X, a.Y, b.X, b.Y, c.Bounds())
	if !ok {
		return
	}
	c.drawLineMicro(int(math.Round(x0)), int(math.Round(y0)), int(math.Round(x1)), int(math.Round(y1)), col)
}

// clip cuts the segment to r (Liang-Barsky); ok is false when nothing is left.
func clip(x0, y0, x1, y1 float64, r image.Rectangle) (float64, float64, float64, float64, bool) {
	dx, dy := x1-x0, y1-y0
	t0, t1 := 0.0, 1.0
	minX, minY := float64(r.Min.X), float64(r.Min.Y)
	maxX, maxY := float64(r.Max.X-1), float64(r.Max.Y-1)
	for _, e := range [4][2]float64{
		{-dx, x0 - minX},
		{dx, maxX - x0},
		{-dy, y0 - minY},
		{dy, maxY - y0},
	} {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return 0, 0, 0, 0, false
			}
			t0 = math.Max(t0, t)
		} else {
			if t < t0 {
				return 0, 0, 0, 0, false
			}
			t1 = math.Min(t1, t)
		}
	}
	return x0 + t0*dx, y0 + t0*dy, x0 + t1*dx, y0 + t1*dy, true
}

// drawLineMicro draws a line on the microgrid using Bresenham
func (c *Canvas) drawLineMicro(x0, y0, x1, y1 int, col color.RGBA) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		c.setPixel(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func luma(c color.RGBA) float64 {
	return (0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)) / 255
}

// BlitRaster composites img over the cells it covers. With mask set,
// transparent pixels are skipped.
func (c *Canvas) BlitRaster(img *image.RGBA, x, y int, mask bool) {
	ib := img.Bounds()
	dst := image.Rect(x, y, x+ib.Dx(), y+ib.Dy()).Intersect(c.Bounds())
	if dst.Empty() {
		return
	}
	for cy := dst.Min.Y / 4; cy <= (dst.Max.Y-1)/4; cy++ {
		for cx := dst.Min.X / 2; cx <= (dst.Max.X-1)/2; cx++ {
			c.blitCell(img, x, y, cx, cy, mask)
		}
	}
}

func (c *Canvas) blitCell(img *image.RGBA, x, y, cx, cy int, mask bool) {
	ib := img.Bounds()
	var px [8]color.RGBA
	var at [8]image.Point
	n := 0
	var r, g, b, a float64
	for ry := 0; ry < 4; ry++ {
		for rx := 0; rx < 2; rx++ {
			mx, my := cx*2+rx, cy*4+ry
			p := image.Pt(mx-x+ib.Min.X, my-y+ib.Min.Y)
			if !p.In(ib) {
				continue
			}
			col := img.RGBAAt(p.X, p.Y)
			if mask && col.A == 0 {
				continue
			}
			px[n], at[n] = col, image.Pt(mx, my)
			n++
			r += float64(col.R)
			g += float64(col.G)
			b += float64(col.B)
			a += float64(col.A)
		}
	}
	if n == 0 {
		return
	}
	k := float64(n)
	avg := color.RGBA{uint8(r / k), uint8(g / k), uint8(b / k), uint8(a / k)}
	if !mask {
		avg.A = 0xff
	}
	c.bg[cy][cx] = over(avg, c.bg[cy][cx])
	base := luma(avg)
	for i := 0; i < n; i++ {
		if math.Abs(luma(px[i])-base) > dotThreshold {
			c.setPixel(at[i].X, at[i].Y, opaque(px[i]))
		}
	}
}

// over composites premultiplied src over dst.
func over(src, dst color.RGBA) color.RGBA {
	ia := 255 - uint32(src.A)
	return color.RGBA{
		R: uint8(uint32(src.R) + uint32(dst.R)*ia/255),
		G: uint8(uint32(src.G) + uint32(dst.G)*ia/255),
		B: uint8(uint32(src.B) + uint32(dst.B)*ia/255),
		A: uint8(uint32(src.A) + uint32(dst.A)*ia/255),
	}
}

// opaque undoes alpha premultiplication.
func opaque(c color.RGBA) color.RGBA {
	if c.A == 0 || c.A == 0xff {
		c.A = 0xff
		return c
	}
	f := 255 / float64(c.A)
	return color.RGBA{uint8(math.Min(255, float64(c.R)*f)), uint8(math.Min(255, float64(c.G)*f)), uint8(math.Min(255, float64(c.B)*f)), 0xff}
}

func (c *Canvas) UploadTexture(img *image.RGBA) (backend.Texture, error) {
	c.next++
	cp := image.NewRGBA(img.Bounds().Sub(img.Bounds().Min))
	draw.Draw(cp, cp.Bounds(), img, img.Bounds().Min, draw.Src)
	c.tex[c.next] = cp
	return c.next, nil
}

func (c *Canvas) DrawTexture(t backend.Texture, x, y int, pixelSize int) {
	src, ok := c.tex[t]
	if !ok || pixelSize <= 0 {
		return
	}
	sb := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, sb.Dx()*pixelSize, sb.Dy()*pixelSize))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, sb, draw.Src, nil)
	c.BlitRaster(dst, x, y, true)
}

func (c *Canvas) DeleteTexture(t backend.Texture) { delete(c.tex, t) }

func hex(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

// cellStyle is the colour pair of one cell; runs of equal cells share a style.
type cellStyle struct {
	fg, bg color.RGBA
}

func (s cellStyle) render(text string) string {
	st := lipgloss.NewStyle()
	if s.fg.A != 0 {
		st = st.Foreground(hex(s.fg))
	}
	if s.bg.A != 0 {
		st = st.Background(hex(opaque(s.bg)))
	}
	return st.Render(text)
}

// Lines renders the canvas, one styled string per cell row.
func (c *Canvas) Lines() []string {
	out := make([]string, c.h)
	for y := 0; y < c.h; y++ {
		var sb strings.Builder
		var run []rune
		var cur cellStyle
		for x := 0; x < c.w; x++ {
			st := cellStyle{bg: c.bg[y][x]}
			r := ' '
			if mask := c.m[y][x]; mask != 0 {
				r = rune(0x2800 + int(mask))
				st.fg = c.fg[y][x]
			}
			if x > 0 && st != cur {
				sb.WriteString(cur.render(string(run)))
				run = run[:0]
			}
			cur = st
			run = append(run, r)
		}
		if len(run) > 0 {
			sb.WriteString(cur.render(string(run)))
		}
		out[y] = sb.String()
	}
	return out
}

// Dots returns the braille mask of cell (cx, cy).
func (c *Canvas) Dots(cx, cy int) uint8 { return c.m[cy][cx] }

// Background returns the background colour of cell (cx, cy).
func (c *Canvas) Background(cx, cy int) color.RGBA { return c.bg[cy][cx] }
