package overlay

import (
	"image"
	"image/color"
	"math"
	"strconv"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	labelText = color.RGBA{0x20, 0x20, 0x20, 0xff}
	labelBack = color.RGBA{0xe8, 0xe8, 0xe0, 0xff}
)

// labelPad is the horizontal padding on each side of the text.
const labelPad = 5

// renderText draws s in the 7x13 bitmap face on a filled box.
func renderText(s string, fg, bg color.RGBA) *image.RGBA {
	face := basicfont.Face7x13
	w := font.MeasureString(face, s).Ceil() + 2*labelPad
	m := face.Metrics()
	h := (m.Ascent + m.Descent).Ceil() + 2
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(labelPad), Y: m.Ascent + fixed.I(1)},
	}
	d.DrawString(s)
	return img
}

// LabelCache holds rendered value labels keyed by the rounded value.
type LabelCache struct {
	m map[int]*image.RGBA
}

// NewLabelCache returns an empty cache.
func NewLabelCache() *LabelCache {
	return &LabelCache{m: make(map[int]*image.RGBA)}
}

// Get returns the label for v, rendering it on first use.
func (lc *LabelCache) Get(v float64) *image.RGBA {
	k := int(math.Round(v))
	if img, ok := lc.m[k]; ok {
		return img
	}
	img := renderText(strconv.Itoa(k), labelText, labelBack)
	lc.m[k] = img
	return img
}

func (lc *LabelCache) Len() int { return len(lc.m) }

func (lc *LabelCache) Clear() { clear(lc.m) }
