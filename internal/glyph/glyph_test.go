package glyph

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wxmap/internal/backend"
	"wxmap/internal/backend/backendtest"
)

func kinds(b Barb) []Kind {
	out := make([]Kind, len(b.Barbules))
	for i, bb := range b.Barbules {
		out[i] = bb.Kind
	}
	return out
}

func TestBarbForBands(t *testing.T) {
	tests := []struct {
		knots float64
		want  []Kind
	}{
		{1, []Kind{Short}},
		{5, []Kind{Short}},
		{7.49, []Kind{Short}},
		{7.5, []Kind{Long}},
		{10, []Kind{Long}},
		{12.5, []Kind{Long, Short}},
		{17.5, []Kind{Long, Long}},
		{22.5, []Kind{Long, Long, Short}},
		{27.5, []Kind{Long, Long, Long}},
		{32.5, []Kind{Long, Long, Long, Short}},
		{37.5, []Kind{Long, Long, Long, Long}},
		{44.9, []Kind{Long, Long, Long, Long}},
		{45, []Kind{Pennant}},
		{50, []Kind{Pennant}},
		{55, []Kind{Pennant, Long}},
		{65, []Kind{Pennant, Long, Long}},
		{75, []Kind{Pennant, Long, Long, Long}},
		{85, []Kind{Pennant, Pennant}},
		{95, []Kind{Pennant, Pennant}},
		{400, []Kind{Pennant, Pennant}},
	}
	for _, tt := range tests {
		b := BarbFor(tt.knots)
		assert.False(t, b.Calm, "%v kn", tt.knots)
		assert.Equal(t, tt.want, kinds(b), "%v kn", tt.knots)
	}
}

func TestBarbForCalm(t *testing.T) {
	for _, kn := range []float64{0, 0.5, 0.999} {
		b := BarbFor(kn)
		assert.True(t, b.Calm)
		assert.Empty(t, b.Barbules)
	}
}

func TestBarbForOffsets(t *testing.T) {
	offsets := func(b Barb) []float64 {
		var out []float64
		for _, bb := range b.Barbules {
			out = append(out, bb.Offset)
		}
		return out
	}
	assert.Equal(t, []float64{9}, offsets(BarbFor(5)))
	assert.Equal(t, []float64{13}, offsets(BarbFor(10)))
	assert.Equal(t, []float64{13, 9, 5, 1}, offsets(BarbFor(40)))
	assert.Equal(t, []float64{5}, offsets(BarbFor(50)))
	assert.Equal(t, []float64{5, 1, -3, -7}, offsets(BarbFor(80)))
	assert.Equal(t, []float64{5, -3}, offsets(BarbFor(90)))
}

func TestTransform(t *testing.T) {
	tr := Rotate(math.Pi/2, 10, 20)
	p := tr.Apply(1, 0)
	assert.InDelta(t, 10, p.X, 1e-9)
	assert.InDelta(t, 21, p.Y, 1e-9)
	p = tr.Apply(0, 1)
	assert.InDelta(t, 9, p.X, 1e-9)
	assert.InDelta(t, 20, p.Y, 1e-9)
}

func TestAngles(t *testing.T) {
	assert.InDelta(t, math.Atan2(4, -3), ComponentAngle(3, 4), 1e-12)
	assert.InDelta(t, 0, PolarAngle(90), 1e-12)
	assert.InDelta(t, -math.Pi/2, PolarAngle(0), 1e-12)
}

var white = color.RGBA{255, 255, 255, 255}

func TestRendererBarbStrokes(t *testing.T) {
	rec := backendtest.New(100, 100)
	r := Renderer{Canvas: rec, Color: white, Width: 2}

	r.Barb(50, 50, 5, 0, false)
	require.Len(t, rec.Lines, 4)
	// shaft runs along +x when unrotated
	assert.Equal(t, backend.Pt(37, 50), rec.Lines[0].A)
	assert.Equal(t, backend.Pt(63, 50), rec.Lines[0].B)
	// short barbule leans to +y in the north
	assert.Equal(t, backend.Pt(59, 50), rec.Lines[3].A)
	assert.Equal(t, backend.Pt(61, 55), rec.Lines[3].B)

	rec.Reset()
	r.Barb(50, 50, 5, 0, true)
	require.Len(t, rec.Lines, 4)
	assert.Equal(t, backend.Pt(61, 45), rec.Lines[3].B)

	rec.Reset()
	r.Barb(50, 50, 50, 0, false)
	// shaft + heads + two pennant strokes
	assert.Len(t, rec.Lines, 5)

	rec.Reset()
	r.Barb(50, 50, 0.2, 1.3, false)
	assert.Len(t, rec.Lines, calmSegments)
	for _, ln := range rec.Lines {
		assert.InDelta(t, 5, math.Hypot(ln.A.X-50, ln.A.Y-50), 1e-9)
		assert.Equal(t, white, ln.Color)
	}
}

func TestRendererSharedRotation(t *testing.T) {
	rec := backendtest.New(100, 100)
	r := Renderer{Canvas: rec, Color: white, Width: 1}
	angle := ComponentAngle(3, 4)
	r.Barb(40, 40, 20, angle, false)

	tr := Rotate(angle, 40, 40)
	dec := -Size / 2.0
	assert.Equal(t, tr.Apply(dec, 0), rec.Lines[0].A)
	assert.Equal(t, tr.Apply(dec+Size, 0), rec.Lines[0].B)
	last := rec.Lines[len(rec.Lines)-1]
	assert.Equal(t, tr.Apply(9, 0), last.A)
	assert.Equal(t, tr.Apply(13, 10), last.B)
}

func TestRendererArrowAndScale(t *testing.T) {
	rec := backendtest.New(100, 100)
	r := Renderer{Canvas: rec, Color: white, Width: 1, Scale: 2}
	r.Arrow(50, 50, 0)
	require.Len(t, rec.Lines, 3)
	assert.Equal(t, backend.Pt(24, 50), rec.Lines[0].A)
	assert.Equal(t, backend.Pt(76, 50), rec.Lines[0].B)
	// head strokes start just behind the shaft and spread six units either side
	assert.Equal(t, backend.Pt(20, 50), rec.Lines[1].A)
	assert.Equal(t, backend.Pt(34, 62), rec.Lines[1].B)
	assert.Equal(t, backend.Pt(20, 50), rec.Lines[2].A)
	assert.Equal(t, backend.Pt(34, 38), rec.Lines[2].B)
}
