package colorscale

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rgbOf(t *testing.T, s string) color.RGBA {
	t.Helper()
	r, g, b := hex(s).RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func TestEndpoints(t *testing.T) {
	for id := Current; id < RainRate; id++ {
		t.Run(id.String(), func(t *testing.T) {
			tb, ok := TableFor(id)
			require.True(t, ok)
			first := rgba(tb[0].Color)
			last := rgba(tb[len(tb)-1].Color)
			assert.Equal(t, first, Lookup(id, 0, true))
			assert.Equal(t, last, Lookup(id, 1, true))
			assert.Equal(t, last, Lookup(id, 1, false))
			assert.Equal(t, last, Lookup(id, 7, false))
		})
	}
}

func TestTableEnds(t *testing.T) {
	tests := []struct {
		id          ID
		first, last string
		top         float64
	}{
		{Current, "#d90000", "#f000f0", 56},
		{Generic, "#00d900", "#c0a008", 56},
		{QuickScat, "#000000", "#414100", 45},
		{SeaTemp, "#0000d9", "#410000", 56},
	}
	for _, tt := range tests {
		t.Run(tt.id.String(), func(t *testing.T) {
			tb, ok := TableFor(tt.id)
			require.True(t, ok)
			assert.Equal(t, rgbOf(t, tt.first), Lookup(tt.id, 0, true))
			assert.Equal(t, rgbOf(t, tt.last), Lookup(tt.id, 1, true))
			assert.Equal(t, tt.top, tb.maxBreak())
		})
	}
	// the scatterometer palette stays black through its first bracket
	assert.Equal(t, rgbOf(t, "#000000"), Lookup(QuickScat, 0.1, true))
}

func TestGradualIsContinuous(t *testing.T) {
	const steps = 4000
	prev := Lookup(QuickScat, 0, true)
	for k := 1; k <= steps; k++ {
		c := Lookup(QuickScat, float64(k)/steps, true)
		// neighbouring samples differ by at most a few units per channel
		assert.LessOrEqual(t, absDiff(c.R, prev.R), 4)
		assert.LessOrEqual(t, absDiff(c.G, prev.G), 4)
		assert.LessOrEqual(t, absDiff(c.B, prev.B), 4)
		prev = c
	}
}

func TestSteppedIsPiecewiseConstant(t *testing.T) {
	tb, _ := TableFor(Generic)
	top := tb.maxBreak()
	for i := 1; i < len(tb); i++ {
		a, b := tb[i-1].Break/top, tb[i].Break/top
		want := rgba(tb[i].Color)
		for _, f := range []float64{0, 0.25, 0.5, 0.99} {
			assert.Equal(t, want, Lookup(Generic, a+f*(b-a), false), "bracket %d", i)
		}
	}
}

func TestGradualMidpoint(t *testing.T) {
	tb := Table{
		{Break: 0, Color: hex("#000000")},
		{Break: 10, Color: hex("#ff0000")},
		{Break: 20, Color: hex("#ffffff")},
	}
	assert.Equal(t, color.RGBA{R: 128, A: 0xff}, tb.Lookup(0.25, true))
	assert.Equal(t, rgbOf(t, "#ff0000"), tb.Lookup(0.25, false))
	assert.Equal(t, rgbOf(t, "#ff0000"), tb.Lookup(0.5, true))
	assert.Equal(t, rgbOf(t, "#ffffff"), tb.Lookup(0.5, false))
	// below the lowest break clamps to the first bracket
	assert.Equal(t, rgbOf(t, "#000000"), tb.Lookup(-1, true))
	assert.Equal(t, rgbOf(t, "#ff0000"), tb.Lookup(-1, false))
}

func TestRainRate(t *testing.T) {
	assert.Equal(t, color.RGBA{A: 0xff}, Lookup(RainRate, 0, true))
	assert.Equal(t, color.RGBA{R: 0xff, A: 0xff}, Lookup(RainRate, 1, false))
	assert.Equal(t, color.RGBA{R: 128, A: 0xff}, Lookup(RainRate, 0.5, false))
	assert.Equal(t, color.RGBA{R: 0xff, A: 0xff}, Lookup(RainRate, 3, false))
	_, ok := TableFor(RainRate)
	assert.False(t, ok)
}

func TestUnknownScalePanics(t *testing.T) {
	assert.Panics(t, func() { Lookup(ID(99), 0.5, true) })
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, 0.5, Normalize(15, 10, 20))
	assert.Equal(t, -1.0, Normalize(0, 10, 20))
	assert.Equal(t, 0.0, Normalize(5, 5, 5))
}

func TestParse(t *testing.T) {
	id, err := Parse("Sea_Temp")
	require.NoError(t, err)
	assert.Equal(t, SeaTemp, id)
	_, err = Parse("rainbow")
	assert.Error(t, err)

	var got ID
	require.NoError(t, got.UnmarshalText([]byte("QuickScat")))
	assert.Equal(t, QuickScat, got)
	b, err := got.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "quickscat", string(b))
}
