package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		from, to string
		in, want float64
	}{
		{"m/s", "kn", 1, 3600.0 / 1852},
		{"kn", "kn", 12, 12},
		{"km/h", "m/s", 36, 10},
		{"Pa", "hPa", 101325, 1013.25},
		{"mb", "hpa", 990, 990},
		{"K", "C", 273.15, 0},
		{"C", "F", 100, 212},
		{"F", "K", 32, 273.15},
		{"ft", "m", 10, 3.048},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			c, err := Convert(tt.from, tt.to)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, c.Apply(tt.in), 1e-9)
			assert.InDelta(t, tt.in, c.Invert(c.Apply(tt.in)), 1e-9)
		})
	}
}

func TestConvertErrors(t *testing.T) {
	_, err := Convert("furlong", "m")
	assert.ErrorContains(t, err, "unknown unit")
	_, err = Convert("m", "parsec")
	assert.ErrorContains(t, err, "unknown unit")
	_, err = Convert("kn", "hpa")
	assert.ErrorContains(t, err, "cannot convert")
}

func TestKnownAndDim(t *testing.T) {
	assert.True(t, Known(" KN "))
	assert.False(t, Known(""))
	d, ok := DimOf("inhg")
	require.True(t, ok)
	assert.Equal(t, Pressure, d)
	assert.Equal(t, "pressure", d.String())
	assert.Equal(t, 5.0, Identity.Apply(5))
}
