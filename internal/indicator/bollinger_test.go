package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateBollinger(t *testing.T) {
	t.Run("insufficient history", func(t *testing.T) {
		_, err := CalculateBollinger([]float64{100}, 20, 2)
		assert.ErrorIs(t, err, ErrInsufficientHistory)
	})

	t.Run("warm-up slots are NaN", func(t *testing.T) {
		bands, err := CalculateBollinger([]float64{1, 2, 3, 4}, 3, 2)
		require.NoError(t, err)
		require.Len(t, bands, 4)
		assert.True(t, math.IsNaN(bands[0].Middle))
		assert.True(t, math.IsNaN(bands[1].Middle))
		assert.False(t, math.IsNaN(bands[2].Middle))
	})

	t.Run("population standard deviation", func(t *testing.T) {
		// last window {3,4,5}: mean 4, population std sqrt(2/3)
		bands, err := CalculateBollinger([]float64{1, 2, 3, 4, 5}, 3, 2)
		require.NoError(t, err)
		last := bands[len(bands)-1]
		std := math.Sqrt(2.0 / 3.0)
		assert.InDelta(t, 4.0, last.Middle, 1e-9)
		assert.InDelta(t, 4.0+2*std, last.Upper, 1e-9)
		assert.InDelta(t, 4.0-2*std, last.Lower, 1e-9)
	})

	t.Run("constant series collapses the bands", func(t *testing.T) {
		band, err := CalculateLastBollinger([]float64{50, 50, 50, 50, 50}, 5, 2)
		require.NoError(t, err)
		assert.Equal(t, 50.0, band.Upper)
		assert.Equal(t, 50.0, band.Middle)
		assert.Equal(t, 50.0, band.Lower)
	})

	t.Run("band ordering", func(t *testing.T) {
		prices := []float64{10, 12, 11, 13, 12, 14, 13, 15}
		bands, err := CalculateBollinger(prices, 4, 2)
		require.NoError(t, err)
		for i := 3; i < len(bands); i++ {
			assert.GreaterOrEqual(t, bands[i].Upper, bands[i].Middle)
			assert.GreaterOrEqual(t, bands[i].Middle, bands[i].Lower)
		}
	})
}
