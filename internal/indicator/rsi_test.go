package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateRSI(t *testing.T) {
	t.Run("insufficient history", func(t *testing.T) {
		_, err := CalculateRSI([]float64{100, 101}, 14)
		assert.ErrorIs(t, err, ErrInsufficientHistory)
	})

	t.Run("invalid period", func(t *testing.T) {
		_, err := CalculateRSI([]float64{100, 101, 102}, 0)
		assert.ErrorIs(t, err, ErrInsufficientHistory)
	})

	t.Run("warm-up slots are NaN", func(t *testing.T) {
		series, err := CalculateRSI([]float64{1, 2, 3, 4, 5, 6}, 4)
		require.NoError(t, err)
		require.Len(t, series, 6)
		for i := 0; i < 3; i++ {
			assert.True(t, math.IsNaN(series[i]), "slot %d should be NaN", i)
		}
		for i := 3; i < 6; i++ {
			assert.False(t, math.IsNaN(series[i]), "slot %d should be computed", i)
		}
	})

	t.Run("all gains saturates at 100", func(t *testing.T) {
		rsi, err := CalculateLastRSI([]float64{10, 11, 12, 13, 14, 15}, 3)
		require.NoError(t, err)
		assert.Equal(t, 100.0, rsi)
	})

	t.Run("all losses pins at 0", func(t *testing.T) {
		rsi, err := CalculateLastRSI([]float64{15, 14, 13, 12, 11, 10}, 3)
		require.NoError(t, err)
		assert.Equal(t, 0.0, rsi)
	})

	t.Run("wilder smoothing", func(t *testing.T) {
		// period 2 over {1,2,3,2}:
		//   seed: avgGain=0.5, avgLoss=0        -> 100
		//   bar 2: avgGain=0.75, avgLoss=0      -> 100
		//   bar 3: avgGain=0.375, avgLoss=0.5   -> 100-100/1.75
		series, err := CalculateRSI([]float64{1, 2, 3, 2}, 2)
		require.NoError(t, err)
		assert.Equal(t, 100.0, series[1])
		assert.Equal(t, 100.0, series[2])
		assert.InDelta(t, 42.857142, series[3], 1e-6)
	})

	t.Run("values stay in range", func(t *testing.T) {
		prices := []float64{44, 44.34, 44.09, 44.15, 43.61, 44.33, 44.83,
			45.10, 45.42, 45.84, 46.08, 45.89, 46.03, 45.61, 46.28, 46.28}
		series, err := CalculateRSI(prices, 14)
		require.NoError(t, err)
		for i := 13; i < len(series); i++ {
			assert.GreaterOrEqual(t, series[i], 0.0)
			assert.LessOrEqual(t, series[i], 100.0)
		}
	})
}
