package strategy

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arashn/stockscan/internal/indicator"
)

func reading(currRSI, prevRSI, close, lower float64, fresh bool) indicator.Reading {
	return indicator.Reading{
		Current:  indicator.Snapshot{RSI: currRSI, BollLower: lower, Close: close, AsOf: time.Unix(1700000000, 0)},
		Previous: &indicator.Snapshot{RSI: prevRSI},
		Fresh:    fresh,
	}
}

func TestOversoldBreakoutEvaluate(t *testing.T) {
	rule := NewOversoldBreakout(30)

	tests := []struct {
		name    string
		reading indicator.Reading
		fires   bool
	}{
		{"crossing below band fires", reading(28, 31, 95, 96, true), true},
		{"already oversold does not re-fire", reading(28, 29, 95, 96, true), false},
		{"crossing above band does not fire", reading(28, 31, 97, 96, true), false},
		{"close exactly at band does not fire", reading(28, 31, 96, 96, true), false},
		{"previous exactly at threshold fires", reading(29.9, 30, 95, 96, true), true},
		{"rsi rising does not fire", reading(35, 28, 95, 96, true), false},
		{"stale reading never fires", reading(28, 31, 95, 96, false), false},
		{"nan rsi never fires", reading(math.NaN(), 31, 95, 96, true), false},
		{"nan band never fires", reading(28, 31, 95, math.NaN(), true), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, fired := rule.Evaluate("AAPL", tt.reading)
			assert.Equal(t, tt.fires, fired)
			if tt.fires {
				assert.Equal(t, "AAPL", sig.Symbol)
				assert.Equal(t, EntryLong, sig.Position)
				assert.Equal(t, tt.reading.Current.Close, sig.TriggerPrice)
			}
		})
	}

	t.Run("no previous snapshot never fires", func(t *testing.T) {
		r := reading(28, 31, 95, 96, true)
		r.Previous = nil
		_, fired := rule.Evaluate("AAPL", r)
		assert.False(t, fired)
	})
}

// A drop at the end of a long flat series must fire exactly once and never
// again while the symbol stays oversold.
func TestOversoldBreakoutOneShot(t *testing.T) {
	eng := indicator.NewEngine(14, 20, 2)
	rule := NewOversoldBreakout(30)
	base := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)

	closes := make([]float64, 50)
	for i := range closes {
		closes[i] = 100
	}
	closes[49] = 60 // flat tape, then a sharp drop on the newest bar

	r, err := eng.Observe("XYZ", closes, base)
	require.NoError(t, err)
	sig, fired := rule.Evaluate("XYZ", r)
	require.True(t, fired, "crossing on the newest bar should fire")
	assert.Equal(t, 60.0, sig.TriggerPrice)

	// Same bar served again: stale, no re-fire.
	r, err = eng.Observe("XYZ", closes, base)
	require.NoError(t, err)
	_, fired = rule.Evaluate("XYZ", r)
	assert.False(t, fired)

	// Next bar still oversold: level holds but the edge is gone.
	next := append(append([]float64{}, closes...), 60)
	r, err = eng.Observe("XYZ", next, base.Add(5*time.Minute))
	require.NoError(t, err)
	_, fired = rule.Evaluate("XYZ", r)
	assert.False(t, fired)
}
