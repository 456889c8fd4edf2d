package markethours

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func et(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, Eastern)
}

func TestIsMarketOpen(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		open bool
	}{
		{"mid-session tuesday", et(2026, 3, 3, 12, 0), true},
		{"exact open", et(2026, 3, 3, 9, 30), true},
		{"one minute before open", et(2026, 3, 3, 9, 29), false},
		{"exact close", et(2026, 3, 3, 16, 0), false},
		{"one minute before close", et(2026, 3, 3, 15, 59), true},
		{"saturday", et(2026, 3, 7, 12, 0), false},
		{"sunday", et(2026, 3, 8, 12, 0), false},
		{"christmas", et(2026, 12, 25, 12, 0), false},
		{"good friday", et(2026, 4, 3, 12, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.open, IsMarketOpen(tt.at))
		})
	}
}

// Session bounds must track daylight saving: the same UTC instant is inside
// the session in summer and outside it in winter.
func TestIsMarketOpenAcrossDST(t *testing.T) {
	tests := []struct {
		name string
		utc  time.Time
		open bool
	}{
		{"summer 09:45 EDT is open", time.Date(2026, 7, 15, 13, 45, 0, 0, time.UTC), true},
		{"summer 09:29 EDT is closed", time.Date(2026, 7, 15, 13, 29, 0, 0, time.UTC), false},
		{"summer 16:30 EDT is closed", time.Date(2026, 7, 15, 20, 30, 0, 0, time.UTC), false},
		{"summer 15:59 EDT is open", time.Date(2026, 7, 15, 19, 59, 0, 0, time.UTC), true},
		{"winter 09:30 EST is open", time.Date(2026, 1, 6, 14, 30, 0, 0, time.UTC), true},
		{"winter 16:00 EST is closed", time.Date(2026, 1, 6, 21, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.open, IsMarketOpen(tt.utc))
		})
	}
}

func TestIsTradingDay(t *testing.T) {
	assert.True(t, IsTradingDay(et(2026, 3, 3, 0, 0)))
	assert.False(t, IsTradingDay(et(2026, 3, 7, 0, 0)))
	assert.False(t, IsTradingDay(et(2026, 7, 3, 0, 0)), "observed holiday")
}

func TestNextOpen(t *testing.T) {
	t.Run("before open same day", func(t *testing.T) {
		next := NextOpen(et(2026, 3, 3, 8, 0))
		assert.Equal(t, et(2026, 3, 3, 9, 30), next)
	})

	t.Run("after close rolls to next day", func(t *testing.T) {
		next := NextOpen(et(2026, 3, 3, 17, 0))
		assert.Equal(t, et(2026, 3, 4, 9, 30), next)
	})

	t.Run("friday evening rolls over the weekend", func(t *testing.T) {
		next := NextOpen(et(2026, 3, 6, 17, 0))
		assert.Equal(t, et(2026, 3, 9, 9, 30), next)
	})

	t.Run("holiday skipped", func(t *testing.T) {
		// July 2 2026 is a Thursday; July 3 is the observed holiday.
		next := NextOpen(et(2026, 7, 2, 17, 0))
		assert.Equal(t, et(2026, 7, 6, 9, 30), next)
	})
}
