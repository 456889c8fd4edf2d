package candle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func bar(ts time.Time, close float64) Candle {
	return Candle{Timestamp: ts, Open: close, High: close, Low: close, Close: close, Symbol: "AAPL"}
}

func TestValidate(t *testing.T) {
	ts := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)
	valid := Candle{Timestamp: ts, Open: 10, High: 12, Low: 9, Close: 11, Volume: 100, Symbol: "AAPL"}

	tests := []struct {
		name    string
		mutate  func(*Candle)
		wantErr bool
	}{
		{"valid", func(c *Candle) {}, false},
		{"zero timestamp", func(c *Candle) { c.Timestamp = time.Time{} }, true},
		{"empty symbol", func(c *Candle) { c.Symbol = "" }, true},
		{"zero close", func(c *Candle) { c.Close = 0 }, true},
		{"high below low", func(c *Candle) { c.High = 8 }, true},
		{"open outside range", func(c *Candle) { c.Open = 13 }, true},
		{"close outside range", func(c *Candle) { c.Close = 8 }, true},
		{"negative volume", func(c *Candle) { c.Volume = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSortAndDedupe(t *testing.T) {
	t0 := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)
	t1 := t0.Add(5 * time.Minute)
	t2 := t0.Add(10 * time.Minute)

	candles := []Candle{bar(t2, 12), bar(t0, 10), bar(t1, 11)}
	SortByTime(candles)

	assert.Equal(t, []float64{10, 11, 12}, Closes(candles))
	assert.Equal(t, candles, Dedupe(candles), "no duplicates is a no-op")
}

func TestDedupeKeepsFirstOccurrence(t *testing.T) {
	t0 := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)
	candles := []Candle{bar(t0, 10), bar(t0, 99)}
	deduped := Dedupe(candles)
	assert.Len(t, deduped, 1)
	assert.Equal(t, 10.0, deduped[0].Close)
}
