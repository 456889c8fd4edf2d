// Package candle defines the OHLCV bar type shared by feeds and indicators.
package candle

import (
	"errors"
	"sort"
	"time"
)

// Candle is a single OHLCV bar for a symbol. Immutable once produced.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	Symbol    string    `json:"symbol"`
}

// Validate checks that a candle carries usable data. Bars with null or
// non-positive closes are rejected at construction instead of being
// filtered downstream.
func (c *Candle) Validate() error {
	if c.Timestamp.IsZero() {
		return errors.New("candle timestamp is zero")
	}
	if c.Symbol == "" {
		return errors.New("candle symbol cannot be empty")
	}
	if c.Open <= 0 || c.High <= 0 || c.Low <= 0 || c.Close <= 0 {
		return errors.New("candle prices must be positive")
	}
	if c.High < c.Low {
		return errors.New("candle high cannot be less than low")
	}
	if c.Open < c.Low || c.Open > c.High {
		return errors.New("candle open price must be between high and low")
	}
	if c.Close < c.Low || c.Close > c.High {
		return errors.New("candle close price must be between high and low")
	}
	if c.Volume < 0 {
		return errors.New("candle volume cannot be negative")
	}
	return nil
}

// SortByTime orders candles chronologically in place.
func SortByTime(candles []Candle) {
	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Timestamp.Before(candles[j].Timestamp)
	})
}

// Closes extracts the close series from an ordered slice of candles.
func Closes(candles []Candle) []float64 {
	closes := make([]float64, 0, len(candles))
	for i := range candles {
		closes = append(closes, candles[i].Close)
	}
	return closes
}

// Dedupe drops candles that repeat an already-seen timestamp, keeping the
// first occurrence. Input must be sorted.
func Dedupe(candles []Candle) []Candle {
	if len(candles) < 2 {
		return candles
	}
	out := candles[:1]
	for _, c := range candles[1:] {
		if !c.Timestamp.Equal(out[len(out)-1].Timestamp) {
			out = append(out, c)
		}
	}
	return out
}
