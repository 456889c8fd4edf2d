package strategy

import (
	"math"

	"github.com/arashn/stockscan/internal/indicator"
)

// OversoldBreakout fires a long entry when the RSI crosses down through the
// oversold threshold while the close sits under the lower Bollinger Band.
//
// This is an edge trigger, not a level trigger: the previous RSI must have
// been at or above the threshold, so the signal fires exactly once per
// crossing even if the oversold condition persists for many bars.
type OversoldBreakout struct {
	Oversold float64
}

// NewOversoldBreakout builds the rule with the given RSI threshold
// (30 in the reference configuration).
func NewOversoldBreakout(oversold float64) *OversoldBreakout {
	return &OversoldBreakout{Oversold: oversold}
}

func (r *OversoldBreakout) Name() string { return "oversold-breakout" }

// Evaluate returns an EntryLong signal when the crossing condition holds on
// a fresh reading. Stale readings and readings with no prior snapshot never
// fire.
func (r *OversoldBreakout) Evaluate(symbol string, reading indicator.Reading) (Signal, bool) {
	if !reading.Fresh || reading.Previous == nil {
		return Signal{}, false
	}

	curr, prev := reading.Current, reading.Previous
	if math.IsNaN(curr.RSI) || math.IsNaN(prev.RSI) || math.IsNaN(curr.BollLower) {
		return Signal{}, false
	}

	crossedDown := curr.RSI < r.Oversold && prev.RSI >= r.Oversold
	underBand := curr.Close < curr.BollLower
	if !crossedDown || !underBand {
		return Signal{}, false
	}

	return Signal{
		Symbol:       symbol,
		Position:     EntryLong,
		Reason:       "RSI crossed oversold with close below lower band",
		TriggerPrice: curr.Close,
		Time:         curr.AsOf,
	}, true
}
