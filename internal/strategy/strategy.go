// Package strategy evaluates indicator readings into entry signals.
package strategy

import (
	"time"

	"github.com/arashn/stockscan/internal/indicator"
)

type Position int8

const (
	Hold       Position = 0
	EntryLong  Position = 1
	EntryShort Position = -1
)

func (p Position) String() string {
	switch p {
	case EntryLong:
		return "entry_long"
	case EntryShort:
		return "entry_short"
	default:
		return "hold"
	}
}

// Signal is a one-shot trade trigger. It is produced and consumed within a
// single scan cycle and never persisted.
type Signal struct {
	Symbol       string    `json:"symbol"`
	Position     Position  `json:"position"`
	Reason       string    `json:"reason"`
	TriggerPrice float64   `json:"trigger_price"`
	Time         time.Time `json:"time"`
}

// Rule turns an indicator reading into at most one signal. Implementations
// must be side-effect free.
type Rule interface {
	Name() string
	Evaluate(symbol string, reading indicator.Reading) (Signal, bool)
}
