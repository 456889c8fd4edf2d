// Package position tracks open trades and their exit conditions.
package position

import (
	"errors"
	"time"
)

// Status is the lifecycle state of a position. OPEN is the only non-terminal
// state; a closed position is never re-opened.
type Status string

const (
	StatusOpen          Status = "OPEN"
	StatusClosedStop    Status = "CLOSED_STOP"
	StatusClosedTarget  Status = "CLOSED_TARGET"
	StatusClosedLossCut Status = "CLOSED_LOSS_CUT"
)

// Closed reports whether the status is terminal.
func (s Status) Closed() bool { return s != StatusOpen }

var (
	// ErrDuplicateSymbol rejects an open for a symbol that already has an
	// OPEN position. The existing position is left untouched.
	ErrDuplicateSymbol = errors.New("open position already exists for symbol")

	// ErrNotOpen rejects a close for a symbol with no OPEN position.
	ErrNotOpen = errors.New("no open position for symbol")
)

// Position is a single exposure from entry to exit. Entry fields are fixed
// at creation; an exit sets only ExitPrice, ExitTime, and Status.
type Position struct {
	ID         int64     `json:"id"`
	Symbol     string    `json:"symbol"`
	EntryPrice float64   `json:"entry_price"`
	Quantity   float64   `json:"quantity"`
	EntryValue float64   `json:"entry_value"`
	EntryTime  time.Time `json:"entry_time"`

	// Exit levels. A zero level disables that trigger.
	StopLossPrice   float64 `json:"stop_loss_price"`
	TakeProfitPrice float64 `json:"take_profit_price"`

	// LossThreshold is the absolute notional loss that triggers the
	// loss-cut exit: close when currentValue <= EntryValue - LossThreshold.
	// Zero disables it.
	LossThreshold float64 `json:"loss_threshold"`

	Status    Status    `json:"status"`
	ExitPrice float64   `json:"exit_price,omitempty"`
	ExitTime  time.Time `json:"exit_time,omitempty"`
}

// CurrentValue marks the position to the given price.
func (p *Position) CurrentValue(price float64) float64 {
	return price * p.Quantity
}

// ExitStatus returns the terminal status the given price would trigger, or
// StatusOpen when no exit condition holds. Stop-loss wins when both stop and
// loss-cut would fire on the same tick.
func (p *Position) ExitStatus(price float64) Status {
	if p.StopLossPrice > 0 && price <= p.StopLossPrice {
		return StatusClosedStop
	}
	if p.TakeProfitPrice > 0 && price >= p.TakeProfitPrice {
		return StatusClosedTarget
	}
	if p.LossThreshold > 0 && p.CurrentValue(price) <= p.EntryValue-p.LossThreshold {
		return StatusClosedLossCut
	}
	return StatusOpen
}
