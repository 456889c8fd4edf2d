// Package gateway abstracts order execution. A failed open never creates a
// position record; a failed close leaves the position open for retry on the
// next cycle.
package gateway

import (
	"context"
	"time"
)

// OrderResult is the fill confirmation for a submitted order.
type OrderResult struct {
	OrderID  string
	Symbol   string
	Side     string
	Quantity float64
	AvgPrice float64
	Time     time.Time
}

// OrderGateway places entry and exit orders with a broker or simulator.
type OrderGateway interface {
	OpenPosition(ctx context.Context, symbol string, quantity, limitPrice float64) (OrderResult, error)
	ClosePosition(ctx context.Context, symbol string, quantity, limitPrice float64) (OrderResult, error)
}
