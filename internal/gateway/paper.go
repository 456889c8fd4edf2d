package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrInsufficientCash rejects a buy whose notional exceeds available cash.
	ErrInsufficientCash = errors.New("insufficient cash for order")

	errBadOrder = errors.New("order quantity and price must be positive")
)

const cashEpsilon = 1e-9

// PaperGateway simulates fills against a virtual cash balance so the engine
// runs end-to-end without a broker. Orders fill immediately at the limit
// price.
type PaperGateway struct {
	mu          sync.Mutex
	cash        float64
	nextOrderID int64
	log         zerolog.Logger
}

// NewPaperGateway starts the simulated account with the given cash.
func NewPaperGateway(startingCash float64, logger zerolog.Logger) *PaperGateway {
	return &PaperGateway{cash: startingCash, nextOrderID: 1, log: logger}
}

// Cash returns the remaining virtual balance.
func (g *PaperGateway) Cash() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cash
}

func (g *PaperGateway) OpenPosition(ctx context.Context, symbol string, quantity, limitPrice float64) (OrderResult, error) {
	if quantity <= 0 || limitPrice <= 0 {
		return OrderResult{}, errBadOrder
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	notional := quantity * limitPrice
	if notional > g.cash+cashEpsilon {
		return OrderResult{}, fmt.Errorf("%w: need %.2f, have %.2f", ErrInsufficientCash, notional, g.cash)
	}
	g.cash -= notional

	res := g.fill(symbol, "buy", quantity, limitPrice)
	g.log.Info().Str("symbol", symbol).Float64("qty", quantity).Float64("price", limitPrice).Msg("paper buy filled")
	return res, nil
}

func (g *PaperGateway) ClosePosition(ctx context.Context, symbol string, quantity, limitPrice float64) (OrderResult, error) {
	if quantity <= 0 || limitPrice <= 0 {
		return OrderResult{}, errBadOrder
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.cash += quantity * limitPrice
	res := g.fill(symbol, "sell", quantity, limitPrice)
	g.log.Info().Str("symbol", symbol).Float64("qty", quantity).Float64("price", limitPrice).Msg("paper sell filled")
	return res, nil
}

func (g *PaperGateway) fill(symbol, side string, quantity, price float64) OrderResult {
	id := g.nextOrderID
	g.nextOrderID++
	return OrderResult{
		OrderID:  fmt.Sprintf("paper-%d", id),
		Symbol:   symbol,
		Side:     side,
		Quantity: quantity,
		AvgPrice: price,
		Time:     time.Now().UTC(),
	}
}
