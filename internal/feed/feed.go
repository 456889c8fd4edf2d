// Package feed defines the market-data collaborators the scanner consumes.
// The core engine never performs I/O itself; everything arrives through
// these interfaces.
package feed

import (
	"context"
	"errors"
	"time"

	"github.com/arashn/stockscan/internal/candle"
	"github.com/arashn/stockscan/internal/ranker"
)

// ErrUnavailable signals a transient collaborator failure: a quote that
// could not be fetched, an empty chain, an unreachable endpoint. Callers
// skip the affected symbol for the cycle and continue.
var ErrUnavailable = errors.New("feed data unavailable")

// PriceFeed supplies historical bars and live quotes.
type PriceFeed interface {
	// RecentBars returns up to lookback chronological bars at the given
	// interval, oldest first.
	RecentBars(ctx context.Context, symbol string, lookback int, interval time.Duration) ([]candle.Candle, error)

	// CurrentPrice returns the latest trade price, or ErrUnavailable.
	CurrentPrice(ctx context.Context, symbol string) (float64, error)
}

// UniverseFeed supplies the symbol universe to scan.
type UniverseFeed interface {
	// TrendingSymbols returns the currently trending/gaining tickers.
	TrendingSymbols(ctx context.Context) ([]string, error)

	// Membership returns the constituents of a named set, e.g. "sp500".
	Membership(ctx context.Context, setName string) (map[string]struct{}, error)
}

// CandidateFeed supplies option contracts expiring on the current trading
// day. An empty slice means nothing expires today.
type CandidateFeed interface {
	TodayExpiring(ctx context.Context, underlying string) ([]ranker.Candidate, error)
}
