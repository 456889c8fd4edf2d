// Package db persists scanner state in Postgres or in memory.
package db

import (
	"context"

	"github.com/arashn/stockscan/internal/journal"
	"github.com/arashn/stockscan/internal/position"
)

// Storage is the interface for all persistent scanner state: the known-symbol
// set, position records, and the event journal.
type Storage interface {
	LoadKnownSymbols(ctx context.Context) (map[string]struct{}, error)
	SaveKnownSymbols(ctx context.Context, symbols map[string]struct{}) error

	SavePosition(ctx context.Context, p position.Position) error
	UpdatePosition(ctx context.Context, p position.Position) error
	OpenPositions(ctx context.Context) ([]position.Position, error)

	journal.Journaler

	Close() error
}
