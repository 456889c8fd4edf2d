package gateway

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaperGateway(t *testing.T) {
	ctx := context.Background()

	t.Run("buy debits cash and fills at limit", func(t *testing.T) {
		g := NewPaperGateway(10_000, zerolog.Nop())

		res, err := g.OpenPosition(ctx, "AAPL", 40, 50)
		require.NoError(t, err)

		assert.Equal(t, "paper-1", res.OrderID)
		assert.Equal(t, "buy", res.Side)
		assert.Equal(t, 50.0, res.AvgPrice)
		assert.InDelta(t, 8_000, g.Cash(), 1e-9)
	})

	t.Run("buy over balance rejected without debit", func(t *testing.T) {
		g := NewPaperGateway(1_000, zerolog.Nop())

		_, err := g.OpenPosition(ctx, "AAPL", 40, 50)
		require.ErrorIs(t, err, ErrInsufficientCash)
		assert.InDelta(t, 1_000, g.Cash(), 1e-9)
	})

	t.Run("sell credits cash", func(t *testing.T) {
		g := NewPaperGateway(10_000, zerolog.Nop())
		_, err := g.OpenPosition(ctx, "AAPL", 40, 50)
		require.NoError(t, err)

		res, err := g.ClosePosition(ctx, "AAPL", 40, 45)
		require.NoError(t, err)

		assert.Equal(t, "sell", res.Side)
		assert.InDelta(t, 9_800, g.Cash(), 1e-9)
	})

	t.Run("order ids are sequential", func(t *testing.T) {
		g := NewPaperGateway(10_000, zerolog.Nop())
		a, err := g.OpenPosition(ctx, "AAPL", 1, 1)
		require.NoError(t, err)
		b, err := g.OpenPosition(ctx, "MSFT", 1, 1)
		require.NoError(t, err)
		assert.Equal(t, "paper-1", a.OrderID)
		assert.Equal(t, "paper-2", b.OrderID)
	})

	t.Run("invalid orders rejected", func(t *testing.T) {
		g := NewPaperGateway(10_000, zerolog.Nop())
		_, err := g.OpenPosition(ctx, "AAPL", 0, 50)
		assert.Error(t, err)
		_, err = g.ClosePosition(ctx, "AAPL", 40, -1)
		assert.Error(t, err)
	})
}
