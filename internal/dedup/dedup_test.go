package dedup

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	known    map[string]struct{}
	loadErr  error
	saveErr  error
	saveCall int
}

func (f *fakeBackend) LoadKnownSymbols(ctx context.Context) (map[string]struct{}, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.known, nil
}

func (f *fakeBackend) SaveKnownSymbols(ctx context.Context, symbols map[string]struct{}) error {
	f.saveCall++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.known = symbols
	return nil
}

func set(symbols ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		m[s] = struct{}{}
	}
	return m
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	log := zerolog.Nop()

	t.Run("seeds from backend", func(t *testing.T) {
		store := Load(ctx, &fakeBackend{known: set("AAPL", "MSFT")}, log)
		assert.Equal(t, 2, store.Len())
		assert.True(t, store.Contains("AAPL"))
	})

	t.Run("load failure starts empty", func(t *testing.T) {
		store := Load(ctx, &fakeBackend{loadErr: errors.New("db down")}, log)
		assert.Equal(t, 0, store.Len())
	})
}

func TestDelta(t *testing.T) {
	ctx := context.Background()
	store := Load(ctx, &fakeBackend{known: set("AAPL")}, zerolog.Nop())

	fresh := store.Delta(set("AAPL", "TSLA", "NVDA"))
	assert.Equal(t, []string{"NVDA", "TSLA"}, fresh, "new items only, sorted")

	assert.Empty(t, store.Delta(set("AAPL")))
	assert.Empty(t, store.Delta(nil))
}

func TestCommit(t *testing.T) {
	ctx := context.Background()
	log := zerolog.Nop()

	t.Run("committed items stop appearing in delta", func(t *testing.T) {
		backend := &fakeBackend{}
		store := Load(ctx, backend, log)

		require.NoError(t, store.Commit(ctx, []string{"TSLA", "NVDA"}))
		assert.True(t, store.Contains("TSLA"))
		assert.Empty(t, store.Delta(set("TSLA", "NVDA")))
		assert.Contains(t, backend.known, "TSLA", "commit persisted to the backend")
	})

	t.Run("empty commit skips the backend", func(t *testing.T) {
		backend := &fakeBackend{}
		store := Load(ctx, backend, log)
		require.NoError(t, store.Commit(ctx, nil))
		assert.Equal(t, 0, backend.saveCall)
	})

	t.Run("save failure keeps items uncommitted", func(t *testing.T) {
		backend := &fakeBackend{saveErr: errors.New("disk full")}
		store := Load(ctx, backend, log)

		err := store.Commit(ctx, []string{"TSLA"})
		require.ErrorIs(t, err, ErrPersistence)

		assert.False(t, store.Contains("TSLA"))
		assert.Equal(t, []string{"TSLA"}, store.Delta(set("TSLA")), "uncommitted item re-announced next cycle")

		backend.saveErr = nil
		require.NoError(t, store.Commit(ctx, []string{"TSLA"}))
		assert.True(t, store.Contains("TSLA"))
	})
}
