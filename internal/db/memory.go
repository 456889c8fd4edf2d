package db

import (
	"context"
	"sync"
	"time"

	"github.com/arashn/stockscan/internal/journal"
	"github.com/arashn/stockscan/internal/position"
)

// MemoryStorage is an in-process Storage used for tests and for running the
// scanner without a database. State does not survive a restart.
type MemoryStorage struct {
	mu sync.RWMutex

	known     map[string]struct{}
	positions map[int64]position.Position
	events    []journal.Event
}

func NewMemory() *MemoryStorage {
	return &MemoryStorage{
		known:     make(map[string]struct{}),
		positions: make(map[int64]position.Position),
		events:    make([]journal.Event, 0, 256),
	}
}

func (m *MemoryStorage) LoadKnownSymbols(ctx context.Context) (map[string]struct{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]struct{}, len(m.known))
	for sym := range m.known {
		out[sym] = struct{}{}
	}
	return out, nil
}

func (m *MemoryStorage) SaveKnownSymbols(ctx context.Context, symbols map[string]struct{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.known = make(map[string]struct{}, len(symbols))
	for sym := range symbols {
		m.known[sym] = struct{}{}
	}
	return nil
}

func (m *MemoryStorage) SavePosition(ctx context.Context, p position.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions[p.ID] = p
	return nil
}

func (m *MemoryStorage) UpdatePosition(ctx context.Context, p position.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions[p.ID] = p
	return nil
}

func (m *MemoryStorage) OpenPositions(ctx context.Context) ([]position.Position, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []position.Position
	for _, p := range m.positions {
		if p.Status == position.StatusOpen {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MemoryStorage) LogEvent(ctx context.Context, event journal.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MemoryStorage) Events(ctx context.Context, eventType string, start, end time.Time) ([]journal.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []journal.Event
	for _, e := range m.events {
		if eventType != "" && e.Type != eventType {
			continue
		}
		if e.Time.Before(start) || e.Time.After(end) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *MemoryStorage) Close() error { return nil }
