package position

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Exit is a pending exit decision: a position whose trigger fired this cycle
// together with the price that fired it. The position is still OPEN; the
// caller transitions it with Manager.Close once the closing order succeeded.
type Exit struct {
	Position Position
	Status   Status
	Price    float64
}

// Manager owns the set of open positions. At most one OPEN position exists
// per symbol; a new entry for a previously traded symbol gets a new ID.
type Manager struct {
	mu     sync.Mutex
	open   map[string]*Position
	closed []Position
	nextID int64
	log    zerolog.Logger
	now    func() time.Time
}

// NewManager builds an empty manager.
func NewManager(logger zerolog.Logger) *Manager {
	return &Manager{
		open:   make(map[string]*Position),
		nextID: 1,
		log:    logger,
		now:    time.Now,
	}
}

// Open creates an OPEN position with percentage stop and target levels:
// stop = entry*(1-stopPct), target = entry*(1+targetPct). A zero percentage
// disables the corresponding trigger.
func (m *Manager) Open(symbol string, entryPrice, quantity, stopPct, targetPct float64) (Position, error) {
	var stop, target float64
	if stopPct > 0 {
		stop = entryPrice * (1 - stopPct)
	}
	if targetPct > 0 {
		target = entryPrice * (1 + targetPct)
	}
	return m.create(Position{
		Symbol:          symbol,
		EntryPrice:      entryPrice,
		Quantity:        quantity,
		EntryValue:      entryPrice * quantity,
		StopLossPrice:   stop,
		TakeProfitPrice: target,
	})
}

// OpenNotional creates an OPEN position sized to a fixed notional with an
// absolute loss-cut threshold instead of percentage levels: quantity is
// notional/price and the position closes when its value has lost
// lossThreshold from entry.
func (m *Manager) OpenNotional(symbol string, entryPrice, notional, lossThreshold float64) (Position, error) {
	return m.create(Position{
		Symbol:        symbol,
		EntryPrice:    entryPrice,
		Quantity:      notional / entryPrice,
		EntryValue:    notional,
		LossThreshold: lossThreshold,
	})
}

func (m *Manager) create(p Position) (Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, held := m.open[p.Symbol]; held {
		return Position{}, ErrDuplicateSymbol
	}

	p.ID = m.nextID
	m.nextID++
	p.EntryTime = m.now()
	p.Status = StatusOpen

	m.open[p.Symbol] = &p
	m.log.Info().
		Int64("id", p.ID).
		Str("symbol", p.Symbol).
		Float64("entry", p.EntryPrice).
		Float64("qty", p.Quantity).
		Msg("position opened")
	return p, nil
}

// PendingExits checks every OPEN position against the supplied prices and
// returns those whose exit condition fired, without transitioning them.
// Positions with no price this cycle are left untouched; missing data never
// forces a close.
func (m *Manager) PendingExits(prices map[string]float64) []Exit {
	m.mu.Lock()
	defer m.mu.Unlock()

	var exits []Exit
	for symbol, p := range m.open {
		price, ok := prices[symbol]
		if !ok {
			continue
		}
		if status := p.ExitStatus(price); status.Closed() {
			exits = append(exits, Exit{Position: *p, Status: status, Price: price})
		}
	}
	return exits
}

// Close transitions the OPEN position for symbol into the given terminal
// status. The entry fields are not rewritten.
func (m *Manager) Close(symbol string, status Status, exitPrice float64) (Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, held := m.open[symbol]
	if !held {
		return Position{}, ErrNotOpen
	}

	p.Status = status
	p.ExitPrice = exitPrice
	p.ExitTime = m.now()

	delete(m.open, symbol)
	m.closed = append(m.closed, *p)
	m.log.Info().
		Int64("id", p.ID).
		Str("symbol", p.Symbol).
		Str("status", string(status)).
		Float64("exit", exitPrice).
		Msg("position closed")
	return *p, nil
}

// EvaluateExits transitions every OPEN position whose exit condition fires
// against the supplied prices, returning the closed positions. This is the
// direct (simulated) path; gateway-coordinated closes use PendingExits and
// Close separately so a failed order leaves the position OPEN.
func (m *Manager) EvaluateExits(prices map[string]float64) []Position {
	var closed []Position
	for _, exit := range m.PendingExits(prices) {
		p, err := m.Close(exit.Position.Symbol, exit.Status, exit.Price)
		if err != nil {
			continue
		}
		closed = append(closed, p)
	}
	return closed
}

// HasOpen reports whether symbol has an OPEN position.
func (m *Manager) HasOpen(symbol string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, held := m.open[symbol]
	return held
}

// Get returns the OPEN position for symbol.
func (m *Manager) Get(symbol string) (Position, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, held := m.open[symbol]
	if !held {
		return Position{}, false
	}
	return *p, true
}

// OpenPositions returns a copy of all OPEN positions.
func (m *Manager) OpenPositions() []Position {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Position, 0, len(m.open))
	for _, p := range m.open {
		out = append(out, *p)
	}
	return out
}

// ClosedPositions returns a copy of all positions closed this process.
func (m *Manager) ClosedPositions() []Position {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Position, len(m.closed))
	copy(out, m.closed)
	return out
}

// Restore reloads previously persisted OPEN positions, typically at startup.
// The ID counter advances past the highest restored ID so new entries never
// collide.
func (m *Manager) Restore(positions []Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range positions {
		if p.Status != StatusOpen {
			continue
		}
		if _, held := m.open[p.Symbol]; held {
			return ErrDuplicateSymbol
		}
		restored := p
		m.open[p.Symbol] = &restored
		if p.ID >= m.nextID {
			m.nextID = p.ID + 1
		}
	}
	return nil
}
