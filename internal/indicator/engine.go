package indicator

import (
	"sync"
	"time"
)

// Snapshot captures the indicator values for one symbol as of one bar.
type Snapshot struct {
	RSI       float64
	BollUpper float64
	BollMid   float64
	BollLower float64
	Close     float64
	AsOf      time.Time
}

// Reading pairs the current snapshot with the one from the prior cycle.
// Previous is nil on the very first observation of a symbol when the price
// window is too short to derive one.
type Reading struct {
	Current  Snapshot
	Previous *Snapshot

	// Fresh reports whether Current advanced this cycle. A repeated bar
	// (feed returned no new data) leaves the stored pair untouched so a
	// crossing cannot re-fire on stale input.
	Fresh bool
}

type snapshotPair struct {
	current  Snapshot
	previous *Snapshot
}

// Engine recomputes indicators over a rolling close window and retains
// exactly two consecutive snapshots per symbol. Deterministic: the same
// window always yields the same snapshot; the pair rotation is the only
// state kept across calls.
type Engine struct {
	rsiPeriod  int
	bollPeriod int
	stdDevMult float64

	mu    sync.Mutex
	pairs map[string]*snapshotPair
}

// NewEngine builds an engine with the given RSI and Bollinger periods.
func NewEngine(rsiPeriod, bollPeriod int, stdDevMult float64) *Engine {
	return &Engine{
		rsiPeriod:  rsiPeriod,
		bollPeriod: bollPeriod,
		stdDevMult: stdDevMult,
		pairs:      make(map[string]*snapshotPair),
	}
}

// WindowSize is the minimum number of closes Observe needs.
func (e *Engine) WindowSize() int {
	if e.rsiPeriod+1 > e.bollPeriod {
		return e.rsiPeriod + 1
	}
	return e.bollPeriod
}

// Observe recomputes indicators from the close window and rotates the stored
// snapshot pair: current becomes previous exactly once per advancing bar.
// asOf identifies the latest bar; calling Observe again with the same asOf
// returns the stored pair unchanged with Fresh=false.
func (e *Engine) Observe(symbol string, closes []float64, asOf time.Time) (Reading, error) {
	if len(closes) < e.WindowSize() {
		return Reading{}, ErrInsufficientHistory
	}

	rsiSeries, err := CalculateRSI(closes, e.rsiPeriod)
	if err != nil {
		return Reading{}, err
	}
	bandSeries, err := CalculateBollinger(closes, e.bollPeriod, e.stdDevMult)
	if err != nil {
		return Reading{}, err
	}

	last := len(closes) - 1
	curr := Snapshot{
		RSI:       rsiSeries[last],
		BollUpper: bandSeries[last].Upper,
		BollMid:   bandSeries[last].Middle,
		BollLower: bandSeries[last].Lower,
		Close:     closes[last],
		AsOf:      asOf,
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	pair, seen := e.pairs[symbol]
	if seen && pair.current.AsOf.Equal(asOf) {
		return Reading{Current: pair.current, Previous: pair.previous, Fresh: false}, nil
	}

	var prev *Snapshot
	if seen {
		rotated := pair.current
		prev = &rotated
	} else if last-1 >= e.rsiPeriod-1 && last-1 >= e.bollPeriod-1 {
		// First sighting of the symbol: derive the prior snapshot from the
		// bar before the latest so a crossing on the newest bar is still
		// detectable from a single batch of history.
		prev = &Snapshot{
			RSI:       rsiSeries[last-1],
			BollUpper: bandSeries[last-1].Upper,
			BollMid:   bandSeries[last-1].Middle,
			BollLower: bandSeries[last-1].Lower,
			Close:     closes[last-1],
		}
	}

	e.pairs[symbol] = &snapshotPair{current: curr, previous: prev}
	return Reading{Current: curr, Previous: prev, Fresh: true}, nil
}

// Forget drops the stored snapshots for a symbol.
func (e *Engine) Forget(symbol string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.pairs, symbol)
}
