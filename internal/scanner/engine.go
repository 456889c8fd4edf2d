// Package scanner ties the indicator, signal, ranking, dedup, and position
// components together, one polling cycle at a time.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/arashn/stockscan/internal/candle"
	"github.com/arashn/stockscan/internal/db"
	"github.com/arashn/stockscan/internal/dedup"
	"github.com/arashn/stockscan/internal/feed"
	"github.com/arashn/stockscan/internal/gateway"
	"github.com/arashn/stockscan/internal/indicator"
	"github.com/arashn/stockscan/internal/journal"
	"github.com/arashn/stockscan/internal/markethours"
	"github.com/arashn/stockscan/internal/metrics"
	"github.com/arashn/stockscan/internal/notifier"
	"github.com/arashn/stockscan/internal/position"
	"github.com/arashn/stockscan/internal/ranker"
	"github.com/arashn/stockscan/internal/strategy"
)

// Config holds the engine's trading parameters. Reference values mirror the
// original scanner configuration.
type Config struct {
	// Equity scan.
	MembershipSet string  // universe filter, e.g. "sp500"; empty disables
	BuyNotional   float64 // dollars per equity entry (2000)
	LossThreshold float64 // absolute loss-cut per position (200)

	// 0DTE option scan.
	OptionUnderlyings []string
	StopLossPct       float64 // fraction of premium (0.50)
	TakeProfitPct     float64 // fraction of premium (1.50)
	MaxPositionValue  float64 // dollar cap per option position
	LimitPriceBuffer  float64 // limit order buffer over last price (0.05)

	// Indicator window.
	LookbackBars int           // 50
	BarInterval  time.Duration // 5m

	EnforceMarketHours bool
}

// Deps are the collaborators the engine consumes. Gateway may be nil, in
// which case exits and entries transition state directly (pure simulation).
type Deps struct {
	Indicators *indicator.Engine
	Rule       strategy.Rule
	Ranker     ranker.Ranker
	Dedup      *dedup.Store
	Positions  *position.Manager
	Prices     feed.PriceFeed
	Universe   feed.UniverseFeed
	Chains     feed.CandidateFeed
	Gateway    gateway.OrderGateway
	Notifier   notifier.Notifier
	Storage    db.Storage
	Logger     zerolog.Logger
}

// Engine owns all mutable scan state. The position set and known set are
// mutated only while holding mu; the monitor loop shares the same mutex so
// it never interleaves with a scan cycle in progress.
type Engine struct {
	mu   sync.Mutex
	cfg  Config
	deps Deps
	log  zerolog.Logger
	now  func() time.Time
}

// New wires an engine from its collaborators.
func New(cfg Config, deps Deps) *Engine {
	return &Engine{
		cfg:  cfg,
		deps: deps,
		log:  deps.Logger.With().Str("component", "scanner").Logger(),
		now:  time.Now,
	}
}

// Restore reloads persisted OPEN positions into the manager at startup.
func (e *Engine) Restore(ctx context.Context) error {
	open, err := e.deps.Storage.OpenPositions(ctx)
	if err != nil {
		return fmt.Errorf("loading open positions: %w", err)
	}
	if err := e.deps.Positions.Restore(open); err != nil {
		return fmt.Errorf("restoring open positions: %w", err)
	}
	metrics.OpenPositions.Set(float64(len(open)))
	e.log.Info().Int("count", len(open)).Msg("restored open positions")
	return nil
}

// ScanCycle runs one full cycle: refresh prices, evaluate exits, then
// evaluate new entries (equity and 0DTE), then record results. Exits always
// run before entries so losers are closed before new risk is sized.
func (e *Engine) ScanCycle(ctx context.Context) {
	if e.cfg.EnforceMarketHours && !markethours.IsMarketOpen(e.now()) {
		e.log.Debug().Msg("market closed, skipping scan cycle")
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.log.Info().Msg("scan cycle started")
	e.evaluateExits(ctx)
	e.scanEquities(ctx)
	e.scanOptions(ctx)
	metrics.ScanCyclesTotal.WithLabelValues("scan").Inc()
	e.log.Info().Msg("scan cycle completed")
}

// MonitorCycle evaluates exits only. It runs on a tighter interval than the
// main scan and blocks on the engine mutex until any in-flight cycle ends.
func (e *Engine) MonitorCycle(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.evaluateExits(ctx)
	metrics.ScanCyclesTotal.WithLabelValues("monitor").Inc()
}

// GainersCycle announces trending symbols not seen before and commits them
// to the known set. Announce happens before commit: if persistence fails the
// same symbols are re-announced next cycle rather than silently lost.
func (e *Engine) GainersCycle(ctx context.Context) {
	symbols, err := e.deps.Universe.TrendingSymbols(ctx)
	if err != nil {
		metrics.FeedErrorsTotal.WithLabelValues("universe").Inc()
		e.log.Warn().Err(err).Msg("trending fetch failed, no new data this cycle")
		return
	}

	current := make(map[string]struct{}, len(symbols))
	for _, sym := range symbols {
		current[sym] = struct{}{}
	}

	fresh := e.deps.Dedup.Delta(current)
	if len(fresh) == 0 {
		e.log.Debug().Int("tracked", len(symbols)).Msg("no new gainers")
		metrics.ScanCyclesTotal.WithLabelValues("gainers").Inc()
		return
	}

	e.announce(ctx, fmt.Sprintf("NEW DAY GAINERS DETECTED: %s", strings.Join(fresh, ", ")))
	e.journal(ctx, journal.TypeAlert, "new_gainers", map[string]any{"symbols": fresh})
	if err := e.deps.Dedup.Commit(ctx, fresh); err != nil {
		e.log.Error().Err(err).Msg("gainer commit deferred to next cycle")
	}
	metrics.ScanCyclesTotal.WithLabelValues("gainers").Inc()
}

// evaluateExits fetches a current price for every open position and closes
// those whose exit condition fired. A position with no price this cycle is
// left untouched. With a gateway attached, the closing order must succeed
// before the position transitions; a failed close leaves it OPEN for retry.
func (e *Engine) evaluateExits(ctx context.Context) {
	open := e.deps.Positions.OpenPositions()
	if len(open) == 0 {
		return
	}

	prices := make(map[string]float64, len(open))
	for _, p := range open {
		price, err := e.deps.Prices.CurrentPrice(ctx, p.Symbol)
		if err != nil {
			metrics.FeedErrorsTotal.WithLabelValues("price").Inc()
			e.log.Warn().Err(err).Str("symbol", p.Symbol).Msg("price unavailable, position untouched")
			continue
		}
		prices[p.Symbol] = price
	}

	for _, exit := range e.deps.Positions.PendingExits(prices) {
		sym := exit.Position.Symbol

		if e.deps.Gateway != nil {
			_, err := e.deps.Gateway.ClosePosition(ctx, sym, exit.Position.Quantity, exit.Price)
			if err != nil {
				e.journal(ctx, journal.TypeError, "close_order_failed", map[string]any{
					"symbol": sym, "error": err.Error(), "price": exit.Price,
				})
				e.log.Error().Err(err).Str("symbol", sym).Msg("close order failed, position stays open")
				continue
			}
		}

		closed, err := e.deps.Positions.Close(sym, exit.Status, exit.Price)
		if err != nil {
			continue
		}

		if err := e.deps.Storage.UpdatePosition(ctx, closed); err != nil {
			e.log.Error().Err(err).Int64("id", closed.ID).Msg("persisting closed position failed")
		}
		e.journal(ctx, journal.TypeOrder, "position_closed", map[string]any{
			"symbol": sym, "status": string(closed.Status), "exit_price": closed.ExitPrice,
		})
		metrics.PositionsClosed.WithLabelValues(string(closed.Status)).Inc()
		metrics.OpenPositions.Set(float64(len(e.deps.Positions.OpenPositions())))
		e.announce(ctx, fmt.Sprintf("Closed %s (%s) at %.2f", sym, closed.Status, closed.ExitPrice))
	}
}

// scanEquities walks the trending universe, restricted to the configured
// membership set, and opens a fixed-notional position for every symbol whose
// entry rule fires. Per-symbol failures are isolated: one bad symbol never
// aborts the cycle for the rest.
func (e *Engine) scanEquities(ctx context.Context) {
	trending, err := e.deps.Universe.TrendingSymbols(ctx)
	if err != nil {
		metrics.FeedErrorsTotal.WithLabelValues("universe").Inc()
		e.log.Warn().Err(err).Msg("trending fetch failed, no entries this cycle")
		return
	}

	var members map[string]struct{}
	if e.cfg.MembershipSet != "" {
		members, err = e.deps.Universe.Membership(ctx, e.cfg.MembershipSet)
		if err != nil {
			metrics.FeedErrorsTotal.WithLabelValues("universe").Inc()
			e.log.Warn().Err(err).Str("set", e.cfg.MembershipSet).Msg("membership fetch failed, no entries this cycle")
			return
		}
	}

	for _, sym := range trending {
		if members != nil {
			if _, ok := members[sym]; !ok {
				continue
			}
		}
		if e.deps.Positions.HasOpen(sym) || e.deps.Dedup.Contains(sym) {
			continue
		}
		e.evaluateEntry(ctx, sym)
	}
}

func (e *Engine) evaluateEntry(ctx context.Context, sym string) {
	bars, err := e.deps.Prices.RecentBars(ctx, sym, e.cfg.LookbackBars, e.cfg.BarInterval)
	if err != nil {
		metrics.FeedErrorsTotal.WithLabelValues("price").Inc()
		e.log.Warn().Err(err).Str("symbol", sym).Msg("bar fetch failed, symbol skipped")
		return
	}
	if len(bars) == 0 {
		return
	}

	reading, err := e.deps.Indicators.Observe(sym, candle.Closes(bars), bars[len(bars)-1].Timestamp)
	if err != nil {
		if errors.Is(err, indicator.ErrInsufficientHistory) {
			e.log.Debug().Str("symbol", sym).Int("bars", len(bars)).Msg("insufficient history, symbol skipped")
		} else {
			e.log.Warn().Err(err).Str("symbol", sym).Msg("indicator computation failed")
		}
		return
	}

	sig, fired := e.deps.Rule.Evaluate(sym, reading)
	if !fired {
		return
	}

	metrics.SignalsTotal.WithLabelValues(e.deps.Rule.Name()).Inc()
	e.journal(ctx, journal.TypeSignal, "entry_signal", map[string]any{
		"symbol": sym, "position": sig.Position.String(), "reason": sig.Reason, "price": sig.TriggerPrice,
	})
	e.log.Info().Str("symbol", sym).Float64("price", sig.TriggerPrice).Str("reason", sig.Reason).Msg("entry signal")

	e.openEquity(ctx, sig)
}

func (e *Engine) openEquity(ctx context.Context, sig strategy.Signal) {
	entryPrice := sig.TriggerPrice
	quantity := e.cfg.BuyNotional / entryPrice

	if e.deps.Gateway != nil {
		limit := entryPrice * (1 + e.cfg.LimitPriceBuffer)
		fill, err := e.deps.Gateway.OpenPosition(ctx, sig.Symbol, quantity, limit)
		if err != nil {
			e.journal(ctx, journal.TypeError, "entry_order_failed", map[string]any{
				"symbol": sig.Symbol, "error": err.Error(),
			})
			e.log.Error().Err(err).Str("symbol", sig.Symbol).Msg("entry order failed, no position created")
			return
		}
		// Record what actually filled. The limit buffer means the fill can
		// cost more than BuyNotional; the position must carry the real
		// quantity and exposure or the later close sells too few shares.
		entryPrice = fill.AvgPrice
		quantity = fill.Quantity
	}

	pos, err := e.deps.Positions.OpenNotional(sig.Symbol, entryPrice, entryPrice*quantity, e.cfg.LossThreshold)
	if err != nil {
		e.log.Warn().Err(err).Str("symbol", sig.Symbol).Msg("open rejected")
		return
	}
	e.recordOpen(ctx, pos, fmt.Sprintf("Bought %s at %.2f ($%.0f notional)", pos.Symbol, pos.EntryPrice, pos.EntryValue))
}

// scanOptions ranks today-expiring contracts per configured underlying and
// takes the best opportunity, with premium-based stop and target levels.
func (e *Engine) scanOptions(ctx context.Context) {
	for _, und := range e.cfg.OptionUnderlyings {
		cands, err := e.deps.Chains.TodayExpiring(ctx, und)
		if err != nil {
			metrics.FeedErrorsTotal.WithLabelValues("chain").Inc()
			e.log.Warn().Err(err).Str("underlying", und).Msg("chain fetch failed, underlying skipped")
			continue
		}
		if len(cands) == 0 {
			continue
		}

		undPrice, err := e.deps.Prices.CurrentPrice(ctx, und)
		if err != nil {
			metrics.FeedErrorsTotal.WithLabelValues("price").Inc()
			e.log.Warn().Err(err).Str("underlying", und).Msg("underlying quote failed, underlying skipped")
			continue
		}

		opps := e.deps.Ranker.Rank(cands, undPrice)
		if len(opps) == 0 {
			continue
		}

		best := opps[0]
		if e.deps.Positions.HasOpen(best.ContractSymbol) || e.deps.Dedup.Contains(best.ContractSymbol) {
			continue
		}
		e.log.Info().
			Str("contract", best.ContractSymbol).
			Float64("risk_reward", best.RiskReward).
			Float64("strike", best.Strike).
			Msg("best opportunity")
		e.openOption(ctx, best)
	}
}

func (e *Engine) openOption(ctx context.Context, opp ranker.Opportunity) {
	contractCost := opp.Premium * 100 // each contract covers 100 shares
	if contractCost <= 0 {
		return
	}
	contracts := int(e.cfg.MaxPositionValue / contractCost)
	if contracts < 1 {
		e.log.Warn().Str("contract", opp.ContractSymbol).Msg("position cap below one contract, skipped")
		return
	}

	quantity := float64(contracts) * 100
	entryPrice := opp.Premium

	if e.deps.Gateway != nil {
		limit := opp.Premium * (1 + e.cfg.LimitPriceBuffer)
		fill, err := e.deps.Gateway.OpenPosition(ctx, opp.ContractSymbol, quantity, limit)
		if err != nil {
			e.journal(ctx, journal.TypeError, "entry_order_failed", map[string]any{
				"symbol": opp.ContractSymbol, "error": err.Error(),
			})
			e.log.Error().Err(err).Str("contract", opp.ContractSymbol).Msg("entry order failed, no position created")
			return
		}
		entryPrice = fill.AvgPrice
	}

	pos, err := e.deps.Positions.Open(opp.ContractSymbol, entryPrice, quantity, e.cfg.StopLossPct, e.cfg.TakeProfitPct)
	if err != nil {
		e.log.Warn().Err(err).Str("contract", opp.ContractSymbol).Msg("open rejected")
		return
	}
	e.recordOpen(ctx, pos, fmt.Sprintf("Opened %d contract(s) of %s at %.2f (R/R %.2f)",
		contracts, pos.Symbol, pos.EntryPrice, opp.RiskReward))
}

func (e *Engine) recordOpen(ctx context.Context, pos position.Position, message string) {
	if err := e.deps.Storage.SavePosition(ctx, pos); err != nil {
		e.log.Error().Err(err).Int64("id", pos.ID).Msg("persisting position failed")
	}
	e.journal(ctx, journal.TypeOrder, "position_opened", map[string]any{
		"symbol": pos.Symbol, "entry_price": pos.EntryPrice, "quantity": pos.Quantity,
	})
	metrics.PositionsOpened.Inc()
	metrics.OpenPositions.Set(float64(len(e.deps.Positions.OpenPositions())))
	e.announce(ctx, message)

	if err := e.deps.Dedup.Commit(ctx, []string{pos.Symbol}); err != nil {
		e.log.Error().Err(err).Str("symbol", pos.Symbol).Msg("known-set commit deferred")
	}
}

// announce is best-effort: a failed notification is logged and counted,
// never propagated.
func (e *Engine) announce(ctx context.Context, message string) {
	if e.deps.Notifier == nil {
		return
	}
	if err := e.deps.Notifier.SendWithRetry(message); err != nil {
		metrics.AnnounceFailures.Inc()
		e.log.Warn().Err(err).Msg("announcement failed")
		e.journal(ctx, journal.TypeError, "notification_failed", map[string]any{"message": message, "error": err.Error()})
	}
}

func (e *Engine) journal(ctx context.Context, eventType, description string, data map[string]any) {
	err := e.deps.Storage.LogEvent(ctx, journal.Event{
		Time:        e.now(),
		Type:        eventType,
		Description: description,
		Data:        data,
	})
	if err != nil {
		e.log.Warn().Err(err).Str("event", description).Msg("journaling failed")
	}
}
