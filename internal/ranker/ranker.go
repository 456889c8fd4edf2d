// Package ranker scores and orders option candidates by risk/reward.
package ranker

import (
	"errors"
	"math"
	"sort"
	"time"
)

// Side is the option contract side.
type Side string

const (
	Call Side = "call"
	Put  Side = "put"
)

// Candidate is a scoreable option contract derived from an underlying.
type Candidate struct {
	Underlying     string    `json:"underlying"`
	ContractSymbol string    `json:"contract_symbol"`
	Side           Side      `json:"side"`
	Strike         float64   `json:"strike"`
	Expiry         time.Time `json:"expiry"`
	Premium        float64   `json:"premium"`
	Delta          float64   `json:"delta"`
	ImpliedVol     float64   `json:"implied_vol"`
}

// Validate rejects contracts that cannot be scored.
func (c *Candidate) Validate() error {
	if c.Underlying == "" || c.ContractSymbol == "" {
		return errors.New("candidate symbol fields cannot be empty")
	}
	if c.Side != Call && c.Side != Put {
		return errors.New("candidate side must be call or put")
	}
	if c.Strike <= 0 {
		return errors.New("candidate strike must be positive")
	}
	if c.Premium < 0 {
		return errors.New("candidate premium cannot be negative")
	}
	return nil
}

// Opportunity is a candidate that passed filtering, with its score attached.
type Opportunity struct {
	Candidate
	RiskReward float64 `json:"risk_reward"`
}

// Ranker filters candidates to a delta band and orders the survivors by a
// heuristic risk/reward ratio. The score is a ranking key, not a priced
// expectation.
type Ranker struct {
	MinDelta      float64
	MaxDelta      float64
	MinRiskReward float64

	// MoveFraction scales the call-side reward estimate: reward is the
	// premium captured if the underlying moves MoveFraction of one implied
	// volatility. The underlying price is always supplied by the caller,
	// never back-derived from the option quote.
	MoveFraction float64
}

// New builds a ranker; zero MoveFraction falls back to the 10% default.
func New(minDelta, maxDelta, minRiskReward, moveFraction float64) Ranker {
	if moveFraction <= 0 {
		moveFraction = 0.10
	}
	return Ranker{
		MinDelta:      minDelta,
		MaxDelta:      maxDelta,
		MinRiskReward: minRiskReward,
		MoveFraction:  moveFraction,
	}
}

// FilterByDelta keeps candidates whose absolute delta lies inside
// [MinDelta, MaxDelta]. Deltas are signed by side, so the absolute value is
// compared.
func (r Ranker) FilterByDelta(candidates []Candidate) []Candidate {
	kept := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		d := math.Abs(c.Delta)
		if d >= r.MinDelta && d <= r.MaxDelta {
			kept = append(kept, c)
		}
	}
	return kept
}

// Score computes the risk/reward ratio for one candidate. Risk is the
// premium paid. Reward is an upper-bound estimate: for calls, the value of a
// MoveFraction-of-one-IV move in the underlying; for puts, strike minus
// premium floored at zero. A zero premium scores zero rather than infinity.
func (r Ranker) Score(c Candidate, underlyingPrice float64) float64 {
	if c.Premium <= 0 {
		return 0
	}

	var reward float64
	switch c.Side {
	case Call:
		reward = c.ImpliedVol * underlyingPrice * r.MoveFraction
	case Put:
		reward = c.Strike - c.Premium
		if reward < 0 {
			reward = 0
		}
	}

	return reward / c.Premium
}

// Rank filters by delta band and minimum ratio, then sorts descending by
// risk/reward. Ties break toward the lower absolute delta: prefer the
// cheaper optionality.
func (r Ranker) Rank(candidates []Candidate, underlyingPrice float64) []Opportunity {
	opportunities := make([]Opportunity, 0, len(candidates))
	for _, c := range r.FilterByDelta(candidates) {
		ratio := r.Score(c, underlyingPrice)
		if ratio < r.MinRiskReward {
			continue
		}
		opportunities = append(opportunities, Opportunity{Candidate: c, RiskReward: ratio})
	}

	sort.SliceStable(opportunities, func(i, j int) bool {
		if opportunities[i].RiskReward != opportunities[j].RiskReward {
			return opportunities[i].RiskReward > opportunities[j].RiskReward
		}
		return math.Abs(opportunities[i].Delta) < math.Abs(opportunities[j].Delta)
	})

	return opportunities
}
