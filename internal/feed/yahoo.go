package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/arashn/stockscan/internal/candle"
	"github.com/arashn/stockscan/internal/ranker"
)

const (
	defaultQueryBase     = "https://query1.finance.yahoo.com"
	defaultMembershipURL = "https://raw.githubusercontent.com/datasets/s-and-p-500-companies/master/data/constituents.json"
	userAgent            = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// YahooFeed implements PriceFeed, UniverseFeed, and CandidateFeed against
// the public Yahoo Finance query endpoints. Constituent sets come from the
// public datasets mirror.
type YahooFeed struct {
	client         *http.Client
	queryBase      string
	membershipURLs map[string]string
	log            zerolog.Logger
}

// NewYahooFeed builds a feed with sane timeouts. baseURL overrides the query
// host for tests; empty means the public endpoint.
func NewYahooFeed(baseURL string, logger zerolog.Logger) *YahooFeed {
	if baseURL == "" {
		baseURL = defaultQueryBase
	}
	return &YahooFeed{
		client:         &http.Client{Timeout: 15 * time.Second},
		queryBase:      strings.TrimRight(baseURL, "/"),
		membershipURLs: map[string]string{"sp500": defaultMembershipURL},
		log:            logger,
	}
}

// SetMembershipURL registers or overrides the source URL for a named set.
func (y *YahooFeed) SetMembershipURL(setName, rawURL string) {
	y.membershipURLs[setName] = rawURL
}

func (y *YahooFeed) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := y.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %s", ErrUnavailable, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
	}
	return nil
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
	} `json:"chart"`
}

// RecentBars fetches the chart endpoint and converts it into validated
// candles, oldest first. Bars with null closes are dropped.
func (y *YahooFeed) RecentBars(ctx context.Context, symbol string, lookback int, interval time.Duration) ([]candle.Candle, error) {
	span := time.Duration(lookback) * interval
	days := int(span.Hours()/24) + 1

	u := fmt.Sprintf("%s/v8/finance/chart/%s?range=%dd&interval=%s",
		y.queryBase, url.PathEscape(symbol), days, intervalParam(interval))

	var parsed chartResponse
	if err := y.getJSON(ctx, u, &parsed); err != nil {
		return nil, fmt.Errorf("fetching bars for %s: %w", symbol, err)
	}
	if len(parsed.Chart.Result) == 0 || len(parsed.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: empty chart for %s", ErrUnavailable, symbol)
	}

	result := parsed.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	bars := make([]candle.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}
		c := candle.Candle{
			Timestamp: time.Unix(ts, 0).UTC(),
			Close:     *quote.Close[i],
			Symbol:    symbol,
		}
		if i < len(quote.Open) && quote.Open[i] != nil {
			c.Open = *quote.Open[i]
		} else {
			c.Open = c.Close
		}
		if i < len(quote.High) && quote.High[i] != nil {
			c.High = *quote.High[i]
		} else {
			c.High = c.Close
		}
		if i < len(quote.Low) && quote.Low[i] != nil {
			c.Low = *quote.Low[i]
		} else {
			c.Low = c.Close
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			c.Volume = *quote.Volume[i]
		}
		if err := c.Validate(); err != nil {
			continue
		}
		bars = append(bars, c)
	}

	candle.SortByTime(bars)
	bars = candle.Dedupe(bars)
	if len(bars) > lookback {
		bars = bars[len(bars)-lookback:]
	}
	return bars, nil
}

type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol             string  `json:"symbol"`
			RegularMarketPrice float64 `json:"regularMarketPrice"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

func (y *YahooFeed) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	u := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", y.queryBase, url.QueryEscape(symbol))

	var parsed quoteResponse
	if err := y.getJSON(ctx, u, &parsed); err != nil {
		return 0, fmt.Errorf("fetching quote for %s: %w", symbol, err)
	}
	if len(parsed.QuoteResponse.Result) == 0 || parsed.QuoteResponse.Result[0].RegularMarketPrice <= 0 {
		return 0, fmt.Errorf("%w: no quote for %s", ErrUnavailable, symbol)
	}
	return parsed.QuoteResponse.Result[0].RegularMarketPrice, nil
}

type trendingResponse struct {
	Finance struct {
		Result []struct {
			Quotes []struct {
				Symbol string `json:"symbol"`
			} `json:"quotes"`
		} `json:"result"`
	} `json:"finance"`
}

// TrendingSymbols returns the US trending tickers with exchange suffixes
// stripped, the way the upstream screener reports them.
func (y *YahooFeed) TrendingSymbols(ctx context.Context) ([]string, error) {
	u := y.queryBase + "/v1/finance/trending/US"

	var parsed trendingResponse
	if err := y.getJSON(ctx, u, &parsed); err != nil {
		return nil, fmt.Errorf("fetching trending symbols: %w", err)
	}
	if len(parsed.Finance.Result) == 0 {
		return nil, fmt.Errorf("%w: empty trending response", ErrUnavailable)
	}

	var symbols []string
	for _, q := range parsed.Finance.Result[0].Quotes {
		sym, _, _ := strings.Cut(q.Symbol, ".")
		if sym != "" && len(sym) <= 6 {
			symbols = append(symbols, sym)
		}
	}
	return symbols, nil
}

func (y *YahooFeed) Membership(ctx context.Context, setName string) (map[string]struct{}, error) {
	u, ok := y.membershipURLs[setName]
	if !ok {
		return nil, fmt.Errorf("%w: unknown membership set %q", ErrUnavailable, setName)
	}

	var rows []struct {
		Symbol string `json:"Symbol"`
	}
	if err := y.getJSON(ctx, u, &rows); err != nil {
		return nil, fmt.Errorf("fetching membership %s: %w", setName, err)
	}

	set := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if row.Symbol != "" {
			set[row.Symbol] = struct{}{}
		}
	}
	return set, nil
}

type optionChainResponse struct {
	OptionChain struct {
		Result []struct {
			ExpirationDates []int64 `json:"expirationDates"`
			Options         []struct {
				ExpirationDate int64           `json:"expirationDate"`
				Calls          []optionContract `json:"calls"`
				Puts           []optionContract `json:"puts"`
			} `json:"options"`
		} `json:"result"`
	} `json:"optionChain"`
}

type optionContract struct {
	ContractSymbol    string  `json:"contractSymbol"`
	Strike            float64 `json:"strike"`
	LastPrice         float64 `json:"lastPrice"`
	Delta             float64 `json:"delta"`
	ImpliedVolatility float64 `json:"impliedVolatility"`
}

// TodayExpiring fetches the chain for the expiry matching today's date.
// Returns an empty slice when nothing expires today.
func (y *YahooFeed) TodayExpiring(ctx context.Context, underlying string) ([]ranker.Candidate, error) {
	u := fmt.Sprintf("%s/v7/finance/options/%s", y.queryBase, url.PathEscape(underlying))

	var parsed optionChainResponse
	if err := y.getJSON(ctx, u, &parsed); err != nil {
		return nil, fmt.Errorf("fetching option chain for %s: %w", underlying, err)
	}
	if len(parsed.OptionChain.Result) == 0 {
		return nil, fmt.Errorf("%w: empty option chain for %s", ErrUnavailable, underlying)
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	var candidates []ranker.Candidate
	for _, opt := range parsed.OptionChain.Result[0].Options {
		expiry := time.Unix(opt.ExpirationDate, 0).UTC()
		if !expiry.Truncate(24 * time.Hour).Equal(today) {
			continue
		}
		for _, c := range opt.Calls {
			candidates = append(candidates, contractToCandidate(underlying, ranker.Call, expiry, c))
		}
		for _, p := range opt.Puts {
			candidates = append(candidates, contractToCandidate(underlying, ranker.Put, expiry, p))
		}
	}

	if len(candidates) == 0 {
		y.log.Debug().Str("underlying", underlying).Msg("no contracts expiring today")
	}
	return candidates, nil
}

func contractToCandidate(underlying string, side ranker.Side, expiry time.Time, c optionContract) ranker.Candidate {
	return ranker.Candidate{
		Underlying:     underlying,
		ContractSymbol: c.ContractSymbol,
		Side:           side,
		Strike:         c.Strike,
		Expiry:         expiry,
		Premium:        c.LastPrice,
		Delta:          c.Delta,
		ImpliedVol:     c.ImpliedVolatility,
	}
}

func intervalParam(interval time.Duration) string {
	switch {
	case interval < time.Minute:
		return "1m"
	case interval < time.Hour:
		return fmt.Sprintf("%dm", int(interval.Minutes()))
	case interval < 24*time.Hour:
		return fmt.Sprintf("%dh", int(interval.Hours()))
	default:
		return "1d"
	}
}
