// Package config loads the scanner configuration from YAML with
// environment overrides for credentials.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel    string `yaml:"log_level"`
	MetricsAddr string `yaml:"metrics_addr"`

	Database struct {
		ConnStr      string `yaml:"conn_str"`
		MaxOpenConns int    `yaml:"max_open_conns"`
		MaxIdleConns int    `yaml:"max_idle_conns"`
	} `yaml:"database"`

	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		Retries  int    `yaml:"retries"`
	} `yaml:"telegram"`

	Feed struct {
		BaseURL      string        `yaml:"base_url"`
		LookbackBars int           `yaml:"lookback_bars"`
		BarInterval  time.Duration `yaml:"bar_interval"`
	} `yaml:"feed"`

	Scan struct {
		Interval           time.Duration `yaml:"interval"`
		GainersInterval    time.Duration `yaml:"gainers_interval"`
		MonitorInterval    time.Duration `yaml:"monitor_interval"`
		MembershipSet      string        `yaml:"membership_set"`
		OptionUnderlyings  []string      `yaml:"option_underlyings"`
		EnforceMarketHours bool          `yaml:"enforce_market_hours"`
	} `yaml:"scan"`

	Indicator struct {
		RSIPeriod       int     `yaml:"rsi_period"`
		BollingerPeriod int     `yaml:"bollinger_period"`
		StdDevMult      float64 `yaml:"std_dev_mult"`
		Oversold        float64 `yaml:"oversold"`
	} `yaml:"indicator"`

	Trade struct {
		BuyNotional      float64 `yaml:"buy_notional"`
		LossThreshold    float64 `yaml:"loss_threshold"`
		StopLossPct      float64 `yaml:"stop_loss_pct"`
		TakeProfitPct    float64 `yaml:"take_profit_pct"`
		MaxPositionValue float64 `yaml:"max_position_value"`
		LimitPriceBuffer float64 `yaml:"limit_price_buffer"`
		PaperCash        float64 `yaml:"paper_cash"`
	} `yaml:"trade"`

	Ranker struct {
		MinDelta      float64 `yaml:"min_delta"`
		MaxDelta      float64 `yaml:"max_delta"`
		MinRiskReward float64 `yaml:"min_risk_reward"`
		MoveFraction  float64 `yaml:"move_fraction"`
	} `yaml:"ranker"`
}

// Default returns the reference configuration: 5m equity scans with a
// 14-period RSI / 20-period Bollinger entry, $2000 notional per position
// with a $200 loss cut, and 0DTE ranking at delta 0.15-0.35 with R/R >= 3.
func Default() Config {
	var c Config
	c.LogLevel = "info"
	c.MetricsAddr = ":9090"
	c.Database.MaxOpenConns = 10
	c.Database.MaxIdleConns = 5
	c.Telegram.Retries = 3
	c.Feed.LookbackBars = 50
	c.Feed.BarInterval = 5 * time.Minute
	c.Scan.Interval = 5 * time.Minute
	c.Scan.GainersInterval = 15 * time.Minute
	c.Scan.MonitorInterval = 5 * time.Second
	c.Scan.MembershipSet = "sp500"
	c.Scan.EnforceMarketHours = true
	c.Indicator.RSIPeriod = 14
	c.Indicator.BollingerPeriod = 20
	c.Indicator.StdDevMult = 2
	c.Indicator.Oversold = 30
	c.Trade.BuyNotional = 2000
	c.Trade.LossThreshold = 200
	c.Trade.StopLossPct = 0.50
	c.Trade.TakeProfitPct = 1.50
	c.Trade.MaxPositionValue = 5000
	c.Trade.LimitPriceBuffer = 0.05
	c.Trade.PaperCash = 100_000
	c.Ranker.MinDelta = 0.15
	c.Ranker.MaxDelta = 0.35
	c.Ranker.MinRiskReward = 3.0
	c.Ranker.MoveFraction = 0.10
	return c
}

// Load reads path on top of the defaults, then applies environment
// overrides. An empty path returns defaults with overrides only.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv lets credentials come from the environment so they never need to
// live in the YAML file.
func applyEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.ConnStr = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
}

func (c Config) Validate() error {
	if c.Indicator.RSIPeriod < 2 {
		return fmt.Errorf("rsi_period must be >= 2, got %d", c.Indicator.RSIPeriod)
	}
	if c.Indicator.BollingerPeriod < 2 {
		return fmt.Errorf("bollinger_period must be >= 2, got %d", c.Indicator.BollingerPeriod)
	}
	if c.Indicator.StdDevMult <= 0 {
		return fmt.Errorf("std_dev_mult must be positive, got %v", c.Indicator.StdDevMult)
	}
	if c.Indicator.Oversold <= 0 || c.Indicator.Oversold >= 100 {
		return fmt.Errorf("oversold must be in (0, 100), got %v", c.Indicator.Oversold)
	}
	if c.Feed.LookbackBars < c.Indicator.RSIPeriod+1 || c.Feed.LookbackBars < c.Indicator.BollingerPeriod {
		return fmt.Errorf("lookback_bars %d too small for configured indicator periods", c.Feed.LookbackBars)
	}
	if c.Trade.BuyNotional <= 0 {
		return fmt.Errorf("buy_notional must be positive, got %v", c.Trade.BuyNotional)
	}
	if c.Trade.LossThreshold < 0 {
		return fmt.Errorf("loss_threshold must be >= 0, got %v", c.Trade.LossThreshold)
	}
	if c.Trade.LimitPriceBuffer < 0 || c.Trade.LimitPriceBuffer > 1 {
		return fmt.Errorf("limit_price_buffer must be in [0, 1], got %v", c.Trade.LimitPriceBuffer)
	}
	if c.Ranker.MinDelta < 0 || c.Ranker.MaxDelta < c.Ranker.MinDelta {
		return fmt.Errorf("delta band [%v, %v] is invalid", c.Ranker.MinDelta, c.Ranker.MaxDelta)
	}
	if c.Ranker.MinRiskReward <= 0 {
		return fmt.Errorf("min_risk_reward must be positive, got %v", c.Ranker.MinRiskReward)
	}
	if c.Scan.Interval <= 0 || c.Scan.MonitorInterval <= 0 || c.Scan.GainersInterval <= 0 {
		return fmt.Errorf("scan intervals must be positive")
	}
	return nil
}
