package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/arashn/stockscan/internal/config"
	"github.com/arashn/stockscan/internal/db"
	"github.com/arashn/stockscan/internal/dedup"
	"github.com/arashn/stockscan/internal/feed"
	"github.com/arashn/stockscan/internal/gateway"
	"github.com/arashn/stockscan/internal/indicator"
	"github.com/arashn/stockscan/internal/metrics"
	"github.com/arashn/stockscan/internal/notifier"
	"github.com/arashn/stockscan/internal/position"
	"github.com/arashn/stockscan/internal/ranker"
	"github.com/arashn/stockscan/internal/scanner"
	"github.com/arashn/stockscan/internal/scheduler"
	"github.com/arashn/stockscan/internal/strategy"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "stockscan:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to YAML config (defaults apply when empty)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	logger.Info().Str("config", *configPath).Msg("stockscan starting")

	var storage db.Storage
	if cfg.Database.ConnStr != "" {
		pg, err := db.NewPostgres(cfg.Database.ConnStr, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		storage = pg
		logger.Info().Msg("using postgres storage")
	} else {
		storage = db.NewMemory()
		logger.Warn().Msg("no database configured, state will not survive restarts")
	}
	defer storage.Close()

	var notify notifier.Notifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		notify = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.Retries, 2*time.Second)
		logger.Info().Msg("telegram notifications enabled")
	} else {
		notify = notifier.NewLogNotifier(logger)
	}

	prices := feed.NewYahooFeed(cfg.Feed.BaseURL, logger)
	paper := gateway.NewPaperGateway(cfg.Trade.PaperCash, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	known := dedup.Load(ctx, storage, logger)
	positions := position.NewManager(logger)

	engine := scanner.New(scanner.Config{
		MembershipSet:      cfg.Scan.MembershipSet,
		BuyNotional:        cfg.Trade.BuyNotional,
		LossThreshold:      cfg.Trade.LossThreshold,
		OptionUnderlyings:  cfg.Scan.OptionUnderlyings,
		StopLossPct:        cfg.Trade.StopLossPct,
		TakeProfitPct:      cfg.Trade.TakeProfitPct,
		MaxPositionValue:   cfg.Trade.MaxPositionValue,
		LimitPriceBuffer:   cfg.Trade.LimitPriceBuffer,
		LookbackBars:       cfg.Feed.LookbackBars,
		BarInterval:        cfg.Feed.BarInterval,
		EnforceMarketHours: cfg.Scan.EnforceMarketHours,
	}, scanner.Deps{
		Indicators: indicator.NewEngine(cfg.Indicator.RSIPeriod, cfg.Indicator.BollingerPeriod, cfg.Indicator.StdDevMult),
		Rule:       strategy.NewOversoldBreakout(cfg.Indicator.Oversold),
		Ranker:     ranker.New(cfg.Ranker.MinDelta, cfg.Ranker.MaxDelta, cfg.Ranker.MinRiskReward, cfg.Ranker.MoveFraction),
		Dedup:      known,
		Positions:  positions,
		Prices:     prices,
		Universe:   prices,
		Chains:     prices,
		Gateway:    paper,
		Notifier:   notify,
		Storage:    storage,
		Logger:     logger,
	})

	if err := engine.Restore(ctx); err != nil {
		return err
	}

	metricsSrv := metrics.Serve(cfg.MetricsAddr)
	defer metricsSrv.Close()
	logger.Info().Str("addr", cfg.MetricsAddr).Msg("metrics listening")

	runner := scheduler.NewRunner(logger,
		scheduler.Loop{Name: "scan", Interval: cfg.Scan.Interval, Run: engine.ScanCycle},
		scheduler.Loop{Name: "gainers", Interval: cfg.Scan.GainersInterval, Run: engine.GainersCycle},
		scheduler.Loop{Name: "monitor", Interval: cfg.Scan.MonitorInterval, Run: engine.MonitorCycle},
	)
	runner.Start(ctx)

	<-ctx.Done()
	logger.Info().Msg("shutdown requested, waiting for in-flight cycles")
	runner.Wait()
	logger.Info().Float64("paper_cash", paper.Cash()).Msg("stockscan stopped")
	return nil
}
