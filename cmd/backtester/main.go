package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"smabacktest/internal/config"
	"smabacktest/internal/engine"
	"smabacktest/internal/indicators"
	"smabacktest/internal/repository"
	"smabacktest/internal/util"
	"smabacktest/types"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config file")
		ticker     = flag.String("ticker", "SPY", "ticker symbol")
		startStr   = flag.String("start", "2015-01-01", "start date (YYYY-MM-DD)")
		endStr     = flag.String("end", "", "end date (YYYY-MM-DD, default today)")
		fast       = flag.Int("fast", 0, "fast SMA window (0 = config default)")
		slow       = flag.Int("slow", 0, "slow SMA window (0 = config default)")
		cash       = flag.Float64("cash", 0, "initial cash (0 = config default)")
		cost       = flag.Float64("cost", -1, "transaction cost rate (-1 = config default)")
		grid       = flag.Bool("grid", false, "run a grid search over SMA window pairs")
		workers    = flag.Int("workers", 0, "grid worker count (0 = config default)")
		rankBy     = flag.String("rank-by", "", "grid rank metric (sharpe_ratio, cumulative_return, max_drawdown)")
		output     = flag.String("output", "", "CSV output path for results")
		tradesOut  = flag.String("trades", "", "CSV output path for the trade log")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if *fast > 0 {
		cfg.Backtest.Fast = *fast
	}
	if *slow > 0 {
		cfg.Backtest.Slow = *slow
	}
	if *cash > 0 {
		cfg.Backtest.InitialCash = *cash
	}
	if *cost >= 0 {
		cfg.Backtest.TransactionCost = *cost
	}
	if *workers > 0 {
		cfg.Grid.Workers = *workers
	}
	if *rankBy != "" {
		cfg.Grid.RankBy = *rankBy
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	start, end, err := parseDateRange(*startStr, *endStr)
	if err != nil {
		logger.Error("invalid date range", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, logger, *ticker, start, end, *grid, *output, *tradesOut); err != nil {
		logger.Error("backtest failed", "error", err)
		os.Exit(1)
	}
}

// run owns the data source lifetimes so they are closed on every exit path.
func run(cfg *config.Config, logger *slog.Logger, ticker string, start, end time.Time, grid bool, output, tradesOut string) error {
	loader, closeSources := newLoader(cfg, logger)
	defer closeSources()

	ctx := context.Background()
	prices, err := loader.Load(ctx, ticker, start, end)
	if err != nil {
		return fmt.Errorf("load prices for %s: %w", ticker, err)
	}

	if grid {
		return runGrid(ctx, cfg, prices, output)
	}
	return runSingle(cfg, prices, output, tradesOut)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func parseDateRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse(time.DateOnly, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start date: %w", err)
	}
	end := time.Now().UTC().Truncate(24 * time.Hour)
	if endStr != "" {
		end, err = time.Parse(time.DateOnly, endStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("end date: %w", err)
		}
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date must be after start date %s", startStr)
	}
	return start, end, nil
}

// newLoader builds the price loader and returns a close function releasing
// whatever sources were opened.
func newLoader(cfg *config.Config, logger *slog.Logger) (*repository.PriceLoader, func()) {
	var closers []func()

	var primary *repository.Database
	if cfg.Database.URL != "" {
		db, err := repository.NewDatabase(cfg.Database.URL)
		if err != nil {
			logger.Warn("primary datasource unavailable", "error", err)
		} else {
			primary = &db
			closers = append(closers, primary.Close)
		}
	}

	var cache *repository.PriceCache
	if cfg.Storage.SQLitePath != "" {
		c, err := repository.NewPriceCache(cfg.Storage.SQLitePath)
		if err != nil {
			logger.Warn("price cache unavailable", "error", err)
		} else {
			cache = c
			closers = append(closers, func() {
				if err := c.Close(); err != nil {
					logger.Warn("close price cache", "error", err)
				}
			})
		}
	}

	closeSources := func() {
		for _, close := range closers {
			close()
		}
	}

	// Interface-typed nils would defeat the loader's nil checks, so only pass
	// sources that actually exist.
	switch {
	case primary != nil && cache != nil:
		return repository.NewPriceLoader(primary, cache, logger), closeSources
	case primary != nil:
		return repository.NewPriceLoader(primary, nil, logger), closeSources
	case cache != nil:
		return repository.NewPriceLoader(nil, cache, logger), closeSources
	default:
		return repository.NewPriceLoader(nil, nil, logger), closeSources
	}
}

func runSingle(cfg *config.Config, prices []types.PricePoint, output, tradesOut string) error {
	bt := cfg.Backtest
	if bt.Fast >= bt.Slow {
		return fmt.Errorf("fast window %d must be less than slow window %d", bt.Fast, bt.Slow)
	}

	fastMA, err := indicators.SMA(prices, bt.Fast)
	if err != nil {
		return err
	}
	slowMA, err := indicators.SMA(prices, bt.Slow)
	if err != nil {
		return err
	}
	signals, err := engine.GenerateSignals(fastMA, slowMA)
	if err != nil {
		return err
	}
	series, trades, err := engine.Simulate(
		prices, signals,
		decimal.NewFromFloat(bt.InitialCash),
		decimal.NewFromFloat(bt.TransactionCost),
	)
	if err != nil {
		return err
	}
	metrics, err := engine.ComputeMetrics(series)
	if err != nil {
		return err
	}
	stats := engine.ComputeTradeStats(trades)

	engine.PrintReport(series, metrics, stats)

	if tradesOut != "" {
		if err := engine.WriteTradesCSVFile(tradesOut, trades); err != nil {
			return err
		}
		fmt.Printf("\nTrade log saved to %s\n", tradesOut)
	}
	if output != "" {
		row := types.GridRow{
			Fast:             bt.Fast,
			Slow:             bt.Slow,
			CumulativeReturn: metrics.CumulativeReturn,
			SharpeRatio:      metrics.SharpeRatio,
			SharpeDefined:    metrics.SharpeDefined,
			MaxDrawdown:      metrics.MaxDrawdown,
			TradeCount:       len(trades),
		}
		if err := engine.WriteGridCSVFile(output, []types.GridRow{row}); err != nil {
			return err
		}
		fmt.Printf("\nResults saved to %s\n", output)
	}
	return nil
}

func runGrid(ctx context.Context, cfg *config.Config, prices []types.PricePoint, output string) error {
	gc := engine.GridConfig{
		FastRange:       engine.Range{Min: cfg.Grid.FastMin, Max: cfg.Grid.FastMax, Step: cfg.Grid.FastStep},
		SlowRange:       engine.Range{Min: cfg.Grid.SlowMin, Max: cfg.Grid.SlowMax, Step: cfg.Grid.SlowStep},
		InitialCash:     decimal.NewFromFloat(cfg.Backtest.InitialCash),
		TransactionCost: decimal.NewFromFloat(cfg.Backtest.TransactionCost),
		RankBy:          engine.RankMetric(cfg.Grid.RankBy),
		Workers:         cfg.Grid.Workers,
		FailFast:        cfg.Grid.FailFast,
		ShowProgress:    true,
	}

	rows, err := engine.RunGrid(ctx, prices, gc)
	if err != nil {
		return err
	}

	fmt.Println("\nTop performing window pairs:")
	for i, row := range rows {
		if i >= 5 || row.Err != "" {
			break
		}
		sharpe := "undefined"
		if row.SharpeDefined {
			sharpe = fmt.Sprintf("%.2f", row.SharpeRatio)
		}
		fmt.Printf("%d. SMA %d/%d: Return %.2f%%, Sharpe %s, DD %.2f%%, Trades %d\n",
			i+1, row.Fast, row.Slow, row.CumulativeReturn*100, sharpe, row.MaxDrawdown*100, row.TradeCount)
	}

	if output != "" {
		if err := engine.WriteGridCSVFile(output, rows); err != nil {
			return err
		}
		fmt.Printf("\nResults saved to %s\n", output)
	}
	return nil
}
