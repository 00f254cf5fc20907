package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"smabacktest/types"
)

type primarySource interface {
	GetPriceSeries(ticker string, start, end time.Time, ctx context.Context) ([]types.PricePoint, error)
}

type cacheStore interface {
	ReadCloses(ctx context.Context, ticker string, start, end time.Time) ([]types.PricePoint, error)
	WriteCloses(ctx context.Context, ticker string, prices []types.PricePoint) error
}

// PriceLoader resolves a price series from the primary datasource, falling
// back to the local cache when the primary is missing or fails. A successful
// primary read is written through to the cache so later offline runs keep
// working.
type PriceLoader struct {
	primary primarySource
	cache   cacheStore
	log     *slog.Logger
}

// NewPriceLoader creates a PriceLoader. Either source may be nil when not
// configured; at least one must be present for Load to succeed.
func NewPriceLoader(primary primarySource, cache cacheStore, logger *slog.Logger) *PriceLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &PriceLoader{primary: primary, cache: cache, log: logger}
}

// Load fetches the close series for a ticker and date range.
func (l *PriceLoader) Load(ctx context.Context, ticker string, start, end time.Time) ([]types.PricePoint, error) {
	if l.primary != nil {
		prices, err := l.primary.GetPriceSeries(ticker, start, end, ctx)
		if err == nil {
			l.log.Info("fetched prices from primary datasource",
				"ticker", ticker, "points", len(prices))
			if l.cache != nil {
				if cacheErr := l.cache.WriteCloses(ctx, ticker, prices); cacheErr != nil {
					l.log.Warn("price cache write failed", "ticker", ticker, "error", cacheErr)
				}
			}
			return prices, nil
		}
		l.log.Warn("primary datasource failed, falling back to cache",
			"ticker", ticker, "error", err)
	}

	if l.cache != nil {
		prices, err := l.cache.ReadCloses(ctx, ticker, start, end)
		if err != nil {
			l.log.Warn("price cache read failed", "ticker", ticker, "error", err)
		} else if len(prices) > 0 {
			l.log.Info("fetched prices from local cache",
				"ticker", ticker, "points", len(prices))
			return prices, nil
		}
	}

	return nil, fmt.Errorf("ticker %s: %w", ticker, ErrAllSourcesFailed)
}
