package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"smabacktest/types"
)

const cacheSchema = `
CREATE TABLE IF NOT EXISTS daily_closes (
	ticker TEXT NOT NULL,
	day    TEXT NOT NULL,
	close  TEXT NOT NULL,
	PRIMARY KEY (ticker, day)
)`

// PriceCache is a local SQLite copy of price history, used as the fallback
// source when the primary datasource is unreachable.
type PriceCache struct {
	db *sql.DB
}

// NewPriceCache opens (or creates) a SQLite cache at dbPath and ensures the
// schema exists.
func NewPriceCache(dbPath string) (*PriceCache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open price cache: %w", err)
	}
	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create price cache schema: %w", err)
	}
	return &PriceCache{db: db}, nil
}

// Close closes the underlying database connection.
func (c *PriceCache) Close() error {
	return c.db.Close()
}

// ReadCloses returns the cached daily close series for a ticker, ordered by
// day ascending.
func (c *PriceCache) ReadCloses(ctx context.Context, ticker string, start, end time.Time) ([]types.PricePoint, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT day, close FROM daily_closes
		 WHERE ticker = ? AND day >= ? AND day <= ?
		 ORDER BY day`,
		ticker, start.Format(time.DateOnly), end.Format(time.DateOnly))
	if err != nil {
		return nil, fmt.Errorf("read cached closes: %w", err)
	}
	defer rows.Close()

	var prices []types.PricePoint
	for rows.Next() {
		var day, close string
		if err := rows.Scan(&day, &close); err != nil {
			return nil, fmt.Errorf("scan cached close: %w", err)
		}
		date, err := time.Parse(time.DateOnly, day)
		if err != nil {
			return nil, fmt.Errorf("parse cached day %q: %w", day, err)
		}
		value, err := decimal.NewFromString(close)
		if err != nil {
			return nil, fmt.Errorf("parse cached close %q: %w", close, err)
		}
		prices = append(prices, types.PricePoint{Date: date, Close: value})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return prices, nil
}

// WriteCloses upserts a price series into the cache inside one transaction.
func (c *PriceCache) WriteCloses(ctx context.Context, ticker string, prices []types.PricePoint) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cache write: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO daily_closes (ticker, day, close) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare cache write: %w", err)
	}
	defer stmt.Close()

	for _, p := range prices {
		if _, err := stmt.ExecContext(ctx, ticker, p.Date.Format(time.DateOnly), p.Close.String()); err != nil {
			return fmt.Errorf("write cached close %s: %w", p.Date.Format(time.DateOnly), err)
		}
	}
	return tx.Commit()
}
